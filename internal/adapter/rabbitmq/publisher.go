package rabbitmq

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/YelzhanWeb/cafe/internal/interfaces"
	amqp "github.com/rabbitmq/amqp091-go"
)

// Exchanges used by the café services.
const (
	OrdersExchange        = "orders_topic"
	NotificationsExchange = "notifications_fanout"
	StoreChangedExchange  = "store_changed_fanout"
)

type publisher struct {
	conn Connection
}

func NewPublisher(conn Connection) interfaces.MessagePublisher {
	return &publisher{conn: conn}
}

// OrderRoutingKey is "orders.<source>.<type>"; checkout orders carry no
// type and route as "orders.checkout.web".
func OrderRoutingKey(msg interfaces.OrderMessage) string {
	kind := string(msg.OrderType)
	if kind == "" {
		kind = "web"
	}
	return fmt.Sprintf("orders.%s.%s", msg.Source, kind)
}

func (p *publisher) publish(ctx context.Context, exchange, kind, key string, persistent bool, msg any) error {
	ch, err := p.conn.Channel()
	if err != nil {
		return fmt.Errorf("failed to open channel: %w", err)
	}
	defer ch.Close()

	if err := ch.ExchangeDeclare(exchange, kind, true, false, false, false, nil); err != nil {
		return fmt.Errorf("failed to declare exchange: %w", err)
	}

	body, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("failed to marshal message: %w", err)
	}

	pub := amqp.Publishing{
		ContentType: "application/json",
		Body:        body,
	}
	if persistent {
		pub.DeliveryMode = amqp.Persistent
	}

	if err := ch.PublishWithContext(ctx, exchange, key, false, false, pub); err != nil {
		return fmt.Errorf("failed to publish message: %w", err)
	}
	return nil
}

func (p *publisher) PublishOrder(ctx context.Context, msg interfaces.OrderMessage) error {
	return p.publish(ctx, OrdersExchange, "topic", OrderRoutingKey(msg), true, msg)
}

func (p *publisher) PublishStatusUpdate(ctx context.Context, msg interfaces.StatusUpdateMessage) error {
	return p.publish(ctx, NotificationsExchange, "fanout", "", false, msg)
}

func (p *publisher) PublishStoreChanged(ctx context.Context, msg interfaces.StoreChangedMessage) error {
	return p.publish(ctx, StoreChangedExchange, "fanout", "", false, msg)
}
