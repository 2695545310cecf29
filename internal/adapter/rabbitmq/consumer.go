package rabbitmq

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/YelzhanWeb/cafe/internal/adapter/logger"
	"github.com/YelzhanWeb/cafe/internal/interfaces"
	amqp "github.com/rabbitmq/amqp091-go"
)

const (
	ordersQueue    = "orders_queue"
	ordersDLX      = "orders_dlq"
	ordersDLQueue  = "orders_queue_dlq"
	reconnectDelay = 5 * time.Second
)

type consumer struct {
	conn     Connection
	prefetch int
	logger   logger.Logger
}

func NewConsumer(conn Connection, prefetch int, log logger.Logger) interfaces.MessageConsumer {
	return &consumer{conn: conn, prefetch: prefetch, logger: log}
}

func (c *consumer) ConsumeOrders(ctx context.Context, handler interfaces.OrderMessageHandler) error {
	return c.retry(ctx, "orders", func() error {
		return c.consumeOrders(ctx, handler)
	})
}

func (c *consumer) ConsumeNotifications(ctx context.Context, handler interfaces.NotificationHandler) error {
	return c.retry(ctx, "notifications", func() error {
		return c.consumeFanout(ctx, NotificationsExchange, handler)
	})
}

func (c *consumer) ConsumeStoreChanges(ctx context.Context, handler interfaces.StoreChangeHandler) error {
	return c.retry(ctx, "store_changes", func() error {
		return c.consumeFanout(ctx, StoreChangedExchange, handler)
	})
}

// retry keeps a consumer alive across broker disconnects until ctx ends.
func (c *consumer) retry(ctx context.Context, name string, run func() error) error {
	for {
		err := run()
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if err == nil {
			return nil
		}

		c.logger.Warn("consumer_disconnected", "Consumer disconnected, reconnecting", "", map[string]interface{}{
			"consumer": name,
			"error":    err.Error(),
			"retry_in": reconnectDelay.String(),
		})

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(reconnectDelay):
		}
	}
}

func (c *consumer) consumeOrders(ctx context.Context, handler interfaces.OrderMessageHandler) error {
	ch, err := c.conn.Channel()
	if err != nil {
		return fmt.Errorf("failed to open channel: %w", err)
	}
	defer ch.Close()

	closeChan := ch.NotifyClose()

	if err := ch.Qos(c.prefetch, 0, false); err != nil {
		return fmt.Errorf("failed to set QoS: %w", err)
	}
	if err := setupOrdersInfrastructure(ch); err != nil {
		return err
	}

	msgs, err := ch.Consume(ordersQueue, "", false, false, false, false, nil)
	if err != nil {
		return fmt.Errorf("failed to start consuming: %w", err)
	}

	return c.loop(ctx, closeChan, msgs, func(msg amqp.Delivery) {
		if err := handler(ctx, msg.Body); err != nil {
			c.logger.Error("order_message_failed", "Order message rejected to DLQ", "", nil, err)
			msg.Nack(false, false)
			return
		}
		msg.Ack(false)
	})
}

// consumeFanout binds a temporary exclusive queue to exchange. Handler
// errors are logged and the message is dropped.
func (c *consumer) consumeFanout(ctx context.Context, exchange string, handler func(context.Context, []byte) error) error {
	ch, err := c.conn.Channel()
	if err != nil {
		return fmt.Errorf("failed to open channel: %w", err)
	}
	defer ch.Close()

	closeChan := ch.NotifyClose()

	if err := ch.ExchangeDeclare(exchange, "fanout", true, false, false, false, nil); err != nil {
		return fmt.Errorf("failed to declare exchange: %w", err)
	}
	q, err := ch.QueueDeclare("", false, true, true, false, nil)
	if err != nil {
		return fmt.Errorf("failed to declare queue: %w", err)
	}
	if err := ch.QueueBind(q.Name, "", exchange, false, nil); err != nil {
		return fmt.Errorf("failed to bind queue: %w", err)
	}

	msgs, err := ch.Consume(q.Name, "", true, false, false, false, nil)
	if err != nil {
		return fmt.Errorf("failed to start consuming: %w", err)
	}

	return c.loop(ctx, closeChan, msgs, func(msg amqp.Delivery) {
		if err := handler(ctx, msg.Body); err != nil {
			c.logger.Warn("fanout_message_failed", "Dropping message", "", map[string]interface{}{
				"exchange": exchange,
				"error":    err.Error(),
			})
		}
	})
}

func (c *consumer) loop(ctx context.Context, closeChan <-chan *amqp.Error, msgs <-chan amqp.Delivery, handle func(amqp.Delivery)) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case err := <-closeChan:
			if err != nil {
				return fmt.Errorf("channel closed: %w", err)
			}
			return errors.New("channel closed gracefully")

		case msg, ok := <-msgs:
			if !ok {
				return errors.New("messages channel closed")
			}
			handle(msg)
		}
	}
}

func setupOrdersInfrastructure(ch Channel) error {
	if err := ch.ExchangeDeclare(OrdersExchange, "topic", true, false, false, false, nil); err != nil {
		return fmt.Errorf("failed to declare orders exchange: %w", err)
	}

	if err := ch.ExchangeDeclare(ordersDLX, "fanout", true, false, false, false, nil); err != nil {
		return fmt.Errorf("failed to declare DLQ exchange: %w", err)
	}
	if _, err := ch.QueueDeclare(ordersDLQueue, true, false, false, false, nil); err != nil {
		return fmt.Errorf("failed to declare DLQ: %w", err)
	}
	if err := ch.QueueBind(ordersDLQueue, "", ordersDLX, false, nil); err != nil {
		return fmt.Errorf("failed to bind DLQ: %w", err)
	}

	args := amqp.Table{
		"x-dead-letter-exchange": ordersDLX,
	}
	q, err := ch.QueueDeclare(ordersQueue, true, false, false, false, args)
	if err != nil {
		return fmt.Errorf("failed to declare orders queue: %w", err)
	}
	if err := ch.QueueBind(q.Name, "orders.#", OrdersExchange, false, nil); err != nil {
		return fmt.Errorf("failed to bind orders queue: %w", err)
	}
	return nil
}
