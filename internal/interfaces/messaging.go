package interfaces

import (
	"context"
	"time"

	"github.com/YelzhanWeb/cafe/internal/domain"
	"github.com/shopspring/decimal"
)

// Order sources carried in OrderMessage.Source.
const (
	SourceCheckout = "checkout"
	SourceAPI      = "api"
)

// OrderMessage announces a placed order, whether it came from the
// storefront checkout or from the orders API.
type OrderMessage struct {
	OrderNumber string              `json:"order_number"`
	Source      string              `json:"source"`
	UserID      int                 `json:"user_id,omitempty"`
	OrderType   domain.OrderType    `json:"order_type,omitempty"`
	TableNumber *int                `json:"table_number,omitempty"`
	Customer    domain.CustomerInfo `json:"customer"`
	Items       []OrderLineMessage  `json:"items"`
	Subtotal    decimal.Decimal     `json:"subtotal"`
	Tax         decimal.Decimal     `json:"tax"`
	Total       decimal.Decimal     `json:"total"`
	PlacedAt    time.Time           `json:"placed_at"`
}

type OrderLineMessage struct {
	Name       string          `json:"name"`
	Quantity   int             `json:"quantity"`
	UnitPrice  decimal.Decimal `json:"unit_price"`
	TotalPrice decimal.Decimal `json:"total_price"`
}

type StatusUpdateMessage struct {
	OrderNumber string        `json:"order_number"`
	OldStatus   domain.Status `json:"old_status"`
	NewStatus   domain.Status `json:"new_status"`
	ChangedBy   string        `json:"changed_by"`
	Timestamp   time.Time     `json:"timestamp"`
}

// StoreChangedMessage tells other instances sharing the local store that
// Key was rewritten and should be reloaded.
type StoreChangedMessage struct {
	Origin    string    `json:"origin"`
	Key       string    `json:"key"`
	ChangedAt time.Time `json:"changed_at"`
}

type MessagePublisher interface {
	PublishOrder(ctx context.Context, msg OrderMessage) error
	PublishStatusUpdate(ctx context.Context, msg StatusUpdateMessage) error
	PublishStoreChanged(ctx context.Context, msg StoreChangedMessage) error
}

type MessageConsumer interface {
	ConsumeOrders(ctx context.Context, handler OrderMessageHandler) error
	ConsumeNotifications(ctx context.Context, handler NotificationHandler) error
	ConsumeStoreChanges(ctx context.Context, handler StoreChangeHandler) error
}

type (
	OrderMessageHandler func(ctx context.Context, body []byte) error
	NotificationHandler func(ctx context.Context, body []byte) error
	StoreChangeHandler  func(ctx context.Context, body []byte) error
)
