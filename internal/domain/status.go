package domain

import "time"

type OrderType string

const (
	OrderTypeDineIn   OrderType = "dine-in"
	OrderTypeTakeaway OrderType = "takeaway"
	OrderTypeDelivery OrderType = "delivery"
)

func (t OrderType) Valid() bool {
	switch t {
	case OrderTypeDineIn, OrderTypeTakeaway, OrderTypeDelivery:
		return true
	}
	return false
}

type Status string

const (
	StatusPending   Status = "pending"
	StatusConfirmed Status = "confirmed"
	StatusPreparing Status = "preparing"
	StatusReady     Status = "ready"
	StatusCompleted Status = "completed"
	StatusCancelled Status = "cancelled"
)

// AllStatuses lists statuses in lifecycle order.
var AllStatuses = []Status{
	StatusPending, StatusConfirmed, StatusPreparing, StatusReady, StatusCompleted, StatusCancelled,
}

func (s Status) Valid() bool {
	for _, v := range AllStatuses {
		if v == s {
			return true
		}
	}
	return false
}

type PaymentMethod string

const (
	PaymentCash          PaymentMethod = "cash"
	PaymentCard          PaymentMethod = "card"
	PaymentDigitalWallet PaymentMethod = "digital-wallet"
	PaymentOnline        PaymentMethod = "online"
)

// StatusLog represents a log entry for order status changes
type StatusLog struct {
	ID        int
	OrderID   int
	Status    Status
	ChangedBy string
	ChangedAt time.Time
	Notes     *string
}
