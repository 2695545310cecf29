package domain

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Order represents a placed café order
type Order struct {
	ID                  int
	Number              string
	UserID              int
	Type                OrderType
	TableNumber         *int
	Customer            CustomerInfo
	Items               []OrderItem
	Subtotal            decimal.Decimal
	Tax                 decimal.Decimal
	Total               decimal.Decimal
	Status              Status
	PaymentMethod       PaymentMethod
	SpecialInstructions string
	CreatedAt           time.Time
	UpdatedAt           time.Time
	ReadyAt             *time.Time
	CompletedAt         *time.Time
	CancelledAt         *time.Time
}

// OrderItem represents an item in an order. Name and unit price are copied
// from the menu so the order survives menu edits.
type OrderItem struct {
	ID         int
	OrderID    int
	MenuItemID int
	Name       string
	Quantity   int
	UnitPrice  decimal.Decimal
	TotalPrice decimal.Decimal
}

// NewOrder creates a new order with business rules applied
func NewOrder(userID int, orderType OrderType, customer CustomerInfo, items []OrderItem, tableNumber *int, instructions string, taxRate decimal.Decimal) (*Order, error) {
	now := time.Now()
	order := &Order{
		UserID:              userID,
		Type:                orderType,
		Customer:            customer.Normalized(),
		Items:               items,
		TableNumber:         tableNumber,
		SpecialInstructions: strings.TrimSpace(instructions),
		Status:              StatusPending,
		PaymentMethod:       PaymentCash,
		CreatedAt:           now,
		UpdatedAt:           now,
	}

	if err := order.Validate(); err != nil {
		return nil, err
	}

	order.CalculateTotals(taxRate)

	return order, nil
}

// Validate applies business validation rules
func (o *Order) Validate() error {
	var errs ValidationErrors

	if !o.Type.Valid() {
		errs.Add("orderType", "order type must be one of: dine-in, takeaway, delivery")
	}

	if o.Type == OrderTypeDineIn {
		if o.TableNumber == nil {
			errs.Add("tableNumber", "table number required for dine-in orders")
		} else if *o.TableNumber < 1 || *o.TableNumber > 100 {
			errs.Add("tableNumber", "table number must be between 1 and 100")
		}
	}

	if o.Type == OrderTypeTakeaway || o.Type == OrderTypeDelivery {
		if strings.TrimSpace(o.Customer.Name) == "" {
			errs.Add("customer.name", "customer name required for takeaway and delivery orders")
		}
		if strings.TrimSpace(o.Customer.Phone) == "" {
			errs.Add("customer.phone", "customer phone required for takeaway and delivery orders")
		}
	}

	if len(o.Items) < 1 {
		errs.Add("items", "order must contain at least 1 item")
	}

	for i, item := range o.Items {
		if item.Quantity < 1 || item.Quantity > MaxLineQuantity {
			errs.Add(fmt.Sprintf("items[%d].quantity", i), fmt.Sprintf("quantity must be 1-%d", MaxLineQuantity))
		}
		if item.UnitPrice.IsNegative() {
			errs.Add(fmt.Sprintf("items[%d].unitPrice", i), "price cannot be negative")
		}
	}

	if len(o.SpecialInstructions) > 500 {
		errs.Add("specialInstructions", "special instructions cannot exceed 500 characters")
	}

	return errs.Err()
}

// CalculateTotals fills line totals, subtotal, tax and total.
func (o *Order) CalculateTotals(taxRate decimal.Decimal) {
	subtotal := decimal.Zero
	for i := range o.Items {
		o.Items[i].TotalPrice = o.Items[i].UnitPrice.Mul(decimal.NewFromInt(int64(o.Items[i].Quantity)))
		subtotal = subtotal.Add(o.Items[i].TotalPrice)
	}
	o.Subtotal = subtotal
	o.Tax = TaxOn(subtotal, taxRate)
	o.Total = o.Subtotal.Add(o.Tax)
}

// TaxOn applies rate to amount, rounded half-up to two places.
func TaxOn(amount, rate decimal.Decimal) decimal.Decimal {
	return amount.Mul(rate).Round(2)
}

// TransitionTo transitions the order to a new status
func (o *Order) TransitionTo(newStatus Status) error {
	if !o.CanTransitionTo(newStatus) {
		return fmt.Errorf("%w: %s -> %s", ErrInvalidStatusTransition, o.Status, newStatus)
	}

	now := time.Now()
	o.Status = newStatus
	o.UpdatedAt = now

	switch newStatus {
	case StatusReady:
		o.ReadyAt = &now
	case StatusCompleted:
		o.CompletedAt = &now
	case StatusCancelled:
		o.CancelledAt = &now
	}

	return nil
}

// CanTransitionTo checks if the order can transition to the new status
func (o *Order) CanTransitionTo(newStatus Status) bool {
	validTransitions := map[Status][]Status{
		StatusPending:   {StatusConfirmed, StatusCancelled},
		StatusConfirmed: {StatusPreparing, StatusCancelled},
		StatusPreparing: {StatusReady, StatusCancelled},
		StatusReady:     {StatusCompleted, StatusCancelled},
		StatusCompleted: {},
		StatusCancelled: {},
	}

	for _, s := range validTransitions[o.Status] {
		if s == newStatus {
			return true
		}
	}
	return false
}

// FormatOrderNumber builds "ORD-YYYYMMDD-NNNN" for the seq-th order of a day.
func FormatOrderNumber(day time.Time, seq int) string {
	return fmt.Sprintf("ORD-%s-%04d", day.UTC().Format("20060102"), seq)
}

// OrderStats is the admin dashboard aggregate.
type OrderStats struct {
	TodayOrders  int             `json:"todayOrders"`
	TotalRevenue decimal.Decimal `json:"totalRevenue"`
	StatusCounts map[Status]int  `json:"statusStats"`
}
