package order

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/YelzhanWeb/cafe/internal/adapter/logger"
	"github.com/YelzhanWeb/cafe/internal/domain"
	"github.com/YelzhanWeb/cafe/internal/interfaces"
	"github.com/shopspring/decimal"
)

type Service struct {
	repo      interfaces.OrderRepository
	menu      interfaces.MenuRepository
	publisher interfaces.MessagePublisher
	taxRate   decimal.Decimal
	logger    logger.Logger
	now       func() time.Time
}

// NewService wires the order use cases. publisher may be nil when no broker
// is configured; orders are then stored without notifying the kitchen.
func NewService(repo interfaces.OrderRepository, menu interfaces.MenuRepository, publisher interfaces.MessagePublisher, taxRate decimal.Decimal, logger logger.Logger) *Service {
	return &Service{
		repo:      repo,
		menu:      menu,
		publisher: publisher,
		taxRate:   taxRate,
		logger:    logger,
		now:       time.Now,
	}
}

func (s *Service) CreateOrder(ctx context.Context, cmd interfaces.CreateOrderCommand) (*domain.Order, error) {
	reqID := logger.RequestID(ctx)

	// Prices and names come from the catalog, never from the request.
	items := make([]domain.OrderItem, len(cmd.Items))
	for i, line := range cmd.Items {
		item, err := s.menu.FindByID(ctx, line.MenuItemID)
		if err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				return nil, fmt.Errorf("menu item %d: %w", line.MenuItemID, domain.ErrItemUnavailable)
			}
			return nil, fmt.Errorf("load menu item %d: %w", line.MenuItemID, err)
		}
		if !item.Available() || !item.Price.Valid {
			return nil, fmt.Errorf("%s: %w", item.Name, domain.ErrItemUnavailable)
		}
		items[i] = domain.OrderItem{
			MenuItemID: line.MenuItemID,
			Name:       item.Name,
			Quantity:   line.Quantity,
			UnitPrice:  item.Price.Decimal,
		}
	}

	order, err := domain.NewOrder(cmd.UserID, domain.OrderType(cmd.OrderType), cmd.Customer, items, cmd.TableNumber, cmd.SpecialInstructions, s.taxRate)
	if err != nil {
		s.logger.Warn("validation_failed", "Order validation failed", reqID, map[string]interface{}{"user_id": cmd.UserID})
		return nil, err
	}

	if err := s.store(ctx, order); err != nil {
		s.logger.Error("db_transaction_failed", "Failed to create order", reqID, nil, err)
		return nil, err
	}
	s.logger.Debug("order_received", "Order created in DB", reqID, map[string]interface{}{"order_number": order.Number})

	msg := interfaces.OrderMessage{
		OrderNumber: order.Number,
		Source:      interfaces.SourceAPI,
		UserID:      order.UserID,
		OrderType:   order.Type,
		TableNumber: order.TableNumber,
		Customer:    order.Customer,
		Items:       make([]interfaces.OrderLineMessage, len(order.Items)),
		Subtotal:    order.Subtotal,
		Tax:         order.Tax,
		Total:       order.Total,
		PlacedAt:    order.CreatedAt,
	}
	for i, it := range order.Items {
		msg.Items[i] = interfaces.OrderLineMessage{
			Name:       it.Name,
			Quantity:   it.Quantity,
			UnitPrice:  it.UnitPrice,
			TotalPrice: it.TotalPrice,
		}
	}

	// The order is already stored; a broker outage must not fail the request.
	if s.publisher == nil {
		return order, nil
	}
	if err := s.publisher.PublishOrder(ctx, msg); err != nil {
		s.logger.Error("rabbitmq_publish_failed", "Failed to publish order", reqID, map[string]interface{}{"order_number": order.Number}, err)
	} else {
		s.logger.Debug("order_published", "Order published to RabbitMQ", reqID, map[string]interface{}{"order_number": order.Number})
	}

	return order, nil
}

// orderNumberAttempts bounds retries when a concurrent order takes the
// generated number first.
const orderNumberAttempts = 5

func (s *Service) store(ctx context.Context, order *domain.Order) error {
	var err error
	for attempt := 1; attempt <= orderNumberAttempts; attempt++ {
		number, genErr := s.repo.GenerateOrderNumber(ctx)
		if genErr != nil {
			return fmt.Errorf("failed to generate order number: %w", genErr)
		}
		order.Number = number

		if err = s.repo.Create(ctx, order); !errors.Is(err, domain.ErrDuplicate) {
			return err
		}
		s.logger.Warn("order_number_taken", "Order number already used, retrying", logger.RequestID(ctx),
			map[string]interface{}{"order_number": number, "attempt": attempt})
	}
	return err
}

func (s *Service) ListAll(ctx context.Context, filter interfaces.OrderFilter) ([]*domain.Order, error) {
	return s.repo.List(ctx, filter)
}

func (s *Service) ListForUser(ctx context.Context, userID int) ([]*domain.Order, error) {
	return s.repo.ListByUser(ctx, userID)
}

// UpdateStatus moves an order along its lifecycle and records the change.
func (s *Service) UpdateStatus(ctx context.Context, id int, status domain.Status, changedBy string, notes *string) (*domain.Order, error) {
	reqID := logger.RequestID(ctx)

	if !status.Valid() {
		var errs domain.ValidationErrors
		errs.Add("status", "unknown order status")
		return nil, errs
	}

	order, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	old := order.Status
	if err := order.TransitionTo(status); err != nil {
		return nil, err
	}

	if err := s.repo.Update(ctx, order); err != nil {
		s.logger.Error("db_update_failed", "Failed to update order status", reqID, map[string]interface{}{"order_number": order.Number}, err)
		return nil, err
	}
	if err := s.repo.LogStatus(ctx, order.ID, status, changedBy, notes); err != nil {
		s.logger.Error("status_log_failed", "Failed to log status change", reqID, map[string]interface{}{"order_number": order.Number}, err)
	}

	msg := interfaces.StatusUpdateMessage{
		OrderNumber: order.Number,
		OldStatus:   old,
		NewStatus:   status,
		ChangedBy:   changedBy,
		Timestamp:   order.UpdatedAt,
	}
	if s.publisher != nil {
		if err := s.publisher.PublishStatusUpdate(ctx, msg); err != nil {
			s.logger.Error("rabbitmq_publish_failed", "Failed to publish status update", reqID, map[string]interface{}{"order_number": order.Number}, err)
		}
	}

	s.logger.Info("order_status_changed", "Order status updated", reqID, map[string]interface{}{
		"order_number": order.Number,
		"old_status":   old,
		"new_status":   status,
	})
	return order, nil
}

// History returns the status log of an order, oldest first.
func (s *Service) History(ctx context.Context, id int) ([]*domain.StatusLog, error) {
	order, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.repo.GetStatusHistory(ctx, order.ID)
}

// Stats aggregates today's orders; the day starts at local midnight.
func (s *Service) Stats(ctx context.Context) (*domain.OrderStats, error) {
	now := s.now()
	dayStart := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	return s.repo.Stats(ctx, dayStart)
}
