package checkout

import (
	"context"
	"fmt"
	"strings"

	"github.com/YelzhanWeb/cafe/internal/adapter/logger"
	"github.com/YelzhanWeb/cafe/internal/domain"
	"github.com/YelzhanWeb/cafe/internal/interfaces"
	"github.com/google/uuid"
)

// Submitter hands a finished draft to whoever fulfils orders and returns
// a reference for the customer.
type Submitter interface {
	Submit(ctx context.Context, draft domain.OrderDraft) (string, error)
}

func newReference() (string, error) {
	id, err := uuid.NewV7()
	if err != nil {
		return "", fmt.Errorf("generate order reference: %w", err)
	}
	return "WEB-" + strings.ToUpper(id.String()[:8]) + "-" + strings.ToUpper(id.String()[24:]), nil
}

// LogSubmitter only logs the draft. It is used when no broker is configured.
type LogSubmitter struct {
	logger logger.Logger
}

func NewLogSubmitter(log logger.Logger) *LogSubmitter {
	return &LogSubmitter{logger: log}
}

func (s *LogSubmitter) Submit(ctx context.Context, draft domain.OrderDraft) (string, error) {
	ref, err := newReference()
	if err != nil {
		return "", err
	}
	s.logger.Info("order_submitted", "Checkout order received", logger.RequestID(ctx), map[string]interface{}{
		"reference": ref,
		"customer":  draft.Customer.Name,
		"items":     draft.Summary.ItemCount,
		"total":     draft.Summary.Total.StringFixed(2),
	})
	return ref, nil
}

// PublishSubmitter announces the draft on the order exchange.
type PublishSubmitter struct {
	publisher interfaces.MessagePublisher
}

func NewPublishSubmitter(publisher interfaces.MessagePublisher) *PublishSubmitter {
	return &PublishSubmitter{publisher: publisher}
}

func (s *PublishSubmitter) Submit(ctx context.Context, draft domain.OrderDraft) (string, error) {
	ref, err := newReference()
	if err != nil {
		return "", err
	}

	msg := interfaces.OrderMessage{
		OrderNumber: ref,
		Source:      interfaces.SourceCheckout,
		Customer:    draft.Customer,
		Items:       make([]interfaces.OrderLineMessage, len(draft.Lines)),
		Subtotal:    draft.Summary.Subtotal,
		Tax:         draft.Summary.Tax,
		Total:       draft.Summary.Total,
		PlacedAt:    draft.CreatedAt,
	}
	for i, l := range draft.Lines {
		msg.Items[i] = interfaces.OrderLineMessage{
			Name:       l.Name,
			Quantity:   l.Quantity,
			UnitPrice:  l.Price,
			TotalPrice: l.LineTotal(),
		}
	}

	if err := s.publisher.PublishOrder(ctx, msg); err != nil {
		return "", fmt.Errorf("publish order %s: %w", ref, err)
	}
	return ref, nil
}
