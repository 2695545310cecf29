// Package kitchen prints incoming orders as kitchen tickets. It is the
// consumer side of the order exchange, run by the subscribe command.
package kitchen

import (
	"context"
	"fmt"
	"io"
	"sync"

	"github.com/YelzhanWeb/cafe/internal/adapter/logger"
	"github.com/YelzhanWeb/cafe/internal/currency"
	"github.com/YelzhanWeb/cafe/internal/interfaces"
)

type Service struct {
	mu     sync.Mutex
	out    io.Writer
	money  *currency.Formatter
	logger logger.Logger
	seen   int
}

func NewService(out io.Writer, money *currency.Formatter, logger logger.Logger) *Service {
	return &Service{out: out, money: money, logger: logger}
}

// ProcessOrder prints one ticket per order.
func (s *Service) ProcessOrder(ctx context.Context, msg interfaces.OrderMessage) error {
	if msg.OrderNumber == "" || len(msg.Items) == 0 {
		return fmt.Errorf("order message without number or items")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.logger.Debug("order_processing_started", fmt.Sprintf("Processing order %s", msg.OrderNumber), msg.OrderNumber,
		map[string]interface{}{"source": msg.Source, "items": len(msg.Items)})

	if err := s.printTicket(msg); err != nil {
		return fmt.Errorf("print ticket %s: %w", msg.OrderNumber, err)
	}
	s.seen++

	s.logger.Info("order_ticket_printed", fmt.Sprintf("Order %s sent to kitchen", msg.OrderNumber), msg.OrderNumber,
		map[string]interface{}{"total": msg.Total.StringFixed(2)})
	return nil
}

func (s *Service) printTicket(msg interfaces.OrderMessage) error {
	header := msg.OrderNumber
	switch {
	case msg.TableNumber != nil:
		header += fmt.Sprintf("  table %d", *msg.TableNumber)
	case msg.OrderType != "":
		header += "  " + string(msg.OrderType)
	default:
		header += "  web"
	}
	if _, err := fmt.Fprintf(s.out, "== %s ==\n", header); err != nil {
		return err
	}
	if msg.Customer.Name != "" {
		fmt.Fprintf(s.out, "for: %s %s\n", msg.Customer.Name, msg.Customer.Phone)
	}
	for _, it := range msg.Items {
		fmt.Fprintf(s.out, "%3dx %-24s %12s\n", it.Quantity, it.Name, s.money.Format(it.TotalPrice))
	}
	if msg.Customer.SpecialInstructions != "" {
		fmt.Fprintf(s.out, "note: %s\n", msg.Customer.SpecialInstructions)
	}
	_, err := fmt.Fprintf(s.out, "total %s (tax %s)\n\n", s.money.Format(msg.Total), s.money.Format(msg.Tax))
	return err
}

// Processed is the number of tickets printed so far.
func (s *Service) Processed() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.seen
}
