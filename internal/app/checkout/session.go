package checkout

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/YelzhanWeb/cafe/internal/adapter/logger"
	"github.com/YelzhanWeb/cafe/internal/app/cart"
	"github.com/YelzhanWeb/cafe/internal/domain"
	"github.com/shopspring/decimal"
)

type State int

const (
	StateClosed State = iota
	StateOpen
	StateSubmitting
)

func (s State) String() string {
	switch s {
	case StateOpen:
		return "open"
	case StateSubmitting:
		return "submitting"
	}
	return "closed"
}

// Result is a successful submission.
type Result struct {
	Reference string
	Draft     domain.OrderDraft
}

// Session is the checkout flow for one cart:
// Closed -> Open -> Submitting -> Closed on success, back to Open on failure.
type Session struct {
	mu        sync.Mutex
	state     State
	cart      *cart.Store
	submitter Submitter
	taxRate   decimal.Decimal
	logger    logger.Logger
	now       func() time.Time
}

func NewSession(c *cart.Store, submitter Submitter, taxRate decimal.Decimal, log logger.Logger) *Session {
	return &Session{
		cart:      c,
		submitter: submitter,
		taxRate:   taxRate,
		logger:    log,
		now:       time.Now,
	}
}

func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Open starts checkout. An empty cart keeps the session closed.
func (s *Session) Open() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.cart.IsEmpty() {
		return domain.ErrEmptyCart
	}
	if s.state == StateClosed {
		s.state = StateOpen
	}
	return nil
}

// Cancel abandons an open checkout.
func (s *Session) Cancel() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state == StateOpen {
		s.state = StateClosed
	}
}

// Submit validates customer, hands the draft to the submitter and takes the
// submitted lines out of the cart. Units added while submitting stay. Any
// failure leaves the cart untouched and the session open.
func (s *Session) Submit(ctx context.Context, customer domain.CustomerInfo) (*Result, error) {
	s.mu.Lock()
	if s.state != StateOpen {
		state := s.state
		s.mu.Unlock()
		return nil, fmt.Errorf("%w: state is %s", domain.ErrCheckoutState, state)
	}

	if err := customer.Validate(); err != nil {
		s.mu.Unlock()
		return nil, err
	}

	lines := s.cart.Lines()
	if len(lines) == 0 {
		s.state = StateClosed
		s.mu.Unlock()
		return nil, domain.ErrEmptyCart
	}

	s.state = StateSubmitting
	s.mu.Unlock()

	draft := domain.OrderDraft{
		Customer:  customer.Normalized(),
		Lines:     lines,
		Summary:   Summarize(lines, s.taxRate),
		CreatedAt: s.now().UTC(),
	}

	ref, err := s.submitter.Submit(ctx, draft)

	s.mu.Lock()
	defer s.mu.Unlock()

	if err != nil {
		s.state = StateOpen
		s.logger.Error("checkout_submit_failed", "Order submission failed", logger.RequestID(ctx), nil, err)
		return nil, err
	}

	s.cart.Deduct(ctx, lines)
	s.state = StateClosed
	s.logger.Info("checkout_completed", "Checkout completed", logger.RequestID(ctx), map[string]interface{}{
		"reference": ref,
		"total":     draft.Summary.Total.StringFixed(2),
	})
	return &Result{Reference: ref, Draft: draft}, nil
}
