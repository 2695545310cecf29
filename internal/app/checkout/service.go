package checkout

import (
	"context"
	"sync"

	"github.com/YelzhanWeb/cafe/internal/adapter/logger"
	"github.com/YelzhanWeb/cafe/internal/app/cart"
	"github.com/YelzhanWeb/cafe/internal/domain"
	"github.com/shopspring/decimal"
)

// Service runs checkouts against cart sessions. A Session is held only while
// a checkout call is in flight, so a concurrent call for the same cart sees
// it submitting; afterwards the cart alone carries the state.
type Service struct {
	mu        sync.Mutex
	carts     *cart.Sessions
	submitter Submitter
	taxRate   decimal.Decimal
	logger    logger.Logger
	sessions  map[string]*Session
}

func NewService(carts *cart.Sessions, submitter Submitter, taxRate decimal.Decimal, log logger.Logger) *Service {
	return &Service{
		carts:     carts,
		submitter: submitter,
		taxRate:   taxRate,
		logger:    log,
		sessions:  make(map[string]*Session),
	}
}

func (s *Service) session(ctx context.Context, id string) *Session {
	c := s.carts.Get(ctx, id)

	s.mu.Lock()
	defer s.mu.Unlock()
	if sess, ok := s.sessions[id]; ok {
		return sess
	}
	sess := NewSession(c, s.submitter, s.taxRate, s.logger)
	s.sessions[id] = sess
	return sess
}

// release drops sess once no checkout call is submitting through it.
func (s *Service) release(id string, sess *Session) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if cur, ok := s.sessions[id]; ok && cur == sess && sess.State() != StateSubmitting {
		delete(s.sessions, id)
	}
}

// Len is the number of checkout sessions held.
func (s *Service) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sessions)
}

func (s *Service) TaxRate() decimal.Decimal {
	return s.taxRate
}

func (s *Service) Summary(ctx context.Context, cartSession string) domain.Summary {
	return Summarize(s.carts.Get(ctx, cartSession).Lines(), s.taxRate)
}

// Checkout opens the session if needed and submits. An empty cart is
// rejected before any draft is built.
func (s *Service) Checkout(ctx context.Context, cartSession string, customer domain.CustomerInfo) (*Result, error) {
	sess := s.session(ctx, cartSession)
	defer s.release(cartSession, sess)

	if err := sess.Open(); err != nil {
		return nil, err
	}
	return sess.Submit(ctx, customer)
}
