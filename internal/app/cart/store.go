package cart

import (
	"context"
	"fmt"
	"sync"

	"github.com/YelzhanWeb/cafe/internal/adapter/logger"
	"github.com/YelzhanWeb/cafe/internal/adapter/storage"
	"github.com/YelzhanWeb/cafe/internal/domain"
	"github.com/shopspring/decimal"
)

// Store is one shopping cart: an ordered list of lines, one per product
// identity, saved as a whole on every change.
type Store struct {
	mu      sync.Mutex
	lines   []domain.CartLine
	persist storage.Persistence[domain.CartLine]
	logger  logger.Logger
	name    string
}

// NewStore loads the cart from persist. A failed load starts empty.
func NewStore(ctx context.Context, name string, persist storage.Persistence[domain.CartLine], log logger.Logger) *Store {
	s := &Store{persist: persist, logger: log, name: name}
	s.lines = s.load(ctx)
	return s
}

func (s *Store) load(ctx context.Context) []domain.CartLine {
	lines, err := s.persist.Load(ctx)
	if err != nil {
		s.logger.Error("cart_load_failed", "Failed to load cart, starting empty", logger.RequestID(ctx),
			map[string]interface{}{"cart": s.name}, err)
		return nil
	}

	// drop anything a hand-edited or older snapshot could carry
	out := lines[:0]
	for _, l := range lines {
		if l.Quantity < 1 {
			continue
		}
		if l.Quantity > domain.MaxLineQuantity {
			l.Quantity = domain.MaxLineQuantity
		}
		out = append(out, l)
	}
	return out
}

func (s *Store) save(ctx context.Context) {
	if err := s.persist.Save(ctx, s.lines); err != nil {
		s.logger.Error("cart_save_failed", "Failed to persist cart", logger.RequestID(ctx),
			map[string]interface{}{"cart": s.name, "lines": len(s.lines)}, err)
	}
}

func (s *Store) indexOf(id domain.ID) int {
	for i, l := range s.lines {
		if domain.Matches(l, id) {
			return i
		}
	}
	return -1
}

// Add puts one unit of item in the cart. An item already present gains one
// unit; a line at MaxLineQuantity is left alone and ErrQuantityLimit is
// returned. Items without an identity never merge with other lines.
func (s *Store) Add(ctx context.Context, item domain.MenuItem) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if id, ok := item.Identity(); ok {
		if i := s.indexOf(id); i >= 0 {
			if s.lines[i].Quantity >= domain.MaxLineQuantity {
				return fmt.Errorf("%w: %q already at %d", domain.ErrQuantityLimit, s.lines[i].Name, domain.MaxLineQuantity)
			}
			s.lines[i].Quantity++
			s.save(ctx)
			return nil
		}
	}

	s.lines = append(s.lines, domain.CartLineFromMenuItem(item))
	s.save(ctx)
	return nil
}

// Remove deletes the line for id. Unknown ids are a no-op.
func (s *Store) Remove(ctx context.Context, id domain.ID) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.remove(ctx, id)
}

func (s *Store) remove(ctx context.Context, id domain.ID) {
	i := s.indexOf(id)
	if i < 0 {
		return
	}
	s.lines = append(s.lines[:i], s.lines[i+1:]...)
	s.save(ctx)
}

// SetQuantity replaces the quantity of the line for id. n <= 0 removes the
// line. Unknown ids are a no-op.
func (s *Store) SetQuantity(ctx context.Context, id domain.ID, n int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if n <= 0 {
		s.remove(ctx, id)
		return nil
	}
	if n > domain.MaxLineQuantity {
		return fmt.Errorf("%w: max %d per item", domain.ErrQuantityLimit, domain.MaxLineQuantity)
	}

	i := s.indexOf(id)
	if i < 0 {
		return nil
	}
	s.lines[i].Quantity = n
	s.save(ctx)
	return nil
}

func (s *Store) Clear(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lines = nil
	s.save(ctx)
}

// Deduct takes the given lines out of the cart, unit for unit, and keeps
// whatever was added since they were read. A line left with no units is
// removed. Lines without an identity match by name.
func (s *Store) Deduct(ctx context.Context, taken []domain.CartLine) {
	s.mu.Lock()
	defer s.mu.Unlock()

	changed := false
	for _, t := range taken {
		i := s.indexOfLine(t)
		if i < 0 {
			continue
		}
		s.lines[i].Quantity -= t.Quantity
		if s.lines[i].Quantity <= 0 {
			s.lines = append(s.lines[:i], s.lines[i+1:]...)
		}
		changed = true
	}
	if changed {
		s.save(ctx)
	}
}

func (s *Store) indexOfLine(l domain.CartLine) int {
	if id, ok := l.Identity(); ok {
		return s.indexOf(id)
	}
	for i, cur := range s.lines {
		if _, ok := cur.Identity(); !ok && cur.Name == l.Name {
			return i
		}
	}
	return -1
}

// Lines returns a copy of the lines in insertion order.
func (s *Store) Lines() []domain.CartLine {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]domain.CartLine, len(s.lines))
	copy(out, s.lines)
	return out
}

// Total is Σ price × quantity.
func (s *Store) Total() decimal.Decimal {
	s.mu.Lock()
	defer s.mu.Unlock()
	total := decimal.Zero
	for _, l := range s.lines {
		total = total.Add(l.LineTotal())
	}
	return total
}

// Count is the number of units, not lines.
func (s *Store) Count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, l := range s.lines {
		n += l.Quantity
	}
	return n
}

func (s *Store) IsEmpty() bool {
	return s.Count() == 0
}

// Reload replaces the in-memory lines with the persisted snapshot, for when
// another writer changed it. Last write wins.
func (s *Store) Reload(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lines = s.load(ctx)
	s.logger.Debug("cart_reloaded", "Cart reloaded after external change", logger.RequestID(ctx),
		map[string]interface{}{"cart": s.name, "lines": len(s.lines)})
}
