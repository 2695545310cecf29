package menu

import (
	"context"
	"fmt"
	"sync"

	"github.com/YelzhanWeb/cafe/internal/adapter/logger"
	"github.com/YelzhanWeb/cafe/internal/adapter/storage"
	"github.com/YelzhanWeb/cafe/internal/domain"
	"github.com/google/uuid"
)

// StorageKey holds the admin-entered menu items.
const StorageKey = "admin_menu_items"

// discontinuedVersion marks a collection already purged of discontinued
// names.
const discontinuedVersion = 1

// Store is the admin menu collection, kept in insertion order and saved as
// a whole on every mutation.
type Store struct {
	mu           sync.Mutex
	items        []domain.MenuItem
	persist      storage.Persistence[domain.MenuItem]
	discontinued map[string]struct{}
	logger       logger.Logger
	newID        func() (domain.ID, error)
}

// NewStore loads the collection. The first time a collection is opened,
// records named in discontinued are dropped and the trimmed collection is
// written back; items added later under those names are kept.
func NewStore(ctx context.Context, persist storage.Persistence[domain.MenuItem], discontinued []string, log logger.Logger) *Store {
	s := &Store{
		persist:      persist,
		discontinued: make(map[string]struct{}, len(discontinued)),
		logger:       log,
		newID:        newTimeOrderedID,
	}
	for _, name := range discontinued {
		s.discontinued[domain.NameKey(name)] = struct{}{}
	}
	var ok bool
	if s.items, ok = s.load(ctx); ok {
		s.migrate(ctx)
	}
	return s
}

func newTimeOrderedID() (domain.ID, error) {
	id, err := uuid.NewV7()
	if err != nil {
		return "", err
	}
	return domain.ID(id.String()), nil
}

// load reports false when the collection could not be read.
func (s *Store) load(ctx context.Context) ([]domain.MenuItem, bool) {
	items, err := s.persist.Load(ctx)
	if err != nil {
		s.logger.Error("menu_load_failed", "Failed to load menu items, starting empty", logger.RequestID(ctx), nil, err)
		return nil, false
	}
	return items, true
}

// migrate drops discontinued records once per collection. Persistence that
// cannot record the migration is left alone.
func (s *Store) migrate(ctx context.Context) {
	v, ok := s.persist.(storage.Versioned)
	if !ok {
		return
	}
	version, err := v.Version(ctx)
	if err != nil {
		s.logger.Error("menu_migrate_failed", "Failed to read menu version, skipping migration", logger.RequestID(ctx), nil, err)
		return
	}
	if version >= discontinuedVersion {
		return
	}

	kept := make([]domain.MenuItem, 0, len(s.items))
	for _, it := range s.items {
		if _, gone := s.discontinued[domain.NameKey(it.Name)]; gone {
			continue
		}
		kept = append(kept, it)
	}
	if dropped := len(s.items) - len(kept); dropped > 0 {
		s.items = kept
		if err := s.persist.Save(ctx, s.items); err != nil {
			s.logger.Error("menu_migrate_failed", "Failed to persist migrated menu items", logger.RequestID(ctx),
				map[string]interface{}{"items": len(s.items)}, err)
			return
		}
		s.logger.Info("menu_discontinued_removed", "Removed discontinued menu items", logger.RequestID(ctx),
			map[string]interface{}{"removed": dropped})
	}

	if err := v.SetVersion(ctx, discontinuedVersion); err != nil {
		s.logger.Error("menu_migrate_failed", "Failed to record menu version", logger.RequestID(ctx), nil, err)
	}
}

func (s *Store) save(ctx context.Context) {
	if err := s.persist.Save(ctx, s.items); err != nil {
		s.logger.Error("menu_save_failed", "Failed to persist menu items", logger.RequestID(ctx),
			map[string]interface{}{"items": len(s.items)}, err)
	}
}

func (s *Store) indexOf(id domain.ID) int {
	for i, it := range s.items {
		if domain.Matches(it, id) {
			return i
		}
	}
	return -1
}

// Add appends item, assigning a time-ordered id when it has no identity.
func (s *Store) Add(ctx context.Context, item domain.MenuItem) (domain.MenuItem, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	item = item.Clone()
	if _, ok := item.Identity(); !ok {
		id, err := s.newID()
		if err != nil {
			return domain.MenuItem{}, fmt.Errorf("generate menu id: %w", err)
		}
		item.ID = id
	}

	s.items = append(s.items, item)
	s.save(ctx)
	return item.Clone(), nil
}

// Update overlays item onto the record with the same identity. It reports
// false, changing nothing, when no record matches.
func (s *Store) Update(ctx context.Context, item domain.MenuItem) (domain.MenuItem, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	id, ok := item.Identity()
	if !ok {
		return domain.MenuItem{}, false
	}
	i := s.indexOf(id)
	if i < 0 {
		return domain.MenuItem{}, false
	}

	existing := s.items[i]
	updated := existing.Overlay(item)
	updated.ID, updated.StoreID = existing.ID, existing.StoreID
	s.items[i] = updated
	s.save(ctx)
	return updated.Clone(), true
}

// Delete removes the record for id and reports whether one existed.
func (s *Store) Delete(ctx context.Context, id domain.ID) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.indexOf(id)
	if i < 0 {
		return false
	}
	s.items = append(s.items[:i], s.items[i+1:]...)
	s.save(ctx)
	return true
}

// ToggleAvailability flips the availability flag of the record for id.
func (s *Store) ToggleAvailability(ctx context.Context, id domain.ID) (domain.MenuItem, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.indexOf(id)
	if i < 0 {
		return domain.MenuItem{}, false
	}
	s.items[i].IsAvailable = domain.BoolPtr(!s.items[i].Available())
	s.save(ctx)
	return s.items[i].Clone(), true
}

// List returns copies of all records in insertion order.
func (s *Store) List() []domain.MenuItem {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]domain.MenuItem, len(s.items))
	for i, it := range s.items {
		out[i] = it.Clone()
	}
	return out
}

func (s *Store) Get(id domain.ID) (domain.MenuItem, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.indexOf(id)
	if i < 0 {
		return domain.MenuItem{}, false
	}
	return s.items[i].Clone(), true
}

// Reload re-reads the persisted collection after an external change. Last
// write wins.
func (s *Store) Reload(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items, _ = s.load(ctx)
	s.logger.Debug("menu_reloaded", "Menu items reloaded after external change", logger.RequestID(ctx),
		map[string]interface{}{"items": len(s.items)})
}
