package cart

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/YelzhanWeb/cafe/internal/adapter/logger"
	"github.com/YelzhanWeb/cafe/internal/adapter/storage"
	"github.com/YelzhanWeb/cafe/internal/domain"
	"github.com/YelzhanWeb/cafe/internal/interfaces"
)

// KeyPrefix is the storage key of the default cart; per-session carts
// append ":<session>".
const KeyPrefix = "cafeCart"

// Key returns the storage key for a cart session.
func Key(session string) string {
	if session == "" {
		return KeyPrefix
	}
	return KeyPrefix + ":" + session
}

// SessionFromKey is the inverse of Key.
func SessionFromKey(key string) (string, bool) {
	if key == KeyPrefix {
		return "", true
	}
	session, ok := strings.CutPrefix(key, KeyPrefix+":")
	return session, ok && session != ""
}

// DefaultIdle is how long an untouched cart stays loaded.
const DefaultIdle = 30 * time.Minute

// Sessions hands out one Store per cart session, created on first use.
// Carts untouched for longer than the idle timeout are unloaded; their lines
// stay in the key-value store and load again on the next Get.
type Sessions struct {
	mu        sync.Mutex
	kv        interfaces.KeyValueStore
	origin    string
	logger    logger.Logger
	carts     map[string]*loaded
	idle      time.Duration
	lastSweep time.Time
	now       func() time.Time
}

type loaded struct {
	store    *Store
	lastSeen time.Time
}

func NewSessions(kv interfaces.KeyValueStore, origin string, log logger.Logger) *Sessions {
	return &Sessions{
		kv:     kv,
		origin: origin,
		logger: log,
		carts:  make(map[string]*loaded),
		idle:   DefaultIdle,
		now:    time.Now,
	}
}

// SetIdle changes the idle timeout. d <= 0 keeps the default.
func (s *Sessions) SetIdle(d time.Duration) {
	if d <= 0 {
		return
	}
	s.mu.Lock()
	s.idle = d
	s.mu.Unlock()
}

func (s *Sessions) Get(ctx context.Context, session string) *Store {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	s.sweep(ctx, now)

	if c, ok := s.carts[session]; ok {
		c.lastSeen = now
		return c.store
	}
	key := Key(session)
	c := NewStore(ctx, key, storage.NewJSON[domain.CartLine](s.kv, key, s.origin), s.logger)
	s.carts[session] = &loaded{store: c, lastSeen: now}
	return c
}

// Len is the number of carts currently loaded.
func (s *Sessions) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.carts)
}

// sweep unloads idle carts, at most once per idle period. An idle cart with
// no lines also has its storage key removed. Callers hold s.mu.
func (s *Sessions) sweep(ctx context.Context, now time.Time) {
	if now.Sub(s.lastSweep) <= s.idle {
		return
	}
	s.lastSweep = now

	evicted := 0
	for session, c := range s.carts {
		if now.Sub(c.lastSeen) <= s.idle {
			continue
		}
		delete(s.carts, session)
		evicted++
		if c.store.IsEmpty() {
			if err := s.kv.Delete(ctx, Key(session), s.origin); err != nil && !errors.Is(err, domain.ErrNotFound) {
				s.logger.Warn("cart_delete_failed", "Failed to remove idle empty cart", logger.RequestID(ctx),
					map[string]interface{}{"cart": Key(session), "error": err.Error()})
			}
		}
	}
	if evicted > 0 {
		s.logger.Debug("carts_evicted", "Unloaded idle carts", logger.RequestID(ctx),
			map[string]interface{}{"evicted": evicted, "loaded": len(s.carts)})
	}
}

// ReloadKey reloads the cart stored under key if it is loaded here. It
// reports whether the key belonged to a loaded cart.
func (s *Sessions) ReloadKey(ctx context.Context, key string) bool {
	session, ok := SessionFromKey(key)
	if !ok {
		return false
	}

	s.mu.Lock()
	c, ok := s.carts[session]
	s.mu.Unlock()
	if !ok {
		return false
	}
	c.store.Reload(ctx)
	return true
}
