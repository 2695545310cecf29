// Package storefront keeps the in-memory stores of one instance in step
// with writes made by other instances sharing the same local store.
package storefront

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/YelzhanWeb/cafe/internal/adapter/logger"
	"github.com/YelzhanWeb/cafe/internal/adapter/sqlite"
	"github.com/YelzhanWeb/cafe/internal/app/cart"
	"github.com/YelzhanWeb/cafe/internal/app/menu"
	"github.com/YelzhanWeb/cafe/internal/interfaces"
)

type Watcher struct {
	origin    string
	carts     *cart.Sessions
	menu      *menu.Store
	publisher interfaces.MessagePublisher
	logger    logger.Logger
}

// NewWatcher wires the reload targets. publisher may be nil when no broker
// is configured; local changes are then not relayed.
func NewWatcher(origin string, carts *cart.Sessions, menuStore *menu.Store, publisher interfaces.MessagePublisher, log logger.Logger) *Watcher {
	return &Watcher{
		origin:    origin,
		carts:     carts,
		menu:      menuStore,
		publisher: publisher,
		logger:    log,
	}
}

func relayed(key string) bool {
	if key == menu.StorageKey {
		return true
	}
	_, ok := cart.SessionFromKey(key)
	return ok
}

// Run consumes the local change feed until ctx is done or the feed closes.
func (w *Watcher) Run(ctx context.Context, changes <-chan sqlite.Change) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case c, ok := <-changes:
			if !ok {
				return nil
			}
			w.apply(ctx, c)
		}
	}
}

func (w *Watcher) apply(ctx context.Context, c sqlite.Change) {
	if !relayed(c.Key) {
		return
	}
	if c.Origin != w.origin {
		w.Reload(ctx, c.Key)
		return
	}
	if w.publisher == nil {
		return
	}

	msg := interfaces.StoreChangedMessage{Origin: w.origin, Key: c.Key, ChangedAt: time.Now().UTC()}
	if err := w.publisher.PublishStoreChanged(ctx, msg); err != nil {
		w.logger.Error("store_change_publish_failed", "Failed to relay local store change", "", map[string]interface{}{"key": c.Key}, err)
	}
}

// Reload re-reads the collection stored under key. Unknown keys and carts
// not loaded by this instance are ignored.
func (w *Watcher) Reload(ctx context.Context, key string) {
	switch {
	case key == menu.StorageKey:
		w.menu.Reload(ctx)
	case w.carts.ReloadKey(ctx, key):
	default:
		return
	}
	w.logger.Debug("store_reloaded", "Reloaded after external change", "", map[string]interface{}{"key": key})
}

// HandleStoreChanged is the broker handler for store_changed messages.
func (w *Watcher) HandleStoreChanged(ctx context.Context, body []byte) error {
	var msg interfaces.StoreChangedMessage
	if err := json.Unmarshal(body, &msg); err != nil {
		return fmt.Errorf("decode store change: %w", err)
	}
	if msg.Origin == w.origin {
		return nil
	}
	w.Reload(ctx, msg.Key)
	return nil
}
