// Package storage persists whole collections as JSON values in the local
// key-value store.
package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"

	"github.com/YelzhanWeb/cafe/internal/domain"
	"github.com/YelzhanWeb/cafe/internal/interfaces"
)

// Persistence loads and saves a full snapshot of a collection.
type Persistence[T any] interface {
	Load(ctx context.Context) ([]T, error)
	Save(ctx context.Context, items []T) error
}

// Versioned persistence records which one-time migrations its data has
// been through.
type Versioned interface {
	Version(ctx context.Context) (int, error)
	SetVersion(ctx context.Context, v int) error
}

// JSON stores a collection under one key.
type JSON[T any] struct {
	kv     interfaces.KeyValueStore
	key    string
	origin string
}

func NewJSON[T any](kv interfaces.KeyValueStore, key, origin string) *JSON[T] {
	return &JSON[T]{kv: kv, key: key, origin: origin}
}

func (p *JSON[T]) Key() string {
	return p.key
}

// Load returns nil with no error when nothing was stored yet.
func (p *JSON[T]) Load(ctx context.Context) ([]T, error) {
	raw, err := p.kv.Get(ctx, p.key)
	if errors.Is(err, domain.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	var items []T
	if err := json.Unmarshal([]byte(raw), &items); err != nil {
		return nil, fmt.Errorf("decode %q: %w", p.key, err)
	}
	return items, nil
}

func (p *JSON[T]) Save(ctx context.Context, items []T) error {
	if items == nil {
		items = []T{}
	}
	data, err := json.Marshal(items)
	if err != nil {
		return fmt.Errorf("encode %q: %w", p.key, err)
	}
	return p.kv.Set(ctx, p.key, string(data), p.origin)
}

func (p *JSON[T]) versionKey() string {
	return p.key + ":version"
}

// Version is 0 when no version was recorded.
func (p *JSON[T]) Version(ctx context.Context) (int, error) {
	raw, err := p.kv.Get(ctx, p.versionKey())
	if errors.Is(err, domain.ErrNotFound) {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("decode %q: %w", p.versionKey(), err)
	}
	return v, nil
}

func (p *JSON[T]) SetVersion(ctx context.Context, v int) error {
	return p.kv.Set(ctx, p.versionKey(), strconv.Itoa(v), p.origin)
}

// Value stores a single string under a key, e.g. a theme preference.
type Value struct {
	kv     interfaces.KeyValueStore
	origin string
}

func NewValue(kv interfaces.KeyValueStore, origin string) *Value {
	return &Value{kv: kv, origin: origin}
}

// Get returns def when key is missing.
func (v *Value) Get(ctx context.Context, key, def string) (string, error) {
	raw, err := v.kv.Get(ctx, key)
	if errors.Is(err, domain.ErrNotFound) {
		return def, nil
	}
	if err != nil {
		return def, err
	}
	return raw, nil
}

func (v *Value) Set(ctx context.Context, key, value string) error {
	return v.kv.Set(ctx, key, value, v.origin)
}
