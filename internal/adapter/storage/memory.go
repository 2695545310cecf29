package storage

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/YelzhanWeb/cafe/internal/domain"
)

// ErrUnavailable is returned by Memory while it is set to fail.
var ErrUnavailable = errors.New("storage unavailable")

// Memory is an in-process key-value store. Fail makes every call error,
// which stands in for a full or locked disk.
type Memory struct {
	mu   sync.Mutex
	data map[string]string
	fail bool
}

func NewMemory() *Memory {
	return &Memory{data: make(map[string]string)}
}

func (m *Memory) Fail(on bool) {
	m.mu.Lock()
	m.fail = on
	m.mu.Unlock()
}

func (m *Memory) Get(_ context.Context, key string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.fail {
		return "", ErrUnavailable
	}
	v, ok := m.data[key]
	if !ok {
		return "", fmt.Errorf("key %q: %w", key, domain.ErrNotFound)
	}
	return v, nil
}

func (m *Memory) Set(_ context.Context, key, value, _ string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.fail {
		return ErrUnavailable
	}
	m.data[key] = value
	return nil
}

func (m *Memory) Delete(_ context.Context, key, _ string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.fail {
		return ErrUnavailable
	}
	delete(m.data, key)
	return nil
}
