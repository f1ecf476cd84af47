package cartstore

import (
	"context"
	"sync"

	"valentine-storefront/internal/domain"
)

// Memory is a process-local Repository.
type Memory struct {
	mu    sync.Mutex
	items map[domain.CartScope][]byte
}

func NewMemory() *Memory {
	return &Memory{items: make(map[domain.CartScope][]byte)}
}

func (m *Memory) Load(_ context.Context, scope domain.CartScope) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	raw, ok := m.items[scope]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return append([]byte(nil), raw...), nil
}

func (m *Memory) Save(_ context.Context, scope domain.CartScope, payload []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.items[scope] = append([]byte(nil), payload...)
	return nil
}

// Put stores raw bytes; tests use it to plant corrupt payloads.
func (m *Memory) Put(scope domain.CartScope, payload string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.items[scope] = []byte(payload)
}
