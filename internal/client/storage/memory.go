package storage

import (
	"context"
	"sync"
)

// Memory is a process-scoped backend. It plays the part of the browser's
// tab-scoped storage: gone when the process exits.
type Memory struct {
	name string
	mu   sync.RWMutex
	data map[string]string
}

func NewMemory(name string) *Memory {
	return &Memory{name: name, data: make(map[string]string)}
}

func (m *Memory) Name() string { return m.name }

func (m *Memory) Get(_ context.Context, key string) (string, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	v, ok := m.data[key]
	return v, ok, nil
}

func (m *Memory) SetMany(_ context.Context, values map[string]string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for k, v := range values {
		m.data[k] = v
	}
	return nil
}

func (m *Memory) Delete(_ context.Context, keys ...string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, k := range keys {
		delete(m.data, k)
	}
	return nil
}

// Len returns the number of stored keys.
func (m *Memory) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.data)
}
