package secrets

import (
	"context"
	"sync"
)

// MemoryStore is an in-process Store.
type MemoryStore struct {
	mu     sync.RWMutex
	values map[string]string
	errs   map[string]error
	reads  []string
}

// NewMemoryStore creates a store holding the given name/value pairs.
func NewMemoryStore(values map[string]string) *MemoryStore {
	m := &MemoryStore{
		values: make(map[string]string, len(values)),
		errs:   make(map[string]error),
	}
	for k, v := range values {
		m.values[k] = v
	}
	return m
}

// Put sets a parameter value.
func (m *MemoryStore) Put(name, value string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.values[name] = value
}

// FailWith makes reads of name return err.
func (m *MemoryStore) FailWith(name string, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.errs[name] = err
}

// GetParameter implements Store.
func (m *MemoryStore) GetParameter(_ context.Context, name string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.reads = append(m.reads, name)

	if err, ok := m.errs[name]; ok {
		return "", err
	}
	v, ok := m.values[name]
	if !ok {
		return "", notFound(name, "")
	}
	return v, nil
}

// Reads returns the parameter names read so far, in order.
func (m *MemoryStore) Reads() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return append([]string(nil), m.reads...)
}
