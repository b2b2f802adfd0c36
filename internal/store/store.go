// package store provides string-keyed credential persistence.
//
// The engine never touches process-wide state for credentials: callers inject
// a Store so tests can substitute the in-memory implementation.
package store

import (
	"fmt"
	"sync"
)

// ErrKeyNotFound is returned by Get when no value is stored under the key.
var ErrKeyNotFound = fmt.Errorf("key not found")

// Store is durable string-keyed storage for credential material.
//
// Multi-key operations are NOT atomic: a reader may observe a partially
// cleared credential while logout is in flight, and callers must tolerate
// partial completion.
type Store interface {
	Get(key string) (string, error)
	Set(key, value string) error
	Delete(key string) error
}

// Memory is an in-process Store used by tests and ephemeral sessions.
type Memory struct {
	mu     sync.RWMutex
	values map[string]string
}

// NewMemory creates an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{values: make(map[string]string)}
}

func (m *Memory) Get(key string) (string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	value, ok := m.values[key]
	if !ok {
		return "", fmt.Errorf("%w: %s", ErrKeyNotFound, key)
	}
	return value, nil
}

func (m *Memory) Set(key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.values[key] = value
	return nil
}

func (m *Memory) Delete(key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.values, key)
	return nil
}
