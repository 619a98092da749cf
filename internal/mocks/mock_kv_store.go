package mocks

import (
	"context"
	"sync"

	"github.com/you/dairyshell/domain"
)

// MockKeyValueStore implements domain.KeyValueStore for testing.
// Without overrides it behaves as an in-memory store.
type MockKeyValueStore struct {
	GetFunc    func(ctx context.Context, key string) (string, error)
	SetFunc    func(ctx context.Context, entries map[string]string) error
	DeleteFunc func(ctx context.Context, keys ...string) error
	CloseFunc  func() error

	mu          sync.Mutex
	data        map[string]string
	GetCalls    []string
	SetCalls    []map[string]string
	DeleteCalls [][]string
}

// NewMockKeyValueStore creates an empty MockKeyValueStore
func NewMockKeyValueStore() *MockKeyValueStore {
	return &MockKeyValueStore{data: make(map[string]string)}
}

// Seed stores a value directly, bypassing call tracking
func (m *MockKeyValueStore) Seed(key, value string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[key] = value
}

// Value returns the stored value and whether it exists
func (m *MockKeyValueStore) Value(key string) (string, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.data[key]
	return v, ok
}

// Get reads a key
func (m *MockKeyValueStore) Get(ctx context.Context, key string) (string, error) {
	m.mu.Lock()
	m.GetCalls = append(m.GetCalls, key)
	m.mu.Unlock()

	if m.GetFunc != nil {
		return m.GetFunc(ctx, key)
	}
	if v, ok := m.Value(key); ok {
		return v, nil
	}
	return "", domain.ErrKeyNotFound
}

// Set writes all entries
func (m *MockKeyValueStore) Set(ctx context.Context, entries map[string]string) error {
	copied := make(map[string]string, len(entries))
	for k, v := range entries {
		copied[k] = v
	}

	m.mu.Lock()
	m.SetCalls = append(m.SetCalls, copied)
	m.mu.Unlock()

	if m.SetFunc != nil {
		return m.SetFunc(ctx, entries)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	for k, v := range copied {
		m.data[k] = v
	}
	return nil
}

// Delete removes keys
func (m *MockKeyValueStore) Delete(ctx context.Context, keys ...string) error {
	m.mu.Lock()
	m.DeleteCalls = append(m.DeleteCalls, append([]string(nil), keys...))
	m.mu.Unlock()

	if m.DeleteFunc != nil {
		return m.DeleteFunc(ctx, keys...)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	for _, k := range keys {
		delete(m.data, k)
	}
	return nil
}

// Close closes the store
func (m *MockKeyValueStore) Close() error {
	if m.CloseFunc != nil {
		return m.CloseFunc()
	}
	return nil
}

// Compile-time interface compliance verification
var _ domain.KeyValueStore = (*MockKeyValueStore)(nil)
