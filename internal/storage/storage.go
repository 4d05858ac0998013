// Package storage provides the single key-value store a save lives in.
package storage

import (
	"context"
	"fmt"
	"sync"
)

// KeyValueStore is a string key-value store. Get reports whether the
// key exists.
type KeyValueStore interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, value string) error
	Delete(ctx context.Context, key string) error
}

// Backend names a store implementation.
type Backend string

const (
	BackendMemory Backend = "memory"
	BackendFile   Backend = "file"
	BackendSQLite Backend = "sqlite"
)

// Open creates the store for backend. path is a directory for the file
// backend and a database file for sqlite. The returned close function
// is never nil.
func Open(ctx context.Context, backend Backend, path string) (KeyValueStore, func() error, error) {
	noop := func() error { return nil }

	switch backend {
	case BackendMemory, "":
		return NewMemoryStore(), noop, nil
	case BackendFile:
		return NewFileStore(path), noop, nil
	case BackendSQLite:
		s, err := OpenSQLite(ctx, path)
		if err != nil {
			return nil, noop, err
		}
		return s, s.Close, nil
	default:
		return nil, noop, fmt.Errorf("unknown storage backend: %s", backend)
	}
}

// MemoryStore keeps values in process memory.
type MemoryStore struct {
	mu     sync.RWMutex
	values map[string]string
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{values: make(map[string]string)}
}

func (m *MemoryStore) Get(_ context.Context, key string) (string, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	v, ok := m.values[key]
	return v, ok, nil
}

func (m *MemoryStore) Set(_ context.Context, key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.values[key] = value
	return nil
}

func (m *MemoryStore) Delete(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.values, key)
	return nil
}
