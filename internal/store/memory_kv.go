package store

import (
	"context"
	"sync"

	"prompt-server/internal/interfaces"
)

// Compile-time check to ensure MemoryKeyValueStore implements KeyValueStore
var _ interfaces.KeyValueStore = (*MemoryKeyValueStore)(nil)

// MemoryKeyValueStore is a process-local KeyValueStore. It backs tests and
// single-node development runs where Redis is not available.
type MemoryKeyValueStore struct {
	mu    sync.RWMutex
	items map[string]string
}

// NewMemoryKeyValueStore creates an empty in-memory store.
func NewMemoryKeyValueStore() *MemoryKeyValueStore {
	return &MemoryKeyValueStore{items: make(map[string]string)}
}

func (s *MemoryKeyValueStore) GetItem(ctx context.Context, key string) (string, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	value, ok := s.items[key]
	return value, ok, nil
}

func (s *MemoryKeyValueStore) SetItem(ctx context.Context, key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items[key] = value
	return nil
}
