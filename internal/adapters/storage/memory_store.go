package storage

import (
	"context"
	"sync"

	"github.com/mikey/llm-inbox-prioritizer/internal/core"
)

// MemoryStore is an in-memory implementation of the Store interface
type MemoryStore struct {
	entries map[string][]byte
	mu      sync.RWMutex
}

// NewMemoryStore creates a new in-memory store
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		entries: make(map[string][]byte),
	}
}

// Get retrieves the document stored under key
func (s *MemoryStore) Get(ctx context.Context, key string) ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	value, ok := s.entries[key]
	if !ok {
		return nil, core.ErrNotFound
	}
	return append([]byte(nil), value...), nil
}

// Set replaces the document stored under key
func (s *MemoryStore) Set(ctx context.Context, key string, value []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.entries[key] = append([]byte(nil), value...)
	return nil
}

// Delete removes the document stored under key
func (s *MemoryStore) Delete(ctx context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.entries, key)
	return nil
}
