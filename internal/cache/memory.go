package cache

import (
	"context"
	"sync"
)

// MemoryStore implements Store with an in-process map.
// This is suitable for single-instance deployments and tests.
type MemoryStore struct {
	mu      sync.RWMutex
	entries map[string]Entry
}

// NewMemoryStore creates a new in-memory response cache.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		entries: make(map[string]Entry),
	}
}

// Get retrieves the entry for key.
func (s *MemoryStore) Get(ctx context.Context, key string) (*Entry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	entry, ok := s.entries[key]
	if !ok {
		return nil, nil // No entry yet, not an error
	}

	// Copy the payload so callers can't mutate the stored entry.
	entry.Payload = append(entry.Payload[:0:0], entry.Payload...)
	return &entry, nil
}

// Put stores the entry, replacing any previous entry with the same key.
func (s *MemoryStore) Put(ctx context.Context, entry Entry) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	entry.Payload = append(entry.Payload[:0:0], entry.Payload...)
	s.entries[entry.Key] = entry
	return nil
}

// Close is a no-op for the in-memory store.
func (s *MemoryStore) Close() error {
	return nil
}
