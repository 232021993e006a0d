package store

import (
	"context"
	"sync"

	"concerto/internal/links"
)

// MemoryStore is a Store with no persistence. Used in tests and as the
// fallback backend when no persistence is configured.
type MemoryStore struct {
	records map[string]*links.Record
	mu      sync.RWMutex
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		records: make(map[string]*links.Record),
	}
}

// Get retrieves a record.
func (s *MemoryStore) Get(key string) (*links.Record, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	record, ok := s.records[key]
	return record, ok
}

// Put stores a record.
func (s *MemoryStore) Put(ctx context.Context, key string, record *links.Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.records[key] = record
	return nil
}

// Len returns the number of cached records.
func (s *MemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.records)
}

// Backend names the persistence medium.
func (s *MemoryStore) Backend() string {
	return "memory"
}

// Close is a no-op.
func (s *MemoryStore) Close() error {
	return nil
}
