package store

import (
	"context"
	"sync"

	"github.com/sweetpotato0/chainsocket/memory"
)

var _ memory.VarStore = (*InMemoryStore)(nil)

// InMemoryStore implements VarStore using a process-local map
type InMemoryStore struct {
	vars map[string][]byte
	mu   sync.RWMutex
}

// NewInMemoryStore creates a new in-memory variable store
func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{
		vars: make(map[string][]byte),
	}
}

// Get returns a copy of the stored value
func (s *InMemoryStore) Get(ctx context.Context, key string) ([]byte, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	value, ok := s.vars[key]
	if !ok {
		return nil, false, nil
	}
	return append([]byte(nil), value...), true, nil
}

// Set stores a copy of value under key
func (s *InMemoryStore) Set(ctx context.Context, key string, value []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.vars[key] = append([]byte(nil), value...)
	return nil
}

// Delete removes key
func (s *InMemoryStore) Delete(ctx context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.vars, key)
	return nil
}

// Count returns the number of stored variables
func (s *InMemoryStore) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return len(s.vars)
}
