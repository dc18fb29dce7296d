package store

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
)

// MemoryStore implements Store in process memory. Used by tests and when
// the appliance runs without a reachable redis (state then lives only for
// the process lifetime).
type MemoryStore struct {
	mu   sync.RWMutex
	docs map[string][]byte

	// FailWrites makes Set fail, for exercising rollback paths in tests.
	FailWrites bool
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{docs: make(map[string][]byte)}
}

// Get unmarshals the document at key into v.
func (s *MemoryStore) Get(ctx context.Context, key string, v interface{}) error {
	s.mu.RLock()
	data, ok := s.docs[key]
	s.mu.RUnlock()

	if !ok {
		return ErrNotFound
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("failed to unmarshal document %s: %w", key, err)
	}
	return nil
}

// Set stores v at key.
func (s *MemoryStore) Set(ctx context.Context, key string, v interface{}) error {
	if s.FailWrites {
		return fmt.Errorf("failed to set document %s: write disabled", key)
	}

	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("failed to marshal document %s: %w", key, err)
	}

	s.mu.Lock()
	s.docs[key] = data
	s.mu.Unlock()
	return nil
}

// Delete removes the document at key.
func (s *MemoryStore) Delete(ctx context.Context, key string) error {
	s.mu.Lock()
	delete(s.docs, key)
	s.mu.Unlock()
	return nil
}

// Close is a no-op for the memory store.
func (s *MemoryStore) Close() error {
	return nil
}
