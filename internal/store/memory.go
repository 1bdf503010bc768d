package store

import (
	"context"
	"sync"
)

// MemoryStore is the default, process-local backend: a mutex-guarded map
// plus a slice tracking insertion order. Replacing an existing key keeps
// its original position.
type MemoryStore struct {
	mu    sync.RWMutex
	items map[string][]byte
	order []string
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{items: make(map[string][]byte)}
}

// Fetch returns a copy of the stored value.
func (s *MemoryStore) Fetch(_ context.Context, typeName string, keyParts ...string) ([]byte, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	value, ok := s.items[QualifiedKey(typeName, keyParts)]
	if !ok {
		return nil, false, nil
	}
	out := make([]byte, len(value))
	copy(out, value)
	return out, true, nil
}

// Put inserts or replaces a value.
func (s *MemoryStore) Put(_ context.Context, typeName string, keyParts []string, value []byte) error {
	key := QualifiedKey(typeName, keyParts)
	stored := make([]byte, len(value))
	copy(stored, value)

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.items[key]; !exists {
		s.order = append(s.order, key)
	}
	s.items[key] = stored
	return nil
}

// Delete removes a value. Absent keys are a no-op.
func (s *MemoryStore) Delete(_ context.Context, typeName string, keyParts ...string) error {
	key := QualifiedKey(typeName, keyParts)

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.items[key]; !exists {
		return nil
	}
	delete(s.items, key)
	for i, k := range s.order {
		if k == key {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
	return nil
}

// Keys enumerates keys in insertion order, optionally scoped to one type.
func (s *MemoryStore) Keys(_ context.Context, typeName string) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	keys := make([]string, len(s.order))
	copy(keys, s.order)
	return scopeKeys(keys, typeName), nil
}

// ClearAll removes every record of every type.
func (s *MemoryStore) ClearAll(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.items = make(map[string][]byte)
	s.order = nil
	return nil
}

// Close implements Store. Nothing to release.
func (s *MemoryStore) Close() error { return nil }
