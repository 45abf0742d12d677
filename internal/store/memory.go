package store

import (
	"context"
	"sync"
)

// MemoryStore is an in-process Store used for development and tests.
type MemoryStore struct {
	mu       sync.Mutex
	values   map[string][]byte
	counters map[string]int64
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		values:   make(map[string][]byte),
		counters: make(map[string]int64),
	}
}

func (s *MemoryStore) Get(ctx context.Context, key string) ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	value, ok := s.values[key]
	if !ok {
		return nil, ErrKeyNotFound
	}

	// Copy so callers can never mutate stored state through the returned slice.
	out := make([]byte, len(value))
	copy(out, value)
	return out, nil
}

func (s *MemoryStore) Set(ctx context.Context, key string, value []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	stored := make([]byte, len(value))
	copy(stored, value)
	s.values[key] = stored
	return nil
}

func (s *MemoryStore) Delete(ctx context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.values, key)
	return nil
}

func (s *MemoryStore) Incr(ctx context.Context, key string) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.counters[key]++
	return s.counters[key], nil
}

func (s *MemoryStore) ResetCounter(ctx context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.counters[key] = 0
	return nil
}

func (s *MemoryStore) Close() error {
	return nil
}
