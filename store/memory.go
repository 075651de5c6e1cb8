// store/memory.go
package store

import (
	"context"
	"sync"
)

// MemoryStore keeps entries for the lifetime of the process.
type MemoryStore struct {
	entries map[string]string
	mu      sync.RWMutex
	closed  bool
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		entries: make(map[string]string),
	}
}

func (s *MemoryStore) Get(ctx context.Context, key string) (string, bool, error) {
	// Check if the context is canceled or timed out
	select {
	case <-ctx.Done():
		return "", false, ctx.Err()
	default:
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return "", false, ErrClosed
	}
	v, ok := s.entries[key]
	return v, ok, nil
}

func (s *MemoryStore) Save(ctx context.Context, entries map[string]string) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrClosed
	}
	for k, v := range entries {
		s.entries[k] = v
	}
	return nil
}

func (s *MemoryStore) Delete(ctx context.Context, keys ...string) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrClosed
	}
	for _, k := range keys {
		delete(s.entries, k)
	}
	return nil
}

func (s *MemoryStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	return nil
}
