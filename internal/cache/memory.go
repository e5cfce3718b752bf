package cache

import (
	"context"
	"sync"
	"time"
)

// MemoryStore is the in-process Store used when Redis is not configured and
// as the test substitute. Writes are whole-value replacements, so readers
// never observe a half-written entry. It deliberately ignores the hard ttl:
// envelopes are kept until overwritten so expired ones can serve as fallback.
type MemoryStore struct {
	mu    sync.RWMutex
	items map[string][]byte
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{items: make(map[string][]byte)}
}

func (s *MemoryStore) Get(_ context.Context, key string) ([]byte, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.items[key]
	if !ok {
		return nil, false, nil
	}
	out := make([]byte, len(v))
	copy(out, v)
	return out, true, nil
}

func (s *MemoryStore) Set(_ context.Context, key string, value []byte, _ time.Duration) error {
	v := make([]byte, len(value))
	copy(v, value)
	s.mu.Lock()
	s.items[key] = v
	s.mu.Unlock()
	return nil
}

func (s *MemoryStore) Delete(_ context.Context, key string) error {
	s.mu.Lock()
	delete(s.items, key)
	s.mu.Unlock()
	return nil
}
