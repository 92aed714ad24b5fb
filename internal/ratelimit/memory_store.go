package ratelimit

import (
	"context"

	"github.com/yanizio/legacyfilm/internal/cache"
)

// DefaultMemoryKeys bounds MemoryStore when no capacity is given.
const DefaultMemoryKeys = 10000

// MemoryStore keeps sequences in a bounded LRU.  Evicted keys simply start
// with an empty window again.
type MemoryStore struct {
	lru *cache.LRU[string, []int64]
}

// NewMemoryStore returns a store holding at most capacity keys.  capacity < 1
// selects DefaultMemoryKeys.
func NewMemoryStore(capacity int) *MemoryStore {
	if capacity < 1 {
		capacity = DefaultMemoryKeys
	}
	return &MemoryStore{lru: cache.New[string, []int64](capacity)}
}

func (m *MemoryStore) Load(_ context.Context, key string) ([]int64, error) {
	ts, ok := m.lru.Get(key)
	if !ok {
		return []int64{}, nil
	}
	return append([]int64(nil), ts...), nil
}

func (m *MemoryStore) Save(_ context.Context, key string, ts []int64) error {
	m.lru.Add(key, append([]int64(nil), ts...))
	return nil
}
