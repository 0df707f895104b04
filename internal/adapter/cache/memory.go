package cache

import (
	"context"
	"errors"

	"github.com/bluele/gcache"
)

// MemoryStore is a bounded LRU store that lives for the process lifetime.
type MemoryStore struct {
	lru gcache.Cache
}

// NewMemoryStore creates an LRU store holding at most size entries.
func NewMemoryStore(size int) *MemoryStore {
	return &MemoryStore{lru: gcache.New(size).LRU().Build()}
}

func (s *MemoryStore) Get(_ context.Context, key string) ([]byte, bool, error) {
	v, err := s.lru.Get(key)
	if errors.Is(err, gcache.KeyNotFoundError) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	b, _ := v.([]byte)
	return append([]byte(nil), b...), true, nil
}

func (s *MemoryStore) Put(_ context.Context, key string, value []byte) error {
	return s.lru.Set(key, append([]byte(nil), value...))
}
