package idempotency

import (
	"context"
	"sync"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
)

// memoryCapacity bounds the keys held by one process; the oldest go first.
const memoryCapacity = 10000

// MemoryStore keeps keys in process; used when no redis address is configured.
type MemoryStore struct {
	mu    sync.Mutex
	cache *expirable.LRU[string, Response]
}

func NewMemoryStore(ttl time.Duration) *MemoryStore {
	return &MemoryStore{cache: expirable.NewLRU[string, Response](memoryCapacity, nil, ttl)}
}

func (s *MemoryStore) Check(_ context.Context, scope, key, requestHash string) (*Response, error) {
	stored, ok := s.cache.Get(scope + ":" + key)
	if !ok {
		return nil, nil
	}
	return compare(&stored, requestHash)
}

// Save stores the first response for a key, matching RedisStore.
func (s *MemoryStore) Save(_ context.Context, scope, key string, response Response) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := scope + ":" + key
	if existing, ok := s.cache.Get(id); ok {
		_, err := compare(&existing, response.RequestHash)
		return err
	}
	s.cache.Add(id, response)
	return nil
}
