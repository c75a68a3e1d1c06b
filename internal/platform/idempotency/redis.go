package idempotency

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const keyPrefix = "schoolhr:idem:"

type RedisStore struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisStore(client *redis.Client, ttl time.Duration) *RedisStore {
	return &RedisStore{client: client, ttl: ttl}
}

// Connect dials redis and verifies it answers before returning a client.
func Connect(ctx context.Context, addr string) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{Addr: addr})

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}
	return client, nil
}

func (s *RedisStore) Check(ctx context.Context, scope, key, requestHash string) (*Response, error) {
	raw, err := s.client.Get(ctx, keyPrefix+scope+":"+key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("redis get: %w", err)
	}
	var stored Response
	if err := json.Unmarshal(raw, &stored); err != nil {
		return nil, fmt.Errorf("decode stored response: %w", err)
	}
	return compare(&stored, requestHash)
}

// Save stores the first response for a key. A second save with the same
// request hash keeps the original.
func (s *RedisStore) Save(ctx context.Context, scope, key string, response Response) error {
	payload, err := json.Marshal(response)
	if err != nil {
		return err
	}
	id := keyPrefix + scope + ":" + key
	ok, err := s.client.SetNX(ctx, id, payload, s.ttl).Result()
	if err != nil {
		return fmt.Errorf("redis setnx: %w", err)
	}
	if ok {
		return nil
	}
	existing, err := s.Check(ctx, scope, key, response.RequestHash)
	if err != nil {
		return err
	}
	if existing == nil {
		// expired between the two calls
		return s.client.Set(ctx, id, payload, s.ttl).Err()
	}
	return nil
}
