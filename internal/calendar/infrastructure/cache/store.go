// Package cache memoizes calendar fetches per participant and window.
package cache

import (
	"context"
	"time"

	"github.com/maypok86/otter/v2"
	"github.com/redis/go-redis/v9"
)

// Store holds serialized event lists by key.
type Store interface {
	// Get returns the value and whether it was present.
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, value []byte) error
}

// OtterStore is an in-process store with write-based expiry.
type OtterStore struct {
	cache *otter.Cache[string, []byte]
}

var _ Store = (*OtterStore)(nil)

// NewOtterStore creates a store holding at most maxEntries values for ttl each.
func NewOtterStore(maxEntries int, ttl time.Duration) *OtterStore {
	if maxEntries <= 0 {
		maxEntries = 10_000
	}
	return &OtterStore{
		cache: otter.Must(&otter.Options[string, []byte]{
			MaximumSize:      maxEntries,
			ExpiryCalculator: otter.ExpiryWriting[string, []byte](ttl),
		}),
	}
}

func (s *OtterStore) Get(_ context.Context, key string) ([]byte, bool, error) {
	value, ok := s.cache.GetIfPresent(key)
	return value, ok, nil
}

func (s *OtterStore) Set(_ context.Context, key string, value []byte) error {
	s.cache.Set(key, value)
	return nil
}

// Invalidate drops a key.
func (s *OtterStore) Invalidate(key string) {
	s.cache.Invalidate(key)
}

// RedisKeyPrefix namespaces cached event lists in Redis.
const RedisKeyPrefix = "calcompare:events:"

// RedisStore shares cached event lists between processes.
type RedisStore struct {
	client *redis.Client
	ttl    time.Duration
}

var _ Store = (*RedisStore)(nil)

// NewRedisStore creates a store on an existing client.
func NewRedisStore(client *redis.Client, ttl time.Duration) *RedisStore {
	return &RedisStore{client: client, ttl: ttl}
}

func (s *RedisStore) Get(ctx context.Context, key string) ([]byte, bool, error) {
	val, err := s.client.Get(ctx, RedisKeyPrefix+key).Bytes()
	if err == redis.Nil {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return val, true, nil
}

func (s *RedisStore) Set(ctx context.Context, key string, value []byte) error {
	return s.client.Set(ctx, RedisKeyPrefix+key, value, s.ttl).Err()
}
