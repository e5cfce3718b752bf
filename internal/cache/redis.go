package cache

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisStore persists cache envelopes in Redis. The hard ttl passed to Set
// bounds retention (stale fallback only makes sense same-day); logical
// freshness is still judged from the envelope.
type RedisStore struct {
	client *redis.Client
}

// NewRedisStore connects a Redis-backed store.
func NewRedisStore(addr, password string, db int) *RedisStore {
	return &RedisStore{client: redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})}
}

// Ping verifies connectivity so the caller can fall back to memory.
func (s *RedisStore) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

func (s *RedisStore) Get(ctx context.Context, key string) ([]byte, bool, error) {
	b, err := s.client.Get(ctx, key).Bytes()
	if err == redis.Nil {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return b, true, nil
}

func (s *RedisStore) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	return s.client.Set(ctx, key, value, ttl).Err()
}

func (s *RedisStore) Delete(ctx context.Context, key string) error {
	return s.client.Del(ctx, key).Err()
}

// Close releases the underlying connection pool.
func (s *RedisStore) Close() error { return s.client.Close() }
