package cache

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

// Redis is a cache backed by Redis. Values are stored as JSON.
type Redis[V any] struct {
	client     redis.UniversalClient
	prefix     string
	defaultTTL time.Duration
}

// NewRedis creates a new Redis-backed cache.
// The client should be obtained from pkg/redis.Open. Keys are stored as "{prefix}:{key}".
//
// Example:
//
//	client, err := redis.Open(ctx, os.Getenv("REDIS_URL"))
//	c := cache.NewRedis[string](client, "oauth_state", 10*time.Minute)
func NewRedis[V any](client redis.UniversalClient, prefix string, defaultTTL time.Duration) *Redis[V] {
	if defaultTTL <= 0 {
		defaultTTL = time.Hour
	}
	return &Redis[V]{
		client:     client,
		prefix:     prefix,
		defaultTTL: defaultTTL,
	}
}

// Get retrieves a value by key from Redis.
func (r *Redis[V]) Get(ctx context.Context, key string) (V, error) {
	return r.decode(r.client.Get(ctx, r.key(key)).Bytes())
}

// Set stores a value in Redis. Non-positive TTLs use the default TTL.
func (r *Redis[V]) Set(ctx context.Context, key string, value V, ttl time.Duration) error {
	data, err := marshal(value)
	if err != nil {
		return err
	}
	if ttl <= 0 {
		ttl = r.defaultTTL
	}
	return r.client.Set(ctx, r.key(key), data, ttl).Err()
}

// Take retrieves and removes a value with GETDEL (Redis 6.2+).
func (r *Redis[V]) Take(ctx context.Context, key string) (V, error) {
	return r.decode(r.client.GetDel(ctx, r.key(key)).Bytes())
}

// Delete removes a key from Redis.
func (r *Redis[V]) Delete(ctx context.Context, key string) error {
	return r.client.Del(ctx, r.key(key)).Err()
}

// Close is a no-op. The Redis client lifecycle is managed by the caller (see pkg/redis.Shutdown).
func (r *Redis[V]) Close() error {
	return nil
}

func (r *Redis[V]) key(key string) string {
	if r.prefix == "" {
		return key
	}
	return r.prefix + ":" + key
}

func (r *Redis[V]) decode(data []byte, err error) (V, error) {
	if err != nil {
		var zero V
		if errors.Is(err, redis.Nil) {
			return zero, ErrNotFound
		}
		return zero, err
	}
	return unmarshal[V](data)
}

var _ Cache[any] = (*Redis[any])(nil)
