package cache

import (
	"context"
	"encoding/json"
	"errors"
	"time"
)

// Sentinel errors for cache operations.
var (
	// ErrNotFound is returned when a key does not exist in the cache or has expired.
	ErrNotFound = errors.New("cache: entry not found")

	// ErrClosed is returned when an operation is attempted on a closed cache.
	ErrClosed = errors.New("cache: closed")

	// ErrMarshal is returned when value serialization fails.
	ErrMarshal = errors.New("cache: failed to marshal value")

	// ErrUnmarshal is returned when value deserialization fails.
	ErrUnmarshal = errors.New("cache: failed to unmarshal value")
)

// Cache is a key-value store with per-entry TTL.
// A zero TTL passed to Set means the backend's default TTL.
type Cache[V any] interface {
	// Get retrieves a value by key.
	// Returns ErrNotFound if the key does not exist or has expired.
	Get(ctx context.Context, key string) (V, error)

	// Set stores a value with the given TTL.
	Set(ctx context.Context, key string, value V, ttl time.Duration) error

	// Take retrieves and removes a value in one atomic step, so that
	// concurrent callers cannot both observe it.
	// Returns ErrNotFound if the key does not exist or has expired.
	Take(ctx context.Context, key string) (V, error)

	// Delete removes a key from the cache.
	Delete(ctx context.Context, key string) error

	// Close releases resources (stops background goroutines, etc.).
	Close() error
}

func marshal[V any](v V) ([]byte, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, errors.Join(ErrMarshal, err)
	}
	return data, nil
}

func unmarshal[V any](data []byte) (V, error) {
	var v V
	if err := json.Unmarshal(data, &v); err != nil {
		return v, errors.Join(ErrUnmarshal, err)
	}
	return v, nil
}
