package cache

import (
	"context"
	"sync"
	"time"
)

type entry[V any] struct {
	expiresAt time.Time
	value     V
}

func (e entry[V]) expired(now time.Time) bool {
	return now.After(e.expiresAt)
}

// Memory is an in-memory cache with TTL-based expiration.
// A background janitor drops expired entries so abandoned keys do not accumulate.
type Memory[V any] struct {
	items           map[string]entry[V]
	done            chan struct{}
	defaultTTL      time.Duration
	cleanupInterval time.Duration
	mu              sync.Mutex
	closed          bool
}

// NewMemory creates a new in-memory cache.
//
// Example:
//
//	c := cache.NewMemory[string](10*time.Minute, time.Minute)
//	defer c.Close()
func NewMemory[V any](defaultTTL, cleanupInterval time.Duration) *Memory[V] {
	if defaultTTL <= 0 {
		defaultTTL = time.Hour
	}

	m := &Memory[V]{
		items:           make(map[string]entry[V]),
		done:            make(chan struct{}),
		defaultTTL:      defaultTTL,
		cleanupInterval: cleanupInterval,
	}

	if cleanupInterval > 0 {
		go m.janitor()
	}

	return m
}

// Get retrieves a value by key.
func (m *Memory[V]) Get(_ context.Context, key string) (V, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	return m.lookup(key, false)
}

// Set stores a value. Non-positive TTLs use the default TTL.
func (m *Memory[V]) Set(_ context.Context, key string, value V, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return ErrClosed
	}
	if ttl <= 0 {
		ttl = m.defaultTTL
	}

	m.items[key] = entry[V]{value: value, expiresAt: time.Now().Add(ttl)}
	return nil
}

// Take retrieves and removes a value.
func (m *Memory[V]) Take(_ context.Context, key string) (V, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	return m.lookup(key, true)
}

// Delete removes a key from the cache.
func (m *Memory[V]) Delete(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return ErrClosed
	}
	delete(m.items, key)
	return nil
}

// Len returns the number of stored entries, including expired ones not yet collected.
func (m *Memory[V]) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.items)
}

// Close stops the janitor. Close is idempotent.
func (m *Memory[V]) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return nil
	}
	m.closed = true
	close(m.done)
	return nil
}

// lookup must be called with the mutex held.
func (m *Memory[V]) lookup(key string, remove bool) (V, error) {
	var zero V
	if m.closed {
		return zero, ErrClosed
	}

	e, ok := m.items[key]
	if !ok {
		return zero, ErrNotFound
	}
	if e.expired(time.Now()) {
		delete(m.items, key)
		return zero, ErrNotFound
	}
	if remove {
		delete(m.items, key)
	}
	return e.value, nil
}

func (m *Memory[V]) janitor() {
	ticker := time.NewTicker(m.cleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-m.done:
			return
		case <-ticker.C:
			m.deleteExpired()
		}
	}
}

func (m *Memory[V]) deleteExpired() {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := time.Now()
	for k, e := range m.items {
		if e.expired(now) {
			delete(m.items, k)
		}
	}
}

var _ Cache[any] = (*Memory[any])(nil)
