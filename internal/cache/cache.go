// Package cache provides the in-memory, time-bounded response cache shared
// by all fetch operations. Entries expire lazily at read time; there is no
// background sweep. The cache is process-local and does not survive restarts.
package cache

import (
	"context"
	"crypto/sha256"
	"fmt"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

// Key builds a deterministic cache key from an operation name and every
// semantically distinct call parameter. Distinct inputs never collide.
func Key(op string, parts ...string) string {
	normalized := op + "|" + strings.Join(parts, "|")
	h := sha256.Sum256([]byte(normalized))
	return fmt.Sprintf("%x", h)
}

type entry struct {
	value      any
	insertedAt time.Time
}

// Cache is a mutex-guarded TTL memoizer. Concurrent misses for the same key
// are deduplicated so the compute function runs at most once per key at a
// time.
type Cache struct {
	mu      sync.Mutex
	entries map[string]entry
	group   singleflight.Group

	now func() time.Time // injectable for testing
}

// New creates an empty cache.
func New() *Cache {
	return &Cache{
		entries: make(map[string]entry),
		now:     time.Now,
	}
}

// WithNow sets the clock used for TTL checks. Testing hook.
func (c *Cache) WithNow(now func() time.Time) *Cache {
	c.now = now
	return c
}

func (c *Cache) lookup(key string, ttl time.Duration) (any, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries[key]
	if !ok {
		return nil, false
	}
	if c.now().Sub(e.insertedAt) > ttl {
		delete(c.entries, key)
		return nil, false
	}
	return e.value, true
}

func (c *Cache) store(key string, value any) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[key] = entry{value: value, insertedAt: c.now()}
}

// Len returns the number of entries currently held, including any that have
// expired but not yet been read.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

// GetOrCompute returns the cached value for key when present and fresh,
// otherwise runs compute, stores its result, and returns it. The boolean
// reports whether the value came from cache; a hit never invokes compute.
// Errors from compute are not cached.
func GetOrCompute[T any](ctx context.Context, c *Cache, key string, ttl time.Duration, compute func(ctx context.Context) (T, error)) (T, bool, error) {
	if v, ok := c.lookup(key, ttl); ok {
		zap.L().Debug("cache hit", zap.String("key", keyPrefix(key)))
		return v.(T), true, nil
	}

	// executed is caller-local: singleflight runs the closure only for the
	// caller that wins the flight, so joined callers leave it false.
	var executed bool
	v, err, _ := c.group.Do(key, func() (any, error) {
		// Re-check under the flight: another caller may have filled the
		// entry while this one was queued.
		if v, ok := c.lookup(key, ttl); ok {
			return v, nil
		}
		executed = true
		computed, err := compute(ctx)
		if err != nil {
			return nil, err
		}
		c.store(key, computed)
		return computed, nil
	})
	if err != nil {
		var zero T
		return zero, false, err
	}
	// Only the caller whose closure ran compute paid for the result. Everyone
	// else, including a winner that found a refilled entry, saw a hit.
	return v.(T), !executed, nil
}

func keyPrefix(key string) string {
	if len(key) > 12 {
		return key[:12]
	}
	return key
}
