// Package cache provides an explicit, caller-owned cache for assembled
// graphs. There is deliberately no package-level instance: lifetime and
// visibility belong to whoever constructs the cache, which keeps TTL and
// invalidation behavior testable.
package cache

import (
	"sync"
	"time"
)

// DefaultTTL is the default time-to-live for cached entries.
const DefaultTTL = 5 * time.Minute

// GraphCache caches a value keyed by the graph data hash, expiring after a
// TTL. Thread-safe. The zero value is not usable; construct with New.
type GraphCache[T any] struct {
	mu       sync.RWMutex
	ttl      time.Duration
	hash     string
	value    T
	hasValue bool
	storedAt time.Time
	now      func() time.Time
}

// New creates a cache with the given TTL; non-positive falls back to
// DefaultTTL.
func New[T any](ttl time.Duration) *GraphCache[T] {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &GraphCache[T]{ttl: ttl, now: time.Now}
}

// Get returns the cached value when the hash matches and the TTL has not
// expired.
func (c *GraphCache[T]) Get(hash string) (T, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	var zero T
	if !c.hasValue || hash != c.hash {
		return zero, false
	}
	if c.now().Sub(c.storedAt) >= c.ttl {
		return zero, false
	}
	return c.value, true
}

// Set stores a value under the given hash, replacing any previous entry.
func (c *GraphCache[T]) Set(hash string, value T) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.hash = hash
	c.value = value
	c.hasValue = true
	c.storedAt = c.now()
}

// Invalidate drops the cached entry.
func (c *GraphCache[T]) Invalidate() {
	c.mu.Lock()
	defer c.mu.Unlock()
	var zero T
	c.hash = ""
	c.value = zero
	c.hasValue = false
}
