package cache

import (
	"testing"
	"time"
)

func newTestCache(ttl time.Duration) (*GraphCache[string], *time.Time) {
	c := New[string](ttl)
	clock := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	c.now = func() time.Time { return clock }
	return c, &clock
}

func TestGetMiss(t *testing.T) {
	c, _ := newTestCache(time.Minute)
	if _, ok := c.Get("abc"); ok {
		t.Error("empty cache should miss")
	}
}

func TestSetGet(t *testing.T) {
	c, _ := newTestCache(time.Minute)
	c.Set("abc", "graph-a")
	if v, ok := c.Get("abc"); !ok || v != "graph-a" {
		t.Errorf("Get = %q, %v", v, ok)
	}
}

func TestHashMismatchMisses(t *testing.T) {
	c, _ := newTestCache(time.Minute)
	c.Set("abc", "graph-a")
	if _, ok := c.Get("def"); ok {
		t.Error("changed hash should miss")
	}
	// Replacing under a new hash evicts the old entry.
	c.Set("def", "graph-b")
	if _, ok := c.Get("abc"); ok {
		t.Error("old hash should miss after replacement")
	}
}

func TestTTLExpiry(t *testing.T) {
	c, clock := newTestCache(time.Minute)
	c.Set("abc", "graph-a")

	*clock = clock.Add(59 * time.Second)
	if _, ok := c.Get("abc"); !ok {
		t.Error("entry expired early")
	}
	*clock = clock.Add(2 * time.Second)
	if _, ok := c.Get("abc"); ok {
		t.Error("entry should expire after the TTL")
	}
}

func TestInvalidate(t *testing.T) {
	c, _ := newTestCache(time.Minute)
	c.Set("abc", "graph-a")
	c.Invalidate()
	if _, ok := c.Get("abc"); ok {
		t.Error("invalidated entry should miss")
	}
	c.Invalidate() // safe to repeat
}

func TestDefaultTTLFallback(t *testing.T) {
	c := New[int](0)
	if c.ttl != DefaultTTL {
		t.Errorf("ttl = %v, want %v", c.ttl, DefaultTTL)
	}
}
