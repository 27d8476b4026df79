// Package cache is the short-TTL memo shared by tasks that hit the same
// low-rate-limit endpoint within one collection cycle.
package cache

import (
	"context"
	"sync"
	"time"
)

// Cache is the interface both backends implement. Get returns a clean miss
// on expiry; Set is last-writer-wins.
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, bool)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration)
	Purge(ctx context.Context)
}

type entry struct {
	value   []byte
	expires time.Time
}

// TTLCache is the in-memory backend. The clock is injected so expiry is
// testable without sleeping.
type TTLCache struct {
	mu      sync.RWMutex
	entries map[string]entry
	now     func() time.Time
}

// NewTTLCache creates an empty cache using the real clock.
func NewTTLCache() *TTLCache {
	return NewTTLCacheWithClock(time.Now)
}

// NewTTLCacheWithClock creates a cache with an injected clock.
func NewTTLCacheWithClock(now func() time.Time) *TTLCache {
	return &TTLCache{entries: make(map[string]entry), now: now}
}

// Get returns the value if present and unexpired.
func (c *TTLCache) Get(_ context.Context, key string) ([]byte, bool) {
	c.mu.RLock()
	e, ok := c.entries[key]
	c.mu.RUnlock()
	if !ok || c.now().After(e.expires) {
		return nil, false
	}
	return e.value, true
}

// Set stores a value with the given TTL, replacing any previous entry.
func (c *TTLCache) Set(_ context.Context, key string, value []byte, ttl time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[key] = entry{value: value, expires: c.now().Add(ttl)}
}

// Purge drops every entry. The collector calls this at each cycle boundary
// so no value outlives the cycle it was fetched in.
func (c *TTLCache) Purge(_ context.Context) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = make(map[string]entry)
}
