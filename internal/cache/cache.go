// Package cache provides a process-local, TTL-bounded cache used in front
// of the counter store. Entries never outlive their TTL and every mutating
// path through the vote engine invalidates the keys it wrote, so a reader
// can never see pre-write state after a successful write from this
// process. The cache is safe to lose; it reconstructs on the next miss.
package cache

import (
	"log/slog"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/mister-vinster/ml-movies/internal/metrics"
)

// Cache is a string-keyed TTL cache. The clock is injected so tests can
// drive expiry with a fake clock.
type Cache[V any] struct {
	name    string
	mu      sync.RWMutex
	entries map[string]*entry[V]
	ttl     time.Duration
	clock   clockwork.Clock
}

type entry[V any] struct {
	value     V
	expiresAt time.Time
}

// New creates a cache with the given TTL. The name labels this cache's
// metrics.
func New[V any](name string, ttl time.Duration, clock clockwork.Clock) *Cache[V] {
	return &Cache[V]{
		name:    name,
		entries: make(map[string]*entry[V]),
		ttl:     ttl,
		clock:   clock,
	}
}

// Get retrieves a cached value if present and not expired.
// Returns the zero value and false on miss or expiry.
func (c *Cache[V]) Get(key string) (V, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	e, ok := c.entries[key]
	if !ok {
		metrics.CacheMisses.WithLabelValues(c.name).Inc()
		var zero V
		return zero, false
	}

	// Expired entries count as misses. They are not deleted here (read
	// lock only); eviction happens periodically.
	if c.clock.Now().After(e.expiresAt) {
		metrics.CacheMisses.WithLabelValues(c.name).Inc()
		var zero V
		return zero, false
	}

	metrics.CacheHits.WithLabelValues(c.name).Inc()
	return e.value, true
}

// Set stores a value with the current timestamp + TTL.
func (c *Cache[V]) Set(key string, value V) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries[key] = &entry[V]{
		value:     value,
		expiresAt: c.clock.Now().Add(c.ttl),
	}
}

// Invalidate removes an entry immediately. Called synchronously by every
// write path that mutates the underlying key.
func (c *Cache[V]) Invalidate(keys ...string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, key := range keys {
		delete(c.entries, key)
	}
}

// Clear removes all entries.
func (c *Cache[V]) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = make(map[string]*entry[V])
}

// Size returns the current number of entries (including expired).
func (c *Cache[V]) Size() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

// EvictExpired removes all expired entries and returns the count evicted.
// Prevents unbounded growth over time.
func (c *Cache[V]) EvictExpired() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.clock.Now()
	evicted := 0

	for key, e := range c.entries {
		if now.After(e.expiresAt) {
			delete(c.entries, key)
			evicted++
		}
	}

	return evicted
}

// StartEvictionTimer starts a background goroutine that periodically
// evicts expired entries. Returns a stop function.
func (c *Cache[V]) StartEvictionTimer(interval time.Duration) func() {
	ticker := c.clock.NewTicker(interval)
	done := make(chan struct{})

	go func() {
		for {
			select {
			case <-ticker.Chan():
				evicted := c.EvictExpired()
				if evicted > 0 {
					slog.Debug("Evicted expired cache entries",
						"cache", c.name,
						"count", evicted,
						"remaining", c.Size(),
					)
					metrics.CacheEvictions.WithLabelValues(c.name).Add(float64(evicted))
				}
				metrics.CacheSize.WithLabelValues(c.name).Set(float64(c.Size()))

			case <-done:
				ticker.Stop()
				return
			}
		}
	}()

	return func() {
		close(done)
	}
}
