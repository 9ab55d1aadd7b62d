package providers

import (
	"sync"
	"time"
)

// responseCache is a concurrency-safe TTL cache for decoded forecast
// payloads, keyed by request parameters. It bounds upstream load: the cycle
// fires every minute but the hourly forecast only changes once an hour.
type responseCache[V any] struct {
	mu   sync.RWMutex
	ttl  time.Duration
	data map[string]cacheEntry[V]
}

type cacheEntry[V any] struct {
	value   V
	expires time.Time
}

func newResponseCache[V any](ttl time.Duration) *responseCache[V] {
	return &responseCache[V]{
		ttl:  ttl,
		data: make(map[string]cacheEntry[V]),
	}
}

func (c *responseCache[V]) get(key string, now time.Time) (V, bool) {
	c.mu.RLock()
	entry, ok := c.data[key]
	c.mu.RUnlock()

	if !ok || now.After(entry.expires) {
		var zero V
		return zero, false
	}
	return entry.value, true
}

func (c *responseCache[V]) put(key string, value V, now time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()

	// Drop expired entries opportunistically so the map stays bounded
	// when keys change over time.
	for k, e := range c.data {
		if now.After(e.expires) {
			delete(c.data, k)
		}
	}

	c.data[key] = cacheEntry[V]{value: value, expires: now.Add(c.ttl)}
}
