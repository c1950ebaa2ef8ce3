package loader

import "sync"

// Cache stores loaded results keyed by resolved URL.
//
// A FileLoader consults its Cache before touching the network and stores
// every successfully decoded payload in it. Implementations must be safe
// for concurrent use.
//
// Errors are never stored: a failed load leaves the cache untouched so a
// later load of the same URL retries the network.
type Cache interface {
	// Get returns the value stored under key and whether it was present.
	Get(key string) (any, bool)

	// Add stores value under key, replacing any previous value.
	Add(key string, value any)

	// Remove deletes the value stored under key, if any.
	Remove(key string)

	// Clear deletes all stored values.
	Clear()
}

// MemoryCache is an in-memory Cache with no eviction.
//
// Values stay until removed or cleared, so long-running processes that
// load many distinct URLs should clear it periodically or supply their
// own bounded implementation.
//
// Example:
//
//	cache := loader.NewMemoryCache()
//	fl := loader.NewFileLoader(manager).SetCache(cache)
type MemoryCache struct {
	mu      sync.RWMutex
	entries map[string]any
}

var _ Cache = (*MemoryCache)(nil)

// NewMemoryCache creates an empty MemoryCache.
func NewMemoryCache() *MemoryCache {
	return &MemoryCache{entries: make(map[string]any)}
}

// Get returns the value stored under key and whether it was present.
func (c *MemoryCache) Get(key string) (any, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	v, ok := c.entries[key]
	return v, ok
}

// Add stores value under key, replacing any previous value.
func (c *MemoryCache) Add(key string, value any) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[key] = value
}

// Remove deletes the value stored under key, if any.
func (c *MemoryCache) Remove(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, key)
}

// Clear deletes all stored values.
func (c *MemoryCache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = make(map[string]any)
}

// Len returns the number of stored values.
func (c *MemoryCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

// NoopCache is a Cache that stores nothing. Every Get is a miss and every
// Add is discarded, so loads always go to the network. It is the default
// cache of a new FileLoader.
type NoopCache struct{}

var _ Cache = NoopCache{}

// Get always reports a miss.
func (NoopCache) Get(string) (any, bool) { return nil, false }

// Add discards the value.
func (NoopCache) Add(string, any) {}

// Remove does nothing.
func (NoopCache) Remove(string) {}

// Clear does nothing.
func (NoopCache) Clear() {}
