package loader

import (
	"sync"

	"golang.org/x/sync/singleflight"
)

// Cache memoises loaded file contents. Concurrent loads of the same key
// share one call.
type Cache struct {
	cache   map[string][]byte
	cacheMu sync.RWMutex
	group   singleflight.Group
}

// NewCache creates an empty cache.
func NewCache() *Cache {
	return &Cache{cache: make(map[string][]byte)}
}

// Load returns the cached content for key or calls fn and caches its
// result. Errors are not cached.
func (c *Cache) Load(key string, fn func() ([]byte, error)) ([]byte, error) {
	c.cacheMu.RLock()
	if cached, ok := c.cache[key]; ok {
		c.cacheMu.RUnlock()
		return cached, nil
	}
	c.cacheMu.RUnlock()

	result, err, _ := c.group.Do(key, func() (any, error) {
		c.cacheMu.RLock()
		if cached, ok := c.cache[key]; ok {
			c.cacheMu.RUnlock()
			return cached, nil
		}
		c.cacheMu.RUnlock()

		result, err := fn()
		if err != nil {
			return nil, err
		}

		c.cacheMu.Lock()
		c.cache[key] = result
		c.cacheMu.Unlock()

		return result, nil
	})
	if err != nil {
		return nil, err
	}

	return result.([]byte), nil
}

// Forget drops key from the cache.
func (c *Cache) Forget(key string) {
	c.cacheMu.Lock()
	delete(c.cache, key)
	c.cacheMu.Unlock()
}
