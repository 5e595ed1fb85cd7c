package imgnamer

import (
	"context"
	"encoding/json"
	"sync"
)

// MemoryCache is an in-process Cache. Values are stored JSON-encoded so that
// Get behaves like a networked cache (dest receives a copy).
type MemoryCache struct {
	mu    sync.RWMutex
	items map[string][]byte
}

var _ Cache = (*MemoryCache)(nil)

// NewMemoryCache returns an empty cache.
func NewMemoryCache() *MemoryCache {
	return &MemoryCache{items: make(map[string][]byte)}
}

// Key namespaces value under prefix.
func (c *MemoryCache) Key(prefix, value string) string {
	return "imgnamer:" + prefix + ":" + value
}

// Get decodes the value at key into dest and reports whether it was found.
func (c *MemoryCache) Get(_ context.Context, key string, dest any) bool {
	c.mu.RLock()
	data, ok := c.items[key]
	c.mu.RUnlock()
	if !ok {
		return false
	}
	return json.Unmarshal(data, dest) == nil
}

// Set stores value under key. Values that cannot be encoded are dropped.
func (c *MemoryCache) Set(_ context.Context, key string, value any) {
	data, err := json.Marshal(value)
	if err != nil {
		return
	}
	c.mu.Lock()
	c.items[key] = data
	c.mu.Unlock()
}

// Len returns the number of cached entries.
func (c *MemoryCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.items)
}
