package dashboard

import (
	"container/list"
	"context"
	"sync"

	"loanlens/ports"
)

// MemoryCache is a bounded in-process view cache that evicts the least
// recently used entry. A zero bound disables caching.
type MemoryCache struct {
	mu      sync.Mutex
	max     int
	entries map[string]*list.Element
	order   *list.List
}

type memoryEntry struct {
	key   string
	value []byte
}

var _ ports.ViewCache = (*MemoryCache)(nil)

// NewMemoryCache creates a cache holding at most max entries
func NewMemoryCache(max int) *MemoryCache {
	return &MemoryCache{
		max:     max,
		entries: make(map[string]*list.Element),
		order:   list.New(),
	}
}

// Get returns ports.ErrCacheMiss when key is absent
func (c *MemoryCache) Get(_ context.Context, key string) ([]byte, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	el, ok := c.entries[key]
	if !ok {
		return nil, ports.ErrCacheMiss
	}
	c.order.MoveToFront(el)
	return el.Value.(*memoryEntry).value, nil
}

// Set stores value, evicting the oldest entry when full
func (c *MemoryCache) Set(_ context.Context, key string, value []byte) error {
	if c.max <= 0 {
		return nil
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	if el, ok := c.entries[key]; ok {
		el.Value.(*memoryEntry).value = value
		c.order.MoveToFront(el)
		return nil
	}

	c.entries[key] = c.order.PushFront(&memoryEntry{key: key, value: value})
	for c.order.Len() > c.max {
		oldest := c.order.Back()
		c.order.Remove(oldest)
		delete(c.entries, oldest.Value.(*memoryEntry).key)
	}
	return nil
}

// Purge drops every entry
func (c *MemoryCache) Purge(_ context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = make(map[string]*list.Element)
	c.order.Init()
	return nil
}

// Len returns the number of cached entries
func (c *MemoryCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.order.Len()
}
