package nt

import (
	"sort"
	"sync"
)

// Cache is the local mirror of the remote store. Backends write to it from
// their own goroutines; the frame loop only ever reads it, so reads never
// touch the network.
type Cache struct {
	mu      sync.RWMutex
	entries map[string]Value
}

func NewCache() *Cache {
	return &Cache{entries: make(map[string]Value)}
}

func (c *Cache) Get(path string) (Value, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	v, ok := c.entries[path]
	return v, ok
}

func (c *Cache) Set(path string, v Value) {
	c.mu.Lock()
	c.entries[path] = v
	c.mu.Unlock()
}

func (c *Cache) Delete(path string) {
	c.mu.Lock()
	delete(c.entries, path)
	c.mu.Unlock()
}

// Replace swaps the whole mirror for a fresh snapshot.
func (c *Cache) Replace(entries map[string]Value) {
	next := make(map[string]Value, len(entries))
	for k, v := range entries {
		next[k] = v
	}
	c.mu.Lock()
	c.entries = next
	c.mu.Unlock()
}

func (c *Cache) Clear() {
	c.Replace(nil)
}

// Keys returns the sorted entry paths.
func (c *Cache) Keys() []string {
	c.mu.RLock()
	keys := make([]string, 0, len(c.entries))
	for k := range c.entries {
		keys = append(keys, k)
	}
	c.mu.RUnlock()
	sort.Strings(keys)
	return keys
}

func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}
