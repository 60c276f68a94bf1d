package nt

import (
	"context"
	"sync"
)

// MemoryBackend is an in-process remote store. Entries written while the
// store is offline are kept and delivered to the client mirror once it comes
// back online, mimicking a robot that boots after the dashboard.
type MemoryBackend struct {
	mu      sync.Mutex
	online  bool
	entries map[string]Value
	mirror  *Cache
}

func NewMemoryBackend() *MemoryBackend {
	return &MemoryBackend{entries: make(map[string]Value)}
}

func (m *MemoryBackend) Start(address string, cache *Cache) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.mirror = cache
	if m.online {
		m.mirror.Replace(m.entries)
	}
	return nil
}

func (m *MemoryBackend) Connected() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.online && m.mirror != nil
}

// SetOnline toggles reachability of the store.
func (m *MemoryBackend) SetOnline(online bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.online = online
	if online && m.mirror != nil {
		m.mirror.Replace(m.entries)
	}
}

func (m *MemoryBackend) Put(ctx context.Context, path string, v Value) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries[path] = v
	if m.online && m.mirror != nil {
		m.mirror.Set(path, v)
	}
	return nil
}

func (m *MemoryBackend) Delete(ctx context.Context, path string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.entries, path)
	if m.online && m.mirror != nil {
		m.mirror.Delete(path)
	}
	return nil
}

func (m *MemoryBackend) Close() error {
	m.mu.Lock()
	m.mirror = nil
	m.mu.Unlock()
	return nil
}
