// Package nt mirrors a robot-resident key/value store into a local cache
// and exposes it as named tables. The network side is supplied by a Backend
// (Redis, NATS key/value, MQTT retained topics or an in-memory store).
package nt

import (
	"context"
	"errors"
	"sync"
)

var (
	ErrNotConnected   = errors.New("nt: not connected")
	ErrUnknownBackend = errors.New("nt: unknown backend")
)

// Logger matches the component logger used across the application.
type Logger interface {
	Infof(component string, format string, args ...interface{})
	Errorf(component string, format string, args ...interface{})
}

type noopLogger struct{}

func (noopLogger) Infof(string, string, ...interface{})  {}
func (noopLogger) Errorf(string, string, ...interface{}) {}

// Backend keeps a Cache in sync with a remote store.
type Backend interface {
	// Start begins connecting in the background and returns immediately.
	// It is called at most once per backend.
	Start(address string, cache *Cache) error
	// Connected reports liveness of the remote side.
	Connected() bool
	Close() error
}

// Writer is implemented by backends that can publish entries. The dashboard
// never writes; the simulator does.
type Writer interface {
	Put(ctx context.Context, path string, v Value) error
	Delete(ctx context.Context, path string) error
}

// Client is the handle the dashboard polls every frame.
type Client struct {
	backend Backend
	cache   *Cache
	logger  Logger

	mu      sync.Mutex
	address string
	started bool
	failing bool
}

func NewClient(backend Backend, logger Logger) *Client {
	if logger == nil {
		logger = noopLogger{}
	}
	return &Client{backend: backend, cache: NewCache(), logger: logger}
}

// StartClient starts the backend towards address. Repeated calls are no-ops
// once a start succeeded, so it is safe to call every frame.
func (c *Client) StartClient(address string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.started {
		if address != c.address {
			c.logger.Errorf("nt", "already started towards %s, ignoring %s", c.address, address)
		}
		return
	}
	if err := c.backend.Start(address, c.cache); err != nil {
		if !c.failing {
			c.logger.Errorf("nt", "start client %s: %v", address, err)
			c.failing = true
		}
		return
	}
	c.address = address
	c.started = true
	c.failing = false
	c.logger.Infof("nt", "client started towards %s", address)
}

func (c *Client) IsConnected() bool {
	c.mu.Lock()
	started := c.started
	c.mu.Unlock()
	return started && c.backend.Connected()
}

func (c *Client) GetTable(name string) *Table {
	return &Table{cache: c.cache, path: JoinPath(name)}
}

// Cache exposes the local mirror, mainly for diagnostics.
func (c *Client) Cache() *Cache { return c.cache }

func (c *Client) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.started {
		return nil
	}
	c.started = false
	return c.backend.Close()
}
