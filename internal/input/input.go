// Package input carries key presses from whichever display host is active
// to the application.
package input

import (
	"context"
	"fmt"
	"sync"
)

// Key names shared by every host.
const (
	KeyEscape = "Escape"
	KeyF4     = "F4"
)

type Event struct {
	Name string
}

// IsExit reports whether the key closes the dashboard.
func (e Event) IsExit() bool { return e.Name == KeyEscape || e.Name == KeyF4 }

// Echo is the console line printed for every key press.
func (e Event) Echo() string { return fmt.Sprintf("key pressed %s", e.Name) }

type Keys interface {
	Start(ctx context.Context) error
	Stop() error
	Events() <-chan Event
}

// Channel is a Keys implementation fed by Push. Hosts that deliver key
// events through callbacks push into it.
type Channel struct {
	mu     sync.Mutex
	ch     chan Event
	closed bool
}

func NewChannel(buffer int) *Channel { return &Channel{ch: make(chan Event, buffer)} }

func (c *Channel) Start(ctx context.Context) error { return nil }

func (c *Channel) Stop() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.closed {
		c.closed = true
		close(c.ch)
	}
	return nil
}

func (c *Channel) Events() <-chan Event { return c.ch }

// Push delivers e without blocking. It reports false when the event was
// dropped because the buffer is full or the channel is stopped.
func (c *Channel) Push(e Event) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return false
	}
	select {
	case c.ch <- e:
		return true
	default:
		return false
	}
}
