package dashboard

import (
	"time"

	"github.com/thedropbears/driverstation/internal/nt"
)

// Remote is the part of the key/value client the dashboard relies on.
// StartClient must be idempotent and must not block.
type Remote interface {
	StartClient(address string)
	IsConnected() bool
	GetTable(name string) *nt.Table
}

type ConnectionState int

const (
	Disconnected ConnectionState = iota
	Connected
)

func (s ConnectionState) String() string {
	if s == Connected {
		return "connected"
	}
	return "disconnected"
}

// Transition is what a single Tick changed.
type Transition int

const (
	NoChange Transition = iota
	BecameConnected
	LostConnection
)

// Connection tracks the connected flag and the uptime of the current
// session. The remote is retried on every tick while disconnected.
type Connection struct {
	remote  Remote
	address string
	logger  Logger

	state  ConnectionState
	uptime time.Duration
}

func NewConnection(remote Remote, address string, logger Logger) *Connection {
	if logger == nil {
		logger = NoopLogger{}
	}
	return &Connection{remote: remote, address: address, logger: logger}
}

func (c *Connection) State() ConnectionState { return c.state }
func (c *Connection) Connected() bool        { return c.state == Connected }
func (c *Connection) Address() string        { return c.address }

// Uptime is the time spent connected in the current or, while
// disconnected, the previous session.
func (c *Connection) Uptime() time.Duration { return c.uptime }

// Tick advances the connection by one frame of length dt.
func (c *Connection) Tick(dt time.Duration) Transition {
	if c.state == Disconnected {
		c.remote.StartClient(c.address)
		if !c.remote.IsConnected() {
			return NoChange
		}
		c.state = Connected
		c.uptime = 0
		c.logger.Infof("conn", "connected to %s", c.address)
		return BecameConnected
	}
	if !c.remote.IsConnected() {
		c.state = Disconnected
		c.logger.Infof("conn", "lost connection to %s after %s", c.address, c.uptime.Truncate(time.Second))
		return LostConnection
	}
	if dt > 0 {
		c.uptime += dt
	}
	return NoChange
}
