package web

import (
	"image"

	"github.com/thedropbears/driverstation/internal/state"
)

// StateSource is the telemetry snapshot the mirror reports.
//
// The concrete implementation is typically *state.Store.
type StateSource interface {
	SnapshotSeq() (state.State, uint64)
}

// FrameSource is the last rendered frame.
//
// The concrete implementation is typically *render.FrameBuffer.
type FrameSource interface {
	Latest() (*image.RGBA, uint64)
}

// sysLogger matches the application logger.
// It is intentionally tiny so callers can pass existing loggers without adapters.
type sysLogger interface {
	Infof(component string, format string, args ...interface{})
	Errorf(component string, format string, args ...interface{})
}

type nopLogger struct{}

func (nopLogger) Infof(string, string, ...interface{})  {}
func (nopLogger) Errorf(string, string, ...interface{}) {}

// MirrorDeps wires the mirror to the running dashboard.
type MirrorDeps struct {
	State  StateSource
	Frames FrameSource
	Logger sysLogger
	// URL is the address viewers should open, encoded by /api/v1/qr.png.
	URL func() string
}

func (d MirrorDeps) withDefaults() MirrorDeps {
	out := d
	if out.State == nil {
		out.State = state.NewStore()
	}
	if out.Frames == nil {
		out.Frames = noFrames{}
	}
	if out.Logger == nil {
		out.Logger = nopLogger{}
	}
	if out.URL == nil {
		out.URL = func() string { return "" }
	}
	return out
}

type noFrames struct{}

func (noFrames) Latest() (*image.RGBA, uint64) { return nil, 0 }
