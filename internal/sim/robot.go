// Package sim drives a fake robot that publishes dashboard telemetry into a
// key/value store. It backs the simulator binary and the in-process demo.
package sim

import (
	"context"
	"math"
	"sync"
	"time"

	"github.com/thedropbears/driverstation/internal/nt"
)

// Entry paths written by the robot code.
var (
	PosePath          = nt.JoinPath("SmartDashboard", "Field", "estimator_pose")
	EffectiveGoalPath = nt.JoinPath("SmartDashboard", "Field", "effective_goal")
	TunnelPath        = nt.JoinPath("components", "indexer", "has_cargo_in_tunnel")
	ChimneyPath       = nt.JoinPath("components", "indexer", "has_cargo_in_chimney")
	TrappedPath       = nt.JoinPath("components", "indexer", "has_trapped_cargo")
)

// Faults alter what the robot publishes.
type Faults struct {
	DropPose   bool `json:"dropPose"`
	DropTarget bool `json:"dropTarget"`
	JamCargo   bool `json:"jamCargo"`
	Freeze     bool `json:"freeze"`
}

// Snapshot is the robot state at one instant.
type Snapshot struct {
	Elapsed time.Duration `json:"elapsed"`
	X       float64       `json:"x"`
	Y       float64       `json:"y"`
	Heading float64       `json:"heading"`
	GoalX   float64       `json:"goalX"`
	GoalY   float64       `json:"goalY"`
	Tunnel  bool          `json:"tunnel"`
	Chimney bool          `json:"chimney"`
	Trapped bool          `json:"trapped"`
	Faults  Faults        `json:"faults"`
}

// Robot drives an ellipse around the field centre and cycles cargo through
// the indexer. It is safe for concurrent use.
type Robot struct {
	FieldWidth  float64
	FieldHeight float64
	// Lap is the time for one full ellipse.
	Lap time.Duration

	mu      sync.Mutex
	elapsed time.Duration
	faults  Faults
	dropped map[string]bool
}

func NewRobot(fieldWidth, fieldHeight float64) *Robot {
	return &Robot{FieldWidth: fieldWidth, FieldHeight: fieldHeight, Lap: 20 * time.Second, dropped: make(map[string]bool)}
}

func (r *Robot) Reset() {
	r.mu.Lock()
	r.elapsed = 0
	r.faults = Faults{}
	r.mu.Unlock()
}

func (r *Robot) Faults() Faults {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.faults
}

func (r *Robot) SetFaults(f Faults) {
	r.mu.Lock()
	r.faults = f
	r.mu.Unlock()
}

// Step advances simulated time unless the robot is frozen.
func (r *Robot) Step(dt time.Duration) {
	r.mu.Lock()
	if !r.faults.Freeze {
		r.elapsed += dt
	}
	r.mu.Unlock()
}

func (r *Robot) Snapshot() Snapshot {
	r.mu.Lock()
	elapsed, faults := r.elapsed, r.faults
	r.mu.Unlock()

	lap := r.Lap
	if lap <= 0 {
		lap = 20 * time.Second
	}
	theta := 2 * math.Pi * float64(elapsed%lap) / float64(lap)
	cx, cy := r.FieldWidth/2, r.FieldHeight/2
	rx, ry := r.FieldWidth*0.35, r.FieldHeight*0.3

	snap := Snapshot{
		Elapsed: elapsed,
		X:       cx + rx*math.Cos(theta),
		Y:       cy + ry*math.Sin(theta),
		GoalX:   cx,
		GoalY:   cy,
		Faults:  faults,
	}
	// Heading follows the tangent of the ellipse.
	dx, dy := -rx*math.Sin(theta), ry*math.Cos(theta)
	snap.Heading = math.Atan2(dy, dx) * 180 / math.Pi

	// Aim a little ahead of the hub while moving.
	snap.GoalX -= dx * 0.1
	snap.GoalY -= dy * 0.1

	phase := (elapsed / (2 * time.Second)) % 4
	snap.Tunnel = phase >= 1
	snap.Chimney = phase >= 2
	snap.Trapped = faults.JamCargo
	return snap
}

// Publish writes the current snapshot. Dropped fields are deleted once so the
// dashboard sees them as absent.
func (r *Robot) Publish(ctx context.Context, w nt.Writer) error {
	snap := r.Snapshot()
	if err := r.putOrDrop(ctx, w, PosePath, snap.Faults.DropPose, nt.DoubleArrayValue([]float64{snap.X, snap.Y, snap.Heading})); err != nil {
		return err
	}
	if err := r.putOrDrop(ctx, w, EffectiveGoalPath, snap.Faults.DropTarget, nt.DoubleArrayValue([]float64{snap.GoalX, snap.GoalY})); err != nil {
		return err
	}
	flags := []struct {
		path  string
		value bool
	}{
		{TunnelPath, snap.Tunnel},
		{ChimneyPath, snap.Chimney},
		{TrappedPath, snap.Trapped},
	}
	for _, flag := range flags {
		if err := w.Put(ctx, flag.path, nt.BooleanValue(flag.value)); err != nil {
			return err
		}
	}
	return nil
}

func (r *Robot) putOrDrop(ctx context.Context, w nt.Writer, path string, drop bool, v nt.Value) error {
	r.mu.Lock()
	wasDropped := r.dropped[path]
	r.mu.Unlock()

	var err error
	switch {
	case drop && wasDropped:
		return nil
	case drop:
		err = w.Delete(ctx, path)
	default:
		err = w.Put(ctx, path, v)
	}
	if err != nil {
		return err
	}
	r.mu.Lock()
	r.dropped[path] = drop
	r.mu.Unlock()
	return nil
}

// Logger matches the application component logger.
type Logger interface {
	Infof(component string, format string, args ...interface{})
	Errorf(component string, format string, args ...interface{})
}

// MinInterval is the shortest publish period Run accepts.
const MinInterval = time.Millisecond

// Run steps and publishes at the given rate until ctx is done. Publish errors
// are logged and retried on the next tick.
func (r *Robot) Run(ctx context.Context, w nt.Writer, interval time.Duration, logger Logger) {
	ticker := time.NewTicker(max(interval, MinInterval))
	defer ticker.Stop()
	last := time.Now()
	failing := false
	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			r.Step(now.Sub(last))
			last = now
			err := r.Publish(ctx, w)
			if err != nil && !failing && logger != nil {
				logger.Errorf("sim", "publish failed: %v", err)
			}
			if err == nil && failing && logger != nil {
				logger.Infof("sim", "publishing again")
			}
			failing = err != nil
		}
	}
}
