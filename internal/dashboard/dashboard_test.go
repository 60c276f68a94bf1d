package dashboard

import (
	"context"
	"image"
	"math"
	"testing"
	"time"

	"gonum.org/v1/gonum/spatial/r2"

	"github.com/thedropbears/driverstation/internal/nt"
	"github.com/thedropbears/driverstation/internal/render"
)

const tick = 125 * time.Millisecond

type harness struct {
	t       *testing.T
	backend *nt.MemoryBackend
	client  *nt.Client
	dash    *Dashboard
}

func newHarness(t *testing.T, profile string) *harness {
	t.Helper()
	p, err := LookupProfile(profile)
	if err != nil {
		t.Fatalf("lookup: %v", err)
	}
	backend := nt.NewMemoryBackend()
	client := nt.NewClient(backend, nil)
	t.Cleanup(func() { _ = client.Close() })
	return &harness{t: t, backend: backend, client: client, dash: New(p, client, Options{})}
}

func (h *harness) put(path string, v nt.Value) {
	h.t.Helper()
	if err := h.backend.Put(context.Background(), path, v); err != nil {
		h.t.Fatalf("put %s: %v", path, err)
	}
}

func (h *harness) drop(path string) {
	h.t.Helper()
	if err := h.backend.Delete(context.Background(), path); err != nil {
		h.t.Fatalf("delete %s: %v", path, err)
	}
}

func (h *harness) ticks(n int) {
	for i := 0; i < n; i++ {
		h.dash.Update(tick)
	}
}

func (h *harness) status() string { return h.dash.Scene().Status.Text }

func near(a, b float64) bool { return math.Abs(a-b) < 1e-6 }

var (
	posePath    = nt.JoinPath(FieldTable, PoseKey)
	goalPath    = nt.JoinPath(FieldTable, EffectiveGoalKey)
	tunnelPath  = nt.JoinPath(IndexerTable, TunnelKey)
	chimneyPath = nt.JoinPath(IndexerTable, ChimneyKey)
	trappedPath = nt.JoinPath(IndexerTable, TrappedKey)
)

func TestStandbyWhileDisconnected(t *testing.T) {
	h := newHarness(t, "classic")
	want := "No connection, waiting for 10.47.74.2"
	if h.status() != want {
		t.Fatalf("initial status=%q", h.status())
	}
	h.ticks(10)
	if h.status() != want {
		t.Fatalf("status=%q want %q", h.status(), want)
	}
	if h.dash.Connection().State() != Disconnected {
		t.Fatal("expected disconnected")
	}
}

func TestConnectScenarioCountsUptime(t *testing.T) {
	h := newHarness(t, "classic")
	h.ticks(3)

	h.backend.SetOnline(true)
	h.ticks(1)
	if h.status() != "Uptime: 0 s" {
		t.Fatalf("connect frame status=%q", h.status())
	}
	if h.dash.Connection().Uptime() != 0 {
		t.Fatalf("uptime=%v want 0", h.dash.Connection().Uptime())
	}

	// 5 simulated seconds.
	h.ticks(40)
	if h.status() != "Uptime: 5 s" {
		t.Fatalf("status=%q want %q", h.status(), "Uptime: 5 s")
	}
}

func TestUptimeIncreasesByFrameDelta(t *testing.T) {
	h := newHarness(t, "classic")
	h.backend.SetOnline(true)
	h.ticks(1)

	prev := h.dash.Connection().Uptime()
	for i := 0; i < 20; i++ {
		dt := time.Duration(i+1) * time.Millisecond
		h.dash.Update(dt)
		got := h.dash.Connection().Uptime()
		if got != prev+dt {
			t.Fatalf("tick %d: uptime=%v want %v", i, got, prev+dt)
		}
		prev = got
	}
}

func TestLivenessLossRevertsToStandby(t *testing.T) {
	h := newHarness(t, "classic")
	h.backend.SetOnline(true)
	h.ticks(1 + 96) // 12 s
	if h.status() != "Uptime: 12 s" {
		t.Fatalf("status=%q", h.status())
	}

	h.backend.SetOnline(false)
	h.ticks(1)
	if h.status() != StandbyText(DefaultAddress) {
		t.Fatalf("status=%q want standby", h.status())
	}
	h.ticks(5)
	if h.status() != StandbyText(DefaultAddress) {
		t.Fatalf("status=%q want standby while down", h.status())
	}

	h.backend.SetOnline(true)
	h.ticks(1)
	if h.status() != "Uptime: 0 s" {
		t.Fatalf("reconnect status=%q", h.status())
	}
}

func TestPoseMapsToScreen(t *testing.T) {
	h := newHarness(t, "classic")
	h.backend.SetOnline(true)
	h.put(posePath, nt.DoubleArrayValue([]float64{1.0, 2.0, 30}))
	h.ticks(1)

	scene := h.dash.Scene()
	f := scene.Scale
	if !near(f, 100) {
		t.Fatalf("scale=%v want 100", f)
	}
	if !near(scene.Robot.X, f*1.0) || !near(scene.Robot.Y, f*2.0) {
		t.Fatalf("robot at (%v,%v) want (%v,%v)", scene.Robot.X, scene.Robot.Y, f, 2*f)
	}
	if scene.Robot.Rotation != -30 || scene.RobotFacing.Rotation != -30 {
		t.Fatalf("rotation=%v/%v want -30", scene.Robot.Rotation, scene.RobotFacing.Rotation)
	}
}

func TestAbsentFieldsKeepPreviousValues(t *testing.T) {
	h := newHarness(t, "classic")
	h.backend.SetOnline(true)
	h.put(posePath, nt.DoubleArrayValue([]float64{3, 4, 90}))
	h.put(goalPath, nt.DoubleArrayValue([]float64{5, 6}))
	h.ticks(1)

	scene := h.dash.Scene()
	robot, goal := scene.Robot, scene.EffectiveGoal

	h.drop(posePath)
	h.put(goalPath, nt.DoubleArrayValue([]float64{7})) // short arrays are ignored
	h.ticks(3)
	if scene.Robot != robot {
		t.Fatalf("robot changed on absent read: %+v -> %+v", robot, scene.Robot)
	}
	if scene.EffectiveGoal != goal {
		t.Fatalf("goal changed on short read: %+v -> %+v", goal, scene.EffectiveGoal)
	}

	h.put(posePath, nt.StringValue("not a pose"))
	h.ticks(1)
	if scene.Robot != robot {
		t.Fatalf("robot changed on mistyped read: %+v", scene.Robot)
	}
}

func TestCargoColours(t *testing.T) {
	h := newHarness(t, "classic")
	h.backend.SetOnline(true)
	h.ticks(1)
	scene := h.dash.Scene()
	for i, c := range scene.Indicators {
		if c.Color != render.Gray {
			t.Fatalf("indicator %d starts %v want gray", i, c.Color)
		}
	}

	h.put(tunnelPath, nt.BooleanValue(true))
	h.put(chimneyPath, nt.BooleanValue(true))
	h.put(trappedPath, nt.BooleanValue(true))
	h.ticks(1)
	if scene.Indicators[TunnelIndicator].Color != render.Yellow ||
		scene.Indicators[ChimneyIndicator].Color != render.Yellow ||
		scene.Indicators[TrappedIndicator].Color != render.Red {
		t.Fatalf("indicators=%+v", scene.Indicators)
	}

	// Cargo is never cached: a missing flag reads false again.
	h.drop(tunnelPath)
	h.put(chimneyPath, nt.DoubleValue(1))
	h.ticks(1)
	if scene.Indicators[TunnelIndicator].Color != render.Gray || scene.Indicators[ChimneyIndicator].Color != render.Gray {
		t.Fatalf("indicators=%+v", scene.Indicators)
	}
}

func TestIndicatorColorIsTwoValued(t *testing.T) {
	for slot := TunnelIndicator; slot <= TrappedIndicator; slot++ {
		off := IndicatorColor(slot, false)
		on := IndicatorColor(slot, true)
		if off != render.Gray {
			t.Errorf("slot %d off=%v", slot, off)
		}
		if on == off {
			t.Errorf("slot %d on and off share %v", slot, on)
		}
		if IndicatorColor(slot, true) != on {
			t.Errorf("slot %d not deterministic", slot)
		}
	}
}

func TestResizeKeepsEdgeOffsets(t *testing.T) {
	h := newHarness(t, "classic")
	h.dash.Resize(2000, 1000)

	scene := h.dash.Scene()
	for i, c := range scene.Indicators {
		wantX := 30 + 70*float64(i)
		if c.X != wantX || c.Y != 1000-120 {
			t.Fatalf("indicator %d at (%v,%v) want (%v,%v)", i, c.X, c.Y, wantX, 1000-120.0)
		}
	}
	if scene.Status.X != 0 || scene.Status.Y != 1000 || scene.Status.Width != 2000 {
		t.Fatalf("status=%+v", scene.Status)
	}
}

func TestResizeRecomputesScale(t *testing.T) {
	h := newHarness(t, "classic")
	h.backend.SetOnline(true)
	h.put(posePath, nt.DoubleArrayValue([]float64{1, 2, 0}))
	h.ticks(1)

	h.dash.Resize(823, 823)
	scene := h.dash.Scene()
	if !near(scene.Scale, 50) {
		t.Fatalf("scale=%v want 50", scene.Scale)
	}
	if !near(scene.Robot.X, 50) || !near(scene.Robot.Y, 100) {
		t.Fatalf("robot not re-placed: (%v,%v)", scene.Robot.X, scene.Robot.Y)
	}
}

func TestKeepScaleOnResize(t *testing.T) {
	p, _ := LookupProfile("classic")
	p.KeepScaleOnResize = true
	scene := NewScene(p, nil, nil)
	scene.Resize(400, 200)
	if scene.Scale != 100 {
		t.Fatalf("scale=%v want 100", scene.Scale)
	}
}

func TestFieldProfileAnchorsToBackground(t *testing.T) {
	p, _ := LookupProfile("field")
	scene := NewScene(p, nil, nil)

	box := scene.Background.Box
	if scene.Origin != box.Min {
		t.Fatalf("origin=%v want image corner %v", scene.Origin, box.Min)
	}
	if !near(scene.Scale, (box.Max.X-box.Min.X)/p.FieldWidth) {
		t.Fatalf("scale=%v not derived from image width", scene.Scale)
	}
	if box.Max.Y > float64(p.WindowHeight)-p.HeaderHeight {
		t.Fatalf("image %v overlaps header", box)
	}
	if !scene.Separator.Visible || scene.Separator.Y1 != float64(p.WindowHeight)-p.HeaderHeight {
		t.Fatalf("separator=%+v", scene.Separator)
	}
	if scene.Background.Visible {
		t.Fatal("background visible without an image")
	}

	scene.ApplyTarget(TargetPosition{X: 1, Y: 1})
	if !near(scene.EffectiveGoal.X, box.Min.X+scene.Scale) || !near(scene.EffectiveGoal.Y, box.Min.Y+scene.Scale) {
		t.Fatalf("target=(%v,%v)", scene.EffectiveGoal.X, scene.EffectiveGoal.Y)
	}
}

func TestFieldProfileResizeRefitsBackground(t *testing.T) {
	p, _ := LookupProfile("field")
	scene := NewScene(p, image.NewRGBA(image.Rect(0, 0, 1200, 600)), nil)
	scene.ApplyTarget(TargetPosition{X: 1, Y: 1})
	before := scene.Background.Box
	oldScale := scene.Scale

	const w, h = 1600, 1000
	scene.Resize(w, h)

	box := scene.Background.Box
	if box == before {
		t.Fatal("background box unchanged after resize")
	}
	if !scene.Background.Visible {
		t.Fatal("background hidden after resize")
	}
	if box.Max.Y > h-p.HeaderHeight {
		t.Fatalf("image %v overlaps header", box)
	}
	// 1600 wide minus two margins, and 2:1 fits inside the band below the header.
	if !near(box.Max.X-box.Min.X, w-2*p.Margin) {
		t.Fatalf("image width=%v want %v", box.Max.X-box.Min.X, w-2*p.Margin)
	}
	if !near((box.Max.X-box.Min.X)/(box.Max.Y-box.Min.Y), p.FieldWidth/p.FieldHeight) {
		t.Fatalf("image %v lost the field aspect", box)
	}
	if scene.Separator.Y1 != h-p.HeaderHeight || scene.Separator.X2 != w {
		t.Fatalf("separator=%+v", scene.Separator)
	}
	if scene.Origin != box.Min {
		t.Fatalf("origin=%v want image corner %v", scene.Origin, box.Min)
	}
	if near(scene.Scale, oldScale) || !near(scene.Scale, (box.Max.X-box.Min.X)/p.FieldWidth) {
		t.Fatalf("scale=%v (was %v) not refitted", scene.Scale, oldScale)
	}
	if !near(scene.EffectiveGoal.X, box.Min.X+scene.Scale) || !near(scene.EffectiveGoal.Y, box.Min.Y+scene.Scale) {
		t.Fatalf("target=(%v,%v) did not follow the new mapping", scene.EffectiveGoal.X, scene.EffectiveGoal.Y)
	}
}

func TestRectangleCorners(t *testing.T) {
	r := Rectangle{X: 100, Y: 100, Width: 40, Height: 40, AnchorX: 20, AnchorY: 20}
	got := r.Corners()
	want := [4]r2.Vec{{X: 80, Y: 80}, {X: 120, Y: 80}, {X: 120, Y: 120}, {X: 80, Y: 120}}
	for i := range want {
		if !near(got[i].X, want[i].X) || !near(got[i].Y, want[i].Y) {
			t.Fatalf("corner %d=%v want %v", i, got[i], want[i])
		}
	}

	// Heading 90 (rotation -90) turns the facing marker to point up.
	facing := Rectangle{X: 0, Y: 0, Width: 20, Height: 10, AnchorY: 5, Rotation: -90}
	tip := facing.Corners()[1]
	if !near(tip.X, 5) || !near(tip.Y, 20) {
		t.Fatalf("facing corner=%v want (5,20)", tip)
	}
}

func TestDrawFlipsToImageCoordinates(t *testing.T) {
	h := newHarness(t, "compact")
	h.backend.SetOnline(true)
	h.put(posePath, nt.DoubleArrayValue([]float64{2, 2, 0}))
	h.ticks(1)

	p := h.dash.Profile()
	canvas := render.NewCanvas(p.WindowWidth, p.WindowHeight, nil, nil)
	h.dash.Draw(canvas)

	// Robot centre is 100 px from the bottom edge in scene coordinates.
	img := canvas.Image()
	if got := img.RGBAAt(94, p.WindowHeight-100); got != render.Foreground {
		t.Fatalf("robot pixel=%v want white", got)
	}
	if got := img.RGBAAt(94, 100); got != render.Background {
		t.Fatalf("mirrored pixel=%v want background", got)
	}
}

func TestSnapshotReflectsScene(t *testing.T) {
	h := newHarness(t, "classic")
	snap := h.dash.Snapshot()
	if snap.Phase.String() != "standby" || snap.Pose.Valid {
		t.Fatalf("initial snapshot=%+v", snap)
	}

	h.backend.SetOnline(true)
	h.put(posePath, nt.DoubleArrayValue([]float64{1, 2, 3}))
	h.put(trappedPath, nt.BooleanValue(true))
	h.ticks(9)
	snap = h.dash.Snapshot()
	if snap.Phase.String() != "connected" || !snap.Pose.Valid || snap.Pose.Heading != 3 || !snap.Cargo.Trapped {
		t.Fatalf("snapshot=%+v", snap)
	}
	if snap.Link.Uptime != time.Second || snap.Status != "Uptime: 1 s" || snap.Frame != 9 {
		t.Fatalf("snapshot link=%+v status=%q frame=%d", snap.Link, snap.Status, snap.Frame)
	}
}
