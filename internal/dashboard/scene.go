package dashboard

import (
	"fmt"
	"image"
	"image/color"
	"math"
	"time"

	"gonum.org/v1/gonum/spatial/r2"

	"github.com/thedropbears/driverstation/internal/render"
	"github.com/thedropbears/driverstation/internal/render/layout"
)

// Scene primitives use window coordinates with the origin at the
// bottom-left corner and y growing upwards.

// Label is anchored at its top-left corner and wraps at Width.
type Label struct {
	Text     string
	X, Y     float64
	Width    float64
	FontSize float64
	Color    color.RGBA
}

type Circle struct {
	X, Y    float64
	Radius  float64
	Color   color.RGBA
	Visible bool
}

// Rectangle is placed by its anchor point, which is given relative to the
// unrotated bottom-left corner. Rotation is in degrees, clockwise.
type Rectangle struct {
	X, Y             float64
	Width, Height    float64
	AnchorX, AnchorY float64
	Rotation         float64
	Color            color.RGBA
}

// Corners returns the four rotated corners counter-clockwise from the
// bottom-left one.
func (r Rectangle) Corners() [4]r2.Vec {
	pivot := r2.Vec{X: r.X, Y: r.Y}
	alpha := -r.Rotation * math.Pi / 180
	local := [4]r2.Vec{
		{X: -r.AnchorX, Y: -r.AnchorY},
		{X: r.Width - r.AnchorX, Y: -r.AnchorY},
		{X: r.Width - r.AnchorX, Y: r.Height - r.AnchorY},
		{X: -r.AnchorX, Y: r.Height - r.AnchorY},
	}
	var out [4]r2.Vec
	for i, p := range local {
		out[i] = r2.Rotate(r2.Add(pivot, p), alpha, pivot)
	}
	return out
}

type Line struct {
	X1, Y1, X2, Y2 float64
	Width          float64
	Color          color.RGBA
	Visible        bool
}

// Sprite draws an image stretched over its box.
type Sprite struct {
	Image   image.Image
	Box     r2.Box
	Visible bool
}

// Indicator slots, left to right.
const (
	TunnelIndicator = iota
	ChimneyIndicator
	TrappedIndicator
)

const (
	qrCodeSize     = 128
	qrCodeMargin   = 16
	separatorWidth = 2
)

// StandbyText is shown while no robot is connected.
func StandbyText(address string) string {
	return fmt.Sprintf("No connection, waiting for %s", address)
}

// UptimeText renders whole seconds of uptime.
func UptimeText(uptime time.Duration) string {
	return fmt.Sprintf("Uptime: %d s", int64(uptime/time.Second))
}

// IndicatorColor maps a cargo flag to one of exactly two colours.
func IndicatorColor(slot int, on bool) color.RGBA {
	if !on {
		return render.Gray
	}
	if slot == TrappedIndicator {
		return render.Red
	}
	return render.Yellow
}

// Scene is the mutable draw state of the dashboard. Fields are overwritten
// in place every frame and the scene lives as long as the process.
type Scene struct {
	profile Profile

	Width, Height float64
	// Scale is pixels per metre and Origin the window position of the
	// field's (0, 0) corner.
	Scale  float64
	Origin r2.Vec

	Status        Label
	Separator     Line
	Background    Sprite
	QRCode        Sprite
	Indicators    [3]Circle
	Goal          Circle
	EffectiveGoal Circle
	Robot         Rectangle
	RobotFacing   Rectangle

	pose        RobotPose
	target      TargetPosition
	poseValid   bool
	targetValid bool
}

// NewScene lays out a scene for the profile's initial window size.
// background and qr may be nil.
func NewScene(p Profile, background, qr image.Image) *Scene {
	s := &Scene{profile: p}
	s.Background.Image = background
	s.QRCode.Image = qr

	s.Status = Label{FontSize: p.StatusFontSize, Color: render.Foreground}
	for i := range s.Indicators {
		s.Indicators[i] = Circle{Radius: p.BallRadius, Color: render.Gray, Visible: true}
	}
	s.Separator = Line{Width: separatorWidth, Color: render.Gray}
	s.Goal = Circle{Radius: p.GoalRadius, Color: render.Foreground, Visible: true}
	s.EffectiveGoal = Circle{Radius: p.BallRadius, Color: render.Foreground, Visible: true}
	s.Robot = Rectangle{
		Width: p.RobotSize, Height: p.RobotSize,
		AnchorX: p.RobotSize / 2, AnchorY: p.RobotSize / 2,
		Color: render.Foreground,
	}
	s.RobotFacing = Rectangle{
		Width: p.FacingLength, Height: p.FacingWidth,
		AnchorX: 0, AnchorY: p.FacingWidth / 2,
		Color: render.Red,
	}
	s.target = TargetPosition{X: p.FieldWidth / 2, Y: p.FieldHeight / 2}
	s.Resize(p.WindowWidth, p.WindowHeight)
	return s
}

// Resize repositions screen-anchored primitives and recomputes the field
// mapping for the new window size.
func (s *Scene) Resize(width, height int) {
	p := s.profile
	s.Width, s.Height = float64(width), float64(height)
	window := layout.Window(s.Width, s.Height)

	header, area := layout.SplitTop(window, p.HeaderHeight)
	status := layout.Inset(window, p.Margin)
	if p.HeaderHeight > 0 {
		status = layout.Inset(header, p.Margin)
	}
	s.Status.X = status.Min.X
	s.Status.Y = status.Max.Y
	s.Status.Width = layout.Width(status)

	for i, c := range layout.Row(r2.Vec{X: p.BallMargin, Y: s.Height - p.BallRowOffset}, p.BallSpacing, len(s.Indicators)) {
		s.Indicators[i].X, s.Indicators[i].Y = c.X, c.Y
	}

	s.Separator.Visible = p.HeaderHeight > 0
	s.Separator.X1, s.Separator.Y1 = 0, header.Min.Y
	s.Separator.X2, s.Separator.Y2 = s.Width, header.Min.Y

	area = layout.Inset(area, p.Margin)
	scale := math.Min(layout.Width(area)/p.FieldWidth, layout.Height(area)/p.FieldHeight)
	if p.UseBackgroundImage {
		fitted := layout.FitAspect(area, p.FieldWidth/p.FieldHeight)
		s.Background.Box = fitted
		s.Background.Visible = s.Background.Image != nil
		s.Origin = fitted.Min
		scale = layout.Width(fitted) / p.FieldWidth
	} else {
		s.Origin = area.Min
	}
	if p.KeepScaleOnResize {
		scale = p.ScaleFactor
	}
	s.Scale = scale

	qr := layout.AnchorBottomRight(layout.Inset(window, qrCodeMargin), qrCodeSize, qrCodeSize)
	s.QRCode.Box = qr

	s.Goal.X, s.Goal.Y = s.fieldToWindow(p.FieldWidth/2, p.FieldHeight/2)
	s.ApplyPose(s.pose)
	s.ApplyTarget(s.target)
}

func (s *Scene) fieldToWindow(x, y float64) (float64, float64) {
	return s.Origin.X + x*s.Scale, s.Origin.Y + y*s.Scale
}

func (s *Scene) SetStatus(text string) { s.Status.Text = text }

// Pose returns the pose the robot marker shows and whether one was ever read.
func (s *Scene) Pose() (RobotPose, bool) { return s.pose, s.poseValid }

// Target returns the target the marker shows and whether one was ever read.
func (s *Scene) Target() (TargetPosition, bool) { return s.target, s.targetValid }

// ShowQRCode toggles the standby QR code. It stays hidden without an image.
func (s *Scene) ShowQRCode(show bool) { s.QRCode.Visible = show && s.QRCode.Image != nil }

func (s *Scene) ApplyPose(p RobotPose) {
	s.pose = p
	x, y := s.fieldToWindow(p.X, p.Y)
	s.Robot.X, s.Robot.Y = x, y
	s.Robot.Rotation = -p.Heading
	s.RobotFacing.X, s.RobotFacing.Y = x, y
	s.RobotFacing.Rotation = -p.Heading
}

func (s *Scene) ApplyTarget(t TargetPosition) {
	s.target = t
	s.EffectiveGoal.X, s.EffectiveGoal.Y = s.fieldToWindow(t.X, t.Y)
}

func (s *Scene) ApplyCargo(c CargoFlags) {
	s.Indicators[TunnelIndicator].Color = IndicatorColor(TunnelIndicator, c.InTunnel)
	s.Indicators[ChimneyIndicator].Color = IndicatorColor(ChimneyIndicator, c.InChimney)
	s.Indicators[TrappedIndicator].Color = IndicatorColor(TrappedIndicator, c.Trapped)
}

// Apply pushes one frame of connection state and telemetry into the scene.
func (s *Scene) Apply(conn *Connection, t Telemetry) {
	if !conn.Connected() {
		s.SetStatus(StandbyText(conn.Address()))
		s.ShowQRCode(true)
		return
	}
	s.ShowQRCode(false)
	if t.Pose != nil {
		s.ApplyPose(*t.Pose)
		s.poseValid = true
	}
	if t.Target != nil {
		s.ApplyTarget(*t.Target)
		s.targetValid = true
	}
	s.ApplyCargo(t.Cargo)
	s.SetStatus(UptimeText(conn.Uptime()))
}

// Draw clears the canvas and draws every visible primitive.
func (s *Scene) Draw(d render.Drawer) {
	_, h := d.Size()
	height := float64(h)
	flip := func(x, y float64) r2.Vec { return r2.Vec{X: x, Y: height - y} }

	d.Clear(render.Background)
	if s.Background.Visible {
		d.DrawImageInRect(s.Background.Image, s.boxToRect(s.Background.Box, height), render.ScaleModeStretch)
	}
	if s.Separator.Visible {
		d.StrokeLine(flip(s.Separator.X1, s.Separator.Y1), flip(s.Separator.X2, s.Separator.Y2), s.Separator.Width, s.Separator.Color)
	}
	for _, c := range []Circle{s.Goal, s.EffectiveGoal} {
		if c.Visible {
			d.FillCircle(flip(c.X, c.Y), c.Radius, c.Color)
		}
	}
	for _, r := range []Rectangle{s.Robot, s.RobotFacing} {
		corners := r.Corners()
		pts := make([]r2.Vec, len(corners))
		for i, p := range corners {
			pts[i] = flip(p.X, p.Y)
		}
		d.FillPolygon(pts, r.Color)
	}
	for _, c := range s.Indicators {
		if c.Visible {
			d.FillCircle(flip(c.X, c.Y), c.Radius, c.Color)
		}
	}
	d.DrawText(s.Status.Text, s.Status.X, height-s.Status.Y, render.TextStyle{
		Color:    s.Status.Color,
		Size:     s.Status.FontSize,
		MaxWidth: s.Status.Width,
	})
	if s.QRCode.Visible {
		d.DrawImageInRect(s.QRCode.Image, s.boxToRect(s.QRCode.Box, height), render.ScaleModeFit)
	}
}

func (s *Scene) boxToRect(b r2.Box, height float64) image.Rectangle {
	return image.Rect(
		int(math.Round(b.Min.X)), int(math.Round(height-b.Max.Y)),
		int(math.Round(b.Max.X)), int(math.Round(height-b.Min.Y)),
	)
}
