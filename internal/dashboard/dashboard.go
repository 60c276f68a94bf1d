// Package dashboard turns robot telemetry into the driver station scene.
//
// A Dashboard is driven by its host: Update once per frame, Resize when the
// surface changes and Draw whenever the host redraws. All three must be
// called from the same goroutine.
package dashboard

import (
	"image"
	"time"

	"github.com/thedropbears/driverstation/internal/render"
	"github.com/thedropbears/driverstation/internal/state"
)

// Options carries the optional collaborators of a Dashboard.
type Options struct {
	Logger     Logger
	Background image.Image
	// QRCode is shown on the standby screen, typically linking to the web
	// mirror.
	QRCode image.Image
}

type Dashboard struct {
	profile Profile
	conn    *Connection
	reader  *Reader
	scene   *Scene
	logger  Logger

	frames uint64
	cargo  CargoFlags
}

func New(profile Profile, remote Remote, opts Options) *Dashboard {
	logger := opts.Logger
	if logger == nil {
		logger = NoopLogger{}
	}
	d := &Dashboard{
		profile: profile,
		conn:    NewConnection(remote, profile.Address, logger),
		reader:  NewReader(remote),
		scene:   NewScene(profile, opts.Background, opts.QRCode),
		logger:  logger,
	}
	d.scene.Apply(d.conn, Telemetry{})
	return d
}

func (d *Dashboard) Profile() Profile        { return d.profile }
func (d *Dashboard) Scene() *Scene           { return d.scene }
func (d *Dashboard) Connection() *Connection { return d.conn }
func (d *Dashboard) Frames() uint64          { return d.frames }

// Update runs one frame: connection bookkeeping, telemetry read and scene
// update. Telemetry is only read while connected.
func (d *Dashboard) Update(dt time.Duration) {
	d.frames++
	d.conn.Tick(dt)
	var t Telemetry
	if d.conn.Connected() {
		t = d.reader.Read()
		d.cargo = t.Cargo
	}
	d.scene.Apply(d.conn, t)
}

// SetQRCode replaces the standby QR code image.
func (d *Dashboard) SetQRCode(img image.Image) {
	d.scene.QRCode.Image = img
	d.scene.ShowQRCode(!d.conn.Connected())
}

// Resize is forwarded from the host when the drawing surface changes.
func (d *Dashboard) Resize(width, height int) {
	d.scene.Resize(width, height)
	d.logger.Infof("dashboard", "resized to %dx%d, scale=%.2f px/m", width, height, d.scene.Scale)
}

func (d *Dashboard) Draw(dr render.Drawer) { d.scene.Draw(dr) }

// Snapshot describes what is on screen for the web mirror.
func (d *Dashboard) Snapshot() state.State {
	phase := state.STANDBY
	if d.conn.Connected() {
		phase = state.CONNECTED
	}
	pose, poseValid := d.scene.Pose()
	target, targetValid := d.scene.Target()
	return state.State{
		Phase:   phase,
		Profile: d.profile.Name,
		Status:  d.scene.Status.Text,
		Frame:   d.frames,
		Link:    state.LinkInfo{Address: d.conn.Address(), Uptime: d.conn.Uptime()},
		Pose:    state.PoseInfo{Valid: poseValid, X: pose.X, Y: pose.Y, Heading: pose.Heading},
		Target:  state.TargetInfo{Valid: targetValid, X: target.X, Y: target.Y},
		Cargo:   state.CargoInfo{InTunnel: d.cargo.InTunnel, InChimney: d.cargo.InChimney, Trapped: d.cargo.Trapped},
	}
}
