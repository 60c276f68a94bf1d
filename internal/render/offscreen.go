package render

import (
	"context"
	"image"
	"sync"
	"sync/atomic"
	"time"
)

// OffscreenRenderer draws into an in-memory canvas only. It backs headless
// runs where the web mirror is the sole viewer, and tests.
type OffscreenRenderer struct {
	Logger  Logger
	FontTTF []byte

	width, height int
	mu            sync.Mutex
	canvas        *Canvas
	scene         Scene
	frames        FrameBuffer
	running       atomic.Bool

	// present is called with every finished frame while mu is held.
	present func(img *image.RGBA) error
}

func NewOffscreenRenderer(width, height int) *OffscreenRenderer {
	return &OffscreenRenderer{width: width, height: height}
}

func (r *OffscreenRenderer) Start(ctx context.Context) error {
	if r.Logger == nil {
		r.Logger = noopLogger{}
	}
	r.mu.Lock()
	r.canvas = NewCanvas(r.width, r.height, r.FontTTF, r.Logger)
	if r.scene != nil {
		r.scene.Resize(r.width, r.height)
	}
	r.mu.Unlock()
	r.running.Store(true)
	r.Logger.Infof("render", "canvas ready, size=%dx%d", r.width, r.height)
	return nil
}

func (r *OffscreenRenderer) Stop() error {
	r.running.Store(false)
	return nil
}

func (r *OffscreenRenderer) SetScene(scene Scene) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.scene = scene
	if scene != nil && r.canvas != nil {
		w, h := r.canvas.Size()
		scene.Resize(w, h)
	}
}

// Resize changes the canvas size and lets the scene relayout.
func (r *OffscreenRenderer) Resize(width, height int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.width, r.height = width, height
	if r.canvas == nil {
		return
	}
	r.canvas.Resize(width, height)
	if r.scene != nil {
		w, h := r.canvas.Size()
		r.scene.Resize(w, h)
	}
}

func (r *OffscreenRenderer) Frames() *FrameBuffer { return &r.frames }

// Redraw draws the current scene once and publishes the frame.
func (r *OffscreenRenderer) Redraw() {
	if !r.running.Load() {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.scene == nil || r.canvas == nil {
		return
	}
	r.scene.Draw(r.canvas)
	img := r.canvas.Image()
	r.frames.Publish(img)
	if r.present != nil {
		if err := r.present(img); err != nil {
			r.Logger.Errorf("render", "present failed: %v", err)
		}
	}
}

// RunLoop draws the first frame immediately, then updates and redraws on
// every tick until ctx is done.
func (r *OffscreenRenderer) RunLoop(ctx context.Context, interval time.Duration, update UpdateFunc) error {
	if interval <= 0 {
		interval = time.Second / 24
	}
	r.Redraw()
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	last := time.Now()
	lastLog := last
	var frames int
	for {
		select {
		case <-ctx.Done():
			return nil
		case now := <-ticker.C:
			dt := now.Sub(last)
			last = now
			if update != nil {
				update(dt)
			}
			r.Redraw()
			frames++
			if now.Sub(lastLog) >= 10*time.Second {
				r.Logger.Infof("render", "heartbeat, frames=%d", frames)
				lastLog = now
			}
		}
	}
}
