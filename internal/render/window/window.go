// Package window hosts a render.Scene in a desktop window.
package window

import (
	"context"
	"errors"
	"image"
	"sync"
	"time"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/app"
	"fyne.io/fyne/v2/canvas"

	"github.com/thedropbears/driverstation/internal/input"
	"github.com/thedropbears/driverstation/internal/render"
)

const appID = "org.thedropbears.driverstation"

// Host is a render.Renderer backed by a Fyne window. The scene is drawn
// by a raster on the UI thread and updates are marshalled there with
// fyne.Do, so update, resize and draw never run concurrently.
type Host struct {
	Title   string
	Width   int
	Height  int
	Logger  render.Logger
	FontTTF []byte
	// Keys receives every typed key, if set.
	Keys *input.Channel

	app    fyne.App
	win    fyne.Window
	raster *canvas.Raster
	canvas *render.Canvas
	frames render.FrameBuffer

	mu           sync.Mutex
	scene        render.Scene
	lastW, lastH int
	closeOnce    sync.Once
}

var _ render.Renderer = (*Host)(nil)

func New(title string, width, height int) *Host {
	return &Host{Title: title, Width: width, Height: height}
}

func (h *Host) Start(ctx context.Context) error {
	if h.Logger == nil {
		h.Logger = nopLogger{}
	}
	h.canvas = render.NewCanvas(h.Width, h.Height, h.FontTTF, h.Logger)
	h.app = app.NewWithID(appID)
	h.win = h.app.NewWindow(h.Title)
	h.raster = canvas.NewRaster(h.draw)
	h.win.SetContent(h.raster)
	h.win.Resize(fyne.NewSize(float32(h.Width), float32(h.Height)))
	h.win.Canvas().SetOnTypedKey(func(ev *fyne.KeyEvent) {
		if h.Keys != nil {
			h.Keys.Push(input.Event{Name: string(ev.Name)})
		}
	})
	h.Logger.Infof("window", "window %q created, size=%dx%d", h.Title, h.Width, h.Height)
	return nil
}

func (h *Host) Stop() error {
	if h.app == nil {
		return nil
	}
	h.closeOnce.Do(func() {
		fyne.Do(func() { h.app.Quit() })
	})
	return nil
}

func (h *Host) SetScene(scene render.Scene) {
	h.mu.Lock()
	h.scene = scene
	h.lastW, h.lastH = 0, 0
	h.mu.Unlock()
}

func (h *Host) Frames() *render.FrameBuffer { return &h.frames }

// RunLoop shows the window and blocks until it is closed or ctx is done.
// It must be called from the main goroutine.
func (h *Host) RunLoop(ctx context.Context, interval time.Duration, update render.UpdateFunc) error {
	if h.win == nil {
		return errors.New("window: RunLoop before Start")
	}
	if interval <= 0 {
		interval = time.Second / 24
	}
	done := make(chan struct{})
	h.win.SetOnClosed(func() { close(done) })

	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		last := time.Now()
		for {
			select {
			case <-ctx.Done():
				_ = h.Stop()
				return
			case <-done:
				return
			case now := <-ticker.C:
				dt := now.Sub(last)
				last = now
				fyne.Do(func() {
					if update != nil {
						update(dt)
					}
					h.raster.Refresh()
				})
			}
		}
	}()

	h.win.ShowAndRun()
	return nil
}

// draw is the raster generator. It runs on the UI thread.
func (h *Host) draw(w, ht int) image.Image {
	h.mu.Lock()
	defer h.mu.Unlock()
	if w <= 0 || ht <= 0 || h.scene == nil {
		return image.NewRGBA(image.Rect(0, 0, 1, 1))
	}
	if w != h.lastW || ht != h.lastH {
		h.lastW, h.lastH = w, ht
		h.canvas.Resize(w, ht)
		h.scene.Resize(w, ht)
	}
	h.scene.Draw(h.canvas)
	img := h.canvas.Image()
	h.frames.Publish(img)
	return img
}

type nopLogger struct{}

func (nopLogger) Infof(string, string, ...interface{})  {}
func (nopLogger) Errorf(string, string, ...interface{}) {}
