package render

import (
	"context"
	"fmt"
	"image"
	"image/color"

	fb "github.com/gonutz/framebuffer"
)

// DefaultFramebufferDevice is the console framebuffer on the robot laptop.
const DefaultFramebufferDevice = "/dev/fb0"

// FBRenderer renders to the Linux framebuffer. The canvas matches the
// device resolution so the scene lays itself out for the physical screen.
type FBRenderer struct {
	*OffscreenRenderer
	Device string

	fbDev *fb.Device
}

func NewFBRenderer() *FBRenderer {
	return &FBRenderer{OffscreenRenderer: NewOffscreenRenderer(1, 1), Device: DefaultFramebufferDevice}
}

func (r *FBRenderer) Start(ctx context.Context) error {
	dev, err := fb.Open(r.Device)
	if err != nil {
		return fmt.Errorf("open framebuffer %s: %w", r.Device, err)
	}
	r.fbDev = dev
	bounds := dev.Bounds()
	r.width, r.height = bounds.Dx(), bounds.Dy()
	r.present = func(img *image.RGBA) error { return blitToFB(r.fbDev, img) }
	if err := r.OffscreenRenderer.Start(ctx); err != nil {
		return err
	}
	r.Logger.Infof("fb", "framebuffer open, bounds=%dx%d", bounds.Dx(), bounds.Dy())
	return nil
}

func (r *FBRenderer) Stop() error {
	_ = r.OffscreenRenderer.Stop()
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.fbDev != nil {
		r.fbDev.Close()
		r.fbDev = nil
	}
	return nil
}

// blitToFB copies canvas onto the framebuffer with nearest-neighbour
// sampling when the sizes differ.
func blitToFB(dev *fb.Device, canvas *image.RGBA) error {
	if dev == nil {
		return nil
	}
	bounds := dev.Bounds()
	fbWidth := bounds.Dx()
	fbHeight := bounds.Dy()
	canvasWidth := canvas.Bounds().Dx()
	canvasHeight := canvas.Bounds().Dy()
	for y := 0; y < fbHeight; y++ {
		sy := (y * canvasHeight) / fbHeight
		for x := 0; x < fbWidth; x++ {
			sx := (x * canvasWidth) / fbWidth
			pixel := canvas.RGBAAt(sx, sy)
			dev.Set(bounds.Min.X+x, bounds.Min.Y+y, color.RGBA{R: pixel.R, G: pixel.G, B: pixel.B, A: 0xFF})
		}
	}
	return nil
}
