package render

import (
	"image"
	"sync"
)

// FrameBuffer keeps a copy of the most recently drawn frame for readers on
// other goroutines.
type FrameBuffer struct {
	mu    sync.RWMutex
	frame *image.RGBA
	seq   uint64
}

// Publish copies img and bumps the sequence number.
func (f *FrameBuffer) Publish(img *image.RGBA) {
	if img == nil {
		return
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.frame == nil || f.frame.Bounds() != img.Bounds() {
		f.frame = image.NewRGBA(img.Bounds())
	}
	copy(f.frame.Pix, img.Pix)
	f.seq++
}

// Latest returns a private copy of the last frame and its sequence number.
// The image is nil until the first frame is published.
func (f *FrameBuffer) Latest() (*image.RGBA, uint64) {
	f.mu.RLock()
	defer f.mu.RUnlock()
	if f.frame == nil {
		return nil, f.seq
	}
	out := image.NewRGBA(f.frame.Bounds())
	copy(out.Pix, f.frame.Pix)
	return out, f.seq
}

func (f *FrameBuffer) Seq() uint64 {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.seq
}
