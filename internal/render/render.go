package render

import (
	"context"
	"image"
	"image/color"
	"time"

	"gonum.org/v1/gonum/spatial/r2"
)

// UpdateFunc advances application state by one frame.
type UpdateFunc func(dt time.Duration)

type Renderer interface {
	Start(ctx context.Context) error
	Stop() error
	SetScene(scene Scene)
	// RunLoop calls update and redraws at the given interval until ctx is
	// done or the display closes.
	RunLoop(ctx context.Context, interval time.Duration, update UpdateFunc) error
	Frames() *FrameBuffer
}

// Scene is redrawn completely on every frame.
type Scene interface {
	Resize(width, height int)
	Draw(d Drawer)
}

// Drawer is an abstraction the renderer provides to scenes to draw primitives
// without exposing the backing image. Coordinates are pixels with the origin
// at the top-left corner and y growing downwards.
type Drawer interface {
	Size() (width int, height int)

	Clear(c color.Color)

	FillCircle(center r2.Vec, radius float64, c color.Color)
	FillPolygon(points []r2.Vec, c color.Color)
	StrokeLine(from, to r2.Vec, width float64, c color.Color)

	MeasureText(text string, style TextStyle) TextMetrics
	DrawText(text string, x, y float64, style TextStyle) TextMetrics

	DrawImageInRect(img image.Image, rect image.Rectangle, mode ScaleMode)
}

type TextAlign int

const (
	TextAlignLeft TextAlign = iota
	TextAlignCenter
	TextAlignRight
)

// TextStyle describes how to render text.
// Coordinates for DrawText use a top-left anchor for Y.
// For X, Align controls how x is interpreted.
type TextStyle struct {
	Color color.Color
	Size  float64 // font size in points; 0 means renderer default
	Align TextAlign
	// MaxWidth wraps text on word boundaries when positive.
	MaxWidth float64
}

type TextMetrics struct {
	Width      int
	Height     int
	Ascent     int
	Descent    int
	LineHeight int
	Lines      int
}

type ScaleMode int

const (
	ScaleModeFit ScaleMode = iota
	ScaleModeFill
	ScaleModeStretch
)
