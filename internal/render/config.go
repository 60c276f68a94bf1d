package render

import "image/color"

// Palette shared by every scene.
var (
	Background = color.RGBA{R: 0x00, G: 0x00, B: 0x00, A: 0xFF}
	Foreground = color.RGBA{R: 0xFF, G: 0xFF, B: 0xFF, A: 0xFF}

	Gray   = color.RGBA{R: 127, G: 127, B: 127, A: 0xFF}
	Red    = color.RGBA{R: 255, G: 0, B: 0, A: 0xFF}
	Yellow = color.RGBA{R: 255, G: 255, B: 0, A: 0xFF}
)

const (
	// DefaultFontSize is used when a TextStyle leaves Size at zero.
	DefaultFontSize = 24
	// FontDPI matches the desktop convention the layouts were tuned for.
	FontDPI = 96
)
