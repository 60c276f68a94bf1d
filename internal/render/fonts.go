package render

import (
	"sync"

	"github.com/golang/freetype/truetype"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/font/gofont/goregular"
)

// Logger is the subset of the application logger used by renderers.
type Logger interface {
	Infof(component string, format string, args ...interface{})
	Errorf(component string, format string, args ...interface{})
}

type noopLogger struct{}

func (noopLogger) Infof(string, string, ...interface{})  {}
func (noopLogger) Errorf(string, string, ...interface{}) {}

// fontCache hands out truetype faces keyed by point size.
type fontCache struct {
	mu    sync.Mutex
	ttf   *truetype.Font
	faces map[float64]font.Face
}

func newFontCache(data []byte, logger Logger) *fontCache {
	if logger == nil {
		logger = noopLogger{}
	}
	if data == nil {
		data = goregular.TTF
	}
	fc := &fontCache{faces: make(map[float64]font.Face)}
	tt, err := truetype.Parse(data)
	if err != nil {
		logger.Errorf("render", "truetype parse failed, using basicfont: %v", err)
		return fc
	}
	fc.ttf = tt
	return fc
}

func (fc *fontCache) face(size float64) font.Face {
	if size <= 0 {
		size = DefaultFontSize
	}
	fc.mu.Lock()
	defer fc.mu.Unlock()
	if fc.ttf == nil {
		return basicfont.Face7x13
	}
	if face, ok := fc.faces[size]; ok {
		return face
	}
	face := truetype.NewFace(fc.ttf, &truetype.Options{
		Size:    size,
		DPI:     FontDPI,
		Hinting: font.HintingFull,
	})
	fc.faces[size] = face
	return face
}
