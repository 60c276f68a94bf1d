package assets

import (
	"bytes"
	"embed"
	"fmt"
	"image"
	"image/png"
	"io/fs"
)

// FieldPNG is the top-down field drawing used by profiles with a
// background image.
//
//go:embed field.png
var FieldPNG []byte

//go:embed web
var webFS embed.FS

// WebUI is an embedded filesystem rooted at internal/assets/web.
// It contains the viewer page served by the web mirror.
var WebUI fs.FS

func init() {
	// Embed paths include the leading directory; strip it for serving at '/'.
	sub, err := fs.Sub(webFS, "web")
	if err != nil {
		panic(err)
	}
	WebUI = sub
}

// FieldImage decodes FieldPNG.
func FieldImage() (image.Image, error) {
	img, err := png.Decode(bytes.NewReader(FieldPNG))
	if err != nil {
		return nil, fmt.Errorf("decode field image: %w", err)
	}
	return img, nil
}
