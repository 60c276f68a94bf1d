package render

import (
	"image"
	"image/color"
	"image/draw"
	"math"
	"strings"

	xdraw "golang.org/x/image/draw"
	"golang.org/x/image/font"
	"golang.org/x/image/math/fixed"
	"golang.org/x/image/vector"
	"gonum.org/v1/gonum/spatial/r2"
)

// circleKappa places cubic control points so four curves approximate a circle.
const circleKappa = 0.5522847498

// Canvas is a Drawer backed by an in-memory RGBA image.
type Canvas struct {
	img   *image.RGBA
	fonts *fontCache
}

// NewCanvas allocates a canvas of the given size. A nil font uses Go Regular.
func NewCanvas(width, height int, fontTTF []byte, logger Logger) *Canvas {
	c := &Canvas{fonts: newFontCache(fontTTF, logger)}
	c.Resize(width, height)
	return c
}

// Resize reallocates the backing image when the size changes.
func (c *Canvas) Resize(width, height int) {
	if width < 1 {
		width = 1
	}
	if height < 1 {
		height = 1
	}
	if c.img != nil && c.img.Bounds().Dx() == width && c.img.Bounds().Dy() == height {
		return
	}
	c.img = image.NewRGBA(image.Rect(0, 0, width, height))
}

// Image returns the backing image. It is overwritten by the next frame.
func (c *Canvas) Image() *image.RGBA { return c.img }

func (c *Canvas) Size() (int, int) {
	b := c.img.Bounds()
	return b.Dx(), b.Dy()
}

func (c *Canvas) Clear(col color.Color) {
	draw.Draw(c.img, c.img.Bounds(), image.NewUniform(col), image.Point{}, draw.Src)
}

func (c *Canvas) FillCircle(center r2.Vec, radius float64, col color.Color) {
	if radius <= 0 {
		return
	}
	k := radius * circleKappa
	cx, cy := center.X, center.Y
	c.fill(cx-radius, cy-radius, cx+radius, cy+radius, col, func(z *vector.Rasterizer, off r2.Vec) {
		x, y := float32(cx-off.X), float32(cy-off.Y)
		r, kk := float32(radius), float32(k)
		z.MoveTo(x+r, y)
		z.CubeTo(x+r, y+kk, x+kk, y+r, x, y+r)
		z.CubeTo(x-kk, y+r, x-r, y+kk, x-r, y)
		z.CubeTo(x-r, y-kk, x-kk, y-r, x, y-r)
		z.CubeTo(x+kk, y-r, x+r, y-kk, x+r, y)
		z.ClosePath()
	})
}

func (c *Canvas) FillPolygon(points []r2.Vec, col color.Color) {
	if len(points) < 3 {
		return
	}
	minX, minY := math.Inf(1), math.Inf(1)
	maxX, maxY := math.Inf(-1), math.Inf(-1)
	for _, p := range points {
		minX, maxX = math.Min(minX, p.X), math.Max(maxX, p.X)
		minY, maxY = math.Min(minY, p.Y), math.Max(maxY, p.Y)
	}
	c.fill(minX, minY, maxX, maxY, col, func(z *vector.Rasterizer, off r2.Vec) {
		z.MoveTo(float32(points[0].X-off.X), float32(points[0].Y-off.Y))
		for _, p := range points[1:] {
			z.LineTo(float32(p.X-off.X), float32(p.Y-off.Y))
		}
		z.ClosePath()
	})
}

func (c *Canvas) StrokeLine(from, to r2.Vec, width float64, col color.Color) {
	d := r2.Sub(to, from)
	length := r2.Norm(d)
	if length == 0 || width <= 0 {
		return
	}
	n := r2.Scale(width/2/length, r2.Vec{X: -d.Y, Y: d.X})
	c.FillPolygon([]r2.Vec{r2.Add(from, n), r2.Add(to, n), r2.Sub(to, n), r2.Sub(from, n)}, col)
}

// fill rasterizes a path whose bounds are given in canvas pixels. The
// rasterizer covers only the visible part of those bounds and path receives
// the offset to subtract from canvas coordinates.
func (c *Canvas) fill(minX, minY, maxX, maxY float64, col color.Color, path func(z *vector.Rasterizer, off r2.Vec)) {
	area := image.Rect(
		int(math.Floor(minX)), int(math.Floor(minY)),
		int(math.Ceil(maxX)), int(math.Ceil(maxY)),
	).Intersect(c.img.Bounds())
	if area.Empty() {
		return
	}
	z := vector.NewRasterizer(area.Dx(), area.Dy())
	z.DrawOp = draw.Over
	path(z, r2.Vec{X: float64(area.Min.X), Y: float64(area.Min.Y)})
	z.Draw(c.img, area, image.NewUniform(col), image.Point{})
}

func (c *Canvas) MeasureText(text string, style TextStyle) TextMetrics {
	face := c.fonts.face(style.Size)
	lines := c.wrap(face, text, style.MaxWidth)
	return measureLines(face, lines)
}

// DrawText draws text with its top edge at y. Wrapped lines share the
// alignment given by style.
func (c *Canvas) DrawText(text string, x, y float64, style TextStyle) TextMetrics {
	face := c.fonts.face(style.Size)
	lines := c.wrap(face, text, style.MaxWidth)
	metrics := measureLines(face, lines)
	col := style.Color
	if col == nil {
		col = Foreground
	}
	drawer := &font.Drawer{Dst: c.img, Src: image.NewUniform(col), Face: face}
	baseline := y + float64(metrics.Ascent)
	for _, line := range lines {
		width := float64(drawer.MeasureString(line).Ceil())
		left := x
		switch style.Align {
		case TextAlignCenter:
			left = x - width/2
		case TextAlignRight:
			left = x - width
		}
		drawer.Dot = fixed.Point26_6{X: fixed.Int26_6(left * 64), Y: fixed.Int26_6(baseline * 64)}
		drawer.DrawString(line)
		baseline += float64(metrics.LineHeight)
	}
	return metrics
}

func (c *Canvas) wrap(face font.Face, text string, maxWidth float64) []string {
	var lines []string
	for _, paragraph := range strings.Split(text, "\n") {
		if maxWidth <= 0 {
			lines = append(lines, paragraph)
			continue
		}
		words := strings.Fields(paragraph)
		if len(words) == 0 {
			lines = append(lines, "")
			continue
		}
		current := words[0]
		for _, word := range words[1:] {
			candidate := current + " " + word
			if float64(font.MeasureString(face, candidate).Ceil()) > maxWidth {
				lines = append(lines, current)
				current = word
				continue
			}
			current = candidate
		}
		lines = append(lines, current)
	}
	return lines
}

func measureLines(face font.Face, lines []string) TextMetrics {
	m := face.Metrics()
	metrics := TextMetrics{
		Ascent:     m.Ascent.Ceil(),
		Descent:    m.Descent.Ceil(),
		LineHeight: m.Height.Ceil(),
		Lines:      len(lines),
	}
	for _, line := range lines {
		if w := font.MeasureString(face, line).Ceil(); w > metrics.Width {
			metrics.Width = w
		}
	}
	if len(lines) > 0 {
		metrics.Height = metrics.LineHeight*(len(lines)-1) + metrics.Ascent + metrics.Descent
	}
	return metrics
}

func (c *Canvas) DrawImageInRect(img image.Image, rect image.Rectangle, mode ScaleMode) {
	if img == nil || rect.Empty() {
		return
	}
	src := img.Bounds()
	dst := rect
	switch mode {
	case ScaleModeFit, ScaleModeFill:
		sx := float64(rect.Dx()) / float64(src.Dx())
		sy := float64(rect.Dy()) / float64(src.Dy())
		scale := math.Min(sx, sy)
		if mode == ScaleModeFill {
			scale = math.Max(sx, sy)
		}
		w := int(math.Round(float64(src.Dx()) * scale))
		h := int(math.Round(float64(src.Dy()) * scale))
		x := rect.Min.X + (rect.Dx()-w)/2
		y := rect.Min.Y + (rect.Dy()-h)/2
		dst = image.Rect(x, y, x+w, y+h)
	}
	sub, ok := c.img.SubImage(rect).(*image.RGBA)
	if !ok {
		return
	}
	xdraw.BiLinear.Scale(sub, dst, img, src, xdraw.Over, nil)
}
