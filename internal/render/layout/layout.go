// Package layout places boxes in scene coordinates. Boxes are y-up: Min is
// the bottom-left corner and Max the top-right.
package layout

import (
	"math"

	"gonum.org/v1/gonum/spatial/r2"
)

// Window returns the box covering a width x height surface.
func Window(width, height float64) r2.Box {
	return r2.Box{Max: r2.Vec{X: width, Y: height}}
}

// Normalize ensures Min is <= Max on both axes.
func Normalize(box r2.Box) r2.Box {
	if box.Min.X > box.Max.X {
		box.Min.X, box.Max.X = box.Max.X, box.Min.X
	}
	if box.Min.Y > box.Max.Y {
		box.Min.Y, box.Max.Y = box.Max.Y, box.Min.Y
	}
	return box
}

func Width(box r2.Box) float64  { return box.Max.X - box.Min.X }
func Height(box r2.Box) float64 { return box.Max.Y - box.Min.Y }

// Inset shrinks box by padding on all sides. A box thinner than twice the
// padding collapses onto its centre line.
func Inset(box r2.Box, padding float64) r2.Box {
	box = Normalize(box)
	if padding <= 0 {
		return box
	}
	px := math.Min(padding, Width(box)/2)
	py := math.Min(padding, Height(box)/2)
	return r2.Box{
		Min: r2.Vec{X: box.Min.X + px, Y: box.Min.Y + py},
		Max: r2.Vec{X: box.Max.X - px, Y: box.Max.Y - py},
	}
}

// SplitTop splits box into a band of the given height along its top edge
// and the remainder below it. height is clamped to [0, Height(box)].
func SplitTop(box r2.Box, height float64) (top r2.Box, rest r2.Box) {
	box = Normalize(box)
	height = clamp(height, 0, Height(box))
	cut := box.Max.Y - height
	top = r2.Box{Min: r2.Vec{X: box.Min.X, Y: cut}, Max: box.Max}
	rest = r2.Box{Min: box.Min, Max: r2.Vec{X: box.Max.X, Y: cut}}
	return top, rest
}

// SplitLeft splits box into a column of the given width and the remainder.
// width is clamped to [0, Width(box)].
func SplitLeft(box r2.Box, width float64) (left r2.Box, rest r2.Box) {
	box = Normalize(box)
	width = clamp(width, 0, Width(box))
	cut := box.Min.X + width
	left = r2.Box{Min: box.Min, Max: r2.Vec{X: cut, Y: box.Max.Y}}
	rest = r2.Box{Min: r2.Vec{X: cut, Y: box.Min.Y}, Max: box.Max}
	return left, rest
}

// AnchorTopLeft returns a box of size (width,height) placed in the top-left
// of box, clamped to fit.
func AnchorTopLeft(box r2.Box, width, height float64) r2.Box {
	box = Normalize(box)
	width = clamp(width, 0, Width(box))
	height = clamp(height, 0, Height(box))
	return r2.Box{
		Min: r2.Vec{X: box.Min.X, Y: box.Max.Y - height},
		Max: r2.Vec{X: box.Min.X + width, Y: box.Max.Y},
	}
}

// AnchorBottomRight returns a box of size (width,height) placed in the
// bottom-right of box, clamped to fit.
func AnchorBottomRight(box r2.Box, width, height float64) r2.Box {
	box = Normalize(box)
	width = clamp(width, 0, Width(box))
	height = clamp(height, 0, Height(box))
	return r2.Box{
		Min: r2.Vec{X: box.Max.X - width, Y: box.Min.Y},
		Max: r2.Vec{X: box.Max.X, Y: box.Min.Y + height},
	}
}

// FitAspect returns the largest box with the given width/height ratio that
// fits into box, centred.
func FitAspect(box r2.Box, aspect float64) r2.Box {
	box = Normalize(box)
	if aspect <= 0 {
		return box
	}
	w, h := Width(box), Height(box)
	if w/aspect > h {
		w = h * aspect
	} else {
		h = w / aspect
	}
	corner := r2.Vec{X: box.Min.X + (Width(box)-w)/2, Y: box.Min.Y + (Height(box)-h)/2}
	return r2.Box{Min: corner, Max: r2.Vec{X: corner.X + w, Y: corner.Y + h}}
}

// Row returns n points starting at origin, spacing apart along x.
func Row(origin r2.Vec, spacing float64, n int) []r2.Vec {
	out := make([]r2.Vec, 0, n)
	for i := 0; i < n; i++ {
		out = append(out, r2.Vec{X: origin.X + spacing*float64(i), Y: origin.Y})
	}
	return out
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
