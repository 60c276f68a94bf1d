package layout

import (
	"math"
	"testing"

	"gonum.org/v1/gonum/spatial/r2"
)

func near(a, b float64) bool { return math.Abs(a-b) < 1e-9 }

func boxNear(a, b r2.Box) bool {
	return near(a.Min.X, b.Min.X) && near(a.Min.Y, b.Min.Y) && near(a.Max.X, b.Max.X) && near(a.Max.Y, b.Max.Y)
}

func TestSplitTopKeepsBandAtTop(t *testing.T) {
	top, rest := SplitTop(Window(100, 50), 10)
	if !boxNear(top, r2.Box{Min: r2.Vec{X: 0, Y: 40}, Max: r2.Vec{X: 100, Y: 50}}) {
		t.Fatalf("top=%v", top)
	}
	if !boxNear(rest, r2.Box{Max: r2.Vec{X: 100, Y: 40}}) {
		t.Fatalf("rest=%v", rest)
	}

	top, rest = SplitTop(Window(100, 50), 80)
	if Height(top) != 50 || Height(rest) != 0 {
		t.Fatalf("expected clamp, got top=%v rest=%v", top, rest)
	}
}

func TestSplitLeft(t *testing.T) {
	left, rest := SplitLeft(Window(100, 50), 30)
	if Width(left) != 30 || Width(rest) != 70 || rest.Min.X != 30 {
		t.Fatalf("left=%v rest=%v", left, rest)
	}
}

func TestInsetCollapsesThinBoxes(t *testing.T) {
	got := Inset(Window(10, 100), 8)
	if !near(got.Min.X, 5) || !near(got.Max.X, 5) || !near(got.Min.Y, 8) || !near(got.Max.Y, 92) {
		t.Fatalf("inset=%v", got)
	}
}

func TestNormalizeSwapsCorners(t *testing.T) {
	got := Normalize(r2.Box{Min: r2.Vec{X: 5, Y: 5}, Max: r2.Vec{X: 1, Y: 2}})
	if got.Min != (r2.Vec{X: 1, Y: 2}) || got.Max != (r2.Vec{X: 5, Y: 5}) {
		t.Fatalf("normalize=%v", got)
	}
}

func TestAnchors(t *testing.T) {
	box := Window(200, 100)
	tl := AnchorTopLeft(box, 20, 10)
	if !boxNear(tl, r2.Box{Min: r2.Vec{X: 0, Y: 90}, Max: r2.Vec{X: 20, Y: 100}}) {
		t.Fatalf("top-left=%v", tl)
	}
	br := AnchorBottomRight(box, 20, 10)
	if !boxNear(br, r2.Box{Min: r2.Vec{X: 180, Y: 0}, Max: r2.Vec{X: 200, Y: 10}}) {
		t.Fatalf("bottom-right=%v", br)
	}
}

func TestFitAspect(t *testing.T) {
	// Wide box: height limits.
	got := FitAspect(Window(400, 100), 2)
	if !boxNear(got, r2.Box{Min: r2.Vec{X: 100, Y: 0}, Max: r2.Vec{X: 300, Y: 100}}) {
		t.Fatalf("wide=%v", got)
	}
	// Tall box: width limits.
	got = FitAspect(Window(100, 400), 2)
	if !boxNear(got, r2.Box{Min: r2.Vec{X: 0, Y: 175}, Max: r2.Vec{X: 100, Y: 225}}) {
		t.Fatalf("tall=%v", got)
	}
}

func TestRow(t *testing.T) {
	pts := Row(r2.Vec{X: 30, Y: 703}, 70, 3)
	want := []r2.Vec{{X: 30, Y: 703}, {X: 100, Y: 703}, {X: 170, Y: 703}}
	if len(pts) != len(want) {
		t.Fatalf("len=%d", len(pts))
	}
	for i := range want {
		if pts[i] != want[i] {
			t.Fatalf("pts[%d]=%v want %v", i, pts[i], want[i])
		}
	}
}
