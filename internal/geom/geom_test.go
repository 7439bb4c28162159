package geom

import (
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl32"
)

func near(a, b float32) bool { return math.Abs(float64(a-b)) < 1e-4 }

func TestCircleMeshes(t *testing.T) {
	filled := CircleFilled(CircleParts, 1, 0, 0)
	if len(filled) != CircleParts*3 {
		t.Fatalf("filled circle has %d vertices", len(filled))
	}
	strip := CircleLineStrip(CircleParts, 1)
	if len(strip) != CircleParts+1 {
		t.Fatalf("line strip has %d vertices", len(strip))
	}
	first, last := strip[0], strip[len(strip)-1]
	if !near(first.X(), last.X()) || !near(first.Y(), last.Y()) {
		t.Fatalf("line strip not closed: %v vs %v", first, last)
	}
	for _, v := range strip {
		r := math.Hypot(float64(v.X()), float64(v.Y()))
		if math.Abs(r-1) > 1e-4 {
			t.Fatalf("outline vertex off the unit circle: %v", v)
		}
	}
	dots := CircleDots()
	if len(dots) != dotCount*dotParts*3 {
		t.Fatalf("dots mesh has %d vertices", len(dots))
	}
	for _, v := range dots {
		r := math.Hypot(float64(v.X()), float64(v.Y()))
		if r > dotDistance+dotRadius+1e-4 || r < dotDistance-dotRadius-1e-4 {
			t.Fatalf("dot vertex %v outside its ring", v)
		}
	}
}

func TestModelTransforms(t *testing.T) {
	m := CircleModel(Vec2{10, 20}, math.Pi/2, 3)
	p := m.Mul4x1(mgl32.Vec4{1, 0, 0, 1})
	if !near(p.X(), 10) || !near(p.Y(), 23) {
		t.Fatalf("circle transform: got %v", p)
	}

	m = BoxModel(Vec2{0, 0}, 0, 4, 2)
	p = m.Mul4x1(mgl32.Vec4{.5, .5, 0, 1})
	if !near(p.X(), 2) || !near(p.Y(), 1) {
		t.Fatalf("box transform: got %v", p)
	}

	m = SegmentModel(Vec2{0, 0}, 0, Vec2{0, 0}, Vec2{0, 10}, 1)
	p = m.Mul4x1(mgl32.Vec4{.5, 0, 0, 1})
	if !near(p.X(), 0) || !near(p.Y(), 11) {
		t.Fatalf("segment end cap: got %v", p)
	}
}

func TestProjectionMapsViewToClip(t *testing.T) {
	proj := Projection(100, 50, Vec2{1, 1}, Vec2{})
	lo := proj.Mul4x1(mgl32.Vec4{0, 0, 0, 1})
	hi := proj.Mul4x1(mgl32.Vec4{100, 50, 0, 1})
	if !near(lo.X(), -1) || !near(lo.Y(), -1) || !near(hi.X(), 1) || !near(hi.Y(), 1) {
		t.Fatalf("projection corners: %v %v", lo, hi)
	}
	x, y := ClipToScreen(hi, 400, 200)
	if math.Abs(x-400) > 1e-3 || math.Abs(y) > 1e-3 {
		t.Fatalf("clip to screen: %v,%v", x, y)
	}

	panned := Projection(100, 50, Vec2{1, 1}, Vec2{X: 10})
	p := panned.Mul4x1(mgl32.Vec4{0, 0, 0, 1})
	if !near(p.X(), -0.8) {
		t.Fatalf("pan translation not applied: %v", p)
	}
}
