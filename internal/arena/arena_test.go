package arena

import (
	"image/color"
	"os"
	"testing"

	"fallingstuff/internal/config"
	"fallingstuff/internal/core"

	"github.com/jakecoffman/cp"
)

func TestMain(m *testing.M) {
	core.SetFatalHandler(func(msg string) { panic(msg) })
	os.Exit(m.Run())
}

func expectFatal(t *testing.T, fn func()) {
	t.Helper()
	defer func() {
		if recover() == nil {
			t.Fatal("expected fatal error")
		}
	}()
	fn()
}

func smallCapacity() config.Capacity {
	return config.Capacity{Circles: 4, Boxes: 2, Segments: 3, Bodies: 9}
}

func TestAllocReturnsSequentialIndices(t *testing.T) {
	a := New(smallCapacity())
	for want := 0; want < 4; want++ {
		if got := a.AllocCircle(); got != want {
			t.Fatalf("AllocCircle = %d, want %d", got, want)
		}
	}
	if a.AllocBox() != 0 || a.AllocSegment() != 0 || a.AllocBody() != 0 {
		t.Fatal("each collection must start at index 0")
	}
	if a.NumCircles() != 4 || a.NumBoxes() != 1 || a.NumSegments() != 1 || a.NumBodies() != 1 {
		t.Fatalf("unexpected counts %d %d %d %d", a.NumCircles(), a.NumBoxes(), a.NumSegments(), a.NumBodies())
	}
}

func TestAllocOverflowIsFatal(t *testing.T) {
	a := New(smallCapacity())
	a.AllocBox()
	a.AllocBox()
	expectFatal(t, func() { a.AllocBox() })
}

func TestNewRejectsSmallBodyCapacity(t *testing.T) {
	expectFatal(t, func() {
		New(config.Capacity{Circles: 4, Boxes: 4, Segments: 4, Bodies: 11})
	})
}

func TestIndexOfRoundTrips(t *testing.T) {
	a := New(smallCapacity())
	body := cp.NewStaticBody()
	colors := []color.NRGBA{{R: 1, A: 255}, {G: 2, A: 255}, {B: 3, A: 255}}
	shapes := make([]*cp.Shape, len(colors))
	for i, c := range colors {
		idx := a.AllocCircle()
		shapes[i] = cp.NewCircle(body, float64(i+1), cp.Vector{})
		a.SetCircle(idx, shapes[i], c)
	}
	for i, s := range shapes {
		idx := a.IndexOfCircle(s)
		if idx != i {
			t.Fatalf("IndexOfCircle = %d, want %d", idx, i)
		}
		if a.Circle(idx) != s || a.CircleColor(idx) != colors[i] {
			t.Fatalf("slot %d does not match its shape and colour", idx)
		}
	}

	seg := cp.NewSegment(body, cp.Vector{}, cp.Vector{X: 1}, 1)
	a.SetSegment(a.AllocSegment(), seg, color.NRGBA{})
	expectFatal(t, func() { a.IndexOfCircle(seg) })
	if a.IndexOfSegment(seg) != 0 {
		t.Fatal("segment index lost")
	}
}

func TestCirclePegPrefix(t *testing.T) {
	a := New(smallCapacity())
	a.AllocCircle()
	a.MarkCirclePeg(0)
	a.MarkBoxPeg()
	a.AllocCircle()
	a.AllocCircle()
	expectFatal(t, func() { a.MarkCirclePeg(2) })
	if a.NumPegs() != 2 || a.NumCirclePegs() != 1 {
		t.Fatalf("pegs=%d circlePegs=%d", a.NumPegs(), a.NumCirclePegs())
	}
}

func TestClearResetsEverything(t *testing.T) {
	a := New(smallCapacity())
	body := cp.NewStaticBody()
	i := a.AllocCircle()
	a.SetCircle(i, cp.NewCircle(body, 1, cp.Vector{}), color.NRGBA{R: 9, A: 255})
	a.MarkCirclePeg(i)
	b := a.AllocBody()
	a.SetBody(b, body)

	a.Clear()
	if a.NumCircles() != 0 || a.NumBodies() != 0 || a.NumPegs() != 0 || a.NumCirclePegs() != 0 {
		t.Fatal("counts survived Clear")
	}
	if a.Circle(0) != nil || a.Body(0) != nil || a.CircleColor(0) != (color.NRGBA{}) {
		t.Fatal("slots survived Clear")
	}
	if a.AllocCircle() != 0 || a.AllocBody() != 0 {
		t.Fatal("allocation after Clear must restart at 0")
	}
}
