// Package arena stores physics shapes and bodies in fixed-capacity slots
// addressed by index. Slots are never freed one at a time; Clear drops
// everything and the world is rebuilt from scratch.
package arena

import (
	"image/color"

	"fallingstuff/internal/config"
	"fallingstuff/internal/core"

	"github.com/jakecoffman/cp"
)

// Kind names the collection a shape lives in.
type Kind uint8

const (
	KindNone Kind = iota
	KindCircle
	KindBox
	KindSegment
)

func (k Kind) String() string {
	switch k {
	case KindCircle:
		return "circle"
	case KindBox:
		return "box"
	case KindSegment:
		return "segment"
	default:
		return "none"
	}
}

// Tag is stored in a shape's UserData so its slot can be recovered from a
// shape handed back by the physics engine.
type Tag struct {
	Kind  Kind
	Index int
}

type shapeSlots struct {
	kind   Kind
	shapes []*cp.Shape
	colors []color.NRGBA
	n      int
}

func newShapeSlots(kind Kind, capacity int) shapeSlots {
	return shapeSlots{
		kind:   kind,
		shapes: make([]*cp.Shape, capacity),
		colors: make([]color.NRGBA, capacity),
	}
}

func (s *shapeSlots) alloc() int {
	if s.n >= len(s.shapes) {
		core.Fatalf("%s capacity %d exceeded", s.kind, len(s.shapes))
	}
	i := s.n
	s.n++
	return i
}

func (s *shapeSlots) set(i int, shape *cp.Shape, c color.NRGBA) {
	if i < 0 || i >= s.n {
		core.Fatalf("%s index %d not allocated (live %d)", s.kind, i, s.n)
	}
	s.shapes[i] = shape
	s.colors[i] = c
	if shape != nil {
		shape.UserData = Tag{Kind: s.kind, Index: i}
	}
}

func (s *shapeSlots) indexOf(shape *cp.Shape) int {
	if shape == nil {
		core.Fatalf("nil %s shape", s.kind)
	}
	tag, ok := shape.UserData.(Tag)
	if !ok || tag.Kind != s.kind || tag.Index < 0 || tag.Index >= s.n || s.shapes[tag.Index] != shape {
		core.Fatalf("shape does not belong to the %s collection", s.kind)
	}
	return tag.Index
}

func (s *shapeSlots) clear() {
	clear(s.shapes)
	clear(s.colors)
	s.n = 0
}

// Arena owns the shape and body slots for one world.
type Arena struct {
	circles  shapeSlots
	boxes    shapeSlots
	segments shapeSlots

	bodies    []*cp.Body
	numBodies int

	numPegs       int
	numCirclePegs int
}

// New allocates an arena. A body capacity below the total shape capacity is
// a configuration error.
func New(c config.Capacity) *Arena {
	if c.Circles < 0 || c.Boxes < 0 || c.Segments < 0 {
		core.Fatalf("negative arena capacity %+v", c)
	}
	if c.Bodies < c.Circles+c.Boxes+c.Segments {
		core.Fatalf("body capacity %d below shape capacity %d", c.Bodies, c.Circles+c.Boxes+c.Segments)
	}
	return &Arena{
		circles:  newShapeSlots(KindCircle, c.Circles),
		boxes:    newShapeSlots(KindBox, c.Boxes),
		segments: newShapeSlots(KindSegment, c.Segments),
		bodies:   make([]*cp.Body, c.Bodies),
	}
}

// Capacity reports the configured slot counts.
func (a *Arena) Capacity() config.Capacity {
	return config.Capacity{
		Circles:  len(a.circles.shapes),
		Boxes:    len(a.boxes.shapes),
		Segments: len(a.segments.shapes),
		Bodies:   len(a.bodies),
	}
}

func (a *Arena) AllocCircle() int  { return a.circles.alloc() }
func (a *Arena) AllocBox() int     { return a.boxes.alloc() }
func (a *Arena) AllocSegment() int { return a.segments.alloc() }

// AllocBody reserves the next body slot.
func (a *Arena) AllocBody() int {
	if a.numBodies >= len(a.bodies) {
		core.Fatalf("body capacity %d exceeded", len(a.bodies))
	}
	i := a.numBodies
	a.numBodies++
	return i
}

func (a *Arena) SetCircle(i int, s *cp.Shape, c color.NRGBA)  { a.circles.set(i, s, c) }
func (a *Arena) SetBox(i int, s *cp.Shape, c color.NRGBA)     { a.boxes.set(i, s, c) }
func (a *Arena) SetSegment(i int, s *cp.Shape, c color.NRGBA) { a.segments.set(i, s, c) }

// SetBody stores b in slot i and records the index in its UserData.
func (a *Arena) SetBody(i int, b *cp.Body) {
	if i < 0 || i >= a.numBodies {
		core.Fatalf("body index %d not allocated (live %d)", i, a.numBodies)
	}
	a.bodies[i] = b
	if b != nil {
		b.UserData = i
	}
}

func (a *Arena) IndexOfCircle(s *cp.Shape) int  { return a.circles.indexOf(s) }
func (a *Arena) IndexOfBox(s *cp.Shape) int     { return a.boxes.indexOf(s) }
func (a *Arena) IndexOfSegment(s *cp.Shape) int { return a.segments.indexOf(s) }

func (a *Arena) Circle(i int) *cp.Shape         { return a.circles.shapes[i] }
func (a *Arena) CircleColor(i int) color.NRGBA  { return a.circles.colors[i] }
func (a *Arena) Box(i int) *cp.Shape            { return a.boxes.shapes[i] }
func (a *Arena) BoxColor(i int) color.NRGBA     { return a.boxes.colors[i] }
func (a *Arena) Segment(i int) *cp.Shape        { return a.segments.shapes[i] }
func (a *Arena) SegmentColor(i int) color.NRGBA { return a.segments.colors[i] }
func (a *Arena) Body(i int) *cp.Body            { return a.bodies[i] }
func (a *Arena) NumCircles() int                { return a.circles.n }
func (a *Arena) NumBoxes() int                  { return a.boxes.n }
func (a *Arena) NumSegments() int               { return a.segments.n }
func (a *Arena) NumBodies() int                 { return a.numBodies }
func (a *Arena) NumPegs() int                   { return a.numPegs }
func (a *Arena) NumCirclePegs() int             { return a.numCirclePegs }

// MarkCirclePeg records circle slot i as a peg. Circle pegs must be the
// first circles allocated so they occupy [0, NumCirclePegs).
func (a *Arena) MarkCirclePeg(i int) {
	if i != a.numCirclePegs || i >= a.circles.n {
		core.Fatalf("circle peg %d breaks the peg prefix (pegs %d, circles %d)", i, a.numCirclePegs, a.circles.n)
	}
	a.numCirclePegs++
	a.numPegs++
}

// MarkBoxPeg records a box peg.
func (a *Arena) MarkBoxPeg() {
	a.numPegs++
}

// Clear zeroes every slot and cursor. Callers must have detached the shapes
// and bodies from their space first.
func (a *Arena) Clear() {
	a.circles.clear()
	a.boxes.clear()
	a.segments.clear()
	clear(a.bodies)
	a.numBodies = 0
	a.numPegs = 0
	a.numCirclePegs = 0
}
