package sim

import (
	"image/color"
	"math"

	"fallingstuff/internal/arena"
	"fallingstuff/internal/geom"

	"github.com/jakecoffman/cp"
	"go.uber.org/zap"
)

const (
	pegElasticity = 0.8
	pegFriction   = 1.0

	circlePegScale = 2.5
	boxPegScale    = 4.0

	marbleDensity    = 10.0
	marbleElasticity = 0.8
	marbleFriction   = 1.0
	marbleSpawnRise  = 1.1
	ceilingFactor    = 2.0
)

// buildWorld creates the physics space, the walls and the pegs. Pegs are
// created before any marble so circle pegs hold the lowest circle indices.
func (s *Simulation) buildWorld() {
	if s.arena == nil {
		s.arena = arena.New(s.cfg.Capacity)
	}
	s.space = cp.NewSpace()
	s.space.Iterations = uint(max(1, s.cfg.Iterations))
	s.space.SetGravity(s.game.gravity)

	if s.cfg.DebugPegs {
		s.addDebugPegs()
		return
	}
	s.addWalls()

	w, h := s.WorldWidth(), s.WorldHeight()
	numPegs := int(math.Round(w * h * s.cfg.PegDensity))
	// A window grown after startup can ask for more pegs than the arena holds.
	if room := min(s.cfg.Capacity.Boxes, s.cfg.Capacity.Circles-s.cfg.MarblesLimit); numPegs > room {
		s.log.Warn("peg count limited by arena capacity", zap.Int("wanted", numPegs), zap.Int("placed", room))
		numPegs = room
	}
	rng := s.game.rng
	for i := 0; i < numPegs; i++ {
		c := geom.PegPalette[rng.IntRange(0, len(geom.PegPalette)-1)]
		if rng.Bool() {
			cx := rng.Float64Range(0, w)
			cy := rng.Float64Range(0, h)
			r := circlePegScale * rng.Float64Range(6, 10)
			s.addCirclePeg(cx, cy, r, c)
			continue
		}
		cx := rng.Float64Range(0, w)
		cy := rng.Float64Range(0, h)
		bw := boxPegScale * rng.Float64Range(6, 14)
		bh := boxPegScale * rng.Float64Range(1, 2)
		angle := rng.Float64Range(0, math.Pi)
		s.addBoxPeg(cx, cy, bw, bh, angle, c)
	}
}

func (s *Simulation) addWalls() {
	thickness := s.cfg.WallWidthMM
	left := -thickness / 2
	right := s.WorldWidth() + thickness/2
	bottom := -thickness / 2
	top := s.WorldHeight() * ceilingFactor

	body := s.addStaticBody(cp.Vector{}, 0)
	walls := [][2]cp.Vector{
		{{X: left, Y: bottom}, {X: right, Y: bottom}},
		{{X: left, Y: bottom}, {X: left, Y: top}},
		{{X: right, Y: bottom}, {X: right, Y: top}},
	}
	for _, wall := range walls {
		shape := s.space.AddShape(cp.NewSegment(body, wall[0], wall[1], thickness/2))
		shape.SetElasticity(pegElasticity)
		shape.SetFriction(pegFriction)
		s.arena.SetSegment(s.arena.AllocSegment(), shape, geom.Transparent)
	}
}

func (s *Simulation) addDebugPegs() {
	w, h := s.WorldWidth(), s.WorldHeight()
	colors := []color.NRGBA{geom.Blue, geom.Green}
	for i := 0; i < 2; i++ {
		cx := w/4 + float64(i)*(w/2)
		s.addCirclePeg(cx, h/2, w/4+10, colors[i])
	}
}

func (s *Simulation) addStaticBody(pos cp.Vector, angle float64) *cp.Body {
	i := s.arena.AllocBody()
	body := s.space.AddBody(cp.NewStaticBody())
	body.SetPosition(pos)
	body.SetAngle(angle)
	s.arena.SetBody(i, body)
	return body
}

func (s *Simulation) addCirclePeg(cx, cy, r float64, c color.NRGBA) {
	body := s.addStaticBody(cp.Vector{X: cx, Y: cy}, 0)
	i := s.arena.AllocCircle()
	shape := s.space.AddShape(cp.NewCircle(body, r, cp.Vector{}))
	shape.SetElasticity(pegElasticity)
	shape.SetFriction(pegFriction)
	s.arena.SetCircle(i, shape, c)
	s.arena.MarkCirclePeg(i)
}

// addBoxPeg adds an elongated peg: a capsule of length w and thickness h.
func (s *Simulation) addBoxPeg(cx, cy, w, h, angle float64, c color.NRGBA) {
	body := s.addStaticBody(cp.Vector{X: cx, Y: cy}, angle)
	i := s.arena.AllocBox()
	shape := s.space.AddShape(cp.NewSegment(body, cp.Vector{X: -w / 2}, cp.Vector{X: w / 2}, h/2))
	shape.SetElasticity(pegElasticity)
	shape.SetFriction(pegFriction)
	s.arena.SetBox(i, shape, c)
	s.arena.MarkBoxPeg()
}

// AddMarble drops one marble above the visible field and returns its circle
// index.
func (s *Simulation) AddMarble() int {
	g := &s.game
	r := g.rng.Float64Range(g.marbleRadiusMin, g.marbleRadiusMax)
	x := g.rng.Float64Range(r, s.WorldWidth()-r)

	bi := s.arena.AllocBody()
	body := s.space.AddBody(cp.NewBody(0, 0))
	body.SetPosition(cp.Vector{X: x, Y: s.WorldHeight() * marbleSpawnRise})
	s.arena.SetBody(bi, body)

	ci := s.arena.AllocCircle()
	shape := s.space.AddShape(cp.NewCircle(body, r, cp.Vector{}))
	shape.SetDensity(marbleDensity)
	shape.SetElasticity(marbleElasticity)
	shape.SetFriction(marbleFriction)
	s.arena.SetCircle(ci, shape, geom.White)

	g.numMarbles++
	s.metrics.marbleSpawned()
	return ci
}

// teardownWorld detaches shapes before bodies, drops the space and clears
// the arena. Every arena index issued before it is invalid afterwards.
func (s *Simulation) teardownWorld() {
	if s.space == nil {
		return
	}
	a := s.arena
	for i := 0; i < a.NumCircles(); i++ {
		s.space.RemoveShape(a.Circle(i))
	}
	for i := 0; i < a.NumBoxes(); i++ {
		s.space.RemoveShape(a.Box(i))
	}
	for i := 0; i < a.NumSegments(); i++ {
		s.space.RemoveShape(a.Segment(i))
	}
	for i := 0; i < a.NumBodies(); i++ {
		s.space.RemoveBody(a.Body(i))
	}
	s.space = nil
	a.Clear()
}
