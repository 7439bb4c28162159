package sim

import (
	"fallingstuff/internal/core"
	"fallingstuff/internal/geom"
	"fallingstuff/internal/render"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/jakecoffman/cp"
	"go.uber.org/zap"
)

const (
	fillAlpha  = 0.35
	edgeAlpha  = 1.0
	dotsAlpha  = 1.0
	debugAlpha = 0.5678
)

// templates holds one vertex buffer per shape type and appearance.
type templates struct {
	built bool

	circleFilled  render.ShapeTemplate
	circleDots    render.ShapeTemplate
	circleEdged   render.ShapeTemplate
	boxFilled     render.ShapeTemplate
	boxEdged      render.ShapeTemplate
	segmentFilled render.ShapeTemplate
	segmentEdged  render.ShapeTemplate
	debug         render.ShapeTemplate
}

func (t *templates) all() []*render.ShapeTemplate {
	return []*render.ShapeTemplate{
		&t.circleFilled, &t.circleDots, &t.circleEdged,
		&t.boxFilled, &t.boxEdged,
		&t.segmentFilled, &t.segmentEdged,
		&t.debug,
	}
}

func (s *Simulation) newTemplate(name string, typ render.ShapeType, app render.Appearance, prim render.Primitive, verts []mgl32.Vec4) render.ShapeTemplate {
	return render.ShapeTemplate{
		Name:        name,
		Type:        typ,
		Appearance:  app,
		Primitive:   prim,
		NumVertices: len(verts),
		Buffer:      s.renderer.NewVertexBuffer(verts),
	}
}

// initTemplates uploads shape geometry once per shape type.
func (s *Simulation) initTemplates() {
	if s.templates.built {
		return
	}
	t := &s.templates
	t.circleFilled = s.newTemplate("circle-filled", render.ShapeCircle, render.Filled, render.PrimitiveTriangles,
		geom.CircleFilled(geom.CircleParts, 1, 0, 0))
	t.circleDots = s.newTemplate("circle-dots", render.ShapeCircle, render.Filled, render.PrimitiveTriangles,
		geom.CircleDots())
	t.circleEdged = s.newTemplate("circle-edged", render.ShapeCircle, render.Edged, render.PrimitiveLineStrip,
		geom.CircleLineStrip(geom.CircleParts, 1))
	t.boxFilled = s.newTemplate("box-filled", render.ShapeBox, render.Filled, render.PrimitiveTriangles, geom.BoxFilled())
	t.boxEdged = s.newTemplate("box-edged", render.ShapeBox, render.Edged, render.PrimitiveLineStrip, geom.BoxLineStrip())
	t.segmentFilled = s.newTemplate("segment-filled", render.ShapeSegment, render.Filled, render.PrimitiveTriangles, geom.BoxFilled())
	t.segmentEdged = s.newTemplate("segment-edged", render.ShapeSegment, render.Edged, render.PrimitiveLineStrip, geom.BoxLineStrip())
	t.debug = s.newTemplate("debug", render.ShapeDebug, render.Filled, render.PrimitiveTriangleFan, geom.DebugQuad())
	t.built = true
	s.log.Debug("shape templates uploaded", zap.Int("count", len(t.all())))
}

func (s *Simulation) destroyTemplates() {
	if !s.templates.built {
		return
	}
	for _, t := range s.templates.all() {
		s.renderer.DestroyVertexBuffer(t.Buffer)
	}
	s.templates = templates{}
}

func bodyPose(shape *cp.Shape) (geom.Vec2, float64) {
	body := shape.Body()
	p := body.Position()
	return geom.Vec2{X: p.X, Y: p.Y}, body.Angle()
}

func segmentModel(shape *cp.Shape) mgl32.Mat4 {
	seg, ok := shape.Class.(*cp.Segment)
	if !ok {
		core.Fatalf("shape in a segment collection is not a segment")
	}
	pos, angle := bodyPose(shape)
	a, b := seg.A(), seg.B()
	return geom.SegmentModel(pos, angle, geom.Vec2{X: a.X, Y: a.Y}, geom.Vec2{X: b.X, Y: b.Y}, seg.Radius())
}

// buildSnapshot copies every live entity's pose and colour to the renderer.
func (s *Simulation) buildSnapshot() {
	r := s.renderer
	a := s.arena
	r.SetProjectionMatrix(s.projection)

	for i := 0; i < a.NumCircles(); i++ {
		shape := a.Circle(i)
		circle, ok := shape.Class.(*cp.Circle)
		if !ok {
			core.Fatalf("shape %d in the circle collection is not a circle", i)
		}
		pos, angle := bodyPose(shape)
		r.SetShapeProperties(render.ShapeCircle, i, geom.CircleModel(pos, angle, circle.Radius()), a.CircleColor(i))
	}
	for i := 0; i < a.NumBoxes(); i++ {
		r.SetShapeProperties(render.ShapeBox, i, segmentModel(a.Box(i)), a.BoxColor(i))
	}
	for i := 0; i < a.NumSegments(); i++ {
		r.SetShapeProperties(render.ShapeSegment, i, segmentModel(a.Segment(i)), a.SegmentColor(i))
	}
	if s.cfg.DebugPegs {
		r.SetShapeProperties(render.ShapeDebug, 0, geom.BoxModel(geom.Vec2{X: 20, Y: 50}, 0, 20, 20), geom.Lime)
	}
}

// Render submits the draw passes for the current snapshot. Dots are drawn
// only over circle pegs, which occupy the first circle indices.
func (s *Simulation) Render() {
	if s.state != core.Alive {
		return
	}
	r := s.renderer
	a := s.arena
	t := &s.templates
	r.RenderShapes(&t.circleFilled, 0, a.NumCircles(), fillAlpha)
	r.RenderShapes(&t.circleDots, 0, a.NumCirclePegs(), dotsAlpha)
	r.RenderShapes(&t.circleEdged, 0, a.NumCircles(), edgeAlpha)
	r.RenderShapes(&t.boxFilled, 0, a.NumBoxes(), fillAlpha)
	r.RenderShapes(&t.boxEdged, 0, a.NumBoxes(), edgeAlpha)
	r.RenderShapes(&t.segmentFilled, 0, a.NumSegments(), fillAlpha)
	r.RenderShapes(&t.segmentEdged, 0, a.NumSegments(), edgeAlpha)
	if s.cfg.DebugPegs {
		r.RenderShapes(&t.debug, 0, 1, debugAlpha)
	}
}
