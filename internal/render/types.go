package render

import (
	"image/color"

	"fallingstuff/internal/core"

	"github.com/go-gl/mathgl/mgl32"
)

// ShapeType selects the per-instance property table a template reads.
type ShapeType int

const (
	ShapeCircle ShapeType = iota
	ShapeBox
	ShapeSegment
	ShapeDebug
)

func (s ShapeType) String() string {
	switch s {
	case ShapeCircle:
		return "circle"
	case ShapeBox:
		return "box"
	case ShapeSegment:
		return "segment"
	case ShapeDebug:
		return "debug"
	default:
		return "unknown"
	}
}

// Appearance is how a template's geometry is drawn.
type Appearance int

const (
	Filled Appearance = iota
	Edged
)

// Primitive is the vertex topology of a template.
type Primitive int

const (
	PrimitiveUnknown Primitive = iota
	PrimitiveLineStrip
	PrimitiveTriangles
	PrimitiveTriangleFan
)

// VertexBuffer and Texture are opaque backend handles. Zero is never valid.
type VertexBuffer uint32
type Texture uint32

// ShapeTemplate is geometry shared by every instance of a shape type.
type ShapeTemplate struct {
	Name        string
	Type        ShapeType
	Appearance  Appearance
	Primitive   Primitive
	NumVertices int
	Buffer      VertexBuffer
}

// Renderer is what the simulation needs from a drawing backend.
type Renderer interface {
	BeginFrame()
	NewVertexBuffer(vertices []mgl32.Vec4) VertexBuffer
	DestroyVertexBuffer(buf VertexBuffer)
	NewTexture(rgba []byte, w, h int) Texture
	DestroyTexture(tex Texture)
	ViewChanged()
	RenderShapes(t *ShapeTemplate, offset, count int, alpha float32)
	SetProjectionMatrix(m mgl32.Mat4)
	SetShapeProperties(t ShapeType, i int, model mgl32.Mat4, c color.NRGBA)
	CursorInfo() core.CursorInfo
}
