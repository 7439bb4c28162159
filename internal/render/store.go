package render

import (
	"image/color"
	"sync"

	"fallingstuff/internal/core"
	"fallingstuff/internal/geom"

	"github.com/go-gl/mathgl/mgl32"
	"go.uber.org/zap"
)

// Instance is the per-entity data a template is drawn with.
type Instance struct {
	Model mgl32.Mat4
	Color color.NRGBA
}

// Command is one queued RenderShapes call.
type Command struct {
	Template ShapeTemplate
	Offset   int
	Count    int
	Alpha    float32
}

type texture struct {
	rgba []byte
	w, h int
}

// Store implements Renderer by recording everything it is given. Concrete
// backends embed it and rasterise the recorded frame.
type Store struct {
	log *zap.Logger

	buffers    map[VertexBuffer][]mgl32.Vec4
	nextBuffer VertexBuffer
	textures   map[Texture]texture
	nextTex    Texture

	instances  map[ShapeType][]Instance
	projection mgl32.Mat4
	commands   []Command

	cursorMu sync.Mutex
	cursor   core.CursorInfo

	viewChanges int
	frames      int
}

// NewStore returns an empty store. A nil logger is replaced with a no-op one.
func NewStore(log *zap.Logger) *Store {
	if log == nil {
		log = zap.NewNop()
	}
	return &Store{
		log:        log,
		buffers:    map[VertexBuffer][]mgl32.Vec4{},
		textures:   map[Texture]texture{},
		instances:  map[ShapeType][]Instance{},
		projection: mgl32.Ident4(),
		cursor:     core.NoCursor,
	}
}

// BeginFrame drops the commands queued for the previous frame.
func (s *Store) BeginFrame() {
	s.commands = s.commands[:0]
	s.frames++
}

func (s *Store) NewVertexBuffer(vertices []mgl32.Vec4) VertexBuffer {
	s.nextBuffer++
	s.buffers[s.nextBuffer] = append([]mgl32.Vec4(nil), vertices...)
	return s.nextBuffer
}

func (s *Store) DestroyVertexBuffer(buf VertexBuffer) {
	delete(s.buffers, buf)
}

func (s *Store) NewTexture(rgba []byte, w, h int) Texture {
	if w <= 0 || h <= 0 || len(rgba) < w*h*4 {
		core.Fatalf("texture %dx%d needs %d bytes, got %d", w, h, w*h*4, len(rgba))
	}
	s.nextTex++
	s.textures[s.nextTex] = texture{rgba: append([]byte(nil), rgba[:w*h*4]...), w: w, h: h}
	return s.nextTex
}

func (s *Store) DestroyTexture(tex Texture) {
	delete(s.textures, tex)
}

func (s *Store) ViewChanged() { s.viewChanges++ }

// RenderShapes queues a draw of count instances starting at offset. A
// non-positive count is ignored.
func (s *Store) RenderShapes(t *ShapeTemplate, offset, count int, alpha float32) {
	if t == nil || count <= 0 {
		return
	}
	s.commands = append(s.commands, Command{Template: *t, Offset: offset, Count: count, Alpha: alpha})
}

func (s *Store) SetProjectionMatrix(m mgl32.Mat4) { s.projection = m }

// SetShapeProperties stores the model transform and colour of instance i.
func (s *Store) SetShapeProperties(t ShapeType, i int, model mgl32.Mat4, c color.NRGBA) {
	if i < 0 {
		return
	}
	list := s.instances[t]
	if i >= len(list) {
		if i < cap(list) {
			list = list[:i+1]
		} else {
			grown := make([]Instance, i+1, 2*(i+1))
			copy(grown, list)
			list = grown
		}
	}
	list[i] = Instance{Model: model, Color: c}
	s.instances[t] = list
}

// CursorInfo returns the last cursor state set with SetCursor.
func (s *Store) CursorInfo() core.CursorInfo {
	s.cursorMu.Lock()
	defer s.cursorMu.Unlock()
	return s.cursor
}

// SetCursor records pointer state for headless backends.
func (s *Store) SetCursor(c core.CursorInfo) {
	s.cursorMu.Lock()
	s.cursor = c
	s.cursorMu.Unlock()
}

func (s *Store) Commands() []Command                  { return s.commands }
func (s *Store) Projection() mgl32.Mat4               { return s.projection }
func (s *Store) ViewChanges() int                     { return s.viewChanges }
func (s *Store) Frames() int                          { return s.frames }
func (s *Store) NumVertexBuffers() int                { return len(s.buffers) }
func (s *Store) NumTextures() int                     { return len(s.textures) }
func (s *Store) Vertices(b VertexBuffer) []mgl32.Vec4 { return s.buffers[b] }

// Instance returns instance i of type t and whether it has been set.
func (s *Store) Instance(t ShapeType, i int) (Instance, bool) {
	list := s.instances[t]
	if i < 0 || i >= len(list) {
		return Instance{}, false
	}
	return list[i], true
}

// Point is a screen-space vertex in pixels.
type Point struct{ X, Y float64 }

// Project transforms the template's vertices for one instance into screen
// space for a w×h target. Out of range instances give nil.
func (s *Store) Project(t ShapeTemplate, instance int, w, h int) []Point {
	inst, ok := s.Instance(t.Type, instance)
	if !ok {
		return nil
	}
	verts := s.buffers[t.Buffer]
	if t.NumVertices < len(verts) {
		verts = verts[:t.NumVertices]
	}
	mvp := s.projection.Mul4(inst.Model)
	out := make([]Point, len(verts))
	for i, v := range verts {
		x, y := geom.ClipToScreen(mvp.Mul4x1(v), w, h)
		out[i] = Point{X: x, Y: y}
	}
	return out
}
