package render

import (
	"bytes"
	"image/color"
	"image/png"
	"testing"

	"fallingstuff/internal/geom"

	"github.com/go-gl/mathgl/mgl32"
)

func newTemplate(r Renderer, name string, typ ShapeType, prim Primitive, verts []mgl32.Vec4) *ShapeTemplate {
	return &ShapeTemplate{
		Name:        name,
		Type:        typ,
		Primitive:   prim,
		NumVertices: len(verts),
		Buffer:      r.NewVertexBuffer(verts),
	}
}

func TestStoreRecordsCommands(t *testing.T) {
	s := NewStore(nil)
	tmpl := newTemplate(s, "box", ShapeBox, PrimitiveTriangles, geom.BoxFilled())
	if tmpl.Buffer == 0 || s.NumVertexBuffers() != 1 {
		t.Fatal("vertex buffer not created")
	}
	s.BeginFrame()
	s.RenderShapes(tmpl, 0, 0, 1)
	s.RenderShapes(tmpl, 0, -3, 1)
	if len(s.Commands()) != 0 {
		t.Fatal("empty passes must be ignored")
	}
	s.RenderShapes(tmpl, 2, 3, .5)
	if got := s.Commands(); len(got) != 1 || got[0].Offset != 2 || got[0].Count != 3 {
		t.Fatalf("unexpected commands %+v", got)
	}
	s.BeginFrame()
	if len(s.Commands()) != 0 {
		t.Fatal("BeginFrame must drop old commands")
	}
	s.DestroyVertexBuffer(tmpl.Buffer)
	if s.NumVertexBuffers() != 0 {
		t.Fatal("vertex buffer not destroyed")
	}
}

func TestStoreInstancesGrow(t *testing.T) {
	s := NewStore(nil)
	s.SetShapeProperties(ShapeCircle, 5, mgl32.Ident4(), geom.Red)
	if _, ok := s.Instance(ShapeCircle, 5); !ok {
		t.Fatal("instance 5 missing")
	}
	if _, ok := s.Instance(ShapeCircle, 6); ok {
		t.Fatal("instance 6 should not exist")
	}
	s.SetShapeProperties(ShapeCircle, 2, mgl32.Ident4(), geom.Blue)
	inst, _ := s.Instance(ShapeCircle, 2)
	if inst.Color != geom.Blue {
		t.Fatalf("instance 2 colour %v", inst.Color)
	}
}

func TestRasterDrawsFilledBox(t *testing.T) {
	r := NewRaster(100, 50, nil)
	tmpl := newTemplate(r, "box", ShapeBox, PrimitiveTriangles, geom.BoxFilled())
	r.SetProjectionMatrix(geom.Projection(100, 50, geom.Vec2{X: 1, Y: 1}, geom.Vec2{}))
	r.SetShapeProperties(ShapeBox, 0, geom.BoxModel(geom.Vec2{X: 50, Y: 25}, 0, 20, 20), geom.Red)
	r.BeginFrame()
	r.RenderShapes(tmpl, 0, 1, 1)
	img := r.Draw()

	centre := color.NRGBAModel.Convert(img.At(50, 25)).(color.NRGBA)
	if centre.R < 200 || centre.G > 40 {
		t.Fatalf("box centre not red: %v", centre)
	}
	corner := color.NRGBAModel.Convert(img.At(2, 2)).(color.NRGBA)
	if corner.R != 0 || corner.G != 0 || corner.B != 0 {
		t.Fatalf("background touched: %v", corner)
	}

	var buf bytes.Buffer
	if err := r.WritePNG(&buf); err != nil {
		t.Fatalf("WritePNG: %v", err)
	}
	decoded, err := png.Decode(&buf)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if decoded.Bounds().Dx() != 100 || decoded.Bounds().Dy() != 50 {
		t.Fatalf("unexpected png bounds %v", decoded.Bounds())
	}
}

func TestRasterSkipsTransparentAndUnknown(t *testing.T) {
	r := NewRaster(20, 20, nil)
	box := newTemplate(r, "box", ShapeBox, PrimitiveTriangles, geom.BoxFilled())
	odd := newTemplate(r, "odd", ShapeBox, PrimitiveUnknown, geom.BoxFilled())
	r.SetProjectionMatrix(geom.Projection(20, 20, geom.Vec2{X: 1, Y: 1}, geom.Vec2{}))
	r.SetShapeProperties(ShapeBox, 0, geom.BoxModel(geom.Vec2{X: 10, Y: 10}, 0, 10, 10), geom.Transparent)
	r.SetShapeProperties(ShapeBox, 1, geom.BoxModel(geom.Vec2{X: 10, Y: 10}, 0, 10, 10), geom.White)
	r.BeginFrame()
	r.RenderShapes(box, 0, 1, 1)
	r.RenderShapes(odd, 1, 1, 1)
	img := r.Draw()
	c := color.NRGBAModel.Convert(img.At(10, 10)).(color.NRGBA)
	if c.R != 0 || c.G != 0 || c.B != 0 {
		t.Fatalf("nothing should be drawn, got %v", c)
	}
}

func TestTextures(t *testing.T) {
	r := NewRaster(4, 4, nil)
	tex := r.NewTexture([]byte{1, 2, 3, 4}, 1, 1)
	img := r.TextureImage(tex)
	if img == nil {
		t.Fatal("texture missing")
	}
	if c := color.NRGBAModel.Convert(img.At(0, 0)).(color.NRGBA); c != (color.NRGBA{R: 1, G: 2, B: 3, A: 4}) {
		t.Fatalf("texture pixel %v", c)
	}
	r.DestroyTexture(tex)
	if r.NumTextures() != 0 || r.TextureImage(tex) != nil {
		t.Fatal("texture not destroyed")
	}
}

func TestWithAlpha(t *testing.T) {
	c := withAlpha(color.NRGBA{R: 10, A: 200}, .5)
	if c.A != 100 || c.R != 10 {
		t.Fatalf("withAlpha = %v", c)
	}
	if withAlpha(geom.White, 2).A != 255 {
		t.Fatal("alpha must clamp to 1")
	}
}
