//go:build ebiten

package render

import (
	"image"
	"image/color"

	"fallingstuff/internal/core"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/vector"
	"go.uber.org/zap"
)

// Ebiten draws the recorded frame onto an ebiten screen image.
type Ebiten struct {
	*Store

	white    *ebiten.Image
	vertices []ebiten.Vertex
	indices  []uint16
}

// NewEbiten creates the GPU backend.
func NewEbiten(log *zap.Logger) *Ebiten {
	base := ebiten.NewImage(3, 3)
	base.Fill(color.White)
	return &Ebiten{
		Store: NewStore(log),
		white: base.SubImage(image.Rect(1, 1, 2, 2)).(*ebiten.Image),
	}
}

// CursorInfo reads the pointer straight from ebiten.
func (e *Ebiten) CursorInfo() core.CursorInfo {
	x, y := ebiten.CursorPosition()
	return core.CursorInfo{
		X:       float32(x),
		Y:       float32(y),
		Pressed: ebiten.IsMouseButtonPressed(ebiten.MouseButtonLeft),
	}
}

// Draw replays the queued commands onto screen.
func (e *Ebiten) Draw(screen *ebiten.Image) {
	b := screen.Bounds()
	w, h := b.Dx(), b.Dy()
	for _, cmd := range e.Commands() {
		switch cmd.Template.Primitive {
		case PrimitiveTriangles, PrimitiveTriangleFan, PrimitiveLineStrip:
		default:
			e.log.Debug("skipping unknown primitive", zap.String("template", cmd.Template.Name))
			continue
		}
		for i := cmd.Offset; i < cmd.Offset+cmd.Count; i++ {
			inst, ok := e.Instance(cmd.Template.Type, i)
			if !ok {
				continue
			}
			c := withAlpha(inst.Color, cmd.Alpha)
			if c.A == 0 {
				continue
			}
			pts := e.Project(cmd.Template, i, w, h)
			if len(pts) == 0 {
				continue
			}
			switch cmd.Template.Primitive {
			case PrimitiveLineStrip:
				for j := 1; j < len(pts); j++ {
					vector.StrokeLine(screen, float32(pts[j-1].X), float32(pts[j-1].Y),
						float32(pts[j].X), float32(pts[j].Y), 1, c, true)
				}
			case PrimitiveTriangles:
				e.fill(screen, pts, c, false)
			case PrimitiveTriangleFan:
				e.fill(screen, pts, c, true)
			}
		}
	}
}

func (e *Ebiten) fill(screen *ebiten.Image, pts []Point, c color.NRGBA, fan bool) {
	r, g, b, a := premultiplied(c)
	e.vertices = e.vertices[:0]
	e.indices = e.indices[:0]
	for _, p := range pts {
		e.vertices = append(e.vertices, ebiten.Vertex{
			DstX: float32(p.X), DstY: float32(p.Y),
			SrcX: 1, SrcY: 1,
			ColorR: r, ColorG: g, ColorB: b, ColorA: a,
		})
	}
	if fan {
		for i := 1; i+1 < len(pts); i++ {
			e.indices = append(e.indices, 0, uint16(i), uint16(i+1))
		}
	} else {
		for i := 0; i+2 < len(pts); i += 3 {
			e.indices = append(e.indices, uint16(i), uint16(i+1), uint16(i+2))
		}
	}
	screen.DrawTriangles(e.vertices, e.indices, e.white, &ebiten.DrawTrianglesOptions{})
}
