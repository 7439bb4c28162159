package render

import (
	"fmt"
	"image"
	"image/color"
	"io"

	"github.com/fogleman/gg"
	"go.uber.org/zap"
)

// Raster is a software backend drawing the recorded frame with gg. It is used
// by the headless tools and the telemetry server.
type Raster struct {
	*Store

	w, h       int
	background color.Color
	lineWidth  float64
	dc         *gg.Context
}

// NewRaster creates a w×h backend.
func NewRaster(w, h int, log *zap.Logger) *Raster {
	if w <= 0 || h <= 0 {
		w, h = 1, 1
	}
	return &Raster{
		Store:      NewStore(log),
		w:          w,
		h:          h,
		background: color.Black,
		lineWidth:  1,
		dc:         gg.NewContext(w, h),
	}
}

// Size returns the target size in pixels.
func (r *Raster) Size() (int, int) { return r.w, r.h }

// Resize changes the target size. The next Draw allocates a new canvas.
func (r *Raster) Resize(w, h int) {
	if w <= 0 || h <= 0 || (w == r.w && h == r.h) {
		return
	}
	r.w, r.h = w, h
	r.dc = gg.NewContext(w, h)
}

// Draw rasterises every command queued since BeginFrame.
func (r *Raster) Draw() image.Image {
	dc := r.dc
	dc.SetColor(r.background)
	dc.Clear()
	dc.SetLineWidth(r.lineWidth)
	for _, cmd := range r.Commands() {
		r.drawCommand(dc, cmd)
	}
	return dc.Image()
}

func (r *Raster) drawCommand(dc *gg.Context, cmd Command) {
	switch cmd.Template.Primitive {
	case PrimitiveTriangles, PrimitiveTriangleFan, PrimitiveLineStrip:
	default:
		r.log.Debug("skipping unknown primitive",
			zap.String("template", cmd.Template.Name), zap.Int("primitive", int(cmd.Template.Primitive)))
		return
	}
	for i := cmd.Offset; i < cmd.Offset+cmd.Count; i++ {
		inst, ok := r.Instance(cmd.Template.Type, i)
		if !ok {
			continue
		}
		c := withAlpha(inst.Color, cmd.Alpha)
		if c.A == 0 {
			continue
		}
		pts := r.Project(cmd.Template, i, r.w, r.h)
		if len(pts) == 0 {
			continue
		}
		dc.SetColor(c)
		switch cmd.Template.Primitive {
		case PrimitiveTriangles:
			for t := 0; t+2 < len(pts); t += 3 {
				dc.MoveTo(pts[t].X, pts[t].Y)
				dc.LineTo(pts[t+1].X, pts[t+1].Y)
				dc.LineTo(pts[t+2].X, pts[t+2].Y)
				dc.ClosePath()
			}
			dc.Fill()
		case PrimitiveTriangleFan:
			dc.MoveTo(pts[0].X, pts[0].Y)
			for _, p := range pts[1:] {
				dc.LineTo(p.X, p.Y)
			}
			dc.ClosePath()
			dc.Fill()
		case PrimitiveLineStrip:
			dc.MoveTo(pts[0].X, pts[0].Y)
			for _, p := range pts[1:] {
				dc.LineTo(p.X, p.Y)
			}
			dc.Stroke()
		}
	}
}

// WritePNG draws the frame and encodes it to w.
func (r *Raster) WritePNG(w io.Writer) error {
	r.Draw()
	if err := r.dc.EncodePNG(w); err != nil {
		return fmt.Errorf("encode frame: %w", err)
	}
	return nil
}

// SavePNG draws the frame and writes it to path.
func (r *Raster) SavePNG(path string) error {
	r.Draw()
	if err := r.dc.SavePNG(path); err != nil {
		return fmt.Errorf("save frame %s: %w", path, err)
	}
	return nil
}

// TextureImage returns the pixels uploaded for tex, or nil.
func (r *Raster) TextureImage(tex Texture) image.Image {
	t, ok := r.textures[tex]
	if !ok {
		return nil
	}
	return textureImage(t)
}
