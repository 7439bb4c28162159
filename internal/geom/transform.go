package geom

import (
	"image/color"
	"math"

	"github.com/go-gl/mathgl/mgl32"
)

// Vec2 is a world-space point in millimetres.
type Vec2 struct{ X, Y float64 }

// CircleModel places a unit circle at pos, rotated by angle and scaled to r.
func CircleModel(pos Vec2, angle, r float64) mgl32.Mat4 {
	return trs(pos, angle).Mul4(mgl32.Scale3D(float32(r), float32(r), 1))
}

// BoxModel places the unit square at pos, rotated by angle and scaled to w×h.
func BoxModel(pos Vec2, angle, w, h float64) mgl32.Mat4 {
	return trs(pos, angle).Mul4(mgl32.Scale3D(float32(w), float32(h), 1))
}

// SegmentModel maps the unit square onto the capsule a→b of radius r,
// expressed in the body frame at pos/angle.
func SegmentModel(pos Vec2, angle float64, a, b Vec2, r float64) mgl32.Mat4 {
	dx, dy := b.X-a.X, b.Y-a.Y
	length := math.Hypot(dx, dy)
	centre := Vec2{X: (a.X + b.X) / 2, Y: (a.Y + b.Y) / 2}
	local := trs(centre, math.Atan2(dy, dx))
	return trs(pos, angle).Mul4(local).Mul4(mgl32.Scale3D(float32(length+2*r), float32(2*r), 1))
}

func trs(pos Vec2, angle float64) mgl32.Mat4 {
	return mgl32.Translate3D(float32(pos.X), float32(pos.Y), 0).Mul4(mgl32.HomogRotate3DZ(float32(angle)))
}

// Projection maps world millimetres to clip space [-1, 1] for a view of
// widthMM×heightMM, after applying scale and then the pan translation.
func Projection(widthMM, heightMM float64, scale Vec2, translation Vec2) mgl32.Mat4 {
	if widthMM <= 0 || heightMM <= 0 {
		return mgl32.Ident4()
	}
	m := mgl32.Translate3D(-1, -1, 0)
	m = m.Mul4(mgl32.Scale3D(float32(2/widthMM), float32(2/heightMM), 1))
	m = m.Mul4(mgl32.Scale3D(float32(scale.X), float32(scale.Y), 1))
	return m.Mul4(mgl32.Translate3D(float32(translation.X), float32(translation.Y), 0))
}

// ClipToScreen converts a clip-space point to pixel coordinates with y down.
func ClipToScreen(p mgl32.Vec4, w, h int) (float64, float64) {
	x := (float64(p.X()) + 1) * 0.5 * float64(w)
	y := (1 - float64(p.Y())) * 0.5 * float64(h)
	return x, y
}

// RGB builds an opaque colour from a 0xRRGGBB value.
func RGB(hex uint32) color.NRGBA {
	return color.NRGBA{R: uint8(hex >> 16), G: uint8(hex >> 8), B: uint8(hex), A: 0xff}
}

var (
	Transparent = color.NRGBA{}
	White       = RGB(0xffffff)
	Red         = RGB(0xff0000)
	Lime        = RGB(0x00ff00)
	Green       = RGB(0x008000)
	Blue        = RGB(0x0000ff)
	Yellow      = RGB(0xffff00)
	Cyan        = RGB(0x00ffff)
)

// PegPalette is sampled uniformly when colouring pegs.
var PegPalette = []color.NRGBA{Red, Red, Lime, Lime, Blue, Blue, Yellow, Cyan}
