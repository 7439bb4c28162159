package geom

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"
)

// CircleParts is the number of segments used for circle outlines and fills.
const CircleParts = 64

const (
	dotParts    = 6
	dotCount    = 6
	dotRadius   = 0.08
	dotDistance = 0.7
)

func vert(x, y float32) mgl32.Vec4 { return mgl32.Vec4{x, y, 0, 1} }

// CircleFilled returns parts triangles forming a disc of the given radius
// centred at (ox, oy).
func CircleFilled(parts int, radius, ox, oy float32) []mgl32.Vec4 {
	if parts < 3 {
		parts = 3
	}
	out := make([]mgl32.Vec4, 0, parts*3)
	step := 2 * math.Pi / float64(parts)
	for i := 0; i < parts; i++ {
		a0 := float64(i) * step
		a1 := float64(i+1) * step
		out = append(out,
			vert(ox, oy),
			vert(ox+radius*float32(math.Cos(a0)), oy+radius*float32(math.Sin(a0))),
			vert(ox+radius*float32(math.Cos(a1)), oy+radius*float32(math.Sin(a1))),
		)
	}
	return out
}

// CircleLineStrip returns a closed outline with parts+1 vertices.
func CircleLineStrip(parts int, radius float32) []mgl32.Vec4 {
	if parts < 3 {
		parts = 3
	}
	out := make([]mgl32.Vec4, parts+1)
	step := 2 * math.Pi / float64(parts)
	for i := 0; i <= parts; i++ {
		a := float64(i%parts) * step
		out[i] = vert(radius*float32(math.Cos(a)), radius*float32(math.Sin(a)))
	}
	return out
}

// CircleDots returns six small discs arranged on a ring inside the unit
// circle, drawn over pegs so their rotation is visible.
func CircleDots() []mgl32.Vec4 {
	out := make([]mgl32.Vec4, 0, dotCount*dotParts*3)
	for i := 0; i < dotCount; i++ {
		a := float64(i) * 2 * math.Pi / dotCount
		out = append(out, CircleFilled(dotParts, dotRadius,
			float32(math.Cos(a))*dotDistance, float32(math.Sin(a))*dotDistance)...)
	}
	return out
}

// BoxFilled returns two triangles covering the unit square centred at 0.
func BoxFilled() []mgl32.Vec4 {
	return []mgl32.Vec4{
		vert(-.5, -.5), vert(-.5, .5), vert(.5, -.5),
		vert(.5, -.5), vert(-.5, .5), vert(.5, .5),
	}
}

// BoxLineStrip returns the closed outline of the unit square.
func BoxLineStrip() []mgl32.Vec4 {
	return []mgl32.Vec4{
		vert(-.5, .5), vert(.5, .5), vert(.5, -.5), vert(-.5, -.5), vert(-.5, .5),
	}
}

// DebugQuad is a unit square as a triangle fan.
func DebugQuad() []mgl32.Vec4 {
	return []mgl32.Vec4{
		vert(-.5, -.5), vert(.5, -.5), vert(.5, .5), vert(-.5, .5),
	}
}
