package core

// ViewSize describes the drawable area in millimetres, framebuffer pixels and
// OS (window) points.
type ViewSize struct {
	WidthMM      float64
	HeightMM     float64
	WidthPixels  int
	HeightPixels int
	WidthOS      int
	HeightOS     int
}

// Valid reports whether every dimension is positive.
func (v ViewSize) Valid() bool {
	return v.WidthMM > 0 && v.HeightMM > 0 && v.WidthPixels > 0 && v.HeightPixels > 0
}

// ViewSizeFromPixels derives a ViewSize for a window of w×h pixels at the
// given millimetres-per-pixel factor.
func ViewSizeFromPixels(w, h int, mmPerPixel float64) ViewSize {
	return ViewSize{
		WidthMM:      float64(w) * mmPerPixel,
		HeightMM:     float64(h) * mmPerPixel,
		WidthPixels:  w,
		HeightPixels: h,
		WidthOS:      w,
		HeightOS:     h,
	}
}

// CursorInfo is the pointer state in OS coordinates.
type CursorInfo struct {
	X       float32
	Y       float32
	Pressed bool
}

// NoCursor is the state before any pointer input arrives.
var NoCursor = CursorInfo{X: -1, Y: -1}

// LifeState is the simulation's coarse lifecycle.
type LifeState int

const (
	Dead LifeState = iota
	Alive
)

func (s LifeState) String() string {
	switch s {
	case Alive:
		return "alive"
	default:
		return "dead"
	}
}
