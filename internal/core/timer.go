package core

import "math"

// stepTolerance absorbs rounding when the pending time is a whole number of
// steps, measured in steps.
const stepTolerance = 1e-6

// Stepper is a fixed-step accumulator. It advances a physics world in
// constant increments while tracking wall time, bounding catch-up work per
// call to MaxDelta seconds.
type Stepper struct {
	Step     float64
	MaxDelta float64

	LastUpdateS float64
	LastTickS   float64
	ElapsedS    float64
	Steps       int

	seeded bool
}

// World is the single operation the stepper needs from a physics engine.
type World interface {
	Step(dt float64)
}

// NewStepper constructs a Stepper. Non-positive arguments fall back to
// 1/600 s per step and a one second clamp.
func NewStepper(step, maxDelta float64) Stepper {
	if step <= 0 {
		step = 1.0 / 600.0
	}
	if maxDelta <= 0 {
		maxDelta = 1
	}
	return Stepper{Step: step, MaxDelta: maxDelta}
}

// Advance brings the world up to nowS. It returns the (clamped) wall time
// since the previous call and the number of fixed steps performed. The first
// call only seeds the timestamps.
func (s *Stepper) Advance(nowS float64, w World) (deltaS float64, steps int) {
	if !s.seeded {
		s.seeded = true
		s.LastUpdateS = nowS
		s.LastTickS = nowS
		return 0, 0
	}

	deltaS = nowS - s.LastTickS
	if deltaS < 0 {
		deltaS = 0
	}
	if deltaS > s.MaxDelta {
		deltaS = s.MaxDelta
	}
	s.LastTickS = nowS

	// Unaccounted time beyond the clamp is dropped.
	if nowS-s.LastUpdateS > s.MaxDelta {
		s.LastUpdateS = nowS - s.MaxDelta
	}

	steps = int(math.Floor((nowS-s.LastUpdateS)/s.Step + stepTolerance))
	if steps < 0 {
		steps = 0
	}
	for i := 0; i < steps; i++ {
		if w != nil {
			w.Step(s.Step)
		}
	}
	s.LastUpdateS += float64(steps) * s.Step
	s.Steps += steps
	s.ElapsedS += deltaS
	return deltaS, steps
}

// SimulatedS reports the total simulated time.
func (s *Stepper) SimulatedS() float64 {
	return float64(s.Steps) * s.Step
}
