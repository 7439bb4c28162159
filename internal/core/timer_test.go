package core

import (
	"math"
	"testing"
)

type countingWorld struct {
	steps int
	total float64
}

func (w *countingWorld) Step(dt float64) {
	w.steps++
	w.total += dt
}

func TestStepperFirstAdvanceSeeds(t *testing.T) {
	s := NewStepper(0.01, 1)
	w := &countingWorld{}
	delta, steps := s.Advance(100, w)
	if delta != 0 || steps != 0 || w.steps != 0 {
		t.Fatalf("first advance should only seed, got delta=%v steps=%d", delta, steps)
	}
	if s.LastUpdateS != 100 {
		t.Fatalf("expected last update seeded to 100, got %v", s.LastUpdateS)
	}
}

func TestStepperConservesTime(t *testing.T) {
	s := NewStepper(1.0/600.0, 1)
	w := &countingWorld{}
	now := 5.0
	s.Advance(now, w)
	deltas := []float64{0.016, 0.033, 0.0001, 0.25, 0.9, 0.017, 0.002, 0.5}
	wall := 0.0
	for i := 0; i < 20; i++ {
		for _, d := range deltas {
			now += d
			wall += d
			s.Advance(now, w)
			if diff := wall - w.total; diff < -1e-9 || diff > s.Step+1e-9 {
				t.Fatalf("simulated time drifted: wall=%v simulated=%v", wall, w.total)
			}
		}
	}
	if math.Abs(s.ElapsedS-wall) > 1e-6 {
		t.Fatalf("elapsed %v, want %v", s.ElapsedS, wall)
	}
	if s.Steps != w.steps {
		t.Fatalf("stepper counted %d steps, world saw %d", s.Steps, w.steps)
	}
}

func TestStepperClampsLargeDelta(t *testing.T) {
	s := NewStepper(0.01, 1)
	w := &countingWorld{}
	s.Advance(10, w)
	delta, steps := s.Advance(15, w)
	if delta != 1 {
		t.Fatalf("delta not clamped, got %v", delta)
	}
	if steps != 100 {
		t.Fatalf("expected exactly one second of steps, got %d", steps)
	}
	if math.Abs(w.total-1) > 1e-9 {
		t.Fatalf("simulated %v seconds, want 1", w.total)
	}
	if math.Abs(s.LastUpdateS-15) > 1e-9 {
		t.Fatalf("last update %v does not track the clamped time", s.LastUpdateS)
	}
	if s.ElapsedS != 1 {
		t.Fatalf("elapsed should include only the clamp, got %v", s.ElapsedS)
	}

	// The next small delta must not replay the discarded time.
	_, steps = s.Advance(15.05, w)
	if steps != 5 {
		t.Fatalf("expected 5 steps after clamp, got %d", steps)
	}
	if got := s.SimulatedS(); math.Abs(got-1.05) > 1e-9 {
		t.Fatalf("simulated %v seconds, want 1.05", got)
	}
}

func TestStepperClampRunsWholeSecondAtDefaultStep(t *testing.T) {
	s := NewStepper(0, 0)
	w := &countingWorld{}
	now := 1.0 / 60
	s.Advance(now, w)
	for i := 0; i < 30; i++ {
		now += 1.0 / 60
		s.Advance(now, w)
	}
	before := w.steps
	now += 5
	_, steps := s.Advance(now, w)
	if steps != 600 || w.steps-before != 600 {
		t.Fatalf("clamped stall ran %d steps, want 600", steps)
	}
	if s.LastUpdateS > now+1e-9 {
		t.Fatalf("last update %v ran past now %v", s.LastUpdateS, now)
	}
	if got := s.SimulatedS(); math.Abs(got-float64(s.Steps)/600) > 1e-12 {
		t.Fatalf("simulated %v for %d steps", got, s.Steps)
	}
}

func TestStepperIgnoresBackwardsClock(t *testing.T) {
	s := NewStepper(0.01, 1)
	w := &countingWorld{}
	s.Advance(10, w)
	delta, steps := s.Advance(9, w)
	if delta != 0 || steps != 0 {
		t.Fatalf("backwards clock should be a no-op, got delta=%v steps=%d", delta, steps)
	}
}
