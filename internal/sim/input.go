package sim

import (
	"unicode"

	"fallingstuff/internal/core"
	"fallingstuff/internal/event"

	"go.uber.org/zap"
)

// EventReceived applies one input event. Keys bound here set Handled; all
// other events are left for the caller to route elsewhere.
func (s *Simulation) EventReceived(ev *event.Event) {
	if ev == nil {
		return
	}
	switch d := ev.Data.(type) {
	case event.KeyDown:
		s.keys.Set(d.Key, true)
		if s.handleKey(d.Key) {
			ev.Handled = true
			return
		}
		if s.noisy.Allow() {
			s.log.Debug("unhandled key", zap.String("key", string(d.Key)))
		}
	case event.KeyUp:
		s.keys.Set(d.Key, false)
	case event.CursorButton:
		s.log.Debug("cursor button", zap.Float32("x", d.X), zap.Float32("y", d.Y), zap.Bool("down", d.Down))
	case event.CursorMotion:
		// Motion is frequent and carries nothing the simulation reacts to.
	case event.CursorContained:
		s.log.Debug("cursor containment", zap.Bool("contained", d.Contained))
	}
}

func (s *Simulation) handleKey(key rune) bool {
	switch key {
	case event.ArrowLeft:
		s.pan(s.cfg.PanStepMM, 0)
		return true
	case event.ArrowRight:
		s.pan(-s.cfg.PanStepMM, 0)
		return true
	case event.ArrowUp:
		s.pan(0, -s.cfg.PanStepMM)
		return true
	case event.ArrowDown:
		s.pan(0, s.cfg.PanStepMM)
		return true
	}
	switch unicode.ToUpper(key) {
	case 'D':
		if !s.cfg.AllowDemoOverlay {
			return false
		}
		s.showDemo = !s.showDemo
		return true
	case 'R':
		s.ResetWorld()
		return true
	case 'S':
		if s.cfg.ConfigurationMode {
			return false
		}
		s.showSettings = !s.showSettings
		return true
	}
	return false
}

func (s *Simulation) pan(dx, dy float64) {
	s.game.viewTranslation.X += dx
	s.game.viewTranslation.Y += dy
	s.updateProjection()
}

// UpdateCursorInfo compares info with the last recorded cursor state and
// emits a button event and then a motion event for whatever changed.
func (s *Simulation) UpdateCursorInfo(info core.CursorInfo) {
	old := s.cursor
	if info.Pressed != old.Pressed {
		s.cursor.Pressed = info.Pressed
		ev := event.NewCursorButton(s.cursor.X, s.cursor.Y, s.cursor.Pressed)
		s.EventReceived(&ev)
	}
	if info.X != old.X || info.Y != old.Y {
		s.cursor.X = info.X
		s.cursor.Y = info.Y
		ev := event.NewCursorMotion(s.cursor.X, s.cursor.Y)
		s.EventReceived(&ev)
	}
}

// Cursor returns the last recorded pointer state.
func (s *Simulation) Cursor() core.CursorInfo { return s.cursor }
