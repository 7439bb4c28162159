package sim

import (
	"fallingstuff/internal/core"

	"go.uber.org/zap"
)

// SettingsUI is the immediate-mode widget set the settings panel is drawn
// with. Begin returns false once the user closes a closable window; End must
// still be called.
type SettingsUI interface {
	Begin(title string, closable bool) bool
	SliderInt(ctrl core.ParameterControl, v *int) bool
	SliderFloat(ctrl core.ParameterControl, v *float64) bool
	Separator()
	Button(label string) bool
	End()
}

// Settings are the user-tuned values that survive a world reset.
type Settings struct {
	MarblesMax int
	SpawnRate  float64
}

// MarblesMaxControl describes the marble cap slider.
func (s *Simulation) MarblesMaxControl() core.ParameterControl {
	return core.ParameterControl{
		Key:    "marbles_max",
		Label:  "Marbles, Max",
		Type:   core.ParamTypeInt,
		Step:   1,
		Min:    0,
		Max:    float64(s.cfg.MarblesLimit),
		HasMin: true,
		HasMax: true,
	}
}

// SpawnRateControl describes the spawn rate slider.
func (s *Simulation) SpawnRateControl() core.ParameterControl {
	return core.ParameterControl{
		Key:    "spawn_rate",
		Label:  "Spawn Rate (marbles/second)",
		Type:   core.ParamTypeFloat,
		Step:   0.1,
		Min:    0,
		Max:    s.cfg.SpawnRateLimit,
		HasMin: true,
		HasMax: true,
	}
}

// Settings returns the values applied to every new session.
func (s *Simulation) Settings() Settings { return s.settings }

// SetMarblesMax clamps and applies a new marble cap to the running session
// and to every later one.
func (s *Simulation) SetMarblesMax(n int) {
	n = s.MarblesMaxControl().ClampInt(n)
	s.settings.MarblesMax = n
	s.game.marblesMax = n
}

// SetSpawnRate clamps and applies a new spawn rate. A positive rate restarts
// the spawn countdown at one period.
func (s *Simulation) SetSpawnRate(r float64) {
	r = s.SpawnRateControl().ClampFloat(r)
	s.settings.SpawnRate = r
	s.game.spawnRate = r
	if r > 0 {
		s.game.spawnInS = 1 / r
	}
}

// ToggleSettings flips the settings panel. The panel stays pinned open in
// configuration mode.
func (s *Simulation) ToggleSettings() {
	if s.cfg.ConfigurationMode {
		return
	}
	s.showSettings = !s.showSettings
}

func (s *Simulation) updateSettingsUI() {
	if s.ui == nil || !s.showSettings {
		return
	}
	ui := s.ui
	open := ui.Begin("Settings", !s.cfg.ConfigurationMode)
	if !open {
		ui.End()
		s.showSettings = false
		return
	}

	marbles := s.settings.MarblesMax
	if ui.SliderInt(s.MarblesMaxControl(), &marbles) {
		s.SetMarblesMax(marbles)
	}
	spawnRate := s.settings.SpawnRate
	if ui.SliderFloat(s.SpawnRateControl(), &spawnRate) {
		s.SetSpawnRate(spawnRate)
	}
	ui.Separator()
	if ui.Button("Restart Simulation") {
		s.ResetWorld()
	}
	if s.cfg.ConfigurationMode && ui.Button("OK") {
		s.configurationDone = true
		s.log.Info("configuration done",
			zap.Int("marbles_max", s.settings.MarblesMax),
			zap.Float64("spawn_rate", s.settings.SpawnRate))
	}
	ui.End()
}
