package sim

import "fallingstuff/internal/core"

// Stats is a point-in-time summary of the running world.
type Stats struct {
	ElapsedS     float64 `json:"elapsed_s"`
	SimulatedS   float64 `json:"simulated_s"`
	Steps        int     `json:"steps"`
	Marbles      int     `json:"marbles"`
	MarblesMax   int     `json:"marbles_max"`
	SpawnRate    float64 `json:"spawn_rate"`
	Pegs         int     `json:"pegs"`
	CirclePegs   int     `json:"circle_pegs"`
	Circles      int     `json:"circles"`
	Boxes        int     `json:"boxes"`
	Segments     int     `json:"segments"`
	Bodies       int     `json:"bodies"`
	ResetArmed   bool    `json:"reset_armed"`
	ResetInS     float64 `json:"reset_in_s"`
	Resets       int     `json:"resets"`
	ShowSettings bool    `json:"show_settings"`
	ShowDemo     bool    `json:"show_demo"`
}

// Stats summarises the current session. It is zero before Init.
func (s *Simulation) Stats() Stats {
	if s.state != core.Alive || s.arena == nil {
		return Stats{}
	}
	g := &s.game
	a := s.arena
	return Stats{
		ElapsedS:     g.stepper.ElapsedS,
		SimulatedS:   g.stepper.SimulatedS(),
		Steps:        g.stepper.Steps,
		Marbles:      g.numMarbles,
		MarblesMax:   g.marblesMax,
		SpawnRate:    g.spawnRate,
		Pegs:         a.NumPegs(),
		CirclePegs:   a.NumCirclePegs(),
		Circles:      a.NumCircles(),
		Boxes:        a.NumBoxes(),
		Segments:     a.NumSegments(),
		Bodies:       a.NumBodies(),
		ResetArmed:   g.resetArmed,
		ResetInS:     g.resetInS,
		Resets:       s.resets,
		ShowSettings: s.showSettings,
		ShowDemo:     s.showDemo,
	}
}

// Parameters groups Stats for the diagnostic overlay.
func (s *Simulation) Parameters() core.ParameterSnapshot {
	st := s.Stats()
	return core.ParameterSnapshot{Groups: []core.ParameterGroup{
		{
			Name: "Clock",
			Params: []core.Parameter{
				core.FloatParam("elapsed_s", "Elapsed (s)", st.ElapsedS),
				core.FloatParam("simulated_s", "Simulated (s)", st.SimulatedS),
				core.IntParam("steps", "Steps", st.Steps),
			},
		},
		{
			Name: "Marbles",
			Params: []core.Parameter{
				core.IntParam("marbles", "Marbles", st.Marbles),
				core.IntParam("marbles_max", "Marbles, Max", st.MarblesMax),
				core.FloatParam("spawn_rate", "Spawn Rate", st.SpawnRate),
			},
		},
		{
			Name: "World",
			Params: []core.Parameter{
				core.IntParam("pegs", "Pegs", st.Pegs),
				core.IntParam("circles", "Circles", st.Circles),
				core.IntParam("boxes", "Boxes", st.Boxes),
				core.IntParam("segments", "Segments", st.Segments),
				core.IntParam("bodies", "Bodies", st.Bodies),
			},
		},
		{
			Name: "Reset",
			Params: []core.Parameter{
				core.BoolParam("reset_armed", "Armed", st.ResetArmed),
				core.FloatParam("reset_in_s", "Reset In (s)", st.ResetInS),
				core.IntParam("resets", "Resets", st.Resets),
			},
		},
	}}
}
