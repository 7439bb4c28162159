package sim

// spawnMarbles counts the spawn timer down by deltaS and drops at most one
// marble per tick while below the cap.
func (s *Simulation) spawnMarbles(deltaS float64) {
	g := &s.game
	if g.numMarbles >= g.marblesMax || g.spawnRate <= 0 {
		return
	}
	g.spawnInS -= deltaS
	if g.spawnInS <= 0 {
		s.AddMarble()
		g.spawnInS = 1 / g.spawnRate
	}
}

// applyResetPolicy arms a countdown once the marble cap is reached and
// resets the world when it expires. Below the cap the countdown is disarmed.
func (s *Simulation) applyResetPolicy(deltaS float64) {
	g := &s.game
	if g.numMarbles < g.marblesMax {
		g.resetArmed = false
		g.resetInS = 0
		return
	}
	if g.resetDelayS <= 0 {
		s.ResetWorld()
		return
	}
	if !g.resetArmed {
		g.resetArmed = true
		g.resetInS = g.resetDelayS
		return
	}
	g.resetInS -= deltaS
	if g.resetInS <= 0 {
		s.ResetWorld()
	}
}
