package game

// updateAIIntent drives the AI paddle with the same discrete left/right
// intent the input layer produces for the player, so the simulation is
// playable headless. The AI tracks the ball that will reach its plane
// first, falling back to recentering when nothing is inbound.
func (s *Simulation) updateAIIntent() {
	const deadzone = 0.25

	var target float64
	found := false
	best := -1.0
	for _, b := range s.Balls {
		if b.Velocity.Z >= 0 {
			continue // moving away from the AI side
		}
		// Remaining travel distance to the AI plane; nearest wins.
		dist := b.Position.Z - AIPaddleZ
		if !found || dist < best {
			best = dist
			target = b.Position.X
			found = true
		}
	}
	if !found {
		target = 0 // recenter between rallies
	}

	switch {
	case target > s.AI.X+deadzone:
		s.AI.Intent = 1
	case target < s.AI.X-deadzone:
		s.AI.Intent = -1
	default:
		s.AI.Intent = 0
	}
}
