package game

// Stuck-ball recovery. Two independent, best-effort heuristics:
//
//  1. An oscillation detector that clusters recent collision points in
//     time and space. A tight cluster means the ball is bouncing between
//     nearly-coincident surfaces faster than normal gameplay (corner
//     pockets), which velocity floors alone cannot break. Response is a
//     single-tick suspension of all collision handling.
//  2. A displacement detector for balls that are geometrically wedged
//     rather than oscillating: sustained near-zero motion forces a
//     teleport back to the arena center.
//
// Neither is provably correct; both are cheap and bounded.

// recordAndDetect appends a collision to the ball's history and runs the
// oscillation check. With fewer than StuckThreshold recent entries the
// check is a no-op and mutates nothing beyond the append itself.
func (s *Simulation) recordAndDetect(b *Ball, pos Vec2) {
	b.recordCollision(pos, s.clock)

	recent := make([]Vec2, 0, StuckHistoryCap)
	for _, rec := range b.history {
		if s.clock-rec.At <= StuckWindowSeconds {
			recent = append(recent, rec.Position)
		}
	}
	if len(recent) < StuckThreshold {
		return
	}

	center := Centroid(recent)
	clustered := 0
	for _, p := range recent {
		if p.DistanceTo(center) <= StuckRadius {
			clustered++
		}
	}
	if clustered < StuckThreshold {
		return
	}

	// Classified stuck: disable collision response for exactly the next
	// tick (frame-counted by design, not time-based) and start fresh.
	b.suspendPending = true
	b.clearHistory()
}

// checkWedged accumulates time spent below the displacement threshold
// and teleports the ball once it has been effectively motionless for
// WedgeSeconds. k is the tick scale factor, dt the elapsed simulation
// seconds. Returns true when a teleport happened.
func (s *Simulation) checkWedged(b *Ball, k, dt float64) bool {
	moved := b.Position.DistanceTo(b.LastPosition)
	b.LastPosition = b.Position

	if k > 0 && moved/k < WedgeDisplacementPerTick {
		b.WedgeTime += dt
	} else {
		b.WedgeTime = 0
	}
	if b.WedgeTime < WedgeSeconds {
		return false
	}

	// Hard fallback: give up and reset toward the AI side.
	b.Position = Vec2{}
	b.LastPosition = Vec2{}
	b.Velocity = Vec2{X: s.jitter(ServeXSpread), Z: -TeleportSpeed}
	b.WedgeTime = 0
	b.clearHistory()

	pos := b.Position
	s.emit(Event{Type: EventBallTeleported, BallID: b.ID, Position: &pos})
	return true
}
