package game

// ObstaclePhase is the lifecycle phase of a raised hazard cube.
type ObstaclePhase string

const (
	ObstacleRising   ObstaclePhase = "RISING"
	ObstacleHolding  ObstaclePhase = "HOLDING"
	ObstacleLowering ObstaclePhase = "LOWERING"
)

// Obstacle is a raised hazard cube in the middle of the arena. It is
// collidable for its whole lifetime; the rise/lower phases only drive
// the client-side animation.
type Obstacle struct {
	Position Vec2          `json:"position"`
	Phase    ObstaclePhase `json:"phase"`
	Elapsed  float64       `json:"-"` // seconds in the current phase
	HalfX    float64       `json:"half_x"`
	HalfZ    float64       `json:"half_z"`
}

func newObstacle(pos Vec2) *Obstacle {
	return &Obstacle{
		Position: pos,
		Phase:    ObstacleRising,
		HalfX:    ObstacleHalfX,
		HalfZ:    ObstacleHalfZ,
	}
}

// advance progresses the lifecycle by dt seconds and reports whether the
// obstacle is still alive.
func (o *Obstacle) advance(dt float64) bool {
	o.Elapsed += dt
	switch o.Phase {
	case ObstacleRising:
		if o.Elapsed >= ObstacleRiseSeconds {
			o.Phase = ObstacleHolding
			o.Elapsed = 0
		}
	case ObstacleHolding:
		if o.Elapsed >= ObstacleHoldSeconds {
			o.Phase = ObstacleLowering
			o.Elapsed = 0
		}
	case ObstacleLowering:
		if o.Elapsed >= ObstacleLowerSeconds {
			return false
		}
	}
	return true
}

// overlap returns the penetration depth of a ball against the obstacle's
// box on each axis. Both values are positive only when overlapping.
func (o *Obstacle) overlap(b *Ball) (dx, dz float64) {
	dx = o.HalfX + BallRadius - absf(b.Position.X-o.Position.X)
	dz = o.HalfZ + BallRadius - absf(b.Position.Z-o.Position.Z)
	return dx, dz
}

func absf(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}
