package game

import "math"

// Collision resolution. Each resolve* method detects and responds to one
// collision type for one ball, emitting events as it goes. Response is
// gated by per-type cooldowns and by the stuck-recovery suspension flag,
// which callers check before invoking any of these.

// resolveWall clamps the ball at a side wall, reflects vx outward, adds
// anti-stuck z jitter and enforces the profile's |vz| floor.
func (s *Simulation) resolveWall(b *Ball) {
	if b.WallCooldown > 0 {
		return
	}

	var side Side
	switch {
	case b.Position.X <= -WallBound:
		b.Position.X = -WallBound
		b.Velocity.X = absf(b.Velocity.X)
		side = SideAI // left wall from the player's view; purely a render hint
	case b.Position.X >= WallBound:
		b.Position.X = WallBound
		b.Velocity.X = -absf(b.Velocity.X)
		side = SidePlayer
	default:
		return
	}

	b.WallCooldown = WallCooldownSeconds
	b.Velocity.Z += s.jitter(s.profile.WallJitter)
	s.enforceZFloor(b)

	pos := b.Position
	s.emit(Event{Type: EventWallCollision, BallID: b.ID, Side: side, Position: &pos, Speed: b.Velocity.Length()})
	s.recordAndDetect(b, pos)
}

// resolvePaddle reflects and accelerates the ball off a paddle, deflects
// it proportionally to the offset from the paddle center, and reassigns
// ownership. Returns true when a hit was resolved.
func (s *Simulation) resolvePaddle(b *Ball, p *Paddle) bool {
	if b.PaddleCooldown > 0 {
		return false
	}

	// The ball must have reached the paddle's baseline moving outward.
	// Recoil is cosmetic; the trigger plane never moves with Pushback.
	if p.Side == SidePlayer {
		if b.Position.Z < p.BaseZ || b.Velocity.Z <= 0 {
			return false
		}
	} else {
		if b.Position.Z > p.BaseZ || b.Velocity.Z >= 0 {
			return false
		}
	}
	if absf(b.Position.X-p.X) >= p.HalfWidth() {
		return false
	}

	b.SpeedMultiplier *= SpeedMultiplierGain
	b.Velocity.Z *= -SpeedMultiplierGain
	b.Velocity.X += (b.Position.X-p.X)*DeflectionFactor + s.jitter(PaddleHitJitter)
	b.PaddleCooldown = PaddleCooldownSeconds

	prevOwner := b.Owner
	b.Owner = p.Side
	p.ApplyHit()

	pos := b.Position
	s.emit(Event{Type: EventPaddleCollision, BallID: b.ID, Side: p.Side, Position: &pos, Speed: b.Velocity.Length()})
	s.recordAndDetect(b, pos)

	s.onPaddleHit(p.Side, prevOwner)
	return true
}

// resolveObstacle runs an axis-aligned box test and inverts the velocity
// axis with the smaller penetration (face response, not circular), then
// floors the orthogonal axis so the ball cannot flatline along a face.
func (s *Simulation) resolveObstacle(b *Ball) {
	o := s.Obstacle
	if o == nil || b.ObstacleCooldown > 0 {
		return
	}
	dx, dz := o.overlap(b)
	if dx <= 0 || dz <= 0 {
		return
	}

	if dx < dz {
		// Hit a side face: push out and reflect vx.
		if b.Position.X < o.Position.X {
			b.Position.X -= dx
			b.Velocity.X = -absf(b.Velocity.X)
		} else {
			b.Position.X += dx
			b.Velocity.X = absf(b.Velocity.X)
		}
		s.enforceZFloor(b)
	} else {
		if b.Position.Z < o.Position.Z {
			b.Position.Z -= dz
			b.Velocity.Z = -absf(b.Velocity.Z)
		} else {
			b.Position.Z += dz
			b.Velocity.Z = absf(b.Velocity.Z)
		}
		s.enforceXFloor(b)
	}
	b.ObstacleCooldown = ObstacleCooldownSeconds

	pos := b.Position
	s.emit(Event{Type: EventObstacleCollision, BallID: b.ID, Position: &pos, Speed: b.Velocity.Length()})
	s.recordAndDetect(b, pos)
}

// enforceZFloor clamps |vz| up to the profile floor, preserving sign.
// A zero vz is kicked toward the AI side.
func (s *Simulation) enforceZFloor(b *Ball) {
	floor := s.profile.MinZVelocity
	if absf(b.Velocity.Z) >= floor {
		return
	}
	if math.Signbit(b.Velocity.Z) || b.Velocity.Z == 0 {
		b.Velocity.Z = -floor
	} else {
		b.Velocity.Z = floor
	}
}

// enforceXFloor mirrors enforceZFloor for the x axis after a z-face
// obstacle bounce.
func (s *Simulation) enforceXFloor(b *Ball) {
	floor := s.profile.MinZVelocity
	if absf(b.Velocity.X) >= floor {
		return
	}
	if math.Signbit(b.Velocity.X) {
		b.Velocity.X = -floor
	} else {
		b.Velocity.X = floor
	}
}

// jitter returns a uniform random value in [-magnitude, magnitude] from
// the simulation's seeded RNG, keeping collision response reproducible.
func (s *Simulation) jitter(magnitude float64) float64 {
	return (s.rng.Float64()*2 - 1) * magnitude
}
