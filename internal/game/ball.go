package game

import (
	"errors"
	"fmt"
)

// collisionRecord is one entry in a ball's bounded collision history,
// used by the stuck-ball oscillation detector.
type collisionRecord struct {
	Position Vec2
	At       float64 // simulation clock seconds
}

// Ball is a single ball's physics state. Balls are mutated in place by
// the collision resolver; the simulation owns the pool.
type Ball struct {
	ID              int     `json:"id"`
	Position        Vec2    `json:"position"`
	Velocity        Vec2    `json:"velocity"`
	SpeedMultiplier float64 `json:"speed_multiplier"`
	Owner           Side    `json:"owner"` // last paddle to touch the ball

	// Per-type collision cooldowns, in seconds of simulation time.
	// Independent counters decouple "still overlapping" from "trigger
	// the response again" within one contact.
	WallCooldown     float64 `json:"-"`
	PaddleCooldown   float64 `json:"-"`
	ObstacleCooldown float64 `json:"-"`

	// Oscillation recovery state: suspendPending is set by the detector
	// during a tick's collision pass; the simulation promotes it into
	// suspended for exactly the next tick.
	suspendPending bool
	suspended      bool

	// Wedged-ball fallback state.
	LastPosition Vec2    `json:"-"`
	WedgeTime    float64 `json:"-"` // accumulated seconds of sub-threshold motion

	history []collisionRecord
}

var errNonFinite = errors.New("non-finite ball state")

// NewBall creates a ball at an explicit position and velocity. Position
// and velocity must be finite; the original code never validated spawn
// input, which let a single NaN propagate through the whole pool.
func NewBall(id int, pos, vel Vec2) (*Ball, error) {
	if !pos.IsFinite() || !vel.IsFinite() {
		return nil, fmt.Errorf("spawn ball %d: %w", id, errNonFinite)
	}
	return &Ball{
		ID:              id,
		Position:        pos,
		Velocity:        vel,
		SpeedMultiplier: 1.0,
		Owner:           SideAI,
		LastPosition:    pos,
		history:         make([]collisionRecord, 0, StuckHistoryCap),
	}, nil
}

// recordCollision appends {position, timestamp} to the bounded history,
// evicting the oldest entry when full.
func (b *Ball) recordCollision(pos Vec2, now float64) {
	if len(b.history) == StuckHistoryCap {
		copy(b.history, b.history[1:])
		b.history = b.history[:StuckHistoryCap-1]
	}
	b.history = append(b.history, collisionRecord{Position: pos, At: now})
}

// clearHistory resets the collision history after a stuck classification.
func (b *Ball) clearHistory() {
	b.history = b.history[:0]
}

// tickCooldowns advances all cooldown timers by dt seconds.
func (b *Ball) tickCooldowns(dt float64) {
	b.WallCooldown = maxf(0, b.WallCooldown-dt)
	b.PaddleCooldown = maxf(0, b.PaddleCooldown-dt)
	b.ObstacleCooldown = maxf(0, b.ObstacleCooldown-dt)
}

// Suspended reports whether collision response is disabled this tick.
func (b *Ball) Suspended() bool {
	return b.suspended
}

// promoteSuspension moves a pending one-tick suspension into effect, or
// clears an expired one. Called once at the end of every tick.
func (b *Ball) promoteSuspension() {
	b.suspended = b.suspendPending
	b.suspendPending = false
}

func maxf(a, b float64) float64 {
	if a > b {
		return a
	}
	return b
}
