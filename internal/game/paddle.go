package game

import "math"

// Paddle models one side's paddle: clamped lateral motion, the
// width-bonus transition, and the pushback recoil applied on a hit.
type Paddle struct {
	Side  Side    `json:"side"`
	X     float64 `json:"x"`
	BaseZ float64 `json:"base_z"`

	// Intent is the current discrete directional input: -1, 0 or +1.
	// The input layer (or the AI controller) sets it each tick.
	Intent int `json:"-"`

	// Pushback is a decaying distance added to BaseZ away from the
	// arena, modeling recoil weight without a physics integrator.
	Pushback float64 `json:"pushback"`

	bonusRemaining float64 // seconds of width bonus left
	widthT         float64 // 0..1 transition scalar; halfWidth doubles at 1
}

// NewPaddle creates a paddle resting on its side's baseline.
func NewPaddle(side Side) *Paddle {
	baseZ := PlayerPaddleZ
	if side == SideAI {
		baseZ = AIPaddleZ
	}
	return &Paddle{Side: side, BaseZ: baseZ}
}

// HalfWidth returns the current collision half-width, including the
// animated width-bonus scaling.
func (p *Paddle) HalfWidth() float64 {
	return PaddleBaseHalfWidth * (1 + p.widthT)
}

// Z returns the paddle's current collision plane: the baseline plus any
// recoil, which always points away from the arena.
func (p *Paddle) Z() float64 {
	if p.Side == SidePlayer {
		return p.BaseZ + p.Pushback
	}
	return p.BaseZ - p.Pushback
}

// ApplyHit sets the recoil distance for a successful ball strike.
func (p *Paddle) ApplyHit() {
	p.Pushback = PushbackDistance
}

// ActivateWidthBonus starts (or refreshes) the width bonus; the
// half-width animates toward double over the transition duration.
func (p *Paddle) ActivateWidthBonus() {
	p.bonusRemaining = WidthBonusDurationSeconds
}

// WidthBonusActive reports whether the bonus timer is still running.
func (p *Paddle) WidthBonusActive() bool {
	return p.bonusRemaining > 0
}

// Advance moves the paddle one tick: k is the tick scale factor
// (dt * 60 * timeScale) and dt is the elapsed simulation seconds.
func (p *Paddle) Advance(k, dt float64) {
	if p.Intent != 0 {
		p.X += float64(p.Intent) * PaddleSpeed * k
	}
	limit := WallBound - p.HalfWidth()
	p.X = clamp(p.X, -limit, limit)

	// Width-bonus transition: animate toward 1 while active, back
	// toward 0 on expiry. Same duration both ways.
	if p.bonusRemaining > 0 {
		p.bonusRemaining = maxf(0, p.bonusRemaining-dt)
	}
	step := dt / WidthBonusTransitionSeconds
	if p.bonusRemaining > 0 {
		p.widthT = clamp(p.widthT+step, 0, 1)
	} else {
		p.widthT = clamp(p.widthT-step, 0, 1)
	}

	// Geometric recoil decay, snapped to zero once negligible.
	if p.Pushback > 0 {
		p.Pushback *= math.Pow(PushbackDecay, k)
		if p.Pushback < PushbackEpsilon {
			p.Pushback = 0
		}
	}
}

// reset returns the paddle to its spawn state.
func (p *Paddle) reset() {
	p.X = 0
	p.Intent = 0
	p.Pushback = 0
	p.bonusRemaining = 0
	p.widthT = 0
}
