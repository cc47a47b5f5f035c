package game

import (
	"fmt"
	"log"
	"math/rand"
)

// Simulation is the complete physics/collision state for one arena:
// the ball pool, both paddles, the optional obstacle, scores and the
// phase machine. It is deliberately free of any transport or rendering
// concern so it can be stepped deterministically in tests.
//
// All methods must be called from a single goroutine; the session layer
// serializes access.
type Simulation struct {
	Phase GamePhase `json:"phase"`

	Balls    []*Ball   `json:"balls"`
	Player   *Paddle   `json:"player"`
	AI       *Paddle   `json:"ai"`
	Obstacle *Obstacle `json:"obstacle,omitempty"`

	PlayerScore int `json:"player_score"`
	AIScore     int `json:"ai_score"`

	// Multi-ball spawning state.
	SuccessfulHits    int `json:"successful_hits"`
	NextBallThreshold int `json:"next_ball_threshold"`

	Combo int `json:"combo"`

	// TimeScale multiplies per-tick deltas for slow motion. Collision
	// thresholds are in absolute position units, so scaling time can
	// never desync collision geometry.
	TimeScale float64 `json:"time_scale"`

	clock           float64 // accumulated simulation seconds
	phaseTimer      float64 // remaining seconds in a timed sub-state
	comboIdle       float64 // seconds since the last qualifying player hit
	obstacleTimer   float64 // seconds until the next obstacle spawn
	spawnedThisTick bool
	nextBallID      int

	profile AntiStuckProfile
	rng     *rand.Rand
	events  []Event
}

// NewSimulation creates a simulation in the menu phase. The RNG seed
// makes anti-stuck jitter reproducible; sessions seed from entropy,
// tests from a constant.
func NewSimulation(profile AntiStuckProfile, seed int64) *Simulation {
	return &Simulation{
		Phase:             PhaseMenu,
		Player:            NewPaddle(SidePlayer),
		AI:                NewPaddle(SideAI),
		NextBallThreshold: InitialBallThreshold,
		TimeScale:         1.0,
		obstacleTimer:     ObstacleIntervalSeconds,
		profile:           profile,
		rng:               rand.New(rand.NewSource(seed)),
	}
}

// Profile returns the active anti-stuck profile.
func (s *Simulation) Profile() AntiStuckProfile { return s.profile }

// Clock returns the accumulated simulation time in seconds.
func (s *Simulation) Clock() float64 { return s.clock }

// Start moves the simulation out of the menu and serves the first ball.
func (s *Simulation) Start() error {
	if s.Phase != PhaseMenu {
		return fmt.Errorf("cannot start from phase %s", s.Phase)
	}
	s.Phase = PhasePlaying
	return s.serve()
}

// SetPaused toggles between playing and paused. Transitions out of
// playing freeze all physics advancement immediately.
func (s *Simulation) SetPaused(paused bool) {
	if paused && s.Phase == PhasePlaying {
		s.Phase = PhasePaused
	} else if !paused && s.Phase == PhasePaused {
		s.Phase = PhasePlaying
	}
}

// SetTimeScale clamps and applies a slow-motion factor.
func (s *Simulation) SetTimeScale(v float64) {
	s.TimeScale = clamp(v, MinTimeScale, MaxTimeScale)
}

// Reset reinitializes the full state and serves a fresh ball.
func (s *Simulation) Reset() {
	s.Balls = s.Balls[:0]
	s.Player.reset()
	s.AI.reset()
	s.Obstacle = nil
	s.PlayerScore = 0
	s.AIScore = 0
	s.resetRally(true)
	s.Combo = 0
	s.comboIdle = 0
	s.obstacleTimer = ObstacleIntervalSeconds
	s.phaseTimer = 0
	s.Phase = PhasePlaying
	if err := s.serve(); err != nil {
		log.Printf("[SIM] reset serve failed: %v", err)
	}
}

// DrainEvents returns and clears the pending event queue.
func (s *Simulation) DrainEvents() []Event {
	if len(s.events) == 0 {
		return nil
	}
	out := s.events
	s.events = nil
	return out
}

func (s *Simulation) emit(e Event) {
	s.events = append(s.events, e)
}

// Step advances the simulation by dt wall seconds. Physics only runs in
// the playing phase; celebrating/dead tick their timers and everything
// else is frozen.
func (s *Simulation) Step(dt float64) {
	switch s.Phase {
	case PhaseCelebrating, PhaseDead:
		s.phaseTimer -= dt
		if s.phaseTimer <= 0 {
			s.endSubState()
		}
		return
	case PhasePlaying:
	default:
		return
	}

	scaled := dt * s.TimeScale
	k := scaled * TicksPerSecond // tick scale factor for per-tick magnitudes
	s.clock += scaled
	s.spawnedThisTick = false

	s.updateAIIntent()
	s.Player.Advance(k, scaled)
	s.AI.Advance(k, scaled)
	s.advanceObstacle(scaled)

	// Integrate, then resolve. Collision thresholds are positional, so
	// resolution order per ball is walls, paddles, obstacle.
	for _, b := range s.Balls {
		b.Position = b.Position.Add(b.Velocity.Scale(k))
		s.guardFinite(b)
	}
	for _, b := range s.Balls {
		if b.Suspended() {
			continue
		}
		s.resolveWall(b)
		if !s.resolvePaddle(b, s.Player) {
			s.resolvePaddle(b, s.AI)
		}
		s.resolveObstacle(b)
	}
	for _, b := range s.Balls {
		b.tickCooldowns(scaled)
		s.checkWedged(b, k, scaled)
		b.promoteSuspension()
	}

	s.resolveGoals()
	if s.Phase != PhasePlaying {
		return // a goal ended the rally; no spawning past this point
	}

	s.maybeSpawnExtraBall()

	// Combo decays after a fixed idle window with no qualifying hit.
	if s.Combo > 0 {
		s.comboIdle += scaled
		if s.comboIdle >= ComboIdleSeconds {
			s.Combo = 0
			s.emit(Event{Type: EventComboChanged, Combo: 0})
		}
	}
}

// guardFinite resets a ball whose state went non-finite. The original
// never validated this; a NaN velocity would poison every later tick.
func (s *Simulation) guardFinite(b *Ball) {
	if b.Position.IsFinite() && b.Velocity.IsFinite() {
		return
	}
	log.Printf("[SIM] ball %d went non-finite, recentering", b.ID)
	b.Position = Vec2{}
	b.LastPosition = Vec2{}
	b.Velocity = Vec2{X: 0, Z: -ServeSpeed}
	b.SpeedMultiplier = 1.0
	b.clearHistory()
	pos := b.Position
	s.emit(Event{Type: EventBallTeleported, BallID: b.ID, Position: &pos})
}

// onPaddleHit updates hit counting and the combo chain after a resolved
// paddle collision. prevOwner is the ball's owner before reassignment.
func (s *Simulation) onPaddleHit(side, prevOwner Side) {
	if side == SidePlayer {
		s.SuccessfulHits++
		if prevOwner == SideAI {
			s.Combo++
			s.comboIdle = 0
			s.emit(Event{Type: EventComboChanged, Combo: s.Combo})
		}
		return
	}
	if s.Combo != 0 {
		s.Combo = 0
		s.emit(Event{Type: EventComboChanged, Combo: 0})
	}
}

// maybeSpawnExtraBall spawns one additional ball once the player has
// banked enough successful hits, at most one per tick even if several
// hits landed in the same tick.
func (s *Simulation) maybeSpawnExtraBall() {
	if s.spawnedThisTick || s.SuccessfulHits < s.NextBallThreshold || len(s.Balls) >= MaxBalls {
		return
	}
	// New ball enters near the AI side, biased toward the player.
	pos := Vec2{X: s.jitter(ExtraBallXSpread), Z: AIPaddleZ + 2.5}
	vel := Vec2{X: s.jitter(ServeXSpread), Z: ServeSpeed}
	if err := s.spawnBall(pos, vel, SideAI); err != nil {
		log.Printf("[SIM] extra ball spawn rejected: %v", err)
		return
	}
	s.NextBallThreshold += ThresholdIncrement
	s.spawnedThisTick = true
}

// spawnBall validates and adds a ball to the pool, emitting the spawn
// event. Fails when the pool is full or the state is non-finite.
func (s *Simulation) spawnBall(pos, vel Vec2, owner Side) error {
	if len(s.Balls) >= MaxBalls {
		return fmt.Errorf("ball pool full (%d)", MaxBalls)
	}
	b, err := NewBall(s.nextBallID, pos, vel)
	if err != nil {
		return err
	}
	b.Owner = owner
	s.nextBallID++
	s.Balls = append(s.Balls, b)
	p := b.Position
	s.emit(Event{Type: EventBallSpawned, BallID: b.ID, Side: owner, Position: &p})
	return nil
}

// serve spawns the rally's first ball from the arena center toward the
// AI side.
func (s *Simulation) serve() error {
	return s.spawnBall(Vec2{}, Vec2{X: s.jitter(ServeXSpread), Z: -ServeSpeed}, SideAI)
}

// resolveGoals removes balls past either goal plane after the collision
// pass (the pool is never mutated mid-iteration) and applies scoring and
// phase transitions. A player-death condition takes priority over any
// simultaneous player score.
func (s *Simulation) resolveGoals() {
	playerDeath := false
	playerScored := false
	kept := s.Balls[:0]
	for _, b := range s.Balls {
		switch {
		case b.Position.Z >= PlayerGoalZ:
			// Past the player's goal: the AI scores.
			s.AIScore++
			playerDeath = true
			pos := b.Position
			s.emit(Event{Type: EventGoalScored, BallID: b.ID, Side: SideAI, Position: &pos})
			s.emit(Event{Type: EventBallRemoved, BallID: b.ID})
		case b.Position.Z <= AIGoalZ:
			s.PlayerScore++
			playerScored = true
			pos := b.Position
			s.emit(Event{Type: EventGoalScored, BallID: b.ID, Side: SidePlayer, Position: &pos})
			s.emit(Event{Type: EventBallRemoved, BallID: b.ID})
		default:
			kept = append(kept, b)
		}
	}
	s.Balls = kept

	switch {
	case playerDeath:
		s.Phase = PhaseDead
		s.phaseTimer = DeathSeconds
		s.emit(Event{Type: EventPlayerDeath})
	case playerScored:
		s.Phase = PhaseCelebrating
		s.phaseTimer = CelebrationSeconds
	}
}

// endSubState leaves a timed celebrating/dead sub-state and returns to
// play. Death resets the rally completely; a celebration only respawns
// when the pool drained.
func (s *Simulation) endSubState() {
	wasDeath := s.Phase == PhaseDead
	s.Phase = PhasePlaying
	s.phaseTimer = 0

	if wasDeath {
		s.Balls = s.Balls[:0]
		s.resetRally(true)
		if s.Combo != 0 {
			s.Combo = 0
			s.emit(Event{Type: EventComboChanged, Combo: 0})
		}
	} else {
		s.resetRally(false)
	}

	if len(s.Balls) == 0 {
		if err := s.serve(); err != nil {
			log.Printf("[SIM] respawn serve failed: %v", err)
		}
	}
}

// resetRally clears the hit counter (every respawn) and, on a full
// reset, restores the spawn threshold to its opening value.
func (s *Simulation) resetRally(full bool) {
	s.SuccessfulHits = 0
	if full {
		s.NextBallThreshold = InitialBallThreshold
	}
}

// advanceObstacle ticks the hazard lifecycle and spawns a new obstacle
// on the fixed interval when none is active.
func (s *Simulation) advanceObstacle(dt float64) {
	if s.Obstacle != nil {
		if !s.Obstacle.advance(dt) {
			s.emit(Event{Type: EventObstacleExpired, Position: &s.Obstacle.Position})
			s.Obstacle = nil
			s.obstacleTimer = ObstacleIntervalSeconds
		}
		return
	}
	s.obstacleTimer -= dt
	if s.obstacleTimer > 0 {
		return
	}
	pos := Vec2{X: s.jitter(ObstacleSpawnSpread), Z: s.jitter(ObstacleSpawnSpread)}
	s.Obstacle = newObstacle(pos)
	s.emit(Event{Type: EventObstacleSpawned, Position: &pos})
}
