package game

import (
	"testing"
)

// Helper to create a started simulation with a single ball in a known
// state, replacing the served ball.
func setupBall(t *testing.T, pos, vel Vec2) (*Simulation, *Ball) {
	t.Helper()
	s := NewSimulation(ProfileStandard, 42)
	if err := s.Start(); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	b := s.Balls[0]
	b.Position = pos
	b.Velocity = vel
	return s, b
}

func TestWallCollisionClampsAndReflects(t *testing.T) {
	s, b := setupBall(t, Vec2{X: -11.6, Z: 0}, Vec2{X: -0.1, Z: -0.05})

	s.resolveWall(b)

	if b.Position.X != -WallBound {
		t.Errorf("Ball not clamped to wall: x=%.4f want %.4f", b.Position.X, -WallBound)
	}
	if b.Velocity.X <= 0 {
		t.Errorf("vx should point back into the arena: vx=%.4f", b.Velocity.X)
	}
	if absf(b.Velocity.Z) < s.profile.MinZVelocity {
		t.Errorf("|vz| below anti-stuck floor: vz=%.4f floor=%.4f", b.Velocity.Z, s.profile.MinZVelocity)
	}
	if b.WallCooldown != WallCooldownSeconds {
		t.Errorf("Wall cooldown not armed: %.4f", b.WallCooldown)
	}

	events := s.DrainEvents()
	found := false
	for _, e := range events {
		if e.Type == EventWallCollision && e.BallID == b.ID {
			found = true
		}
	}
	if !found {
		t.Error("Expected a wall_collision event")
	}
}

func TestWallCooldownSuppressesRetrigger(t *testing.T) {
	s, b := setupBall(t, Vec2{X: 11.7, Z: 0}, Vec2{X: 0.1, Z: 0.1})

	s.resolveWall(b)
	vzAfterFirst := b.Velocity.Z
	s.DrainEvents()

	// Still at the wall, cooldown active: a second resolve is a no-op
	b.Position.X = 11.7
	s.resolveWall(b)

	if b.Velocity.Z != vzAfterFirst {
		t.Errorf("Cooldown should suppress a second response: vz changed %.4f -> %.4f", vzAfterFirst, b.Velocity.Z)
	}
	if events := s.DrainEvents(); len(events) != 0 {
		t.Errorf("Expected no events during cooldown, got %d", len(events))
	}
}

func TestPaddleHitAcceleratesAndReassignsOwner(t *testing.T) {
	s, b := setupBall(t, Vec2{X: 0.2, Z: 14.6}, Vec2{X: 0, Z: 0.1})
	b.Owner = SideAI

	if !s.resolvePaddle(b, s.Player) {
		t.Fatal("Expected a paddle hit to resolve")
	}

	if b.Velocity.Z >= 0 {
		t.Errorf("vz should reverse off the player paddle: vz=%.4f", b.Velocity.Z)
	}
	if b.SpeedMultiplier != SpeedMultiplierGain {
		t.Errorf("Speed multiplier wrong: got %.4f want %.4f", b.SpeedMultiplier, SpeedMultiplierGain)
	}
	if b.Owner != SidePlayer {
		t.Errorf("Owner not reassigned: %s", b.Owner)
	}
	if s.SuccessfulHits != 1 {
		t.Errorf("SuccessfulHits should be 1, got %d", s.SuccessfulHits)
	}
	if s.Combo != 1 {
		t.Errorf("AI-owned ball hit should start a combo, got %d", s.Combo)
	}
	if s.Player.Pushback != PushbackDistance {
		t.Errorf("Paddle recoil not applied: %.4f", s.Player.Pushback)
	}
}

func TestPaddleCooldownSuppressesRetrigger(t *testing.T) {
	s, b := setupBall(t, Vec2{X: 0, Z: 14.6}, Vec2{X: 0, Z: 0.1})

	if !s.resolvePaddle(b, s.Player) {
		t.Fatal("First contact should resolve")
	}
	s.DrainEvents()

	// Same contact, cooldown active: force the ball back onto the plane
	b.Position = Vec2{X: 0, Z: 14.6}
	b.Velocity = Vec2{X: 0, Z: 0.1}
	if s.resolvePaddle(b, s.Player) {
		t.Error("Cooldown should suppress a second response")
	}
	if s.SuccessfulHits != 1 {
		t.Errorf("Suppressed contact must not count a hit, got %d", s.SuccessfulHits)
	}
	if events := s.DrainEvents(); len(events) != 0 {
		t.Errorf("Expected no events during cooldown, got %d", len(events))
	}
}

func TestPaddlePlaneIgnoresPushback(t *testing.T) {
	s, b := setupBall(t, Vec2{X: 0, Z: PlayerPaddleZ + 0.1}, Vec2{X: 0, Z: 0.1})
	s.Player.Pushback = PushbackDistance // recoiling from an earlier hit

	// The ball sits between the baseline and the recoiled position.
	// Recoil is render-only; the baseline still triggers the hit.
	if !s.resolvePaddle(b, s.Player) {
		t.Fatal("Baseline contact should resolve while the paddle recoils")
	}
	if b.Velocity.Z >= 0 {
		t.Errorf("vz should reverse off the baseline: vz=%.4f", b.Velocity.Z)
	}
}

func TestPaddleMissOutsideHalfWidth(t *testing.T) {
	s, b := setupBall(t, Vec2{X: 4.0, Z: 14.6}, Vec2{X: 0, Z: 0.1})

	if s.resolvePaddle(b, s.Player) {
		t.Error("Ball outside paddle half-width should not resolve")
	}
	if s.SuccessfulHits != 0 {
		t.Errorf("Miss should not count a hit, got %d", s.SuccessfulHits)
	}
}

func TestAIPaddleHitResetsCombo(t *testing.T) {
	s, b := setupBall(t, Vec2{X: 0, Z: -14.6}, Vec2{X: 0, Z: -0.1})
	s.Combo = 3

	if !s.resolvePaddle(b, s.AI) {
		t.Fatal("Expected the AI paddle hit to resolve")
	}
	if s.Combo != 0 {
		t.Errorf("AI return should break the combo, got %d", s.Combo)
	}
	if s.SuccessfulHits != 0 {
		t.Errorf("AI hits must not count toward the spawn threshold, got %d", s.SuccessfulHits)
	}
	if b.Owner != SideAI {
		t.Errorf("Owner should be the AI, got %s", b.Owner)
	}
}

func TestObstacleFaceBounce(t *testing.T) {
	s, b := setupBall(t, Vec2{X: 0, Z: 1.2}, Vec2{X: 0, Z: -0.1})
	s.Obstacle = newObstacle(Vec2{})

	s.resolveObstacle(b)

	if b.Velocity.Z <= 0 {
		t.Errorf("Ball should bounce off the near z face: vz=%.4f", b.Velocity.Z)
	}
	if b.Position.Z <= 1.2 {
		t.Errorf("Ball should be pushed out of the box: z=%.4f", b.Position.Z)
	}
	if absf(b.Velocity.X) < s.profile.MinZVelocity {
		t.Errorf("Orthogonal axis should be floored after a z-face bounce: vx=%.4f", b.Velocity.X)
	}
	if b.ObstacleCooldown != ObstacleCooldownSeconds {
		t.Errorf("Obstacle cooldown not armed: %.4f", b.ObstacleCooldown)
	}
}

func TestObstacleLifecycle(t *testing.T) {
	o := newObstacle(Vec2{})

	if o.Phase != ObstacleRising {
		t.Fatalf("New obstacle should be rising, got %s", o.Phase)
	}
	o.advance(ObstacleRiseSeconds)
	if o.Phase != ObstacleHolding {
		t.Errorf("Expected holding after rise, got %s", o.Phase)
	}
	o.advance(ObstacleHoldSeconds)
	if o.Phase != ObstacleLowering {
		t.Errorf("Expected lowering after hold, got %s", o.Phase)
	}
	if !o.advance(ObstacleLowerSeconds / 2) {
		t.Error("Obstacle should still be alive mid-lowering")
	}
	if o.advance(ObstacleLowerSeconds) {
		t.Error("Obstacle should expire after lowering completes")
	}
}

func TestStuckClusterSuspendsForOneTick(t *testing.T) {
	s, b := setupBall(t, Vec2{X: -11.5, Z: 10}, Vec2{X: 0.1, Z: 0.1})

	// Six collisions at nearly the same point within the window
	for i := 0; i < StuckThreshold; i++ {
		s.recordAndDetect(b, Vec2{X: -11.5, Z: 10 + float64(i)*0.1})
	}

	if !b.suspendPending {
		t.Fatal("Cluster should mark the ball for suspension")
	}
	if len(b.history) != 0 {
		t.Errorf("History should be cleared on classification, got %d entries", len(b.history))
	}

	// Exactly one tick of suspension
	b.promoteSuspension()
	if !b.Suspended() {
		t.Error("Ball should be suspended the tick after classification")
	}
	b.promoteSuspension()
	if b.Suspended() {
		t.Error("Suspension should last exactly one tick")
	}
}

func TestStuckDetectorBelowThresholdIsNoOp(t *testing.T) {
	s, b := setupBall(t, Vec2{X: -11.5, Z: 10}, Vec2{X: 0.1, Z: 0.1})

	for i := 0; i < StuckThreshold-1; i++ {
		s.recordAndDetect(b, Vec2{X: -11.5, Z: 10})
	}

	if b.suspendPending {
		t.Error("Below-threshold history should never suspend")
	}
	if len(b.history) != StuckThreshold-1 {
		t.Errorf("History should be untouched below threshold, got %d entries", len(b.history))
	}
}

func TestSpreadCollisionsDoNotSuspend(t *testing.T) {
	s, b := setupBall(t, Vec2{}, Vec2{X: 0.1, Z: 0.1})

	// Six collisions scattered wider than the cluster radius
	points := []Vec2{{-11, 10}, {11, 8}, {-10, -9}, {10, -10}, {0, 11}, {0, -11}}
	for _, p := range points {
		s.recordAndDetect(b, p)
	}

	if b.suspendPending {
		t.Error("Spread-out collisions should not classify as stuck")
	}
}

func TestWedgedBallTeleports(t *testing.T) {
	s, b := setupBall(t, Vec2{X: 6, Z: 3}, Vec2{})
	b.LastPosition = b.Position

	// A full second of sub-threshold displacement forces the teleport
	teleported := false
	ticks := int(WedgeSeconds*TicksPerSecond) + 2
	for i := 0; i < ticks; i++ {
		if s.checkWedged(b, 1, BaseTickSeconds) {
			teleported = true
			break
		}
	}

	if !teleported {
		t.Fatal("Wedged ball should teleport after a second of no motion")
	}
	if b.Position.X != 0 || b.Position.Z != 0 {
		t.Errorf("Teleport should recenter the ball, got (%.2f,%.2f)", b.Position.X, b.Position.Z)
	}
	if b.Velocity.Z != -TeleportSpeed {
		t.Errorf("Teleport should relaunch toward the AI side: vz=%.4f", b.Velocity.Z)
	}
	if b.WedgeTime != 0 {
		t.Errorf("Wedge timer should reset after teleport: %.4f", b.WedgeTime)
	}
}

func TestMovingBallResetsWedgeTimer(t *testing.T) {
	s, b := setupBall(t, Vec2{}, Vec2{X: 0, Z: -0.12})
	b.WedgeTime = 0.9
	b.LastPosition = Vec2{X: 0, Z: 0.5} // moved half a unit since last tick

	if s.checkWedged(b, 1, BaseTickSeconds) {
		t.Error("Moving ball should not teleport")
	}
	if b.WedgeTime != 0 {
		t.Errorf("Displacement above threshold should reset the timer: %.4f", b.WedgeTime)
	}
}
