package game

// Arena geometry and physics constants. All positions are in arena units
// on the XZ plane; velocities are in units per tick at the nominal 60Hz
// rate. These MUST match the client-side constants in the frontend exactly.

const (
	WallBound = 11.5 // |x| of the side walls

	PlayerPaddleZ = 14.5  // player paddle collision plane
	AIPaddleZ     = -14.5 // AI paddle collision plane
	PlayerGoalZ   = 19.0  // ball past here: AI scores (player death)
	AIGoalZ       = -19.0 // ball past here: player scores

	BallRadius = 0.4

	PaddleBaseHalfWidth = 2.5
	PaddleSpeed         = 0.3 // units per tick under directional input
	PushbackDistance    = 1.5
	PushbackDecay       = 0.96 // per tick
	PushbackEpsilon     = 0.01
	WidthBonusTransitionSeconds = 0.3

	SpeedMultiplierGain = 1.05
	DeflectionFactor    = 0.1  // vx gain per unit of offset from paddle center
	PaddleHitJitter     = 0.02 // small random vx perturbation on paddle hits

	MaxBalls             = 2
	InitialBallThreshold = 4 // successful hits before the second ball
	ThresholdIncrement   = 2
	ComboIdleSeconds     = 3.0

	ServeSpeed       = 0.12 // |vz| of a freshly served ball
	ServeXSpread     = 0.05 // max |vx| on a serve
	TeleportSpeed    = 0.25 // |vz| after a wedged-ball teleport
	ExtraBallXSpread = 6.0  // lateral placement range of a threshold-spawned ball

	// Cooldowns are elapsed-time counted (seconds of simulation time)
	// rather than tick counted, so collision behavior is independent of
	// the host frame rate. Values are the 60Hz-tick equivalents of the
	// original tuning.
	WallCooldownSeconds     = 0.05 // 3 ticks
	PaddleCooldownSeconds   = 0.30
	ObstacleCooldownSeconds = 0.10

	StuckHistoryCap    = 10
	StuckWindowSeconds = 0.5
	StuckThreshold     = 6
	StuckRadius        = 3.0

	// Wedged-ball fallback: sustained sub-threshold displacement for a
	// full second forces a teleport to the arena center.
	WedgeDisplacementPerTick = 0.1
	WedgeSeconds             = 1.0

	ObstacleIntervalSeconds = 10.0
	ObstacleRiseSeconds     = 0.5
	ObstacleHoldSeconds     = 4.0
	ObstacleLowerSeconds    = 0.5
	ObstacleHalfX           = 1.0
	ObstacleHalfZ           = 1.0
	ObstacleSpawnSpread     = 6.0 // obstacle center lands in [-spread, spread] on both axes

	CelebrationSeconds = 2.0
	DeathSeconds       = 1.5

	WidthBonusDurationSeconds = 8.0

	TicksPerSecond = 60.0
	BaseTickSeconds = 1.0 / TicksPerSecond

	MinTimeScale = 0.1
	MaxTimeScale = 1.0
)

// AntiStuckProfile tunes the wall-contact jitter and the minimum |vz|
// floor. The floor is the primary anti-stuck guarantee: a ball can never
// settle into a near-zero-z trajectory against a wall.
type AntiStuckProfile struct {
	Name         string
	WallJitter   float64 // z-velocity jitter range on wall contact: [-j, j]
	MinZVelocity float64 // |vz| floor enforced after wall and obstacle hits
}

var (
	ProfileStandard = AntiStuckProfile{Name: "standard", WallJitter: 0.04, MinZVelocity: 0.08}
	ProfileEnhanced = AntiStuckProfile{Name: "enhanced", WallJitter: 0.08, MinZVelocity: 0.12}
)

// ProfileByName returns the named anti-stuck profile, defaulting to the
// standard profile for unknown names.
func ProfileByName(name string) AntiStuckProfile {
	if name == ProfileEnhanced.Name {
		return ProfileEnhanced
	}
	return ProfileStandard
}
