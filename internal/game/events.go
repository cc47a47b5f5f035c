package game

// EventType identifies a simulation event consumed by the rendering/VFX
// layer over the wire.
type EventType string

const (
	EventWallCollision     EventType = "wall_collision"
	EventPaddleCollision   EventType = "paddle_collision"
	EventObstacleCollision EventType = "obstacle_collision"
	EventBallSpawned       EventType = "ball_spawned"
	EventBallRemoved       EventType = "ball_removed"
	EventGoalScored        EventType = "goal_scored"
	EventPlayerDeath       EventType = "player_death"
	EventComboChanged      EventType = "combo_changed"
	EventBallTeleported    EventType = "ball_teleported"
	EventObstacleSpawned   EventType = "obstacle_spawned"
	EventObstacleExpired   EventType = "obstacle_expired"
)

// Event records a single simulation occurrence for the client to render.
type Event struct {
	Type     EventType `json:"type"`
	BallID   int       `json:"ball_id,omitempty"`
	Side     Side      `json:"side,omitempty"` // wall side, paddle side, or scoring side
	Position *Vec2     `json:"position,omitempty"`
	Combo    int       `json:"combo,omitempty"`
	Speed    float64   `json:"speed,omitempty"` // impact speed (for sound volume)
}
