package game

// GamePhase represents the current phase of a simulation
type GamePhase string

const (
	PhaseMenu        GamePhase = "MENU"
	PhasePlaying     GamePhase = "PLAYING"
	PhasePaused      GamePhase = "PAUSED"
	PhaseCelebrating GamePhase = "CELEBRATING" // player scored; timed, physics frozen
	PhaseDead        GamePhase = "DEAD"        // AI scored; timed, physics frozen
)

// Side identifies which paddle owns or touched something.
type Side string

const (
	SidePlayer Side = "player"
	SideAI     Side = "ai"
)

// Opponent returns the other side.
func (s Side) Opponent() Side {
	if s == SidePlayer {
		return SideAI
	}
	return SidePlayer
}
