package models

import (
	"database/sql"
	"time"
)

// Player represents a user in the system
type Player struct {
	ID            int          `db:"id" json:"id"`
	Handle        string       `db:"handle" json:"handle"`
	CreatedAt     time.Time    `db:"created_at" json:"created_at"`
	TotalSessions int          `db:"total_sessions" json:"total_sessions"`
	TotalGoals    int          `db:"total_goals" json:"total_goals"`
	BestScore     int          `db:"best_score" json:"best_score"`
	LastSeenAt    sql.NullTime `db:"last_seen_at" json:"last_seen_at,omitempty"`
}

// GameSession represents one single-player arena session
type GameSession struct {
	ID               int          `db:"id" json:"id"`
	SessionToken     string       `db:"session_token" json:"session_token"`
	PlayerID         int          `db:"player_id" json:"player_id"`
	Status           string       `db:"status" json:"status"`
	AntiStuckProfile string       `db:"anti_stuck_profile" json:"anti_stuck_profile"`
	PlayerScore      int          `db:"player_score" json:"player_score"`
	AIScore          int          `db:"ai_score" json:"ai_score"`
	CreatedAt        time.Time    `db:"created_at" json:"created_at"`
	StartedAt        sql.NullTime `db:"started_at" json:"started_at,omitempty"`
	CompletedAt      sql.NullTime `db:"completed_at" json:"completed_at,omitempty"`
	ExpiryTime       time.Time    `db:"expiry_time" json:"expiry_time"`
}

// SessionRound represents one finished rally within a session
type SessionRound struct {
	ID          int       `db:"id" json:"id"`
	SessionID   int       `db:"session_id" json:"session_id"`
	RoundNumber int       `db:"round_number" json:"round_number"`
	ScoredBy    string    `db:"scored_by" json:"scored_by"`
	PlayerScore int       `db:"player_score" json:"player_score"`
	AIScore     int       `db:"ai_score" json:"ai_score"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
}

// LeaderboardEntry is one row of the best-score leaderboard
type LeaderboardEntry struct {
	Handle        string `db:"handle" json:"handle"`
	BestScore     int    `db:"best_score" json:"best_score"`
	TotalGoals    int    `db:"total_goals" json:"total_goals"`
	TotalSessions int    `db:"total_sessions" json:"total_sessions"`
}

// AdminAccount represents an operator account for the admin endpoints
type AdminAccount struct {
	ID          int       `db:"id" json:"id"`
	Username    string    `db:"username" json:"username"`
	DisplayName string    `db:"display_name" json:"display_name"`
	TokenHash   string    `db:"token_hash" json:"-"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time `db:"updated_at" json:"updated_at"`
}
