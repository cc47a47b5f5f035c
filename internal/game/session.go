package game

import (
	"errors"
	"log"
	"sync"
	"time"
)

// Session wraps one player's live arena: the simulation plus the
// connection/lifecycle bookkeeping around it. All simulation access
// goes through the session mutex; the ws layer's tick loop is the only
// writer during play.
type Session struct {
	ID          string `json:"id"`
	Token       string `json:"token"`
	PlayerID    string `json:"player_id"`
	PlayerToken string `json:"-"` // ws auth token, never serialized with the session
	Handle      string `json:"handle"`
	DBPlayerID  int    `json:"db_player_id,omitempty"`
	DBSessionID int    `json:"db_session_id,omitempty"`

	Status         SessionStatus `json:"status"`
	Connected      bool          `json:"connected"`
	DisconnectedAt *time.Time    `json:"-"`

	CreatedAt    time.Time  `json:"created_at"`
	StartedAt    *time.Time `json:"started_at,omitempty"`
	CompletedAt  *time.Time `json:"completed_at,omitempty"`
	ExpiresAt    time.Time  `json:"expires_at"`
	LastActivity time.Time  `json:"last_activity"`

	rounds int // goals recorded so far, for DB round numbering

	sim *Simulation
	mu  sync.RWMutex
}

// Begin starts the simulation if the session is still waiting.
func (s *Session) Begin() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.Status != StatusWaiting {
		return nil
	}
	if err := s.sim.Start(); err != nil {
		return err
	}
	now := time.Now()
	s.Status = StatusInProgress
	s.StartedAt = &now
	s.LastActivity = now
	log.Printf("[SESSION] %s started for %s (profile=%s)", s.ID, s.Handle, s.sim.Profile().Name)
	return nil
}

// Advance steps the simulation by dt seconds and returns the events the
// step produced. No-op for completed sessions.
func (s *Session) Advance(dt float64) []Event {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.Status != StatusInProgress {
		return nil
	}
	s.sim.Step(dt)
	events := s.sim.DrainEvents()

	// Persist each goal as a round record, celebration and death alike.
	for _, e := range events {
		if e.Type != EventGoalScored {
			continue
		}
		s.rounds++
		if Manager != nil {
			Manager.RecordRound(s.DBSessionID, s.rounds, e.Side, s.sim.PlayerScore, s.sim.AIScore)
		}
	}
	return events
}

// ApplyInput sets the player's directional intent for subsequent ticks.
// dir is -1, 0 or +1; anything else is clamped.
func (s *Session) ApplyInput(dir int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if dir > 1 {
		dir = 1
	} else if dir < -1 {
		dir = -1
	}
	s.sim.Player.Intent = dir
	s.LastActivity = time.Now()
}

// SetPaused pauses or resumes play.
func (s *Session) SetPaused(paused bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sim.SetPaused(paused)
	s.LastActivity = time.Now()
}

// SetTimeScale applies a slow-motion factor from the client.
func (s *Session) SetTimeScale(v float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sim.SetTimeScale(v)
}

// ResetGame reinitializes the full simulation state.
func (s *Session) ResetGame() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Status != StatusInProgress {
		return errors.New("session is not in progress")
	}
	s.sim.Reset()
	s.LastActivity = time.Now()
	return nil
}

// ActivateWidthBonus widens the given side's paddle; the VFX layer
// decides when a pickup was collected and by whom.
func (s *Session) ActivateWidthBonus(side Side) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if side == SideAI {
		s.sim.AI.ActivateWidthBonus()
	} else {
		s.sim.Player.ActivateWidthBonus()
	}
}

// SetPlayerConnected tracks the websocket connection state.
func (s *Session) SetPlayerConnected(connected bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Connected = connected
	if connected {
		s.DisconnectedAt = nil
		s.LastActivity = time.Now()
	} else {
		now := time.Now()
		s.DisconnectedAt = &now
		s.sim.SetPaused(true)
	}
}

// Complete finishes the session with the given status and persists the
// final state.
func (s *Session) Complete(status SessionStatus) {
	s.mu.Lock()
	if s.Status == StatusCompleted || s.Status == StatusExpired {
		s.mu.Unlock()
		return
	}
	s.Status = status
	now := time.Now()
	s.CompletedAt = &now
	s.mu.Unlock()

	if Manager != nil {
		Manager.SaveFinalSessionState(s)
	}
}

// Scores returns the current player/AI score pair.
func (s *Session) Scores() (int, int) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.sim.PlayerScore, s.sim.AIScore
}

// Snapshot returns the state the client renders from. Everything is
// copied by value under the lock; the tick loop keeps mutating the live
// entities while callers marshal the snapshot.
func (s *Session) Snapshot() map[string]interface{} {
	s.mu.RLock()
	defer s.mu.RUnlock()

	balls := make([]Ball, len(s.sim.Balls))
	for i, b := range s.sim.Balls {
		balls[i] = *b
	}
	player := *s.sim.Player
	ai := *s.sim.AI
	var obstacle *Obstacle
	if s.sim.Obstacle != nil {
		o := *s.sim.Obstacle
		obstacle = &o
	}

	return map[string]interface{}{
		"session_id":          s.ID,
		"token":               s.Token,
		"status":              s.Status,
		"phase":               s.sim.Phase,
		"balls":               balls,
		"player":              player,
		"ai":                  ai,
		"player_half_width":   player.HalfWidth(),
		"ai_half_width":       ai.HalfWidth(),
		"obstacle":            obstacle,
		"player_score":        s.sim.PlayerScore,
		"ai_score":            s.sim.AIScore,
		"combo":               s.sim.Combo,
		"successful_hits":     s.sim.SuccessfulHits,
		"next_ball_threshold": s.sim.NextBallThreshold,
		"time_scale":          s.sim.TimeScale,
	}
}

// SaveToRedis snapshots the session via the manager.
func (s *Session) SaveToRedis() {
	if Manager != nil && Manager.rdb != nil {
		if err := Manager.saveSessionToRedis(s); err != nil {
			log.Printf("[SESSION] redis save failed for %s: %v", s.ID, err)
		}
	}
}
