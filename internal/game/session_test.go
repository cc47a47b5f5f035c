package game

import (
	"encoding/json"
	"testing"
	"time"
)

func newTestSession(t *testing.T) *Session {
	t.Helper()
	now := time.Now()
	return &Session{
		ID:           "arena_test",
		Token:        "tok_test",
		PlayerID:     "p_test",
		PlayerToken:  "pt_test",
		Handle:       "tester",
		Status:       StatusWaiting,
		CreatedAt:    now,
		LastActivity: now,
		ExpiresAt:    now.Add(30 * time.Minute),
		sim:          NewSimulation(ProfileStandard, 7),
	}
}

func TestSessionBeginStartsPlay(t *testing.T) {
	sess := newTestSession(t)

	if err := sess.Begin(); err != nil {
		t.Fatalf("Begin failed: %v", err)
	}
	if sess.Status != StatusInProgress {
		t.Errorf("Status should be IN_PROGRESS, got %s", sess.Status)
	}
	if sess.StartedAt == nil {
		t.Error("StartedAt should be set")
	}

	// Begin is idempotent once started
	if err := sess.Begin(); err != nil {
		t.Errorf("Second Begin should be a no-op, got %v", err)
	}
}

func TestSessionAdvanceReturnsEvents(t *testing.T) {
	sess := newTestSession(t)
	if err := sess.Begin(); err != nil {
		t.Fatalf("Begin failed: %v", err)
	}

	// Drive a ball past the AI goal to produce events
	sess.sim.Balls[0].Position = Vec2{X: 0, Z: -19.05}
	events := sess.Advance(BaseTickSeconds)

	foundGoal := false
	for _, e := range events {
		if e.Type == EventGoalScored {
			foundGoal = true
		}
	}
	if !foundGoal {
		t.Error("Advance should surface the goal event")
	}

	player, ai := sess.Scores()
	if player != 1 || ai != 0 {
		t.Errorf("Scores wrong after goal: %d:%d", player, ai)
	}
}

func TestSessionAdvanceIsNoOpWhenNotInProgress(t *testing.T) {
	sess := newTestSession(t)

	if events := sess.Advance(BaseTickSeconds); events != nil {
		t.Errorf("Waiting session should not advance, got %d events", len(events))
	}
}

func TestSessionInputClamping(t *testing.T) {
	sess := newTestSession(t)
	if err := sess.Begin(); err != nil {
		t.Fatalf("Begin failed: %v", err)
	}

	sess.ApplyInput(5)
	if sess.sim.Player.Intent != 1 {
		t.Errorf("Intent should clamp to 1, got %d", sess.sim.Player.Intent)
	}
	sess.ApplyInput(-5)
	if sess.sim.Player.Intent != -1 {
		t.Errorf("Intent should clamp to -1, got %d", sess.sim.Player.Intent)
	}
	sess.ApplyInput(0)
	if sess.sim.Player.Intent != 0 {
		t.Errorf("Intent should accept 0, got %d", sess.sim.Player.Intent)
	}
}

func TestSessionDisconnectPausesPlay(t *testing.T) {
	sess := newTestSession(t)
	if err := sess.Begin(); err != nil {
		t.Fatalf("Begin failed: %v", err)
	}

	sess.SetPlayerConnected(false)
	if sess.Connected {
		t.Error("Session should record the disconnect")
	}
	if sess.sim.Phase != PhasePaused {
		t.Errorf("Disconnect should pause the simulation, got %s", sess.sim.Phase)
	}
	if sess.DisconnectedAt == nil {
		t.Error("DisconnectedAt should be set")
	}

	sess.SetPlayerConnected(true)
	if sess.DisconnectedAt != nil {
		t.Error("Reconnect should clear DisconnectedAt")
	}
}

func TestSessionCompleteIsIdempotent(t *testing.T) {
	sess := newTestSession(t)
	if err := sess.Begin(); err != nil {
		t.Fatalf("Begin failed: %v", err)
	}

	sess.Complete(StatusCompleted)
	first := sess.CompletedAt
	if sess.Status != StatusCompleted || first == nil {
		t.Fatalf("Complete should close the session: status=%s", sess.Status)
	}

	sess.Complete(StatusExpired)
	if sess.Status != StatusCompleted {
		t.Errorf("A second Complete must not change the status, got %s", sess.Status)
	}
	if sess.CompletedAt != first {
		t.Error("A second Complete must not touch CompletedAt")
	}
}

func TestSessionSnapshotShape(t *testing.T) {
	sess := newTestSession(t)
	if err := sess.Begin(); err != nil {
		t.Fatalf("Begin failed: %v", err)
	}

	snap := sess.Snapshot()
	for _, key := range []string{"session_id", "phase", "balls", "player", "ai", "player_score", "ai_score", "combo", "time_scale"} {
		if _, ok := snap[key]; !ok {
			t.Errorf("Snapshot missing key %q", key)
		}
	}
	if snap["phase"] != PhasePlaying {
		t.Errorf("Snapshot phase wrong: %v", snap["phase"])
	}
}

func TestSnapshotIsDetachedFromLiveState(t *testing.T) {
	sess := newTestSession(t)
	if err := sess.Begin(); err != nil {
		t.Fatalf("Begin failed: %v", err)
	}

	snap := sess.Snapshot()
	balls, ok := snap["balls"].([]Ball)
	if !ok || len(balls) != 1 {
		t.Fatalf("Snapshot should carry ball copies, got %T", snap["balls"])
	}
	ballBefore := balls[0].Position
	player, ok := snap["player"].(Paddle)
	if !ok {
		t.Fatalf("Snapshot should carry a paddle copy, got %T", snap["player"])
	}
	playerBefore := player.X

	// Stepping the live simulation must not reach into the snapshot.
	sess.ApplyInput(1)
	for i := 0; i < 120; i++ {
		sess.Advance(BaseTickSeconds)
	}

	if balls[0].Position != ballBefore {
		t.Errorf("Snapshot ball moved with the live state: (%.4f,%.4f) -> (%.4f,%.4f)",
			ballBefore.X, ballBefore.Z, balls[0].Position.X, balls[0].Position.Z)
	}
	if player.X != playerBefore {
		t.Errorf("Snapshot paddle moved with the live state: %.4f -> %.4f", playerBefore, player.X)
	}
}

func TestSnapshotMarshalsSafelyDuringPlay(t *testing.T) {
	sess := newTestSession(t)
	if err := sess.Begin(); err != nil {
		t.Fatalf("Begin failed: %v", err)
	}
	sess.ApplyInput(1)

	done := make(chan struct{})
	go func() {
		defer close(done)
		for i := 0; i < 600; i++ {
			sess.Advance(BaseTickSeconds)
		}
	}()

	for {
		select {
		case <-done:
			return
		default:
			if _, err := json.Marshal(sess.Snapshot()); err != nil {
				t.Fatalf("Snapshot failed to marshal during play: %v", err)
			}
		}
	}
}

func TestSessionResetRequiresInProgress(t *testing.T) {
	sess := newTestSession(t)
	if err := sess.ResetGame(); err == nil {
		t.Error("Reset on a waiting session should fail")
	}

	if err := sess.Begin(); err != nil {
		t.Fatalf("Begin failed: %v", err)
	}
	if err := sess.ResetGame(); err != nil {
		t.Errorf("Reset on a live session should succeed: %v", err)
	}
}
