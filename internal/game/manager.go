package game

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"errors"
	"log"
	"math/big"
	"sync"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/redis/go-redis/v9"
	"github.com/stellanjoh2/gridzone-sub000/internal/config"
)

// GameManager owns all active sessions and their persistence
type GameManager struct {
	sessions   map[string]*Session // keyed by session ID
	tokenIndex map[string]string   // session token -> session ID
	rdb        *redis.Client
	db         *sqlx.DB
	config     *config.Config
	mu         sync.RWMutex
}

var (
	// Global game manager instance
	Manager *GameManager
)

// InitializeManager initializes the global game manager with Redis, DB and config
func InitializeManager(db *sqlx.DB, rdb *redis.Client, cfg *config.Config) {
	Manager = NewGameManager(db, rdb, cfg)
}

// NewGameManager creates a new game manager
func NewGameManager(db *sqlx.DB, rdb *redis.Client, cfg *config.Config) *GameManager {
	return &GameManager{
		sessions:   make(map[string]*Session),
		tokenIndex: make(map[string]string),
		rdb:        rdb,
		db:         db,
		config:     cfg,
	}
}

// DB exposes the manager's database handle for read-side queries.
func (gm *GameManager) DB() *sqlx.DB { return gm.db }

// Config returns the application config the manager was built with.
func (gm *GameManager) Config() *config.Config { return gm.config }

// generateToken generates a secure random token
func generateToken(length int) string {
	bytes := make([]byte, length)
	rand.Read(bytes)
	return hex.EncodeToString(bytes)
}

// generateSessionID generates a unique session ID
func generateSessionID() string {
	return "arena_" + generateToken(8)
}

// randomSeed draws a simulation seed from crypto entropy.
func randomSeed() int64 {
	n, err := rand.Int(rand.Reader, big.NewInt(1<<62))
	if err != nil {
		return time.Now().UnixNano()
	}
	return n.Int64()
}

// CreateSession builds a new single-player session for the given handle,
// persists the DB rows and schedules the expiry reaper entry.
func (gm *GameManager) CreateSession(handle string) (*Session, error) {
	if handle == "" {
		return nil, errors.New("handle is required")
	}

	sessionID := generateSessionID()
	sessionToken := generateToken(16)
	playerToken := generateToken(16)

	now := time.Now()
	sess := &Session{
		ID:           sessionID,
		Token:        sessionToken,
		PlayerID:     "p_" + generateToken(4),
		PlayerToken:  playerToken,
		Handle:       handle,
		Status:       StatusWaiting,
		CreatedAt:    now,
		LastActivity: now,
		ExpiresAt:    now.Add(time.Duration(gm.config.SessionExpiryMinutes) * time.Minute),
		sim:          NewSimulation(ProfileByName(gm.config.AntiStuckProfile), randomSeed()),
	}

	// Persist player and session rows when a DB is configured.
	if gm.db != nil {
		var playerID int
		err := gm.db.QueryRowx(`INSERT INTO players (handle, created_at, last_seen_at)
			VALUES ($1, NOW(), NOW())
			ON CONFLICT (handle) DO UPDATE SET last_seen_at = NOW()
			RETURNING id`, handle).Scan(&playerID)
		if err != nil {
			log.Printf("[DB] Failed to upsert player %s: %v", handle, err)
		} else {
			sess.DBPlayerID = playerID
			var dbSessionID int
			err = gm.db.QueryRowx(`INSERT INTO game_sessions (session_token, player_id, status, anti_stuck_profile, created_at, expiry_time)
				VALUES ($1, $2, $3, $4, NOW(), $5) RETURNING id`,
				sessionToken, playerID, string(StatusWaiting), sess.sim.Profile().Name, sess.ExpiresAt).Scan(&dbSessionID)
			if err != nil {
				log.Printf("[DB] Failed to create game_session: %v", err)
			} else {
				sess.DBSessionID = dbSessionID
			}
		}
	}

	gm.mu.Lock()
	gm.sessions[sessionID] = sess
	gm.tokenIndex[sessionToken] = sessionID
	gm.mu.Unlock()

	log.Printf("[POOL] Session created: %s for %s (db_session=%d)", sessionID, handle, sess.DBSessionID)

	gm.saveSessionToRedis(sess)
	gm.scheduleReap(sess)

	return sess, nil
}

// scheduleReap enters the session into the reaper's expiry schedule.
func (gm *GameManager) scheduleReap(sess *Session) {
	if gm.rdb == nil {
		return
	}
	ctx := context.Background()
	err := gm.rdb.ZAdd(ctx, reaperScheduleKey, redis.Z{
		Score:  float64(sess.ExpiresAt.Unix()),
		Member: "s:" + sess.Token,
	}).Err()
	if err != nil {
		log.Printf("[REAPER] Failed to schedule session %s: %v", sess.ID, err)
	}
}

// GetSession retrieves a session by ID
func (gm *GameManager) GetSession(sessionID string) (*Session, error) {
	gm.mu.RLock()
	defer gm.mu.RUnlock()

	sess, exists := gm.sessions[sessionID]
	if !exists {
		return nil, errors.New("session not found")
	}
	return sess, nil
}

// GetSessionByToken retrieves a session by its token, falling back to
// Redis for the reconnect-after-restart case.
func (gm *GameManager) GetSessionByToken(token string) (*Session, error) {
	gm.mu.RLock()
	if id, ok := gm.tokenIndex[token]; ok {
		if sess, ok := gm.sessions[id]; ok {
			gm.mu.RUnlock()
			return sess, nil
		}
	}
	gm.mu.RUnlock()

	sess, err := gm.loadSessionFromRedis(token)
	if err != nil {
		return nil, errors.New("session not found")
	}

	gm.mu.Lock()
	gm.sessions[sess.ID] = sess
	gm.tokenIndex[sess.Token] = sess.ID
	gm.mu.Unlock()

	log.Printf("[POOL] Session %s restored from Redis", sess.ID)
	return sess, nil
}

// EndSession completes and removes a session from the manager
func (gm *GameManager) EndSession(sessionID string, status SessionStatus) error {
	gm.mu.Lock()
	sess, exists := gm.sessions[sessionID]
	if !exists {
		gm.mu.Unlock()
		return errors.New("session not found")
	}
	delete(gm.sessions, sessionID)
	delete(gm.tokenIndex, sess.Token)
	gm.mu.Unlock()

	sess.Complete(status)

	if gm.rdb != nil {
		ctx := context.Background()
		gm.rdb.ZRem(ctx, reaperScheduleKey, "s:"+sess.Token)
		gm.rdb.Del(ctx, "session:"+sess.Token+":state")
	}
	return nil
}

// ActiveSessionCount returns the number of live sessions
func (gm *GameManager) ActiveSessionCount() int {
	gm.mu.RLock()
	defer gm.mu.RUnlock()
	return len(gm.sessions)
}

// RecordRound records one finished rally in session_rounds. Best-effort;
// errors are logged and play continues.
func (gm *GameManager) RecordRound(dbSessionID, roundNumber int, scoredBy Side, playerScore, aiScore int) {
	if gm == nil || gm.db == nil || dbSessionID == 0 {
		return
	}
	_, err := gm.db.Exec(`INSERT INTO session_rounds (session_id, round_number, scored_by, player_score, ai_score, created_at)
		VALUES ($1, $2, $3, $4, $5, NOW())`,
		dbSessionID, roundNumber, string(scoredBy), playerScore, aiScore)
	if err != nil {
		log.Printf("[DB] Failed to record round %d for session %d: %v", roundNumber, dbSessionID, err)
	}
}

// SaveFinalSessionState persists the final scores and closes the DB row.
func (gm *GameManager) SaveFinalSessionState(sess *Session) {
	if gm == nil || gm.db == nil || sess == nil || sess.DBSessionID == 0 {
		return
	}

	playerScore, aiScore := sess.Scores()
	log.Printf("[DB] Closing session=%d status=%s score=%d:%d", sess.DBSessionID, sess.Status, playerScore, aiScore)

	_, err := gm.db.Exec(`UPDATE game_sessions SET status=$1, player_score=$2, ai_score=$3, completed_at=NOW() WHERE id=$4`,
		string(sess.Status), playerScore, aiScore, sess.DBSessionID)
	if err != nil {
		log.Printf("[DB] Failed to close game_session %d: %v", sess.DBSessionID, err)
	}

	if sess.DBPlayerID > 0 {
		_, err = gm.db.Exec(`UPDATE players SET total_sessions = total_sessions + 1,
			total_goals = total_goals + $1,
			best_score = GREATEST(best_score, $1),
			last_seen_at = NOW() WHERE id = $2`,
			playerScore, sess.DBPlayerID)
		if err != nil {
			log.Printf("[DB] Failed to update player stats for session %d: %v", sess.DBSessionID, err)
		}
	}
}

// saveSessionToRedis persists a session snapshot to Redis
func (gm *GameManager) saveSessionToRedis(sess *Session) error {
	if gm.rdb == nil {
		return nil
	}

	ctx := context.Background()
	key := "session:" + sess.Token + ":state"

	data, err := json.Marshal(map[string]interface{}{
		"session":      sess,
		"player_token": sess.PlayerToken,
		"player_score": sess.sim.PlayerScore,
		"ai_score":     sess.sim.AIScore,
		"profile":      sess.sim.Profile().Name,
	})
	if err != nil {
		return err
	}

	return gm.rdb.SetEx(ctx, key, data, time.Hour).Err()
}

// loadSessionFromRedis restores a session shell from Redis. The live
// simulation state is not replayed; the restored session gets a fresh
// simulation carrying the persisted scores forward.
func (gm *GameManager) loadSessionFromRedis(token string) (*Session, error) {
	if gm.rdb == nil {
		return nil, errors.New("no redis client")
	}

	ctx := context.Background()
	key := "session:" + token + ":state"

	data, err := gm.rdb.Get(ctx, key).Result()
	if err == redis.Nil {
		return nil, errors.New("session not found in redis")
	}
	if err != nil {
		return nil, err
	}

	var stored struct {
		Session     Session `json:"session"`
		PlayerToken string  `json:"player_token"`
		PlayerScore int     `json:"player_score"`
		AIScore     int     `json:"ai_score"`
		Profile     string  `json:"profile"`
	}
	if err := json.Unmarshal([]byte(data), &stored); err != nil {
		return nil, err
	}

	sess := &stored.Session
	sess.PlayerToken = stored.PlayerToken
	sess.Connected = false
	sess.LastActivity = time.Now()
	sess.sim = NewSimulation(ProfileByName(stored.Profile), randomSeed())
	sess.sim.PlayerScore = stored.PlayerScore
	sess.sim.AIScore = stored.AIScore
	if sess.Status == StatusInProgress {
		if err := sess.sim.Start(); err == nil {
			sess.sim.SetPaused(true)
		}
	}
	return sess, nil
}
