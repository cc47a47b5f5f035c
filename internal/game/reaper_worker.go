package game

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/redis/go-redis/v9"
	"github.com/stellanjoh2/gridzone-sub000/internal/config"
)

const (
	reaperScheduleKey  = "session_expiry"
	sessionEventsTopic = "session_events"
)

// StartReaperWorker starts a background worker that expires abandoned
// sessions using a Redis sorted set keyed by expiry timestamp.
func StartReaperWorker(ctx context.Context, db *sqlx.DB, rdb *redis.Client, cfg *config.Config) {
	if rdb == nil || cfg == nil {
		log.Println("[REAPER] Redis or config missing; reaper worker not started")
		return
	}

	log.Println("[REAPER] Reaper worker started")
	go func() {
		ticker := time.NewTicker(time.Duration(cfg.ReaperPollSeconds) * time.Second)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				log.Println("[REAPER] Reaper worker stopping")
				return
			case <-ticker.C:
				now := time.Now().Unix()

				members, err := rdb.ZRangeByScore(ctx, reaperScheduleKey, &redis.ZRangeBy{Min: "-inf", Max: fmt.Sprintf("%d", now)}).Result()
				if err != nil {
					log.Printf("[REAPER] Failed to fetch due sessions: %v", err)
					continue
				}

				for _, m := range members {
					// Attempt to remove first (race-safe across instances)
					if removed, _ := rdb.ZRem(ctx, reaperScheduleKey, m).Result(); removed == 0 {
						continue
					}

					token := parseReaperMember(m)
					if token == "" {
						continue
					}

					sess, err := Manager.GetSessionByToken(token)
					if err != nil {
						continue
					}

					// A session with recent activity gets rescheduled
					// instead of reaped.
					sess.mu.RLock()
					lastActivity := sess.LastActivity
					status := sess.Status
					sess.mu.RUnlock()

					idleFor := time.Since(lastActivity)
					maxIdle := time.Duration(cfg.SessionExpiryMinutes) * time.Minute
					if status == StatusInProgress && idleFor < maxIdle {
						next := lastActivity.Add(maxIdle)
						rdb.ZAdd(ctx, reaperScheduleKey, redis.Z{Score: float64(next.Unix()), Member: m})
						continue
					}

					log.Printf("[REAPER] Expiring session %s (idle %s)", sess.ID, idleFor.Round(time.Second))
					if err := Manager.EndSession(sess.ID, StatusExpired); err != nil {
						log.Printf("[REAPER] Failed to end session %s: %v", sess.ID, err)
						continue
					}

					payload := map[string]interface{}{
						"type":          "session_expired",
						"session_token": token,
						"session_id":    sess.ID,
						"message":       "Session expired due to inactivity.",
					}
					b, _ := json.Marshal(payload)
					if n, err := rdb.Publish(ctx, sessionEventsTopic, b).Result(); err != nil {
						log.Printf("[REAPER] publish expiry failed: session=%s err=%v", sess.ID, err)
					} else {
						log.Printf("[REAPER] published expiry: session=%s subscribers=%d", sess.ID, n)
					}
				}
			}
		}
	}()
}

// parseReaperMember expects member format s:<sessionToken>
func parseReaperMember(m string) string {
	parts := strings.Split(m, ":")
	if len(parts) == 2 && parts[0] == "s" {
		return parts[1]
	}
	return ""
}
