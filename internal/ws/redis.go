package ws

import (
	"context"
	"encoding/json"
	"log"

	"github.com/redis/go-redis/v9"
	"github.com/stellanjoh2/gridzone-sub000/internal/config"
)

var rdbClient *redis.Client
var wsConfig *config.Config

func SetRedisClient(r *redis.Client, cfg *config.Config) {
	rdbClient = r
	wsConfig = cfg
}

// StartSessionEventSubscriber subscribes to the session_events channel and
// relays cross-instance events (reaper expiries) to connected clients.
func StartSessionEventSubscriber(ctx context.Context) {
	if rdbClient == nil {
		log.Println("[WS] Redis client not set; session event subscriber not started")
		return
	}

	pubsub := rdbClient.Subscribe(ctx, "session_events")
	ch := pubsub.Channel()
	go func() {
		log.Println("[WS] session_events subscriber started")
		for msg := range ch {
			var payload map[string]interface{}
			if err := json.Unmarshal([]byte(msg.Payload), &payload); err != nil {
				log.Printf("[WS] invalid event payload: %v", err)
				continue
			}

			typeStr, _ := payload["type"].(string)
			sessionID, _ := payload["session_id"].(string)
			if sessionID == "" {
				continue
			}

			log.Printf("[WS] event received: type=%s session=%s", typeStr, sessionID)

			switch typeStr {
			case "session_expired":
				GameHub.mu.RLock()
				if room, exists := GameHub.rooms[sessionID]; !exists {
					log.Printf("[WS] no room for session %s; expiry will not be broadcast", sessionID)
				} else {
					log.Printf("[WS] broadcasting session_expired to session %s (room_size=%d)", sessionID, len(room))
				}
				GameHub.mu.RUnlock()
				GameHub.BroadcastToSession(sessionID, map[string]interface{}{
					"type":    "session_expired",
					"message": payload["message"],
				})

			default:
				log.Printf("[WS] unknown event type: %s", typeStr)
			}
		}
	}()
}
