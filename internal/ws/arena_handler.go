package ws

import (
	"encoding/json"
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/stellanjoh2/gridzone-sub000/internal/game"
)

// Arena-specific message data types
type PlayerInputData struct {
	Direction int `json:"direction"` // -1 left, 0 stop, +1 right
}

type TimeScaleData struct {
	Scale float64 `json:"scale"`
}

type WidthBonusData struct {
	Side string `json:"side"`
}

// GameHub is the single hub for all sessions.
var GameHub *Hub

func init() {
	GameHub = NewHub()
	go runGameHub(GameHub)
}

// HandleWebSocket handles WebSocket connections for arena sessions.
func HandleWebSocket(c *gin.Context) {
	sessionToken := c.Param("token")
	if sessionToken == "" {
		sessionToken = c.Query("token")
	}
	playerToken := c.Query("pt")

	if sessionToken == "" || playerToken == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "token and pt required"})
		return
	}

	sess, err := game.Manager.GetSessionByToken(sessionToken)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "session not found"})
		return
	}

	if sess.PlayerToken != playerToken {
		c.JSON(http.StatusForbidden, gin.H{"error": "invalid player token"})
		return
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Printf("[WS] Upgrade error: %v", err)
		return
	}

	client := &Client{
		conn:         conn,
		playerID:     sess.PlayerID,
		sessionID:    sess.ID,
		sessionToken: sessionToken,
		send:         make(chan []byte, 256),
	}

	GameHub.register <- client

	go client.writePump()
	go client.readPump()
}

// runGameHub runs the hub with arena session logic.
func runGameHub(h *Hub) {
	for {
		select {
		case client := <-h.register:
			h.mu.Lock()

			if oldClient, exists := h.clients[client.playerID]; exists {
				log.Printf("[WS] Player %s reconnecting - closing old connection", client.playerID)
				if err := oldClient.conn.WriteControl(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, "replaced by new connection"), time.Now().Add(5*time.Second)); err != nil {
					log.Printf("Error writing close control to old client %s: %v", oldClient.playerID, err)
				}
				oldClient.conn.Close()
				select {
				case <-oldClient.send:
				default:
					close(oldClient.send)
				}
				delete(h.clients, client.playerID)
				if room, exists := h.rooms[oldClient.sessionID]; exists {
					delete(room, client.playerID)
				}
			}

			h.clients[client.playerID] = client
			if _, exists := h.rooms[client.sessionID]; !exists {
				h.rooms[client.sessionID] = make(map[string]*Client)
			}
			h.rooms[client.sessionID][client.playerID] = client
			h.mu.Unlock()

			log.Printf("[WS] Player %s connected to session %s", client.playerID, client.sessionID)

			sess, err := game.Manager.GetSessionByToken(client.sessionToken)
			if err != nil {
				log.Printf("[WS] Session not found for token %s: %v", client.sessionToken, err)
				continue
			}

			sess.SetPlayerConnected(true)
			if err := sess.Begin(); err != nil {
				log.Printf("[WS] Begin failed for session %s: %v", sess.ID, err)
			}

			state := sess.Snapshot()
			state["type"] = "game_state"
			h.SendToPlayer(client.playerID, state)

			h.startTickLoop(sess)

		case client := <-h.unregister:
			h.mu.Lock()
			if cur, ok := h.clients[client.playerID]; ok && cur == client {
				delete(h.clients, client.playerID)
				roomEmpty := false
				if room, exists := h.rooms[client.sessionID]; exists {
					delete(room, client.playerID)
					if len(room) == 0 {
						delete(h.rooms, client.sessionID)
						roomEmpty = true
					}
				}

				log.Printf("[WS] Player %s disconnected from session %s", client.playerID, client.sessionID)

				if roomEmpty {
					if stop, exists := h.loops[client.sessionID]; exists {
						close(stop)
						delete(h.loops, client.sessionID)
					}
				}

				if sess, err := game.Manager.GetSessionByToken(client.sessionToken); err == nil {
					sess.SetPlayerConnected(false)
					sess.SaveToRedis()
				}

				select {
				case <-client.send:
				default:
					close(client.send)
				}
			}
			h.mu.Unlock()
		}
	}
}

// startTickLoop starts the fixed-rate simulation loop for a session. One
// loop runs per session regardless of reconnects. Caller must not hold
// the hub mutex.
func (h *Hub) startTickLoop(sess *game.Session) {
	h.mu.Lock()
	if _, running := h.loops[sess.ID]; running {
		h.mu.Unlock()
		return
	}
	stop := make(chan struct{})
	h.loops[sess.ID] = stop
	h.mu.Unlock()

	hz := 60
	if wsConfig != nil && wsConfig.TickRateHz > 0 {
		hz = wsConfig.TickRateHz
	}
	interval := time.Second / time.Duration(hz)
	dt := interval.Seconds()

	go func() {
		ticker := time.NewTicker(interval)
		saveTicker := time.NewTicker(5 * time.Second)
		defer func() {
			ticker.Stop()
			saveTicker.Stop()
		}()

		log.Printf("[WS] Tick loop started for session %s at %dHz", sess.ID, hz)
		for {
			select {
			case <-stop:
				log.Printf("[WS] Tick loop stopped for session %s", sess.ID)
				return
			case <-saveTicker.C:
				sess.SaveToRedis()
			case <-ticker.C:
				events := sess.Advance(dt)
				if len(events) > 0 {
					h.BroadcastToSession(sess.ID, map[string]interface{}{
						"type":   "game_events",
						"events": events,
					})
				}
				state := sess.Snapshot()
				state["type"] = "game_update"
				h.BroadcastToSession(sess.ID, state)
			}
		}
	}()
}

// readPump reads messages for arena sessions.
func (c *Client) readPump() {
	defer func() {
		GameHub.unregister <- c
		c.conn.Close()
	}()

	c.conn.SetReadLimit(65536)
	c.conn.SetReadDeadline(time.Now().Add(60 * time.Second))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(60 * time.Second))
		return nil
	})

	for {
		_, message, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.Printf("WebSocket error (unexpected) for player %s: %v", c.playerID, err)
			} else {
				log.Printf("WebSocket read error for player %s: %v", c.playerID, err)
			}
			break
		}

		var msg WSMessage
		if err := json.Unmarshal(message, &msg); err != nil {
			continue
		}

		c.handleMessage(msg)
	}
}

// handleMessage processes incoming arena messages.
func (c *Client) handleMessage(msg WSMessage) {
	sess, err := game.Manager.GetSessionByToken(c.sessionToken)
	if err != nil {
		c.sendError("Session not found")
		return
	}

	switch msg.Type {
	case "input":
		var data PlayerInputData
		if err := json.Unmarshal(msg.Data, &data); err != nil {
			c.sendError("Invalid input data")
			return
		}
		sess.ApplyInput(data.Direction)

	case "pause":
		sess.SetPaused(true)

	case "resume":
		sess.SetPaused(false)

	case "set_time_scale":
		var data TimeScaleData
		if err := json.Unmarshal(msg.Data, &data); err != nil {
			c.sendError("Invalid time scale data")
			return
		}
		sess.SetTimeScale(data.Scale)

	case "activate_width_bonus":
		var data WidthBonusData
		if err := json.Unmarshal(msg.Data, &data); err != nil {
			c.sendError("Invalid width bonus data")
			return
		}
		sess.ActivateWidthBonus(game.Side(data.Side))

	case "reset":
		if err := sess.ResetGame(); err != nil {
			c.sendError(err.Error())
			return
		}
		GameHub.BroadcastToSession(c.sessionID, map[string]interface{}{
			"type":    "game_reset",
			"message": "Game reset",
		})

	case "get_state":
		state := sess.Snapshot()
		state["type"] = "game_state"
		d, _ := json.Marshal(state)
		c.send <- d

	case "concede":
		if err := game.Manager.EndSession(c.sessionID, game.StatusCompleted); err != nil {
			c.sendError(err.Error())
			return
		}
		GameHub.BroadcastToSession(c.sessionID, map[string]interface{}{
			"type":    "session_over",
			"message": "Session ended",
		})

	default:
		c.sendError("Unknown message type")
	}
}
