package handlers

import (
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v4"
	"github.com/jmoiron/sqlx"
	"github.com/redis/go-redis/v9"
	"github.com/stellanjoh2/gridzone-sub000/internal/config"
	"github.com/stellanjoh2/gridzone-sub000/internal/game"
)

// CreateSession creates a new arena session for a player handle
func CreateSession(db *sqlx.DB, rdb *redis.Client, cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req struct {
			Handle string `json:"handle"`
		}
		if err := c.BindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "handle required"})
			return
		}

		handle := strings.TrimSpace(req.Handle)
		if handle == "" || len(handle) > 32 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "handle must be 1-32 characters"})
			return
		}

		if cfg.MaxSessions > 0 && game.Manager.ActiveSessionCount() >= cfg.MaxSessions {
			c.JSON(http.StatusServiceUnavailable, gin.H{"error": "server at capacity"})
			return
		}

		sess, err := game.Manager.CreateSession(handle)
		if err != nil {
			log.Printf("[API] Failed to create session: %v", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to create session"})
			return
		}

		// Issue a JWT carrying the player identity for non-ws endpoints
		exp := time.Now().Add(24 * time.Hour)
		claims := jwt.MapClaims{
			"player_id":     sess.DBPlayerID,
			"handle":        handle,
			"session_token": sess.Token,
			"exp":           exp.Unix(),
		}
		token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
		signed, err := token.SignedString([]byte(cfg.JWTSecret))
		if err != nil {
			log.Printf("[API] Failed to sign token: %v", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
			return
		}

		link := cfg.FrontendURL + "/z/" + sess.Token + "?pt=" + sess.PlayerToken

		c.JSON(http.StatusCreated, gin.H{
			"session_id":    sess.ID,
			"session_token": sess.Token,
			"player_token":  sess.PlayerToken,
			"jwt":           signed,
			"link":          link,
			"expires_at":    sess.ExpiresAt,
		})
	}
}

// GetSessionState returns the renderable snapshot for a session
func GetSessionState(db *sqlx.DB, rdb *redis.Client, cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := c.Param("token")
		if token == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "token required"})
			return
		}

		sess, err := game.Manager.GetSessionByToken(token)
		if err != nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "session not found"})
			return
		}

		c.JSON(http.StatusOK, sess.Snapshot())
	}
}
