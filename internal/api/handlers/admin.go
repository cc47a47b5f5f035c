package handlers

import (
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v4"
	"github.com/jmoiron/sqlx"
	"github.com/stellanjoh2/gridzone-sub000/internal/admin"
	"github.com/stellanjoh2/gridzone-sub000/internal/config"
	"github.com/stellanjoh2/gridzone-sub000/internal/game"
	"github.com/stellanjoh2/gridzone-sub000/internal/models"
)

// AdminLogin validates operator credentials and issues an admin JWT
func AdminLogin(db *sqlx.DB, cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req struct {
			Username string `json:"username"`
			Token    string `json:"token"`
		}
		if err := c.BindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "username and token required"})
			return
		}

		acct, err := admin.ValidateAdminCredentials(db, req.Username, req.Token)
		if err != nil {
			log.Printf("[ADMIN] Login failed for %s: %v", req.Username, err)
			c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid credentials"})
			return
		}

		exp := time.Now().Add(8 * time.Hour)
		claims := jwt.MapClaims{
			"admin":    true,
			"username": acct.Username,
			"exp":      exp.Unix(),
		}
		token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
		signed, err := token.SignedString([]byte(cfg.JWTSecret))
		if err != nil {
			log.Printf("[ADMIN] Failed to sign token: %v", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
			return
		}

		c.JSON(http.StatusOK, gin.H{"token": signed, "expires_at": exp})
	}
}

// RequireAdmin verifies the Bearer admin JWT on protected routes
func RequireAdmin(cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if !strings.HasPrefix(header, "Bearer ") {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "authorization required"})
			return
		}

		tokenStr := strings.TrimPrefix(header, "Bearer ")
		token, err := jwt.Parse(tokenStr, func(t *jwt.Token) (interface{}, error) {
			if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, jwt.ErrSignatureInvalid
			}
			return []byte(cfg.JWTSecret), nil
		})
		if err != nil || !token.Valid {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
			return
		}

		claims, ok := token.Claims.(jwt.MapClaims)
		if !ok || claims["admin"] != true {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "admin access required"})
			return
		}

		c.Set("admin_username", claims["username"])
		c.Next()
	}
}

// AdminStats returns live server counters and recent session totals
func AdminStats(db *sqlx.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		stats := gin.H{
			"active_sessions": game.Manager.ActiveSessionCount(),
		}

		var totals struct {
			TotalPlayers  int `db:"total_players"`
			TotalSessions int `db:"total_sessions"`
			TotalRounds   int `db:"total_rounds"`
		}
		err := db.Get(&totals, `SELECT
			(SELECT COUNT(*) FROM players) AS total_players,
			(SELECT COUNT(*) FROM game_sessions) AS total_sessions,
			(SELECT COUNT(*) FROM session_rounds) AS total_rounds`)
		if err != nil {
			log.Printf("[ADMIN] Failed to fetch totals: %v", err)
		} else {
			stats["total_players"] = totals.TotalPlayers
			stats["total_sessions"] = totals.TotalSessions
			stats["total_rounds"] = totals.TotalRounds
		}

		c.JSON(http.StatusOK, stats)
	}
}

// AdminRecentSessions lists the most recent sessions
func AdminRecentSessions(db *sqlx.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		var sessions []models.GameSession
		err := db.Select(&sessions, `SELECT id, session_token, player_id, status, anti_stuck_profile,
			player_score, ai_score, created_at, started_at, completed_at, expiry_time
			FROM game_sessions ORDER BY created_at DESC LIMIT 50`)
		if err != nil {
			log.Printf("[ADMIN] Failed to fetch sessions: %v", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
			return
		}

		c.JSON(http.StatusOK, gin.H{"sessions": sessions})
	}
}
