package handlers

import (
	"database/sql"
	"log"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/jmoiron/sqlx"
	"github.com/stellanjoh2/gridzone-sub000/internal/models"
)

// GetPlayerStats returns a player's lifetime stats by handle
func GetPlayerStats(db *sqlx.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		handle := c.Param("handle")
		if handle == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "handle required"})
			return
		}

		var player models.Player
		err := db.Get(&player, `SELECT id, handle, created_at, total_sessions, total_goals, best_score, last_seen_at FROM players WHERE handle=$1`, handle)
		if err == sql.ErrNoRows {
			c.JSON(http.StatusNotFound, gin.H{"error": "player not found"})
			return
		}
		if err != nil {
			log.Printf("[API] Failed to fetch player %s: %v", handle, err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
			return
		}

		c.JSON(http.StatusOK, player)
	}
}

// GetLeaderboard returns the top players ranked by best score
func GetLeaderboard(db *sqlx.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		limit := 10
		if v := c.Query("limit"); v != "" {
			if n, err := strconv.Atoi(v); err == nil && n > 0 && n <= 100 {
				limit = n
			}
		}

		var entries []models.LeaderboardEntry
		err := db.Select(&entries, `SELECT handle, best_score, total_goals, total_sessions
			FROM players
			WHERE total_sessions > 0
			ORDER BY best_score DESC, total_goals DESC
			LIMIT $1`, limit)
		if err != nil {
			log.Printf("[API] Failed to fetch leaderboard: %v", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
			return
		}

		c.JSON(http.StatusOK, gin.H{"leaderboard": entries})
	}
}
