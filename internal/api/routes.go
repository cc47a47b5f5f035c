package api

import (
	"github.com/gin-gonic/gin"
	"github.com/jmoiron/sqlx"
	"github.com/redis/go-redis/v9"
	"github.com/stellanjoh2/gridzone-sub000/internal/api/handlers"
	"github.com/stellanjoh2/gridzone-sub000/internal/config"
)

// SetupRoutes configures all API routes
func SetupRoutes(router *gin.Engine, db *sqlx.DB, rdb *redis.Client, cfg *config.Config) {
	// No-cache headers in development
	if cfg.Environment != "production" {
		router.Use(func(c *gin.Context) {
			c.Header("Cache-Control", "no-store, no-cache, must-revalidate, max-age=0")
			c.Header("Pragma", "no-cache")
			c.Header("Expires", "0")
			c.Next()
		})
	}

	// API v1 group
	v1 := router.Group("/api/v1")
	{
		v1.GET("/health", handlers.HealthCheck)

		// Session endpoints
		session := v1.Group("/session")
		{
			session.POST("", handlers.CreateSession(db, rdb, cfg))
			session.GET("/:token", handlers.GetSessionState(db, rdb, cfg))
			session.GET("/:token/ws", handlers.HandleSessionWebSocket(db, rdb, cfg))
		}

		// Player endpoints
		player := v1.Group("/player")
		{
			player.GET(":handle/stats", handlers.GetPlayerStats(db))
		}

		v1.GET("/leaderboard", handlers.GetLeaderboard(db))

		// Admin endpoints
		adminGroup := v1.Group("/admin")
		{
			adminGroup.POST("/login", handlers.AdminLogin(db, cfg))

			protected := adminGroup.Group("")
			protected.Use(handlers.RequireAdmin(cfg))
			{
				protected.GET("/stats", handlers.AdminStats(db))
				protected.GET("/sessions", handlers.AdminRecentSessions(db))
			}
		}
	}
}
