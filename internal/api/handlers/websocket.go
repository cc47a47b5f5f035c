package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/jmoiron/sqlx"
	"github.com/redis/go-redis/v9"
	"github.com/stellanjoh2/gridzone-sub000/internal/config"
	"github.com/stellanjoh2/gridzone-sub000/internal/ws"
)

// HandleSessionWebSocket upgrades the connection and hands it to the ws hub
func HandleSessionWebSocket(db *sqlx.DB, rdb *redis.Client, cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		ws.HandleWebSocket(c)
	}
}
