package handler

import (
	"net/http"

	"forum-bans/internal/config"

	"github.com/gin-gonic/gin"
)

// SetupRouter builds the gin engine with both API versions mounted.
// The v1 and v2 surfaces are identical.
func SetupRouter(cfg *config.Config, banHandler *BanHandler) *gin.Engine {
	gin.SetMode(cfg.Server.Mode)

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(CORSMiddleware(cfg))
	router.Use(RequestIDMiddleware())
	router.Use(LoggerMiddleware())

	for _, api := range []*gin.RouterGroup{router.Group("/api/v1"), router.Group("/api/v2")} {
		api.GET("/health", func(c *gin.Context) {
			c.JSON(http.StatusOK, gin.H{"status": "ok"})
		})

		users := api.Group("/users")
		{
			users.POST("/bans", banHandler.BanUser)
			users.GET("/bans/:ban_id", banHandler.GetBan)
			users.POST("/bans/:ban_id/unban", banHandler.UnbanUser)
			users.GET("/banned", banHandler.ListBannedUsers)
			users.GET("/ban_status", banHandler.BanStatus)
		}
	}

	return router
}
