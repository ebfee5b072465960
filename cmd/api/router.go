package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// RouteRegistrar mounts a feature's routes on the /api group.
type RouteRegistrar interface {
	RegisterRoutes(api *gin.RouterGroup)
}

func SetupRoutes(r *gin.Engine, registrars ...RouteRegistrar) {
	api := r.Group("/api")
	{
		api.GET("/health", func(c *gin.Context) {
			c.JSON(http.StatusOK, gin.H{"status": "ok"})
		})

		for _, registrar := range registrars {
			registrar.RegisterRoutes(api)
		}

		// Settings routes - runtime configuration
		settings := api.Group("/settings")
		{
			settings.GET("/ai", GetAISettings)
			settings.PUT("/ai", UpdateAISettings)
			settings.POST("/ai/test", TestAIConnection)
		}
	}
}
