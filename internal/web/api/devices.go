package api

import (
	"encoding/json"

	"airbridge/internal/statecache"
	"airbridge/internal/web/middleware"

	"github.com/gin-gonic/gin"
)

func RegisterDeviceRoutes(r *gin.Engine, middleware *middleware.MiddlewareManager, cache *statecache.Cache) {
	devices := r.Group("/devices")
	devices.Use(middleware.RequireAuth())
	{
		devices.GET("/:id/state", func(c *gin.Context) {
			raw, err := cache.GetState(c.Request.Context(), c.Param("id"))
			if err != nil {
				c.JSON(404, gin.H{"error": "No state for device"})
				return
			}
			c.JSON(200, gin.H{"id": c.Param("id"), "state": json.RawMessage(raw)})
		})
	}
}
