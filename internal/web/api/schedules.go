package api

import (
	"log"

	"airbridge/internal/models"
	"airbridge/internal/schedule"
	"airbridge/internal/web/middleware"

	"github.com/gin-gonic/gin"
)

func RegisterScheduleRoutes(r *gin.Engine, middleware *middleware.MiddlewareManager, manager *schedule.Manager) {
	schedules := r.Group("/schedules")
	schedules.Use(middleware.RequireAuth())
	{
		schedules.GET("", func(c *gin.Context) {
			c.JSON(200, manager.List())
		})

		schedules.POST("", func(c *gin.Context) {
			var in models.Schedule
			if err := c.ShouldBindJSON(&in); err != nil {
				c.JSON(400, gin.H{"error": "Invalid request"})
				return
			}
			saved := manager.Upsert(in)
			log.Printf("WEB: Created schedule %s", saved.ID)
			c.JSON(201, saved)
		})

		schedules.PUT("/:id", func(c *gin.Context) {
			var in models.Schedule
			if err := c.ShouldBindJSON(&in); err != nil {
				c.JSON(400, gin.H{"error": "Invalid request"})
				return
			}
			in.ID = c.Param("id")
			saved := manager.Upsert(in)
			log.Printf("WEB: Updated schedule %s", saved.ID)
			c.JSON(200, saved)
		})

		schedules.DELETE("/:id", func(c *gin.Context) {
			id := c.Param("id")
			if !manager.Delete(id) {
				c.JSON(404, gin.H{"error": "Schedule not found"})
				return
			}
			log.Printf("WEB: Deleted schedule %s", id)
			c.JSON(200, gin.H{"status": "Schedule deleted successfully"})
		})
	}
}
