package api

import (
	"airbridge/auth"

	"github.com/gin-gonic/gin"
)

func RegisterAuthRoutes(r *gin.Engine, authModule *auth.AuthModule) {
	r.POST("/auth/login", func(c *gin.Context) {
		var req struct {
			Username string `json:"username"`
			Password string `json:"password"`
		}
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(400, gin.H{"error": "Invalid request"})
			return
		}

		token, err := authModule.LoginWithJWT(req.Username, req.Password)
		if err != nil {
			c.JSON(401, gin.H{"error": "Invalid credentials"})
			return
		}
		c.JSON(200, gin.H{"token": token})
	})
}
