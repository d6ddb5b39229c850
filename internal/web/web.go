package web

import (
	"airbridge/auth"
	"airbridge/internal/schedule"
	"airbridge/internal/statecache"
	"airbridge/internal/web/api"
	"airbridge/internal/web/middleware"

	"github.com/gin-gonic/gin"
)

type WebServer struct {
	router *gin.Engine
}

func NewWebServer(manager *schedule.Manager, cache *statecache.Cache, authModule *auth.AuthModule) *WebServer {
	router := gin.Default()

	middlewareManager := middleware.NewMiddlewareManager(authModule)

	api.RegisterAuthRoutes(router, authModule)
	api.RegisterScheduleRoutes(router, middlewareManager, manager)
	if cache != nil {
		api.RegisterDeviceRoutes(router, middlewareManager, cache)
	}

	return &WebServer{router: router}
}

func (ws *WebServer) Start(addr string) {
	ws.router.Run(addr)
}
