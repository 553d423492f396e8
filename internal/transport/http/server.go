package http

import (
	stdhttp "net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/parlorchat/parlor-server/internal/auth"
	"github.com/parlorchat/parlor-server/internal/config"
	"github.com/parlorchat/parlor-server/internal/core"
	"github.com/parlorchat/parlor-server/internal/store"
)

// NewServer builds the HTTP server: REST API, health check, and the
// websocket endpoint.
func NewServer(hub *core.Hub, authService *auth.Service, st store.Store, cfg *config.Config, logger *zerolog.Logger) *stdhttp.Server {
	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery(), LoggerMiddleware(logger))

	router.GET("/health", func(c *gin.Context) {
		c.String(stdhttp.StatusOK, "ok")
	})
	router.GET("/ws", gin.WrapH(NewWSHandler(hub, cfg, logger)))

	api := router.Group("/api")
	apiHandlers := NewAPIHandlers(authService, logger)
	api.POST("/login", apiHandlers.Login)

	roomHandlers := NewRoomHandlers(st, cfg, logger)
	authorized := api.Group("", AuthMiddleware(authService, logger))
	authorized.GET("/rooms", roomHandlers.ListRooms)
	authorized.POST("/rooms", roomHandlers.CreateRoom)
	authorized.GET("/rooms/:name/history", roomHandlers.RoomHistory)

	return &stdhttp.Server{
		Addr:              cfg.Addr,
		Handler:           router,
		ReadHeaderTimeout: cfg.ReadHeaderTimeout,
	}
}
