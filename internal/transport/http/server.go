package http

import (
	stdhttp "net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/vovakirdan/translachat-server/internal/auth"
	"github.com/vovakirdan/translachat-server/internal/config"
	"github.com/vovakirdan/translachat-server/internal/core"
	"github.com/vovakirdan/translachat-server/internal/store"
)

func init() {
	gin.SetMode(gin.ReleaseMode)
}

// NewServer builds the HTTP server. The chat socket is mounted on the mux next to gin so the
// upgrade can hijack the raw connection; everything else goes through the gin router.
func NewServer(hub *core.Hub, authService *auth.Service, st store.Store, cfg *config.Config, logger *zerolog.Logger) *stdhttp.Server {
	router := gin.New()
	router.Use(gin.Recovery(), LoggerMiddleware(logger), CORSMiddleware(cfg.AllowedOrigins))

	router.GET("/health", func(c *gin.Context) {
		c.String(stdhttp.StatusOK, "ok")
	})

	apiHandlers := NewAPIHandlers(authService, logger)
	userHandlers := NewUserHandlers(authService, logger)
	roomHandlers := NewRoomHandlers(st, hub.Registry(), logger)

	api := router.Group("/api")
	api.POST("/register", apiHandlers.Register)
	api.POST("/login", apiHandlers.Login)

	protected := api.Group("", AuthMiddleware(authService, logger))
	protected.POST("/logout", apiHandlers.Logout)
	protected.GET("/me", userHandlers.Me)
	protected.PATCH("/me", userHandlers.UpdateMe)

	rooms := protected.Group("/rooms")
	rooms.GET("", roomHandlers.ListRooms)
	rooms.POST("/create", roomHandlers.CreateRoom)
	rooms.GET("/:id", roomHandlers.GetRoom)
	rooms.GET("/:id/online", roomHandlers.Online)
	rooms.POST("/:id/join", roomHandlers.JoinRoom)
	rooms.POST("/:id/leave", roomHandlers.LeaveRoom)

	mux := stdhttp.NewServeMux()
	mux.Handle("/ws", NewWSHandler(hub, authService, WSOptions{
		AuthRequired:       cfg.WSAuthRequired,
		OriginPatterns:     cfg.AllowedOrigins,
		ReadLimit:          cfg.MaxMessageBytes,
		ClientBuffer:       cfg.ClientBuffer,
		RateLimitPerMinute: cfg.RateLimitPerMinute,
	}, logger))
	mux.Handle("/", router)

	return &stdhttp.Server{
		Addr:              cfg.Addr,
		Handler:           mux,
		ReadHeaderTimeout: cfg.ReadHeaderTimeout,
	}
}
