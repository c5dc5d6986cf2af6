package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/sentrymeet/sentrymeet/pkg/config"
)

// Router holds all handlers
type Router struct {
	cfg           *config.Config
	callHandler   *Call
	socketHandler *Socket
}

// NewRouter creates a new router with all handlers
func NewRouter(cfg *config.Config, callHandler *Call, socketHandler *Socket) *Router {
	return &Router{
		cfg:           cfg,
		callHandler:   callHandler,
		socketHandler: socketHandler,
	}
}

// Setup configures all application routes
func (rt *Router) Setup(e *echo.Echo) {
	// Health check endpoint
	e.GET("/health", rt.healthCheck)

	// Persistent transcription channel
	e.GET("/ws", rt.socketHandler.Serve)

	// API v1 group
	v1 := e.Group("/v1")
	rt.setupCallRoutes(v1)
}

// setupCallRoutes configures call history routes
func (rt *Router) setupCallRoutes(g *echo.Group) {
	callGroup := g.Group("/calls")

	callGroup.GET("/:id", rt.callHandler.Get)
	callGroup.GET("/:id/transcripts", rt.callHandler.Transcripts)
	callGroup.GET("/:id/alerts", rt.callHandler.Alerts)
	callGroup.POST("/:id/summarize", rt.callHandler.Summarize)
	callGroup.DELETE("/:id", rt.callHandler.Delete)
}

// healthCheck returns health status
func (rt *Router) healthCheck(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]interface{}{
		"status":      "ok",
		"environment": rt.cfg.Server.Environment,
	})
}
