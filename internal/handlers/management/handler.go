// Package management serves the operator API: credential store
// inspection and purging, usage statistics, configuration updates and
// a live event stream. It is loopback-only unless explicitly opened.
package management

import (
	"time"

	"github.com/gin-gonic/gin"

	"recharge-mcp-go/internal/config"
	"recharge-mcp-go/internal/events"
	"recharge-mcp-go/internal/runtime"
	"recharge-mcp-go/internal/upstream"
	"recharge-mcp-go/internal/usage"
)

// Options wires the handler to its runtime services.
type Options struct {
	ConfigManager *config.Manager
	Broker        *upstream.Broker
	Usage         *usage.Tracker
	Hub           *events.Hub
	Tasks         *runtime.TaskManager
}

// Handler implements the management API endpoints.
type Handler struct {
	cfg       *config.Manager
	broker    *upstream.Broker
	usage     *usage.Tracker
	hub       *events.Hub
	tasks     *runtime.TaskManager
	startTime time.Time
}

// NewHandler builds a management Handler.
func NewHandler(opts Options) *Handler {
	return &Handler{
		cfg:       opts.ConfigManager,
		broker:    opts.Broker,
		usage:     opts.Usage,
		hub:       opts.Hub,
		tasks:     opts.Tasks,
		startTime: time.Now(),
	}
}

// RegisterRoutes mounts all management endpoints on the given group.
// Authentication and remote guards are applied by the caller.
func (h *Handler) RegisterRoutes(g *gin.RouterGroup) {
	g.GET("/system", h.GetSystem)
	g.GET("/credentials/stats", h.GetCredentialStats)
	g.POST("/credentials/purge", h.PurgeCredentials)
	g.GET("/usage", h.GetUsage)
	g.GET("/config", h.GetConfig)
	g.PUT("/config", h.UpdateConfig)
	g.GET("/events/ws", h.StreamEvents)
}
