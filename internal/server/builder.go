// Package server assembles the Gin engine: public MCP surface plus the
// local-only management API.
package server

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"recharge-mcp-go/internal/config"
	"recharge-mcp-go/internal/events"
	mgmt "recharge-mcp-go/internal/handlers/management"
	mcph "recharge-mcp-go/internal/handlers/mcp"
	mw "recharge-mcp-go/internal/middleware"
	"recharge-mcp-go/internal/runtime"
	"recharge-mcp-go/internal/tools"
	"recharge-mcp-go/internal/upstream"
	"recharge-mcp-go/internal/usage"
)

// Dependencies carries the runtime services the HTTP layer is built on.
type Dependencies struct {
	ConfigManager *config.Manager
	Broker        *upstream.Broker
	Registry      *tools.Registry
	Usage         *usage.Tracker
	Hub           *events.Hub
	Tasks         *runtime.TaskManager
}

// BuildEngine constructs the HTTP engine serving /mcp, health, metrics
// and the management API.
func BuildEngine(cfg *config.Config, deps Dependencies) *gin.Engine {
	if !cfg.Server.Debug {
		gin.SetMode(gin.ReleaseMode)
	}

	engine := gin.New()
	applyStandardEngineSettings(engine, cfg)

	engine.GET("/healthz", func(c *gin.Context) { c.String(http.StatusOK, "ok") })
	engine.GET("/metrics", mw.MetricsHandler)

	mcpHandler := mcph.NewHandler(deps.Registry)
	mcpGroup := engine.Group("/mcp")
	mcpGroup.Use(mw.BearerAuth(func() string {
		return deps.ConfigManager.Current().Security.MCPAuthToken
	}))
	mcpGroup.POST("", mcpHandler.Handle)

	registerManagementRoutes(engine, deps)
	return engine
}

func applyStandardEngineSettings(engine *gin.Engine, cfg *config.Config) {
	_ = engine.SetTrustedProxies([]string{})

	engine.Use(mw.Recovery(), mw.RequestID(), mw.Metrics())
	engine.Use(mw.CORS())
	engine.Use(mw.RequestLogger())
	if cfg.RateLimit.Enabled {
		engine.Use(mw.RateLimiter(cfg.RateLimit.RPS, cfg.RateLimit.Burst))
	}
}

func registerManagementRoutes(engine *gin.Engine, deps Dependencies) {
	handler := mgmt.NewHandler(mgmt.Options{
		ConfigManager: deps.ConfigManager,
		Broker:        deps.Broker,
		Usage:         deps.Usage,
		Hub:           deps.Hub,
		Tasks:         deps.Tasks,
	})

	mg := engine.Group("/api/management")
	mg.Use(managementRemoteGuard("/api/management", deps.ConfigManager))
	mg.Use(managementAuth(deps.ConfigManager))
	handler.RegisterRoutes(mg)
}
