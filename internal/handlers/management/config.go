package management

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"recharge-mcp-go/internal/config"
)

// GetConfig returns the active configuration with secrets redacted.
func (h *Handler) GetConfig(c *gin.Context) {
	cfg := h.cfg.Current()
	c.JSON(http.StatusOK, gin.H{
		"server": gin.H{
			"host":     cfg.Server.Host,
			"port":     cfg.Server.Port,
			"debug":    cfg.Server.Debug,
			"log_file": cfg.Server.LogFile,
		},
		"upstream": gin.H{
			"base_url":          cfg.Upstream.BaseURL,
			"api_version":       cfg.Upstream.APIVersion,
			"storefront_domain": cfg.Upstream.StorefrontDomain,
			"api_key_set":       strings.TrimSpace(cfg.Upstream.APIKey) != "",
			"proxy_url":         cfg.Upstream.ProxyURL,
			"rps":               cfg.Upstream.RPS,
			"burst":             cfg.Upstream.Burst,
		},
		"security": gin.H{
			"mcp_auth_enabled":        strings.TrimSpace(cfg.Security.MCPAuthToken) != "",
			"management_allow_remote": cfg.Security.ManagementAllowRemote,
			"remote_allow_ips":        cfg.Security.ManagementRemoteAllowIPs,
		},
		"rate_limit": gin.H{
			"enabled": cfg.RateLimit.Enabled,
			"rps":     cfg.RateLimit.RPS,
			"burst":   cfg.RateLimit.Burst,
		},
		"credential": gin.H{
			"session_max_age_minutes": int(cfg.Credential.SessionMaxAge.Minutes()),
		},
	})
}

type configUpdate struct {
	Debug                *bool `json:"debug"`
	RateLimitEnabled     *bool `json:"rate_limit_enabled"`
	RateLimitRPS         *int  `json:"rate_limit_rps"`
	RateLimitBurst       *int  `json:"rate_limit_burst"`
	SessionMaxAgeMinutes *int  `json:"session_max_age_minutes"`
	UsageSummaryMinutes  *int  `json:"usage_summary_minutes"`
}

// UpdateConfig applies a partial configuration update. Only operational
// knobs are exposed here; credentials and listener settings change via
// the config file.
func (h *Handler) UpdateConfig(c *gin.Context) {
	var req configUpdate
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}

	err := h.cfg.Update(func(fc *config.FileConfig) error {
		if req.Debug != nil {
			fc.Debug = *req.Debug
		}
		if req.RateLimitEnabled != nil {
			fc.RateLimitEnabled = *req.RateLimitEnabled
		}
		if req.RateLimitRPS != nil {
			fc.RateLimitRPS = *req.RateLimitRPS
		}
		if req.RateLimitBurst != nil {
			fc.RateLimitBurst = *req.RateLimitBurst
		}
		if req.SessionMaxAgeMinutes != nil {
			fc.SessionMaxAgeMinutes = *req.SessionMaxAgeMinutes
		}
		if req.UsageSummaryMinutes != nil {
			fc.UsageSummaryMinutes = *req.UsageSummaryMinutes
		}
		return nil
	})
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "configuration updated"})
}
