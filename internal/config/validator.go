package config

import (
	"fmt"
	"net/url"
	"strings"
)

// Validate rejects configurations the server cannot run with.
func Validate(cfg *Config) error {
	if cfg.Server.Port < 0 || cfg.Server.Port > 65535 {
		return fmt.Errorf("port %d out of range", cfg.Server.Port)
	}
	if cfg.Upstream.BaseURL != "" {
		u, err := url.Parse(cfg.Upstream.BaseURL)
		if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
			return fmt.Errorf("recharge_api_url %q is not a valid http(s) URL", cfg.Upstream.BaseURL)
		}
	}
	if cfg.Upstream.ProxyURL != "" {
		if _, err := url.Parse(cfg.Upstream.ProxyURL); err != nil {
			return fmt.Errorf("proxy_url %q is not a valid URL", cfg.Upstream.ProxyURL)
		}
	}
	if cfg.Upstream.RPS < 0 {
		return fmt.Errorf("upstream_rps must not be negative")
	}
	if cfg.RateLimit.Enabled && cfg.RateLimit.RPS <= 0 {
		return fmt.Errorf("rate_limit_rps must be positive when rate limiting is enabled")
	}
	if cfg.Credential.SessionMaxAge < 0 {
		return fmt.Errorf("session_max_age_minutes must not be negative")
	}
	if hash := cfg.Security.ManagementKeyHash; hash != "" && !strings.HasPrefix(hash, "$2") {
		return fmt.Errorf("management_key_hash is not a bcrypt hash")
	}
	return nil
}
