// Package config loads and watches the server configuration: a flat
// YAML/JSON file merged with environment variables, hot reloaded while
// the process runs.
package config

import "time"

// FileConfig is the flat on-disk configuration shape. Field names match
// the YAML keys one to one; the runtime Config below groups them by
// concern.
type FileConfig struct {
	// Server settings
	Host    string `yaml:"host" json:"host"`
	Port    int    `yaml:"port" json:"port"`
	Debug   bool   `yaml:"debug" json:"debug"`
	LogFile string `yaml:"log_file" json:"log_file"`

	// Recharge API settings
	RechargeAPIKey     string  `yaml:"recharge_api_key" json:"recharge_api_key"`
	RechargeAPIURL     string  `yaml:"recharge_api_url" json:"recharge_api_url"`
	RechargeAPIVersion string  `yaml:"recharge_api_version" json:"recharge_api_version"`
	StorefrontDomain   string  `yaml:"storefront_domain" json:"storefront_domain"`
	ProxyURL           string  `yaml:"proxy_url" json:"proxy_url"`
	UpstreamRPS        float64 `yaml:"upstream_rps" json:"upstream_rps"`
	UpstreamBurst      int     `yaml:"upstream_burst" json:"upstream_burst"`
	RequestTimeoutSec  int     `yaml:"request_timeout_sec" json:"request_timeout_sec"`

	// Auth settings
	MCPAuthToken             string   `yaml:"mcp_auth_token" json:"mcp_auth_token"`
	ManagementKey            string   `yaml:"management_key" json:"management_key"`
	ManagementKeyHash        string   `yaml:"management_key_hash" json:"management_key_hash"`
	ManagementAllowRemote    bool     `yaml:"management_allow_remote" json:"management_allow_remote"`
	ManagementRemoteAllowIPs []string `yaml:"management_remote_allow_ips" json:"management_remote_allow_ips"`

	// Behavior settings
	RateLimitEnabled     bool `yaml:"rate_limit_enabled" json:"rate_limit_enabled"`
	RateLimitRPS         int  `yaml:"rate_limit_rps" json:"rate_limit_rps"`
	RateLimitBurst       int  `yaml:"rate_limit_burst" json:"rate_limit_burst"`
	SessionMaxAgeMinutes int  `yaml:"session_max_age_minutes" json:"session_max_age_minutes"`
	UsageSummaryMinutes  int  `yaml:"usage_summary_minutes" json:"usage_summary_minutes"`
}

// Config is the runtime view handed to the rest of the program, grouped
// by concern. It is immutable once built; reloads produce a new value.
type Config struct {
	Server     ServerConfig
	Upstream   UpstreamConfig
	Security   SecurityConfig
	RateLimit  RateLimitConfig
	Credential CredentialConfig
}

// ServerConfig holds HTTP listener and logging settings.
type ServerConfig struct {
	Host    string
	Port    int
	Debug   bool
	LogFile string
}

// UpstreamConfig holds everything needed to talk to the Recharge API.
type UpstreamConfig struct {
	APIKey           string
	BaseURL          string
	APIVersion       string
	StorefrontDomain string
	ProxyURL         string
	RPS              float64
	Burst            int
	RequestTimeout   time.Duration
}

// SecurityConfig holds endpoint and management authentication settings.
type SecurityConfig struct {
	MCPAuthToken             string
	ManagementKey            string
	ManagementKeyHash        string
	ManagementAllowRemote    bool
	ManagementRemoteAllowIPs []string
}

// RateLimitConfig controls the inbound per-client limiter.
type RateLimitConfig struct {
	Enabled bool
	RPS     int
	Burst   int
}

// CredentialConfig controls cached session credential hygiene.
type CredentialConfig struct {
	SessionMaxAge time.Duration
	UsageSummary  time.Duration
}

// FromFile converts a FileConfig into the grouped runtime Config.
func FromFile(fc *FileConfig) *Config {
	if fc == nil {
		d := defaultFileConfig()
		fc = &d
	}
	return &Config{
		Server: ServerConfig{
			Host:    fc.Host,
			Port:    fc.Port,
			Debug:   fc.Debug,
			LogFile: fc.LogFile,
		},
		Upstream: UpstreamConfig{
			APIKey:           fc.RechargeAPIKey,
			BaseURL:          fc.RechargeAPIURL,
			APIVersion:       fc.RechargeAPIVersion,
			StorefrontDomain: fc.StorefrontDomain,
			ProxyURL:         fc.ProxyURL,
			RPS:              fc.UpstreamRPS,
			Burst:            fc.UpstreamBurst,
			RequestTimeout:   time.Duration(fc.RequestTimeoutSec) * time.Second,
		},
		Security: SecurityConfig{
			MCPAuthToken:             fc.MCPAuthToken,
			ManagementKey:            fc.ManagementKey,
			ManagementKeyHash:        fc.ManagementKeyHash,
			ManagementAllowRemote:    fc.ManagementAllowRemote,
			ManagementRemoteAllowIPs: append([]string(nil), fc.ManagementRemoteAllowIPs...),
		},
		RateLimit: RateLimitConfig{
			Enabled: fc.RateLimitEnabled,
			RPS:     fc.RateLimitRPS,
			Burst:   fc.RateLimitBurst,
		},
		Credential: CredentialConfig{
			SessionMaxAge: time.Duration(fc.SessionMaxAgeMinutes) * time.Minute,
			UsageSummary:  time.Duration(fc.UsageSummaryMinutes) * time.Minute,
		},
	}
}
