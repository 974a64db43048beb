package config

import (
	"os"
	"strconv"
	"strings"
)

// applyEnv overlays environment variables on top of fc. Environment
// always wins over the file so container deployments can override a
// baked-in config.
func applyEnv(fc *FileConfig) {
	setString(&fc.Host, "HOST")
	setInt(&fc.Port, "PORT")
	setBool(&fc.Debug, "DEBUG")
	setString(&fc.LogFile, "LOG_FILE")

	setString(&fc.RechargeAPIKey, "RECHARGE_API_KEY")
	setString(&fc.RechargeAPIURL, "RECHARGE_API_URL")
	setString(&fc.RechargeAPIVersion, "RECHARGE_API_VERSION")
	setString(&fc.StorefrontDomain, "RECHARGE_STOREFRONT_DOMAIN")
	setString(&fc.ProxyURL, "PROXY_URL")

	setString(&fc.MCPAuthToken, "MCP_AUTH_TOKEN")
	setString(&fc.ManagementKey, "MANAGEMENT_KEY")
	setString(&fc.ManagementKeyHash, "MANAGEMENT_KEY_HASH")
	setBool(&fc.ManagementAllowRemote, "MANAGEMENT_ALLOW_REMOTE")
	if v, ok := os.LookupEnv("MANAGEMENT_REMOTE_ALLOW_IPS"); ok {
		fc.ManagementRemoteAllowIPs = splitCSV(v)
	}

	setInt(&fc.SessionMaxAgeMinutes, "SESSION_MAX_AGE_MINUTES")
}

func setString(dst *string, key string) {
	if v, ok := os.LookupEnv(key); ok && strings.TrimSpace(v) != "" {
		*dst = strings.TrimSpace(v)
	}
}

func setInt(dst *int, key string) {
	if v, ok := os.LookupEnv(key); ok {
		if n, err := strconv.Atoi(strings.TrimSpace(v)); err == nil {
			*dst = n
		}
	}
}

func setBool(dst *bool, key string) {
	if v, ok := os.LookupEnv(key); ok {
		switch strings.ToLower(strings.TrimSpace(v)) {
		case "1", "true", "yes", "on":
			*dst = true
		case "0", "false", "no", "off":
			*dst = false
		}
	}
}

func splitCSV(v string) []string {
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
