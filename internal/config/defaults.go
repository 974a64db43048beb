package config

import "recharge-mcp-go/internal/constants"

// defaultFileConfig returns the configuration used when no file exists
// and no environment overrides apply.
func defaultFileConfig() FileConfig {
	return FileConfig{
		Host:                 "0.0.0.0",
		Port:                 8765,
		RechargeAPIURL:       constants.DefaultAPIBaseURL,
		RechargeAPIVersion:   constants.DefaultAPIVersion,
		UpstreamRPS:          constants.DefaultUpstreamRPS,
		UpstreamBurst:        constants.DefaultUpstreamBurst,
		RequestTimeoutSec:    int(constants.DefaultRequestTimeout.Seconds()),
		RateLimitEnabled:     true,
		RateLimitRPS:         10,
		RateLimitBurst:       20,
		SessionMaxAgeMinutes: constants.DefaultSessionMaxAgeMinutes,
		UsageSummaryMinutes:  30,
	}
}
