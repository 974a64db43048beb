package constants

import "time"

// Upstream HTTP transport settings.
const (
	DefaultDialTimeout           = 10 * time.Second
	DefaultTLSHandshakeTimeout   = 10 * time.Second
	DefaultResponseHeaderTimeout = 30 * time.Second
	DefaultExpectContinueTimeout = 2 * time.Second
	DefaultKeepAlive             = 30 * time.Second

	DefaultMaxIdleConns        = 100
	DefaultMaxIdleConnsPerHost = 20
	DefaultIdleConnTimeout     = 90 * time.Second

	// DefaultRequestTimeout bounds a single upstream call end to end.
	// Retries and backoff waits are budgeted separately by the executor.
	DefaultRequestTimeout = 30 * time.Second
)

// Outbound rate limiting toward the Recharge API. The storefront surface
// is documented at 2 requests/second per token with small bursts.
const (
	DefaultUpstreamRPS   = 2.0
	DefaultUpstreamBurst = 4
)
