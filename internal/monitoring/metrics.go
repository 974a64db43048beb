package monitoring

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// HTTP surface (MCP endpoint + management API)
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "recharge_mcp_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status_class"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "recharge_mcp_http_request_duration_seconds",
			Help:    "HTTP request latency in seconds",
			Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2, 5, 10},
		},
		[]string{"method", "path", "status_class"},
	)

	HTTPInFlight = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "recharge_mcp_http_inflight",
			Help: "Number of HTTP requests currently being processed",
		},
	)

	// MCP protocol
	MCPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "recharge_mcp_rpc_requests_total",
			Help: "Total number of JSON-RPC requests by method",
		},
		[]string{"method"},
	)

	ToolCallsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "recharge_mcp_tool_calls_total",
			Help: "Total number of tool calls",
		},
		[]string{"tool", "outcome"},
	)

	ToolCallDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "recharge_mcp_tool_call_duration_seconds",
			Help:    "Tool call latency in seconds",
			Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2, 5, 10},
		},
		[]string{"tool"},
	)

	// Outbound Recharge API calls
	UpstreamRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "recharge_mcp_upstream_requests_total",
			Help: "Total number of Recharge API requests",
		},
		[]string{"method", "status_class"},
	)

	UpstreamRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "recharge_mcp_upstream_request_duration_seconds",
			Help:    "Recharge API request latency in seconds",
			Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2, 5, 10},
		},
		[]string{"method"},
	)

	UpstreamErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "recharge_mcp_upstream_errors_total",
			Help: "Total number of upstream errors by reason",
		},
		[]string{"reason"},
	)

	ExecutorRetriesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "recharge_mcp_executor_retries_total",
			Help: "Total number of expiry-triggered request retries",
		},
		[]string{"outcome"}, // outcome: recovered|exhausted
	)

	// Session credential lifecycle
	SessionsCreatedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "recharge_mcp_sessions_created_total",
			Help: "Total number of customer sessions minted",
		},
	)

	SessionCreateFailures = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "recharge_mcp_session_create_failures_total",
			Help: "Total number of failed session creations by reason",
		},
		[]string{"reason"}, // reason: stale_token|invalid_token|upstream|canceled
	)

	CredentialStoreEntries = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "recharge_mcp_credential_store_entries",
			Help: "Number of cached session credentials",
		},
	)

	CredentialStoreEmailMappings = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "recharge_mcp_credential_store_email_mappings",
			Help: "Number of cached email to customer mappings",
		},
	)

	CredentialPurgesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "recharge_mcp_credential_purges_total",
			Help: "Total number of credential purge operations",
		},
		[]string{"mode"}, // mode: all|older_than|customer|email|sweep
	)

	// Inbound rate limiting
	RateLimitKeysGauge = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "recharge_mcp_ratelimit_keys",
			Help: "Current number of per-key rate limiters",
		},
	)

	RateLimitSweepsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "recharge_mcp_ratelimit_sweeps_total",
			Help: "Total number of rate limiter TTL cache sweeps",
		},
	)

	// Management surface
	ManagementAccessTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "recharge_mcp_management_access_total",
			Help: "Total number of management access decisions",
		},
		[]string{"route", "result", "source"},
	)

	EventStreamClients = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "recharge_mcp_event_stream_clients",
			Help: "Number of connected management event stream clients",
		},
	)

	ConfigReloadsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "recharge_mcp_config_reloads_total",
			Help: "Total number of configuration reloads",
		},
		[]string{"status"}, // status: success|error
	)
)

// SetCredentialStoreSize refreshes the credential store gauges. Callers
// pass the current entry and email mapping counts after any mutation
// worth reflecting.
func SetCredentialStoreSize(entries, mappings int) {
	CredentialStoreEntries.Set(float64(entries))
	CredentialStoreEmailMappings.Set(float64(mappings))
}
