package constants

// Recharge API surface.
const (
	// DefaultAPIBaseURL is the production Recharge API endpoint.
	DefaultAPIBaseURL = "https://api.rechargeapps.com"
	// DefaultAPIVersion pins the Recharge API version header.
	DefaultAPIVersion = "2021-11"

	// HeaderAccessToken carries the session or admin token on every call.
	HeaderAccessToken = "X-Recharge-Access-Token"
	// HeaderAPIVersion selects the Recharge API version.
	HeaderAPIVersion = "X-Recharge-Version"
)

// MCP protocol surface.
const (
	// MCPProtocolVersion is the protocol revision announced in initialize.
	MCPProtocolVersion = "2024-11-05"
	// MCPServerName identifies this server in the initialize handshake.
	MCPServerName = "recharge-storefront-mcp"
)

// MaxErrorSnippetLength truncates remote response snippets embedded in
// diagnostic error details.
const MaxErrorSnippetLength = 200
