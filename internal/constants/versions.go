package constants

// Version information (injected at build time via -ldflags).
var (
	Version   = "dev"
	BuildTime = "unknown"
	GitCommit = "unknown"
)

// GetFullVersion returns the combined version string for logs and the
// management system endpoint.
func GetFullVersion() string {
	return Version + " (" + GitCommit + ") built at " + BuildTime
}
