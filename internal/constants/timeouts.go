package constants

import "time"

const (
	// ServerShutdownTimeout bounds graceful HTTP server shutdown.
	ServerShutdownTimeout = 30 * time.Second
	// ServerGracefulWait defines the post-shutdown wait window for cleanup.
	ServerGracefulWait = 2 * time.Second
	// ServerReadHeaderTimeout protects against slow-header clients.
	ServerReadHeaderTimeout = 10 * time.Second
)
