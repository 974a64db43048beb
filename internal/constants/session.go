package constants

import "time"

// Session credential lifecycle limits.
const (
	// MaxSessionAttempts bounds privileged session-creation attempts per Obtain.
	MaxSessionAttempts = 3
	// MaxExecuteRetries bounds expiry-driven re-resolution retries per request.
	MaxExecuteRetries = 2

	// SessionBackoffBase is the base delay for session-creation backoff.
	SessionBackoffBase = 1000 * time.Millisecond
	// SessionBackoffCap caps both session-creation and execute-retry backoff.
	SessionBackoffCap = 5000 * time.Millisecond
	// StaleTokenWaitUnit is multiplied by the attempt number when the remote
	// returns the same token it was supposed to rotate.
	StaleTokenWaitUnit = 1000 * time.Millisecond
)

// Session token shape requirements.
const (
	// MinTokenLength is the minimum trimmed length of a usable session token.
	MinTokenLength = 10
)

// Credential hygiene defaults.
const (
	// DefaultSessionMaxAgeMinutes is the sweep horizon for cached sessions.
	// Recharge customer sessions live roughly an hour; sweeping slightly
	// earlier avoids handing out tokens that die mid-request.
	DefaultSessionMaxAgeMinutes = 55
	// CredentialSweepInterval controls how often the background sweep runs.
	CredentialSweepInterval = 5 * time.Minute
)
