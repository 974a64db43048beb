package store

import "time"

// CredentialEntry is one cached customer session credential.
type CredentialEntry struct {
	CustomerID string
	Token      string
	Email      string
	CreatedAt  time.Time
	LastUsedAt time.Time
}

// Stats summarizes store contents for the management surface. Ages are
// measured from CreatedAt; token values never appear here.
type Stats struct {
	Count            int   `json:"count"`
	EmailMappings    int   `json:"email_mappings"`
	OldestAgeSeconds int64 `json:"oldest_age_seconds"`
	NewestAgeSeconds int64 `json:"newest_age_seconds"`
}
