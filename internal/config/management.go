package config

import (
	"crypto/subtle"
	"strings"

	"golang.org/x/crypto/bcrypt"
)

// ManagementAuthConfigured reports whether any management credential is
// set. With neither a key nor a hash the management API stays closed.
func ManagementAuthConfigured(cfg *Config) bool {
	return strings.TrimSpace(cfg.Security.ManagementKey) != "" ||
		strings.TrimSpace(cfg.Security.ManagementKeyHash) != ""
}

// CheckManagementKey verifies a candidate management key. A bcrypt
// hash takes precedence over the plaintext key so operators can drop
// the plaintext from their config once a hash is in place.
func CheckManagementKey(cfg *Config, candidate string) bool {
	candidate = strings.TrimSpace(candidate)
	if candidate == "" {
		return false
	}
	if hash := strings.TrimSpace(cfg.Security.ManagementKeyHash); hash != "" {
		return bcrypt.CompareHashAndPassword([]byte(hash), []byte(candidate)) == nil
	}
	if key := strings.TrimSpace(cfg.Security.ManagementKey); key != "" {
		return subtle.ConstantTimeCompare([]byte(key), []byte(candidate)) == 1
	}
	return false
}

// HashManagementKey produces a bcrypt hash suitable for
// management_key_hash.
func HashManagementKey(key string) (string, error) {
	out, err := bcrypt.GenerateFromPassword([]byte(key), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(out), nil
}
