// Package session manages customer session credentials: validity
// screening, minting through the privileged API, stale-rotation
// detection, and retry with backoff. One manager serves the whole
// process; per-customer creation is single-flighted.
package session

import (
	"regexp"
	"strings"

	"recharge-mcp-go/internal/constants"
	"recharge-mcp-go/internal/errors"
)

var tokenShape = regexp.MustCompile(`^[A-Za-z0-9_.-]+$`)

// placeholderTokens are values that show up when an upstream template
// or example config leaks through instead of a real credential.
var placeholderTokens = map[string]struct{}{
	"undefined":       {},
	"null":            {},
	"none":            {},
	"nil":             {},
	"placeholder":     {},
	"your_token_here": {},
	"changeme":        {},
	"test":            {},
	"token":           {},
	"example":         {},
}

// ValidateToken screens a candidate session token and returns its
// trimmed form. Failures carry a descriptive reason; the token value is
// never echoed back.
func ValidateToken(raw string) (string, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return "", errors.New(errors.KindInvalidCredential, "session token is empty")
	}
	if _, bad := placeholderTokens[strings.ToLower(trimmed)]; bad {
		return "", errors.New(errors.KindInvalidCredential,
			"session token is a known placeholder value, not a real credential")
	}
	if len(trimmed) < constants.MinTokenLength {
		return "", errors.Newf(errors.KindInvalidCredential,
			"session token is too short (%d characters, need at least %d)",
			len(trimmed), constants.MinTokenLength)
	}
	if !tokenShape.MatchString(trimmed) {
		return "", errors.New(errors.KindInvalidCredential,
			"session token contains characters outside [A-Za-z0-9_.-]")
	}
	return trimmed, nil
}
