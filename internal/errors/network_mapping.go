package errors

import (
	"context"
	"errors"
	"net"
	"strings"
)

// ClassifyNetwork maps a transport-level failure (no HTTP response at all)
// into a DomainError. Network failures are never expiry signals: without a
// response there is no evidence the credential was rejected.
func ClassifyNetwork(method, path string, err error) *DomainError {
	details := map[string]interface{}{
		"method":  method,
		"path":    path,
		"timeout": false,
	}

	msg := ""
	if err != nil {
		msg = err.Error()
	}
	lower := strings.ToLower(msg)

	code := "connection_error"
	out := "Could not reach the Recharge API"

	switch {
	case errors.Is(err, context.DeadlineExceeded) || isTimeout(err) || strings.Contains(lower, "timeout") || strings.Contains(lower, "deadline exceeded"):
		details["timeout"] = true
		code = "request_timeout"
		out = "Request to the Recharge API timed out"
	case errors.Is(err, context.Canceled) || strings.Contains(lower, "context canceled"):
		code = "request_canceled"
		out = "Request was canceled before completion"
	case strings.Contains(lower, "no such host"):
		code = "dns_error"
		out = "DNS resolution for the Recharge API failed"
	case strings.Contains(lower, "certificate") || strings.Contains(lower, "tls"):
		code = "tls_error"
		out = "TLS handshake with the Recharge API failed"
	case strings.Contains(lower, "connection refused"),
		strings.Contains(lower, "connection reset"),
		strings.Contains(lower, "broken pipe"),
		strings.Contains(lower, "eof"):
		code = "connection_error"
		out = "Connection to the Recharge API failed"
	}

	return New(KindTransport, out).
		WithCode(code).
		WithDetails(details).
		WithCause(err)
}

func isTimeout(err error) bool {
	var ne net.Error
	if errors.As(err, &ne) {
		return ne.Timeout()
	}
	return false
}
