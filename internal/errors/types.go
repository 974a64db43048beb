package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind categorizes a DomainError for callers that branch on failure class.
type Kind string

const (
	KindConfiguration     Kind = "configuration_error"
	KindSecurity          Kind = "security_error"
	KindInvalidCredential Kind = "invalid_credential"
	KindNotFound          Kind = "not_found"
	KindValidation        Kind = "validation_error"
	KindTransport         Kind = "transport_error"
	KindAPI               Kind = "api_error"
	KindRedirect          Kind = "redirect_error"
)

// DomainError is the standardized error shape surfaced by the credential
// and request layers. Expiry marks failures the executor may recover from
// locally by refreshing the session credential; everything else propagates.
type DomainError struct {
	Kind       Kind
	Message    string
	StatusCode int
	Code       string
	Expiry     bool
	Details    map[string]interface{}
	cause      error
}

func (e *DomainError) Error() string {
	if e.StatusCode > 0 {
		return fmt.Sprintf("%s (status %d): %s", e.Kind, e.StatusCode, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *DomainError) Unwrap() error { return e.cause }

// New constructs a DomainError of the given kind.
func New(kind Kind, message string) *DomainError {
	return &DomainError{Kind: kind, Message: message}
}

// Newf constructs a DomainError with a formatted message.
func Newf(kind Kind, format string, args ...interface{}) *DomainError {
	return &DomainError{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

func (e *DomainError) WithStatus(status int) *DomainError {
	e.StatusCode = status
	return e
}

func (e *DomainError) WithCode(code string) *DomainError {
	e.Code = code
	return e
}

func (e *DomainError) WithDetails(details map[string]interface{}) *DomainError {
	e.Details = details
	return e
}

func (e *DomainError) WithCause(err error) *DomainError {
	e.cause = err
	return e
}

func (e *DomainError) markExpiry() *DomainError {
	e.Expiry = true
	return e
}

// IsKind reports whether err is (or wraps) a DomainError of the given kind.
func IsKind(err error, kind Kind) bool {
	var de *DomainError
	if errors.As(err, &de) {
		return de.Kind == kind
	}
	return false
}

// IsExpiry reports whether err carries the credential-expiry classification.
func IsExpiry(err error) bool {
	var de *DomainError
	if errors.As(err, &de) {
		return de.Expiry
	}
	return false
}

// AsDomain extracts the DomainError from err, if any.
func AsDomain(err error) (*DomainError, bool) {
	var de *DomainError
	if errors.As(err, &de) {
		return de, true
	}
	return nil, false
}

// IsRetryable reports whether the failure is plausibly transient.
func (e *DomainError) IsRetryable() bool {
	if e.Kind == KindTransport {
		return true
	}
	switch e.StatusCode {
	case http.StatusTooManyRequests,
		http.StatusRequestTimeout,
		http.StatusInternalServerError,
		http.StatusBadGateway,
		http.StatusServiceUnavailable,
		http.StatusGatewayTimeout:
		return true
	}
	return false
}

// RemediationHint returns a short operator-facing hint for the error. The
// tool layer attaches it to surfaced failures so callers can self-serve.
func (e *DomainError) RemediationHint() string {
	switch e.Kind {
	case KindConfiguration:
		return "Check RECHARGE_API_KEY and store configuration."
	case KindSecurity:
		return "Provide customer_id, customer_email, or session_token explicitly; ambiguous identity is rejected once customer sessions exist."
	case KindInvalidCredential:
		return "The session token is malformed or a placeholder; supply a real token or let the server mint one from a customer identity."
	case KindNotFound:
		if e.StatusCode == 0 || e.StatusCode == http.StatusNotFound {
			return "Verify the identifier exists and belongs to this store."
		}
	case KindTransport:
		if timeout, _ := e.Details["timeout"].(bool); timeout {
			return "The Recharge API did not respond in time; retry later."
		}
		return "Could not reach the Recharge API; check network and proxy settings."
	case KindRedirect:
		return "The API returned an unexpected redirect; check the configured base URL and token scope."
	}
	switch e.StatusCode {
	case http.StatusUnauthorized:
		return "Check that the credential is valid and not expired."
	case http.StatusForbidden:
		return "The credential lacks permission for this operation."
	case http.StatusUnprocessableEntity:
		return "The request payload failed remote validation; inspect the error details."
	case http.StatusTooManyRequests:
		return "Rate limited by the Recharge API; back off and retry."
	}
	if e.StatusCode >= 500 {
		return "Transient upstream failure; retry later."
	}
	return ""
}
