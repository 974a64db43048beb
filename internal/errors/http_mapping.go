package errors

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"

	"recharge-mcp-go/internal/constants"
)

// Keyword sets that promote a 403/422 into an expiry signal. The 403 match
// is known to be imprecise (a permission denial whose message mentions
// "invalid" also matches); it is kept for compatibility with the remote
// API's observed error phrasing.
var (
	forbiddenExpiryKeywords   = []string{"session", "token", "expired", "invalid", "unauthorized"}
	unprocessableExpiryWords  = []string{"token", "session", "expired"}
	sensitiveResponsePaths    = []string{"token", "session_token", "access_token", "api_token", "apiToken", "customer_session.token", "customer_session.apiToken"}
)

// ClassifyHTTP turns a non-2xx remote response into a DomainError, tagging
// credential-expiry signals so the executor can recover locally.
//
// 401 is always an expiry signal. 403 and 422 are expiry signals only when
// the remote message carries session/token wording; otherwise they map to
// permission and validation failures respectively. 3xx responses map to a
// redirect error since the API never legitimately redirects.
func ClassifyHTTP(method, path string, statusCode int, header http.Header, body []byte) *DomainError {
	remoteMsg := ExtractRemoteMessage(body)
	details := map[string]interface{}{
		"method": method,
		"path":   path,
	}
	if snippet := SanitizeSnippet(body); snippet != "" {
		details["response"] = snippet
	}

	if statusCode >= 300 && statusCode < 400 {
		if loc := header.Get("Location"); loc != "" {
			details["location"] = loc
		}
		return New(KindRedirect, firstNonEmpty(remoteMsg, fmt.Sprintf("unexpected redirect (HTTP %d)", statusCode))).
			WithStatus(statusCode).
			WithCode("unexpected_redirect").
			WithDetails(details)
	}

	switch statusCode {
	case http.StatusUnauthorized:
		return New(KindAPI, firstNonEmpty(remoteMsg, "Session token rejected")).
			WithStatus(statusCode).
			WithCode("unauthorized").
			WithDetails(details).
			markExpiry()
	case http.StatusForbidden:
		err := New(KindAPI, firstNonEmpty(remoteMsg, "Permission denied")).
			WithStatus(statusCode).
			WithCode("permission_denied").
			WithDetails(details)
		if containsAny(remoteMsg, forbiddenExpiryKeywords) {
			err.Code = "session_rejected"
			return err.markExpiry()
		}
		return err
	case http.StatusNotFound:
		return New(KindNotFound, firstNonEmpty(remoteMsg, "Resource not found")).
			WithStatus(statusCode).
			WithCode("not_found").
			WithDetails(details)
	case http.StatusUnprocessableEntity:
		err := New(KindValidation, firstNonEmpty(remoteMsg, "Request failed remote validation")).
			WithStatus(statusCode).
			WithCode("unprocessable").
			WithDetails(details)
		if containsAny(remoteMsg, unprocessableExpiryWords) {
			err.Kind = KindAPI
			err.Code = "session_rejected"
			return err.markExpiry()
		}
		return err
	case http.StatusTooManyRequests:
		if ra := header.Get("Retry-After"); ra != "" {
			details["retry_after"] = ra
		}
		return New(KindAPI, firstNonEmpty(remoteMsg, "Rate limit exceeded")).
			WithStatus(statusCode).
			WithCode("rate_limited").
			WithDetails(details)
	}

	err := New(KindAPI, firstNonEmpty(remoteMsg, fmt.Sprintf("HTTP %d error", statusCode))).
		WithStatus(statusCode).
		WithDetails(details)
	if code := gjson.GetBytes(body, "error_code"); code.Exists() {
		err.Code = code.String()
	}
	return err
}

// ExtractRemoteMessage pulls the human-readable failure message out of a
// structured error body. Field priority: message, error, errors,
// error_description; the first present wins. Non-string values (the
// Recharge validation API returns an errors object) are carried as raw JSON.
func ExtractRemoteMessage(body []byte) string {
	if len(body) == 0 || !gjson.ValidBytes(body) {
		return ""
	}
	for _, key := range []string{"message", "error", "errors", "error_description"} {
		v := gjson.GetBytes(body, key)
		if !v.Exists() {
			continue
		}
		switch v.Type {
		case gjson.String:
			if v.Str != "" {
				return v.Str
			}
		case gjson.JSON:
			// Nested {"error": {"message": "..."}} envelopes.
			if msg := v.Get("message"); msg.Type == gjson.String && msg.Str != "" {
				return msg.Str
			}
			if raw := strings.TrimSpace(v.Raw); raw != "" && raw != "{}" && raw != "[]" {
				return raw
			}
		}
	}
	return ""
}

// SanitizeSnippet prepares a response body for inclusion in diagnostic
// details: token-bearing JSON fields are removed and the remainder is
// truncated. Credential values must never ride along inside errors.
func SanitizeSnippet(body []byte) string {
	if len(body) == 0 {
		return ""
	}
	if gjson.ValidBytes(body) {
		for _, p := range sensitiveResponsePaths {
			if gjson.GetBytes(body, p).Exists() {
				body, _ = sjson.DeleteBytes(body, p)
			}
		}
	}
	snippet := strings.TrimSpace(string(body))
	if len(snippet) > constants.MaxErrorSnippetLength {
		snippet = snippet[:constants.MaxErrorSnippetLength] + "..."
	}
	return snippet
}

func containsAny(msg string, keywords []string) bool {
	if msg == "" {
		return false
	}
	lower := strings.ToLower(msg)
	for _, kw := range keywords {
		if strings.Contains(lower, kw) {
			return true
		}
	}
	return false
}

func firstNonEmpty(strs ...string) string {
	for _, s := range strs {
		if s != "" {
			return s
		}
	}
	return ""
}
