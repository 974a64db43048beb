package upstream

import (
	"context"
	"net/url"
	"strings"
	"time"

	log "github.com/sirupsen/logrus"

	"recharge-mcp-go/internal/constants"
	"recharge-mcp-go/internal/errors"
	"recharge-mcp-go/internal/identity"
	"recharge-mcp-go/internal/monitoring"
	"recharge-mcp-go/internal/session"
	"recharge-mcp-go/internal/store"
)

var supportedMethods = map[string]bool{
	"GET":    true,
	"POST":   true,
	"PUT":    true,
	"DELETE": true,
}

// Executor runs Recharge API calls under a resolved identity and
// recovers locally from credential expiry, up to a bounded number of
// refresh-and-retry rounds. Explicit tokens never trigger recovery: the
// caller asserted them, so their failures surface as-is.
type Executor struct {
	client     *Client
	resolver   *identity.Resolver
	sessions   *session.Manager
	store      *store.CredentialStore
	maxRetries int

	sleep func(ctx context.Context, d time.Duration) error
}

// NewExecutor wires an Executor over its collaborators.
func NewExecutor(client *Client, resolver *identity.Resolver, sessions *session.Manager, st *store.CredentialStore) *Executor {
	return &Executor{
		client:     client,
		resolver:   resolver,
		sessions:   sessions,
		store:      st,
		maxRetries: constants.MaxExecuteRetries,
		sleep:      waitCtx,
	}
}

// Execute resolves a credential for the descriptor, issues the call,
// and on an expiry-classified failure invalidates the cached credential
// and retries with a fresh one.
func (e *Executor) Execute(ctx context.Context, method, path string, body interface{}, query url.Values, desc identity.Descriptor) ([]byte, error) {
	method = strings.ToUpper(strings.TrimSpace(method))
	if !supportedMethods[method] {
		return nil, errors.Newf(errors.KindValidation,
			"unsupported HTTP method %q; use GET, POST, PUT, or DELETE", method)
	}
	if strings.TrimSpace(path) == "" || !strings.HasPrefix(path, "/") {
		return nil, errors.Newf(errors.KindValidation,
			"request path must be non-empty and absolute, got %q", path)
	}

	var firstErr error
	for retry := 0; ; retry++ {
		resolved, err := e.resolver.Resolve(ctx, desc)
		if err != nil {
			return nil, err
		}
		token := resolved.Token
		if !resolved.Explicit {
			token, err = e.sessions.Obtain(ctx, resolved.CustomerID, resolved.Email)
			if err != nil {
				return nil, err
			}
		}

		effectivePath, err := expandPath(path, resolved)
		if err != nil {
			return nil, err
		}
		payload, err := e.client.Do(ctx, Request{
			Method: method,
			Path:   effectivePath,
			Query:  query,
			Body:   body,
			Token:  token,
		})
		if err == nil {
			if retry > 0 {
				monitoring.ExecutorRetriesTotal.WithLabelValues("recovered").Inc()
			}
			return payload, nil
		}
		if !errors.IsExpiry(err) || resolved.Explicit {
			return nil, err
		}
		if retry >= e.maxRetries {
			monitoring.ExecutorRetriesTotal.WithLabelValues("exhausted").Inc()
			return nil, wrapRetriesExhausted(method, path, retry, firstErr, err)
		}
		if firstErr == nil {
			firstErr = err
		}

		// Only drop the credential if it is still the one this attempt
		// used; a concurrent call may have refreshed it already.
		e.store.Invalidate(resolved.CustomerID, token)
		st := e.store.Stats()
		monitoring.SetCredentialStoreSize(st.Count, st.EmailMappings)
		log.WithFields(log.Fields{
			"customer_id": resolved.CustomerID,
			"method":      method,
			"path":        path,
			"retry":       retry + 1,
		}).Warn("session credential expired; refreshing and retrying")

		if werr := e.sleep(ctx, executeBackoff(retry)); werr != nil {
			return nil, werr
		}
	}
}

// customerIDPlaceholder marks path segments filled with the resolved
// customer ID, for operations addressed by customer rather than by a
// resource ID argument.
const customerIDPlaceholder = "{customer_id}"

func expandPath(path string, resolved identity.Resolved) (string, error) {
	if !strings.Contains(path, customerIDPlaceholder) {
		return path, nil
	}
	if resolved.CustomerID == "" {
		return "", errors.New(errors.KindValidation,
			"this operation needs customer_id or customer_email; an explicit session token does not identify the customer")
	}
	return strings.ReplaceAll(path, customerIDPlaceholder, url.PathEscape(resolved.CustomerID)), nil
}

// executeBackoff returns the wait before retry number retryCount+1:
// 1s, 2s, 4s, capped at 5s.
func executeBackoff(retryCount int) time.Duration {
	d := constants.SessionBackoffBase << retryCount
	if d > constants.SessionBackoffCap {
		d = constants.SessionBackoffCap
	}
	return d
}

func wrapRetriesExhausted(method, path string, retries int, first, last error) error {
	if first == nil {
		first = last
	}
	de := errors.Newf(errors.KindAPI,
		"%s %s still failing after %d credential refreshes: first error: %v; final error: %v. Verify the store API key is valid and permitted to create customer sessions",
		method, path, retries, first, last).
		WithCode("retries_exhausted").
		WithCause(last).
		WithDetails(map[string]interface{}{
			"method":  method,
			"path":    path,
			"retries": retries,
		})
	if lastDE, ok := errors.AsDomain(last); ok {
		de.WithStatus(lastDE.StatusCode)
	}
	return de
}

func waitCtx(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		return errors.New(errors.KindTransport, "canceled during retry backoff").
			WithCode("request_canceled").WithCause(ctx.Err())
	}
}
