package session

import (
	"context"
	"time"

	log "github.com/sirupsen/logrus"

	"recharge-mcp-go/internal/constants"
	"recharge-mcp-go/internal/errors"
	"recharge-mcp-go/internal/events"
	"recharge-mcp-go/internal/monitoring"
	"recharge-mcp-go/internal/store"
)

// Creator mints a fresh session token for a customer through the
// privileged store API.
type Creator interface {
	CreateCustomerSession(ctx context.Context, customerID string) (string, error)
}

// Options configures a Manager. Store and Creator are required;
// Publisher is optional and MaxAttempts defaults to the standard
// creation ceiling.
type Options struct {
	Store       *store.CredentialStore
	Creator     Creator
	Publisher   events.Publisher
	MaxAttempts int
}

// Manager owns the session credential lifecycle for all customers.
type Manager struct {
	store       *store.CredentialStore
	creator     Creator
	pub         events.Publisher
	maxAttempts int
	flights     *flightGroup

	// sleep is swapped out in tests to avoid real waits.
	sleep func(ctx context.Context, d time.Duration) error
}

// NewManager builds a Manager from opts.
func NewManager(opts Options) *Manager {
	m := &Manager{
		store:       opts.Store,
		creator:     opts.Creator,
		pub:         opts.Publisher,
		maxAttempts: opts.MaxAttempts,
		flights:     newFlightGroup(),
		sleep:       sleepCtx,
	}
	if m.maxAttempts <= 0 {
		m.maxAttempts = constants.MaxSessionAttempts
	}
	return m
}

// Obtain returns a usable session token for the customer, minting one
// when the cache has none. Concurrent calls for the same customer share
// a single creation; different customers proceed independently.
func (m *Manager) Obtain(ctx context.Context, customerID, email string) (string, error) {
	if cached, ok := m.store.Get(customerID); ok {
		if valid, err := ValidateToken(cached); err == nil {
			return valid, nil
		}
		// The cached value stopped passing the predicate (for example a
		// placeholder written by an older config). Evict it; Invalidate
		// keeps the email index intact.
		m.store.Invalidate(customerID, cached)
		log.WithField("customer_id", customerID).
			Warn("evicted cached session token that failed validation")
	}
	return m.flights.do(ctx, customerID, func() (string, error) {
		return m.mint(ctx, customerID, email)
	})
}

// mint runs the bounded creation loop. It is only ever called as a
// single-flight leader.
func (m *Manager) mint(ctx context.Context, customerID, email string) (string, error) {
	// Another flight may have landed between our cache miss and this
	// flight starting.
	if cached, ok := m.store.Get(customerID); ok {
		if valid, err := ValidateToken(cached); err == nil {
			return valid, nil
		}
	}

	previous, _ := m.store.TakeInvalidatedToken(customerID)

	var lastErr error
	for attempt := 1; attempt <= m.maxAttempts; attempt++ {
		token, err := m.creator.CreateCustomerSession(ctx, customerID)
		if err == nil {
			if previous != "" && token == previous {
				// The remote handed back the exact token we just threw
				// away, meaning it never rotated the credential.
				lastErr = errors.New(errors.KindAPI,
					"session creation returned a stale token identical to the one just invalidated").
					WithCode("stale_session_token")
				log.WithFields(log.Fields{
					"customer_id": customerID,
					"attempt":     attempt,
				}).Warn("remote returned stale session token")
				if attempt < m.maxAttempts {
					if werr := m.sleep(ctx, time.Duration(attempt)*constants.StaleTokenWaitUnit); werr != nil {
						return "", werr
					}
				}
				continue
			}
			valid, verr := ValidateToken(token)
			if verr == nil {
				if perr := m.store.Put(customerID, valid, email); perr != nil {
					return "", perr
				}
				monitoring.SessionsCreatedTotal.Inc()
				st := m.store.Stats()
				monitoring.SetCredentialStoreSize(st.Count, st.EmailMappings)
				if m.pub != nil {
					m.pub.Publish(ctx, events.TopicSessionCreated, map[string]interface{}{
						"customer_id": customerID,
						"attempts":    attempt,
					}, nil)
				}
				log.WithFields(log.Fields{
					"customer_id": customerID,
					"attempts":    attempt,
				}).Debug("session token created")
				return valid, nil
			}
			lastErr = verr
		} else {
			lastErr = err
		}

		log.WithFields(log.Fields{
			"customer_id": customerID,
			"attempt":     attempt,
			"error":       lastErr,
		}).Warn("session creation attempt failed")
		if attempt < m.maxAttempts {
			if werr := m.sleep(ctx, sessionBackoff(attempt)); werr != nil {
				return "", werr
			}
		}
	}
	monitoring.SessionCreateFailures.WithLabelValues(failureReason(lastErr)).Inc()
	return "", wrapExhausted(customerID, m.maxAttempts, lastErr)
}

func failureReason(err error) string {
	de, ok := errors.AsDomain(err)
	if !ok {
		return "upstream"
	}
	switch {
	case de.Code == "stale_session_token":
		return "stale_token"
	case de.Kind == errors.KindInvalidCredential:
		return "invalid_token"
	case de.Code == "request_canceled":
		return "canceled"
	default:
		return "upstream"
	}
}

// sessionBackoff returns the wait after a failed creation attempt
// (1-based): 1s, 2s, 4s, capped at 5s.
func sessionBackoff(attempt int) time.Duration {
	d := constants.SessionBackoffBase << (attempt - 1)
	if d > constants.SessionBackoffCap {
		d = constants.SessionBackoffCap
	}
	return d
}

func wrapExhausted(customerID string, attempts int, lastErr error) error {
	details := map[string]interface{}{"attempts": attempts}
	if de, ok := errors.AsDomain(lastErr); ok {
		return errors.Newf(de.Kind,
			"session creation for customer %s failed after %d attempts: %s",
			customerID, attempts, de.Message).
			WithStatus(de.StatusCode).
			WithCode(de.Code).
			WithDetails(details).
			WithCause(lastErr)
	}
	return errors.Newf(errors.KindAPI,
		"session creation for customer %s failed after %d attempts",
		customerID, attempts).
		WithDetails(details).
		WithCause(lastErr)
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		return errors.New(errors.KindTransport, "canceled during session retry backoff").
			WithCode("request_canceled").WithCause(ctx.Err())
	}
}
