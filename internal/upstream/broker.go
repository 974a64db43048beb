package upstream

import (
	"context"
	"net/url"
	"time"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"

	"recharge-mcp-go/internal/errors"
	"recharge-mcp-go/internal/events"
	"recharge-mcp-go/internal/identity"
	"recharge-mcp-go/internal/monitoring"
	"recharge-mcp-go/internal/session"
	"recharge-mcp-go/internal/store"
)

// Broker bundles the credential store, identity resolver, session
// manager, and executor behind the one entry point the tool layer
// calls. It also carries the administrative credential operations.
type Broker struct {
	store    *store.CredentialStore
	resolver *identity.Resolver
	sessions *session.Manager
	executor *Executor
	client   *Client
	pub      events.Publisher
}

// BrokerOptions configures NewBroker. Client is required; a nil Store
// gets a fresh empty one.
type BrokerOptions struct {
	Client    *Client
	Store     *store.CredentialStore
	Publisher events.Publisher
}

// NewBroker assembles the credential-brokering pipeline.
func NewBroker(opts BrokerOptions) *Broker {
	st := opts.Store
	if st == nil {
		st = store.New()
	}
	resolver := identity.NewResolver(st, opts.Client)
	sessions := session.NewManager(session.Options{
		Store:     st,
		Creator:   opts.Client,
		Publisher: opts.Publisher,
	})
	return &Broker{
		store:    st,
		resolver: resolver,
		sessions: sessions,
		executor: NewExecutor(opts.Client, resolver, sessions, st),
		client:   opts.Client,
		pub:      opts.Publisher,
	}
}

// Execute resolves an identity and runs one Recharge API call with
// expiry recovery. Every tool goes through here.
func (b *Broker) Execute(ctx context.Context, method, path string, body interface{}, query url.Values, desc identity.Descriptor) ([]byte, error) {
	return b.executor.Execute(ctx, method, path, body, query, desc)
}

// Store exposes the underlying credential store for maintenance tasks.
func (b *Broker) Store() *store.CredentialStore { return b.store }

// CredentialStats reports the store statistics for the management and
// tool surfaces.
func (b *Broker) CredentialStats() store.Stats { return b.store.Stats() }

// PurgeRequest selects which credentials to drop. Exactly one selector
// must be set: All, OlderThanMinutes, CustomerID, or Email.
type PurgeRequest struct {
	All              bool   `json:"all"`
	OlderThanMinutes int    `json:"older_than_minutes"`
	CustomerID       string `json:"customer_id"`
	Email            string `json:"email"`
	Reason           string `json:"reason"`
}

// PurgeResult reports what a purge removed. AuditID ties the log line,
// the published event, and the caller's response together.
type PurgeResult struct {
	AuditID              string `json:"audit_id"`
	Mode                 string `json:"mode"`
	Cleared              int    `json:"cleared"`
	EmailMappingsCleared int    `json:"email_mappings_cleared,omitempty"`
	Reason               string `json:"reason,omitempty"`
}

// PurgeCredentials removes cached credentials per the request selector.
func (b *Broker) PurgeCredentials(ctx context.Context, req PurgeRequest) (PurgeResult, error) {
	res := PurgeResult{
		AuditID: uuid.NewString(),
		Reason:  req.Reason,
	}
	switch {
	case req.All:
		res.Mode = "all"
		res.Cleared, res.EmailMappingsCleared = b.store.ClearAll()
	case req.OlderThanMinutes > 0:
		res.Mode = "older_than"
		res.Cleared = b.store.ClearOlderThan(time.Duration(req.OlderThanMinutes) * time.Minute)
	case req.CustomerID != "":
		res.Mode = "customer"
		if b.store.Clear(req.CustomerID) {
			res.Cleared = 1
		}
	case req.Email != "":
		res.Mode = "email"
		if b.store.ClearByEmail(req.Email) {
			res.Cleared = 1
		}
	default:
		return PurgeResult{}, errors.New(errors.KindValidation,
			"purge requires one of: all, older_than_minutes, customer_id, email")
	}

	monitoring.CredentialPurgesTotal.WithLabelValues(res.Mode).Inc()
	st := b.store.Stats()
	monitoring.SetCredentialStoreSize(st.Count, st.EmailMappings)

	log.WithFields(log.Fields{
		"audit_id": res.AuditID,
		"mode":     res.Mode,
		"cleared":  res.Cleared,
		"reason":   res.Reason,
	}).Warn("credentials purged")

	if b.pub != nil {
		b.pub.Publish(ctx, events.TopicCredentialsPurged, res, nil)
	}
	return res, nil
}
