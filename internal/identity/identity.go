// Package identity resolves who a tool call authenticates as, from the
// caller-supplied combination of explicit token, customer ID, and
// customer email.
package identity

import (
	"context"
	"strings"

	"recharge-mcp-go/internal/errors"
	"recharge-mcp-go/internal/session"
	"recharge-mcp-go/internal/store"
)

// Descriptor carries the identity hints of a single tool call. All
// fields are optional; precedence is token, then ID, then email.
type Descriptor struct {
	SessionToken  string
	CustomerID    string
	CustomerEmail string
}

// Resolved is the effective identity a request runs under. Explicit
// identities carry the token itself and bypass the credential cache
// entirely.
type Resolved struct {
	Explicit   bool
	Token      string
	CustomerID string
	Email      string
}

// CustomerLookup finds a customer ID for an email address through the
// privileged store API. An empty ID with a nil error means no match.
type CustomerLookup interface {
	FindCustomerIDByEmail(ctx context.Context, email string) (string, error)
}

// Resolver maps descriptors to effective identities, consulting the
// credential store's email index before going remote.
type Resolver struct {
	store  *store.CredentialStore
	lookup CustomerLookup
}

// NewResolver builds a Resolver over the given store and lookup.
func NewResolver(st *store.CredentialStore, lookup CustomerLookup) *Resolver {
	return &Resolver{store: st, lookup: lookup}
}

// Resolve applies the precedence rules. With no identity at all it
// distinguishes an unconfigured client (ConfigurationError) from the
// dangerous case of ambiguous identity while customer sessions exist
// (SecurityError), which could otherwise leak one customer's data to
// another.
func (r *Resolver) Resolve(ctx context.Context, d Descriptor) (Resolved, error) {
	if raw := strings.TrimSpace(d.SessionToken); raw != "" {
		token, err := session.ValidateToken(raw)
		if err != nil {
			return Resolved{}, err
		}
		return Resolved{Explicit: true, Token: token}, nil
	}

	customerID := strings.TrimSpace(d.CustomerID)
	email := strings.ToLower(strings.TrimSpace(d.CustomerEmail))
	if customerID != "" {
		return Resolved{CustomerID: customerID, Email: email}, nil
	}

	if email != "" {
		if cached, ok := r.store.CustomerIDByEmail(email); ok {
			return Resolved{CustomerID: cached, Email: email}, nil
		}
		found, err := r.lookup.FindCustomerIDByEmail(ctx, email)
		if err != nil {
			return Resolved{}, err
		}
		if found == "" {
			return Resolved{}, errors.Newf(errors.KindNotFound,
				"no customer found for email %s", email).WithCode("customer_not_found")
		}
		r.store.SetEmailMapping(email, found)
		return Resolved{CustomerID: found, Email: email}, nil
	}

	if r.store.HasAnyEntries() {
		return Resolved{}, errors.New(errors.KindSecurity,
			"no identity provided while customer sessions exist; refusing to pick one implicitly").
			WithCode("ambiguous_identity")
	}
	return Resolved{}, errors.New(errors.KindConfiguration,
		"no identity available: provide customer_id, customer_email, or session_token").
		WithCode("missing_identity")
}
