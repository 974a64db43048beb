package upstream

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"recharge-mcp-go/internal/errors"
	"recharge-mcp-go/internal/identity"
	"recharge-mcp-go/internal/session"
	"recharge-mcp-go/internal/store"
)

type executorFixture struct {
	store    *store.CredentialStore
	executor *Executor
}

func newExecutorFixture(t *testing.T, handler http.Handler) *executorFixture {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	st := store.New()
	client := New(Options{
		BaseURL:  srv.URL,
		AdminKey: "sk_admin_123456789",
		RPS:      1000,
		Burst:    1000,
	})
	resolver := identity.NewResolver(st, client)
	sessions := session.NewManager(session.Options{Store: st, Creator: client})
	ex := NewExecutor(client, resolver, sessions, st)
	ex.sleep = func(context.Context, time.Duration) error { return nil }
	return &executorFixture{store: st, executor: ex}
}

func TestExecuteRecoversFromExpiryTwice(t *testing.T) {
	var sessionCalls, executeCalls int32
	mux := http.NewServeMux()
	mux.HandleFunc("/customers/42/sessions", func(w http.ResponseWriter, r *http.Request) {
		n := atomic.AddInt32(&sessionCalls, 1)
		fmt.Fprintf(w, `{"customer_session":{"token":"tok_mint_%06d"}}`, n)
	})
	mux.HandleFunc("/subscriptions", func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&executeCalls, 1)
		if r.Header.Get("X-Recharge-Access-Token") != "tok_mint_000003" {
			w.WriteHeader(http.StatusUnauthorized)
			fmt.Fprint(w, `{"error":"session expired"}`)
			return
		}
		fmt.Fprint(w, `{"subscriptions":[]}`)
	})
	fx := newExecutorFixture(t, mux)

	payload, err := fx.executor.Execute(context.Background(),
		"GET", "/subscriptions", nil, nil, identity.Descriptor{CustomerID: "42"})
	require.NoError(t, err)
	require.JSONEq(t, `{"subscriptions":[]}`, string(payload))

	require.Equal(t, int32(3), atomic.LoadInt32(&executeCalls))
	require.Equal(t, int32(3), atomic.LoadInt32(&sessionCalls))

	// The store must hold the token from the successful attempt.
	tok, ok := fx.store.Get("42")
	require.True(t, ok)
	require.Equal(t, "tok_mint_000003", tok)
}

func TestExecuteExhaustsRetries(t *testing.T) {
	var sessionCalls, executeCalls int32
	mux := http.NewServeMux()
	mux.HandleFunc("/customers/42/sessions", func(w http.ResponseWriter, r *http.Request) {
		n := atomic.AddInt32(&sessionCalls, 1)
		fmt.Fprintf(w, `{"customer_session":{"token":"tok_mint_%06d"}}`, n)
	})
	mux.HandleFunc("/orders", func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&executeCalls, 1)
		w.WriteHeader(http.StatusUnauthorized)
		fmt.Fprint(w, `{"error":"session expired"}`)
	})
	fx := newExecutorFixture(t, mux)

	_, err := fx.executor.Execute(context.Background(),
		"GET", "/orders", nil, nil, identity.Descriptor{CustomerID: "42"})
	require.Error(t, err)
	require.Equal(t, int32(3), atomic.LoadInt32(&executeCalls))

	de, ok := errors.AsDomain(err)
	require.True(t, ok)
	require.Equal(t, "retries_exhausted", de.Code)
	require.Equal(t, http.StatusUnauthorized, de.StatusCode)
	require.Contains(t, de.Message, "first error")
	require.Contains(t, de.Message, "final error")
	require.Contains(t, de.Message, "store API key")
}

func TestExecuteExplicitTokenNeverRetries(t *testing.T) {
	var sessionCalls, executeCalls int32
	mux := http.NewServeMux()
	mux.HandleFunc("/customers/42/sessions", func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&sessionCalls, 1)
		fmt.Fprint(w, `{"customer_session":{"token":"tok_mint_000001"}}`)
	})
	mux.HandleFunc("/orders", func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&executeCalls, 1)
		w.WriteHeader(http.StatusUnauthorized)
		fmt.Fprint(w, `{"error":"session expired"}`)
	})
	fx := newExecutorFixture(t, mux)

	_, err := fx.executor.Execute(context.Background(),
		"GET", "/orders", nil, nil, identity.Descriptor{SessionToken: "tok_explicit_12345"})
	require.Error(t, err)
	require.True(t, errors.IsExpiry(err))

	require.Equal(t, int32(1), atomic.LoadInt32(&executeCalls))
	require.Equal(t, int32(0), atomic.LoadInt32(&sessionCalls))
	require.False(t, fx.store.HasAnyEntries())
}

func TestExecuteNonExpiryFailurePropagatesImmediately(t *testing.T) {
	var executeCalls int32
	mux := http.NewServeMux()
	mux.HandleFunc("/customers/42/sessions", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"customer_session":{"token":"tok_mint_000001"}}`)
	})
	mux.HandleFunc("/addresses", func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&executeCalls, 1)
		w.WriteHeader(http.StatusUnprocessableEntity)
		fmt.Fprint(w, `{"errors":{"zip":"is required"}}`)
	})
	fx := newExecutorFixture(t, mux)

	_, err := fx.executor.Execute(context.Background(),
		"POST", "/addresses", map[string]interface{}{"city": "Oslo"}, nil,
		identity.Descriptor{CustomerID: "42"})
	require.Error(t, err)
	require.True(t, errors.IsKind(err, errors.KindValidation))
	require.Equal(t, int32(1), atomic.LoadInt32(&executeCalls))

	// The credential survives a non-expiry failure.
	_, ok := fx.store.Get("42")
	require.True(t, ok)
}

func TestExecuteRejectsBadMethodAndPath(t *testing.T) {
	fx := newExecutorFixture(t, http.NewServeMux())

	_, err := fx.executor.Execute(context.Background(),
		"PATCH", "/orders", nil, nil, identity.Descriptor{CustomerID: "42"})
	require.Error(t, err)
	require.True(t, errors.IsKind(err, errors.KindValidation))

	_, err = fx.executor.Execute(context.Background(),
		"GET", "orders", nil, nil, identity.Descriptor{CustomerID: "42"})
	require.Error(t, err)
	require.True(t, errors.IsKind(err, errors.KindValidation))
}

func TestExecuteExpandsCustomerIDPlaceholder(t *testing.T) {
	var gotPath string
	mux := http.NewServeMux()
	mux.HandleFunc("/customers/42/sessions", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"customer_session":{"token":"tok_mint_000001"}}`)
	})
	mux.HandleFunc("/customers/42", func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		fmt.Fprint(w, `{"customer":{"id":42}}`)
	})
	fx := newExecutorFixture(t, mux)

	_, err := fx.executor.Execute(context.Background(),
		"GET", "/customers/{customer_id}", nil, nil, identity.Descriptor{CustomerID: "42"})
	require.NoError(t, err)
	require.Equal(t, "/customers/42", gotPath)
}

func TestExecutePlaceholderNeedsCustomerIdentity(t *testing.T) {
	fx := newExecutorFixture(t, http.NewServeMux())

	_, err := fx.executor.Execute(context.Background(),
		"GET", "/customers/{customer_id}", nil, nil,
		identity.Descriptor{SessionToken: "tok_explicit_12345"})
	require.Error(t, err)
	require.True(t, errors.IsKind(err, errors.KindValidation))
}

func TestExecuteEndToEndEmailFlow(t *testing.T) {
	var lookupCalls, sessionCalls int32
	mux := http.NewServeMux()
	mux.HandleFunc("/customers", func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&lookupCalls, 1)
		require.Equal(t, "a@b.com", r.URL.Query().Get("email"))
		fmt.Fprint(w, `{"customers":[{"id":42,"email":"a@b.com"}]}`)
	})
	mux.HandleFunc("/customers/42/sessions", func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&sessionCalls, 1)
		fmt.Fprint(w, `{"customer_session":{"token":"tok_abc123xyz0"}}`)
	})
	mux.HandleFunc("/subscriptions", func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "tok_abc123xyz0", r.Header.Get("X-Recharge-Access-Token"))
		fmt.Fprint(w, `{"subscriptions":[]}`)
	})
	fx := newExecutorFixture(t, mux)

	desc := identity.Descriptor{CustomerEmail: "a@b.com"}
	_, err := fx.executor.Execute(context.Background(), "GET", "/subscriptions", nil, nil, desc)
	require.NoError(t, err)

	stats := fx.store.Stats()
	require.Equal(t, 1, stats.Count)
	require.Equal(t, 1, stats.EmailMappings)

	// Second call with the same email reuses everything.
	_, err = fx.executor.Execute(context.Background(), "GET", "/subscriptions", nil, nil, desc)
	require.NoError(t, err)
	require.Equal(t, int32(1), atomic.LoadInt32(&lookupCalls))
	require.Equal(t, int32(1), atomic.LoadInt32(&sessionCalls))
}
