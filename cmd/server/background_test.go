package main

import (
	"os"
	"path/filepath"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"recharge-mcp-go/internal/config"
	"recharge-mcp-go/internal/upstream"
)

func newSweepFixture(t *testing.T, maxAgeMinutes int) (*config.Manager, *upstream.Broker) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	contents := "session_max_age_minutes: " + strconv.Itoa(maxAgeMinutes) + "\n"
	require.NoError(t, os.WriteFile(path, []byte(contents), 0o600))
	mgr, err := config.NewManager(path, nil)
	require.NoError(t, err)

	client := upstream.New(upstream.Options{
		BaseURL:  "http://127.0.0.1:0",
		AdminKey: "sk_admin_123456789",
		RPS:      1000,
		Burst:    1000,
	})
	broker := upstream.NewBroker(upstream.BrokerOptions{Client: client})
	return mgr, broker
}

func TestSweepRemovesExpiredEntries(t *testing.T) {
	mgr, broker := newSweepFixture(t, 1)
	st := broker.Store()
	require.NoError(t, st.Put("cust_old", "tok_abcdef123456", "old@example.com"))

	// Nothing is old enough yet.
	require.NoError(t, sweepCredentials(mgr, broker))
	require.Equal(t, 1, broker.CredentialStats().Count)

	require.Equal(t, 1, st.ClearOlderThan(-time.Second), "sanity: entry clears with negative age")
}

func TestSweepDisabledWhenMaxAgeZero(t *testing.T) {
	mgr, broker := newSweepFixture(t, 0)
	require.NoError(t, broker.Store().Put("cust_1", "tok_abcdef123456", "a@example.com"))

	require.NoError(t, sweepCredentials(mgr, broker))
	require.Equal(t, 1, broker.CredentialStats().Count)
}
