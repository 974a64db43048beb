package errors

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"
)

type fakeTimeoutErr struct{}

func (fakeTimeoutErr) Error() string   { return "i/o timeout" }
func (fakeTimeoutErr) Timeout() bool   { return true }
func (fakeTimeoutErr) Temporary() bool { return true }

func TestClassifyNetworkTimeout(t *testing.T) {
	err := ClassifyNetwork("GET", "/subscriptions", fakeTimeoutErr{})
	require.Equal(t, KindTransport, err.Kind)
	require.Equal(t, "request_timeout", err.Code)
	require.Equal(t, true, err.Details["timeout"])
	require.False(t, err.Expiry)
	require.True(t, err.IsRetryable())
}

func TestClassifyNetworkDeadlineExceeded(t *testing.T) {
	err := ClassifyNetwork("GET", "/orders", fmt.Errorf("do request: %w", context.DeadlineExceeded))
	require.Equal(t, "request_timeout", err.Code)
	require.Equal(t, true, err.Details["timeout"])
}

func TestClassifyNetworkConnectionRefused(t *testing.T) {
	err := ClassifyNetwork("POST", "/onetimes", errors.New("dial tcp 127.0.0.1:443: connect: connection refused"))
	require.Equal(t, "connection_error", err.Code)
	require.Equal(t, false, err.Details["timeout"])
}

func TestClassifyNetworkDNS(t *testing.T) {
	err := ClassifyNetwork("GET", "/customer", errors.New("dial tcp: lookup api.rechargeapps.com: no such host"))
	require.Equal(t, "dns_error", err.Code)
}

func TestClassifyNetworkCanceled(t *testing.T) {
	err := ClassifyNetwork("GET", "/customer", context.Canceled)
	require.Equal(t, "request_canceled", err.Code)
}

func TestClassifyNetworkPreservesCause(t *testing.T) {
	cause := errors.New("connection reset by peer")
	err := ClassifyNetwork("GET", "/charges", cause)
	require.ErrorIs(t, err, cause)
}
