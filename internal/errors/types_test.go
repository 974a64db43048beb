package errors

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestIsKindThroughWrapping(t *testing.T) {
	base := New(KindSecurity, "ambiguous identity")
	wrapped := fmt.Errorf("resolve identity: %w", base)
	require.True(t, IsKind(wrapped, KindSecurity))
	require.False(t, IsKind(wrapped, KindNotFound))
}

func TestIsExpiryOnNonDomainError(t *testing.T) {
	require.False(t, IsExpiry(fmt.Errorf("plain error")))
	require.False(t, IsExpiry(nil))
}

func TestErrorStringIncludesStatus(t *testing.T) {
	err := New(KindAPI, "boom").WithStatus(http.StatusBadGateway)
	require.Contains(t, err.Error(), "502")
	require.Contains(t, err.Error(), "boom")
}

func TestAsDomain(t *testing.T) {
	base := Newf(KindNotFound, "no customer found for %s", "a@b.com").WithStatus(http.StatusNotFound)
	de, ok := AsDomain(fmt.Errorf("lookup: %w", base))
	require.True(t, ok)
	require.Equal(t, KindNotFound, de.Kind)

	_, ok = AsDomain(fmt.Errorf("not a domain error"))
	require.False(t, ok)
}

func TestRemediationHints(t *testing.T) {
	require.Contains(t, New(KindConfiguration, "").RemediationHint(), "RECHARGE_API_KEY")
	require.Contains(t, New(KindAPI, "").WithStatus(http.StatusUnauthorized).RemediationHint(), "credential")
	require.Contains(t, New(KindAPI, "").WithStatus(http.StatusTooManyRequests).RemediationHint(), "back off")
	require.Contains(t, New(KindAPI, "").WithStatus(http.StatusBadGateway).RemediationHint(), "Transient")
	timeoutErr := New(KindTransport, "").WithDetails(map[string]interface{}{"timeout": true})
	require.Contains(t, timeoutErr.RemediationHint(), "did not respond")
}
