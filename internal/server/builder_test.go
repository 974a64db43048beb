package server

import (
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"

	"recharge-mcp-go/internal/config"
	"recharge-mcp-go/internal/events"
	"recharge-mcp-go/internal/tools"
	"recharge-mcp-go/internal/upstream"
	"recharge-mcp-go/internal/usage"
)

func buildTestEngine(t *testing.T, fileContents string) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(fileContents), 0o600))
	mgr, err := config.NewManager(path, nil)
	require.NoError(t, err)

	client := upstream.New(upstream.Options{
		BaseURL:  "http://127.0.0.1:0",
		AdminKey: "sk_admin_123456789",
		RPS:      1000,
		Burst:    1000,
	})
	broker := upstream.NewBroker(upstream.BrokerOptions{Client: client})
	return BuildEngine(mgr.Current(), Dependencies{
		ConfigManager: mgr,
		Broker:        broker,
		Registry:      tools.NewRegistry(broker, nil),
		Usage:         usage.NewTracker(),
		Hub:           events.NewHub(),
	})
}

func serve(e *gin.Engine, req *http.Request) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	e.ServeHTTP(w, req)
	return w
}

func TestHealthAndMetricsEndpoints(t *testing.T) {
	e := buildTestEngine(t, "debug: true\n")

	w := serve(e, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, "ok", w.Body.String())

	w = serve(e, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, w.Code)
	require.Contains(t, w.Body.String(), "recharge_mcp_")
}

func TestMCPEndpointRequiresConfiguredToken(t *testing.T) {
	e := buildTestEngine(t, "mcp_auth_token: tok_protect_12345\n")

	req := httptest.NewRequest(http.MethodPost, "/mcp",
		strings.NewReader(`{"jsonrpc":"2.0","id":1,"method":"ping"}`))
	require.Equal(t, http.StatusUnauthorized, serve(e, req).Code)

	req = httptest.NewRequest(http.MethodPost, "/mcp",
		strings.NewReader(`{"jsonrpc":"2.0","id":1,"method":"ping"}`))
	req.Header.Set("Authorization", "Bearer tok_protect_12345")
	require.Equal(t, http.StatusOK, serve(e, req).Code)
}

func TestMCPEndpointOpenWithoutToken(t *testing.T) {
	e := buildTestEngine(t, "debug: true\n")

	req := httptest.NewRequest(http.MethodPost, "/mcp",
		strings.NewReader(`{"jsonrpc":"2.0","id":1,"method":"ping"}`))
	require.Equal(t, http.StatusOK, serve(e, req).Code)
}

func TestManagementDeniedForRemoteClients(t *testing.T) {
	e := buildTestEngine(t, "management_key: mgmt_key_123456\n")

	// httptest requests default to a non-loopback RemoteAddr.
	req := httptest.NewRequest(http.MethodGet, "/api/management/system", nil)
	req.Header.Set("Authorization", "Bearer mgmt_key_123456")
	require.Equal(t, http.StatusForbidden, serve(e, req).Code)
}

func TestManagementLoopbackWithKey(t *testing.T) {
	e := buildTestEngine(t, "management_key: mgmt_key_123456\n")

	req := httptest.NewRequest(http.MethodGet, "/api/management/system", nil)
	req.RemoteAddr = "127.0.0.1:54321"
	require.Equal(t, http.StatusUnauthorized, serve(e, req).Code, "missing key")

	req = httptest.NewRequest(http.MethodGet, "/api/management/system", nil)
	req.RemoteAddr = "127.0.0.1:54321"
	req.Header.Set("Authorization", "Bearer mgmt_key_123456")
	w := serve(e, req)
	require.Equal(t, http.StatusOK, w.Code)
	require.Contains(t, w.Body.String(), "go_version")
}

func TestManagementClosedWithoutConfiguredKey(t *testing.T) {
	e := buildTestEngine(t, "debug: true\n")

	req := httptest.NewRequest(http.MethodGet, "/api/management/system", nil)
	req.RemoteAddr = "127.0.0.1:54321"
	require.Equal(t, http.StatusForbidden, serve(e, req).Code)
}
