package management

import (
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"github.com/tidwall/gjson"

	"recharge-mcp-go/internal/config"
	"recharge-mcp-go/internal/events"
	"recharge-mcp-go/internal/upstream"
	"recharge-mcp-go/internal/usage"
)

func newTestHandler(t *testing.T) (*gin.Engine, *Handler) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("port: 9000\n"), 0o600))
	mgr, err := config.NewManager(path, nil)
	require.NoError(t, err)

	client := upstream.New(upstream.Options{
		BaseURL:  "http://127.0.0.1:0",
		AdminKey: "sk_admin_123456789",
		RPS:      1000,
		Burst:    1000,
	})
	broker := upstream.NewBroker(upstream.BrokerOptions{Client: client})
	require.NoError(t, broker.Store().Put("cust_1", "tok_abcdef123456", "user@example.com"))

	h := NewHandler(Options{
		ConfigManager: mgr,
		Broker:        broker,
		Usage:         usage.NewTracker(),
		Hub:           events.NewHub(),
	})
	engine := gin.New()
	h.RegisterRoutes(engine.Group("/api/management"))
	return engine, h
}

func request(e *gin.Engine, method, path, body string) *httptest.ResponseRecorder {
	var r *http.Request
	if body == "" {
		r = httptest.NewRequest(method, path, nil)
	} else {
		r = httptest.NewRequest(method, path, strings.NewReader(body))
		r.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	e.ServeHTTP(w, r)
	return w
}

func TestCredentialStatsEndpoint(t *testing.T) {
	e, _ := newTestHandler(t)

	w := request(e, http.MethodGet, "/api/management/credentials/stats", "")
	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, int64(1), gjson.Get(w.Body.String(), "count").Int())
	require.Equal(t, int64(1), gjson.Get(w.Body.String(), "email_mappings").Int())
}

func TestPurgeEndpoint(t *testing.T) {
	e, h := newTestHandler(t)

	w := request(e, http.MethodPost, "/api/management/credentials/purge", `{"all":true,"reason":"rotation"}`)
	require.Equal(t, http.StatusOK, w.Code)
	body := w.Body.String()
	require.Equal(t, "all", gjson.Get(body, "mode").String())
	require.Equal(t, int64(1), gjson.Get(body, "cleared").Int())
	require.NotEmpty(t, gjson.Get(body, "audit_id").String())
	require.Zero(t, h.broker.CredentialStats().Count)
}

func TestPurgeRequiresSelector(t *testing.T) {
	e, _ := newTestHandler(t)

	w := request(e, http.MethodPost, "/api/management/credentials/purge", `{}`)
	require.Equal(t, http.StatusBadRequest, w.Code)
	require.Contains(t, w.Body.String(), "purge requires")
}

func TestSystemEndpoint(t *testing.T) {
	e, _ := newTestHandler(t)

	w := request(e, http.MethodGet, "/api/management/system", "")
	require.Equal(t, http.StatusOK, w.Code)
	require.NotEmpty(t, gjson.Get(w.Body.String(), "go_version").String())
}

func TestUsageEndpoint(t *testing.T) {
	e, h := newTestHandler(t)
	h.usage.Record("get_customer", true, 0)

	w := request(e, http.MethodGet, "/api/management/usage", "")
	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, int64(1), gjson.Get(w.Body.String(), "stats.total_calls").Int())
}

func TestConfigRedactsSecrets(t *testing.T) {
	e, h := newTestHandler(t)
	require.NoError(t, h.cfg.Update(func(fc *config.FileConfig) error {
		fc.RechargeAPIKey = "sk_live_supersecret"
		return nil
	}))

	w := request(e, http.MethodGet, "/api/management/config", "")
	require.Equal(t, http.StatusOK, w.Code)
	require.NotContains(t, w.Body.String(), "sk_live_supersecret")
	require.True(t, gjson.Get(w.Body.String(), "upstream.api_key_set").Bool())
}

func TestConfigPartialUpdate(t *testing.T) {
	e, h := newTestHandler(t)

	w := request(e, http.MethodPut, "/api/management/config", `{"session_max_age_minutes":5,"rate_limit_enabled":false}`)
	require.Equal(t, http.StatusOK, w.Code)

	cfg := h.cfg.Current()
	require.Equal(t, 5.0, cfg.Credential.SessionMaxAge.Minutes())
	require.False(t, cfg.RateLimit.Enabled)
}

func TestConfigUpdateRejectsInvalidValues(t *testing.T) {
	e, _ := newTestHandler(t)

	w := request(e, http.MethodPut, "/api/management/config", `{"session_max_age_minutes":-2}`)
	require.Equal(t, http.StatusBadRequest, w.Code)
}
