package mcp

import (
	"bytes"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"github.com/tidwall/gjson"

	"recharge-mcp-go/internal/tools"
	"recharge-mcp-go/internal/upstream"
)

func newTestEndpoint(t *testing.T, upstreamHandler http.Handler) *httptest.Server {
	t.Helper()
	gin.SetMode(gin.TestMode)

	api := httptest.NewServer(upstreamHandler)
	t.Cleanup(api.Close)

	client := upstream.New(upstream.Options{
		BaseURL:  api.URL,
		AdminKey: "sk_admin_123456789",
		RPS:      1000,
		Burst:    1000,
	})
	broker := upstream.NewBroker(upstream.BrokerOptions{Client: client})
	registry := tools.NewRegistry(broker, nil)

	engine := gin.New()
	engine.POST("/mcp", NewHandler(registry).Handle)
	srv := httptest.NewServer(engine)
	t.Cleanup(srv.Close)
	return srv
}

func rpc(t *testing.T, srv *httptest.Server, body string) (int, string) {
	t.Helper()
	resp, err := http.Post(srv.URL+"/mcp", "application/json", bytes.NewReader([]byte(body)))
	require.NoError(t, err)
	defer resp.Body.Close()
	var buf bytes.Buffer
	_, err = buf.ReadFrom(resp.Body)
	require.NoError(t, err)
	return resp.StatusCode, buf.String()
}

func TestInitializeHandshake(t *testing.T) {
	srv := newTestEndpoint(t, http.NewServeMux())

	status, body := rpc(t, srv, `{"jsonrpc":"2.0","id":1,"method":"initialize","params":{}}`)
	require.Equal(t, http.StatusOK, status)
	require.Equal(t, "2.0", gjson.Get(body, "jsonrpc").String())
	require.Equal(t, int64(1), gjson.Get(body, "id").Int())
	require.Equal(t, "2024-11-05", gjson.Get(body, "result.protocolVersion").String())
	require.Equal(t, "recharge-storefront-mcp", gjson.Get(body, "result.serverInfo.name").String())
	require.False(t, gjson.Get(body, "error").Exists())
}

func TestInitializedNotificationIsAccepted(t *testing.T) {
	srv := newTestEndpoint(t, http.NewServeMux())

	status, body := rpc(t, srv, `{"jsonrpc":"2.0","method":"notifications/initialized"}`)
	require.Equal(t, http.StatusAccepted, status)
	require.Empty(t, body)
}

func TestToolsListShapesSchemas(t *testing.T) {
	srv := newTestEndpoint(t, http.NewServeMux())

	_, body := rpc(t, srv, `{"jsonrpc":"2.0","id":"list-1","method":"tools/list"}`)
	toolsArr := gjson.Get(body, "result.tools")
	require.True(t, toolsArr.IsArray())
	require.GreaterOrEqual(t, len(toolsArr.Array()), 40)

	first := toolsArr.Array()[0]
	require.NotEmpty(t, first.Get("name").String())
	require.Equal(t, "object", first.Get("inputSchema.type").String())
}

func TestToolsCallRoundTrip(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/customers/42/sessions", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"customer_session":{"token":"tok_mint_000001"}}`)
	})
	mux.HandleFunc("/subscriptions", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"subscriptions":[]}`)
	})
	srv := newTestEndpoint(t, mux)

	_, body := rpc(t, srv, `{"jsonrpc":"2.0","id":2,"method":"tools/call",
		"params":{"name":"list_subscriptions","arguments":{"customer_id":"42"}}}`)
	require.False(t, gjson.Get(body, "error").Exists())
	require.False(t, gjson.Get(body, "result.isError").Bool())
	require.JSONEq(t, `{"subscriptions":[]}`,
		gjson.Get(body, "result.content.0.text").String())
}

func TestToolsCallFailureBecomesToolResult(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/customers/42/sessions", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"customer_session":{"token":"tok_mint_000001"}}`)
	})
	mux.HandleFunc("/orders/9", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		fmt.Fprint(w, `{"error":"Order not found"}`)
	})
	srv := newTestEndpoint(t, mux)

	_, body := rpc(t, srv, `{"jsonrpc":"2.0","id":3,"method":"tools/call",
		"params":{"name":"get_order","arguments":{"customer_id":"42","order_id":"9"}}}`)
	require.False(t, gjson.Get(body, "error").Exists(), "domain failure must not be a protocol error")
	require.True(t, gjson.Get(body, "result.isError").Bool())
	require.Contains(t, gjson.Get(body, "result.content.0.text").String(), "Order not found")
}

func TestProtocolErrors(t *testing.T) {
	srv := newTestEndpoint(t, http.NewServeMux())

	_, body := rpc(t, srv, `{not json`)
	require.Equal(t, int64(-32700), gjson.Get(body, "error.code").Int())

	_, body = rpc(t, srv, `{"jsonrpc":"1.0","id":1,"method":"ping"}`)
	require.Equal(t, int64(-32600), gjson.Get(body, "error.code").Int())

	_, body = rpc(t, srv, `{"jsonrpc":"2.0","id":1,"method":"resources/list"}`)
	require.Equal(t, int64(-32601), gjson.Get(body, "error.code").Int())

	_, body = rpc(t, srv, `{"jsonrpc":"2.0","id":1,"method":"tools/call","params":{}}`)
	require.Equal(t, int64(-32602), gjson.Get(body, "error.code").Int())

	_, body = rpc(t, srv, `{"jsonrpc":"2.0","id":1,"method":"tools/call",
		"params":{"name":"no_such_tool"}}`)
	require.Equal(t, int64(-32602), gjson.Get(body, "error.code").Int())
}

func TestPing(t *testing.T) {
	srv := newTestEndpoint(t, http.NewServeMux())

	_, body := rpc(t, srv, `{"jsonrpc":"2.0","id":7,"method":"ping"}`)
	require.False(t, gjson.Get(body, "error").Exists())
	require.True(t, gjson.Get(body, "result").Exists())
}
