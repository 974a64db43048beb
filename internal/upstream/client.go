// Package upstream talks to the Recharge Storefront API: the low-level
// HTTP client, the privileged customer lookup and session creation
// calls, and the resilient executor that recovers from credential
// expiry.
package upstream

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/tidwall/gjson"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/time/rate"

	"recharge-mcp-go/internal/constants"
	"recharge-mcp-go/internal/errors"
	"recharge-mcp-go/internal/monitoring"
	"recharge-mcp-go/internal/monitoring/tracing"
)

// Options configures a Client. Zero values fall back to the defaults in
// the constants package.
type Options struct {
	BaseURL    string
	APIVersion string
	// AdminKey is the privileged store credential, used only for
	// customer lookup and session minting, never for tool traffic.
	AdminKey  string
	ProxyURL  string
	UserAgent string

	RequestTimeout        time.Duration
	DialTimeout           time.Duration
	TLSHandshakeTimeout   time.Duration
	ResponseHeaderTimeout time.Duration
	ExpectContinueTimeout time.Duration

	// Outbound rate limit toward the Recharge API.
	RPS   float64
	Burst int
}

// Request describes one Recharge API call. Body may be nil, a
// json.RawMessage, a []byte, or any JSON-serializable value.
type Request struct {
	Method string
	Path   string
	Query  url.Values
	Body   interface{}
	Token  string
}

// Client is the HTTP layer under the executor. It never follows
// redirects (an unexpected 3xx is a classified failure) and paces all
// outbound calls through a shared limiter.
type Client struct {
	cli        *http.Client
	baseURL    string
	apiVersion string
	adminKey   string
	userAgent  string
	limiter    *rate.Limiter
}

func durationOrDefault(d, fallback time.Duration) time.Duration {
	if d > 0 {
		return d
	}
	return fallback
}

// New builds a Client from opts.
func New(opts Options) *Client {
	dialTO := durationOrDefault(opts.DialTimeout, constants.DefaultDialTimeout)
	tlsTO := durationOrDefault(opts.TLSHandshakeTimeout, constants.DefaultTLSHandshakeTimeout)
	hdrTO := durationOrDefault(opts.ResponseHeaderTimeout, constants.DefaultResponseHeaderTimeout)
	expTO := durationOrDefault(opts.ExpectContinueTimeout, constants.DefaultExpectContinueTimeout)

	tr := &http.Transport{
		Proxy: getProxyFunc(opts.ProxyURL),
		DialContext: (&net.Dialer{
			Timeout:   dialTO,
			KeepAlive: constants.DefaultKeepAlive,
		}).DialContext,
		TLSHandshakeTimeout:   tlsTO,
		ResponseHeaderTimeout: hdrTO,
		ExpectContinueTimeout: expTO,
		MaxIdleConns:          constants.DefaultMaxIdleConns,
		MaxIdleConnsPerHost:   constants.DefaultMaxIdleConnsPerHost,
		IdleConnTimeout:       constants.DefaultIdleConnTimeout,
	}

	baseURL := strings.TrimRight(strings.TrimSpace(opts.BaseURL), "/")
	if baseURL == "" {
		baseURL = constants.DefaultAPIBaseURL
	}
	apiVersion := strings.TrimSpace(opts.APIVersion)
	if apiVersion == "" {
		apiVersion = constants.DefaultAPIVersion
	}
	userAgent := opts.UserAgent
	if userAgent == "" {
		userAgent = constants.MCPServerName + "/" + constants.Version
	}
	rps := opts.RPS
	if rps <= 0 {
		rps = constants.DefaultUpstreamRPS
	}
	burst := opts.Burst
	if burst <= 0 {
		burst = constants.DefaultUpstreamBurst
	}

	return &Client{
		cli: &http.Client{
			Transport: tr,
			Timeout:   durationOrDefault(opts.RequestTimeout, constants.DefaultRequestTimeout),
			CheckRedirect: func(*http.Request, []*http.Request) error {
				return http.ErrUseLastResponse
			},
		},
		baseURL:    baseURL,
		apiVersion: apiVersion,
		adminKey:   opts.AdminKey,
		userAgent:  userAgent,
		limiter:    rate.NewLimiter(rate.Limit(rps), burst),
	}
}

// getProxyFunc returns the proxy selection based on configuration,
// falling back to environment proxy variables.
func getProxyFunc(proxyURL string) func(*http.Request) (*url.URL, error) {
	if proxyURL != "" {
		if parsed, err := url.Parse(proxyURL); err == nil {
			return http.ProxyURL(parsed)
		}
	}
	return http.ProxyFromEnvironment
}

// Do issues one request and returns the response payload, or a
// classified domain error. Success payloads are guaranteed to be valid
// JSON; a bodyless success (204/205) normalizes to an empty object.
func (c *Client) Do(ctx context.Context, req Request) ([]byte, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, errors.New(errors.KindTransport,
			"canceled while waiting for the upstream rate limit").
			WithCode("request_canceled").WithCause(err)
	}

	u, err := c.buildURL(req.Path, req.Query)
	if err != nil {
		return nil, err
	}

	var bodyReader io.Reader
	if req.Body != nil {
		payload, merr := marshalBody(req.Body)
		if merr != nil {
			return nil, merr
		}
		bodyReader = bytes.NewReader(payload)
	}

	httpReq, err := http.NewRequestWithContext(ctx, req.Method, u, bodyReader)
	if err != nil {
		return nil, errors.Newf(errors.KindValidation,
			"could not build request %s %s", req.Method, req.Path).WithCause(err)
	}
	httpReq.Header.Set("Accept", "application/json")
	if bodyReader != nil {
		httpReq.Header.Set("Content-Type", "application/json")
	}
	httpReq.Header.Set("User-Agent", c.userAgent)
	httpReq.Header.Set(constants.HeaderAPIVersion, c.apiVersion)
	if req.Token != "" {
		httpReq.Header.Set(constants.HeaderAccessToken, req.Token)
	}

	spanCtx, span := tracing.StartSpan(ctx, "upstream", "Recharge.Do",
		trace.WithAttributes(
			attribute.String("http.method", req.Method),
			attribute.String("http.route", req.Path),
		))
	defer span.End()
	httpReq = httpReq.WithContext(spanCtx)

	start := time.Now()
	resp, err := c.cli.Do(httpReq)
	monitoring.UpstreamRequestDuration.WithLabelValues(req.Method).Observe(time.Since(start).Seconds())
	if err != nil {
		derr := errors.ClassifyNetwork(req.Method, req.Path, err)
		monitoring.UpstreamRequestsTotal.WithLabelValues(req.Method, "transport").Inc()
		monitoring.UpstreamErrors.WithLabelValues(derr.Code).Inc()
		span.RecordError(derr)
		span.SetStatus(codes.Error, derr.Message)
		return nil, derr
	}
	defer resp.Body.Close()

	raw, readErr := io.ReadAll(resp.Body)
	if readErr != nil {
		derr := errors.New(errors.KindTransport, "failed reading the response body").
			WithCode("read_error").WithCause(readErr)
		monitoring.UpstreamErrors.WithLabelValues(derr.Code).Inc()
		span.RecordError(derr)
		span.SetStatus(codes.Error, derr.Message)
		return nil, derr
	}

	monitoring.UpstreamRequestsTotal.WithLabelValues(req.Method, statusClass(resp.StatusCode)).Inc()
	span.SetAttributes(attribute.Int("http.status_code", resp.StatusCode))

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		span.SetStatus(codes.Ok, "")
		return normalizePayload(resp.StatusCode, raw, req.Method, req.Path)
	}

	derr := errors.ClassifyHTTP(req.Method, req.Path, resp.StatusCode, resp.Header, raw)
	monitoring.UpstreamErrors.WithLabelValues(string(derr.Kind)).Inc()
	span.SetStatus(codes.Error, derr.Message)
	return nil, derr
}

func (c *Client) buildURL(path string, query url.Values) (string, error) {
	if strings.TrimSpace(path) == "" {
		return "", errors.New(errors.KindValidation, "request path must not be empty")
	}
	if !strings.HasPrefix(path, "/") {
		return "", errors.Newf(errors.KindValidation, "request path must be absolute, got %q", path)
	}
	u := c.baseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}
	return u, nil
}

func marshalBody(body interface{}) ([]byte, error) {
	switch b := body.(type) {
	case json.RawMessage:
		return b, nil
	case []byte:
		return b, nil
	default:
		payload, err := json.Marshal(b)
		if err != nil {
			return nil, errors.New(errors.KindValidation,
				"request body is not JSON-serializable").WithCause(err)
		}
		return payload, nil
	}
}

func normalizePayload(status int, body []byte, method, path string) ([]byte, error) {
	if status == http.StatusNoContent || status == http.StatusResetContent {
		return []byte("{}"), nil
	}
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 || !gjson.ValidBytes(trimmed) {
		return nil, errors.Newf(errors.KindAPI,
			"%s %s returned a malformed or empty payload", method, path).
			WithStatus(status).WithCode("invalid_response")
	}
	return trimmed, nil
}

func statusClass(status int) string {
	switch {
	case status >= 500:
		return "5xx"
	case status >= 400:
		return "4xx"
	case status >= 300:
		return "3xx"
	default:
		return "2xx"
	}
}

// sessionTokenPaths are the spots a session create response may carry
// the minted token, in priority order.
var sessionTokenPaths = []string{
	"customer_session.token",
	"customer_session.apiToken",
	"token",
	"session_token",
	"apiToken",
}

// FindCustomerIDByEmail looks a customer up by email with the
// privileged key. An empty ID with nil error means no match.
func (c *Client) FindCustomerIDByEmail(ctx context.Context, email string) (string, error) {
	q := url.Values{}
	q.Set("email", email)
	payload, err := c.Do(ctx, Request{
		Method: http.MethodGet,
		Path:   "/customers",
		Query:  q,
		Token:  c.adminKey,
	})
	if err != nil {
		return "", err
	}
	id := gjson.GetBytes(payload, "customers.0.id")
	if !id.Exists() {
		return "", nil
	}
	return id.String(), nil
}

// CreateCustomerSession mints a session token for the customer with
// the privileged key.
func (c *Client) CreateCustomerSession(ctx context.Context, customerID string) (string, error) {
	payload, err := c.Do(ctx, Request{
		Method: http.MethodPost,
		Path:   "/customers/" + url.PathEscape(customerID) + "/sessions",
		Body:   map[string]interface{}{},
		Token:  c.adminKey,
	})
	if err != nil {
		return "", err
	}
	for _, path := range sessionTokenPaths {
		if v := gjson.GetBytes(payload, path); v.Exists() && strings.TrimSpace(v.String()) != "" {
			return strings.TrimSpace(v.String()), nil
		}
	}
	return "", errors.New(errors.KindAPI,
		"session creation response did not contain a token").
		WithCode("invalid_response").
		WithDetails(map[string]interface{}{"customer_id": customerID})
}
