// Package gateway wraps the HTTP transport used by the desk client. It tags
// every request with the tenant id, decodes response bodies and normalizes
// every failure into *APIError.
//
// There is no retry and no timeout at this layer; callers that need
// resilience add it above (or configure the *http.Client they pass in).
package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/hedgeshield/riskdesk/internal/metrics"
	"github.com/hedgeshield/riskdesk/internal/tenant"
)

// Caller issues one API call and returns the decoded JSON body.
type Caller interface {
	Call(ctx context.Context, method, path string, body any) (json.RawMessage, error)
}

// Client is the production Caller.
type Client struct {
	baseURL string
	tenant  *tenant.Context
	http    *http.Client
	logger  *zap.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient overrides http.DefaultClient.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

// WithLogger sets the logger; the default discards.
func WithLogger(l *zap.Logger) Option {
	return func(c *Client) { c.logger = l }
}

// New creates a Client for baseURL (e.g. http://localhost:8080). Paths passed
// to Call are appended to it.
func New(baseURL string, tc *tenant.Context, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		tenant:  tc,
		http:    http.DefaultClient,
		logger:  zap.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Call performs one request. The tenant header is the id captured on ctx
// (tenant.WithID) when present, otherwise the current tenant.
func (c *Client) Call(ctx context.Context, method, path string, body any) (json.RawMessage, error) {
	start := time.Now()
	raw, status, err := c.do(ctx, method, path, body)

	outcome := "ok"
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		outcome = "api_error"
		if apiErr.Transport() {
			outcome = "transport_error"
		}
	}
	metrics.GatewayRequests.WithLabelValues(method, path, outcome).Inc()
	metrics.GatewayLatency.WithLabelValues(method, path).Observe(time.Since(start).Seconds())

	c.logger.Debug("api call",
		zap.String("method", method),
		zap.String("path", path),
		zap.Int("status", status),
		zap.String("outcome", outcome),
		zap.Duration("took", time.Since(start)),
	)
	return raw, err
}

func (c *Client) do(ctx context.Context, method, path string, body any) (json.RawMessage, int, error) {
	id, ok := tenant.FromContext(ctx)
	if !ok && c.tenant != nil {
		id = c.tenant.Get()
	}

	var r io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return nil, 0, &APIError{Message: "gateway: encode request body: " + err.Error(), Err: err}
		}
		r = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, r)
	if err != nil {
		return nil, 0, &APIError{Message: err.Error(), Err: err}
	}
	req.Header.Set(tenant.Header, id)
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, 0, &APIError{Message: err.Error(), Err: err}
	}
	defer func() { _ = resp.Body.Close() }()

	b, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, resp.StatusCode, &APIError{Status: resp.StatusCode, Message: err.Error(), Err: err}
	}
	text := string(b)

	// Decode the full text first; a decode failure becomes a synthetic
	// {"error": <raw text>} payload and is always an error. A blank body
	// decodes as null.
	var payload any
	decoded := true
	if strings.TrimSpace(text) != "" {
		if err := json.Unmarshal(b, &payload); err != nil {
			payload = map[string]any{"error": text}
			decoded = false
		}
	}

	if !success(resp.StatusCode) || !decoded {
		return nil, resp.StatusCode, &APIError{
			Status:  resp.StatusCode,
			Message: errorMessage(resp.StatusCode, payload),
			Body:    text,
		}
	}

	if payload == nil {
		return json.RawMessage("null"), resp.StatusCode, nil
	}
	return json.RawMessage(b), resp.StatusCode, nil
}

// Items fetches a list endpoint shaped {items: [...]}. A missing or null
// items field yields an empty, non-nil slice. A body that is not a JSON
// object, including an empty one, or whose items do not decode as T is an
// *APIError with the raw text attached.
func Items[T any](ctx context.Context, c Caller, path string) ([]T, error) {
	raw, err := c.Call(ctx, http.MethodGet, path, nil)
	if err != nil {
		return nil, err
	}

	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || trimmed[0] != '{' {
		return nil, shapeError(path, raw, "expected a JSON object")
	}

	var env struct {
		Items []T `json:"items"`
	}
	if err := json.Unmarshal(raw, &env); err != nil {
		return nil, shapeError(path, raw, err.Error())
	}
	if env.Items == nil {
		env.Items = []T{}
	}
	return env.Items, nil
}

// shapeError reports a successful response whose body is not the expected
// shape. Caller only hands back 2xx bodies, and list endpoints answer 200.
func shapeError(path string, raw json.RawMessage, reason string) *APIError {
	return &APIError{
		Status:  http.StatusOK,
		Message: fmt.Sprintf("gateway: decode %s: %s", path, reason),
		Body:    string(raw),
	}
}
