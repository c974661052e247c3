// Package gateway is the HTTP client for the proxy backend's REST API.
//
// The console never computes metrics itself; every number on the dashboard
// and every admin-panel object comes from the proxy over JSON endpoints.
// This package owns the transport concerns: bearer auth, timeouts, error
// mapping, collapsing of concurrent duplicate fetches, and the live spend
// event stream.
package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"
)

// Client talks to one proxy backend. It is safe for concurrent use; a single
// Client is shared by all request handlers.
type Client struct {
	baseURL string
	token   string
	httpc   *http.Client
	log     *zap.Logger
	flight  *Deduper
}

// Option customizes a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying HTTP client. Tests use this to
// point the Client at an httptest server with short timeouts.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpc = hc }
}

// WithDeduper injects a shared request deduplicator. By default each Client
// owns its own; injecting one lets tests observe collapse behavior.
func WithDeduper(d *Deduper) Option {
	return func(c *Client) { c.flight = d }
}

// New creates a Client for the proxy at baseURL, authenticating every call
// with the given bearer token.
func New(baseURL, token string, logger *zap.Logger, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		token:   token,
		httpc:   &http.Client{Timeout: 30 * time.Second},
		log:     logger,
		flight:  NewDeduper(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// BaseURL returns the proxy base URL the client was built with.
func (c *Client) BaseURL() string { return c.baseURL }

// Liveness probes the proxy's liveliness endpoint. A nil error means the
// proxy answered; the body is ignored.
func (c *Client) Liveness(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/health/liveliness", nil)
	if err != nil {
		return fmt.Errorf("gateway: build liveness request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.token)

	resp, err := c.httpc.Do(req)
	if err != nil {
		return fmt.Errorf("gateway: liveness: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &APIError{StatusCode: resp.StatusCode, Message: readErrorBody(resp.Body)}
	}
	io.Copy(io.Discard, resp.Body)
	return nil
}

// APIError is a non-2xx response from the proxy, with whatever error text
// the backend included in its body.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("proxy returned %d: %s", e.StatusCode, e.Message)
}

// IsPremiumRequired reports whether err is the backend refusing an
// enterprise-only operation. These are shown to the user as a notice, not
// treated as failures.
func IsPremiumRequired(err error) bool {
	apiErr, ok := err.(*APIError)
	if !ok {
		return false
	}
	if apiErr.StatusCode == http.StatusPaymentRequired {
		return true
	}
	return apiErr.StatusCode == http.StatusForbidden &&
		strings.Contains(strings.ToLower(apiErr.Message), "premium")
}

func (c *Client) getJSON(ctx context.Context, path string, q url.Values, out any) error {
	u := c.baseURL + path
	if enc := q.Encode(); enc != "" {
		u += "?" + enc
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return fmt.Errorf("gateway: build request %s: %w", path, err)
	}
	return c.do(req, path, out)
}

func (c *Client) postJSON(ctx context.Context, path string, body, out any) error {
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			return fmt.Errorf("gateway: encode body for %s: %w", path, err)
		}
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, &buf)
	if err != nil {
		return fmt.Errorf("gateway: build request %s: %w", path, err)
	}
	req.Header.Set("Content-Type", "application/json")
	return c.do(req, path, out)
}

func (c *Client) do(req *http.Request, path string, out any) error {
	req.Header.Set("Authorization", "Bearer "+c.token)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpc.Do(req)
	if err != nil {
		return fmt.Errorf("gateway: %s %s: %w", req.Method, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &APIError{StatusCode: resp.StatusCode, Message: readErrorBody(resp.Body)}
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("gateway: decode %s response: %w", path, err)
	}
	return nil
}

// readErrorBody pulls a human-readable message out of a backend error
// payload. The proxy uses both {"detail":{"error":...}} and bare
// {"error":...} shapes; fall back to the raw body either way.
func readErrorBody(r io.Reader) string {
	raw, err := io.ReadAll(io.LimitReader(r, 4096))
	if err != nil || len(raw) == 0 {
		return "(empty body)"
	}
	var payload struct {
		Detail struct {
			Error string `json:"error"`
		} `json:"detail"`
		Error string `json:"error"`
	}
	if err := json.Unmarshal(raw, &payload); err == nil {
		if payload.Detail.Error != "" {
			return payload.Detail.Error
		}
		if payload.Error != "" {
			return payload.Error
		}
	}
	return strings.TrimSpace(string(raw))
}

// fetch performs a deduplicated GET: concurrent calls for the same path and
// query share a single upstream request and receive the same result.
func fetch[T any](ctx context.Context, c *Client, path string, q url.Values) (T, error) {
	key := path
	if enc := q.Encode(); enc != "" {
		key += "?" + enc
	}
	return Shared(c.flight, key, func() (T, error) {
		var out T
		err := c.getJSON(ctx, path, q, &out)
		return out, err
	})
}
