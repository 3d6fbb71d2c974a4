// Package api is the typed REST client for the passion-detection backend.
// All calls go through a single Client which attaches the bearer token from
// its TokenSource and fires a registered hook whenever any endpoint answers
// 401, so the session can be evicted globally no matter which flow was
// running.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"
)

// DefaultTimeout bounds each request, matching the original client's
// 10-second budget.
const DefaultTimeout = 10 * time.Second

// TokenSource yields the current bearer token, or "" when unauthenticated.
type TokenSource interface {
	Token() string
}

// Client issues REST calls against a versioned API root.
type Client struct {
	baseURL    string
	httpClient *http.Client
	tokens     TokenSource
	logger     *zap.Logger

	mu             sync.RWMutex
	onUnauthorized func()
}

// Option configures the client.
type Option func(*Client)

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// WithTimeout sets the per-request timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.httpClient.Timeout = d }
}

// WithLogger attaches a zap logger for request tracing.
func WithLogger(l *zap.Logger) Option {
	return func(c *Client) { c.logger = l }
}

// NewClient creates a client rooted at baseURL (e.g.
// "https://api.example.com/api/v1"). tokens may be nil for a client that
// only performs unauthenticated calls.
func NewClient(baseURL string, tokens TokenSource, opts ...Option) *Client {
	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		tokens:     tokens,
		logger:     zap.NewNop(),
		httpClient: &http.Client{Timeout: DefaultTimeout},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// SetOnUnauthorized registers the eviction hook invoked on any 401.
// The hook runs synchronously before the request's error is returned.
func (c *Client) SetOnUnauthorized(fn func()) {
	c.mu.Lock()
	c.onUnauthorized = fn
	c.mu.Unlock()
}

func (c *Client) fireUnauthorized() {
	c.mu.RLock()
	fn := c.onUnauthorized
	c.mu.RUnlock()
	if fn != nil {
		fn()
	}
}

// do issues one request and returns the raw response body. Non-2xx
// responses come back as typed errors per the taxonomy in errors.go.
func (c *Client) do(ctx context.Context, method, path string, body io.Reader, contentType string, authed bool) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return nil, fmt.Errorf("build request %s %s: %w", method, path, err)
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	if authed && c.tokens != nil {
		if tok := c.tokens.Token(); tok != "" {
			req.Header.Set("Authorization", "Bearer "+tok)
		}
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Debug("request failed",
			zap.String("method", method),
			zap.String("path", path),
			zap.Error(err))
		return nil, &NetworkError{Endpoint: path, Err: err}
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &NetworkError{Endpoint: path, Err: err}
	}

	c.logger.Debug("request",
		zap.String("method", method),
		zap.String("path", path),
		zap.Int("status", resp.StatusCode),
		zap.Duration("elapsed", time.Since(start)))

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return data, nil
	}

	apiErr := classify(resp.StatusCode, path, data)
	if resp.StatusCode == http.StatusUnauthorized {
		c.fireUnauthorized()
	}
	return nil, apiErr
}

func decodeInto(data []byte, path string, out any) error {
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("decode %s: %w", path, err)
	}
	return nil
}

// getJSON issues an authenticated GET and decodes the response into out.
func (c *Client) getJSON(ctx context.Context, path string, out any) error {
	data, err := c.do(ctx, http.MethodGet, path, nil, "", true)
	if err != nil {
		return err
	}
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("decode %s: %w", path, err)
	}
	return nil
}

// sendJSON issues a request with a JSON body and optionally decodes the
// response into out.
func (c *Client) sendJSON(ctx context.Context, method, path string, in, out any, authed bool) error {
	var body io.Reader
	if in != nil {
		data, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("encode %s: %w", path, err)
		}
		body = bytes.NewReader(data)
	}
	data, err := c.do(ctx, method, path, body, "application/json", authed)
	if err != nil {
		return err
	}
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("decode %s: %w", path, err)
	}
	return nil
}
