// Package api implements the HTTP client for the Relatorio shift-operations
// backend. All calls are outbound REST requests; the client attaches the
// session bearer token to every request and reports authorization expiry
// through a callback so the application layer can react (the transport has
// no navigation concerns of its own).
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/hashicorp/go-retryablehttp"
	"go.uber.org/zap"
)

const defaultRetryWaitMax = 5 * time.Second

// TokenSource supplies the current bearer token, or "" when logged out.
type TokenSource func() string

// Client is the configured request client for the Relatorio backend.
type Client struct {
	client  *http.Client
	baseURL string
	logger  *zap.Logger

	tokenSource    TokenSource
	onUnauthorized func()
}

// Option configures a Client.
type Option func(*options)

type options struct {
	timeout        time.Duration
	retryMax       int
	tokenSource    TokenSource
	onUnauthorized func()
	logger         *zap.Logger
}

// WithTimeout sets the per-request timeout.
func WithTimeout(d time.Duration) Option {
	return func(o *options) { o.timeout = d }
}

// WithRetryMax bounds the number of transport-level retries.
func WithRetryMax(n int) Option {
	return func(o *options) { o.retryMax = n }
}

// WithTokenSource sets the bearer token supplier.
func WithTokenSource(src TokenSource) Option {
	return func(o *options) { o.tokenSource = src }
}

// WithUnauthorizedHandler registers the callback invoked whenever any
// response comes back 401. The handler must not block.
func WithUnauthorizedHandler(fn func()) Option {
	return func(o *options) { o.onUnauthorized = fn }
}

// WithLogger sets the request logger.
func WithLogger(l *zap.Logger) Option {
	return func(o *options) { o.logger = l }
}

// New creates a client for the backend at baseURL.
func New(baseURL string, opts ...Option) *Client {
	o := &options{
		timeout:  15 * time.Second,
		retryMax: 2,
		logger:   zap.NewNop(),
	}
	for _, opt := range opts {
		opt(o)
	}

	retryClient := retryablehttp.NewClient()
	retryClient.RetryMax = o.retryMax
	retryClient.RetryWaitMin = 200 * time.Millisecond
	retryClient.RetryWaitMax = defaultRetryWaitMax
	retryClient.HTTPClient.Timeout = o.timeout
	retryClient.Logger = nil

	// Server errors and transport failures are retried a bounded number of
	// times; every 4xx (a 404 for "no active shift" included) is terminal.
	retryClient.CheckRetry = func(ctx context.Context, resp *http.Response, err error) (bool, error) {
		if err != nil {
			return retryablehttp.DefaultRetryPolicy(ctx, resp, err)
		}
		if resp.StatusCode >= 500 {
			return true, nil
		}
		return false, nil
	}

	return &Client{
		client:         retryClient.StandardClient(),
		baseURL:        strings.TrimRight(baseURL, "/"),
		logger:         o.logger,
		tokenSource:    o.tokenSource,
		onUnauthorized: o.onUnauthorized,
	}
}

// BaseURL returns the configured backend base URL.
func (c *Client) BaseURL() string { return c.baseURL }

// APIError is an error response from the backend. Detail carries the
// server's human-readable message when one was provided.
type APIError struct {
	StatusCode int
	Detail     string
}

func (e *APIError) Error() string {
	if e.Detail != "" {
		return fmt.Sprintf("api: %d: %s", e.StatusCode, e.Detail)
	}
	return fmt.Sprintf("api: unexpected status %d", e.StatusCode)
}

// IsNotFound reports whether err is a 404 from the backend.
func IsNotFound(err error) bool {
	return statusOf(err) == http.StatusNotFound
}

// IsUnauthorized reports whether err is a 401 from the backend.
func IsUnauthorized(err error) bool {
	return statusOf(err) == http.StatusUnauthorized
}

func statusOf(err error) int {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode
	}
	return 0
}

// Token authenticates with form-encoded credentials. This is the only
// request that does not carry a bearer token.
func (c *Client) Token(ctx context.Context, username, password string) (*TokenResponse, error) {
	form := url.Values{}
	form.Set("username", username)
	form.Set("password", password)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/token", strings.NewReader(form.Encode()))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	var out TokenResponse
	if err := c.send(req, http.StatusOK, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// do issues a JSON request against path and decodes the response into out
// when out is non-nil. body may be nil for bodyless methods.
func (c *Client) do(ctx context.Context, method, path string, body, out any, wantStatus int) error {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshal request: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.tokenSource != nil {
		if token := c.tokenSource(); token != "" {
			req.Header.Set("Authorization", "Bearer "+token)
		}
	}

	return c.send(req, wantStatus, out)
}

func (c *Client) send(req *http.Request, wantStatus int, out any) error {
	requestID := uuid.NewString()
	req.Header.Set("X-Request-ID", requestID)

	start := time.Now()
	resp, err := c.client.Do(req)
	if err != nil {
		c.logger.Debug("request failed",
			zap.String("method", req.Method),
			zap.String("path", req.URL.Path),
			zap.String("request_id", requestID),
			zap.Error(err))
		return fmt.Errorf("%s %s: %w", req.Method, req.URL.Path, err)
	}
	defer resp.Body.Close()

	c.logger.Debug("request complete",
		zap.String("method", req.Method),
		zap.String("path", req.URL.Path),
		zap.String("request_id", requestID),
		zap.Int("status", resp.StatusCode),
		zap.Duration("elapsed", time.Since(start)))

	if resp.StatusCode == http.StatusUnauthorized && c.onUnauthorized != nil {
		c.onUnauthorized()
	}

	if resp.StatusCode != wantStatus {
		return c.errorFrom(resp)
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

// errorFrom builds an APIError from a non-success response, extracting the
// FastAPI-style {"detail": "..."} message when present.
func (c *Client) errorFrom(resp *http.Response) error {
	apiErr := &APIError{StatusCode: resp.StatusCode}

	data, err := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
	if err == nil && len(data) > 0 {
		var payload struct {
			Detail json.RawMessage `json:"detail"`
		}
		if json.Unmarshal(data, &payload) == nil && len(payload.Detail) > 0 {
			var detail string
			if json.Unmarshal(payload.Detail, &detail) == nil {
				apiErr.Detail = detail
			} else {
				// Validation errors arrive as structured lists; keep the raw text.
				apiErr.Detail = string(payload.Detail)
			}
		}
	}
	return apiErr
}
