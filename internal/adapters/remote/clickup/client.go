// Package clickup implements the remote gateway and collection fetchers
// against a ClickUp-style HTTP API: JSON bodies, token auth, and a
// single-token rate limiter shared by every endpoint.
package clickup

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"

	domainErrors "github.com/fieldstack/progsync/internal/domain/errors"
	"github.com/fieldstack/progsync/internal/infrastructure/logging"
)

// Default client settings.
const (
	DefaultBaseURL     = "https://api.clickup.com/api/v2"
	DefaultMinInterval = 1000 * time.Millisecond
	DefaultTimeout     = 30 * time.Second
)

// errorBodyLimit caps how much of a remote error body ends up in the
// wrapped error.
const errorBodyLimit = 512

// Config carries the client settings. The zero value is completed with
// the defaults above.
type Config struct {
	BaseURL     string
	APIToken    string
	WorkspaceID string
	MinInterval time.Duration
	Timeout     time.Duration
}

// Client talks to the remote API. It performs no retries and no
// response caching; every method makes exactly one HTTP call, paced by
// the shared rate limiter.
type Client struct {
	baseURL     string
	token       string
	workspaceID string
	minInterval time.Duration
	httpClient  *http.Client
	logger      *logging.Logger

	// now and sleep are swappable so tests can observe pacing without
	// waiting for it.
	now   func() time.Time
	sleep func(time.Duration)

	mu       sync.Mutex
	lastCall time.Time
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// WithLogger sets the logger used for per-call records.
func WithLogger(logger *logging.Logger) Option {
	return func(c *Client) {
		c.logger = logger
	}
}

// WithClock injects the time source and sleep function used by the
// rate limiter.
func WithClock(now func() time.Time, sleep func(time.Duration)) Option {
	return func(c *Client) {
		c.now = now
		c.sleep = sleep
	}
}

// NewClient creates a client from cfg, filling unset fields with
// defaults.
func NewClient(cfg Config, opts ...Option) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.MinInterval <= 0 {
		cfg.MinInterval = DefaultMinInterval
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}

	c := &Client{
		baseURL:     cfg.BaseURL,
		token:       cfg.APIToken,
		workspaceID: cfg.WorkspaceID,
		minInterval: cfg.MinInterval,
		httpClient:  &http.Client{Timeout: cfg.Timeout},
		logger:      logging.Default(),
		now:         time.Now,
		sleep:       time.Sleep,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// WorkspaceID returns the configured workspace scope.
func (c *Client) WorkspaceID() string {
	return c.workspaceID
}

// throttle blocks until at least minInterval has passed since the
// previous call. The lock is held across the sleep so concurrent
// callers queue up behind it.
func (c *Client) throttle() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.lastCall.IsZero() {
		if wait := c.minInterval - c.now().Sub(c.lastCall); wait > 0 {
			c.sleep(wait)
		}
	}
	c.lastCall = c.now()
}

// do performs one rate-limited JSON call. The raw response body is
// returned for audit; when out is non-nil the body is also decoded
// into it. A 404 maps to ErrCollectionMissing, every other non-2xx
// status wraps ErrRemoteCall.
func (c *Client) do(ctx context.Context, method, path string, body, out any) (string, error) {
	c.throttle()

	var reqBody io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return "", domainErrors.NewError(domainErrors.CodeRemote, "could not encode request body", err)
		}
		reqBody = bytes.NewReader(encoded)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return "", domainErrors.NewError(domainErrors.CodeRemote, "could not build request", err)
	}
	req.Header.Set("Authorization", c.token)
	req.Header.Set("Content-Type", "application/json")

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: %s %s: %v", domainErrors.ErrRemoteCall, method, path, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("%w: %s %s: reading body: %v", domainErrors.ErrRemoteCall, method, path, err)
	}

	logging.LogRemoteCall(ctx, c.logger, method, path, resp.StatusCode, time.Since(start))

	if resp.StatusCode == http.StatusNotFound {
		return string(raw), fmt.Errorf("%w: %s %s", domainErrors.ErrCollectionMissing, method, path)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		detail := string(raw)
		if len(detail) > errorBodyLimit {
			detail = detail[:errorBodyLimit]
		}
		return string(raw), fmt.Errorf("%w: %s %s: status %d: %s",
			domainErrors.ErrRemoteCall, method, path, resp.StatusCode, detail)
	}

	if out != nil && len(raw) > 0 {
		if err := json.Unmarshal(raw, out); err != nil {
			return string(raw), fmt.Errorf("%w: %s %s: decoding response: %v",
				domainErrors.ErrRemoteCall, method, path, err)
		}
	}
	return string(raw), nil
}
