// Package remote is the JSON-over-HTTP transport shared by the catalog and
// calendar clients. Every failure it returns is an *Error.
package remote

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/klabast/wb-services/ophaaldagen/internal/config"
)

// maxBodyBytes bounds how much of a response is read
const maxBodyBytes = 8 << 20

// Client performs GET requests against one remote service
type Client struct {
	service    string
	baseURL    *url.URL
	httpClient *http.Client
	limiter    *rate.Limiter
	userAgent  string
	requestID  string
	log        *zap.Logger
}

// Option customizes a Client
type Option func(*Client)

// WithHTTPClient replaces the underlying *http.Client
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// WithRequestID sends id as X-Request-ID on every request
func WithRequestID(id string) Option {
	return func(c *Client) {
		c.requestID = id
	}
}

// WithLogger sets the logger, zap.NewNop() by default
func WithLogger(log *zap.Logger) Option {
	return func(c *Client) {
		c.log = log
	}
}

// NewClient creates a client for service rooted at baseURL
func NewClient(service, baseURL string, cfg config.HTTPConfig, opts ...Option) (*Client, error) {
	if baseURL == "" {
		return nil, fmt.Errorf("%s: base URL is required", service)
	}
	u, err := url.Parse(strings.TrimRight(baseURL, "/") + "/")
	if err != nil {
		return nil, fmt.Errorf("%s: invalid base URL: %w", service, err)
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = config.DefaultTimeout
	}

	c := &Client{
		service:    service,
		baseURL:    u,
		httpClient: &http.Client{Timeout: timeout},
		limiter:    rate.NewLimiter(rate.Inf, 1),
		userAgent:  cfg.UserAgent,
		log:        zap.NewNop(),
	}
	if cfg.RateLimit > 0 {
		c.limiter = rate.NewLimiter(rate.Limit(cfg.RateLimit), 1)
	}
	for _, opt := range opts {
		opt(c)
	}
	c.log = c.log.Named(service)

	return c, nil
}

// Service returns the service name used in errors and logs
func (c *Client) Service() string {
	return c.service
}

// GetJSON fetches path, relative to the base URL, with the given query and
// decodes the JSON body into out.
func (c *Client) GetJSON(ctx context.Context, path string, query url.Values, out any) error {
	u, err := c.resolve(path, query)
	if err != nil {
		return &Error{Service: c.service, Method: http.MethodGet, URL: path, Err: err}
	}
	fail := func(status int, err error) error {
		return &Error{Service: c.service, Method: http.MethodGet, URL: u.String(), StatusCode: status, Err: err}
	}

	if err := c.limiter.Wait(ctx); err != nil {
		return fail(0, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return fail(0, err)
	}
	req.Header.Set("Accept", "application/json")
	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}
	if c.requestID != "" {
		req.Header.Set("X-Request-ID", c.requestID)
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fail(0, err)
	}
	defer func() {
		if err := resp.Body.Close(); err != nil {
			c.log.Debug("error closing response body", zap.Error(err))
		}
	}()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	c.log.Debug("remote request",
		zap.String("url", u.String()),
		zap.Int("status", resp.StatusCode),
		zap.Int("bytes", len(body)),
		zap.Duration("duration", time.Since(start)))
	if err != nil {
		return fail(resp.StatusCode, fmt.Errorf("reading response body: %w", err))
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fail(resp.StatusCode, fmt.Errorf("unexpected status %s: %s", resp.Status, snippet(body)))
	}

	if err := json.Unmarshal(body, out); err != nil {
		return fail(resp.StatusCode, fmt.Errorf("%w: %v", ErrMalformedResponse, err))
	}
	return nil
}

func (c *Client) resolve(path string, query url.Values) (*url.URL, error) {
	if strings.ContainsAny(path, "?#") {
		return nil, fmt.Errorf("path %q must not carry a query or fragment", path)
	}
	// built as a URL value since "adressen/2512HE:68" does not parse as a relative reference
	u := c.baseURL.ResolveReference(&url.URL{Path: strings.TrimLeft(path, "/")})
	if len(query) > 0 {
		u.RawQuery = query.Encode()
	}
	return u, nil
}

// snippet shortens a response body for error messages
func snippet(body []byte) string {
	s := strings.TrimSpace(string(body))
	if len(s) > 200 {
		return s[:200] + "..."
	}
	return s
}
