// Package httpclient provides the single-attempt HTTP client used by the
// web-facing stages: bounded timeout, fixed User-Agent, optional pacing.
package httpclient

import (
	"context"
	"crypto/tls"
	"fmt"
	"io"
	"net"
	"net/http"
	"time"

	"reconpipe/internal/platform/errors"
	"reconpipe/internal/platform/logx"
	"reconpipe/internal/platform/rate"
)

// DefaultUserAgent is sent with every request unless overridden.
const DefaultUserAgent = "reconpipe/1.0"

// maxBodyBytes caps how much of a response body is kept.
const maxBodyBytes = 2 << 20

// Client is an HTTP client with timeout and optional rate limiting. Requests
// are never retried.
type Client struct {
	httpClient  *http.Client
	rateLimiter *rate.Limiter
	logger      logx.Logger
	config      Config
}

// Config holds the configuration for the HTTP client.
type Config struct {
	// Timeout bounds the whole request, body included.
	// Default: 5 seconds
	Timeout time.Duration

	// UserAgent is the User-Agent header value.
	// Default: "reconpipe/1.0"
	UserAgent string

	// InsecureSkipVerify disables certificate verification. Recon targets
	// routinely present self-signed or mismatched certificates.
	InsecureSkipVerify bool

	// RateLimit is the maximum requests per second. 0 means no rate limiting.
	RateLimit float64
}

// DefaultConfig returns the default configuration.
func DefaultConfig() Config {
	return Config{
		Timeout:            5 * time.Second,
		UserAgent:          DefaultUserAgent,
		InsecureSkipVerify: true,
	}
}

// New creates a new HTTP client with the given configuration.
func New(config Config, logger logx.Logger) *Client {
	if config.Timeout <= 0 {
		config.Timeout = 5 * time.Second
	}
	if config.UserAgent == "" {
		config.UserAgent = DefaultUserAgent
	}

	transport := &http.Transport{
		Proxy: http.ProxyFromEnvironment,
		DialContext: (&net.Dialer{
			Timeout: config.Timeout,
		}).DialContext,
		TLSHandshakeTimeout: config.Timeout,
		TLSClientConfig: &tls.Config{
			InsecureSkipVerify: config.InsecureSkipVerify, //nolint:gosec // recon targets
		},
		DisableKeepAlives: true,
	}

	return &Client{
		httpClient: &http.Client{
			Timeout:   config.Timeout,
			Transport: transport,
		},
		rateLimiter: rate.New(config.RateLimit, 1),
		logger:      logger.With("component", "httpclient"),
		config:      config,
	}
}

// Response is a fully read HTTP response.
type Response struct {
	StatusCode int
	Header     http.Header
	Body       []byte
	Cookies    []*http.Cookie
}

// Get performs a single GET request and reads up to 2 MiB of the body.
// Transport failures wrap errors.ErrNetwork or errors.ErrTimeout.
func (c *Client) Get(ctx context.Context, url string, headers map[string]string) (*Response, error) {
	if err := c.rateLimiter.Wait(ctx); err != nil {
		return nil, errors.Wrap(errors.ErrTimeout, "rate limit wait interrupted")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, errors.Wrapf(errors.ErrInvalidInput, "build request for %s: %v", url, err)
	}
	req.Header.Set("User-Agent", c.config.UserAgent)
	for key, value := range headers {
		req.Header.Set(key, value)
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Debug("HTTP request failed", "url", url, "error", err.Error(),
			"duration_ms", time.Since(start).Milliseconds())
		if errors.IsTimeout(err) {
			return nil, errors.Wrapf(errors.ErrTimeout, "GET %s: %v", url, err)
		}
		return nil, errors.Wrapf(errors.ErrNetwork, "GET %s: %v", url, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		c.logger.Debug("HTTP body truncated", "url", url, "error", err.Error())
	}

	c.logger.Debug("HTTP response received",
		"url", url,
		"status", resp.StatusCode,
		"duration_ms", time.Since(start).Milliseconds(),
	)

	return &Response{
		StatusCode: resp.StatusCode,
		Header:     resp.Header,
		Body:       body,
		Cookies:    resp.Cookies(),
	}, nil
}

// Timeout returns the configured request timeout.
func (c *Client) Timeout() time.Duration {
	return c.config.Timeout
}

// String returns a human-readable representation of the client configuration.
func (c *Client) String() string {
	return fmt.Sprintf("HTTPClient{timeout=%s, rate_limit=%.1f/s, insecure=%t}",
		c.config.Timeout,
		c.config.RateLimit,
		c.config.InsecureSkipVerify,
	)
}
