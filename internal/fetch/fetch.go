// Package fetch downloads offence pages from the NSW Food Authority site.
// Requests are serialized behind a minimum interval and retried on
// transient failures; the site is a shared public service, not an API.
package fetch

import (
	"context"
	"io"
	"net/http"
	"time"

	"github.com/rotisserie/eris"
	"golang.org/x/time/rate"

	"github.com/foodwatch-nsw/offences-cli/internal/resilience"
)

const (
	// DefaultMinInterval paces page downloads the same way the geocoding
	// loop is paced.
	DefaultMinInterval = 1200 * time.Millisecond

	defaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36"
)

// Option configures the client.
type Option func(*Client)

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// WithUserAgent sets the User-Agent header.
func WithUserAgent(ua string) Option {
	return func(c *Client) {
		if ua != "" {
			c.userAgent = ua
		}
	}
}

// WithMinInterval sets the minimum spacing between requests.
func WithMinInterval(d time.Duration) Option {
	return func(c *Client) {
		c.limiter = rate.NewLimiter(rate.Every(d), 1)
	}
}

// WithRetry overrides the retry policy.
func WithRetry(cfg resilience.RetryConfig) Option {
	return func(c *Client) {
		c.retry = cfg
	}
}

// Client downloads pages one at a time.
type Client struct {
	httpClient *http.Client
	userAgent  string
	limiter    *rate.Limiter
	retry      resilience.RetryConfig
}

// NewClient creates a page download client.
func NewClient(opts ...Option) *Client {
	retry := resilience.DefaultRetryConfig()
	retry.OnRetry = resilience.RetryLogger("foodauthority", "get")

	c := &Client{
		httpClient: &http.Client{Timeout: 30 * time.Second},
		userAgent:  defaultUserAgent,
		limiter:    rate.NewLimiter(rate.Every(DefaultMinInterval), 1),
		retry:      retry,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Get downloads one page. Throttling and 5xx responses are retried with
// backoff before the error is returned.
func (c *Client) Get(ctx context.Context, url string) ([]byte, error) {
	return resilience.DoVal(ctx, c.retry, func(ctx context.Context) ([]byte, error) {
		return c.getOnce(ctx, url)
	})
}

func (c *Client) getOnce(ctx context.Context, url string) ([]byte, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, eris.Wrap(err, "fetch: rate limit")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, eris.Wrapf(err, "fetch: build request %s", url)
	}
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, eris.Wrapf(err, "fetch: get %s", url)
	}
	defer resp.Body.Close() //nolint:errcheck

	if resp.StatusCode != http.StatusOK {
		return nil, resilience.HTTPStatusError("fetch "+url, resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, eris.Wrapf(err, "fetch: read %s", url)
	}
	return body, nil
}
