// Package nominatim is a minimal client for the OpenStreetMap Nominatim
// search API. Requests are paced to the public instance's usage policy
// (at most one request per interval) and carry an identifying User-Agent.
package nominatim

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/rotisserie/eris"
	"golang.org/x/time/rate"

	"github.com/foodwatch-nsw/offences-cli/internal/resilience"
)

const (
	// DefaultBaseURL is the public Nominatim instance.
	DefaultBaseURL = "https://nominatim.openstreetmap.org"

	// DefaultMinInterval is the public instance's absolute-maximum pace of
	// one request per second, with some slack.
	DefaultMinInterval = 1200 * time.Millisecond

	defaultUserAgent = "offences-cli/1.0 (+https://github.com/foodwatch-nsw/offences-cli)"
)

// Result holds the geocoding output for a query. Matched is false when the
// provider returned no candidates; that is not an error.
type Result struct {
	Lat         float64
	Lon         float64
	DisplayName string
	Matched     bool
}

// Option configures the client.
type Option func(*Client)

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// WithBaseURL points the client at a different Nominatim instance.
func WithBaseURL(u string) Option {
	return func(c *Client) {
		c.baseURL = u
	}
}

// WithUserAgent sets the User-Agent header. The public instance requires an
// identifying agent; operators usually put a contact email here.
func WithUserAgent(ua string) Option {
	return func(c *Client) {
		if ua != "" {
			c.userAgent = ua
		}
	}
}

// WithEmail adds the email query parameter Nominatim asks bulk users to send.
func WithEmail(email string) Option {
	return func(c *Client) {
		c.email = email
	}
}

// WithMinInterval sets the minimum spacing between requests. Zero or
// negative disables pacing.
func WithMinInterval(d time.Duration) Option {
	return func(c *Client) {
		c.limiter = rate.NewLimiter(rate.Every(d), 1)
	}
}

// Client queries the Nominatim search endpoint.
type Client struct {
	httpClient *http.Client
	baseURL    string
	userAgent  string
	email      string
	limiter    *rate.Limiter
}

// NewClient creates a Nominatim client with the given options.
func NewClient(opts ...Option) *Client {
	c := &Client{
		httpClient: &http.Client{Timeout: 10 * time.Second},
		baseURL:    DefaultBaseURL,
		userAgent:  defaultUserAgent,
		limiter:    rate.NewLimiter(rate.Every(DefaultMinInterval), 1),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// searchRow is one candidate in the Nominatim search response. Coordinates
// come back as strings.
type searchRow struct {
	Lat         string `json:"lat"`
	Lon         string `json:"lon"`
	DisplayName string `json:"display_name"`
}

// Search geocodes a free-form query, returning the best candidate.
// Throttling and server errors come back as transient so callers can retry;
// an empty candidate list is an unmatched Result, not an error.
func (c *Client) Search(ctx context.Context, query string) (Result, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return Result{}, eris.Wrap(err, "nominatim: rate limit")
	}

	params := url.Values{
		"q":      {query},
		"format": {"json"},
		"limit":  {"1"},
	}
	if c.email != "" {
		params.Set("email", c.email)
	}

	reqURL := c.baseURL + "/search?" + params.Encode()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return Result{}, eris.Wrap(err, "nominatim: build request")
	}
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return Result{}, eris.Wrap(err, "nominatim: request")
	}
	defer resp.Body.Close() //nolint:errcheck

	if resp.StatusCode != http.StatusOK {
		return Result{}, resilience.HTTPStatusError("nominatim search", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return Result{}, eris.Wrap(err, "nominatim: read body")
	}

	var rows []searchRow
	if err := json.Unmarshal(body, &rows); err != nil {
		return Result{}, eris.Wrap(err, "nominatim: parse response")
	}

	if len(rows) == 0 {
		return Result{Matched: false}, nil
	}

	row := rows[0]
	lat, err := strconv.ParseFloat(row.Lat, 64)
	if err != nil {
		return Result{}, eris.Wrapf(err, "nominatim: parse lat %q", row.Lat)
	}
	lon, err := strconv.ParseFloat(row.Lon, 64)
	if err != nil {
		return Result{}, eris.Wrapf(err, "nominatim: parse lon %q", row.Lon)
	}

	return Result{
		Lat:         lat,
		Lon:         lon,
		DisplayName: row.DisplayName,
		Matched:     true,
	}, nil
}
