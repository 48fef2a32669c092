// Package musicbrainz provides a rate-limited client for the MusicBrainz
// release-group search API.
package musicbrainz

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"golang.org/x/time/rate"
)

const (
	defaultBaseURL = "https://musicbrainz.org/ws/2"

	// MusicBrainz allows anonymous clients 1 request per second.
	defaultRPS = 1.0

	defaultTimeout = 30 * time.Second
)

// Client provides access to the MusicBrainz API.
type Client struct {
	httpClient  *http.Client
	rateLimiter *rate.Limiter
	baseURL     string
	userAgent   string
	logger      *slog.Logger
}

// Options configures a Client.
type Options struct {
	// BaseURL overrides the API endpoint, mainly for tests.
	BaseURL string
	// UserAgent identifies the application; MusicBrainz rejects anonymous ones.
	UserAgent string
	// RequestsPerSecond caps the request rate. Zero means the default 1 req/s.
	RequestsPerSecond float64
}

// NewClient creates a new MusicBrainz client.
func NewClient(logger *slog.Logger, opts Options) *Client {
	if opts.BaseURL == "" {
		opts.BaseURL = defaultBaseURL
	}
	if opts.UserAgent == "" {
		opts.UserAgent = "juzzt-server/1.0"
	}
	if opts.RequestsPerSecond <= 0 {
		opts.RequestsPerSecond = defaultRPS
	}

	return &Client{
		httpClient: &http.Client{
			Timeout: defaultTimeout,
		},
		rateLimiter: rate.NewLimiter(rate.Limit(opts.RequestsPerSecond), 1),
		baseURL:     opts.BaseURL,
		userAgent:   opts.UserAgent,
		logger:      logger,
	}
}

// Close releases resources. Currently a no-op but included for interface consistency.
func (c *Client) Close() {
	// No persistent resources to close
}

// wait blocks until rate limiter allows a request.
func (c *Client) wait(ctx context.Context) error {
	return c.rateLimiter.Wait(ctx)
}
