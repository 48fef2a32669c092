// Package coverart provides a client for the Cover Art Archive API.
package coverart

import (
	"context"
	"encoding/json/v2"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"
)

const (
	defaultBaseURL = "https://coverartarchive.org"
	defaultTimeout = 30 * time.Second
)

// Sentinel errors for Cover Art Archive operations.
var (
	ErrRateLimited = errors.New("coverart: rate limited by server")
	ErrServer      = errors.New("coverart: server error")
)

// Client provides access to the Cover Art Archive.
type Client struct {
	httpClient *http.Client
	baseURL    string
	logger     *slog.Logger
}

// NewClient creates a new Cover Art Archive client. An empty baseURL uses the
// public archive endpoint.
func NewClient(logger *slog.Logger, baseURL string) *Client {
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	return &Client{
		httpClient: &http.Client{
			Timeout: defaultTimeout,
		},
		baseURL: baseURL,
		logger:  logger,
	}
}

// imagesResponse is the raw listing for a release group.
type imagesResponse struct {
	Images []rawImage `json:"images"`
}

type rawImage struct {
	Front      bool              `json:"front"`
	Image      string            `json:"image"`
	Thumbnails map[string]string `json:"thumbnails"`
}

// FrontCover looks up the front cover image URL for a release group MBID.
// Returns found=false when the archive has no art for the release group, which
// is common and not an error.
func (c *Client) FrontCover(ctx context.Context, releaseGroupID string) (string, bool, error) {
	lookupURL := fmt.Sprintf("%s/release-group/%s", c.baseURL, releaseGroupID)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, lookupURL, nil)
	if err != nil {
		return "", false, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", false, fmt.Errorf("lookup request: %w", err)
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
		// fall through to parsing
	case http.StatusNotFound:
		return "", false, nil
	case http.StatusTooManyRequests:
		return "", false, ErrRateLimited
	default:
		if resp.StatusCode >= 500 {
			return "", false, ErrServer
		}
		return "", false, fmt.Errorf("unexpected status %d", resp.StatusCode)
	}

	var listing imagesResponse
	if err := json.UnmarshalRead(resp.Body, &listing); err != nil {
		return "", false, fmt.Errorf("parse response: %w", err)
	}

	url := selectFrontImage(listing.Images)
	if url == "" {
		return "", false, nil
	}

	c.logger.Debug("cover art found",
		"releaseGroupID", releaseGroupID,
		"url", url,
	)

	return url, true, nil
}

// selectFrontImage picks the front image, falling back to the first listed.
// Prefers the 500px thumbnail over the full-size scan when available.
func selectFrontImage(images []rawImage) string {
	var pick *rawImage
	for i := range images {
		if images[i].Front {
			pick = &images[i]
			break
		}
	}
	if pick == nil && len(images) > 0 {
		pick = &images[0]
	}
	if pick == nil {
		return ""
	}

	if thumb, ok := pick.Thumbnails["500"]; ok && thumb != "" {
		return thumb
	}
	if thumb, ok := pick.Thumbnails["large"]; ok && thumb != "" {
		return thumb
	}
	return pick.Image
}
