package musicbrainz

import (
	"context"
	"encoding/json/v2"
	"fmt"
	"net/http"
	"net/url"
	"strings"
)

const searchLimit = 1

// LookupReleaseGroup searches MusicBrainz for the release group matching the
// given artist and album title. Returns the release-group MBID and true when a
// match exists, or found=false when the search came back empty. The boolean
// lets callers distinguish a clean miss from a transport failure.
func (c *Client) LookupReleaseGroup(ctx context.Context, artist, title string) (string, bool, error) {
	if err := c.wait(ctx); err != nil {
		return "", false, fmt.Errorf("rate limit: %w", err)
	}

	params := url.Values{}
	params.Set("query", fmt.Sprintf(`artist:"%s" AND release:"%s"`, escapeQuery(artist), escapeQuery(title)))
	params.Set("fmt", "json")
	params.Set("limit", fmt.Sprintf("%d", searchLimit))

	searchURL := c.baseURL + "/release-group?" + params.Encode()

	c.logger.Debug("searching MusicBrainz",
		"artist", artist,
		"title", title,
	)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, searchURL, nil)
	if err != nil {
		return "", false, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", false, fmt.Errorf("search request: %w", err)
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
		// fall through to parsing
	case http.StatusServiceUnavailable, http.StatusTooManyRequests:
		return "", false, ErrRateLimited
	case http.StatusBadRequest:
		return "", false, ErrBadRequest
	default:
		if resp.StatusCode >= 500 {
			return "", false, ErrServer
		}
		return "", false, fmt.Errorf("unexpected status %d", resp.StatusCode)
	}

	var searchResp searchResponse
	if err := json.UnmarshalRead(resp.Body, &searchResp); err != nil {
		return "", false, fmt.Errorf("parse response: %w", err)
	}

	c.logger.Debug("MusicBrainz search results",
		"artist", artist,
		"title", title,
		"count", searchResp.Count,
	)

	if len(searchResp.ReleaseGroups) == 0 || searchResp.ReleaseGroups[0].ID == "" {
		return "", false, nil
	}

	return searchResp.ReleaseGroups[0].ID, true, nil
}

// escapeQuery escapes characters that would break the Lucene query syntax.
func escapeQuery(s string) string {
	return strings.ReplaceAll(s, `"`, `\"`)
}
