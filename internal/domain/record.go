// Package domain contains the core business entities for the juzzt record marketplace.
package domain

import (
	"strings"
	"time"
)

// Record represents an album in the catalog.
type Record struct {
	ID        string    `json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Title  string  `json:"title"`
	Artist string  `json:"artist"`
	Genre  string  `json:"genre"`
	Price  float64 `json:"price"`

	// ImageURL is the cover art location. Filled by enrichment when empty,
	// or set explicitly by a user upload, which always wins.
	ImageURL string `json:"image_url,omitempty"`

	// ImageBlurHash is a compact placeholder hash for locally uploaded covers.
	ImageBlurHash string `json:"image_blur_hash,omitempty"`

	// MusicBrainzID is the external release-group identifier. Once set it is
	// never cleared or overwritten by enrichment.
	MusicBrainzID string `json:"musicbrainz_id,omitempty"`
}

// NeedsEnrichment reports whether the record is missing external metadata.
func (r *Record) NeedsEnrichment() bool {
	return r.MusicBrainzID == "" || r.ImageURL == ""
}

// MatchesTaste reports whether this record shares a genre or artist with
// other, compared case-insensitively. Used by the content-based
// recommendation signal.
func (r *Record) MatchesTaste(other *Record) bool {
	return strings.EqualFold(r.Genre, other.Genre) || strings.EqualFold(r.Artist, other.Artist)
}
