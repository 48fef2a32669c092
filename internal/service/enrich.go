package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/juzzt/juzzt-server/internal/domain"
	"github.com/juzzt/juzzt-server/internal/media/images"
	"github.com/juzzt/juzzt-server/internal/store"
	"github.com/juzzt/juzzt-server/internal/store/cache"
)

// ReleaseGroupLookup resolves an artist and album title to a MusicBrainz
// release-group ID. Implemented by musicbrainz.Client.
type ReleaseGroupLookup interface {
	LookupReleaseGroup(ctx context.Context, artist, title string) (id string, found bool, err error)
}

// CoverSource finds a front cover URL for a release group.
// Implemented by coverart.Client.
type CoverSource interface {
	FrontCover(ctx context.Context, releaseGroupID string) (url string, found bool, err error)
}

// MetadataCache caches external lookup results so repeated enrichment runs
// don't hammer the public APIs. Implemented by cache.Cache.
type MetadataCache interface {
	GetLookup(ctx context.Context, artist, title string) (*cache.CachedLookup, error)
	SetLookup(ctx context.Context, artist, title, releaseGroupID string, found bool) error
	GetCover(ctx context.Context, releaseGroupID string) (*cache.CachedCover, error)
	SetCover(ctx context.Context, releaseGroupID, imageURL string, found bool) error
}

// ImageHost hosts raw cover image data and computes its placeholder hash.
// Implemented by images.Uploader.
type ImageHost interface {
	Host(ctx context.Context, data []byte, ext string) (*images.HostedImage, error)
}

// localCoverExts are the file extensions checked in the covers drop
// directory, in probe order.
var localCoverExts = []string{".jpg", ".jpeg", ".png", ".webp", ".gif"}

// EnrichmentService fills missing external metadata on catalog records.
//
// Enrichment is strictly fill-only: a record's MusicBrainz ID and cover URL
// are written once and never overwritten, so re-running enrichment is
// idempotent and user-supplied covers always survive. External lookup
// failures never surface to callers; they degrade to "no data found" and the
// record is retried on a later run.
type EnrichmentService struct {
	store     store.Store
	lookup    ReleaseGroupLookup
	covers    CoverSource
	cache     MetadataCache
	uploader  ImageHost
	coversDir string
	logger    *slog.Logger
}

// NewEnrichmentService creates a new enrichment service. uploader and
// coversDir are optional; without them the local cover fallback is disabled.
func NewEnrichmentService(
	store store.Store,
	lookup ReleaseGroupLookup,
	covers CoverSource,
	cache MetadataCache,
	uploader ImageHost,
	coversDir string,
	logger *slog.Logger,
) *EnrichmentService {
	return &EnrichmentService{
		store:     store,
		lookup:    lookup,
		covers:    covers,
		cache:     cache,
		uploader:  uploader,
		coversDir: coversDir,
		logger:    logger,
	}
}

// EnrichResult describes what a single enrichment pass changed.
type EnrichResult struct {
	RecordID    string `json:"record_id"`
	SetMBID     bool   `json:"set_musicbrainz_id"`
	SetCover    bool   `json:"set_cover"`
	MBIDMissing bool   `json:"mbid_missing"` // lookup ran and found nothing
}

// EnrichSummary aggregates an EnrichAll run.
type EnrichSummary struct {
	Processed int `json:"processed"`
	Enriched  int `json:"enriched"`
	Failed    int `json:"failed"`
}

// EnrichRecord fills the record's missing MusicBrainz ID and cover URL.
// Fields that are already set are left untouched. The only error surfaces
// are the record fetch and the final save; upstream outages read as misses.
func (s *EnrichmentService) EnrichRecord(ctx context.Context, recordID string) (*EnrichResult, error) {
	record, err := s.store.GetRecord(ctx, recordID)
	if err != nil {
		return nil, err
	}

	result := s.enrich(ctx, record)

	if result.SetMBID || result.SetCover {
		if err := s.store.UpdateRecord(ctx, record); err != nil {
			return nil, fmt.Errorf("update record: %w", err)
		}
	}

	return result, nil
}

// EnrichAll runs enrichment over every record that is missing metadata.
// A failure to save one record is logged and does not stop the run.
func (s *EnrichmentService) EnrichAll(ctx context.Context) (*EnrichSummary, error) {
	records, err := s.store.ListRecords(ctx)
	if err != nil {
		return nil, fmt.Errorf("list records: %w", err)
	}

	summary := &EnrichSummary{}

	for _, record := range records {
		if ctx.Err() != nil {
			return summary, ctx.Err()
		}
		if !record.NeedsEnrichment() {
			continue
		}
		summary.Processed++

		result := s.enrich(ctx, record)
		if !result.SetMBID && !result.SetCover {
			continue
		}

		if err := s.store.UpdateRecord(ctx, record); err != nil {
			summary.Failed++
			s.logger.Warn("failed to save enriched record",
				"record_id", record.ID,
				"error", err,
			)
			continue
		}
		summary.Enriched++
	}

	s.logger.Info("enrichment run complete",
		"processed", summary.Processed,
		"enriched", summary.Enriched,
		"failed", summary.Failed,
	)

	return summary, nil
}

// enrich mutates the record in place and reports what changed.
// The caller is responsible for persisting it.
func (s *EnrichmentService) enrich(ctx context.Context, record *domain.Record) *EnrichResult {
	result := &EnrichResult{RecordID: record.ID}

	if record.MusicBrainzID == "" {
		mbid, found := s.lookupReleaseGroup(ctx, record.Artist, record.Title)
		if found {
			record.MusicBrainzID = mbid
			result.SetMBID = true
		} else {
			result.MBIDMissing = true
		}
	}

	// Covers need a release-group ID; without one there is nothing to probe.
	if record.ImageURL == "" && record.MusicBrainzID != "" {
		url, found := s.frontCover(ctx, record.MusicBrainzID)
		if found {
			record.ImageURL = url
			result.SetCover = true
		}
	}

	// A cover the external archive doesn't have may still be sitting in the
	// drop directory.
	if record.ImageURL == "" {
		s.applyLocalCover(ctx, record, result)
	}

	return result
}

// lookupReleaseGroup consults the cache before the live API, and caches both
// hits and misses. Client errors read as a miss and are not cached, so the
// lookup is retried once the upstream recovers.
func (s *EnrichmentService) lookupReleaseGroup(ctx context.Context, artist, title string) (string, bool) {
	cached, err := s.cache.GetLookup(ctx, artist, title)
	if err != nil {
		s.logger.Warn("lookup cache read failed", "error", err)
	} else if cached != nil {
		return cached.ReleaseGroupID, cached.Found
	}

	mbid, found, err := s.lookup.LookupReleaseGroup(ctx, artist, title)
	if err != nil {
		s.logger.Warn("musicbrainz lookup failed, treating as not found",
			"artist", artist,
			"title", title,
			"error", err,
		)
		return "", false
	}

	if err := s.cache.SetLookup(ctx, artist, title, mbid, found); err != nil {
		s.logger.Warn("lookup cache write failed", "error", err)
	}

	return mbid, found
}

// frontCover consults the cache before the live API, and caches both hits
// and misses. Probe errors read as a miss and are not cached.
func (s *EnrichmentService) frontCover(ctx context.Context, releaseGroupID string) (string, bool) {
	cached, err := s.cache.GetCover(ctx, releaseGroupID)
	if err != nil {
		s.logger.Warn("cover cache read failed", "error", err)
	} else if cached != nil {
		return cached.ImageURL, cached.Found
	}

	url, found, err := s.covers.FrontCover(ctx, releaseGroupID)
	if err != nil {
		s.logger.Warn("cover art probe failed, treating as not found",
			"release_group_id", releaseGroupID,
			"error", err,
		)
		return "", false
	}

	if err := s.cache.SetCover(ctx, releaseGroupID, url, found); err != nil {
		s.logger.Warn("cover cache write failed", "error", err)
	}

	return url, found
}

// applyLocalCover checks the covers drop directory for a file named after
// the record and hosts it when one exists. The file is removed once hosted
// so it is not imported twice. Failures are logged and leave the file in
// place for the next run.
func (s *EnrichmentService) applyLocalCover(ctx context.Context, record *domain.Record, result *EnrichResult) {
	if s.uploader == nil || s.coversDir == "" {
		return
	}

	for _, ext := range localCoverExts {
		path := filepath.Join(s.coversDir, record.ID+ext)

		data, err := os.ReadFile(path)
		if errors.Is(err, os.ErrNotExist) {
			continue
		}
		if err != nil {
			s.logger.Warn("failed to read local cover", "path", path, "error", err)
			return
		}

		hosted, err := s.uploader.Host(ctx, data, ext)
		if err != nil {
			s.logger.Warn("failed to host local cover",
				"record_id", record.ID,
				"path", path,
				"error", err,
			)
			return
		}

		record.ImageURL = hosted.URL
		record.ImageBlurHash = hosted.BlurHash
		result.SetCover = true

		if err := os.Remove(path); err != nil {
			s.logger.Warn("failed to remove imported cover file", "path", path, "error", err)
		}

		s.logger.Info("attached local cover",
			"record_id", record.ID,
			"image_url", hosted.URL,
		)
		return
	}
}
