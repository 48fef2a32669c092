// Package cache provides a Badger-backed cache for external metadata lookups.
// Caching both hits and misses keeps a full catalog rescan from hammering the
// rate-limited external services.
package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json/v2"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/dgraph-io/badger/v4"
)

const (
	lookupPrefix = "lookup:release-group:"
	coverPrefix  = "lookup:cover:"

	// Hits are stable (a release group does not move); misses may become
	// hits as the external catalogs grow, so they expire sooner.
	hitCacheDuration  = 30 * 24 * time.Hour
	missCacheDuration = 24 * time.Hour
)

// CachedLookup wraps a release-group lookup result with cache info.
type CachedLookup struct {
	ReleaseGroupID string    `json:"release_group_id,omitempty"`
	Found          bool      `json:"found"`
	FetchedAt      time.Time `json:"fetched_at"`
}

// CachedCover wraps a cover-art probe result with cache info.
type CachedCover struct {
	ImageURL  string    `json:"image_url,omitempty"`
	Found     bool      `json:"found"`
	FetchedAt time.Time `json:"fetched_at"`
}

// Cache is a Badger-backed metadata cache.
type Cache struct {
	db     *badger.DB
	logger *slog.Logger
}

// Open opens (or creates) the cache database at path.
func Open(path string, logger *slog.Logger) (*Cache, error) {
	opts := badger.DefaultOptions(path)
	opts.Logger = nil // badger's own logger is too chatty

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open metadata cache: %w", err)
	}

	logger.Debug("Metadata cache opened", "path", path)
	return &Cache{db: db, logger: logger}, nil
}

// Close compacts the value log and closes the underlying database.
func (c *Cache) Close() error {
	if err := c.db.RunValueLogGC(0.5); err != nil && !errors.Is(err, badger.ErrNoRewrite) {
		c.logger.Warn("cache value log GC failed", "error", err)
	}
	return c.db.Close()
}

// GetLookup retrieves a cached release-group lookup.
// Returns nil, nil on cache miss or expiry.
func (c *Cache) GetLookup(ctx context.Context, artist, title string) (*CachedLookup, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var cached CachedLookup
	err := c.get(lookupKey(artist, title), &cached)
	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get cached lookup: %w", err)
	}

	if expired(cached.Found, cached.FetchedAt) {
		return nil, nil
	}
	return &cached, nil
}

// SetLookup stores a release-group lookup result.
func (c *Cache) SetLookup(ctx context.Context, artist, title, releaseGroupID string, found bool) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	cached := CachedLookup{
		ReleaseGroupID: releaseGroupID,
		Found:          found,
		FetchedAt:      time.Now(),
	}
	return c.set(lookupKey(artist, title), &cached)
}

// GetCover retrieves a cached cover-art probe.
// Returns nil, nil on cache miss or expiry.
func (c *Cache) GetCover(ctx context.Context, releaseGroupID string) (*CachedCover, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var cached CachedCover
	err := c.get([]byte(coverPrefix+releaseGroupID), &cached)
	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get cached cover: %w", err)
	}

	if expired(cached.Found, cached.FetchedAt) {
		return nil, nil
	}
	return &cached, nil
}

// SetCover stores a cover-art probe result.
func (c *Cache) SetCover(ctx context.Context, releaseGroupID, imageURL string, found bool) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	cached := CachedCover{
		ImageURL:  imageURL,
		Found:     found,
		FetchedAt: time.Now(),
	}
	return c.set([]byte(coverPrefix+releaseGroupID), &cached)
}

func (c *Cache) get(key []byte, out any) error {
	return c.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(key)
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			return json.Unmarshal(val, out)
		})
	})
}

func (c *Cache) set(key []byte, value any) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("marshal cache entry: %w", err)
	}
	return c.db.Update(func(txn *badger.Txn) error {
		return txn.Set(key, data)
	})
}

// lookupKey derives a stable cache key from artist and title. The pair is
// hashed so arbitrary user input never shapes key structure.
func lookupKey(artist, title string) []byte {
	sum := sha256.Sum256([]byte(strings.ToLower(artist) + "\x00" + strings.ToLower(title)))
	return fmt.Appendf(nil, "%s%s", lookupPrefix, hex.EncodeToString(sum[:]))
}

// expired reports whether a cached entry is past its lifetime.
func expired(found bool, fetchedAt time.Time) bool {
	ttl := missCacheDuration
	if found {
		ttl = hitCacheDuration
	}
	return time.Since(fetchedAt) > ttl
}
