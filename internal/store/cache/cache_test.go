package cache

import (
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestCache(t *testing.T) *Cache {
	t.Helper()

	c, err := Open(t.TempDir(), slog.New(slog.DiscardHandler))
	require.NoError(t, err)
	t.Cleanup(func() { _ = c.Close() })
	return c
}

func TestLookupRoundTrip(t *testing.T) {
	c := openTestCache(t)
	ctx := t.Context()

	got, err := c.GetLookup(ctx, "Miles Davis", "Kind of Blue")
	require.NoError(t, err)
	assert.Nil(t, got, "cold cache should miss")

	require.NoError(t, c.SetLookup(ctx, "Miles Davis", "Kind of Blue", "rg-1234", true))

	got, err = c.GetLookup(ctx, "Miles Davis", "Kind of Blue")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "rg-1234", got.ReleaseGroupID)
	assert.True(t, got.Found)
}

func TestLookupKeyIsCaseInsensitive(t *testing.T) {
	c := openTestCache(t)
	ctx := t.Context()

	require.NoError(t, c.SetLookup(ctx, "miles davis", "kind of blue", "rg-1234", true))

	got, err := c.GetLookup(ctx, "MILES DAVIS", "Kind Of Blue")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "rg-1234", got.ReleaseGroupID)
}

func TestNegativeLookupIsCached(t *testing.T) {
	c := openTestCache(t)
	ctx := t.Context()

	require.NoError(t, c.SetLookup(ctx, "Unknown", "Nothing", "", false))

	got, err := c.GetLookup(ctx, "Unknown", "Nothing")
	require.NoError(t, err)
	require.NotNil(t, got, "misses are cached too")
	assert.False(t, got.Found)
	assert.Empty(t, got.ReleaseGroupID)
}

func TestCoverRoundTrip(t *testing.T) {
	c := openTestCache(t)
	ctx := t.Context()

	got, err := c.GetCover(ctx, "rg-1234")
	require.NoError(t, err)
	assert.Nil(t, got)

	require.NoError(t, c.SetCover(ctx, "rg-1234", "https://coverartarchive.org/release-group/rg-1234/front", true))

	got, err = c.GetCover(ctx, "rg-1234")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.True(t, got.Found)
	assert.Contains(t, got.ImageURL, "rg-1234")
}

func TestExpiredEntryTreatedAsMiss(t *testing.T) {
	c := openTestCache(t)

	stale := CachedLookup{
		ReleaseGroupID: "rg-old",
		Found:          true,
		FetchedAt:      time.Now().Add(-31 * 24 * time.Hour),
	}
	require.NoError(t, c.set(lookupKey("Old", "Entry"), &stale))

	got, err := c.GetLookup(t.Context(), "Old", "Entry")
	require.NoError(t, err)
	assert.Nil(t, got, "entries past their lifetime should read as misses")
}

func TestMissExpiresSoonerThanHit(t *testing.T) {
	c := openTestCache(t)
	ctx := t.Context()

	// Two days old: past the miss lifetime, well within the hit lifetime.
	age := time.Now().Add(-2 * 24 * time.Hour)

	hit := CachedCover{ImageURL: "https://example.com/front.jpg", Found: true, FetchedAt: age}
	require.NoError(t, c.set([]byte(coverPrefix+"rg-hit"), &hit))

	miss := CachedCover{Found: false, FetchedAt: age}
	require.NoError(t, c.set([]byte(coverPrefix+"rg-miss"), &miss))

	got, err := c.GetCover(ctx, "rg-hit")
	require.NoError(t, err)
	assert.NotNil(t, got, "hits stay cached for a month")

	got, err = c.GetCover(ctx, "rg-miss")
	require.NoError(t, err)
	assert.Nil(t, got, "misses are retried after a day")
}
