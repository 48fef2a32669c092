package service

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/color"
	"image/png"
	"strings"
	"testing"

	domainerrors "github.com/juzzt/juzzt-server/internal/errors"
	"github.com/juzzt/juzzt-server/internal/media/images"
	"github.com/juzzt/juzzt-server/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupCatalog(t *testing.T, s store.Store) *CatalogService {
	t.Helper()

	storage, err := images.NewStorage(t.TempDir())
	require.NoError(t, err)

	uploader := images.NewUploader(testLogger(), storage, "", "")
	return NewCatalogService(s, uploader, testLogger())
}

func coverPNG(t *testing.T) []byte {
	t.Helper()

	img := image.NewRGBA(image.Rect(0, 0, 32, 32))
	for y := 0; y < 32; y++ {
		for x := 0; x < 32; x++ {
			img.Set(x, y, color.RGBA{R: uint8(x * 8), G: uint8(y * 8), B: 128, A: 255})
		}
	}

	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func TestCreateRecord(t *testing.T) {
	s, cleanup := setupStore(t)
	defer cleanup()

	svc := setupCatalog(t, s)

	record, err := svc.CreateRecord(context.Background(), CreateRecordRequest{
		Title:  "Kind of Blue",
		Artist: "Miles Davis",
		Genre:  "Modal Jazz",
		Price:  29.99,
	})
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(record.ID, "rec-"))
	assert.Equal(t, "Kind of Blue", record.Title)
	assert.True(t, record.NeedsEnrichment())

	saved, err := s.GetRecord(context.Background(), record.ID)
	require.NoError(t, err)
	assert.Equal(t, record.Title, saved.Title)
}

func TestCreateRecord_Validation(t *testing.T) {
	s, cleanup := setupStore(t)
	defer cleanup()

	svc := setupCatalog(t, s)

	tests := []struct {
		name string
		req  CreateRecordRequest
	}{
		{"missing title", CreateRecordRequest{Artist: "Miles Davis", Price: 29.99}},
		{"missing artist", CreateRecordRequest{Title: "Kind of Blue", Price: 29.99}},
		{"zero price", CreateRecordRequest{Title: "Kind of Blue", Artist: "Miles Davis"}},
		{"negative price", CreateRecordRequest{Title: "Kind of Blue", Artist: "Miles Davis", Price: -1}},
		{"bad image URL", CreateRecordRequest{Title: "Kind of Blue", Artist: "Miles Davis", Price: 29.99, ImageURL: "not a url"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.CreateRecord(context.Background(), tt.req)
			require.Error(t, err)

			var domainErr *domainerrors.Error
			require.True(t, errors.As(err, &domainErr))
			assert.Equal(t, domainerrors.CodeValidation, domainErr.Code)
		})
	}
}

func TestUpdateRecord_PartialUpdate(t *testing.T) {
	s, cleanup := setupStore(t)
	defer cleanup()

	svc := setupCatalog(t, s)
	record := createTestRecord(t, s, "Kind of Blue", "Miles Davis", "Modal Jazz", 29.99)

	newPrice := 34.99
	updated, err := svc.UpdateRecord(context.Background(), record.ID, UpdateRecordRequest{
		Price: &newPrice,
	})
	require.NoError(t, err)
	assert.InDelta(t, 34.99, updated.Price, 0.001)
	assert.Equal(t, "Kind of Blue", updated.Title, "unset fields stay untouched")
	assert.Equal(t, "Modal Jazz", updated.Genre)
}

func TestUpdateRecord_NotFound(t *testing.T) {
	s, cleanup := setupStore(t)
	defer cleanup()

	svc := setupCatalog(t, s)

	title := "Nothing"
	_, err := svc.UpdateRecord(context.Background(), "rec-missing", UpdateRecordRequest{Title: &title})
	require.Error(t, err)
	assert.True(t, errors.Is(err, store.ErrRecordNotFound))
}

func TestDeleteRecord(t *testing.T) {
	s, cleanup := setupStore(t)
	defer cleanup()

	svc := setupCatalog(t, s)
	record := createTestRecord(t, s, "Kind of Blue", "Miles Davis", "Modal Jazz", 29.99)

	require.NoError(t, svc.DeleteRecord(context.Background(), record.ID))

	_, err := s.GetRecord(context.Background(), record.ID)
	assert.True(t, errors.Is(err, store.ErrRecordNotFound))
}

func TestUploadCover_ReplacesExisting(t *testing.T) {
	s, cleanup := setupStore(t)
	defer cleanup()

	svc := setupCatalog(t, s)

	record := createTestRecord(t, s, "Kind of Blue", "Miles Davis", "Modal Jazz", 29.99)
	record.ImageURL = "https://coverartarchive.org/release-group/old/front-500"
	require.NoError(t, s.UpdateRecord(context.Background(), record))

	updated, err := svc.UploadCover(context.Background(), record.ID, coverPNG(t), ".png")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(updated.ImageURL, "/images/"), "locally hosted cover")
	assert.NotEqual(t, record.ImageURL, updated.ImageURL, "explicit upload replaces the cover")
	assert.NotEmpty(t, updated.ImageBlurHash)

	saved, err := s.GetRecord(context.Background(), record.ID)
	require.NoError(t, err)
	assert.Equal(t, updated.ImageURL, saved.ImageURL)
}

func TestUploadCover_UnknownRecord(t *testing.T) {
	s, cleanup := setupStore(t)
	defer cleanup()

	svc := setupCatalog(t, s)

	_, err := svc.UploadCover(context.Background(), "rec-missing", coverPNG(t), ".png")
	require.Error(t, err)
	assert.True(t, errors.Is(err, store.ErrRecordNotFound))
}
