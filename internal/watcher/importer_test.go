package watcher

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/png"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/juzzt/juzzt-server/internal/domain"
	"github.com/juzzt/juzzt-server/internal/id"
	"github.com/juzzt/juzzt-server/internal/media/images"
	"github.com/juzzt/juzzt-server/internal/service"
	"github.com/juzzt/juzzt-server/internal/store"
	"github.com/juzzt/juzzt-server/internal/store/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupImporter(t *testing.T) (*CoverImporter, store.Store) {
	t.Helper()

	logger := slog.New(slog.DiscardHandler)

	s, err := sqlite.Open(filepath.Join(t.TempDir(), "test.db"), logger)
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })

	storage, err := images.NewStorage(t.TempDir())
	require.NoError(t, err)

	uploader := images.NewUploader(logger, storage, "", "")
	catalog := service.NewCatalogService(s, uploader, logger)

	return NewCoverImporter(catalog, logger), s
}

func insertRecord(t *testing.T, s store.Store, title string) *domain.Record {
	t.Helper()

	now := time.Now()
	record := &domain.Record{
		ID:        id.MustGenerate(id.Record),
		CreatedAt: now,
		UpdatedAt: now,
		Title:     title,
		Artist:    "Miles Davis",
		Genre:     "Modal Jazz",
		Price:     29.99,
	}
	require.NoError(t, s.CreateRecord(context.Background(), record))
	return record
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

func TestImportFile(t *testing.T) {
	importer, s := setupImporter(t)
	record := insertRecord(t, s, "Kind of Blue")

	dropDir := t.TempDir()
	path := filepath.Join(dropDir, record.ID+".png")
	require.NoError(t, os.WriteFile(path, coverPNG(t), 0o644))

	require.NoError(t, importer.importFile(context.Background(), path))

	updated, err := s.GetRecord(context.Background(), record.ID)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(updated.ImageURL, "/images/"))
	assert.NotEmpty(t, updated.ImageBlurHash)

	// Consumed files are removed from the drop directory.
	_, err = os.Stat(path)
	assert.True(t, os.IsNotExist(err))
}

func TestImportFile_UnknownRecord(t *testing.T) {
	importer, _ := setupImporter(t)

	dropDir := t.TempDir()
	path := filepath.Join(dropDir, "rec-missing.png")
	require.NoError(t, os.WriteFile(path, coverPNG(t), 0o644))

	err := importer.importFile(context.Background(), path)
	require.Error(t, err)

	// Failed imports stay in place so the operator can rename and retry.
	_, statErr := os.Stat(path)
	assert.NoError(t, statErr)
}

func TestImportFile_UnsupportedExtension(t *testing.T) {
	importer, _ := setupImporter(t)

	dropDir := t.TempDir()
	path := filepath.Join(dropDir, "rec-abc.txt")
	require.NoError(t, os.WriteFile(path, []byte("not an image"), 0o644))

	err := importer.importFile(context.Background(), path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported image extension")
}

func TestWatchAndImport(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping watcher test in short mode")
	}

	importer, s := setupImporter(t)
	record := insertRecord(t, s, "Blue Train")

	dropDir := t.TempDir()

	w, err := New(slog.New(slog.DiscardHandler), dropDir, Options{SettleDelay: 50 * time.Millisecond})
	require.NoError(t, err)
	defer w.Stop()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	go w.Start(ctx)
	go importer.Run(ctx, w)

	path := filepath.Join(dropDir, record.ID+".png")
	require.NoError(t, os.WriteFile(path, coverPNG(t), 0o644))

	require.Eventually(t, func() bool {
		updated, err := s.GetRecord(context.Background(), record.ID)
		return err == nil && updated.ImageURL != ""
	}, 5*time.Second, 50*time.Millisecond)
}

func TestScanExisting(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping watcher test in short mode")
	}

	importer, s := setupImporter(t)
	record := insertRecord(t, s, "Giant Steps")

	// Drop the file before the watcher starts.
	dropDir := t.TempDir()
	path := filepath.Join(dropDir, record.ID+".png")
	require.NoError(t, os.WriteFile(path, coverPNG(t), 0o644))

	w, err := New(slog.New(slog.DiscardHandler), dropDir, Options{SettleDelay: 50 * time.Millisecond})
	require.NoError(t, err)
	defer w.Stop()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	go w.Start(ctx)
	go importer.Run(ctx, w)

	require.Eventually(t, func() bool {
		updated, err := s.GetRecord(context.Background(), record.ID)
		return err == nil && updated.ImageURL != ""
	}, 5*time.Second, 50*time.Millisecond)
}
