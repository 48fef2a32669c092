package watcher

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/juzzt/juzzt-server/internal/service"
)

// CoverImporter consumes drop directory events and attaches the images to
// records. The file name identifies the record: {recordID}.jpg sets the cover
// of that record.
type CoverImporter struct {
	catalog *service.CatalogService
	logger  *slog.Logger
}

// NewCoverImporter creates a new cover importer.
func NewCoverImporter(catalog *service.CatalogService, logger *slog.Logger) *CoverImporter {
	return &CoverImporter{
		catalog: catalog,
		logger:  logger.With("component", "cover_importer"),
	}
}

// Run consumes events from the watcher until the context is cancelled.
// Import failures are logged and the file is left in place so the operator
// can fix the name and retry.
func (i *CoverImporter) Run(ctx context.Context, w *DropWatcher) {
	for {
		select {
		case <-ctx.Done():
			return
		case event, ok := <-w.Events():
			if !ok {
				return
			}
			if err := i.importFile(ctx, event.Path); err != nil {
				i.logger.Warn("cover import failed", "path", event.Path, "error", err)
			}
		case err, ok := <-w.Errors():
			if !ok {
				return
			}
			i.logger.Error("drop directory watch error", "error", err)
		}
	}
}

// importFile attaches one dropped image to its record and removes the file.
func (i *CoverImporter) importFile(ctx context.Context, path string) error {
	base := filepath.Base(path)
	ext := strings.ToLower(filepath.Ext(base))

	switch ext {
	case ".jpg", ".jpeg", ".png", ".webp", ".gif":
	default:
		return fmt.Errorf("unsupported image extension %q", ext)
	}

	recordID := strings.TrimSuffix(base, filepath.Ext(base))
	if recordID == "" {
		return fmt.Errorf("file name %q has no record ID", base)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read dropped file: %w", err)
	}

	record, err := i.catalog.UploadCover(ctx, recordID, data, ext)
	if err != nil {
		return fmt.Errorf("failed to attach cover to record %s: %w", recordID, err)
	}

	if err := os.Remove(path); err != nil {
		i.logger.Warn("failed to remove imported file", "path", path, "error", err)
	}

	i.logger.Info("imported dropped cover",
		"record_id", record.ID,
		"title", record.Title,
		"image_url", record.ImageURL)
	return nil
}
