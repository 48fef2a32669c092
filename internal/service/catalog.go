package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/juzzt/juzzt-server/internal/domain"
	"github.com/juzzt/juzzt-server/internal/id"
	"github.com/juzzt/juzzt-server/internal/media/images"
	"github.com/juzzt/juzzt-server/internal/store"
)

// CatalogService manages the record catalog.
type CatalogService struct {
	store    store.Store
	uploader *images.Uploader
	logger   *slog.Logger
}

// NewCatalogService creates a new catalog service.
func NewCatalogService(store store.Store, uploader *images.Uploader, logger *slog.Logger) *CatalogService {
	return &CatalogService{
		store:    store,
		uploader: uploader,
		logger:   logger,
	}
}

// CreateRecordRequest contains the fields for a new catalog entry.
type CreateRecordRequest struct {
	Title  string  `json:"title" validate:"required,max=500"`
	Artist string  `json:"artist" validate:"required,max=500"`
	Genre  string  `json:"genre" validate:"max=120"`
	Price  float64 `json:"price" validate:"required,gt=0"`

	// Optional; enrichment fills these when empty.
	ImageURL      string `json:"image_url" validate:"omitempty,url"`
	MusicBrainzID string `json:"musicbrainz_id"`
}

// UpdateRecordRequest contains updatable record fields.
// Nil pointers leave the field unchanged.
type UpdateRecordRequest struct {
	Title  *string  `json:"title" validate:"omitempty,max=500"`
	Artist *string  `json:"artist" validate:"omitempty,max=500"`
	Genre  *string  `json:"genre" validate:"omitempty,max=120"`
	Price  *float64 `json:"price" validate:"omitempty,gt=0"`
}

// CreateRecord adds a record to the catalog.
func (s *CatalogService) CreateRecord(ctx context.Context, req CreateRecordRequest) (*domain.Record, error) {
	if err := validate.Validate(req); err != nil {
		return nil, err
	}

	recordID, err := id.Generate(id.Record)
	if err != nil {
		return nil, fmt.Errorf("generate record ID: %w", err)
	}

	now := time.Now()
	record := &domain.Record{
		ID:            recordID,
		CreatedAt:     now,
		UpdatedAt:     now,
		Title:         req.Title,
		Artist:        req.Artist,
		Genre:         req.Genre,
		Price:         req.Price,
		ImageURL:      req.ImageURL,
		MusicBrainzID: req.MusicBrainzID,
	}

	if err := s.store.CreateRecord(ctx, record); err != nil {
		return nil, fmt.Errorf("create record: %w", err)
	}

	s.logger.Info("record added to catalog",
		"record_id", recordID,
		"artist", record.Artist,
		"title", record.Title,
	)

	return record, nil
}

// GetRecord fetches a single record.
func (s *CatalogService) GetRecord(ctx context.Context, recordID string) (*domain.Record, error) {
	return s.store.GetRecord(ctx, recordID)
}

// ListRecords returns the whole catalog in stable ID order.
func (s *CatalogService) ListRecords(ctx context.Context) ([]*domain.Record, error) {
	return s.store.ListRecords(ctx)
}

// UpdateRecord applies a partial update to a record.
func (s *CatalogService) UpdateRecord(ctx context.Context, recordID string, req UpdateRecordRequest) (*domain.Record, error) {
	if err := validate.Validate(req); err != nil {
		return nil, err
	}

	record, err := s.store.GetRecord(ctx, recordID)
	if err != nil {
		return nil, err
	}

	if req.Title != nil {
		record.Title = *req.Title
	}
	if req.Artist != nil {
		record.Artist = *req.Artist
	}
	if req.Genre != nil {
		record.Genre = *req.Genre
	}
	if req.Price != nil {
		record.Price = *req.Price
	}
	record.UpdatedAt = time.Now()

	if err := s.store.UpdateRecord(ctx, record); err != nil {
		return nil, fmt.Errorf("update record: %w", err)
	}

	return record, nil
}

// DeleteRecord removes a record from the catalog.
// Existing orders keep their snapshot prices and line entries.
func (s *CatalogService) DeleteRecord(ctx context.Context, recordID string) error {
	if err := s.store.DeleteRecord(ctx, recordID); err != nil {
		return err
	}

	s.logger.Info("record removed from catalog", "record_id", recordID)
	return nil
}

// UploadCover hosts a user-supplied cover image and attaches it to the record.
// Unlike enrichment, an explicit upload always replaces the existing cover.
func (s *CatalogService) UploadCover(ctx context.Context, recordID string, imgData []byte, ext string) (*domain.Record, error) {
	record, err := s.store.GetRecord(ctx, recordID)
	if err != nil {
		return nil, err
	}

	hosted, err := s.uploader.Host(ctx, imgData, ext)
	if err != nil {
		return nil, fmt.Errorf("host cover: %w", err)
	}

	record.ImageURL = hosted.URL
	record.ImageBlurHash = hosted.BlurHash
	record.UpdatedAt = time.Now()

	if err := s.store.UpdateRecord(ctx, record); err != nil {
		return nil, fmt.Errorf("update record: %w", err)
	}

	s.logger.Info("cover uploaded",
		"record_id", recordID,
		"url", hosted.URL,
	)

	return record, nil
}
