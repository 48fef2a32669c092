package api

import (
	"context"
	"net/http"
	"time"

	"github.com/danielgtaylor/huma/v2"
	"github.com/juzzt/juzzt-server/internal/domain"
	"github.com/juzzt/juzzt-server/internal/service"
)

func (s *Server) registerRecordRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "listRecords",
		Method:      http.MethodGet,
		Path:        "/api/v1/records",
		Summary:     "List records",
		Description: "Returns the full catalog",
		Tags:        []string{"Records"},
	}, s.handleListRecords)

	huma.Register(s.api, huma.Operation{
		OperationID: "getRecord",
		Method:      http.MethodGet,
		Path:        "/api/v1/records/{id}",
		Summary:     "Get record",
		Description: "Returns a single catalog record",
		Tags:        []string{"Records"},
	}, s.handleGetRecord)

	huma.Register(s.api, huma.Operation{
		OperationID: "createRecord",
		Method:      http.MethodPost,
		Path:        "/api/v1/records",
		Summary:     "Add record",
		Description: "Adds a record to the catalog (admin only)",
		Tags:        []string{"Records"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleCreateRecord)

	huma.Register(s.api, huma.Operation{
		OperationID: "updateRecord",
		Method:      http.MethodPatch,
		Path:        "/api/v1/records/{id}",
		Summary:     "Update record",
		Description: "Applies a partial update to a record (admin only)",
		Tags:        []string{"Records"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleUpdateRecord)

	huma.Register(s.api, huma.Operation{
		OperationID: "deleteRecord",
		Method:      http.MethodDelete,
		Path:        "/api/v1/records/{id}",
		Summary:     "Delete record",
		Description: "Removes a record from the catalog (admin only)",
		Tags:        []string{"Records"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleDeleteRecord)

	huma.Register(s.api, huma.Operation{
		OperationID: "uploadRecordCover",
		Method:      http.MethodPost,
		Path:        "/api/v1/records/{id}/cover",
		Summary:     "Upload record cover",
		Description: "Attaches a cover image to a record. An explicit upload always replaces the current cover, including one set by enrichment.",
		Tags:        []string{"Records"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleUploadRecordCover)
}

// === DTOs ===

// RecordResponse contains a catalog record in API responses.
type RecordResponse struct {
	ID            string    `json:"id" doc:"Record ID"`
	Title         string    `json:"title" doc:"Album title"`
	Artist        string    `json:"artist" doc:"Artist name"`
	Genre         string    `json:"genre,omitempty" doc:"Genre"`
	Price         float64   `json:"price" doc:"Current price"`
	ImageURL      string    `json:"image_url,omitempty" doc:"Cover image URL"`
	ImageBlurHash string    `json:"image_blur_hash,omitempty" doc:"BlurHash placeholder for the cover"`
	MusicBrainzID string    `json:"musicbrainz_id,omitempty" doc:"MusicBrainz release-group ID"`
	CreatedAt     time.Time `json:"created_at" doc:"Creation timestamp"`
	UpdatedAt     time.Time `json:"updated_at" doc:"Last update timestamp"`
}

// RecordOutput wraps a single record for Huma.
type RecordOutput struct {
	Body RecordResponse
}

// RecordListOutput wraps a record list for Huma.
type RecordListOutput struct {
	Body []RecordResponse
}

// GetRecordInput identifies a record by path parameter.
type GetRecordInput struct {
	ID string `path:"id" doc:"Record ID"`
}

// CreateRecordRequest is the request body for adding a record.
type CreateRecordRequest struct {
	Title         string  `json:"title" validate:"required,max=500" doc:"Album title"`
	Artist        string  `json:"artist" validate:"required,max=500" doc:"Artist name"`
	Genre         string  `json:"genre,omitempty" validate:"omitempty,max=120" doc:"Genre"`
	Price         float64 `json:"price" validate:"required,gt=0" doc:"Price"`
	ImageURL      string  `json:"image_url,omitempty" validate:"omitempty,url" doc:"Cover image URL"`
	MusicBrainzID string  `json:"musicbrainz_id,omitempty" doc:"MusicBrainz release-group ID"`
}

// CreateRecordInput wraps the create request for Huma.
type CreateRecordInput struct {
	Body CreateRecordRequest
}

// UpdateRecordRequest contains updatable record fields.
// Nil pointers leave the field unchanged (PATCH semantics).
type UpdateRecordRequest struct {
	Title  *string  `json:"title,omitempty" doc:"Album title"`
	Artist *string  `json:"artist,omitempty" doc:"Artist name"`
	Genre  *string  `json:"genre,omitempty" doc:"Genre"`
	Price  *float64 `json:"price,omitempty" doc:"Price"`
}

// UpdateRecordInput wraps the update request for Huma.
type UpdateRecordInput struct {
	ID   string `path:"id" doc:"Record ID"`
	Body UpdateRecordRequest
}

// UploadCoverInput carries the raw image bytes for a cover upload.
type UploadCoverInput struct {
	ID          string `path:"id" doc:"Record ID"`
	ContentType string `header:"Content-Type"`
	RawBody     []byte
}

func mapRecordResponse(record *domain.Record) RecordResponse {
	return RecordResponse{
		ID:            record.ID,
		Title:         record.Title,
		Artist:        record.Artist,
		Genre:         record.Genre,
		Price:         record.Price,
		ImageURL:      record.ImageURL,
		ImageBlurHash: record.ImageBlurHash,
		MusicBrainzID: record.MusicBrainzID,
		CreatedAt:     record.CreatedAt,
		UpdatedAt:     record.UpdatedAt,
	}
}

func mapRecordListResponse(records []*domain.Record) []RecordResponse {
	out := make([]RecordResponse, len(records))
	for i, record := range records {
		out[i] = mapRecordResponse(record)
	}
	return out
}

// === Handlers ===

func (s *Server) handleListRecords(ctx context.Context, _ *struct{}) (*RecordListOutput, error) {
	records, err := s.services.Catalog.ListRecords(ctx)
	if err != nil {
		return nil, err
	}

	return &RecordListOutput{Body: mapRecordListResponse(records)}, nil
}

func (s *Server) handleGetRecord(ctx context.Context, input *GetRecordInput) (*RecordOutput, error) {
	record, err := s.services.Catalog.GetRecord(ctx, input.ID)
	if err != nil {
		return nil, err
	}

	return &RecordOutput{Body: mapRecordResponse(record)}, nil
}

func (s *Server) handleCreateRecord(ctx context.Context, input *CreateRecordInput) (*RecordOutput, error) {
	if _, err := s.RequireAdmin(ctx); err != nil {
		return nil, err
	}

	record, err := s.services.Catalog.CreateRecord(ctx, service.CreateRecordRequest{
		Title:         input.Body.Title,
		Artist:        input.Body.Artist,
		Genre:         input.Body.Genre,
		Price:         input.Body.Price,
		ImageURL:      input.Body.ImageURL,
		MusicBrainzID: input.Body.MusicBrainzID,
	})
	if err != nil {
		return nil, err
	}

	return &RecordOutput{Body: mapRecordResponse(record)}, nil
}

func (s *Server) handleUpdateRecord(ctx context.Context, input *UpdateRecordInput) (*RecordOutput, error) {
	if _, err := s.RequireAdmin(ctx); err != nil {
		return nil, err
	}

	record, err := s.services.Catalog.UpdateRecord(ctx, input.ID, service.UpdateRecordRequest{
		Title:  input.Body.Title,
		Artist: input.Body.Artist,
		Genre:  input.Body.Genre,
		Price:  input.Body.Price,
	})
	if err != nil {
		return nil, err
	}

	return &RecordOutput{Body: mapRecordResponse(record)}, nil
}

func (s *Server) handleDeleteRecord(ctx context.Context, input *GetRecordInput) (*MessageOutput, error) {
	if _, err := s.RequireAdmin(ctx); err != nil {
		return nil, err
	}

	if err := s.services.Catalog.DeleteRecord(ctx, input.ID); err != nil {
		return nil, err
	}

	return &MessageOutput{Body: MessageResponse{Message: "Record deleted"}}, nil
}

func (s *Server) handleUploadRecordCover(ctx context.Context, input *UploadCoverInput) (*RecordOutput, error) {
	if _, err := GetUserID(ctx); err != nil {
		return nil, err
	}

	if len(input.RawBody) == 0 {
		return nil, huma.Error400BadRequest("Image data is required")
	}

	record, err := s.services.Catalog.UploadCover(ctx, input.ID, input.RawBody, extFromContentType(input.ContentType))
	if err != nil {
		return nil, err
	}

	return &RecordOutput{Body: mapRecordResponse(record)}, nil
}

// extFromContentType maps an image content type to a file extension,
// defaulting to .jpg.
func extFromContentType(contentType string) string {
	switch contentType {
	case "image/png":
		return ".png"
	case "image/webp":
		return ".webp"
	case "image/gif":
		return ".gif"
	default:
		return ".jpg"
	}
}
