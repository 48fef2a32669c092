package api

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"
)

func (s *Server) registerAdminRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "runEnrichment",
		Method:      http.MethodPost,
		Path:        "/api/v1/admin/enrich",
		Summary:     "Run metadata enrichment",
		Description: "Fills missing MusicBrainz IDs and cover art across the catalog. Failures on individual records are skipped and counted.",
		Tags:        []string{"Admin"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleRunEnrichment)

	huma.Register(s.api, huma.Operation{
		OperationID: "enrichRecord",
		Method:      http.MethodPost,
		Path:        "/api/v1/admin/enrich/{id}",
		Summary:     "Enrich a single record",
		Description: "Fills the record's missing MusicBrainz ID and cover art",
		Tags:        []string{"Admin"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleEnrichRecord)

	huma.Register(s.api, huma.Operation{
		OperationID: "rebuildSearchIndex",
		Method:      http.MethodPost,
		Path:        "/api/v1/admin/search/reindex",
		Summary:     "Rebuild search index",
		Description: "Reindexes the whole catalog into the search index",
		Tags:        []string{"Admin"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleRebuildSearchIndex)
}

// === DTOs ===

// EnrichSummaryResponse reports the outcome of a full enrichment run.
type EnrichSummaryResponse struct {
	Processed int `json:"processed" doc:"Records that needed enrichment"`
	Enriched  int `json:"enriched" doc:"Records updated"`
	Failed    int `json:"failed" doc:"Records skipped due to errors"`
}

// EnrichSummaryOutput wraps the summary for Huma.
type EnrichSummaryOutput struct {
	Body EnrichSummaryResponse
}

// EnrichRecordInput identifies a record by path parameter.
type EnrichRecordInput struct {
	ID string `path:"id" doc:"Record ID"`
}

// EnrichResultResponse reports what enriching one record changed.
type EnrichResultResponse struct {
	RecordID    string `json:"record_id" doc:"Record ID"`
	SetMBID     bool   `json:"set_musicbrainz_id" doc:"MusicBrainz ID was filled"`
	SetCover    bool   `json:"set_cover" doc:"Cover URL was filled"`
	MBIDMissing bool   `json:"mbid_missing" doc:"Lookup ran and found nothing"`
}

// EnrichResultOutput wraps the result for Huma.
type EnrichResultOutput struct {
	Body EnrichResultResponse
}

// ReindexResponse reports a search index rebuild.
type ReindexResponse struct {
	Indexed int `json:"indexed" doc:"Records indexed"`
}

// ReindexOutput wraps the reindex response for Huma.
type ReindexOutput struct {
	Body ReindexResponse
}

// === Handlers ===

func (s *Server) handleRunEnrichment(ctx context.Context, _ *struct{}) (*EnrichSummaryOutput, error) {
	if _, err := s.RequireAdmin(ctx); err != nil {
		return nil, err
	}

	summary, err := s.services.Enrich.EnrichAll(ctx)
	if err != nil {
		return nil, err
	}

	return &EnrichSummaryOutput{Body: EnrichSummaryResponse{
		Processed: summary.Processed,
		Enriched:  summary.Enriched,
		Failed:    summary.Failed,
	}}, nil
}

func (s *Server) handleEnrichRecord(ctx context.Context, input *EnrichRecordInput) (*EnrichResultOutput, error) {
	if _, err := s.RequireAdmin(ctx); err != nil {
		return nil, err
	}

	result, err := s.services.Enrich.EnrichRecord(ctx, input.ID)
	if err != nil {
		return nil, err
	}

	return &EnrichResultOutput{Body: EnrichResultResponse{
		RecordID:    result.RecordID,
		SetMBID:     result.SetMBID,
		SetCover:    result.SetCover,
		MBIDMissing: result.MBIDMissing,
	}}, nil
}

func (s *Server) handleRebuildSearchIndex(ctx context.Context, _ *struct{}) (*ReindexOutput, error) {
	if _, err := s.RequireAdmin(ctx); err != nil {
		return nil, err
	}

	n, err := s.services.Search.ReindexAll(ctx)
	if err != nil {
		return nil, err
	}

	return &ReindexOutput{Body: ReindexResponse{Indexed: n}}, nil
}
