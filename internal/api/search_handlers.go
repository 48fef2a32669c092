package api

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"
	"github.com/juzzt/juzzt-server/internal/search"
)

func (s *Server) registerSearchRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "searchRecords",
		Method:      http.MethodGet,
		Path:        "/api/v1/search",
		Summary:     "Search records",
		Description: "Full-text search over the catalog (title, artist, genre)",
		Tags:        []string{"Search"},
	}, s.handleSearch)
}

// === DTOs ===

// SearchInput contains parameters for searching the catalog.
type SearchInput struct {
	Query     string  `query:"q" validate:"required,min=1,max=200" doc:"Search query"`
	Genre     string  `query:"genre" validate:"omitempty,max=120" doc:"Filter by exact genre"`
	MinPrice  float64 `query:"min_price" validate:"omitempty,gte=0" doc:"Minimum price"`
	MaxPrice  float64 `query:"max_price" validate:"omitempty,gte=0" doc:"Maximum price (0 for unbounded)"`
	Limit     int     `query:"limit" validate:"omitempty,gte=1,lte=100" doc:"Max results (default 20)"`
	Offset    int     `query:"offset" validate:"omitempty,gte=0" doc:"Pagination offset"`
	SortBy    string  `query:"sort" validate:"omitempty,oneof=relevance title artist recent price" doc:"Sort field"`
	SortOrder string  `query:"order" validate:"omitempty,oneof=asc desc" doc:"Sort direction"`
}

// SearchHitResult contains a single search result.
type SearchHitResult struct {
	ID         string            `json:"id" doc:"Record ID"`
	Score      float64           `json:"score" doc:"Relevance score"`
	Title      string            `json:"title" doc:"Album title"`
	Artist     string            `json:"artist,omitempty" doc:"Artist name"`
	Genre      string            `json:"genre,omitempty" doc:"Genre"`
	Price      float64           `json:"price,omitempty" doc:"Current price"`
	Highlights map[string]string `json:"highlights,omitempty" doc:"Highlighted matches"`
}

// SearchResponse contains search results.
type SearchResponse struct {
	Query  string            `json:"query" doc:"Original search query"`
	Total  uint64            `json:"total" doc:"Total matches"`
	TookMs int64             `json:"took_ms" doc:"Search duration in milliseconds"`
	Hits   []SearchHitResult `json:"hits" doc:"Search results"`
}

// SearchOutput wraps the search response for Huma.
type SearchOutput struct {
	Body SearchResponse
}

// === Handlers ===

func (s *Server) handleSearch(ctx context.Context, input *SearchInput) (*SearchOutput, error) {
	params := search.DefaultParams()
	params.Query = input.Query
	params.Genre = input.Genre
	params.MinPrice = input.MinPrice
	params.MaxPrice = input.MaxPrice
	if input.Limit > 0 {
		params.Limit = input.Limit
	}
	params.Offset = input.Offset
	if input.SortBy != "" {
		params.SortBy = input.SortBy
	}
	if input.SortOrder != "" {
		params.SortOrder = input.SortOrder
	}

	result, err := s.services.Search.Search(ctx, params)
	if err != nil {
		return nil, err
	}

	hits := make([]SearchHitResult, len(result.Hits))
	for i, hit := range result.Hits {
		hits[i] = SearchHitResult{
			ID:         hit.ID,
			Score:      hit.Score,
			Title:      hit.Title,
			Artist:     hit.Artist,
			Genre:      hit.Genre,
			Price:      hit.Price,
			Highlights: hit.Highlights,
		}
	}

	return &SearchOutput{Body: SearchResponse{
		Query:  result.Query,
		Total:  result.Total,
		TookMs: result.TookMs,
		Hits:   hits,
	}}, nil
}
