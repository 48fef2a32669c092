package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/juzzt/juzzt-server/internal/domain"
	"github.com/juzzt/juzzt-server/internal/search"
	"github.com/juzzt/juzzt-server/internal/store"
)

// SearchService exposes catalog search and keeps the index in sync.
// It implements store.SearchIndexer so the store can push record changes.
type SearchService struct {
	index  *search.Index
	store  store.Store
	logger *slog.Logger
}

var _ store.SearchIndexer = (*SearchService)(nil)

// NewSearchService creates a new search service.
func NewSearchService(index *search.Index, store store.Store, logger *slog.Logger) *SearchService {
	return &SearchService{
		index:  index,
		store:  store,
		logger: logger,
	}
}

// Search runs a catalog query.
func (s *SearchService) Search(ctx context.Context, params search.Params) (*search.Result, error) {
	if params.Limit <= 0 {
		params.Limit = search.DefaultParams().Limit
	}
	return s.index.Search(ctx, params)
}

// IndexRecord adds or updates a record in the search index.
func (s *SearchService) IndexRecord(_ context.Context, record *domain.Record) error {
	return s.index.IndexDocument(search.RecordToDocument(record))
}

// DeleteRecord removes a record from the search index.
func (s *SearchService) DeleteRecord(_ context.Context, recordID string) error {
	return s.index.DeleteDocument(recordID)
}

// DocumentCount returns the number of indexed records.
func (s *SearchService) DocumentCount() (uint64, error) {
	return s.index.DocumentCount()
}

// ReindexAll rebuilds the index from the catalog. Used at startup when the
// index is missing or its mapping changed, and by the admin reindex endpoint.
func (s *SearchService) ReindexAll(ctx context.Context) (int, error) {
	records, err := s.store.ListRecords(ctx)
	if err != nil {
		return 0, fmt.Errorf("list records: %w", err)
	}

	docs := make([]*search.RecordDocument, 0, len(records))
	for _, record := range records {
		docs = append(docs, search.RecordToDocument(record))
	}

	if err := s.index.IndexDocuments(docs); err != nil {
		return 0, fmt.Errorf("index records: %w", err)
	}

	s.logger.Info("catalog reindexed", "records", len(docs))
	return len(docs), nil
}
