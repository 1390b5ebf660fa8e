package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/bookshelfapp/bookshelf-server/internal/search"
	"github.com/bookshelfapp/bookshelf-server/internal/store"
)

// SearchService provides full-text search over the catalogue.
// It bridges the search index with the library, handling rebuilds and
// query execution.
type SearchService struct {
	index   *search.SearchIndex
	library *store.Library
	logger  *slog.Logger
}

// NewSearchService creates a new search service.
func NewSearchService(index *search.SearchIndex, library *store.Library, logger *slog.Logger) *SearchService {
	return &SearchService{
		index:   index,
		library: library,
		logger:  logger,
	}
}

// Search executes a catalogue query.
func (s *SearchService) Search(ctx context.Context, params search.SearchParams) (*search.SearchResult, error) {
	return s.index.Search(ctx, params)
}

// ReindexAll rebuilds the index from the library.
func (s *SearchService) ReindexAll(_ context.Context) error {
	books := s.library.List()
	if err := s.index.Rebuild(books); err != nil {
		return fmt.Errorf("rebuild index: %w", err)
	}
	s.logger.Info("search index rebuilt", "books", len(books))
	return nil
}
