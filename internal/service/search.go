package service

import (
	"context"
	"log/slog"

	domainerrors "github.com/bookscape/bookscape-server/internal/errors"
	"github.com/bookscape/bookscape-server/internal/search"
)

// SearchService runs full-text queries against the book index.
type SearchService struct {
	index  *search.Index
	logger *slog.Logger
}

// NewSearchService creates a search service.
func NewSearchService(index *search.Index, logger *slog.Logger) *SearchService {
	return &SearchService{index: index, logger: logger}
}

// DocumentCount returns the number of indexed records.
func (s *SearchService) DocumentCount() (uint64, error) {
	if s.index == nil {
		return 0, domainerrors.Unavailable("search index not available")
	}
	return s.index.DocCount()
}

// Search executes a query. Limit is clamped to [1, 100].
func (s *SearchService) Search(ctx context.Context, params search.Params) (*search.Result, error) {
	if s.index == nil {
		return nil, domainerrors.Unavailable("search index not available")
	}

	if params.Limit <= 0 {
		params.Limit = search.DefaultParams().Limit
	}
	if params.Limit > 100 {
		params.Limit = 100
	}
	if params.Offset < 0 {
		params.Offset = 0
	}

	result, err := s.index.Search(ctx, params)
	if err != nil {
		s.logger.Error("search failed",
			slog.String("query", params.Query),
			slog.String("error", err.Error()))
		return nil, domainerrors.Wrap(err, domainerrors.CodeInternal, "search failed")
	}
	return result, nil
}
