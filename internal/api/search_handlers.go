package api

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/bookscape/bookscape-server/internal/search"
)

func (s *Server) registerSearchRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "search",
		Method:      http.MethodGet,
		Path:        "/api/v1/search",
		Summary:     "Search books",
		Description: "Full-text search across titles, authors, and descriptions",
		Tags:        []string{"Search"},
	}, s.handleSearch)
}

// === DTOs ===

// SearchInput contains parameters for searching the dataset.
type SearchInput struct {
	Query  string `query:"q" doc:"Search query; empty matches everything"`
	Genre  string `query:"genre" doc:"Restrict matches to a single genre"`
	Limit  int    `query:"limit" doc:"Max results (default 20, max 100)"`
	Offset int    `query:"offset" doc:"Pagination offset"`
}

// SearchHitResult contains a single search result.
type SearchHitResult struct {
	ID         int               `json:"id" doc:"Record id"`
	Score      float64           `json:"score" doc:"Search relevance score"`
	Title      string            `json:"title" doc:"Book title"`
	Author     string            `json:"author" doc:"Author name"`
	Genre      string            `json:"genre" doc:"Genre"`
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
	result, err := s.services.Search.Search(ctx, search.Params{
		Query:  input.Query,
		Genre:  input.Genre,
		Limit:  input.Limit,
		Offset: input.Offset,
	})
	if err != nil {
		return nil, err
	}

	hits := make([]SearchHitResult, 0, len(result.Hits))
	for _, hit := range result.Hits {
		hits = append(hits, SearchHitResult{
			ID:         hit.ID,
			Score:      hit.Score,
			Title:      hit.Title,
			Author:     hit.Author,
			Genre:      hit.Genre,
			Highlights: hit.Highlights,
		})
	}

	return &SearchOutput{
		Body: SearchResponse{
			Query:  result.Query,
			Total:  result.Total,
			TookMs: result.TookMs,
			Hits:   hits,
		},
	}, nil
}
