package api

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/bookshelfapp/bookshelf-server/internal/search"
)

func (s *Server) registerSearchRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "searchCatalogue",
		Method:      http.MethodGet,
		Path:        "/api/v1/search",
		Summary:     "Search catalogue",
		Description: "Full-text search over the catalogue with genre and read filters, facets, and highlights",
		Tags:        []string{"Search"},
	}, s.handleSearch)
}

// SearchInput contains search query parameters.
type SearchInput struct {
	Query  string `query:"q" doc:"Search text"`
	Genre  string `query:"genre" doc:"Genre slug filter"`
	Read   string `query:"read" enum:"true,false" doc:"Read status filter"`
	Sort   string `query:"sort" enum:"relevance,title,author,recent,pages" doc:"Sort order"`
	Order  string `query:"order" enum:"asc,desc" doc:"Sort direction"`
	Limit  int    `query:"limit" default:"20" minimum:"1" maximum:"100" doc:"Page size"`
	Offset int    `query:"offset" minimum:"0" doc:"Page offset"`
}

// SearchOutput wraps the search result for Huma.
type SearchOutput struct {
	Body *search.SearchResult
}

func (s *Server) handleSearch(ctx context.Context, input *SearchInput) (*SearchOutput, error) {
	params := search.DefaultSearchParams()
	params.Query = input.Query
	params.GenreSlug = input.Genre
	params.Limit = input.Limit
	params.Offset = input.Offset
	if input.Sort != "" {
		params.SortBy = input.Sort
	}
	if input.Order != "" {
		params.SortOrder = input.Order
	}
	switch input.Read {
	case "true":
		read := true
		params.Read = &read
	case "false":
		read := false
		params.Read = &read
	}

	result, err := s.services.Search.Search(ctx, params)
	if err != nil {
		return nil, err
	}
	return &SearchOutput{Body: result}, nil
}
