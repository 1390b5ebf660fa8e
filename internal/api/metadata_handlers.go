package api

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/bookshelfapp/bookshelf-server/internal/domain"
	"github.com/bookshelfapp/bookshelf-server/internal/service"
)

func (s *Server) registerMetadataRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "lookupBooks",
		Method:      http.MethodGet,
		Path:        "/api/v1/lookup",
		Summary:     "Look up books",
		Description: "Searches the book-metadata service directly, without debouncing",
		Tags:        []string{"Metadata"},
	}, s.handleLookup)

	huma.Register(s.api, huma.Operation{
		OperationID: "findCover",
		Method:      http.MethodGet,
		Path:        "/api/v1/covers",
		Summary:     "Find cover",
		Description: "Runs the cover chain and returns the first image that loads, with every attempt",
		Tags:        []string{"Metadata"},
	}, s.handleFindCover)

	huma.Register(s.api, huma.Operation{
		OperationID: "summarizeDescription",
		Method:      http.MethodPost,
		Path:        "/api/v1/descriptions/summarize",
		Summary:     "Summarize description",
		Description: "Strips markup and shortens a description to its first sentence",
		Tags:        []string{"Metadata"},
	}, s.handleSummarize)
}

// LookupInput contains lookup parameters.
type LookupInput struct {
	Query string `query:"q" doc:"Search text"`
	Limit int    `query:"limit" default:"5" minimum:"1" maximum:"20" doc:"Maximum candidates"`
}

// LookupOutput returns candidates.
type LookupOutput struct {
	Body struct {
		Candidates []domain.Candidate `json:"candidates"`
	}
}

// CoverInput contains the cover chain parameters.
type CoverInput struct {
	Title  string `query:"title" doc:"Book title"`
	Author string `query:"author" doc:"Author name"`
}

// CoverOutput returns the chain outcome.
type CoverOutput struct {
	Body *service.CoverResult
}

// SummarizeRequest is a raw description.
type SummarizeRequest struct {
	Text             string   `json:"text" maxLength:"100000" doc:"Description, possibly HTML"`
	FirstPublishYear int      `json:"first_publish_year,omitempty" doc:"Used when no description remains"`
	Subjects         []string `json:"subjects,omitempty" doc:"Used when no description remains"`
}

// SummarizeInput wraps the summarize request for Huma.
type SummarizeInput struct {
	Body SummarizeRequest
}

// SummarizeOutput returns the brief description.
type SummarizeOutput struct {
	Body service.SummaryResult
}

func (s *Server) handleLookup(ctx context.Context, input *LookupInput) (*LookupOutput, error) {
	candidates, err := s.services.Metadata.Lookup(ctx, input.Query, input.Limit)
	if err != nil {
		return nil, err
	}
	out := &LookupOutput{}
	out.Body.Candidates = candidates
	return out, nil
}

func (s *Server) handleFindCover(ctx context.Context, input *CoverInput) (*CoverOutput, error) {
	res, err := s.services.Metadata.FindCover(ctx, input.Title, input.Author)
	if err != nil {
		return nil, err
	}
	return &CoverOutput{Body: res}, nil
}

func (s *Server) handleSummarize(_ context.Context, input *SummarizeInput) (*SummarizeOutput, error) {
	res := s.services.Metadata.Summarize(input.Body.Text, input.Body.FirstPublishYear, input.Body.Subjects)
	return &SummarizeOutput{Body: res}, nil
}
