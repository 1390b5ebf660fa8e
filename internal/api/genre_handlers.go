package api

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/bookshelfapp/bookshelf-server/internal/genre"
)

func (s *Server) registerGenreRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "listGenres",
		Method:      http.MethodGet,
		Path:        "/api/v1/genres",
		Summary:     "List genres",
		Description: "Returns every genre label the classifier can produce",
		Tags:        []string{"Genres"},
	}, s.handleListGenres)

	huma.Register(s.api, huma.Operation{
		OperationID: "classifyGenre",
		Method:      http.MethodPost,
		Path:        "/api/v1/genres/classify",
		Summary:     "Classify subjects",
		Description: "Maps subject headings to a genre label. No match yields Fiction",
		Tags:        []string{"Genres"},
	}, s.handleClassifyGenre)
}

// ListGenresOutput contains the labels.
type ListGenresOutput struct {
	Body struct {
		Genres []genre.Label `json:"genres"`
	}
}

// ClassifyRequest holds subject headings.
type ClassifyRequest struct {
	Subjects []string `json:"subjects" maxItems:"500" doc:"Free-text subject headings"`
}

// ClassifyInput wraps the classify request for Huma.
type ClassifyInput struct {
	Body ClassifyRequest
}

// ClassifyOutput returns the chosen label.
type ClassifyOutput struct {
	Body genre.Label
}

func (s *Server) handleListGenres(_ context.Context, _ *struct{}) (*ListGenresOutput, error) {
	out := &ListGenresOutput{}
	out.Body.Genres = s.services.Metadata.Genres()
	return out, nil
}

func (s *Server) handleClassifyGenre(_ context.Context, input *ClassifyInput) (*ClassifyOutput, error) {
	return &ClassifyOutput{Body: s.services.Metadata.Classify(input.Body.Subjects)}, nil
}
