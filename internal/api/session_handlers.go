package api

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/bookshelfapp/bookshelf-server/internal/enrich"
	"github.com/bookshelfapp/bookshelf-server/internal/searchbox"
)

func (s *Server) registerSessionRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID:   "openSearchSession",
		Method:        http.MethodPost,
		Path:          "/api/v1/search/sessions",
		Summary:       "Open search session",
		Description:   "Opens a debounced search box. State changes stream as search.state events",
		Tags:          []string{"Search"},
		DefaultStatus: http.StatusCreated,
	}, s.handleOpenSession)

	huma.Register(s.api, huma.Operation{
		OperationID: "getSearchSession",
		Method:      http.MethodGet,
		Path:        "/api/v1/search/sessions/{id}",
		Summary:     "Get search session",
		Description: "Returns the current state of a search box",
		Tags:        []string{"Search"},
	}, s.handleGetSession)

	huma.Register(s.api, huma.Operation{
		OperationID: "setSearchQuery",
		Method:      http.MethodPut,
		Path:        "/api/v1/search/sessions/{id}/query",
		Summary:     "Set search text",
		Description: "Feeds the current search text. The query runs after the debounce delay",
		Tags:        []string{"Search"},
	}, s.handleSetQuery)

	huma.Register(s.api, huma.Operation{
		OperationID:   "selectSearchResult",
		Method:        http.MethodPost,
		Path:          "/api/v1/search/sessions/{id}/select",
		Summary:       "Select search result",
		Description:   "Enriches the chosen result, adds it to the catalogue, and resets the search box",
		Tags:          []string{"Search"},
		DefaultStatus: http.StatusCreated,
	}, s.handleSelectResult)

	huma.Register(s.api, huma.Operation{
		OperationID:   "closeSearchSession",
		Method:        http.MethodDelete,
		Path:          "/api/v1/search/sessions/{id}",
		Summary:       "Close search session",
		Description:   "Closes a search box and drops any pending query",
		Tags:          []string{"Search"},
		DefaultStatus: http.StatusNoContent,
	}, s.handleCloseSession)
}

// SessionResponse is a search box state.
type SessionResponse struct {
	SessionID string             `json:"session_id"`
	State     searchbox.Snapshot `json:"state"`
}

// SessionOutput wraps a session state for Huma.
type SessionOutput struct {
	Body SessionResponse
}

// SessionIDInput identifies a session.
type SessionIDInput struct {
	ID string `path:"id" doc:"Search session ID"`
}

// SetQueryInput is a keystroke.
type SetQueryInput struct {
	ID   string `path:"id" doc:"Search session ID"`
	Body struct {
		Query string `json:"query" maxLength:"500" doc:"Current search text; blank clears the box"`
	}
}

// SelectResultInput picks a shown result.
type SelectResultInput struct {
	ID   string `path:"id" doc:"Search session ID"`
	Body struct {
		Index int `json:"index" minimum:"0" doc:"Zero-based index into the shown results"`
	}
}

// SelectResultResponse is the added book and how it was enriched.
type SelectResultResponse struct {
	Book  BookResponse `json:"book"`
	Trace enrich.Trace `json:"trace"`
}

// SelectResultOutput wraps the selection for Huma.
type SelectResultOutput struct {
	Body SelectResultResponse
}

func (s *Server) handleOpenSession(ctx context.Context, _ *struct{}) (*SessionOutput, error) {
	sessionID, snap, err := s.services.Session.Open(ctx)
	if err != nil {
		return nil, err
	}
	return &SessionOutput{Body: SessionResponse{SessionID: sessionID, State: snap}}, nil
}

func (s *Server) handleGetSession(ctx context.Context, input *SessionIDInput) (*SessionOutput, error) {
	snap, err := s.services.Session.State(ctx, input.ID)
	if err != nil {
		return nil, err
	}
	return &SessionOutput{Body: SessionResponse{SessionID: input.ID, State: snap}}, nil
}

func (s *Server) handleSetQuery(ctx context.Context, input *SetQueryInput) (*SessionOutput, error) {
	snap, err := s.services.Session.Query(ctx, input.ID, input.Body.Query)
	if err != nil {
		return nil, err
	}
	return &SessionOutput{Body: SessionResponse{SessionID: input.ID, State: snap}}, nil
}

func (s *Server) handleSelectResult(ctx context.Context, input *SelectResultInput) (*SelectResultOutput, error) {
	book, trace, err := s.services.Session.Select(ctx, input.ID, input.Body.Index)
	if err != nil {
		return nil, err
	}
	return &SelectResultOutput{Body: SelectResultResponse{Book: newBookResponse(book), Trace: trace}}, nil
}

func (s *Server) handleCloseSession(ctx context.Context, input *SessionIDInput) (*struct{}, error) {
	s.services.Session.Close(ctx, input.ID)
	return nil, nil
}
