package api

import (
	"context"
	"net/http"
	"time"

	"github.com/danielgtaylor/huma/v2"

	"github.com/bookshelfapp/bookshelf-server/internal/domain"
)

func (s *Server) registerPreferenceRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "getTheme",
		Method:      http.MethodGet,
		Path:        "/api/v1/preferences/theme",
		Summary:     "Get theme",
		Description: "Returns the saved theme, or the server default when none is saved",
		Tags:        []string{"Preferences"},
	}, s.handleGetTheme)

	huma.Register(s.api, huma.Operation{
		OperationID: "setTheme",
		Method:      http.MethodPut,
		Path:        "/api/v1/preferences/theme",
		Summary:     "Set theme",
		Description: "Saves the theme",
		Tags:        []string{"Preferences"},
	}, s.handleSetTheme)
}

// ThemeResponse is the theme preference.
type ThemeResponse struct {
	Theme     domain.Theme `json:"theme" doc:"light or dark"`
	Saved     bool         `json:"saved" doc:"False when the default is returned"`
	UpdatedAt *time.Time   `json:"updated_at,omitempty"`
}

// ThemeOutput wraps the theme for Huma.
type ThemeOutput struct {
	Body ThemeResponse
}

// SetThemeInput sets the theme.
type SetThemeInput struct {
	Body struct {
		Theme string `json:"theme" doc:"light or dark"`
	}
}

func (s *Server) handleGetTheme(ctx context.Context, _ *struct{}) (*ThemeOutput, error) {
	pref, saved, err := s.services.Settings.Theme(ctx)
	if err != nil {
		return nil, err
	}
	return &ThemeOutput{Body: newThemeResponse(pref, saved)}, nil
}

func (s *Server) handleSetTheme(ctx context.Context, input *SetThemeInput) (*ThemeOutput, error) {
	pref, err := s.services.Settings.SetTheme(ctx, domain.Theme(input.Body.Theme))
	if err != nil {
		return nil, err
	}
	return &ThemeOutput{Body: newThemeResponse(pref, true)}, nil
}

func newThemeResponse(pref domain.ThemePreference, saved bool) ThemeResponse {
	resp := ThemeResponse{Theme: pref.Theme, Saved: saved}
	if saved {
		resp.UpdatedAt = &pref.UpdatedAt
	}
	return resp
}
