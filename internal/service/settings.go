package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/bookshelfapp/bookshelf-server/internal/domain"
	"github.com/bookshelfapp/bookshelf-server/internal/store"
	"github.com/bookshelfapp/bookshelf-server/internal/validation"
)

// SettingsService manages the persisted theme preference.
type SettingsService struct {
	prefs        *store.Preferences
	defaultTheme domain.Theme
	validator    *validation.Validator
	logger       *slog.Logger
}

type themeInput struct {
	Theme domain.Theme `json:"theme" validate:"theme"`
}

// NewSettingsService creates a settings service. An invalid default falls
// back to light.
func NewSettingsService(prefs *store.Preferences, defaultTheme domain.Theme, logger *slog.Logger) *SettingsService {
	if !defaultTheme.Valid() {
		defaultTheme = domain.ThemeLight
	}
	return &SettingsService{prefs: prefs, defaultTheme: defaultTheme, validator: validation.New(), logger: logger}
}

// Theme returns the saved theme, or the default when none is saved.
// The second value reports whether a theme was saved.
func (s *SettingsService) Theme(ctx context.Context) (domain.ThemePreference, bool, error) {
	pref, err := s.prefs.Theme(ctx)
	if errors.Is(err, store.ErrNotFound) {
		return domain.ThemePreference{Theme: s.defaultTheme}, false, nil
	}
	if err != nil {
		return domain.ThemePreference{}, false, fmt.Errorf("get theme: %w", err)
	}
	return pref, true, nil
}

// SetTheme saves the theme.
func (s *SettingsService) SetTheme(ctx context.Context, theme domain.Theme) (domain.ThemePreference, error) {
	if err := s.validator.Validate(themeInput{Theme: theme}); err != nil {
		return domain.ThemePreference{}, err
	}
	pref, err := s.prefs.SetTheme(ctx, theme)
	if err != nil {
		return domain.ThemePreference{}, fmt.Errorf("set theme: %w", err)
	}
	s.logger.Info("theme saved", "theme", theme)
	return pref, nil
}
