package domain

import "time"

// Theme is the UI color scheme preference.
type Theme string

// Known themes.
const (
	ThemeLight Theme = "light"
	ThemeDark  Theme = "dark"
)

// Valid reports whether t is a known theme.
func (t Theme) Valid() bool {
	return t == ThemeLight || t == ThemeDark
}

// ThemePreference is the single persisted preference.
type ThemePreference struct {
	UpdatedAt time.Time `json:"updated_at"`
	Theme     Theme     `json:"theme"`
}
