// Package ui holds the theme preference and the styles derived from it.
package ui

import (
	"context"
	"fmt"

	"github.com/charmbracelet/lipgloss"

	"github.com/jwulff/memo/internal/db"
)

// Theme is the persisted color preference.
type Theme string

const (
	Light Theme = "light"
	Dark  Theme = "dark"
)

// Toggled returns the other theme.
func (t Theme) Toggled() Theme {
	if t == Dark {
		return Light
	}
	return Dark
}

// PlatformTheme reports the terminal's preference.
func PlatformTheme() Theme {
	if lipgloss.HasDarkBackground() {
		return Dark
	}
	return Light
}

// LoadTheme returns the persisted theme, or fallback when none is stored.
// An unrecognised stored value is treated as unset.
func LoadTheme(ctx context.Context, kv db.KV, fallback Theme) (Theme, error) {
	val, ok, err := kv.Get(ctx, db.KeyTheme)
	if err != nil {
		return fallback, fmt.Errorf("load theme: %w", err)
	}
	if !ok {
		return fallback, nil
	}
	switch t := Theme(val); t {
	case Light, Dark:
		return t, nil
	}
	return fallback, nil
}

// ToggleTheme persists the opposite of current and returns it. On failure the
// current theme is returned so the display never diverges from the store.
func ToggleTheme(ctx context.Context, kv db.KV, current Theme) (Theme, error) {
	next := current.Toggled()
	if err := kv.Set(ctx, db.KeyTheme, string(next)); err != nil {
		return current, fmt.Errorf("save theme: %w", err)
	}
	return next, nil
}
