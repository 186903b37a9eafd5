package models

import (
	"fmt"
	"strings"

	"github.com/desertthunder/guitartube/internal/shared"
)

// Theme selects the diagram palette.
type Theme string

const (
	ThemeLight Theme = "light"
	ThemeDark  Theme = "dark"
)

// Themes returns every theme in enumeration order, light first.
func Themes() []Theme {
	return []Theme{ThemeLight, ThemeDark}
}

// Valid reports whether t is a known theme.
func (t Theme) Valid() bool {
	return t == ThemeLight || t == ThemeDark
}

// ParseTheme parses a theme name, case-insensitively.
func ParseTheme(s string) (Theme, error) {
	t := Theme(strings.ToLower(strings.TrimSpace(s)))
	if !t.Valid() {
		return "", fmt.Errorf("%w: %q (want light or dark)", shared.ErrInvalidTheme, s)
	}
	return t, nil
}

// VariantKey identifies one renderable diagram. The four fields alone determine the
// rendered output.
type VariantKey struct {
	ChordName    string `json:"chord_name"`
	PositionType string `json:"position_type"`
	FretPosition int    `json:"fret_position"`
	Theme        Theme  `json:"theme"`
}

func (k VariantKey) String() string {
	return fmt.Sprintf("%s (%s @ %d, %s)", k.ChordName, k.PositionType, k.FretPosition, k.Theme)
}
