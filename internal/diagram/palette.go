package diagram

import (
	"fmt"

	"github.com/desertthunder/guitartube/internal/models"
	"github.com/desertthunder/guitartube/internal/shared"
)

// Palette is the two-color scheme of a theme. Every token has the same length so that
// both themes produce markup of identical length.
type Palette struct {
	Background string
	Foreground string
}

var (
	lightPalette = Palette{Background: "#ffffff", Foreground: "#1a1a1a"}
	darkPalette  = Palette{Background: "#121212", Foreground: "#f0f0f0"}
)

// PaletteFor returns the palette of theme.
func PaletteFor(theme models.Theme) (Palette, error) {
	switch theme {
	case models.ThemeLight:
		return lightPalette, nil
	case models.ThemeDark:
		return darkPalette, nil
	default:
		return Palette{}, fmt.Errorf("%w: %q", shared.ErrInvalidTheme, theme)
	}
}
