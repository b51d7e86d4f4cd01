package raster

import (
	"fmt"
	"image/color"
	"strings"
)

// Theme selects the colors an equation is painted with.
type Theme uint8

const (
	// ThemeDark paints light text on a dark background. It is the default.
	ThemeDark Theme = iota

	// ThemeLight paints dark text on a white background.
	ThemeLight
)

// Palette is the pair of colors of a theme.
type Palette struct {
	Background color.NRGBA
	Foreground color.NRGBA
}

var palettes = [...]Palette{
	ThemeDark: {
		Background: color.NRGBA{R: 0x2B, G: 0x30, B: 0x3B, A: 0xFF},
		Foreground: color.NRGBA{R: 0xC0, G: 0xC5, B: 0xCE, A: 0xFF},
	},
	ThemeLight: {
		Background: color.NRGBA{R: 0xFF, G: 0xFF, B: 0xFF, A: 0xFF},
		Foreground: color.NRGBA{R: 0x33, G: 0x33, B: 0x33, A: 0xFF},
	},
}

// Palette returns the colors of t. Unknown themes use the dark palette.
func (t Theme) Palette() Palette {
	if int(t) < len(palettes) {
		return palettes[t]
	}
	return palettes[ThemeDark]
}

// String returns the name ParseTheme accepts for t.
func (t Theme) String() string {
	switch t {
	case ThemeDark:
		return "dark"
	case ThemeLight:
		return "light"
	default:
		return fmt.Sprintf("Theme(%d)", uint8(t))
	}
}

// ParseTheme parses a theme name, ignoring case.
func ParseTheme(s string) (Theme, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "dark":
		return ThemeDark, nil
	case "light":
		return ThemeLight, nil
	}
	return ThemeDark, fmt.Errorf("%w: %q", ErrUnknownTheme, s)
}
