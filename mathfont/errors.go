package mathfont

import (
	"errors"
	"fmt"
)

// Sentinel errors for the mathfont package.
var (
	// ErrEmptyFontData is returned when font data is empty.
	ErrEmptyFontData = errors.New("mathfont: empty font data")

	// ErrNoMathTable is returned when a font has no OpenType MATH table.
	ErrNoMathTable = errors.New("mathfont: font has no MATH table")

	// ErrMalformedMathTable is returned when the MATH table cannot be decoded.
	ErrMalformedMathTable = errors.New("mathfont: malformed MATH table")
)

// MissingGlyphError is returned when the font has no glyph for a codepoint.
type MissingGlyphError struct {
	Rune rune
}

func (e *MissingGlyphError) Error() string {
	return fmt.Sprintf("mathfont: no glyph for %q (U+%04X)", e.Rune, e.Rune)
}
