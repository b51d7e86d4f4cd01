package layout

import (
	"errors"
	"fmt"
)

// Sentinel errors for the layout package.
var (
	// ErrNilNode is returned when Layout is called without an expression.
	ErrNilNode = errors.New("layout: nil expression")

	// ErrInvalidSize is returned for a font size that is not positive.
	ErrInvalidSize = errors.New("layout: font size must be positive")
)

// LayoutError reports an expression that cannot be laid out: a glyph the
// font lacks, or a result with no extent.
type LayoutError struct {
	// Rune is the codepoint that had no glyph, or 0.
	Rune rune
	Msg  string
	Err  error
}

func (e *LayoutError) Error() string {
	if e.Rune != 0 {
		return fmt.Sprintf("layout: %s (U+%04X)", e.Msg, e.Rune)
	}
	return "layout: " + e.Msg
}

func (e *LayoutError) Unwrap() error {
	return e.Err
}
