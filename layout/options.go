package layout

import (
	"github.com/gogpu/math2img/expr"
	"github.com/gogpu/math2img/mathfont"
)

// Options configures Layout.
type Options struct {
	// Font is the math font. Nil selects mathfont.Default.
	Font *mathfont.Font

	// Size is the em size of the base style in pixels.
	Size float64

	// Style is the starting style: expr.StyleDisplay for display
	// equations, expr.StyleText for inline ones.
	Style expr.MathStyle
}

// style is the TeX style state: one of the four math styles plus the
// cramped flag, which lowers superscripts.
type style struct {
	math    expr.MathStyle
	cramped bool
}

func (s style) display() bool {
	return s.math == expr.StyleDisplay
}

// level returns the script level, capped at 2.
func (s style) level() int {
	switch s.math {
	case expr.StyleScript:
		return 1
	case expr.StyleScriptScript:
		return 2
	default:
		return 0
	}
}

// sup returns the style of a superscript.
func (s style) sup() style {
	switch s.math {
	case expr.StyleDisplay, expr.StyleText:
		return style{math: expr.StyleScript, cramped: s.cramped}
	default:
		return style{math: expr.StyleScriptScript, cramped: s.cramped}
	}
}

// sub returns the style of a subscript.
func (s style) sub() style {
	return s.sup().cramp()
}

// num returns the style of a fraction numerator.
func (s style) num() style {
	switch s.math {
	case expr.StyleDisplay:
		return style{math: expr.StyleText, cramped: s.cramped}
	case expr.StyleText:
		return style{math: expr.StyleScript, cramped: s.cramped}
	default:
		return style{math: expr.StyleScriptScript, cramped: s.cramped}
	}
}

// den returns the style of a fraction denominator.
func (s style) den() style {
	return s.num().cramp()
}

func (s style) cramp() style {
	s.cramped = true
	return s
}
