package layout

import (
	"errors"

	"github.com/gogpu/math2img/expr"
	"github.com/gogpu/math2img/mathfont"
)

// negationSlash is drawn over symbols negated with \not.
const negationSlash = '\u0338'

// glyph maps r to a glyph. Styled letters the font lacks fall back to
// their plain form.
func (e *engine) glyph(r rune) (mathfont.GlyphID, error) {
	gid, err := e.font.Glyph(r)
	if err == nil {
		return gid, nil
	}
	if plain := expr.PlainRune(r); plain != r {
		if gid, perr := e.font.Glyph(plain); perr == nil {
			logFallback(r, plain)
			return gid, nil
		}
	}
	var missing *mathfont.MissingGlyphError
	if errors.As(err, &missing) {
		return 0, &LayoutError{Rune: r, Msg: "no glyph in font", Err: err}
	}
	return 0, &LayoutError{Rune: r, Msg: err.Error(), Err: err}
}

// glyphAt returns the box of the glyph for r at the em size of st.
func (e *engine) glyphAt(r rune, st style) (*Box, mathfont.Metrics, error) {
	gid, err := e.glyph(r)
	if err != nil {
		return nil, mathfont.Metrics{}, err
	}
	m := e.font.Metrics(gid)
	return glyphBox(gid, r, e.em(st), m), m, nil
}

// symbol lays out a single glyph atom and returns its italic correction
// separately, so that scripts can place themselves around it. Large
// operators take their display variant in display style and are
// centered on the math axis.
func (e *engine) symbol(s expr.Symbol, st style) (*Box, float64, error) {
	if s.Large {
		return e.largeOp(s, st)
	}
	b, m, err := e.glyphAt(s.Rune, st)
	if err != nil {
		return nil, 0, err
	}
	italic := m.Italic * e.em(st)
	if s.Negated {
		b, err = e.negate(b, st)
		if err != nil {
			return nil, 0, err
		}
	}
	return b, italic, nil
}

func (e *engine) largeOp(s expr.Symbol, st style) (*Box, float64, error) {
	gid, err := e.glyph(s.Rune)
	if err != nil {
		return nil, 0, err
	}
	if st.display() {
		variants := e.font.VerticalVariants(gid)
		for i, v := range variants {
			if v.Advance >= e.c.DisplayOperatorMinHeight || i == len(variants)-1 {
				gid = v.Glyph
				break
			}
		}
	}
	em := e.em(st)
	m := e.font.Metrics(gid)
	b := glyphBox(gid, s.Rune, em, m)
	return e.centerOnAxis(b, st, RoleNone), m.Italic * em, nil
}

// negate overlays a long solidus centered on b.
func (e *engine) negate(b *Box, st style) (*Box, error) {
	slash, m, err := e.glyphAt(negationSlash, st)
	if err != nil {
		return nil, err
	}
	out := newHList(RoleNone)
	out.place(b)
	slash.X = b.Width/2 - (m.InkLeft+m.InkRight)/2*e.em(st)
	out.place(slash)
	out.Width = b.Width
	return out, nil
}

// text lays out an upright run such as a function name or \text content.
// Spaces become kerns of the font's space width.
func (e *engine) text(value string, st style) (*Box, error) {
	row := newHList(RoleNone)
	for _, r := range value {
		if r == ' ' {
			row.add(kern(e.spaceWidth() * e.em(st)))
			continue
		}
		b, _, err := e.glyphAt(r, st)
		if err != nil {
			return nil, err
		}
		row.add(b)
	}
	return row, nil
}

// spaceWidth returns the interword space in em.
func (e *engine) spaceWidth() float64 {
	if gid, err := e.font.Glyph(' '); err == nil {
		if w := e.font.Metrics(gid).Advance; w > 0 {
			return w
		}
	}
	return 0.25
}
