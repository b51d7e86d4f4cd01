package layout

import (
	"log/slog"
	"math"

	"github.com/gogpu/math2img/expr"
	"github.com/gogpu/math2img/mathfont"
)

// nullDelimiter is the width of an empty \left. or \right. and the side
// padding of fractions, in em.
const nullDelimiter = 0.12

// engine carries the state of one Layout call.
type engine struct {
	font *mathfont.Font
	c    *mathfont.Constants
	size float64

	// middle is the target size in pixels of \middle delimiters in the
	// \left ... \right body being laid out, or 0 while measuring.
	middle float64
}

// Layout computes the box tree of an expression.
//
// The result is positioned at the origin. It fails with *LayoutError when
// a glyph is missing from the font or the expression has no extent.
func Layout(n expr.Node, opts Options) (*Box, error) {
	if n == nil {
		return nil, ErrNilNode
	}
	if !(opts.Size > 0) || math.IsInf(opts.Size, 1) {
		return nil, ErrInvalidSize
	}
	f := opts.Font
	if f == nil {
		f = mathfont.Default()
	}
	e := &engine{font: f, c: f.Constants(), size: opts.Size}

	st := style{math: min(opts.Style, expr.StyleScriptScript)}
	b, err := e.node(n, st)
	if err != nil {
		return nil, err
	}
	if !finite(b.Width) || !finite(b.Height) || !finite(b.Depth) {
		return nil, &LayoutError{Msg: "box size is not finite"}
	}
	if b.Width == 0 && b.Total() == 0 {
		return nil, &LayoutError{Msg: "expression has no extent"}
	}
	return b, nil
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

// em returns the em size in pixels for a style.
func (e *engine) em(st style) float64 {
	return e.size * e.font.ScaleFor(st.level())
}

// node lays out one expression node.
func (e *engine) node(n expr.Node, st style) (*Box, error) {
	switch n := n.(type) {
	case nil:
		return newHList(RoleNone), nil
	case expr.Symbol:
		b, italic, err := e.symbol(n, st)
		if err != nil {
			return nil, err
		}
		b.Width += italic
		return b, nil
	case expr.Text:
		return e.text(n.Value, st)
	case expr.Group:
		return e.list(n.Items, st)
	case expr.Scripts:
		return e.scripts(n, st)
	case expr.Fraction:
		return e.fraction(n, st)
	case expr.Radical:
		return e.radical(n, st)
	case expr.Matrix:
		return e.matrix(n, st)
	case expr.Accent:
		return e.accent(n, st)
	case expr.Delimited:
		return e.delimited(n, st)
	case expr.SizedDelim:
		return e.sizedDelim(n, st)
	case expr.Space:
		return kern(n.Width * e.em(st)), nil
	case expr.Style:
		return e.node(n.Body, style{math: n.Style})
	case expr.Phantom:
		return e.phantom(n, st)
	}
	return nil, &LayoutError{Msg: "unsupported node"}
}

// atom is a list item with the style it is laid out in.
type atom struct {
	node expr.Node
	st   style
}

// flatten expands style switches so that the atoms after a switch join
// the surrounding list and keep their spacing to the atoms before it.
func flatten(items []expr.Node, st style, out []atom) []atom {
	for _, n := range items {
		s, ok := n.(expr.Style)
		if !ok {
			out = append(out, atom{n, st})
			continue
		}
		inner := style{math: s.Style}
		if g, ok := s.Body.(expr.Group); ok && g.Class == expr.Ord {
			out = flatten(g.Items, inner, out)
		} else {
			out = append(out, atom{s.Body, inner})
		}
	}
	return out
}

// list lays out a horizontal list with inter-atom spacing. Space nodes
// add their width and do not take part in class pairing.
func (e *engine) list(items []expr.Node, st style) (*Box, error) {
	row := newHList(RoleNone)
	prev, started := expr.Ord, false
	for _, a := range flatten(items, st, nil) {
		if sp, ok := a.node.(expr.Space); ok {
			row.add(kern(sp.Width * e.em(a.st)))
			continue
		}
		class := expr.ClassOf(a.node)
		if started {
			if mu := Spacing(prev, class); mu > 0 {
				row.add(kern(float64(mu) * e.em(a.st) / 18))
			}
		}
		b, err := e.node(a.node, a.st)
		if err != nil {
			return nil, err
		}
		row.add(b)
		prev, started = class, true
	}
	return row, nil
}

// phantom keeps the requested dimensions of the body and drops its ink.
func (e *engine) phantom(p expr.Phantom, st style) (*Box, error) {
	b, err := e.node(p.Body, st)
	if err != nil {
		return nil, err
	}
	out := newHList(RoleNone)
	if !p.Vertical {
		out.Width = b.Width
	}
	if !p.Horizontal {
		out.Height, out.Depth = b.Height, b.Depth
	}
	return out, nil
}

func logFallback(from, to rune) {
	slogger().Debug("layout: glyph fallback",
		slog.String("from", string(from)),
		slog.String("to", string(to)))
}
