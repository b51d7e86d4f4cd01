package layout

import (
	"github.com/gogpu/math2img/expr"
	"github.com/gogpu/math2img/mathfont"
)

const (
	// delimiterFactor and delimiterShortfall size \left ... \right
	// delimiters: at least 90.1% of the content, and never more than
	// half an em short of it.
	delimiterFactor    = 0.901
	delimiterShortfall = 0.5

	// maxRepeats bounds extender repetition in glyph assemblies.
	maxRepeats = 500
)

// bigSizes are the total heights of \big, \Big, \bigg and \Bigg in em.
var bigSizes = [...]float64{1.2, 1.8, 2.4, 3.0}

// centerOnAxis shifts b vertically so that it is centered on the math
// axis.
func (e *engine) centerOnAxis(b *Box, st style, role Role) *Box {
	axis := e.c.AxisHeight * e.em(st)
	return shifted(b, (b.Height-b.Depth)/2-axis, role)
}

// delimiterTarget returns the size a delimiter around content of the
// given height and depth must reach.
func (e *engine) delimiterTarget(height, depth float64, st style) float64 {
	axis := e.c.AxisHeight * e.em(st)
	half := max(height-axis, depth+axis)
	return max(2*half*delimiterFactor, 2*half-delimiterShortfall*e.em(st))
}

// vertical returns a glyph for r at least target pixels tall when the
// font can provide one: the base glyph, the first large enough variant,
// an assembly, or else the largest variant.
func (e *engine) vertical(r rune, target float64, st style) (*Box, error) {
	gid, err := e.glyph(r)
	if err != nil {
		return nil, err
	}
	em := e.em(st)
	m := e.font.Metrics(gid)
	if (m.Height+m.Depth)*em >= target {
		return glyphBox(gid, r, em, m), nil
	}
	variants := e.font.VerticalVariants(gid)
	for _, v := range variants {
		if v.Advance*em >= target {
			return glyphBox(v.Glyph, r, em, e.font.Metrics(v.Glyph)), nil
		}
	}
	if a := e.font.VerticalAssembly(gid); a != nil && len(a.Parts) > 0 {
		return e.assemble(a, r, target/em, em, true), nil
	}
	if len(variants) > 0 {
		v := variants[len(variants)-1]
		return glyphBox(v.Glyph, r, em, e.font.Metrics(v.Glyph)), nil
	}
	return glyphBox(gid, r, em, m), nil
}

// horizontal is vertical for the width of wide accents, braces and
// arrows.
func (e *engine) horizontal(r rune, target float64, st style) (*Box, error) {
	gid, err := e.glyph(r)
	if err != nil {
		return nil, err
	}
	em := e.em(st)
	m := e.font.Metrics(gid)
	if m.Advance*em >= target {
		return glyphBox(gid, r, em, m), nil
	}
	variants := e.font.HorizontalVariants(gid)
	for _, v := range variants {
		if v.Advance*em >= target {
			return glyphBox(v.Glyph, r, em, e.font.Metrics(v.Glyph)), nil
		}
	}
	if a := e.font.HorizontalAssembly(gid); a != nil && len(a.Parts) > 0 {
		return e.assemble(a, r, target/em, em, false), nil
	}
	if len(variants) > 0 {
		v := variants[len(variants)-1]
		return glyphBox(v.Glyph, r, em, e.font.Metrics(v.Glyph)), nil
	}
	return glyphBox(gid, r, em, m), nil
}

// planAssembly picks the parts of an assembly at least target em long
// and the overlap between neighbors. Extenders are repeated the minimum
// number of times; the overlap is the same at every joint, never below
// minOverlap and never more than the connectors allow.
func planAssembly(a *mathfont.Assembly, target, minOverlap float64) ([]mathfont.Part, float64) {
	extenders := false
	for _, p := range a.Parts {
		extenders = extenders || p.Extender
	}
	for reps := 0; ; reps++ {
		var parts []mathfont.Part
		full := 0.0
		for _, p := range a.Parts {
			n := 1
			if p.Extender {
				n = reps
			}
			for range n {
				parts = append(parts, p)
				full += p.FullAdvance
			}
		}
		joints := float64(len(parts) - 1)
		if len(parts) > 0 && (full-joints*minOverlap >= target || !extenders || reps == maxRepeats) {
			if joints <= 0 {
				return parts, 0
			}
			limit := parts[0].EndConnector
			for i := 1; i < len(parts); i++ {
				limit = min(limit, parts[i-1].EndConnector, parts[i].StartConnector)
			}
			overlap := min((full-target)/joints, limit)
			return parts, max(overlap, minOverlap)
		}
	}
}

// assemble builds a glyph assembly as a box. Vertical assemblies are
// stacked bottom to top with the bottom on the baseline; horizontal ones
// run left to right.
func (e *engine) assemble(a *mathfont.Assembly, r rune, target, em float64, vertical bool) *Box {
	parts, overlap := planAssembly(a, target, e.font.MinConnectorOverlap())
	out := newHList(RoleNone)
	pos := 0.0
	for i, p := range parts {
		m := e.font.Metrics(p.Glyph)
		g := glyphBox(p.Glyph, r, em, m)
		if vertical {
			g.Y = -(pos + m.Depth) * em
			out.Width = max(out.Width, g.Width)
		} else {
			g.X = pos * em
		}
		out.place(g)
		pos += p.FullAdvance
		if i < len(parts)-1 {
			pos -= overlap
		}
	}
	if vertical {
		out.Height, out.Depth = pos*em, 0
	} else {
		out.Width = pos * em
	}
	return out
}

// fence returns a delimiter sized for content of the given height and
// depth, centered on the axis. A zero rune is a null delimiter.
func (e *engine) fence(r rune, height, depth float64, st style) (*Box, error) {
	if r == 0 {
		k := kern(nullDelimiter * e.em(st))
		k.Role = RoleDelimiter
		return k, nil
	}
	b, err := e.vertical(r, e.delimiterTarget(height, depth, st), st)
	if err != nil {
		return nil, err
	}
	return e.centerOnAxis(b, st, RoleDelimiter), nil
}

// fenced places the delimiters l and r around body.
func (e *engine) fenced(l, r rune, body *Box, st style) (*Box, error) {
	left, err := e.fence(l, body.Height, body.Depth, st)
	if err != nil {
		return nil, err
	}
	right, err := e.fence(r, body.Height, body.Depth, st)
	if err != nil {
		return nil, err
	}
	out := newHList(RoleNone)
	out.add(left)
	out.add(body)
	out.add(right)
	return out, nil
}

// delimited lays out \left ... \right. A body holding \middle is laid out
// twice: once to measure it and once with the middle delimiters sized.
func (e *engine) delimited(d expr.Delimited, st style) (*Box, error) {
	saved := e.middle
	defer func() { e.middle = saved }()

	e.middle = 0
	body, err := e.node(d.Body, st)
	if err != nil {
		return nil, err
	}
	if hasMiddle(d.Body) {
		e.middle = e.delimiterTarget(body.Height, body.Depth, st)
		if body, err = e.node(d.Body, st); err != nil {
			return nil, err
		}
	}
	return e.fenced(d.Left, d.Right, body, st)
}

func hasMiddle(n expr.Node) bool {
	switch n := n.(type) {
	case expr.SizedDelim:
		return n.Size == 0
	case expr.Group:
		for _, item := range n.Items {
			if d, ok := item.(expr.SizedDelim); ok && d.Size == 0 {
				return true
			}
		}
	}
	return false
}

// sizedDelim lays out \big-style and \middle delimiters.
func (e *engine) sizedDelim(d expr.SizedDelim, st style) (*Box, error) {
	if d.Rune == 0 {
		k := kern(nullDelimiter * e.em(st))
		k.Role = RoleDelimiter
		return k, nil
	}
	var target float64
	switch {
	case d.Size <= 0:
		target = e.middle
	case d.Size <= len(bigSizes):
		target = bigSizes[d.Size-1] * e.em(st)
	default:
		target = bigSizes[len(bigSizes)-1] * e.em(st)
	}
	b, err := e.vertical(d.Rune, target, st)
	if err != nil {
		return nil, err
	}
	return e.centerOnAxis(b, st, RoleDelimiter), nil
}
