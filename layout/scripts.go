package layout

import "github.com/gogpu/math2img/expr"

// nucleus lays out the base of a Scripts node. For a single glyph the
// italic correction is returned separately instead of being added.
func (e *engine) nucleus(n expr.Node, st style) (*Box, float64, error) {
	if s, ok := n.(expr.Symbol); ok {
		return e.symbol(s, st)
	}
	b, err := e.node(n, st)
	return b, 0, err
}

// stacksLimits reports whether the scripts of s go above and below the
// base rather than to its right.
func stacksLimits(s expr.Scripts, st style) bool {
	switch s.Limits {
	case expr.LimitsAlways:
		return true
	case expr.LimitsNever:
		return false
	}
	switch b := s.Base.(type) {
	case expr.Symbol:
		return b.Large && b.Limits && st.display()
	case expr.Text:
		return b.Limits && st.display()
	case expr.Accent:
		return b.Kind == expr.AccentOverbrace || b.Kind == expr.AccentUnderbrace
	}
	return false
}

func isLargeOp(n expr.Node) bool {
	s, ok := n.(expr.Symbol)
	return ok && s.Large
}

func (e *engine) scripts(s expr.Scripts, st style) (*Box, error) {
	base, italic, err := e.nucleus(s.Base, st)
	if err != nil {
		return nil, err
	}
	var sup, sub *Box
	if s.Sup != nil {
		if sup, err = e.node(s.Sup, st.sup()); err != nil {
			return nil, err
		}
	}
	if s.Sub != nil {
		if sub, err = e.node(s.Sub, st.sub()); err != nil {
			return nil, err
		}
	}
	if stacksLimits(s, st) {
		return e.limits(base, sup, sub, italic, st), nil
	}
	return e.attach(base, sup, sub, italic, isLargeOp(s.Base), st), nil
}

// attach places scripts to the right of the base using the MATH
// superscript and subscript constants.
func (e *engine) attach(base, sup, sub *Box, italic float64, op bool, st style) *Box {
	c, em := e.c, e.em(st)

	var up, down float64
	if sup != nil {
		shift := c.SuperscriptShiftUp
		if st.cramped {
			shift = c.SuperscriptShiftUpCramped
		}
		up = max(shift*em, base.Height-c.SuperscriptBaselineDropMax*em, c.SuperscriptBottomMin*em+sup.Depth)
	}
	if sub != nil {
		down = max(c.SubscriptShiftDown*em, base.Depth+c.SubscriptBaselineDropMin*em, sub.Height-c.SubscriptTopMax*em)
	}
	if sup != nil && sub != nil {
		gapMin := c.SubSuperscriptGapMin * em
		if gap := (up - sup.Depth) - (sub.Height - down); gap < gapMin {
			down += gapMin - gap
			if lift := c.SuperscriptBottomMaxWithSubscript*em - (up - sup.Depth); lift > 0 {
				up += lift
				down -= lift
			}
		}
	}

	out := newHList(RoleNone)
	out.place(base)
	width := base.Width
	supX, subX := base.Width+italic, base.Width
	if op {
		supX, subX = base.Width, base.Width-italic
	}
	if sup != nil {
		sup.Role, sup.X, sup.Y = RoleSuperscript, supX, -up
		out.place(sup)
		width = max(width, supX+sup.Width)
	}
	if sub != nil {
		sub.Role, sub.X, sub.Y = RoleSubscript, subX, down
		out.place(sub)
		width = max(width, subX+sub.Width)
	}
	out.Width = width + c.SpaceAfterScript*em
	return out
}

// limits stacks scripts centered above and below the base.
func (e *engine) limits(base, sup, sub *Box, italic float64, st style) *Box {
	c, em := e.c, e.em(st)
	width := base.Width
	if sup != nil {
		width = max(width, sup.Width)
	}
	if sub != nil {
		width = max(width, sub.Width)
	}

	out := newHList(RoleNone)
	base.X = (width - base.Width) / 2
	out.place(base)
	if sup != nil {
		gap := max(c.UpperLimitGapMin*em, c.UpperLimitBaselineRiseMin*em-sup.Depth)
		sup.Role = RoleLimit
		sup.X = (width-sup.Width)/2 + italic/2
		sup.Y = base.Y - base.Height - gap - sup.Depth
		out.place(sup)
	}
	if sub != nil {
		gap := max(c.LowerLimitGapMin*em, c.LowerLimitBaselineDropMin*em-sub.Height)
		sub.Role = RoleLimit
		sub.X = (width-sub.Width)/2 - italic/2
		sub.Y = base.Y + base.Depth + gap + sub.Height
		out.place(sub)
	}
	out.Width = width
	return out
}
