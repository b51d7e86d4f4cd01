package layout

import "github.com/gogpu/math2img/expr"

// accent lays out accents, over and under rules, braces and arrows.
func (e *engine) accent(a expr.Accent, st style) (*Box, error) {
	base, err := e.node(a.Base, st.cramp())
	if err != nil {
		return nil, err
	}
	base.Role = RoleAccentBase
	switch {
	case a.Kind.Rule():
		return e.bar(base, a.Kind.Under(), st), nil
	case a.Kind == expr.AccentOverbrace || a.Kind == expr.AccentUnderbrace ||
		a.Kind == expr.AccentOverRightArrow || a.Kind == expr.AccentOverLeftArrow ||
		a.Kind == expr.AccentOverLeftRightArrow:
		return e.stretchStack(base, a.Kind, st)
	}

	var mark *Box
	if a.Kind.Wide() {
		mark, err = e.horizontal(a.Kind.Rune(), base.Width, st)
	} else {
		mark, _, err = e.glyphAt(a.Kind.Rune(), st)
	}
	if err != nil {
		return nil, err
	}

	em := e.em(st)
	lift := max(0, base.Height-e.c.AccentBaseHeight*em)
	mark.Role = RoleAccent
	mark.X = e.attachment(a.Base, base, st) - e.markAttachment(mark)
	mark.Y = -lift

	out := newHList(RoleNone)
	out.place(base)
	out.place(mark)
	out.Width = base.Width
	return out, nil
}

// attachment returns where an accent attaches on the base: the glyph's
// top accent position for single symbols, the middle otherwise.
func (e *engine) attachment(n expr.Node, base *Box, st style) float64 {
	if s, ok := n.(expr.Symbol); ok && !s.Large && !s.Negated {
		if gid, err := e.glyph(s.Rune); err == nil {
			return e.font.Metrics(gid).TopAccent * e.em(st)
		}
	}
	return base.Width / 2
}

func (e *engine) markAttachment(mark *Box) float64 {
	if mark.Kind == KindGlyph {
		return e.font.Metrics(mark.Glyph.ID).TopAccent * mark.Glyph.Size
	}
	return mark.Width / 2
}

// bar draws \overline or \underline.
func (e *engine) bar(base *Box, under bool, st style) *Box {
	c, em := e.c, e.em(st)
	out := newHList(RoleNone)
	out.place(base)
	out.Width = base.Width

	if under {
		t := c.UnderbarRuleThickness * em
		line := rule(base.Width, t, RoleAccent)
		line.Y = base.Depth + c.UnderbarVerticalGap*em + t
		out.place(line)
		out.Depth = max(out.Depth, line.Y+c.UnderbarExtraDescender*em)
		return out
	}
	t := c.OverbarRuleThickness * em
	line := rule(base.Width, t, RoleAccent)
	line.Y = -(base.Height + c.OverbarVerticalGap*em)
	out.place(line)
	out.Height = max(out.Height, -line.Y+t+c.OverbarExtraAscender*em)
	return out
}

// stretchStack places a horizontally stretched brace or arrow above or
// below the base.
func (e *engine) stretchStack(base *Box, kind expr.AccentKind, st style) (*Box, error) {
	mark, err := e.horizontal(kind.Rune(), base.Width, st)
	if err != nil {
		return nil, err
	}
	em := e.em(st)
	width := max(base.Width, mark.Width)

	out := newHList(RoleNone)
	base.X = (width - base.Width) / 2
	out.place(base)
	mark.Role = RoleAccent
	mark.X = (width - mark.Width) / 2
	if kind.Under() {
		mark.Y = base.Depth + e.c.StretchStackGapAboveMin*em + mark.Height
	} else {
		mark.Y = -(base.Height + e.c.StretchStackGapBelowMin*em + mark.Depth)
	}
	out.place(mark)
	out.Width = width
	return out, nil
}
