package layout

import "github.com/gogpu/math2img/expr"

const radicalSign = '√'

// radical lays out a square root, with the index at the upper left of
// the sign for n-th roots.
func (e *engine) radical(r expr.Radical, st style) (*Box, error) {
	body, err := e.node(r.Radicand, st.cramp())
	if err != nil {
		return nil, err
	}
	c, em := e.c, e.em(st)
	thickness := c.RadicalRuleThickness * em
	gap := c.RadicalVerticalGap * em
	if st.display() {
		gap = c.RadicalDisplayStyleVerticalGap * em
	}

	sign, err := e.vertical(radicalSign, body.Total()+gap+thickness, st)
	if err != nil {
		return nil, err
	}
	if extra := sign.Total() - (body.Total() + gap + thickness); extra > 0 {
		gap += extra / 2
	}

	// The top of the sign lines up with the top of the rule.
	top := body.Height + gap + thickness
	sign.Role = RoleRadicalSign
	sign.Y = -top + sign.Height

	bar := rule(body.Width, thickness, RoleRadicalSign)
	bar.Y = -(body.Height + gap)

	out := newHList(RoleNone)
	out.place(sign)
	bar.X = sign.Width
	out.place(bar)
	body.Role, body.X = RoleRadicand, sign.Width
	out.place(body)
	out.Width = sign.Width + body.Width
	out.Height = max(out.Height, top+c.RadicalExtraAscender*em)

	if r.Index == nil {
		return out, nil
	}
	index, err := e.node(r.Index, style{math: expr.StyleScriptScript, cramped: true})
	if err != nil {
		return nil, err
	}
	before := c.RadicalKernBeforeDegree * em
	after := c.RadicalKernAfterDegree * em
	shift := max(0, before+index.Width+after)

	for _, child := range out.Children {
		child.X += shift
	}
	signBottom := sign.Y + sign.Depth
	index.Role = RoleIndex
	index.X = before
	index.Y = signBottom - c.RadicalDegreeBottomRaisePercent*sign.Total() - index.Depth
	out.place(index)
	out.Width += shift
	return out, nil
}
