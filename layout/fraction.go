package layout

import "github.com/gogpu/math2img/expr"

// fraction lays out \frac and \binom. The rule is centered on the math
// axis; numerator and denominator are centered on the wider of the two
// and pushed apart to keep the minimum gaps.
func (e *engine) fraction(f expr.Fraction, st style) (*Box, error) {
	switch f.Style {
	case expr.FracDisplay:
		st = style{math: expr.StyleDisplay, cramped: st.cramped}
	case expr.FracText:
		st = style{math: expr.StyleText, cramped: st.cramped}
	}
	num, err := e.node(f.Num, st.num())
	if err != nil {
		return nil, err
	}
	den, err := e.node(f.Den, st.den())
	if err != nil {
		return nil, err
	}

	c, em := e.c, e.em(st)
	display := st.display()
	var up, down float64
	var bar *Box

	if f.NoRule {
		up, down = c.StackTopShiftUp, c.StackBottomShiftDown
		gapMin := c.StackGapMin
		if display {
			up, down = c.StackTopDisplayStyleShiftUp, c.StackBottomDisplayStyleShiftDown
			gapMin = c.StackDisplayStyleGapMin
		}
		up, down, gapMin = up*em, down*em, gapMin*em
		if gap := (up - num.Depth) - (den.Height - down); gap < gapMin {
			up += (gapMin - gap) / 2
			down += (gapMin - gap) / 2
		}
	} else {
		up, down = c.FractionNumeratorShiftUp, c.FractionDenominatorShiftDown
		numGap, denGap := c.FractionNumeratorGapMin, c.FractionDenominatorGapMin
		if display {
			up, down = c.FractionNumeratorDisplayStyleShiftUp, c.FractionDenominatorDisplayStyleShiftDown
			numGap, denGap = c.FractionNumDisplayStyleGapMin, c.FractionDenomDisplayStyleGapMin
		}
		up, down = up*em, down*em
		axis, half := c.AxisHeight*em, c.FractionRuleThickness*em/2
		up = max(up, axis+half+numGap*em+num.Depth)
		down = max(down, den.Height+denGap*em-axis+half)
		bar = rule(0, 2*half, RoleFractionRule)
		bar.Y = -(axis - half)
	}

	pad := nullDelimiter * em
	inner := max(num.Width, den.Width)

	out := newHList(RoleNone)
	num.Role, num.X, num.Y = RoleNumerator, pad+(inner-num.Width)/2, -up
	den.Role, den.X, den.Y = RoleDenominator, pad+(inner-den.Width)/2, down
	out.place(num)
	if bar != nil {
		bar.Width, bar.X = inner, pad
		out.place(bar)
	}
	out.place(den)
	out.Width = inner + 2*pad

	if f.Left == 0 && f.Right == 0 {
		return out, nil
	}
	return e.fenced(f.Left, f.Right, out, st)
}
