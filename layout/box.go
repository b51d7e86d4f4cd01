package layout

import (
	"fmt"

	"github.com/gogpu/math2img/mathfont"
)

// Kind is the type of a box.
type Kind uint8

const (
	// KindHList is a container. Its children carry their own offsets, so
	// it holds vertical stacks as well as rows.
	KindHList Kind = iota
	// KindGlyph draws one glyph with its origin on the box baseline.
	KindGlyph
	// KindRule is a filled rectangle covering the box.
	KindRule
	// KindKern is empty space.
	KindKern
)

// String returns the kind name.
func (k Kind) String() string {
	switch k {
	case KindHList:
		return "HList"
	case KindGlyph:
		return "Glyph"
	case KindRule:
		return "Rule"
	case KindKern:
		return "Kern"
	default:
		return fmt.Sprintf("Kind(%d)", k)
	}
}

// Role tags a box with the part of a construct it represents.
type Role uint8

const (
	RoleNone Role = iota
	RoleCell
	RoleRow
	RoleNumerator
	RoleDenominator
	RoleFractionRule
	RoleSuperscript
	RoleSubscript
	RoleRadicand
	RoleRadicalSign
	RoleIndex
	RoleDelimiter
	RoleAccent
	RoleAccentBase
	RoleLimit
)

var roleNames = [...]string{
	"None", "Cell", "Row", "Numerator", "Denominator", "FractionRule",
	"Superscript", "Subscript", "Radicand", "RadicalSign", "Index",
	"Delimiter", "Accent", "AccentBase", "Limit",
}

// String returns the role name.
func (r Role) String() string {
	if int(r) < len(roleNames) {
		return roleNames[r]
	}
	return fmt.Sprintf("Role(%d)", r)
}

// Glyph identifies the glyph drawn by a KindGlyph box.
type Glyph struct {
	ID mathfont.GlyphID

	// Size is the em size in pixels the glyph is drawn at.
	Size float64

	// Rune is the codepoint the glyph was chosen for. Variants and
	// assembly parts keep the rune of the base glyph.
	Rune rune
}

// Box is a node of the laid out tree. Lengths are in pixels at scale 1.
//
// X and Y give the position of the box's baseline origin relative to the
// parent's origin, with y growing downward. The ink of a box spans from
// Y-Height to Y+Depth vertically and from X to X+Width horizontally.
type Box struct {
	Width, Height, Depth float64
	X, Y                 float64

	Kind  Kind
	Glyph Glyph
	Role  Role

	Children []*Box
}

// Total returns the height plus depth.
func (b *Box) Total() float64 {
	return b.Height + b.Depth
}

// Walk calls fn for b and each descendant, parents first, with the
// absolute position of the box's baseline origin. Returning false skips
// the children of that box.
func (b *Box) Walk(fn func(b *Box, x, y float64) bool) {
	b.walk(0, 0, fn)
}

func (b *Box) walk(x, y float64, fn func(*Box, float64, float64) bool) {
	x, y = x+b.X, y+b.Y
	if !fn(b, x, y) {
		return
	}
	for _, c := range b.Children {
		c.walk(x, y, fn)
	}
}

// Find returns the descendants of b with the given role, in tree order.
func (b *Box) Find(role Role) []*Box {
	var out []*Box
	b.Walk(func(c *Box, _, _ float64) bool {
		if c.Role == role {
			out = append(out, c)
		}
		return true
	})
	return out
}

func newHList(role Role) *Box {
	return &Box{Kind: KindHList, Role: role}
}

func kern(width float64) *Box {
	return &Box{Kind: KindKern, Width: width}
}

func rule(width, thickness float64, role Role) *Box {
	return &Box{Kind: KindRule, Width: width, Height: thickness, Role: role}
}

func glyphBox(gid mathfont.GlyphID, r rune, size float64, m mathfont.Metrics) *Box {
	return &Box{
		Kind:   KindGlyph,
		Width:  m.Advance * size,
		Height: m.Height * size,
		Depth:  m.Depth * size,
		Glyph:  Glyph{ID: gid, Size: size, Rune: r},
	}
}

// add appends c at the right edge of b, on the baseline.
func (b *Box) add(c *Box) {
	c.X = b.Width
	b.place(c)
	b.Width += c.Width
}

// place adds a child that already carries its offsets and grows the
// height and depth of b to cover it. The width is left to the caller.
func (b *Box) place(c *Box) {
	b.Children = append(b.Children, c)
	b.Height = max(b.Height, c.Height-c.Y)
	b.Depth = max(b.Depth, c.Depth+c.Y)
}

// shifted wraps b so that its baseline moves down by dy.
func shifted(b *Box, dy float64, role Role) *Box {
	w := newHList(role)
	b.X, b.Y = 0, dy
	w.Children = []*Box{b}
	w.Width = b.Width
	w.Height = b.Height - dy
	w.Depth = b.Depth + dy
	return w
}
