// Package layout turns an expression tree into a tree of positioned boxes.
//
// Sizes come from the font's OpenType MATH table: fractions, scripts,
// limits, radicals and accents are placed with the MathConstants of the
// font, and stretchy delimiters are picked from the size variants or built
// from the glyph assemblies it provides. Inter-atom spacing follows a fixed
// table keyed by the classes of the two atoms.
//
// All lengths in the result are pixels at scale 1. The rasterizer walks
// the tree with Box.Walk:
//
//	box, err := layout.Layout(tree, layout.Options{Size: 24, Style: expr.StyleDisplay})
//	if err != nil {
//	    return err
//	}
//	box.Walk(func(b *layout.Box, x, y float64) bool {
//	    // draw glyphs and rules at (x, y)
//	    return true
//	})
package layout
