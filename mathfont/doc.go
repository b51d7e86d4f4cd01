// Package mathfont exposes the metrics of an OpenType math font: glyph
// dimensions, the MATH table constants, stretchy glyph variants and
// assemblies, and glyph outlines.
//
// All lengths are in em. Multiply by the font size in pixels to get pixel
// lengths.
//
// The embedded default font is Latin Modern Math:
//
//	f := mathfont.Default()
//	gid, err := f.Glyph('x')
//	m := f.Metrics(gid)
//	axis := f.Constants().AxisHeight
package mathfont
