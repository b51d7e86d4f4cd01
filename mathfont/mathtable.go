package mathfont

import (
	"encoding/binary"
	"fmt"
)

// Constants holds the MathConstants subtable of an OpenType MATH table.
// Lengths are in em. The percentage fields are stored as fractions, so a
// ScriptPercentScaleDown of 70 in the font becomes 0.7.
type Constants struct {
	ScriptPercentScaleDown                   float64
	ScriptScriptPercentScaleDown             float64
	DelimitedSubFormulaMinHeight             float64
	DisplayOperatorMinHeight                 float64
	MathLeading                              float64
	AxisHeight                               float64
	AccentBaseHeight                         float64
	FlattenedAccentBaseHeight                float64
	SubscriptShiftDown                       float64
	SubscriptTopMax                          float64
	SubscriptBaselineDropMin                 float64
	SuperscriptShiftUp                       float64
	SuperscriptShiftUpCramped                float64
	SuperscriptBottomMin                     float64
	SuperscriptBaselineDropMax               float64
	SubSuperscriptGapMin                     float64
	SuperscriptBottomMaxWithSubscript        float64
	SpaceAfterScript                         float64
	UpperLimitGapMin                         float64
	UpperLimitBaselineRiseMin                float64
	LowerLimitGapMin                         float64
	LowerLimitBaselineDropMin                float64
	StackTopShiftUp                          float64
	StackTopDisplayStyleShiftUp              float64
	StackBottomShiftDown                     float64
	StackBottomDisplayStyleShiftDown         float64
	StackGapMin                              float64
	StackDisplayStyleGapMin                  float64
	StretchStackTopShiftUp                   float64
	StretchStackBottomShiftDown              float64
	StretchStackGapAboveMin                  float64
	StretchStackGapBelowMin                  float64
	FractionNumeratorShiftUp                 float64
	FractionNumeratorDisplayStyleShiftUp     float64
	FractionDenominatorShiftDown             float64
	FractionDenominatorDisplayStyleShiftDown float64
	FractionNumeratorGapMin                  float64
	FractionNumDisplayStyleGapMin            float64
	FractionRuleThickness                    float64
	FractionDenominatorGapMin                float64
	FractionDenomDisplayStyleGapMin          float64
	SkewedFractionHorizontalGap              float64
	SkewedFractionVerticalGap                float64
	OverbarVerticalGap                       float64
	OverbarRuleThickness                     float64
	OverbarExtraAscender                     float64
	UnderbarVerticalGap                      float64
	UnderbarRuleThickness                    float64
	UnderbarExtraDescender                   float64
	RadicalVerticalGap                       float64
	RadicalDisplayStyleVerticalGap           float64
	RadicalRuleThickness                     float64
	RadicalExtraAscender                     float64
	RadicalKernBeforeDegree                  float64
	RadicalKernAfterDegree                   float64
	RadicalDegreeBottomRaisePercent          float64
}

// valueRecords lists the MathValueRecord fields of MathConstants in table order.
func (c *Constants) valueRecords() []*float64 {
	return []*float64{
		&c.MathLeading, &c.AxisHeight, &c.AccentBaseHeight, &c.FlattenedAccentBaseHeight,
		&c.SubscriptShiftDown, &c.SubscriptTopMax, &c.SubscriptBaselineDropMin,
		&c.SuperscriptShiftUp, &c.SuperscriptShiftUpCramped, &c.SuperscriptBottomMin,
		&c.SuperscriptBaselineDropMax, &c.SubSuperscriptGapMin,
		&c.SuperscriptBottomMaxWithSubscript, &c.SpaceAfterScript,
		&c.UpperLimitGapMin, &c.UpperLimitBaselineRiseMin,
		&c.LowerLimitGapMin, &c.LowerLimitBaselineDropMin,
		&c.StackTopShiftUp, &c.StackTopDisplayStyleShiftUp,
		&c.StackBottomShiftDown, &c.StackBottomDisplayStyleShiftDown,
		&c.StackGapMin, &c.StackDisplayStyleGapMin,
		&c.StretchStackTopShiftUp, &c.StretchStackBottomShiftDown,
		&c.StretchStackGapAboveMin, &c.StretchStackGapBelowMin,
		&c.FractionNumeratorShiftUp, &c.FractionNumeratorDisplayStyleShiftUp,
		&c.FractionDenominatorShiftDown, &c.FractionDenominatorDisplayStyleShiftDown,
		&c.FractionNumeratorGapMin, &c.FractionNumDisplayStyleGapMin,
		&c.FractionRuleThickness,
		&c.FractionDenominatorGapMin, &c.FractionDenomDisplayStyleGapMin,
		&c.SkewedFractionHorizontalGap, &c.SkewedFractionVerticalGap,
		&c.OverbarVerticalGap, &c.OverbarRuleThickness, &c.OverbarExtraAscender,
		&c.UnderbarVerticalGap, &c.UnderbarRuleThickness, &c.UnderbarExtraDescender,
		&c.RadicalVerticalGap, &c.RadicalDisplayStyleVerticalGap,
		&c.RadicalRuleThickness, &c.RadicalExtraAscender,
		&c.RadicalKernBeforeDegree, &c.RadicalKernAfterDegree,
	}
}

// Variant is one pre-drawn size of a stretchy glyph.
type Variant struct {
	Glyph   GlyphID
	// Advance is the size in the stretch direction, in em.
	Advance float64
}

// Part is one piece of a glyph assembly. Lengths are in em.
type Part struct {
	Glyph          GlyphID
	StartConnector float64
	EndConnector   float64
	FullAdvance    float64
	Extender       bool
}

// Assembly describes how to build an arbitrarily large glyph from parts.
// Parts are ordered bottom to top for vertical assemblies and left to
// right for horizontal ones.
type Assembly struct {
	Parts  []Part
	Italic float64
}

// construction is a MathGlyphConstruction: size variants plus an optional
// assembly.
type construction struct {
	variants []Variant
	assembly *Assembly
}

// mathTable is the decoded MATH table.
type mathTable struct {
	constants           Constants
	italics             map[GlyphID]float64
	topAccents          map[GlyphID]float64
	extendedShapes      map[GlyphID]bool
	minConnectorOverlap float64
	vertical            map[GlyphID]*construction
	horizontal          map[GlyphID]*construction
}

// tableReader performs bounds-checked big-endian reads over a table.
type tableReader struct {
	data []byte
	err  error
}

func (r *tableReader) u16(off int) uint16 {
	if r.err != nil {
		return 0
	}
	if off < 0 || off+2 > len(r.data) {
		r.err = fmt.Errorf("%w: read at %d beyond %d bytes", ErrMalformedMathTable, off, len(r.data))
		return 0
	}
	return binary.BigEndian.Uint16(r.data[off:])
}

func (r *tableReader) i16(off int) int16 {
	return int16(r.u16(off))
}

// parseMathTable decodes raw MATH table bytes. Font-unit values are divided
// by upem so every length in the result is in em.
func parseMathTable(data []byte, upem float64) (*mathTable, error) {
	r := &tableReader{data: data}
	if major := r.u16(0); r.err == nil && major != 1 {
		return nil, fmt.Errorf("%w: unsupported version %d", ErrMalformedMathTable, major)
	}
	constantsOff := int(r.u16(4))
	glyphInfoOff := int(r.u16(6))
	variantsOff := int(r.u16(8))
	if r.err != nil {
		return nil, r.err
	}

	t := &mathTable{
		italics:        make(map[GlyphID]float64),
		topAccents:     make(map[GlyphID]float64),
		extendedShapes: make(map[GlyphID]bool),
		vertical:       make(map[GlyphID]*construction),
		horizontal:     make(map[GlyphID]*construction),
	}

	if constantsOff != 0 {
		parseConstants(r, constantsOff, upem, &t.constants)
	}
	if glyphInfoOff != 0 {
		parseGlyphInfo(r, glyphInfoOff, upem, t)
	}
	if variantsOff != 0 {
		parseVariants(r, variantsOff, upem, t)
	}
	if r.err != nil {
		return nil, r.err
	}
	return t, nil
}

func parseConstants(r *tableReader, off int, upem float64, c *Constants) {
	c.ScriptPercentScaleDown = float64(r.i16(off)) / 100
	c.ScriptScriptPercentScaleDown = float64(r.i16(off+2)) / 100
	c.DelimitedSubFormulaMinHeight = float64(r.u16(off+4)) / upem
	c.DisplayOperatorMinHeight = float64(r.u16(off+6)) / upem

	pos := off + 8
	for _, field := range c.valueRecords() {
		*field = float64(r.i16(pos)) / upem
		pos += 4 // value + device table offset
	}
	c.RadicalDegreeBottomRaisePercent = float64(r.i16(pos)) / 100
}

func parseGlyphInfo(r *tableReader, off int, upem float64, t *mathTable) {
	italicsOff := int(r.u16(off))
	accentOff := int(r.u16(off + 2))
	shapesOff := int(r.u16(off + 4))

	if italicsOff != 0 {
		parseValueRecordsByCoverage(r, off+italicsOff, upem, t.italics)
	}
	if accentOff != 0 {
		parseValueRecordsByCoverage(r, off+accentOff, upem, t.topAccents)
	}
	if shapesOff != 0 {
		for _, g := range parseCoverage(r, off+shapesOff) {
			t.extendedShapes[g] = true
		}
	}
}

// parseValueRecordsByCoverage reads the shared layout of MathItalicsCorrectionInfo
// and MathTopAccentAttachment: a coverage offset, a count, and one
// MathValueRecord per covered glyph.
func parseValueRecordsByCoverage(r *tableReader, off int, upem float64, dst map[GlyphID]float64) {
	coverage := parseCoverage(r, off+int(r.u16(off)))
	count := int(r.u16(off + 2))
	if count > len(coverage) {
		count = len(coverage)
	}
	for i := 0; i < count; i++ {
		dst[coverage[i]] = float64(r.i16(off+4+i*4)) / upem
	}
}

// parseCoverage decodes an OpenType coverage table into glyphs ordered by
// coverage index.
func parseCoverage(r *tableReader, off int) []GlyphID {
	switch format := r.u16(off); format {
	case 1:
		count := int(r.u16(off + 2))
		glyphs := make([]GlyphID, 0, count)
		for i := 0; i < count && r.err == nil; i++ {
			glyphs = append(glyphs, GlyphID(r.u16(off+4+i*2)))
		}
		return glyphs
	case 2:
		ranges := int(r.u16(off + 2))
		var glyphs []GlyphID
		for i := 0; i < ranges && r.err == nil; i++ {
			rec := off + 4 + i*6
			start, end := r.u16(rec), r.u16(rec+2)
			index := int(r.u16(rec + 4))
			for g := int(start); g <= int(end); g++ {
				at := index + g - int(start)
				for len(glyphs) <= at {
					glyphs = append(glyphs, 0)
				}
				glyphs[at] = GlyphID(g)
			}
		}
		return glyphs
	default:
		if r.err == nil {
			r.err = fmt.Errorf("%w: coverage format %d", ErrMalformedMathTable, format)
		}
		return nil
	}
}

func parseVariants(r *tableReader, off int, upem float64, t *mathTable) {
	t.minConnectorOverlap = float64(r.u16(off)) / upem
	vertCoverageOff := int(r.u16(off + 2))
	horizCoverageOff := int(r.u16(off + 4))
	vertCount := int(r.u16(off + 6))
	horizCount := int(r.u16(off + 8))

	var vertCoverage, horizCoverage []GlyphID
	if vertCoverageOff != 0 {
		vertCoverage = parseCoverage(r, off+vertCoverageOff)
	}
	if horizCoverageOff != 0 {
		horizCoverage = parseCoverage(r, off+horizCoverageOff)
	}

	pos := off + 10
	for i := 0; i < vertCount && r.err == nil; i++ {
		if c := parseConstruction(r, off, int(r.u16(pos)), upem); c != nil && i < len(vertCoverage) {
			t.vertical[vertCoverage[i]] = c
		}
		pos += 2
	}
	for i := 0; i < horizCount && r.err == nil; i++ {
		if c := parseConstruction(r, off, int(r.u16(pos)), upem); c != nil && i < len(horizCoverage) {
			t.horizontal[horizCoverage[i]] = c
		}
		pos += 2
	}
}

func parseConstruction(r *tableReader, base, rel int, upem float64) *construction {
	if rel == 0 {
		return nil
	}
	off := base + rel
	assemblyOff := int(r.u16(off))
	count := int(r.u16(off + 2))

	c := &construction{variants: make([]Variant, 0, count)}
	for i := 0; i < count && r.err == nil; i++ {
		rec := off + 4 + i*4
		c.variants = append(c.variants, Variant{
			Glyph:   GlyphID(r.u16(rec)),
			Advance: float64(r.u16(rec+2)) / upem,
		})
	}

	if assemblyOff != 0 {
		a := off + assemblyOff
		asm := &Assembly{Italic: float64(r.i16(a)) / upem}
		parts := int(r.u16(a + 4))
		for i := 0; i < parts && r.err == nil; i++ {
			rec := a + 6 + i*10
			asm.Parts = append(asm.Parts, Part{
				Glyph:          GlyphID(r.u16(rec)),
				StartConnector: float64(r.u16(rec+2)) / upem,
				EndConnector:   float64(r.u16(rec+4)) / upem,
				FullAdvance:    float64(r.u16(rec+6)) / upem,
				Extender:       r.u16(rec+8)&1 != 0,
			})
		}
		c.assembly = asm
	}
	return c
}
