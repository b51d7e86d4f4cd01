package mathfont

import (
	"encoding/binary"
	"errors"
	"testing"
)

// tableBuilder assembles big-endian table bytes for tests.
type tableBuilder struct {
	buf []byte
}

func (b *tableBuilder) u16(vs ...uint16) {
	for _, v := range vs {
		b.buf = binary.BigEndian.AppendUint16(b.buf, v)
	}
}

func (b *tableBuilder) len() uint16 {
	return uint16(len(b.buf))
}

// buildMathTable returns a small MATH table: constants with AxisHeight 250
// and FractionRuleThickness 40, italic corrections for glyphs 5 and 9, and
// a vertical construction for glyph 3 with two variants and a two-part
// assembly.
func buildMathTable() []byte {
	const (
		constantsOff = 10
		glyphInfoOff = constantsOff + 8 + 51*4 + 2
		italicsRel   = 8
		variantsOff  = glyphInfoOff + italicsRel + 4 + 2*4 + 8
	)

	b := &tableBuilder{}
	b.u16(1, 0, constantsOff, glyphInfoOff, variantsOff)

	// MathConstants
	b.u16(70, 50, 1300, 1300)
	for i := range 51 {
		var v uint16
		switch i {
		case 1: // axisHeight
			v = 250
		case 34: // fractionRuleThickness
			v = 40
		case 50: // radicalKernAfterDegree
			v = uint16(0x10000 - 556)
		}
		b.u16(v, 0)
	}
	b.u16(60)

	// MathGlyphInfo with only italics correction.
	b.u16(italicsRel, 0, 0, 0)
	b.u16(4+2*4, 2) // coverage offset, count
	b.u16(15, 0, 25, 0)
	b.u16(1, 2, 5, 9) // coverage format 1

	if b.len() != variantsOff {
		panic("buildMathTable: variants offset mismatch")
	}

	// MathVariants
	b.u16(20, 12, 0, 1, 0) // overlap, vert coverage, horiz coverage, counts
	b.u16(22)              // construction offset
	b.u16(2, 1, 3, 3, 0)   // coverage format 2: glyph 3 at index 0
	b.u16(12, 2)           // assembly offset, variant count
	b.u16(3, 1000, 40, 1500)
	b.u16(0, 0, 2) // italics record, part count
	b.u16(41, 0, 100, 500, 0)
	b.u16(42, 100, 100, 300, 1)

	return b.buf
}

func TestParseMathTable(t *testing.T) {
	table, err := parseMathTable(buildMathTable(), 1000)
	if err != nil {
		t.Fatalf("parseMathTable() error = %v", err)
	}

	c := table.constants
	if !approx(c.ScriptPercentScaleDown, 0.7) || !approx(c.ScriptScriptPercentScaleDown, 0.5) {
		t.Errorf("script scales = %v/%v, want 0.7/0.5", c.ScriptPercentScaleDown, c.ScriptScriptPercentScaleDown)
	}
	if !approx(c.AxisHeight, 0.25) {
		t.Errorf("AxisHeight = %v, want 0.25", c.AxisHeight)
	}
	if !approx(c.FractionRuleThickness, 0.04) {
		t.Errorf("FractionRuleThickness = %v, want 0.04", c.FractionRuleThickness)
	}
	if !approx(c.RadicalKernAfterDegree, -0.556) {
		t.Errorf("RadicalKernAfterDegree = %v, want -0.556", c.RadicalKernAfterDegree)
	}
	if !approx(c.RadicalDegreeBottomRaisePercent, 0.6) {
		t.Errorf("RadicalDegreeBottomRaisePercent = %v, want 0.6", c.RadicalDegreeBottomRaisePercent)
	}

	if !approx(table.italics[5], 0.015) || !approx(table.italics[9], 0.025) {
		t.Errorf("italics = %v, want 5:0.015 9:0.025", table.italics)
	}
	if !approx(table.minConnectorOverlap, 0.02) {
		t.Errorf("minConnectorOverlap = %v, want 0.02", table.minConnectorOverlap)
	}

	con := table.vertical[3]
	if con == nil {
		t.Fatal("no vertical construction for glyph 3")
	}
	if len(con.variants) != 2 || con.variants[1].Glyph != 40 || !approx(con.variants[1].Advance, 1.5) {
		t.Errorf("variants = %+v", con.variants)
	}
	if con.assembly == nil || len(con.assembly.Parts) != 2 {
		t.Fatalf("assembly = %+v, want 2 parts", con.assembly)
	}
	ext := con.assembly.Parts[1]
	if ext.Glyph != 42 || !ext.Extender || !approx(ext.FullAdvance, 0.3) {
		t.Errorf("extender part = %+v", ext)
	}
}

func TestParseMathTableTruncated(t *testing.T) {
	data := buildMathTable()
	for _, n := range []int{0, 4, 40, len(data) - 4} {
		if _, err := parseMathTable(data[:n], 1000); !errors.Is(err, ErrMalformedMathTable) {
			t.Errorf("parseMathTable(%d bytes) error = %v, want ErrMalformedMathTable", n, err)
		}
	}
}

func TestParseMathTableVersion(t *testing.T) {
	data := buildMathTable()
	data[1] = 2
	if _, err := parseMathTable(data, 1000); !errors.Is(err, ErrMalformedMathTable) {
		t.Errorf("parseMathTable(version 2) error = %v, want ErrMalformedMathTable", err)
	}
}
