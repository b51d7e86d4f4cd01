package expr

// alphabet selects the Unicode math alphanumeric style applied to letters
// and digits.
type alphabet uint8

const (
	alphaDefault alphabet = iota // italic letters, upright digits
	alphaRoman
	alphaBold
	alphaBoldItalic
	alphaSans
	alphaMono
	alphaDoubleStruck
	alphaScript
	alphaFraktur
)

// Block starts for uppercase Latin, lowercase Latin and digits. Zero means
// the style has no such block.
type alphaBlock struct {
	upper, lower, digit rune
}

var alphaBlocks = map[alphabet]alphaBlock{
	alphaDefault:      {0x1D434, 0x1D44E, 0},
	alphaBold:         {0x1D400, 0x1D41A, 0x1D7CE},
	alphaBoldItalic:   {0x1D468, 0x1D482, 0x1D7CE},
	alphaSans:         {0x1D5A0, 0x1D5BA, 0x1D7E2},
	alphaMono:         {0x1D670, 0x1D68A, 0x1D7F6},
	alphaDoubleStruck: {0x1D538, 0x1D552, 0x1D7D8},
	alphaScript:       {0x1D49C, 0x1D44E, 0}, // script lowercase falls back to italic
	alphaFraktur:      {0x1D504, 0x1D51E, 0},
}

// Holes in the math alphanumeric blocks are filled from Letterlike Symbols.
var letterlike = map[alphabet]map[rune]rune{
	alphaDefault: {'h': 0x210E},
	alphaScript: {
		'B': 0x212C, 'E': 0x2130, 'F': 0x2131, 'H': 0x210B, 'I': 0x2110,
		'L': 0x2112, 'M': 0x2133, 'R': 0x211B, 'h': 0x210E,
	},
	alphaFraktur: {'C': 0x212D, 'H': 0x210C, 'I': 0x2111, 'R': 0x211C, 'Z': 0x2128},
	alphaDoubleStruck: {
		'C': 0x2102, 'H': 0x210D, 'N': 0x2115, 'P': 0x2119,
		'Q': 0x211A, 'R': 0x211D, 'Z': 0x2124,
	},
}

// Greek variants that follow omega in the italic blocks, in block order.
var greekVariants = []rune{0x2202, 0x03F5, 0x03D1, 0x03F0, 0x03D5, 0x03F1, 0x03D6}

func (a alphabet) apply(r rune) rune {
	if a == alphaRoman {
		return r
	}
	if sub, ok := letterlike[a][r]; ok {
		return sub
	}
	blk := alphaBlocks[a]
	switch {
	case r >= 'A' && r <= 'Z' && blk.upper != 0:
		return blk.upper + r - 'A'
	case r >= 'a' && r <= 'z' && blk.lower != 0:
		return blk.lower + r - 'a'
	case r >= '0' && r <= '9' && blk.digit != 0:
		return blk.digit + r - '0'
	}
	return a.applyGreek(r)
}

func (a alphabet) applyGreek(r rune) rune {
	var upper, lower rune
	switch a {
	case alphaDefault:
		lower = 0x1D6FC // uppercase Greek stays upright
	case alphaBold:
		upper, lower = 0x1D6A8, 0x1D6C2
	case alphaBoldItalic:
		upper, lower = 0x1D71C, 0x1D736
	default:
		return r
	}
	switch {
	case r >= 0x0391 && r <= 0x03A9 && r != 0x03A2 && upper != 0:
		return upper + r - 0x0391
	case r >= 0x03B1 && r <= 0x03C9:
		return lower + r - 0x03B1
	}
	for i, v := range greekVariants {
		if r == v && r != 0x2202 {
			return lower + 25 + rune(i)
		}
	}
	return r
}

// PlainRune maps a math alphanumeric symbol back to the ASCII letter,
// digit or Greek letter it styles. Other runes are returned unchanged.
// Layout uses it when the font lacks a styled glyph.
func PlainRune(r rune) rune {
	switch {
	case r == 0x210E:
		return 'h'
	case r >= 0x1D400 && r <= 0x1D6A3:
		off := (r - 0x1D400) % 52
		if off < 26 {
			return 'A' + off
		}
		return 'a' + off - 26
	case r >= 0x1D6A8 && r <= 0x1D7C9:
		off := (r - 0x1D6A8) % 58
		switch {
		case off < 25:
			return 0x0391 + off
		case off == 25:
			return 0x2207
		case off < 51:
			return 0x03B1 + off - 26
		default:
			return greekVariants[off-51]
		}
	case r >= 0x1D7CE && r <= 0x1D7FF:
		return '0' + (r-0x1D7CE)%10
	}
	for _, subs := range letterlike {
		for plain, styled := range subs {
			if styled == r {
				return plain
			}
		}
	}
	return r
}
