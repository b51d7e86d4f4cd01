package expr

// Node is an expression tree node. The set of implementations is closed:
// Symbol, Text, Group, Scripts, Fraction, Radical, Matrix, Accent,
// Delimited, SizedDelim, Space, Style and Phantom.
//
// Nodes are immutable values. Each node exclusively owns its children.
type Node interface {
	isNode()
}

// Class is the TeX atom class of a node. It drives inter-atom spacing.
type Class uint8

const (
	Ord Class = iota
	Op
	Bin
	Rel
	Open
	Close
	Punct
	Inner
)

var classNames = [...]string{"Ord", "Op", "Bin", "Rel", "Open", "Close", "Punct", "Inner"}

// String returns the class name.
func (c Class) String() string {
	if int(c) < len(classNames) {
		return classNames[c]
	}
	return "Unknown"
}

// MathStyle is one of the four TeX math styles.
type MathStyle uint8

const (
	StyleDisplay MathStyle = iota
	StyleText
	StyleScript
	StyleScriptScript
)

// Symbol is a single glyph atom.
type Symbol struct {
	Rune  rune
	Class Class

	// Large marks operators drawn from a larger variant in display style.
	Large bool

	// Limits marks operators whose scripts go above and below in display
	// style.
	Limits bool

	// Negated overlays a slash, as produced by \not.
	Negated bool
}

// Text is an upright run such as a function name or \text content.
type Text struct {
	Value  string
	Class  Class
	Limits bool
}

// Group is a horizontal list of nodes treated as one atom of Class.
type Group struct {
	Items []Node
	Class Class
}

// LimitsMode controls where scripts of an operator are placed.
type LimitsMode uint8

const (
	// LimitsAuto puts scripts above and below large operators with limits
	// in display style only.
	LimitsAuto LimitsMode = iota
	// LimitsAlways always stacks scripts above and below.
	LimitsAlways
	// LimitsNever always attaches scripts to the side.
	LimitsNever
)

// Scripts attaches a superscript and/or subscript to a base.
type Scripts struct {
	Base   Node
	Sup    Node
	Sub    Node
	Limits LimitsMode
}

// FracStyle forces the style of a fraction.
type FracStyle uint8

const (
	FracAuto FracStyle = iota
	FracDisplay
	FracText
)

// Fraction is a numerator over a denominator. Binomials have NoRule set and
// Left/Right delimiters.
type Fraction struct {
	Num    Node
	Den    Node
	NoRule bool
	Style  FracStyle
	Left   rune
	Right  rune
}

// Radical is a square root or an n-th root when Index is set.
type Radical struct {
	Radicand Node
	Index    Node
}

// MatrixKind identifies a matrix-like environment.
type MatrixKind uint8

const (
	MatrixPlain MatrixKind = iota
	MatrixParen
	MatrixBracket
	MatrixBrace
	MatrixPipe
	MatrixDoublePipe
	MatrixCases
	MatrixRCases
	MatrixAligned
	MatrixGathered
	MatrixArray
	MatrixSmall
)

// Delimiters returns the fence runes drawn around the grid. Zero means no
// fence on that side.
func (k MatrixKind) Delimiters() (left, right rune) {
	switch k {
	case MatrixParen:
		return '(', ')'
	case MatrixBracket:
		return '[', ']'
	case MatrixBrace:
		return '{', '}'
	case MatrixPipe:
		return '|', '|'
	case MatrixDoublePipe:
		return '\u2016', '\u2016'
	case MatrixCases:
		return '{', 0
	case MatrixRCases:
		return 0, '}'
	default:
		return 0, 0
	}
}

// Alignment is the horizontal alignment of a matrix column.
type Alignment uint8

const (
	AlignCenter Alignment = iota
	AlignLeft
	AlignRight
)

// Matrix is a grid of cells. Align has one entry per column.
type Matrix struct {
	Rows  [][]Node
	Kind  MatrixKind
	Align []Alignment
}

// Columns returns the number of columns of the widest row.
func (m Matrix) Columns() int {
	n := 0
	for _, row := range m.Rows {
		n = max(n, len(row))
	}
	return n
}

// AccentKind identifies an accent command.
type AccentKind uint8

const (
	AccentHat AccentKind = iota
	AccentWideHat
	AccentCheck
	AccentWideCheck
	AccentTilde
	AccentWideTilde
	AccentAcute
	AccentGrave
	AccentDot
	AccentDDot
	AccentDDDot
	AccentBreve
	AccentBar
	AccentVec
	AccentMathring
	AccentOverline
	AccentUnderline
	AccentOverbrace
	AccentUnderbrace
	AccentOverRightArrow
	AccentOverLeftArrow
	AccentOverLeftRightArrow
)

var accentRunes = [...]rune{
	AccentHat:                '\u0302',
	AccentWideHat:            '\u0302',
	AccentCheck:              '\u030C',
	AccentWideCheck:          '\u030C',
	AccentTilde:              '\u0303',
	AccentWideTilde:          '\u0303',
	AccentAcute:              '\u0301',
	AccentGrave:              '\u0300',
	AccentDot:                '\u0307',
	AccentDDot:               '\u0308',
	AccentDDDot:              '\u20DB',
	AccentBreve:              '\u0306',
	AccentBar:                '\u0304',
	AccentVec:                '\u20D7',
	AccentMathring:           '\u030A',
	AccentOverline:           0,
	AccentUnderline:          0,
	AccentOverbrace:          '\u23DE',
	AccentUnderbrace:         '\u23DF',
	AccentOverRightArrow:     '\u2192',
	AccentOverLeftArrow:      '\u2190',
	AccentOverLeftRightArrow: '\u2194',
}

// Rune returns the accent glyph, or 0 for accents drawn as rules.
func (k AccentKind) Rune() rune {
	if int(k) < len(accentRunes) {
		return accentRunes[k]
	}
	return 0
}

// Wide reports whether the accent stretches to the width of its base.
func (k AccentKind) Wide() bool {
	switch k {
	case AccentWideHat, AccentWideCheck, AccentWideTilde, AccentOverbrace, AccentUnderbrace,
		AccentOverRightArrow, AccentOverLeftArrow, AccentOverLeftRightArrow:
		return true
	}
	return false
}

// Under reports whether the accent goes below its base.
func (k AccentKind) Under() bool {
	return k == AccentUnderline || k == AccentUnderbrace
}

// Rule reports whether the accent is a horizontal rule.
func (k AccentKind) Rule() bool {
	return k == AccentOverline || k == AccentUnderline
}

// Accent places a mark above or below its base.
type Accent struct {
	Base Node
	Kind AccentKind
}

// Delimited is a \left ... \right pair. A zero rune is a null delimiter.
type Delimited struct {
	Left  rune
	Right rune
	Body  Node
}

// SizedDelim is a delimiter of fixed size (\big and friends). Size is 1
// to 4. Size 0 marks a \middle delimiter that takes the size of the
// enclosing \left ... \right pair.
type SizedDelim struct {
	Rune  rune
	Size  int
	Class Class
}

// Space is a fixed horizontal gap in em. Width may be negative.
type Space struct {
	Width float64
}

// Style switches the math style for Body.
type Style struct {
	Style MathStyle
	Body  Node
}

// Phantom keeps the dimensions of Body without drawing it. Horizontal
// keeps only the width, Vertical only the height and depth.
type Phantom struct {
	Body       Node
	Horizontal bool
	Vertical   bool
}

func (Symbol) isNode()     {}
func (Text) isNode()       {}
func (Group) isNode()      {}
func (Scripts) isNode()    {}
func (Fraction) isNode()   {}
func (Radical) isNode()    {}
func (Matrix) isNode()     {}
func (Accent) isNode()     {}
func (Delimited) isNode()  {}
func (SizedDelim) isNode() {}
func (Space) isNode()      {}
func (Style) isNode()      {}
func (Phantom) isNode()    {}

// ClassOf returns the atom class of a node for spacing purposes.
func ClassOf(n Node) Class {
	switch n := n.(type) {
	case Symbol:
		return n.Class
	case Text:
		return n.Class
	case Group:
		return n.Class
	case Scripts:
		return ClassOf(n.Base)
	case Fraction, Delimited:
		return Inner
	case Matrix:
		if l, r := n.Kind.Delimiters(); l != 0 || r != 0 {
			return Inner
		}
		return Ord
	case SizedDelim:
		return n.Class
	default:
		return Ord
	}
}

// withClass returns n with its class replaced, for the nodes whose class
// comes from a field.
func withClass(n Node, c Class) Node {
	switch n := n.(type) {
	case Symbol:
		n.Class = c
		return n
	case Text:
		n.Class = c
		return n
	case Group:
		n.Class = c
		return n
	case Scripts:
		n.Base = withClass(n.Base, c)
		return n
	case SizedDelim:
		n.Class = c
		return n
	}
	return n
}
