package expr

import (
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/unicode/norm"
)

// MaxDepth is the deepest atom nesting Parse accepts.
const MaxDepth = 64

// Parse parses TeX math source into an expression tree.
//
// The source is NFC-normalized first. Display environments such as
// equation or align are unwrapped; rows separated by \\ or cells separated
// by & at the top level produce an aligned or gathered Matrix.
//
// Parse returns ErrEmpty for blank input and *ParseError for malformed
// input.
func Parse(src string) (Node, error) {
	src = norm.NFC.String(src)
	if strings.TrimFunc(src, unicode.IsSpace) == "" {
		return nil, ErrEmpty
	}

	p := &parser{src: src}
	rows, err := p.parseRows()
	if err != nil {
		return nil, err
	}
	if !p.eof() {
		return nil, p.strayError()
	}
	return rowsNode(rows, MatrixGathered), nil
}

type parser struct {
	src   string
	pos   int
	depth int
	alpha alphabet

	// optDepth is non-zero while parsing a bracketed optional argument, so
	// that ']' ends the list.
	optDepth int
}

// styleSwitch marks a \displaystyle-like command inside a list. It is
// folded into a Style node before the list is returned.
type styleSwitch struct {
	style MathStyle
}

func (styleSwitch) isNode() {}

// =============================================================================
// Errors
// =============================================================================

func (p *parser) strayError() *ParseError {
	switch name, _ := p.peekCommand(); {
	case p.src[p.pos] == '}':
		return &ParseError{Pos: p.pos, Msg: "unexpected }"}
	case name == "right" || name == "middle":
		return &ParseError{Pos: p.pos, Command: name, Msg: `\` + name + ` without matching \left`}
	case name == "end":
		return &ParseError{Pos: p.pos, Command: name, Msg: `\end without matching \begin`}
	case p.src[p.pos] == ']':
		return &ParseError{Pos: p.pos, Msg: "unexpected ]"}
	case name == `\` || name == "cr":
		return &ParseError{Pos: p.pos, Command: name, Msg: "misplaced row break"}
	}
	return &ParseError{Pos: p.pos, Msg: fmt.Sprintf("unexpected %q", p.src[p.pos])}
}

func missingArg(pos int, cmd string, n int) *ParseError {
	return &ParseError{
		Pos:      pos,
		Expected: "argument",
		Command:  cmd,
		Msg:      fmt.Sprintf(`missing argument %d of \%s`, n, cmd),
	}
}

// =============================================================================
// Scanning
// =============================================================================

func (p *parser) eof() bool {
	return p.pos >= len(p.src)
}

func (p *parser) skipSpace() {
	for !p.eof() {
		r, size := utf8.DecodeRuneInString(p.src[p.pos:])
		switch {
		case r == '%':
			if i := strings.IndexByte(p.src[p.pos:], '\n'); i >= 0 {
				p.pos += i + 1
			} else {
				p.pos = len(p.src)
			}
		case unicode.IsSpace(r):
			p.pos += size
		default:
			return
		}
	}
}

// peekCommand returns the name of the control sequence at the current
// position without consuming it.
func (p *parser) peekCommand() (string, bool) {
	if p.eof() || p.src[p.pos] != '\\' {
		return "", false
	}
	i := p.pos + 1
	if i >= len(p.src) {
		return "", true
	}
	if !isLetter(p.src[i]) {
		_, size := utf8.DecodeRuneInString(p.src[i:])
		return p.src[i : i+size], true
	}
	j := i
	for j < len(p.src) && isLetter(p.src[j]) {
		j++
	}
	return p.src[i:j], true
}

// readCommand consumes a control sequence and returns its name.
func (p *parser) readCommand() (string, error) {
	start := p.pos
	name, _ := p.peekCommand()
	if name == "" {
		return "", &ParseError{Pos: start, Expected: "command name", Msg: "trailing backslash"}
	}
	p.pos += 1 + len(name)
	return name, nil
}

func (p *parser) consumeStar() bool {
	if !p.eof() && p.src[p.pos] == '*' {
		p.pos++
		return true
	}
	return false
}

func isLetter(c byte) bool {
	return c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z'
}

// atStop reports whether the next token ends the current list.
func (p *parser) atStop() bool {
	if p.eof() {
		return true
	}
	switch p.src[p.pos] {
	case '}', '&':
		return true
	case ']':
		return p.optDepth > 0
	}
	switch name, _ := p.peekCommand(); name {
	case `\`, "cr", "end", "right", "middle":
		return true
	}
	return false
}

// readBraced consumes a balanced {...} group and returns its raw content.
func (p *parser) readBraced(cmd string, n int) (string, error) {
	p.skipSpace()
	if p.eof() || p.src[p.pos] != '{' {
		return "", missingArg(p.pos, cmd, n)
	}
	start := p.pos
	depth := 0
	for i := p.pos; i < len(p.src); i++ {
		switch p.src[i] {
		case '\\':
			i++
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				p.pos = i + 1
				return p.src[start+1 : i], nil
			}
		}
	}
	return "", &ParseError{Pos: start, Expected: "}", Command: cmd, Msg: "unbalanced braces"}
}

// =============================================================================
// Lists and rows
// =============================================================================

// parseRows parses cells separated by & and rows separated by \\ until
// the end of input or an enclosing terminator.
func (p *parser) parseRows() ([][]Node, error) {
	var rows [][]Node
	var row []Node
	for {
		items, err := p.parseList()
		if err != nil {
			return nil, err
		}
		row = append(row, cellNode(items))

		p.skipSpace()
		if p.eof() {
			break
		}
		if p.src[p.pos] == '&' {
			p.pos++
			continue
		}
		name, _ := p.peekCommand()
		if name != `\` && name != "cr" {
			break
		}
		p.pos += 1 + len(name)
		p.skipRowSpacing()
		rows = append(rows, row)
		row = nil
	}
	rows = append(rows, row)

	// A trailing \\ leaves an empty last row.
	if n := len(rows); n > 1 && len(rows[n-1]) == 1 && isEmpty(rows[n-1][0]) {
		rows = rows[:n-1]
	}
	return rows, nil
}

// skipRowSpacing drops the optional [length] after \\.
func (p *parser) skipRowSpacing() {
	if p.eof() || p.src[p.pos] != '[' {
		return
	}
	if end := strings.IndexByte(p.src[p.pos:], ']'); end >= 0 {
		if _, ok := parseLength(p.src[p.pos+1 : p.pos+end]); ok {
			p.pos += end + 1
		}
	}
}

// parseList parses atoms until a terminator. The result is not yet
// classified; callers pass it through finish.
func (p *parser) parseList() ([]Node, error) {
	var items []Node
	for {
		p.skipSpace()
		if p.atStop() {
			return items, nil
		}
		if name, ok := p.peekCommand(); ok {
			if s, ok := mathStyles[name]; ok {
				p.pos += 1 + len(name)
				items = append(items, styleSwitch{style: s})
				continue
			}
			if a, ok := fontSwitches[name]; ok {
				p.pos += 1 + len(name)
				p.alpha = a
				continue
			}
		}
		n, err := p.parseScripted()
		if err != nil {
			return nil, err
		}
		if n != nil {
			items = append(items, n)
		}
	}
}

// finish applies the Bin-to-Ord rule and folds style switches.
func finish(items []Node) []Node {
	reclassify(items)
	for i := len(items) - 1; i >= 0; i-- {
		sw, ok := items[i].(styleSwitch)
		if !ok {
			continue
		}
		rest := append([]Node(nil), items[i+1:]...)
		items = append(items[:i], Style{Style: sw.style, Body: Group{Items: rest}})
	}
	return items
}

// reclassify turns binary operators into ordinary atoms where TeX would:
// at the start of a list, after Bin, Op, Rel, Open or Punct, before Rel,
// Close or Punct, and at the end of a list.
func reclassify(items []Node) {
	prev := -1
	for i, n := range items {
		if transparent(n) {
			continue
		}
		c := ClassOf(n)
		switch c {
		case Bin:
			if prev < 0 {
				items[i] = withClass(n, Ord)
				break
			}
			switch ClassOf(items[prev]) {
			case Bin, Op, Rel, Open, Punct:
				items[i] = withClass(n, Ord)
			}
		case Rel, Close, Punct:
			if prev >= 0 && ClassOf(items[prev]) == Bin {
				items[prev] = withClass(items[prev], Ord)
			}
		}
		prev = i
	}
	if prev >= 0 && ClassOf(items[prev]) == Bin {
		items[prev] = withClass(items[prev], Ord)
	}
}

func transparent(n Node) bool {
	switch n.(type) {
	case Space, styleSwitch:
		return true
	}
	return false
}

// cellNode turns a parsed list into a single node.
func cellNode(items []Node) Node {
	items = finish(items)
	if len(items) == 1 {
		return items[0]
	}
	return Group{Items: items}
}

func isEmpty(n Node) bool {
	g, ok := n.(Group)
	return ok && len(g.Items) == 0
}

// rowsNode builds the node for top-level or display-environment rows. A
// single cell stays a plain node; rows with & become an aligned matrix,
// other multi-row content becomes fallback.
func rowsNode(rows [][]Node, fallback MatrixKind) Node {
	if len(rows) == 1 && len(rows[0]) == 1 {
		return rows[0][0]
	}
	kind := fallback
	for _, row := range rows {
		if len(row) > 1 {
			kind = MatrixAligned
			break
		}
	}
	m := Matrix{Rows: rows, Kind: kind}
	m.Align = defaultAlign(kind, m.Columns())
	return m
}

// =============================================================================
// Atoms
// =============================================================================

func (p *parser) enter(pos int) error {
	p.depth++
	if p.depth > MaxDepth {
		return &ParseError{Pos: pos, Msg: fmt.Sprintf("expression nested deeper than %d", MaxDepth)}
	}
	return nil
}

func (p *parser) leave() {
	p.depth--
}

// parseScripted parses an atom with its trailing scripts and primes.
func (p *parser) parseScripted() (Node, error) {
	var base Node
	if c := p.src[p.pos]; c == '^' || c == '_' {
		base = Group{}
	} else {
		n, err := p.parseAtom()
		if err != nil || n == nil {
			return nil, err
		}
		base = n
	}

	var sup, sub Node
	limits := LimitsAuto
	primes := 0
loop:
	for {
		p.skipSpace()
		if p.eof() {
			break
		}
		start := p.pos
		c := p.src[p.pos]
		if c == '\\' {
			name, _ := p.peekCommand()
			switch name {
			case "limits":
				limits = LimitsAlways
			case "nolimits":
				limits = LimitsNever
			case "displaylimits":
				limits = LimitsAuto
			default:
				break loop
			}
			p.pos += 1 + len(name)
			continue
		}
		switch c {
		case '\'':
			if sup != nil {
				return nil, &ParseError{Pos: start, Msg: "double superscript"}
			}
			primes++
			p.pos++
		case '^':
			if sup != nil {
				return nil, &ParseError{Pos: start, Msg: "double superscript"}
			}
			p.pos++
			arg, err := p.parseScriptArg(start, "superscript")
			if err != nil {
				return nil, err
			}
			sup = arg
		case '_':
			if sub != nil {
				return nil, &ParseError{Pos: start, Msg: "double subscript"}
			}
			p.pos++
			arg, err := p.parseScriptArg(start, "subscript")
			if err != nil {
				return nil, err
			}
			sub = arg
		default:
			break loop
		}
	}
	if primes > 0 {
		sup = withPrimes(primes, sup)
	}
	if sup == nil && sub == nil {
		return base, nil
	}
	return Scripts{Base: base, Sup: sup, Sub: sub, Limits: limits}, nil
}

func withPrimes(n int, sup Node) Node {
	var prime Node
	switch n {
	case 1:
		prime = Symbol{Rune: 0x2032}
	case 2:
		prime = Symbol{Rune: 0x2033}
	case 3:
		prime = Symbol{Rune: 0x2034}
	default:
		items := make([]Node, n)
		for i := range items {
			items[i] = Symbol{Rune: 0x2032}
		}
		prime = Group{Items: items}
	}
	if sup == nil {
		return prime
	}
	return Group{Items: []Node{prime, sup}}
}

// parseArg parses a mandatory argument: a braced group, a control
// sequence, or a single character.
func (p *parser) parseArg(missing func(pos int) *ParseError) (Node, error) {
	p.skipSpace()
	if p.eof() {
		return nil, missing(p.pos)
	}
	switch p.src[p.pos] {
	case '{':
		return p.parseGroup()
	case '^', '_':
		return nil, missing(p.pos)
	}
	if p.atStop() {
		return nil, missing(p.pos)
	}
	n, err := p.parseAtom()
	if err != nil {
		return nil, err
	}
	if n == nil {
		return Group{}, nil
	}
	return n, nil
}

// parseScriptArg parses the argument of ^ or _. Scripts count towards the
// nesting depth of their base.
func (p *parser) parseScriptArg(start int, what string) (Node, error) {
	if err := p.enter(start); err != nil {
		return nil, err
	}
	defer p.leave()
	return p.parseArg(func(pos int) *ParseError {
		return &ParseError{Pos: pos, Expected: what, Msg: "missing " + what}
	})
}

func (p *parser) cmdArg(cmd string, n int) (Node, error) {
	return p.parseArg(func(pos int) *ParseError { return missingArg(pos, cmd, n) })
}

// parseGroup parses {...}. Font switches inside the group end with it.
func (p *parser) parseGroup() (Node, error) {
	start := p.pos
	p.pos++ // {
	saved, savedOpt := p.alpha, p.optDepth
	p.optDepth = 0
	items, err := p.parseList()
	p.alpha, p.optDepth = saved, savedOpt
	if err != nil {
		return nil, err
	}
	if p.eof() || p.src[p.pos] != '}' {
		if !p.eof() && p.src[p.pos] == '&' {
			return nil, &ParseError{Pos: p.pos, Msg: "misplaced &"}
		}
		if !p.eof() && p.src[p.pos] == '\\' {
			return nil, p.strayError()
		}
		return nil, &ParseError{Pos: start, Expected: "}", Msg: "unclosed {"}
	}
	p.pos++
	items = finish(items)
	if len(items) == 1 {
		if _, ok := items[0].(Style); !ok {
			return items[0], nil
		}
	}
	return Group{Items: items}, nil
}

// parseOptional parses a bracketed optional argument, or returns nil when
// there is none.
func (p *parser) parseOptional() (Node, error) {
	p.skipSpace()
	if p.eof() || p.src[p.pos] != '[' {
		return nil, nil
	}
	start := p.pos
	p.pos++
	p.optDepth++
	items, err := p.parseList()
	p.optDepth--
	if err != nil {
		return nil, err
	}
	if p.eof() || p.src[p.pos] != ']' {
		return nil, &ParseError{Pos: start, Expected: "]", Msg: "unclosed ["}
	}
	p.pos++
	return cellNode(items), nil
}

// parseAtom parses one atom without scripts. It returns nil for commands
// that produce nothing, such as \label.
func (p *parser) parseAtom() (Node, error) {
	start := p.pos
	if err := p.enter(start); err != nil {
		return nil, err
	}
	defer p.leave()

	r, size := utf8.DecodeRuneInString(p.src[p.pos:])
	switch {
	case r == '{':
		return p.parseGroup()
	case r == '\\':
		name, err := p.readCommand()
		if err != nil {
			return nil, err
		}
		return p.parseCommand(name, start)
	case r == '#' || r == '$':
		return nil, &ParseError{Pos: start, Msg: fmt.Sprintf("unexpected %q", r)}
	case r == '~':
		p.pos += size
		return Space{Width: 0.25}, nil
	}

	p.pos += size
	return p.charAtom(r), nil
}

// charAtom classifies a literal character.
func (p *parser) charAtom(r rune) Node {
	if r < utf8.RuneSelf {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			return Symbol{Rune: p.alpha.apply(r), Class: Ord}
		}
		if sub, ok := charRunes[r]; ok {
			return Symbol{Rune: sub, Class: charClasses[r]}
		}
		return Symbol{Rune: r, Class: charClasses[r]}
	}
	if def, ok := unicodeClasses[r]; ok {
		return p.symbolAtom(def)
	}
	return Symbol{Rune: p.alpha.apply(r), Class: Ord}
}

func (p *parser) symbolAtom(def symbolDef) Node {
	r := def.r
	if def.class == Ord {
		r = p.alpha.apply(r)
	}
	return Symbol{Rune: r, Class: def.class, Large: def.large, Limits: def.limits}
}
