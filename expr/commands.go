package expr

import (
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"
)

// parseCommand builds the node for a control sequence whose name has been
// consumed. start is the offset of the backslash.
func (p *parser) parseCommand(name string, start int) (Node, error) {
	if def, ok := symbols[name]; ok {
		return p.symbolAtom(def), nil
	}
	if limits, ok := functions[name]; ok {
		value := name
		if v, ok := functionNames[name]; ok {
			value = v
		}
		return Text{Value: value, Class: Op, Limits: limits}, nil
	}
	if w, ok := spaces[name]; ok {
		return Space{Width: w}, nil
	}
	if kind, ok := accents[name]; ok {
		base, err := p.cmdArg(name, 1)
		if err != nil {
			return nil, err
		}
		return Accent{Base: base, Kind: kind}, nil
	}
	if a, ok := fontCommands[name]; ok {
		saved := p.alpha
		p.alpha = a
		arg, err := p.cmdArg(name, 1)
		p.alpha = saved
		return arg, err
	}
	if textCommands[name] {
		raw, err := p.readBraced(name, 1)
		if err != nil {
			return nil, err
		}
		return Text{Value: textValue(raw), Class: Ord}, nil
	}
	if c, ok := classCommands[name]; ok {
		arg, err := p.cmdArg(name, 1)
		if err != nil {
			return nil, err
		}
		if g, ok := arg.(Group); ok {
			g.Class = c
			return g, nil
		}
		return Group{Items: []Node{arg}, Class: c}, nil
	}
	if big, ok := bigSizes[name]; ok {
		r, err := p.parseDelimiter(name)
		if err != nil {
			return nil, err
		}
		return SizedDelim{Rune: r, Size: big.size, Class: big.class}, nil
	}
	if a, ok := fontSwitches[name]; ok {
		p.alpha = a
		return nil, nil
	}
	if _, ok := mathStyles[name]; ok {
		return nil, nil
	}

	switch name {
	case "frac", "dfrac", "tfrac", "cfrac":
		return p.parseFraction(name)
	case "binom", "dbinom", "tbinom":
		f, err := p.parseFraction(name)
		if err != nil {
			return nil, err
		}
		frac := f.(Fraction)
		frac.NoRule, frac.Left, frac.Right = true, '(', ')'
		return frac, nil
	case "sqrt":
		index, err := p.parseOptional()
		if err != nil {
			return nil, err
		}
		radicand, err := p.cmdArg(name, 1)
		if err != nil {
			return nil, err
		}
		return Radical{Radicand: radicand, Index: index}, nil
	case "left":
		return p.parseLeftRight(start)
	case "operatorname":
		limits := p.consumeStar()
		raw, err := p.readBraced(name, 1)
		if err != nil {
			return nil, err
		}
		return Text{Value: textValue(raw), Class: Op, Limits: limits}, nil
	case "hspace", "hskip", "kern", "mkern", "mskip":
		return p.parseSpaceCommand(name)
	case "phantom", "hphantom", "vphantom":
		body, err := p.cmdArg(name, 1)
		if err != nil {
			return nil, err
		}
		return Phantom{Body: body, Horizontal: name == "hphantom", Vertical: name == "vphantom"}, nil
	case "mathstrut", "strut":
		return Phantom{Body: Symbol{Rune: '(', Class: Open}, Vertical: true}, nil
	case "overset", "underset", "stackrel":
		return p.parseStack(name)
	case "boxed", "displaylines":
		return p.cmdArg(name, 1)
	case "not":
		return p.parseNot()
	case "bmod":
		return Text{Value: "mod", Class: Bin}, nil
	case "pmod", "mod":
		return p.parseMod(name)
	case "ldotp":
		return Symbol{Rune: '.', Class: Punct}, nil
	case "cdotp":
		return Symbol{Rune: 0x22C5, Class: Punct}, nil
	case "begin":
		return p.parseEnvironment(start)
	case "label", "tag", "eqref", "ref", "color", "cline":
		p.consumeStar()
		if _, err := p.readBraced(name, 1); err != nil {
			return nil, err
		}
		return nil, nil
	case "textcolor", "colorbox":
		if _, err := p.readBraced(name, 1); err != nil {
			return nil, err
		}
		return p.cmdArg(name, 2)
	case "nonumber", "notag", "hline", "limits", "nolimits", "displaylimits",
		"allowbreak", "nobreak", "relax", "qedhere":
		return nil, nil
	case "right", "middle", "end", `\`, "cr":
		p.pos = start
		return nil, p.strayError()
	}
	return nil, &ParseError{Pos: start, Command: name, Msg: `unknown command \` + name}
}

func (p *parser) parseFraction(name string) (Node, error) {
	num, err := p.cmdArg(name, 1)
	if err != nil {
		return nil, err
	}
	den, err := p.cmdArg(name, 2)
	if err != nil {
		return nil, err
	}
	f := Fraction{Num: num, Den: den}
	switch name {
	case "dfrac", "cfrac", "dbinom":
		f.Style = FracDisplay
	case "tfrac", "tbinom":
		f.Style = FracText
	}
	return f, nil
}

// parseLeftRight parses the rest of a \left ... \right pair, including any
// \middle delimiters.
func (p *parser) parseLeftRight(start int) (Node, error) {
	left, err := p.parseDelimiter("left")
	if err != nil {
		return nil, err
	}
	var body []Node
	for {
		items, err := p.parseList()
		if err != nil {
			return nil, err
		}
		body = append(body, items...)

		switch name, _ := p.peekCommand(); name {
		case "middle":
			p.pos += 1 + len(name)
			r, err := p.parseDelimiter(name)
			if err != nil {
				return nil, err
			}
			body = append(body, SizedDelim{Rune: r, Class: Inner})
		case "right":
			p.pos += 1 + len(name)
			right, err := p.parseDelimiter(name)
			if err != nil {
				return nil, err
			}
			return Delimited{Left: left, Right: right, Body: cellNode(body)}, nil
		default:
			return nil, &ParseError{Pos: start, Expected: `\right`, Command: "left", Msg: `\left without matching \right`}
		}
	}
}

// parseDelimiter reads the delimiter token after \left, \right, \middle or
// a \big command. The null delimiter "." is returned as 0.
func (p *parser) parseDelimiter(cmd string) (rune, error) {
	p.skipSpace()
	start := p.pos
	if p.eof() {
		return 0, &ParseError{Pos: start, Expected: "delimiter", Command: cmd, Msg: `missing delimiter after \` + cmd}
	}
	var key string
	if p.src[p.pos] == '\\' {
		name, _ := p.peekCommand()
		key = `\` + name
	} else {
		_, size := utf8.DecodeRuneInString(p.src[p.pos:])
		key = p.src[p.pos : p.pos+size]
	}
	if key == "." {
		p.pos++
		return 0, nil
	}
	r, ok := delimiters[key]
	if !ok {
		return 0, &ParseError{Pos: start, Expected: "delimiter", Command: cmd, Msg: `invalid delimiter after \` + cmd}
	}
	p.pos += len(key)
	return r, nil
}

func (p *parser) parseStack(name string) (Node, error) {
	annot, err := p.cmdArg(name, 1)
	if err != nil {
		return nil, err
	}
	base, err := p.cmdArg(name, 2)
	if err != nil {
		return nil, err
	}
	switch name {
	case "underset":
		return Scripts{Base: base, Sub: annot, Limits: LimitsAlways}, nil
	case "stackrel":
		return Group{Items: []Node{Scripts{Base: base, Sup: annot, Limits: LimitsAlways}}, Class: Rel}, nil
	}
	return Scripts{Base: base, Sup: annot, Limits: LimitsAlways}, nil
}

// parseNot negates the following atom, using a precomposed glyph when the
// font has one.
func (p *parser) parseNot() (Node, error) {
	p.skipSpace()
	if p.atStop() {
		return nil, &ParseError{Pos: p.pos, Expected: "relation", Command: "not", Msg: `missing argument 1 of \not`}
	}
	n, err := p.parseAtom()
	if err != nil {
		return nil, err
	}
	sym, ok := n.(Symbol)
	if !ok {
		return n, nil
	}
	if neg, ok := negations[sym.Rune]; ok {
		sym.Rune = neg
		return sym, nil
	}
	sym.Negated = true
	return sym, nil
}

func (p *parser) parseMod(name string) (Node, error) {
	arg, err := p.cmdArg(name, 1)
	if err != nil {
		return nil, err
	}
	mod := Text{Value: "mod", Class: Ord}
	if name == "mod" {
		return Group{Items: []Node{Space{Width: 1}, mod, Space{Width: 6.0 / 18}, arg}}, nil
	}
	return Group{Items: []Node{
		Space{Width: 1},
		Symbol{Rune: '(', Class: Open},
		mod,
		Space{Width: 6.0 / 18},
		arg,
		Symbol{Rune: ')', Class: Close},
	}}, nil
}

func (p *parser) parseSpaceCommand(name string) (Node, error) {
	start := p.pos
	var raw string
	if name == "hspace" {
		p.consumeStar()
		var err error
		if raw, err = p.readBraced(name, 1); err != nil {
			return nil, err
		}
	} else {
		p.skipSpace()
		end := p.pos
		for end < len(p.src) && (strings.IndexByte("+-.0123456789 ", p.src[end]) >= 0) {
			end++
		}
		for end < len(p.src) && isLetter(p.src[end]) && end-p.pos < 16 {
			end++
			if _, ok := parseLength(p.src[p.pos:end]); ok {
				break
			}
		}
		raw = p.src[p.pos:end]
		p.pos = end
	}
	w, ok := parseLength(raw)
	if !ok {
		return nil, &ParseError{Pos: start, Expected: "length", Command: name, Msg: `invalid length for \` + name}
	}
	return Space{Width: w}, nil
}

// Length units in em. The ex value is the x-height of Latin Modern; mu
// is handled by parseLength.
var lengthUnits = map[string]float64{
	"em": 1,
	"ex": 0.431,
	"pt": 0.1,
	"pc": 1.2,
	"bp": 0.1004,
	"mm": 0.2845,
	"cm": 2.845,
	"in": 7.227,
	"px": 0.1,
}

// parseLength parses a TeX length such as "2em" or "-3mu" into em.
func parseLength(s string) (float64, bool) {
	s = strings.TrimSpace(s)
	if len(s) < 3 {
		return 0, false
	}
	suffix := s[len(s)-2:]
	unit, ok := lengthUnits[suffix]
	if !ok && suffix != "mu" {
		return 0, false
	}
	v, err := strconv.ParseFloat(strings.ReplaceAll(s[:len(s)-2], " ", ""), 64)
	if err != nil {
		return 0, false
	}
	if suffix == "mu" {
		return v / 18, true
	}
	return v * unit, true
}

// textValue converts the raw content of \text{...} to the string drawn.
// Escapes are resolved, braces dropped and whitespace runs collapsed.
func textValue(raw string) string {
	var b strings.Builder
	space := false
	writeSpace := func() {
		if !space {
			b.WriteByte(' ')
			space = true
		}
	}
	for i := 0; i < len(raw); {
		r, size := utf8.DecodeRuneInString(raw[i:])
		i += size
		switch {
		case r == '\\' && i < len(raw):
			next := raw[i]
			switch {
			case strings.IndexByte(`{}$%&#_`, next) >= 0:
				b.WriteByte(next)
				space = false
				i++
			case isLetter(next):
				j := i
				for j < len(raw) && isLetter(raw[j]) {
					j++
				}
				if w, ok := spaces[raw[i:j]]; ok && w > 0 {
					writeSpace()
				}
				i = j
			default:
				writeSpace()
				i++
			}
		case r == '{' || r == '}' || r == '$':
		case r == '~' || unicode.IsSpace(r):
			writeSpace()
		default:
			b.WriteRune(r)
			space = false
		}
	}
	return b.String()
}
