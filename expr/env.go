package expr

import (
	"strings"
)

// displayEnvs are unwrapped; the value is the matrix kind used when the
// body has several rows but no & columns.
var displayEnvs = map[string]MatrixKind{
	"equation":    MatrixGathered,
	"displaymath": MatrixGathered,
	"math":        MatrixGathered,
	"align":       MatrixAligned,
	"flalign":     MatrixAligned,
	"alignat":     MatrixAligned,
	"eqnarray":    MatrixAligned,
	"gather":      MatrixGathered,
	"multline":    MatrixGathered,
}

var matrixEnvs = map[string]MatrixKind{
	"matrix":      MatrixPlain,
	"pmatrix":     MatrixParen,
	"bmatrix":     MatrixBracket,
	"Bmatrix":     MatrixBrace,
	"vmatrix":     MatrixPipe,
	"Vmatrix":     MatrixDoublePipe,
	"smallmatrix": MatrixSmall,
	"cases":       MatrixCases,
	"dcases":      MatrixCases,
	"rcases":      MatrixRCases,
	"aligned":     MatrixAligned,
	"alignedat":   MatrixAligned,
	"split":       MatrixAligned,
	"gathered":    MatrixGathered,
	"array":       MatrixArray,
	"subarray":    MatrixSmall,
}

// parseEnvironment parses \begin{name} ... \end{name}; \begin has been
// consumed.
func (p *parser) parseEnvironment(start int) (Node, error) {
	name, err := p.readBraced("begin", 1)
	if err != nil {
		return nil, err
	}
	name = strings.TrimSpace(name)
	base := strings.TrimSuffix(name, "*")

	var align []Alignment
	switch base {
	case "alignat", "alignedat":
		if _, err := p.readBraced(name, 1); err != nil {
			return nil, err
		}
	case "array", "subarray":
		p.skipOptionalBracket()
		spec, err := p.readBraced(name, 1)
		if err != nil {
			return nil, err
		}
		align = columnSpec(spec)
	}

	display, isDisplay := displayEnvs[base]
	kind, isMatrix := matrixEnvs[base]
	if !isDisplay && !isMatrix {
		return nil, &ParseError{Pos: start, Command: "begin", Msg: "unknown environment " + name}
	}

	rows, err := p.parseRows()
	if err != nil {
		return nil, err
	}
	if err := p.parseEnd(name, start); err != nil {
		return nil, err
	}

	if isDisplay {
		if base == "eqnarray" {
			m := Matrix{Rows: rows, Kind: MatrixAligned}
			m.Align = repeatAlign([]Alignment{AlignRight, AlignCenter, AlignLeft}, m.Columns())
			return m, nil
		}
		return rowsNode(rows, display), nil
	}

	m := Matrix{Rows: rows, Kind: kind}
	if align == nil {
		align = defaultAlign(kind, m.Columns())
	} else {
		align = repeatAlign(align, m.Columns())
	}
	m.Align = align
	return m, nil
}

func (p *parser) parseEnd(name string, start int) error {
	p.skipSpace()
	if cmd, _ := p.peekCommand(); cmd != "end" {
		if p.eof() {
			return &ParseError{Pos: start, Expected: `\end{` + name + `}`, Command: "begin", Msg: `\begin{` + name + `} without matching \end`}
		}
		return p.strayError()
	}
	p.pos += len(`\end`)
	endPos := p.pos
	got, err := p.readBraced("end", 1)
	if err != nil {
		return err
	}
	if strings.TrimSpace(got) != name {
		return &ParseError{
			Pos:      endPos,
			Expected: `\end{` + name + `}`,
			Command:  "end",
			Msg:      `\begin{` + name + `} ended by \end{` + got + `}`,
		}
	}
	return nil
}

func (p *parser) skipOptionalBracket() {
	p.skipSpace()
	if p.eof() || p.src[p.pos] != '[' {
		return
	}
	if end := strings.IndexByte(p.src[p.pos:], ']'); end >= 0 {
		p.pos += end + 1
	}
}

// columnSpec reads the column alignments of an array preamble. Rules and
// @{} or p{} arguments are accepted and ignored, except that paragraph
// columns align left.
func columnSpec(spec string) []Alignment {
	var align []Alignment
	for i := 0; i < len(spec); i++ {
		switch spec[i] {
		case 'l':
			align = append(align, AlignLeft)
		case 'c':
			align = append(align, AlignCenter)
		case 'r':
			align = append(align, AlignRight)
		case 'p', 'm', 'b':
			align = append(align, AlignLeft)
			fallthrough
		case '@', '!', '>', '<':
			if j := skipBraceArg(spec, i+1); j > i {
				i = j - 1
			}
		}
	}
	return align
}

// skipBraceArg returns the index after a {...} argument at or after i,
// or i when there is none.
func skipBraceArg(s string, i int) int {
	for i < len(s) && s[i] == ' ' {
		i++
	}
	if i >= len(s) || s[i] != '{' {
		return i
	}
	depth := 0
	for j := i; j < len(s); j++ {
		switch s[j] {
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return j + 1
			}
		}
	}
	return len(s)
}

func defaultAlign(kind MatrixKind, cols int) []Alignment {
	switch kind {
	case MatrixAligned:
		return repeatAlign([]Alignment{AlignRight, AlignLeft}, cols)
	case MatrixCases, MatrixRCases:
		return repeatAlign([]Alignment{AlignLeft}, cols)
	}
	return repeatAlign([]Alignment{AlignCenter}, cols)
}

// repeatAlign extends pattern cyclically to cols entries. An empty
// pattern centers every column.
func repeatAlign(pattern []Alignment, cols int) []Alignment {
	if len(pattern) == 0 {
		pattern = []Alignment{AlignCenter}
	}
	align := make([]Alignment, cols)
	for i := range align {
		align[i] = pattern[i%len(pattern)]
	}
	return align
}
