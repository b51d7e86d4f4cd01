package extract

import (
	"iter"
	"sort"
	"strings"
)

// displayEnvs are the environments that form an equation on their own. The
// value is the mode of the resulting span.
var displayEnvs = map[string]Mode{
	"equation": Display, "equation*": Display,
	"align": Display, "align*": Display,
	"gather": Display, "gather*": Display,
	"multline": Display, "multline*": Display,
	"flalign": Display, "flalign*": Display,
	"alignat": Display, "alignat*": Display,
	"eqnarray": Display, "eqnarray*": Display,
	"displaymath": Display,
	"math":        Inline,

	// Matrix environments outside any other math.
	"matrix": Display, "pmatrix": Display, "bmatrix": Display,
	"Bmatrix": Display, "vmatrix": Display, "Vmatrix": Display,
	"smallmatrix": Display, "cases": Display,
}

// verbatimEnvs hide their content from the scanner.
var verbatimEnvs = map[string]bool{
	"verbatim": true, "verbatim*": true, "Verbatim": true,
	"lstlisting": true, "minted": true, "comment": true,
}

// Scanner finds equation spans one at a time, in document order.
//
// A Scanner is not safe for concurrent use.
type Scanner struct {
	doc    string
	format Format
	pos    int

	skips      []codeRange
	lineStarts []int

	span     Span
	warnings []Warning
}

// NewScanner returns a scanner over doc. In Markdown mode the code ranges
// are collected up front.
func NewScanner(doc string, format Format) *Scanner {
	s := &Scanner{doc: doc, format: format}
	if format == Markdown {
		s.skips = markdownCodeRanges([]byte(doc))
	}
	return s
}

// Span returns the span found by the last successful call to Next.
func (s *Scanner) Span() Span {
	return s.span
}

// Warnings returns the warnings collected so far.
func (s *Scanner) Warnings() []Warning {
	return s.warnings
}

// Next advances to the next span. It returns false at the end of the
// document.
func (s *Scanner) Next() bool {
	for s.pos < len(s.doc) {
		if end, ok := s.skipAt(s.pos); ok {
			s.pos = end
			continue
		}
		switch s.doc[s.pos] {
		case '%':
			if s.format == LaTeX {
				s.pos = s.lineEnd(s.pos)
				continue
			}
		case '\\':
			if s.scanBackslash() {
				return true
			}
			continue
		case '$':
			if s.scanDollar() {
				return true
			}
			continue
		}
		s.pos++
	}
	return false
}

// scanBackslash handles \[, \(, \begin and escapes at s.pos.
func (s *Scanner) scanBackslash() bool {
	start := s.pos
	rest := s.doc[start:]
	switch {
	case strings.HasPrefix(rest, `\[`):
		return s.delimited(start, `\[`, `\]`, Display)
	case strings.HasPrefix(rest, `\(`):
		return s.delimited(start, `\(`, `\)`, Inline)
	case strings.HasPrefix(rest, `\begin{`):
		name, ok := envName(rest[len(`\begin`):])
		if !ok {
			break
		}
		open := `\begin{` + name + `}`
		if verbatimEnvs[name] {
			if end, ok := s.envEnd(start+len(open), name); ok {
				s.pos = end
			} else {
				s.pos = len(s.doc)
			}
			return false
		}
		mode, ok := displayEnvs[name]
		if !ok {
			break
		}
		end, ok := s.envEnd(start+len(open), name)
		if !ok {
			s.warn(start, open, "unterminated "+open)
			s.pos = start + len(open)
			return false
		}
		s.emit(Span{Text: s.doc[start:end], Start: start, End: end, Mode: mode, Env: name})
		return true
	}
	s.pos += 2 // escaped character or unrelated command
	return false
}

// scanDollar handles $$ and $ at s.pos.
func (s *Scanner) scanDollar() bool {
	start := s.pos
	if strings.HasPrefix(s.doc[start:], "$$") {
		return s.delimited(start, "$$", "$$", Display)
	}
	return s.delimited(start, "$", "$", Inline)
}

// delimited looks for the closing delimiter and emits the span between.
func (s *Scanner) delimited(start int, open, close string, mode Mode) bool {
	from := start + len(open)
	closeAt, ok := s.findClose(from, close, mode == Inline && open == "$")
	if !ok {
		s.warn(start, open, "unterminated "+open)
		s.pos = from
		return false
	}
	end := closeAt + len(close)
	text := strings.TrimSpace(s.doc[from:closeAt])
	if text == "" {
		s.pos = end
		return false
	}
	s.emit(Span{Text: text, Start: start, End: end, Mode: mode})
	return true
}

func (s *Scanner) emit(span Span) {
	span.Line = s.line(span.Start)
	s.span = span
	s.pos = span.End
}

func (s *Scanner) warn(offset int, delim, msg string) {
	s.warnings = append(s.warnings, Warning{
		Offset:    offset,
		Line:      s.line(offset),
		Delimiter: delim,
		Msg:       msg,
	})
}

// findClose returns the offset of the first unescaped occurrence of close
// at or after from. Escapes, comments and code ranges are stepped over.
// With stopAtBlank the search fails at a blank line.
func (s *Scanner) findClose(from int, close string, stopAtBlank bool) (int, bool) {
	for i := from; i < len(s.doc); {
		if end, ok := s.skipAt(i); ok {
			i = end
			continue
		}
		c := s.doc[i]
		switch {
		case strings.HasPrefix(s.doc[i:], close):
			return i, true
		case c == '\\':
			i += 2
			continue
		case c == '%' && s.format == LaTeX:
			i = s.lineEnd(i)
			continue
		case c == '\n' && stopAtBlank && s.blankLineAfter(i):
			return 0, false
		}
		i++
	}
	return 0, false
}

// envEnd returns the offset just past the \end{name} matching a \begin{name}
// whose body starts at from. Nested environments of the same name are
// counted.
func (s *Scanner) envEnd(from int, name string) (int, bool) {
	begin := `\begin{` + name + `}`
	end := `\end{` + name + `}`
	depth := 1
	for i := from; i < len(s.doc); i++ {
		switch {
		case strings.HasPrefix(s.doc[i:], end):
			depth--
			if depth == 0 {
				return i + len(end), true
			}
			i += len(end) - 1
		case strings.HasPrefix(s.doc[i:], begin):
			depth++
			i += len(begin) - 1
		case s.doc[i] == '\\':
			i++
		}
	}
	return 0, false
}

// envName reads "{name}" at the start of s.
func envName(s string) (string, bool) {
	if !strings.HasPrefix(s, "{") {
		return "", false
	}
	end := strings.IndexByte(s, '}')
	if end < 0 || end > 32 {
		return "", false
	}
	return s[1:end], true
}

// blankLineAfter reports whether the newline at i is followed by a line
// holding only whitespace.
func (s *Scanner) blankLineAfter(i int) bool {
	for j := i + 1; j < len(s.doc); j++ {
		switch s.doc[j] {
		case '\n':
			return true
		case ' ', '\t', '\r':
		default:
			return false
		}
	}
	return false
}

// lineEnd returns the offset of the newline ending the line at i, or the
// document length.
func (s *Scanner) lineEnd(i int) int {
	if j := strings.IndexByte(s.doc[i:], '\n'); j >= 0 {
		return i + j
	}
	return len(s.doc)
}

// line returns the 1-based line number of offset.
func (s *Scanner) line(offset int) int {
	if s.lineStarts == nil {
		s.lineStarts = []int{0}
		for i := 0; i < len(s.doc); i++ {
			if s.doc[i] == '\n' {
				s.lineStarts = append(s.lineStarts, i+1)
			}
		}
	}
	return sort.SearchInts(s.lineStarts, offset+1)
}

// skipAt reports whether i lies in a code range and returns its end.
func (s *Scanner) skipAt(i int) (int, bool) {
	if len(s.skips) == 0 {
		return 0, false
	}
	k := sort.Search(len(s.skips), func(k int) bool { return s.skips[k].end > i })
	if k < len(s.skips) && s.skips[k].start <= i {
		return s.skips[k].end, true
	}
	return 0, false
}

// All returns the spans of doc as a sequence. Warnings are dropped; use a
// Scanner to see them.
func All(doc string, format Format) iter.Seq[Span] {
	return func(yield func(Span) bool) {
		s := NewScanner(doc, format)
		for s.Next() {
			if !yield(s.Span()) {
				return
			}
		}
	}
}

// Extract returns all spans of doc and the warnings found along the way.
func Extract(doc string, format Format) ([]Span, []Warning) {
	s := NewScanner(doc, format)
	var spans []Span
	for s.Next() {
		spans = append(spans, s.Span())
	}
	return spans, s.Warnings()
}
