package extract

import (
	"fmt"
	"path/filepath"
	"strings"
)

// Format is the markup language of a document.
type Format uint8

const (
	// LaTeX documents: TeX comments are skipped.
	LaTeX Format = iota
	// Markdown documents: code blocks, code spans and HTML blocks are skipped.
	Markdown
)

// String returns the format name.
func (f Format) String() string {
	switch f {
	case LaTeX:
		return "latex"
	case Markdown:
		return "markdown"
	default:
		return fmt.Sprintf("Format(%d)", f)
	}
}

// FormatForPath picks the format from a file extension. .md, .markdown and
// .mdx are Markdown; everything else is LaTeX.
func FormatForPath(path string) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".md", ".markdown", ".mdx":
		return Markdown
	default:
		return LaTeX
	}
}

// ParseFormat parses a format name as accepted on the command line.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "latex", "tex":
		return LaTeX, nil
	case "markdown", "md":
		return Markdown, nil
	}
	return LaTeX, fmt.Errorf("extract: unknown format %q", s)
}

// Mode tells whether an equation is typeset inline or displayed.
type Mode uint8

const (
	Inline Mode = iota
	Display
)

// String returns "inline" or "display".
func (m Mode) String() string {
	if m == Display {
		return "display"
	}
	return "inline"
}

// Span is one equation found in a document.
type Span struct {
	// Text is the math source. For delimited math it is the trimmed text
	// between the delimiters; for environments it is the whole
	// \begin{..}...\end{..} text.
	Text string

	// Start and End are the byte offsets of the whole match, delimiters
	// included.
	Start, End int

	// Line is the 1-based line of Start.
	Line int

	Mode Mode

	// Env is the environment name, or empty for delimited math.
	Env string
}

// Warning reports an opening delimiter without a matching close. No span
// is produced for it.
type Warning struct {
	Offset    int
	Line      int
	Delimiter string
	Msg       string
}

func (w Warning) String() string {
	return fmt.Sprintf("line %d: %s", w.Line, w.Msg)
}
