package extract

import (
	"reflect"
	"testing"
)

func texts(spans []Span) []string {
	out := make([]string, len(spans))
	for i, s := range spans {
		out[i] = s.Text
	}
	return out
}

// =============================================================================
// LaTeX
// =============================================================================

func TestExtractInlineAndDisplay(t *testing.T) {
	spans, warnings := Extract("text $a+b$ more $$c=d$$", LaTeX)
	want := []Span{
		{Text: "a+b", Start: 5, End: 10, Line: 1, Mode: Inline},
		{Text: "c=d", Start: 16, End: 23, Line: 1, Mode: Display},
	}
	if !reflect.DeepEqual(spans, want) {
		t.Errorf("Extract() = %+v, want %+v", spans, want)
	}
	if len(warnings) != 0 {
		t.Errorf("warnings = %v, want none", warnings)
	}
}

func TestExtractDelimiters(t *testing.T) {
	tests := []struct {
		name  string
		doc   string
		texts []string
		modes []Mode
	}{
		{"brackets", `see \[ x^2 \] and \( y \)`, []string{"x^2", "y"}, []Mode{Display, Inline}},
		{"escaped dollar", `price \$5 and $x$`, []string{"x"}, []Mode{Inline}},
		{"escape inside math", `$a \$ b$`, []string{`a \$ b`}, []Mode{Inline}},
		{"empty display", "$$  $$ then $z$", []string{"z"}, []Mode{Inline}},
		{"multiline display", "$$\na\n\nb\n$$", []string{"a\n\nb"}, []Mode{Display}},
		{"comment", "% $x$ hidden\n$y$", []string{"y"}, []Mode{Inline}},
		{"escaped percent", `50\% $y$`, []string{"y"}, []Mode{Inline}},
		{"verbatim", `\begin{verbatim}$x$\end{verbatim} $y$`, []string{"y"}, []Mode{Inline}},
		{"inline math environment", `\begin{math}x\end{math}`, []string{`\begin{math}x\end{math}`}, []Mode{Inline}},
		{"dollar closes display first", "$$a$$ $b$", []string{"a", "b"}, []Mode{Display, Inline}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			spans, _ := Extract(tt.doc, LaTeX)
			if got := texts(spans); !reflect.DeepEqual(got, tt.texts) {
				t.Fatalf("texts = %q, want %q", got, tt.texts)
			}
			for i, s := range spans {
				if s.Mode != tt.modes[i] {
					t.Errorf("span %d Mode = %v, want %v", i, s.Mode, tt.modes[i])
				}
			}
		})
	}
}

func TestExtractEnvironments(t *testing.T) {
	doc := "Intro\n\\begin{align}\na &= b \\\\\nc &= d\n\\end{align}\nand \\begin{pmatrix}1\\end{pmatrix}"
	spans, _ := Extract(doc, LaTeX)
	if len(spans) != 2 {
		t.Fatalf("len(spans) = %d, want 2: %+v", len(spans), spans)
	}
	align := spans[0]
	if align.Env != "align" || align.Mode != Display || align.Line != 2 {
		t.Errorf("align span = %+v", align)
	}
	if want := "\\begin{align}\na &= b \\\\\nc &= d\n\\end{align}"; align.Text != want {
		t.Errorf("align Text = %q, want %q", align.Text, want)
	}
	if doc[align.Start:align.End] != align.Text {
		t.Error("align Start/End do not cover the environment")
	}
	if spans[1].Env != "pmatrix" {
		t.Errorf("second span Env = %q, want pmatrix", spans[1].Env)
	}
}

func TestExtractNestedEnvironmentsDoNotOverlap(t *testing.T) {
	doc := `$$\begin{aligned} x &= 1 \end{aligned}$$ \begin{equation}\begin{equation}y\end{equation}\end{equation}`
	spans, _ := Extract(doc, LaTeX)
	want := []string{
		`\begin{aligned} x &= 1 \end{aligned}`,
		`\begin{equation}\begin{equation}y\end{equation}\end{equation}`,
	}
	if got := texts(spans); !reflect.DeepEqual(got, want) {
		t.Errorf("texts = %q, want %q", got, want)
	}
	for i := 1; i < len(spans); i++ {
		if spans[i].Start < spans[i-1].End {
			t.Errorf("span %d overlaps span %d", i, i-1)
		}
	}
}

func TestExtractWarnings(t *testing.T) {
	tests := []struct {
		name  string
		doc   string
		delim string
		line  int
		texts []string
	}{
		{"inline crosses paragraph", "cost $5 and\n\nmore", "$", 1, nil},
		{"unterminated display", "a\n$$x", "$$", 2, nil},
		{"unterminated bracket", `\[ x`, `\[`, 1, nil},
		{"unterminated environment", "\\begin{equation} x\n$y$", `\begin{equation}`, 1, []string{"y"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			spans, warnings := Extract(tt.doc, LaTeX)
			if got := texts(spans); len(got) != len(tt.texts) || (len(got) > 0 && !reflect.DeepEqual(got, tt.texts)) {
				t.Errorf("texts = %q, want %q", got, tt.texts)
			}
			if len(warnings) != 1 {
				t.Fatalf("len(warnings) = %d, want 1: %v", len(warnings), warnings)
			}
			w := warnings[0]
			if w.Delimiter != tt.delim || w.Line != tt.line {
				t.Errorf("warning = %+v, want delimiter %q on line %d", w, tt.delim, tt.line)
			}
			if w.String() == "" {
				t.Error("Warning.String() is empty")
			}
		})
	}
}

// =============================================================================
// Markdown
// =============================================================================

func TestExtractMarkdownSkipsCode(t *testing.T) {
	tests := []struct {
		name  string
		doc   string
		texts []string
	}{
		{
			"fenced block",
			"Intro $x$\n\n```\n$not math$\n```\n\nAfter $$y$$\n",
			[]string{"x", "y"},
		},
		{
			"fenced block with info",
			"~~~latex\n$$a$$\n~~~\n$b$",
			[]string{"b"},
		},
		{
			"code span",
			"Use `$x$` or $y$",
			[]string{"y"},
		},
		{
			"double backtick span",
			"Use `` $x$ `` or $y$",
			[]string{"y"},
		},
		{
			"indented block",
			"Para\n\n    $x$\n\nText $y$",
			[]string{"y"},
		},
		{
			"html block",
			"<pre>\n$x$\n</pre>\n\n$y$",
			[]string{"y"},
		},
		{
			"percent is text",
			"50% of $x$",
			[]string{"x"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			spans, _ := Extract(tt.doc, Markdown)
			if got := texts(spans); !reflect.DeepEqual(got, tt.texts) {
				t.Errorf("texts = %q, want %q", got, tt.texts)
			}
		})
	}
}

func TestExtractMarkdownClosingNotSearchedInCode(t *testing.T) {
	spans, warnings := Extract("$a `$` b$", Markdown)
	if got := texts(spans); !reflect.DeepEqual(got, []string{"a `$` b"}) {
		t.Errorf("texts = %q, want the dollar in code skipped", got)
	}
	if len(warnings) != 0 {
		t.Errorf("warnings = %v, want none", warnings)
	}
}

func TestCodeRanges(t *testing.T) {
	src := []byte("a `code` b\n\n```go\nx\n```\n")
	ranges := markdownCodeRanges(src)
	want := []codeRange{{2, 8}, {12, 23}}
	if !reflect.DeepEqual(ranges, want) {
		t.Errorf("markdownCodeRanges() = %v, want %v", ranges, want)
	}
}

// =============================================================================
// Iteration and formats
// =============================================================================

func TestAllStopsEarly(t *testing.T) {
	var got []string
	for s := range All("$a$ $b$ $c$", LaTeX) {
		got = append(got, s.Text)
		if len(got) == 2 {
			break
		}
	}
	if !reflect.DeepEqual(got, []string{"a", "b"}) {
		t.Errorf("All() = %q, want [a b]", got)
	}
}

func TestScannerIsDeterministic(t *testing.T) {
	doc := "x $a$ \\[b\\] $$c$$ \\begin{gather}d\\end{gather}"
	first, _ := Extract(doc, LaTeX)
	for range 3 {
		again, _ := Extract(doc, LaTeX)
		if !reflect.DeepEqual(first, again) {
			t.Fatal("Extract() is not deterministic")
		}
	}
}

func TestFormatForPath(t *testing.T) {
	tests := []struct {
		path string
		want Format
	}{
		{"notes.md", Markdown},
		{"README.MARKDOWN", Markdown},
		{"page.mdx", Markdown},
		{"paper.tex", LaTeX},
		{"paper.txt", LaTeX},
		{"noext", LaTeX},
	}
	for _, tt := range tests {
		if got := FormatForPath(tt.path); got != tt.want {
			t.Errorf("FormatForPath(%q) = %v, want %v", tt.path, got, tt.want)
		}
	}
}

func TestParseFormat(t *testing.T) {
	for in, want := range map[string]Format{"latex": LaTeX, "TeX": LaTeX, "md": Markdown, "markdown": Markdown} {
		got, err := ParseFormat(in)
		if err != nil || got != want {
			t.Errorf("ParseFormat(%q) = %v, %v; want %v", in, got, err, want)
		}
	}
	if _, err := ParseFormat("rst"); err == nil {
		t.Error("ParseFormat(rst) succeeded, want error")
	}
}
