package extract

import (
	"bytes"
	"sort"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"
)

// codeRange is a half-open byte range the scanner must not look into.
type codeRange struct {
	start, end int
}

// markdownCodeRanges returns the sorted, merged byte ranges of fenced and
// indented code blocks, code spans with their backticks, and HTML.
func markdownCodeRanges(src []byte) []codeRange {
	doc := goldmark.New().Parser().Parse(text.NewReader(src))

	var ranges []codeRange
	add := func(r codeRange, ok bool) {
		if ok && r.end > r.start {
			ranges = append(ranges, r)
		}
	}
	_ = ast.Walk(doc, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		switch n := n.(type) {
		case *ast.FencedCodeBlock:
			add(fencedRange(src, n))
			return ast.WalkSkipChildren, nil
		case *ast.CodeBlock:
			add(linesRange(src, n.Lines()))
			return ast.WalkSkipChildren, nil
		case *ast.HTMLBlock:
			r, ok := linesRange(src, n.Lines())
			if n.HasClosure() {
				cl := n.ClosureLine
				if !ok {
					r, ok = codeRange{start: lineStart(src, cl.Start)}, true
				}
				r.end = max(r.end, cl.Stop)
			}
			add(r, ok)
			return ast.WalkSkipChildren, nil
		case *ast.CodeSpan:
			add(codeSpanRange(src, n))
			return ast.WalkSkipChildren, nil
		case *ast.RawHTML:
			if segs := n.Segments; segs.Len() > 0 {
				add(codeRange{segs.At(0).Start, segs.At(segs.Len() - 1).Stop}, true)
			}
		}
		return ast.WalkContinue, nil
	})
	return mergeRanges(ranges)
}

// fencedRange covers a fenced code block from its opening fence line to
// its closing fence line. goldmark only records the content lines and the
// info string, so the fences are recovered from the surrounding lines.
func fencedRange(src []byte, n *ast.FencedCodeBlock) (codeRange, bool) {
	lines := n.Lines()
	var start, last int
	switch {
	case n.Info != nil:
		start = lineStart(src, n.Info.Segment.Start)
		last = start
	case lines.Len() > 0:
		first := lineStart(src, lines.At(0).Start)
		if first == 0 {
			return codeRange{}, false
		}
		start = lineStart(src, first-1)
	default:
		return codeRange{}, false
	}
	if lines.Len() > 0 {
		last = lines.At(lines.Len() - 1).Start
	}

	end := lineEnd(src, last)
	if end < len(src) {
		next := end + 1
		fence := bytes.TrimLeft(src[next:lineEnd(src, next)], " ")
		if bytes.HasPrefix(fence, []byte("```")) || bytes.HasPrefix(fence, []byte("~~~")) {
			end = lineEnd(src, next)
		}
	}
	return codeRange{start, end}, true
}

// linesRange covers whole lines of a block, indentation included.
func linesRange(src []byte, lines *text.Segments) (codeRange, bool) {
	if lines.Len() == 0 {
		return codeRange{}, false
	}
	first, last := lines.At(0), lines.At(lines.Len()-1)
	return codeRange{lineStart(src, first.Start), max(last.Stop, lineEnd(src, last.Start))}, true
}

// codeSpanRange covers a code span including its backtick fences. The
// text children exclude the fences and possibly one padding space.
func codeSpanRange(src []byte, n *ast.CodeSpan) (codeRange, bool) {
	first, ok1 := n.FirstChild().(*ast.Text)
	last, ok2 := n.LastChild().(*ast.Text)
	if !ok1 || !ok2 {
		return codeRange{}, false
	}
	start, end := first.Segment.Start, last.Segment.Stop

	if start > 1 && isSpace(src[start-1]) && src[start-2] == '`' {
		start--
	}
	for start > 0 && src[start-1] == '`' {
		start--
	}
	if end < len(src)-1 && isSpace(src[end]) && src[end+1] == '`' {
		end++
	}
	for end < len(src) && src[end] == '`' {
		end++
	}
	return codeRange{start, end}, true
}

func isSpace(c byte) bool {
	return c == ' ' || c == '\n'
}

func lineStart(src []byte, i int) int {
	return bytes.LastIndexByte(src[:i], '\n') + 1
}

func lineEnd(src []byte, i int) int {
	if j := bytes.IndexByte(src[i:], '\n'); j >= 0 {
		return i + j
	}
	return len(src)
}

func mergeRanges(ranges []codeRange) []codeRange {
	if len(ranges) == 0 {
		return nil
	}
	sort.Slice(ranges, func(i, j int) bool { return ranges[i].start < ranges[j].start })
	merged := ranges[:1]
	for _, r := range ranges[1:] {
		top := &merged[len(merged)-1]
		if r.start <= top.end {
			top.end = max(top.end, r.end)
			continue
		}
		merged = append(merged, r)
	}
	return merged
}
