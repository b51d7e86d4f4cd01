package layout

import "github.com/gogpu/math2img/expr"

const (
	strutHeight = 0.7
	strutDepth  = 0.3
	rowGap      = 0.3
	columnGap   = 1.0
	casesGap    = 0.5
)

// cellStyle returns the style matrix cells are laid out in.
func cellStyle(kind expr.MatrixKind, st style) style {
	switch kind {
	case expr.MatrixSmall:
		return style{math: expr.StyleScript}
	case expr.MatrixAligned, expr.MatrixGathered:
		if st.display() {
			return style{math: expr.StyleDisplay}
		}
	}
	return style{math: expr.StyleText}
}

// gapAfter returns the gap in em between column j and column j+1.
func gapAfter(kind expr.MatrixKind, j int) float64 {
	switch kind {
	case expr.MatrixAligned:
		if j%2 == 0 {
			return 0
		}
	case expr.MatrixCases, expr.MatrixRCases:
		return casesGap
	}
	return columnGap
}

// cell lays out one matrix cell. The right half of an aligned pair gets an
// empty leading atom, so a relation at its start keeps its spacing.
func (e *engine) cell(n expr.Node, kind expr.MatrixKind, col int, st style) (*Box, error) {
	if kind != expr.MatrixAligned || col%2 == 0 || n == nil {
		return e.node(n, st)
	}
	items := []expr.Node{expr.Group{}}
	if g, ok := n.(expr.Group); ok && g.Class == expr.Ord {
		items = append(items, g.Items...)
	} else {
		items = append(items, n)
	}
	return e.list(items, st)
}

// matrix lays out a grid. Columns are as wide as their widest cell and
// rows as tall as their tallest cell, with a strut as the floor. Every
// cell is wrapped in a RoleCell box of exactly the column width and the
// row height and depth. The grid is centered on the math axis.
func (e *engine) matrix(m expr.Matrix, st style) (*Box, error) {
	cs := cellStyle(m.Kind, st)
	em := e.em(cs)
	cols := m.Columns()

	cells := make([][]*Box, len(m.Rows))
	widths := make([]float64, cols)
	heights := make([]float64, len(m.Rows))
	depths := make([]float64, len(m.Rows))
	for i, row := range m.Rows {
		cells[i] = make([]*Box, len(row))
		heights[i], depths[i] = strutHeight*em, strutDepth*em
		for j, n := range row {
			b, err := e.cell(n, m.Kind, j, cs)
			if err != nil {
				return nil, err
			}
			cells[i][j] = b
			widths[j] = max(widths[j], b.Width)
			heights[i] = max(heights[i], b.Height)
			depths[i] = max(depths[i], b.Depth)
		}
	}

	xs := make([]float64, cols)
	width := 0.0
	for j := range cols {
		xs[j] = width
		width += widths[j]
		if j < cols-1 {
			width += gapAfter(m.Kind, j) * em
		}
	}
	total := 0.0
	for i := range m.Rows {
		total += heights[i] + depths[i]
		if i > 0 {
			total += rowGap * em
		}
	}

	grid := newHList(RoleNone)
	grid.Width = width
	y := -(e.c.AxisHeight*e.em(st) + total/2)
	for i := range m.Rows {
		y += heights[i]
		row := newHList(RoleRow)
		row.Y, row.Width = y, width
		row.Height, row.Depth = heights[i], depths[i]
		for j := range cols {
			c := newHList(RoleCell)
			c.X, c.Width = xs[j], widths[j]
			c.Height, c.Depth = heights[i], depths[i]
			if j < len(cells[i]) {
				b := cells[i][j]
				b.X = align(alignment(m.Align, j), widths[j], b.Width)
				c.Children = append(c.Children, b)
			}
			row.Children = append(row.Children, c)
		}
		grid.place(row)
		y += depths[i] + rowGap*em
	}

	l, r := m.Kind.Delimiters()
	if l == 0 && r == 0 {
		return grid, nil
	}
	return e.fenced(l, r, grid, st)
}

func alignment(aligns []expr.Alignment, j int) expr.Alignment {
	if j < len(aligns) {
		return aligns[j]
	}
	return expr.AlignCenter
}

func align(a expr.Alignment, width, content float64) float64 {
	switch a {
	case expr.AlignLeft:
		return 0
	case expr.AlignRight:
		return width - content
	default:
		return (width - content) / 2
	}
}
