package layout

import (
	"testing"

	"github.com/gogpu/math2img/expr"
	"github.com/gogpu/math2img/mathfont"
)

// grid returns the rows of cell boxes under b.
func grid(b *Box) [][]*Box {
	var rows [][]*Box
	for _, row := range b.Find(RoleRow) {
		var cells []*Box
		for _, c := range row.Children {
			if c.Role == RoleCell {
				cells = append(cells, c)
			}
		}
		rows = append(rows, cells)
	}
	return rows
}

func TestMatrixGridInvariant(t *testing.T) {
	tests := []string{
		`\begin{pmatrix} a & b+c \\ \frac{x}{y} & d \end{pmatrix}`,
		`\begin{bmatrix} 1 & 22 & 333 \\ 4444 & 5 \\ 6 \end{bmatrix}`,
		`\begin{cases} x & x > 0 \\ -x & \text{otherwise} \end{cases}`,
		`\begin{aligned} a &= b + c \\ d + e &= f \end{aligned}`,
	}
	for _, src := range tests {
		t.Run(src, func(t *testing.T) {
			b := mustLayout(t, src, expr.StyleDisplay)
			rows := grid(b)
			if len(rows) == 0 {
				t.Fatal("no rows found")
			}
			cols := len(rows[0])
			for i, row := range rows {
				if len(row) != cols {
					t.Fatalf("row %d has %d cells, want %d", i, len(row), cols)
				}
				for j, c := range row {
					if !approx(c.Height, row[0].Height) || !approx(c.Depth, row[0].Depth) {
						t.Errorf("cell (%d,%d) height/depth = %v/%v, want the row's %v/%v",
							i, j, c.Height, c.Depth, row[0].Height, row[0].Depth)
					}
					if !approx(c.Width, rows[0][j].Width) {
						t.Errorf("cell (%d,%d) width = %v, want the column's %v", i, j, c.Width, rows[0][j].Width)
					}
					for _, content := range c.Children {
						if content.Width > c.Width+1e-6 || content.X < -1e-6 || content.X+content.Width > c.Width+1e-6 {
							t.Errorf("cell (%d,%d) content overflows its cell", i, j)
						}
						if content.Height > c.Height+1e-6 || content.Depth > c.Depth+1e-6 {
							t.Errorf("cell (%d,%d) content taller than its row", i, j)
						}
					}
				}
			}
		})
	}
}

func TestMatrixColumnWidthIsWidestCell(t *testing.T) {
	b := mustLayout(t, `\begin{matrix} a & b \\ abcdef & c \end{matrix}`, expr.StyleText)
	rows := grid(b)
	wide := rows[1][0].Children[0]
	if !approx(rows[0][0].Width, wide.Width) {
		t.Errorf("column 0 width = %v, want widest cell %v", rows[0][0].Width, wide.Width)
	}
}

func TestMatrixStrut(t *testing.T) {
	b := mustLayout(t, `\begin{matrix} - & - \end{matrix}`, expr.StyleText)
	row := grid(b)[0]
	if row[0].Height < strutHeight*testSize-1e-6 || row[0].Depth < strutDepth*testSize-1e-6 {
		t.Errorf("row height/depth = %v/%v, want at least the strut", row[0].Height, row[0].Depth)
	}
}

func TestMatrixCenteredOnAxis(t *testing.T) {
	b := mustLayout(t, `\begin{matrix} a \\ b \\ c \end{matrix}`, expr.StyleText)
	axis := mathfont.Default().Constants().AxisHeight * testSize
	if got := (b.Height - b.Depth) / 2; !approx(got, axis) {
		t.Errorf("grid center = %v, want axis %v", got, axis)
	}
}

func TestMatrixRowGap(t *testing.T) {
	b := mustLayout(t, `\begin{matrix} a \\ b \end{matrix}`, expr.StyleText)
	rows := b.Find(RoleRow)
	gap := (rows[1].Y - rows[1].Height) - (rows[0].Y + rows[0].Depth)
	if !approx(gap, rowGap*testSize) {
		t.Errorf("row gap = %v, want %v", gap, rowGap*testSize)
	}
}

func TestMatrixDelimiters(t *testing.T) {
	tests := []struct {
		src    string
		delims int
	}{
		{`\begin{matrix} a \end{matrix}`, 0},
		{`\begin{pmatrix} a \\ b \end{pmatrix}`, 2},
		{`\begin{vmatrix} a \\ b \end{vmatrix}`, 2},
		{`\begin{cases} a \\ b \end{cases}`, 2}, // brace and a null delimiter
	}
	for _, tt := range tests {
		b := mustLayout(t, tt.src, expr.StyleText)
		delims := b.Find(RoleDelimiter)
		if len(delims) != tt.delims {
			t.Errorf("%s: %d delimiters, want %d", tt.src, len(delims), tt.delims)
			continue
		}
		for _, d := range delims {
			if d.Kind != KindKern && d.Total() < b.Find(RoleRow)[0].Total() {
				t.Errorf("%s: delimiter total %v shorter than a row", tt.src, d.Total())
			}
		}
	}
}

func TestAlignedColumns(t *testing.T) {
	b := mustLayout(t, `\begin{aligned} a &= b \\ cde &= f \end{aligned}`, expr.StyleDisplay)
	rows := grid(b)
	if len(rows) != 2 || len(rows[0]) != 2 {
		t.Fatalf("grid is %dx%d, want 2x2", len(rows), len(rows[0]))
	}
	// The left column is right aligned and the right column left aligned.
	for i, row := range rows {
		left, right := row[0], row[1]
		content := left.Children[0]
		if !approx(content.X+content.Width, left.Width) {
			t.Errorf("row %d left cell is not right aligned", i)
		}
		if !approx(right.Children[0].X, 0) {
			t.Errorf("row %d right cell is not left aligned", i)
		}
		// No gap inside a pair.
		if !approx(right.X, left.X+left.Width) {
			t.Errorf("row %d: gap inside an aligned pair = %v", i, right.X-left.X-left.Width)
		}
	}

	// The relation at the start of the right cell keeps its spacing.
	first := kerns(rows[0][1].Children[0])
	if len(first) == 0 || !approx(first[0], thick*testSize/18) {
		t.Errorf("kerns in the right cell = %v, want a thick space before =", first)
	}
}

func TestMatrixCellStyle(t *testing.T) {
	cell := func(src string, st expr.MathStyle) float64 {
		b := mustLayout(t, src, st)
		return glyphs(grid(b)[0][0])[0].Glyph.Size
	}
	tests := []struct {
		src   string
		style expr.MathStyle
		want  float64
	}{
		{`\begin{matrix} a \end{matrix}`, expr.StyleDisplay, testSize},
		{`\begin{smallmatrix} a \end{smallmatrix}`, expr.StyleDisplay, testSize * 0.7},
		{`\begin{matrix} \frac{a}{b} \end{matrix}`, expr.StyleDisplay, testSize * 0.7},
		{`\begin{aligned} \frac{a}{b} &= c \end{aligned}`, expr.StyleDisplay, testSize},
	}
	for _, tt := range tests {
		if got := cell(tt.src, tt.style); !approx(got, tt.want) {
			t.Errorf("%s: first cell glyph size = %v, want %v", tt.src, got, tt.want)
		}
	}
}
