package raster

import (
	"fmt"
	"image"
	"image/draw"
	"log/slog"
	"math"

	"golang.org/x/image/vector"

	"github.com/gogpu/math2img/layout"
	"github.com/gogpu/math2img/mathfont"
)

// DefaultPadding is the margin around an equation in pixels at scale 1.
const DefaultPadding = 16

// MaxDimension bounds the width and height of a rendered image.
const MaxDimension = 1 << 15

// Options controls rasterization.
type Options struct {
	// Scale multiplies every layout length. Must be positive.
	Scale float64

	Theme Theme

	// Padding is the margin on every side in pixels at scale 1.
	Padding float64
}

// DefaultOptions returns scale 3, the dark theme and the default padding.
func DefaultOptions() Options {
	return Options{Scale: 3, Theme: ThemeDark, Padding: DefaultPadding}
}

// CanvasSize returns the pixel size of the image for a box tree:
// the scaled box rounded up plus the scaled padding on each side.
func CanvasSize(box *layout.Box, opts Options) (width, height int) {
	p := math.Ceil(opts.Padding * opts.Scale)
	w := math.Ceil(box.Width*opts.Scale) + 2*p
	h := math.Ceil(box.Total()*opts.Scale) + 2*p
	return int(w), int(h)
}

// Render paints a box tree onto a new pixmap. Glyphs are filled from
// their outlines in font and rules as rectangles, both in the theme's
// foreground over its background.
func Render(box *layout.Box, font *mathfont.Font, opts Options) (*Pixmap, error) {
	if box == nil {
		return nil, ErrNilBox
	}
	if !(opts.Scale > 0) || math.IsInf(opts.Scale, 0) {
		return nil, fmt.Errorf("%w: %v", ErrInvalidScale, opts.Scale)
	}
	if opts.Padding < 0 || math.IsNaN(opts.Padding) {
		return nil, fmt.Errorf("%w: %v", ErrInvalidPadding, opts.Padding)
	}
	if font == nil {
		font = mathfont.Default()
	}

	w, h := CanvasSize(box, opts)
	if w > MaxDimension || h > MaxDimension || w <= 0 || h <= 0 {
		return nil, fmt.Errorf("%w: %dx%d", ErrCanvasTooLarge, w, h)
	}

	pal := opts.Theme.Palette()
	pm := NewPixmap(w, h, pal.Background)
	p := &painter{
		dst:   pm.img,
		fg:    image.NewUniform(pal.Foreground),
		font:  font,
		scale: opts.Scale,
		ox:    math.Ceil(opts.Padding*opts.Scale) - box.X*opts.Scale,
		oy:    math.Ceil(opts.Padding*opts.Scale) + (box.Height-box.Y)*opts.Scale,
	}
	box.Walk(func(b *layout.Box, x, y float64) bool {
		switch b.Kind {
		case layout.KindGlyph:
			p.glyph(b, x, y)
		case layout.KindRule:
			p.rule(b, x, y)
		}
		return true
	})

	slogger().Debug("raster: rendered",
		slog.Int("width", w),
		slog.Int("height", h),
		slog.Int("paths", p.paths))
	return pm, nil
}

// RenderPNG renders a box tree and encodes it as PNG.
func RenderPNG(box *layout.Box, font *mathfont.Font, opts Options) ([]byte, error) {
	pm, err := Render(box, font, opts)
	if err != nil {
		return nil, err
	}
	return encodeBytes(pm)
}

// painter converts layout positions to device pixels and fills paths.
type painter struct {
	dst   *image.RGBA
	fg    image.Image
	font  *mathfont.Font
	scale float64

	// ox, oy is the device position of the root baseline origin.
	ox, oy float64

	z     vector.Rasterizer
	mask  []uint8
	paths int
}

func (p *painter) device(x, y float64) (float64, float64) {
	return p.ox + x*p.scale, p.oy + y*p.scale
}

// glyph fills the outline of a glyph whose baseline origin is at (x, y).
// Outline units are em with y up.
func (p *painter) glyph(b *layout.Box, x, y float64) {
	outline := p.font.Outline(b.Glyph.ID)
	if outline.IsEmpty() {
		return
	}
	ox, oy := p.device(x, y)
	k := b.Glyph.Size * p.scale
	segs := make([]mathfont.OutlineSegment, len(outline.Segments))
	for i, s := range outline.Segments {
		segs[i].Op = s.Op
		for j, pt := range s.Points {
			segs[i].Points[j] = mathfont.OutlinePoint{X: ox + pt.X*k, Y: oy - pt.Y*k}
		}
	}
	p.fill(segs)
}

// rule fills the rectangle of a rule box.
func (p *painter) rule(b *layout.Box, x, y float64) {
	if b.Width <= 0 || b.Total() <= 0 {
		return
	}
	x0, y0 := p.device(x, y-b.Height)
	x1, y1 := p.device(x+b.Width, y+b.Depth)
	corner := func(op mathfont.OutlineOp, x, y float64) mathfont.OutlineSegment {
		return mathfont.OutlineSegment{Op: op, Points: [3]mathfont.OutlinePoint{{X: x, Y: y}}}
	}
	p.fill([]mathfont.OutlineSegment{
		corner(mathfont.OutlineOpMoveTo, x0, y0),
		corner(mathfont.OutlineOpLineTo, x1, y0),
		corner(mathfont.OutlineOpLineTo, x1, y1),
		corner(mathfont.OutlineOpLineTo, x0, y1),
	})
}

// fill rasterizes a device-space path into a coverage mask sized to its
// bounds and composites the foreground through it.
func (p *painter) fill(segs []mathfont.OutlineSegment) {
	bounds, ok := pathBounds(segs)
	if !ok {
		return
	}
	if bounds.Intersect(p.dst.Rect).Empty() {
		return
	}
	w, h := bounds.Dx(), bounds.Dy()
	p.z.Reset(w, h)
	p.z.DrawOp = draw.Src

	dx, dy := float32(bounds.Min.X), float32(bounds.Min.Y)
	pt := func(q mathfont.OutlinePoint) (float32, float32) {
		return float32(q.X) - dx, float32(q.Y) - dy
	}
	open := false
	for _, s := range segs {
		switch s.Op {
		case mathfont.OutlineOpMoveTo:
			if open {
				p.z.ClosePath()
			}
			p.z.MoveTo(pt(s.Points[0]))
			open = true
		case mathfont.OutlineOpLineTo:
			p.z.LineTo(pt(s.Points[0]))
		case mathfont.OutlineOpQuadTo:
			bx, by := pt(s.Points[0])
			cx, cy := pt(s.Points[1])
			p.z.QuadTo(bx, by, cx, cy)
		case mathfont.OutlineOpCubicTo:
			bx, by := pt(s.Points[0])
			cx, cy := pt(s.Points[1])
			ex, ey := pt(s.Points[2])
			p.z.CubeTo(bx, by, cx, cy, ex, ey)
		}
	}
	if open {
		p.z.ClosePath()
	}

	// The mask must have a stride equal to its width: the rasterizer
	// writes whole-image masks as one contiguous run.
	if cap(p.mask) < w*h {
		p.mask = make([]uint8, w*h)
	}
	mask := &image.Alpha{Pix: p.mask[:w*h], Stride: w, Rect: image.Rect(0, 0, w, h)}
	p.z.Draw(mask, mask.Rect, image.Opaque, image.Point{})
	draw.DrawMask(p.dst, bounds, p.fg, image.Point{}, mask, image.Point{}, draw.Over)
	p.paths++
}

// pathBounds returns the integer pixel rectangle covering every point of
// the path, or false for a path with no area.
func pathBounds(segs []mathfont.OutlineSegment) (image.Rectangle, bool) {
	minX, minY := math.Inf(1), math.Inf(1)
	maxX, maxY := math.Inf(-1), math.Inf(-1)
	for _, s := range segs {
		n := 1
		switch s.Op {
		case mathfont.OutlineOpQuadTo:
			n = 2
		case mathfont.OutlineOpCubicTo:
			n = 3
		}
		for _, q := range s.Points[:n] {
			minX, maxX = math.Min(minX, q.X), math.Max(maxX, q.X)
			minY, maxY = math.Min(minY, q.Y), math.Max(maxY, q.Y)
		}
	}
	if !(maxX > minX) || !(maxY > minY) {
		return image.Rectangle{}, false
	}
	r := image.Rect(int(math.Floor(minX)), int(math.Floor(minY)), int(math.Ceil(maxX)), int(math.Ceil(maxY)))
	return r, true
}
