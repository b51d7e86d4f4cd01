package raster

import (
	"bytes"
	"errors"
	"image/color"
	"image/png"
	"math"
	"testing"

	"github.com/gogpu/math2img/expr"
	"github.com/gogpu/math2img/layout"
	"github.com/gogpu/math2img/mathfont"
)

func mustBox(t *testing.T, src string) *layout.Box {
	t.Helper()
	n, err := expr.Parse(src)
	if err != nil {
		t.Fatalf("Parse(%q) error = %v", src, err)
	}
	b, err := layout.Layout(n, layout.Options{Size: 24, Style: expr.StyleDisplay})
	if err != nil {
		t.Fatalf("Layout(%q) error = %v", src, err)
	}
	return b
}

// =============================================================================
// Themes
// =============================================================================

func TestThemePalettes(t *testing.T) {
	tests := []struct {
		theme  Theme
		bg, fg color.NRGBA
	}{
		{ThemeDark, color.NRGBA{0x2B, 0x30, 0x3B, 0xFF}, color.NRGBA{0xC0, 0xC5, 0xCE, 0xFF}},
		{ThemeLight, color.NRGBA{0xFF, 0xFF, 0xFF, 0xFF}, color.NRGBA{0x33, 0x33, 0x33, 0xFF}},
	}
	for _, tt := range tests {
		pal := tt.theme.Palette()
		if pal.Background != tt.bg {
			t.Errorf("%v background = %v, want %v", tt.theme, pal.Background, tt.bg)
		}
		if pal.Foreground != tt.fg {
			t.Errorf("%v foreground = %v, want %v", tt.theme, pal.Foreground, tt.fg)
		}
	}
}

func TestParseTheme(t *testing.T) {
	tests := []struct {
		in      string
		want    Theme
		wantErr bool
	}{
		{"dark", ThemeDark, false},
		{"Dark", ThemeDark, false},
		{"LIGHT", ThemeLight, false},
		{" light ", ThemeLight, false},
		{"solarized", ThemeDark, true},
		{"", ThemeDark, true},
	}
	for _, tt := range tests {
		got, err := ParseTheme(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseTheme(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			continue
		}
		if err != nil && !errors.Is(err, ErrUnknownTheme) {
			t.Errorf("ParseTheme(%q) error = %v, want ErrUnknownTheme", tt.in, err)
		}
		if got != tt.want {
			t.Errorf("ParseTheme(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestThemeString(t *testing.T) {
	for _, th := range []Theme{ThemeDark, ThemeLight} {
		got, err := ParseTheme(th.String())
		if err != nil || got != th {
			t.Errorf("ParseTheme(%q) = %v, %v, want %v", th.String(), got, err, th)
		}
	}
	if got := Theme(9).String(); got != "Theme(9)" {
		t.Errorf("Theme(9).String() = %q", got)
	}
}

// =============================================================================
// Canvas
// =============================================================================

func TestCanvasSize(t *testing.T) {
	box := &layout.Box{Width: 10.2, Height: 7.5, Depth: 2.25}
	tests := []struct {
		name string
		opts Options
		w, h int
	}{
		{"scale 1", Options{Scale: 1, Padding: 16}, 11 + 32, 10 + 32},
		{"scale 3", Options{Scale: 3, Padding: 16}, 31 + 96, 30 + 96},
		{"fractional padding", Options{Scale: 2, Padding: 0.3}, 21 + 2, 20 + 2},
		{"no padding", Options{Scale: 1.5}, 16, 15},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w, h := CanvasSize(box, tt.opts)
			if w != tt.w || h != tt.h {
				t.Errorf("CanvasSize() = %dx%d, want %dx%d", w, h, tt.w, tt.h)
			}
		})
	}
}

func TestRenderDimensions(t *testing.T) {
	box := mustBox(t, `\frac{a+b}{c}`)
	opts := DefaultOptions()
	pm, err := Render(box, nil, opts)
	if err != nil {
		t.Fatalf("Render() error = %v", err)
	}
	p := math.Ceil(opts.Padding * opts.Scale)
	wantW := int(math.Ceil(box.Width*opts.Scale) + 2*p)
	wantH := int(math.Ceil((box.Height+box.Depth)*opts.Scale) + 2*p)
	if pm.Width() != wantW || pm.Height() != wantH {
		t.Errorf("Render() = %dx%d, want %dx%d", pm.Width(), pm.Height(), wantW, wantH)
	}
}

func TestRenderErrors(t *testing.T) {
	box := mustBox(t, `x`)
	tests := []struct {
		name string
		box  *layout.Box
		opts Options
		want error
	}{
		{"nil box", nil, DefaultOptions(), ErrNilBox},
		{"zero scale", box, Options{Scale: 0}, ErrInvalidScale},
		{"negative scale", box, Options{Scale: -1}, ErrInvalidScale},
		{"NaN scale", box, Options{Scale: math.NaN()}, ErrInvalidScale},
		{"negative padding", box, Options{Scale: 1, Padding: -1}, ErrInvalidPadding},
		{"huge", &layout.Box{Width: 1e6, Height: 1}, Options{Scale: 1}, ErrCanvasTooLarge},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Render(tt.box, nil, tt.opts)
			if !errors.Is(err, tt.want) {
				t.Errorf("Render() error = %v, want %v", err, tt.want)
			}
		})
	}
}

// =============================================================================
// Painting
// =============================================================================

func TestRenderPaintsForeground(t *testing.T) {
	for _, th := range []Theme{ThemeDark, ThemeLight} {
		opts := DefaultOptions()
		opts.Theme = th
		pm, err := Render(mustBox(t, `\sum_{i=1}^{n} x_i`), nil, opts)
		if err != nil {
			t.Fatalf("Render() error = %v", err)
		}
		pal := th.Palette()
		bg := color.RGBA{pal.Background.R, pal.Background.G, pal.Background.B, 0xFF}
		fg := color.RGBA{pal.Foreground.R, pal.Foreground.G, pal.Foreground.B, 0xFF}

		// Corners are padding.
		if got := pm.GetPixel(0, 0); got != bg {
			t.Errorf("%v corner = %v, want background %v", th, got, bg)
		}
		if got := pm.GetPixel(pm.Width()-1, pm.Height()-1); got != bg {
			t.Errorf("%v corner = %v, want background %v", th, got, bg)
		}

		// Solid ink shows the exact foreground; the image stays opaque.
		solid := 0
		for y := range pm.Height() {
			for x := range pm.Width() {
				c := pm.GetPixel(x, y)
				if c.A != 0xFF {
					t.Fatalf("%v pixel (%d,%d) alpha = %d, want opaque", th, x, y, c.A)
				}
				if c == fg {
					solid++
				}
			}
		}
		if solid == 0 {
			t.Errorf("%v: no pixel painted in the foreground color", th)
		}
	}
}

func TestRenderRule(t *testing.T) {
	// A lone rule box: 10x2 px at scale 1, baseline at its bottom.
	box := &layout.Box{Kind: layout.KindHList, Width: 10, Height: 2}
	box.Children = []*layout.Box{{Kind: layout.KindRule, Width: 10, Height: 2}}
	pm, err := Render(box, nil, Options{Scale: 2, Theme: ThemeLight, Padding: 1})
	if err != nil {
		t.Fatalf("Render() error = %v", err)
	}
	if pm.Width() != 24 || pm.Height() != 8 {
		t.Fatalf("Render() = %dx%d, want 24x8", pm.Width(), pm.Height())
	}
	fg := color.RGBA{0x33, 0x33, 0x33, 0xFF}
	white := color.RGBA{0xFF, 0xFF, 0xFF, 0xFF}
	for x := 2; x < 22; x++ {
		for y := 2; y < 6; y++ {
			if got := pm.GetPixel(x, y); got != fg {
				t.Fatalf("pixel (%d,%d) = %v, want rule color %v", x, y, got, fg)
			}
		}
		if got := pm.GetPixel(x, 1); got != white {
			t.Errorf("pixel (%d,1) = %v, want padding %v", x, got, white)
		}
	}
}

func TestPathBounds(t *testing.T) {
	seg := func(op mathfont.OutlineOp, pts ...mathfont.OutlinePoint) mathfont.OutlineSegment {
		s := mathfont.OutlineSegment{Op: op}
		copy(s.Points[:], pts)
		return s
	}
	r, ok := pathBounds([]mathfont.OutlineSegment{
		seg(mathfont.OutlineOpMoveTo, mathfont.OutlinePoint{X: 1.5, Y: 2.2}),
		seg(mathfont.OutlineOpQuadTo, mathfont.OutlinePoint{X: 8.1, Y: -0.5}, mathfont.OutlinePoint{X: 4, Y: 6.9}),
	})
	if !ok {
		t.Fatal("pathBounds() ok = false")
	}
	if r.Min.X != 1 || r.Min.Y != -1 || r.Max.X != 9 || r.Max.Y != 7 {
		t.Errorf("pathBounds() = %v, want (1,-1)-(9,7)", r)
	}

	if _, ok := pathBounds([]mathfont.OutlineSegment{
		seg(mathfont.OutlineOpMoveTo, mathfont.OutlinePoint{X: 1, Y: 1}),
		seg(mathfont.OutlineOpLineTo, mathfont.OutlinePoint{X: 5, Y: 1}),
	}); ok {
		t.Error("pathBounds() of a flat path ok = true, want false")
	}
}

// =============================================================================
// PNG encoding
// =============================================================================

func TestRenderPNGIsDeterministic(t *testing.T) {
	box := mustBox(t, `\left( \sqrt{x^2 + y^2} \right)`)
	first, err := RenderPNG(box, nil, DefaultOptions())
	if err != nil {
		t.Fatalf("RenderPNG() error = %v", err)
	}
	for range 3 {
		again, err := RenderPNG(mustBox(t, `\left( \sqrt{x^2 + y^2} \right)`), nil, DefaultOptions())
		if err != nil {
			t.Fatalf("RenderPNG() error = %v", err)
		}
		if !bytes.Equal(first, again) {
			t.Fatal("RenderPNG() output differs between identical calls")
		}
	}
}

func TestRenderPNGDecodes(t *testing.T) {
	box := mustBox(t, `E = mc^2`)
	data, err := RenderPNG(box, nil, DefaultOptions())
	if err != nil {
		t.Fatalf("RenderPNG() error = %v", err)
	}
	img, err := png.Decode(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("PNG decode failed: %v", err)
	}
	w, h := CanvasSize(box, DefaultOptions())
	if b := img.Bounds(); b.Dx() != w || b.Dy() != h {
		t.Errorf("decoded %dx%d, want %dx%d", b.Dx(), b.Dy(), w, h)
	}
}

func TestPixmapEncodePNG(t *testing.T) {
	pm := NewPixmap(50, 40, color.RGBA{B: 0xFF, A: 0xFF})

	var buf bytes.Buffer
	if err := pm.EncodePNG(&buf); err != nil {
		t.Fatalf("Pixmap.EncodePNG failed: %v", err)
	}
	img, err := png.Decode(bytes.NewReader(buf.Bytes()))
	if err != nil {
		t.Fatalf("PNG decode failed: %v", err)
	}
	if b := img.Bounds(); b.Dx() != 50 || b.Dy() != 40 {
		t.Errorf("expected 50x40, got %dx%d", b.Dx(), b.Dy())
	}
	r, g, b, a := img.At(10, 10).RGBA()
	if r != 0 || g != 0 || b != 0xFFFF || a != 0xFFFF {
		t.Errorf("pixel = %v %v %v %v, want opaque blue", r, g, b, a)
	}
}

func TestPixmapGetPixelOutOfBounds(t *testing.T) {
	pm := NewPixmap(2, 2, color.White)
	if got := pm.GetPixel(-1, 0); got != (color.RGBA{}) {
		t.Errorf("GetPixel(-1, 0) = %v, want transparent", got)
	}
	if got := pm.GetPixel(1, 1); got != (color.RGBA{0xFF, 0xFF, 0xFF, 0xFF}) {
		t.Errorf("GetPixel(1, 1) = %v, want white", got)
	}
}

func BenchmarkRenderPNG(b *testing.B) {
	n, err := expr.Parse(`\int_0^\infty e^{-x^2}\,dx = \frac{\sqrt{\pi}}{2}`)
	if err != nil {
		b.Fatal(err)
	}
	box, err := layout.Layout(n, layout.Options{Size: 24, Style: expr.StyleDisplay})
	if err != nil {
		b.Fatal(err)
	}
	opts := DefaultOptions()
	b.ResetTimer()
	for b.Loop() {
		if _, err := RenderPNG(box, nil, opts); err != nil {
			b.Fatal(err)
		}
	}
}
