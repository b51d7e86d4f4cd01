package mathfont

import (
	"bytes"
	"fmt"
	"sync"

	"github.com/go-fonts/latin-modern/lmmath"
	"github.com/go-text/typesetting/font"
	ot "github.com/go-text/typesetting/font/opentype"

	"github.com/gogpu/math2img/cache"
)

// GlyphID is a glyph index in the font.
type GlyphID = font.GID

// Metrics describes one glyph in em units at size 1.
type Metrics struct {
	// Advance is the horizontal advance width.
	Advance float64

	// Height is the distance from the baseline to the top of the ink.
	Height float64

	// Depth is the distance from the baseline to the bottom of the ink,
	// positive below the baseline.
	Depth float64

	// Italic is the italic correction from the MATH table.
	Italic float64

	// TopAccent is the horizontal position where an accent attaches.
	TopAccent float64

	// InkLeft and InkRight bound the ink horizontally.
	InkLeft  float64
	InkRight float64
}

// Font is an OpenType math font prepared for layout.
//
// Font is safe for concurrent use. The go-text font.Font it wraps is
// read-only; font.Face is not, so faces are pooled and each lookup borrows
// one.
type Font struct {
	font  *font.Font
	faces sync.Pool
	upem  float64
	math  *mathTable

	metrics  *cache.ShardedCache[GlyphID, Metrics]
	outlines *cache.ShardedCache[GlyphID, *GlyphOutline]
}

var (
	defaultOnce sync.Once
	defaultFont *Font
)

// Default returns the embedded Latin Modern Math font. It is loaded once.
func Default() *Font {
	defaultOnce.Do(func() {
		f, err := Load(lmmath.TTF)
		if err != nil {
			panic(fmt.Sprintf("mathfont: embedded font: %v", err))
		}
		defaultFont = f
	})
	return defaultFont
}

// Load parses an OpenType font that carries a MATH table.
func Load(data []byte) (*Font, error) {
	if len(data) == 0 {
		return nil, ErrEmptyFontData
	}

	ld, err := ot.NewLoader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("mathfont: parse font: %w", err)
	}
	raw, err := ld.RawTable(ot.MustNewTag("MATH"))
	if err != nil || len(raw) == 0 {
		return nil, ErrNoMathTable
	}
	ft, err := font.NewFont(ld)
	if err != nil {
		return nil, fmt.Errorf("mathfont: parse font: %w", err)
	}

	upem := float64(ft.Upem())
	table, err := parseMathTable(raw, upem)
	if err != nil {
		return nil, err
	}

	f := &Font{
		font:     ft,
		upem:     upem,
		math:     table,
		metrics:  cache.NewSharded[GlyphID, Metrics](256, glyphHasher),
		outlines: cache.NewSharded[GlyphID, *GlyphOutline](128, glyphHasher),
	}
	f.faces.New = func() any {
		return font.NewFace(ft)
	}
	return f, nil
}

func glyphHasher(g GlyphID) uint64 {
	return uint64(g)
}

// Constants returns the MATH constants. The result must not be modified.
func (f *Font) Constants() *Constants {
	return &f.math.constants
}

// ScaleFor returns the size multiplier for a script level: 1 for the base
// level, the font's script scale for level 1 and its scriptscript scale for
// level 2 and deeper.
func (f *Font) ScaleFor(level int) float64 {
	c := &f.math.constants
	switch {
	case level <= 0:
		return 1
	case level == 1:
		if c.ScriptPercentScaleDown > 0 {
			return c.ScriptPercentScaleDown
		}
		return 0.7
	default:
		if c.ScriptScriptPercentScaleDown > 0 {
			return c.ScriptScriptPercentScaleDown
		}
		return 0.5
	}
}

// Glyph maps a codepoint to a glyph.
func (f *Font) Glyph(r rune) (GlyphID, error) {
	gid, ok := f.font.NominalGlyph(r)
	if !ok {
		return 0, &MissingGlyphError{Rune: r}
	}
	return gid, nil
}

// HasGlyph reports whether the font maps r.
func (f *Font) HasGlyph(r rune) bool {
	_, ok := f.font.NominalGlyph(r)
	return ok
}

// Metrics returns the em-unit metrics of a glyph.
func (f *Font) Metrics(gid GlyphID) Metrics {
	return f.metrics.GetOrCreate(gid, func() Metrics {
		face := f.faces.Get().(*font.Face)
		defer f.faces.Put(face)

		m := Metrics{
			Advance: float64(face.HorizontalAdvance(gid)) / f.upem,
			Italic:  f.math.italics[gid],
		}
		if ext, ok := face.GlyphExtents(gid); ok {
			m.Height = float64(ext.YBearing) / f.upem
			m.Depth = -float64(ext.YBearing+ext.Height) / f.upem
			m.InkLeft = float64(ext.XBearing) / f.upem
			m.InkRight = float64(ext.XBearing+ext.Width) / f.upem
		}
		if ta, ok := f.math.topAccents[gid]; ok {
			m.TopAccent = ta
		} else if m.InkRight > m.InkLeft {
			m.TopAccent = (m.InkLeft + m.InkRight) / 2
		} else {
			m.TopAccent = m.Advance / 2
		}
		return m
	})
}

// IsExtendedShape reports whether the glyph is marked as an extended shape,
// such as a large delimiter or operator variant.
func (f *Font) IsExtendedShape(gid GlyphID) bool {
	return f.math.extendedShapes[gid]
}

// VerticalVariants returns the vertical size variants of a glyph, smallest
// first. The base glyph is usually the first entry.
func (f *Font) VerticalVariants(gid GlyphID) []Variant {
	if c := f.math.vertical[gid]; c != nil {
		return c.variants
	}
	return nil
}

// VerticalAssembly returns the vertical assembly recipe of a glyph, or nil.
func (f *Font) VerticalAssembly(gid GlyphID) *Assembly {
	if c := f.math.vertical[gid]; c != nil {
		return c.assembly
	}
	return nil
}

// HorizontalVariants returns the horizontal size variants of a glyph.
func (f *Font) HorizontalVariants(gid GlyphID) []Variant {
	if c := f.math.horizontal[gid]; c != nil {
		return c.variants
	}
	return nil
}

// HorizontalAssembly returns the horizontal assembly recipe of a glyph, or nil.
func (f *Font) HorizontalAssembly(gid GlyphID) *Assembly {
	if c := f.math.horizontal[gid]; c != nil {
		return c.assembly
	}
	return nil
}

// MinConnectorOverlap is the minimum overlap between assembly parts, in em.
func (f *Font) MinConnectorOverlap() float64 {
	return f.math.minConnectorOverlap
}

// CacheStats reports the metrics and outline cache statistics.
func (f *Font) CacheStats() (metrics, outlines cache.Stats) {
	return f.metrics.Stats(), f.outlines.Stats()
}
