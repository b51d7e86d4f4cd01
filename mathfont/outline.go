package mathfont

import (
	"github.com/go-text/typesetting/font"
	ot "github.com/go-text/typesetting/font/opentype"
)

// OutlinePoint is a point of a glyph outline in em units, y up.
type OutlinePoint struct {
	X, Y float64
}

// OutlineOp is the type of path operation.
type OutlineOp uint8

const (
	// OutlineOpMoveTo starts a new contour.
	OutlineOpMoveTo OutlineOp = iota

	// OutlineOpLineTo draws a line to the target point.
	OutlineOpLineTo

	// OutlineOpQuadTo draws a quadratic bezier curve.
	OutlineOpQuadTo

	// OutlineOpCubicTo draws a cubic bezier curve.
	OutlineOpCubicTo
)

// String returns a string representation of the operation.
func (op OutlineOp) String() string {
	switch op {
	case OutlineOpMoveTo:
		return "MoveTo"
	case OutlineOpLineTo:
		return "LineTo"
	case OutlineOpQuadTo:
		return "QuadTo"
	case OutlineOpCubicTo:
		return "CubicTo"
	default:
		return "Unknown"
	}
}

// OutlineSegment is one path segment.
type OutlineSegment struct {
	Op OutlineOp

	// Points holds the control and end points.
	// - MoveTo, LineTo: Points[0] is the target
	// - QuadTo: Points[0] is the control, Points[1] the target
	// - CubicTo: Points[0], Points[1] are controls, Points[2] the target
	Points [3]OutlinePoint
}

// GlyphOutline is the vector outline of a glyph.
type GlyphOutline struct {
	GID      GlyphID
	Segments []OutlineSegment
}

// IsEmpty reports whether the outline has no segments.
func (o *GlyphOutline) IsEmpty() bool {
	return o == nil || len(o.Segments) == 0
}

// Outline returns the outline of a glyph. Glyphs without vector data, such
// as spaces, return an empty outline. The result is shared and must not be
// modified.
func (f *Font) Outline(gid GlyphID) *GlyphOutline {
	return f.outlines.GetOrCreate(gid, func() *GlyphOutline {
		face := f.faces.Get().(*font.Face)
		defer f.faces.Put(face)

		out := &GlyphOutline{GID: gid}
		data, ok := face.GlyphData(gid).(font.GlyphOutline)
		if !ok {
			return out
		}
		out.Segments = make([]OutlineSegment, 0, len(data.Segments))
		for _, s := range data.Segments {
			seg := OutlineSegment{Op: convertOp(s.Op)}
			for i, p := range s.ArgsSlice() {
				seg.Points[i] = OutlinePoint{X: float64(p.X) / f.upem, Y: float64(p.Y) / f.upem}
			}
			out.Segments = append(out.Segments, seg)
		}
		return out
	})
}

func convertOp(op ot.SegmentOp) OutlineOp {
	switch op {
	case ot.SegmentOpLineTo:
		return OutlineOpLineTo
	case ot.SegmentOpQuadTo:
		return OutlineOpQuadTo
	case ot.SegmentOpCubeTo:
		return OutlineOpCubicTo
	default:
		return OutlineOpMoveTo
	}
}
