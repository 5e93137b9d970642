// Package shape turns placed board entities into testable geometry:
// rectangle outlines rotated about an anchor and stroke point lists rotated
// the same way.
//
// Orientations are tenths of a degree, clockwise positive in the board's
// y-down frame. They are negated into a counter-clockwise mathematical angle
// before rotating.
package shape

import (
	"math"

	"github.com/OpenTraceLab/padcheck/pkg/geom"
)

// Rect is an axis-aligned rectangle with its top-left corner at (X, Y).
type Rect struct {
	X, Y, W, H float64
}

// CenteredRect returns a w×h rectangle centred on c.
func CenteredRect(c geom.Point, w, h float64) Rect {
	return Rect{X: c.X - w/2, Y: c.Y - h/2, W: w, H: h}
}

// Center returns the midpoint of r.
func (r Rect) Center() geom.Point {
	return geom.Pt(r.X+r.W/2, r.Y+r.H/2)
}

// Inflate grows r by d on every side.
func (r Rect) Inflate(d float64) Rect {
	return Rect{X: r.X - d, Y: r.Y - d, W: r.W + 2*d, H: r.H + 2*d}
}

// Rotator rotates points about a fixed centre. Build one per entity when
// many points share the same transform.
type Rotator struct {
	center   geom.Point
	cos, sin float64
}

// NewRotator returns a rotation about center by orient tenths of a degree.
func NewRotator(center geom.Point, orient float64) Rotator {
	angle := -orient / 10 * math.Pi / 180
	return Rotator{center: center, cos: math.Cos(angle), sin: math.Sin(angle)}
}

// Apply rotates p.
func (r Rotator) Apply(p geom.Point) geom.Point {
	dx := p.X - r.center.X
	dy := p.Y - r.center.Y
	return geom.Point{
		X: r.cos*dx - r.sin*dy + r.center.X,
		Y: r.sin*dx + r.cos*dy + r.center.Y,
	}
}

// Rotate rotates a single point about center.
func Rotate(p, center geom.Point, orient float64) geom.Point {
	return NewRotator(center, orient).Apply(p)
}

// RotatedRectangleCorners returns the four corners of rect rotated about
// center, in the order (x,y), (x+w,y), (x+w,y+h), (x,y+h), followed by the
// first corner again so the polygon is explicitly closed.
func RotatedRectangleCorners(rect Rect, center geom.Point, orient float64) geom.Polygon {
	rot := NewRotator(center, orient)
	first := rot.Apply(geom.Pt(rect.X, rect.Y))
	return geom.Polygon{
		first,
		rot.Apply(geom.Pt(rect.X+rect.W, rect.Y)),
		rot.Apply(geom.Pt(rect.X+rect.W, rect.Y+rect.H)),
		rot.Apply(geom.Pt(rect.X, rect.Y+rect.H)),
		first,
	}
}

// RotatedStrokeSegments rotates a flat stroke point list about center. The
// list is read as consecutive (start, end) pairs; a trailing unpaired point
// is dropped.
func RotatedStrokeSegments(raw []geom.Point, center geom.Point, orient float64) []geom.Point {
	if len(raw) < 2 {
		return nil
	}
	rot := NewRotator(center, orient)
	out := make([]geom.Point, 0, len(raw)&^1)
	for i := 0; i+1 < len(raw); i += 2 {
		out = append(out, rot.Apply(raw[i]), rot.Apply(raw[i+1]))
	}
	return out
}

// Segments pairs up a flat stroke point list.
func Segments(pts []geom.Point) []geom.Segment {
	segs := make([]geom.Segment, 0, len(pts)/2)
	for i := 0; i+1 < len(pts); i += 2 {
		segs = append(segs, geom.Seg(pts[i], pts[i+1]))
	}
	return segs
}

// FootprintTextOrientation is the residual rotation to apply to strokes of
// text owned by a footprint. The stroke decomposition already carries the
// text's own angle, so only the difference to the drawn rotation remains.
func FootprintTextOrientation(drawRotation, textAngle float64) float64 {
	return drawRotation - textAngle
}

// NormalizeOrientation folds orient into [0, 3600).
func NormalizeOrientation(orient float64) float64 {
	o := math.Mod(orient, 3600)
	if o < 0 {
		o += 3600
	}
	return o
}
