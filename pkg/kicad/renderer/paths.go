package renderer

import (
	"math"

	"github.com/OpenTraceLab/padcheck/pkg/board"
	"github.com/OpenTraceLab/padcheck/pkg/geom"
)

const (
	arcSteps    = 24
	circleSteps = 48

	zoneOutlineWidth = 100000
)

// polyline is a stroked path in board coordinates.
type polyline struct {
	points []geom.Point
	width  float64
	closed bool
}

// drawingPath flattens a drawing into a polyline.
func drawingPath(d *board.Drawing) polyline {
	pl := polyline{width: d.Width}
	switch d.Shape {
	case board.ShapeArc:
		pl.points = arcThrough(d.Start, d.Mid, d.End, arcSteps)
	case board.ShapeCircle:
		pl.points = circle(d.Center, geom.Distance(d.Center, d.End), circleSteps)
		pl.closed = true
	case board.ShapeRect:
		pl.points = []geom.Point{d.Start, geom.Pt(d.End.X, d.Start.Y), d.End, geom.Pt(d.Start.X, d.End.Y)}
		pl.closed = true
	case board.ShapePolygon:
		pl.points = d.Points
		pl.closed = true
	case board.ShapeBezier:
		pl.points = d.Points
	default:
		pl.points = []geom.Point{d.Start, d.End}
	}
	return pl
}

// zonePath is a zone's closed outline.
func zonePath(z *board.Zone) polyline {
	return polyline{points: z.Outline, width: zoneOutlineWidth, closed: true}
}

// trackPath flattens a track, following the arc when it has one.
func trackPath(t *board.Track) polyline {
	if t.Arc {
		return polyline{points: arcThrough(t.Start, t.Mid, t.End, arcSteps), width: t.Width}
	}
	return polyline{points: []geom.Point{t.Start, t.End}, width: t.Width}
}

// textPaths returns one two-point polyline per text stroke.
func textPaths(t *board.Text) []polyline {
	pts := t.StrokePoints()
	out := make([]polyline, 0, len(pts)/2)
	for i := 0; i+1 < len(pts); i += 2 {
		out = append(out, polyline{points: []geom.Point{pts[i], pts[i+1]}, width: t.Thickness})
	}
	return out
}

// padOutline is the filled outline of a pad.
func padOutline(p *board.Pad) []geom.Point {
	if p.Shape == board.PadCircle {
		return circle(p.Position, p.Size.W/2, circleSteps)
	}
	return p.Polygon()
}

func circle(c geom.Point, r float64, n int) []geom.Point {
	pts := make([]geom.Point, n)
	for i := range pts {
		sin, cos := math.Sincos(2 * math.Pi * float64(i) / float64(n))
		pts[i] = geom.Pt(c.X+r*cos, c.Y+r*sin)
	}
	return pts
}

// arcThrough samples the circular arc from a to c passing through b. A
// degenerate arc comes back as the chord pair.
func arcThrough(a, b, c geom.Point, n int) []geom.Point {
	d := 2 * (a.X*(b.Y-c.Y) + b.X*(c.Y-a.Y) + c.X*(a.Y-b.Y))
	if math.Abs(d) < 1e-9 {
		return []geom.Point{a, b, c}
	}
	sa := a.X*a.X + a.Y*a.Y
	sb := b.X*b.X + b.Y*b.Y
	sc := c.X*c.X + c.Y*c.Y
	center := geom.Pt(
		(sa*(b.Y-c.Y)+sb*(c.Y-a.Y)+sc*(a.Y-b.Y))/d,
		(sa*(c.X-b.X)+sb*(a.X-c.X)+sc*(b.X-a.X))/d,
	)
	r := geom.Distance(center, a)

	angle := func(p geom.Point) float64 { return math.Atan2(p.Y-center.Y, p.X-center.X) }
	norm := func(x float64) float64 {
		x = math.Mod(x, 2*math.Pi)
		if x < 0 {
			x += 2 * math.Pi
		}
		return x
	}
	a0 := angle(a)
	sweep := norm(angle(c) - a0)
	if norm(angle(b)-a0) > sweep {
		sweep -= 2 * math.Pi
	}

	pts := make([]geom.Point, n+1)
	for i := range pts {
		sin, cos := math.Sincos(a0 + sweep*float64(i)/float64(n))
		pts[i] = geom.Pt(center.X+r*cos, center.Y+r*sin)
	}
	pts[0], pts[n] = a, c
	return pts
}
