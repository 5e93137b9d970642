// Package geom is the 2D proximity kernel shared by every board check:
// point-to-segment projection, minimum distances between segments and
// polygons, and a separating-axis intersection test for convex polygons.
//
// Coordinates are board units (nanometres) held as float64. No routine in
// this package returns an error; degenerate input yields trivial results.
package geom

import "math"

// Point is an immutable (x, y) pair.
type Point struct {
	X, Y float64
}

// Pt is shorthand for Point{X: x, Y: y}.
func Pt(x, y float64) Point {
	return Point{X: x, Y: y}
}

// Add returns p+q.
func (p Point) Add(q Point) Point {
	return Point{X: p.X + q.X, Y: p.Y + q.Y}
}

// Sub returns p-q.
func (p Point) Sub(q Point) Point {
	return Point{X: p.X - q.X, Y: p.Y - q.Y}
}

// Scale returns p*k.
func (p Point) Scale(k float64) Point {
	return Point{X: p.X * k, Y: p.Y * k}
}

// Segment is an ordered pair of points.
type Segment struct {
	A, B Point
}

// Seg is shorthand for Segment{A: a, B: b}.
func Seg(a, b Point) Segment {
	return Segment{A: a, B: b}
}

// Polygon is an ordered vertex list. Consecutive vertices form edges; a
// polygon whose last vertex differs from its first is closed implicitly by
// the distance routines.
type Polygon []Point

// Dot returns the dot product of v and w.
func Dot(v, w Point) float64 {
	return v.X*w.X + v.Y*w.Y
}

// DistanceSquared returns |v-w|².
func DistanceSquared(v, w Point) float64 {
	dx := v.X - w.X
	dy := v.Y - w.Y
	return dx*dx + dy*dy
}

// Distance returns |v-w|.
func Distance(v, w Point) float64 {
	return math.Sqrt(DistanceSquared(v, w))
}

// ProjectOntoSegment returns the point of segment [v,w] closest to p.
// When v == w the segment collapses to w.
func ProjectOntoSegment(p, v, w Point) Point {
	l2 := DistanceSquared(v, w)
	if l2 == 0 {
		return w
	}
	d := w.Sub(v)
	t := Dot(p.Sub(v), d) / l2
	t = math.Max(0, math.Min(1, t))
	return v.Add(d.Scale(t))
}

// MinDistanceSquaredPointSegment returns the squared distance from p to
// segment [v,w].
func MinDistanceSquaredPointSegment(p, v, w Point) float64 {
	return DistanceSquared(p, ProjectOntoSegment(p, v, w))
}

// MinDistancePointSegment is the square root of
// MinDistanceSquaredPointSegment.
func MinDistancePointSegment(p, v, w Point) float64 {
	return math.Sqrt(MinDistanceSquaredPointSegment(p, v, w))
}

// Edges returns the polygon boundary as segments, including the closing
// edge when the last vertex does not already repeat the first.
func (poly Polygon) Edges() []Segment {
	n := len(poly)
	switch n {
	case 0:
		return nil
	case 1:
		return []Segment{{poly[0], poly[0]}}
	}
	edges := make([]Segment, 0, n)
	for i := 0; i < n-1; i++ {
		edges = append(edges, Segment{poly[i], poly[i+1]})
	}
	if n > 2 && poly[n-1] != poly[0] {
		edges = append(edges, Segment{poly[n-1], poly[0]})
	}
	return edges
}

// MinDistanceSquaredSegmentPolygon returns the squared minimum distance
// between a segment and a polygon boundary. Both segment endpoints are
// measured against every edge and every vertex against the segment, so an
// edge-interior minimum is found. Intersection is not detected here; use
// PolygonsIntersect first.
func MinDistanceSquaredSegmentPolygon(s Segment, poly Polygon) float64 {
	best := math.Inf(1)
	for _, e := range poly.Edges() {
		best = math.Min(best, MinDistanceSquaredPointSegment(s.A, e.A, e.B))
		best = math.Min(best, MinDistanceSquaredPointSegment(s.B, e.A, e.B))
	}
	for _, p := range poly {
		best = math.Min(best, MinDistanceSquaredPointSegment(p, s.A, s.B))
	}
	return best
}

// MinDistanceSquaredPolygonPolygon returns the squared minimum distance
// between two polygon boundaries over every (vertex, edge) pairing in both
// directions.
func MinDistanceSquaredPolygonPolygon(a, b Polygon) float64 {
	best := math.Inf(1)
	for _, e := range b.Edges() {
		for _, p := range a {
			best = math.Min(best, MinDistanceSquaredPointSegment(p, e.A, e.B))
		}
	}
	for _, e := range a.Edges() {
		for _, p := range b {
			best = math.Min(best, MinDistanceSquaredPointSegment(p, e.A, e.B))
		}
	}
	return best
}

// PolygonsIntersect reports whether two convex polygons overlap, using the
// separating-axis theorem over the edge normals of both polygons. With
// closed set, the last-to-first edge also contributes a normal; pass false
// to treat a two-point list as one open segment. Touching counts as
// intersecting.
func PolygonsIntersect(a, b Polygon, closed bool) bool {
	for _, poly := range [2]Polygon{a, b} {
		n := len(poly)
		edges := n - 1
		if closed {
			edges = n
		}
		for i := 0; i < edges; i++ {
			p1 := poly[i]
			p2 := poly[(i+1)%n]
			normal := Point{X: p2.Y - p1.Y, Y: p1.X - p2.X}

			minA, maxA := project(a, normal)
			minB, maxB := project(b, normal)
			if maxA < minB || maxB < minA {
				return false
			}
		}
	}
	return true
}

func project(poly Polygon, axis Point) (lo, hi float64) {
	lo, hi = math.Inf(1), math.Inf(-1)
	for _, p := range poly {
		d := Dot(p, axis)
		lo = math.Min(lo, d)
		hi = math.Max(hi, d)
	}
	return lo, hi
}
