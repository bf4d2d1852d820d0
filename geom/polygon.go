package geom

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/spatial/r2"
)

// Polygon is a simple closed polygon given as an ordered vertex list.
// The closing edge from the last vertex back to the first is implicit.
// Self-intersection is neither assumed nor validated.
type Polygon []r2.Vec

// Validate checks the structural invariants the distance engine relies
// on: at least three vertices, all of them finite.
func (p Polygon) Validate() error {
	if len(p) < 3 {
		return fmt.Errorf("%w: %d vertices, need at least 3", ErrMalformedPolygon, len(p))
	}
	for i, v := range p {
		if math.IsNaN(v.X) || math.IsInf(v.X, 0) || math.IsNaN(v.Y) || math.IsInf(v.Y, 0) {
			return fmt.Errorf("%w: vertex %d is (%v, %v)", ErrMalformedPolygon, i, v.X, v.Y)
		}
	}
	return nil
}

// Bounds returns the axis-aligned bounding box of the polygon.
func (p Polygon) Bounds() r2.Box {
	if len(p) == 0 {
		return r2.Box{}
	}
	box := r2.Box{Min: p[0], Max: p[0]}
	for _, v := range p[1:] {
		box.Min.X = math.Min(box.Min.X, v.X)
		box.Min.Y = math.Min(box.Min.Y, v.Y)
		box.Max.X = math.Max(box.Max.X, v.X)
		box.Max.Y = math.Max(box.Max.Y, v.Y)
	}
	return box
}

// Centroid returns the vertex average. For the rectangles produced by
// NewOBB this coincides with the geometric center.
func (p Polygon) Centroid() r2.Vec {
	var sum r2.Vec
	for _, v := range p {
		sum = r2.Add(sum, v)
	}
	return r2.Scale(1/float64(len(p)), sum)
}

// PolygonDistance returns the minimum Euclidean separation between two
// simple polygons. The result is 0 exactly when the polygons touch or
// overlap (crossing boundaries or one containing the other), and the
// minimum over all edge-pair segment distances otherwise.
func PolygonDistance(a, b Polygon) (float64, error) {
	if err := a.Validate(); err != nil {
		return 0, err
	}
	if err := b.Validate(); err != nil {
		return 0, err
	}

	// Containment without boundary contact: any single vertex decides.
	if pointInPolygon(a[0], b) || pointInPolygon(b[0], a) {
		return 0, nil
	}

	min := math.Inf(1)
	for i := range a {
		a1, a2 := a[i], a[(i+1)%len(a)]
		for j := range b {
			d := segmentDistance(a1, a2, b[j], b[(j+1)%len(b)])
			if d < min {
				min = d
				if min == 0 {
					return 0, nil
				}
			}
		}
	}
	return min, nil
}

// pointInPolygon reports whether p lies strictly inside the polygon,
// using the even-odd ray crossing rule. Points on the boundary are
// resolved by the segment distance pass instead.
func pointInPolygon(p r2.Vec, poly Polygon) bool {
	inside := false
	for i := range poly {
		v0, v1 := poly[i], poly[(i+1)%len(poly)]
		if (v0.Y <= p.Y && p.Y < v1.Y) || (v1.Y <= p.Y && p.Y < v0.Y) {
			x := v0.X + (p.Y-v0.Y)*(v1.X-v0.X)/(v1.Y-v0.Y)
			if x > p.X {
				inside = !inside
			}
		}
	}
	return inside
}

// segmentDistance returns the minimum distance between segments ab and cd,
// 0 if they intersect.
func segmentDistance(a, b, c, d r2.Vec) float64 {
	if segmentsIntersect(a, b, c, d) {
		return 0
	}
	return math.Min(
		math.Min(pointSegmentDistance(a, c, d), pointSegmentDistance(b, c, d)),
		math.Min(pointSegmentDistance(c, a, b), pointSegmentDistance(d, a, b)),
	)
}

// pointSegmentDistance returns the distance from p to segment vw by
// clamping the projection of p onto the segment's supporting line.
func pointSegmentDistance(p, v, w r2.Vec) float64 {
	seg := r2.Sub(w, v)
	l2 := r2.Norm2(seg)
	if l2 == 0 {
		return r2.Norm(r2.Sub(p, v))
	}
	t := r2.Dot(r2.Sub(p, v), seg) / l2
	if t < 0 {
		t = 0
	} else if t > 1 {
		t = 1
	}
	return r2.Norm(r2.Sub(p, r2.Add(v, r2.Scale(t, seg))))
}

// segmentsIntersect reports whether segments ab and cd share a point,
// including collinear overlap and endpoint touches.
func segmentsIntersect(a, b, c, d r2.Vec) bool {
	o1 := orientation(a, b, c)
	o2 := orientation(a, b, d)
	o3 := orientation(c, d, a)
	o4 := orientation(c, d, b)

	if o1 != o2 && o3 != o4 {
		return true
	}

	// Collinear cases: an endpoint lies within the other segment's span.
	return (o1 == 0 && onSegment(a, b, c)) ||
		(o2 == 0 && onSegment(a, b, d)) ||
		(o3 == 0 && onSegment(c, d, a)) ||
		(o4 == 0 && onSegment(c, d, b))
}

// orientation returns the sign of the cross product (b-a) x (c-a):
// +1 counter-clockwise, -1 clockwise, 0 collinear.
func orientation(a, b, c r2.Vec) int {
	cross := r2.Cross(r2.Sub(b, a), r2.Sub(c, a))
	switch {
	case cross > 0:
		return 1
	case cross < 0:
		return -1
	default:
		return 0
	}
}

// onSegment reports whether collinear point p lies within segment ab's
// bounding span.
func onSegment(a, b, p r2.Vec) bool {
	return math.Min(a.X, b.X) <= p.X && p.X <= math.Max(a.X, b.X) &&
		math.Min(a.Y, b.Y) <= p.Y && p.Y <= math.Max(a.Y, b.Y)
}
