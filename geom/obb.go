package geom

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/spatial/r2"
)

// NewOBB builds the oriented bounding box of a vehicle as a four-corner
// polygon: centered at (x, y), longitudinal extent length along the
// heading, lateral extent width across it, rotated angleDeg degrees
// counter-clockwise about the centroid. At heading 0 the box spans
// [x-length/2, x+length/2] x [y-width/2, y+width/2].
//
// Corners are ordered front-left, front-right, rear-right, rear-left, so
// the polygon is simple for every heading.
func NewOBB(x, y, width, length, angleDeg float64) (Polygon, error) {
	for _, arg := range []struct {
		name string
		v    float64
	}{
		{"x", x}, {"y", y}, {"width", width}, {"length", length}, {"angle", angleDeg},
	} {
		if err := checkFinite(arg.name, arg.v); err != nil {
			return nil, err
		}
	}
	if width <= 0 {
		return nil, fmt.Errorf("%w: width %v", ErrInvalidDimension, width)
	}
	if length <= 0 {
		return nil, fmt.Errorf("%w: length %v", ErrInvalidDimension, length)
	}

	halfL, halfW := length/2, width/2
	local := [4]r2.Vec{
		{X: halfL, Y: halfW},
		{X: halfL, Y: -halfW},
		{X: -halfL, Y: -halfW},
		{X: -halfL, Y: halfW},
	}

	center := r2.Vec{X: x, Y: y}
	rad := angleDeg * math.Pi / 180
	poly := make(Polygon, 0, 4)
	for _, c := range local {
		poly = append(poly, r2.Add(r2.Rotate(c, rad, r2.Vec{}), center))
	}
	return poly, nil
}

// BoundingMargin returns the half-diagonal of a length x width box: the
// worst-case distance from centroid to corner over all headings. Callers
// use it to grow a pre-filter radius into a heading-independent bounding
// circle.
func BoundingMargin(length, width float64) float64 {
	return math.Hypot(length/2, width/2)
}
