package geom

import (
	"math"

	"gonum.org/v1/gonum/spatial/r2"
)

// headingVector returns the unit vector for a heading in degrees,
// measured counter-clockwise from the +x axis.
func headingVector(angleDeg float64) r2.Vec {
	sin, cos := math.Sincos(angleDeg * math.Pi / 180)
	return r2.Vec{X: cos, Y: sin}
}

// CenterFromFront converts a front-bumper reference point to the vehicle
// centroid: the centroid sits half a length behind the front point along
// the heading. Upstream traffic tools report vehicle positions at the
// front bumper while the OBB math works on centroids.
func CenterFromFront(front r2.Vec, length, angleDeg float64) (r2.Vec, error) {
	if err := checkFrameArgs(front, length, angleDeg); err != nil {
		return r2.Vec{}, err
	}
	return r2.Add(front, r2.Scale(-length/2, headingVector(angleDeg))), nil
}

// FrontFromCenter converts a vehicle centroid to the front-bumper
// reference point. It is the exact algebraic inverse of CenterFromFront
// for the same length and heading.
func FrontFromCenter(center r2.Vec, length, angleDeg float64) (r2.Vec, error) {
	if err := checkFrameArgs(center, length, angleDeg); err != nil {
		return r2.Vec{}, err
	}
	return r2.Add(center, r2.Scale(length/2, headingVector(angleDeg))), nil
}

func checkFrameArgs(p r2.Vec, length, angleDeg float64) error {
	if err := checkFinite("x", p.X); err != nil {
		return err
	}
	if err := checkFinite("y", p.Y); err != nil {
		return err
	}
	if err := checkFinite("length", length); err != nil {
		return err
	}
	return checkFinite("angle", angleDeg)
}
