package geom

import (
	"errors"
	"fmt"
	"math"
)

var (
	// ErrNonFinite indicates a NaN or infinite numeric input.
	ErrNonFinite = errors.New("non-finite input")
	// ErrInvalidDimension indicates a non-positive width or length.
	ErrInvalidDimension = errors.New("non-positive dimension")
	// ErrInvalidRadius indicates a negative or non-finite radius/margin.
	ErrInvalidRadius = errors.New("invalid radius")
	// ErrShapeMismatch indicates incompatible batch operand lengths.
	ErrShapeMismatch = errors.New("shape mismatch")
	// ErrMalformedPolygon indicates a polygon with too few or invalid vertices.
	ErrMalformedPolygon = errors.New("malformed polygon")
)

// checkFinite rejects NaN and ±Inf eagerly so they cannot propagate
// silently through downstream trigonometry.
func checkFinite(name string, v float64) error {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return fmt.Errorf("%w: %s is %v", ErrNonFinite, name, v)
	}
	return nil
}
