package geom

import (
	"fmt"
	"sort"

	"gonum.org/v1/gonum/spatial/r2"
)

// KeyedDistance pairs a collection key with its computed distance.
type KeyedDistance struct {
	Key      string
	Distance float64
}

// PolygonDistances computes the distance from reference to every polygon
// in targets and returns the results sorted ascending by distance. Equal
// distances keep the targets' insertion order (stable sort), so repeated
// runs over the same set are reproducible.
func PolygonDistances(reference Polygon, targets *PolygonSet) ([]KeyedDistance, error) {
	if err := reference.Validate(); err != nil {
		return nil, fmt.Errorf("reference: %w", err)
	}
	if targets == nil {
		return nil, nil
	}

	out := make([]KeyedDistance, 0, targets.Len())
	for _, key := range targets.Keys() {
		poly, _ := targets.Get(key)
		d, err := PolygonDistance(reference, poly)
		if err != nil {
			return nil, fmt.Errorf("target %q: %w", key, err)
		}
		out = append(out, KeyedDistance{Key: key, Distance: d})
	}

	sort.SliceStable(out, func(i, j int) bool { return out[i].Distance < out[j].Distance })
	return out, nil
}

// batchShape is the call shape of an OBBDistances invocation, resolved
// once per call from the operand lengths.
type batchShape int

const (
	shapePaired         batchShape = iota // equal lengths, element-wise
	shapeBroadcastLeft                    // left is the singleton
	shapeBroadcastRight                   // right is the singleton
)

func resolveShape(nLeft, nRight int) (batchShape, error) {
	switch {
	case nLeft == 0 || nRight == 0:
		return 0, fmt.Errorf("%w: empty operand (%d and %d polygons)", ErrShapeMismatch, nLeft, nRight)
	case nLeft == nRight:
		return shapePaired, nil
	case nLeft == 1:
		return shapeBroadcastLeft, nil
	case nRight == 1:
		return shapeBroadcastRight, nil
	default:
		return 0, fmt.Errorf("%w: %d vs %d polygons, lengths must match or one side must be a single polygon",
			ErrShapeMismatch, nLeft, nRight)
	}
}

// OBBDistances computes polygon distances over one of three call shapes:
//
//   - paired: len(left) == len(right), result[i] = distance(left[i], right[i]);
//   - broadcast: exactly one side holds a single polygon, which is compared
//     against every element of the other side; the result is aligned with
//     the longer side. The singleton may sit on either side.
//
// Any other length combination is a shape error. A single pair is just
// PolygonDistance.
func OBBDistances(left, right []Polygon) ([]float64, error) {
	shape, err := resolveShape(len(left), len(right))
	if err != nil {
		return nil, err
	}

	switch shape {
	case shapePaired:
		return pairedDistances(left, right)
	case shapeBroadcastLeft:
		return broadcastDistances(left[0], right)
	default:
		return broadcastDistances(right[0], left)
	}
}

func pairedDistances(left, right []Polygon) ([]float64, error) {
	out := make([]float64, len(left))
	for i := range left {
		d, err := PolygonDistance(left[i], right[i])
		if err != nil {
			return nil, fmt.Errorf("pair %d: %w", i, err)
		}
		out[i] = d
	}
	return out, nil
}

func broadcastDistances(single Polygon, many []Polygon) ([]float64, error) {
	out := make([]float64, len(many))
	for i := range many {
		d, err := PolygonDistance(single, many[i])
		if err != nil {
			return nil, fmt.Errorf("element %d: %w", i, err)
		}
		out[i] = d
	}
	return out, nil
}

// FilterPointsInRadius retains the entries of points whose squared planar
// distance to origin is at most (radius+margin)^2. It is a cheap O(N)
// pre-filter over centroids: no square root, and the output is a superset
// of the true polygon-distance candidates, to be refined with
// PolygonDistance or OBBDistances. Insertion order is preserved.
//
// A radius of exactly 0 is valid and keeps only exact-origin matches.
// Negative radius or margin is an error, never coerced.
func FilterPointsInRadius(origin r2.Vec, points *PointSet, radius, margin float64) (*PointSet, error) {
	if err := checkFinite("origin.x", origin.X); err != nil {
		return nil, err
	}
	if err := checkFinite("origin.y", origin.Y); err != nil {
		return nil, err
	}
	if err := checkFinite("radius", radius); err != nil {
		return nil, err
	}
	if err := checkFinite("margin", margin); err != nil {
		return nil, err
	}
	if radius < 0 {
		return nil, fmt.Errorf("%w: radius %v", ErrInvalidRadius, radius)
	}
	if margin < 0 {
		return nil, fmt.Errorf("%w: margin %v", ErrInvalidRadius, margin)
	}

	reach := radius + margin
	reachSq := reach * reach

	out := NewPointSet()
	if points == nil {
		return out, nil
	}
	points.Each(func(key string, p r2.Vec) {
		if r2.Norm2(r2.Sub(p, origin)) <= reachSq {
			out.Add(key, p)
		}
	})
	return out, nil
}
