package geom_test

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/spatial/r2"

	"github.com/signalsfoundry/traffic-simulator/geom"
)

func mustOBB(t *testing.T, x, y, width, length, angleDeg float64) geom.Polygon {
	t.Helper()
	poly, err := geom.NewOBB(x, y, width, length, angleDeg)
	require.NoError(t, err)
	return poly
}

func TestPolygonDistanceSeparated(t *testing.T) {
	// Two 2x5 vehicles nose to tail, 10 m apart center to center: the
	// facing bumpers are 5 m apart.
	a := mustOBB(t, 0, 0, 2, 5, 0)
	b := mustOBB(t, 10, 0, 2, 5, 0)

	d, err := geom.PolygonDistance(a, b)
	require.NoError(t, err)
	assert.InDelta(t, 5.0, d, 1e-6)

	// Distance is symmetric.
	d2, err := geom.PolygonDistance(b, a)
	require.NoError(t, err)
	assert.InDelta(t, d, d2, 1e-12)
}

func TestPolygonDistanceOverlapping(t *testing.T) {
	a := mustOBB(t, 0, 0, 2, 5, 0)

	cases := []geom.Polygon{
		mustOBB(t, 0, 0, 2, 5, 0),   // identical
		mustOBB(t, 1, 0.5, 2, 5, 0), // partial overlap
		mustOBB(t, 0, 0, 2, 5, 45),  // crossing at an angle
		mustOBB(t, 0, 0, 1, 1, 0),   // fully contained in a
	}
	for i, b := range cases {
		d, err := geom.PolygonDistance(a, b)
		require.NoError(t, err)
		assert.Zero(t, d, "case %d", i)
	}
}

func TestPolygonDistanceContainment(t *testing.T) {
	// The small box is entirely inside the large one; no edges cross.
	outer := mustOBB(t, 0, 0, 10, 10, 0)
	inner := mustOBB(t, 0.5, -0.25, 1, 1, 30)

	d, err := geom.PolygonDistance(outer, inner)
	require.NoError(t, err)
	assert.Zero(t, d)
}

func TestPolygonDistanceTouching(t *testing.T) {
	// Boxes sharing exactly one edge touch: distance 0.
	a := mustOBB(t, 0, 0, 2, 4, 0)
	b := mustOBB(t, 4, 0, 2, 4, 0)

	d, err := geom.PolygonDistance(a, b)
	require.NoError(t, err)
	assert.Zero(t, d)
}

func TestPolygonDistanceDiagonal(t *testing.T) {
	// Unit boxes with corners (1,1)..(2,2) apart; closest approach is the
	// corner gap along the diagonal.
	a := mustOBB(t, 0.5, 0.5, 1, 1, 0)
	b := mustOBB(t, 2.5, 2.5, 1, 1, 0)

	d, err := geom.PolygonDistance(a, b)
	require.NoError(t, err)
	assert.InDelta(t, math.Sqrt2, d, 1e-9)
}

func TestPolygonDistanceRotatedPair(t *testing.T) {
	// A box rotated 90 degrees still measures from its rotated footprint:
	// a 2x5 box at (10,0) rotated 90 spans x in [9,11], so the gap from
	// the first box's nose at x=2.5 is 6.5.
	a := mustOBB(t, 0, 0, 2, 5, 0)
	b := mustOBB(t, 10, 0, 2, 5, 90)

	d, err := geom.PolygonDistance(a, b)
	require.NoError(t, err)
	assert.InDelta(t, 6.5, d, 1e-6)
}

func TestPolygonDistanceGeneralPolygons(t *testing.T) {
	// The engine accepts arbitrary simple polygons, not only rectangles.
	tri := geom.Polygon{{X: 0, Y: 0}, {X: 1, Y: 0}, {X: 0, Y: 1}}
	pent := geom.Polygon{{X: 3, Y: 0}, {X: 4, Y: 0}, {X: 4.5, Y: 1}, {X: 3.5, Y: 1.6}, {X: 3, Y: 1}}

	d, err := geom.PolygonDistance(tri, pent)
	require.NoError(t, err)
	assert.InDelta(t, 2.0, d, 1e-9) // (1,0) to (3,0)
}

func TestPolygonDistanceMalformed(t *testing.T) {
	ok := mustOBB(t, 0, 0, 2, 5, 0)

	_, err := geom.PolygonDistance(geom.Polygon{{X: 0, Y: 0}, {X: 1, Y: 1}}, ok)
	assert.ErrorIs(t, err, geom.ErrMalformedPolygon)

	_, err = geom.PolygonDistance(ok, geom.Polygon{})
	assert.ErrorIs(t, err, geom.ErrMalformedPolygon)

	bad := geom.Polygon{{X: 0, Y: 0}, {X: 1, Y: 0}, {X: math.NaN(), Y: 1}}
	_, err = geom.PolygonDistance(ok, bad)
	assert.ErrorIs(t, err, geom.ErrMalformedPolygon)
}

func TestPolygonBounds(t *testing.T) {
	p := geom.Polygon{{X: 2, Y: -1}, {X: -3, Y: 4}, {X: 0, Y: 0}}
	box := p.Bounds()
	assert.Equal(t, r2.Box{Min: r2.Vec{X: -3, Y: -1}, Max: r2.Vec{X: 2, Y: 4}}, box)
}
