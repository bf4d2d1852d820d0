package geom_test

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/spatial/r2"

	"github.com/signalsfoundry/traffic-simulator/geom"
)

func TestCenterFromFront(t *testing.T) {
	cases := []struct {
		name     string
		front    r2.Vec
		length   float64
		angleDeg float64
		want     r2.Vec
	}{
		{
			name:   "pointing right",
			front:  r2.Vec{X: 100, Y: 50},
			length: 5, angleDeg: 0,
			want: r2.Vec{X: 97.5, Y: 50},
		},
		{
			name:   "pointing up",
			front:  r2.Vec{X: 100, Y: 50},
			length: 5, angleDeg: 90,
			want: r2.Vec{X: 100, Y: 47.5},
		},
		{
			name:   "pointing left",
			front:  r2.Vec{X: 0, Y: 0},
			length: 4, angleDeg: 180,
			want: r2.Vec{X: 2, Y: 0},
		},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			got, err := geom.CenterFromFront(c.front, c.length, c.angleDeg)
			require.NoError(t, err)
			assert.InDelta(t, c.want.X, got.X, 1e-9)
			assert.InDelta(t, c.want.Y, got.Y, 1e-9)
		})
	}
}

func TestFrontFromCenter(t *testing.T) {
	got, err := geom.FrontFromCenter(r2.Vec{X: 97.5, Y: 50}, 5, 0)
	require.NoError(t, err)
	assert.InDelta(t, 100, got.X, 1e-9)
	assert.InDelta(t, 50, got.Y, 1e-9)

	got, err = geom.FrontFromCenter(r2.Vec{X: 100, Y: 47.5}, 5, 90)
	require.NoError(t, err)
	assert.InDelta(t, 100, got.X, 1e-9)
	assert.InDelta(t, 50, got.Y, 1e-9)
}

func TestFrameRoundTrip(t *testing.T) {
	// FrontFromCenter(CenterFromFront(p)) == p for matching length/heading.
	fronts := []r2.Vec{{X: 0, Y: 0}, {X: 100, Y: 50}, {X: -12.5, Y: 3.75}}
	for _, front := range fronts {
		for _, angle := range []float64{0, 30, 90, 133.7, 180, 270, -45} {
			for _, length := range []float64{1, 4.2, 12} {
				center, err := geom.CenterFromFront(front, length, angle)
				require.NoError(t, err)
				back, err := geom.FrontFromCenter(center, length, angle)
				require.NoError(t, err)

				assert.InDelta(t, front.X, back.X, 1e-9, "x round trip angle=%v length=%v", angle, length)
				assert.InDelta(t, front.Y, back.Y, 1e-9, "y round trip angle=%v length=%v", angle, length)
			}
		}
	}
}

func TestFrameConversionRejectsNonFinite(t *testing.T) {
	_, err := geom.CenterFromFront(r2.Vec{X: math.NaN(), Y: 0}, 5, 0)
	assert.ErrorIs(t, err, geom.ErrNonFinite)

	_, err = geom.CenterFromFront(r2.Vec{X: 0, Y: 0}, math.Inf(1), 0)
	assert.ErrorIs(t, err, geom.ErrNonFinite)

	_, err = geom.FrontFromCenter(r2.Vec{X: 0, Y: 0}, 5, math.NaN())
	assert.ErrorIs(t, err, geom.ErrNonFinite)
}
