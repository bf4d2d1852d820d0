package geom_test

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/signalsfoundry/traffic-simulator/geom"
)

func TestNormalizeAngle(t *testing.T) {
	cases := []struct {
		in, want float64
	}{
		{0, 0},
		{45, 45},
		{359.5, 359.5},
		{360, 0},
		{720, 0},
		{450, 90},
		{-90, 270},
		{-360, 0},
		{-450, 270},
	}
	for _, c := range cases {
		got, err := geom.NormalizeAngle(c.in)
		require.NoError(t, err)
		assert.InDelta(t, c.want, got, 1e-12, "NormalizeAngle(%v)", c.in)
	}
}

func TestNormalizeAngleRange(t *testing.T) {
	// Result stays in [0, 360) and is congruent to the input mod 360.
	for _, a := range []float64{-1e9, -1234.5, -1e-18, 0.25, 123456.789, 1e9} {
		got, err := geom.NormalizeAngle(a)
		require.NoError(t, err)
		require.GreaterOrEqual(t, got, 0.0)
		require.Less(t, got, 360.0)

		diff := math.Mod(a-got, 360)
		if diff < 0 {
			diff += 360
		}
		if diff > 180 {
			diff -= 360
		}
		assert.InDelta(t, 0, diff, 1e-6, "NormalizeAngle(%v) not congruent", a)
	}
}

func TestNormalizeAngleHalf(t *testing.T) {
	cases := []struct {
		in, want float64
	}{
		{0, 0},
		{90, 90},
		{180, -180},
		{270, -90},
		{-90, -90},
		{-270, 90},
		{360, 0},
	}
	for _, c := range cases {
		got, err := geom.NormalizeAngleHalf(c.in)
		require.NoError(t, err)
		assert.InDelta(t, c.want, got, 1e-12, "NormalizeAngleHalf(%v)", c.in)
	}
}

func TestNormalizeAngleHalfDiffersByFullTurn(t *testing.T) {
	for _, a := range []float64{-725, -180, -45, 0, 90, 180, 271, 1000} {
		full, err := geom.NormalizeAngle(a)
		require.NoError(t, err)
		half, err := geom.NormalizeAngleHalf(a)
		require.NoError(t, err)

		require.GreaterOrEqual(t, half, -180.0)
		require.Less(t, half, 180.0)

		diff := full - half
		assert.True(t, diff == 0 || diff == 360, "angle %v: full %v half %v", a, full, half)
	}
}

func TestNormalizeAngleRejectsNonFinite(t *testing.T) {
	for _, bad := range []float64{math.NaN(), math.Inf(1), math.Inf(-1)} {
		_, err := geom.NormalizeAngle(bad)
		assert.ErrorIs(t, err, geom.ErrNonFinite)

		_, err = geom.NormalizeAngleHalf(bad)
		assert.ErrorIs(t, err, geom.ErrNonFinite)
	}
}

func TestDecimalPlaces(t *testing.T) {
	cases := []struct {
		in   float64
		want int
	}{
		{0.2, 1},
		{0.05, 2},
		{1.0, 0},
		{12.125, 3},
		{100, 0},
	}
	for _, c := range cases {
		assert.Equal(t, c.want, geom.DecimalPlaces(c.in), "DecimalPlaces(%v)", c.in)
	}
}

func TestRoundToReference(t *testing.T) {
	// -2*0.2 accumulates binary error; snapping to the step grid fixes it.
	assert.Equal(t, -0.4, geom.RoundToReference(-2*0.2, 0.2))
	assert.Equal(t, 0.15, geom.RoundToReference(3*0.05, 0.05))
	assert.Equal(t, 7.0, geom.RoundToReference(7.3, 1.0))
}
