// Package geom provides the 2D geometry core of the traffic simulator:
// heading normalization, front-bumper/centroid frame conversion, oriented
// bounding box construction, and polygon distance queries in scalar and
// batched forms.
//
// All functions are pure and safe for concurrent use. Points are
// gonum spatial/r2 vectors; callers holding higher-dimensional positions
// project onto the road plane before crossing this API boundary.
package geom

import (
	"math"
	"strconv"
	"strings"
)

// NormalizeAngle reduces an angle in degrees to the canonical [0, 360)
// range. Negative inputs map into the positive range (-90 -> 270) and
// exact multiples of 360 normalize to 0.
func NormalizeAngle(deg float64) (float64, error) {
	if err := checkFinite("angle", deg); err != nil {
		return 0, err
	}
	a := math.Mod(deg, 360)
	if a < 0 {
		a += 360
	}
	// Tiny negative inputs can round a+360 back up to exactly 360.
	if a == 360 {
		a = 0
	}
	return a, nil
}

// NormalizeAngleHalf reduces an angle in degrees to the signed
// [-180, 180) range (270 -> -90). The result differs from
// NormalizeAngle by exactly 0 or 360.
func NormalizeAngleHalf(deg float64) (float64, error) {
	a, err := NormalizeAngle(deg + 180)
	if err != nil {
		return 0, err
	}
	return a - 180, nil
}

// DecimalPlaces reports the number of significant decimal places of x,
// capped at ten. DecimalPlaces(0.05) == 2, DecimalPlaces(1.0) == 0.
func DecimalPlaces(x float64) int {
	s := strings.TrimRight(strconv.FormatFloat(x, 'f', 10, 64), "0")
	if i := strings.IndexByte(s, '.'); i >= 0 {
		return len(s) - i - 1
	}
	return 0
}

// RoundToReference rounds value to the decimal precision of a reference
// step, e.g. RoundToReference(-2*0.2, 0.2) == -0.4. Scenario tooling uses
// it to snap tick-derived positions back onto their step grid.
func RoundToReference(value, reference float64) float64 {
	scale := math.Pow(10, float64(DecimalPlaces(reference)))
	return math.Round(value*scale) / scale
}
