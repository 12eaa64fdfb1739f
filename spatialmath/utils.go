package spatialmath

import (
	"math"

	"github.com/golang/geo/r3"
)

const floatEpsilon = 1e-9

// WrapAngle maps an angle in radians onto [-pi, pi). Angles within floatEpsilon of +pi map to -pi.
func WrapAngle(a float64) float64 {
	wrapped := math.Mod(a+math.Pi, 2*math.Pi)
	if wrapped < 0 {
		wrapped += 2 * math.Pi
	}
	wrapped -= math.Pi
	if math.Pi-wrapped < floatEpsilon {
		wrapped = -math.Pi
	}
	return wrapped
}

// AngleDistance returns the absolute difference between two angles, taking the shorter way
// around the circle.
func AngleDistance(a, b float64) float64 {
	return math.Abs(WrapAngle(a - b))
}

// R3VectorAlmostEqual returns whether two vectors are within epsilon of each other on every axis.
func R3VectorAlmostEqual(a, b r3.Vector, epsilon float64) bool {
	return math.Abs(a.X-b.X) <= epsilon && math.Abs(a.Y-b.Y) <= epsilon && math.Abs(a.Z-b.Z) <= epsilon
}
