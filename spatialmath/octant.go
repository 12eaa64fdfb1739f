package spatialmath

import "github.com/golang/geo/r3"

// Octants are numbered with one bit per axis, x being the most significant: a bit is set when
// the coordinate lies on the positive side (>=) of the centre.
//
//	0 ---   1 --+   2 -+-   3 -++
//	4 +--   5 +-+   6 ++-   7 +++
const (
	octantX = 4
	octantY = 2
	octantZ = 1
)

// Octant returns the index of the octant around centre that contains p.
func Octant(p, centre r3.Vector) int {
	i := 0
	if p.X >= centre.X {
		i |= octantX
	}
	if p.Y >= centre.Y {
		i |= octantY
	}
	if p.Z >= centre.Z {
		i |= octantZ
	}
	return i
}

// OctantSigns returns a vector of -1/+1 components describing octant i.
func OctantSigns(i int) r3.Vector {
	sign := func(bit int) float64 {
		if i&bit != 0 {
			return 1
		}
		return -1
	}
	return r3.Vector{X: sign(octantX), Y: sign(octantY), Z: sign(octantZ)}
}

// OctantCorners returns the eight corners of the cube of the given half-size around centre, in
// octant order.
func OctantCorners(centre r3.Vector, halfSize float64) [8]r3.Vector {
	var corners [8]r3.Vector
	for i := range corners {
		corners[i] = centre.Add(OctantSigns(i).Mul(halfSize))
	}
	return corners
}

// OctantHasNegative reports whether octant i lies on the negative side of any of the axes
// selected by the mask (built from the X, Y and Z bits).
func OctantHasNegative(i, mask int) bool {
	return ^i&mask != 0
}

// Axis masks usable with OctantHasNegative.
const (
	AxisX = octantX
	AxisY = octantY
	AxisZ = octantZ
)
