package spatialmath

import (
	"math"

	"github.com/golang/geo/r3"
	"github.com/golang/geo/s2"
	"github.com/pkg/errors"
	"gonum.org/v1/gonum/mat"
)

// AreaPolicy selects how the area of a triangle on the unit sphere is measured when it is used
// as an interpolation weight.
type AreaPolicy string

const (
	// SphericalArea measures the exact area of the spherical triangle (its spherical excess).
	SphericalArea AreaPolicy = "spherical"
	// PlanarArea measures the flat triangle spanned by the three vertices.
	PlanarArea AreaPolicy = "planar"
)

// minWeightSum is the area sum below which a query is snapped to its nearest vertex.
const minWeightSum = 1e-14

// Validate returns an error if the policy is not one of the known policies.
func (p AreaPolicy) Validate() error {
	switch p {
	case SphericalArea, PlanarArea:
		return nil
	default:
		return errors.Errorf("unknown area policy %q", string(p))
	}
}

// Area returns the area of the triangle abc under the policy. An empty policy is spherical.
func (p AreaPolicy) Area(a, b, c r3.Vector) float64 {
	if p == PlanarArea {
		return PlanarTriangleArea(a, b, c)
	}
	return SphericalTriangleArea(a, b, c)
}

// SphericalTriangleArea returns the area of the spherical triangle with unit-length vertices a, b
// and c on the unit sphere.
func SphericalTriangleArea(a, b, c r3.Vector) float64 {
	return s2.PointArea(s2.Point{Vector: a}, s2.Point{Vector: b}, s2.Point{Vector: c})
}

// PlanarTriangleArea returns the area of the flat triangle abc.
func PlanarTriangleArea(a, b, c r3.Vector) float64 {
	return 0.5 * b.Sub(a).Cross(c.Sub(a)).Norm()
}

// SphericalTriangle is a triangle on the unit sphere described by three unit directions.
type SphericalTriangle struct {
	p0 r3.Vector
	p1 r3.Vector
	p2 r3.Vector
}

// NewSphericalTriangle builds a triangle from three directions, normalizing each of them.
func NewSphericalTriangle(p0, p1, p2 r3.Vector) *SphericalTriangle {
	return &SphericalTriangle{p0: p0.Normalize(), p1: p1.Normalize(), p2: p2.Normalize()}
}

// Points returns the three vertices in order.
func (t *SphericalTriangle) Points() []r3.Vector {
	return []r3.Vector{t.p0, t.p1, t.p2}
}

// Centroid returns the normalized sum of the vertices.
func (t *SphericalTriangle) Centroid() r3.Vector {
	return t.p0.Add(t.p1).Add(t.p2).Normalize()
}

// Area returns the area of the triangle under the given policy.
func (t *SphericalTriangle) Area(policy AreaPolicy) float64 {
	return policy.Area(t.p0, t.p1, t.p2)
}

// Midpoints returns the geodesic midpoints of the edges p0p1, p1p2 and p2p0.
func (t *SphericalTriangle) Midpoints() [3]r3.Vector {
	return [3]r3.Vector{
		GeodesicMidpoint(t.p0, t.p1),
		GeodesicMidpoint(t.p1, t.p2),
		GeodesicMidpoint(t.p2, t.p0),
	}
}

// Weights returns the normalized interpolation weights of v against the three vertices. Each
// weight is the area of the sub-triangle opposite its vertex. Under the planar policy v is first
// projected from the sphere centre onto the plane of the vertices, which makes the weights
// barycentric and keeps them continuous across shared edges. When every sub-triangle is
// degenerate the whole weight goes to the vertex closest to v.
func (t *SphericalTriangle) Weights(v r3.Vector, policy AreaPolicy) [3]float64 {
	v = v.Normalize()
	if policy == PlanarArea {
		projected, ok := t.projectToPlane(v)
		if !ok {
			return t.snap(v)
		}
		v = projected
	}
	w := [3]float64{
		policy.Area(t.p1, t.p2, v),
		policy.Area(t.p0, t.p2, v),
		policy.Area(t.p1, t.p0, v),
	}
	sum := w[0] + w[1] + w[2]
	if sum < minWeightSum || math.IsNaN(sum) {
		return t.snap(v)
	}
	for i := range w {
		w[i] /= sum
	}
	return w
}

// projectToPlane scales v along its ray until it meets the plane through the vertices. It fails
// for a flat triangle or a ray parallel to the plane.
func (t *SphericalTriangle) projectToPlane(v r3.Vector) (r3.Vector, bool) {
	n := t.p1.Sub(t.p0).Cross(t.p2.Sub(t.p0))
	denom := n.Dot(v)
	if n.Norm2() < minWeightSum || math.Abs(denom) < minWeightSum {
		return r3.Vector{}, false
	}
	return v.Mul(n.Dot(t.p0) / denom), true
}

func (t *SphericalTriangle) snap(v r3.Vector) [3]float64 {
	var snapped [3]float64
	snapped[t.NearestVertex(v)] = 1
	return snapped
}

// NearestVertex returns the index of the vertex with the smallest angular distance to v.
func (t *SphericalTriangle) NearestVertex(v r3.Vector) int {
	best := 0
	bestDot := math.Inf(-1)
	for i, p := range t.Points() {
		if d := p.Dot(v); d > bestDot {
			best, bestDot = i, d
		}
	}
	return best
}

// GeodesicMidpoint returns the point halfway along the great-circle arc from a to b.
func GeodesicMidpoint(a, b r3.Vector) r3.Vector {
	return a.Add(b).Normalize()
}

// SolveBasis returns the coefficients x such that x.X*m0 + x.Y*m1 + x.Z*m2 = v. It fails when the
// basis is singular or too badly conditioned for the solution to mean anything.
func SolveBasis(m0, m1, m2, v r3.Vector) (r3.Vector, error) {
	a := mat.NewDense(3, 3, []float64{
		m0.X, m1.X, m2.X,
		m0.Y, m1.Y, m2.Y,
		m0.Z, m1.Z, m2.Z,
	})
	b := mat.NewVecDense(3, []float64{v.X, v.Y, v.Z})
	var x mat.VecDense
	if err := x.SolveVec(a, b); err != nil {
		var cond mat.Condition
		if errors.As(err, &cond) {
			return r3.Vector{}, errors.Errorf("triangle basis is singular (condition number %g)", float64(cond))
		}
		return r3.Vector{}, errors.Wrap(err, "cannot solve for triangle coefficients")
	}
	return r3.Vector{X: x.AtVec(0), Y: x.AtVec(1), Z: x.AtVec(2)}, nil
}
