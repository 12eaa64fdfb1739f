package spatialmath

import (
	"math"
	"testing"

	"github.com/golang/geo/r3"
	"go.viam.com/test"
)

func TestSphericalTriangle(t *testing.T) {
	tri := NewSphericalTriangle(r3.Vector{X: 1}, r3.Vector{Y: 1}, r3.Vector{Z: 1})

	t.Run("area", func(t *testing.T) {
		// one octant of the unit sphere
		test.That(t, tri.Area(SphericalArea), test.ShouldAlmostEqual, math.Pi/2, 1e-9)
		test.That(t, tri.Area(PlanarArea), test.ShouldAlmostEqual, math.Sqrt(3)/2, 1e-9)
		test.That(t, tri.Area(""), test.ShouldAlmostEqual, math.Pi/2, 1e-9)
	})

	t.Run("centroid", func(t *testing.T) {
		c := tri.Centroid()
		test.That(t, c.Norm(), test.ShouldAlmostEqual, 1, 1e-12)
		test.That(t, c.X, test.ShouldAlmostEqual, 1/math.Sqrt(3), 1e-12)
	})

	t.Run("midpoints", func(t *testing.T) {
		mids := tri.Midpoints()
		test.That(t, R3VectorAlmostEqual(mids[0], r3.Vector{X: 1, Y: 1}.Normalize(), 1e-12), test.ShouldBeTrue)
		test.That(t, R3VectorAlmostEqual(mids[1], r3.Vector{Y: 1, Z: 1}.Normalize(), 1e-12), test.ShouldBeTrue)
		test.That(t, R3VectorAlmostEqual(mids[2], r3.Vector{Z: 1, X: 1}.Normalize(), 1e-12), test.ShouldBeTrue)
	})

	for _, policy := range []AreaPolicy{SphericalArea, PlanarArea} {
		t.Run("weights "+string(policy), func(t *testing.T) {
			for i, p := range tri.Points() {
				w := tri.Weights(p, policy)
				for j := range w {
					if i == j {
						test.That(t, w[j], test.ShouldAlmostEqual, 1, 1e-9)
					} else {
						test.That(t, w[j], test.ShouldAlmostEqual, 0, 1e-9)
					}
				}
			}

			w := tri.Weights(tri.Centroid(), policy)
			for j := range w {
				test.That(t, w[j], test.ShouldAlmostEqual, 1./3, 1e-9)
			}

			// on the edge p0p1 the opposite vertex has no say
			w = tri.Weights(GeodesicMidpoint(r3.Vector{X: 1}, r3.Vector{Y: 1}), policy)
			test.That(t, w[2], test.ShouldAlmostEqual, 0, 1e-6)
			test.That(t, w[0], test.ShouldAlmostEqual, w[1], 1e-6)
		})
	}

	t.Run("planar weights agree across a shared edge", func(t *testing.T) {
		upper := NewSphericalTriangle(r3.Vector{Z: 1}, r3.Vector{X: 1}, r3.Vector{Y: 1})
		lower := NewSphericalTriangle(r3.Vector{Z: -1}, r3.Vector{X: 1}, r3.Vector{Y: 1})
		onEdge := r3.Vector{X: 1, Y: 0.3}.Normalize()
		for _, policy := range []AreaPolicy{SphericalArea, PlanarArea} {
			wu := upper.Weights(onEdge, policy)
			wl := lower.Weights(onEdge, policy)
			test.That(t, wu[0], test.ShouldAlmostEqual, 0, 1e-9)
			test.That(t, wl[0], test.ShouldAlmostEqual, 0, 1e-9)
			test.That(t, wu[1], test.ShouldAlmostEqual, wl[1], 1e-9)
			test.That(t, wu[2], test.ShouldAlmostEqual, wl[2], 1e-9)

			// just above and just below the edge
			above := upper.Weights(r3.Vector{X: 1, Y: 0.3, Z: 1e-9}, policy)
			below := lower.Weights(r3.Vector{X: 1, Y: 0.3, Z: -1e-9}, policy)
			for i := range above {
				test.That(t, above[i], test.ShouldAlmostEqual, below[i], 1e-6)
			}
		}

		// planar weights are barycentric: they reproduce the projected point
		w := upper.Weights(onEdge, PlanarArea)
		pts := upper.Points()
		q := pts[0].Mul(w[0]).Add(pts[1].Mul(w[1])).Add(pts[2].Mul(w[2]))
		test.That(t, R3VectorAlmostEqual(q.Normalize(), onEdge, 1e-9), test.ShouldBeTrue)
	})

	t.Run("degenerate triangle snaps to nearest vertex", func(t *testing.T) {
		flat := NewSphericalTriangle(r3.Vector{X: 1}, r3.Vector{X: 1}, r3.Vector{X: 1})
		for _, policy := range []AreaPolicy{SphericalArea, PlanarArea} {
			w := flat.Weights(r3.Vector{X: 1, Y: 0.01}, policy)
			test.That(t, w[0]+w[1]+w[2], test.ShouldAlmostEqual, 1, 1e-12)
			test.That(t, w[0], test.ShouldEqual, 1)
		}
	})

	t.Run("policy validation", func(t *testing.T) {
		test.That(t, SphericalArea.Validate(), test.ShouldBeNil)
		test.That(t, PlanarArea.Validate(), test.ShouldBeNil)
		test.That(t, AreaPolicy("hyperbolic").Validate(), test.ShouldBeError, `unknown area policy "hyperbolic"`)
	})
}

func TestSolveBasis(t *testing.T) {
	m0 := r3.Vector{X: 1}
	m1 := r3.Vector{Y: 1}
	m2 := r3.Vector{X: 1, Y: 1, Z: 1}

	x, err := SolveBasis(m0, m1, m2, r3.Vector{X: 2, Y: 3, Z: 1})
	test.That(t, err, test.ShouldBeNil)
	test.That(t, R3VectorAlmostEqual(x, r3.Vector{X: 1, Y: 2, Z: 1}, 1e-12), test.ShouldBeTrue)

	x, err = SolveBasis(m0, m0, m1, r3.Vector{Z: 1})
	test.That(t, err, test.ShouldNotBeNil)
	test.That(t, err.Error(), test.ShouldContainSubstring, "singular")
	test.That(t, x, test.ShouldResemble, r3.Vector{})

	_, err = SolveBasis(m0, m1, m0.Add(m1), r3.Vector{Z: 1})
	test.That(t, err, test.ShouldNotBeNil)
}
