package evaluator

import (
	"context"
	"math"
	"testing"

	"github.com/golang/geo/r3"
	"go.viam.com/test"

	"go.viam.com/pairmesh/logging"
	"go.viam.com/pairmesh/mesh"
)

func TestRipple(t *testing.T) {
	ctx := context.Background()
	r := Ripple{Decay: 2}

	near, err := r.Evaluate(ctx, r3.Vector{X: 1}, r3.Vector{X: 1}, 0)
	test.That(t, err, test.ShouldBeNil)
	far, err := r.Evaluate(ctx, r3.Vector{X: 5}, r3.Vector{X: 1}, 0)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, near[0], test.ShouldAlmostEqual, math.Exp(-0.5))
	test.That(t, far[0], test.ShouldBeLessThan, near[0])
	test.That(t, near[1], test.ShouldBeGreaterThan, 0)
	test.That(t, near[2], test.ShouldEqual, 0.0)

	up, err := r.Evaluate(ctx, r3.Vector{X: 1}, r3.Vector{Z: 2}, 0)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, up[0], test.ShouldAlmostEqual, 1.5*math.Exp(-0.5))
	test.That(t, up[6], test.ShouldAlmostEqual, up[0])

	origin, err := r.Evaluate(ctx, r3.Vector{}, r3.Vector{X: 1}, 0)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, origin[0], test.ShouldEqual, 1.0)
	test.That(t, origin[1], test.ShouldEqual, 0.0)

	cancelled, cancel := context.WithCancel(ctx)
	cancel()
	_, err = r.Evaluate(cancelled, r3.Vector{X: 1}, r3.Vector{X: 1}, 0)
	test.That(t, err, test.ShouldEqual, context.Canceled)
}

func TestSpike(t *testing.T) {
	s := Spike{Axis: r3.Vector{Z: 1}, Base: 1, Peak: 50}
	v, err := s.Evaluate(context.Background(), r3.Vector{}, r3.Vector{Z: 3}, 1)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, v[3], test.ShouldEqual, 50.0)
	v, err = s.Evaluate(context.Background(), r3.Vector{}, r3.Vector{Y: 0.01, Z: 1}, 1)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, v[3], test.ShouldEqual, 1.0)
}

func TestByName(t *testing.T) {
	test.That(t, Names(), test.ShouldResemble, []string{"constant", "ripple", "spike"})
	for _, name := range Names() {
		eval, err := ByName(name)
		test.That(t, err, test.ShouldBeNil)
		test.That(t, eval, test.ShouldNotBeNil)
	}
	_, err := ByName("lennard-jones")
	test.That(t, err, test.ShouldNotBeNil)
}

func TestCounterWithGrid(t *testing.T) {
	cfg := mesh.DefaultConfig()
	cfg.Symmetry = mesh.SymmetryXYZ
	cfg.ShortRange = 0
	cfg.LongRange = math.Inf(1)
	g, err := mesh.NewGrid(cfg, logging.NewTestLogger(t))
	test.That(t, err, test.ShouldBeNil)

	counter := NewCounter(Constant(mesh.Values{2, 2, 2, 2, 2, 2, 2}))
	stats, err := g.Refine(context.Background(), counter, 0.5)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, stats.Subdivisions, test.ShouldResemble, [3]int{0, 0, 0})
	test.That(t, counter.Calls(), test.ShouldEqual, int64(g.Len()))

	v, err := g.Interpolate(r3.Vector{X: 4, Y: 4, Z: 4}, r3.Vector{X: 1, Y: 2, Z: 3}, 0.7)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, v[0], test.ShouldAlmostEqual, 2)
}
