package mesh

import (
	"context"
	"math"
	"testing"

	"github.com/golang/geo/r3"
	"github.com/pkg/errors"
	"go.viam.com/test"

	"go.viam.com/pairmesh/logging"
)

// unbounded removes the boundary regions so every configuration reaches the evaluator.
func unbounded(cfg *Config) {
	cfg.ShortRange = 0
	cfg.LongRange = math.Inf(1)
}

// poleSpike is 50 on the +z axis and 1 everywhere else.
func poleSpike(position, axis r3.Vector, angle float64) Values {
	if axis.Z > 1-1e-9 {
		return uniform(50)
	}
	return uniform(1)
}

func snapshotLeaves(g *Grid) map[string]bool {
	leaves := map[string]bool{}
	for _, n := range g.octree.nodes {
		leaves[n.id] = n.leaf
	}
	for _, qt := range g.octree.Quadtrees() {
		for _, n := range qt.nodes {
			leaves[n.id] = n.leaf
		}
		for _, bt := range qt.Bitrees() {
			for _, n := range bt.nodes {
				leaves[n.id] = n.leaf
			}
		}
	}
	return leaves
}

func TestRefineConstant(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Symmetry = SymmetryXYZ
	unbounded(&cfg)
	g, err := NewGrid(cfg, logging.NewTestLogger(t))
	test.That(t, err, test.ShouldBeNil)
	before := g.Summary()

	eval := &countingEvaluator{fn: func(position, axis r3.Vector, angle float64) Values {
		return uniform(5)
	}}
	stats, err := g.Refine(context.Background(), eval, 0.01)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, stats.Sweeps, test.ShouldResemble, [3]int{1, 1, 1})
	test.That(t, stats.Subdivisions, test.ShouldResemble, [3]int{0, 0, 0})
	test.That(t, stats.Filled, test.ShouldEqual, 27*36)
	test.That(t, eval.calls.Load(), test.ShouldEqual, int64(27*36))
	test.That(t, stats.Worst, test.ShouldBeNil)

	after := g.Summary()
	test.That(t, after.Levels, test.ShouldResemble, before.Levels)
	test.That(t, after.Filled, test.ShouldEqual, after.Configurations)

	for _, parent := range leafParents(g.octree.nodes) {
		test.That(t, parent.Error, test.ShouldAlmostEqual, 0)
	}
}

func TestRefineConstantFullDomain(t *testing.T) {
	cfg := DefaultConfig()
	test.That(t, cfg.Symmetry, test.ShouldEqual, SymmetryNone)
	// the boundary fill would store HighValues and ZeroValues, which is not a constant field
	unbounded(&cfg)
	g, err := NewGrid(cfg, logging.NewTestLogger(t))
	test.That(t, err, test.ShouldBeNil)
	test.That(t, g.Octree().Len(), test.ShouldEqual, 73)
	before := g.Summary()

	stats, err := g.Refine(context.Background(), EvaluatorFunc(func(r3.Vector, r3.Vector, float64) Values {
		return uniform(1)
	}), 0.5)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, stats.Subdivisions, test.ShouldResemble, [3]int{0, 0, 0})
	test.That(t, stats.Sweeps, test.ShouldResemble, [3]int{1, 1, 1})
	test.That(t, stats.Filled, test.ShouldEqual, 125*36)
	test.That(t, stats.MaxError, test.ShouldEqual, 0.0)

	test.That(t, g.Summary().Levels, test.ShouldResemble, before.Levels)
	for conf := range g.Configurations() {
		test.That(t, conf.Values, test.ShouldResemble, uniform(1))
	}
}

func TestRefineDiscontinuity(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Symmetry = SymmetryXYZ
	unbounded(&cfg)
	cfg.MaxDepth = MaxDepth{Position: 3, Axis: 4, Angle: 3}
	var reports []Level
	var reported []float64
	cfg.Diagnostic = func(level Level, conf *Configuration, err float64) {
		reports = append(reports, level)
		reported = append(reported, err)
		test.That(t, err, test.ShouldBeGreaterThan, 0.05)
	}
	g, err := NewGrid(cfg, logging.NewTestLogger(t))
	test.That(t, err, test.ShouldBeNil)
	before := snapshotLeaves(g)

	stats, err := g.Refine(context.Background(), EvaluatorFunc(poleSpike), 0.1)
	test.That(t, err, test.ShouldBeNil)

	// the spike only depends on the axis
	test.That(t, stats.Subdivisions[PositionLevel], test.ShouldEqual, 0)
	test.That(t, stats.Subdivisions[AngleLevel], test.ShouldEqual, 0)
	// per quadtree, the four northern root triangles split their children, then the four
	// children touching the pole split theirs, which reach the depth cap
	test.That(t, stats.Subdivisions[AxisLevel], test.ShouldEqual, 27*32)
	test.That(t, stats.Sweeps, test.ShouldResemble, [3]int{1, 3, 3})
	test.That(t, stats.MaxError, test.ShouldBeGreaterThan, 20)
	test.That(t, stats.Worst, test.ShouldNotBeNil)
	test.That(t, reports, test.ShouldNotBeEmpty)
	for _, level := range reports {
		test.That(t, level, test.ShouldEqual, AxisLevel)
	}
	// the hook only sees each new maximum, the last being the one in the stats
	for i := 1; i < len(reported); i++ {
		test.That(t, reported[i], test.ShouldBeGreaterThan, reported[i-1])
	}
	test.That(t, reported[len(reported)-1], test.ShouldEqual, stats.MaxError)

	test.That(t, g.Octree().Len(), test.ShouldEqual, 10)
	for _, qt := range g.Octree().Quadtrees() {
		for octant, tri := range qt.Root().Children() {
			if octant&1 == 0 {
				// southern triangles never see the spike
				for _, child := range tri.Children() {
					test.That(t, child.IsLeaf(), test.ShouldBeTrue)
				}
			}
		}
		deep, ok := qt.Node(qt.ID() + "7000")
		test.That(t, ok, test.ShouldBeTrue)
		test.That(t, deep.IsLeaf(), test.ShouldBeTrue)
		test.That(t, deep.Depth(), test.ShouldEqual, 4)
		for _, bt := range qt.Bitrees() {
			test.That(t, bt.Len(), test.ShouldEqual, 3)
		}
	}

	// subdivision is monotone
	after := snapshotLeaves(g)
	for id, leaf := range before {
		afterLeaf, ok := after[id]
		test.That(t, ok, test.ShouldBeTrue)
		if !leaf {
			test.That(t, afterLeaf, test.ShouldBeFalse)
		}
	}
	test.That(t, len(after), test.ShouldBeGreaterThan, len(before))

	// everything created along the way was evaluated
	for conf := range g.Configurations() {
		test.That(t, conf.Filled, test.ShouldBeTrue)
		test.That(t, conf.Values, test.ShouldResemble, poleSpike(conf.Position, conf.Axis, conf.Angle))
	}

	// a second pass has nothing left to do
	again, err := g.Refine(context.Background(), EvaluatorFunc(poleSpike), 0.1)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, again.Subdivisions, test.ShouldResemble, [3]int{0, 0, 0})
	test.That(t, again.Filled, test.ShouldEqual, 0)
}

func TestRefineEscapes(t *testing.T) {
	logger := logging.NewTestLogger(t)
	cfg := DefaultConfig()
	cfg.Symmetry = SymmetryXYZ
	g, err := NewGrid(cfg, logger)
	test.That(t, err, test.ShouldBeNil)
	r := &refiner{grid: g, cutoff: 1, logger: logger}

	inside := &Configuration{Position: r3.Vector{X: 1}, Values: uniform(3)}
	sentinel := &Configuration{Position: r3.Vector{X: 6}, Values: HighValues}
	plain := &Configuration{Position: r3.Vector{X: 6}, Values: uniform(3)}
	interp := func(*Configuration) Values { return uniform(1) }

	test.That(t, r.measure([]*Configuration{plain, inside}, nil, interp).escaped, test.ShouldBeTrue)
	test.That(t, r.measure([]*Configuration{plain, sentinel}, nil, interp).escaped, test.ShouldBeTrue)
	m := r.measure([]*Configuration{plain}, nil, interp)
	test.That(t, m.escaped, test.ShouldBeFalse)
	test.That(t, m.err, test.ShouldEqual, 2.0)
	test.That(t, m.worst, test.ShouldEqual, plain)

	shell := &Configuration{Position: r3.Vector{X: 2.55}}
	test.That(t, r.onContactShell(shell, 0.5), test.ShouldBeTrue)
	test.That(t, r.onContactShell(shell, 3), test.ShouldBeFalse)
	test.That(t, r.onContactShell(&Configuration{Position: r3.Vector{X: 6}}, 0.5), test.ShouldBeFalse)

	n := newNode[*Configuration]("escaped", nil, 2, interval{0, 1})
	test.That(t, refineNode(r, AngleLevel, n, measurement{escaped: true}, func(*BitreeNode) {}), test.ShouldEqual, 0)
	test.That(t, n.Error, test.ShouldEqual, 0.0)

	// the error never grows back
	n.Error = 0.1
	test.That(t, refineNode(r, AngleLevel, n, measurement{err: 5, worst: plain}, func(*BitreeNode) {}), test.ShouldEqual, 0)
	test.That(t, n.Error, test.ShouldEqual, 0.1)
}

func TestRefineEvaluatorError(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Symmetry = SymmetryXYZ
	g, err := NewGrid(cfg, logging.NewTestLogger(t))
	test.That(t, err, test.ShouldBeNil)
	_, err = g.Refine(context.Background(), failingEvaluator{}, 0.1)
	test.That(t, errors.Is(err, errEvaluation), test.ShouldBeTrue)

	_, err = g.Refine(context.Background(), failingEvaluator{}, -1)
	test.That(t, errors.Is(err, ErrConfiguration), test.ShouldBeTrue)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = g.Refine(ctx, EvaluatorFunc(poleSpike), 0.1)
	test.That(t, errors.Is(err, context.Canceled), test.ShouldBeTrue)
}
