package mesh

import (
	"context"
	"math"

	"github.com/pkg/errors"
	"go.opencensus.io/trace"

	"go.viam.com/pairmesh/logging"
)

// Level is one of the three nested refinement levels.
type Level int

// The refinement levels, outermost first.
const (
	PositionLevel Level = iota
	AxisLevel
	AngleLevel
)

// Levels lists every Level, outermost first.
var Levels = []Level{PositionLevel, AxisLevel, AngleLevel}

func (l Level) String() string {
	switch l {
	case PositionLevel:
		return "position"
	case AxisLevel:
		return "axis"
	case AngleLevel:
		return "angle"
	}
	return "unknown"
}

// cutoffScale is the fraction of the refinement cutoff that applies at this level.
func (l Level) cutoffScale() float64 {
	return math.Ldexp(1, -int(l))
}

// initialDepth is the depth of the leaves of a freshly built tree of this level.
func (l Level) initialDepth() int {
	if l == AngleLevel {
		return 1
	}
	return 2
}

// RefineStats summarizes a call to Refine. Per-level counters are indexed by Level.
type RefineStats struct {
	Sweeps       [3]int
	Subdivisions [3]int
	// Filled counts configurations that received values, boundary ones included.
	Filled int
	// MaxError is the largest over-cutoff error reported on a node whose children were still
	// leaves, and Worst the test configuration that produced it.
	MaxError float64
	Worst    *Configuration
}

// Refine fills the grid with eval and then subdivides it until, at every level, each node
// interpolates the points created by its own subdivision to within the level's share of cutoff:
// the whole cutoff for positions, half for axes and a quarter for angles. Every position sweep is
// followed by a full axis refinement, and every axis sweep by a full angle refinement. Trees stop
// growing at the depth caps of the config.
func (g *Grid) Refine(ctx context.Context, eval Evaluator, cutoff float64) (RefineStats, error) {
	if !(cutoff > 0) {
		return RefineStats{}, newConfigurationError("cutoff must be positive, got %v", cutoff)
	}
	ctx, span := trace.StartSpan(ctx, "mesh::Grid::Refine")
	defer span.End()

	r := &refiner{
		grid:   g,
		eval:   eval,
		cutoff: cutoff,
		logger: g.logger.Sublogger("refine"),
	}
	n, err := g.FillWith(ctx, eval)
	r.stats.Filled += n
	if err != nil {
		return r.stats, err
	}
	err = r.refine(ctx, PositionLevel)
	r.logger.Infow("refinement done",
		"sweeps", r.stats.Sweeps, "subdivisions", r.stats.Subdivisions,
		"filled", r.stats.Filled, "max_error", r.stats.MaxError)
	return r.stats, err
}

type refiner struct {
	grid   *Grid
	eval   Evaluator
	cutoff float64
	logger logging.Logger
	stats  RefineStats
}

// refine sweeps level until a sweep subdivides nothing. After every sweep the new
// configurations are evaluated and the next level is refined in full.
func (r *refiner) refine(ctx context.Context, level Level) error {
	for {
		if err := ctx.Err(); err != nil {
			return errors.Wrapf(err, "%s refinement interrupted", level)
		}
		n := r.sweep(level)
		r.stats.Sweeps[level]++
		r.stats.Subdivisions[level] += n
		recordSubdivisions(ctx, level, n)

		fresh := r.grid.discover()
		r.logger.Debugw("sweep", "level", level.String(), "subdivisions", n, "new_configurations", len(fresh))
		if len(fresh) > 0 {
			filled, err := r.grid.evaluate(ctx, r.eval, fresh)
			r.stats.Filled += filled
			if err != nil {
				return err
			}
		}
		if level < AngleLevel {
			if err := r.refine(ctx, level+1); err != nil {
				return err
			}
		}
		if n == 0 {
			return nil
		}
	}
}

// sweep visits the parent of every leaf of every tree of the level once and returns how many
// nodes it subdivided.
func (r *refiner) sweep(level Level) int {
	n := 0
	switch level {
	case PositionLevel:
		ot := r.grid.octree
		for _, parent := range leafParents(ot.nodes) {
			tests := make([]*Configuration, 0, len(parent.TestGrids)*64)
			for _, qt := range parent.TestGrids {
				for _, bt := range qt.Bitrees() {
					tests = append(tests, bt.Configurations()...)
				}
			}
			size := parent.shape.half
			m := r.measure(tests, func(conf *Configuration) bool {
				return r.onContactShell(conf, size)
			}, func(conf *Configuration) Values {
				return ot.interpolateAt(parent, conf.Position, conf.Axis, conf.Angle)
			})
			n += refineNode(r, level, parent, m, ot.subdivide)
		}
	case AxisLevel:
		for _, qt := range r.grid.octree.Quadtrees() {
			for _, parent := range leafParents(qt.nodes) {
				if parent == qt.root {
					continue
				}
				var tests []*Configuration
				for _, bt := range parent.TestGrids {
					tests = append(tests, bt.Configurations()...)
				}
				m := r.measure(tests, nil, func(conf *Configuration) Values {
					return qt.interpolateAt(parent, conf.Axis, conf.Angle)
				})
				n += refineNode(r, level, parent, m, qt.subdivide)
			}
		}
	case AngleLevel:
		for _, qt := range r.grid.octree.Quadtrees() {
			for _, bt := range qt.Bitrees() {
				for _, parent := range leafParents(bt.nodes) {
					m := r.measure(parent.TestGrids, nil, func(conf *Configuration) Values {
						return bt.interpolateAt(parent, conf.Angle)
					})
					n += refineNode(r, level, parent, m, bt.subdivide)
				}
			}
		}
	}
	return n
}

// measurement is the interpolation error of a node over its test configurations.
type measurement struct {
	err   float64
	worst *Configuration
	// escaped is set when a test configuration makes the node exempt from refinement.
	escaped bool
}

// measure returns the largest first-component error between interp and the stored values of
// tests. A test configuration inside the short range, holding the high sentinel or matching
// exempt escapes the whole node.
func (r *refiner) measure(
	tests []*Configuration,
	exempt func(*Configuration) bool,
	interp func(*Configuration) Values,
) measurement {
	var m measurement
	for _, conf := range tests {
		if conf.Position.Norm2() < r.grid.cfg.ShortRange || conf.Values.IsHigh() ||
			(exempt != nil && exempt(conf)) {
			return measurement{escaped: true}
		}
		if e := math.Abs(interp(conf)[0] - conf.Values[0]); e > m.err || m.worst == nil {
			m.err, m.worst = e, conf
		}
	}
	return m
}

// onContactShell reports whether conf sits on the short-range shell of a cell small enough that
// refining it further would only chase the wall.
func (r *refiner) onContactShell(conf *Configuration, size float64) bool {
	return size <= r.grid.cfg.ContactCellSize &&
		math.Abs(conf.Position.Norm2()-r.grid.cfg.ShortRange) <= 2*size*size
}

// refineNode records m on parent and, when the error is over the level's cutoff, subdivides every
// child of parent that is still a leaf and above the depth cap. It returns the number of
// subdivisions.
func refineNode[G, S any](r *refiner, level Level, parent *Node[G, S], m measurement, subdivide func(*Node[G, S])) int {
	if m.escaped {
		parent.Error = 0
		return 0
	}
	parent.Error = math.Min(parent.Error, m.err)
	cutoff := r.cutoff * level.cutoffScale()
	if parent.Error <= cutoff {
		return 0
	}
	if parent.hasLeafChild() && m.worst != nil {
		r.report(level, parent.id, m.worst, parent.Error)
	}
	maxDepth := r.grid.cfg.MaxDepth.of(level)
	n := 0
	for _, child := range parent.children {
		if child == nil || !child.leaf || child.depth >= maxDepth {
			continue
		}
		subdivide(child)
		n++
	}
	return n
}

// report logs an over-cutoff node. A new maximum error for the run is also recorded in the stats
// and handed to the diagnostic hook.
func (r *refiner) report(level Level, node string, worst *Configuration, err float64) {
	r.logger.Debugw("over cutoff", "level", level.String(), "node", node, "conf", worst.ID, "error", err)
	if err <= r.stats.MaxError {
		return
	}
	r.stats.MaxError = err
	r.stats.Worst = worst
	if r.grid.cfg.Diagnostic != nil {
		r.grid.cfg.Diagnostic(level, worst, err)
	}
}
