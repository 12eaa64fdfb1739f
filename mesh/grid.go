package mesh

import (
	"context"
	"iter"
	"strconv"
	"sync/atomic"

	"github.com/golang/geo/r3"
	"github.com/pkg/errors"
	"github.com/samber/lo"
	"go.opencensus.io/trace"
	"go.uber.org/multierr"
	"golang.org/x/sync/errgroup"

	"go.viam.com/pairmesh/logging"
)

// Grid is the whole mesh: the Octree and every configuration reachable from it.
type Grid struct {
	cfg    Config
	logger logging.Logger
	octree *Octree

	// known holds every configuration discovered so far, in discovery order.
	known    []*Configuration
	knownSet map[*Configuration]struct{}
}

// NewGrid validates cfg and builds the initial mesh.
func NewGrid(cfg Config, logger logging.Logger) (*Grid, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	logger = logger.Sublogger("mesh")
	if cfg.LogLevel != nil {
		logger.SetLevel(*cfg.LogLevel)
	}
	g := &Grid{
		cfg:      cfg,
		logger:   logger,
		knownSet: make(map[*Configuration]struct{}),
	}
	g.octree = newOctree(&g.cfg)
	fresh := g.discover()
	logger.Debugw("built grid", "name", cfg.Name, "quadtrees", g.octree.allGrids.len(), "configurations", len(fresh))
	return g, nil
}

// Config returns the settings the grid was built with.
func (g *Grid) Config() Config {
	return g.cfg
}

// Octree returns the translation index of the grid.
func (g *Grid) Octree() *Octree {
	return g.octree
}

// Len returns the number of distinct configurations in the grid.
func (g *Grid) Len() int {
	n := 0
	for _, qt := range g.octree.Quadtrees() {
		for _, bt := range qt.Bitrees() {
			n += bt.allGrids.len()
		}
	}
	return n
}

// Configurations yields every distinct configuration exactly once, Quadtree by Quadtree and
// Bitree by Bitree in creation order.
func (g *Grid) Configurations() iter.Seq[*Configuration] {
	return func(yield func(*Configuration) bool) {
		for _, qt := range g.octree.Quadtrees() {
			for _, bt := range qt.Bitrees() {
				for _, conf := range bt.Configurations() {
					if !yield(conf) {
						return
					}
				}
			}
		}
	}
}

// discover records and returns the configurations created since the last call.
func (g *Grid) discover() []*Configuration {
	var all []*Configuration
	for conf := range g.Configurations() {
		all = append(all, conf)
	}
	fresh := lo.Filter(all, func(conf *Configuration, _ int) bool {
		_, ok := g.knownSet[conf]
		return !ok
	})
	for _, conf := range fresh {
		g.knownSet[conf] = struct{}{}
	}
	g.known = append(g.known, fresh...)
	return fresh
}

// unfilled returns the known configurations that hold no values yet.
func (g *Grid) unfilled() []*Configuration {
	return lo.Filter(g.known, func(conf *Configuration, _ int) bool {
		return !conf.Filled
	})
}

// route is the chain of objects a path resolves to, down to its target.
type route struct {
	target   PathTarget
	octree   *OctreeNode
	quadtree *QuadtreeNode
	bitree   *BitreeNode
	conf     *Configuration
}

// route walks path from the Octree root, subdividing every missing ancestor on the way.
func (g *Grid) route(path string) (route, error) {
	p, err := ParsePath(g.cfg.Name, path)
	if err != nil {
		return route{}, err
	}
	r := route{target: p.Target()}
	if r.octree, err = g.octree.ensure(path, p.Octree); err != nil || r.target == TargetOctreeNode {
		return r, err
	}
	qt := r.octree.Grids[p.Corner]
	if qt == nil {
		return r, newAddressingError(path, "no quadtree at corner "+strconv.Itoa(p.Corner))
	}
	if r.quadtree, err = qt.ensure(path, p.Quadtree); err != nil || r.target == TargetQuadtreeNode {
		return r, err
	}
	bt, err := qt.bitreeAt(path, r.quadtree, p.Slot)
	if err != nil {
		return r, err
	}
	if r.bitree, err = bt.ensure(path, p.Bitree); err != nil || r.target == TargetBitreeNode {
		return r, err
	}
	r.conf = r.bitree.Grids[p.Conf]
	return r, nil
}

// Resolve materializes the object at path and returns its ID. A configuration may report the ID
// it was first created under by a neighbouring node.
func (g *Grid) Resolve(path string) (string, error) {
	r, err := g.route(path)
	if err != nil {
		return "", err
	}
	switch r.target {
	case TargetOctreeNode:
		return r.octree.id, nil
	case TargetQuadtreeNode:
		return r.quadtree.id, nil
	case TargetBitreeNode:
		return r.bitree.id, nil
	case TargetConfiguration:
	}
	return r.conf.ID, nil
}

// Lookup returns the configuration at path, creating any missing ancestors.
func (g *Grid) Lookup(path string) (*Configuration, error) {
	r, err := g.route(path)
	if err != nil {
		return nil, err
	}
	if r.target != TargetConfiguration {
		return nil, newAddressingError(path, "path does not name a configuration")
	}
	return r.conf, nil
}

// Fill stores values in the configuration at path.
func (g *Grid) Fill(path string, values Values) error {
	conf, err := g.Lookup(path)
	if err != nil {
		return err
	}
	conf.Values = values
	conf.Filled = true
	return nil
}

// Interpolate returns the values at a configuration.
func (g *Grid) Interpolate(position, axis r3.Vector, angle float64) (Values, error) {
	return g.octree.Interpolate(position, axis, angle)
}

// FillWith evaluates every known configuration that holds no values yet, and returns how many
// it filled.
func (g *Grid) FillWith(ctx context.Context, eval Evaluator) (int, error) {
	g.discover()
	return g.evaluate(ctx, eval, g.unfilled())
}

// evaluate fills confs concurrently. Boundary configurations take their fixed values without
// calling eval. The newly filled configurations are appended to the database once every call
// has returned.
func (g *Grid) evaluate(ctx context.Context, eval Evaluator, confs []*Configuration) (int, error) {
	ctx, span := trace.StartSpan(ctx, "mesh::Grid::evaluate")
	defer span.End()

	pending := lo.Filter(confs, func(conf *Configuration, _ int) bool { return !conf.Filled })
	group, groupCtx := errgroup.WithContext(ctx)
	group.SetLimit(g.cfg.Workers)
	var calls atomic.Int64
	for _, conf := range pending {
		group.Go(func() error {
			if v, ok := g.cfg.boundaryValues(conf.Position); ok {
				conf.Values = v
				conf.Filled = true
				return nil
			}
			v, err := eval.Evaluate(groupCtx, conf.Position, conf.Axis, conf.Angle)
			if err != nil {
				return errors.Wrapf(err, "cannot evaluate %s", conf.ID)
			}
			calls.Add(1)
			conf.Values = v
			conf.Filled = true
			return nil
		})
	}
	err := group.Wait()

	filled := lo.Filter(pending, func(conf *Configuration, _ int) bool { return conf.Filled })
	recordEvaluations(ctx, calls.Load())
	g.logger.Debugw("evaluated configurations",
		"pending", len(pending), "filled", len(filled), "evaluator_calls", calls.Load())
	if g.cfg.Database != "" && len(filled) > 0 {
		if aerr := appendRecords(ctx, g.cfg.Database, filled); aerr != nil {
			err = multierr.Combine(err, aerr)
		}
	}
	return len(filled), err
}
