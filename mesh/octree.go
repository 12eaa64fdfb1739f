package mesh

import (
	"math"
	"strconv"

	"github.com/golang/geo/r3"
	"github.com/pkg/errors"

	"go.viam.com/pairmesh/spatialmath"
)

// positionTolerance is the distance under which two positions are the same grid point.
const positionTolerance = 1e-3

// cube is the region of an Octree node.
type cube struct {
	centre r3.Vector
	half   float64
}

func (c cube) contains(p r3.Vector) bool {
	d := p.Sub(c.centre)
	limit := c.half * (1 + 1e-12)
	return math.Abs(d.X) <= limit && math.Abs(d.Y) <= limit && math.Abs(d.Z) <= limit
}

// OctreeNode is a node of the Octree.
type OctreeNode = Node[*Quadtree, cube]

// Octree indexes the translation. Every node holds the Quadtrees at its eight corners.
type Octree struct {
	arena[*Quadtree, cube]
	id       string
	cfg      *Config
	root     *OctreeNode
	allGrids *registry[*Quadtree]
}

func newOctree(cfg *Config) *Octree {
	ot := &Octree{
		arena:    newArena[*Quadtree, cube](),
		id:       cfg.Name + string(octreeMarker),
		cfg:      cfg,
		allGrids: newRegistry[*Quadtree](positionTolerance),
	}
	ot.root = newNode[*Quadtree](ot.id, nil, 8, cube{half: cfg.Size})
	ot.root.Grids = ot.corners(ot.root)
	ot.add(ot.root)
	ot.subdivide(ot.root)
	for _, child := range ot.root.children {
		if child != nil {
			ot.subdivide(child)
		}
	}
	return ot
}

// Root returns the node covering the whole cube.
func (ot *Octree) Root() *OctreeNode {
	return ot.root
}

// Quadtrees returns the Octree's distinct Quadtrees in creation order.
func (ot *Octree) Quadtrees() []*Quadtree {
	return ot.allGrids.all()
}

func (ot *Octree) quadtree(id string, position r3.Vector) *Quadtree {
	qt, _ := ot.allGrids.getOrCreate(position, func() *Quadtree {
		return newQuadtree(id, position, ot.cfg.AreaPolicy)
	})
	return qt
}

// corners returns the Quadtrees at the corners of n in octant order. The root leaves the corners
// of pruned octants empty.
func (ot *Octree) corners(n *OctreeNode) []*Quadtree {
	corners := spatialmath.OctantCorners(n.shape.centre, n.shape.half)
	grids := make([]*Quadtree, len(corners))
	for i, corner := range corners {
		if n == ot.root && ot.cfg.Symmetry.prunes(i) {
			continue
		}
		grids[i] = ot.quadtree(n.id+string(quadtreeMarker)+strconv.Itoa(i), corner)
	}
	return grids
}

func (ot *Octree) subdivide(parent *OctreeNode) {
	half := parent.shape.half / 2
	for i := range parent.children {
		if parent == ot.root && ot.cfg.Symmetry.prunes(i) {
			continue
		}
		c := cube{centre: parent.shape.centre.Add(spatialmath.OctantSigns(i).Mul(half)), half: half}
		child := newNode(childID(parent.id, i), parent, 8, c)
		child.Grids = ot.corners(child)
		parent.children[i] = child
		ot.add(child)
	}
	parent.leaf = false
	if qt, ok := ot.allGrids.find(parent.shape.centre); ok {
		parent.TestGrids = append(parent.TestGrids, qt)
	}
}

func (ot *Octree) locate(p r3.Vector) (*OctreeNode, error) {
	if !ot.root.shape.contains(p) {
		return nil, errors.Wrapf(ErrOutOfDomain, "position %v is outside the cube of half size %v", p, ot.root.shape.half)
	}
	n := ot.root
	for !n.leaf {
		child := n.children[spatialmath.Octant(p, n.shape.centre)]
		if child == nil {
			return nil, errors.Wrapf(ErrOutOfDomain, "position %v lies in an octant removed by symmetry %d", p, ot.cfg.Symmetry)
		}
		n = child
	}
	return n, nil
}

// Interpolate returns the values at a configuration. Positions inside the short range or beyond
// the long range take the boundary values without reading the mesh. The axis must have a direction.
func (ot *Octree) Interpolate(position, axis r3.Vector, angle float64) (Values, error) {
	if n := axis.Norm(); n == 0 || math.IsNaN(n) || math.IsInf(n, 0) {
		return Values{}, errors.Wrapf(ErrOutOfDomain, "axis %v has no direction", axis)
	}
	if v, ok := ot.cfg.boundaryValues(position); ok {
		return v, nil
	}
	n, err := ot.locate(position)
	if err != nil {
		return Values{}, err
	}
	return ot.interpolateAt(n, position, axis, angle), nil
}

// interpolateAt blends the corner Quadtrees of n multilinearly, collapsing x, then y, then z.
func (ot *Octree) interpolateAt(n *OctreeNode, position, axis r3.Vector, angle float64) Values {
	var vals [8]Values
	for i, qt := range n.Grids {
		vals[i] = qt.Interpolate(axis, angle)
	}
	lo := n.shape.centre.Sub(r3.Vector{X: n.shape.half, Y: n.shape.half, Z: n.shape.half})
	t := position.Sub(lo).Mul(1 / (2 * n.shape.half))
	for dim, frac := range []float64{t.X, t.Y, t.Z} {
		delta := 4 >> dim
		for v := range delta {
			vals[v] = lerp(vals[v], vals[v+delta], frac)
		}
	}
	return vals[0]
}

// ensure returns the node at digits, subdividing leaves on the way.
func (ot *Octree) ensure(path string, digits []int) (*OctreeNode, error) {
	n := ot.root
	for _, d := range digits {
		if n.leaf {
			ot.subdivide(n)
		}
		if n.children[d] == nil {
			return nil, newAddressingError(path, "no octree child "+strconv.Itoa(d))
		}
		n = n.children[d]
	}
	return n, nil
}

// boundaryValues returns the fixed values of positions outside the evaluated shell.
func (cfg *Config) boundaryValues(p r3.Vector) (Values, bool) {
	d2 := p.Norm2()
	switch {
	case d2 < cfg.ShortRange:
		return HighValues, true
	case d2 > cfg.LongRange:
		return ZeroValues, true
	default:
		return Values{}, false
	}
}
