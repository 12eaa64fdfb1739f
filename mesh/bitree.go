package mesh

import (
	"math"
	"strconv"

	"github.com/golang/geo/r3"

	"go.viam.com/pairmesh/spatialmath"
)

// angleTolerance is the distance under which two twist angles are the same grid point.
const angleTolerance = 1e-4

// interval is the twist-angle range covered by a Bitree node.
type interval struct {
	lo, hi float64
}

func (iv interval) centre() float64 {
	return (iv.lo + iv.hi) / 2
}

// BitreeNode is a node of a Bitree.
type BitreeNode = Node[*Configuration, interval]

// Bitree indexes the twist angle for one axis at one position. Its root spans [-pi, pi]; the
// angle is periodic, so the +pi endpoint is the same configuration as -pi.
type Bitree struct {
	arena[*Configuration, interval]
	id       string
	position r3.Vector
	axis     r3.Vector
	root     *BitreeNode
	allGrids *registry[*Configuration]
}

func newBitree(id string, position, axis r3.Vector) *Bitree {
	bt := &Bitree{
		arena:    newArena[*Configuration, interval](),
		id:       id,
		position: position,
		axis:     axis,
		allGrids: newRegistry[*Configuration](angleTolerance),
	}
	bt.root = newNode[*Configuration](id, nil, 2, interval{-math.Pi, math.Pi})
	bt.root.Grids = bt.endpoints(bt.root)
	bt.add(bt.root)
	bt.subdivide(bt.root)
	return bt
}

// ID returns the path of the Bitree's root.
func (bt *Bitree) ID() string {
	return bt.id
}

// Axis returns the orientation axis shared by every configuration of the Bitree.
func (bt *Bitree) Axis() r3.Vector {
	return bt.axis
}

// Root returns the node spanning the whole circle.
func (bt *Bitree) Root() *BitreeNode {
	return bt.root
}

// Configurations returns the Bitree's distinct configurations in creation order.
func (bt *Bitree) Configurations() []*Configuration {
	return bt.allGrids.all()
}

func angleKey(angle float64) r3.Vector {
	return r3.Vector{X: spatialmath.WrapAngle(angle)}
}

// grid returns the configuration at angle, creating it under id if there is none yet.
func (bt *Bitree) grid(id string, angle float64) *Configuration {
	conf, _ := bt.allGrids.getOrCreate(angleKey(angle), func() *Configuration {
		return newConfiguration(id, bt.position, bt.axis, angle)
	})
	return conf
}

func (bt *Bitree) endpoints(n *BitreeNode) []*Configuration {
	return []*Configuration{
		bt.grid(n.id+string(confMarker)+"0", n.shape.lo),
		bt.grid(n.id+string(confMarker)+"1", n.shape.hi),
	}
}

func (bt *Bitree) subdivide(parent *BitreeNode) {
	mid := parent.shape.centre()
	halves := [2]interval{{parent.shape.lo, mid}, {mid, parent.shape.hi}}
	for i, iv := range halves {
		child := newNode(childID(parent.id, i), parent, 2, iv)
		child.Grids = bt.endpoints(child)
		parent.children[i] = child
		bt.add(child)
	}
	parent.leaf = false
	if conf, ok := bt.allGrids.find(angleKey(mid)); ok {
		parent.TestGrids = append(parent.TestGrids, conf)
	}
}

func (bt *Bitree) findChild(n *BitreeNode, angle float64) int {
	if angle < n.shape.centre() {
		return 0
	}
	return 1
}

func (bt *Bitree) locate(angle float64) *BitreeNode {
	n := bt.root
	for !n.leaf {
		n = n.children[bt.findChild(n, angle)]
	}
	return n
}

// Interpolate returns the values at angle, blended linearly between the endpoints of the leaf
// interval that contains it.
func (bt *Bitree) Interpolate(angle float64) Values {
	angle = spatialmath.WrapAngle(angle)
	return bt.interpolateAt(bt.locate(angle), angle)
}

// interpolateAt blends the endpoints of n, each weighted by the distance from angle to the
// opposite endpoint.
func (bt *Bitree) interpolateAt(n *BitreeNode, angle float64) Values {
	width := n.shape.hi - n.shape.lo
	if width <= 0 {
		return n.Grids[0].Values
	}
	w := []float64{(n.shape.hi - angle) / width, (angle - n.shape.lo) / width}
	return blend(w, []Values{n.Grids[0].Values, n.Grids[1].Values})
}

// ensure returns the node at digits, subdividing leaves on the way.
func (bt *Bitree) ensure(path string, digits []int) (*BitreeNode, error) {
	n := bt.root
	for _, d := range digits {
		if n.leaf {
			bt.subdivide(n)
		}
		if d >= len(n.children) || n.children[d] == nil {
			return nil, newAddressingError(path, "no bitree child "+strconv.Itoa(d))
		}
		n = n.children[d]
	}
	return n, nil
}
