package mesh

import (
	"strconv"

	"github.com/golang/geo/r3"

	"go.viam.com/pairmesh/spatialmath"
)

// directionTolerance is the distance under which two unit axes are the same grid point.
const directionTolerance = 1e-3

// poles are the six axis directions the Quadtree root is built on, in slot order.
var poles = [6]r3.Vector{
	{X: 0, Y: 0, Z: 1},
	{X: 1, Y: 0, Z: 0},
	{X: 0, Y: 1, Z: 0},
	{X: -1, Y: 0, Z: 0},
	{X: 0, Y: -1, Z: 0},
	{X: 0, Y: 0, Z: -1},
}

// rootTriangles are the pole slots of the vertices of each root triangle, indexed by octant. Each
// starts at the +z or -z pole and continues through two equator poles, turning anticlockwise
// about +z.
var rootTriangles = [8][3]int{
	{5, 3, 4},
	{0, 3, 4},
	{5, 2, 3},
	{0, 2, 3},
	{5, 4, 1},
	{0, 4, 1},
	{5, 1, 2},
	{0, 1, 2},
}

// Slots of a triangle's four children, as indices into the triangle's Grids: three vertices
// followed by the three edge midpoints 01, 12 and 20.
var triangleChildren = [4][3]int{
	{0, 3, 5},
	{3, 1, 4},
	{5, 4, 2},
	{3, 4, 5},
}

// QuadtreeNode is a node of a Quadtree. Every node but the root is a spherical triangle.
type QuadtreeNode = Node[*Bitree, *spatialmath.SphericalTriangle]

// Quadtree indexes the orientation axis at one position. The root holds the six pole Bitrees and
// eight root triangles, one per octant of the unit sphere.
type Quadtree struct {
	arena[*Bitree, *spatialmath.SphericalTriangle]
	id       string
	position r3.Vector
	policy   spatialmath.AreaPolicy
	root     *QuadtreeNode
	allGrids *registry[*Bitree]
}

func newQuadtree(id string, position r3.Vector, policy spatialmath.AreaPolicy) *Quadtree {
	qt := &Quadtree{
		arena:    newArena[*Bitree, *spatialmath.SphericalTriangle](),
		id:       id,
		position: position,
		policy:   policy,
		allGrids: newRegistry[*Bitree](directionTolerance),
	}
	qt.root = newNode[*Bitree, *spatialmath.SphericalTriangle](id, nil, 8, nil)
	qt.add(qt.root)
	for i, pole := range poles {
		qt.root.Grids = append(qt.root.Grids, qt.bitree(bitreeID(id, i), pole))
	}

	for octant, slots := range rootTriangles {
		tri := spatialmath.NewSphericalTriangle(poles[slots[0]], poles[slots[1]], poles[slots[2]])
		child := newNode(childID(id, octant), qt.root, 4, tri)
		for _, s := range slots {
			child.Grids = append(child.Grids, qt.root.Grids[s])
		}
		qt.root.children[octant] = child
		qt.add(child)
	}
	qt.root.leaf = false
	for _, child := range qt.root.children {
		qt.subdivide(child)
	}
	return qt
}

func bitreeID(node string, slot int) string {
	return node + string(bitreeMarker) + strconv.Itoa(slot)
}

// ID returns the path of the Quadtree's root.
func (qt *Quadtree) ID() string {
	return qt.id
}

// Position returns the translation shared by every configuration of the Quadtree.
func (qt *Quadtree) Position() r3.Vector {
	return qt.position
}

// Root returns the node holding the pole Bitrees and the root triangles.
func (qt *Quadtree) Root() *QuadtreeNode {
	return qt.root
}

// Bitrees returns the Quadtree's distinct Bitrees in creation order.
func (qt *Quadtree) Bitrees() []*Bitree {
	return qt.allGrids.all()
}

// bitree returns the Bitree for axis, creating it under id if there is none yet.
func (qt *Quadtree) bitree(id string, axis r3.Vector) *Bitree {
	bt, _ := qt.allGrids.getOrCreate(axis, func() *Bitree {
		return newBitree(id, qt.position, axis)
	})
	return bt
}

func (qt *Quadtree) subdivide(parent *QuadtreeNode) {
	points := parent.shape.Points()
	mids := parent.shape.Midpoints()
	for i, m := range mids {
		bt := qt.bitree(bitreeID(parent.id, 3+i), m)
		parent.Grids = append(parent.Grids, bt)
		parent.TestGrids = append(parent.TestGrids, bt)
	}
	dirs := [6]r3.Vector{points[0], points[1], points[2], mids[0], mids[1], mids[2]}
	for i, slots := range triangleChildren {
		tri := spatialmath.NewSphericalTriangle(dirs[slots[0]], dirs[slots[1]], dirs[slots[2]])
		child := newNode(childID(parent.id, i), parent, 4, tri)
		for _, s := range slots {
			child.Grids = append(child.Grids, parent.Grids[s])
		}
		parent.children[i] = child
		qt.add(child)
	}
	parent.leaf = false
}

// findChild returns the slot of the child of n that contains the unit vector v. Below the root
// v is expressed in the basis of the central child's vertices; a negative coefficient names the
// corner child on the opposite side.
func (qt *Quadtree) findChild(n *QuadtreeNode, v r3.Vector) int {
	if n == qt.root {
		return spatialmath.Octant(v, r3.Vector{})
	}
	mids := n.children[3].shape.Points()
	x, err := spatialmath.SolveBasis(mids[0], mids[1], mids[2], v)
	switch {
	case err != nil:
		return 3
	case x.X < 0:
		return 2
	case x.Y < 0:
		return 0
	case x.Z < 0:
		return 1
	default:
		return 3
	}
}

func (qt *Quadtree) locate(v r3.Vector) *QuadtreeNode {
	n := qt.root
	for !n.leaf {
		n = n.children[qt.findChild(n, v)]
	}
	return n
}

// Interpolate returns the values at axis and angle, blending the three vertex Bitrees of the
// leaf triangle containing axis.
func (qt *Quadtree) Interpolate(axis r3.Vector, angle float64) Values {
	axis = axis.Normalize()
	return qt.interpolateAt(qt.locate(axis), axis, angle)
}

func (qt *Quadtree) interpolateAt(n *QuadtreeNode, axis r3.Vector, angle float64) Values {
	w := n.shape.Weights(axis, qt.policy)
	vals := make([]Values, 3)
	for i := range vals {
		vals[i] = n.Grids[i].Interpolate(angle)
	}
	return blend(w[:], vals)
}

// ensure returns the node at digits, subdividing leaves on the way.
func (qt *Quadtree) ensure(path string, digits []int) (*QuadtreeNode, error) {
	n := qt.root
	for _, d := range digits {
		if n.leaf {
			qt.subdivide(n)
		}
		if d >= len(n.children) || n.children[d] == nil {
			return nil, newAddressingError(path, "no quadtree child "+strconv.Itoa(d))
		}
		n = n.children[d]
	}
	return n, nil
}

// bitreeAt returns the Bitree in grid slot s of n. The midpoint slots of a leaf triangle only
// exist once it is subdivided, so asking for one subdivides it.
func (qt *Quadtree) bitreeAt(path string, n *QuadtreeNode, s int) (*Bitree, error) {
	if s >= len(n.Grids) && n.leaf && n != qt.root {
		qt.subdivide(n)
	}
	if s >= len(n.Grids) {
		return nil, newAddressingError(path, "no bitree in slot "+strconv.Itoa(s))
	}
	return n.Grids[s], nil
}
