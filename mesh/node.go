package mesh

import (
	"iter"
	"strconv"
)

// Node is a node of one of the three trees. G is the type of the grid references that define the
// node's region (Quadtrees for the Octree, Bitrees for a Quadtree, Configurations for a Bitree)
// and S describes the region itself.
type Node[G, S any] struct {
	id       string
	parent   *Node[G, S]
	children []*Node[G, S]
	depth    int
	leaf     bool
	shape    S

	// Grids are the shared points interpolation over this node reads from.
	Grids []G
	// TestGrids are the points created by subdividing this node. They only measure how well the
	// node's own Grids predict the finer level.
	TestGrids []G
	// Error is the interpolation error last accepted for this node.
	Error float64
}

func newNode[G, S any](id string, parent *Node[G, S], slots int, shape S) *Node[G, S] {
	n := &Node[G, S]{
		id:       id,
		parent:   parent,
		children: make([]*Node[G, S], slots),
		leaf:     true,
		shape:    shape,
		Error:    EHigh,
	}
	if parent != nil {
		n.depth = parent.depth + 1
	}
	return n
}

// ID returns the node's path.
func (n *Node[G, S]) ID() string {
	return n.id
}

// Parent returns the node this one was created from, or nil for a root.
func (n *Node[G, S]) Parent() *Node[G, S] {
	return n.parent
}

// Children returns the child slots. Slots that were pruned are nil.
func (n *Node[G, S]) Children() []*Node[G, S] {
	return n.children
}

// IsLeaf reports whether the node has never been subdivided.
func (n *Node[G, S]) IsLeaf() bool {
	return n.leaf
}

// Depth returns the number of subdivisions between the tree root and this node.
func (n *Node[G, S]) Depth() int {
	return n.depth
}

// hasLeafChild reports whether any existing child is still a leaf.
func (n *Node[G, S]) hasLeafChild() bool {
	for _, child := range n.children {
		if child != nil && child.leaf {
			return true
		}
	}
	return false
}

func childID(parent string, slot int) string {
	return parent + strconv.Itoa(slot)
}

// Walk yields n and its descendants depth first, children in slot order.
func (n *Node[G, S]) Walk() iter.Seq[*Node[G, S]] {
	return walk(n)
}

func walk[G, S any](root *Node[G, S]) iter.Seq[*Node[G, S]] {
	return func(yield func(*Node[G, S]) bool) {
		stack := []*Node[G, S]{root}
		for len(stack) > 0 {
			n := stack[len(stack)-1]
			stack = stack[:len(stack)-1]
			if !yield(n) {
				return
			}
			for i := len(n.children) - 1; i >= 0; i-- {
				if n.children[i] != nil {
					stack = append(stack, n.children[i])
				}
			}
		}
	}
}

// leafParents returns, in creation order, the distinct parents of the leaves among nodes.
func leafParents[G, S any](nodes []*Node[G, S]) []*Node[G, S] {
	seen := make(map[*Node[G, S]]struct{})
	var parents []*Node[G, S]
	for _, n := range nodes {
		if !n.leaf || n.parent == nil {
			continue
		}
		if _, ok := seen[n.parent]; ok {
			continue
		}
		seen[n.parent] = struct{}{}
		parents = append(parents, n.parent)
	}
	return parents
}

// arena is the append-only store of a tree's nodes, indexed by path.
type arena[G, S any] struct {
	nodes    []*Node[G, S]
	allNodes map[string]*Node[G, S]
}

func newArena[G, S any]() arena[G, S] {
	return arena[G, S]{allNodes: make(map[string]*Node[G, S])}
}

func (a *arena[G, S]) add(n *Node[G, S]) {
	a.nodes = append(a.nodes, n)
	a.allNodes[n.id] = n
}

// Len returns the number of nodes in the tree.
func (a *arena[G, S]) Len() int {
	return len(a.nodes)
}

// Node returns the node with the given path if it has been created.
func (a *arena[G, S]) Node(id string) (*Node[G, S], bool) {
	n, ok := a.allNodes[id]
	return n, ok
}

// Leaves yields the tree's current leaves in creation order.
func (a *arena[G, S]) Leaves() iter.Seq[*Node[G, S]] {
	return func(yield func(*Node[G, S]) bool) {
		for _, n := range a.nodes {
			if n.leaf && !yield(n) {
				return
			}
		}
	}
}
