package tree

import "github.com/notargets/meshtree/mesh"

// node is one cell of the recursive spatial partition. Nodes live in the
// owning Root's arena and reference each other by arena index, so the tree
// holds no pointers that could dangle across rebuilds.
type node struct {
	box      BoundingBox
	parent   int   // arena index, -1 at the root node
	level    int   // depth, 0 at the root node
	children []int // arena indices, nil for leaves
	vertices []int // vertex arena indices, empty for internal nodes
}

// NodeRef is a handle to one node of a Root's partition
type NodeRef struct {
	root *Root
	idx  int
}

// Box returns the node's bounding box
func (n NodeRef) Box() BoundingBox { return n.root.nodes[n.idx].box }

// Level returns the node's depth, 0 at the root node
func (n NodeRef) Level() int { return n.root.nodes[n.idx].level }

// IsLeaf reports whether the node has no children
func (n NodeRef) IsLeaf() bool { return n.root.nodes[n.idx].children == nil }

// NumChildren returns the child count, 0 for leaves
func (n NodeRef) NumChildren() int { return len(n.root.nodes[n.idx].children) }

// Child returns the i-th child node
func (n NodeRef) Child(i int) NodeRef {
	return NodeRef{root: n.root, idx: n.root.nodes[n.idx].children[i]}
}

// Parent returns the parent node, comma-ok false at the root node
func (n NodeRef) Parent() (NodeRef, bool) {
	p := n.root.nodes[n.idx].parent
	if p < 0 {
		return NodeRef{}, false
	}
	return NodeRef{root: n.root, idx: p}, true
}

// NumVertices returns the count of vertices assigned to this node
func (n NodeRef) NumVertices() int { return len(n.root.nodes[n.idx].vertices) }

// Vertex returns the i-th vertex assigned to this node
func (n NodeRef) Vertex(i int) *Vertex {
	return &n.root.verts[n.root.nodes[n.idx].vertices[i]]
}

// childIndex selects the child octant of p by the midpoint rule: bit k of
// the result is set iff p[k] >= center[k]. Splitting and descent use the
// same rule, so the selection is deterministic and a vertex always lands in
// the child it was redistributed to.
func childIndex(center, p mesh.Point) int {
	ci := 0
	for k, c := range center {
		if p[k] >= c {
			ci |= 1 << k
		}
	}
	return ci
}

// split subdivides node ni into 2^dim children by halving every axis at the
// box center, then redistributes its vertices. Children cover the parent box
// exactly and do not overlap under the midpoint rule.
func (r *Root) split(ni int) {
	d := r.nodes[ni].box.Dim()
	n := 1 << d
	center := r.nodes[ni].box.Center()
	level := r.nodes[ni].level

	kids := make([]int, n)
	for c := 0; c < n; c++ {
		min := make(mesh.Point, d)
		max := make(mesh.Point, d)
		for k := 0; k < d; k++ {
			if c>>k&1 == 1 {
				min[k], max[k] = center[k], r.nodes[ni].box.Max[k]
			} else {
				min[k], max[k] = r.nodes[ni].box.Min[k], center[k]
			}
		}
		kids[c] = len(r.nodes)
		r.nodes = append(r.nodes, node{
			box:    BoundingBox{Min: min, Max: max},
			parent: ni,
			level:  level + 1,
		})
	}

	moved := r.nodes[ni].vertices
	r.nodes[ni].vertices = nil
	r.nodes[ni].children = kids

	groups := make([][]int, n)
	for _, vi := range moved {
		c := childIndex(center, r.verts[vi].Global)
		groups[c] = append(groups[c], vi)
	}
	for c, g := range groups {
		if len(g) > 0 {
			r.put(kids[c], g)
		}
	}
}

// put bulk-loads a batch of vertices into node ni, splitting wherever a leaf
// would exceed the fanout. Depth is capped so coincident coordinate clusters
// beyond the dedup tolerance cannot recurse unboundedly.
func (r *Root) put(ni int, vs []int) {
	if r.nodes[ni].children == nil {
		if r.nodes[ni].level >= r.maxDepth ||
			len(r.nodes[ni].vertices)+len(vs) <= r.fanout {
			r.nodes[ni].vertices = append(r.nodes[ni].vertices, vs...)
			return
		}
		r.split(ni)
	}
	center := r.nodes[ni].box.Center()
	groups := make([][]int, len(r.nodes[ni].children))
	for _, vi := range vs {
		c := childIndex(center, r.verts[vi].Global)
		groups[c] = append(groups[c], vi)
	}
	for c, g := range groups {
		if len(g) > 0 {
			r.put(r.nodes[ni].children[c], g)
		}
	}
}

// findNode descends from the root node to the leaf whose box contains p.
// Returns false iff p lies outside the root box; inside it, the midpoint
// rule always selects exactly one child. Never mutates the tree.
func (r *Root) findNode(p mesh.Point) (int, bool) {
	if !r.nodes[0].box.Contains(p) {
		return 0, false
	}
	ni := 0
	for r.nodes[ni].children != nil {
		c := childIndex(r.nodes[ni].box.Center(), p)
		ni = r.nodes[ni].children[c]
	}
	return ni, true
}
