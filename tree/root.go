// Package tree implements an adaptive-mesh spatial index: a hierarchical
// partition over mesh geometry answering "which element contains point X".
// A Root is built against one mesh view and must be rebuilt after every
// adaptation; queries against a stale Root panic.
package tree

import (
	"fmt"

	"github.com/notargets/meshtree/mesh"
)

const (
	defaultFanout   = 8
	defaultMaxDepth = 24
)

// Config controls tree construction. The zero value is usable: Fanout
// defaults to 8 and MaxDepth to 24.
type Config struct {
	Fanout   int // vertices a leaf may hold before it splits
	MaxDepth int // hard depth limit for splitting
}

// Root owns the full vertex and element-seed inventory of one mesh snapshot
// and is the entry point for construction and queries
type Root struct {
	view     mesh.View
	fanout   int
	maxDepth int

	verts []Vertex
	seeds []mesh.Seed
	nodes []node // nodes[0] is the root node
}

// NewRoot builds the index from a mesh view. Every element is visited once:
// its seed is recorded and its corners are deduplicated into the vertex
// inventory within VertexTolerance, growing the root bounding box. The
// vertices are then bulk-loaded into the tree. Construction is atomic: on
// error no Root is produced.
func NewRoot(view mesh.View, cfg Config) (*Root, error) {
	if !view.Current() {
		return nil, fmt.Errorf("tree: mesh view at generation %d is stale", view.Generation())
	}
	if view.NumElements() == 0 {
		return nil, fmt.Errorf("tree: mesh has no elements")
	}
	if cfg.Fanout < 0 || cfg.MaxDepth < 0 {
		return nil, fmt.Errorf("tree: negative Fanout or MaxDepth")
	}
	r := &Root{
		view:     view,
		fanout:   cfg.Fanout,
		maxDepth: cfg.MaxDepth,
	}
	if r.fanout == 0 {
		r.fanout = defaultFanout
	}
	if r.maxDepth == 0 {
		r.maxDepth = defaultMaxDepth
	}

	ix := newVertexIndex()
	var box BoundingBox
	for k := 0; k < view.NumElements(); k++ {
		el := view.Element(k)
		geo := el.Geometry()
		if !(geo.Volume() > 0) {
			return nil, fmt.Errorf("tree: element %d has degenerate geometry", k)
		}
		pos := len(r.seeds)
		r.seeds = append(r.seeds, el.Seed())
		for c := 0; c < len(geo.Corners()); c++ {
			gl := geo.Corner(c)
			vi := ix.lookup(r.verts, gl)
			if vi < 0 {
				vi = len(r.verts)
				r.verts = append(r.verts, Vertex{Global: gl.Clone()})
				ix.insert(gl, vi)
				box.Include(gl)
			}
			r.verts[vi].Elements = append(r.verts[vi].Elements, pos)
		}
	}

	r.nodes = append(r.nodes, node{box: box, parent: -1})
	all := make([]int, len(r.verts))
	for i := range all {
		all[i] = i
	}
	r.put(0, all)
	return r, nil
}

// View returns the mesh view the index was built against
func (r *Root) View() mesh.View { return r.view }

// NumVertices returns the deduplicated vertex count
func (r *Root) NumVertices() int { return len(r.verts) }

// NumSeeds returns the element-seed inventory size
func (r *Root) NumSeeds() int { return len(r.seeds) }

// Vertex returns the i-th vertex of the inventory
func (r *Root) Vertex(i int) *Vertex { return &r.verts[i] }

// Seed returns the i-th entry of the seed inventory
func (r *Root) Seed(i int) mesh.Seed { return r.seeds[i] }

// Box returns the root bounding box covering every vertex
func (r *Root) Box() BoundingBox { return r.nodes[0].box }

// ensureCurrent panics when the underlying mesh has adapted since the Root
// was built. Using a stale index is a programming error: it would silently
// answer against outdated geometry.
func (r *Root) ensureCurrent() {
	if !r.view.Current() {
		panic(fmt.Sprintf(
			"tree: root built at mesh generation %d used after adaptation; rebuild the root",
			r.view.Generation()))
	}
}

// FindNode returns the leaf whose region contains p, comma-ok false for
// points outside the indexed domain
func (r *Root) FindNode(p mesh.Point) (NodeRef, bool) {
	r.ensureCurrent()
	ni, ok := r.findNode(p)
	if !ok {
		return NodeRef{}, false
	}
	return NodeRef{root: r, idx: ni}, true
}

// FindEntity returns a mesh element containing p. Phase 1 narrows to a leaf;
// phase 2 resolves every element seed incident to the leaf's vertices and
// runs the reference containment test, first match winning (leaf vertices in
// arena order, incidence lists in append order). If the leaf yields nothing,
// the full seed inventory is swept before reporting not-found, so interior
// points of vertex-free leaves still resolve. Not-found is the expected
// outcome for points outside the mesh domain.
func (r *Root) FindEntity(p mesh.Point) (mesh.Element, bool) {
	r.ensureCurrent()
	ni, ok := r.findNode(p)
	if !ok {
		return mesh.Element{}, false
	}
	visited := make(map[int]bool)
	for _, vi := range r.nodes[ni].vertices {
		for _, pos := range r.verts[vi].Elements {
			if visited[pos] {
				continue
			}
			visited[pos] = true
			if el, ok := r.testSeed(pos, p); ok {
				return el, true
			}
		}
	}
	for pos := range r.seeds {
		if visited[pos] {
			continue
		}
		if el, ok := r.testSeed(pos, p); ok {
			return el, true
		}
	}
	return mesh.Element{}, false
}

func (r *Root) testSeed(pos int, p mesh.Point) (mesh.Element, bool) {
	el, ok := r.view.Entity(r.seeds[pos])
	if !ok {
		return mesh.Element{}, false
	}
	geo := el.Geometry()
	if geo.ContainsLocal(geo.Local(p)) {
		return el, true
	}
	return mesh.Element{}, false
}
