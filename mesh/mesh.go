package mesh

import (
	"fmt"
	"math"
	"strings"
)

// ElementSpec declares one element of a new mesh
type ElementSpec struct {
	Type  GeometryType
	Verts []int // indices into the vertex pool, corner order per Type
}

// element is one arena record. Records are never removed: refinement
// deactivates the parent and coarsening reinstates it under its original id.
type element struct {
	id       int
	typ      GeometryType
	verts    []int // vertex pool indices, corner order
	level    int   // refinement level, 0 for macro elements
	parent   int   // element id, -1 for macro elements
	children []int // element ids, nil if never refined
	active   bool
}

// Mesh is one adapting mesh. The vertex coordinate pool is append-only, so
// pool indices stay valid across adaptation cycles.
type Mesh struct {
	dim        int
	verts      []Point
	vertParent [][]int // refinement provenance per vertex, empty for macro vertices
	elems      []element
	active     []int // active element ids in traversal order
	activePos  map[int]int
	marks      map[int]Mark
	midpoints  map[string]int // sorted parent vertex ids -> midpoint vertex
	generation int
}

// NewMesh builds a mesh from a vertex pool and element connectivity.
// Construction is atomic: any malformed input yields a nil mesh and an error.
func NewMesh(dim int, verts []Point, elems ...ElementSpec) (*Mesh, error) {
	if dim < 1 || dim > 3 {
		return nil, fmt.Errorf("mesh: unsupported dimension %d", dim)
	}
	if len(verts) == 0 {
		return nil, fmt.Errorf("mesh: no vertices")
	}
	if len(elems) == 0 {
		return nil, fmt.Errorf("mesh: no elements")
	}
	m := &Mesh{
		dim:        dim,
		verts:      make([]Point, len(verts)),
		vertParent: make([][]int, len(verts)),
		activePos:  make(map[int]int),
		marks:      make(map[int]Mark),
		midpoints:  make(map[string]int),
	}
	for i, v := range verts {
		if len(v) != dim {
			return nil, fmt.Errorf("mesh: vertex %d has %d coordinates, want %d", i, len(v), dim)
		}
		m.verts[i] = v.Clone()
	}
	for k, spec := range elems {
		if err := m.validateSpec(k, spec); err != nil {
			return nil, err
		}
		id := len(m.elems)
		m.elems = append(m.elems, element{
			id:     id,
			typ:    spec.Type,
			verts:  append([]int(nil), spec.Verts...),
			parent: -1,
			active: true,
		})
		m.active = append(m.active, id)
		m.activePos[id] = k
	}
	return m, nil
}

func (m *Mesh) validateSpec(k int, spec ElementSpec) error {
	if spec.Type.Dim() != m.dim {
		return fmt.Errorf("mesh: element %d: %v is %dD in a %dD mesh",
			k, spec.Type, spec.Type.Dim(), m.dim)
	}
	if len(spec.Verts) != spec.Type.NumCorners() {
		return fmt.Errorf("mesh: element %d: %v needs %d corners, got %d",
			k, spec.Type, spec.Type.NumCorners(), len(spec.Verts))
	}
	seen := make(map[int]bool, len(spec.Verts))
	for _, vi := range spec.Verts {
		if vi < 0 || vi >= len(m.verts) {
			return fmt.Errorf("mesh: element %d: vertex index %d out of range [0,%d)",
				k, vi, len(m.verts))
		}
		if seen[vi] {
			return fmt.Errorf("mesh: element %d: duplicate vertex index %d", k, vi)
		}
		seen[vi] = true
	}
	geo := newGeometry(spec.Type, m.cornersOf(spec.Verts))
	if !(geo.Volume() > 0) {
		return fmt.Errorf("mesh: element %d: degenerate geometry", k)
	}
	if !spec.Type.Simplex() {
		if err := checkAxisAligned(geo); err != nil {
			return fmt.Errorf("mesh: element %d: %w", k, err)
		}
	}
	return nil
}

// checkAxisAligned verifies box connectivity is in binary corner order over
// an axis-aligned extent. Generators and red refinement both preserve this,
// so it is only checked for user-supplied connectivity.
func checkAxisAligned(geo Geometry) error {
	d := geo.Type().Dim()
	lo := geo.Corner(0).Clone()
	hi := geo.Corner(0).Clone()
	for _, c := range geo.Corners() {
		for k := 0; k < d; k++ {
			lo[k] = math.Min(lo[k], c[k])
			hi[k] = math.Max(hi[k], c[k])
		}
	}
	for i, c := range geo.Corners() {
		for k := 0; k < d; k++ {
			want := lo[k]
			if i>>k&1 == 1 {
				want = hi[k]
			}
			scale := math.Max(1, math.Abs(hi[k]-lo[k]))
			if math.Abs(c[k]-want) > insideTol*scale {
				return fmt.Errorf("corner %d is not axis-aligned in binary order", i)
			}
		}
	}
	return nil
}

func (m *Mesh) cornersOf(verts []int) []Point {
	corners := make([]Point, len(verts))
	for i, vi := range verts {
		corners[i] = m.verts[vi]
	}
	return corners
}

// Dim returns the world dimension
func (m *Mesh) Dim() int { return m.dim }

// Generation counts applied topology changes
func (m *Mesh) Generation() int { return m.generation }

// View returns a read-only handle onto the current adaptation state
func (m *Mesh) View() View { return View{m: m, gen: m.generation} }

// String returns a summary of the mesh state
func (m *Mesh) String() string {
	var sb strings.Builder
	sb.WriteString("=== Mesh Summary ===\n")
	sb.WriteString(fmt.Sprintf("  Dimension: %d\n", m.dim))
	sb.WriteString(fmt.Sprintf("  Generation: %d\n", m.generation))
	sb.WriteString(fmt.Sprintf("  Vertices (pool): %d\n", len(m.verts)))
	sb.WriteString(fmt.Sprintf("  Active elements: %d (of %d created)\n", len(m.active), len(m.elems)))
	counts := make(map[GeometryType]int)
	minLvl, maxLvl := math.MaxInt32, 0
	for _, id := range m.active {
		e := &m.elems[id]
		counts[e.typ]++
		if e.level < minLvl {
			minLvl = e.level
		}
		if e.level > maxLvl {
			maxLvl = e.level
		}
	}
	for _, typ := range []GeometryType{Tet, Hex, Tri, Rectangle, Line} {
		if counts[typ] > 0 {
			sb.WriteString(fmt.Sprintf("    %v: %d\n", typ, counts[typ]))
		}
	}
	sb.WriteString(fmt.Sprintf("  Level range: [%d, %d]\n", minLvl, maxLvl))
	return sb.String()
}

// Seed is a stable, re-resolvable reference to a mesh element. It survives
// adaptation cycles and is resolved back to an Element through View.Entity.
type Seed int

// View is a read-only handle onto one adaptation state of a Mesh. A View
// taken before an adaptation reports Current() == false afterward; consumers
// holding derived state (spatial indices, fields) check that before use.
type View struct {
	m   *Mesh
	gen int
}

// Current reports whether the mesh still is at the view's generation
func (v View) Current() bool { return v.gen == v.m.generation }

// Generation returns the mesh generation the view was taken at
func (v View) Generation() int { return v.gen }

// Dim returns the world dimension
func (v View) Dim() int { return v.m.dim }

// NumElements returns the active element count
func (v View) NumElements() int { return len(v.m.active) }

// Element returns the k-th active element. Out-of-range k is a programming
// error and panics.
func (v View) Element(k int) Element {
	if k < 0 || k >= len(v.m.active) {
		panic(fmt.Sprintf("mesh: element index %d out of range [0,%d)", k, len(v.m.active)))
	}
	return Element{v: v, index: k, e: &v.m.elems[v.m.active[k]]}
}

// Entity resolves a seed, comma-ok when the element is no longer active
func (v View) Entity(s Seed) (Element, bool) {
	id := int(s)
	if id < 0 || id >= len(v.m.elems) || !v.m.elems[id].active {
		return Element{}, false
	}
	return Element{v: v, index: v.m.activePos[id], e: &v.m.elems[id]}, true
}

// NumVertices returns the vertex pool size
func (v View) NumVertices() int { return len(v.m.verts) }

// Vertex returns the coordinate of pool vertex i.
// The point is shared with the mesh and must not be modified.
func (v View) Vertex(i int) Point { return v.m.verts[i] }

// VertexParents returns the parent vertex ids a refinement-created vertex
// was averaged from, empty for macro vertices
func (v View) VertexParents(i int) []int { return v.m.vertParent[i] }

// Element is a resolved element handle
type Element struct {
	v     View
	index int
	e     *element
}

// Index returns the element's position in the active traversal order
func (e Element) Index() int { return e.index }

// ID returns the stable element id
func (e Element) ID() int { return e.e.id }

// Type returns the element shape
func (e Element) Type() GeometryType { return e.e.typ }

// Level returns the refinement level
func (e Element) Level() int { return e.e.level }

// Seed returns the element's stable reference
func (e Element) Seed() Seed { return Seed(e.e.id) }

// Vertices returns the element's vertex pool indices in corner order.
// The slice is shared with the mesh and must not be modified.
func (e Element) Vertices() []int { return e.e.verts }

// Geometry returns the element's corner geometry
func (e Element) Geometry() Geometry {
	return newGeometry(e.e.typ, e.v.m.cornersOf(e.e.verts))
}
