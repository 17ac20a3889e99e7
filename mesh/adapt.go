package mesh

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// Mark classifies an element for the next adaptation pass
type Mark int8

const (
	Keep Mark = iota
	Refine
	Coarsen
)

func (mk Mark) String() string {
	switch mk {
	case Keep:
		return "Keep"
	case Refine:
		return "Refine"
	case Coarsen:
		return "Coarsen"
	}
	return "Unknown"
}

// Mark tags the k-th active element for the next Adapt
func (m *Mesh) Mark(k int, mk Mark) error {
	if k < 0 || k >= len(m.active) {
		return fmt.Errorf("mesh: mark index %d out of range [0,%d)", k, len(m.active))
	}
	id := m.active[k]
	if mk == Keep {
		delete(m.marks, id)
	} else {
		m.marks[id] = mk
	}
	return nil
}

// GetMark returns the pending mark of the k-th active element
func (m *Mesh) GetMark(k int) Mark {
	if k < 0 || k >= len(m.active) {
		return Keep
	}
	return m.marks[m.active[k]]
}

// PreAdapt reports whether any element is marked. Callers use it to skip
// the adapt step entirely when nothing changed.
func (m *Mesh) PreAdapt() bool { return len(m.marks) > 0 }

// Adapt applies pending marks: refinement is red (every marked element is
// replaced by its children), coarsening removes a sibling group only when
// every sibling is active and marked, reinstating the parent under its
// original id. Returns whether the topology changed; the generation advances
// iff it did. PostAdapt must follow to clear the marks.
func (m *Mesh) Adapt() (bool, error) {
	changed := false

	// refine pass
	next := make([]int, 0, len(m.active))
	for _, id := range m.active {
		if m.marks[id] == Refine {
			next = append(next, m.refine(id)...)
			changed = true
		} else {
			next = append(next, id)
		}
	}
	m.active = next

	// coarsen pass: complete sibling groups only
	counts := make(map[int]int)
	for _, id := range m.active {
		e := &m.elems[id]
		if m.marks[id] == Coarsen && e.parent >= 0 {
			counts[e.parent]++
		}
	}
	collapse := make(map[int]bool)
	for p, c := range counts {
		if c == len(m.elems[p].children) {
			collapse[p] = true
		}
	}
	if len(collapse) > 0 {
		next = next[:0]
		done := make(map[int]bool)
		for _, id := range m.active {
			p := m.elems[id].parent
			if p >= 0 && collapse[p] {
				m.elems[id].active = false
				if !done[p] {
					done[p] = true
					m.elems[p].active = true
					next = append(next, p)
				}
				changed = true
				continue
			}
			next = append(next, id)
		}
		m.active = next
	}

	if changed {
		m.generation++
		m.activePos = make(map[int]int, len(m.active))
		for k, id := range m.active {
			m.activePos[id] = k
		}
	}
	return changed, nil
}

// PostAdapt clears all pending marks
func (m *Mesh) PostAdapt() {
	m.marks = make(map[int]Mark)
}

// refine replaces element id with its red children. A previously coarsened
// element reuses its recorded children instead of creating new ones.
func (m *Mesh) refine(id int) []int {
	if kids := m.elems[id].children; kids != nil {
		m.elems[id].active = false
		for _, c := range kids {
			m.elems[c].active = true
		}
		return kids
	}

	typ := m.elems[id].typ
	level := m.elems[id].level
	var conns [][]int
	switch typ {
	case Line, Rectangle, Hex:
		conns = m.refineBox(m.elems[id].verts, typ.Dim())
	case Tri:
		conns = m.refineTri(m.elems[id].verts)
	case Tet:
		conns = m.refineTet(m.elems[id].verts)
	}

	kids := make([]int, len(conns))
	for i, conn := range conns {
		cid := len(m.elems)
		m.elems = append(m.elems, element{
			id:     cid,
			typ:    typ,
			verts:  conn,
			level:  level + 1,
			parent: id,
			active: true,
		})
		kids[i] = cid
	}
	m.elems[id].children = kids
	m.elems[id].active = false
	return kids
}

// refineBox splits a binary-order box into 2^d half-boxes. Child c's corner i
// selects, along axis k, one of {min, mid, max} by c_k + i_k; a mid selector
// averages the parent corners spanning that axis.
func (m *Mesh) refineBox(verts []int, d int) [][]int {
	n := 1 << d
	conns := make([][]int, n)
	for c := 0; c < n; c++ {
		conn := make([]int, n)
		for i := 0; i < n; i++ {
			var parents []int
			for p := 0; p < n; p++ {
				ok := true
				for k := 0; k < d; k++ {
					sel := c>>k&1 + i>>k&1
					pb := p >> k & 1
					if (sel == 0 && pb != 0) || (sel == 2 && pb != 1) {
						ok = false
						break
					}
				}
				if ok {
					parents = append(parents, verts[p])
				}
			}
			conn[i] = m.cornerVertex(parents)
		}
		conns[c] = conn
	}
	return conns
}

// refineTri splits a triangle into 4 by its edge midpoints
func (m *Mesh) refineTri(v []int) [][]int {
	m01 := m.cornerVertex([]int{v[0], v[1]})
	m12 := m.cornerVertex([]int{v[1], v[2]})
	m02 := m.cornerVertex([]int{v[0], v[2]})
	return [][]int{
		{v[0], m01, m02},
		{m01, v[1], m12},
		{m02, m12, v[2]},
		{m01, m12, m02},
	}
}

// refineTet splits a tetrahedron into 8 by Bey's scheme: 4 corner tets plus
// the interior octahedron cut along the fixed m02-m13 diagonal
func (m *Mesh) refineTet(v []int) [][]int {
	m01 := m.cornerVertex([]int{v[0], v[1]})
	m02 := m.cornerVertex([]int{v[0], v[2]})
	m03 := m.cornerVertex([]int{v[0], v[3]})
	m12 := m.cornerVertex([]int{v[1], v[2]})
	m13 := m.cornerVertex([]int{v[1], v[3]})
	m23 := m.cornerVertex([]int{v[2], v[3]})
	return [][]int{
		{v[0], m01, m02, m03},
		{m01, v[1], m12, m13},
		{m02, m12, v[2], m23},
		{m03, m13, m23, v[3]},
		{m01, m02, m03, m13},
		{m01, m02, m12, m13},
		{m02, m03, m13, m23},
		{m02, m12, m13, m23},
	}
}

// cornerVertex resolves the vertex averaging the given parent vertices.
// Single parents pass through; created midpoints are registered so that
// neighbors refined in different cycles share them.
func (m *Mesh) cornerVertex(parents []int) int {
	if len(parents) == 1 {
		return parents[0]
	}
	key := midpointKey(parents)
	if vi, ok := m.midpoints[key]; ok {
		return vi
	}
	p := make(Point, m.dim)
	for _, pv := range parents {
		for k := 0; k < m.dim; k++ {
			p[k] += m.verts[pv][k]
		}
	}
	for k := 0; k < m.dim; k++ {
		p[k] /= float64(len(parents))
	}
	vi := len(m.verts)
	m.verts = append(m.verts, p)
	m.vertParent = append(m.vertParent, append([]int(nil), parents...))
	m.midpoints[key] = vi
	return vi
}

func midpointKey(parents []int) string {
	ids := append([]int(nil), parents...)
	sort.Ints(ids)
	var sb strings.Builder
	for i, id := range ids {
		if i > 0 {
			sb.WriteByte(':')
		}
		sb.WriteString(strconv.Itoa(id))
	}
	return sb.String()
}
