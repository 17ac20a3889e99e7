package mesh

import (
	"encoding/gob"
	"fmt"
	"io"
)

// gob snapshot types. Pending marks are transient and not persisted.

type meshState struct {
	Dim        int
	Verts      []Point
	VertParent [][]int
	Elems      []elementState
	Active     []int
	Midpoints  map[string]int
	Generation int
}

type elementState struct {
	ID       int
	Type     GeometryType
	Verts    []int
	Level    int
	Parent   int
	Children []int
	Active   bool
}

// Save writes the full adaptation state of the mesh, including inactive
// parent elements and the midpoint registry, so a loaded mesh coarsens and
// re-refines exactly like the original.
func (m *Mesh) Save(w io.Writer) error {
	st := meshState{
		Dim:        m.dim,
		Verts:      m.verts,
		VertParent: m.vertParent,
		Elems:      make([]elementState, len(m.elems)),
		Active:     m.active,
		Midpoints:  m.midpoints,
		Generation: m.generation,
	}
	for i, e := range m.elems {
		st.Elems[i] = elementState{
			ID:       e.id,
			Type:     e.typ,
			Verts:    e.verts,
			Level:    e.level,
			Parent:   e.parent,
			Children: e.children,
			Active:   e.active,
		}
	}
	if err := gob.NewEncoder(w).Encode(&st); err != nil {
		return fmt.Errorf("mesh: save: %w", err)
	}
	return nil
}

// Load restores a mesh written by Save
func Load(r io.Reader) (*Mesh, error) {
	var st meshState
	if err := gob.NewDecoder(r).Decode(&st); err != nil {
		return nil, fmt.Errorf("mesh: load: %w", err)
	}
	if st.Dim < 1 || st.Dim > 3 || len(st.Verts) == 0 || len(st.Elems) == 0 {
		return nil, fmt.Errorf("mesh: load: malformed state")
	}
	m := &Mesh{
		dim:        st.Dim,
		verts:      st.Verts,
		vertParent: st.VertParent,
		elems:      make([]element, len(st.Elems)),
		active:     st.Active,
		activePos:  make(map[int]int, len(st.Active)),
		marks:      make(map[int]Mark),
		midpoints:  st.Midpoints,
		generation: st.Generation,
	}
	if m.vertParent == nil {
		m.vertParent = make([][]int, len(m.verts))
	}
	if m.midpoints == nil {
		m.midpoints = make(map[string]int)
	}
	for i, e := range st.Elems {
		m.elems[i] = element{
			id:       e.ID,
			typ:      e.Type,
			verts:    e.Verts,
			level:    e.Level,
			parent:   e.Parent,
			children: e.Children,
			active:   e.Active,
		}
	}
	for k, id := range m.active {
		if id < 0 || id >= len(m.elems) || !m.elems[id].active {
			return nil, fmt.Errorf("mesh: load: active list references invalid element %d", id)
		}
		m.activePos[id] = k
	}
	return m, nil
}
