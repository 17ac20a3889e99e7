// Package sampler evaluates nodal field data at arbitrary physical
// coordinates through a spatial index: pointwise and batch evaluation,
// error-estimator adaptation marking, and trajectory integration.
package sampler

import (
	"fmt"

	"github.com/notargets/meshtree/mesh"
)

// Field holds P1/multilinear nodal values over the mesh vertex pool, bound
// to the view it was created from. The pool is append-only, so values stay
// addressable across adaptation; Transfer re-expresses them on a newer view.
type Field struct {
	view mesh.View
	data []float64
}

// NewField allocates a zero field over the view's vertex pool
func NewField(view mesh.View) *Field {
	return &Field{view: view, data: make([]float64, view.NumVertices())}
}

// View returns the mesh view the field is bound to
func (f *Field) View() mesh.View { return f.view }

// Len returns the nodal value count
func (f *Field) Len() int { return len(f.data) }

// At returns the nodal value of pool vertex i
func (f *Field) At(i int) float64 { return f.data[i] }

// Set assigns the nodal value of pool vertex i
func (f *Field) Set(i int, v float64) { f.data[i] = v }

// Fill assigns every nodal value from an analytic function of the vertex
// coordinate
func (f *Field) Fill(fn func(mesh.Point) float64) {
	for i := range f.data {
		f.data[i] = fn(f.view.Vertex(i))
	}
}

// Transfer re-expresses the field on an adapted mesh view. Vertices created
// by refinement average their recorded parents, which is exact for P1 data;
// existing vertices carry over unchanged. Parents always precede children in
// the pool, so one forward pass covers any number of adaptation cycles.
func (f *Field) Transfer(newView mesh.View) (*Field, error) {
	if newView.Generation() < f.view.Generation() {
		return nil, fmt.Errorf("sampler: transfer to older generation %d from %d",
			newView.Generation(), f.view.Generation())
	}
	if newView.NumVertices() < len(f.data) {
		return nil, fmt.Errorf("sampler: target view has %d vertices, source field %d",
			newView.NumVertices(), len(f.data))
	}
	nf := NewField(newView)
	copy(nf.data, f.data)
	for i := len(f.data); i < len(nf.data); i++ {
		parents := newView.VertexParents(i)
		if len(parents) == 0 {
			continue
		}
		sum := 0.0
		for _, p := range parents {
			sum += nf.data[p]
		}
		nf.data[i] = sum / float64(len(parents))
	}
	return nf, nil
}
