package sampler

import (
	"github.com/notargets/meshtree/mesh"
	"github.com/notargets/meshtree/tree"
	"gonum.org/v1/gonum/mat"
)

// Result is one pointwise field evaluation
type Result struct {
	X  mesh.Point // evaluation point
	U  float64    // field value
	DU mesh.Point // field gradient
}

// Locator evaluates fields at arbitrary physical coordinates through a
// spatial index. It holds the index read-only, so any number of Evals may
// run concurrently against one Locator.
type Locator struct {
	root *tree.Root
}

// NewLocator wraps a built index
func NewLocator(root *tree.Root) *Locator {
	return &Locator{root: root}
}

// Root returns the underlying index
func (l *Locator) Root() *tree.Root { return l.root }

// Eval locates the element containing x and evaluates the field and its
// gradient there. Comma-ok false when x lies outside the mesh domain; that
// is routine at domain boundaries, not an error.
func (l *Locator) Eval(x mesh.Point, f *Field) (Result, bool) {
	el, ok := l.root.FindEntity(x)
	if !ok {
		return Result{}, false
	}
	geo := el.Geometry()
	local := geo.Local(x)
	verts := el.Vertices()
	u := make([]float64, len(verts))
	for i, vi := range verts {
		u[i] = f.At(vi)
	}
	var val float64
	var grad mesh.Point
	if el.Type().Simplex() {
		val, grad = simplexEval(geo, local, u)
	} else {
		val, grad = boxEval(geo, local, u)
	}
	return Result{X: x.Clone(), U: val, DU: grad}, true
}

// simplexEval evaluates the P1 interpolant. The gradient is constant over
// the element: solve Aᵀ g = (u_k - u_0) with A the affine span matrix,
// column k = corner_{k+1} - corner_0.
func simplexEval(geo mesh.Geometry, local mesh.Point, u []float64) (float64, mesh.Point) {
	d := len(local)
	val := u[0]
	rhs := mat.NewVecDense(d, nil)
	for k := 0; k < d; k++ {
		val += local[k] * (u[k+1] - u[0])
		rhs.SetVec(k, u[k+1]-u[0])
	}
	a := mat.NewDense(d, d, nil)
	c0 := geo.Corner(0)
	for j := 0; j < d; j++ {
		for i := 0; i < d; i++ {
			a.Set(i, j, geo.Corner(j+1)[i]-c0[i])
		}
	}
	grad := make(mesh.Point, d)
	var g mat.VecDense
	if err := g.SolveVec(a.T(), rhs); err == nil {
		for k := 0; k < d; k++ {
			grad[k] = g.AtVec(k)
		}
	}
	return val, grad
}

// boxEval evaluates the multilinear interpolant of a binary-order box and
// differentiates it per axis, rescaling the local gradient by the edge
// lengths
func boxEval(geo mesh.Geometry, local mesh.Point, u []float64) (float64, mesh.Point) {
	d := len(local)
	n := 1 << d
	val := 0.0
	dl := make([]float64, d)
	for i := 0; i < n; i++ {
		w := 1.0
		for k := 0; k < d; k++ {
			if i>>k&1 == 1 {
				w *= local[k]
			} else {
				w *= 1 - local[k]
			}
		}
		val += u[i] * w
		for k := 0; k < d; k++ {
			wk := 1.0
			for j := 0; j < d; j++ {
				if j == k {
					continue
				}
				if i>>j&1 == 1 {
					wk *= local[j]
				} else {
					wk *= 1 - local[j]
				}
			}
			if i>>k&1 == 1 {
				dl[k] += u[i] * wk
			} else {
				dl[k] -= u[i] * wk
			}
		}
	}
	lo := geo.Corner(0)
	hi := geo.Corner(n - 1)
	grad := make(mesh.Point, d)
	for k := 0; k < d; k++ {
		grad[k] = dl[k] / (hi[k] - lo[k])
	}
	return val, grad
}
