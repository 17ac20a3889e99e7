package mesh

import (
	"math"

	"gonum.org/v1/gonum/mat"
)

// Point is a coordinate in D-dimensional space
type Point []float64

// Clone returns an independent copy of the point
func (p Point) Clone() Point {
	c := make(Point, len(p))
	copy(c, p)
	return c
}

// GeometryType identifies the shape of an element
type GeometryType uint8

const (
	// 3D element types
	Tet GeometryType = iota // Tetrahedron
	Hex                     // Hexahedron

	// 2D element types
	Tri       // Triangle
	Rectangle // Rectangle/Quadrilateral

	// 1D element type
	Line // Line segment
)

func (gt GeometryType) String() string {
	switch gt {
	case Tet:
		return "Tet"
	case Hex:
		return "Hex"
	case Tri:
		return "Tri"
	case Rectangle:
		return "Rectangle"
	case Line:
		return "Line"
	}
	return "Unknown"
}

// Dim returns the reference dimension of the element type
func (gt GeometryType) Dim() int {
	switch gt {
	case Tet, Hex:
		return 3
	case Tri, Rectangle:
		return 2
	case Line:
		return 1
	}
	return 0
}

// NumCorners returns the corner count of the element type
func (gt GeometryType) NumCorners() int {
	switch gt {
	case Tet:
		return 4
	case Hex:
		return 8
	case Tri:
		return 3
	case Rectangle:
		return 4
	case Line:
		return 2
	}
	return 0
}

// Simplex reports whether the type maps affinely from the reference simplex.
// The remaining types are axis-aligned boxes with corners in binary order
// (bit k of the corner index selects min/max along axis k).
func (gt GeometryType) Simplex() bool {
	return gt == Tet || gt == Tri
}

// insideTol is the boundary tolerance of reference containment tests
const insideTol = 1e-12

// Geometry is the corner geometry of one element: local<->global maps and
// the reference containment predicate
type Geometry struct {
	typ     GeometryType
	corners []Point
}

func newGeometry(typ GeometryType, corners []Point) Geometry {
	return Geometry{typ: typ, corners: corners}
}

// Type returns the element shape
func (g Geometry) Type() GeometryType { return g.typ }

// Corners returns the element corners in global coordinates.
// The slice is shared with the geometry and must not be modified.
func (g Geometry) Corners() []Point { return g.corners }

// Corner returns the i-th corner in global coordinates
func (g Geometry) Corner(i int) Point { return g.corners[i] }

// Center returns the arithmetic mean of the corners
func (g Geometry) Center() Point {
	d := g.typ.Dim()
	c := make(Point, d)
	for _, p := range g.corners {
		for k := 0; k < d; k++ {
			c[k] += p[k]
		}
	}
	for k := 0; k < d; k++ {
		c[k] /= float64(len(g.corners))
	}
	return c
}

// Volume returns the unsigned element measure
func (g Geometry) Volume() float64 {
	d := g.typ.Dim()
	if g.typ.Simplex() {
		a := g.spanMatrix()
		det := mat.Det(a)
		fact := 1.0
		for k := 2; k <= d; k++ {
			fact *= float64(k)
		}
		return math.Abs(det) / fact
	}
	lo, hi := g.corners[0], g.corners[len(g.corners)-1]
	v := 1.0
	for k := 0; k < d; k++ {
		v *= hi[k] - lo[k]
	}
	return math.Abs(v)
}

// Global maps a reference coordinate to global coordinates
func (g Geometry) Global(local Point) Point {
	d := g.typ.Dim()
	x := make(Point, d)
	if g.typ.Simplex() {
		c0 := g.corners[0]
		for k := 0; k < d; k++ {
			x[k] = c0[k]
			for j := 0; j < d; j++ {
				x[k] += local[j] * (g.corners[j+1][k] - c0[k])
			}
		}
		return x
	}
	lo, hi := g.corners[0], g.corners[len(g.corners)-1]
	for k := 0; k < d; k++ {
		x[k] = lo[k] + local[k]*(hi[k]-lo[k])
	}
	return x
}

// Local maps a global coordinate into the reference frame. For a degenerate
// element the result is NaN-filled and fails every containment test.
func (g Geometry) Local(global Point) Point {
	d := g.typ.Dim()
	l := make(Point, d)
	if g.typ.Simplex() {
		c0 := g.corners[0]
		rhs := mat.NewVecDense(d, nil)
		for k := 0; k < d; k++ {
			rhs.SetVec(k, global[k]-c0[k])
		}
		var lam mat.VecDense
		if err := lam.SolveVec(g.spanMatrix(), rhs); err != nil {
			for k := 0; k < d; k++ {
				l[k] = math.NaN()
			}
			return l
		}
		for k := 0; k < d; k++ {
			l[k] = lam.AtVec(k)
		}
		return l
	}
	lo, hi := g.corners[0], g.corners[len(g.corners)-1]
	for k := 0; k < d; k++ {
		l[k] = (global[k] - lo[k]) / (hi[k] - lo[k])
	}
	return l
}

// ContainsLocal reports whether a reference coordinate lies inside the
// canonical region of the element type, with a small boundary tolerance
func (g Geometry) ContainsLocal(local Point) bool {
	if g.typ.Simplex() {
		sum := 0.0
		for _, lk := range local {
			if lk < -insideTol {
				return false
			}
			sum += lk
		}
		return sum <= 1+insideTol
	}
	for _, lk := range local {
		if lk < -insideTol || lk > 1+insideTol {
			return false
		}
	}
	return true
}

// spanMatrix returns the affine map matrix of a simplex: column j holds
// corner[j+1] - corner[0]
func (g Geometry) spanMatrix() *mat.Dense {
	d := g.typ.Dim()
	a := mat.NewDense(d, d, nil)
	c0 := g.corners[0]
	for j := 0; j < d; j++ {
		for i := 0; i < d; i++ {
			a.Set(i, j, g.corners[j+1][i]-c0[i])
		}
	}
	return a
}
