package tree

import (
	"math"

	"github.com/notargets/meshtree/mesh"
	"gonum.org/v1/gonum/floats"
)

// VertexTolerance is the coordinate merge distance: corners closer than ten
// times the float64 machine epsilon are one vertex. Element corners are
// computed independently per element, so exact equality would split vertices
// on floating-point noise.
const VertexTolerance = 10 * 0x1p-52

// Vertex is one deduplicated mesh corner. Elements holds positions into the
// owning Root's seed inventory, one per incident element.
type Vertex struct {
	Global   mesh.Point
	Elements []int
}

// vertexIndex is a uniform grid hash over quantized coordinates. It replaces
// a linear scan over all vertices seen so far during construction; lookups
// compare true distance against VertexTolerance, so merge behavior is
// identical. With the cell size equal to the tolerance, any match lives
// within one cell of the query along every axis.
type vertexIndex struct {
	cell    float64
	buckets map[[3]int64][]int
}

func newVertexIndex() *vertexIndex {
	return &vertexIndex{
		cell:    VertexTolerance,
		buckets: make(map[[3]int64][]int),
	}
}

func (ix *vertexIndex) key(p mesh.Point) [3]int64 {
	var k [3]int64
	for i, c := range p {
		k[i] = int64(math.Floor(c / ix.cell))
	}
	return k
}

// lookup returns the index of a vertex within tolerance of p, or -1
func (ix *vertexIndex) lookup(verts []Vertex, p mesh.Point) int {
	base := ix.key(p)
	d := len(p)
	n := 1
	for k := 0; k < d; k++ {
		n *= 3
	}
	for off := 0; off < n; off++ {
		key := base
		rem := off
		for k := 0; k < d; k++ {
			key[k] += int64(rem%3 - 1)
			rem /= 3
		}
		for _, vi := range ix.buckets[key] {
			if floats.Distance(verts[vi].Global, p, 2) < VertexTolerance {
				return vi
			}
		}
	}
	return -1
}

func (ix *vertexIndex) insert(p mesh.Point, vi int) {
	key := ix.key(p)
	ix.buckets[key] = append(ix.buckets[key], vi)
}
