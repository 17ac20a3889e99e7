package mesh

import "fmt"

// kuhnPerms enumerates the axis orders of the Kuhn triangulation of a hex
var kuhnPerms = [][3]int{
	{0, 1, 2}, {0, 2, 1}, {1, 0, 2}, {1, 2, 0}, {2, 0, 1}, {2, 1, 0},
}

// NewCubeMesh builds a structured grid of axis-aligned box elements
// (Line/Rectangle/Hex by dimension) over [lower, upper] with cells[k]
// subdivisions along axis k.
func NewCubeMesh(lower, upper Point, cells []int) (*Mesh, error) {
	verts, d, err := latticeVertices(lower, upper, cells)
	if err != nil {
		return nil, err
	}
	typ := []GeometryType{Line, Rectangle, Hex}[d-1]
	var specs []ElementSpec
	forEachCell(cells, func(cell []int) {
		conn := make([]int, 1<<d)
		for i := 0; i < 1<<d; i++ {
			idx := make([]int, d)
			for k := 0; k < d; k++ {
				idx[k] = cell[k] + i>>k&1
			}
			conn[i] = latticeIndex(cells, idx)
		}
		specs = append(specs, ElementSpec{Type: typ, Verts: conn})
	})
	return NewMesh(d, verts, specs...)
}

// NewSimplexMesh builds the same structured grid split into simplices:
// 2 triangles per quad, 6 Kuhn tetrahedra per hex
func NewSimplexMesh(lower, upper Point, cells []int) (*Mesh, error) {
	verts, d, err := latticeVertices(lower, upper, cells)
	if err != nil {
		return nil, err
	}
	if d < 2 {
		return nil, fmt.Errorf("mesh: simplex mesh requires 2 or 3 dimensions, got %d", d)
	}
	var specs []ElementSpec
	forEachCell(cells, func(cell []int) {
		q := make([]int, 1<<d)
		for i := 0; i < 1<<d; i++ {
			idx := make([]int, d)
			for k := 0; k < d; k++ {
				idx[k] = cell[k] + i>>k&1
			}
			q[i] = latticeIndex(cells, idx)
		}
		if d == 2 {
			specs = append(specs,
				ElementSpec{Type: Tri, Verts: []int{q[0], q[1], q[3]}},
				ElementSpec{Type: Tri, Verts: []int{q[0], q[3], q[2]}},
			)
			return
		}
		for _, perm := range kuhnPerms {
			c0 := 0
			c1 := 1 << perm[0]
			c2 := c1 | 1<<perm[1]
			specs = append(specs, ElementSpec{
				Type:  Tet,
				Verts: []int{q[c0], q[c1], q[c2], q[7]},
			})
		}
	})
	return NewMesh(d, verts, specs...)
}

func latticeVertices(lower, upper Point, cells []int) ([]Point, int, error) {
	d := len(cells)
	if d < 1 || d > 3 {
		return nil, 0, fmt.Errorf("mesh: unsupported dimension %d", d)
	}
	if len(lower) != d || len(upper) != d {
		return nil, 0, fmt.Errorf("mesh: bounds have %d/%d coordinates, want %d",
			len(lower), len(upper), d)
	}
	n := 1
	for k, c := range cells {
		if c < 1 {
			return nil, 0, fmt.Errorf("mesh: cells[%d] = %d, want >= 1", k, c)
		}
		if !(upper[k] > lower[k]) {
			return nil, 0, fmt.Errorf("mesh: empty extent along axis %d", k)
		}
		n *= c + 1
	}
	verts := make([]Point, 0, n)
	idx := make([]int, d)
	for {
		p := make(Point, d)
		for k := 0; k < d; k++ {
			p[k] = lower[k] + float64(idx[k])*(upper[k]-lower[k])/float64(cells[k])
		}
		verts = append(verts, p)
		k := 0
		for ; k < d; k++ {
			idx[k]++
			if idx[k] <= cells[k] {
				break
			}
			idx[k] = 0
		}
		if k == d {
			break
		}
	}
	return verts, d, nil
}

// latticeIndex maps lattice coordinates to the vertex pool index, axis 0
// varying fastest to match latticeVertices emission order
func latticeIndex(cells, idx []int) int {
	vi := 0
	for k := len(cells) - 1; k >= 0; k-- {
		vi = vi*(cells[k]+1) + idx[k]
	}
	return vi
}

func forEachCell(cells []int, fn func(cell []int)) {
	d := len(cells)
	cell := make([]int, d)
	for {
		fn(cell)
		k := 0
		for ; k < d; k++ {
			cell[k]++
			if cell[k] < cells[k] {
				break
			}
			cell[k] = 0
		}
		if k == d {
			return
		}
	}
}
