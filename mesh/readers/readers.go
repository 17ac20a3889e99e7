// Package readers imports tetrahedral mesh files through the gocfd reader
// stack and converts them into adaptable mesh snapshots.
package readers

import (
	"fmt"

	gocfdreaders "github.com/notargets/gocfd/DG3D/mesh/readers"
	"github.com/notargets/gocfd/DG3D/tetrahedra/tetelement"

	"github.com/notargets/meshtree/mesh"
)

// ReadMeshFile reads a tetrahedral mesh file (any format gocfd supports)
// and converts its vertex/connectivity inventory into a Tet mesh
func ReadMeshFile(path string) (*mesh.Mesh, error) {
	msh, err := gocfdreaders.ReadMeshFile(path)
	if err != nil {
		return nil, fmt.Errorf("readers: %s: %w", path, err)
	}
	// order 1 carries exactly the vertex and connectivity inventory
	el3d, err := tetelement.NewElement3DFromMesh(1, msh)
	if err != nil {
		return nil, fmt.Errorf("readers: %s: %w", path, err)
	}
	dg := el3d.DG3D
	if dg.K == 0 {
		return nil, fmt.Errorf("readers: %s: no tetrahedra", path)
	}

	verts := make([]mesh.Point, len(dg.VX))
	for i := range verts {
		verts[i] = mesh.Point{dg.VX[i], dg.VY[i], dg.VZ[i]}
	}
	specs := make([]mesh.ElementSpec, dg.K)
	for k := 0; k < dg.K; k++ {
		specs[k] = mesh.ElementSpec{
			Type:  mesh.Tet,
			Verts: append([]int(nil), dg.EToV[k]...),
		}
	}
	m, err := mesh.NewMesh(3, verts, specs...)
	if err != nil {
		return nil, fmt.Errorf("readers: %s: %w", path, err)
	}
	return m, nil
}
