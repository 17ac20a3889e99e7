// Package vtk writes VTK XML files (.vtp PolyData, .vtu UnstructuredGrid)
// with ASCII data arrays, for visualizing meshes, fields and trajectories.
package vtk

import (
	"encoding/xml"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/notargets/meshtree/mesh"
)

// VTK XML cell type ids. The pixel and voxel variants keep the mesh's
// binary corner order, so no connectivity reordering is needed.
const (
	cellLine  = 3
	cellTri   = 5
	cellPixel = 8
	cellTet   = 10
	cellVoxel = 11
)

type vtkFile struct {
	XMLName          xml.Name          `xml:"VTKFile"`
	Type             string            `xml:"type,attr"`
	Version          string            `xml:"version,attr"`
	ByteOrder        string            `xml:"byte_order,attr"`
	PolyData         *polyData         `xml:"PolyData,omitempty"`
	UnstructuredGrid *unstructuredGrid `xml:"UnstructuredGrid,omitempty"`
}

type polyData struct {
	Piece polyPiece `xml:"Piece"`
}

type polyPiece struct {
	NumberOfPoints int       `xml:"NumberOfPoints,attr"`
	NumberOfVerts  int       `xml:"NumberOfVerts,attr"`
	NumberOfLines  int       `xml:"NumberOfLines,attr"`
	Points         points    `xml:"Points"`
	Verts          cellBlock `xml:"Verts"`
	Lines          cellBlock `xml:"Lines"`
}

type unstructuredGrid struct {
	Piece gridPiece `xml:"Piece"`
}

type gridPiece struct {
	NumberOfPoints int        `xml:"NumberOfPoints,attr"`
	NumberOfCells  int        `xml:"NumberOfCells,attr"`
	PointData      *dataBlock `xml:"PointData,omitempty"`
	CellData       *dataBlock `xml:"CellData,omitempty"`
	Points         points     `xml:"Points"`
	Cells          cellBlock  `xml:"Cells"`
}

type points struct {
	Data dataArray `xml:"DataArray"`
}

type cellBlock struct {
	Data []dataArray `xml:"DataArray"`
}

type dataBlock struct {
	Data []dataArray `xml:"DataArray"`
}

type dataArray struct {
	Type       string `xml:"type,attr"`
	Name       string `xml:"Name,attr,omitempty"`
	Components int    `xml:"NumberOfComponents,attr,omitempty"`
	Format     string `xml:"format,attr"`
	Body       string `xml:",chardata"`
}

// WritePolyLine writes a .vtp PolyData polyline: every point as a Vert cell
// plus a Line cell per consecutive pair
func WritePolyLine(w io.Writer, pts [][3]float64) error {
	if len(pts) < 2 {
		return fmt.Errorf("vtk: polyline needs at least 2 points, got %d", len(pts))
	}
	var coords strings.Builder
	for _, p := range pts {
		fmt.Fprintf(&coords, "%g %g %g\n", p[0], p[1], p[2])
	}
	var vertConn, vertOff, lineConn, lineOff strings.Builder
	for i := range pts {
		fmt.Fprintf(&vertConn, "%d ", i)
		fmt.Fprintf(&vertOff, "%d ", i+1)
	}
	for i := 0; i+1 < len(pts); i++ {
		fmt.Fprintf(&lineConn, "%d %d ", i, i+1)
		fmt.Fprintf(&lineOff, "%d ", 2*(i+1))
	}
	file := vtkFile{
		Type:      "PolyData",
		Version:   "0.1",
		ByteOrder: "LittleEndian",
		PolyData: &polyData{Piece: polyPiece{
			NumberOfPoints: len(pts),
			NumberOfVerts:  len(pts),
			NumberOfLines:  len(pts) - 1,
			Points: points{Data: dataArray{
				Type: "Float64", Components: 3, Format: "ascii", Body: coords.String(),
			}},
			Verts: cellBlock{Data: []dataArray{
				{Type: "Int64", Name: "connectivity", Format: "ascii", Body: vertConn.String()},
				{Type: "Int64", Name: "offsets", Format: "ascii", Body: vertOff.String()},
			}},
			Lines: cellBlock{Data: []dataArray{
				{Type: "Int64", Name: "connectivity", Format: "ascii", Body: lineConn.String()},
				{Type: "Int64", Name: "offsets", Format: "ascii", Body: lineOff.String()},
			}},
		}},
	}
	return writeFile(w, &file)
}

// GridDataOptions attaches named data arrays to a grid export. Point data
// is sized to the view's vertex pool, cell data to its active elements.
type GridDataOptions struct {
	PointData map[string][]float64
	CellData  map[string][]float64
}

// WriteUnstructuredGrid writes the current mesh view as a .vtu grid.
// Coordinates are zero-padded to 3 components as the format requires.
func WriteUnstructuredGrid(w io.Writer, view mesh.View, opts GridDataOptions) error {
	var coords strings.Builder
	for i := 0; i < view.NumVertices(); i++ {
		p := view.Vertex(i)
		var xyz [3]float64
		copy(xyz[:], p)
		fmt.Fprintf(&coords, "%g %g %g\n", xyz[0], xyz[1], xyz[2])
	}

	var conn, off, types strings.Builder
	offset := 0
	for k := 0; k < view.NumElements(); k++ {
		el := view.Element(k)
		ct, err := cellType(el.Type())
		if err != nil {
			return err
		}
		for _, vi := range el.Vertices() {
			fmt.Fprintf(&conn, "%d ", vi)
		}
		offset += len(el.Vertices())
		fmt.Fprintf(&off, "%d ", offset)
		fmt.Fprintf(&types, "%d ", ct)
	}

	piece := gridPiece{
		NumberOfPoints: view.NumVertices(),
		NumberOfCells:  view.NumElements(),
		Points: points{Data: dataArray{
			Type: "Float64", Components: 3, Format: "ascii", Body: coords.String(),
		}},
		Cells: cellBlock{Data: []dataArray{
			{Type: "Int64", Name: "connectivity", Format: "ascii", Body: conn.String()},
			{Type: "Int64", Name: "offsets", Format: "ascii", Body: off.String()},
			{Type: "UInt8", Name: "types", Format: "ascii", Body: types.String()},
		}},
	}

	var err error
	piece.PointData, err = namedArrays(opts.PointData, view.NumVertices(), "point")
	if err != nil {
		return err
	}
	piece.CellData, err = namedArrays(opts.CellData, view.NumElements(), "cell")
	if err != nil {
		return err
	}

	file := vtkFile{
		Type:             "UnstructuredGrid",
		Version:          "0.1",
		ByteOrder:        "LittleEndian",
		UnstructuredGrid: &unstructuredGrid{Piece: piece},
	}
	return writeFile(w, &file)
}

func namedArrays(data map[string][]float64, want int, kind string) (*dataBlock, error) {
	if len(data) == 0 {
		return nil, nil
	}
	names := make([]string, 0, len(data))
	for name := range data {
		names = append(names, name)
	}
	sort.Strings(names)
	block := &dataBlock{}
	for _, name := range names {
		vals := data[name]
		if len(vals) != want {
			return nil, fmt.Errorf("vtk: %s data %q has %d values, want %d",
				kind, name, len(vals), want)
		}
		var body strings.Builder
		for _, v := range vals {
			fmt.Fprintf(&body, "%g ", v)
		}
		block.Data = append(block.Data, dataArray{
			Type: "Float64", Name: name, Format: "ascii", Body: body.String(),
		})
	}
	return block, nil
}

func cellType(gt mesh.GeometryType) (int, error) {
	switch gt {
	case mesh.Line:
		return cellLine, nil
	case mesh.Tri:
		return cellTri, nil
	case mesh.Rectangle:
		return cellPixel, nil
	case mesh.Tet:
		return cellTet, nil
	case mesh.Hex:
		return cellVoxel, nil
	}
	return 0, fmt.Errorf("vtk: no cell type for %v", gt)
}

func writeFile(w io.Writer, file *vtkFile) error {
	if _, err := io.WriteString(w, xml.Header); err != nil {
		return fmt.Errorf("vtk: write: %w", err)
	}
	enc := xml.NewEncoder(w)
	enc.Indent("", "  ")
	if err := enc.Encode(file); err != nil {
		return fmt.Errorf("vtk: write: %w", err)
	}
	if err := enc.Close(); err != nil {
		return fmt.Errorf("vtk: write: %w", err)
	}
	_, err := io.WriteString(w, "\n")
	return err
}
