package mesh

import (
	"bufio"
	"fmt"
	"os"
)

const vtkHexahedron = 12

// WriteVTK exports the mesh as a legacy ASCII VTK unstructured grid with the
// cell ids and the physics payload attached as cell data. Points are written
// per cell without dedup, which legacy VTK viewers accept.
func (m *Mesh) WriteVTK(filename string) (err error) {
	var file *os.File
	if file, err = os.Create(filename); err != nil {
		return fmt.Errorf("unable to create VTK %s: %w", filename, err)
	}
	defer file.Close()
	w := bufio.NewWriter(file)

	fmt.Fprintln(w, "# vtk DataFile Version 3.0")
	fmt.Fprintln(w, "terraflow hexahedral mesh")
	fmt.Fprintln(w, "ASCII")
	fmt.Fprintln(w, "DATASET UNSTRUCTURED_GRID")

	nCells := len(m.Cells)
	fmt.Fprintf(w, "POINTS %d float\n", 8*nCells)
	for _, cell := range m.Cells {
		for _, p := range cell.Vertices {
			fmt.Fprintf(w, "%g %g %g\n", p.X, p.Y, p.Z)
		}
	}

	fmt.Fprintf(w, "CELLS %d %d\n", nCells, 9*nCells)
	for n := range m.Cells {
		fmt.Fprintf(w, "8")
		for i := 0; i < 8; i++ {
			fmt.Fprintf(w, " %d", 8*n+i)
		}
		fmt.Fprintln(w)
	}

	fmt.Fprintf(w, "CELL_TYPES %d\n", nCells)
	for range m.Cells {
		fmt.Fprintln(w, vtkHexahedron)
	}

	fmt.Fprintf(w, "CELL_DATA %d\n", nCells)

	fmt.Fprintln(w, "SCALARS cell_id int 1")
	fmt.Fprintln(w, "LOOKUP_TABLE default")
	for _, cell := range m.Cells {
		fmt.Fprintln(w, cell.ID)
	}

	fmt.Fprintln(w, "VECTORS velocity float")
	for _, cell := range m.Cells {
		v := cell.Physics.Velocity
		fmt.Fprintf(w, "%g %g %g\n", v.X, v.Y, v.Z)
	}

	for _, field := range []struct {
		name string
		at   func(p Physics) float64
	}{
		{"pressure", func(p Physics) float64 { return p.Pressure }},
		{"temperature", func(p Physics) float64 { return p.Temperature }},
		{"density", func(p Physics) float64 { return p.Density }},
	} {
		fmt.Fprintf(w, "SCALARS %s float 1\n", field.name)
		fmt.Fprintln(w, "LOOKUP_TABLE default")
		for _, cell := range m.Cells {
			fmt.Fprintf(w, "%g\n", field.at(cell.Physics))
		}
	}
	return w.Flush()
}
