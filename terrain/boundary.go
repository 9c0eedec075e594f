package terrain

import (
	"bufio"
	"fmt"
	"math"
	"os"

	"github.com/terraflow-cfd/terraflow/geometry"
)

// Triangulate tessellates the terrain surface with two triangles per grid
// cell, for boundary export.
func (g *Grid) Triangulate() (tris []geometry.Triangle) {
	tris = make([]geometry.Triangle, 0, 2*(g.Nx-1)*(g.Ny-1))
	for i := 0; i < g.Nx-1; i++ {
		for j := 0; j < g.Ny-1; j++ {
			v1 := g.XYZ(i, j)
			v2 := g.XYZ(i+1, j)
			v3 := g.XYZ(i, j+1)
			v4 := g.XYZ(i+1, j+1)
			tris = append(tris, geometry.NewTriangle(v1, v2, v3))
			tris = append(tris, geometry.NewTriangle(v2, v4, v3))
		}
	}
	return
}

// BoundarySurfaces builds the four lateral curtains, from each raster edge up
// to the domain lid at ZMax+headroom, plus the flat sky lid itself.
func (g *Grid) BoundarySurfaces(headroom float64) (tris []geometry.Triangle) {
	var (
		height = g.ZMax + headroom
		south  = make([]geometry.Vec3, g.Nx)
		north  = make([]geometry.Vec3, g.Nx)
		west   = make([]geometry.Vec3, g.Ny)
		east   = make([]geometry.Vec3, g.Ny)
	)
	for i := 0; i < g.Nx; i++ {
		south[i] = g.XYZ(i, 0)
		north[i] = g.XYZ(i, g.Ny-1)
	}
	for j := 0; j < g.Ny; j++ {
		west[j] = g.XYZ(0, j)
		east[j] = g.XYZ(g.Nx-1, j)
	}
	for _, rim := range [][]geometry.Vec3{south, north, west, east} {
		tris = append(tris, curtain(rim, height)...)
	}

	nw := geometry.NewVec3(g.XMin, g.YMax, height)
	ne := geometry.NewVec3(g.XMax, g.YMax, height)
	sw := geometry.NewVec3(g.XMin, g.YMin, height)
	se := geometry.NewVec3(g.XMax, g.YMin, height)
	tris = append(tris, geometry.NewTriangle(nw, se, sw))
	tris = append(tris, geometry.NewTriangle(nw, ne, se))
	return
}

// curtain spans the strip between a terrain rim and the flat lid above it.
func curtain(rim []geometry.Vec3, zUpper float64) (tris []geometry.Triangle) {
	for w := 0; w < len(rim)-1; w++ {
		v1, v2 := rim[w], rim[w+1]
		v3 := geometry.NewVec3(v1.X, v1.Y, zUpper)
		v4 := geometry.NewVec3(v2.X, v2.Y, zUpper)
		tris = append(tris, geometry.NewTriangle(v1, v2, v3))
		tris = append(tris, geometry.NewTriangle(v2, v4, v3))
	}
	return
}

// WriteSTL writes an ASCII STL solid. NaN elevations produce degenerate
// facets upstream and are rejected here.
func WriteSTL(tris []geometry.Triangle, filename string) (err error) {
	var file *os.File
	if file, err = os.Create(filename); err != nil {
		return fmt.Errorf("unable to create STL %s: %w", filename, err)
	}
	defer file.Close()
	w := bufio.NewWriter(file)

	fmt.Fprintln(w, "solid terrain")
	for _, tri := range tris {
		if hasNaN(tri) {
			return fmt.Errorf("STL %s: facet with NaN vertex", filename)
		}
		fmt.Fprintf(w, "  facet normal %.6f %.6f %.6f\n",
			tri.Normal.X, tri.Normal.Y, tri.Normal.Z)
		fmt.Fprintln(w, "    outer loop")
		for _, v := range tri.V {
			fmt.Fprintf(w, "      vertex %.6f %.6f %.6f\n", v.X, v.Y, v.Z)
		}
		fmt.Fprintln(w, "    endloop")
		fmt.Fprintln(w, "  endfacet")
	}
	fmt.Fprintln(w, "endsolid terrain")
	return w.Flush()
}

func hasNaN(tri geometry.Triangle) bool {
	for _, v := range tri.V {
		if math.IsNaN(v.X) || math.IsNaN(v.Y) || math.IsNaN(v.Z) {
			return true
		}
	}
	return false
}
