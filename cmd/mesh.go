/*
Copyright © 2026 NAME HERE <EMAIL ADDRESS>

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

	http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/
package cmd

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
	"gonum.org/v1/gonum/floats"

	"github.com/terraflow-cfd/terraflow/InputParameters"
	"github.com/terraflow-cfd/terraflow/mesh"
	"github.com/terraflow-cfd/terraflow/terrain"
)

type MeshRun struct {
	TerrainFile string
	ParamsFile  string
	VTKFile     string
	STLFile     string
	Verbose     bool
}

// MeshCmd represents the mesh command
var MeshCmd = &cobra.Command{
	Use:   "mesh",
	Short: "Build a terrain-conforming hexahedral mesh from an elevation raster",
	Long: `
Builds the hexahedral volume mesh between the terrain surface and the domain
lid, writes it as a legacy VTK unstructured grid and optionally writes the
triangulated domain boundary as ASCII STL.

terraflow mesh -t elevation.asc -p params.yaml -o mesh.vtk -s boundary.stl`,
	Run: func(cmd *cobra.Command, args []string) {
		mr := &MeshRun{}
		mr.TerrainFile, _ = cmd.Flags().GetString("terrainFile")
		mr.ParamsFile, _ = cmd.Flags().GetString("paramsFile")
		mr.VTKFile, _ = cmd.Flags().GetString("vtkFile")
		mr.STLFile, _ = cmd.Flags().GetString("stlFile")
		mr.Verbose, _ = cmd.Flags().GetBool("verbose")
		if len(mr.TerrainFile) == 0 {
			fmt.Println("error: must supply an elevation raster (-t, --terrainFile) in ESRI ASCII grid format")
			os.Exit(1)
		}
		mp := InputParameters.NewMeshParameters()
		if len(mr.ParamsFile) != 0 {
			data, err := os.ReadFile(mr.ParamsFile)
			if err != nil {
				panic(err)
			}
			if err = mp.Parse(data); err != nil {
				panic(err)
			}
		}
		if mr.Verbose {
			mp.Print()
		}
		RunMesh(mr, mp)
	},
}

func init() {
	rootCmd.AddCommand(MeshCmd)
	MeshCmd.Flags().StringP("terrainFile", "t", "", "elevation raster in ESRI ASCII grid (.asc) format")
	MeshCmd.Flags().StringP("paramsFile", "p", "", "YAML file with mesh and atmosphere parameters")
	MeshCmd.Flags().StringP("vtkFile", "o", "mesh.vtk", "output mesh file in legacy VTK format")
	MeshCmd.Flags().StringP("stlFile", "s", "", "optional output boundary file in ASCII STL format")
	MeshCmd.Flags().BoolP("verbose", "v", false, "print progress and parameters")
}

func RunMesh(mr *MeshRun, mp *InputParameters.MeshParameters) {
	grid, err := terrain.ReadEsriAscii(mr.TerrainFile)
	if err != nil {
		fmt.Printf("error: %s\n", err.Error())
		os.Exit(1)
	}
	if mr.Verbose {
		fmt.Printf("Read %dx%d raster, X=[%g,%g] Y=[%g,%g] Z=[%g,%g]\n",
			grid.Nx, grid.Ny, grid.XMin, grid.XMax, grid.YMin, grid.YMax,
			grid.ZMin, grid.ZMax)
	}

	levels := meshLevels(grid, mp)
	policy := mesh.IntersectLowest
	if mp.IntersectPolicy == "highest" {
		policy = mesh.IntersectHighest
	}

	start := time.Now()
	m, err := mesh.Build(grid, levels, policy)
	if err != nil {
		fmt.Printf("error: %s\n", err.Error())
		os.Exit(1)
	}
	if mr.Verbose {
		fmt.Printf("Built %d cells in %v using %s\n", len(m.Cells), time.Since(start), policy)
	}

	m.ApplyInitialConditions(mesh.AtmosphereParams{
		ZRef:        mp.ZRef,
		SpeedRef:    mp.SpeedRef,
		DensityRef:  mp.DensityRef,
		Direction:   mp.Direction,
		Shear:       mp.Shear,
		Temperature: mp.Temperature,
	})

	if err = m.WriteVTK(mr.VTKFile); err != nil {
		fmt.Printf("error: %s\n", err.Error())
		os.Exit(1)
	}
	if len(mr.STLFile) != 0 {
		amp := grid.ZMax - grid.ZMin
		tris := append(grid.Triangulate(), grid.BoundarySurfaces(amp*mp.TopPadding)...)
		if err = terrain.WriteSTL(tris, mr.STLFile); err != nil {
			fmt.Printf("error: %s\n", err.Error())
			os.Exit(1)
		}
	}
}

// meshLevels spans NLevels uniform vertical levels between the padded height
// range of the raster.
func meshLevels(grid *terrain.Grid, mp *InputParameters.MeshParameters) []float64 {
	var (
		amp       = grid.ZMax - grid.ZMin
		minHeight = grid.ZMin - amp*mp.BottomPadding
		maxHeight = grid.ZMax + amp*mp.TopPadding
		n         = mp.NLevels
	)
	if n < 2 {
		n = 2
	}
	return floats.Span(make([]float64, n), minHeight, maxHeight)
}
