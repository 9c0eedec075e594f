package cmd

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/terraflow-cfd/terraflow/InputParameters"
	"github.com/terraflow-cfd/terraflow/sparse"
	"github.com/terraflow-cfd/terraflow/terrain"
)

func TestRunMesh(t *testing.T) {
	dir := t.TempDir()
	asc := filepath.Join(dir, "elev.asc")
	require.NoError(t, os.WriteFile(asc, []byte(
		"ncols 3\nnrows 3\nxllcorner 0\nyllcorner 0\ncellsize 100\n"+
			"5 10 15\n0 5 10\n0 0 5\n"), 0644))

	params := filepath.Join(dir, "params.yaml")
	require.NoError(t, os.WriteFile(params, []byte(`
Title: Test Hill
NLevels: 6
BottomPadding: 0.1
TopPadding: 0.5
ZRef: 500
SpeedRef: 6
DensityRef: 1.225
Shear: 0.2
Temperature: 300
`), 0644))

	mp := InputParameters.NewMeshParameters()
	data, err := os.ReadFile(params)
	require.NoError(t, err)
	require.NoError(t, mp.Parse(data))
	assert.Equal(t, "Test Hill", mp.Title)

	mr := &MeshRun{
		TerrainFile: asc,
		ParamsFile:  params,
		VTKFile:     filepath.Join(dir, "mesh.vtk"),
		STLFile:     filepath.Join(dir, "boundary.stl"),
	}
	RunMesh(mr, mp)

	vtk, err := os.ReadFile(mr.VTKFile)
	require.NoError(t, err)
	assert.Contains(t, string(vtk), "DATASET UNSTRUCTURED_GRID")
	stl, err := os.ReadFile(mr.STLFile)
	require.NoError(t, err)
	assert.Contains(t, string(stl), "solid terrain")
}

func TestMeshLevels(t *testing.T) {
	g, err := terrain.NewGrid([][]float64{{0, 100}, {100, 200}}, 0, 0, 10, 10)
	require.NoError(t, err)
	mp := InputParameters.NewMeshParameters()
	mp.NLevels = 5
	mp.BottomPadding = 0.1
	mp.TopPadding = 0.5

	levels := meshLevels(g, mp)
	require.Len(t, levels, 5)
	assert.InDelta(t, -20, levels[0], 1e-12)  // 0 - 0.1*200
	assert.InDelta(t, 300, levels[4], 1e-12)  // 200 + 0.5*200
	for n := 1; n < len(levels); n++ {
		assert.Greater(t, levels[n], levels[n-1])
	}
}

func TestRunSolve(t *testing.T) {
	dir := t.TempDir()
	matrixFile := filepath.Join(dir, "matrix.coo")
	rhsFile := filepath.Join(dir, "rhs.txt")
	outFile := filepath.Join(dir, "solution.txt")

	m, err := sparse.FromVectors(
		[]int{0, 0, 1, 1},
		[]int{0, 1, 0, 1},
		[]float64{4, 1, 1, 3})
	require.NoError(t, err)
	require.NoError(t, m.Save(matrixFile))
	require.NoError(t, sparse.SaveVector([]float64{1, 2}, rhsFile))

	sp := InputParameters.NewSolverParameters()
	sp.Tolerance = 1e-12
	sp.MaxIterations = 200
	RunSolve(&SolveRun{
		MatrixFile: matrixFile,
		RHSFile:    rhsFile,
		OutFile:    outFile,
	}, sp)

	x, err := sparse.LoadVector(outFile)
	require.NoError(t, err)
	require.Len(t, x, 2)
	assert.InDelta(t, 1.0/11.0, x[0], 1e-5)
	assert.InDelta(t, 7.0/11.0, x[1], 1e-5)
}
