package sparse

import (
	"math/rand"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"
)

func TestDotConcrete(t *testing.T) {
	m, err := FromVectors(
		[]int{0, 1, 2, 2},
		[]int{0, 1, 2, 1},
		[]float64{1, 3, 5, 7})
	require.NoError(t, err)
	assert.Equal(t, 3, m.NRows)
	assert.Equal(t, 3, m.NCols)

	b, err := m.Dot([]float64{1, 1, 1})
	require.NoError(t, err)
	assert.Equal(t, []float64{1, 3, 12}, b)

	bp, err := m.DotPar([]float64{1, 1, 1}, 2)
	require.NoError(t, err)
	assert.Equal(t, b, bp)
}

func TestDotDimensionMismatch(t *testing.T) {
	m, err := FromVectors([]int{0, 1}, []int{0, 1}, []float64{1, 1})
	require.NoError(t, err)
	_, err = m.Dot([]float64{1, 2, 3})
	assert.Error(t, err)
	_, err = m.DotPar([]float64{1}, 2)
	assert.Error(t, err)
}

func TestDotParRequiresFinalize(t *testing.T) {
	m := New()
	m.Add(0, 0, 1)
	m.Add(1, 1, 2)
	_, err := m.DotPar([]float64{1, 1}, 2)
	assert.Error(t, err)

	m.Finalize()
	b, err := m.DotPar([]float64{1, 1}, 2)
	require.NoError(t, err)
	assert.Equal(t, []float64{1, 2}, b)
}

func TestFinalizeSortsAndIndexes(t *testing.T) {
	m := New()
	m.Add(2, 1, 7)
	m.Add(0, 0, 1)
	m.Add(2, 0, 5)
	m.Add(4, 3, 2)
	m.Finalize()

	for n := 1; n < len(m.Entries); n++ {
		prev, cur := m.Entries[n-1], m.Entries[n]
		require.True(t, prev.Row < cur.Row ||
			(prev.Row == cur.Row && prev.Col < cur.Col))
	}

	start, end, ok := m.RowRange(2)
	require.True(t, ok)
	assert.Equal(t, Entry{2, 0, 5}, m.Entries[start])
	assert.Equal(t, Entry{2, 1, 7}, m.Entries[end])

	_, _, ok = m.RowRange(1)
	assert.False(t, ok)
	_, _, ok = m.RowRange(3)
	assert.False(t, ok)
}

func TestDuplicateEntriesBothCount(t *testing.T) {
	// Two contributions at (0,0) are kept separate and both accumulate
	m, err := FromVectors([]int{0, 0}, []int{0, 0}, []float64{2, 3})
	require.NoError(t, err)
	assert.Len(t, m.Entries, 2)
	b, err := m.Dot([]float64{1})
	require.NoError(t, err)
	assert.Equal(t, []float64{5}, b)
}

func TestDotAgainstDenseAndCSR(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	for trial := 0; trial < 5; trial++ {
		n := 20 + rng.Intn(30)
		m := Random(rng, n, 3*n)

		x := make([]float64, n)
		for i := range x {
			x[i] = -1 + 2*rng.Float64()
		}

		b, err := m.Dot(x)
		require.NoError(t, err)
		bp, err := m.DotPar(x, 4)
		require.NoError(t, err)
		for i := range b {
			require.InDelta(t, b[i], bp[i], 1e-9)
		}

		// Dense reference, duplicates summed
		dense := mat.NewDense(n, n, nil)
		for _, e := range m.Entries {
			dense.Set(e.Row, e.Col, dense.At(e.Row, e.Col)+e.Val)
		}
		var want mat.VecDense
		want.MulVec(dense, mat.NewVecDense(n, x))
		for i := range b {
			require.InDelta(t, want.AtVec(i), b[i], 1e-9)
		}

		// CSR interop path
		var got mat.VecDense
		got.MulVec(m.ToCSR(), mat.NewVecDense(n, x))
		for i := range b {
			require.InDelta(t, b[i], got.AtVec(i), 1e-9)
		}
	}
}

func TestSaveLoadRoundTrip(t *testing.T) {
	m, err := FromVectors(
		[]int{3, 0, 1, 3},
		[]int{1, 0, 1, 3},
		[]float64{-7.25, 1.5e-3, 3, 42})
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "matrix.coo")
	require.NoError(t, m.Save(path))

	got, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, m.NRows, got.NRows)
	assert.Equal(t, m.NCols, got.NCols)
	assert.Equal(t, m.Entries, got.Entries)
}

func TestLoadOrderIndependent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "matrix.coo")
	require.NoError(t, os.WriteFile(path, []byte("2 2 5\n0 0 1\n1 1 3\n2 1 7\n"), 0644))
	m, err := Load(path)
	require.NoError(t, err)

	b, err := m.Dot([]float64{1, 1, 1})
	require.NoError(t, err)
	assert.Equal(t, []float64{1, 3, 12}, b)
}

func TestLoadMalformed(t *testing.T) {
	for name, body := range map[string]string{
		"short line": "0 0\n",
		"bad row":    "x 0 1\n",
		"bad value":  "0 0 pi\n",
		"negative":   "-1 0 1\n",
	} {
		path := filepath.Join(t.TempDir(), "bad.coo")
		require.NoError(t, os.WriteFile(path, []byte(body), 0644))
		_, err := Load(path)
		assert.Errorf(t, err, "case %s should fail", name)
	}
	_, err := Load(filepath.Join(t.TempDir(), "missing.coo"))
	assert.Error(t, err)
}

func TestRandomIsDiagonallyDominant(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	m := Random(rng, 200, 300)
	assert.Equal(t, 200, m.NRows)
	b := make([]float64, 200)
	s := NewSystem(m, b)
	assert.True(t, s.IsDiagonallyDominant())
}
