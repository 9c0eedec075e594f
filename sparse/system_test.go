package sparse

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// 4x + y = 1; x + 3y = 2, strictly diagonally dominant, solution (1/11, 7/11)
func smallSystem(t *testing.T) *System {
	t.Helper()
	m, err := FromVectors(
		[]int{0, 0, 1, 1},
		[]int{0, 1, 0, 1},
		[]float64{4, 1, 1, 3})
	require.NoError(t, err)
	return NewSystem(m, []float64{1, 2})
}

func TestIsDiagonallyDominant(t *testing.T) {
	assert.True(t, smallSystem(t).IsDiagonallyDominant())

	// Row 1 violates: |1| < |3|
	m, err := FromVectors(
		[]int{0, 0, 1, 1},
		[]int{0, 1, 0, 1},
		[]float64{4, 1, 3, 1})
	require.NoError(t, err)
	assert.False(t, NewSystem(m, []float64{1, 2}).IsDiagonallyDominant())

	// Zero diagonal fails even without off-diagonal entries
	m, err = FromVectors([]int{0, 1}, []int{0, 1}, []float64{4, 0})
	require.NoError(t, err)
	assert.False(t, NewSystem(m, []float64{1, 2}).IsDiagonallyDominant())
}

func TestSolveConverges(t *testing.T) {
	s := smallSystem(t)
	res := s.Solve([]float64{0, 0}, 1e-12, 200, 2)

	assert.True(t, res.Converged)
	assert.False(t, res.MaxItersReached)
	require.NotNil(t, res.DiagDominance)
	assert.True(t, *res.DiagDominance)
	require.NotNil(t, res.Residual)
	assert.Less(t, *res.Residual, 1e-12)
	assert.Greater(t, res.Iters, 0)
	assert.LessOrEqual(t, res.Iters, 200)
	require.Len(t, res.Solution, 2)
	assert.InDelta(t, 1.0/11.0, res.Solution[0], 1e-6)
	assert.InDelta(t, 7.0/11.0, res.Solution[1], 1e-6)
	assert.Contains(t, res.Message, "converged")
}

func TestSolveDoesNotMutateInitialGuess(t *testing.T) {
	s := smallSystem(t)
	x0 := []float64{1, -1}
	s.Solve(x0, 1e-12, 100, 1)
	assert.Equal(t, []float64{1, -1}, x0)
}

func TestSolveDimensionMismatch(t *testing.T) {
	s := smallSystem(t)
	res := s.Solve([]float64{0, 0, 0}, 1e-12, 100, 1)
	assert.False(t, res.Converged)
	assert.Nil(t, res.DiagDominance)
	assert.Nil(t, res.Solution)
	assert.Equal(t, 0, res.Iters)
	assert.Contains(t, res.Message, "wrong dimensions")

	// RHS length must match too
	res = NewSystem(s.A, []float64{1}).Solve([]float64{0, 0}, 1e-12, 100, 1)
	assert.False(t, res.Converged)
	assert.Contains(t, res.Message, "wrong dimensions")
}

func TestSolveNotDominantReturnsImmediately(t *testing.T) {
	m, err := FromVectors(
		[]int{0, 0, 1, 1},
		[]int{0, 1, 0, 1},
		[]float64{1, 5, 1, 3})
	require.NoError(t, err)
	res := NewSystem(m, []float64{1, 2}).Solve([]float64{0, 0}, 1e-12, 100, 1)

	assert.False(t, res.Converged)
	require.NotNil(t, res.DiagDominance)
	assert.False(t, *res.DiagDominance)
	assert.Equal(t, 0, res.Iters)
	assert.Nil(t, res.Solution)
	assert.Nil(t, res.Residual)
	assert.Contains(t, res.Message, "not diagonally dominant")
}

func TestSolveMaxIters(t *testing.T) {
	s := smallSystem(t)
	// Unreachable tolerance: the squared residual is never negative
	res := s.Solve([]float64{0, 0}, 0, 5, 1)

	assert.False(t, res.Converged)
	assert.True(t, res.MaxItersReached)
	assert.Equal(t, 5, res.Iters)
	require.NotNil(t, res.Residual)
	assert.GreaterOrEqual(t, *res.Residual, 0.)
	require.NotNil(t, res.Solution)
	assert.Contains(t, res.Message, "tolerance not reached")
}

func TestSolveRandomSystem(t *testing.T) {
	rng := rand.New(rand.NewSource(3))
	n := 500
	m := Random(rng, n, 2*n)

	// Manufacture b from a known solution
	want := make([]float64, n)
	for i := range want {
		want[i] = -1 + 2*rng.Float64()
	}
	b, err := m.Dot(want)
	require.NoError(t, err)

	s := NewSystem(m, b)
	res := s.Solve(make([]float64, n), 1e-18, 300, 4)
	require.True(t, res.Converged, res.Message)
	for i := range want {
		require.InDelta(t, want[i], res.Solution[i], 1e-8)
	}
}

func TestResidualSq(t *testing.T) {
	s := smallSystem(t)
	// At the exact solution the residual vanishes
	r, err := s.ResidualSq([]float64{1.0 / 11.0, 7.0 / 11.0})
	require.NoError(t, err)
	assert.InDelta(t, 0, r, 1e-24)

	r, err = s.ResidualSq([]float64{0, 0})
	require.NoError(t, err)
	assert.InDelta(t, 1*1+2*2, r, 1e-12)
}

func TestSolveUnfinalizedMatrix(t *testing.T) {
	m := New()
	m.Add(1, 1, 3)
	m.Add(0, 0, 4)
	m.Add(0, 1, 1)
	m.Add(1, 0, 1)
	res := NewSystem(m, []float64{1, 2}).Solve([]float64{0, 0}, 1e-12, 200, 2)
	assert.True(t, res.Converged)
	assert.InDelta(t, 1.0/11.0, res.Solution[0], 1e-6)
}
