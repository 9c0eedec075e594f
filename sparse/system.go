package sparse

import (
	"fmt"
	"math"
	"time"

	"github.com/terraflow-cfd/terraflow/utils"
)

// System couples a coefficient matrix with a right-hand-side column.
type System struct {
	A *Matrix
	B []float64
}

// Result reports one solve attempt. DiagDominance and Residual are nil when
// the corresponding phase never ran. Converged is true only when the
// residual dropped below Tol; hitting the iteration cap reports
// MaxItersReached with Converged false.
type Result struct {
	Solution        []float64
	Converged       bool
	DiagDominance   *bool
	Iters           int
	Tol             float64
	MaxItersReached bool
	Residual        *float64
	Message         string
	Elapsed         time.Duration
}

func NewSystem(a *Matrix, b []float64) *System {
	return &System{A: a, B: b}
}

// ResidualSq is the squared residual norm ||Ax-b||^2.
func (s *System) ResidualSq(x []float64) (sum float64, err error) {
	var ax []float64
	if ax, err = s.A.Dot(x); err != nil {
		return
	}
	for i, axi := range ax {
		d := axi - s.B[i]
		sum += d * d
	}
	return
}

// IsDiagonallyDominant checks the per-row condition |diag| >= sum|off-diag|,
// the convergence guarantee for the fixed-point sweep. Rows with a zero or
// missing diagonal fail: the update divides by the diagonal.
func (s *System) IsDiagonallyDominant() bool {
	var (
		diag = s.A.Diagonal()
		off  = s.A.OffDiagonalAbsSums()
	)
	for i := range diag {
		if diag[i] == 0 || math.Abs(diag[i]) < off[i] {
			return false
		}
	}
	return true
}

// Solve runs the row-parallel fixed-point iteration x_i <- (b_i - sum_j!=i
// a_ij x_j) / a_ii. Every off-diagonal term reads the iterate from the start
// of the sweep, so row updates are independent: this is Jacobi iteration,
// kept deliberately over the sequentially-dependent Gauss-Seidel sweep
// because it permits the parallel update. Phases: Validate -> Precheck ->
// Iterate; the first two return early with a descriptive Result.
func (s *System) Solve(x0 []float64, tol float64, maxIters, parallelDegree int) (res Result) {
	res = Result{Tol: tol}

	if len(x0) != s.A.NRows || len(s.B) != s.A.NRows || s.A.NCols != s.A.NRows {
		res.Message = fmt.Sprintf("wrong dimensions [x0]=%d [A]=%dx%d [b]=%d",
			len(x0), s.A.NRows, s.A.NCols, len(s.B))
		return
	}

	if !s.A.indexed {
		s.A.Finalize()
	}

	if !s.IsDiagonallyDominant() {
		res.DiagDominance = boolPtr(false)
		res.Message = "the coefficient matrix is not diagonally dominant"
		return
	}
	res.DiagDominance = boolPtr(true)

	var (
		start   = time.Now()
		n       = s.A.NRows
		x       = make([]float64, n)
		sumRows = make([]float64, n)
		diag    = s.A.Diagonal()
		pm      = utils.NewPartitionMap(parallelDegree, n)
	)
	copy(x, x0)

	for iter := 0; iter < maxIters; iter++ {
		// Off-diagonal sums against the iterate from the start of the sweep
		for i := range sumRows {
			sumRows[i] = 0
		}
		for _, e := range s.A.Entries {
			if e.Row != e.Col {
				sumRows[e.Row] += e.Val * x[e.Col]
			}
		}

		pm.RunParallel(func(kMin, kMax int) {
			for i := kMin; i < kMax; i++ {
				x[i] = (s.B[i] - sumRows[i]) / diag[i]
			}
		})

		errSq, _ := s.ResidualSq(x)
		if errSq < tol {
			res.Solution = x
			res.Converged = true
			res.Iters = iter + 1
			res.Residual = &errSq
			res.Message = fmt.Sprintf("converged in %d iterations", iter+1)
			res.Elapsed = time.Since(start)
			return
		}
	}

	errSq, _ := s.ResidualSq(x)
	res.Solution = x
	res.Converged = false
	res.Iters = maxIters
	res.MaxItersReached = true
	res.Residual = &errSq
	res.Message = fmt.Sprintf("tolerance not reached after %d iterations", maxIters)
	res.Elapsed = time.Since(start)
	return
}

func boolPtr(b bool) *bool { return &b }
