package sparse

import (
	"bufio"
	"fmt"
	"math/rand"
	"os"
	"sort"
	"strconv"
	"strings"

	jbsparse "github.com/james-bowman/sparse"

	"github.com/terraflow-cfd/terraflow/utils"
)

// Entry is one coordinate-format matrix contribution.
type Entry struct {
	Row, Col int
	Val      float64
}

// Matrix is a COO sparse matrix with a derived per-row index. Entries at the
// same (row,col) position are kept as-is, never merged: both contribute to
// every product, and callers that need merged storage must pre-sum their
// contributions. Finalize must run after the last Add and before any product
// or solve.
type Matrix struct {
	Entries      []Entry
	NRows, NCols int

	// rowIndex[r] is the inclusive [start,end] range of row r in the
	// (row,col)-sorted Entries, or [-1,-1] for an empty row.
	rowIndex [][2]int
	indexed  bool
}

func New() *Matrix {
	return &Matrix{}
}

// FromVectors builds a finalized matrix from parallel row/col/value slices.
func FromVectors(rows, cols []int, values []float64) (m *Matrix, err error) {
	if len(rows) != len(cols) || len(rows) != len(values) {
		return nil, fmt.Errorf("mismatched coordinate slices: %d rows, %d cols, %d values",
			len(rows), len(cols), len(values))
	}
	m = &Matrix{Entries: make([]Entry, 0, len(rows))}
	for n := range rows {
		m.Add(rows[n], cols[n], values[n])
	}
	m.Finalize()
	return
}

// Add appends one entry, growing the dimensions to (max index seen)+1.
// It invalidates the row index until the next Finalize.
func (m *Matrix) Add(row, col int, val float64) {
	m.Entries = append(m.Entries, Entry{Row: row, Col: col, Val: val})
	if row+1 > m.NRows {
		m.NRows = row + 1
	}
	if col+1 > m.NCols {
		m.NCols = col + 1
	}
	m.indexed = false
}

// Finalize stable-sorts the entries by (row, col) and rebuilds the per-row
// index. O(E log E) for the sort, O(E) for the scan.
func (m *Matrix) Finalize() {
	sort.SliceStable(m.Entries, func(a, b int) bool {
		ea, eb := m.Entries[a], m.Entries[b]
		if ea.Row != eb.Row {
			return ea.Row < eb.Row
		}
		return ea.Col < eb.Col
	})
	m.rowIndex = make([][2]int, m.NRows)
	for r := range m.rowIndex {
		m.rowIndex[r] = [2]int{-1, -1}
	}
	for n, e := range m.Entries {
		if m.rowIndex[e.Row][0] == -1 {
			m.rowIndex[e.Row][0] = n
		}
		m.rowIndex[e.Row][1] = n
	}
	m.indexed = true
}

// RowRange returns the inclusive entry range of a row and whether the row
// has any entries.
func (m *Matrix) RowRange(row int) (start, end int, ok bool) {
	if !m.indexed {
		panic("sparse: RowRange before Finalize")
	}
	rng := m.rowIndex[row]
	return rng[0], rng[1], rng[0] != -1
}

// Dot computes b = A x serially, accumulating entries in storage order.
func (m *Matrix) Dot(x []float64) (b []float64, err error) {
	if len(x) != m.NCols {
		return nil, fmt.Errorf("cannot multiply a %dx%d matrix with a %dx1 vector",
			m.NRows, m.NCols, len(x))
	}
	b = make([]float64, m.NRows)
	for _, e := range m.Entries {
		b[e.Row] += e.Val * x[e.Col]
	}
	return
}

// DotPar computes b = A x with rows partitioned over parallelDegree workers.
// Each row sums its own sorted entry slice into a disjoint output slot, in
// the same order as Dot, so the two agree exactly. Requires Finalize.
func (m *Matrix) DotPar(x []float64, parallelDegree int) (b []float64, err error) {
	if len(x) != m.NCols {
		return nil, fmt.Errorf("cannot multiply a %dx%d matrix with a %dx1 vector",
			m.NRows, m.NCols, len(x))
	}
	if !m.indexed {
		return nil, fmt.Errorf("matrix must be finalized before a parallel product")
	}
	b = make([]float64, m.NRows)
	pm := utils.NewPartitionMap(parallelDegree, m.NRows)
	pm.RunParallel(func(kMin, kMax int) {
		for row := kMin; row < kMax; row++ {
			start, end, ok := m.RowRange(row)
			if !ok {
				continue
			}
			sum := 0.0
			for n := start; n <= end; n++ {
				sum += m.Entries[n].Val * x[m.Entries[n].Col]
			}
			b[row] = sum
		}
	})
	return
}

// Diagonal returns the diagonal as a dense vector; absent diagonal entries
// are zero, duplicate diagonal entries overwrite in storage order.
func (m *Matrix) Diagonal() (d []float64) {
	d = make([]float64, m.NRows)
	for _, e := range m.Entries {
		if e.Row == e.Col {
			d[e.Row] = e.Val
		}
	}
	return
}

// OffDiagonalAbsSums returns per-row sums of |off-diagonal| entries.
func (m *Matrix) OffDiagonalAbsSums() (sums []float64) {
	sums = make([]float64, m.NRows)
	for _, e := range m.Entries {
		if e.Row != e.Col {
			v := e.Val
			if v < 0 {
				v = -v
			}
			sums[e.Row] += v
		}
	}
	return
}

// ToCSR converts to a james-bowman CSR matrix for interop with gonum's
// mat.Matrix consumers. Duplicate positions are summed by the conversion,
// which matches their combined contribution to products here.
func (m *Matrix) ToCSR() *jbsparse.CSR {
	var (
		rows = make([]int, len(m.Entries))
		cols = make([]int, len(m.Entries))
		vals = make([]float64, len(m.Entries))
	)
	for n, e := range m.Entries {
		rows[n], cols[n], vals[n] = e.Row, e.Col, e.Val
	}
	return jbsparse.NewCOO(m.NRows, m.NCols, rows, cols, vals).ToCSR()
}

// Load reads a finalized matrix from the plain-text COO format: one
// `row col value` triple per line, whitespace separated, no header, any
// order.
func Load(filename string) (m *Matrix, err error) {
	var file *os.File
	if file, err = os.Open(filename); err != nil {
		return nil, fmt.Errorf("unable to open matrix %s: %w", filename, err)
	}
	defer file.Close()

	m = New()
	scanner := bufio.NewScanner(file)
	scanner.Buffer(make([]byte, 1024*1024), 1024*1024)
	lineNum := 0
	for scanner.Scan() {
		lineNum++
		fields := strings.Fields(scanner.Text())
		if len(fields) == 0 {
			continue
		}
		if len(fields) != 3 {
			return nil, fmt.Errorf("matrix %s line %d: want `row col value`, got %q",
				filename, lineNum, scanner.Text())
		}
		row, e1 := strconv.Atoi(fields[0])
		col, e2 := strconv.Atoi(fields[1])
		val, e3 := strconv.ParseFloat(fields[2], 64)
		if e1 != nil || e2 != nil || e3 != nil || row < 0 || col < 0 {
			return nil, fmt.Errorf("matrix %s line %d: bad entry %q",
				filename, lineNum, scanner.Text())
		}
		m.Add(row, col, val)
	}
	if err = scanner.Err(); err != nil {
		return nil, fmt.Errorf("matrix %s: %w", filename, err)
	}
	m.Finalize()
	return
}

// Save writes the plain-text COO format in storage order.
func (m *Matrix) Save(filename string) (err error) {
	var file *os.File
	if file, err = os.Create(filename); err != nil {
		return fmt.Errorf("unable to create matrix %s: %w", filename, err)
	}
	defer file.Close()
	w := bufio.NewWriter(file)
	for _, e := range m.Entries {
		fmt.Fprintf(w, "%d %d %s\n", e.Row, e.Col,
			strconv.FormatFloat(e.Val, 'g', -1, 64))
	}
	return w.Flush()
}

// Random builds a finalized nRows x nRows diagonally dominant test matrix
// with about nEntries random off-diagonal entries.
func Random(rng *rand.Rand, nRows, nEntries int) (m *Matrix) {
	m = &Matrix{Entries: make([]Entry, 0, nEntries+nRows)}
	for n := 0; n < nEntries; n++ {
		row, col := rng.Intn(nRows), rng.Intn(nRows)
		if row == col {
			continue
		}
		m.Add(row, col, -10+20*rng.Float64())
	}
	for i := 0; i < nRows; i++ {
		m.Add(i, i, 5000+5000*rng.Float64())
	}
	m.Finalize()
	return
}
