package terrain

import (
	"bufio"
	"fmt"
	"math"
	"os"
	"strconv"
	"strings"

	"github.com/terraflow-cfd/terraflow/geometry"
)

// Grid is a rectangular elevation sampling: Nx columns by Ny rows of ground
// heights on a uniform horizontal lattice. It is loaded once and read-only
// afterwards.
type Grid struct {
	Elev                   []float64 // row-major, index j*Nx+i
	Nx, Ny                 int
	XMin, YMin, XMax, YMax float64
	XRes, YRes             float64
	ZMin, ZMax             float64
}

// NewGrid builds a Grid from elevation samples indexed [row][col]. At least
// 2x2 samples are required to form a single horizontal cell.
func NewGrid(elev [][]float64, xMin, yMin, xRes, yRes float64) (g *Grid, err error) {
	ny := len(elev)
	if ny < 2 || len(elev[0]) < 2 {
		err = fmt.Errorf("degenerate elevation raster: need at least 2x2 samples, got %dx%d",
			ny, len(elev))
		return
	}
	nx := len(elev[0])
	g = &Grid{
		Elev: make([]float64, nx*ny),
		Nx:   nx,
		Ny:   ny,
		XMin: xMin,
		YMin: yMin,
		XRes: xRes,
		YRes: yRes,
		XMax: xMin + float64(nx-1)*xRes,
		YMax: yMin + float64(ny-1)*yRes,
		ZMin: math.Inf(1),
		ZMax: math.Inf(-1),
	}
	for j, row := range elev {
		if len(row) != nx {
			return nil, fmt.Errorf("ragged elevation raster: row %d has %d samples, want %d",
				j, len(row), nx)
		}
		for i, z := range row {
			g.Elev[j*nx+i] = z
			if z < g.ZMin {
				g.ZMin = z
			}
			if z > g.ZMax {
				g.ZMax = z
			}
		}
	}
	return
}

func (g *Grid) X(col int) float64 {
	return g.XMin + g.XRes*float64(col)
}

func (g *Grid) Y(row int) float64 {
	return g.YMin + g.YRes*float64(row)
}

func (g *Grid) Z(col, row int) float64 {
	return g.Elev[row*g.Nx+col]
}

func (g *Grid) XYZ(col, row int) geometry.Vec3 {
	return geometry.Vec3{X: g.X(col), Y: g.Y(row), Z: g.Z(col, row)}
}

// ReadEsriAscii loads an ESRI ASCII grid (.asc): a key/value header
// (ncols, nrows, xllcorner, yllcorner, cellsize, optional NODATA_value)
// followed by nrows lines of ncols samples, first line northernmost.
func ReadEsriAscii(filename string) (g *Grid, err error) {
	var file *os.File
	if file, err = os.Open(filename); err != nil {
		return nil, fmt.Errorf("unable to open raster %s: %w", filename, err)
	}
	defer file.Close()

	scanner := bufio.NewScanner(file)
	scanner.Buffer(make([]byte, 1024*1024), 1024*1024)

	var (
		ncols, nrows       int
		xll, yll, cellsize float64
		nodata             float64
		haveNodata         bool
		firstDataRow       []string
	)
	for scanner.Scan() {
		fields := strings.Fields(scanner.Text())
		if len(fields) == 0 {
			continue
		}
		if c := fields[0][0]; (c >= '0' && c <= '9') || c == '-' || c == '+' || c == '.' {
			firstDataRow = fields
			break
		}
		if len(fields) != 2 {
			return nil, fmt.Errorf("raster %s: malformed header line %q", filename, scanner.Text())
		}
		val, perr := strconv.ParseFloat(fields[1], 64)
		if perr != nil {
			return nil, fmt.Errorf("raster %s: bad header value %q: %w", filename, fields[1], perr)
		}
		switch strings.ToLower(fields[0]) {
		case "ncols":
			ncols = int(val)
		case "nrows":
			nrows = int(val)
		case "xllcorner", "xllcenter":
			xll = val
		case "yllcorner", "yllcenter":
			yll = val
		case "cellsize":
			cellsize = val
		case "nodata_value":
			nodata = val
			haveNodata = true
		default:
			return nil, fmt.Errorf("raster %s: unknown header key %q", filename, fields[0])
		}
	}
	if ncols < 2 || nrows < 2 {
		return nil, fmt.Errorf("raster %s: degenerate dimensions %dx%d", filename, ncols, nrows)
	}
	if cellsize <= 0 {
		return nil, fmt.Errorf("raster %s: non-positive cellsize %g", filename, cellsize)
	}

	parseRow := func(fields []string) ([]float64, error) {
		if len(fields) != ncols {
			return nil, fmt.Errorf("raster %s: row has %d samples, want %d",
				filename, len(fields), ncols)
		}
		row := make([]float64, ncols)
		for i, f := range fields {
			v, perr := strconv.ParseFloat(f, 64)
			if perr != nil {
				return nil, fmt.Errorf("raster %s: bad sample %q: %w", filename, f, perr)
			}
			if haveNodata && v == nodata {
				v = math.NaN()
			}
			row[i] = v
		}
		return row, nil
	}

	elev := make([][]float64, nrows)
	// The first data line is the top row (maximum Y)
	for r := nrows - 1; r >= 0; r-- {
		fields := firstDataRow
		if fields == nil {
			for scanner.Scan() {
				fields = strings.Fields(scanner.Text())
				if len(fields) > 0 {
					break
				}
			}
			if len(fields) == 0 {
				return nil, fmt.Errorf("raster %s: expected %d data rows, got %d",
					filename, nrows, nrows-1-r)
			}
		}
		firstDataRow = nil
		if elev[r], err = parseRow(fields); err != nil {
			return nil, err
		}
	}
	if err = scanner.Err(); err != nil {
		return nil, fmt.Errorf("raster %s: %w", filename, err)
	}
	return NewGrid(elev, xll, yll, cellsize, cellsize)
}
