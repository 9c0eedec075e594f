package mesh

import (
	"fmt"
	"math"
	"sort"

	"github.com/terraflow-cfd/terraflow/geometry"
	"github.com/terraflow-cfd/terraflow/terrain"
)

type WallKind uint8

const (
	Terrain WallKind = iota
	Sky
	Inlet
	Interior
)

func (wk WallKind) String() string {
	switch wk {
	case Terrain:
		return "Terrain"
	case Sky:
		return "Sky"
	case Inlet:
		return "Inlet"
	case Interior:
		return "Interior"
	}
	return "Unknown"
}

type PolyKind uint8

const (
	TrianglePoly PolyKind = iota
	QuadPoly
)

// Wall is one polygonal face of a cell. Boundary walls (Terrain, Sky, Inlet)
// own one cell id and have Cells[1] == -1; Interior walls reference the two
// cells they separate.
type Wall struct {
	Kind    WallKind
	Shape   PolyKind
	Tri     geometry.Triangle // valid when Shape == TrianglePoly
	Quad    geometry.Quad     // valid when Shape == QuadPoly
	Cells   [2]int
	Center  geometry.Vec3
	Physics Physics
}

func NewWall(points []geometry.Vec3, kind WallKind, owner, neighbour int) (w Wall) {
	w = Wall{
		Kind:   kind,
		Cells:  [2]int{owner, neighbour},
		Center: geometry.AveragePoints(points),
	}
	switch len(points) {
	case 3:
		w.Shape = TrianglePoly
		w.Tri = geometry.NewTriangle(points[0], points[1], points[2])
	case 4:
		w.Shape = QuadPoly
		w.Quad = geometry.NewQuad(points[0], points[1], points[2], points[3])
	default:
		panic(fmt.Sprintf("invalid number of points for a wall: %d", len(points)))
	}
	return
}

// Cell is one hexahedron of the mesh. Vertex winding: the upper face at
// level z1 holds vertices 3,2,6,7 and the lower face at z2 holds 0,1,5,4;
// x increases 0->1, y increases 0->4, z points down the column:
//
//	         3             2
//	         +-------------+  ---- x
//	        /|            /|
//	       / |           / |
//	     7/  |         6/  |
//	     +-------------+   |
//	    /|   |         |   |
//	   / |   +---------|---+
//	  /  |  /0         |  /1
//	 y   | / |         | /
//	     |/  |         |/
//	     +-------------+
//	     4   |         5
//	         |
//	         z
type Cell struct {
	ID           int
	Vertices     [8]geometry.Vec3
	Walls        []Wall
	Center       geometry.Vec3
	Neighbours   []int
	Physics      Physics
	GroundHeight float64
	Volume       float64
}

type Mesh struct {
	Cells []Cell
}

// IntersectPolicy selects where a column's active vertical extent stops
// against the terrain, from the four corner elevations of the column.
type IntersectPolicy uint8

const (
	// IntersectLowest keeps every layer whose upper level clears the lowest
	// corner, so the bottom cell crosses the terrain surface: no gaps above
	// ground, underground slivers on steep terrain. This matches the
	// historical behavior and is the default.
	IntersectLowest IntersectPolicy = iota
	// IntersectHighest keeps only layers fully above the highest corner:
	// no underground cells, gaps above steep terrain.
	IntersectHighest
)

func (p IntersectPolicy) String() string {
	if p == IntersectHighest {
		return "IntersectHighest"
	}
	return "IntersectLowest"
}

// Build constructs a terrain-conforming hexahedral mesh between consecutive
// vertical levels over the elevation grid. Levels must hold at least 2
// distinct values and are processed from highest to lowest regardless of
// input order. Columns whose terrain tops every level contribute no cells.
func Build(g *terrain.Grid, levels []float64, policy IntersectPolicy) (m *Mesh, err error) {
	var (
		nx, ny = g.Nx, g.Ny
		zs     []float64
	)
	if zs, err = descendingLevels(levels); err != nil {
		return
	}
	nz := len(zs)

	var (
		slots  = make([]*Cell, nx*ny*nz) // indexed by provisional id
		layers = make([]int, nx*ny)      // active layer count per column
		provID = func(i, j, k int) int { return nx*ny*k + ny*i + j }
	)

	// Create cells
	for i := 0; i < nx-1; i++ {
		for j := 0; j < ny-1; j++ {
			corners := [4]float64{g.Z(i, j), g.Z(i+1, j), g.Z(i, j+1), g.Z(i+1, j+1)}
			nLayers := activeLayers(zs, corners, policy)
			layers[i*ny+j] = nLayers
			if nLayers == 0 {
				continue
			}

			var (
				groundHeight = (corners[0] + corners[1] + corners[2] + corners[3]) / 4
				pa           = g.XYZ(i, j)
				pb           = g.XYZ(i+1, j)
				pc           = g.XYZ(i, j+1)
				pd           = g.XYZ(i+1, j+1)
			)
			for k := 0; k < nLayers; k++ {
				z1, z2 := zs[k], zs[k+1] // upper, lower
				vertices := [8]geometry.Vec3{
					{X: pa.X, Y: pa.Y, Z: z2},
					{X: pb.X, Y: pb.Y, Z: z2},
					{X: pb.X, Y: pb.Y, Z: z1},
					{X: pa.X, Y: pa.Y, Z: z1},
					{X: pc.X, Y: pc.Y, Z: z2},
					{X: pd.X, Y: pd.Y, Z: z2},
					{X: pd.X, Y: pd.Y, Z: z1},
					{X: pc.X, Y: pc.Y, Z: z1},
				}
				id := provID(i, j, k)
				slots[id] = &Cell{
					ID:           id,
					Vertices:     vertices,
					Walls:        make([]Wall, 0, 6),
					Center:       geometry.AveragePoints(vertices[:]),
					Neighbours:   make([]int, 0, 6),
					GroundHeight: groundHeight,
					// Flat-top approximation: slope within the cell ignored
					Volume: (pb.X - pa.X) * (pc.Y - pa.Y) * (z1 - z2),
				}
			}
		}
	}

	// Create walls. Neighbour references use provisional ids; lateral and
	// vertical neighbours may turn out unpopulated and are resolved during
	// compaction.
	for i := 0; i < nx-1; i++ {
		for j := 0; j < ny-1; j++ {
			for k := 0; k < layers[i*ny+j]; k++ {
				cell := slots[provID(i, j, k)]
				v := cell.Vertices

				kind, neigh := Interior, provID(i, j, k-1)
				if k == 0 {
					kind, neigh = Sky, -1
				}
				cell.Walls = append(cell.Walls,
					NewWall([]geometry.Vec3{v[3], v[7], v[6], v[2]}, kind, cell.ID, neigh))

				kind, neigh = Interior, provID(i, j-1, k)
				if j == 0 {
					kind, neigh = Inlet, -1
				}
				cell.Walls = append(cell.Walls,
					NewWall([]geometry.Vec3{v[3], v[2], v[1], v[0]}, kind, cell.ID, neigh))

				kind, neigh = Interior, provID(i-1, j, k)
				if i == 0 {
					kind, neigh = Inlet, -1
				}
				cell.Walls = append(cell.Walls,
					NewWall([]geometry.Vec3{v[0], v[4], v[7], v[3]}, kind, cell.ID, neigh))

				kind, neigh = Interior, provID(i, j, k+1)
				if k == layers[i*ny+j]-1 {
					kind, neigh = Terrain, -1
				}
				cell.Walls = append(cell.Walls,
					NewWall([]geometry.Vec3{v[0], v[1], v[5], v[4]}, kind, cell.ID, neigh))

				kind, neigh = Interior, provID(i, j+1, k)
				if j == ny-2 {
					kind, neigh = Inlet, -1
				}
				cell.Walls = append(cell.Walls,
					NewWall([]geometry.Vec3{v[4], v[5], v[6], v[7]}, kind, cell.ID, neigh))

				kind, neigh = Interior, provID(i+1, j, k)
				if i == nx-2 {
					kind, neigh = Inlet, -1
				}
				cell.Walls = append(cell.Walls,
					NewWall([]geometry.Vec3{v[1], v[2], v[6], v[5]}, kind, cell.ID, neigh))
			}
		}
	}

	m = compact(slots, layers, nx, ny, provID)
	return
}

// compact collects populated slots in deterministic (i,j,k) order, builds the
// old->new id remap and rewrites every cell id, wall owner pair and neighbour
// list. Downstream consumers require the dense zero-based indexing. An
// Interior wall whose neighbour slot never got a cell abuts ground in the
// adjacent column and becomes a Terrain boundary wall.
func compact(slots []*Cell, layers []int, nx, ny int, provID func(i, j, k int) int) (m *Mesh) {
	var (
		remap = make(map[int]int)
		cells []*Cell
	)
	for i := 0; i < nx-1; i++ {
		for j := 0; j < ny-1; j++ {
			for k := 0; k < layers[i*ny+j]; k++ {
				cell := slots[provID(i, j, k)]
				if cell == nil {
					continue
				}
				remap[cell.ID] = len(cells)
				cells = append(cells, cell)
			}
		}
	}

	m = &Mesh{Cells: make([]Cell, len(cells))}
	for n, cell := range cells {
		cell.ID = remap[cell.ID]
		for w := range cell.Walls {
			wall := &cell.Walls[w]
			wall.Cells[0] = cell.ID
			if wall.Kind != Interior {
				continue
			}
			newID, populated := remap[wall.Cells[1]]
			if !populated {
				wall.Kind = Terrain
				wall.Cells[1] = -1
				continue
			}
			wall.Cells[1] = newID
			cell.Neighbours = append(cell.Neighbours, newID)
		}
		m.Cells[n] = *cell
	}
	return
}

// descendingLevels validates and orders the level set highest first.
func descendingLevels(levels []float64) (zs []float64, err error) {
	if len(levels) < 2 {
		return nil, fmt.Errorf("degenerate level set: need at least 2 distinct levels, got %d",
			len(levels))
	}
	zs = make([]float64, len(levels))
	copy(zs, levels)
	sort.Sort(sort.Reverse(sort.Float64Slice(zs)))
	for n := 1; n < len(zs); n++ {
		if zs[n] == zs[n-1] {
			return nil, fmt.Errorf("degenerate level set: duplicate level %g", zs[n])
		}
	}
	return
}

// activeLayers derives the column's cell count from where the terrain
// intersects the descending level set. Columns with NaN corner samples
// (raster NODATA) are left empty.
func activeLayers(zs []float64, corners [4]float64, policy IntersectPolicy) (nLayers int) {
	ref := corners[0]
	for _, c := range corners[1:] {
		if math.IsNaN(c) || math.IsNaN(ref) {
			return 0
		}
		if policy == IntersectHighest {
			ref = math.Max(ref, c)
		} else {
			ref = math.Min(ref, c)
		}
	}
	above := 0
	for _, z := range zs {
		if z < ref {
			break
		}
		above++
	}
	switch policy {
	case IntersectHighest:
		// Only layers fully above the highest corner
		nLayers = above - 1
	default:
		// One extra layer crossing the lowest corner, unless the level set
		// is exhausted first
		nLayers = above
	}
	if nLayers > len(zs)-1 {
		nLayers = len(zs) - 1
	}
	if nLayers < 0 {
		nLayers = 0
	}
	return
}
