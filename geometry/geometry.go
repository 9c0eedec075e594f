package geometry

import (
	"fmt"
	"math"
)

// PointTolerance is the absolute tolerance used for point equality and for
// the quantized dedup key. Two points closer than this per component are the
// same vertex.
const PointTolerance = 1e-9

type Vec3 struct {
	X, Y, Z float64
}

func NewVec3(x, y, z float64) Vec3 {
	return Vec3{X: x, Y: y, Z: z}
}

func (v Vec3) Add(o Vec3) Vec3 {
	return Vec3{v.X + o.X, v.Y + o.Y, v.Z + o.Z}
}

func (v Vec3) Sub(o Vec3) Vec3 {
	return Vec3{v.X - o.X, v.Y - o.Y, v.Z - o.Z}
}

func (v Vec3) Scale(s float64) Vec3 {
	return Vec3{s * v.X, s * v.Y, s * v.Z}
}

func (v Vec3) Div(d float64) Vec3 {
	return Vec3{v.X / d, v.Y / d, v.Z / d}
}

func (v Vec3) Dot(o Vec3) float64 {
	return v.X*o.X + v.Y*o.Y + v.Z*o.Z
}

func (v Vec3) Cross(o Vec3) Vec3 {
	return Vec3{
		X: v.Y*o.Z - v.Z*o.Y,
		Y: v.Z*o.X - v.X*o.Z,
		Z: v.X*o.Y - v.Y*o.X,
	}
}

func (v Vec3) Mag() float64 {
	return math.Sqrt(v.Dot(v))
}

// Near reports per-component equality within an absolute tolerance.
func (v Vec3) Near(o Vec3, tol float64) bool {
	return math.Abs(v.X-o.X) <= tol &&
		math.Abs(v.Y-o.Y) <= tol &&
		math.Abs(v.Z-o.Z) <= tol
}

// Key quantizes the point onto a PointTolerance lattice so that points equal
// within tolerance hash to the same map key.
func (v Vec3) Key() [3]int64 {
	return [3]int64{
		int64(math.Round(v.X / PointTolerance)),
		int64(math.Round(v.Y / PointTolerance)),
		int64(math.Round(v.Z / PointTolerance)),
	}
}

func (v Vec3) String() string {
	return fmt.Sprintf("(%g, %g, %g)", v.X, v.Y, v.Z)
}

type Triangle struct {
	V      [3]Vec3
	Center Vec3
	Normal Vec3
	Area   float64
}

func NewTriangle(v1, v2, v3 Vec3) (tri Triangle) {
	u := v2.Sub(v1)
	w := v3.Sub(v1)
	normal := u.Cross(w)
	tri = Triangle{
		V:      [3]Vec3{v1, v2, v3},
		Center: v1.Add(v2).Add(v3).Div(3),
		Normal: normal,
		Area:   0.5 * normal.Mag(),
	}
	return
}

type Quad struct {
	V      [4]Vec3
	Center Vec3
	Normal Vec3
	Area   float64
}

// NewQuad builds a quad from four corners in winding order. The area is the
// sum of the two triangles (v1,v2,v3) and (v1,v3,v4); the normal is taken
// from the first triangle.
func NewQuad(v1, v2, v3, v4 Vec3) (q Quad) {
	u := v2.Sub(v1)
	w := v3.Sub(v1)
	s := v4.Sub(v1)
	n1 := u.Cross(w)
	n2 := w.Cross(s)
	q = Quad{
		V:      [4]Vec3{v1, v2, v3, v4},
		Center: v1.Add(v2).Add(v3).Add(v4).Div(4),
		Normal: n1,
		Area:   0.5 * (n1.Mag() + n2.Mag()),
	}
	return
}

func AveragePoints(points []Vec3) (avg Vec3) {
	if len(points) == 0 {
		return
	}
	for _, p := range points {
		avg = avg.Add(p)
	}
	return avg.Div(float64(len(points)))
}
