// Package geom holds the small amount of vector math shared by the hint
// extractor and the STEP builder.
package geom

import (
	"fmt"
	"math"
)

// Epsilon is the length below which a vector is treated as degenerate.
const Epsilon = 1e-9

// Vec3 is a 3D vector or point in millimetres.
type Vec3 struct {
	X float64 `json:"x" yaml:"x"`
	Y float64 `json:"y" yaml:"y"`
	Z float64 `json:"z" yaml:"z"`
}

var (
	Zero          = Vec3{}
	UnitX         = Vec3{X: 1}
	UnitY         = Vec3{Y: 1}
	UnitZ         = Vec3{Z: 1}
	DefaultNormal = UnitZ
)

// V is shorthand for Vec3{x, y, z}.
func V(x, y, z float64) Vec3 {
	return Vec3{X: x, Y: y, Z: z}
}

// FromSlice converts a 3-element slice. Any other length is an error.
func FromSlice(s []float64) (Vec3, error) {
	if len(s) != 3 {
		return Vec3{}, fmt.Errorf("expected 3 components, got %d", len(s))
	}
	return Vec3{X: s[0], Y: s[1], Z: s[2]}, nil
}

func (v Vec3) Add(o Vec3) Vec3 {
	return Vec3{v.X + o.X, v.Y + o.Y, v.Z + o.Z}
}

func (v Vec3) Sub(o Vec3) Vec3 {
	return Vec3{v.X - o.X, v.Y - o.Y, v.Z - o.Z}
}

func (v Vec3) Scale(s float64) Vec3 {
	return Vec3{v.X * s, v.Y * s, v.Z * s}
}

func (v Vec3) Dot(o Vec3) float64 {
	return v.X*o.X + v.Y*o.Y + v.Z*o.Z
}

func (v Vec3) Cross(o Vec3) Vec3 {
	return Vec3{
		v.Y*o.Z - v.Z*o.Y,
		v.Z*o.X - v.X*o.Z,
		v.X*o.Y - v.Y*o.X,
	}
}

func (v Vec3) Len() float64 {
	return math.Sqrt(v.Dot(v))
}

// Normalize returns the unit vector along v, or fallback when v is too short
// to normalize.
func (v Vec3) Normalize(fallback Vec3) Vec3 {
	l := v.Len()
	if l < Epsilon || math.IsNaN(l) || math.IsInf(l, 0) {
		return fallback
	}
	return v.Scale(1 / l)
}

// Slice returns the components as a 3-element slice.
func (v Vec3) Slice() []float64 {
	return []float64{v.X, v.Y, v.Z}
}

func (v Vec3) String() string {
	return fmt.Sprintf("(%g, %g, %g)", v.X, v.Y, v.Z)
}

// Tangent returns a global axis that is safe to cross with n: Z, unless n is
// within 0.9 absolute cosine of Z, in which case Y.
func Tangent(n Vec3) Vec3 {
	if math.Abs(n.Dot(UnitZ)) > 0.9 {
		return UnitY
	}
	return UnitZ
}

// Basis builds an orthonormal in-plane frame for the unit normal n:
// x = normalize(n × Tangent(n)), y = n × x.
func Basis(n Vec3) (x, y Vec3) {
	x = n.Cross(Tangent(n)).Normalize(UnitX)
	y = n.Cross(x)
	return x, y
}

// BasisWithX is Basis with a preferred x direction. The hint is projected into
// the plane of n; if nothing usable remains the tangent rule applies.
func BasisWithX(n, hint Vec3) (x, y Vec3) {
	proj := hint.Sub(n.Scale(hint.Dot(n)))
	if proj.Len() < 1e-6 {
		return Basis(n)
	}
	x = proj.Normalize(UnitX)
	y = n.Cross(x)
	return x, y
}

// TriangleNormal returns the unit normal of the triangle (a, b, c) by the
// right-hand rule, and false when the triangle is degenerate.
func TriangleNormal(a, b, c Vec3) (Vec3, bool) {
	n := b.Sub(a).Cross(c.Sub(a))
	if n.Len() < Epsilon {
		return DefaultNormal, false
	}
	return n.Normalize(DefaultNormal), true
}

// TriangleArea returns the area of the triangle (a, b, c).
func TriangleArea(a, b, c Vec3) float64 {
	return b.Sub(a).Cross(c.Sub(a)).Len() / 2
}
