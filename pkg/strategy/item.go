package strategy

import (
	"errors"
	"fmt"
	"math"

	"github.com/chazu/meshstep/pkg/geom"
)

// Defaults applied when a declared item omits a parameter.
const (
	DefaultWidth   = 10.0
	DefaultHeight  = 10.0
	DefaultRadius  = 5.0
	DefaultBoxSize = 10.0
)

// ErrUnknownType marks a declared item whose type is not plane, cylinder or box.
var ErrUnknownType = errors.New("unknown item type")

// Kind enumerates the item variants.
type Kind int

const (
	KindPlane    Kind = iota // bounded rectangular face
	KindCylinder             // unbounded cylindrical surface
	KindBox                  // closed hexahedral solid
	KindInvalid              // declared but malformed
)

func (k Kind) String() string {
	switch k {
	case KindPlane:
		return "PLANE"
	case KindCylinder:
		return "CYLINDER"
	case KindBox:
		return "BOX"
	case KindInvalid:
		return "INVALID"
	default:
		return "unknown"
	}
}

// Item is the closed set of strategy items. Only the types in this package
// implement it.
type Item interface {
	Kind() Kind
	// Validate reports parameters no builder can turn into geometry.
	Validate() error
	item()
}

// ---------------------------------------------------------------------------
// Plane
// ---------------------------------------------------------------------------

// Plane is a width x height rectangle centered on Origin. When XAxis is nil
// the in-plane frame follows the tangent rule.
type Plane struct {
	Origin geom.Vec3  `json:"origin"`
	Normal geom.Vec3  `json:"normal"`
	XAxis  *geom.Vec3 `json:"x_axis,omitempty"`
	Width  float64    `json:"width"`
	Height float64    `json:"height"`
}

// NewPlane returns a 10x10 plane at the origin facing +Z.
func NewPlane() Plane {
	return Plane{
		Normal: geom.DefaultNormal,
		Width:  DefaultWidth,
		Height: DefaultHeight,
	}
}

func (Plane) Kind() Kind { return KindPlane }
func (Plane) item()      {}

func (p Plane) Validate() error {
	if err := finiteVec("origin", p.Origin); err != nil {
		return err
	}
	if err := finiteVec("normal", p.Normal); err != nil {
		return err
	}
	if p.XAxis != nil {
		if err := finiteVec("x_axis", *p.XAxis); err != nil {
			return err
		}
	}
	if err := positive("width", p.Width); err != nil {
		return err
	}
	return positive("height", p.Height)
}

// ---------------------------------------------------------------------------
// Cylinder
// ---------------------------------------------------------------------------

// Cylinder is an infinite cylindrical surface around the line through Origin
// along Axis.
type Cylinder struct {
	Origin geom.Vec3 `json:"origin"`
	Axis   geom.Vec3 `json:"axis"`
	Radius float64   `json:"radius"`
}

// NewCylinder returns a radius-5 cylinder around the Z axis.
func NewCylinder() Cylinder {
	return Cylinder{
		Axis:   geom.UnitZ,
		Radius: DefaultRadius,
	}
}

func (Cylinder) Kind() Kind { return KindCylinder }
func (Cylinder) item()      {}

func (c Cylinder) Validate() error {
	if err := finiteVec("origin", c.Origin); err != nil {
		return err
	}
	if err := finiteVec("axis", c.Axis); err != nil {
		return err
	}
	return positive("radius", c.Radius)
}

// ---------------------------------------------------------------------------
// Box
// ---------------------------------------------------------------------------

// Box is an axis-aligned hexahedron with edge lengths Dims centered on Center.
type Box struct {
	Center geom.Vec3 `json:"center"`
	Dims   geom.Vec3 `json:"dimensions"`
}

// NewBox returns a 10mm cube centered on the origin.
func NewBox() Box {
	return Box{Dims: geom.V(DefaultBoxSize, DefaultBoxSize, DefaultBoxSize)}
}

func (Box) Kind() Kind { return KindBox }
func (Box) item()      {}

func (b Box) Validate() error {
	if err := finiteVec("center", b.Center); err != nil {
		return err
	}
	if err := positive("dimensions[0]", b.Dims.X); err != nil {
		return err
	}
	if err := positive("dimensions[1]", b.Dims.Y); err != nil {
		return err
	}
	return positive("dimensions[2]", b.Dims.Z)
}

// ---------------------------------------------------------------------------
// Invalid
// ---------------------------------------------------------------------------

// Invalid records a declared item that could not be decoded. It keeps its
// place in the item list so diagnostics can point at it.
type Invalid struct {
	Type string `json:"type"`
	Err  error  `json:"-"`
}

func (Invalid) Kind() Kind { return KindInvalid }
func (Invalid) item()      {}

func (i Invalid) Validate() error {
	if i.Err != nil {
		return i.Err
	}
	return fmt.Errorf("%q: %w", i.Type, ErrUnknownType)
}

// ---------------------------------------------------------------------------
// Helpers
// ---------------------------------------------------------------------------

func finite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}

func finiteVec(field string, v geom.Vec3) error {
	if !finite(v.X) || !finite(v.Y) || !finite(v.Z) {
		return fmt.Errorf("%s: non-finite component in %v", field, v)
	}
	return nil
}

func positive(field string, f float64) error {
	if !finite(f) || f <= 0 {
		return fmt.Errorf("%s: must be a positive number, got %v", field, f)
	}
	return nil
}
