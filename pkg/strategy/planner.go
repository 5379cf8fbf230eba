package strategy

import (
	"fmt"
	"math"

	"github.com/samber/lo"

	"github.com/chazu/meshstep/pkg/analysis"
	"github.com/chazu/meshstep/pkg/geom"
	"github.com/chazu/meshstep/pkg/hints"
)

// DefaultMaxPlanes caps how many planar hints become plane items.
const DefaultMaxPlanes = 12

// Shape classes named by FromHints.
const (
	ShapeBox         = "Rectangular Box"
	ShapeCylindrical = "Cylindrical Part"
	ShapePlate       = "Flat Plate"
	ShapeFaceted     = "Faceted Part"
	ShapeGeneral     = "General 3D Object"
)

// plateRatio is the thinnest-to-largest extent ratio below which a part with
// planar faces is called a plate.
const plateRatio = 0.1

// FromHints plans a strategy from mesh statistics and feature hints without
// any external service. The rules, in order:
//
//   - exactly six axis-aligned planar hints: one box filling the bounding box
//   - a cylinder hint: a cylinder sized from the bounding box, plus the
//     largest planar hints as caps
//   - otherwise the largest planar hints (at most maxPlanes) as planes
//
// With no usable hints the strategy has no items, which callers treat as
// "reconstruct the full mesh".
func FromHints(st analysis.Stats, r hints.Report, maxPlanes int) *Strategy {
	if maxPlanes <= 0 {
		maxPlanes = DefaultMaxPlanes
	}
	dims := st.BBoxDimensions
	center := st.BBoxMin.Add(st.BBoxMax).Scale(0.5)
	hasVolume := dims.X > 0 && dims.Y > 0 && dims.Z > 0

	s := &Strategy{}

	if hasVolume && len(r.Planar) == 6 && lo.EveryBy(r.Planar, axisAligned) {
		s.DetectedShape = ShapeBox
		s.Assume("Six axis-aligned planar faces bound the part; modeled as its bounding box.")
		s.Add(Box{Center: center, Dims: dims})
		return s
	}

	if hasVolume && len(r.Cylindrical) > 0 {
		hint := r.Cylindrical[0]
		radius := radiusAround(hint.Axis, dims)
		s.DetectedShape = ShapeCylindrical
		s.Assume(fmt.Sprintf("Cylinder axis taken from the %s hint through the bounding box center.", hint.Axis))
		s.Assume(fmt.Sprintf("Radius %.2f estimated from bounding box extents perpendicular to the axis.", radius))
		s.Add(Cylinder{Origin: center, Axis: hint.Direction, Radius: radius})
		s.Add(planes(lo.Filter(r.Planar, func(h hints.PlanarHint, _ int) bool {
			return math.Abs(h.Normal.Dot(hint.Direction)) > 1-1e-6
		}), maxPlanes)...)
		return s
	}

	if len(r.Planar) == 0 {
		s.DetectedShape = ShapeGeneral
		s.Assume("No dominant planar or cylindrical features; geometry reconstructed from the mesh.")
		return s
	}

	largest := math.Max(dims.X, math.Max(dims.Y, dims.Z))
	thinnest := math.Min(dims.X, math.Min(dims.Y, dims.Z))
	if largest > 0 && thinnest < plateRatio*largest {
		s.DetectedShape = ShapePlate
	} else {
		s.DetectedShape = ShapeFaceted
	}
	s.Assume("Coplanar mesh regions grouped into bounded planar faces.")
	if len(r.Planar) > maxPlanes {
		s.Assume(fmt.Sprintf("Only the %d largest of %d planar surfaces are modeled.", maxPlanes, len(r.Planar)))
	}
	s.Add(planes(r.Planar, maxPlanes)...)
	return s
}

func axisAligned(h hints.PlanarHint) bool {
	n := h.Normal
	return math.Max(math.Abs(n.X), math.Max(math.Abs(n.Y), math.Abs(n.Z))) > 1-1e-6
}

// radiusAround is half the larger bounding box extent across the axis.
func radiusAround(axis geom.Axis, dims geom.Vec3) float64 {
	switch axis {
	case geom.AxisX:
		return math.Max(dims.Y, dims.Z) / 2
	case geom.AxisY:
		return math.Max(dims.X, dims.Z) / 2
	default:
		return math.Max(dims.X, dims.Y) / 2
	}
}

func planes(hs []hints.PlanarHint, max int) []Item {
	if len(hs) > max {
		hs = hs[:max]
	}
	return lo.Map(hs, func(h hints.PlanarHint, _ int) Item {
		x := h.XAxis
		return Plane{
			Origin: h.Center,
			Normal: h.Normal,
			XAxis:  &x,
			Width:  h.Width,
			Height: h.Height,
		}
	})
}
