package hints

import (
	"fmt"
	"math"

	"github.com/samber/lo"

	"github.com/chazu/meshstep/pkg/geom"
	"github.com/chazu/meshstep/pkg/kernel"
)

const (
	// perpendicularCos selects faces whose normal is nearly perpendicular to
	// the tested axis.
	perpendicularCos = 0.1
	// minCurvedShare is the share of total area those faces must exceed.
	minCurvedShare = 0.1
	// alignedMeanLen is the mean unit-normal length at or above which the
	// selected normals count as aligned (flat) rather than dispersed.
	alignedMeanLen = 0.95
)

// candidateAxes are tested in this order.
var candidateAxes = []geom.Axis{geom.AxisZ, geom.AxisX}

// ExtractCylindrical flags each candidate axis around which a significant
// share of the surface has normals perpendicular to the axis that also point
// in dispersed directions. No radius or origin is estimated.
func ExtractCylindrical(m *kernel.Mesh) []CylinderHint {
	if !usable(m) {
		return nil
	}
	faces := computeFaces(m)
	total := lo.SumBy(faces, func(f faceData) float64 { return f.area })
	if total <= 0 {
		return nil
	}

	var out []CylinderHint
	for _, axis := range candidateAxes {
		dir := axis.Vec()
		side := lo.Filter(faces, func(f faceData, _ int) bool {
			return f.ok && math.Abs(f.normal.Dot(dir)) < perpendicularCos
		})
		if len(side) == 0 {
			continue
		}
		area := lo.SumBy(side, func(f faceData) float64 { return f.area })
		if area/total <= minCurvedShare {
			continue
		}
		if !normalsDisperse(side) {
			continue
		}
		out = append(out, CylinderHint{
			Axis:      axis,
			Direction: dir,
			Reason: fmt.Sprintf(
				"Significant curved surface area with normals perpendicular to %s axis.", axis),
		})
	}
	return out
}

// normalsDisperse reports whether the mean of the unit normals is clearly
// shorter than a unit vector.
func normalsDisperse(faces []faceData) bool {
	sum := lo.Reduce(faces, func(acc geom.Vec3, f faceData, _ int) geom.Vec3 {
		return acc.Add(f.normal)
	}, geom.Zero)
	return sum.Scale(1/float64(len(faces))).Len() < alignedMeanLen
}
