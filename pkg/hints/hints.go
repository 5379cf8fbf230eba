// Package hints extracts heuristic geometric annotations from a triangle
// mesh: clusters of coplanar faces (planar hints) and axis directions around
// which face normals fan out (cylinder candidates). Hints are signals for a
// strategy, not fitted primitives.
package hints

import (
	"fmt"

	"github.com/chazu/meshstep/pkg/geom"
	"github.com/chazu/meshstep/pkg/kernel"
)

// DefaultMinAreaFraction is the smallest share of total surface area a
// coplanar cluster must cover to be reported.
const DefaultMinAreaFraction = 0.01

// PlanarHint describes one cluster of adjacent coplanar faces.
type PlanarHint struct {
	Normal    geom.Vec3 `json:"normal"`
	Area      float64   `json:"area"`
	Center    geom.Vec3 `json:"center"` // bounding-rectangle center, not the centroid
	Width     float64   `json:"width"`
	Height    float64   `json:"height"`
	XAxis     geom.Vec3 `json:"x_axis"`
	YAxis     geom.Vec3 `json:"y_axis"`
	FaceCount int       `json:"face_count"`
}

// CylinderHint flags a global axis around which curved surface area was
// found. It carries no radius or origin.
type CylinderHint struct {
	Axis      geom.Axis `json:"axis"`
	Direction geom.Vec3 `json:"axis_hint"`
	Reason    string    `json:"reason"`
}

// Report bundles both hint lists.
type Report struct {
	Planar      []PlanarHint   `json:"planar_features"`
	Cylindrical []CylinderHint `json:"cylindrical_hints"`
	Summary     string         `json:"summary"`
}

// Extract runs both extractors.
func Extract(m *kernel.Mesh, minAreaFraction float64) Report {
	planar := ExtractPlanar(m, minAreaFraction)
	cyl := ExtractCylindrical(m)
	return Report{
		Planar:      planar,
		Cylindrical: cyl,
		Summary:     fmt.Sprintf("Detected %d major planar surfaces.", len(planar)),
	}
}

// faceData caches per-face normals and areas. Faces without area have
// ok == false and are ignored by both extractors.
type faceData struct {
	normal geom.Vec3
	area   float64
	ok     bool
}

func computeFaces(m *kernel.Mesh) []faceData {
	out := make([]faceData, len(m.Faces))
	for i := range m.Faces {
		n, ok := m.FaceNormal(i)
		out[i] = faceData{normal: n, area: m.FaceArea(i), ok: ok}
	}
	return out
}

// usable reports whether m can be analysed at all. Meshes with bad indices
// or non-finite vertices yield no hints.
func usable(m *kernel.Mesh) bool {
	return m != nil && !m.IsEmpty() && m.Validate() == nil
}
