// Package analysis computes summary statistics for an indexed triangle mesh:
// bounds, surface area, closedness, and volume for closed meshes.
package analysis

import (
	"math"

	"github.com/chazu/meshstep/pkg/geom"
	"github.com/chazu/meshstep/pkg/kernel"
)

// Stats summarizes a mesh. Volume is nil unless the mesh is watertight.
type Stats struct {
	NumVertices    int       `json:"num_vertices"`
	NumFaces       int       `json:"num_faces"`
	BBoxMin        geom.Vec3 `json:"bbox_min"`
	BBoxMax        geom.Vec3 `json:"bbox_max"`
	BBoxDimensions geom.Vec3 `json:"bbox_dimensions"`
	IsWatertight   bool      `json:"is_watertight"`
	Volume         *float64  `json:"volume"`
	SurfaceArea    float64   `json:"surface_area"`
	// CenterMass is the volume centroid for watertight meshes and the
	// area-weighted surface centroid otherwise.
	CenterMass geom.Vec3 `json:"center_mass"`
}

// Report is the outcome of Validity.
type Report struct {
	Valid  bool     `json:"valid"`
	Issues []string `json:"issues"`
}

// Compute returns the statistics of m. A nil or empty mesh yields zero
// counts and bounds.
func Compute(m *kernel.Mesh) Stats {
	if m == nil {
		return Stats{}
	}
	st := Stats{
		NumVertices: m.VertexCount(),
		NumFaces:    m.TriangleCount(),
	}
	if m.IsEmpty() || m.Validate() != nil {
		return st
	}

	st.BBoxMin, st.BBoxMax = bounds(m.Vertices)
	st.BBoxDimensions = st.BBoxMax.Sub(st.BBoxMin)
	st.IsWatertight = Watertight(m)

	var (
		area, volume   float64
		areaCentroid   geom.Vec3
		volumeCentroid geom.Vec3
	)
	for i := range m.Faces {
		a, b, c := m.Triangle(i)
		fa := geom.TriangleArea(a, b, c)
		area += fa
		areaCentroid = areaCentroid.Add(a.Add(b).Add(c).Scale(fa / 3))

		// Signed volume of the tetrahedron (origin, a, b, c).
		v := a.Dot(b.Cross(c)) / 6
		volume += v
		volumeCentroid = volumeCentroid.Add(a.Add(b).Add(c).Scale(v / 4))
	}
	st.SurfaceArea = area

	if area > 0 {
		st.CenterMass = areaCentroid.Scale(1 / area)
	}
	if st.IsWatertight {
		st.Volume = &volume
		if math.Abs(volume) > geom.Epsilon {
			st.CenterMass = volumeCentroid.Scale(1 / volume)
		}
	}
	return st
}

// Watertight reports whether every edge of m is shared by exactly two faces
// that traverse it in opposite directions.
func Watertight(m *kernel.Mesh) bool {
	if m == nil || m.IsEmpty() {
		return false
	}
	type edge struct{ from, to int }
	directed := make(map[edge]int, len(m.Faces)*3)
	for _, f := range m.Faces {
		for j := 0; j < 3; j++ {
			directed[edge{f[j], f[(j+1)%3]}]++
		}
	}
	for e, n := range directed {
		if n != 1 || directed[edge{e.to, e.from}] != 1 {
			return false
		}
	}
	return true
}

// Validity reports whether m can be processed at all, plus advisory issues.
func Validity(m *kernel.Mesh) Report {
	r := Report{Valid: true, Issues: []string{}}
	if m == nil || m.IsEmpty() {
		r.Valid = false
		r.Issues = append(r.Issues, "Mesh is empty.")
		return r
	}
	if err := m.Validate(); err != nil {
		r.Valid = false
		r.Issues = append(r.Issues, err.Error())
		return r
	}
	if !Watertight(m) {
		r.Issues = append(r.Issues, "Mesh is not watertight (may affect volume calc).")
	}
	return r
}

func bounds(pts []geom.Vec3) (min, max geom.Vec3) {
	min = geom.V(math.Inf(1), math.Inf(1), math.Inf(1))
	max = geom.V(math.Inf(-1), math.Inf(-1), math.Inf(-1))
	for _, p := range pts {
		min = geom.V(math.Min(min.X, p.X), math.Min(min.Y, p.Y), math.Min(min.Z, p.Z))
		max = geom.V(math.Max(max.X, p.X), math.Max(max.Y, p.Y), math.Max(max.Z, p.Z))
	}
	return min, max
}
