package kernel

import (
	"errors"
	"fmt"
	"math"

	"github.com/chazu/meshstep/pkg/geom"
)

// ErrInvalidIndex is returned when a face references a vertex that does not exist.
var ErrInvalidIndex = errors.New("face references a missing vertex")

// ErrNonFinite is returned when a vertex coordinate is NaN or infinite.
var ErrNonFinite = errors.New("vertex coordinate is not finite")

// Mesh is an indexed triangle mesh. Faces index into Vertices (0-based) and
// are assumed to wind counter-clockwise when seen from outside.
type Mesh struct {
	Vertices []geom.Vec3 `json:"vertices"`
	Faces    [][3]int    `json:"faces"`
	PartName string      `json:"partName,omitempty"`
}

// VertexCount returns the number of vertices.
func (m *Mesh) VertexCount() int {
	return len(m.Vertices)
}

// TriangleCount returns the number of triangles.
func (m *Mesh) TriangleCount() int {
	return len(m.Faces)
}

// IsEmpty returns true if the mesh has no geometry.
func (m *Mesh) IsEmpty() bool {
	return len(m.Vertices) == 0 || len(m.Faces) == 0
}

// Validate checks that every vertex is finite and every face index resolves
// to a vertex.
func (m *Mesh) Validate() error {
	for i, v := range m.Vertices {
		if !finite(v) {
			return fmt.Errorf("kernel: vertex %d %v: %w", i, v, ErrNonFinite)
		}
	}
	n := len(m.Vertices)
	for fi, f := range m.Faces {
		for _, idx := range f {
			if idx < 0 || idx >= n {
				return fmt.Errorf("kernel: face %d index %d (of %d vertices): %w", fi, idx, n, ErrInvalidIndex)
			}
		}
	}
	return nil
}

func finite(v geom.Vec3) bool {
	for _, c := range [3]float64{v.X, v.Y, v.Z} {
		if math.IsNaN(c) || math.IsInf(c, 0) {
			return false
		}
	}
	return true
}

// Triangle returns the three corner positions of face i.
func (m *Mesh) Triangle(i int) (a, b, c geom.Vec3) {
	f := m.Faces[i]
	return m.Vertices[f[0]], m.Vertices[f[1]], m.Vertices[f[2]]
}

// FaceNormal returns the unit normal of face i, and false when the face has
// no area.
func (m *Mesh) FaceNormal(i int) (geom.Vec3, bool) {
	a, b, c := m.Triangle(i)
	return geom.TriangleNormal(a, b, c)
}

// FaceArea returns the area of face i.
func (m *Mesh) FaceArea(i int) float64 {
	a, b, c := m.Triangle(i)
	return geom.TriangleArea(a, b, c)
}

// weldScale quantizes coordinates to 1e-6 mm when welding.
const weldScale = 1e6

type weldKey [3]int64

func keyOf(v geom.Vec3) weldKey {
	return weldKey{
		int64(math.Round(v.X * weldScale)),
		int64(math.Round(v.Y * weldScale)),
		int64(math.Round(v.Z * weldScale)),
	}
}

// Weld builds an indexed mesh from a triangle soup, merging corners that
// coincide after quantization. Triangles that collapse onto fewer than three
// distinct vertices are dropped.
func Weld(tris [][3]geom.Vec3) *Mesh {
	m := &Mesh{}
	index := make(map[weldKey]int, len(tris))

	for _, tri := range tris {
		var f [3]int
		for j, v := range tri {
			k := keyOf(v)
			idx, ok := index[k]
			if !ok {
				idx = len(m.Vertices)
				index[k] = idx
				m.Vertices = append(m.Vertices, v)
			}
			f[j] = idx
		}
		if f[0] == f[1] || f[1] == f[2] || f[0] == f[2] {
			continue
		}
		m.Faces = append(m.Faces, f)
	}
	return m
}
