package step

import (
	"fmt"

	"github.com/chazu/meshstep/pkg/geom"
	"github.com/chazu/meshstep/pkg/kernel"
)

// Limits bounds the size of meshes converted to faceted solids.
type Limits struct {
	MaxVertices int
	MaxFaces    int
}

// DefaultLimits allows meshes of a few million triangles.
var DefaultLimits = Limits{MaxVertices: 2_000_000, MaxFaces: 4_000_000}

// AddMeshSolid converts m into a FACETED_BREP over one CLOSED_SHELL and
// records it as a top-level solid. Each vertex becomes exactly one
// CARTESIAN_POINT shared by every POLY_LOOP that uses it and by the placement
// of each face plane. The mesh is checked in full before anything is added,
// so a rejected mesh leaves the builder untouched.
func (b *Builder) AddMeshSolid(m *kernel.Mesh) (Ref, error) {
	if b.assembled {
		return Ref{}, ErrAssembled
	}
	if err := b.checkMesh(m); err != nil {
		return Ref{}, err
	}

	points := make([]Ref, len(m.Vertices))
	for i, v := range m.Vertices {
		points[i] = b.point(v)
	}

	faces := make([]Ref, 0, len(m.Faces))
	for i, f := range m.Faces {
		loop := b.g.Addf("POLY_LOOP('',(%v,%v,%v))", points[f[0]], points[f[1]], points[f[2]])
		bound := b.g.Addf("FACE_OUTER_BOUND('',%v,.T.)", loop)

		n, _ := m.FaceNormal(i)
		x, _ := geom.Basis(n)
		axis := b.g.Addf("AXIS2_PLACEMENT_3D('',%v,%v,%v)", points[f[0]], b.direction(n), b.direction(x))
		plane := b.g.Addf("PLANE('',%v)", axis)
		faces = append(faces, b.g.Addf("FACE_SURFACE('',(%v),%v,.T.)", bound, plane))
	}

	shell := b.g.Addf("CLOSED_SHELL('',%s)", refList(faces))
	solid := b.g.Addf("FACETED_BREP('',%v)", shell)
	b.solids = append(b.solids, solid)

	b.log.Debug("step.mesh.added",
		"part", m.PartName,
		"vertices", len(m.Vertices),
		"faces", len(m.Faces),
		"solid", solid.String(),
	)
	return solid, nil
}

func (b *Builder) checkMesh(m *kernel.Mesh) error {
	if m == nil || m.IsEmpty() {
		return ErrEmptyMesh
	}
	if len(m.Vertices) > b.limits.MaxVertices || len(m.Faces) > b.limits.MaxFaces {
		return fmt.Errorf("%w: %d vertices, %d faces (limits %d, %d)", ErrMeshTooLarge,
			len(m.Vertices), len(m.Faces), b.limits.MaxVertices, b.limits.MaxFaces)
	}
	if err := m.Validate(); err != nil {
		return fmt.Errorf("step: %w", err)
	}
	return nil
}
