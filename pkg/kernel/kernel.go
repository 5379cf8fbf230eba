// Package kernel defines the abstract geometry kernel interface and the
// indexed triangle mesh shared by the rest of meshstep. Kernels produce
// sample solids (for fixtures and the sample command); the STEP path only
// ever sees the resulting Mesh.
package kernel

import "github.com/chazu/meshstep/pkg/geom"

// Solid is an opaque handle to a geometry kernel solid.
// Implementations wrap their internal representation.
type Solid interface {
	// BoundingBox returns the axis-aligned bounding box.
	BoundingBox() (min, max geom.Vec3)
}

// Kernel builds primitive solids and tessellates them.
type Kernel interface {
	// Primitives, centered on the origin.
	Box(x, y, z float64) (Solid, error)
	Cylinder(height, radius float64) (Solid, error)
	Sphere(radius float64) (Solid, error)

	Translate(s Solid, offset geom.Vec3) Solid

	// ToMesh tessellates a solid into a welded, indexed mesh.
	ToMesh(s Solid) (*Mesh, error)
}
