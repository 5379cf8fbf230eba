// Package tessellate turns named sample parts into triangle meshes using a
// geometry kernel. One mesh is produced per part; Merge concatenates them
// into a single mesh for writing.
package tessellate

import (
	"errors"
	"fmt"
	"strings"

	"github.com/chazu/meshstep/pkg/geom"
	"github.com/chazu/meshstep/pkg/kernel"
)

// ErrUnknownShape is returned for a part whose shape the kernel cannot build.
var ErrUnknownShape = errors.New("unknown shape")

// Shape names a kernel primitive.
type Shape string

const (
	ShapeBox      Shape = "box"
	ShapeCylinder Shape = "cylinder"
	ShapeSphere   Shape = "sphere"
)

// Shapes lists the supported shapes in display order.
var Shapes = []Shape{ShapeBox, ShapeCylinder, ShapeSphere}

// ParseShape accepts a shape name in any case.
func ParseShape(s string) (Shape, error) {
	switch sh := Shape(strings.ToLower(strings.TrimSpace(s))); sh {
	case ShapeBox, ShapeCylinder, ShapeSphere:
		return sh, nil
	}
	return "", fmt.Errorf("tessellate: %q: %w", s, ErrUnknownShape)
}

// Part is one primitive to tessellate. Dims is read per shape:
// box uses all three extents, cylinder uses X as radius and Z as height,
// sphere uses X as radius.
type Part struct {
	Name   string
	Shape  Shape
	Dims   geom.Vec3
	Offset geom.Vec3
}

// Sample returns the default sample part for a shape, sized to read well in
// a CAD viewer.
func Sample(sh Shape) Part {
	p := Part{Name: "sample-" + string(sh), Shape: sh}
	switch sh {
	case ShapeBox:
		p.Dims = geom.V(40, 30, 20)
	case ShapeCylinder:
		p.Dims = geom.V(10, 0, 40)
	case ShapeSphere:
		p.Dims = geom.V(15, 0, 0)
	}
	return p
}

// Tessellate builds and meshes each part in order. The first failure aborts
// and names the part.
func Tessellate(parts []Part, k kernel.Kernel) ([]*kernel.Mesh, error) {
	meshes := make([]*kernel.Mesh, 0, len(parts))
	for i, p := range parts {
		m, err := tessellatePart(k, p)
		if err != nil {
			return nil, fmt.Errorf("tessellate: part %d (%s): %w", i, partName(i, p), err)
		}
		m.PartName = partName(i, p)
		meshes = append(meshes, m)
	}
	return meshes, nil
}

func tessellatePart(k kernel.Kernel, p Part) (*kernel.Mesh, error) {
	var (
		solid kernel.Solid
		err   error
	)
	switch p.Shape {
	case ShapeBox:
		solid, err = k.Box(p.Dims.X, p.Dims.Y, p.Dims.Z)
	case ShapeCylinder:
		solid, err = k.Cylinder(p.Dims.Z, p.Dims.X)
	case ShapeSphere:
		solid, err = k.Sphere(p.Dims.X)
	default:
		return nil, fmt.Errorf("%q: %w", p.Shape, ErrUnknownShape)
	}
	if err != nil {
		return nil, err
	}

	if p.Offset != geom.Zero {
		solid = k.Translate(solid, p.Offset)
	}
	return k.ToMesh(solid)
}

func partName(i int, p Part) string {
	if p.Name != "" {
		return p.Name
	}
	return fmt.Sprintf("part-%d", i)
}

// Merge concatenates meshes into one, re-indexing faces. Vertices are not
// welded across parts. The result takes the first part's name.
func Merge(meshes []*kernel.Mesh) *kernel.Mesh {
	out := &kernel.Mesh{}
	for _, m := range meshes {
		if m == nil {
			continue
		}
		if out.PartName == "" {
			out.PartName = m.PartName
		}
		base := len(out.Vertices)
		out.Vertices = append(out.Vertices, m.Vertices...)
		for _, f := range m.Faces {
			out.Faces = append(out.Faces, [3]int{f[0] + base, f[1] + base, f[2] + base})
		}
	}
	return out
}
