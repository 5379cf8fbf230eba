// Package sdfx implements the kernel.Kernel interface using the
// github.com/deadsy/sdfx SDF-based CAD library. It is used to generate
// sample meshes; marching cubes output is welded into an indexed mesh.
package sdfx

import (
	"fmt"

	"github.com/chazu/meshstep/pkg/geom"
	"github.com/chazu/meshstep/pkg/kernel"
	"github.com/deadsy/sdfx/render"
	"github.com/deadsy/sdfx/sdf"
	v3 "github.com/deadsy/sdfx/vec/v3"
)

// Compile-time interface check.
var _ kernel.Kernel = (*SdfxKernel)(nil)

// DefaultMeshCells controls marching cubes tessellation resolution.
const DefaultMeshCells = 200

// sdfxSolid wraps an sdf.SDF3 to implement kernel.Solid.
type sdfxSolid struct {
	s sdf.SDF3
}

// BoundingBox returns the axis-aligned bounding box.
func (s *sdfxSolid) BoundingBox() (min, max geom.Vec3) {
	bb := s.s.BoundingBox()
	return toVec(bb.Min), toVec(bb.Max)
}

// SdfxKernel implements kernel.Kernel using sdfx.
type SdfxKernel struct {
	cells int
}

// New returns a kernel tessellating at DefaultMeshCells.
func New() *SdfxKernel {
	return &SdfxKernel{cells: DefaultMeshCells}
}

// NewWithCells returns a kernel tessellating at the given resolution along
// the longest bounding box axis. Values below 8 are raised to 8.
func NewWithCells(cells int) *SdfxKernel {
	if cells < 8 {
		cells = 8
	}
	return &SdfxKernel{cells: cells}
}

func unwrap(s kernel.Solid) (sdf.SDF3, error) {
	ss, ok := s.(*sdfxSolid)
	if !ok {
		return nil, fmt.Errorf("sdfx: foreign solid %T", s)
	}
	return ss.s, nil
}

func wrap(s sdf.SDF3) kernel.Solid {
	return &sdfxSolid{s: s}
}

func toVec(v v3.Vec) geom.Vec3 {
	return geom.Vec3{X: v.X, Y: v.Y, Z: v.Z}
}

// Box creates a box with the given dimensions centered on the origin.
func (k *SdfxKernel) Box(x, y, z float64) (kernel.Solid, error) {
	s, err := sdf.Box3D(v3.Vec{X: x, Y: y, Z: z}, 0)
	if err != nil {
		return nil, fmt.Errorf("sdfx: box: %w", err)
	}
	return wrap(s), nil
}

// Cylinder creates a Z-aligned cylinder centered on the origin.
func (k *SdfxKernel) Cylinder(height, radius float64) (kernel.Solid, error) {
	s, err := sdf.Cylinder3D(height, radius, 0)
	if err != nil {
		return nil, fmt.Errorf("sdfx: cylinder: %w", err)
	}
	return wrap(s), nil
}

// Sphere creates a sphere centered on the origin.
func (k *SdfxKernel) Sphere(radius float64) (kernel.Solid, error) {
	s, err := sdf.Sphere3D(radius)
	if err != nil {
		return nil, fmt.Errorf("sdfx: sphere: %w", err)
	}
	return wrap(s), nil
}

// Translate moves a solid by offset. Foreign solids are returned unchanged.
func (k *SdfxKernel) Translate(s kernel.Solid, offset geom.Vec3) kernel.Solid {
	inner, err := unwrap(s)
	if err != nil {
		return s
	}
	m := sdf.Translate3d(v3.Vec{X: offset.X, Y: offset.Y, Z: offset.Z})
	return wrap(sdf.Transform3D(inner, m))
}

// ToMesh converts a solid to a welded triangle mesh using marching cubes.
func (k *SdfxKernel) ToMesh(s kernel.Solid) (*kernel.Mesh, error) {
	inner, err := unwrap(s)
	if err != nil {
		return nil, err
	}

	renderer := render.NewMarchingCubesUniform(k.cells)
	triangles := render.ToTriangles(inner, renderer)
	if len(triangles) == 0 {
		return nil, fmt.Errorf("sdfx: marching cubes produced no triangles")
	}

	soup := make([][3]geom.Vec3, 0, len(triangles))
	for _, tri := range triangles {
		soup = append(soup, [3]geom.Vec3{toVec(tri[0]), toVec(tri[1]), toVec(tri[2])})
	}

	return kernel.Weld(soup), nil
}
