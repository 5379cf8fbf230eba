// Package kerneltest provides small hand-built meshes for tests.
package kerneltest

import (
	"math"

	"github.com/chazu/meshstep/pkg/geom"
	"github.com/chazu/meshstep/pkg/kernel"
)

// Cube returns an axis-aligned cube with its min corner at the origin:
// 8 vertices, 12 outward-wound triangles, two per side.
func Cube(size float64) *kernel.Mesh {
	s := size
	return &kernel.Mesh{
		PartName: "cube",
		Vertices: []geom.Vec3{
			geom.V(0, 0, 0), geom.V(s, 0, 0), geom.V(s, s, 0), geom.V(0, s, 0),
			geom.V(0, 0, s), geom.V(s, 0, s), geom.V(s, s, s), geom.V(0, s, s),
		},
		Faces: [][3]int{
			{0, 2, 1}, {0, 3, 2}, // bottom -Z
			{4, 5, 6}, {4, 6, 7}, // top +Z
			{0, 1, 5}, {0, 5, 4}, // front -Y
			{1, 2, 6}, {1, 6, 5}, // right +X
			{2, 3, 7}, {2, 7, 6}, // back +Y
			{3, 0, 4}, {3, 4, 7}, // left -X
		},
	}
}

// Plate returns a single flat w×h rectangle in the XY plane facing +Z.
func Plate(w, h float64) *kernel.Mesh {
	return &kernel.Mesh{
		PartName: "plate",
		Vertices: []geom.Vec3{
			geom.V(0, 0, 0), geom.V(w, 0, 0), geom.V(w, h, 0), geom.V(0, h, 0),
		},
		Faces: [][3]int{{0, 1, 2}, {0, 2, 3}},
	}
}

// UVSphere returns a closed latitude/longitude sphere centered on the origin.
// An odd stack count puts a band of faces straddling the equator.
func UVSphere(radius float64, slices, stacks int) *kernel.Mesh {
	m := &kernel.Mesh{PartName: "sphere"}

	m.Vertices = append(m.Vertices, geom.V(0, 0, -radius)) // south pole
	for i := 1; i < stacks; i++ {
		lat := -math.Pi/2 + math.Pi*float64(i)/float64(stacks)
		for j := 0; j < slices; j++ {
			lon := 2 * math.Pi * float64(j) / float64(slices)
			m.Vertices = append(m.Vertices, geom.V(
				radius*math.Cos(lat)*math.Cos(lon),
				radius*math.Cos(lat)*math.Sin(lon),
				radius*math.Sin(lat),
			))
		}
	}
	north := len(m.Vertices)
	m.Vertices = append(m.Vertices, geom.V(0, 0, radius))

	ring := func(i, j int) int { return 1 + (i-1)*slices + j%slices }

	for j := 0; j < slices; j++ {
		m.Faces = append(m.Faces, [3]int{0, ring(1, j+1), ring(1, j)})
	}
	for i := 1; i < stacks-1; i++ {
		for j := 0; j < slices; j++ {
			a, b := ring(i, j), ring(i, j+1)
			c, d := ring(i+1, j+1), ring(i+1, j)
			m.Faces = append(m.Faces, [3]int{a, b, c}, [3]int{a, c, d})
		}
	}
	for j := 0; j < slices; j++ {
		m.Faces = append(m.Faces, [3]int{north, ring(stacks-1, j), ring(stacks-1, j+1)})
	}
	return m
}
