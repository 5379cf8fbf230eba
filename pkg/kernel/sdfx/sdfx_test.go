package sdfx

import (
	"math"
	"testing"

	"github.com/chazu/meshstep/pkg/geom"
)

// testCells keeps marching cubes fast; the assertions below are coarse.
const testCells = 40

func TestBox(t *testing.T) {
	k := NewWithCells(testCells)
	box, err := k.Box(100, 50, 25)
	if err != nil {
		t.Fatalf("Box failed: %v", err)
	}
	mesh, err := k.ToMesh(box)
	if err != nil {
		t.Fatalf("ToMesh failed: %v", err)
	}
	if mesh.IsEmpty() {
		t.Fatal("mesh is empty")
	}
	if err := mesh.Validate(); err != nil {
		t.Fatalf("welded mesh invalid: %v", err)
	}
	// Welding must share corners between neighbouring triangles.
	if mesh.VertexCount() >= mesh.TriangleCount()*3 {
		t.Errorf("vertices not welded: %d vertices for %d triangles", mesh.VertexCount(), mesh.TriangleCount())
	}

	min, max := box.BoundingBox()
	if math.Abs(max.X-min.X-100) > 1e-6 || math.Abs(max.Z-min.Z-25) > 1e-6 {
		t.Errorf("bounding box = %v..%v, want 100x50x25", min, max)
	}
}

func TestCylinder(t *testing.T) {
	k := NewWithCells(testCells)
	cyl, err := k.Cylinder(50, 10)
	if err != nil {
		t.Fatalf("Cylinder failed: %v", err)
	}
	mesh, err := k.ToMesh(cyl)
	if err != nil {
		t.Fatalf("ToMesh failed: %v", err)
	}
	if mesh.TriangleCount() == 0 {
		t.Fatal("expected non-zero triangle count")
	}
	t.Logf("cylinder triangle count: %d", mesh.TriangleCount())
}

func TestSphereTranslate(t *testing.T) {
	k := NewWithCells(testCells)
	s, err := k.Sphere(5)
	if err != nil {
		t.Fatalf("Sphere failed: %v", err)
	}
	moved := k.Translate(s, geom.V(10, 0, 0))

	min, max := moved.BoundingBox()
	center := min.Add(max).Scale(0.5)
	if math.Abs(center.X-10) > 1e-6 || math.Abs(center.Y) > 1e-6 {
		t.Errorf("translated center = %v, want (10, 0, 0)", center)
	}

	mesh, err := k.ToMesh(moved)
	if err != nil {
		t.Fatalf("ToMesh failed: %v", err)
	}
	for _, v := range mesh.Vertices {
		if r := v.Sub(geom.V(10, 0, 0)).Len(); r > 5.5 {
			t.Fatalf("vertex %v is %.3f from the center, want <= 5.5", v, r)
		}
	}
}

func TestInvalidDimensions(t *testing.T) {
	k := New()
	if _, err := k.Box(-1, 1, 1); err == nil {
		t.Error("Box with negative size should fail")
	}
	if _, err := k.Sphere(0); err == nil {
		t.Error("Sphere with zero radius should fail")
	}
}
