package tessellate_test

import (
	"errors"
	"math"
	"testing"

	"github.com/chazu/meshstep/pkg/geom"
	"github.com/chazu/meshstep/pkg/kernel"
	"github.com/chazu/meshstep/pkg/kernel/kerneltest"
	"github.com/chazu/meshstep/pkg/kernel/sdfx"
	"github.com/chazu/meshstep/pkg/tessellate"
)

// newKernel returns a coarse sdfx kernel so the tests stay fast.
func newKernel() kernel.Kernel {
	return sdfx.NewWithCells(40)
}

// boundsCenter returns the center of a mesh's vertex bounding box.
func boundsCenter(m *kernel.Mesh) geom.Vec3 {
	lo, hi := m.Vertices[0], m.Vertices[0]
	for _, v := range m.Vertices[1:] {
		lo = geom.V(math.Min(lo.X, v.X), math.Min(lo.Y, v.Y), math.Min(lo.Z, v.Z))
		hi = geom.V(math.Max(hi.X, v.X), math.Max(hi.Y, v.Y), math.Max(hi.Z, v.Z))
	}
	return lo.Add(hi).Scale(0.5)
}

func TestSingleBox(t *testing.T) {
	meshes, err := tessellate.Tessellate([]tessellate.Part{
		{Name: "shelf", Shape: tessellate.ShapeBox, Dims: geom.V(40, 30, 20)},
	}, newKernel())
	if err != nil {
		t.Fatalf("Tessellate failed: %v", err)
	}
	if len(meshes) != 1 {
		t.Fatalf("expected 1 mesh, got %d", len(meshes))
	}
	m := meshes[0]
	if m.IsEmpty() {
		t.Fatal("mesh is empty")
	}
	if m.PartName != "shelf" {
		t.Errorf("expected PartName %q, got %q", "shelf", m.PartName)
	}
}

func TestSamples(t *testing.T) {
	for _, sh := range tessellate.Shapes {
		t.Run(string(sh), func(t *testing.T) {
			meshes, err := tessellate.Tessellate([]tessellate.Part{tessellate.Sample(sh)}, newKernel())
			if err != nil {
				t.Fatalf("Tessellate failed: %v", err)
			}
			if err := meshes[0].Validate(); err != nil {
				t.Errorf("invalid mesh: %v", err)
			}
			if meshes[0].PartName != "sample-"+string(sh) {
				t.Errorf("PartName = %q", meshes[0].PartName)
			}
		})
	}
}

func TestPartWithOffset(t *testing.T) {
	meshes, err := tessellate.Tessellate([]tessellate.Part{
		{Shape: tessellate.ShapeSphere, Dims: geom.V(5, 0, 0), Offset: geom.V(100, -50, 25)},
	}, newKernel())
	if err != nil {
		t.Fatalf("Tessellate failed: %v", err)
	}
	if got := meshes[0].PartName; got != "part-0" {
		t.Errorf("unnamed part got PartName %q", got)
	}
	c := boundsCenter(meshes[0])
	if c.Sub(geom.V(100, -50, 25)).Len() > 1 {
		t.Errorf("center = %v, expected near (100,-50,25)", c)
	}
}

func TestUnknownShape(t *testing.T) {
	_, err := tessellate.Tessellate([]tessellate.Part{
		{Name: "ok", Shape: tessellate.ShapeBox, Dims: geom.V(1, 1, 1)},
		{Name: "torus", Shape: "torus", Dims: geom.V(1, 1, 1)},
	}, newKernel())
	if !errors.Is(err, tessellate.ErrUnknownShape) {
		t.Fatalf("err = %v, want ErrUnknownShape", err)
	}
}

func TestInvalidDimensions(t *testing.T) {
	_, err := tessellate.Tessellate([]tessellate.Part{
		{Shape: tessellate.ShapeBox, Dims: geom.V(-1, 1, 1)},
	}, newKernel())
	if err == nil {
		t.Fatal("expected an error for a negative size")
	}
}

func TestParseShape(t *testing.T) {
	tests := []struct {
		in      string
		want    tessellate.Shape
		wantErr bool
	}{
		{"box", tessellate.ShapeBox, false},
		{" Cylinder ", tessellate.ShapeCylinder, false},
		{"SPHERE", tessellate.ShapeSphere, false},
		{"cone", "", true},
	}
	for _, tt := range tests {
		got, err := tessellate.ParseShape(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseShape(%q) err = %v", tt.in, err)
			continue
		}
		if got != tt.want {
			t.Errorf("ParseShape(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestMerge(t *testing.T) {
	a := kerneltest.Cube(1)
	b := kerneltest.Plate(2, 2)
	m := tessellate.Merge([]*kernel.Mesh{a, nil, b})

	if m.VertexCount() != 12 || m.TriangleCount() != 14 {
		t.Fatalf("merged %d vertices / %d faces, want 12 / 14", m.VertexCount(), m.TriangleCount())
	}
	if err := m.Validate(); err != nil {
		t.Fatalf("merged mesh invalid: %v", err)
	}
	if got := m.Faces[12]; got != [3]int{8, 9, 10} {
		t.Errorf("first plate face = %v, want re-indexed {8 9 10}", got)
	}
	if m.PartName != "cube" {
		t.Errorf("PartName = %q", m.PartName)
	}
}
