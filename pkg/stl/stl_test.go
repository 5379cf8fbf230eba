package stl_test

import (
	"bytes"
	"encoding/binary"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/chazu/meshstep/pkg/geom"
	"github.com/chazu/meshstep/pkg/kernel/kerneltest"
	"github.com/chazu/meshstep/pkg/stl"
)

const asciiTriangle = `solid tri
  facet normal 0 0 1
    outer loop
      vertex 0 0 0
      vertex 1 0 0
      vertex 0 1 0
    endloop
  endfacet
  facet normal 0 0 1
    outer loop
      vertex 1 0 0
      vertex 1 1 0
      vertex 0 1 0
    endloop
  endfacet
endsolid tri
`

func TestReadASCII(t *testing.T) {
	m, err := stl.Read(strings.NewReader(asciiTriangle))
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if m.VertexCount() != 4 {
		t.Errorf("vertices = %d, want 4 after welding", m.VertexCount())
	}
	if m.TriangleCount() != 2 {
		t.Errorf("triangles = %d, want 2", m.TriangleCount())
	}
	if m.PartName != "tri" {
		t.Errorf("part name = %q, want tri", m.PartName)
	}
	if n, _ := m.FaceNormal(0); n != geom.UnitZ {
		t.Errorf("first face normal = %v, want +Z", n)
	}
}

func TestReadASCIIErrors(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"empty", ""},
		{"not stl", "hello world"},
		{"bad number", "solid x\nfacet normal 0 0 1\nouter loop\nvertex 0 zero 0\n"},
		{"truncated", "solid x\nvertex 0 0"},
		{"partial triangle", "solid x\nvertex 0 0 0\nvertex 1 0 0\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := stl.Read(strings.NewReader(tt.input))
			if !errors.Is(err, stl.ErrFormat) {
				t.Errorf("err = %v, want ErrFormat", err)
			}
		})
	}
}

func TestBinaryRoundTrip(t *testing.T) {
	cube := kerneltest.Cube(3)

	var buf bytes.Buffer
	if err := stl.Write(&buf, cube); err != nil {
		t.Fatalf("Write: %v", err)
	}
	if buf.Len() != 84+50*cube.TriangleCount() {
		t.Fatalf("size = %d, want %d", buf.Len(), 84+50*cube.TriangleCount())
	}
	if n := binary.LittleEndian.Uint32(buf.Bytes()[80:]); int(n) != cube.TriangleCount() {
		t.Errorf("count = %d", n)
	}

	m, err := stl.Read(&buf)
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if m.VertexCount() != cube.VertexCount() || m.TriangleCount() != cube.TriangleCount() {
		t.Errorf("round trip: %d verts / %d faces, want %d / %d",
			m.VertexCount(), m.TriangleCount(), cube.VertexCount(), cube.TriangleCount())
	}
	for i := range m.Faces {
		a, b, c := m.Triangle(i)
		wa, wb, wc := cube.Triangle(i)
		if a != wa || b != wb || c != wc {
			t.Errorf("face %d = %v %v %v, want %v %v %v", i, a, b, c, wa, wb, wc)
		}
	}
}

func TestBinaryHeaderStartingWithSolid(t *testing.T) {
	var buf bytes.Buffer
	if err := stl.Write(&buf, kerneltest.Plate(2, 2)); err != nil {
		t.Fatal(err)
	}
	data := buf.Bytes()
	copy(data, "solid but actually binary")

	m, err := stl.Read(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if m.TriangleCount() != 2 {
		t.Errorf("triangles = %d, want 2", m.TriangleCount())
	}
}

func TestFileRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bracket.stl")
	if err := stl.WriteFile(path, kerneltest.Cube(1)); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	m, err := stl.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	if m.PartName != "bracket" {
		t.Errorf("part name = %q, want bracket", m.PartName)
	}
	if m.TriangleCount() != 12 {
		t.Errorf("triangles = %d, want 12", m.TriangleCount())
	}

	if _, err := stl.ReadFile(filepath.Join(t.TempDir(), "missing.stl")); !errors.Is(err, os.ErrNotExist) {
		t.Errorf("missing file err = %v", err)
	}
}

func TestWriteRejectsBadMesh(t *testing.T) {
	bad := kerneltest.Cube(1)
	bad.Faces[0][1] = 99
	if err := stl.Write(&bytes.Buffer{}, bad); err == nil {
		t.Error("expected an error for an out-of-range index")
	}
	if err := stl.Write(&bytes.Buffer{}, nil); err == nil {
		t.Error("expected an error for a nil mesh")
	}
}
