// Package stl reads and writes STL triangle meshes. Both the binary and the
// ASCII flavor are read; files are written in binary. Vertices are welded on
// load, so the mesh shares corners between triangles.
package stl

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/chazu/meshstep/pkg/geom"
	"github.com/chazu/meshstep/pkg/kernel"
)

// ErrFormat is returned for input that is neither binary nor ASCII STL.
var ErrFormat = errors.New("stl: unrecognized format")

const (
	headerSize = 80
	recordSize = 50 // normal, three vertices, attribute count
)

// Read parses an STL stream. Binary is detected by its exact size: an
// 80-byte header, a triangle count n and 50 bytes per triangle.
func Read(r io.Reader) (*kernel.Mesh, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("stl: read: %w", err)
	}
	if isBinary(data) {
		return readBinary(data)
	}
	return readASCII(data)
}

// ReadFile reads the STL file at path. The part name defaults to the file
// name without its extension.
func ReadFile(path string) (*kernel.Mesh, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	m, err := Read(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	if m.PartName == "" {
		m.PartName = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	}
	return m, nil
}

func isBinary(data []byte) bool {
	if len(data) < headerSize+4 {
		return false
	}
	n := binary.LittleEndian.Uint32(data[headerSize:])
	return uint64(len(data)) == headerSize+4+uint64(n)*recordSize
}

func readBinary(data []byte) (*kernel.Mesh, error) {
	n := int(binary.LittleEndian.Uint32(data[headerSize:]))
	tris := make([][3]geom.Vec3, 0, n)
	off := headerSize + 4
	for i := 0; i < n; i++ {
		rec := data[off : off+recordSize]
		var tri [3]geom.Vec3
		for j := range tri {
			tri[j] = vec32(rec[12+12*j:])
		}
		tris = append(tris, tri)
		off += recordSize
	}
	return kernel.Weld(tris), nil
}

func vec32(b []byte) geom.Vec3 {
	f := func(i int) float64 {
		return float64(math.Float32frombits(binary.LittleEndian.Uint32(b[4*i:])))
	}
	return geom.V(f(0), f(1), f(2))
}

// readASCII collects every "vertex x y z" triple in order; facet and loop
// keywords only group them.
func readASCII(data []byte) (*kernel.Mesh, error) {
	fields := strings.Fields(string(data))
	if len(fields) == 0 || !strings.EqualFold(fields[0], "solid") {
		return nil, ErrFormat
	}

	var name string
	if len(fields) > 1 && !strings.EqualFold(fields[1], "facet") && !strings.EqualFold(fields[1], "endsolid") {
		name = fields[1]
	}

	var verts []geom.Vec3
	for i := 0; i < len(fields); i++ {
		if !strings.EqualFold(fields[i], "vertex") {
			continue
		}
		if i+3 >= len(fields) {
			return nil, fmt.Errorf("%w: truncated vertex", ErrFormat)
		}
		var c [3]float64
		for j := range c {
			f, err := strconv.ParseFloat(fields[i+1+j], 64)
			if err != nil {
				return nil, fmt.Errorf("%w: vertex %d: %v", ErrFormat, len(verts), err)
			}
			c[j] = f
		}
		verts = append(verts, geom.V(c[0], c[1], c[2]))
		i += 3
	}
	if len(verts)%3 != 0 {
		return nil, fmt.Errorf("%w: %d vertices do not form whole triangles", ErrFormat, len(verts))
	}

	tris := make([][3]geom.Vec3, 0, len(verts)/3)
	for i := 0; i < len(verts); i += 3 {
		tris = append(tris, [3]geom.Vec3{verts[i], verts[i+1], verts[i+2]})
	}
	m := kernel.Weld(tris)
	m.PartName = name
	return m, nil
}

// Write encodes m as binary STL. Facet normals are recomputed from the
// winding; degenerate faces get a zero normal.
func Write(w io.Writer, m *kernel.Mesh) error {
	if m == nil {
		return errors.New("stl: nil mesh")
	}
	if err := m.Validate(); err != nil {
		return fmt.Errorf("stl: %w", err)
	}

	var buf bytes.Buffer
	buf.Grow(headerSize + 4 + recordSize*len(m.Faces))

	header := make([]byte, headerSize)
	copy(header, "binary STL written by meshstep "+m.PartName)
	buf.Write(header)

	var rec [recordSize]byte
	binary.LittleEndian.PutUint32(rec[:4], uint32(len(m.Faces)))
	buf.Write(rec[:4])

	for i := range m.Faces {
		n, ok := m.FaceNormal(i)
		if !ok {
			n = geom.Zero
		}
		a, b, c := m.Triangle(i)
		for j, v := range [4]geom.Vec3{n, a, b, c} {
			putVec32(rec[12*j:], v)
		}
		binary.LittleEndian.PutUint16(rec[48:], 0)
		buf.Write(rec[:])
	}

	if _, err := w.Write(buf.Bytes()); err != nil {
		return fmt.Errorf("stl: write: %w", err)
	}
	return nil
}

// WriteFile writes m to path as binary STL.
func WriteFile(path string, m *kernel.Mesh) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := Write(f, m); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

func putVec32(b []byte, v geom.Vec3) {
	binary.LittleEndian.PutUint32(b[0:], math.Float32bits(float32(v.X)))
	binary.LittleEndian.PutUint32(b[4:], math.Float32bits(float32(v.Y)))
	binary.LittleEndian.PutUint32(b[8:], math.Float32bits(float32(v.Z)))
}
