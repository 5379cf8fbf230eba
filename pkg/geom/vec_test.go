package geom

import (
	"math"
	"testing"
)

const tol = 1e-9

func near(a, b float64) bool {
	return math.Abs(a-b) < tol
}

func TestVecOps(t *testing.T) {
	a := V(1, 2, 3)
	b := V(4, 5, 6)

	if got := a.Add(b); got != V(5, 7, 9) {
		t.Errorf("Add = %v, want (5, 7, 9)", got)
	}
	if got := b.Sub(a); got != V(3, 3, 3) {
		t.Errorf("Sub = %v, want (3, 3, 3)", got)
	}
	if got := a.Scale(2); got != V(2, 4, 6) {
		t.Errorf("Scale = %v, want (2, 4, 6)", got)
	}
	if got := a.Dot(b); got != 32 {
		t.Errorf("Dot = %v, want 32", got)
	}
	if got := UnitX.Cross(UnitY); got != UnitZ {
		t.Errorf("X × Y = %v, want Z", got)
	}
	if got := V(1.5, 2.5, 3.5).String(); got != "(1.5, 2.5, 3.5)" {
		t.Errorf("String() = %q", got)
	}
}

func TestNormalizeFallback(t *testing.T) {
	tests := []struct {
		name string
		in   Vec3
		want Vec3
	}{
		{"zero", Zero, DefaultNormal},
		{"tiny", V(1e-12, 0, 0), DefaultNormal},
		{"nan", V(math.NaN(), 0, 0), DefaultNormal},
		{"regular", V(0, 3, 4), V(0, 0.6, 0.8)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.in.Normalize(DefaultNormal)
			if !near(got.X, tt.want.X) || !near(got.Y, tt.want.Y) || !near(got.Z, tt.want.Z) {
				t.Errorf("Normalize(%v) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}

func TestTangentRule(t *testing.T) {
	if got := Tangent(UnitZ); got != UnitY {
		t.Errorf("Tangent(Z) = %v, want Y", got)
	}
	if got := Tangent(V(0, 0, -1)); got != UnitY {
		t.Errorf("Tangent(-Z) = %v, want Y", got)
	}
	if got := Tangent(UnitX); got != UnitZ {
		t.Errorf("Tangent(X) = %v, want Z", got)
	}
}

func TestBasisIsOrthonormal(t *testing.T) {
	normals := []Vec3{
		UnitZ, UnitX, UnitY, V(0, 0, -1),
		V(1, 1, 1).Normalize(UnitZ),
		V(0.3, -0.2, 0.93).Normalize(UnitZ),
	}
	for _, n := range normals {
		x, y := Basis(n)
		if !near(x.Len(), 1) || !near(y.Len(), 1) {
			t.Errorf("Basis(%v): non-unit axes x=%v y=%v", n, x, y)
		}
		if !near(x.Dot(n), 0) || !near(y.Dot(n), 0) || !near(x.Dot(y), 0) {
			t.Errorf("Basis(%v): axes not orthogonal x=%v y=%v", n, x, y)
		}
		// x × y must point along n so loops built CCW in (x, y) face along n.
		if !near(x.Cross(y).Dot(n), 1) {
			t.Errorf("Basis(%v): x × y = %v, want n", n, x.Cross(y))
		}
	}
}

func TestBasisWithX(t *testing.T) {
	x, y := BasisWithX(UnitZ, V(1, 0, 0.5))
	if !near(x.X, 1) || !near(x.Z, 0) {
		t.Errorf("projected x = %v, want (1, 0, 0)", x)
	}
	if !near(y.Y, 1) {
		t.Errorf("y = %v, want (0, 1, 0)", y)
	}

	// A hint parallel to the normal carries no in-plane information.
	x, _ = BasisWithX(UnitZ, V(0, 0, 2))
	wantX, _ := Basis(UnitZ)
	if x != wantX {
		t.Errorf("degenerate hint: x = %v, want %v", x, wantX)
	}
}

func TestTriangleNormalAndArea(t *testing.T) {
	n, ok := TriangleNormal(Zero, UnitX, UnitY)
	if !ok || n != UnitZ {
		t.Errorf("TriangleNormal = %v, %v; want Z, true", n, ok)
	}
	if a := TriangleArea(Zero, UnitX, UnitY); !near(a, 0.5) {
		t.Errorf("TriangleArea = %v, want 0.5", a)
	}

	n, ok = TriangleNormal(Zero, UnitX, V(2, 0, 0))
	if ok || n != DefaultNormal {
		t.Errorf("collinear TriangleNormal = %v, %v; want default, false", n, ok)
	}
}

func TestAxis(t *testing.T) {
	if AxisX.String() != "X" || AxisZ.String() != "Z" {
		t.Errorf("Axis stringers: %q %q", AxisX, AxisZ)
	}
	if AxisY.Vec() != UnitY {
		t.Errorf("AxisY.Vec() = %v", AxisY.Vec())
	}
}
