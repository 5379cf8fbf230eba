package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/chazu/meshstep/pkg/config"
	"github.com/chazu/meshstep/pkg/kernel"
	"github.com/chazu/meshstep/pkg/kernel/kerneltest"
	"github.com/chazu/meshstep/pkg/kernel/sdfx"
	"github.com/chazu/meshstep/pkg/step"
	"github.com/chazu/meshstep/pkg/stl"
	"github.com/chazu/meshstep/pkg/store"
	"github.com/chazu/meshstep/pkg/strategy"
	"github.com/chazu/meshstep/pkg/tessellate"
)

var fixedNow = time.Date(2024, 3, 9, 14, 5, 0, 0, time.UTC)

// newTestApp returns an App writing below a temp dir with sequential run ids
// and a fixed clock.
func newTestApp(t *testing.T, mutate ...func(*config.Config)) *App {
	t.Helper()
	cfg := config.Default()
	cfg.OutputDir = filepath.Join(t.TempDir(), "runs")
	for _, m := range mutate {
		m(&cfg)
	}
	n := 0
	st := store.New(cfg.OutputDir,
		store.WithIDs(func() string { n++; return fmt.Sprintf("run-%d", n) }),
		store.WithNow(func() time.Time { return fixedNow }),
	)
	return NewApp(cfg,
		WithStore(st),
		WithKernel(sdfx.NewWithCells(40)),
		WithClock(func() time.Time { return fixedNow }),
	)
}

// writeCube writes a 10 mm cube as binary STL and returns its path.
func writeCube(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "cube.stl")
	if err := stl.WriteFile(path, kerneltest.Cube(10)); err != nil {
		t.Fatalf("write cube: %v", err)
	}
	return path
}

func readArtifact(t *testing.T, path string) string {
	t.Helper()
	b, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read %s: %v", path, err)
	}
	return string(b)
}

func TestAnalyze(t *testing.T) {
	app := newTestApp(t)
	res, err := app.Analyze(writeCube(t))
	if err != nil {
		t.Fatalf("Analyze: %v", err)
	}
	if res.File != "cube.stl" {
		t.Errorf("File = %q", res.File)
	}
	if res.Stats.NumVertices != 8 || res.Stats.NumFaces != 12 {
		t.Errorf("stats = %d vertices / %d faces, want 8 / 12", res.Stats.NumVertices, res.Stats.NumFaces)
	}
	if !res.Stats.IsWatertight || !res.Validity.Valid {
		t.Errorf("cube should be watertight and valid: %+v %+v", res.Stats, res.Validity)
	}
	if len(res.Hints.Planar) != 6 {
		t.Errorf("expected 6 planar hints, got %d", len(res.Hints.Planar))
	}
}

func TestAnalyzeRejectsNonFiniteVertices(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nan.stl")
	body := "solid nan\n facet normal 0 0 1\n  outer loop\n" +
		"   vertex 0 0 0\n   vertex 1 0 0\n   vertex NaN 1 0\n" +
		"  endloop\n endfacet\nendsolid nan\n"
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}

	_, err := newTestApp(t).Analyze(path)
	if !store.IsKind(err, store.KindInput) {
		t.Fatalf("err = %v, want kind %s", err, store.KindInput)
	}
	if !errors.Is(err, kernel.ErrNonFinite) {
		t.Errorf("err = %v, want ErrNonFinite", err)
	}
}

// TestE2EMeshMode exercises the default pipeline: STL in, faceted solid out,
// artifacts and history on disk.
func TestE2EMeshMode(t *testing.T) {
	app := newTestApp(t)
	res, err := app.Convert(writeCube(t), ConvertOptions{})
	if err != nil {
		t.Fatalf("Convert: %v", err)
	}

	if len(res.Strategy.Items) != 0 {
		t.Errorf("mesh mode kept %d items", len(res.Strategy.Items))
	}
	last := res.Strategy.Assumptions[len(res.Strategy.Assumptions)-1]
	if last != meshAssumption {
		t.Errorf("last assumption = %q", last)
	}
	if n := res.Document.Count("FACETED_BREP"); n != 1 {
		t.Errorf("FACETED_BREP count = %d, want 1", n)
	}
	if n := res.Document.Count("MANIFOLD_SOLID_BREP"); n != 0 {
		t.Errorf("MANIFOLD_SOLID_BREP count = %d, want 0", n)
	}
	if !res.Validation.OK() {
		t.Errorf("validation errors: %v", res.Validation.Errors)
	}

	rec := res.Record
	if rec.ID != "run-1" || rec.FileName != "cube.stl" || rec.Status != store.StatusSuccess {
		t.Errorf("record = %+v", rec)
	}
	if rec.Date != "2024-03-09" || rec.Time != "14:05" {
		t.Errorf("record time = %s %s", rec.Date, rec.Time)
	}
	if rec.PlanarSurfaces != len(res.Analysis.Hints.Planar) {
		t.Errorf("PlanarSurfaces = %d, want %d", rec.PlanarSurfaces, len(res.Analysis.Hints.Planar))
	}

	body := readArtifact(t, rec.StepPath)
	if !strings.HasPrefix(body, "ISO-10303-21;") {
		t.Errorf("step file starts with %q", body[:min(len(body), 20)])
	}
	if !strings.Contains(body, "FILE_NAME('cube.step','2024-03-09T14:05:00'") {
		t.Errorf("FILE_NAME header missing or wrong")
	}

	md := readArtifact(t, rec.ReportPath)
	for _, want := range []string{"# Conversion Explanation Report", "FACETED_BREP", meshAssumption, "## 5. Validation"} {
		if !strings.Contains(md, want) {
			t.Errorf("report missing %q", want)
		}
	}

	h, err := app.History()
	if err != nil {
		t.Fatalf("History: %v", err)
	}
	if len(h) != 1 || h[0] != rec {
		t.Errorf("history = %+v", h)
	}
}

func TestE2EStrategyModePlanned(t *testing.T) {
	app := newTestApp(t)
	res, err := app.Convert(writeCube(t), ConvertOptions{Mode: ModeStrategy})
	if err != nil {
		t.Fatalf("Convert: %v", err)
	}
	if res.Strategy.DetectedShape != strategy.ShapeBox {
		t.Errorf("DetectedShape = %q", res.Strategy.DetectedShape)
	}
	if n := res.Document.Count("FACETED_BREP"); n != 0 {
		t.Errorf("strategy mode wrote %d faceted solids", n)
	}
	if n := res.Document.Count("MANIFOLD_SOLID_BREP"); n != 1 {
		t.Errorf("MANIFOLD_SOLID_BREP count = %d, want 1", n)
	}
	if len(res.Validation.Warnings) != 0 {
		t.Errorf("closed box produced warnings: %v", res.Validation.Warnings)
	}
}

func TestE2EScriptHybrid(t *testing.T) {
	app := newTestApp(t)
	res, err := app.Convert(writeCube(t), ConvertOptions{
		StrategyPath: "examples/cube.lisp",
		Mode:         ModeHybrid,
	})
	if err != nil {
		t.Fatalf("Convert: %v", err)
	}
	if res.Strategy.DetectedShape != "Rectangular Box" {
		t.Errorf("DetectedShape = %q", res.Strategy.DetectedShape)
	}
	if res.Document.Count("FACETED_BREP") != 1 || res.Document.Count("MANIFOLD_SOLID_BREP") != 1 {
		t.Errorf("hybrid document: %d faceted, %d manifold",
			res.Document.Count("FACETED_BREP"), res.Document.Count("MANIFOLD_SOLID_BREP"))
	}
	if !res.Validation.OK() {
		t.Errorf("validation errors: %v", res.Validation.Errors)
	}
}

func TestE2EDocumentStrategies(t *testing.T) {
	tests := []struct {
		name        string
		path        string
		wantShape   string
		wantSkipped []int
		wantCounts  map[string]int
	}{
		{
			name:        "yaml with an invalid item",
			path:        "examples/cube.yaml",
			wantShape:   "Rectangular Box",
			wantSkipped: []int{2},
			wantCounts:  map[string]int{"MANIFOLD_SOLID_BREP": 1, "OPEN_SHELL": 1, "CYLINDRICAL_SURFACE": 0},
		},
		{
			name:       "json bracket",
			path:       "examples/bracket.json",
			wantShape:  "Bracket",
			wantCounts: map[string]int{"MANIFOLD_SOLID_BREP": 1, "OPEN_SHELL": 1, "CYLINDRICAL_SURFACE": 1},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			app := newTestApp(t)
			res, err := app.Convert(writeCube(t), ConvertOptions{StrategyPath: tt.path, Mode: ModeStrategy})
			if err != nil {
				t.Fatalf("Convert: %v", err)
			}
			if res.Strategy.DetectedShape != tt.wantShape {
				t.Errorf("DetectedShape = %q", res.Strategy.DetectedShape)
			}
			var skipped []int
			for _, be := range res.Skipped {
				skipped = append(skipped, be.Index)
			}
			if fmt.Sprint(skipped) != fmt.Sprint(tt.wantSkipped) {
				t.Errorf("skipped = %v, want %v", skipped, tt.wantSkipped)
			}
			for kw, want := range tt.wantCounts {
				if got := res.Document.Count(kw); got != want {
					t.Errorf("%s count = %d, want %d", kw, got, want)
				}
			}
			if len(tt.wantSkipped) > 0 {
				md := readArtifact(t, res.Record.ReportPath)
				if !strings.Contains(md, "Skipped item 2 (CYLINDER)") {
					t.Errorf("report does not mention the skipped item:\n%s", md)
				}
			}
		})
	}
}

func TestStrategyModeFallback(t *testing.T) {
	app := newTestApp(t)
	script := filepath.Join(t.TempDir(), "empty.lisp")
	if err := os.WriteFile(script, []byte(`(shape "Nothing Yet")`), 0o644); err != nil {
		t.Fatal(err)
	}
	res, err := app.Convert(writeCube(t), ConvertOptions{StrategyPath: script, Mode: ModeStrategy})
	if err != nil {
		t.Fatalf("Convert: %v", err)
	}
	if res.Strategy.DetectedShape != strategy.FallbackShape {
		t.Errorf("DetectedShape = %q", res.Strategy.DetectedShape)
	}
	if len(res.Strategy.Items) != 1 || res.Document.Count("ADVANCED_FACE") != 1 {
		t.Errorf("fallback should build one ground plane face")
	}
}

func TestConvertErrors(t *testing.T) {
	dir := t.TempDir()
	write := func(name, body string) string {
		p := filepath.Join(dir, name)
		if err := os.WriteFile(p, []byte(body), 0o644); err != nil {
			t.Fatal(err)
		}
		return p
	}
	cube := writeCube(t)
	garbage := write("garbage.stl", "hello world")
	badScript := write("bad.lisp", "(box :center (vec3 1 2))")
	notes := write("notes.txt", "box please")
	infinite := write("inf.stl", "solid inf\nfacet normal 0 0 1\nouter loop\n"+
		"vertex 0 0 0\nvertex 1 0 0\nvertex 0 +Inf 0\nendloop\nendfacet\nendsolid inf\n")

	tests := []struct {
		name     string
		mesh     string
		strategy string
		wantKind store.ErrorKind
	}{
		{"missing mesh", filepath.Join(dir, "nope.stl"), "", store.KindNotFound},
		{"not an stl", garbage, "", store.KindInput},
		{"non-finite vertex", infinite, "", store.KindInput},
		{"script error", cube, badScript, store.KindInput},
		{"unsupported strategy format", cube, notes, store.KindInput},
		{"missing strategy", cube, filepath.Join(dir, "nope.json"), store.KindNotFound},
		{"missing script", cube, filepath.Join(dir, "nope.lisp"), store.KindNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			app := newTestApp(t)
			_, err := app.Convert(tt.mesh, ConvertOptions{StrategyPath: tt.strategy, Mode: ModeHybrid})
			if !store.IsKind(err, tt.wantKind) {
				t.Fatalf("err = %v, want kind %s", err, tt.wantKind)
			}
			h, herr := app.History()
			if herr != nil || len(h) != 0 {
				t.Errorf("failed conversion left history %v (%v)", h, herr)
			}
		})
	}
}

func TestConvertMeshLimits(t *testing.T) {
	app := newTestApp(t, func(c *config.Config) { c.MaxFaces = 5 })
	_, err := app.Convert(writeCube(t), ConvertOptions{Mode: ModeMesh})
	if !errors.Is(err, step.ErrMeshTooLarge) {
		t.Fatalf("err = %v, want ErrMeshTooLarge", err)
	}

	// Strategy mode never touches the mesh solid, so limits do not apply.
	if _, err := app.Convert(writeCube(t), ConvertOptions{Mode: ModeStrategy}); err != nil {
		t.Errorf("strategy mode: %v", err)
	}
}

func TestHistoryNewestFirst(t *testing.T) {
	app := newTestApp(t)
	cube := writeCube(t)
	for _, mode := range []Mode{ModeMesh, ModeStrategy} {
		if _, err := app.Convert(cube, ConvertOptions{Mode: mode}); err != nil {
			t.Fatalf("Convert %s: %v", mode, err)
		}
	}
	h, err := app.History()
	if err != nil {
		t.Fatal(err)
	}
	if len(h) != 2 || h[0].ID != "run-2" || h[1].ID != "run-1" {
		t.Errorf("history order = %+v", h)
	}
}

func TestSample(t *testing.T) {
	app := newTestApp(t)
	out := filepath.Join(t.TempDir(), "sample.stl")
	m, err := app.Sample([]tessellate.Shape{tessellate.ShapeBox, tessellate.ShapeSphere}, out)
	if err != nil {
		t.Fatalf("Sample: %v", err)
	}
	if m.PartName != "sample-box" {
		t.Errorf("PartName = %q", m.PartName)
	}

	res, err := app.Analyze(out)
	if err != nil {
		t.Fatalf("Analyze sample: %v", err)
	}
	// Float32 rounding may collapse a sliver or two on re-welding.
	if res.Stats.NumFaces == 0 || res.Stats.NumFaces > m.TriangleCount() {
		t.Errorf("read back %d faces, wrote %d", res.Stats.NumFaces, m.TriangleCount())
	}
}

func TestParseMode(t *testing.T) {
	tests := []struct {
		in      string
		want    Mode
		wantErr bool
	}{
		{"", ModeMesh, false},
		{"mesh", ModeMesh, false},
		{" Strategy", ModeStrategy, false},
		{"HYBRID", ModeHybrid, false},
		{"ai", "", true},
	}
	for _, tt := range tests {
		got, err := ParseMode(tt.in)
		if (err != nil) != tt.wantErr || got != tt.want {
			t.Errorf("ParseMode(%q) = %q, %v", tt.in, got, err)
		}
	}
}
