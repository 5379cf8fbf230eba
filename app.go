package main

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/samber/lo"

	"github.com/chazu/meshstep/pkg/analysis"
	"github.com/chazu/meshstep/pkg/config"
	"github.com/chazu/meshstep/pkg/engine"
	"github.com/chazu/meshstep/pkg/hints"
	"github.com/chazu/meshstep/pkg/kernel"
	"github.com/chazu/meshstep/pkg/kernel/sdfx"
	"github.com/chazu/meshstep/pkg/report"
	"github.com/chazu/meshstep/pkg/step"
	"github.com/chazu/meshstep/pkg/stl"
	"github.com/chazu/meshstep/pkg/store"
	"github.com/chazu/meshstep/pkg/strategy"
	"github.com/chazu/meshstep/pkg/tessellate"
)

// Mode selects what geometry a conversion writes.
type Mode string

const (
	// ModeMesh writes the full mesh as a faceted solid and nothing else.
	ModeMesh Mode = "mesh"
	// ModeStrategy writes only the strategy's parametric items.
	ModeStrategy Mode = "strategy"
	// ModeHybrid writes the faceted solid plus the strategy's items.
	ModeHybrid Mode = "hybrid"
)

// meshAssumption is recorded whenever the faceted solid replaces the items.
const meshAssumption = "Geometry reconstructed using full-fidelity Faceted B-Rep (Mesh)."

// ParseMode accepts a mode name; empty means ModeMesh.
func ParseMode(s string) (Mode, error) {
	switch m := Mode(strings.ToLower(strings.TrimSpace(s))); m {
	case "":
		return ModeMesh, nil
	case ModeMesh, ModeStrategy, ModeHybrid:
		return m, nil
	}
	return "", fmt.Errorf("unknown mode %q (want mesh, strategy or hybrid)", s)
}

// App wires the conversion pipeline together. The CLI commands are thin
// wrappers around its methods.
type App struct {
	cfg    config.Config
	engine *engine.Engine
	kernel kernel.Kernel
	store  *store.Store
	log    *slog.Logger
	now    func() time.Time
}

// AppOption customizes an App.
type AppOption func(*App)

// WithAppLogger sets the logger handed to every stage.
func WithAppLogger(l *slog.Logger) AppOption {
	return func(a *App) {
		if l != nil {
			a.log = l
		}
	}
}

// WithStore replaces the store built from the configured output directory.
func WithStore(s *store.Store) AppOption {
	return func(a *App) { a.store = s }
}

// WithKernel replaces the sdfx kernel used for sample meshes.
func WithKernel(k kernel.Kernel) AppOption {
	return func(a *App) { a.kernel = k }
}

// WithClock overrides the clock used for document time stamps.
func WithClock(now func() time.Time) AppOption {
	return func(a *App) {
		if now != nil {
			a.now = now
		}
	}
}

// NewApp creates an App. Unless WithStore is given, runs are stored below
// cfg.OutputDir.
func NewApp(cfg config.Config, opts ...AppOption) *App {
	a := &App{
		cfg:    cfg,
		engine: engine.NewEngine(),
		kernel: sdfx.New(),
		log:    slog.New(slog.DiscardHandler),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(a)
	}
	if a.store == nil {
		a.store = store.New(cfg.OutputDir, store.WithLogger(a.log))
	}
	return a
}

// ----------------------------------------------------------------------------
// Analyze
// ----------------------------------------------------------------------------

// Analysis is the JSON-serializable result of Analyze.
type Analysis struct {
	File     string          `json:"file"`
	Stats    analysis.Stats  `json:"stats"`
	Validity analysis.Report `json:"validity"`
	Hints    hints.Report    `json:"hints"`

	mesh *kernel.Mesh
}

// Analyze loads a mesh and computes its statistics and feature hints.
func (a *App) Analyze(path string) (*Analysis, error) {
	// Step 1: Load the mesh.
	m, err := stl.ReadFile(path)
	if err != nil {
		return nil, &store.OpError{Op: "app.analyze", Kind: readKind(err), Path: path, Err: err}
	}
	if m.IsEmpty() {
		return nil, &store.OpError{Op: "app.analyze", Kind: store.KindInput, Path: path, Err: errors.New("mesh has no faces")}
	}
	if err := m.Validate(); err != nil {
		return nil, &store.OpError{Op: "app.analyze", Kind: store.KindInput, Path: path, Err: err}
	}

	// Step 2: Statistics and validity.
	res := &Analysis{
		File:     filepath.Base(path),
		Stats:    analysis.Compute(m),
		Validity: analysis.Validity(m),
		mesh:     m,
	}

	// Step 3: Feature hints.
	res.Hints = hints.Extract(m, a.cfg.MinAreaFraction)

	a.log.Info("app.analyze.done",
		"file", res.File,
		"vertices", res.Stats.NumVertices,
		"faces", res.Stats.NumFaces,
		"watertight", res.Stats.IsWatertight,
		"planar", len(res.Hints.Planar),
		"cylindrical", len(res.Hints.Cylindrical),
	)
	return res, nil
}

func readKind(err error) store.ErrorKind {
	switch {
	case errors.Is(err, fs.ErrNotExist):
		return store.KindNotFound
	case errors.Is(err, stl.ErrFormat):
		return store.KindInput
	default:
		return store.KindIO
	}
}

// ----------------------------------------------------------------------------
// Convert
// ----------------------------------------------------------------------------

// ConvertOptions selects the strategy source and output mode.
type ConvertOptions struct {
	// StrategyPath names a .lisp/.zy script or a .json/.yaml document.
	// Empty means plan from the mesh's feature hints.
	StrategyPath string
	Mode         Mode
}

// ConvertResult describes a finished conversion.
type ConvertResult struct {
	Record     store.Record
	Analysis   *Analysis
	Strategy   *strategy.Strategy
	Skipped    []step.BuildError
	Validation step.ValidationResult
	Document   *step.Document
}

// Convert runs the whole pipeline for one mesh file and stores the exchange
// file and its explanation as a new run.
func (a *App) Convert(path string, opts ConvertOptions) (*ConvertResult, error) {
	mode := opts.Mode
	if mode == "" {
		mode = ModeMesh
	}

	// Step 1: Load and analyze the mesh.
	an, err := a.Analyze(path)
	if err != nil {
		return nil, err
	}

	// Step 2: Resolve the strategy.
	s, err := a.resolveStrategy(an, opts.StrategyPath, mode)
	if err != nil {
		return nil, err
	}

	// Step 3: Build the document.
	b := step.NewBuilder(
		step.WithLogger(a.log),
		step.WithLimits(step.Limits{MaxVertices: a.cfg.MaxVertices, MaxFaces: a.cfg.MaxFaces}),
		step.WithHeader(step.Header{
			Name:         an.mesh.PartName + ".step",
			Author:       a.cfg.Author,
			Organization: a.cfg.Organization,
		}),
		step.WithNow(a.now),
	)

	meshSolid := false
	if mode == ModeMesh || mode == ModeHybrid {
		if _, err := b.AddMeshSolid(an.mesh); err != nil {
			return nil, &store.OpError{Op: "app.convert", Kind: store.KindInput, Path: path, Err: err}
		}
		meshSolid = true
	}

	doc, skipped, err := b.Assemble(s)
	if err != nil {
		return nil, fmt.Errorf("app: assemble: %w", err)
	}
	for _, be := range skipped {
		s.Assume(fmt.Sprintf("Skipped %s", be.Error()))
	}

	// Step 4: Validate the assembled document.
	v := step.Validate(doc)
	if !v.OK() {
		errs := lo.Map(v.Errors, func(e step.ValidationError, _ int) error { return e })
		return nil, &store.OpError{Op: "app.validate", Kind: store.KindCorrupt, Path: path, Err: errors.Join(errs...)}
	}

	// Step 5: Explain and store.
	md := report.Build(report.Input{
		Stats:      an.Stats,
		Hints:      an.Hints,
		Strategy:   s,
		MeshSolid:  meshSolid,
		Validation: &v,
	})
	rec, err := a.store.SaveRun(store.Run{
		FileName:            filepath.Base(path),
		Step:                doc.Render(),
		Report:              md,
		PlanarSurfaces:      len(an.Hints.Planar),
		CylindricalFeatures: len(an.Hints.Cylindrical),
	})
	if err != nil {
		return nil, err
	}

	a.log.Info("app.convert.done",
		"file", rec.FileName,
		"run", rec.ID,
		"mode", string(mode),
		"entities", len(doc.Entities),
		"skipped", len(skipped),
		"warnings", len(v.Warnings),
	)
	return &ConvertResult{
		Record:     rec,
		Analysis:   an,
		Strategy:   s,
		Skipped:    skipped,
		Validation: v,
		Document:   doc,
	}, nil
}

// resolveStrategy picks the strategy source and applies the mode. Mesh mode
// keeps the reasoning but drops every item; strategy mode falls back to a
// ground plane when nothing was planned.
func (a *App) resolveStrategy(an *Analysis, path string, mode Mode) (*strategy.Strategy, error) {
	var (
		s   *strategy.Strategy
		err error
	)
	switch ext := strings.ToLower(filepath.Ext(path)); {
	case path == "":
		s = strategy.FromHints(an.Stats, an.Hints, a.cfg.MaxPlanes)
	case ext == ".lisp" || ext == ".zy":
		s, err = a.evalScript(path)
	default:
		s, err = strategy.LoadFile(path)
		if err != nil {
			kind := store.KindInput
			if errors.Is(err, fs.ErrNotExist) {
				kind = store.KindNotFound
			}
			err = &store.OpError{Op: "app.strategy", Kind: kind, Path: path, Err: err}
		}
	}
	if err != nil {
		return nil, err
	}

	switch mode {
	case ModeMesh:
		s.Items = nil
		s.Assume(meshAssumption)
	case ModeStrategy:
		if len(s.Items) == 0 {
			a.log.Warn("app.strategy.fallback", "reason", "no items")
			fb := strategy.Fallback()
			fb.Assumptions = append(s.Assumptions, fb.Assumptions...)
			s = fb
		}
	case ModeHybrid:
		s.Assume(meshAssumption)
	default:
		return nil, fmt.Errorf("app: unknown mode %q", mode)
	}
	return s, nil
}

// evalScript runs a strategy script through the sandboxed engine.
func (a *App) evalScript(path string) (*strategy.Strategy, error) {
	src, err := os.ReadFile(path)
	if err != nil {
		return nil, &store.OpError{Op: "app.strategy", Kind: readKind(err), Path: path, Err: err}
	}
	s, evalErrs, err := a.engine.Evaluate(string(src))
	if err != nil {
		return nil, &store.OpError{Op: "app.strategy", Kind: store.KindIO, Path: path, Err: err}
	}
	if len(evalErrs) > 0 {
		errs := lo.Map(evalErrs, func(e engine.EvalError, _ int) error { return e })
		return nil, &store.OpError{Op: "app.strategy", Kind: store.KindInput, Path: path, Err: errors.Join(errs...)}
	}
	return s, nil
}

// ----------------------------------------------------------------------------
// Samples and history
// ----------------------------------------------------------------------------

// Sample tessellates the default sample part of each shape, merges them and
// writes the result as binary STL.
func (a *App) Sample(shapes []tessellate.Shape, out string) (*kernel.Mesh, error) {
	parts := lo.Map(shapes, func(sh tessellate.Shape, _ int) tessellate.Part {
		return tessellate.Sample(sh)
	})
	meshes, err := tessellate.Tessellate(parts, a.kernel)
	if err != nil {
		return nil, err
	}
	m := tessellate.Merge(meshes)
	if err := stl.WriteFile(out, m); err != nil {
		return nil, &store.OpError{Op: "app.sample", Kind: store.KindIO, Path: out, Err: err}
	}
	a.log.Info("app.sample.written", "path", out, "faces", m.TriangleCount())
	return m, nil
}

// History returns the stored runs, newest first.
func (a *App) History() ([]store.Record, error) {
	return a.store.History()
}
