package step

import (
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/chazu/meshstep/pkg/geom"
	"github.com/chazu/meshstep/pkg/strategy"
)

var (
	// ErrAssembled is returned when a Builder is used after Assemble.
	ErrAssembled = errors.New("step: builder already assembled")
	// ErrMeshTooLarge is returned when a mesh exceeds the configured limits.
	ErrMeshTooLarge = errors.New("step: mesh exceeds size limits")
	// ErrEmptyMesh is returned for a mesh without vertices or faces.
	ErrEmptyMesh = errors.New("step: mesh is empty")
)

// DefaultProductName is used when the strategy names no shape class.
const DefaultProductName = "Converted Model"

// BuildError records a strategy item that was skipped.
type BuildError struct {
	Index int           // position in the strategy's item list
	Kind  strategy.Kind // kind of the skipped item
	Err   error
}

func (e BuildError) Error() string {
	return fmt.Sprintf("item %d (%s): %v", e.Index, e.Kind, e.Err)
}

func (e BuildError) Unwrap() error { return e.Err }

// Option configures a Builder.
type Option func(*Builder)

// WithLogger sets the logger used for per-item diagnostics.
func WithLogger(l *slog.Logger) Option {
	return func(b *Builder) {
		if l != nil {
			b.log = l
		}
	}
}

// WithLimits bounds the meshes AddMeshSolid accepts. Zero keeps the default
// for that dimension.
func WithLimits(l Limits) Option {
	return func(b *Builder) {
		if l.MaxVertices > 0 {
			b.limits.MaxVertices = l.MaxVertices
		}
		if l.MaxFaces > 0 {
			b.limits.MaxFaces = l.MaxFaces
		}
	}
}

// WithHeader sets the file name, author and organization written to the
// document header.
func WithHeader(h Header) Option {
	return func(b *Builder) { b.header = h }
}

// WithNow overrides the clock used for the header timestamp.
func WithNow(now func() time.Time) Option {
	return func(b *Builder) {
		if now != nil {
			b.now = now
		}
	}
}

// Builder accumulates the entities of one document. Geometry added before
// Assemble (AddMeshSolid) shares the entity graph with everything Assemble
// emits. A Builder is not safe for concurrent use and assembles once.
type Builder struct {
	g      *Graph
	log    *slog.Logger
	limits Limits
	header Header
	now    func() time.Time

	// Top-level candidates, by bucket.
	solids []Ref // MANIFOLD_SOLID_BREP and FACETED_BREP
	faces  []Ref // loose ADVANCED_FACEs
	loose  []Ref // unbounded surfaces

	assembled bool
}

// NewBuilder returns an empty Builder.
func NewBuilder(opts ...Option) *Builder {
	b := &Builder{
		g:      &Graph{},
		log:    slog.New(slog.DiscardHandler),
		limits: DefaultLimits,
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// docContext holds the boilerplate references items and wrappers point at.
type docContext struct {
	productDef Ref
	repContext Ref
	rootAxis   Ref
}

// Assemble emits the boilerplate, builds every strategy item, picks the
// top-level representation and returns the finished document.
//
// Return semantics:
//   - items that fail validation or panic are skipped and reported as
//     BuildErrors; the document is still returned
//   - the error is non-nil only when the builder was already assembled
func (b *Builder) Assemble(s *strategy.Strategy) (*Document, []BuildError, error) {
	if b.assembled {
		return nil, nil, ErrAssembled
	}
	b.assembled = true
	if s == nil {
		s = &strategy.Strategy{}
	}

	name := s.DetectedShape
	if name == "" {
		name = DefaultProductName
	}
	ctx := b.boilerplate(name)

	var diags []BuildError
	for i, it := range s.Items {
		if it == nil {
			it = strategy.Invalid{Err: errors.New("nil item")}
		}
		if err := b.buildItem(it); err != nil {
			diags = append(diags, BuildError{Index: i, Kind: it.Kind(), Err: err})
			b.log.Warn("step.item.skipped", "index", i, "kind", it.Kind().String(), "err", err)
		}
	}
	if len(s.Items) == 0 {
		b.log.Debug("step.strategy.empty")
	}

	items := b.topLevel(ctx)
	shapeRep := b.g.Addf("SHAPE_REPRESENTATION('',%s,%v)", refList(items), ctx.repContext)
	pds := b.g.Addf("PRODUCT_DEFINITION_SHAPE('','',%v)", ctx.productDef)
	b.g.Addf("SHAPE_DEFINITION_REPRESENTATION(%v,%v)", pds, shapeRep)

	b.log.Debug("step.assemble.done",
		"entities", b.g.Len(),
		"solids", len(b.solids),
		"faces", len(b.faces),
		"loose", len(b.loose),
		"skipped", len(diags),
	)

	doc := &Document{
		Header:    b.header,
		Timestamp: b.now(),
		Entities:  b.g.Entities(),
	}
	if doc.Header.Name == "" {
		doc.Header.Name = name
	}
	return doc, diags, nil
}

// boilerplate emits the product chain, units, representation context and the
// root placement, in that order.
func (b *Builder) boilerplate(name string) docContext {
	g := b.g
	app := g.Add("APPLICATION_CONTEXT('core data for automotive mechanical design processes')")
	g.Addf("APPLICATION_PROTOCOL_DEFINITION('international standard','automotive_design',2000,%v)", app)
	prodCtx := g.Addf("PRODUCT_CONTEXT('',%v,'mechanical')", app)
	defCtx := g.Addf("PRODUCT_DEFINITION_CONTEXT('part definition',%v,'design')", app)
	product := g.Addf("PRODUCT(%s,%s,'',(%v))", quote(name), quote(name), prodCtx)
	formation := g.Addf("PRODUCT_DEFINITION_FORMATION('','',%v)", product)
	productDef := g.Addf("PRODUCT_DEFINITION('design','',%v,%v)", formation, defCtx)

	length := g.Add("(LENGTH_UNIT()NAMED_UNIT(*)SI_UNIT(.MILLI.,.METRE.))")
	angle := g.Add("(NAMED_UNIT(*)PLANE_ANGLE_UNIT()SI_UNIT($,.RADIAN.))")
	solidAngle := g.Add("(NAMED_UNIT(*)SI_UNIT($,.STERADIAN.)SOLID_ANGLE_UNIT())")
	uncertainty := g.Addf(
		"UNCERTAINTY_MEASURE_WITH_UNIT(LENGTH_MEASURE(0.01),%v,'distance_accuracy_value','confusion accuracy')",
		length)
	repContext := g.Addf(
		"(GEOMETRIC_REPRESENTATION_CONTEXT(3)GLOBAL_UNCERTAINTY_ASSIGNED_CONTEXT((%v))"+
			"GLOBAL_UNIT_ASSIGNED_CONTEXT((%v,%v,%v))REPRESENTATION_CONTEXT('',''))",
		uncertainty, length, angle, solidAngle)

	root := b.placement(geom.Zero, geom.UnitZ, geom.UnitX)
	return docContext{productDef: productDef, repContext: repContext, rootAxis: root}
}

// buildItem builds one item in isolation. Validation runs before anything is
// appended; a panic part-way through rolls the graph back to where it was.
func (b *Builder) buildItem(it strategy.Item) (err error) {
	if err := it.Validate(); err != nil {
		return err
	}

	mark := b.g.Len()
	nSolids, nFaces, nLoose := len(b.solids), len(b.faces), len(b.loose)
	defer func() {
		if r := recover(); r != nil {
			b.g.rollback(mark)
			b.solids, b.faces, b.loose = b.solids[:nSolids], b.faces[:nFaces], b.loose[:nLoose]
			err = fmt.Errorf("panic while building: %v", r)
		}
	}()

	switch v := it.(type) {
	case strategy.Plane:
		b.faces = append(b.faces, b.plane(v))
	case strategy.Cylinder:
		b.loose = append(b.loose, b.cylinder(v))
	case strategy.Box:
		b.solids = append(b.solids, b.box(v))
	default:
		return fmt.Errorf("unsupported item %T", it)
	}
	return nil
}

// topLevel chooses the representation items: solids as-is, loose faces in
// an open shell under a surface model, unbounded geometry in a geometric set
// led by the root placement. With nothing built, a geometric set holding only
// the root placement keeps the document non-empty.
func (b *Builder) topLevel(ctx docContext) []Ref {
	var items []Ref
	items = append(items, b.solids...)

	if len(b.faces) > 0 {
		shell := b.g.Addf("OPEN_SHELL('',%s)", refList(b.faces))
		items = append(items, b.g.Addf("SHELL_BASED_SURFACE_MODEL('',(%v))", shell))
	}

	if len(b.loose) > 0 {
		members := append([]Ref{ctx.rootAxis}, b.loose...)
		items = append(items, b.g.Addf("GEOMETRIC_SET('',%s)", refList(members)))
	}

	if len(items) == 0 {
		b.log.Warn("step.document.fallback", "reason", "no geometry built")
		items = append(items, b.g.Addf("GEOMETRIC_SET('',(%v))", ctx.rootAxis))
	}
	return items
}
