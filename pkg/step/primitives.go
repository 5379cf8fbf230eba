package step

import (
	"github.com/chazu/meshstep/pkg/geom"
	"github.com/chazu/meshstep/pkg/strategy"
)

// ---------------------------------------------------------------------------
// Shared geometry and topology helpers
// ---------------------------------------------------------------------------

func (b *Builder) point(p geom.Vec3) Ref {
	return b.g.Add("CARTESIAN_POINT(''," + triple(p) + ")")
}

func (b *Builder) direction(d geom.Vec3) Ref {
	return b.g.Add("DIRECTION(''," + triple(d) + ")")
}

// placement emits an AXIS2_PLACEMENT_3D with an explicit reference direction.
func (b *Builder) placement(origin, axis, ref geom.Vec3) Ref {
	p := b.point(origin)
	a := b.direction(axis)
	r := b.direction(ref)
	return b.g.Addf("AXIS2_PLACEMENT_3D('',%v,%v,%v)", p, a, r)
}

func (b *Builder) vertex(p geom.Vec3) Ref {
	return b.g.Addf("VERTEX_POINT('',%v)", b.point(p))
}

// edge emits a straight EDGE_CURVE from start to end. The underlying LINE
// runs from the start point along the normalized chord.
func (b *Builder) edge(start, end Ref, from, to geom.Vec3) Ref {
	chord := to.Sub(from)
	origin := b.point(from)
	dir := b.direction(chord.Normalize(geom.UnitX))
	vec := b.g.Addf("VECTOR('',%v,%s)", dir, num(chord.Len()))
	line := b.g.Addf("LINE('',%v,%v)", origin, vec)
	return b.g.Addf("EDGE_CURVE('',%v,%v,%v,.T.)", start, end, line)
}

func (b *Builder) orientedEdge(edge Ref, forward bool) Ref {
	return b.g.Addf("ORIENTED_EDGE('',*,*,%v,%s)", edge, logical(forward))
}

// face closes the oriented edges into a loop and bounds surface with it.
func (b *Builder) face(edges []Ref, surface Ref) Ref {
	loop := b.g.Addf("EDGE_LOOP('',%s)", refList(edges))
	bound := b.g.Addf("FACE_OUTER_BOUND('',%v,.T.)", loop)
	return b.g.Addf("ADVANCED_FACE('',(%v),%v,.T.)", bound, surface)
}

func logical(v bool) string {
	if v {
		return ".T."
	}
	return ".F."
}

// ---------------------------------------------------------------------------
// Plane
// ---------------------------------------------------------------------------

// plane builds one bounded rectangular ADVANCED_FACE. Corners run
// counter-clockwise about the normal starting at origin - x·w/2 - y·h/2.
func (b *Builder) plane(p strategy.Plane) Ref {
	n := p.Normal.Normalize(geom.DefaultNormal)
	var x, y geom.Vec3
	if p.XAxis != nil {
		x, y = geom.BasisWithX(n, *p.XAxis)
	} else {
		x, y = geom.Basis(n)
	}
	surface := b.g.Addf("PLANE('',%v)", b.placement(p.Origin, n, x))

	w2 := x.Scale(p.Width / 2)
	h2 := y.Scale(p.Height / 2)
	corners := [4]geom.Vec3{
		p.Origin.Sub(w2).Sub(h2),
		p.Origin.Add(w2).Sub(h2),
		p.Origin.Add(w2).Add(h2),
		p.Origin.Sub(w2).Add(h2),
	}
	var verts [4]Ref
	for i, c := range corners {
		verts[i] = b.vertex(c)
	}

	edges := make([]Ref, 4)
	for i := range corners {
		j := (i + 1) % 4
		e := b.edge(verts[i], verts[j], corners[i], corners[j])
		edges[i] = b.orientedEdge(e, true)
	}
	return b.face(edges, surface)
}

// ---------------------------------------------------------------------------
// Cylinder
// ---------------------------------------------------------------------------

// cylinder emits an unbounded CYLINDRICAL_SURFACE. The placement leaves the
// reference direction unset.
func (b *Builder) cylinder(c strategy.Cylinder) Ref {
	origin := b.point(c.Origin)
	axis := b.direction(c.Axis.Normalize(geom.UnitZ))
	placement := b.g.Addf("AXIS2_PLACEMENT_3D('',%v,%v,$)", origin, axis)
	return b.g.Addf("CYLINDRICAL_SURFACE('',%v,%s)", placement, num(c.Radius))
}

// ---------------------------------------------------------------------------
// Box
// ---------------------------------------------------------------------------

// boxCorners selects min (0) or max (1) per axis for vertices 0..7: the
// bottom ring counter-clockwise from the min corner, then the top ring.
var boxCorners = [8][3]int{
	{0, 0, 0}, {1, 0, 0}, {1, 1, 0}, {0, 1, 0},
	{0, 0, 1}, {1, 0, 1}, {1, 1, 1}, {0, 1, 1},
}

// boxEdges lists the 12 edges as (start, end) vertex pairs:
// e01 e12 e23 e30 e45 e56 e67 e74 e04 e15 e26 e37.
var boxEdges = [12][2]int{
	{0, 1}, {1, 2}, {2, 3}, {3, 0},
	{4, 5}, {5, 6}, {6, 7}, {7, 4},
	{0, 4}, {1, 5}, {2, 6}, {3, 7},
}

type edgeUse struct {
	edge    int
	forward bool
}

// boxFaces gives each face its outward normal and its loop of edge uses,
// counter-clockwise seen from outside. Every edge appears in exactly two
// loops, once forward and once reversed.
var boxFaces = [6]struct {
	normal geom.Vec3
	loop   [4]edgeUse
}{
	{geom.V(0, 0, -1), [4]edgeUse{{3, false}, {2, false}, {1, false}, {0, false}}}, // bottom 0-3-2-1
	{geom.V(0, 0, 1), [4]edgeUse{{4, true}, {5, true}, {6, true}, {7, true}}},      // top 4-5-6-7
	{geom.V(0, -1, 0), [4]edgeUse{{0, true}, {9, true}, {4, false}, {8, false}}},   // front 0-1-5-4
	{geom.V(1, 0, 0), [4]edgeUse{{1, true}, {10, true}, {5, false}, {9, false}}},   // right 1-2-6-5
	{geom.V(0, 1, 0), [4]edgeUse{{2, true}, {11, true}, {6, false}, {10, false}}},  // back 2-3-7-6
	{geom.V(-1, 0, 0), [4]edgeUse{{3, true}, {8, true}, {7, false}, {11, false}}},  // left 3-0-4-7
}

// box builds a closed hexahedral MANIFOLD_SOLID_BREP. Vertices and edges are
// created once and shared between faces.
func (b *Builder) box(bx strategy.Box) Ref {
	lo := bx.Center.Sub(bx.Dims.Scale(0.5))
	hi := bx.Center.Add(bx.Dims.Scale(0.5))
	pick := func(sel [3]int) geom.Vec3 {
		v := lo
		if sel[0] == 1 {
			v.X = hi.X
		}
		if sel[1] == 1 {
			v.Y = hi.Y
		}
		if sel[2] == 1 {
			v.Z = hi.Z
		}
		return v
	}

	var pts [8]geom.Vec3
	var verts [8]Ref
	for i, sel := range boxCorners {
		pts[i] = pick(sel)
		verts[i] = b.vertex(pts[i])
	}

	var edges [12]Ref
	for i, e := range boxEdges {
		edges[i] = b.edge(verts[e[0]], verts[e[1]], pts[e[0]], pts[e[1]])
	}

	faces := make([]Ref, 0, len(boxFaces))
	for _, f := range boxFaces {
		loop := make([]Ref, 0, 4)
		var center geom.Vec3
		for _, use := range f.loop {
			loop = append(loop, b.orientedEdge(edges[use.edge], use.forward))
			start := boxEdges[use.edge][0]
			if !use.forward {
				start = boxEdges[use.edge][1]
			}
			center = center.Add(pts[start])
		}
		x, _ := geom.Basis(f.normal)
		surface := b.g.Addf("PLANE('',%v)", b.placement(center.Scale(0.25), f.normal, x))
		faces = append(faces, b.face(loop, surface))
	}

	shell := b.g.Addf("CLOSED_SHELL('',%s)", refList(faces))
	return b.g.Addf("MANIFOLD_SOLID_BREP('',%v)", shell)
}
