package engine

import (
	"fmt"
	"strings"

	"github.com/chazu/meshstep/pkg/geom"
	"github.com/chazu/meshstep/pkg/strategy"
	zygo "github.com/glycerine/zygomys/zygo"
	"github.com/samber/lo"
)

// ---------------------------------------------------------------------------
// Go values carried through the interpreter
// ---------------------------------------------------------------------------

// sexpVec3 is the value of (vec3 x y z).
type sexpVec3 struct {
	vec geom.Vec3
}

func (v *sexpVec3) SexpString(ps *zygo.PrintState) string {
	return fmt.Sprintf("(vec3 %g %g %g)", v.vec.X, v.vec.Y, v.vec.Z)
}
func (v *sexpVec3) Type() *zygo.RegisteredType { return nil }

// sexpItem is returned by the item builtins so scripts can print what they
// declared.
type sexpItem struct {
	index int
	kind  strategy.Kind
}

func (it *sexpItem) SexpString(ps *zygo.PrintState) string {
	return fmt.Sprintf("(%s #%d)", strings.ToLower(it.kind.String()), it.index)
}
func (it *sexpItem) Type() *zygo.RegisteredType { return nil }

// ---------------------------------------------------------------------------
// Argument parsing
// ---------------------------------------------------------------------------

// kwArgs is an argument list split into keywords and positionals. Keyword
// names are normalized to kebab-case, so :x-axis and :x_axis are the same.
type kwArgs struct {
	kw         map[string]zygo.Sexp
	positional []zygo.Sexp
}

func keywordName(s zygo.Sexp) (string, bool) {
	str, ok := s.(*zygo.SexpStr)
	if !ok || !strings.HasPrefix(str.S, kwPrefix) {
		return "", false
	}
	return strings.ReplaceAll(str.S[len(kwPrefix):], "_", "-"), true
}

func parseArgs(args []zygo.Sexp) kwArgs {
	pa := kwArgs{kw: make(map[string]zygo.Sexp)}
	for i := 0; i < len(args); i++ {
		name, ok := keywordName(args[i])
		if !ok {
			pa.positional = append(pa.positional, args[i])
			continue
		}
		if i+1 < len(args) {
			pa.kw[name] = args[i+1]
			i++
		} else {
			pa.kw[name] = zygo.SexpNull
		}
	}
	return pa
}

// only rejects keywords outside allowed and any positional arguments.
func (pa kwArgs) only(allowed ...string) error {
	for name := range pa.kw {
		if !lo.Contains(allowed, name) {
			return fmt.Errorf("unknown keyword :%s (expected one of :%s)", name, strings.Join(allowed, ", :"))
		}
	}
	if len(pa.positional) > 0 {
		return fmt.Errorf("unexpected positional argument %s", pa.positional[0].SexpString(nil))
	}
	return nil
}

// num reads an optional numeric keyword into dst.
func (pa kwArgs) num(name string, dst *float64) error {
	v, ok := pa.kw[name]
	if !ok {
		return nil
	}
	f, err := toFloat64(v)
	if err != nil {
		return fmt.Errorf("%s: %w", name, err)
	}
	*dst = f
	return nil
}

// vec reads an optional vector keyword into dst.
func (pa kwArgs) vec(name string, dst *geom.Vec3) error {
	v, ok := pa.kw[name]
	if !ok {
		return nil
	}
	vec, err := toVec3(v)
	if err != nil {
		return fmt.Errorf("%s: %w", name, err)
	}
	*dst = vec
	return nil
}

func toFloat64(s zygo.Sexp) (float64, error) {
	switch v := s.(type) {
	case *zygo.SexpInt:
		return float64(v.Val), nil
	case *zygo.SexpFloat:
		return v.Val, nil
	}
	return 0, fmt.Errorf("expected number, got %s", s.SexpString(nil))
}

func toString(s zygo.Sexp) (string, error) {
	if str, ok := s.(*zygo.SexpStr); ok {
		return str.S, nil
	}
	return "", fmt.Errorf("expected string, got %s", s.SexpString(nil))
}

// toVec3 accepts (vec3 x y z), a three-element list or a three-element
// array.
func toVec3(s zygo.Sexp) (geom.Vec3, error) {
	if v, ok := s.(*sexpVec3); ok {
		return v.vec, nil
	}
	var elems []zygo.Sexp
	switch v := s.(type) {
	case *zygo.SexpPair:
		list, err := zygo.ListToArray(v)
		if err != nil {
			return geom.Vec3{}, err
		}
		elems = list
	case *zygo.SexpArray:
		elems = v.Val
	default:
		return geom.Vec3{}, fmt.Errorf("expected vec3, got %s", s.SexpString(nil))
	}
	if len(elems) != 3 {
		return geom.Vec3{}, fmt.Errorf("expected 3 components, got %d", len(elems))
	}
	var c [3]float64
	for i, e := range elems {
		f, err := toFloat64(e)
		if err != nil {
			return geom.Vec3{}, fmt.Errorf("component %d: %w", i, err)
		}
		c[i] = f
	}
	return geom.V(c[0], c[1], c[2]), nil
}

// ---------------------------------------------------------------------------
// Builtin registration
// ---------------------------------------------------------------------------

// registerBuiltins installs the strategy vocabulary into env. Items are
// validated when declared, so a bad parameter fails the script at the line
// that declared it.
//
//	(shape "Rectangular Box")
//	(assume "Dimensions taken from the bounding box.")
//	(plane :origin (vec3 0 0 0) :normal (vec3 0 0 1) :x-axis (vec3 1 0 0) :width 20 :height 10)
//	(cylinder :origin (vec3 0 0 0) :axis (vec3 0 0 1) :radius 5)
//	(box :center (vec3 0 0 5) :dimensions (vec3 10 10 10))
func registerBuiltins(env *zygo.Zlisp, s *strategy.Strategy) {
	add := func(name string, it strategy.Item) (zygo.Sexp, error) {
		if err := it.Validate(); err != nil {
			return zygo.SexpNull, fmt.Errorf("%s: %w", name, err)
		}
		s.Add(it)
		return &sexpItem{index: len(s.Items) - 1, kind: it.Kind()}, nil
	}

	env.AddFunction("vec3", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		if len(args) != 3 {
			return zygo.SexpNull, fmt.Errorf("vec3 requires exactly 3 arguments, got %d", len(args))
		}
		v, err := toVec3(&zygo.SexpArray{Val: args})
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("vec3: %w", err)
		}
		return &sexpVec3{vec: v}, nil
	})

	env.AddFunction("shape", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		if len(args) != 1 {
			return zygo.SexpNull, fmt.Errorf("shape requires a name")
		}
		str, err := toString(args[0])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("shape: %w", err)
		}
		s.DetectedShape = str
		return zygo.SexpNull, nil
	})

	env.AddFunction("assume", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		for i, a := range args {
			str, err := toString(a)
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("assume: argument %d: %w", i, err)
			}
			s.Assume(str)
		}
		return zygo.SexpNull, nil
	})

	env.AddFunction("plane", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		pa := parseArgs(args)
		if err := pa.only("origin", "normal", "x-axis", "width", "height"); err != nil {
			return zygo.SexpNull, fmt.Errorf("plane: %w", err)
		}
		p := strategy.NewPlane()
		if err := firstErr(
			pa.vec("origin", &p.Origin),
			pa.vec("normal", &p.Normal),
			pa.num("width", &p.Width),
			pa.num("height", &p.Height),
		); err != nil {
			return zygo.SexpNull, fmt.Errorf("plane: %w", err)
		}
		if _, ok := pa.kw["x-axis"]; ok {
			var x geom.Vec3
			if err := pa.vec("x-axis", &x); err != nil {
				return zygo.SexpNull, fmt.Errorf("plane: %w", err)
			}
			p.XAxis = &x
		}
		return add("plane", p)
	})

	env.AddFunction("cylinder", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		pa := parseArgs(args)
		if err := pa.only("origin", "axis", "radius"); err != nil {
			return zygo.SexpNull, fmt.Errorf("cylinder: %w", err)
		}
		c := strategy.NewCylinder()
		if err := firstErr(
			pa.vec("origin", &c.Origin),
			pa.vec("axis", &c.Axis),
			pa.num("radius", &c.Radius),
		); err != nil {
			return zygo.SexpNull, fmt.Errorf("cylinder: %w", err)
		}
		return add("cylinder", c)
	})

	env.AddFunction("box", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		pa := parseArgs(args)
		if err := pa.only("center", "dimensions"); err != nil {
			return zygo.SexpNull, fmt.Errorf("box: %w", err)
		}
		b := strategy.NewBox()
		if err := firstErr(
			pa.vec("center", &b.Center),
			pa.vec("dimensions", &b.Dims),
		); err != nil {
			return zygo.SexpNull, fmt.Errorf("box: %w", err)
		}
		return add("box", b)
	})
}

func firstErr(errs ...error) error {
	for _, err := range errs {
		if err != nil {
			return err
		}
	}
	return nil
}
