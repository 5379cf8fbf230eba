package strategy

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/chazu/meshstep/pkg/geom"
)

// ErrUnsupportedFormat is returned by LoadFile for extensions other than
// .json, .yaml and .yml.
var ErrUnsupportedFormat = errors.New("unsupported strategy format")

// document is the wire shape shared by JSON and YAML strategies:
//
//	{"detected_shape": "...", "assumptions": [...],
//	 "entities": [{"type": "PLANE", "params": {...}, "dimensions": ...}]}
type document struct {
	DetectedShape string   `json:"detected_shape" yaml:"detected_shape"`
	Assumptions   []string `json:"assumptions" yaml:"assumptions"`
	Entities      []entity `json:"entities" yaml:"entities"`
}

// entity keeps params loosely typed so one malformed field only invalidates
// its own item.
type entity struct {
	Type       string         `json:"type" yaml:"type"`
	Params     map[string]any `json:"params" yaml:"params"`
	Dimensions any            `json:"dimensions" yaml:"dimensions"`
	Comment    string         `json:"comment" yaml:"comment"`
}

// DecodeJSON reads a JSON strategy document.
func DecodeJSON(r io.Reader) (*Strategy, error) {
	var doc document
	if err := json.NewDecoder(r).Decode(&doc); err != nil {
		return nil, fmt.Errorf("strategy: decode json: %w", err)
	}
	return mapDocument(doc), nil
}

// DecodeYAML reads a YAML strategy document.
func DecodeYAML(r io.Reader) (*Strategy, error) {
	var doc document
	if err := yaml.NewDecoder(r).Decode(&doc); err != nil {
		if errors.Is(err, io.EOF) {
			return &Strategy{}, nil
		}
		return nil, fmt.Errorf("strategy: decode yaml: %w", err)
	}
	return mapDocument(doc), nil
}

// LoadFile decodes a strategy file, choosing the format by extension.
func LoadFile(path string) (*Strategy, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("strategy: %w", err)
	}
	defer f.Close()

	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return DecodeJSON(f)
	case ".yaml", ".yml":
		return DecodeYAML(f)
	default:
		return nil, fmt.Errorf("strategy: %s: %w", path, ErrUnsupportedFormat)
	}
}

func mapDocument(doc document) *Strategy {
	s := &Strategy{DetectedShape: strings.TrimSpace(doc.DetectedShape)}
	for _, a := range doc.Assumptions {
		s.Assume(a)
	}
	for i, e := range doc.Entities {
		s.Add(mapEntity(fmt.Sprintf("entities[%d]", i), e))
	}
	return s
}

// mapEntity converts one declared entity. Decode problems produce an Invalid
// item whose error names the offending field.
func mapEntity(prefix string, e entity) Item {
	invalid := func(field string, err error) Item {
		return Invalid{Type: e.Type, Err: fmt.Errorf("%s.%s: %w", prefix, field, err)}
	}
	p := params(e.Params)

	switch strings.ToUpper(strings.TrimSpace(e.Type)) {
	case "PLANE":
		plane := NewPlane()
		if err := p.vec("origin", &plane.Origin); err != nil {
			return invalid("params.origin", err)
		}
		if err := p.vec("normal", &plane.Normal); err != nil {
			return invalid("params.normal", err)
		}
		if v, ok := p["x_axis"]; ok && v != nil {
			x, err := toVec(v)
			if err != nil {
				return invalid("params.x_axis", err)
			}
			plane.XAxis = &x
		}
		// Size may sit in params or in an entity-level dimensions object.
		if dims, ok := e.Dimensions.(map[string]any); ok {
			d := params(dims)
			if err := d.num("width", &plane.Width); err != nil {
				return invalid("dimensions.width", err)
			}
			if err := d.num("height", &plane.Height); err != nil {
				return invalid("dimensions.height", err)
			}
		}
		if err := p.num("width", &plane.Width); err != nil {
			return invalid("params.width", err)
		}
		if err := p.num("height", &plane.Height); err != nil {
			return invalid("params.height", err)
		}
		return plane

	case "CYLINDER":
		cyl := NewCylinder()
		if err := p.vec("origin", &cyl.Origin); err != nil {
			return invalid("params.origin", err)
		}
		if err := p.vec("axis", &cyl.Axis); err != nil {
			return invalid("params.axis", err)
		}
		if err := p.num("radius", &cyl.Radius); err != nil {
			return invalid("params.radius", err)
		}
		return cyl

	case "BOX":
		box := NewBox()
		if err := p.vec("center", &box.Center); err != nil {
			return invalid("params.center", err)
		}
		if e.Dimensions != nil {
			if _, isObject := e.Dimensions.(map[string]any); !isObject {
				d, err := toVec(e.Dimensions)
				if err != nil {
					return invalid("dimensions", err)
				}
				box.Dims = d
			}
		}
		if err := p.vec("dimensions", &box.Dims); err != nil {
			return invalid("params.dimensions", err)
		}
		return box

	default:
		return invalid("type", fmt.Errorf("%q: %w", e.Type, ErrUnknownType))
	}
}

// params wraps a decoded parameter object. Lookups leave the destination
// untouched when the key is absent or null.
type params map[string]any

func (p params) num(key string, dst *float64) error {
	v, ok := p[key]
	if !ok || v == nil {
		return nil
	}
	f, err := toFloat(v)
	if err != nil {
		return err
	}
	*dst = f
	return nil
}

func (p params) vec(key string, dst *geom.Vec3) error {
	v, ok := p[key]
	if !ok || v == nil {
		return nil
	}
	vec, err := toVec(v)
	if err != nil {
		return err
	}
	*dst = vec
	return nil
}

func toFloat(v any) (float64, error) {
	switch n := v.(type) {
	case float64:
		return n, nil
	case float32:
		return float64(n), nil
	case int:
		return float64(n), nil
	case int64:
		return float64(n), nil
	case uint64:
		return float64(n), nil
	case json.Number:
		return n.Float64()
	}
	return 0, fmt.Errorf("expected number, got %T", v)
}

func toVec(v any) (geom.Vec3, error) {
	list, ok := v.([]any)
	if !ok {
		return geom.Vec3{}, fmt.Errorf("expected [x, y, z], got %T", v)
	}
	comps := make([]float64, len(list))
	for i, c := range list {
		f, err := toFloat(c)
		if err != nil {
			return geom.Vec3{}, fmt.Errorf("[%d]: %w", i, err)
		}
		comps[i] = f
	}
	return geom.FromSlice(comps)
}
