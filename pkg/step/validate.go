package step

import (
	"fmt"
	"strings"
)

// ValidationError is a finding that makes a document unusable.
type ValidationError struct {
	EntityID int // 0 for document-level findings
	Message  string
}

func (e ValidationError) Error() string {
	if e.EntityID == 0 {
		return e.Message
	}
	return fmt.Sprintf("#%d: %s", e.EntityID, e.Message)
}

// ValidationWarning is an advisory finding, such as an open boundary edge.
type ValidationWarning struct {
	EntityID int
	Message  string
}

// ValidationResult bundles errors (blocking) and warnings (advisory).
type ValidationResult struct {
	Errors   []ValidationError
	Warnings []ValidationWarning
}

// OK reports whether there are no errors.
func (r ValidationResult) OK() bool { return len(r.Errors) == 0 }

// Validate checks an assembled document in three tiers and never mutates it:
//
//   - structure: ids run 1..n without gaps and every reference points to an
//     earlier entity
//   - topology: every EDGE_CURVE is used by at most two oriented edges, and
//     by opposite senses when used twice; a single use is an open boundary
//   - representation: exactly one SHAPE_REPRESENTATION with at least one item
func Validate(d *Document) ValidationResult {
	var r ValidationResult
	if d == nil {
		r.Errors = append(r.Errors, ValidationError{Message: "nil document"})
		return r
	}
	validateStructure(d, &r)
	validateEdgeUse(d, &r)
	validateRepresentation(d, &r)
	return r
}

func validateStructure(d *Document, r *ValidationResult) {
	for i, e := range d.Entities {
		if e.ID != i+1 {
			r.Errors = append(r.Errors, ValidationError{
				EntityID: e.ID,
				Message:  fmt.Sprintf("expected id %d at position %d", i+1, i),
			})
		}
		for _, ref := range references(e.Def) {
			if ref < 1 || ref >= e.ID {
				r.Errors = append(r.Errors, ValidationError{
					EntityID: e.ID,
					Message:  fmt.Sprintf("reference #%d does not point to an earlier entity", ref),
				})
			}
		}
	}
}

func validateEdgeUse(d *Document, r *ValidationResult) {
	kinds := make(map[int]string, len(d.Entities))
	uses := make(map[int][]bool)
	var curves []int

	for _, e := range d.Entities {
		kind := entityType(e.Def)
		kinds[e.ID] = kind
		switch kind {
		case "EDGE_CURVE":
			curves = append(curves, e.ID)
		case "ORIENTED_EDGE":
			refs := references(e.Def)
			if len(refs) != 1 {
				r.Errors = append(r.Errors, ValidationError{
					EntityID: e.ID,
					Message:  fmt.Sprintf("oriented edge has %d references, want 1", len(refs)),
				})
				continue
			}
			if kinds[refs[0]] != "EDGE_CURVE" {
				r.Errors = append(r.Errors, ValidationError{
					EntityID: e.ID,
					Message:  fmt.Sprintf("oriented edge refers to #%d, which is not an EDGE_CURVE", refs[0]),
				})
				continue
			}
			uses[refs[0]] = append(uses[refs[0]], strings.HasSuffix(e.Def, ".T.)"))
		}
	}

	for _, id := range curves {
		u := uses[id]
		switch {
		case len(u) == 0:
			r.Warnings = append(r.Warnings, ValidationWarning{EntityID: id, Message: "edge curve is never used"})
		case len(u) == 1:
			r.Warnings = append(r.Warnings, ValidationWarning{EntityID: id, Message: "edge bounds only one face (open boundary)"})
		case len(u) > 2:
			r.Errors = append(r.Errors, ValidationError{
				EntityID: id,
				Message:  fmt.Sprintf("edge used by %d oriented edges, want at most 2", len(u)),
			})
		case u[0] == u[1]:
			r.Errors = append(r.Errors, ValidationError{
				EntityID: id,
				Message:  "edge traversed twice in the same direction",
			})
		}
	}
}

func validateRepresentation(d *Document, r *ValidationResult) {
	var found []Entity
	for _, e := range d.Entities {
		if entityType(e.Def) == "SHAPE_REPRESENTATION" {
			found = append(found, e)
		}
	}
	if len(found) != 1 {
		r.Errors = append(r.Errors, ValidationError{
			Message: fmt.Sprintf("found %d SHAPE_REPRESENTATION entities, want 1", len(found)),
		})
		return
	}
	// Items plus the trailing context reference.
	if len(references(found[0].Def)) < 2 {
		r.Errors = append(r.Errors, ValidationError{
			EntityID: found[0].ID,
			Message:  "shape representation has no items",
		})
	}
}

// references returns the entity numbers mentioned in def, in order, skipping
// string literals.
func references(def string) []int {
	var refs []int
	for i := 0; i < len(def); i++ {
		switch def[i] {
		case '\'':
			// Skip to the closing quote; '' is an escaped quote.
			for i++; i < len(def); i++ {
				if def[i] == '\'' {
					if i+1 < len(def) && def[i+1] == '\'' {
						i++
						continue
					}
					break
				}
			}
		case '#':
			n, j := 0, i+1
			for j < len(def) && def[j] >= '0' && def[j] <= '9' {
				n = n*10 + int(def[j]-'0')
				j++
			}
			if j > i+1 {
				refs = append(refs, n)
			}
			i = j - 1
		}
	}
	return refs
}
