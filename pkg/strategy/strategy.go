// Package strategy describes how a mesh should be represented in the output
// document: a named shape class, the modeling assumptions behind it, and an
// ordered list of parametric items (planes, cylinders, boxes).
//
// Strategies come from JSON or YAML documents, from strategy scripts (see
// package engine), or from the local planner in FromHints. Defaults for
// missing parameters are applied when items are constructed, never later.
package strategy

import "strings"

// FallbackShape names the strategy returned by Fallback.
const FallbackShape = "Approximation (Fallback)"

// Strategy is an ordered set of items to build plus the reasoning that
// produced them.
type Strategy struct {
	DetectedShape string   `json:"detected_shape"`
	Assumptions   []string `json:"assumptions"`
	Items         []Item   `json:"-"`
}

// Assume appends a modeling assumption, ignoring blank text.
func (s *Strategy) Assume(text string) {
	if strings.TrimSpace(text) == "" {
		return
	}
	s.Assumptions = append(s.Assumptions, text)
}

// Add appends items in order.
func (s *Strategy) Add(items ...Item) {
	s.Items = append(s.Items, items...)
}

// TypeCount is the number of items declared with one type label.
type TypeCount struct {
	Type  string
	Count int
}

// Counts tallies items by type label in order of first appearance. Invalid
// items count under the type they were declared with.
func (s *Strategy) Counts() []TypeCount {
	var out []TypeCount
	index := make(map[string]int)
	for _, it := range s.Items {
		label := it.Kind().String()
		if inv, ok := it.(Invalid); ok {
			label = strings.ToUpper(strings.TrimSpace(inv.Type))
			if label == "" {
				label = "Unknown"
			}
		}
		if i, ok := index[label]; ok {
			out[i].Count++
			continue
		}
		index[label] = len(out)
		out = append(out, TypeCount{Type: label, Count: 1})
	}
	return out
}

// Fallback returns the minimal strategy used when nothing better is
// available: a single default ground plane.
func Fallback() *Strategy {
	s := &Strategy{DetectedShape: FallbackShape}
	s.Assume("No strategy available, using a default ground plane.")
	s.Add(NewPlane())
	return s
}
