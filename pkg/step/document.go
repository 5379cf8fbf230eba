// Package step builds ISO 10303-21 exchange documents (AP214,
// AUTOMOTIVE_DESIGN schema) from strategy items and triangle meshes.
//
// Entities live in an append-only Graph: ids start at 1, only increase, and a
// definition can only reference entities added before it. A Builder layers
// boundary-representation topology on top of the graph (shared vertices,
// oriented edges, loops, faces, shells, solids) and Assemble wraps the result
// in the product and representation boilerplate a CAD viewer expects.
package step

import (
	"io"
	"strings"
	"time"
)

// TimestampLayout is the FILE_NAME time stamp format.
const TimestampLayout = "2006-01-02T15:04:05"

// Header carries the FILE_NAME attributes a caller may set.
type Header struct {
	Name         string
	Author       string
	Organization string
}

// Document is an assembled exchange file. It is immutable once returned by
// Assemble.
type Document struct {
	Header    Header
	Timestamp time.Time
	Entities  []Entity
}

// Render returns the complete file text.
func (d *Document) Render() string {
	var b strings.Builder
	b.WriteString("ISO-10303-21;\n")
	b.WriteString("HEADER;\n")
	b.WriteString("FILE_DESCRIPTION(('STEP AP214'),'2;1');\n")
	b.WriteString("FILE_NAME(")
	b.WriteString(quote(d.Header.Name))
	b.WriteString(",")
	b.WriteString(quote(d.Timestamp.Format(TimestampLayout)))
	b.WriteString(",(")
	b.WriteString(quote(d.Header.Author))
	b.WriteString("),(")
	b.WriteString(quote(d.Header.Organization))
	b.WriteString("),'meshstep','meshstep','');\n")
	b.WriteString("FILE_SCHEMA(('AUTOMOTIVE_DESIGN'));\n")
	b.WriteString("ENDSEC;\n")
	b.WriteString("DATA;\n")
	b.WriteString(d.Body())
	b.WriteString("ENDSEC;\n")
	b.WriteString("END-ISO-10303-21;\n")
	return b.String()
}

// Body returns only the entity instances, one per line. Two documents built
// from the same input have identical bodies.
func (d *Document) Body() string {
	var b strings.Builder
	for _, e := range d.Entities {
		b.WriteString(Ref{id: e.ID}.String())
		b.WriteByte('=')
		b.WriteString(e.Def)
		b.WriteString(";\n")
	}
	return b.String()
}

// WriteTo writes the rendered file to w.
func (d *Document) WriteTo(w io.Writer) (int64, error) {
	n, err := io.WriteString(w, d.Render())
	return int64(n), err
}

// Count returns how many entities have the given type keyword, e.g.
// "EDGE_CURVE". Complex instances are not counted.
func (d *Document) Count(keyword string) int {
	n := 0
	for _, e := range d.Entities {
		if entityType(e.Def) == keyword {
			n++
		}
	}
	return n
}

// entityType returns the keyword before the first parenthesis, or "" for a
// complex instance.
func entityType(def string) string {
	i := strings.IndexByte(def, '(')
	if i <= 0 {
		return ""
	}
	return def[:i]
}
