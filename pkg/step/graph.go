package step

import (
	"fmt"
	"strconv"
)

// Ref is a reference to an entity already stored in a Graph. The zero Ref
// refers to nothing; only Graph.Add hands out others.
type Ref struct {
	id int
}

// ID returns the entity number, 0 for the zero Ref.
func (r Ref) ID() int { return r.id }

// IsZero reports whether r refers to nothing.
func (r Ref) IsZero() bool { return r.id == 0 }

// String renders r as an instance name, "#12".
func (r Ref) String() string { return "#" + strconv.Itoa(r.id) }

// Entity is one numbered instance in the DATA section. Def is the instance
// body without the leading "#id=" and the trailing ";".
type Entity struct {
	ID  int
	Def string
}

// Graph is an append-only arena of entities numbered from 1. A definition can
// only mention Refs returned by earlier calls, so references always point
// backwards.
type Graph struct {
	entities []Entity

	// added, when set, is called with every appended entity.
	added func(Entity)
}

// Add appends def and returns its reference.
func (g *Graph) Add(def string) Ref {
	e := Entity{ID: len(g.entities) + 1, Def: def}
	g.entities = append(g.entities, e)
	if g.added != nil {
		g.added(e)
	}
	return Ref{id: e.ID}
}

// Addf is Add with fmt formatting. Refs format as "#id".
func (g *Graph) Addf(format string, args ...any) Ref {
	return g.Add(fmt.Sprintf(format, args...))
}

// Len returns the number of entities.
func (g *Graph) Len() int { return len(g.entities) }

// Entities returns a copy of the entities in id order.
func (g *Graph) Entities() []Entity {
	out := make([]Entity, len(g.entities))
	copy(out, g.entities)
	return out
}

// rollback discards every entity added after the graph held n entities, so
// the next Add reissues id n+1. That is only sound while no Ref to a
// discarded entity is held anywhere: a reissued id then names exactly one
// entity in the rendered document, and ids stay gapless. Builder.buildItem
// is the only caller and drops every Ref the failed build produced.
func (g *Graph) rollback(n int) {
	if n < len(g.entities) {
		g.entities = g.entities[:n]
	}
}
