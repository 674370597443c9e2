// Package knowledge models the compliance knowledge graph: named entities
// joined by labelled, directed relations.
package knowledge

import (
	"sort"
	"strings"

	"github.com/turtacn/EcoExpand-AI/pkg/errors"
)

// Entity is a graph node. Name is its identity.
type Entity struct {
	Name string `json:"name"`
	Type string `json:"type"`
}

// Relation is a directed, labelled edge. A graph holds at most one relation
// per (Source, Target) pair.
type Relation struct {
	Source   string `json:"source"`
	Target   string `json:"target"`
	Relation string `json:"relation"`
}

// Graph is a point-in-time copy of the store with nodes sorted by name and
// edges by (source, target).
type Graph struct {
	Nodes []Entity   `json:"nodes"`
	Edges []Relation `json:"edges"`
}

// GraphData is a bulk upload: entities are applied before relations.
type GraphData struct {
	Entities  []Entity   `json:"entities"`
	Relations []Relation `json:"relations"`
}

// ErrEntityNotFound is returned when a relation names an unknown entity.
var ErrEntityNotFound = errors.New(errors.ErrCodeGraphNodeNotFound, "Source or target entity not found.")

// ValidateEntities rejects entities without a name.
func ValidateEntities(entities []Entity) error {
	for i, e := range entities {
		if strings.TrimSpace(e.Name) == "" {
			return errors.Newf(errors.CodeValidation, "entity %d has an empty name", i)
		}
	}
	return nil
}

// ValidateRelations rejects relations with an empty endpoint.
func ValidateRelations(relations []Relation) error {
	for i, r := range relations {
		if strings.TrimSpace(r.Source) == "" || strings.TrimSpace(r.Target) == "" {
			return errors.Newf(errors.CodeValidation, "relation %d has an empty source or target", i)
		}
	}
	return nil
}

// SortGraph orders nodes and edges canonically in place.
func SortGraph(g *Graph) {
	sort.Slice(g.Nodes, func(i, j int) bool { return g.Nodes[i].Name < g.Nodes[j].Name })
	sort.Slice(g.Edges, func(i, j int) bool {
		if g.Edges[i].Source != g.Edges[j].Source {
			return g.Edges[i].Source < g.Edges[j].Source
		}
		return g.Edges[i].Target < g.Edges[j].Target
	})
}
