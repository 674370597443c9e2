// Package memory provides the in-process knowledge graph store.
package memory

import (
	"context"
	"sync"

	"gonum.org/v1/gonum/graph/simple"

	"github.com/turtacn/EcoExpand-AI/internal/domain/knowledge"
)

type edgeKey struct{ from, to int64 }

// GraphStore keeps the knowledge graph in a gonum directed graph guarded by
// an RWMutex. Node identity is the entity name. Self-relations are kept
// beside the gonum graph, which has no self edges.
type GraphStore struct {
	mu     sync.RWMutex
	g      *simple.DirectedGraph
	ids    map[string]int64
	types  map[int64]knowledge.Entity
	labels map[edgeKey]string
	loops  map[int64]string
}

// NewGraphStore returns an empty store.
func NewGraphStore() *GraphStore {
	s := &GraphStore{}
	s.reset()
	return s
}

func (s *GraphStore) reset() {
	s.g = simple.NewDirectedGraph()
	s.ids = make(map[string]int64)
	s.types = make(map[int64]knowledge.Entity)
	s.labels = make(map[edgeKey]string)
	s.loops = make(map[int64]string)
}

func (s *GraphStore) UpsertEntities(_ context.Context, entities []knowledge.Entity) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, e := range entities {
		id, ok := s.ids[e.Name]
		if !ok {
			n := s.g.NewNode()
			s.g.AddNode(n)
			id = n.ID()
			s.ids[e.Name] = id
		}
		s.types[id] = e
	}
	return nil
}

func (s *GraphStore) AddRelations(_ context.Context, relations []knowledge.Relation) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, r := range relations {
		_, okSrc := s.ids[r.Source]
		_, okDst := s.ids[r.Target]
		if !okSrc || !okDst {
			return knowledge.ErrEntityNotFound
		}
	}
	for _, r := range relations {
		from, to := s.ids[r.Source], s.ids[r.Target]
		if from == to {
			s.loops[from] = r.Relation
			continue
		}
		if !s.g.HasEdgeFromTo(from, to) {
			s.g.SetEdge(s.g.NewEdge(s.g.Node(from), s.g.Node(to)))
		}
		s.labels[edgeKey{from, to}] = r.Relation
	}
	return nil
}

func (s *GraphStore) Snapshot(_ context.Context) (*knowledge.Graph, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := &knowledge.Graph{
		Nodes: make([]knowledge.Entity, 0, s.g.Nodes().Len()),
		Edges: make([]knowledge.Relation, 0, len(s.labels)+len(s.loops)),
	}
	for nodes := s.g.Nodes(); nodes.Next(); {
		out.Nodes = append(out.Nodes, s.types[nodes.Node().ID()])
	}
	for edges := s.g.Edges(); edges.Next(); {
		e := edges.Edge()
		out.Edges = append(out.Edges, knowledge.Relation{
			Source:   s.types[e.From().ID()].Name,
			Target:   s.types[e.To().ID()].Name,
			Relation: s.labels[edgeKey{e.From().ID(), e.To().ID()}],
		})
	}
	for id, label := range s.loops {
		name := s.types[id].Name
		out.Edges = append(out.Edges, knowledge.Relation{Source: name, Target: name, Relation: label})
	}
	knowledge.SortGraph(out)
	return out, nil
}

func (s *GraphStore) Clear(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.reset()
	return nil
}

func (s *GraphStore) Ping(_ context.Context) error { return nil }

var _ knowledge.Store = (*GraphStore)(nil)
