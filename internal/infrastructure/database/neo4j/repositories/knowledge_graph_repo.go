// Package repositories implements domain stores on Neo4j.
package repositories

import (
	"context"
	"fmt"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"

	"github.com/turtacn/EcoExpand-AI/internal/domain/knowledge"
	driver "github.com/turtacn/EcoExpand-AI/internal/infrastructure/database/neo4j"
	"github.com/turtacn/EcoExpand-AI/internal/infrastructure/monitoring/logging"
)

// Cypher used by the knowledge graph store. Entities are (:Entity {name,
// type}) nodes joined by [:RELATES {relation}] edges, at most one per
// ordered pair.
const (
	cypherEnsureConstraint = `CREATE CONSTRAINT entity_name IF NOT EXISTS FOR (n:Entity) REQUIRE n.name IS UNIQUE`

	cypherUpsertEntities = `
		UNWIND $entities AS e
		MERGE (n:Entity {name: e.name})
		SET n.type = e.type`

	cypherMissingEntities = `
		UNWIND $names AS name
		OPTIONAL MATCH (n:Entity {name: name})
		WITH name, n WHERE n IS NULL
		RETURN name`

	cypherAddRelations = `
		UNWIND $relations AS r
		MATCH (s:Entity {name: r.source}), (t:Entity {name: r.target})
		MERGE (s)-[rel:RELATES]->(t)
		SET rel.relation = r.relation`

	cypherNodes = `
		MATCH (n:Entity)
		RETURN n.name AS name, coalesce(n.type, '') AS type
		ORDER BY name`

	cypherEdges = `
		MATCH (s:Entity)-[r:RELATES]->(t:Entity)
		RETURN s.name AS source, t.name AS target, coalesce(r.relation, '') AS relation
		ORDER BY source, target`

	cypherClear = `MATCH (n:Entity) DETACH DELETE n`
)

type neo4jKnowledgeGraphRepo struct {
	driver driver.DriverInterface
	log    logging.Logger
}

// NewNeo4jKnowledgeGraphRepo returns a knowledge.Store backed by d.
func NewNeo4jKnowledgeGraphRepo(d driver.DriverInterface, log logging.Logger) knowledge.Store {
	if log == nil {
		log = logging.NewNopLogger()
	}
	return &neo4jKnowledgeGraphRepo{driver: d, log: log}
}

// EnsureConstraints creates the entity name uniqueness constraint.
func EnsureConstraints(ctx context.Context, d driver.DriverInterface) error {
	_, err := d.ExecuteWrite(ctx, func(tx driver.Transaction) (interface{}, error) {
		res, err := tx.Run(ctx, cypherEnsureConstraint, nil)
		if err != nil {
			return nil, err
		}
		_, err = res.Consume(ctx)
		return nil, err
	})
	return err
}

func (r *neo4jKnowledgeGraphRepo) UpsertEntities(ctx context.Context, entities []knowledge.Entity) error {
	if len(entities) == 0 {
		return nil
	}
	rows := make([]map[string]any, len(entities))
	for i, e := range entities {
		rows[i] = map[string]any{"name": e.Name, "type": e.Type}
	}
	_, err := r.driver.ExecuteWrite(ctx, func(tx driver.Transaction) (interface{}, error) {
		res, err := tx.Run(ctx, cypherUpsertEntities, map[string]any{"entities": rows})
		if err != nil {
			return nil, err
		}
		_, err = res.Consume(ctx)
		return nil, err
	})
	return err
}

func (r *neo4jKnowledgeGraphRepo) AddRelations(ctx context.Context, relations []knowledge.Relation) error {
	if len(relations) == 0 {
		return nil
	}
	seen := make(map[string]struct{})
	var names []string
	rows := make([]map[string]any, len(relations))
	for i, rel := range relations {
		for _, n := range []string{rel.Source, rel.Target} {
			if _, ok := seen[n]; !ok {
				seen[n] = struct{}{}
				names = append(names, n)
			}
		}
		rows[i] = map[string]any{"source": rel.Source, "target": rel.Target, "relation": rel.Relation}
	}

	_, err := r.driver.ExecuteWrite(ctx, func(tx driver.Transaction) (interface{}, error) {
		res, err := tx.Run(ctx, cypherMissingEntities, map[string]any{"names": names})
		if err != nil {
			return nil, err
		}
		missing, err := driver.CollectRecords(ctx, res, stringField("name"))
		if err != nil {
			return nil, err
		}
		if len(missing) > 0 {
			r.log.Debug("relations reference unknown entities", logging.Strings("missing", missing))
			return nil, knowledge.ErrEntityNotFound
		}

		res, err = tx.Run(ctx, cypherAddRelations, map[string]any{"relations": rows})
		if err != nil {
			return nil, err
		}
		_, err = res.Consume(ctx)
		return nil, err
	})
	return err
}

func (r *neo4jKnowledgeGraphRepo) Snapshot(ctx context.Context) (*knowledge.Graph, error) {
	out, err := r.driver.ExecuteRead(ctx, func(tx driver.Transaction) (interface{}, error) {
		res, err := tx.Run(ctx, cypherNodes, nil)
		if err != nil {
			return nil, err
		}
		nodes, err := driver.CollectRecords(ctx, res, func(rec *neo4j.Record) (knowledge.Entity, error) {
			name, err := stringField("name")(rec)
			if err != nil {
				return knowledge.Entity{}, err
			}
			typ, err := stringField("type")(rec)
			return knowledge.Entity{Name: name, Type: typ}, err
		})
		if err != nil {
			return nil, err
		}

		res, err = tx.Run(ctx, cypherEdges, nil)
		if err != nil {
			return nil, err
		}
		edges, err := driver.CollectRecords(ctx, res, func(rec *neo4j.Record) (knowledge.Relation, error) {
			var rel knowledge.Relation
			var err error
			if rel.Source, err = stringField("source")(rec); err != nil {
				return rel, err
			}
			if rel.Target, err = stringField("target")(rec); err != nil {
				return rel, err
			}
			rel.Relation, err = stringField("relation")(rec)
			return rel, err
		})
		if err != nil {
			return nil, err
		}
		return &knowledge.Graph{Nodes: nodes, Edges: edges}, nil
	})
	if err != nil {
		return nil, err
	}

	g := out.(*knowledge.Graph)
	if g.Nodes == nil {
		g.Nodes = []knowledge.Entity{}
	}
	if g.Edges == nil {
		g.Edges = []knowledge.Relation{}
	}
	// Cypher ORDER BY collation can differ from Go's for non-ASCII names.
	knowledge.SortGraph(g)
	return g, nil
}

func (r *neo4jKnowledgeGraphRepo) Clear(ctx context.Context) error {
	_, err := r.driver.ExecuteWrite(ctx, func(tx driver.Transaction) (interface{}, error) {
		res, err := tx.Run(ctx, cypherClear, nil)
		if err != nil {
			return nil, err
		}
		_, err = res.Consume(ctx)
		return nil, err
	})
	return err
}

func (r *neo4jKnowledgeGraphRepo) Ping(ctx context.Context) error {
	return r.driver.HealthCheck(ctx)
}

func stringField(key string) func(*neo4j.Record) (string, error) {
	return func(rec *neo4j.Record) (string, error) {
		v, ok := rec.Get(key)
		if !ok {
			return "", fmt.Errorf("record has no %q field", key)
		}
		if v == nil {
			return "", nil
		}
		s, ok := v.(string)
		if !ok {
			return "", fmt.Errorf("field %q is %T, not string", key, v)
		}
		return s, nil
	}
}
