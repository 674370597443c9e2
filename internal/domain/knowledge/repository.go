package knowledge

import "context"

// Store persists the knowledge graph.
type Store interface {
	// UpsertEntities adds entities, overwriting the type of existing names.
	UpsertEntities(ctx context.Context, entities []Entity) error
	// AddRelations applies every relation or none. It returns
	// ErrEntityNotFound when any endpoint is missing.
	AddRelations(ctx context.Context, relations []Relation) error
	// Snapshot returns the whole graph in canonical order.
	Snapshot(ctx context.Context) (*Graph, error)
	// Clear removes every node and edge.
	Clear(ctx context.Context) error
	Ping(ctx context.Context) error
}

// Renderer draws a graph as an image.
type Renderer interface {
	Render(g *Graph) ([]byte, error)
	ContentType() string
}

// SnapshotStore keeps rendered graph images.
type SnapshotStore interface {
	PutSnapshot(ctx context.Context, key string, data []byte, contentType string) error
}

// EventPublisher emits audit events. Implementations must not block on the
// broker.
type EventPublisher interface {
	Publish(ctx context.Context, eventType string, payload interface{}) error
}
