package knowledge

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/turtacn/EcoExpand-AI/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/EcoExpand-AI/internal/infrastructure/monitoring/prometheus"
	"github.com/turtacn/EcoExpand-AI/pkg/errors"
)

// Service applies validated mutations to a Store and renders it.
type Service struct {
	store     Store
	renderer  Renderer
	snapshots SnapshotStore
	events    EventPublisher
	logger    logging.Logger
	metrics   *prometheus.AppMetrics
	now       func() time.Time
}

// ServiceOption customises a Service.
type ServiceOption func(*Service)

func WithRenderer(r Renderer) ServiceOption {
	return func(s *Service) { s.renderer = r }
}

// WithSnapshots stores every rendered image in ss.
func WithSnapshots(ss SnapshotStore) ServiceOption {
	return func(s *Service) { s.snapshots = ss }
}

func WithEvents(p EventPublisher) ServiceOption {
	return func(s *Service) { s.events = p }
}

func WithMetrics(m *prometheus.AppMetrics) ServiceOption {
	return func(s *Service) { s.metrics = m }
}

// NewService returns a graph service over store.
func NewService(store Store, logger logging.Logger, opts ...ServiceOption) *Service {
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	s := &Service{store: store, logger: logger, now: time.Now}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// AddEntities upserts entities and reports how many were applied.
func (s *Service) AddEntities(ctx context.Context, entities []Entity) (string, error) {
	if err := ValidateEntities(entities); err != nil {
		return "", err
	}
	if err := s.store.UpsertEntities(ctx, entities); err != nil {
		return "", s.fail(OpAddEntities, err)
	}
	s.changed(ctx, OpAddEntities, len(entities), 0)
	return fmt.Sprintf("%d entities added successfully.", len(entities)), nil
}

// AddRelations adds every relation or, if any endpoint is unknown, none.
func (s *Service) AddRelations(ctx context.Context, relations []Relation) (string, error) {
	if err := ValidateRelations(relations); err != nil {
		return "", err
	}
	if err := s.store.AddRelations(ctx, relations); err != nil {
		return "", s.fail(OpAddRelations, err)
	}
	s.changed(ctx, OpAddRelations, 0, len(relations))
	return fmt.Sprintf("%d relations added successfully.", len(relations)), nil
}

// BulkUpload applies data.Entities and then data.Relations. Entities stay
// applied when a relation is rejected.
func (s *Service) BulkUpload(ctx context.Context, data GraphData) (string, error) {
	if err := ValidateEntities(data.Entities); err != nil {
		return "", err
	}
	if err := ValidateRelations(data.Relations); err != nil {
		return "", err
	}
	if err := s.store.UpsertEntities(ctx, data.Entities); err != nil {
		return "", s.fail(OpBulkUpload, err)
	}
	if err := s.store.AddRelations(ctx, data.Relations); err != nil {
		return "", s.fail(OpBulkUpload, err)
	}
	s.changed(ctx, OpBulkUpload, len(data.Entities), len(data.Relations))
	return "Graph data uploaded successfully.", nil
}

// Seed loads the starter graph.
func (s *Service) Seed(ctx context.Context) error {
	data := SampleData()
	if err := s.store.UpsertEntities(ctx, data.Entities); err != nil {
		return s.fail(OpSeed, err)
	}
	if err := s.store.AddRelations(ctx, data.Relations); err != nil {
		return s.fail(OpSeed, err)
	}
	s.changed(ctx, OpSeed, len(data.Entities), len(data.Relations))
	return nil
}

// Clear empties the graph.
func (s *Service) Clear(ctx context.Context) (string, error) {
	if err := s.store.Clear(ctx); err != nil {
		return "", s.fail(OpClear, err)
	}
	s.changed(ctx, OpClear, 0, 0)
	return "Knowledge graph cleared successfully.", nil
}

// Graph returns the current graph.
func (s *Service) Graph(ctx context.Context) (*Graph, error) {
	g, err := s.store.Snapshot(ctx)
	if err != nil {
		return nil, s.fail("snapshot", err)
	}
	return g, nil
}

// Image is a rendered graph. SnapshotKey is set when the image was stored.
type Image struct {
	Data        []byte
	ContentType string
	SnapshotKey string
}

// Render draws the current graph. A failed snapshot upload is logged and
// does not fail the render.
func (s *Service) Render(ctx context.Context) (*Image, error) {
	if s.renderer == nil {
		return nil, errors.New(errors.CodeNotImplemented, "graph rendering is not configured")
	}
	g, err := s.Graph(ctx)
	if err != nil {
		return nil, err
	}
	data, err := s.renderer.Render(g)
	if err != nil {
		prometheus.RecordGraphOperation(s.metrics, "render", false, len(g.Nodes), len(g.Edges))
		return nil, errors.Wrap(err, errors.ErrCodeGraphRenderFailed, "failed to render graph")
	}
	prometheus.RecordGraphOperation(s.metrics, "render", true, len(g.Nodes), len(g.Edges))

	img := &Image{Data: data, ContentType: s.renderer.ContentType()}
	if s.snapshots != nil {
		key := fmt.Sprintf("graph/snapshot-%s-%s.png", s.now().UTC().Format("20060102T150405Z"), uuid.NewString()[:8])
		if err := s.snapshots.PutSnapshot(ctx, key, data, img.ContentType); err != nil {
			s.logger.Warn("graph snapshot upload failed", logging.String("key", key), logging.Err(err))
		} else {
			img.SnapshotKey = key
		}
	}
	return img, nil
}

// Ping checks the backing store.
func (s *Service) Ping(ctx context.Context) error {
	return s.store.Ping(ctx)
}

func (s *Service) fail(op string, err error) error {
	prometheus.RecordGraphOperation(s.metrics, op, false, -1, -1)
	if errors.IsNotFound(err) {
		return err
	}
	s.logger.Error("graph operation failed", logging.String("operation", op), logging.Err(err))
	var appErr *errors.AppError
	if errors.As(err, &appErr) {
		return err
	}
	return errors.Wrap(err, errors.ErrCodeDatabaseError, "graph store operation failed")
}

func (s *Service) changed(ctx context.Context, op string, entities, relations int) {
	nodes, edges := -1, -1
	if g, err := s.store.Snapshot(ctx); err == nil {
		nodes, edges = len(g.Nodes), len(g.Edges)
	}
	prometheus.RecordGraphOperation(s.metrics, op, true, nodes, edges)
	s.logger.Info("knowledge graph changed",
		logging.String("operation", op),
		logging.Int("entities", entities),
		logging.Int("relations", relations),
		logging.Int("nodes", nodes),
		logging.Int("edges", edges),
	)
	if s.events == nil {
		return
	}
	ev := GraphChangedEvent{Operation: op, Entities: entities, Relations: relations, Nodes: nodes, Edges: edges, ChangedAt: s.now().UTC()}
	if err := s.events.Publish(ctx, EventGraphChanged, ev); err != nil {
		s.logger.Warn("graph event not published", logging.String("operation", op), logging.Err(err))
	}
}
