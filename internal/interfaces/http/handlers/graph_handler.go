package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/turtacn/EcoExpand-AI/internal/domain/knowledge"
	"github.com/turtacn/EcoExpand-AI/internal/infrastructure/monitoring/logging"
)

// SnapshotKeyHeader carries the object key of a stored graph image.
const SnapshotKeyHeader = "X-Snapshot-Key"

// GraphService is the part of knowledge.Service the handler needs.
type GraphService interface {
	AddEntities(ctx context.Context, entities []knowledge.Entity) (string, error)
	AddRelations(ctx context.Context, relations []knowledge.Relation) (string, error)
	BulkUpload(ctx context.Context, data knowledge.GraphData) (string, error)
	Clear(ctx context.Context) (string, error)
	Graph(ctx context.Context) (*knowledge.Graph, error)
	Render(ctx context.Context) (*knowledge.Image, error)
}

// GraphHandler serves the knowledge graph endpoints.
type GraphHandler struct {
	svc    GraphService
	logger logging.Logger
}

// NewGraphHandler creates a new GraphHandler.
func NewGraphHandler(svc GraphService, logger logging.Logger) *GraphHandler {
	return &GraphHandler{svc: svc, logger: logger}
}

// AddEntities handles POST /api/v1/graph/entities.
func (h *GraphHandler) AddEntities(c *gin.Context) {
	var entities []knowledge.Entity
	if !bindJSON(c, h.logger, &entities) {
		return
	}
	h.respond(c, func(ctx context.Context) (string, error) { return h.svc.AddEntities(ctx, entities) })
}

// AddRelations handles POST /api/v1/graph/relations.
func (h *GraphHandler) AddRelations(c *gin.Context) {
	var relations []knowledge.Relation
	if !bindJSON(c, h.logger, &relations) {
		return
	}
	h.respond(c, func(ctx context.Context) (string, error) { return h.svc.AddRelations(ctx, relations) })
}

// BulkUpload handles POST /api/v1/graph/bulk.
func (h *GraphHandler) BulkUpload(c *gin.Context) {
	var data knowledge.GraphData
	if !bindJSON(c, h.logger, &data) {
		return
	}
	h.respond(c, func(ctx context.Context) (string, error) { return h.svc.BulkUpload(ctx, data) })
}

// Clear handles DELETE /api/v1/graph.
func (h *GraphHandler) Clear(c *gin.Context) {
	h.respond(c, h.svc.Clear)
}

// Get handles GET /api/v1/graph.
func (h *GraphHandler) Get(c *gin.Context) {
	g, err := h.svc.Graph(c.Request.Context())
	if err != nil {
		writeAppError(c, h.logger, err)
		return
	}
	resp := GraphResponse{Nodes: g.Nodes, Edges: g.Edges}
	if resp.Nodes == nil {
		resp.Nodes = []knowledge.Entity{}
	}
	if resp.Edges == nil {
		resp.Edges = []knowledge.Relation{}
	}
	writeJSON(c, http.StatusOK, resp)
}

// Image handles GET /api/v1/graph/image.
func (h *GraphHandler) Image(c *gin.Context) {
	img, err := h.svc.Render(c.Request.Context())
	if err != nil {
		writeAppError(c, h.logger, err)
		return
	}
	if img.SnapshotKey != "" {
		c.Header(SnapshotKeyHeader, img.SnapshotKey)
	}
	c.Data(http.StatusOK, img.ContentType, img.Data)
}

func (h *GraphHandler) respond(c *gin.Context, op func(context.Context) (string, error)) {
	msg, err := op(c.Request.Context())
	if err != nil {
		writeAppError(c, h.logger, err)
		return
	}
	writeJSON(c, http.StatusOK, MessageResponse{Message: msg})
}
