package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"

	"github.com/turtacn/EcoExpand-AI/internal/domain/knowledge"
	"github.com/turtacn/EcoExpand-AI/internal/infrastructure/database/memory"
	"github.com/turtacn/EcoExpand-AI/internal/infrastructure/monitoring/logging"
)

type stubRenderer struct{}

func (stubRenderer) Render(g *knowledge.Graph) ([]byte, error) { return []byte("\x89PNG-fake"), nil }
func (stubRenderer) ContentType() string                       { return "image/png" }

type stubSnapshots struct{ keys []string }

func (s *stubSnapshots) PutSnapshot(_ context.Context, key string, _ []byte, _ string) error {
	s.keys = append(s.keys, key)
	return nil
}

type GraphHandlerSuite struct {
	suite.Suite
	snapshots *stubSnapshots
	engine    *gin.Engine
}

func (s *GraphHandlerSuite) SetupTest() {
	s.snapshots = &stubSnapshots{}
	svc := knowledge.NewService(memory.NewGraphStore(), logging.NewNopLogger(),
		knowledge.WithRenderer(stubRenderer{}),
		knowledge.WithSnapshots(s.snapshots))
	h := NewGraphHandler(svc, logging.NewNopLogger())

	s.engine = gin.New()
	s.engine.POST("/graph/entities", h.AddEntities)
	s.engine.POST("/graph/relations", h.AddRelations)
	s.engine.POST("/graph/bulk", h.BulkUpload)
	s.engine.GET("/graph", h.Get)
	s.engine.GET("/graph/image", h.Image)
	s.engine.DELETE("/graph", h.Clear)
}

func (s *GraphHandlerSuite) serve(method, path, body string) *httptest.ResponseRecorder {
	return serveEngine(s.engine, method, path, body)
}

func (s *GraphHandlerSuite) TestEntitiesAndRelations() {
	w := s.serve(http.MethodPost, "/graph/entities",
		`[{"name":"RoDTEP scheme","type":"Regulation"},{"name":"India","type":"Country"}]`)
	s.Require().Equal(http.StatusOK, w.Code)
	s.JSONEq(`{"message":"2 entities added successfully."}`, w.Body.String())

	w = s.serve(http.MethodPost, "/graph/relations",
		`[{"source":"RoDTEP scheme","target":"India","relation":"applies_to"}]`)
	s.Require().Equal(http.StatusOK, w.Code)
	s.JSONEq(`{"message":"1 relations added successfully."}`, w.Body.String())

	w = s.serve(http.MethodGet, "/graph", "")
	s.Require().Equal(http.StatusOK, w.Code)
	s.JSONEq(`{
		"nodes":[{"name":"India","type":"Country"},{"name":"RoDTEP scheme","type":"Regulation"}],
		"edges":[{"source":"RoDTEP scheme","target":"India","relation":"applies_to"}]
	}`, w.Body.String())
}

func (s *GraphHandlerSuite) TestRelationWithUnknownEntity() {
	s.serve(http.MethodPost, "/graph/entities", `[{"name":"India","type":"Country"}]`)

	w := s.serve(http.MethodPost, "/graph/relations", `[
		{"source":"India","target":"India","relation":"self"},
		{"source":"India","target":"Mars","relation":"trades_with"}
	]`)

	s.Require().Equal(http.StatusNotFound, w.Code)
	var resp ErrorResponse
	s.Require().NoError(json.Unmarshal(w.Body.Bytes(), &resp))
	s.Equal("Source or target entity not found.", resp.Detail)

	w = s.serve(http.MethodGet, "/graph", "")
	s.JSONEq(`{"nodes":[{"name":"India","type":"Country"}],"edges":[]}`, w.Body.String())
}

func (s *GraphHandlerSuite) TestBulkAndClear() {
	w := s.serve(http.MethodPost, "/graph/bulk", `{
		"entities":[{"name":"CE marking","type":"Certification"},{"name":"Europe","type":"Region"}],
		"relations":[{"source":"CE marking","target":"Europe","relation":"required_in"}]
	}`)
	s.Require().Equal(http.StatusOK, w.Code)
	s.JSONEq(`{"message":"Graph data uploaded successfully."}`, w.Body.String())

	w = s.serve(http.MethodDelete, "/graph", "")
	s.Require().Equal(http.StatusOK, w.Code)
	s.JSONEq(`{"message":"Knowledge graph cleared successfully."}`, w.Body.String())

	w = s.serve(http.MethodGet, "/graph", "")
	s.JSONEq(`{"nodes":[],"edges":[]}`, w.Body.String())
}

func (s *GraphHandlerSuite) TestInvalidEntityBody() {
	w := s.serve(http.MethodPost, "/graph/entities", `{"name":"not a list"}`)
	s.Equal(http.StatusBadRequest, w.Code)
}

func (s *GraphHandlerSuite) TestImage() {
	w := s.serve(http.MethodGet, "/graph/image", "")

	s.Require().Equal(http.StatusOK, w.Code)
	s.Equal("image/png", w.Header().Get("Content-Type"))
	s.Equal("\x89PNG-fake", w.Body.String())
	s.Require().Len(s.snapshots.keys, 1)
	s.Equal(s.snapshots.keys[0], w.Header().Get(SnapshotKeyHeader))
}

func TestGraphHandlerSuite(t *testing.T) {
	suite.Run(t, new(GraphHandlerSuite))
}

func TestGraphHandler_ImageWithoutRenderer(t *testing.T) {
	svc := knowledge.NewService(memory.NewGraphStore(), logging.NewNopLogger())
	h := NewGraphHandler(svc, logging.NewNopLogger())

	w := do(http.MethodGet, "/img", "/img", h.Image, "")

	require.Equal(t, http.StatusNotImplemented, w.Code)
	assert.Empty(t, w.Header().Get(SnapshotKeyHeader))
}
