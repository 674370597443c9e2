package http

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/turtacn/EcoExpand-AI/internal/config"
	"github.com/turtacn/EcoExpand-AI/internal/domain/knowledge"
	"github.com/turtacn/EcoExpand-AI/internal/domain/risk"
	"github.com/turtacn/EcoExpand-AI/internal/infrastructure/database/memory"
	"github.com/turtacn/EcoExpand-AI/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/EcoExpand-AI/internal/infrastructure/monitoring/prometheus"
	"github.com/turtacn/EcoExpand-AI/internal/interfaces/http/handlers"
	"github.com/turtacn/EcoExpand-AI/internal/interfaces/http/middleware"
	"github.com/turtacn/EcoExpand-AI/pkg/errors"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type stubRisk struct{}

func (stubRisk) Analyze(_ context.Context, country string) (*risk.Analysis, error) {
	if country != "India" {
		return nil, errors.NotFound("No data available for " + country)
	}
	return &risk.Analysis{Country: "India", RiskCluster: "Low Risk", PredictedCostSavings: "$1,000.00"}, nil
}
func (stubRisk) Countries() []string                     { return []string{"India"} }
func (stubRisk) FeatureImportance() []risk.FeatureWeight { return nil }
func (stubRisk) Summary() risk.Summary                   { return risk.Summary{} }

type stubChat struct{}

func (stubChat) Reply(_ context.Context, query, _ string) (string, error) { return "re: " + query, nil }

func newTestRouter(t *testing.T) (*gin.Engine, prometheus.MetricsCollector) {
	t.Helper()
	log := logging.NewNopLogger()
	collector, err := prometheus.NewMetricsCollector(prometheus.CollectorConfig{Namespace: "routertest"}, log)
	require.NoError(t, err)
	metrics := prometheus.NewAppMetrics(collector)

	r := NewRouter(RouterConfig{
		RiskHandler:   handlers.NewRiskHandler(stubRisk{}, log),
		ChatHandler:   handlers.NewChatHandler(stubChat{}, log),
		GraphHandler:  handlers.NewGraphHandler(knowledge.NewService(memory.NewGraphStore(), log), log),
		HealthHandler: handlers.NewHealthHandler("test", metrics),
		CORS: config.CORSConfig{
			AllowedOrigins: []string{config.DefaultCORSOrigin},
			AllowedMethods: []string{http.MethodGet, http.MethodPost},
		},
		Logging:          middleware.DefaultLoggingConfig(),
		MaxBodySize:      1 << 10,
		Logger:           log,
		Metrics:          metrics,
		MetricsCollector: collector,
	})
	return r, collector
}

func serve(r http.Handler, method, path, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, path, bytes.NewBufferString(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestNewRouter_RoutesRegistered(t *testing.T) {
	r, _ := newTestRouter(t)

	tests := []struct {
		method string
		path   string
		body   string
		want   int
	}{
		{http.MethodGet, "/", "", http.StatusOK},
		{http.MethodGet, "/healthz", "", http.StatusOK},
		{http.MethodGet, "/readyz", "", http.StatusOK},
		{http.MethodPost, "/api/v1/analyze", `{"country":"India"}`, http.StatusOK},
		{http.MethodPost, "/api/v1/analyze", `{"country":"Atlantis"}`, http.StatusNotFound},
		{http.MethodGet, "/api/v1/countries", "", http.StatusOK},
		{http.MethodGet, "/api/v1/feature-importance", "", http.StatusOK},
		{http.MethodGet, "/api/v1/risk/summary", "", http.StatusOK},
		{http.MethodPost, "/api/v1/chat", `{"user_query":"hi"}`, http.StatusOK},
		{http.MethodPost, "/api/v1/graph/entities", `[{"name":"India","type":"Country"}]`, http.StatusOK},
		{http.MethodGet, "/api/v1/graph", "", http.StatusOK},
		{http.MethodDelete, "/api/v1/graph", "", http.StatusOK},
		// legacy aliases
		{http.MethodPost, "/analyze", `{"country":"India"}`, http.StatusOK},
		{http.MethodGet, "/countries", "", http.StatusOK},
		{http.MethodPost, "/chat", `{"user_query":"hi"}`, http.StatusOK},
		{http.MethodPost, "/add_entities", `[{"name":"India","type":"Country"}]`, http.StatusOK},
		{http.MethodGet, "/get_graph", "", http.StatusOK},
		{http.MethodDelete, "/clear_graph", "", http.StatusOK},
		// no NLP handler configured
		{http.MethodPost, "/api/v1/summarize-text", `{"text":"x"}`, http.StatusNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.method+" "+tt.path, func(t *testing.T) {
			w := serve(r, tt.method, tt.path, tt.body)
			assert.Equal(t, tt.want, w.Code, w.Body.String())
		})
	}
}

func TestNewRouter_Welcome(t *testing.T) {
	r, _ := newTestRouter(t)

	w := serve(r, http.MethodGet, "/", "")

	assert.JSONEq(t, `{"message":"`+handlers.WelcomeMessage+`"}`, w.Body.String())
	assert.NotEmpty(t, w.Header().Get(middleware.RequestIDHeader))
}

func TestNewRouter_NotFoundBody(t *testing.T) {
	r, _ := newTestRouter(t)

	w := serve(r, http.MethodGet, "/api/v1/nope", "")

	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.JSONEq(t, `{"code":"COMMON_005","detail":"Not Found"}`, w.Body.String())
}

func TestNewRouter_CORSForWebClient(t *testing.T) {
	r, _ := newTestRouter(t)

	req := httptest.NewRequest(http.MethodOptions, "/countries", nil)
	req.Header.Set("Origin", config.DefaultCORSOrigin)
	req.Header.Set("Access-Control-Request-Method", http.MethodGet)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, config.DefaultCORSOrigin, w.Header().Get("Access-Control-Allow-Origin"))
}

func TestNewRouter_BodyLimit(t *testing.T) {
	r, _ := newTestRouter(t)

	big := `{"user_query":"` + string(bytes.Repeat([]byte("a"), 2048)) + `"}`
	w := serve(r, http.MethodPost, "/api/v1/chat", big)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestNewRouter_MetricsEndpoint(t *testing.T) {
	r, _ := newTestRouter(t)

	serve(r, http.MethodGet, "/api/v1/countries", "")
	w := serve(r, http.MethodGet, "/metrics", "")

	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `routertest_http_requests_total{method="GET",path="/api/v1/countries",status_code="200"} 1`)
}

func TestNewRouter_NilHandlers_NoPanic(t *testing.T) {
	assert.NotPanics(t, func() {
		r := NewRouter(RouterConfig{})
		w := serve(r, http.MethodGet, "/healthz", "")
		assert.Equal(t, http.StatusNotFound, w.Code)
	})
}
