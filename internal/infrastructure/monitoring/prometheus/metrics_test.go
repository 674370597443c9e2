package prometheus

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestNewAppMetrics_RegistersEverything(t *testing.T) {
	c := newTestCollector(t)
	m := NewAppMetrics(c)

	assert.NotNil(t, m.HTTPRequestsTotal)
	assert.NotNil(t, m.RiskAnalysesTotal)
	assert.NotNil(t, m.LLMRequestsTotal)
	assert.NotNil(t, m.GraphNodes)
	assert.NotNil(t, m.EventsPublished)
}

func TestRecordHelpers(t *testing.T) {
	c := newTestCollector(t)
	m := NewAppMetrics(c)

	RecordHTTPRequest(m, "POST", "/api/v1/analyze", 200, 3*time.Millisecond)
	RecordRiskAnalysis(m, "Low", "ok", 20*time.Microsecond)
	RecordRiskAnalysis(m, "", "not_found", 5*time.Microsecond)
	RecordPipelineFit(m, 120, 431.5, 2*time.Second)
	RecordLLMCall(m, "gpt-4", true, time.Second, 80, 200)
	RecordNLPRequest(m, "key_phrases", false)
	RecordGraphOperation(m, "add_entities", true, 7, 5)
	RecordCacheAccess(m, "chat", true)
	RecordCacheAccess(m, "chat", false)
	RecordEvent(m, "analysis.completed", true)
	RecordError(m, "chat", "COMMON_014")
	RecordHealth(m, "pipeline", true)

	out := scrapeMetrics(t, c)
	assert.Contains(t, out, `test_unit_http_requests_total{method="POST",path="/api/v1/analyze",status_code="200"} 1`)
	assert.Contains(t, out, `test_unit_risk_analyses_total{outcome="ok",tier="Low"} 1`)
	assert.Contains(t, out, `test_unit_risk_analyses_total{outcome="not_found",tier="none"} 1`)
	assert.Contains(t, out, "test_unit_pipeline_rows 120")
	assert.Contains(t, out, "test_unit_pipeline_holdout_rmse 431.5")
	assert.Contains(t, out, `test_unit_llm_tokens_total{direction="completion",model="gpt-4"} 200`)
	assert.Contains(t, out, `test_unit_nlp_requests_total{operation="key_phrases",status="failure"} 1`)
	assert.Contains(t, out, "test_unit_graph_nodes 7")
	assert.Contains(t, out, "test_unit_graph_edges 5")
	assert.Contains(t, out, `test_unit_cache_hits_total{cache="chat"} 1`)
	assert.Contains(t, out, `test_unit_cache_misses_total{cache="chat"} 1`)
	assert.Contains(t, out, `test_unit_events_published_total{event_type="analysis.completed",status="success"} 1`)
	assert.Contains(t, out, `test_unit_health_check_status{component="pipeline"} 1`)
}

func TestRecordHelpers_NilMetrics(t *testing.T) {
	assert.NotPanics(t, func() {
		RecordHTTPRequest(nil, "GET", "/", 200, 0)
		RecordRiskAnalysis(nil, "Low", "ok", 0)
		RecordPipelineFit(nil, 1, 0, 0)
		RecordLLMCall(nil, "m", true, 0, 0, 0)
		RecordNLPRequest(nil, "x", true)
		RecordGraphOperation(nil, "x", true, 0, 0)
		RecordCacheAccess(nil, "x", true)
		RecordEvent(nil, "x", true)
		RecordError(nil, "x", "y")
		RecordHealth(nil, "x", false)
	})
}

func TestRecordGraphOperation_FailureKeepsGauges(t *testing.T) {
	c := newTestCollector(t)
	m := NewAppMetrics(c)

	RecordGraphOperation(m, "add_entities", true, 3, 1)
	RecordGraphOperation(m, "add_relations", false, 0, 0)

	assert.Contains(t, scrapeMetrics(t, c), "test_unit_graph_nodes 3")
}
