package prometheus

import (
	"strconv"
	"time"
)

// AppMetrics holds every metric the service exports.
type AppMetrics struct {
	// HTTP
	HTTPRequestsTotal   CounterVec
	HTTPRequestDuration HistogramVec
	HTTPActiveRequests  GaugeVec

	// Risk pipeline
	RiskAnalysesTotal   CounterVec
	RiskAnalysisLatency HistogramVec
	PipelineRows        GaugeVec
	PipelineHoldoutRMSE GaugeVec
	PipelineFitDuration GaugeVec

	// Chat completion
	LLMRequestsTotal   CounterVec
	LLMRequestDuration HistogramVec
	LLMTokensUsed      CounterVec

	// Text analysis
	NLPRequestsTotal CounterVec

	// Knowledge graph
	GraphOperationsTotal CounterVec
	GraphNodes           GaugeVec
	GraphEdges           GaugeVec

	// Infrastructure
	CacheHitsTotal    CounterVec
	CacheMissesTotal  CounterVec
	EventsPublished   CounterVec
	ErrorsTotal       CounterVec
	HealthCheckStatus GaugeVec
}

// Buckets
var (
	DefaultHTTPDurationBuckets  = []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10}
	DefaultQueryDurationBuckets = []float64{.00001, .00005, .0001, .0005, .001, .005, .01}
	DefaultLLMDurationBuckets   = []float64{.5, 1, 2, 5, 10, 30, 60, 120}
)

// NewAppMetrics registers all metrics on collector.
func NewAppMetrics(collector MetricsCollector) *AppMetrics {
	m := &AppMetrics{}

	m.HTTPRequestsTotal = collector.RegisterCounter("http_requests_total", "Total HTTP requests", "method", "path", "status_code")
	m.HTTPRequestDuration = collector.RegisterHistogram("http_request_duration_seconds", "HTTP request duration", DefaultHTTPDurationBuckets, "method", "path")
	m.HTTPActiveRequests = collector.RegisterGauge("http_active_requests", "In-flight HTTP requests", "method")

	m.RiskAnalysesTotal = collector.RegisterCounter("risk_analyses_total", "Country risk analyses", "tier", "outcome")
	m.RiskAnalysisLatency = collector.RegisterHistogram("risk_analysis_duration_seconds", "Country lookup plus forest prediction", DefaultQueryDurationBuckets)
	m.PipelineRows = collector.RegisterGauge("pipeline_rows", "Indicator rows kept after ingestion")
	m.PipelineHoldoutRMSE = collector.RegisterGauge("pipeline_holdout_rmse", "Cost-saving forest RMSE on the held-out split")
	m.PipelineFitDuration = collector.RegisterGauge("pipeline_fit_duration_seconds", "Time spent fitting clusters and forest at startup")

	m.LLMRequestsTotal = collector.RegisterCounter("llm_requests_total", "Chat completion calls", "model", "status")
	m.LLMRequestDuration = collector.RegisterHistogram("llm_request_duration_seconds", "Chat completion latency", DefaultLLMDurationBuckets, "model")
	m.LLMTokensUsed = collector.RegisterCounter("llm_tokens_total", "Tokens reported by the provider", "model", "direction")

	m.NLPRequestsTotal = collector.RegisterCounter("nlp_requests_total", "Text analysis requests", "operation", "status")

	m.GraphOperationsTotal = collector.RegisterCounter("graph_operations_total", "Knowledge graph operations", "operation", "status")
	m.GraphNodes = collector.RegisterGauge("graph_nodes", "Knowledge graph node count")
	m.GraphEdges = collector.RegisterGauge("graph_edges", "Knowledge graph edge count")

	m.CacheHitsTotal = collector.RegisterCounter("cache_hits_total", "Cache hits", "cache")
	m.CacheMissesTotal = collector.RegisterCounter("cache_misses_total", "Cache misses", "cache")
	m.EventsPublished = collector.RegisterCounter("events_published_total", "Audit events handed to the broker", "event_type", "status")
	m.ErrorsTotal = collector.RegisterCounter("errors_total", "Errors by component", "component", "code")
	m.HealthCheckStatus = collector.RegisterGauge("health_check_status", "Health check status (1=up, 0=down)", "component")

	return m
}

func status(ok bool) string {
	if ok {
		return "success"
	}
	return "failure"
}

// RecordHTTPRequest records one served request.
func RecordHTTPRequest(m *AppMetrics, method, path string, statusCode int, d time.Duration) {
	if m == nil {
		return
	}
	m.HTTPRequestsTotal.WithLabelValues(method, path, strconv.Itoa(statusCode)).Inc()
	m.HTTPRequestDuration.WithLabelValues(method, path).Observe(d.Seconds())
}

// RecordRiskAnalysis records one analyze call. tier is empty on failure.
func RecordRiskAnalysis(m *AppMetrics, tier string, outcome string, d time.Duration) {
	if m == nil {
		return
	}
	if tier == "" {
		tier = "none"
	}
	m.RiskAnalysesTotal.WithLabelValues(tier, outcome).Inc()
	m.RiskAnalysisLatency.WithLabelValues().Observe(d.Seconds())
}

// RecordPipelineFit publishes startup fit statistics.
func RecordPipelineFit(m *AppMetrics, rows int, rmse float64, d time.Duration) {
	if m == nil {
		return
	}
	m.PipelineRows.WithLabelValues().Set(float64(rows))
	m.PipelineHoldoutRMSE.WithLabelValues().Set(rmse)
	m.PipelineFitDuration.WithLabelValues().Set(d.Seconds())
}

// RecordLLMCall records one chat completion.
func RecordLLMCall(m *AppMetrics, model string, success bool, d time.Duration, promptTokens, completionTokens int) {
	if m == nil {
		return
	}
	m.LLMRequestsTotal.WithLabelValues(model, status(success)).Inc()
	m.LLMRequestDuration.WithLabelValues(model).Observe(d.Seconds())
	m.LLMTokensUsed.WithLabelValues(model, "prompt").Add(float64(promptTokens))
	m.LLMTokensUsed.WithLabelValues(model, "completion").Add(float64(completionTokens))
}

// RecordNLPRequest records one text analysis call.
func RecordNLPRequest(m *AppMetrics, operation string, success bool) {
	if m == nil {
		return
	}
	m.NLPRequestsTotal.WithLabelValues(operation, status(success)).Inc()
}

// RecordGraphOperation records a knowledge graph mutation or read and the
// resulting graph size. Negative sizes leave the gauges untouched.
func RecordGraphOperation(m *AppMetrics, operation string, success bool, nodes, edges int) {
	if m == nil {
		return
	}
	m.GraphOperationsTotal.WithLabelValues(operation, status(success)).Inc()
	if success && nodes >= 0 {
		m.GraphNodes.WithLabelValues().Set(float64(nodes))
		m.GraphEdges.WithLabelValues().Set(float64(edges))
	}
}

// RecordCacheAccess records a cache lookup.
func RecordCacheAccess(m *AppMetrics, cache string, hit bool) {
	if m == nil {
		return
	}
	if hit {
		m.CacheHitsTotal.WithLabelValues(cache).Inc()
	} else {
		m.CacheMissesTotal.WithLabelValues(cache).Inc()
	}
}

// RecordEvent records an audit event publish attempt.
func RecordEvent(m *AppMetrics, eventType string, success bool) {
	if m == nil {
		return
	}
	m.EventsPublished.WithLabelValues(eventType, status(success)).Inc()
}

// RecordError records an error by component and code.
func RecordError(m *AppMetrics, component, code string) {
	if m == nil {
		return
	}
	m.ErrorsTotal.WithLabelValues(component, code).Inc()
}

// RecordHealth sets the health gauge for component.
func RecordHealth(m *AppMetrics, component string, up bool) {
	if m == nil {
		return
	}
	v := 0.0
	if up {
		v = 1
	}
	m.HealthCheckStatus.WithLabelValues(component).Set(v)
}
