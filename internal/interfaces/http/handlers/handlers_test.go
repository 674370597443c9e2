package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/turtacn/EcoExpand-AI/internal/domain/risk"
	"github.com/turtacn/EcoExpand-AI/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/EcoExpand-AI/internal/intelligence/nlp"
	"github.com/turtacn/EcoExpand-AI/pkg/errors"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// do serves one request through a single-route engine.
func do(method, route, path string, h gin.HandlerFunc, body string) *httptest.ResponseRecorder {
	r := gin.New()
	r.Handle(method, route, h)
	return serveEngine(r, method, path, body)
}

func serveEngine(r *gin.Engine, method, path, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, bytes.NewBufferString(body))
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), v), w.Body.String())
}

// --- mocks ---

type mockRiskService struct{ mock.Mock }

func (m *mockRiskService) Analyze(ctx context.Context, country string) (*risk.Analysis, error) {
	args := m.Called(ctx, country)
	if a := args.Get(0); a != nil {
		return a.(*risk.Analysis), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockRiskService) Countries() []string {
	args := m.Called()
	if v := args.Get(0); v != nil {
		return v.([]string)
	}
	return nil
}

func (m *mockRiskService) FeatureImportance() []risk.FeatureWeight {
	return m.Called().Get(0).([]risk.FeatureWeight)
}

func (m *mockRiskService) Summary() risk.Summary {
	return m.Called().Get(0).(risk.Summary)
}

type mockChatService struct{ mock.Mock }

func (m *mockChatService) Reply(ctx context.Context, query, contextText string) (string, error) {
	args := m.Called(ctx, query, contextText)
	return args.String(0), args.Error(1)
}

type mockAnalyzer struct{ mock.Mock }

func (m *mockAnalyzer) KeyPhrases(ctx context.Context, text string) ([]nlp.Phrase, error) {
	args := m.Called(ctx, text)
	if v := args.Get(0); v != nil {
		return v.([]nlp.Phrase), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockAnalyzer) Summarize(ctx context.Context, text string) (string, error) {
	args := m.Called(ctx, text)
	return args.String(0), args.Error(1)
}

func (m *mockAnalyzer) Insights(ctx context.Context, text string) ([]nlp.Insight, error) {
	args := m.Called(ctx, text)
	if v := args.Get(0); v != nil {
		return v.([]nlp.Insight), args.Error(1)
	}
	return nil, args.Error(1)
}

// --- risk ---

func TestRiskHandler_Analyze(t *testing.T) {
	svc := new(mockRiskService)
	svc.On("Analyze", mock.Anything, "India").Return(&risk.Analysis{
		Country:              "India",
		RiskCluster:          "Medium Risk",
		PredictedCostSavings: "$12,345.68",
	}, nil)
	h := NewRiskHandler(svc, logging.NewNopLogger())

	w := do(http.MethodPost, "/analyze", "/analyze", h.Analyze, `{"country":"India"}`)

	require.Equal(t, http.StatusOK, w.Code)
	var resp RiskResponse
	decode(t, w, &resp)
	assert.Equal(t, RiskResponse{Country: "India", RiskCluster: "Medium Risk", PredictedCostSavings: "$12,345.68"}, resp)
	svc.AssertExpectations(t)
}

func TestRiskHandler_Analyze_UnknownCountry(t *testing.T) {
	svc := new(mockRiskService)
	svc.On("Analyze", mock.Anything, "Atlantis").Return(nil, errors.NotFound("No data available for Atlantis"))
	h := NewRiskHandler(svc, logging.NewNopLogger())

	w := do(http.MethodPost, "/analyze", "/analyze", h.Analyze, `{"country":"Atlantis"}`)

	require.Equal(t, http.StatusNotFound, w.Code)
	var resp ErrorResponse
	decode(t, w, &resp)
	assert.Equal(t, "No data available for Atlantis", resp.Detail)
	assert.Equal(t, string(errors.CodeNotFound), resp.Code)
}

func TestRiskHandler_Analyze_MalformedBody(t *testing.T) {
	svc := new(mockRiskService)
	h := NewRiskHandler(svc, logging.NewNopLogger())

	w := do(http.MethodPost, "/analyze", "/analyze", h.Analyze, `{"country":`)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	svc.AssertNotCalled(t, "Analyze", mock.Anything, mock.Anything)
}

func TestRiskHandler_Countries(t *testing.T) {
	svc := new(mockRiskService)
	svc.On("Countries").Return([]string{"Brazil", "India"}).Once()
	svc.On("Countries").Return(nil).Once()
	h := NewRiskHandler(svc, logging.NewNopLogger())

	w := do(http.MethodGet, "/countries", "/countries", h.Countries, "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"countries":["Brazil","India"]}`, w.Body.String())

	w = do(http.MethodGet, "/countries", "/countries", h.Countries, "")
	assert.JSONEq(t, `{"countries":[]}`, w.Body.String())
}

func TestRiskHandler_FeatureImportance(t *testing.T) {
	svc := new(mockRiskService)
	svc.On("FeatureImportance").Return([]risk.FeatureWeight{
		{Feature: risk.ColMarketRiskScore, Importance: 0.5},
		{Feature: risk.ColDutyDrawback, Importance: 0.3},
	})
	h := NewRiskHandler(svc, logging.NewNopLogger())

	w := do(http.MethodGet, "/fi", "/fi", h.FeatureImportance, "")

	require.Equal(t, http.StatusOK, w.Code)
	var resp FeatureImportanceResponse
	decode(t, w, &resp)
	require.Len(t, resp.FeatureImportance, 2)
	assert.Equal(t, risk.ColMarketRiskScore, resp.FeatureImportance[0].Feature)
	assert.InDelta(t, 0.5, resp.FeatureImportance[0].Importance, 1e-9)
}

func TestRiskHandler_Summary(t *testing.T) {
	svc := new(mockRiskService)
	svc.On("Summary").Return(risk.Summary{
		Rows:      10,
		Countries: 10,
		Tiers:     []risk.TierSummary{{Tier: 0, Label: "Low Risk", Centroid: 0.8, Size: 4}},
		Converged: true,
		Evaluation: risk.Evaluation{
			TrainSize: 8,
			TestSize:  2,
			RMSE:      120.5,
		},
	})
	h := NewRiskHandler(svc, logging.NewNopLogger())

	w := do(http.MethodGet, "/s", "/s", h.Summary, "")

	require.Equal(t, http.StatusOK, w.Code)
	var resp RiskSummaryResponse
	decode(t, w, &resp)
	assert.Equal(t, 10, resp.Rows)
	assert.Equal(t, 2, resp.TestSize)
	assert.True(t, resp.Converged)
	require.Len(t, resp.Tiers, 1)
	assert.Equal(t, "Low Risk", resp.Tiers[0].Label)
}

// --- chat ---

func TestChatHandler_Chat(t *testing.T) {
	svc := new(mockChatService)
	svc.On("Reply", mock.Anything, "What is RoDTEP?", "India exports").Return("A remission scheme.", nil)
	h := NewChatHandler(svc, logging.NewNopLogger())

	w := do(http.MethodPost, "/chat", "/chat", h.Chat, `{"user_query":"What is RoDTEP?","context":"India exports"}`)

	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"response":"A remission scheme."}`, w.Body.String())
}

func TestChatHandler_Errors(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantDetail string
	}{
		{
			name:       "empty query",
			err:        errors.New(errors.CodeValidation, "user_query must not be empty"),
			wantStatus: http.StatusBadRequest,
			wantDetail: "user_query must not be empty",
		},
		{
			name:       "upstream failure is masked",
			err:        errors.Upstream(assert.AnError, "chat completion failed: sk-secret"),
			wantStatus: http.StatusBadGateway,
			wantDetail: errors.DefaultMessageForCode(errors.CodeUpstream),
		},
		{
			name:       "plain error becomes internal",
			err:        assert.AnError,
			wantStatus: http.StatusInternalServerError,
			wantDetail: errors.DefaultMessageForCode(errors.CodeInternal),
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := new(mockChatService)
			svc.On("Reply", mock.Anything, mock.Anything, mock.Anything).Return("", tt.err)
			h := NewChatHandler(svc, logging.NewNopLogger())

			w := do(http.MethodPost, "/chat", "/chat", h.Chat, `{"user_query":"x"}`)

			require.Equal(t, tt.wantStatus, w.Code)
			var resp ErrorResponse
			decode(t, w, &resp)
			assert.Equal(t, tt.wantDetail, resp.Detail)
			assert.NotContains(t, w.Body.String(), "sk-secret")
		})
	}
}

// --- nlp ---

func TestNLPHandler_KeyPhrases(t *testing.T) {
	a := new(mockAnalyzer)
	a.On("KeyPhrases", mock.Anything, "Exporters claim duty drawback.").
		Return([]nlp.Phrase{{Phrase: "exporters", Count: 1}, {Phrase: "claim", Count: 1}}, nil)
	h := NewNLPHandler(a, logging.NewNopLogger())

	w := do(http.MethodPost, "/k", "/k", h.KeyPhrases, `{"text":"Exporters claim duty drawback."}`)

	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"key_phrases":[{"phrase":"exporters","count":1},{"phrase":"claim","count":1}]}`, w.Body.String())
}

func TestNLPHandler_Summarize(t *testing.T) {
	a := new(mockAnalyzer)
	a.On("Summarize", mock.Anything, "One. Two.").Return("One.", nil)
	h := NewNLPHandler(a, logging.NewNopLogger())

	w := do(http.MethodPost, "/s", "/s", h.Summarize, `{"text":"One. Two."}`)

	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"summary":"One."}`, w.Body.String())
}

func TestNLPHandler_Insights(t *testing.T) {
	a := new(mockAnalyzer)
	a.On("Insights", mock.Anything, "nothing here").Return(nil, nil).Once()
	a.On("Insights", mock.Anything, "").Return(nil, errors.New(errors.CodeValidation, "text must not be empty")).Once()
	a.On("Insights", mock.Anything, "boom").Return(nil, errors.Upstream(assert.AnError, "annotator failed")).Once()
	h := NewNLPHandler(a, logging.NewNopLogger())

	w := do(http.MethodPost, "/i", "/i", h.Insights, `{"text":"nothing here"}`)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"insights":[]}`, w.Body.String())

	w = do(http.MethodPost, "/i", "/i", h.Insights, `{"text":""}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = do(http.MethodPost, "/i", "/i", h.Insights, `{"text":"boom"}`)
	assert.Equal(t, http.StatusBadGateway, w.Code)
}
