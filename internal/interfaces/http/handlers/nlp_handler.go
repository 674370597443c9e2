package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/turtacn/EcoExpand-AI/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/EcoExpand-AI/internal/intelligence/nlp"
)

// TextAnalyzer extracts phrases, summaries and insights from free text.
type TextAnalyzer interface {
	KeyPhrases(ctx context.Context, text string) ([]nlp.Phrase, error)
	Summarize(ctx context.Context, text string) (string, error)
	Insights(ctx context.Context, text string) ([]nlp.Insight, error)
}

// NLPHandler serves the text analysis endpoints.
type NLPHandler struct {
	analyzer TextAnalyzer
	logger   logging.Logger
}

// NewNLPHandler creates a new NLPHandler.
func NewNLPHandler(analyzer TextAnalyzer, logger logging.Logger) *NLPHandler {
	return &NLPHandler{analyzer: analyzer, logger: logger}
}

// KeyPhrases handles POST /api/v1/extract-key-phrases.
func (h *NLPHandler) KeyPhrases(c *gin.Context) {
	var in TextInput
	if !bindJSON(c, h.logger, &in) {
		return
	}
	phrases, err := h.analyzer.KeyPhrases(c.Request.Context(), in.Text)
	if err != nil {
		writeAppError(c, h.logger, err)
		return
	}
	if phrases == nil {
		phrases = []nlp.Phrase{}
	}
	writeJSON(c, http.StatusOK, KeyPhrasesResponse{KeyPhrases: phrases})
}

// Summarize handles POST /api/v1/summarize-text.
func (h *NLPHandler) Summarize(c *gin.Context) {
	var in TextInput
	if !bindJSON(c, h.logger, &in) {
		return
	}
	summary, err := h.analyzer.Summarize(c.Request.Context(), in.Text)
	if err != nil {
		writeAppError(c, h.logger, err)
		return
	}
	writeJSON(c, http.StatusOK, SummaryResponse{Summary: summary})
}

// Insights handles POST /api/v1/extract-insights.
func (h *NLPHandler) Insights(c *gin.Context) {
	var in TextInput
	if !bindJSON(c, h.logger, &in) {
		return
	}
	insights, err := h.analyzer.Insights(c.Request.Context(), in.Text)
	if err != nil {
		writeAppError(c, h.logger, err)
		return
	}
	if insights == nil {
		insights = []nlp.Insight{}
	}
	writeJSON(c, http.StatusOK, InsightsResponse{Insights: insights})
}
