package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/turtacn/EcoExpand-AI/internal/domain/risk"
	"github.com/turtacn/EcoExpand-AI/internal/infrastructure/monitoring/logging"
)

// RiskService is the part of risk.Service the handler needs.
type RiskService interface {
	Analyze(ctx context.Context, country string) (*risk.Analysis, error)
	Countries() []string
	FeatureImportance() []risk.FeatureWeight
	Summary() risk.Summary
}

// RiskHandler serves the country risk endpoints.
type RiskHandler struct {
	svc    RiskService
	logger logging.Logger
}

// NewRiskHandler creates a new RiskHandler.
func NewRiskHandler(svc RiskService, logger logging.Logger) *RiskHandler {
	return &RiskHandler{svc: svc, logger: logger}
}

// Analyze handles POST /api/v1/analyze.
func (h *RiskHandler) Analyze(c *gin.Context) {
	var req CountryRequest
	if !bindJSON(c, h.logger, &req) {
		return
	}
	a, err := h.svc.Analyze(c.Request.Context(), req.Country)
	if err != nil {
		writeAppError(c, h.logger, err)
		return
	}
	writeJSON(c, http.StatusOK, RiskResponse{
		Country:              a.Country,
		RiskCluster:          a.RiskCluster,
		PredictedCostSavings: a.PredictedCostSavings,
	})
}

// Countries handles GET /api/v1/countries.
func (h *RiskHandler) Countries(c *gin.Context) {
	countries := h.svc.Countries()
	if countries == nil {
		countries = []string{}
	}
	writeJSON(c, http.StatusOK, CountriesResponse{Countries: countries})
}

// FeatureImportance handles GET /api/v1/feature-importance.
func (h *RiskHandler) FeatureImportance(c *gin.Context) {
	weights := h.svc.FeatureImportance()
	items := make([]FeatureImportanceItem, 0, len(weights))
	for _, w := range weights {
		items = append(items, FeatureImportanceItem{Feature: w.Feature, Importance: w.Importance})
	}
	writeJSON(c, http.StatusOK, FeatureImportanceResponse{FeatureImportance: items})
}

// Summary handles GET /api/v1/risk/summary.
func (h *RiskHandler) Summary(c *gin.Context) {
	s := h.svc.Summary()
	tiers := make([]TierSummaryItem, 0, len(s.Tiers))
	for _, t := range s.Tiers {
		tiers = append(tiers, TierSummaryItem{Tier: t.Tier, Label: t.Label, Centroid: t.Centroid, Size: t.Size})
	}
	writeJSON(c, http.StatusOK, RiskSummaryResponse{
		Rows:       s.Rows,
		Countries:  s.Countries,
		Tiers:      tiers,
		Iterations: s.Iterations,
		Converged:  s.Converged,
		TrainSize:  s.Evaluation.TrainSize,
		TestSize:   s.Evaluation.TestSize,
		RMSE:       s.Evaluation.RMSE,
		R2:         s.Evaluation.R2,
		FitMillis:  s.FitDuration.Milliseconds(),
	})
}
