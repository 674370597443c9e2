package risk

import (
	"context"
	"time"
)

// EventAnalysisCompleted is published after every successful analysis.
const EventAnalysisCompleted = "analysis.completed"

type AnalysisCompletedEvent struct {
	Country              string    `json:"country"`
	Tier                 int       `json:"tier"`
	RiskCluster          string    `json:"risk_cluster"`
	MarketRiskScore      float64   `json:"market_risk_score"`
	PredictedCostSavings string    `json:"predicted_cost_savings"`
	AnalyzedAt           time.Time `json:"analyzed_at"`
}

// EventPublisher emits audit events without blocking on the broker.
type EventPublisher interface {
	Publish(ctx context.Context, eventType string, payload interface{}) error
}
