package handlers

import (
	"github.com/turtacn/EcoExpand-AI/internal/domain/knowledge"
	"github.com/turtacn/EcoExpand-AI/internal/intelligence/nlp"
)

// CountryRequest selects one country for analysis.
type CountryRequest struct {
	Country string `json:"country"`
}

// RiskResponse is the analysis of one country.
type RiskResponse struct {
	Country              string `json:"country"`
	RiskCluster          string `json:"risk_cluster"`
	PredictedCostSavings string `json:"predicted_cost_savings"`
}

// CountriesResponse lists the analysable countries.
type CountriesResponse struct {
	Countries []string `json:"countries"`
}

// FeatureImportanceItem is one regressor input and its weight.
type FeatureImportanceItem struct {
	Feature    string  `json:"feature"`
	Importance float64 `json:"importance"`
}

// FeatureImportanceResponse is sorted by descending importance.
type FeatureImportanceResponse struct {
	FeatureImportance []FeatureImportanceItem `json:"feature_importance"`
}

// TierSummaryItem describes one fitted risk tier.
type TierSummaryItem struct {
	Tier     int     `json:"tier"`
	Label    string  `json:"label"`
	Centroid float64 `json:"centroid"`
	Size     int     `json:"size"`
}

// RiskSummaryResponse describes the fitted pipeline.
type RiskSummaryResponse struct {
	Rows       int               `json:"rows"`
	Countries  int               `json:"countries"`
	Tiers      []TierSummaryItem `json:"tiers"`
	Iterations int               `json:"iterations"`
	Converged  bool              `json:"converged"`
	TrainSize  int               `json:"train_size"`
	TestSize   int               `json:"test_size"`
	RMSE       float64           `json:"rmse"`
	R2         float64           `json:"r2"`
	FitMillis  int64             `json:"fit_ms"`
}

// ChatRequest is a user question with optional grounding context.
type ChatRequest struct {
	UserQuery string `json:"user_query"`
	Context   string `json:"context,omitempty"`
}

// ChatResponse carries the assistant's reply.
type ChatResponse struct {
	Response string `json:"response"`
}

// TextInput is the body of every text analysis endpoint.
type TextInput struct {
	Text string `json:"text"`
}

// KeyPhrasesResponse lists the most frequent key phrases.
type KeyPhrasesResponse struct {
	KeyPhrases []nlp.Phrase `json:"key_phrases"`
}

// SummaryResponse is an extractive summary.
type SummaryResponse struct {
	Summary string `json:"summary"`
}

// InsightsResponse lists the entities kept by the insight filter.
type InsightsResponse struct {
	Insights []nlp.Insight `json:"insights"`
}

// GraphResponse is the full knowledge graph.
type GraphResponse struct {
	Nodes []knowledge.Entity   `json:"nodes"`
	Edges []knowledge.Relation `json:"edges"`
}
