package client

// MessageResponse acknowledges a request.
type MessageResponse struct {
	Message string `json:"message"`
}

// RiskResult is the analysis of one country.
type RiskResult struct {
	Country              string `json:"country"`
	RiskCluster          string `json:"risk_cluster"`
	PredictedCostSavings string `json:"predicted_cost_savings"`
}

// FeatureImportance is one regressor input and its weight.
type FeatureImportance struct {
	Feature    string  `json:"feature"`
	Importance float64 `json:"importance"`
}

// Tier describes one fitted risk tier.
type Tier struct {
	Tier     int     `json:"tier"`
	Label    string  `json:"label"`
	Centroid float64 `json:"centroid"`
	Size     int     `json:"size"`
}

// RiskSummary describes the server's fitted pipeline.
type RiskSummary struct {
	Rows       int     `json:"rows"`
	Countries  int     `json:"countries"`
	Tiers      []Tier  `json:"tiers"`
	Iterations int     `json:"iterations"`
	Converged  bool    `json:"converged"`
	TrainSize  int     `json:"train_size"`
	TestSize   int     `json:"test_size"`
	RMSE       float64 `json:"rmse"`
	R2         float64 `json:"r2"`
	FitMillis  int64   `json:"fit_ms"`
}

// Phrase is a key phrase and its frequency.
type Phrase struct {
	Phrase string `json:"phrase"`
	Count  int    `json:"count"`
}

// Insight is a named entity found in text.
type Insight struct {
	Text string `json:"text"`
	Type string `json:"type"`
}

// Entity is a knowledge graph node.
type Entity struct {
	Name string `json:"name"`
	Type string `json:"type"`
}

// Relation is a directed, labelled knowledge graph edge.
type Relation struct {
	Source   string `json:"source"`
	Target   string `json:"target"`
	Relation string `json:"relation"`
}

// Graph is the full knowledge graph.
type Graph struct {
	Nodes []Entity   `json:"nodes"`
	Edges []Relation `json:"edges"`
}

// GraphData is a bulk upload payload.
type GraphData struct {
	Entities  []Entity   `json:"entities"`
	Relations []Relation `json:"relations"`
}

// GraphImage is a rendered graph. SnapshotKey is set when the server stored
// a copy.
type GraphImage struct {
	Data        []byte
	ContentType string
	SnapshotKey string
}
