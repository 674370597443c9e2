// Package risk implements the country risk scoring pipeline: indicator
// ingestion, 1-D k-means risk tiering and a random-forest cost-saving
// estimator, bundled behind an immutable Pipeline.
package risk

// Column names of the indicator table.
const (
	ColCountry            = "Country"
	ColPoliticalStability = "Political_Stability"
	ColEconomicStability  = "Economic_Stability"
	ColExportIncentives   = "Export_Incentives"
	ColDutyDrawback       = "Duty_Drawback"
	ColTradeAgreements    = "Trade_Agreements"
	ColCostSaving         = "Cost_Saving"
	ColMarketRiskScore    = "Market_Risk_Score"
)

// Weights of the composite market risk score.
const (
	PoliticalWeight = 0.4
	EconomicWeight  = 0.6
)

// RequiredColumns lists the header fields every table must carry.
var RequiredColumns = []string{
	ColCountry,
	ColPoliticalStability,
	ColEconomicStability,
	ColExportIncentives,
	ColDutyDrawback,
	ColTradeAgreements,
	ColCostSaving,
}

// FeatureNames are the regressor inputs, in the order Features returns them.
var FeatureNames = []string{
	ColExportIncentives,
	ColDutyDrawback,
	ColTradeAgreements,
	ColMarketRiskScore,
}

// IndicatorRow is one country's indicators after ingestion.
type IndicatorRow struct {
	Country            string
	PoliticalStability float64
	EconomicStability  float64
	ExportIncentives   float64
	DutyDrawback       float64
	TradeAgreements    float64
	CostSaving         float64
	MarketRiskScore    float64
}

// MarketRiskScore blends political and economic stability.
func MarketRiskScore(political, economic float64) float64 {
	return PoliticalWeight*political + EconomicWeight*economic
}

// Features returns the regressor input vector in FeatureNames order.
func (r IndicatorRow) Features() []float64 {
	return []float64{r.ExportIncentives, r.DutyDrawback, r.TradeAgreements, r.MarketRiskScore}
}
