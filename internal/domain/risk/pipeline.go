package risk

import (
	"fmt"
	"time"

	"github.com/turtacn/EcoExpand-AI/internal/infrastructure/monitoring/logging"
	apperrors "github.com/turtacn/EcoExpand-AI/pkg/errors"
)

// Tier labels.
const (
	LabelLow    = "Low"
	LabelMedium = "Medium"
	LabelHigh   = "High"
)

// Options configures NewPipeline.
type Options struct {
	Clusters      int
	Seed          int64
	MaxIterations int
	Forest        ForestConfig
}

// DefaultOptions returns three tiers, seed 42 and a 100-tree forest on an
// 80/20 split.
func DefaultOptions() Options {
	return Options{
		Clusters:      3,
		Seed:          42,
		MaxIterations: DefaultMaxIterations,
		Forest: ForestConfig{
			NumTrees:       DefaultNumTrees,
			TestRatio:      DefaultTestRatio,
			MinSamplesLeaf: 1,
			Seed:           42,
		},
	}
}

// Analysis is the answer to a single country query.
type Analysis struct {
	Country              string
	Tier                 int
	TierLabel            string
	RiskCluster          string
	MarketRiskScore      float64
	PredictedCostSaving  float64
	PredictedCostSavings string
}

// TierSummary describes one fitted tier.
type TierSummary struct {
	Tier     int
	Label    string
	Centroid float64
	Size     int
}

// Summary describes the fitted pipeline.
type Summary struct {
	Rows        int
	Countries   int
	Tiers       []TierSummary
	Iterations  int
	Converged   bool
	Evaluation  Evaluation
	FitDuration time.Duration
}

// Pipeline holds the indicator table and the models fitted from it. It is
// built once by NewPipeline and never mutated, so any number of goroutines may
// query it without locking.
type Pipeline struct {
	rows       []IndicatorRow
	index      map[string]int
	countries  []string
	clustering *Clustering
	forest     *Forest
	fitTime    time.Duration
}

// NewPipeline tiers rows by market risk score and fits the cost-saving
// forest.
func NewPipeline(rows []IndicatorRow, opts Options, logger logging.Logger) (*Pipeline, error) {
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	if len(rows) == 0 {
		return nil, apperrors.Ingestion(nil, "no indicator rows to fit")
	}
	start := time.Now()

	p := &Pipeline{
		rows:  append([]IndicatorRow(nil), rows...),
		index: make(map[string]int, len(rows)),
	}
	scores := make([]float64, len(rows))
	x := make([][]float64, len(rows))
	y := make([]float64, len(rows))
	for i, r := range p.rows {
		if _, seen := p.index[r.Country]; !seen {
			p.index[r.Country] = i
			p.countries = append(p.countries, r.Country)
		}
		scores[i] = r.MarketRiskScore
		x[i] = r.Features()
		y[i] = r.CostSaving
	}

	clustering, err := FitClusters(scores, ClusterConfig{
		K:             opts.Clusters,
		Seed:          opts.Seed,
		MaxIterations: opts.MaxIterations,
	})
	if err != nil {
		return nil, err
	}
	if !clustering.Converged {
		logger.Warn("risk tiering hit the iteration limit", logging.Int("iterations", clustering.Iterations))
	}
	p.clustering = clustering

	forest, err := FitForest(x, y, FeatureNames, opts.Forest)
	if err != nil {
		return nil, err
	}
	p.forest = forest
	p.fitTime = time.Since(start)

	ev := forest.Evaluation()
	logger.Info("risk pipeline fitted",
		logging.Int("rows", len(p.rows)),
		logging.Int("countries", len(p.countries)),
		logging.Int("tiers", clustering.K()),
		logging.Int("iterations", clustering.Iterations),
		logging.Int("trees", forest.NumTrees()),
		logging.Int("holdout", ev.TestSize),
		logging.Float64("holdout_rmse", ev.RMSE),
		logging.Float64("holdout_r2", ev.R2),
		logging.Duration("elapsed", p.fitTime),
	)
	return p, nil
}

// Analyze returns the tier and predicted cost saving for country. The name
// must match the table exactly.
func (p *Pipeline) Analyze(country string) (*Analysis, error) {
	i, ok := p.index[country]
	if !ok {
		return nil, apperrors.NotFound("No data available for " + country)
	}
	row := p.rows[i]
	tier := p.clustering.Assignments[i]
	label := TierLabel(tier, p.clustering.K())
	predicted := p.forest.Predict(row.Features())

	return &Analysis{
		Country:              row.Country,
		Tier:                 tier,
		TierLabel:            label,
		RiskCluster:          fmt.Sprintf("Cluster %d (%s Risk)", tier, label),
		MarketRiskScore:      row.MarketRiskScore,
		PredictedCostSaving:  predicted,
		PredictedCostSavings: FormatCurrency(predicted),
	}, nil
}

// Countries returns the distinct country names in table order.
func (p *Pipeline) Countries() []string {
	return append([]string(nil), p.countries...)
}

// FeatureImportance returns the forest's normalized importance, highest first.
func (p *Pipeline) FeatureImportance() []FeatureWeight {
	return p.forest.FeatureImportance()
}

// Rows returns a copy of the ingested table.
func (p *Pipeline) Rows() []IndicatorRow {
	return append([]IndicatorRow(nil), p.rows...)
}

// Summary reports the fitted state.
func (p *Pipeline) Summary() Summary {
	sizes := p.clustering.Sizes()
	tiers := make([]TierSummary, p.clustering.K())
	for t, c := range p.clustering.Centroids {
		tiers[t] = TierSummary{Tier: t, Label: TierLabel(t, p.clustering.K()), Centroid: c, Size: sizes[t]}
	}
	return Summary{
		Rows:        len(p.rows),
		Countries:   len(p.countries),
		Tiers:       tiers,
		Iterations:  p.clustering.Iterations,
		Converged:   p.clustering.Converged,
		Evaluation:  p.forest.Evaluation(),
		FitDuration: p.fitTime,
	}
}

// TierLabel names tier among k ranked tiers: the lowest is Low, the highest
// is High and anything between is Medium. A single tier is Medium.
func TierLabel(tier, k int) string {
	switch {
	case k <= 1:
		return LabelMedium
	case tier <= 0:
		return LabelLow
	case tier >= k-1:
		return LabelHigh
	default:
		return LabelMedium
	}
}
