package risk

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/suite"

	apperrors "github.com/turtacn/EcoExpand-AI/pkg/errors"
)

type PipelineTestSuite struct {
	suite.Suite
	rows     []IndicatorRow
	pipeline *Pipeline
}

func (s *PipelineTestSuite) SetupSuite() {
	rows, _, err := ReadTable(strings.NewReader(sampleCSV))
	s.Require().NoError(err)
	s.rows = rows

	p, err := NewPipeline(rows, DefaultOptions(), nil)
	s.Require().NoError(err)
	s.pipeline = p
}

func (s *PipelineTestSuite) TestAnalyze_KnownCountry() {
	a, err := s.pipeline.Analyze("India")
	s.Require().NoError(err)

	s.Equal("India", a.Country)
	s.Regexp(`^Cluster [0-2] \((Low|Medium|High) Risk\)$`, a.RiskCluster)
	s.Regexp(`^\$\d{1,3}(,\d{3})*\.\d{2}$`, a.PredictedCostSavings)
	s.Equal(FormatCurrency(a.PredictedCostSaving), a.PredictedCostSavings)
	s.InDelta(0.74, a.MarketRiskScore, 1e-9)
	s.Equal(TierLabel(a.Tier, 3), a.TierLabel)
}

func (s *PipelineTestSuite) TestAnalyze_UnknownCountry() {
	for _, name := range []string{"Atlantis", "india", " India", ""} {
		_, err := s.pipeline.Analyze(name)
		s.Require().Error(err, name)
		s.True(apperrors.IsNotFound(err), name)
		s.Contains(err.Error(), "No data available for "+name)
	}
}

func (s *PipelineTestSuite) TestCountries_DistinctInTableOrder() {
	countries := s.pipeline.Countries()
	s.Equal([]string{"India", "Germany", "Brazil", "Nigeria", "Vietnam", "Kenya", "Japan", "Mexico", "Egypt"}, countries)

	countries[0] = "mutated"
	s.Equal("India", s.pipeline.Countries()[0])
}

func (s *PipelineTestSuite) TestTiersFollowScores() {
	var prev *Analysis
	for _, name := range s.orderedByScore() {
		a, err := s.pipeline.Analyze(name)
		s.Require().NoError(err)
		if prev != nil {
			s.LessOrEqual(prev.Tier, a.Tier, "%s vs %s", prev.Country, a.Country)
		}
		prev = a
	}

	low, err := s.pipeline.Analyze("Nigeria")
	s.Require().NoError(err)
	s.Equal(LabelLow, low.TierLabel)
	high, err := s.pipeline.Analyze("Germany")
	s.Require().NoError(err)
	s.Equal(LabelHigh, high.TierLabel)
}

func (s *PipelineTestSuite) TestRefitIsDeterministic() {
	again, err := NewPipeline(s.rows, DefaultOptions(), nil)
	s.Require().NoError(err)

	for _, name := range s.pipeline.Countries() {
		a, err := s.pipeline.Analyze(name)
		s.Require().NoError(err)
		b, err := again.Analyze(name)
		s.Require().NoError(err)
		s.Equal(a.RiskCluster, b.RiskCluster)
		s.Equal(a.PredictedCostSavings, b.PredictedCostSavings)
	}
	s.Equal(s.pipeline.FeatureImportance(), again.FeatureImportance())
}

func (s *PipelineTestSuite) TestFeatureImportance() {
	imp := s.pipeline.FeatureImportance()
	s.Require().Len(imp, len(FeatureNames))

	total := 0.0
	names := map[string]bool{}
	for _, w := range imp {
		total += w.Importance
		names[w.Feature] = true
	}
	s.InDelta(1.0, total, 1e-6)
	for _, f := range FeatureNames {
		s.True(names[f], f)
	}
}

func (s *PipelineTestSuite) TestSummary() {
	sum := s.pipeline.Summary()
	s.Equal(10, sum.Rows)
	s.Equal(9, sum.Countries)
	s.Require().Len(sum.Tiers, 3)
	s.Equal(LabelLow, sum.Tiers[0].Label)
	s.Equal(LabelMedium, sum.Tiers[1].Label)
	s.Equal(LabelHigh, sum.Tiers[2].Label)

	size := 0
	for i, t := range sum.Tiers {
		size += t.Size
		if i > 0 {
			s.Less(sum.Tiers[i-1].Centroid, t.Centroid)
		}
	}
	s.Equal(10, size)
	s.Equal(8, sum.Evaluation.TrainSize)
	s.Equal(2, sum.Evaluation.TestSize)
}

func (s *PipelineTestSuite) TestNewPipeline_Empty() {
	_, err := NewPipeline(nil, DefaultOptions(), nil)
	s.True(apperrors.IsIngestion(err))
}

func (s *PipelineTestSuite) orderedByScore() []string {
	names := s.pipeline.Countries()
	score := func(n string) float64 {
		a, _ := s.pipeline.Analyze(n)
		return a.MarketRiskScore
	}
	for i := 1; i < len(names); i++ {
		for j := i; j > 0 && score(names[j-1]) > score(names[j]); j-- {
			names[j-1], names[j] = names[j], names[j-1]
		}
	}
	return names
}

func TestPipelineTestSuite(t *testing.T) {
	suite.Run(t, new(PipelineTestSuite))
}

func TestTierLabel(t *testing.T) {
	cases := []struct {
		tier, k int
		want    string
	}{
		{0, 1, LabelMedium},
		{0, 2, LabelLow},
		{1, 2, LabelHigh},
		{0, 3, LabelLow},
		{1, 3, LabelMedium},
		{2, 3, LabelHigh},
		{2, 5, LabelMedium},
		{4, 5, LabelHigh},
	}
	for _, tc := range cases {
		if got := TierLabel(tc.tier, tc.k); got != tc.want {
			t.Errorf("TierLabel(%d, %d) = %q, want %q", tc.tier, tc.k, got, tc.want)
		}
	}
}
