package risk

import (
	"context"
	"time"

	"github.com/turtacn/EcoExpand-AI/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/EcoExpand-AI/internal/infrastructure/monitoring/prometheus"
	apperrors "github.com/turtacn/EcoExpand-AI/pkg/errors"
)

// Service answers risk queries from a fitted Pipeline and reports each
// analysis to metrics and the audit stream.
type Service struct {
	pipeline *Pipeline
	events   EventPublisher
	logger   logging.Logger
	metrics  *prometheus.AppMetrics
	now      func() time.Time
}

type ServiceOption func(*Service)

func WithEvents(p EventPublisher) ServiceOption {
	return func(s *Service) { s.events = p }
}

func WithMetrics(m *prometheus.AppMetrics) ServiceOption {
	return func(s *Service) { s.metrics = m }
}

// NewService wraps p. It records the fit statistics once.
func NewService(p *Pipeline, logger logging.Logger, opts ...ServiceOption) *Service {
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	s := &Service{pipeline: p, logger: logger, now: time.Now}
	for _, opt := range opts {
		opt(s)
	}
	sum := p.Summary()
	prometheus.RecordPipelineFit(s.metrics, sum.Rows, sum.Evaluation.RMSE, sum.FitDuration)
	return s
}

// Analyze returns the tier and predicted saving for country.
func (s *Service) Analyze(ctx context.Context, country string) (*Analysis, error) {
	start := s.now()
	a, err := s.pipeline.Analyze(country)
	if err != nil {
		outcome := "error"
		if apperrors.IsNotFound(err) {
			outcome = "not_found"
		}
		prometheus.RecordRiskAnalysis(s.metrics, "", outcome, time.Since(start))
		return nil, err
	}
	prometheus.RecordRiskAnalysis(s.metrics, a.TierLabel, "ok", time.Since(start))

	if s.events != nil {
		ev := AnalysisCompletedEvent{
			Country:              a.Country,
			Tier:                 a.Tier,
			RiskCluster:          a.RiskCluster,
			MarketRiskScore:      a.MarketRiskScore,
			PredictedCostSavings: a.PredictedCostSavings,
			AnalyzedAt:           s.now().UTC(),
		}
		if err := s.events.Publish(ctx, EventAnalysisCompleted, ev); err != nil {
			s.logger.Warn("analysis event not published", logging.String("country", country), logging.Err(err))
		}
	}
	return a, nil
}

func (s *Service) Countries() []string { return s.pipeline.Countries() }

func (s *Service) FeatureImportance() []FeatureWeight { return s.pipeline.FeatureImportance() }

func (s *Service) Summary() Summary { return s.pipeline.Summary() }
