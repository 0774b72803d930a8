package dashboard

import (
	"context"

	"go.uber.org/zap"

	"github.com/kailas-cloud/catalogdash/internal/domain/chart"
	"github.com/kailas-cloud/catalogdash/internal/domain/summary"
	"github.com/kailas-cloud/catalogdash/internal/logger"
	"github.com/kailas-cloud/catalogdash/internal/metrics"
)

// Dashboard is one rendered view: the summary and its chart projections.
type Dashboard struct {
	Summary summary.Summary `json:"summary"`
	Charts  chart.SeriesSet `json:"charts"`
}

// Empty returns the dashboard of an empty record set.
func Empty() Dashboard {
	s := summary.Aggregate(nil)
	return Dashboard{Summary: s, Charts: chart.FromSummary(s)}
}

// Service runs the fetch, aggregate and chart pipeline.
type Service struct {
	fetcher Fetcher
}

// New creates a dashboard service.
func New(fetcher Fetcher) *Service {
	return &Service{fetcher: fetcher}
}

// Build fetches records and reduces them into a Dashboard. A failed fetch returns the
// fetcher's error unchanged and no partial result.
func (s *Service) Build(ctx context.Context) (Dashboard, error) {
	records, err := s.fetcher.Fetch(ctx)
	if err != nil {
		return Dashboard{}, err
	}

	sum := summary.Aggregate(records)
	if n := len(sum.ShapeErrors); n > 0 {
		for _, se := range sum.ShapeErrors {
			metrics.RecordShapeErrorsTotal.WithLabelValues(se.Field).Inc()
		}
		logger.FromContext(ctx).Debug("records coerced during aggregation",
			zap.Int("shape_errors", n),
			zap.Int("records", sum.TotalProducts),
		)
	}

	return Dashboard{Summary: sum, Charts: chart.FromSummary(sum)}, nil
}
