package health

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/catalogdash/internal/metrics"
	"github.com/kailas-cloud/catalogdash/internal/search"
)

// DefaultTimeout bounds a probe when no timeout is configured.
const DefaultTimeout = 5 * time.Second

// State is the normalized backend health.
type State string

const (
	// Healthy indicates the backend reports green.
	Healthy State = "healthy"
	// Degraded indicates the backend reports yellow.
	Degraded State = "degraded"
	// Unreachable covers red, unknown values and every transport failure.
	Unreachable State = "unreachable"
)

// Status is the result of one probe. RawBackendStatus is nil whenever the backend
// value could not be obtained or parsed.
type Status struct {
	State            State
	RawBackendStatus *string
}

// Service bridges backend cluster health into Status without ever failing.
type Service struct {
	reporter ClusterReporter
	timeout  time.Duration
	logger   *zap.Logger
}

// New creates a Service. timeout <= 0 selects DefaultTimeout.
func New(reporter ClusterReporter, timeout time.Duration, logger *zap.Logger) *Service {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{reporter: reporter, timeout: timeout, logger: logger}
}

// Timeout returns the configured probe bound.
func (s *Service) Timeout() time.Duration { return s.timeout }

type probeResult struct {
	status string
	err    error
}

// Probe asks the backend for its health and normalizes the answer. It returns within
// the configured timeout even if the reporter ignores its context.
func (s *Service) Probe(ctx context.Context) Status {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	done := make(chan probeResult, 1)
	go func() {
		defer func() {
			if rvr := recover(); rvr != nil {
				done <- probeResult{err: fmt.Errorf("health reporter panic: %v", rvr)}
			}
		}()
		raw, err := s.reporter.ClusterHealth(ctx)
		done <- probeResult{status: raw, err: err}
	}()

	var res probeResult
	select {
	case res = <-done:
	case <-ctx.Done():
		res = probeResult{err: fmt.Errorf("health probe: %w", ctx.Err())}
	}

	st := s.normalize(res)
	metrics.HealthProbesTotal.WithLabelValues(string(st.State)).Inc()
	return st
}

func (s *Service) normalize(res probeResult) Status {
	if res.err != nil {
		s.logger.Warn("health probe failed", zap.Error(res.err))
		return Status{State: Unreachable}
	}

	raw := res.status
	switch raw {
	case search.HealthGreen:
		return Status{State: Healthy, RawBackendStatus: &raw}
	case search.HealthYellow:
		return Status{State: Degraded, RawBackendStatus: &raw}
	case search.HealthRed:
		return Status{State: Unreachable, RawBackendStatus: &raw}
	default:
		s.logger.Warn("unrecognized backend health status", zap.Int("length", len(raw)))
		return Status{State: Unreachable}
	}
}
