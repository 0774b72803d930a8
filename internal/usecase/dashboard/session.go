package dashboard

import (
	"context"
	"errors"
	"sync"

	"go.uber.org/zap"

	"github.com/kailas-cloud/catalogdash/internal/domain"
	"github.com/kailas-cloud/catalogdash/internal/logger"
)

// Session holds the state of one dashboard view. Refreshes are last-started-wins:
// starting a refresh cancels the one in flight, and a run never overwrites a result
// published by a newer run.
type Session struct {
	builder Builder

	mu        sync.Mutex
	gen       uint64
	published uint64
	cancel    context.CancelFunc
	latest    Dashboard
}

// NewSession creates a session whose Latest is the empty dashboard.
func NewSession(builder Builder) *Session {
	return &Session{builder: builder, latest: Empty()}
}

// Refresh builds a new dashboard and publishes it unless a newer refresh already has.
// A run that lost to a newer one returns domain.ErrSuperseded.
func (s *Session) Refresh(ctx context.Context) (Dashboard, error) {
	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	s.mu.Lock()
	if s.cancel != nil {
		s.cancel()
	}
	s.gen++
	gen := s.gen
	s.cancel = cancel
	s.mu.Unlock()

	d, err := s.builder.Build(logger.With(runCtx, zap.Uint64("generation", gen)))

	s.mu.Lock()
	defer s.mu.Unlock()

	if gen == s.gen {
		s.cancel = nil
	}
	newer := gen != s.gen

	if err != nil {
		if newer && errors.Is(runCtx.Err(), context.Canceled) && ctx.Err() == nil {
			return Dashboard{}, domain.ErrSuperseded
		}
		return Dashboard{}, err
	}
	if gen < s.published {
		return Dashboard{}, domain.ErrSuperseded
	}

	s.published = gen
	s.latest = d
	return d, nil
}

// Latest returns the most recently published dashboard.
func (s *Session) Latest() Dashboard {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.latest
}
