// internal/poller/runner.go
package poller

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"

	"github.com/tamzrod/cnc-poller/internal/clock"
	"github.com/tamzrod/cnc-poller/internal/metrics"
)

// CycleFunc runs one cycle. A returned error stops the scheduler.
type CycleFunc func(ctx context.Context) error

// Scheduler drives cycles at a fixed start-to-start period.
type Scheduler struct {
	interval time.Duration
	clock    clock.Clock
	log      zerolog.Logger
	metrics  *metrics.Metrics
}

func NewScheduler(interval time.Duration, clk clock.Clock, log zerolog.Logger, m *metrics.Metrics) (*Scheduler, error) {
	if interval <= 0 {
		return nil, errors.New("poller: interval must be > 0")
	}
	if clk == nil {
		clk = clock.Real()
	}
	return &Scheduler{interval: interval, clock: clk, log: log, metrics: m}, nil
}

// Run loops until ctx is cancelled (returns nil) or a cycle fails
// (returns that error). Cycles never overlap. After an overrun the next
// cycle starts immediately; lost time is never made up.
func (s *Scheduler) Run(ctx context.Context, cycle CycleFunc) error {
	for {
		if ctx.Err() != nil {
			return nil
		}

		start := s.clock.Now()
		if err := cycle(ctx); err != nil {
			return err
		}
		elapsed := s.clock.Now().Sub(start)

		wait := s.interval - elapsed
		if wait <= 0 {
			s.metrics.Overrun()
			s.log.Debug().
				Dur("elapsed", elapsed).
				Dur("interval", s.interval).
				Msg("cycle overran interval")
			continue
		}

		select {
		case <-ctx.Done():
			return nil
		case <-s.clock.After(wait):
		}
	}
}
