// Package sweeper runs the request archive sweep on a fixed interval.
package sweeper

import (
	"context"
	"log/slog"
	"time"

	"github.com/erazemk/inventar/internal/metrics"
	"github.com/erazemk/inventar/internal/service"
)

// Archiver performs one sweep.
type Archiver interface {
	Sweep(ctx context.Context) (service.SweepResult, error)
}

// Sweeper calls an Archiver once at start and then every Interval.
type Sweeper struct {
	Archiver Archiver
	Interval time.Duration
	Logger   *slog.Logger
}

// Run sweeps until ctx is cancelled. Failures are logged and never stop the
// loop.
func (s *Sweeper) Run(ctx context.Context) {
	log := s.Logger
	if log == nil {
		log = slog.Default()
	}
	log.Info("archive sweeper started", "interval", s.Interval)

	s.sweep(ctx, log)

	ticker := time.NewTicker(s.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			log.Info("archive sweeper stopped")
			return
		case <-ticker.C:
			s.sweep(ctx, log)
		}
	}
}

func (s *Sweeper) sweep(ctx context.Context, log *slog.Logger) {
	defer func() {
		if p := recover(); p != nil {
			log.Error("archive sweep panicked", "panic", p)
		}
	}()

	start := time.Now()
	res, err := s.Archiver.Sweep(ctx)
	metrics.SweepDuration.Observe(time.Since(start).Seconds())
	metrics.SweepArchived.Add(float64(res.Archived))
	metrics.SweepFailures.Add(float64(res.Failed))

	if err != nil {
		if ctx.Err() == nil {
			log.Error("archive sweep failed", "error", err)
		}
		return
	}
	if res.Candidates > 0 || res.Failed > 0 {
		log.Info("archive sweep finished",
			"candidates", res.Candidates, "archived", res.Archived, "failed", res.Failed,
			"duration", time.Since(start))
	} else {
		log.Debug("archive sweep found nothing to archive")
	}
}
