package engine

import (
	"context"
	"log/slog"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/semaphore"

	"github.com/pznebula/valuator/valuator/catalog"
)

// Scheduler runs the calibrator across all games on a fixed interval.
type Scheduler struct {
	calibrator *Calibrator
	cat        *catalog.Catalog
	interval   time.Duration
	sem        *semaphore.Weighted
	running    atomic.Bool
}

func NewScheduler(calibrator *Calibrator, cat *catalog.Catalog, interval time.Duration, maxConcurrent int64) *Scheduler {
	if maxConcurrent < 1 {
		maxConcurrent = 1
	}
	return &Scheduler{
		calibrator: calibrator,
		cat:        cat,
		interval:   interval,
		sem:        semaphore.NewWeighted(maxConcurrent),
	}
}

// Start launches the background calibration loop. It returns immediately and
// stops when the context is cancelled.
func (s *Scheduler) Start(ctx context.Context) {
	go func() {
		ticker := time.NewTicker(s.interval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if err := s.CalibrateAll(ctx); err != nil {
					slog.Error("Scheduled calibration failed",
						slog.String("type", "val"),
						slog.Any("error", err))
				}
			}
		}
	}()
}

// CalibrateAll runs one calibration pass over every known game. Overlapping
// passes are skipped rather than queued; a slow pass must not stack.
func (s *Scheduler) CalibrateAll(ctx context.Context) error {
	if !s.running.CompareAndSwap(false, true) {
		slog.Warn("Calibration pass already running, skipping",
			slog.String("type", "val"))
		return nil
	}
	defer s.running.Store(false)

	start := time.Now()
	g, gctx := errgroup.WithContext(ctx)

	for _, game := range s.cat.Games() {
		game := game
		g.Go(func() error {
			if err := s.sem.Acquire(gctx, 1); err != nil {
				return err
			}
			defer s.sem.Release(1)

			if _, _, err := s.calibrator.Calibrate(gctx, game); err != nil {
				slog.Error("Game calibration failed",
					slog.String("type", "val"),
					slog.String("game", game),
					slog.Any("error", err))
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return err
	}

	slog.Info("Calibration pass completed",
		slog.String("type", "val"),
		slog.Duration("took", time.Since(start)))
	return nil
}
