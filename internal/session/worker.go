package session

import (
	"context"
	"time"

	"github.com/rs/zerolog"
)

// SweepWorker periodically evicts idle sessions from the Manager.
type SweepWorker struct {
	manager  *Manager
	interval time.Duration
	logger   zerolog.Logger
}

func NewSweepWorker(manager *Manager, interval time.Duration, logger zerolog.Logger) *SweepWorker {
	if interval <= 0 {
		interval = time.Minute
	}
	return &SweepWorker{
		manager:  manager,
		interval: interval,
		logger:   logger.With().Str("component", "session_sweep_worker").Logger(),
	}
}

// Run blocks until context cancellation.
func (w *SweepWorker) Run(ctx context.Context) error {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			if n := w.manager.Sweep(); n > 0 {
				w.logger.Info().Int("evicted", n).Int("remaining", w.manager.Len()).Msg("idle sessions evicted")
			}
		}
	}
}
