package jobs

import (
	"context"
	"log/slog"
	"time"

	"linkeats/console/internal/config"
)

// Sweeper drops idle state as of now and reports how much it removed.
type Sweeper interface {
	Sweep(now time.Time) int
}

func StartRecoverySweepJob(ctx context.Context, cfg config.Config, flows Sweeper) {
	if flows == nil {
		slog.Info("recovery sweep job disabled: no flow registry")
		return
	}
	interval := cfg.RecoverySweepInterval
	if interval <= 0 {
		interval = time.Minute
	}

	ticker := time.NewTicker(interval)
	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if n := flows.Sweep(time.Now()); n > 0 {
					slog.Info("recovery sweep job removed idle flows", slog.Int("count", n))
				}
			}
		}
	}()
}
