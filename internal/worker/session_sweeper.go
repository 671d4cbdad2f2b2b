package worker

import (
	"context"
	"time"

	"go.uber.org/zap"
)

// Sweeper evicts stores idle for longer than a cutoff and reports how many it dropped.
type Sweeper interface {
	Sweep(idle time.Duration) int
}

// StartSessionSweeper evicts idle client stores every interval until ctx is
// done. The returned channel closes when the loop exits.
func StartSessionSweeper(ctx context.Context, sweeper Sweeper, interval, idle time.Duration, logger *zap.Logger) <-chan struct{} {
	done := make(chan struct{})
	if sweeper == nil || interval <= 0 {
		close(done)
		return done
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	go func() {
		defer close(done)
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if n := sweeper.Sweep(idle); n > 0 {
					logger.Debug("idle sessions evicted", zap.Int("count", n))
				}
			}
		}
	}()
	return done
}
