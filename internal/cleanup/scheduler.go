package cleanup

import (
	"context"
	"time"

	"go.uber.org/zap"
)

type Scheduler struct {
	cleanup  *CleanupService
	interval time.Duration
	log      *zap.Logger
}

func NewScheduler(cleanup *CleanupService, interval time.Duration, log *zap.Logger) *Scheduler {
	if interval <= 0 {
		interval = time.Hour
	}
	return &Scheduler{
		cleanup:  cleanup,
		interval: interval,
		log:      log,
	}
}

// Run blocks until ctx is done, cleaning up once at start and then every
// interval.
func (s *Scheduler) Run(ctx context.Context) error {
	s.log.Info("starting cleanup scheduler", zap.Duration("interval", s.interval))

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	if err := s.RunOnceNow(ctx); err != nil {
		s.log.Error("initial cleanup failed", zap.Error(err))
	}

	for {
		select {
		case <-ticker.C:
			if err := s.RunOnceNow(ctx); err != nil {
				s.log.Error("cleanup failed", zap.Error(err))
			}
		case <-ctx.Done():
			s.log.Info("cleanup scheduler stopped")
			return nil
		}
	}
}

// RunOnceNow runs a full cleanup immediately.
func (s *Scheduler) RunOnceNow(ctx context.Context) error {
	return s.cleanup.RunFullCleanup(ctx)
}
