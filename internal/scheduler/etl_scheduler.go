package scheduler

import (
	"context"
	"sync"

	"github.com/ikkim/retail-etl/pkg/logger"
	"github.com/robfig/cron/v3"
)

// Runner is the pipeline surface the scheduler drives.
type Runner interface {
	Run(ctx context.Context) error
}

// ETLScheduler triggers the full pipeline on a cron schedule. At most
// one run is active at a time; a tick that overlaps a running pipeline
// is skipped, not queued.
type ETLScheduler struct {
	cron   *cron.Cron
	runner Runner
	spec   string
	mu     sync.Mutex
}

func NewETLScheduler(runner Runner, spec string) *ETLScheduler {
	return &ETLScheduler{
		cron:   cron.New(),
		runner: runner,
		spec:   spec,
	}
}

// Start registers the cron job and starts the scheduler.
func (s *ETLScheduler) Start() error {
	_, err := s.cron.AddFunc(s.spec, func() {
		if !s.mu.TryLock() {
			logger.Warn("Skipping scheduled run, previous run still active", map[string]interface{}{
				"schedule": s.spec,
			})
			return
		}
		defer s.mu.Unlock()

		logger.Info("Starting scheduled pipeline run", map[string]interface{}{
			"schedule": s.spec,
		})

		if err := s.runner.Run(context.Background()); err != nil {
			logger.Error("Scheduled pipeline run failed", err)
			return
		}

		logger.Info("Scheduled pipeline run completed")
	})
	if err != nil {
		logger.Error("Failed to register pipeline cron job", err)
		return err
	}

	s.cron.Start()
	logger.Info("Pipeline scheduler started", map[string]interface{}{
		"schedule": s.spec,
	})
	return nil
}

// Stop stops the scheduler.
func (s *ETLScheduler) Stop() {
	logger.Info("Stopping pipeline scheduler...")
	s.cron.Stop()
	logger.Info("Pipeline scheduler stopped")
}
