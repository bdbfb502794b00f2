package worker

import (
	"context"
	"time"

	"github.com/go-co-op/gocron"
	"github.com/rs/zerolog"
)

// Scheduler periodically runs the ingestion job.
type Scheduler struct {
	scheduler *gocron.Scheduler
	job       *IngestJob
	interval  time.Duration
	timeout   time.Duration
	logger    zerolog.Logger
}

// NewScheduler creates a scheduler that runs the ingestion job at the given
// interval. An interval of zero defaults to one hour.
func NewScheduler(job *IngestJob, interval time.Duration, logger zerolog.Logger) *Scheduler {
	if interval <= 0 {
		interval = time.Hour
	}
	return &Scheduler{
		scheduler: gocron.NewScheduler(time.UTC),
		job:       job,
		interval:  interval,
		timeout:   30 * time.Minute,
		logger:    logger,
	}
}

// Start schedules the periodic job and starts the underlying scheduler.
func (s *Scheduler) Start() error {
	_, err := s.scheduler.Every(s.interval).Do(func() {
		ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
		defer cancel()

		result := s.job.Run(ctx)
		if result.Failed > 0 {
			s.logger.Warn().
				Int("failed", result.Failed).
				Int("total", result.TotalTasks).
				Msg("scheduled ingestion finished with failures")
		}
	})
	if err != nil {
		return err
	}

	s.scheduler.StartAsync()
	return nil
}

// Stop stops the scheduler and cancels any future jobs.
func (s *Scheduler) Stop() {
	s.scheduler.Stop()
}
