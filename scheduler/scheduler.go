package scheduler

import (
	"context"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"

	"aiservice/models"
)

// Runner is the batch pipeline the scheduler triggers.
type Runner interface {
	RunBatch(ctx context.Context, limit int) (models.BatchReport, error)
}

// Scheduler triggers a batch prediction run on a cron spec. Each tick is one
// synchronous pass; overlapping ticks are prevented by cron's default
// sequential job execution within a single entry.
type Scheduler struct {
	cron *cron.Cron
	log  zerolog.Logger
}

// New registers the batch job on the given cron spec (standard 5-field
// syntax, e.g. "0 3 * * *" for 3am daily).
func New(spec string, runner Runner, limit int, log zerolog.Logger) (*Scheduler, error) {
	schedLog := log.With().Str("component", "scheduler").Logger()

	c := cron.New()
	_, err := c.AddFunc(spec, func() {
		schedLog.Info().Int("limit", limit).Msg("⏰ Scheduled batch prediction starting")
		report, err := runner.RunBatch(context.Background(), limit)
		if err != nil {
			schedLog.Error().Err(err).Msg("scheduled batch run failed")
			return
		}
		schedLog.Info().
			Int("processed", report.Processed).
			Int("updated", report.Updated).
			Msg("scheduled batch run complete")
	})
	if err != nil {
		return nil, err
	}

	return &Scheduler{cron: c, log: schedLog}, nil
}

// Start launches the cron loop in its own goroutine.
func (s *Scheduler) Start() {
	s.cron.Start()
	s.log.Info().Msg("batch scheduler started")
}

// Stop halts the cron loop, waiting for a running job to finish.
func (s *Scheduler) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
	s.log.Info().Msg("batch scheduler stopped")
}
