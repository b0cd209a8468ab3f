// Package scheduler runs background jobs on cron schedules.
package scheduler

import (
	"context"
	"fmt"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// Recounter repairs the denormalized symbol trade counts.
type Recounter interface {
	RecountSymbols(ctx context.Context) (int, error)
}

// Runner wraps a cron instance whose jobs receive a shared base context.
type Runner struct {
	cron    *cron.Cron
	logger  *zap.Logger
	baseCtx context.Context
}

// New creates a Runner. Specs use the standard five-field cron syntax and
// descriptors such as "@hourly".
func New(baseCtx context.Context, logger *zap.Logger) *Runner {
	if baseCtx == nil {
		baseCtx = context.Background()
	}
	return &Runner{
		cron:    cron.New(),
		logger:  logger.Named("scheduler"),
		baseCtx: baseCtx,
	}
}

// Add schedules job on spec.
func (r *Runner) Add(spec string, job func(context.Context)) (cron.EntryID, error) {
	id, err := r.cron.AddFunc(spec, func() { job(r.baseCtx) })
	if err != nil {
		return 0, fmt.Errorf("invalid cron spec %q: %w", spec, err)
	}
	return id, nil
}

// AddRecount schedules a symbol count repair on spec.
func (r *Runner) AddRecount(spec string, rc Recounter) (cron.EntryID, error) {
	return r.Add(spec, func(ctx context.Context) {
		corrected, err := rc.RecountSymbols(ctx)
		if err != nil {
			r.logger.Error("Scheduled recount failed", zap.Error(err))
			return
		}
		r.logger.Info("Scheduled recount finished", zap.Int("corrected", corrected))
	})
}

// Len returns the number of scheduled jobs.
func (r *Runner) Len() int {
	return len(r.cron.Entries())
}

// Start begins running jobs in the background.
func (r *Runner) Start() {
	r.logger.Info("Scheduler started", zap.Int("jobs", r.Len()))
	r.cron.Start()
}

// Stop stops the scheduler and waits for running jobs to finish.
func (r *Runner) Stop() {
	ctx := r.cron.Stop()
	<-ctx.Done()
	r.logger.Info("Scheduler stopped")
}
