package worker

import (
	"context"
	"time"

	"coursehub/internal/platform/metrics"

	"go.uber.org/zap"
)

type Job func(ctx context.Context) error

// Runner runs named jobs on fixed intervals until its context is done.
type Runner struct {
	ctx context.Context
	log *zap.Logger
}

func NewRunner(ctx context.Context, log *zap.Logger) *Runner {
	return &Runner{ctx: ctx, log: log}
}

func (r *Runner) Every(interval time.Duration, name string, fn Job) {
	if interval <= 0 {
		r.log.Warn("background job disabled, interval must be positive",
			zap.String("job", name), zap.Duration("interval", interval))
		return
	}
	go func() {
		t := time.NewTicker(interval)
		defer t.Stop()
		for {
			select {
			case <-r.ctx.Done():
				return
			case <-t.C:
				r.run(name, fn)
			}
		}
	}()
}

func (r *Runner) run(name string, fn Job) {
	start := time.Now()
	if err := fn(r.ctx); err != nil {
		metrics.JobErrors.WithLabelValues(name).Inc()
		r.log.Error("background job failed", zap.String("job", name), zap.Error(err))
	}
	metrics.JobRuns.WithLabelValues(name).Inc()
	metrics.JobDuration.WithLabelValues(name).Observe(time.Since(start).Seconds())
}
