// Package sweep runs the periodic maintenance pass: retention purge and a
// recompute of every category's prediction.
package sweep

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/julianstephens/cadence/internal/backup"
	"github.com/julianstephens/cadence/internal/logger"
	"github.com/julianstephens/cadence/internal/predict"
	"github.com/julianstephens/cadence/internal/storage"
)

// Report summarises one pass.
type Report struct {
	predict.SweepReport
	Purged int64
	Backup string
}

// Runner drives sweeps against a store and a prediction service.
type Runner struct {
	store   storage.Provider
	service *predict.Service
	backups *backup.Manager
	lockDir string
}

// Option configures a Runner.
type Option func(*Runner)

// WithBackups snapshots the database before each purge.
func WithBackups(m *backup.Manager) Option {
	return func(r *Runner) {
		r.backups = m
	}
}

// WithLockDir guards each pass with a lockfile in dir so that only one
// process sweeps at a time.
func WithLockDir(dir string) Option {
	return func(r *Runner) {
		r.lockDir = dir
	}
}

func NewRunner(store storage.Provider, service *predict.Service, opts ...Option) *Runner {
	r := &Runner{
		store:   store,
		service: service,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// RunOnce purges events older than the retention window and recomputes
// every category. Per-category failures are returned joined; the report
// still counts everything that succeeded.
func (r *Runner) RunOnce(ctx context.Context) (Report, error) {
	var report Report

	if r.lockDir != "" {
		lock, err := AcquireLock(r.lockDir)
		if err != nil {
			return report, err
		}
		defer func() {
			if err := lock.Release(); err != nil {
				logger.Warn("Failed to release sweep lock", "error", err)
			}
		}()
	}

	if r.backups != nil {
		info, err := r.backups.Create(backup.ReasonPreSweep)
		if err != nil {
			return report, fmt.Errorf("pre-sweep backup failed: %w", err)
		}
		report.Backup = info.Path
	}

	cutoff := r.service.Now().Add(-r.service.Retention())
	purged, err := r.store.PurgeEventsBefore(ctx, cutoff)
	if err != nil {
		return report, fmt.Errorf("failed to purge expired events: %w", err)
	}
	report.Purged = purged

	ids, err := storage.CategoryIDs(r.store)
	if err != nil {
		return report, fmt.Errorf("failed to list categories: %w", err)
	}

	report.SweepReport, err = r.service.RunSweep(ctx, ids)
	logger.Info("Sweep finished", "purged", purged, "categories", len(ids), "failed", report.Failed)
	return report, err
}

// Run sweeps immediately and then every interval until ctx is done.
// onReport, when set, receives each pass's outcome.
func (r *Runner) Run(ctx context.Context, interval time.Duration, onReport func(Report, error)) error {
	if interval <= 0 {
		return fmt.Errorf("sweep interval must be positive, got %s", interval)
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		report, err := r.RunOnce(ctx)
		if err != nil && !errors.Is(err, context.Canceled) {
			logger.Error("Sweep failed", "error", err)
		}
		if onReport != nil {
			onReport(report, err)
		}

		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
		}
	}
}
