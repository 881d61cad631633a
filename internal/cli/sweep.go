package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/julianstephens/cadence/internal/logger"
	"github.com/julianstephens/cadence/internal/sweep"
)

type SweepCmd struct {
	Watch bool `help:"Keep running and sweep on the configured interval."`
}

func (c *SweepCmd) Run(ctx *Context) error {
	runner, err := ctx.sweepRunner()
	if err != nil {
		return err
	}

	if !c.Watch {
		report, err := runner.RunOnce(context.Background())
		printSweepReport(report)
		return err
	}

	settings, err := ctx.Store.GetSettings()
	if err != nil {
		return fmt.Errorf("failed to get settings: %w", err)
	}

	sigCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	fmt.Printf("Sweeping every %s. Press Ctrl+C to stop.\n", settings.SweepInterval())
	return runner.Run(sigCtx, settings.SweepInterval(), func(report sweep.Report, err error) {
		printSweepReport(report)
		if err != nil {
			fmt.Println(warnStyle.Render("⚠ " + err.Error()))
		}
	})
}

func (c *Context) sweepRunner() (*sweep.Runner, error) {
	service, err := c.Predictions()
	if err != nil {
		return nil, err
	}

	opts := []sweep.Option{sweep.WithLockDir(c.LockDir())}
	if mgr, err := c.BackupManager(); err == nil {
		opts = append(opts, sweep.WithBackups(mgr))
	} else {
		logger.Debug("Sweep runs without pre-purge backups", "reason", err)
	}
	return sweep.NewRunner(c.Store, service, opts...), nil
}

func printSweepReport(report sweep.Report) {
	if report.Backup != "" {
		fmt.Printf("✓ Backup created: %s\n", filepath.Base(report.Backup))
	}
	fmt.Printf("✓ Purged %d expired event(s)\n", report.Purged)
	fmt.Printf("✓ Predictions: %d ready, %d without enough data, %d failed\n",
		report.Ready, report.Insufficient, report.Failed)
}
