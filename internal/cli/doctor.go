package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/julianstephens/cadence/internal/storage/sqlite"
	"github.com/julianstephens/cadence/internal/utils"
)

type DoctorCmd struct{}

type check struct {
	name string
	run  func(ctx *Context) error
	// warn marks checks whose failure does not fail the command
	warn bool
}

func (cmd *DoctorCmd) Run(ctx *Context) error {
	fmt.Println("Running diagnostics...")
	fmt.Println()

	if err := checkDBReachable(ctx); err != nil {
		fmt.Printf("❌ Database reachable: FAIL\n")
		fmt.Printf("   Error: %v\n", err)
		fmt.Println()
		fmt.Println("Diagnostics completed with errors.")
		return fmt.Errorf("one or more health checks failed")
	}
	fmt.Printf("✓ Database reachable: OK\n")

	checks := []check{
		{name: "Schema version", run: checkSchemaVersion},
		{name: "Settings valid", run: checkSettings},
		{name: "Clock/timezone", run: checkClockTimezone},
		{name: "Event timestamps", run: checkEventWindow},
		{name: "Orphaned events", run: checkOrphans},
		{name: "Backups present", run: checkBackupsPresent, warn: true},
	}

	hasError := false
	for _, c := range checks {
		err := c.run(ctx)
		switch {
		case err == nil:
			fmt.Printf("✓ %s: OK\n", c.name)
		case c.warn:
			fmt.Printf("⚠ %s: WARNING\n", c.name)
			fmt.Printf("   %v\n", err)
		default:
			fmt.Printf("❌ %s: FAIL\n", c.name)
			fmt.Printf("   Error: %v\n", err)
			hasError = true
		}
	}

	fmt.Println()
	if hasError {
		fmt.Println("Diagnostics completed with errors.")
		return fmt.Errorf("one or more health checks failed")
	}

	fmt.Println("All diagnostics passed!")
	return nil
}

func checkDBReachable(ctx *Context) error {
	if err := ctx.Store.Load(); err != nil {
		return fmt.Errorf("failed to load database: %w", err)
	}

	if sqliteStore, ok := ctx.Store.(*sqlite.Store); ok {
		db := sqliteStore.GetDB()
		if db == nil {
			return fmt.Errorf("database connection is nil")
		}
		var result int
		if err := db.QueryRow("SELECT 1").Scan(&result); err != nil {
			return fmt.Errorf("failed to query database: %w", err)
		}
	}

	return nil
}

func checkSchemaVersion(ctx *Context) error {
	current, latest, err := ctx.Store.SchemaStatus()
	if err != nil {
		return fmt.Errorf("failed to get schema version: %w", err)
	}
	if current > latest {
		return fmt.Errorf("database schema version (%d) is newer than supported version (%d)", current, latest)
	}
	if current < latest {
		return fmt.Errorf("migrations incomplete: current version %d, latest version %d - run 'cadence migrate'", current, latest)
	}
	return nil
}

func checkSettings(ctx *Context) error {
	settings, err := ctx.Store.GetSettings()
	if err != nil {
		return fmt.Errorf("failed to get settings: %w", err)
	}
	return settings.Validate()
}

func checkClockTimezone(ctx *Context) error {
	settings, err := ctx.Store.GetSettings()
	if err != nil {
		return fmt.Errorf("failed to get settings: %w", err)
	}
	now, err := utils.NowInTimezone(settings.Timezone)
	if err != nil {
		return err
	}
	if now.Year() < 2000 {
		return fmt.Errorf("system clock looks wrong: %s", now.Format(time.RFC3339))
	}
	return nil
}

func checkEventWindow(ctx *Context) error {
	service, err := ctx.Predictions()
	if err != nil {
		return err
	}
	now := service.Now()
	stats, err := ctx.Store.Stats(context.Background(), now, now.Add(-service.Retention()))
	if err != nil {
		return fmt.Errorf("failed to collect stats: %w", err)
	}
	if stats.FutureEvents > 0 {
		return fmt.Errorf("%d event(s) are timestamped in the future", stats.FutureEvents)
	}
	if stats.ExpiredEvents > 0 {
		return fmt.Errorf("%d event(s) are older than the retention window - run 'cadence sweep'", stats.ExpiredEvents)
	}
	return nil
}

func checkOrphans(ctx *Context) error {
	now := time.Now()
	stats, err := ctx.Store.Stats(context.Background(), now, now)
	if err != nil {
		return fmt.Errorf("failed to collect stats: %w", err)
	}
	if stats.OrphanedEvents > 0 {
		return fmt.Errorf("%d event(s) reference a missing category", stats.OrphanedEvents)
	}
	return nil
}

func checkBackupsPresent(ctx *Context) error {
	mgr, err := ctx.BackupManager()
	if err != nil {
		return err
	}
	backups, err := mgr.List()
	if err != nil {
		return fmt.Errorf("failed to list backups: %w", err)
	}

	if len(backups) == 0 {
		return fmt.Errorf("no backups found - consider creating one with 'cadence backup create'")
	}

	return nil
}
