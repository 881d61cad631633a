package cli

import "fmt"

type InitCmd struct{}

func (c *InitCmd) Run(ctx *Context) error {
	if err := ctx.Store.Init(); err != nil {
		return err
	}
	fmt.Printf("Initialized cadence storage at: %s\n", ctx.Store.GetConfigPath())
	return nil
}

type MigrateCmd struct{}

func (c *MigrateCmd) Run(ctx *Context) error {
	before, latest, err := ctx.Store.SchemaStatus()
	if err != nil {
		return fmt.Errorf("failed to read schema version: %w", err)
	}
	if before > latest {
		return fmt.Errorf("database schema version (%d) is newer than supported version (%d) - please upgrade cadence", before, latest)
	}
	if before == latest {
		fmt.Printf("Database schema is up to date (version %d)\n", latest)
		return nil
	}

	if err := ctx.Store.Init(); err != nil {
		return fmt.Errorf("migration failed: %w", err)
	}
	fmt.Printf("✓ Migrated schema from version %d to %d\n", before, latest)
	return nil
}
