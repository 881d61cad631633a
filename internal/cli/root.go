package cli

import (
	"fmt"
	"path/filepath"

	"github.com/julianstephens/cadence/internal/backup"
	"github.com/julianstephens/cadence/internal/predict"
	"github.com/julianstephens/cadence/internal/storage"
	"github.com/julianstephens/cadence/internal/storage/sqlite"
	"github.com/julianstephens/cadence/internal/tracking"
)

type Context struct {
	Store storage.Provider
	// ConfigDir holds logs and the sweep lockfile.
	ConfigDir string

	service *predict.Service
	tracker *tracking.Tracker
}

// Predictions returns the prediction service, built from the stored
// settings on first use.
func (c *Context) Predictions() (*predict.Service, error) {
	if c.service != nil {
		return c.service, nil
	}
	settings, err := c.Store.GetSettings()
	if err != nil {
		return nil, fmt.Errorf("failed to get settings: %w", err)
	}
	cfg, err := predict.ConfigFromSettings(settings)
	if err != nil {
		return nil, err
	}
	c.service = predict.NewService(c.Store, cfg)
	return c.service, nil
}

// Tracker returns the write path that keeps predictions in sync with events.
func (c *Context) Tracker() (*tracking.Tracker, error) {
	if c.tracker != nil {
		return c.tracker, nil
	}
	service, err := c.Predictions()
	if err != nil {
		return nil, err
	}
	c.tracker = tracking.New(c.Store, service)
	return c.tracker, nil
}

// BackupManager returns a backup manager for SQLite stores.
func (c *Context) BackupManager() (*backup.Manager, error) {
	if _, ok := c.Store.(*sqlite.Store); !ok {
		return nil, fmt.Errorf("backups are only supported for SQLite databases; use pg_dump for PostgreSQL")
	}
	return backup.NewManager(c.Store.GetConfigPath()), nil
}

// LockDir returns where the sweep lockfile lives.
func (c *Context) LockDir() string {
	if c.ConfigDir != "" {
		return c.ConfigDir
	}
	return filepath.Dir(c.Store.GetConfigPath())
}
