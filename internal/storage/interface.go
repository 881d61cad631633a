package storage

import (
	"context"
	"time"

	"github.com/julianstephens/cadence/internal/models"
)

// Provider is the persistence contract shared by the SQLite and PostgreSQL
// stores. Lookups of missing rows return errors.ErrCategoryNotFound or
// errors.ErrEventNotFound.
type Provider interface {
	// Lifecycle
	Init() error
	Load() error
	Close() error

	// Settings
	GetSettings() (models.Settings, error)
	SaveSettings(models.Settings) error

	// Categories
	AddCategory(models.Category) error
	GetCategory(id string) (models.Category, error)
	// GetCategoryByLabel matches case-insensitively.
	GetCategoryByLabel(label string) (models.Category, error)
	GetAllCategories() ([]models.Category, error)
	UpdateCategory(models.Category) error
	// DeleteCategory removes the category together with all of its events.
	DeleteCategory(id string) error

	// Events
	// AddEvent stores the event and bumps the category's last-used time in
	// the same transaction.
	AddEvent(models.Event) error
	GetEvent(id string) (models.Event, error)
	// QueryEvents returns a category's events in [since, until], oldest first.
	QueryEvents(ctx context.Context, categoryID string, since, until time.Time) ([]models.Event, error)
	DeleteEvent(id string) error
	// PurgeEventsBefore deletes every event older than cutoff.
	PurgeEventsBefore(ctx context.Context, cutoff time.Time) (int64, error)

	// Diagnostics
	Stats(ctx context.Context, now, cutoff time.Time) (Stats, error)

	// Utils
	GetConfigPath() string
	SchemaStatus() (current, latest int, err error)
}

// Stats summarises stored data for health checks.
type Stats struct {
	Categories     int
	Events         int
	ExpiredEvents  int // older than the retention cutoff
	FutureEvents   int // timestamped after now
	OrphanedEvents int // referencing a missing category
}
