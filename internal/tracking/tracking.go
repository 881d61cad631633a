// Package tracking is the write path shared by the CLI and the MCP server.
// Every mutation that changes a category's event window also updates the
// prediction cache.
package tracking

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/julianstephens/cadence/internal/logger"
	"github.com/julianstephens/cadence/internal/models"
	"github.com/julianstephens/cadence/internal/predict"
	"github.com/julianstephens/cadence/internal/storage"
)

type Tracker struct {
	store   storage.Provider
	service *predict.Service
}

func New(store storage.Provider, service *predict.Service) *Tracker {
	return &Tracker{
		store:   store,
		service: service,
	}
}

// Record stores an occurrence of the category named by ref (id or label).
// A zero at means now. Future timestamps are rejected.
func (t *Tracker) Record(ref string, at time.Time) (models.Event, models.Category, error) {
	category, err := storage.ResolveCategory(t.store, ref)
	if err != nil {
		return models.Event{}, models.Category{}, err
	}

	now := t.service.Now()
	if at.IsZero() {
		at = now
	}
	at = at.Truncate(time.Second)
	if at.After(now) {
		return models.Event{}, category, fmt.Errorf("event time %s is in the future", at.In(t.service.Location()).Format(time.RFC3339))
	}
	if at.Before(now.Add(-t.service.Retention())) {
		logger.Warn("Recorded event is outside the retention window", "category", category.ID, "at", at.Format(time.RFC3339))
	}

	ev := models.Event{
		ID:         uuid.New().String(),
		CategoryID: category.ID,
		OccurredAt: at.UTC(),
		CreatedAt:  now.UTC().Truncate(time.Second),
	}
	if err := t.store.AddEvent(ev); err != nil {
		return models.Event{}, category, fmt.Errorf("failed to record event: %w", err)
	}
	t.service.Invalidate(category.ID)
	return ev, category, nil
}

// DeleteEvent removes one event and invalidates its category's prediction.
func (t *Tracker) DeleteEvent(id string) (models.Event, error) {
	ev, err := t.store.GetEvent(id)
	if err != nil {
		return models.Event{}, err
	}
	if err := t.store.DeleteEvent(id); err != nil {
		return models.Event{}, err
	}
	t.service.Invalidate(ev.CategoryID)
	return ev, nil
}

// DeleteCategory removes the category with its events and drops its
// cached prediction.
func (t *Tracker) DeleteCategory(id string) error {
	if err := t.store.DeleteCategory(id); err != nil {
		return err
	}
	t.service.Remove(id)
	return nil
}
