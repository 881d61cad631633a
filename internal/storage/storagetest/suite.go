// Package storagetest holds behaviour tests shared by every storage.Provider.
package storagetest

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"

	cerrors "github.com/julianstephens/cadence/internal/errors"
	"github.com/julianstephens/cadence/internal/models"
	"github.com/julianstephens/cadence/internal/storage"
)

// Run exercises a freshly initialized, empty provider.
func Run(t *testing.T, p storage.Provider) {
	t.Helper()
	ctx := context.Background()

	t.Run("DefaultSettings", func(t *testing.T) {
		settings, err := p.GetSettings()
		if err != nil {
			t.Fatalf("GetSettings() error = %v", err)
		}
		if settings != models.DefaultSettings() {
			t.Errorf("GetSettings() = %+v, want defaults", settings)
		}

		settings.RetentionDays = 45
		settings.RadiusMin = 42.5
		if err := p.SaveSettings(settings); err != nil {
			t.Fatalf("SaveSettings() error = %v", err)
		}
		updated, err := p.GetSettings()
		if err != nil {
			t.Fatalf("GetSettings() error = %v", err)
		}
		if updated != settings {
			t.Errorf("GetSettings() = %+v, want %+v", updated, settings)
		}
	})

	coffee := NewCategory("Coffee", 1)
	walk := NewCategory("Walk", 0)

	t.Run("Categories", func(t *testing.T) {
		for _, c := range []models.Category{coffee, walk} {
			if err := p.AddCategory(c); err != nil {
				t.Fatalf("AddCategory(%s) error = %v", c.Label, err)
			}
		}

		if err := p.AddCategory(NewCategory("coffee", 3)); !errors.Is(err, cerrors.ErrCategoryExists) {
			t.Errorf("AddCategory(duplicate label) error = %v, want ErrCategoryExists", err)
		}

		got, err := p.GetCategoryByLabel("COFFEE")
		if err != nil {
			t.Fatalf("GetCategoryByLabel() error = %v", err)
		}
		if got.ID != coffee.ID || !got.CreatedAt.Equal(coffee.CreatedAt) {
			t.Errorf("GetCategoryByLabel() = %+v, want %+v", got, coffee)
		}

		all, err := p.GetAllCategories()
		if err != nil {
			t.Fatalf("GetAllCategories() error = %v", err)
		}
		if len(all) != 2 || all[0].ID != walk.ID {
			t.Errorf("GetAllCategories() should order by display order, got %+v", all)
		}

		coffee.Emoji = "☕"
		coffee.Color = "#6f4e37"
		if err := p.UpdateCategory(coffee); err != nil {
			t.Fatalf("UpdateCategory() error = %v", err)
		}
		got, err = p.GetCategory(coffee.ID)
		if err != nil {
			t.Fatalf("GetCategory() error = %v", err)
		}
		if got.Emoji != "☕" || got.Color != "#6f4e37" {
			t.Errorf("UpdateCategory() not persisted: %+v", got)
		}

		renamed := walk
		renamed.Label = "Coffee"
		if err := p.UpdateCategory(renamed); !errors.Is(err, cerrors.ErrCategoryExists) {
			t.Errorf("UpdateCategory(taken label) error = %v, want ErrCategoryExists", err)
		}

		if _, err := p.GetCategory("missing"); !errors.Is(err, cerrors.ErrCategoryNotFound) {
			t.Errorf("GetCategory(missing) error = %v, want ErrCategoryNotFound", err)
		}
		if err := p.UpdateCategory(NewCategory("Ghost", 0)); !errors.Is(err, cerrors.ErrCategoryNotFound) {
			t.Errorf("UpdateCategory(missing) error = %v, want ErrCategoryNotFound", err)
		}
	})

	now := time.Now().UTC().Truncate(time.Second)

	t.Run("Events", func(t *testing.T) {
		var recorded []models.Event
		for d := 1; d <= 5; d++ {
			ev := NewEvent(coffee.ID, now.AddDate(0, 0, -d).Add(-2*time.Hour))
			if err := p.AddEvent(ev); err != nil {
				t.Fatalf("AddEvent() error = %v", err)
			}
			recorded = append(recorded, ev)
		}
		old := NewEvent(coffee.ID, now.AddDate(0, 0, -40))
		if err := p.AddEvent(old); err != nil {
			t.Fatalf("AddEvent(old) error = %v", err)
		}

		if err := p.AddEvent(NewEvent("missing", now)); !errors.Is(err, cerrors.ErrCategoryNotFound) {
			t.Errorf("AddEvent(unknown category) error = %v, want ErrCategoryNotFound", err)
		}

		cat, err := p.GetCategory(coffee.ID)
		if err != nil {
			t.Fatalf("GetCategory() error = %v", err)
		}
		if cat.LastUsedAt == nil || !cat.LastUsedAt.Equal(recorded[0].OccurredAt) {
			t.Errorf("LastUsedAt = %v, want %v", cat.LastUsedAt, recorded[0].OccurredAt)
		}

		events, err := p.QueryEvents(ctx, coffee.ID, now.AddDate(0, 0, -30), now)
		if err != nil {
			t.Fatalf("QueryEvents() error = %v", err)
		}
		if len(events) != 5 {
			t.Fatalf("QueryEvents() returned %d events, want 5", len(events))
		}
		for i := 1; i < len(events); i++ {
			if events[i].OccurredAt.Before(events[i-1].OccurredAt) {
				t.Error("QueryEvents() should return events oldest first")
			}
		}
		for _, ev := range events {
			if ev.CategoryID != coffee.ID {
				t.Errorf("QueryEvents() leaked event of category %s", ev.CategoryID)
			}
		}

		empty, err := p.QueryEvents(ctx, walk.ID, now.AddDate(0, 0, -30), now)
		if err != nil || len(empty) != 0 {
			t.Errorf("QueryEvents(no events) = %v, %v, want empty", empty, err)
		}
		if _, err := p.QueryEvents(ctx, "missing", now, now); !errors.Is(err, cerrors.ErrCategoryNotFound) {
			t.Errorf("QueryEvents(unknown) error = %v, want ErrCategoryNotFound", err)
		}

		got, err := p.GetEvent(recorded[2].ID)
		if err != nil {
			t.Fatalf("GetEvent() error = %v", err)
		}
		if !got.OccurredAt.Equal(recorded[2].OccurredAt) {
			t.Errorf("GetEvent().OccurredAt = %v, want %v", got.OccurredAt, recorded[2].OccurredAt)
		}

		if err := p.DeleteEvent(recorded[2].ID); err != nil {
			t.Fatalf("DeleteEvent() error = %v", err)
		}
		if _, err := p.GetEvent(recorded[2].ID); !errors.Is(err, cerrors.ErrEventNotFound) {
			t.Errorf("GetEvent(deleted) error = %v, want ErrEventNotFound", err)
		}
		if err := p.DeleteEvent(recorded[2].ID); !errors.Is(err, cerrors.ErrEventNotFound) {
			t.Errorf("DeleteEvent(twice) error = %v, want ErrEventNotFound", err)
		}

		cutoff := now.AddDate(0, 0, -30)
		stats, err := p.Stats(ctx, now, cutoff)
		if err != nil {
			t.Fatalf("Stats() error = %v", err)
		}
		if stats.Categories != 2 || stats.Events != 5 || stats.ExpiredEvents != 1 || stats.OrphanedEvents != 0 {
			t.Errorf("Stats() = %+v", stats)
		}

		purged, err := p.PurgeEventsBefore(ctx, cutoff)
		if err != nil {
			t.Fatalf("PurgeEventsBefore() error = %v", err)
		}
		if purged != 1 {
			t.Errorf("PurgeEventsBefore() = %d, want 1", purged)
		}
		if _, err := p.GetEvent(old.ID); !errors.Is(err, cerrors.ErrEventNotFound) {
			t.Error("expired event survived the purge")
		}
	})

	t.Run("QueryEventsHonoursUntil", func(t *testing.T) {
		// the upper bound belongs to the caller's clock, not the wall clock
		var added []models.Event
		for _, offset := range []time.Duration{-3 * time.Hour, 24 * time.Hour, 47 * time.Hour} {
			ev := NewEvent(walk.ID, now.Add(offset))
			if err := p.AddEvent(ev); err != nil {
				t.Fatalf("AddEvent() error = %v", err)
			}
			added = append(added, ev)
		}
		since := now.AddDate(0, 0, -30)

		tests := []struct {
			name  string
			until time.Time
			want  int
		}{
			{"wall clock", now, 1},
			{"clock ahead of wall clock", now.Add(48 * time.Hour), 3},
			{"bound on an event", now.Add(24 * time.Hour), 2},
			{"clock behind every event", now.Add(-4 * time.Hour), 0},
		}
		for _, tt := range tests {
			events, err := p.QueryEvents(ctx, walk.ID, since, tt.until)
			if err != nil {
				t.Fatalf("%s: QueryEvents() error = %v", tt.name, err)
			}
			if len(events) != tt.want {
				t.Errorf("%s: QueryEvents() returned %d events, want %d", tt.name, len(events), tt.want)
			}
		}

		for _, ev := range added {
			if err := p.DeleteEvent(ev.ID); err != nil {
				t.Fatalf("DeleteEvent() error = %v", err)
			}
		}
	})

	t.Run("DeleteCategoryCascades", func(t *testing.T) {
		if err := p.DeleteCategory(coffee.ID); err != nil {
			t.Fatalf("DeleteCategory() error = %v", err)
		}
		if _, err := p.GetCategory(coffee.ID); !errors.Is(err, cerrors.ErrCategoryNotFound) {
			t.Errorf("GetCategory(deleted) error = %v, want ErrCategoryNotFound", err)
		}
		stats, err := p.Stats(ctx, now, now.AddDate(0, 0, -30))
		if err != nil {
			t.Fatalf("Stats() error = %v", err)
		}
		if stats.Events != 0 || stats.OrphanedEvents != 0 {
			t.Errorf("events survived category deletion: %+v", stats)
		}
		if err := p.DeleteCategory(coffee.ID); !errors.Is(err, cerrors.ErrCategoryNotFound) {
			t.Errorf("DeleteCategory(twice) error = %v, want ErrCategoryNotFound", err)
		}
	})

	t.Run("SchemaStatus", func(t *testing.T) {
		current, latest, err := p.SchemaStatus()
		if err != nil {
			t.Fatalf("SchemaStatus() error = %v", err)
		}
		if current != latest || current < 1 {
			t.Errorf("SchemaStatus() = %d, %d, want an up-to-date schema", current, latest)
		}
	})
}

// NewCategory builds a valid category with a fresh id.
func NewCategory(label string, order int) models.Category {
	return models.Category{
		ID:           uuid.New().String(),
		Label:        label,
		DisplayOrder: order,
		CreatedAt:    time.Now().UTC().Truncate(time.Second),
	}
}

// NewEvent builds an event with a fresh id.
func NewEvent(categoryID string, at time.Time) models.Event {
	return models.Event{
		ID:         uuid.New().String(),
		CategoryID: categoryID,
		OccurredAt: at,
		CreatedAt:  time.Now().UTC().Truncate(time.Second),
	}
}
