package tracking

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	cerrors "github.com/julianstephens/cadence/internal/errors"
	"github.com/julianstephens/cadence/internal/models"
	"github.com/julianstephens/cadence/internal/predict"
	"github.com/julianstephens/cadence/internal/storage/sqlite"
	"github.com/julianstephens/cadence/internal/storage/storagetest"
)

func setup(t *testing.T) (*Tracker, *sqlite.Store, *predict.Service, models.Category) {
	t.Helper()

	store := sqlite.NewStore(filepath.Join(t.TempDir(), "cadence.db"))
	if err := store.Init(); err != nil {
		t.Fatalf("Init() error = %v", err)
	}
	t.Cleanup(func() { store.Close() })

	settings, err := store.GetSettings()
	if err != nil {
		t.Fatal(err)
	}
	cfg, err := predict.ConfigFromSettings(settings)
	if err != nil {
		t.Fatal(err)
	}
	service := predict.NewService(store, cfg)

	c := storagetest.NewCategory("Coffee", 0)
	if err := store.AddCategory(c); err != nil {
		t.Fatal(err)
	}
	return New(store, service), store, service, c
}

func TestRecord(t *testing.T) {
	tracker, store, _, c := setup(t)

	at := time.Now().Add(-time.Hour).Truncate(time.Second)
	ev, category, err := tracker.Record("coffee", at)
	if err != nil {
		t.Fatalf("Record() error = %v", err)
	}
	if category.ID != c.ID {
		t.Errorf("Record() resolved category %s, want %s", category.ID, c.ID)
	}
	if !ev.OccurredAt.Equal(at) {
		t.Errorf("OccurredAt = %v, want %v", ev.OccurredAt, at)
	}

	stored, err := store.GetEvent(ev.ID)
	if err != nil {
		t.Fatalf("GetEvent() error = %v", err)
	}
	if stored.CategoryID != c.ID {
		t.Errorf("stored event category = %s, want %s", stored.CategoryID, c.ID)
	}

	updated, err := store.GetCategory(c.ID)
	if err != nil {
		t.Fatal(err)
	}
	if updated.LastUsedAt == nil || !updated.LastUsedAt.Equal(at) {
		t.Errorf("LastUsedAt = %v, want %v", updated.LastUsedAt, at)
	}
}

func TestRecord_DefaultsToNow(t *testing.T) {
	tracker, _, _, c := setup(t)

	before := time.Now().Truncate(time.Second)
	ev, _, err := tracker.Record(c.ID, time.Time{})
	if err != nil {
		t.Fatalf("Record() error = %v", err)
	}
	if ev.OccurredAt.Before(before) || ev.OccurredAt.After(time.Now()) {
		t.Errorf("OccurredAt = %v, want about now", ev.OccurredAt)
	}
}

func TestRecord_RejectsFuture(t *testing.T) {
	tracker, _, _, c := setup(t)

	if _, _, err := tracker.Record(c.ID, time.Now().Add(time.Hour)); err == nil {
		t.Error("Record() with a future time should fail")
	}
}

func TestRecord_UnknownCategory(t *testing.T) {
	tracker, _, _, _ := setup(t)

	if _, _, err := tracker.Record("tea", time.Time{}); !errors.Is(err, cerrors.ErrCategoryNotFound) {
		t.Errorf("Record() error = %v, want %v", err, cerrors.ErrCategoryNotFound)
	}
}

func TestRecord_InvalidatesPrediction(t *testing.T) {
	tracker, _, service, c := setup(t)

	res, err := service.GetPrediction(context.Background(), c.ID)
	if err != nil {
		t.Fatalf("GetPrediction() error = %v", err)
	}
	if len(res.Clusters) != 0 {
		t.Fatalf("expected no clusters before recording")
	}

	now := time.Now()
	for day := 1; day <= 7; day++ {
		at := time.Date(now.Year(), now.Month(), now.Day()-day, 7, 30, 0, 0, service.Location())
		if _, _, err := tracker.Record(c.ID, at); err != nil {
			t.Fatalf("Record() error = %v", err)
		}
	}

	if _, ok := service.Peek(c.ID); !ok {
		t.Fatal("Peek() found no entry")
	}
	if res, _ := service.Peek(c.ID); !res.Stale {
		t.Error("cached prediction should be stale after recording")
	}

	res, err = service.GetPrediction(context.Background(), c.ID)
	if err != nil {
		t.Fatalf("GetPrediction() error = %v", err)
	}
	if res.State != predict.StateReady || len(res.Clusters) != 1 {
		t.Errorf("GetPrediction() = %+v, want a ready prediction from one cluster", res)
	}
}

func TestDeleteEvent(t *testing.T) {
	tracker, store, service, c := setup(t)

	ev, _, err := tracker.Record(c.ID, time.Now().Add(-time.Minute))
	if err != nil {
		t.Fatal(err)
	}
	if _, err := service.GetPrediction(context.Background(), c.ID); err != nil {
		t.Fatal(err)
	}

	deleted, err := tracker.DeleteEvent(ev.ID)
	if err != nil {
		t.Fatalf("DeleteEvent() error = %v", err)
	}
	if deleted.ID != ev.ID {
		t.Errorf("DeleteEvent() returned %s, want %s", deleted.ID, ev.ID)
	}
	if _, err := store.GetEvent(ev.ID); !errors.Is(err, cerrors.ErrEventNotFound) {
		t.Errorf("GetEvent() after delete error = %v, want %v", err, cerrors.ErrEventNotFound)
	}
	if res, _ := service.Peek(c.ID); !res.Stale {
		t.Error("cached prediction should be stale after deleting an event")
	}

	if _, err := tracker.DeleteEvent(ev.ID); !errors.Is(err, cerrors.ErrEventNotFound) {
		t.Errorf("second DeleteEvent() error = %v, want %v", err, cerrors.ErrEventNotFound)
	}
}

func TestDeleteCategory(t *testing.T) {
	tracker, store, service, c := setup(t)

	if _, _, err := tracker.Record(c.ID, time.Now().Add(-time.Minute)); err != nil {
		t.Fatal(err)
	}
	if _, err := service.GetPrediction(context.Background(), c.ID); err != nil {
		t.Fatal(err)
	}

	if err := tracker.DeleteCategory(c.ID); err != nil {
		t.Fatalf("DeleteCategory() error = %v", err)
	}
	if _, err := store.GetCategory(c.ID); !errors.Is(err, cerrors.ErrCategoryNotFound) {
		t.Errorf("GetCategory() after delete error = %v", err)
	}
	if _, ok := service.Peek(c.ID); ok {
		t.Error("deleted category still cached")
	}
}

func TestRecord_ClockAheadOfWallClock(t *testing.T) {
	_, store, _, c := setup(t)

	settings, err := store.GetSettings()
	if err != nil {
		t.Fatal(err)
	}
	cfg, err := predict.ConfigFromSettings(settings)
	if err != nil {
		t.Fatal(err)
	}
	now := time.Now().Add(48 * time.Hour).Truncate(time.Second)
	service := predict.NewService(store, cfg, predict.WithClock(func() time.Time { return now }))
	tracker := New(store, service)

	for d := 0; d < 8; d++ {
		if _, _, err := tracker.Record(c.ID, now.AddDate(0, 0, -d)); err != nil {
			t.Fatalf("Record() error = %v", err)
		}
	}

	res, err := service.GetPrediction(context.Background(), c.ID)
	if err != nil {
		t.Fatalf("GetPrediction() error = %v", err)
	}
	if res.State != predict.StateReady {
		t.Fatalf("State = %s, want ready", res.State)
	}
	members := 0
	for _, cl := range res.Clusters {
		members += cl.Size()
	}
	if members != 8 {
		t.Errorf("clusters hold %d events, want all 8 recorded events", members)
	}
}
