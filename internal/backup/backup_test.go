package backup

import (
	"database/sql"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	_ "modernc.org/sqlite"
)

func setupTestDB(t *testing.T) string {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "cadence.db")

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		t.Fatalf("failed to create test database: %v", err)
	}
	defer db.Close()

	if _, err := db.Exec(`CREATE TABLE events (id TEXT PRIMARY KEY, occurred_at INTEGER)`); err != nil {
		t.Fatalf("failed to create test table: %v", err)
	}
	if _, err := db.Exec("INSERT INTO events (id, occurred_at) VALUES ('e1', 100), ('e2', 200)"); err != nil {
		t.Fatalf("failed to insert test data: %v", err)
	}
	return dbPath
}

func countEvents(t *testing.T, path string) int {
	t.Helper()
	db, err := sql.Open("sqlite", path)
	if err != nil {
		t.Fatalf("failed to open database: %v", err)
	}
	defer db.Close()

	var count int
	if err := db.QueryRow("SELECT COUNT(*) FROM events").Scan(&count); err != nil {
		t.Fatalf("failed to count events: %v", err)
	}
	return count
}

// steppingClock returns a clock that advances one second per call.
func steppingClock(start time.Time) func() time.Time {
	next := start
	return func() time.Time {
		now := next
		next = next.Add(time.Second)
		return now
	}
}

func TestCreate(t *testing.T) {
	dbPath := setupTestDB(t)
	mgr := NewManager(dbPath, WithClock(func() time.Time {
		return time.Date(2026, 6, 1, 9, 30, 15, 0, time.UTC)
	}))

	info, err := mgr.Create(ReasonManual)
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	if want := "cadence-20260601-093015-manual.db"; filepath.Base(info.Path) != want {
		t.Errorf("backup name = %s, want %s", filepath.Base(info.Path), want)
	}
	if filepath.Dir(info.Path) != mgr.Dir() {
		t.Errorf("backup written to %s, want %s", filepath.Dir(info.Path), mgr.Dir())
	}
	if got := countEvents(t, info.Path); got != 2 {
		t.Errorf("backup holds %d events, want 2", got)
	}
	if info.Size == 0 {
		t.Error("backup size should be non-zero")
	}
}

func TestCreate_SameSecondGetsCounter(t *testing.T) {
	dbPath := setupTestDB(t)
	fixed := time.Date(2026, 6, 1, 9, 30, 15, 0, time.UTC)
	mgr := NewManager(dbPath, WithClock(func() time.Time { return fixed }))

	first, err := mgr.Create(ReasonPreSweep)
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	second, err := mgr.Create(ReasonPreSweep)
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if first.Path == second.Path {
		t.Fatal("two backups in the same second share a path")
	}
	if !strings.HasSuffix(second.Path, "-presweep-1.db") {
		t.Errorf("second backup = %s, want a -1 counter", filepath.Base(second.Path))
	}

	backups, err := mgr.List()
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(backups) != 2 {
		t.Errorf("List() returned %d backups, want 2", len(backups))
	}
}

func TestCreate_MissingDatabase(t *testing.T) {
	mgr := NewManager(filepath.Join(t.TempDir(), "missing.db"))
	if _, err := mgr.Create(ReasonManual); err == nil {
		t.Error("Create() expected error for a missing database")
	}
}

func TestList_NewestFirstAndIgnoresForeignFiles(t *testing.T) {
	dbPath := setupTestDB(t)
	mgr := NewManager(dbPath, WithClock(steppingClock(time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC))))

	for i := 0; i < 3; i++ {
		if _, err := mgr.Create(ReasonManual); err != nil {
			t.Fatalf("Create() error = %v", err)
		}
	}
	for _, name := range []string{"notes.txt", "cadence-garbage.db", "cadence-20260601-000000.db"} {
		if err := os.WriteFile(filepath.Join(mgr.Dir(), name), []byte("x"), 0600); err != nil {
			t.Fatal(err)
		}
	}

	backups, err := mgr.List()
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(backups) != 3 {
		t.Fatalf("List() returned %d backups, want 3", len(backups))
	}
	for i := 1; i < len(backups); i++ {
		if backups[i].Timestamp.After(backups[i-1].Timestamp) {
			t.Errorf("backups not sorted newest first: %v before %v", backups[i-1].Timestamp, backups[i].Timestamp)
		}
	}
	if backups[0].Reason != ReasonManual {
		t.Errorf("Reason = %q, want %q", backups[0].Reason, ReasonManual)
	}
}

func TestList_NoDirectory(t *testing.T) {
	mgr := NewManager(filepath.Join(t.TempDir(), "cadence.db"))
	backups, err := mgr.List()
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(backups) != 0 {
		t.Errorf("List() = %v, want empty", backups)
	}
}

func TestRotation(t *testing.T) {
	dbPath := setupTestDB(t)
	mgr := NewManager(dbPath, WithKeep(3), WithClock(steppingClock(time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC))))

	var newest Info
	for i := 0; i < 5; i++ {
		info, err := mgr.Create(ReasonPreSweep)
		if err != nil {
			t.Fatalf("Create() error = %v", err)
		}
		newest = info
	}

	backups, err := mgr.List()
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(backups) != 3 {
		t.Fatalf("rotation kept %d backups, want 3", len(backups))
	}
	if backups[0].Path != newest.Path {
		t.Errorf("newest backup %s was rotated out", filepath.Base(newest.Path))
	}
}

func TestRestore(t *testing.T) {
	dbPath := setupTestDB(t)
	mgr := NewManager(dbPath, WithClock(steppingClock(time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC))))

	snapshot, err := mgr.Create(ReasonManual)
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := db.Exec("INSERT INTO events (id, occurred_at) VALUES ('e3', 300)"); err != nil {
		t.Fatal(err)
	}
	db.Close()
	if got := countEvents(t, dbPath); got != 3 {
		t.Fatalf("setup: %d events, want 3", got)
	}

	prior, err := mgr.Restore(snapshot.Path)
	if err != nil {
		t.Fatalf("Restore() error = %v", err)
	}
	if got := countEvents(t, dbPath); got != 2 {
		t.Errorf("restored database holds %d events, want 2", got)
	}
	if prior.Reason != ReasonPreRestore {
		t.Errorf("prior.Reason = %q, want %q", prior.Reason, ReasonPreRestore)
	}
	if got := countEvents(t, prior.Path); got != 3 {
		t.Errorf("pre-restore snapshot holds %d events, want 3", got)
	}
	if _, err := os.Stat(dbPath + ".restore.tmp"); !os.IsNotExist(err) {
		t.Error("temporary restore file was left behind")
	}
}

func TestRestore_RejectsInvalidBackup(t *testing.T) {
	dbPath := setupTestDB(t)
	mgr := NewManager(dbPath)

	bogus := filepath.Join(t.TempDir(), "cadence-20260601-000000-manual.db")
	if err := os.WriteFile(bogus, []byte("definitely not sqlite"), 0600); err != nil {
		t.Fatal(err)
	}

	if _, err := mgr.Restore(bogus); err == nil {
		t.Error("Restore() expected error for an invalid backup")
	}
	if got := countEvents(t, dbPath); got != 2 {
		t.Errorf("database changed after a rejected restore: %d events", got)
	}
}

func TestRestore_MissingBackup(t *testing.T) {
	mgr := NewManager(setupTestDB(t))
	if _, err := mgr.Restore(filepath.Join(t.TempDir(), "nope.db")); err == nil {
		t.Error("Restore() expected error for a missing backup file")
	}
}

func TestParseName(t *testing.T) {
	tests := []struct {
		name       string
		wantOK     bool
		wantReason Reason
	}{
		{"cadence-20260601-093015-manual.db", true, ReasonManual},
		{"cadence-20260601-093015-presweep-2.db", true, ReasonPreSweep},
		{"cadence-20260601-093015.db", false, ""},
		{"cadence-2026-manual.db", false, ""},
		{"other-20260601-093015-manual.db", false, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, reason, ok := parseName(tt.name)
			if ok != tt.wantOK || reason != tt.wantReason {
				t.Errorf("parseName() = %q, %v, want %q, %v", reason, ok, tt.wantReason, tt.wantOK)
			}
		})
	}
}
