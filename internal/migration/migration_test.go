package migration

import (
	"database/sql"
	"path/filepath"
	"strings"
	"testing"
	"testing/fstest"

	_ "modernc.org/sqlite"
)

func setupTestDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite", filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("failed to create test database: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func migrationFS(files map[string]string) fstest.MapFS {
	fsys := fstest.MapFS{}
	for name, content := range files {
		fsys[name] = &fstest.MapFile{Data: []byte(content)}
	}
	return fsys
}

func tableExists(t *testing.T, db *sql.DB, name string) bool {
	t.Helper()
	var count int
	if err := db.QueryRow("SELECT COUNT(*) FROM sqlite_master WHERE type='table' AND name = ?", name).Scan(&count); err != nil {
		t.Fatalf("query failed: %v", err)
	}
	return count == 1
}

func TestGetCurrentVersion(t *testing.T) {
	db := setupTestDB(t)
	runner := NewRunner(db, migrationFS(map[string]string{
		"001_init.sql": "CREATE TABLE categories (id TEXT);",
	}))

	version, err := runner.GetCurrentVersion()
	if err != nil {
		t.Fatalf("GetCurrentVersion failed: %v", err)
	}
	if version != 0 {
		t.Errorf("expected version 0, got %d", version)
	}

	if err := runner.SetVersion(5); err != nil {
		t.Fatalf("SetVersion failed: %v", err)
	}
	if err := runner.SetVersion(6); err != nil {
		t.Fatalf("SetVersion failed: %v", err)
	}

	version, err = runner.GetCurrentVersion()
	if err != nil {
		t.Fatalf("GetCurrentVersion failed: %v", err)
	}
	if version != 6 {
		t.Errorf("expected version 6, got %d", version)
	}
}

func TestReadMigrationFiles(t *testing.T) {
	runner := NewRunner(setupTestDB(t), migrationFS(map[string]string{
		"003_event_index.sql":   "CREATE INDEX idx ON events (category_id);",
		"001_init.sql":          "CREATE TABLE categories (id TEXT);",
		"002_events.sql":        "CREATE TABLE events (id TEXT, category_id TEXT);",
		"README.md":             "not a migration",
		"004_last_used_at.sqlx": "ignored",
	}))

	migrations, err := runner.ReadMigrationFiles()
	if err != nil {
		t.Fatalf("ReadMigrationFiles failed: %v", err)
	}
	if len(migrations) != 3 {
		t.Fatalf("expected 3 migrations, got %d", len(migrations))
	}

	wantNames := []string{"init", "events", "event_index"}
	for i, m := range migrations {
		if m.Version != i+1 || m.Name != wantNames[i] {
			t.Errorf("migration %d = (%d, %q), want (%d, %q)", i, m.Version, m.Name, i+1, wantNames[i])
		}
	}
}

func TestReadMigrationFiles_Invalid(t *testing.T) {
	tests := []struct {
		name    string
		files   map[string]string
		wantErr string
	}{
		{
			name:    "missing underscore",
			files:   map[string]string{"001init.sql": "SELECT 1;"},
			wantErr: "invalid migration filename",
		},
		{
			name:    "version zero",
			files:   map[string]string{"000_init.sql": "SELECT 1;"},
			wantErr: "version must be at least 1",
		},
		{
			name:    "non-numeric version",
			files:   map[string]string{"abc_init.sql": "SELECT 1;"},
			wantErr: "invalid version number",
		},
		{
			name: "duplicate version",
			files: map[string]string{
				"001_init.sql":  "SELECT 1;",
				"001_other.sql": "SELECT 2;",
			},
			wantErr: "duplicate migration version",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			runner := NewRunner(setupTestDB(t), migrationFS(tt.files))
			_, err := runner.ReadMigrationFiles()
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("ReadMigrationFiles() error = %v, want it to contain %q", err, tt.wantErr)
			}
		})
	}
}

func TestApplyMigrations(t *testing.T) {
	db := setupTestDB(t)
	fsys := migrationFS(map[string]string{
		"001_init.sql":   "CREATE TABLE categories (id TEXT PRIMARY KEY, label TEXT);",
		"002_events.sql": "CREATE TABLE events (id TEXT PRIMARY KEY, category_id TEXT, occurred_at INTEGER);",
	})
	runner := NewRunner(db, fsys)

	var messages []string
	count, err := runner.ApplyMigrations(func(msg string) { messages = append(messages, msg) })
	if err != nil {
		t.Fatalf("ApplyMigrations failed: %v", err)
	}
	if count != 2 {
		t.Errorf("expected 2 migrations applied, got %d", count)
	}
	if len(messages) == 0 {
		t.Error("expected progress messages")
	}
	if !tableExists(t, db, "categories") || !tableExists(t, db, "events") {
		t.Error("migrations did not create both tables")
	}

	// a second run is a no-op
	count, err = runner.ApplyMigrations(nil)
	if err != nil {
		t.Fatalf("ApplyMigrations (2nd) failed: %v", err)
	}
	if count != 0 {
		t.Errorf("expected 0 migrations on second run, got %d", count)
	}

	// a new file is picked up incrementally
	fsys["003_index.sql"] = &fstest.MapFile{Data: []byte("CREATE INDEX idx_events_category ON events (category_id, occurred_at);")}
	count, err = runner.ApplyMigrations(nil)
	if err != nil {
		t.Fatalf("ApplyMigrations (3rd) failed: %v", err)
	}
	if count != 1 {
		t.Errorf("expected 1 incremental migration, got %d", count)
	}

	current, latest, err := runner.Status()
	if err != nil {
		t.Fatalf("Status failed: %v", err)
	}
	if current != 3 || latest != 3 {
		t.Errorf("Status() = %d, %d, want 3, 3", current, latest)
	}
}

func TestMigrationRollbackOnError(t *testing.T) {
	db := setupTestDB(t)
	runner := NewRunner(db, migrationFS(map[string]string{
		"001_init.sql": `
			CREATE TABLE categories (id TEXT PRIMARY KEY);
			THIS IS INVALID SQL;
		`,
	}))

	if _, err := runner.ApplyMigrations(nil); err == nil {
		t.Fatal("ApplyMigrations should have failed with invalid SQL")
	}

	version, err := runner.GetCurrentVersion()
	if err != nil {
		t.Fatalf("GetCurrentVersion failed: %v", err)
	}
	if version != 0 {
		t.Errorf("expected version 0 after failed migration, got %d", version)
	}
	if tableExists(t, db, "categories") {
		t.Error("table should not exist after failed migration")
	}
}

func TestValidateVersionNewerDatabase(t *testing.T) {
	runner := NewRunner(setupTestDB(t), migrationFS(map[string]string{
		"001_init.sql": "CREATE TABLE categories (id TEXT);",
	}))

	if err := runner.SetVersion(10); err != nil {
		t.Fatalf("SetVersion failed: %v", err)
	}
	if err := runner.ValidateVersion(); err == nil {
		t.Fatal("ValidateVersion should have failed with newer database version")
	}
	if _, err := runner.ApplyMigrations(nil); err == nil {
		t.Fatal("ApplyMigrations should have failed with newer database version")
	}
}
