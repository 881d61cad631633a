package sqlite

import (
	"database/sql"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"

	"github.com/julianstephens/cadence/internal/logger"
	"github.com/julianstephens/cadence/internal/migration"
	"github.com/julianstephens/cadence/internal/models"
	"github.com/julianstephens/cadence/migrations"
)

// dsnPragmas apply to every pooled connection; foreign keys back the
// category -> events cascade.
const dsnPragmas = "?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)"

type Store struct {
	path string
	db   *sql.DB
}

func NewStore(path string) *Store {
	return &Store{
		path: path,
	}
}

func (s *Store) open() error {
	db, err := sql.Open("sqlite", s.path+dsnPragmas)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	s.db = db
	return nil
}

func (s *Store) Init() error {
	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0700); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	if s.db == nil {
		if err := s.open(); err != nil {
			return err
		}
	}

	if err := s.runMigrations(); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	// Fill in any settings missing from older databases
	settings, err := s.GetSettings()
	if err != nil {
		settings = models.DefaultSettings()
	}
	models.ApplyDefaultSettings(&settings)
	if err := s.SaveSettings(settings); err != nil {
		return fmt.Errorf("failed to save default settings: %w", err)
	}

	logger.Debug("SQLite store initialized", "path", s.path)
	return nil
}

func (s *Store) Load() error {
	if s.db != nil {
		return nil
	}

	if _, err := os.Stat(s.path); os.IsNotExist(err) {
		return fmt.Errorf("storage not initialized, run 'cadence init' first")
	}

	if err := s.open(); err != nil {
		return err
	}
	return s.runner().ValidateVersion()
}

func (s *Store) Close() error {
	if s.db != nil {
		err := s.db.Close()
		s.db = nil
		return err
	}
	return nil
}

func (s *Store) runner() *migration.Runner {
	subFS, err := fs.Sub(migrations.FS, "sqlite")
	if err != nil {
		// the embedded tree is fixed at build time
		panic(fmt.Sprintf("sqlite migrations missing from build: %v", err))
	}
	return migration.NewRunner(s.db, subFS)
}

func (s *Store) runMigrations() error {
	_, err := s.runner().ApplyMigrations(nil)
	return err
}

// SchemaStatus reports the applied and newest available schema versions.
func (s *Store) SchemaStatus() (current, latest int, err error) {
	return s.runner().Status()
}

func (s *Store) GetConfigPath() string {
	return s.path
}

// GetDB returns the underlying database connection.
// Returns nil if the database has not been initialized or loaded.
func (s *Store) GetDB() *sql.DB {
	return s.db
}
