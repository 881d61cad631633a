package backup

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"github.com/julianstephens/cadence/internal/constants"
	"github.com/julianstephens/cadence/internal/logger"
)

const stampLayout = "20060102-150405"

// Reason tags why a snapshot was taken. It is part of the file name.
type Reason string

const (
	ReasonManual     Reason = "manual"
	ReasonPreSweep   Reason = "presweep"
	ReasonPreRestore Reason = "prerestore"
)

// Info describes one backup file.
type Info struct {
	Path      string
	Timestamp time.Time
	Reason    Reason
	Size      int64
}

// Manager snapshots and restores a SQLite database file.
type Manager struct {
	dbPath    string
	backupDir string
	keep      int
	now       func() time.Time
}

// Option configures a Manager.
type Option func(*Manager)

// WithKeep sets how many backups survive rotation.
func WithKeep(n int) Option {
	return func(m *Manager) {
		if n > 0 {
			m.keep = n
		}
	}
}

// WithClock overrides the timestamp source used for file names.
func WithClock(now func() time.Time) Option {
	return func(m *Manager) {
		if now != nil {
			m.now = now
		}
	}
}

// NewManager creates a Manager keeping backups next to dbPath.
func NewManager(dbPath string, opts ...Option) *Manager {
	m := &Manager{
		dbPath:    dbPath,
		backupDir: filepath.Join(filepath.Dir(dbPath), constants.BackupDirName),
		keep:      constants.MaxBackups,
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Dir returns the backup directory.
func (m *Manager) Dir() string {
	return m.backupDir
}

// Create snapshots the database and rotates old backups.
func (m *Manager) Create(reason Reason) (Info, error) {
	info, err := m.create(reason)
	if err != nil {
		return Info{}, err
	}
	if err := m.rotate(); err != nil {
		logger.Warn("Failed to rotate old backups", "dir", m.backupDir, "error", err)
	}
	return info, nil
}

func (m *Manager) create(reason Reason) (Info, error) {
	if _, err := os.Stat(m.dbPath); os.IsNotExist(err) {
		return Info{}, fmt.Errorf("database does not exist: %s", m.dbPath)
	}
	if err := os.MkdirAll(m.backupDir, 0700); err != nil {
		return Info{}, fmt.Errorf("failed to create backup directory: %w", err)
	}

	ts := m.now()
	path := m.pathFor(ts, reason, 0)
	for n := 1; fileExists(path); n++ {
		if n > 100 {
			return Info{}, fmt.Errorf("failed to generate unique backup filename")
		}
		path = m.pathFor(ts, reason, n)
	}

	if err := vacuumInto(m.dbPath, path); err != nil {
		return Info{}, fmt.Errorf("failed to backup database: %w", err)
	}

	st, err := os.Stat(path)
	if err != nil {
		return Info{}, err
	}
	logger.Info("Database backup created", "path", path, "reason", reason)
	return Info{Path: path, Timestamp: ts.Truncate(time.Second), Reason: reason, Size: st.Size()}, nil
}

func (m *Manager) pathFor(ts time.Time, reason Reason, n int) string {
	name := constants.BackupFilePrefix + ts.UTC().Format(stampLayout) + "-" + string(reason)
	if n > 0 {
		name += fmt.Sprintf("-%d", n)
	}
	return filepath.Join(m.backupDir, name+constants.BackupFileSuffix)
}

// vacuumInto writes a consistent copy of src to dst.
func vacuumInto(src, dst string) error {
	db, err := sql.Open("sqlite", src+"?mode=ro")
	if err != nil {
		return fmt.Errorf("failed to open source database: %w", err)
	}
	defer db.Close()

	var count int
	if err := db.QueryRow("SELECT COUNT(*) FROM sqlite_master").Scan(&count); err != nil {
		return fmt.Errorf("source database appears to be corrupted: %w", err)
	}
	if _, err := db.Exec("VACUUM INTO ?", dst); err != nil {
		return fmt.Errorf("vacuum into %s: %w", dst, err)
	}
	return nil
}

// List returns every backup, newest first. Files that do not follow the
// naming scheme are ignored.
func (m *Manager) List() ([]Info, error) {
	entries, err := os.ReadDir(m.backupDir)
	if os.IsNotExist(err) {
		return []Info{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read backup directory: %w", err)
	}

	var backups []Info
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		ts, reason, ok := parseName(entry.Name())
		if !ok {
			continue
		}
		st, err := entry.Info()
		if err != nil {
			continue
		}
		backups = append(backups, Info{
			Path:      filepath.Join(m.backupDir, entry.Name()),
			Timestamp: ts,
			Reason:    reason,
			Size:      st.Size(),
		})
	}

	sort.SliceStable(backups, func(i, j int) bool {
		if !backups[i].Timestamp.Equal(backups[j].Timestamp) {
			return backups[i].Timestamp.After(backups[j].Timestamp)
		}
		return backups[i].Path > backups[j].Path
	})
	return backups, nil
}

// parseName splits "cadence-YYYYMMDD-HHMMSS-reason[-n].db".
func parseName(name string) (time.Time, Reason, bool) {
	if !strings.HasPrefix(name, constants.BackupFilePrefix) || !strings.HasSuffix(name, constants.BackupFileSuffix) {
		return time.Time{}, "", false
	}
	rest := strings.TrimSuffix(strings.TrimPrefix(name, constants.BackupFilePrefix), constants.BackupFileSuffix)
	if len(rest) < len(stampLayout)+2 || rest[len(stampLayout)] != '-' {
		return time.Time{}, "", false
	}
	ts, err := time.Parse(stampLayout, rest[:len(stampLayout)])
	if err != nil {
		return time.Time{}, "", false
	}
	reason, _, _ := strings.Cut(rest[len(stampLayout)+1:], "-")
	if reason == "" {
		return time.Time{}, "", false
	}
	return ts, Reason(reason), true
}

func (m *Manager) rotate() error {
	backups, err := m.List()
	if err != nil {
		return err
	}
	for i := m.keep; i < len(backups); i++ {
		if err := os.Remove(backups[i].Path); err != nil {
			return fmt.Errorf("failed to remove old backup %s: %w", backups[i].Path, err)
		}
		logger.Debug("Removed old backup", "path", backups[i].Path)
	}
	return nil
}

// Restore replaces the database with backupPath. The current database is
// snapshotted first so a restore can itself be undone.
func (m *Manager) Restore(backupPath string) (prior Info, err error) {
	if _, err := os.Stat(backupPath); os.IsNotExist(err) {
		return Info{}, fmt.Errorf("backup file does not exist: %s", backupPath)
	}
	if err := verify(backupPath); err != nil {
		return Info{}, fmt.Errorf("backup file is corrupted or invalid: %w", err)
	}

	if fileExists(m.dbPath) {
		prior, err = m.create(ReasonPreRestore)
		if err != nil {
			return Info{}, fmt.Errorf("failed to backup current database before restore: %w", err)
		}
	}

	tmp := m.dbPath + ".restore.tmp"
	if err := copyFile(backupPath, tmp); err != nil {
		return prior, fmt.Errorf("failed to copy backup file: %w", err)
	}
	if err := os.Rename(tmp, m.dbPath); err != nil {
		if rmErr := os.Remove(tmp); rmErr != nil {
			logger.Warn("Failed to remove temporary restore file", "path", tmp, "error", rmErr)
		}
		return prior, fmt.Errorf("failed to restore database: %w", err)
	}

	logger.Info("Database restored", "from", backupPath)
	return prior, nil
}

func verify(path string) error {
	db, err := sql.Open("sqlite", path+"?mode=ro")
	if err != nil {
		return err
	}
	defer db.Close()

	var result string
	if err := db.QueryRow("PRAGMA integrity_check").Scan(&result); err != nil {
		return err
	}
	if result != "ok" {
		return fmt.Errorf("integrity check: %s", result)
	}
	return nil
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.OpenFile(dst, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0600)
	if err != nil {
		return err
	}
	defer out.Close()

	if _, err := out.ReadFrom(in); err != nil {
		return err
	}
	return out.Sync()
}
