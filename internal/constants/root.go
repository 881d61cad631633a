package constants

import "time"

const (
	AppName            = "cadence"
	DefaultKeyringUser = "database-connection"
	DefaultConfigPath  = "~/.config/cadence/cadence.db"
	Version            = "v0.3.0"

	// DateFormat is the standard date format used throughout the application (YYYY-MM-DD)
	DateFormat = "2006-01-02"

	// TimeFormat is the standard time-of-day format used throughout the application (HH:MM)
	TimeFormat = "15:04"

	// EnvConnectionString holds a PostgreSQL connection string when one is not passed via --config
	EnvConnectionString = "CADENCE_DB_CONNECTION"

	// MinutesPerDay is the length of the time-of-day circle
	MinutesPerDay = 1440

	// Backup constants
	MaxBackups       = 14
	BackupDirName    = "backups"
	BackupFilePrefix = "cadence-"
	BackupFileSuffix = ".db"

	// Sweep constants
	SweepLockfileName = "cadence-sweep.lock"
	SweepParallelism  = 4
	SweepExecutable   = "cadence"

	// RecomputeAttempts bounds how often a reader re-runs a recompute that
	// finished behind a newer invalidation
	RecomputeAttempts = 3

	// ShutdownGrace is how long the MCP server waits for an in-flight sweep on exit
	ShutdownGrace = 5 * time.Second
)
