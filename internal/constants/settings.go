package constants

const (
	// Engine settings keys
	SettingTimezone           = "timezone"
	SettingRetentionDays      = "retention_days"
	SettingRadiusMin          = "radius_min"
	SettingMinNeighbors       = "min_neighbors"
	SettingMinEvents          = "min_events"
	SettingHighMinMembers     = "high_min_members"
	SettingHighMaxSpreadMin   = "high_max_spread_min"
	SettingMediumMinMembers   = "medium_min_members"
	SettingMediumMaxSpreadMin = "medium_max_spread_min"
	SettingSweepIntervalHours = "sweep_interval_hours"

	// Default Settings Values
	DefaultTimezone           = "Local" // Use system local timezone by default
	DefaultRetentionDays      = 30
	DefaultRadiusMin          = 60.0
	DefaultMinNeighbors       = 3
	DefaultMinEvents          = 7
	DefaultHighMinMembers     = 10
	DefaultHighMaxSpreadMin   = 30.0
	DefaultMediumMinMembers   = 5
	DefaultMediumMaxSpreadMin = 60.0
	DefaultSweepIntervalHours = 24
)
