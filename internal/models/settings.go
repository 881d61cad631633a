package models

// Settings represents application-wide engine settings
type Settings struct {
	Timezone           string  `json:"timezone"`              // IANA timezone name (e.g. "Europe/London", or "Local" for system timezone)
	RetentionDays      int     `json:"retention_days"`        // trailing window of events considered for clustering
	RadiusMin          float64 `json:"radius_min"`            // neighborhood radius in minutes
	MinNeighbors       int     `json:"min_neighbors"`         // neighbors (including self) required for a core point
	MinEvents          int     `json:"min_events"`            // events required before extraction is attempted
	HighMinMembers     int     `json:"high_min_members"`      // members required for a HIGH grade
	HighMaxSpreadMin   float64 `json:"high_max_spread_min"`   // spread must be strictly below this for HIGH
	MediumMinMembers   int     `json:"medium_min_members"`    // members required for a MEDIUM grade
	MediumMaxSpreadMin float64 `json:"medium_max_spread_min"` // spread must be strictly below this for MEDIUM
	SweepIntervalHours int     `json:"sweep_interval_hours"`  // scheduled recompute interval
}
