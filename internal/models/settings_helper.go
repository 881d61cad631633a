package models

import (
	"fmt"
	"strconv"
	"time"

	"github.com/julianstephens/cadence/internal/constants"
)

// DefaultSettings returns the settings a freshly initialized store starts with.
func DefaultSettings() Settings {
	return Settings{
		Timezone:           constants.DefaultTimezone,
		RetentionDays:      constants.DefaultRetentionDays,
		RadiusMin:          constants.DefaultRadiusMin,
		MinNeighbors:       constants.DefaultMinNeighbors,
		MinEvents:          constants.DefaultMinEvents,
		HighMinMembers:     constants.DefaultHighMinMembers,
		HighMaxSpreadMin:   constants.DefaultHighMaxSpreadMin,
		MediumMinMembers:   constants.DefaultMediumMinMembers,
		MediumMaxSpreadMin: constants.DefaultMediumMaxSpreadMin,
		SweepIntervalHours: constants.DefaultSweepIntervalHours,
	}
}

// MapToSettings converts a map of key-value pairs to a Settings struct.
// Unknown keys are ignored so older databases keep loading.
func MapToSettings(data map[string]string) (Settings, error) {
	settings := Settings{}

	for key, value := range data {
		var err error
		switch key {
		case constants.SettingTimezone:
			settings.Timezone = value
		case constants.SettingRetentionDays:
			settings.RetentionDays, err = strconv.Atoi(value)
		case constants.SettingRadiusMin:
			settings.RadiusMin, err = strconv.ParseFloat(value, 64)
		case constants.SettingMinNeighbors:
			settings.MinNeighbors, err = strconv.Atoi(value)
		case constants.SettingMinEvents:
			settings.MinEvents, err = strconv.Atoi(value)
		case constants.SettingHighMinMembers:
			settings.HighMinMembers, err = strconv.Atoi(value)
		case constants.SettingHighMaxSpreadMin:
			settings.HighMaxSpreadMin, err = strconv.ParseFloat(value, 64)
		case constants.SettingMediumMinMembers:
			settings.MediumMinMembers, err = strconv.Atoi(value)
		case constants.SettingMediumMaxSpreadMin:
			settings.MediumMaxSpreadMin, err = strconv.ParseFloat(value, 64)
		case constants.SettingSweepIntervalHours:
			settings.SweepIntervalHours, err = strconv.Atoi(value)
		}
		if err != nil {
			return Settings{}, fmt.Errorf("parsing %s: %w", key, err)
		}
	}
	return settings, nil
}

// SettingsToMap converts a Settings struct to a map of key-value pairs.
func SettingsToMap(settings Settings) map[string]string {
	return map[string]string{
		constants.SettingTimezone:           settings.Timezone,
		constants.SettingRetentionDays:      strconv.Itoa(settings.RetentionDays),
		constants.SettingRadiusMin:          formatFloat(settings.RadiusMin),
		constants.SettingMinNeighbors:       strconv.Itoa(settings.MinNeighbors),
		constants.SettingMinEvents:          strconv.Itoa(settings.MinEvents),
		constants.SettingHighMinMembers:     strconv.Itoa(settings.HighMinMembers),
		constants.SettingHighMaxSpreadMin:   formatFloat(settings.HighMaxSpreadMin),
		constants.SettingMediumMinMembers:   strconv.Itoa(settings.MediumMinMembers),
		constants.SettingMediumMaxSpreadMin: formatFloat(settings.MediumMaxSpreadMin),
		constants.SettingSweepIntervalHours: strconv.Itoa(settings.SweepIntervalHours),
	}
}

// ApplyDefaultSettings applies default values to missing settings.
func ApplyDefaultSettings(settings *Settings) {
	defaults := DefaultSettings()
	if settings.Timezone == "" {
		settings.Timezone = defaults.Timezone
	}
	if settings.RetentionDays == 0 {
		settings.RetentionDays = defaults.RetentionDays
	}
	if settings.RadiusMin == 0 {
		settings.RadiusMin = defaults.RadiusMin
	}
	if settings.MinNeighbors == 0 {
		settings.MinNeighbors = defaults.MinNeighbors
	}
	if settings.MinEvents == 0 {
		settings.MinEvents = defaults.MinEvents
	}
	if settings.HighMinMembers == 0 {
		settings.HighMinMembers = defaults.HighMinMembers
	}
	if settings.HighMaxSpreadMin == 0 {
		settings.HighMaxSpreadMin = defaults.HighMaxSpreadMin
	}
	if settings.MediumMinMembers == 0 {
		settings.MediumMinMembers = defaults.MediumMinMembers
	}
	if settings.MediumMaxSpreadMin == 0 {
		settings.MediumMaxSpreadMin = defaults.MediumMaxSpreadMin
	}
	if settings.SweepIntervalHours == 0 {
		settings.SweepIntervalHours = defaults.SweepIntervalHours
	}
}

// Validate checks that every knob is usable by the clustering engine.
func (s Settings) Validate() error {
	if s.Timezone != "" && s.Timezone != "Local" {
		if _, err := time.LoadLocation(s.Timezone); err != nil {
			return fmt.Errorf("invalid timezone %q: %w", s.Timezone, err)
		}
	}
	if s.RetentionDays < 1 {
		return fmt.Errorf("retention_days must be at least 1")
	}
	if s.RadiusMin <= 0 || s.RadiusMin > constants.MinutesPerDay/2 {
		return fmt.Errorf("radius_min must be in (0, %d]", constants.MinutesPerDay/2)
	}
	if s.MinNeighbors < 1 {
		return fmt.Errorf("min_neighbors must be at least 1")
	}
	if s.MinEvents < 1 {
		return fmt.Errorf("min_events must be at least 1")
	}
	if s.HighMinMembers < s.MediumMinMembers {
		return fmt.Errorf("high_min_members (%d) cannot be below medium_min_members (%d)", s.HighMinMembers, s.MediumMinMembers)
	}
	if s.HighMaxSpreadMin <= 0 || s.MediumMaxSpreadMin <= 0 {
		return fmt.Errorf("spread thresholds must be positive")
	}
	if s.HighMaxSpreadMin > s.MediumMaxSpreadMin {
		return fmt.Errorf("high_max_spread_min (%g) cannot exceed medium_max_spread_min (%g)", s.HighMaxSpreadMin, s.MediumMaxSpreadMin)
	}
	if s.SweepIntervalHours < 1 {
		return fmt.Errorf("sweep_interval_hours must be at least 1")
	}
	return nil
}

// Retention returns the retention window as a duration
func (s Settings) Retention() time.Duration {
	return time.Duration(s.RetentionDays) * 24 * time.Hour
}

// SweepInterval returns the scheduled recompute interval as a duration
func (s Settings) SweepInterval() time.Duration {
	return time.Duration(s.SweepIntervalHours) * time.Hour
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
