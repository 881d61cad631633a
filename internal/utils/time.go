package utils

import (
	"fmt"
	"math"
	"time"

	"github.com/julianstephens/cadence/internal/constants"
	"github.com/julianstephens/cadence/internal/models"
)

// LoadLocation loads a timezone location from an IANA timezone name.
// If the timezone is "Local" or empty, it returns the system's local timezone.
func LoadLocation(timezone string) (*time.Location, error) {
	if timezone == "" || timezone == "Local" {
		return time.Local, nil
	}
	return time.LoadLocation(timezone)
}

// LocationFromSettings resolves the engine timezone from settings.
func LocationFromSettings(settings models.Settings) (*time.Location, error) {
	loc, err := LoadLocation(settings.Timezone)
	if err != nil {
		return nil, fmt.Errorf("invalid timezone %q: %w", settings.Timezone, err)
	}
	return loc, nil
}

// NowInTimezone returns the current time in the specified timezone.
func NowInTimezone(timezone string) (time.Time, error) {
	loc, err := LoadLocation(timezone)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid timezone %q: %w", timezone, err)
	}
	return time.Now().In(loc), nil
}

// ParseOccurredAt parses a user-supplied event timestamp. RFC 3339 is tried
// first, then "YYYY-MM-DD HH:MM" and bare "HH:MM" (today) in loc.
func ParseOccurredAt(value string, now time.Time, loc *time.Location) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, value); err == nil {
		return t, nil
	}
	if t, err := time.ParseInLocation(constants.DateFormat+" "+constants.TimeFormat, value, loc); err == nil {
		return t, nil
	}
	tod, err := time.Parse(constants.TimeFormat, value)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid time %q (expected RFC3339, %q or %q)", value, "YYYY-MM-DD HH:MM", "HH:MM")
	}
	local := now.In(loc)
	return time.Date(local.Year(), local.Month(), local.Day(), tod.Hour(), tod.Minute(), 0, 0, loc), nil
}

// FormatCountdown renders a whole-minute countdown as "4h 15m" or "15m".
func FormatCountdown(hours, minutes int) string {
	if hours == 0 {
		return fmt.Sprintf("%dm", minutes)
	}
	return fmt.Sprintf("%dh %dm", hours, minutes)
}

// FormatSpread renders a cluster spread; an unbounded spread shows as "n/a".
func FormatSpread(spreadMin float64) string {
	if math.IsInf(spreadMin, 1) || math.IsNaN(spreadMin) {
		return "n/a"
	}
	return fmt.Sprintf("±%.0fm", spreadMin)
}

// ValidateTimezone checks if the timezone name is valid.
func ValidateTimezone(timezone string) bool {
	_, err := LoadLocation(timezone)
	return err == nil
}
