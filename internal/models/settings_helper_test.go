package models

import (
	"strings"
	"testing"
	"time"

	"github.com/julianstephens/cadence/internal/constants"
)

func TestMapToSettings(t *testing.T) {
	data := map[string]string{
		constants.SettingTimezone:           "Europe/London",
		constants.SettingRetentionDays:      "14",
		constants.SettingRadiusMin:          "45.5",
		constants.SettingMinNeighbors:       "4",
		constants.SettingMinEvents:          "9",
		constants.SettingHighMinMembers:     "12",
		constants.SettingHighMaxSpreadMin:   "20",
		constants.SettingMediumMinMembers:   "6",
		constants.SettingMediumMaxSpreadMin: "50",
		constants.SettingSweepIntervalHours: "6",
		"legacy_key":                        "ignored",
	}

	settings, err := MapToSettings(data)
	if err != nil {
		t.Fatalf("MapToSettings() error = %v", err)
	}

	want := Settings{
		Timezone:           "Europe/London",
		RetentionDays:      14,
		RadiusMin:          45.5,
		MinNeighbors:       4,
		MinEvents:          9,
		HighMinMembers:     12,
		HighMaxSpreadMin:   20,
		MediumMinMembers:   6,
		MediumMaxSpreadMin: 50,
		SweepIntervalHours: 6,
	}
	if settings != want {
		t.Errorf("MapToSettings() = %+v, want %+v", settings, want)
	}
}

func TestMapToSettings_InvalidValue(t *testing.T) {
	tests := []struct {
		name string
		key  string
		val  string
	}{
		{"non-numeric retention", constants.SettingRetentionDays, "a month"},
		{"non-numeric radius", constants.SettingRadiusMin, "wide"},
		{"fractional neighbors", constants.SettingMinNeighbors, "2.5"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := MapToSettings(map[string]string{tt.key: tt.val})
			if err == nil {
				t.Fatal("MapToSettings() expected error, got nil")
			}
			if !strings.Contains(err.Error(), tt.key) {
				t.Errorf("error %q should name the key %q", err, tt.key)
			}
		})
	}
}

func TestSettingsToMap_RoundTrip(t *testing.T) {
	original := DefaultSettings()
	original.RadiusMin = 37.25

	parsed, err := MapToSettings(SettingsToMap(original))
	if err != nil {
		t.Fatalf("MapToSettings() error = %v", err)
	}
	if parsed != original {
		t.Errorf("round trip = %+v, want %+v", parsed, original)
	}
}

func TestApplyDefaultSettings(t *testing.T) {
	settings := Settings{RetentionDays: 90}
	ApplyDefaultSettings(&settings)

	if settings.RetentionDays != 90 {
		t.Errorf("RetentionDays = %d, explicit value should be kept", settings.RetentionDays)
	}
	if settings.Timezone != constants.DefaultTimezone {
		t.Errorf("Timezone = %q, want %q", settings.Timezone, constants.DefaultTimezone)
	}
	if settings.MinEvents != constants.DefaultMinEvents {
		t.Errorf("MinEvents = %d, want %d", settings.MinEvents, constants.DefaultMinEvents)
	}
	if settings.MediumMaxSpreadMin != constants.DefaultMediumMaxSpreadMin {
		t.Errorf("MediumMaxSpreadMin = %v, want %v", settings.MediumMaxSpreadMin, constants.DefaultMediumMaxSpreadMin)
	}
}

func TestSettings_Validate(t *testing.T) {
	tests := []struct {
		name    string
		modify  func(*Settings)
		wantErr bool
	}{
		{"defaults are valid", func(s *Settings) {}, false},
		{"named timezone", func(s *Settings) { s.Timezone = "America/New_York" }, false},
		{"unknown timezone", func(s *Settings) { s.Timezone = "Mars/Olympus" }, true},
		{"zero retention", func(s *Settings) { s.RetentionDays = 0 }, true},
		{"zero radius", func(s *Settings) { s.RadiusMin = 0 }, true},
		{"radius of half a day", func(s *Settings) { s.RadiusMin = 720 }, false},
		{"radius beyond half a day", func(s *Settings) { s.RadiusMin = 721 }, true},
		{"zero neighbors", func(s *Settings) { s.MinNeighbors = 0 }, true},
		{"zero min events", func(s *Settings) { s.MinEvents = 0 }, true},
		{"high floor below medium floor", func(s *Settings) { s.HighMinMembers = 3 }, true},
		{"high spread wider than medium", func(s *Settings) { s.HighMaxSpreadMin = 90 }, true},
		{"negative spread", func(s *Settings) { s.MediumMaxSpreadMin = -1 }, true},
		{"zero sweep interval", func(s *Settings) { s.SweepIntervalHours = 0 }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := DefaultSettings()
			tt.modify(&s)
			err := s.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestSettings_Durations(t *testing.T) {
	s := DefaultSettings()
	if got := s.Retention(); got != 30*24*time.Hour {
		t.Errorf("Retention() = %v, want 720h", got)
	}
	if got := s.SweepInterval(); got != 24*time.Hour {
		t.Errorf("SweepInterval() = %v, want 24h", got)
	}
}
