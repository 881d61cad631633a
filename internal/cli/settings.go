package cli

import (
	"fmt"
)

type SettingsCmd struct {
	List bool `help:"List current settings."`

	Timezone           *string  `help:"IANA timezone predictions are computed in, or 'Local'."`
	RetentionDays      *int     `help:"Days of events considered for clustering."`
	RadiusMin          *float64 `help:"Neighborhood radius in minutes."`
	MinNeighbors       *int     `help:"Events within the radius (including itself) that make a core event."`
	MinEvents          *int     `help:"Events required before clusters are extracted."`
	HighMinMembers     *int     `help:"Members required for high confidence."`
	HighMaxSpreadMin   *float64 `help:"Spread in minutes that high confidence must stay below."`
	MediumMinMembers   *int     `help:"Members required for medium confidence."`
	MediumMaxSpreadMin *float64 `help:"Spread in minutes that medium confidence must stay below."`
	SweepIntervalHours *int     `help:"Hours between scheduled sweeps."`
}

func (c *SettingsCmd) Run(ctx *Context) error {
	settings, err := ctx.Store.GetSettings()
	if err != nil {
		return fmt.Errorf("failed to get settings: %w", err)
	}

	if c.List {
		fmt.Println("Current Settings:")
		fmt.Printf("  Timezone:              %s\n", settings.Timezone)
		fmt.Printf("  Retention:             %d days\n", settings.RetentionDays)
		fmt.Printf("  Sweep Interval:        %d hours\n", settings.SweepIntervalHours)
		fmt.Println("\nClustering:")
		fmt.Printf("  Radius:                %g min\n", settings.RadiusMin)
		fmt.Printf("  Min Neighbors:         %d\n", settings.MinNeighbors)
		fmt.Printf("  Min Events:            %d\n", settings.MinEvents)
		fmt.Println("\nConfidence:")
		fmt.Printf("  High:                  >= %d events, spread < %g min\n", settings.HighMinMembers, settings.HighMaxSpreadMin)
		fmt.Printf("  Medium:                >= %d events, spread < %g min\n", settings.MediumMinMembers, settings.MediumMaxSpreadMin)
		return nil
	}

	updated := false
	if c.Timezone != nil {
		settings.Timezone = *c.Timezone
		updated = true
	}
	if c.RetentionDays != nil {
		settings.RetentionDays = *c.RetentionDays
		updated = true
	}
	if c.RadiusMin != nil {
		settings.RadiusMin = *c.RadiusMin
		updated = true
	}
	if c.MinNeighbors != nil {
		settings.MinNeighbors = *c.MinNeighbors
		updated = true
	}
	if c.MinEvents != nil {
		settings.MinEvents = *c.MinEvents
		updated = true
	}
	if c.HighMinMembers != nil {
		settings.HighMinMembers = *c.HighMinMembers
		updated = true
	}
	if c.HighMaxSpreadMin != nil {
		settings.HighMaxSpreadMin = *c.HighMaxSpreadMin
		updated = true
	}
	if c.MediumMinMembers != nil {
		settings.MediumMinMembers = *c.MediumMinMembers
		updated = true
	}
	if c.MediumMaxSpreadMin != nil {
		settings.MediumMaxSpreadMin = *c.MediumMaxSpreadMin
		updated = true
	}
	if c.SweepIntervalHours != nil {
		settings.SweepIntervalHours = *c.SweepIntervalHours
		updated = true
	}

	if !updated {
		fmt.Println("No changes specified. Use --list to view settings or flags to update them.")
		return nil
	}

	if err := settings.Validate(); err != nil {
		return fmt.Errorf("invalid settings: %w", err)
	}
	if err := ctx.Store.SaveSettings(settings); err != nil {
		return fmt.Errorf("failed to save settings: %w", err)
	}
	// rebuilt on next use with the new settings
	ctx.service = nil
	ctx.tracker = nil

	fmt.Println("Settings updated successfully.")
	return nil
}
