package cluster

import (
	"github.com/julianstephens/cadence/internal/constants"
	"github.com/julianstephens/cadence/internal/models"
)

// Config holds the clustering knobs.
type Config struct {
	RadiusMin    float64 // neighborhood radius, inclusive
	MinNeighbors int     // neighbors required for a core point, counting the point itself
	MinEvents    int     // below this many events extraction yields no clusters
	Grading      Thresholds
}

// Thresholds decide the confidence grade of a cluster from its size and spread.
type Thresholds struct {
	HighMinMembers     int
	HighMaxSpreadMin   float64
	MediumMinMembers   int
	MediumMaxSpreadMin float64
}

// DefaultConfig returns the stock clustering configuration.
func DefaultConfig() Config {
	return Config{
		RadiusMin:    constants.DefaultRadiusMin,
		MinNeighbors: constants.DefaultMinNeighbors,
		MinEvents:    constants.DefaultMinEvents,
		Grading: Thresholds{
			HighMinMembers:     constants.DefaultHighMinMembers,
			HighMaxSpreadMin:   constants.DefaultHighMaxSpreadMin,
			MediumMinMembers:   constants.DefaultMediumMinMembers,
			MediumMaxSpreadMin: constants.DefaultMediumMaxSpreadMin,
		},
	}
}

// ConfigFromSettings builds a Config from persisted settings, falling back to
// defaults for anything unset.
func ConfigFromSettings(s models.Settings) Config {
	models.ApplyDefaultSettings(&s)
	return Config{
		RadiusMin:    s.RadiusMin,
		MinNeighbors: s.MinNeighbors,
		MinEvents:    s.MinEvents,
		Grading: Thresholds{
			HighMinMembers:     s.HighMinMembers,
			HighMaxSpreadMin:   s.HighMaxSpreadMin,
			MediumMinMembers:   s.MediumMinMembers,
			MediumMaxSpreadMin: s.MediumMaxSpreadMin,
		},
	}
}

// Grade classifies a cluster. Spread limits are exclusive; member floors inclusive.
func (t Thresholds) Grade(members int, spreadMin float64) models.Confidence {
	if members >= t.HighMinMembers && spreadMin < t.HighMaxSpreadMin {
		return models.ConfidenceHigh
	}
	if members >= t.MediumMinMembers && spreadMin < t.MediumMaxSpreadMin {
		return models.ConfidenceMedium
	}
	return models.ConfidenceLow
}
