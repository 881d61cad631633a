// Package cluster turns a window of events into recurring time-of-day habits.
package cluster

import (
	"sort"
	"time"

	"github.com/julianstephens/cadence/internal/circular"
	"github.com/julianstephens/cadence/internal/models"
)

// Extractor derives clusters from one category's event window. It is a pure
// function of its input and safe for concurrent use.
type Extractor struct {
	cfg      Config
	loc      *time.Location
	strategy Strategy
}

// Option configures an Extractor.
type Option func(*Extractor)

// WithStrategy replaces the default density grouping.
func WithStrategy(s Strategy) Option {
	return func(e *Extractor) {
		if s != nil {
			e.strategy = s
		}
	}
}

// NewExtractor creates an Extractor projecting events into loc.
func NewExtractor(cfg Config, loc *time.Location, opts ...Option) *Extractor {
	if loc == nil {
		loc = time.Local
	}
	e := &Extractor{
		cfg:      cfg,
		loc:      loc,
		strategy: Density{},
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Config returns the configuration the extractor was built with.
func (e *Extractor) Config() Config {
	return e.cfg
}

// Location returns the timezone used for the time-of-day projection.
func (e *Extractor) Location() *time.Location {
	return e.loc
}

// Extract groups events into clusters ordered by centroid. Fewer than
// MinEvents events is not an error: the result is simply empty.
func (e *Extractor) Extract(events []models.Event) []models.Cluster {
	if len(events) == 0 || len(events) < e.cfg.MinEvents {
		return nil
	}

	points := make([]Point, len(events))
	for i, ev := range events {
		points[i] = Point{
			EventID: ev.ID,
			Minute:  float64(circular.MinuteOfDay(ev.OccurredAt, e.loc)),
		}
	}
	// fixed input order makes the grouping reproducible for the same window
	sort.Slice(points, func(i, j int) bool {
		if points[i].Minute != points[j].Minute {
			return points[i].Minute < points[j].Minute
		}
		return points[i].EventID < points[j].EventID
	})

	var clusters []models.Cluster
	for _, group := range e.strategy.Group(points, e.cfg) {
		if len(group) < e.cfg.MinNeighbors {
			continue
		}
		c, ok := e.summarize(group)
		if !ok {
			continue
		}
		clusters = append(clusters, c)
	}

	sort.SliceStable(clusters, func(i, j int) bool {
		return clusters[i].CentroidMin < clusters[j].CentroidMin
	})
	return clusters
}

func (e *Extractor) summarize(group []Point) (models.Cluster, bool) {
	minutes := make([]float64, len(group))
	ids := make([]string, len(group))
	for i, p := range group {
		minutes[i] = p.Minute
		ids[i] = p.EventID
	}

	stats, ok := circular.Summarize(minutes)
	if !ok {
		return models.Cluster{}, false
	}
	return models.Cluster{
		CentroidMin: stats.MeanMin,
		SpreadMin:   stats.StdDevMin,
		MemberIDs:   ids,
		Confidence:  e.cfg.Grading.Grade(len(group), stats.StdDevMin),
	}, true
}
