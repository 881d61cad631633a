// Package predict turns a category's clusters into the next expected
// occurrence and keeps a per-category cache of those predictions.
package predict

import (
	"math"
	"time"

	"github.com/julianstephens/cadence/internal/circular"
	"github.com/julianstephens/cadence/internal/models"
)

const secondsPerDay = 24 * 60 * 60

// Predict returns the nearest upcoming occurrence among clusters as seen from
// now in loc. The second result is false when there is nothing to predict.
func Predict(clusters []models.Cluster, now time.Time, loc *time.Location) (models.Prediction, bool) {
	if len(clusters) == 0 {
		return models.Prediction{}, false
	}
	if loc == nil {
		loc = time.Local
	}

	local := now.In(loc)
	nowMin := circular.FractionalMinuteOfDay(local, loc)

	var today, earliest *models.Cluster
	for i := range clusters {
		c := &clusters[i]
		if earliest == nil || c.CentroidMin < earliest.CentroidMin {
			earliest = c
		}
		if c.CentroidMin > nowMin && (today == nil || c.CentroidMin < today.CentroidMin) {
			today = c
		}
	}

	chosen, dayOffset := today, 0
	if chosen == nil {
		chosen, dayOffset = earliest, 1
	}

	return models.Prediction{
		Target:      targetAt(local, dayOffset, chosen.CentroidMin, loc),
		Confidence:  chosen.Confidence,
		CentroidMin: chosen.CentroidMin,
		ComputedAt:  now,
	}, true
}

// targetAt places a centroid on the wall clock of local's date plus dayOffset.
func targetAt(local time.Time, dayOffset int, centroidMin float64, loc *time.Location) time.Time {
	secs := int(math.Round(centroidMin * 60))
	if secs >= secondsPerDay {
		secs = secondsPerDay - 1
	}
	return time.Date(local.Year(), local.Month(), local.Day()+dayOffset, 0, 0, secs, 0, loc)
}

// Countdown returns the whole hours and minutes from now until target,
// truncated to the minute. Past targets count down to zero.
func Countdown(target, now time.Time) (hours, minutes int) {
	d := target.Sub(now)
	if d <= 0 {
		return 0, 0
	}
	total := int(d / time.Minute)
	return total / 60, total % 60
}
