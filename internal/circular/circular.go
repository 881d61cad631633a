// Package circular implements statistics on the 24-hour time-of-day circle.
//
// Minutes since local midnight are mapped onto angles in [0, 2π) for every
// mean and variance computation and converted back to minutes only at the
// boundary, so 23:55 and 00:05 average to midnight instead of noon.
package circular

import (
	"math"
	"time"

	"github.com/julianstephens/cadence/internal/constants"
)

const (
	period = float64(constants.MinutesPerDay)
	// minResultant is the floor below which the mean direction is undefined
	minResultant = 1e-12
	// wrapEpsilon snaps values that round to the full period back to zero
	wrapEpsilon = 1e-9
)

// MinuteOfDay projects t onto whole minutes since midnight in loc, discarding the date.
func MinuteOfDay(t time.Time, loc *time.Location) int {
	local := t.In(loc)
	return local.Hour()*60 + local.Minute()
}

// FractionalMinuteOfDay is MinuteOfDay including the seconds component.
func FractionalMinuteOfDay(t time.Time, loc *time.Location) float64 {
	local := t.In(loc)
	return float64(local.Hour()*60+local.Minute()) + float64(local.Second())/60
}

// Normalize folds m into [0, 1440).
func Normalize(m float64) float64 {
	m = math.Mod(m, period)
	if m < 0 {
		m += period
	}
	if m >= period-wrapEpsilon || m < wrapEpsilon {
		return 0
	}
	return m
}

// Distance is the wrap-aware distance between two minute values:
// min(|a-b|, 1440-|a-b|).
func Distance(a, b float64) float64 {
	d := math.Abs(Normalize(a) - Normalize(b))
	return math.Min(d, period-d)
}

// ToAngle maps minutes onto radians in [0, 2π).
func ToAngle(m float64) float64 {
	return Normalize(m) / period * 2 * math.Pi
}

// FromAngle maps radians back onto minutes in [0, 1440).
func FromAngle(rad float64) float64 {
	return Normalize(rad / (2 * math.Pi) * period)
}

// Summary holds the circular moments of a set of minute values.
type Summary struct {
	MeanMin   float64 // circular mean in [0, 1440)
	StdDevMin float64 // circular standard deviation in minutes, +Inf when undefined
	Resultant float64 // mean resultant length R in [0, 1]
}

// Summarize computes the circular mean and standard deviation of minutes.
// ok is false for an empty input.
func Summarize(minutes []float64) (s Summary, ok bool) {
	if len(minutes) == 0 {
		return Summary{}, false
	}

	var sumSin, sumCos float64
	for _, m := range minutes {
		a := ToAngle(m)
		sumSin += math.Sin(a)
		sumCos += math.Cos(a)
	}
	n := float64(len(minutes))
	meanSin, meanCos := sumSin/n, sumCos/n

	r := math.Hypot(meanSin, meanCos)
	if r > 1 {
		r = 1
	}

	s.Resultant = r
	s.MeanMin = FromAngle(math.Atan2(meanSin, meanCos))
	s.StdDevMin = StdDevFromResultant(r)
	return s, true
}

// StdDevFromResultant converts a mean resultant length into a circular
// standard deviation in minutes: sqrt(-2 ln R) scaled to the day.
func StdDevFromResultant(r float64) float64 {
	if r <= minResultant {
		return math.Inf(1)
	}
	if r >= 1 {
		return 0
	}
	rad := math.Sqrt(-2 * math.Log(r))
	return rad / (2 * math.Pi) * period
}

// FormatClock renders minutes since midnight as HH:MM, rounding to the nearest minute.
func FormatClock(m float64) string {
	total := int(math.Round(Normalize(m))) % constants.MinutesPerDay
	return time.Date(0, 1, 1, total/60, total%60, 0, 0, time.UTC).Format(constants.TimeFormat)
}
