package circular

import (
	"math"
	"testing"
	"time"
)

func TestDistance(t *testing.T) {
	tests := []struct {
		name string
		a, b float64
		want float64
	}{
		{"same point", 600, 600, 0},
		{"plain difference", 480, 540, 60},
		{"across midnight", 1438, 2, 4},
		{"symmetric", 2, 1438, 4},
		{"opposite side of the clock", 0, 720, 720},
		{"unnormalized input", 1440 + 10, -10, 20},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Distance(tt.a, tt.b); math.Abs(got-tt.want) > 1e-9 {
				t.Errorf("Distance(%v, %v) = %v, want %v", tt.a, tt.b, got, tt.want)
			}
		})
	}
}

func TestNormalize(t *testing.T) {
	tests := []struct {
		in, want float64
	}{
		{0, 0},
		{1439.5, 1439.5},
		{1440, 0},
		{-1, 1439},
		{2890, 10},
	}
	for _, tt := range tests {
		if got := Normalize(tt.in); math.Abs(got-tt.want) > 1e-9 {
			t.Errorf("Normalize(%v) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestSummarize_WrapsAroundMidnight(t *testing.T) {
	s, ok := Summarize([]float64{1438, 2, 0})
	if !ok {
		t.Fatal("Summarize() ok = false, want true")
	}
	if Distance(s.MeanMin, 0) > 0.01 {
		t.Errorf("circular mean = %v, want ~0 (a linear mean would give %v)", s.MeanMin, (1438.0+2+0)/3)
	}
	if s.MeanMin < 0 || s.MeanMin >= 1440 {
		t.Errorf("circular mean %v outside [0, 1440)", s.MeanMin)
	}
	if s.StdDevMin > 3 {
		t.Errorf("spread = %v, want under 3 minutes", s.StdDevMin)
	}
}

func TestSummarize_IdenticalPointsHaveZeroSpread(t *testing.T) {
	s, ok := Summarize([]float64{450, 450, 450, 450})
	if !ok {
		t.Fatal("Summarize() ok = false")
	}
	if math.Abs(s.MeanMin-450) > 1e-6 {
		t.Errorf("mean = %v, want 450", s.MeanMin)
	}
	if s.StdDevMin > 1e-3 {
		t.Errorf("spread = %v, want 0", s.StdDevMin)
	}
}

func TestSummarize_Empty(t *testing.T) {
	if _, ok := Summarize(nil); ok {
		t.Error("Summarize(nil) ok = true, want false")
	}
}

func TestSummarize_UniformCircleHasUndefinedSpread(t *testing.T) {
	s, _ := Summarize([]float64{0, 360, 720, 1080})
	if s.Resultant > 1e-9 {
		t.Errorf("resultant = %v, want 0", s.Resultant)
	}
	if !math.IsInf(s.StdDevMin, 1) {
		t.Errorf("spread = %v, want +Inf", s.StdDevMin)
	}
}

func TestStdDevFromResultant_MatchesLinearForTightClusters(t *testing.T) {
	// For small spreads the circular deviation approaches the linear one.
	points := []float64{590, 600, 610}
	s, _ := Summarize(points)
	linear := math.Sqrt((100.0 + 0 + 100.0) / 3)
	if math.Abs(s.StdDevMin-linear) > 0.1 {
		t.Errorf("spread = %v, want close to %v", s.StdDevMin, linear)
	}
}

func TestMinuteOfDay(t *testing.T) {
	loc := time.FixedZone("UTC+2", 2*60*60)
	ts := time.Date(2026, 3, 14, 21, 58, 45, 0, time.UTC) // 23:58:45 in loc

	if got := MinuteOfDay(ts, loc); got != 1438 {
		t.Errorf("MinuteOfDay() = %d, want 1438", got)
	}
	if got := FractionalMinuteOfDay(ts, loc); math.Abs(got-1438.75) > 1e-9 {
		t.Errorf("FractionalMinuteOfDay() = %v, want 1438.75", got)
	}
}

func TestFormatClock(t *testing.T) {
	tests := []struct {
		in   float64
		want string
	}{
		{0, "00:00"},
		{855, "14:15"},
		{1439.7, "00:00"},
		{480.4, "08:00"},
	}
	for _, tt := range tests {
		if got := FormatClock(tt.in); got != tt.want {
			t.Errorf("FormatClock(%v) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
