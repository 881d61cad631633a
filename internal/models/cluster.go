package models

import "time"

// Confidence grades how reliable a cluster is as a daily habit
type Confidence string

const (
	ConfidenceHigh   Confidence = "high"
	ConfidenceMedium Confidence = "medium"
	ConfidenceLow    Confidence = "low"
)

// Cluster is a group of time-of-day points believed to be one recurring habit.
// Clusters are derived on every extraction and never persisted.
type Cluster struct {
	CentroidMin float64    `json:"centroid_min"` // circular mean, [0, 1440)
	SpreadMin   float64    `json:"spread_min"`   // circular standard deviation in minutes
	MemberIDs   []string   `json:"member_ids"`
	Confidence  Confidence `json:"confidence"`
}

// Size returns the number of member events
func (c Cluster) Size() int {
	return len(c.MemberIDs)
}

// Prediction is the nearest upcoming expected occurrence of a category
type Prediction struct {
	CategoryID  string     `json:"category_id"`
	Target      time.Time  `json:"target"`
	Confidence  Confidence `json:"confidence"`
	CentroidMin float64    `json:"centroid_min"`
	ComputedAt  time.Time  `json:"computed_at"`
}
