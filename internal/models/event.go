package models

import "time"

// Event is a single occurrence of a category. Events are immutable once recorded.
type Event struct {
	ID         string    `json:"id"`
	CategoryID string    `json:"category_id"`
	OccurredAt time.Time `json:"occurred_at"` // second resolution
	CreatedAt  time.Time `json:"created_at"`
}
