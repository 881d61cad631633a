package models

import (
	"fmt"
	"strings"
	"time"
)

// Category is a named tracking bucket ("button") that owns events
type Category struct {
	ID           string     `json:"id"`
	Label        string     `json:"label"`
	Emoji        string     `json:"emoji,omitempty"`
	Color        string     `json:"color,omitempty"` // hex, e.g. "#22c55e"
	DisplayOrder int        `json:"display_order"`
	CreatedAt    time.Time  `json:"created_at"`
	LastUsedAt   *time.Time `json:"last_used_at,omitempty"`
}

func (c *Category) Validate() error {
	if strings.TrimSpace(c.Label) == "" {
		return fmt.Errorf("category label cannot be empty")
	}
	if c.Color != "" && !isHexColor(c.Color) {
		return fmt.Errorf("invalid color %q (expected #RRGGBB)", c.Color)
	}
	if c.DisplayOrder < 0 {
		return fmt.Errorf("display order cannot be negative")
	}
	return nil
}

// DisplayName returns the label prefixed with the emoji when one is set
func (c Category) DisplayName() string {
	if c.Emoji == "" {
		return c.Label
	}
	return c.Emoji + " " + c.Label
}

func isHexColor(s string) bool {
	if len(s) != 7 || s[0] != '#' {
		return false
	}
	for _, r := range s[1:] {
		switch {
		case r >= '0' && r <= '9', r >= 'a' && r <= 'f', r >= 'A' && r <= 'F':
		default:
			return false
		}
	}
	return true
}
