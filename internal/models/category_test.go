package models

import "testing"

func TestCategory_Validate(t *testing.T) {
	tests := []struct {
		name     string
		category Category
		wantErr  bool
	}{
		{
			name:     "label only",
			category: Category{ID: "c1", Label: "Coffee"},
			wantErr:  false,
		},
		{
			name:     "full category",
			category: Category{ID: "c1", Label: "Coffee", Emoji: "☕", Color: "#A0522d", DisplayOrder: 2},
			wantErr:  false,
		},
		{
			name:     "blank label",
			category: Category{ID: "c1", Label: "   "},
			wantErr:  true,
		},
		{
			name:     "color without hash",
			category: Category{ID: "c1", Label: "Coffee", Color: "A0522D"},
			wantErr:  true,
		},
		{
			name:     "short color",
			category: Category{ID: "c1", Label: "Coffee", Color: "#fff"},
			wantErr:  true,
		},
		{
			name:     "non-hex color",
			category: Category{ID: "c1", Label: "Coffee", Color: "#12345g"},
			wantErr:  true,
		},
		{
			name:     "negative order",
			category: Category{ID: "c1", Label: "Coffee", DisplayOrder: -1},
			wantErr:  true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.category.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestCategory_DisplayName(t *testing.T) {
	if got := (Category{Label: "Walk"}).DisplayName(); got != "Walk" {
		t.Errorf("DisplayName() = %q, want %q", got, "Walk")
	}
	if got := (Category{Label: "Walk", Emoji: "🚶"}).DisplayName(); got != "🚶 Walk" {
		t.Errorf("DisplayName() = %q, want %q", got, "🚶 Walk")
	}
}
