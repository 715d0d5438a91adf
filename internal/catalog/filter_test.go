// ABOUTME: Tests for catalog search.
// ABOUTME: Table-driven checks of name, body part and target matching.
package catalog

import (
	"testing"

	"github.com/harperreed/liftlog/internal/models"
)

func TestFilter(t *testing.T) {
	chest, pecs, legs := "chest", "pectorals", "upper legs"
	exercises := []models.CatalogExercise{
		{ID: "1", Name: "Barbell Bench Press", BodyPart: &chest, Target: &pecs},
		{ID: "2", Name: "Barbell Full Squat", BodyPart: &legs},
		{ID: "3", Name: "Plank"},
	}

	tests := []struct {
		query string
		want  []string
	}{
		{"", []string{"1", "2", "3"}},
		{"barbell", []string{"1", "2"}},
		{"PECTORALS", []string{"1"}},
		{" legs ", []string{"2"}},
		{"curl", nil},
	}

	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			got := Filter(exercises, tt.query)
			if len(got) != len(tt.want) {
				t.Fatalf("Filter(%q) returned %d results, want %d", tt.query, len(got), len(tt.want))
			}
			for i, ex := range got {
				if ex.ID != tt.want[i] {
					t.Errorf("result %d = %s, want %s", i, ex.ID, tt.want[i])
				}
			}
		})
	}
}
