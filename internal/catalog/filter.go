// ABOUTME: In-memory search over a fetched catalog.
// ABOUTME: Matches name, body part and target case-insensitively.
package catalog

import (
	"strings"

	"github.com/harperreed/liftlog/internal/models"
)

// Filter returns exercises whose name, body part or target contains query.
// An empty query matches everything.
func Filter(exercises []models.CatalogExercise, query string) []models.CatalogExercise {
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return exercises
	}

	var out []models.CatalogExercise
	for _, ex := range exercises {
		fields := []string{ex.Name}
		if ex.BodyPart != nil {
			fields = append(fields, *ex.BodyPart)
		}
		if ex.Target != nil {
			fields = append(fields, *ex.Target)
		}
		for _, f := range fields {
			if strings.Contains(strings.ToLower(f), q) {
				out = append(out, ex)
				break
			}
		}
	}
	return out
}
