// ABOUTME: Exercise models for catalog browsing and set logging.
// ABOUTME: CatalogExercise comes from the remote catalog; LogRecord is a logged set.
package models

import (
	"time"
)

// CatalogExercise is one entry of the remote exercise catalog.
type CatalogExercise struct {
	ID       string  `json:"id"`
	Name     string  `json:"name"`
	BodyPart *string `json:"bodyPart,omitempty"`
	Target   *string `json:"target,omitempty"`
}

// LogRecord represents a logged exercise (sets, reps and weight).
// ID is assigned by the store on insert; zero means not yet persisted.
type LogRecord struct {
	ID           int64     `json:"id" yaml:"id"`
	ExerciseName string    `json:"exercise_name" yaml:"exercise_name"`
	Muscle       *string   `json:"muscle,omitempty" yaml:"muscle,omitempty"`
	Sets         *int      `json:"sets,omitempty" yaml:"sets,omitempty"`
	Reps         *int      `json:"reps,omitempty" yaml:"reps,omitempty"`
	Weight       *float64  `json:"weight,omitempty" yaml:"weight,omitempty"`
	LoggedAt     time.Time `json:"logged_at" yaml:"logged_at"`
}

// NewLogRecord creates an unsaved LogRecord stamped with the current time.
func NewLogRecord(exerciseName string) *LogRecord {
	return &LogRecord{
		ExerciseName: exerciseName,
		LoggedAt:     time.Now(),
	}
}

// WithMuscle sets the target muscle.
func (r *LogRecord) WithMuscle(muscle string) *LogRecord {
	r.Muscle = &muscle
	return r
}

// WithSets sets the number of sets.
func (r *LogRecord) WithSets(sets int) *LogRecord {
	r.Sets = &sets
	return r
}

// WithReps sets the number of repetitions.
func (r *LogRecord) WithReps(reps int) *LogRecord {
	r.Reps = &reps
	return r
}

// WithWeight sets the weight lifted.
func (r *LogRecord) WithWeight(weight float64) *LogRecord {
	r.Weight = &weight
	return r
}

// WithLoggedAt sets a custom logged timestamp.
func (r *LogRecord) WithLoggedAt(t time.Time) *LogRecord {
	r.LoggedAt = t
	return r
}

// Clone returns a deep copy so optional fields are not shared.
func (r LogRecord) Clone() LogRecord {
	out := r
	if r.Muscle != nil {
		m := *r.Muscle
		out.Muscle = &m
	}
	if r.Sets != nil {
		s := *r.Sets
		out.Sets = &s
	}
	if r.Reps != nil {
		n := *r.Reps
		out.Reps = &n
	}
	if r.Weight != nil {
		w := *r.Weight
		out.Weight = &w
	}
	return out
}

// Separator is a free-text marker grouping entries in the history ("Leg Day").
type Separator struct {
	ID   int64  `json:"id" yaml:"id"`
	Text string `json:"text" yaml:"text"`
}
