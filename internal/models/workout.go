package models

import (
	"encoding/json"
	"sort"
	"time"

	"github.com/google/uuid"
)

// ExerciseRecord is the in-progress draft for one exercise in a logging
// session. It is never persisted on its own.
type ExerciseRecord struct {
	ID                   uuid.UUID   `json:"id"`
	SelectedExerciseType string      `json:"selectedExerciseType"`
	SetRecords           []SetRecord `json:"setRecords"`
	ShowHistoricalData   bool        `json:"showHistoricalData"`
}

// NewExerciseRecord starts a draft with one blank set.
func NewExerciseRecord() ExerciseRecord {
	return ExerciseRecord{
		ID:                 uuid.New(),
		SetRecords:         []SetRecord{NewSetRecord()},
		ShowHistoricalData: true,
	}
}

// UnmarshalJSON assigns a fresh ID when the wire form has none. A missing
// showHistoricalData defaults to true like a new draft.
func (r *ExerciseRecord) UnmarshalJSON(data []byte) error {
	type plain ExerciseRecord
	p := plain{ShowHistoricalData: true}
	if err := json.Unmarshal(data, &p); err != nil {
		return err
	}
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	*r = ExerciseRecord(p)
	return nil
}

// SelectExercise points the draft at e and resets the sets to a single
// blank one shaped by e's metrics.
func (r *ExerciseRecord) SelectExercise(e Exercise) {
	r.SelectedExerciseType = e.Name
	r.SetRecords = []SetRecord{NewSetRecordFor(e.SelectedMetrics)}
}

// AddSet appends a blank set with the same present fields as the last one.
func (r *ExerciseRecord) AddSet() SetRecord {
	next := NewSetRecord()
	if n := len(r.SetRecords); n > 0 {
		next = r.SetRecords[n-1].Blank()
	}
	r.SetRecords = append(r.SetRecords, next)
	return next
}

// RemoveSet deletes the set with the given ID. The last remaining set is
// never removed.
func (r *ExerciseRecord) RemoveSet(id uuid.UUID) bool {
	if len(r.SetRecords) <= 1 {
		return false
	}
	for i, s := range r.SetRecords {
		if s.ID == id {
			r.SetRecords = append(r.SetRecords[:i], r.SetRecords[i+1:]...)
			return true
		}
	}
	return false
}

// HasValidInput reports whether an exercise is chosen and every set has at
// least one field present.
func (r ExerciseRecord) HasValidInput() bool {
	if r.SelectedExerciseType == "" || len(r.SetRecords) == 0 {
		return false
	}
	for _, s := range r.SetRecords {
		if !s.HasValidInput() {
			return false
		}
	}
	return true
}

// Workout is a saved record of sets performed for one exercise. ExerciseType
// is a snapshot of the exercise name at save time.
type Workout struct {
	ID           uuid.UUID   `json:"id"`
	ExerciseType string      `json:"exerciseType"`
	Sets         []SetRecord `json:"sets"`
	Timestamp    time.Time   `json:"timestamp"`
}

// NewWorkout freezes a draft into a workout stamped at the given instant.
// Every set ends up with its own ID.
func NewWorkout(r ExerciseRecord, at time.Time) Workout {
	return Workout{
		ID:           uuid.New(),
		ExerciseType: r.SelectedExerciseType,
		Sets:         withSetIDs(r.SetRecords),
		Timestamp:    at.UTC(),
	}
}

// Equal compares every field including ID; timestamps compare as instants.
func (w Workout) Equal(o Workout) bool {
	return w.ID == o.ID &&
		w.ExerciseType == o.ExerciseType &&
		w.Timestamp.Equal(o.Timestamp) &&
		setsEqual(w.Sets, o.Sets)
}

// WithSets returns w with its sets replaced by a copy of sets in which
// every set has its own ID.
func (w Workout) WithSets(sets []SetRecord) Workout {
	w.Sets = withSetIDs(sets)
	return w
}

// Clone returns a copy whose sets do not alias w.
func (w Workout) Clone() Workout {
	w.Sets = cloneSets(w.Sets)
	return w
}

// WorkoutsFor returns the workouts logged under exactly the given exercise
// name, newest first.
func WorkoutsFor(workouts []Workout, exerciseName string) []Workout {
	var out []Workout
	for _, w := range workouts {
		if w.ExerciseType == exerciseName {
			out = append(out, w)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Timestamp.After(out[j].Timestamp) })
	return out
}

// MostRecentWorkout finds the latest workout whose ExerciseType equals the
// name. Renaming an exercise orphans its earlier workouts.
func MostRecentWorkout(workouts []Workout, exerciseName string) (Workout, bool) {
	var latest Workout
	found := false
	for _, w := range workouts {
		if w.ExerciseType != exerciseName {
			continue
		}
		if !found || w.Timestamp.After(latest.Timestamp) {
			latest = w
			found = true
		}
	}
	return latest, found
}
