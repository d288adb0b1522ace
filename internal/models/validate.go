package models

import "errors"

// Validation errors returned by the save gates. The form that triggered them
// keeps its data.
var (
	ErrNameRequired     = errors.New("name is required")
	ErrMetricsRequired  = errors.New("select at least one metric")
	ErrRecordsRequired  = errors.New("add at least one exercise to the session")
	ErrExerciseRequired = errors.New("select an exercise for every entry")
	ErrSetInputRequired = errors.New("every set needs at least one value")
)

// ValidateExercise checks that e can be saved.
func ValidateExercise(e Exercise) error {
	if e.Name == "" {
		return ErrNameRequired
	}
	if len(e.SelectedMetrics) == 0 {
		return ErrMetricsRequired
	}
	return nil
}

// ValidateRoutine checks that r can be saved.
func ValidateRoutine(r Routine) error {
	if r.Name == "" {
		return ErrNameRequired
	}
	return nil
}

// ValidateSets checks that every set has at least one value.
func ValidateSets(sets []SetRecord) error {
	if len(sets) == 0 {
		return ErrSetInputRequired
	}
	for _, s := range sets {
		if !s.HasValidInput() {
			return ErrSetInputRequired
		}
	}
	return nil
}

// ValidateSession checks a logging session before it is turned into workouts.
func ValidateSession(records []ExerciseRecord) error {
	if len(records) == 0 {
		return ErrRecordsRequired
	}
	for _, r := range records {
		if r.HasValidInput() {
			continue
		}
		if r.SelectedExerciseType == "" {
			return ErrExerciseRequired
		}
		return ErrSetInputRequired
	}
	return nil
}
