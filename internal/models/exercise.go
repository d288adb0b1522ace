package models

import (
	"encoding/json"
	"slices"
	"sort"

	"github.com/google/uuid"
)

// Exercise is a user-defined exercise in the catalog. Routines and workouts
// refer to it by Name, not ID.
type Exercise struct {
	ID              uuid.UUID        `json:"id"`
	Name            string           `json:"name"`
	SelectedMetrics []ExerciseMetric `json:"selectedMetrics"`
	Category        ExerciseCategory `json:"category"`
}

// NewExercise creates an exercise with a fresh ID.
func NewExercise(name string, metrics []ExerciseMetric, category ExerciseCategory) Exercise {
	return Exercise{
		ID:              uuid.New(),
		Name:            name,
		SelectedMetrics: slices.Clone(metrics),
		Category:        category,
	}
}

// UnmarshalJSON falls back to DefaultCategory when the category is absent
// and assigns a fresh ID when there is none.
func (e *Exercise) UnmarshalJSON(data []byte) error {
	type plain Exercise
	p := plain{Category: DefaultCategory}
	if err := json.Unmarshal(data, &p); err != nil {
		return err
	}
	if p.Category == "" {
		p.Category = DefaultCategory
	}
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	*e = Exercise(p)
	return nil
}

// Equal compares every field including ID.
func (e Exercise) Equal(o Exercise) bool {
	return e.ID == o.ID &&
		e.Name == o.Name &&
		e.Category == o.Category &&
		slices.Equal(e.SelectedMetrics, o.SelectedMetrics)
}

// HasMetric reports whether m is among the selected metrics.
func (e Exercise) HasMetric(m ExerciseMetric) bool {
	return slices.Contains(e.SelectedMetrics, m)
}

// Clone returns a copy that shares no slices with e.
func (e Exercise) Clone() Exercise {
	e.SelectedMetrics = slices.Clone(e.SelectedMetrics)
	return e
}

// FindExercise returns the first exercise with exactly the given name.
func FindExercise(exercises []Exercise, name string) (Exercise, bool) {
	for _, e := range exercises {
		if e.Name == name {
			return e, true
		}
	}
	return Exercise{}, false
}

// SortExercises orders exercises by category label, then by name.
func SortExercises(exercises []Exercise) {
	sort.SliceStable(exercises, func(i, j int) bool {
		a, b := exercises[i], exercises[j]
		if a.Category != b.Category {
			return a.Category.Label() < b.Category.Label()
		}
		return a.Name < b.Name
	})
}

// CategoryGroup is one section of an exercise picker.
type CategoryGroup struct {
	Category  ExerciseCategory `json:"category"`
	Exercises []Exercise       `json:"exercises"`
}

// GroupByCategory buckets exercises into categories ordered by label.
// Empty categories are left out.
func GroupByCategory(exercises []Exercise) []CategoryGroup {
	byCat := make(map[ExerciseCategory][]Exercise)
	for _, e := range exercises {
		byCat[e.Category] = append(byCat[e.Category], e)
	}
	var groups []CategoryGroup
	for _, c := range SortedCategories() {
		list, ok := byCat[c]
		if !ok {
			continue
		}
		sort.SliceStable(list, func(i, j int) bool { return list[i].Name < list[j].Name })
		groups = append(groups, CategoryGroup{Category: c, Exercises: list})
	}
	return groups
}
