package models

import (
	"encoding/json"
	"fmt"
	"slices"

	"github.com/google/uuid"
)

// ItemKind tags the two cases of RoutineItem.
type ItemKind string

const (
	ItemExercise ItemKind = "exercise"
	ItemHeader   ItemKind = "header"
)

// RoutineItem is either an embedded copy of an exercise or a section header.
// Build one with ExerciseItem or HeaderItem.
type RoutineItem struct {
	kind     ItemKind
	exercise Exercise
	header   string
}

// ExerciseItem wraps a copy of e.
func ExerciseItem(e Exercise) RoutineItem {
	return RoutineItem{kind: ItemExercise, exercise: e.Clone()}
}

// HeaderItem wraps a section label.
func HeaderItem(text string) RoutineItem {
	return RoutineItem{kind: ItemHeader, header: text}
}

func (it RoutineItem) Kind() ItemKind { return it.kind }

// Exercise returns the embedded exercise when the item is an exercise.
func (it RoutineItem) Exercise() (Exercise, bool) {
	if it.kind != ItemExercise {
		return Exercise{}, false
	}
	return it.exercise.Clone(), true
}

// Header returns the label when the item is a header.
func (it RoutineItem) Header() (string, bool) {
	if it.kind != ItemHeader {
		return "", false
	}
	return it.header, true
}

func (it RoutineItem) Equal(o RoutineItem) bool {
	if it.kind != o.kind {
		return false
	}
	switch it.kind {
	case ItemExercise:
		return it.exercise.Equal(o.exercise)
	case ItemHeader:
		return it.header == o.header
	}
	return true
}

type routineItemJSON struct {
	Type     ItemKind  `json:"type"`
	Exercise *Exercise `json:"exercise,omitempty"`
	Header   *string   `json:"header,omitempty"`
}

func (it RoutineItem) MarshalJSON() ([]byte, error) {
	switch it.kind {
	case ItemExercise:
		e := it.exercise
		return json.Marshal(routineItemJSON{Type: ItemExercise, Exercise: &e})
	case ItemHeader:
		h := it.header
		return json.Marshal(routineItemJSON{Type: ItemHeader, Header: &h})
	}
	return nil, fmt.Errorf("routine item has no kind")
}

func (it *RoutineItem) UnmarshalJSON(data []byte) error {
	var raw routineItemJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	switch raw.Type {
	case ItemExercise:
		if raw.Exercise == nil {
			return fmt.Errorf("exercise item without exercise")
		}
		*it = RoutineItem{kind: ItemExercise, exercise: *raw.Exercise}
	case ItemHeader:
		if raw.Header == nil {
			return fmt.Errorf("header item without text")
		}
		*it = RoutineItem{kind: ItemHeader, header: *raw.Header}
	default:
		return fmt.Errorf("unknown routine item type %q", raw.Type)
	}
	return nil
}

// Routine is an ordered list of exercises and headers. Items is the source
// of truth; Exercises is a denormalised list of names kept for display.
type Routine struct {
	ID        uuid.UUID     `json:"id"`
	Name      string        `json:"name"`
	Exercises []string      `json:"exercises"`
	Items     []RoutineItem `json:"items"`
}

// NewRoutine creates a routine with a fresh ID and synced exercise names.
func NewRoutine(name string, items []RoutineItem) Routine {
	r := Routine{ID: uuid.New(), Name: name, Items: slices.Clone(items)}
	r.SyncExercises()
	return r
}

// SyncExercises recomputes Exercises from Items.
func (r *Routine) SyncExercises() {
	names := []string{}
	for _, e := range r.ExerciseItems() {
		names = append(names, e.Name)
	}
	r.Exercises = names
}

// ExerciseItems returns the embedded exercises in item order.
func (r Routine) ExerciseItems() []Exercise {
	var out []Exercise
	for _, it := range r.Items {
		if e, ok := it.Exercise(); ok {
			out = append(out, e)
		}
	}
	return out
}

// Equal compares every field including ID.
func (r Routine) Equal(o Routine) bool {
	if r.ID != o.ID || r.Name != o.Name || !slices.Equal(r.Exercises, o.Exercises) {
		return false
	}
	return slices.EqualFunc(r.Items, o.Items, RoutineItem.Equal)
}
