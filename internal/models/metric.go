package models

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"
)

// ExerciseMetric is a kind of measurement an exercise is logged with. The
// string value doubles as the display label and the persisted form.
type ExerciseMetric string

const (
	MetricWeight   ExerciseMetric = "Weight"
	MetricReps     ExerciseMetric = "Reps"
	MetricTime     ExerciseMetric = "Time"
	MetricDistance ExerciseMetric = "Distance"
	MetricCalories ExerciseMetric = "Calories"
	MetricCustom   ExerciseMetric = "Custom"
)

// AllMetrics lists every metric in form order.
var AllMetrics = []ExerciseMetric{
	MetricWeight, MetricReps, MetricTime, MetricDistance, MetricCalories, MetricCustom,
}

// Label returns the human-readable name.
func (m ExerciseMetric) Label() string { return string(m) }

// Valid reports whether m is one of the known metrics.
func (m ExerciseMetric) Valid() bool {
	for _, v := range AllMetrics {
		if m == v {
			return true
		}
	}
	return false
}

// ParseMetric accepts a label or a key, case-insensitively.
func ParseMetric(s string) (ExerciseMetric, error) {
	for _, v := range AllMetrics {
		if strings.EqualFold(s, string(v)) {
			return v, nil
		}
	}
	return "", fmt.Errorf("unknown exercise metric %q", s)
}

func (m *ExerciseMetric) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	parsed, err := ParseMetric(s)
	if err != nil {
		return err
	}
	*m = parsed
	return nil
}

// ExerciseCategory is a body-region tag used for grouping in pickers.
type ExerciseCategory string

const (
	CategoryArms     ExerciseCategory = "Arms"
	CategoryLegs     ExerciseCategory = "Legs"
	CategoryChest    ExerciseCategory = "Chest"
	CategoryBack     ExerciseCategory = "Back"
	CategoryHIIT     ExerciseCategory = "HIIT"
	CategoryCardio   ExerciseCategory = "Cardio"
	CategoryCrossfit ExerciseCategory = "CrossFit"
)

// DefaultCategory is used wherever a category is missing. There is no
// "none" variant.
const DefaultCategory = CategoryChest

// AllCategories lists every category in declaration order.
var AllCategories = []ExerciseCategory{
	CategoryArms, CategoryLegs, CategoryChest, CategoryBack,
	CategoryHIIT, CategoryCardio, CategoryCrossfit,
}

func (c ExerciseCategory) Label() string { return string(c) }

func (c ExerciseCategory) Valid() bool {
	for _, v := range AllCategories {
		if c == v {
			return true
		}
	}
	return false
}

// ParseCategory accepts a label or a key, case-insensitively.
func ParseCategory(s string) (ExerciseCategory, error) {
	for _, v := range AllCategories {
		if strings.EqualFold(s, string(v)) {
			return v, nil
		}
	}
	return "", fmt.Errorf("unknown exercise category %q", s)
}

func (c *ExerciseCategory) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	parsed, err := ParseCategory(s)
	if err != nil {
		return err
	}
	*c = parsed
	return nil
}

// SortedCategories returns all categories ordered by display label.
func SortedCategories() []ExerciseCategory {
	out := make([]ExerciseCategory, len(AllCategories))
	copy(out, AllCategories)
	sort.Slice(out, func(i, j int) bool { return out[i].Label() < out[j].Label() })
	return out
}
