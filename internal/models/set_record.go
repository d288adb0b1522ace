package models

import (
	"encoding/json"

	"github.com/google/uuid"
)

// SetRecord is one logged set. Every field is free text; a nil field means
// the value was never entered and its input row is hidden.
type SetRecord struct {
	ID          uuid.UUID `json:"id"`
	Weight      *string   `json:"weight,omitempty"`
	Reps        *string   `json:"reps,omitempty"`
	ElapsedTime *string   `json:"elapsedTime,omitempty"`
	Distance    *string   `json:"distance,omitempty"`
	Calories    *string   `json:"calories,omitempty"`
	Custom      *string   `json:"custom,omitempty"`
}

// NewSetRecord returns a blank set with a fresh ID and no fields present.
func NewSetRecord() SetRecord {
	return SetRecord{ID: uuid.New()}
}

// UnmarshalJSON assigns a fresh ID when the wire form has none.
func (s *SetRecord) UnmarshalJSON(data []byte) error {
	type plain SetRecord
	var p plain
	if err := json.Unmarshal(data, &p); err != nil {
		return err
	}
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	*s = SetRecord(p)
	return nil
}

// NewSetRecordFor returns a blank set whose present fields follow metrics,
// each holding an empty string.
func NewSetRecordFor(metrics []ExerciseMetric) SetRecord {
	s := NewSetRecord()
	for _, m := range metrics {
		s.Set(m, "")
	}
	return s
}

// StringPtr returns a pointer to v.
func StringPtr(v string) *string { return &v }

func (s *SetRecord) field(m ExerciseMetric) **string {
	switch m {
	case MetricWeight:
		return &s.Weight
	case MetricReps:
		return &s.Reps
	case MetricTime:
		return &s.ElapsedTime
	case MetricDistance:
		return &s.Distance
	case MetricCalories:
		return &s.Calories
	case MetricCustom:
		return &s.Custom
	}
	return nil
}

// Get returns the field for m, nil when absent.
func (s SetRecord) Get(m ExerciseMetric) *string {
	if f := s.field(m); f != nil {
		return *f
	}
	return nil
}

// Set stores v in the field for m, marking it present.
func (s *SetRecord) Set(m ExerciseMetric, v string) {
	if f := s.field(m); f != nil {
		*f = StringPtr(v)
	}
}

// Clear marks the field for m absent.
func (s *SetRecord) Clear(m ExerciseMetric) {
	if f := s.field(m); f != nil {
		*f = nil
	}
}

// Fields lists the metrics whose fields are present, in form order.
func (s SetRecord) Fields() []ExerciseMetric {
	var out []ExerciseMetric
	for _, m := range AllMetrics {
		if s.Get(m) != nil {
			out = append(out, m)
		}
	}
	return out
}

// HasValidInput reports whether at least one field is present. This gates
// the save action of the logging and edit forms.
func (s SetRecord) HasValidInput() bool {
	for _, m := range AllMetrics {
		if s.Get(m) != nil {
			return true
		}
	}
	return false
}

// Blank returns a new set with a fresh ID and the same present fields as s,
// all emptied.
func (s SetRecord) Blank() SetRecord {
	return NewSetRecordFor(s.Fields())
}

// Clone returns a copy whose fields do not alias s.
func (s SetRecord) Clone() SetRecord {
	out := SetRecord{ID: s.ID}
	for _, m := range AllMetrics {
		if v := s.Get(m); v != nil {
			out.Set(m, *v)
		}
	}
	return out
}

// Equal compares IDs and fields; nil and "" are different.
func (s SetRecord) Equal(o SetRecord) bool {
	if s.ID != o.ID {
		return false
	}
	for _, m := range AllMetrics {
		a, b := s.Get(m), o.Get(m)
		if (a == nil) != (b == nil) {
			return false
		}
		if a != nil && *a != *b {
			return false
		}
	}
	return true
}

// withSetIDs returns a copy of sets in which every set has its own ID.
// Missing or repeated IDs are replaced.
func withSetIDs(sets []SetRecord) []SetRecord {
	out := cloneSets(sets)
	seen := make(map[uuid.UUID]bool, len(out))
	for i := range out {
		if out[i].ID == uuid.Nil || seen[out[i].ID] {
			out[i].ID = uuid.New()
		}
		seen[out[i].ID] = true
	}
	return out
}

func cloneSets(sets []SetRecord) []SetRecord {
	if sets == nil {
		return nil
	}
	out := make([]SetRecord, len(sets))
	for i, s := range sets {
		out[i] = s.Clone()
	}
	return out
}

func setsEqual(a, b []SetRecord) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if !a[i].Equal(b[i]) {
			return false
		}
	}
	return true
}
