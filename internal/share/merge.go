package share

import (
	"errors"
	"slices"

	"github.com/meltforce/doonemore/internal/models"
)

// MergeCatalog appends every incoming exercise whose name is not already in
// catalog. Existing entries are never overwritten. It returns the merged
// catalog and the exercises that were added.
func MergeCatalog(catalog, incoming []models.Exercise) (merged, added []models.Exercise) {
	merged = slices.Clone(catalog)
	for _, e := range incoming {
		if _, ok := models.FindExercise(merged, e.Name); ok {
			continue
		}
		merged = append(merged, e.Clone())
		added = append(added, e.Clone())
	}
	return merged, added
}

// Alert is the message and flag an import failure hands to the UI.
type Alert struct {
	Message string `json:"message"`
	Show    bool   `json:"show"`
}

// AlertFor maps an import error to the fixed message shown to the user.
// A nil error yields a hidden alert.
func AlertFor(err error) Alert {
	switch {
	case err == nil:
		return Alert{}
	case errors.Is(err, ErrInvalidRoutineData):
		return Alert{Message: "Invalid routine data", Show: true}
	case errors.Is(err, ErrRoutineParse):
		return Alert{Message: "Error parsing routine data", Show: true}
	case errors.Is(err, ErrCorruptFile):
		return Alert{Message: "The routine file is corrupt", Show: true}
	}
	return Alert{Message: err.Error(), Show: true}
}
