// Package share converts routines to and from the two portable forms used
// for sharing: a JSON file document and a custom-scheme deep link.
package share

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/meltforce/doonemore/internal/models"
)

const (
	FileVersion     = 1
	FileExtension   = ".doroutine"
	FileContentType = "application/vnd.doonemore.routine+json"
)

// ErrCorruptFile is returned when a routine file's top-level shape is wrong
// or an item has an unknown type.
var ErrCorruptFile = errors.New("corrupt routine file")

type fileDocument struct {
	Version int    `json:"version"`
	Name    string `json:"name"`
	Items   []any  `json:"items"`
}

type fileExercise struct {
	Type     models.ItemKind         `json:"type"`
	Name     string                  `json:"name"`
	Category models.ExerciseCategory `json:"category"`
}

type fileHeader struct {
	Type models.ItemKind `json:"type"`
	Text string          `json:"text"`
}

// EncodeFile renders r as a file document. Exercise items carry only name
// and category; selected metrics are not written.
func EncodeFile(r models.Routine) ([]byte, error) {
	doc := fileDocument{Version: FileVersion, Name: r.Name, Items: []any{}}
	for _, it := range r.Items {
		switch it.Kind() {
		case models.ItemExercise:
			e, _ := it.Exercise()
			doc.Items = append(doc.Items, fileExercise{Type: models.ItemExercise, Name: e.Name, Category: e.Category})
		case models.ItemHeader:
			h, _ := it.Header()
			doc.Items = append(doc.Items, fileHeader{Type: models.ItemHeader, Text: h})
		}
	}
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encoding routine file: %w", err)
	}
	return data, nil
}

// FileName suggests a file name for r.
func FileName(r models.Routine) string {
	name := strings.Map(func(c rune) rune {
		switch c {
		case '/', '\\', ':', '*', '?', '"', '<', '>', '|':
			return '-'
		}
		return c
	}, strings.TrimSpace(r.Name))
	if name == "" {
		name = "routine"
	}
	return name + FileExtension
}

// DecodeFile parses a file document. The top level is strict; inside the
// items array a malformed exercise or header is dropped, while an unknown
// item type fails the whole document. Exercises come back with no metrics
// and the routine's denormalised name list is left empty.
func DecodeFile(data []byte) (models.Routine, error) {
	var doc struct {
		Name  *string            `json:"name"`
		Items *[]json.RawMessage `json:"items"`
	}
	if err := json.Unmarshal(data, &doc); err != nil {
		return models.Routine{}, fmt.Errorf("%w: %v", ErrCorruptFile, err)
	}
	if doc.Name == nil || doc.Items == nil {
		return models.Routine{}, fmt.Errorf("%w: missing name or items", ErrCorruptFile)
	}

	items := []models.RoutineItem{}
	for _, raw := range *doc.Items {
		kind, ok, err := fileItemKind(raw)
		if err != nil {
			return models.Routine{}, err
		}
		if !ok {
			continue
		}
		var fields struct {
			Name     *string `json:"name"`
			Category *string `json:"category"`
			Text     *string `json:"text"`
		}
		if err := json.Unmarshal(raw, &fields); err != nil {
			continue
		}
		switch kind {
		case models.ItemExercise:
			if fields.Name == nil {
				continue
			}
			category := models.DefaultCategory
			if fields.Category != nil {
				c, err := models.ParseCategory(*fields.Category)
				if err != nil {
					continue
				}
				category = c
			}
			e := models.NewExercise(*fields.Name, []models.ExerciseMetric{}, category)
			items = append(items, models.ExerciseItem(e))
		case models.ItemHeader:
			if fields.Text == nil {
				continue
			}
			items = append(items, models.HeaderItem(*fields.Text))
		default:
			return models.Routine{}, fmt.Errorf("%w: unknown item type %q", ErrCorruptFile, kind)
		}
	}

	return models.Routine{
		ID:        uuid.New(),
		Name:      *doc.Name,
		Exercises: []string{},
		Items:     items,
	}, nil
}

// fileItemKind reads an item's type. Items that are not objects or have no
// type are skipped; a type that is not a string fails the document.
func fileItemKind(raw json.RawMessage) (models.ItemKind, bool, error) {
	var head struct {
		Type json.RawMessage `json:"type"`
	}
	if err := json.Unmarshal(raw, &head); err != nil {
		return "", false, nil
	}
	if len(head.Type) == 0 || string(head.Type) == "null" {
		return "", false, nil
	}
	var kind string
	if err := json.Unmarshal(head.Type, &kind); err != nil {
		return "", false, fmt.Errorf("%w: item type %s is not a string", ErrCorruptFile, head.Type)
	}
	return models.ItemKind(kind), true, nil
}
