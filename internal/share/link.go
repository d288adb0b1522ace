package share

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/meltforce/doonemore/internal/models"
)

const (
	LinkScheme = "doonemorefitness"
	LinkHost   = "routine"
	LinkParam  = "data"
)

var (
	// ErrInvalidRoutineData covers a link with the wrong scheme or host, a
	// missing data parameter, or a payload of the wrong shape.
	ErrInvalidRoutineData = errors.New("invalid routine data")
	// ErrRoutineParse means the data parameter is not valid JSON.
	ErrRoutineParse = errors.New("error parsing routine data")
)

type linkPayload struct {
	Name      string         `json:"name"`
	Exercises []linkExercise `json:"exercises"`
	Items     []linkItem     `json:"items"`
}

type linkExercise struct {
	Name            string                  `json:"name"`
	SelectedMetrics []models.ExerciseMetric `json:"selectedMetrics"`
	Category        models.ExerciseCategory `json:"category"`
}

type linkItem struct {
	Type     models.ItemKind         `json:"type"`
	Name     string                  `json:"name,omitempty"`
	Category models.ExerciseCategory `json:"category,omitempty"`
	Text     *string                 `json:"text,omitempty"`
}

// EncodeLink renders r as a deep link. Each distinct exercise name appears
// once in the exercises array, with its metrics.
func EncodeLink(r models.Routine) (string, error) {
	p := linkPayload{Name: r.Name, Exercises: []linkExercise{}, Items: []linkItem{}}
	seen := map[string]bool{}
	for _, it := range r.Items {
		switch it.Kind() {
		case models.ItemExercise:
			e, _ := it.Exercise()
			p.Items = append(p.Items, linkItem{Type: models.ItemExercise, Name: e.Name, Category: e.Category})
			if seen[e.Name] {
				continue
			}
			seen[e.Name] = true
			metrics := e.SelectedMetrics
			if metrics == nil {
				metrics = []models.ExerciseMetric{}
			}
			p.Exercises = append(p.Exercises, linkExercise{Name: e.Name, SelectedMetrics: metrics, Category: e.Category})
		case models.ItemHeader:
			h, _ := it.Header()
			p.Items = append(p.Items, linkItem{Type: models.ItemHeader, Text: &h})
		}
	}
	data, err := json.Marshal(p)
	if err != nil {
		return "", fmt.Errorf("encoding routine link: %w", err)
	}
	escaped := strings.ReplaceAll(url.QueryEscape(string(data)), "+", "%20")
	return LinkScheme + "://" + LinkHost + "?" + LinkParam + "=" + escaped, nil
}

// ParseLink decodes a deep link into a routine and the exercises it carries.
// Exercises with missing fields or unknown metric or category strings are
// dropped, as are items naming an exercise that did not survive. The routine
// and every exercise get fresh IDs.
func ParseLink(link string) (models.Routine, []models.Exercise, error) {
	u, err := url.Parse(link)
	if err != nil || u.Scheme != LinkScheme || u.Host != LinkHost {
		return models.Routine{}, nil, ErrInvalidRoutineData
	}
	value, ok := rawQueryValue(u.RawQuery, LinkParam)
	if !ok || value == "" {
		return models.Routine{}, nil, ErrInvalidRoutineData
	}
	// PathUnescape leaves '+' alone; QueryUnescape would turn it into a space.
	decoded, err := url.PathUnescape(value)
	if err != nil {
		return models.Routine{}, nil, ErrInvalidRoutineData
	}
	if !json.Valid([]byte(decoded)) {
		return models.Routine{}, nil, ErrRoutineParse
	}

	var root struct {
		Name      *string            `json:"name"`
		Exercises *[]json.RawMessage `json:"exercises"`
		Items     *[]json.RawMessage `json:"items"`
	}
	if err := json.Unmarshal([]byte(decoded), &root); err != nil {
		return models.Routine{}, nil, ErrInvalidRoutineData
	}
	if root.Name == nil || root.Exercises == nil || root.Items == nil {
		return models.Routine{}, nil, ErrInvalidRoutineData
	}

	exercises := []models.Exercise{}
	for _, raw := range *root.Exercises {
		if e, ok := decodeLinkExercise(raw); ok {
			exercises = append(exercises, e)
		}
	}

	items := []models.RoutineItem{}
	for _, raw := range *root.Items {
		var it struct {
			Type *string `json:"type"`
			Name *string `json:"name"`
			Text *string `json:"text"`
		}
		if err := json.Unmarshal(raw, &it); err != nil || it.Type == nil {
			continue
		}
		switch models.ItemKind(*it.Type) {
		case models.ItemExercise:
			if it.Name == nil {
				continue
			}
			if e, ok := models.FindExercise(exercises, *it.Name); ok {
				items = append(items, models.ExerciseItem(e))
			}
		case models.ItemHeader:
			if it.Text != nil {
				items = append(items, models.HeaderItem(*it.Text))
			}
		}
	}

	return models.NewRoutine(*root.Name, items), exercises, nil
}

func decodeLinkExercise(raw json.RawMessage) (models.Exercise, bool) {
	var e struct {
		Name            *string   `json:"name"`
		SelectedMetrics *[]string `json:"selectedMetrics"`
		Category        *string   `json:"category"`
	}
	if err := json.Unmarshal(raw, &e); err != nil {
		return models.Exercise{}, false
	}
	if e.Name == nil || e.SelectedMetrics == nil || e.Category == nil {
		return models.Exercise{}, false
	}
	category, err := models.ParseCategory(*e.Category)
	if err != nil {
		return models.Exercise{}, false
	}
	metrics := make([]models.ExerciseMetric, 0, len(*e.SelectedMetrics))
	for _, s := range *e.SelectedMetrics {
		m, err := models.ParseMetric(s)
		if err != nil {
			return models.Exercise{}, false
		}
		metrics = append(metrics, m)
	}
	return models.NewExercise(*e.Name, metrics, category), true
}

// rawQueryValue returns the still-escaped value of key in query.
func rawQueryValue(query, key string) (string, bool) {
	for part := range strings.SplitSeq(query, "&") {
		k, v, _ := strings.Cut(part, "=")
		if k == key {
			return v, true
		}
	}
	return "", false
}
