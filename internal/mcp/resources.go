package mcp

import (
	"context"
	"encoding/json"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/meltforce/doonemore/internal/models"
)

// recentWindow is how far back the recent_workouts resource looks.
const recentWindow = 14 * 24 * time.Hour

func (h *handlers) catalog(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	exercises, err := h.ds.ListExercises(ctx)
	if err != nil {
		return nil, err
	}
	return jsonContents(req.Params.URI, models.GroupByCategory(exercises))
}

func (h *handlers) recentWorkouts(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	workouts, err := h.ds.ListWorkouts(ctx, "")
	if err != nil {
		return nil, err
	}
	end := time.Now()
	return jsonContents(req.Params.URI, filterWorkouts(workouts, end.Add(-recentWindow), end))
}

func jsonContents(uri string, v any) ([]mcp.ResourceContents, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      uri,
			MIMEType: "application/json",
			Text:     string(data),
		},
	}, nil
}

// filterWorkouts keeps workouts stamped within [start, end].
func filterWorkouts(workouts []models.Workout, start, end time.Time) []models.Workout {
	out := []models.Workout{}
	for _, w := range workouts {
		if w.Timestamp.Before(start) || w.Timestamp.After(end) {
			continue
		}
		out = append(out, w)
	}
	return out
}
