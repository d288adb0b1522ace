package mcp

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/meltforce/doonemore/internal/models"
	"github.com/meltforce/doonemore/internal/share"
)

// defaultTimeRange returns start/end defaulting to the last 7 days.
func defaultTimeRange(startStr, endStr string) (time.Time, time.Time, error) {
	var start, end time.Time
	var err error

	if endStr != "" {
		end, err = parseFlexTime(endStr)
		if err != nil {
			return time.Time{}, time.Time{}, err
		}
	} else {
		end = time.Now()
	}

	if startStr != "" {
		start, err = parseFlexTime(startStr)
		if err != nil {
			return time.Time{}, time.Time{}, err
		}
	} else {
		start = end.AddDate(0, 0, -7)
	}

	return start, end, nil
}

func parseFlexTime(s string) (time.Time, error) {
	t, err := time.Parse(time.RFC3339, s)
	if err == nil {
		return t, nil
	}
	t, err = time.Parse("2006-01-02", s)
	if err == nil {
		return t, nil
	}
	return time.Time{}, err
}

// --- Tool definitions ---

var toolListExercises = mcp.NewTool("list_exercises",
	mcp.WithDescription("List the exercise catalog. Each exercise has a name, a category and the metrics (Weight, Reps, Time, Distance, Calories, Custom) it is logged with."),
	mcp.WithString("category", mcp.Description("Only return exercises in this category"), mcp.Enum("Arms", "Legs", "Chest", "Back", "HIIT", "Cardio", "CrossFit")),
)

var toolListRoutines = mcp.NewTool("list_routines",
	mcp.WithDescription("List saved routines. Items are exercises and section headers in the order the user arranged them."),
)

var toolGetWorkouts = mcp.NewTool("get_workouts",
	mcp.WithDescription("Query logged workouts, newest first. Each workout is one exercise with its sets; set values are free text exactly as the user typed them."),
	mcp.WithString("start", mcp.Description("Start date (ISO 8601 or YYYY-MM-DD). Defaults to 7 days ago.")),
	mcp.WithString("end", mcp.Description("End date (ISO 8601 or YYYY-MM-DD). Defaults to now.")),
	mcp.WithString("exercise", mcp.Description("Exact exercise name to filter by")),
)

var toolGetExerciseHistory = mcp.NewTool("get_exercise_history",
	mcp.WithDescription("All workouts logged under one exercise name plus the most recent one. Matching is by exact name, so history logged before a rename is not included."),
	mcp.WithString("exercise", mcp.Required(), mcp.Description("Exact exercise name")),
)

var toolShareRoutine = mcp.NewTool("share_routine",
	mcp.WithDescription("Build a doonemorefitness:// deep link for a routine that another DoOneMore user can import."),
	mcp.WithString("routine", mcp.Required(), mcp.Description("Routine ID or exact routine name")),
)

var toolImportRoutine = mcp.NewTool("import_routine",
	mcp.WithDescription("Import a routine from a doonemorefitness:// deep link. Exercises the catalog does not have yet are added."),
	mcp.WithString("link", mcp.Required(), mcp.Description("The full doonemorefitness://routine?data=... link")),
)

// --- Tool handlers ---

func (h *handlers) listExercises(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var category models.ExerciseCategory
	if c := req.GetString("category", ""); c != "" {
		parsed, err := models.ParseCategory(c)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		category = parsed
	}

	exercises, err := h.ds.ListExercises(ctx)
	if err != nil {
		h.log.Error("mcp list_exercises", "error", err)
		return mcp.NewToolResultError("query failed: " + err.Error()), nil
	}
	if category != "" {
		filtered := []models.Exercise{}
		for _, e := range exercises {
			if e.Category == category {
				filtered = append(filtered, e)
			}
		}
		exercises = filtered
	}
	models.SortExercises(exercises)

	return jsonResult(exercises)
}

func (h *handlers) listRoutines(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	routines, err := h.ds.ListRoutines(ctx)
	if err != nil {
		h.log.Error("mcp list_routines", "error", err)
		return mcp.NewToolResultError("query failed: " + err.Error()), nil
	}
	return jsonResult(routines)
}

func (h *handlers) getWorkouts(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	start, end, err := defaultTimeRange(req.GetString("start", ""), req.GetString("end", ""))
	if err != nil {
		return mcp.NewToolResultError("invalid date format: " + err.Error()), nil
	}

	workouts, err := h.ds.ListWorkouts(ctx, req.GetString("exercise", ""))
	if err != nil {
		h.log.Error("mcp get_workouts", "error", err)
		return mcp.NewToolResultError("query failed: " + err.Error()), nil
	}

	return jsonResult(filterWorkouts(workouts, start, end))
}

func (h *handlers) getExerciseHistory(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	name, err := req.RequireString("exercise")
	if err != nil {
		return mcp.NewToolResultError("exercise parameter is required"), nil
	}

	latest, err := h.ds.LatestWorkout(ctx, name)
	if err != nil {
		h.log.Error("mcp get_exercise_history", "error", err)
		return mcp.NewToolResultError("query failed: " + err.Error()), nil
	}
	workouts, err := h.ds.ListWorkouts(ctx, name)
	if err != nil {
		h.log.Error("mcp get_exercise_history", "error", err)
		return mcp.NewToolResultError("query failed: " + err.Error()), nil
	}

	return jsonResult(map[string]any{
		"exercise": name,
		"latest":   latest,
		"workouts": workouts,
	})
}

func (h *handlers) shareRoutine(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	ref, err := req.RequireString("routine")
	if err != nil {
		return mcp.NewToolResultError("routine parameter is required"), nil
	}

	id, err := uuid.Parse(ref)
	if err != nil {
		routines, err := h.ds.ListRoutines(ctx)
		if err != nil {
			h.log.Error("mcp share_routine", "error", err)
			return mcp.NewToolResultError("query failed: " + err.Error()), nil
		}
		found := false
		for _, r := range routines {
			if strings.EqualFold(r.Name, ref) {
				id, found = r.ID, true
				break
			}
		}
		if !found {
			return mcp.NewToolResultError("no routine named " + ref), nil
		}
	}

	link, err := h.ds.RoutineLink(ctx, id)
	if err != nil {
		h.log.Error("mcp share_routine", "error", err)
		return mcp.NewToolResultError("sharing failed: " + err.Error()), nil
	}
	return mcp.NewToolResultText(link), nil
}

func (h *handlers) importRoutine(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	link, err := req.RequireString("link")
	if err != nil {
		return mcp.NewToolResultError("link parameter is required"), nil
	}

	routine, err := h.ds.ImportRoutineLink(ctx, link)
	if err != nil {
		var ie *ImportError
		if errors.As(err, &ie) {
			return mcp.NewToolResultError(ie.Alert.Message), nil
		}
		if errors.Is(err, share.ErrInvalidRoutineData) || errors.Is(err, share.ErrRoutineParse) {
			return mcp.NewToolResultError(share.AlertFor(err).Message), nil
		}
		h.log.Error("mcp import_routine", "error", err)
		return mcp.NewToolResultError("import failed: " + err.Error()), nil
	}
	return jsonResult(routine)
}

func jsonResult(v any) (*mcp.CallToolResult, error) {
	result, err := mcp.NewToolResultJSON(v)
	if err != nil {
		return mcp.NewToolResultError("serialization failed"), nil
	}
	return result, nil
}
