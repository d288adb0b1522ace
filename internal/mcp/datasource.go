package mcp

import (
	"context"

	"github.com/google/uuid"
	"github.com/meltforce/doonemore/internal/models"
	"github.com/meltforce/doonemore/internal/tracker"
)

// DataSource abstracts the data layer for MCP tools. Both Local (in-process
// tracker) and HTTPClient (remote via REST API) satisfy this interface.
type DataSource interface {
	ListExercises(ctx context.Context) ([]models.Exercise, error)
	ListRoutines(ctx context.Context) ([]models.Routine, error)
	// ListWorkouts returns workouts newest first, all of them when
	// exercise is empty.
	ListWorkouts(ctx context.Context, exercise string) ([]models.Workout, error)
	// LatestWorkout returns nil when nothing was logged under exercise.
	LatestWorkout(ctx context.Context, exercise string) (*models.Workout, error)
	RoutineLink(ctx context.Context, id uuid.UUID) (string, error)
	ImportRoutineLink(ctx context.Context, link string) (models.Routine, error)
}

// Local serves MCP requests straight from a tracker in the same process.
type Local struct {
	t *tracker.Tracker
}

// Compile-time check: Local satisfies DataSource.
var _ DataSource = (*Local)(nil)

func NewLocal(t *tracker.Tracker) *Local {
	return &Local{t: t}
}

func (l *Local) ListExercises(context.Context) ([]models.Exercise, error) {
	return l.t.Exercises(), nil
}

func (l *Local) ListRoutines(context.Context) ([]models.Routine, error) {
	return l.t.Routines(), nil
}

func (l *Local) ListWorkouts(_ context.Context, exercise string) ([]models.Workout, error) {
	if exercise != "" {
		return l.t.History(exercise), nil
	}
	return l.t.Workouts(), nil
}

func (l *Local) LatestWorkout(_ context.Context, exercise string) (*models.Workout, error) {
	w, ok := l.t.MostRecentWorkout(exercise)
	if !ok {
		return nil, nil
	}
	return &w, nil
}

func (l *Local) RoutineLink(_ context.Context, id uuid.UUID) (string, error) {
	return l.t.RoutineLink(id)
}

func (l *Local) ImportRoutineLink(ctx context.Context, link string) (models.Routine, error) {
	return l.t.ImportRoutineLink(ctx, link)
}
