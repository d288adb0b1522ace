package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/meltforce/doonemore/internal/models"
	"github.com/meltforce/doonemore/internal/seed"
)

// Fixed keys, one per persisted collection.
const (
	KeyExercises = "exercises"
	KeyRoutines  = "routines"
	KeyWorkouts  = "workouts"
)

// Repo loads and saves whole collections as JSON documents in a Store.
// Loads never fail: a missing or undecodable document reads as empty.
// Saves report errors so callers can log them; a failed save leaves the
// previous document in place.
type Repo struct {
	store Store
	log   *slog.Logger
}

// NewRepo wraps store.
func NewRepo(store Store, log *slog.Logger) *Repo {
	return &Repo{store: store, log: log}
}

func load[T any](ctx context.Context, r *Repo, key string) []T {
	data, err := r.store.Get(ctx, key)
	if errors.Is(err, ErrNotFound) {
		return []T{}
	}
	if err != nil {
		r.log.Warn("loading collection", "key", key, "error", err)
		return []T{}
	}
	var out []T
	if err := json.Unmarshal(data, &out); err != nil {
		r.log.Warn("decoding collection, treating as empty", "key", key, "error", err)
		return []T{}
	}
	if out == nil {
		out = []T{}
	}
	return out
}

func save[T any](ctx context.Context, r *Repo, key string, items []T) error {
	if items == nil {
		items = []T{}
	}
	data, err := json.Marshal(items)
	if err != nil {
		return fmt.Errorf("encoding %s: %w", key, err)
	}
	if err := r.store.Set(ctx, key, data); err != nil {
		return fmt.Errorf("saving %s: %w", key, err)
	}
	return nil
}

// LoadExercises returns the stored exercise catalog.
func (r *Repo) LoadExercises(ctx context.Context) []models.Exercise {
	return load[models.Exercise](ctx, r, KeyExercises)
}

// SaveExercises overwrites the exercise catalog.
func (r *Repo) SaveExercises(ctx context.Context, exercises []models.Exercise) error {
	return save(ctx, r, KeyExercises, exercises)
}

// LoadOrSeedExercises returns the stored catalog, or persists and returns
// the starter catalog when none is stored.
func (r *Repo) LoadOrSeedExercises(ctx context.Context) []models.Exercise {
	exercises := r.LoadExercises(ctx)
	if len(exercises) > 0 {
		return exercises
	}
	exercises = seed.Catalog()
	if err := r.SaveExercises(ctx, exercises); err != nil {
		r.log.Warn("persisting starter catalog", "error", err)
	} else {
		r.log.Info("seeded starter catalog", "exercises", len(exercises))
	}
	return exercises
}

// LoadRoutines returns the stored routines.
func (r *Repo) LoadRoutines(ctx context.Context) []models.Routine {
	return load[models.Routine](ctx, r, KeyRoutines)
}

// SaveRoutines overwrites the routines.
func (r *Repo) SaveRoutines(ctx context.Context, routines []models.Routine) error {
	return save(ctx, r, KeyRoutines, routines)
}

// LoadWorkouts returns the stored workouts.
func (r *Repo) LoadWorkouts(ctx context.Context) []models.Workout {
	return load[models.Workout](ctx, r, KeyWorkouts)
}

// SaveWorkouts overwrites the workouts.
func (r *Repo) SaveWorkouts(ctx context.Context, workouts []models.Workout) error {
	return save(ctx, r, KeyWorkouts, workouts)
}
