// Package tracker owns the exercise catalog, routines and workout history
// for one user and applies every mutation through the persistence gateway.
package tracker

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"slices"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/meltforce/doonemore/internal/export"
	"github.com/meltforce/doonemore/internal/models"
	"github.com/meltforce/doonemore/internal/share"
	"github.com/meltforce/doonemore/internal/storage"
)

// ErrNotFound is returned when an id does not match any stored entity.
var ErrNotFound = errors.New("not found")

// Tracker holds the three collections in memory. Reads return copies;
// writes validate first, mutate, then save the affected collection. A
// failed save is logged and the in-memory change is kept.
type Tracker struct {
	mu   sync.Mutex
	repo *storage.Repo
	log  *slog.Logger
	now  func() time.Time

	exercises []models.Exercise
	routines  []models.Routine
	workouts  []models.Workout
}

// New loads every collection, seeding the exercise catalog on first run.
func New(ctx context.Context, repo *storage.Repo, log *slog.Logger) *Tracker {
	t := &Tracker{
		repo:      repo,
		log:       log,
		now:       time.Now,
		exercises: repo.LoadOrSeedExercises(ctx),
		routines:  repo.LoadRoutines(ctx),
		workouts:  repo.LoadWorkouts(ctx),
	}
	log.Info("tracker loaded",
		"exercises", len(t.exercises),
		"routines", len(t.routines),
		"workouts", len(t.workouts),
	)
	return t
}

func (t *Tracker) saveExercises(ctx context.Context) {
	if err := t.repo.SaveExercises(ctx, t.exercises); err != nil {
		t.log.Error("persisting exercises", "error", err)
	}
}

func (t *Tracker) saveRoutines(ctx context.Context) {
	if err := t.repo.SaveRoutines(ctx, t.routines); err != nil {
		t.log.Error("persisting routines", "error", err)
	}
}

func (t *Tracker) saveWorkouts(ctx context.Context) {
	if err := t.repo.SaveWorkouts(ctx, t.workouts); err != nil {
		t.log.Error("persisting workouts", "error", err)
	}
}

// --- Exercises ---

// Exercises returns the catalog in stored order.
func (t *Tracker) Exercises() []models.Exercise {
	t.mu.Lock()
	defer t.mu.Unlock()
	out := make([]models.Exercise, len(t.exercises))
	for i, e := range t.exercises {
		out[i] = e.Clone()
	}
	return out
}

// ExerciseGroups returns the catalog grouped by category for pickers.
func (t *Tracker) ExerciseGroups() []models.CategoryGroup {
	return models.GroupByCategory(t.Exercises())
}

// AddExercise validates and appends a new exercise. An empty category
// becomes the default.
func (t *Tracker) AddExercise(ctx context.Context, name string, metrics []models.ExerciseMetric, category models.ExerciseCategory) (models.Exercise, error) {
	if category == "" {
		category = models.DefaultCategory
	}
	e := models.NewExercise(name, metrics, category)
	if err := models.ValidateExercise(e); err != nil {
		return models.Exercise{}, err
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	t.exercises = append(t.exercises, e)
	t.saveExercises(ctx)
	t.log.Info("exercise added", "id", e.ID, "name", e.Name)
	return e.Clone(), nil
}

// UpdateExercise replaces the name and metrics of an exercise, and its
// category when one is given. Workouts logged under the old name are not
// touched.
func (t *Tracker) UpdateExercise(ctx context.Context, id uuid.UUID, name string, metrics []models.ExerciseMetric, category models.ExerciseCategory) (models.Exercise, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	i := slices.IndexFunc(t.exercises, func(e models.Exercise) bool { return e.ID == id })
	if i < 0 {
		return models.Exercise{}, fmt.Errorf("exercise %s: %w", id, ErrNotFound)
	}
	next := t.exercises[i].Clone()
	next.Name = name
	next.SelectedMetrics = slices.Clone(metrics)
	if category != "" {
		next.Category = category
	}
	if err := models.ValidateExercise(next); err != nil {
		return models.Exercise{}, err
	}
	t.exercises[i] = next
	t.saveExercises(ctx)
	return next.Clone(), nil
}

// DeleteExercise removes an exercise from the catalog. Routines and
// workouts that mention it keep their copies.
func (t *Tracker) DeleteExercise(ctx context.Context, id uuid.UUID) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	i := slices.IndexFunc(t.exercises, func(e models.Exercise) bool { return e.ID == id })
	if i < 0 {
		return fmt.Errorf("exercise %s: %w", id, ErrNotFound)
	}
	t.exercises = slices.Delete(t.exercises, i, i+1)
	t.saveExercises(ctx)
	return nil
}

// --- Routines ---

func cloneRoutine(r models.Routine) models.Routine {
	r.Exercises = slices.Clone(r.Exercises)
	r.Items = slices.Clone(r.Items)
	return r
}

// Routines returns every routine in stored order.
func (t *Tracker) Routines() []models.Routine {
	t.mu.Lock()
	defer t.mu.Unlock()
	out := make([]models.Routine, len(t.routines))
	for i, r := range t.routines {
		out[i] = cloneRoutine(r)
	}
	return out
}

// Routine returns the routine with the given id.
func (t *Tracker) Routine(id uuid.UUID) (models.Routine, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	for _, r := range t.routines {
		if r.ID == id {
			return cloneRoutine(r), nil
		}
	}
	return models.Routine{}, fmt.Errorf("routine %s: %w", id, ErrNotFound)
}

// CreateRoutine validates and appends a routine built from items.
func (t *Tracker) CreateRoutine(ctx context.Context, name string, items []models.RoutineItem) (models.Routine, error) {
	r := models.NewRoutine(name, items)
	if err := models.ValidateRoutine(r); err != nil {
		return models.Routine{}, err
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	t.routines = append(t.routines, r)
	t.saveRoutines(ctx)
	t.log.Info("routine created", "id", r.ID, "name", r.Name, "items", len(r.Items))
	return cloneRoutine(r), nil
}

// UpdateRoutine replaces name and items of an existing routine, keeping
// its id.
func (t *Tracker) UpdateRoutine(ctx context.Context, id uuid.UUID, name string, items []models.RoutineItem) (models.Routine, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	i := slices.IndexFunc(t.routines, func(r models.Routine) bool { return r.ID == id })
	if i < 0 {
		return models.Routine{}, fmt.Errorf("routine %s: %w", id, ErrNotFound)
	}
	next := models.Routine{ID: id, Name: name, Items: slices.Clone(items)}
	next.SyncExercises()
	if err := models.ValidateRoutine(next); err != nil {
		return models.Routine{}, err
	}
	t.routines[i] = next
	t.saveRoutines(ctx)
	return cloneRoutine(next), nil
}

// DeleteRoutine removes a routine.
func (t *Tracker) DeleteRoutine(ctx context.Context, id uuid.UUID) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	i := slices.IndexFunc(t.routines, func(r models.Routine) bool { return r.ID == id })
	if i < 0 {
		return fmt.Errorf("routine %s: %w", id, ErrNotFound)
	}
	t.routines = slices.Delete(t.routines, i, i+1)
	t.saveRoutines(ctx)
	return nil
}

// --- Workouts ---

// Workouts returns every workout, newest first.
func (t *Tracker) Workouts() []models.Workout {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.sortedWorkouts()
}

func (t *Tracker) sortedWorkouts() []models.Workout {
	out := make([]models.Workout, len(t.workouts))
	for i, w := range t.workouts {
		out[i] = w.Clone()
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Timestamp.After(out[j].Timestamp) })
	return out
}

// RecentWorkouts returns at most limit workouts, newest first. A limit of
// zero or less means no limit.
func (t *Tracker) RecentWorkouts(limit int) []models.Workout {
	all := t.Workouts()
	if limit > 0 && len(all) > limit {
		all = all[:limit]
	}
	return all
}

// SaveSession turns each draft into a workout. All workouts from one
// session share a timestamp. Nothing is saved unless every draft is valid.
func (t *Tracker) SaveSession(ctx context.Context, records []models.ExerciseRecord) ([]models.Workout, error) {
	if err := models.ValidateSession(records); err != nil {
		return nil, err
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	at := t.now()
	created := make([]models.Workout, 0, len(records))
	for _, r := range records {
		w := models.NewWorkout(r, at)
		t.workouts = append(t.workouts, w)
		created = append(created, w.Clone())
	}
	t.saveWorkouts(ctx)
	t.log.Info("session saved", "workouts", len(created), "at", at.UTC())
	return created, nil
}

// UpdateWorkout replaces the exercise name and sets of a workout. Its id
// and timestamp do not change.
func (t *Tracker) UpdateWorkout(ctx context.Context, id uuid.UUID, exerciseType string, sets []models.SetRecord) (models.Workout, error) {
	if exerciseType == "" {
		return models.Workout{}, models.ErrExerciseRequired
	}
	if err := models.ValidateSets(sets); err != nil {
		return models.Workout{}, err
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	i := slices.IndexFunc(t.workouts, func(w models.Workout) bool { return w.ID == id })
	if i < 0 {
		return models.Workout{}, fmt.Errorf("workout %s: %w", id, ErrNotFound)
	}
	next := t.workouts[i].WithSets(sets)
	next.ExerciseType = exerciseType
	t.workouts[i] = next
	t.saveWorkouts(ctx)
	return next.Clone(), nil
}

// DeleteWorkout removes a workout.
func (t *Tracker) DeleteWorkout(ctx context.Context, id uuid.UUID) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	i := slices.IndexFunc(t.workouts, func(w models.Workout) bool { return w.ID == id })
	if i < 0 {
		return fmt.Errorf("workout %s: %w", id, ErrNotFound)
	}
	t.workouts = slices.Delete(t.workouts, i, i+1)
	t.saveWorkouts(ctx)
	return nil
}

// MostRecentWorkout returns the latest workout logged under name.
func (t *Tracker) MostRecentWorkout(name string) (models.Workout, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	w, ok := models.MostRecentWorkout(t.workouts, name)
	return w.Clone(), ok
}

// History returns every workout logged under name, newest first.
func (t *Tracker) History(name string) []models.Workout {
	t.mu.Lock()
	defer t.mu.Unlock()
	found := models.WorkoutsFor(t.workouts, name)
	out := make([]models.Workout, len(found))
	for i, w := range found {
		out[i] = w.Clone()
	}
	return out
}

// --- Sharing ---

// ImportRoutineLink decodes a deep link, merges its exercises into the
// catalog by name and stores the routine. A routine that CreateRoutine
// would reject counts as invalid routine data. Errors are from package share
// and map to an alert with share.AlertFor.
func (t *Tracker) ImportRoutineLink(ctx context.Context, link string) (models.Routine, error) {
	r, incoming, err := share.ParseLink(link)
	if err == nil {
		if verr := models.ValidateRoutine(r); verr != nil {
			err = fmt.Errorf("%w: %w", share.ErrInvalidRoutineData, verr)
		}
	}
	if err != nil {
		t.log.Warn("importing routine link", "error", err)
		return models.Routine{}, err
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	merged, added := share.MergeCatalog(t.exercises, incoming)
	if len(added) > 0 {
		t.exercises = merged
		t.saveExercises(ctx)
	}
	t.routines = append(t.routines, r)
	t.saveRoutines(ctx)
	t.log.Info("routine imported from link", "name", r.Name, "items", len(r.Items), "new_exercises", len(added))
	return cloneRoutine(r), nil
}

// ImportRoutineFile decodes a routine file and stores the routine. File
// documents carry no metrics, so the catalog is left alone. A routine that
// CreateRoutine would reject counts as a corrupt file.
func (t *Tracker) ImportRoutineFile(ctx context.Context, data []byte) (models.Routine, error) {
	r, err := share.DecodeFile(data)
	if err == nil {
		if verr := models.ValidateRoutine(r); verr != nil {
			err = fmt.Errorf("%w: %w", share.ErrCorruptFile, verr)
		}
	}
	if err != nil {
		t.log.Warn("importing routine file", "error", err)
		return models.Routine{}, err
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	t.routines = append(t.routines, r)
	t.saveRoutines(ctx)
	t.log.Info("routine imported from file", "name", r.Name, "items", len(r.Items))
	return cloneRoutine(r), nil
}

// ExportRoutineFile renders a routine as a file document and suggests a
// file name for it.
func (t *Tracker) ExportRoutineFile(id uuid.UUID) (string, []byte, error) {
	r, err := t.Routine(id)
	if err != nil {
		return "", nil, err
	}
	data, err := share.EncodeFile(r)
	if err != nil {
		return "", nil, err
	}
	return share.FileName(r), data, nil
}

// RoutineLink renders a routine as a deep link.
func (t *Tracker) RoutineLink(id uuid.UUID) (string, error) {
	r, err := t.Routine(id)
	if err != nil {
		return "", err
	}
	return share.EncodeLink(r)
}

// ExportWorkoutsCSV writes the full history, newest first, as CSV.
func (t *Tracker) ExportWorkoutsCSV(w io.Writer) error {
	return export.WriteCSV(w, t.Workouts())
}

// ExportWorkoutsFile writes the history to a temp file under dir and
// returns its path, or "" when the write failed.
func (t *Tracker) ExportWorkoutsFile(dir string) string {
	return export.WriteTempFile(dir, t.Workouts(), t.log)
}
