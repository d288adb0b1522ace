package tracker

import (
	"bytes"
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/meltforce/doonemore/internal/models"
	"github.com/meltforce/doonemore/internal/share"
	"github.com/meltforce/doonemore/internal/storage"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestTracker(t *testing.T) (*Tracker, *storage.Repo) {
	t.Helper()
	store, err := storage.OpenSQLite(t.TempDir())
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	repo := storage.NewRepo(store, testLogger())
	tr := New(context.Background(), repo, testLogger())
	tr.now = func() time.Time { return time.Date(2026, 10, 1, 7, 0, 0, 0, time.UTC) }
	return tr, repo
}

func strength() []models.ExerciseMetric {
	return []models.ExerciseMetric{models.MetricWeight, models.MetricReps}
}

func draft(name string, values ...string) models.ExerciseRecord {
	r := models.NewExerciseRecord()
	r.SelectedExerciseType = name
	for i, v := range values {
		if i > 0 {
			r.AddSet()
		}
		r.SetRecords[i].Set(models.MetricReps, v)
	}
	return r
}

// TestNewSeedsCatalog verifies a fresh tracker starts with the starter
// catalog and persists it.
func TestNewSeedsCatalog(t *testing.T) {
	tr, repo := newTestTracker(t)
	if len(tr.Exercises()) == 0 {
		t.Fatal("catalog not seeded")
	}
	if got := repo.LoadExercises(context.Background()); len(got) != len(tr.Exercises()) {
		t.Errorf("persisted %d exercises, tracker has %d", len(got), len(tr.Exercises()))
	}
}

// TestExerciseLifecycle verifies add, update and delete persist, and that
// invalid input leaves the catalog unchanged.
func TestExerciseLifecycle(t *testing.T) {
	ctx := context.Background()
	tr, repo := newTestTracker(t)
	before := len(tr.Exercises())

	if _, err := tr.AddExercise(ctx, "", strength(), ""); !errors.Is(err, models.ErrNameRequired) {
		t.Errorf("empty name err = %v", err)
	}
	if _, err := tr.AddExercise(ctx, "Curl", nil, ""); !errors.Is(err, models.ErrMetricsRequired) {
		t.Errorf("no metrics err = %v", err)
	}
	if len(tr.Exercises()) != before {
		t.Fatal("invalid add changed the catalog")
	}

	e, err := tr.AddExercise(ctx, "Zercher Squat", strength(), "")
	if err != nil {
		t.Fatalf("AddExercise: %v", err)
	}
	if e.Category != models.DefaultCategory {
		t.Errorf("category = %s, want default", e.Category)
	}

	if _, err := tr.UpdateExercise(ctx, e.ID, "Zercher Squat", nil, ""); !errors.Is(err, models.ErrMetricsRequired) {
		t.Errorf("update without metrics err = %v", err)
	}
	updated, err := tr.UpdateExercise(ctx, e.ID, "Zercher", []models.ExerciseMetric{models.MetricReps}, models.CategoryLegs)
	if err != nil {
		t.Fatalf("UpdateExercise: %v", err)
	}
	if updated.ID != e.ID || updated.Name != "Zercher" || updated.Category != models.CategoryLegs {
		t.Errorf("updated = %+v", updated)
	}
	if _, ok := models.FindExercise(repo.LoadExercises(ctx), "Zercher"); !ok {
		t.Error("update not persisted")
	}

	if err := tr.DeleteExercise(ctx, e.ID); err != nil {
		t.Fatalf("DeleteExercise: %v", err)
	}
	if err := tr.DeleteExercise(ctx, e.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("second delete err = %v, want ErrNotFound", err)
	}
	if len(repo.LoadExercises(ctx)) != before {
		t.Error("delete not persisted")
	}
}

// TestSaveSession verifies one workout per draft, a shared timestamp and
// all-or-nothing validation.
func TestSaveSession(t *testing.T) {
	ctx := context.Background()
	tr, repo := newTestTracker(t)

	bad := []models.ExerciseRecord{draft("Push Up", "20"), models.NewExerciseRecord()}
	if _, err := tr.SaveSession(ctx, bad); !errors.Is(err, models.ErrExerciseRequired) {
		t.Errorf("err = %v, want ErrExerciseRequired", err)
	}
	if len(tr.Workouts()) != 0 {
		t.Fatal("invalid session saved workouts")
	}

	created, err := tr.SaveSession(ctx, []models.ExerciseRecord{draft("Push Up", "20", "18"), draft("Pull Up", "8")})
	if err != nil {
		t.Fatalf("SaveSession: %v", err)
	}
	if len(created) != 2 {
		t.Fatalf("created = %d, want 2", len(created))
	}
	if !created[0].Timestamp.Equal(created[1].Timestamp) {
		t.Error("session workouts have different timestamps")
	}
	if len(created[0].Sets) != 2 {
		t.Errorf("push up sets = %d, want 2", len(created[0].Sets))
	}
	if got := repo.LoadWorkouts(ctx); len(got) != 2 {
		t.Errorf("persisted %d workouts, want 2", len(got))
	}
}

// TestUpdateWorkoutKeepsIdentity verifies editing replaces name and sets but
// not id or timestamp.
func TestUpdateWorkoutKeepsIdentity(t *testing.T) {
	ctx := context.Background()
	tr, _ := newTestTracker(t)
	created, err := tr.SaveSession(ctx, []models.ExerciseRecord{draft("Dips", "10")})
	if err != nil {
		t.Fatal(err)
	}
	orig := created[0]

	if _, err := tr.UpdateWorkout(ctx, orig.ID, "Dips", []models.SetRecord{models.NewSetRecord()}); !errors.Is(err, models.ErrSetInputRequired) {
		t.Errorf("blank set err = %v", err)
	}

	set := models.NewSetRecord()
	set.Set(models.MetricReps, "12")
	tr.now = func() time.Time { return orig.Timestamp.Add(time.Hour) }
	got, err := tr.UpdateWorkout(ctx, orig.ID, "Ring Dips", []models.SetRecord{set})
	if err != nil {
		t.Fatalf("UpdateWorkout: %v", err)
	}
	if got.ID != orig.ID || !got.Timestamp.Equal(orig.Timestamp) {
		t.Errorf("identity changed: %+v", got)
	}
	if got.ExerciseType != "Ring Dips" || *got.Sets[0].Reps != "12" {
		t.Errorf("workout = %+v", got)
	}

	if _, err := tr.UpdateWorkout(ctx, uuid.New(), "x", []models.SetRecord{set}); !errors.Is(err, ErrNotFound) {
		t.Errorf("missing workout err = %v", err)
	}
	if err := tr.DeleteWorkout(ctx, orig.ID); err != nil {
		t.Fatal(err)
	}
	if len(tr.Workouts()) != 0 {
		t.Error("workout not deleted")
	}
}

// TestRenameOrphansHistory verifies history lookups match on the name the
// workout was logged under.
func TestRenameOrphansHistory(t *testing.T) {
	ctx := context.Background()
	tr, _ := newTestTracker(t)
	e, err := tr.AddExercise(ctx, "Ring Row", []models.ExerciseMetric{models.MetricReps}, models.CategoryBack)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := tr.SaveSession(ctx, []models.ExerciseRecord{draft("Ring Row", "12")}); err != nil {
		t.Fatal(err)
	}
	if _, ok := tr.MostRecentWorkout("Ring Row"); !ok {
		t.Fatal("no history before rename")
	}
	if _, err := tr.UpdateExercise(ctx, e.ID, "Inverted Row", e.SelectedMetrics, ""); err != nil {
		t.Fatal(err)
	}
	if _, ok := tr.MostRecentWorkout("Inverted Row"); ok {
		t.Error("renamed exercise found old history")
	}
	if len(tr.History("Ring Row")) != 1 {
		t.Error("old history lost")
	}
}

// TestRoutineLifecycle verifies create, update and delete with the derived
// exercise names kept in sync.
func TestRoutineLifecycle(t *testing.T) {
	ctx := context.Background()
	tr, repo := newTestTracker(t)
	squat := models.NewExercise("Squat", strength(), models.CategoryLegs)

	if _, err := tr.CreateRoutine(ctx, "", nil); !errors.Is(err, models.ErrNameRequired) {
		t.Errorf("empty name err = %v", err)
	}
	r, err := tr.CreateRoutine(ctx, "Legs", []models.RoutineItem{models.HeaderItem("Main"), models.ExerciseItem(squat)})
	if err != nil {
		t.Fatalf("CreateRoutine: %v", err)
	}
	if len(r.Exercises) != 1 || r.Exercises[0] != "Squat" {
		t.Errorf("exercises = %v", r.Exercises)
	}

	updated, err := tr.UpdateRoutine(ctx, r.ID, "Leg Day", []models.RoutineItem{models.ExerciseItem(squat), models.ExerciseItem(squat)})
	if err != nil {
		t.Fatalf("UpdateRoutine: %v", err)
	}
	if updated.ID != r.ID || len(updated.Exercises) != 2 {
		t.Errorf("updated = %+v", updated)
	}
	stored := repo.LoadRoutines(ctx)
	if len(stored) != 1 || !stored[0].Equal(updated) {
		t.Errorf("stored = %+v", stored)
	}

	if err := tr.DeleteRoutine(ctx, r.ID); err != nil {
		t.Fatal(err)
	}
	if _, err := tr.Routine(r.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound", err)
	}
}

// TestImportRoutineLink verifies a shared link adds the routine and merges
// unknown exercises into the catalog without overwriting known ones.
func TestImportRoutineLink(t *testing.T) {
	ctx := context.Background()
	tr, repo := newTestTracker(t)
	before := len(tr.Exercises())

	bench, _ := models.FindExercise(tr.Exercises(), "Bench Press")
	bench.SelectedMetrics = []models.ExerciseMetric{models.MetricTime}
	novel := models.NewExercise("Sled Push", []models.ExerciseMetric{models.MetricDistance}, models.CategoryCrossfit)
	link, err := share.EncodeLink(models.NewRoutine("Shared", []models.RoutineItem{models.ExerciseItem(bench), models.ExerciseItem(novel)}))
	if err != nil {
		t.Fatal(err)
	}

	r, err := tr.ImportRoutineLink(ctx, link)
	if err != nil {
		t.Fatalf("ImportRoutineLink: %v", err)
	}
	if r.Name != "Shared" || len(r.Items) != 2 {
		t.Errorf("routine = %+v", r)
	}
	catalog := repo.LoadExercises(ctx)
	if len(catalog) != before+1 {
		t.Fatalf("catalog = %d, want %d", len(catalog), before+1)
	}
	local, _ := models.FindExercise(catalog, "Bench Press")
	if local.HasMetric(models.MetricTime) {
		t.Error("existing exercise overwritten by import")
	}
	if len(tr.Routines()) != 1 {
		t.Error("routine not stored")
	}

	_, err = tr.ImportRoutineLink(ctx, "https://example.com/?data=x")
	if a := share.AlertFor(err); a.Message != "Invalid routine data" || !a.Show {
		t.Errorf("alert = %+v", a)
	}
	if len(tr.Routines()) != 1 {
		t.Error("failed import changed routines")
	}

	unnamed, err := share.EncodeLink(models.NewRoutine("", []models.RoutineItem{models.HeaderItem("Warm up")}))
	if err != nil {
		t.Fatal(err)
	}
	_, err = tr.ImportRoutineLink(ctx, unnamed)
	if !errors.Is(err, models.ErrNameRequired) || share.AlertFor(err).Message != "Invalid routine data" {
		t.Errorf("unnamed link err = %v", err)
	}
	if len(tr.Routines()) != 1 {
		t.Error("unnamed routine was stored")
	}
}

// TestRoutineFileExportImport verifies a routine survives the file form
// apart from metrics.
func TestRoutineFileExportImport(t *testing.T) {
	ctx := context.Background()
	tr, _ := newTestTracker(t)
	squat := models.NewExercise("Squat", strength(), models.CategoryLegs)
	r, err := tr.CreateRoutine(ctx, "Legs", []models.RoutineItem{models.ExerciseItem(squat)})
	if err != nil {
		t.Fatal(err)
	}

	name, data, err := tr.ExportRoutineFile(r.ID)
	if err != nil {
		t.Fatalf("ExportRoutineFile: %v", err)
	}
	if name != "Legs.doroutine" {
		t.Errorf("file name = %q", name)
	}
	imported, err := tr.ImportRoutineFile(ctx, data)
	if err != nil {
		t.Fatalf("ImportRoutineFile: %v", err)
	}
	if imported.ID == r.ID {
		t.Error("import reused the original id")
	}
	e, _ := imported.Items[0].Exercise()
	if e.Name != "Squat" || len(e.SelectedMetrics) != 0 {
		t.Errorf("imported exercise = %+v", e)
	}

	if _, err := tr.ImportRoutineFile(ctx, []byte("{")); !errors.Is(err, share.ErrCorruptFile) {
		t.Errorf("err = %v, want ErrCorruptFile", err)
	}
	unnamed := []byte(`{"version":1,"name":"","items":[{"type":"header","text":"Circuit"}]}`)
	if _, err := tr.ImportRoutineFile(ctx, unnamed); !errors.Is(err, share.ErrCorruptFile) || !errors.Is(err, models.ErrNameRequired) {
		t.Errorf("unnamed file err = %v", err)
	}
	if len(tr.Routines()) != 2 {
		t.Errorf("routines = %d, want 2", len(tr.Routines()))
	}
	if _, err := tr.RoutineLink(uuid.New()); !errors.Is(err, ErrNotFound) {
		t.Errorf("link for missing routine err = %v", err)
	}
}

// TestExportWorkoutsCSV verifies the tracker feeds its history to the CSV
// writer.
func TestExportWorkoutsCSV(t *testing.T) {
	ctx := context.Background()
	tr, _ := newTestTracker(t)
	if _, err := tr.SaveSession(ctx, []models.ExerciseRecord{draft("Burpee", "15", "12")}); err != nil {
		t.Fatal(err)
	}
	var buf bytes.Buffer
	if err := tr.ExportWorkoutsCSV(&buf); err != nil {
		t.Fatal(err)
	}
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 3 {
		t.Fatalf("lines = %d, want 3", len(lines))
	}
	if !strings.HasPrefix(lines[1], "Burpee,2026-10-01,1,,15") {
		t.Errorf("row = %q", lines[1])
	}
	if path := tr.ExportWorkoutsFile(t.TempDir()); path == "" {
		t.Error("temp file export failed")
	}
}

type failingStore struct {
	storage.Store
}

func (failingStore) Set(context.Context, string, []byte) error {
	return errors.New("read-only")
}

// TestPersistFailureIsSwallowed verifies a broken store does not fail the
// operation; the change is still visible in memory.
func TestPersistFailureIsSwallowed(t *testing.T) {
	ctx := context.Background()
	mem, err := storage.OpenMemory()
	if err != nil {
		t.Fatal(err)
	}
	defer mem.Close()
	repo := storage.NewRepo(failingStore{Store: mem}, testLogger())
	tr := New(ctx, repo, testLogger())

	if _, err := tr.AddExercise(ctx, "Farmer Carry", []models.ExerciseMetric{models.MetricDistance}, models.CategoryCrossfit); err != nil {
		t.Fatalf("AddExercise: %v", err)
	}
	if _, ok := models.FindExercise(tr.Exercises(), "Farmer Carry"); !ok {
		t.Error("exercise missing from memory")
	}
	if len(repo.LoadExercises(ctx)) != 0 {
		t.Error("failing store persisted data")
	}
}
