package storage

import (
	"bytes"
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/meltforce/doonemore/internal/models"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// backends runs fn once per Store implementation.
func backends(t *testing.T, fn func(t *testing.T, s Store)) {
	t.Helper()
	t.Run("sqlite", func(t *testing.T) {
		s, err := OpenSQLite(t.TempDir())
		if err != nil {
			t.Fatalf("open sqlite: %v", err)
		}
		defer s.Close()
		fn(t, s)
	})
	t.Run("memory", func(t *testing.T) {
		s := newMemory(t)
		defer s.Close()
		fn(t, s)
	})
	t.Run("cached", func(t *testing.T) {
		s := NewCached(newMemory(t), 1)
		defer s.Close()
		fn(t, s)
	})
}

func newMemory(t *testing.T) *SQLiteStore {
	t.Helper()
	s, err := OpenMemory()
	if err != nil {
		t.Fatalf("open memory: %v", err)
	}
	return s
}

func sampleWorkouts() []models.Workout {
	rec := models.NewExerciseRecord()
	rec.SelectedExerciseType = "Kniebeuge 🏋️"
	rec.SetRecords[0].Set(models.MetricWeight, "100")
	rec.SetRecords[0].Set(models.MetricReps, "")
	rec.SetRecords[0].Set(models.MetricCustom, "schwer, aber gut: 重い")
	rec.AddSet()
	at := time.Date(2026, 5, 4, 18, 30, 15, 123456789, time.UTC)
	return []models.Workout{models.NewWorkout(rec, at), models.NewWorkout(rec, at.Add(time.Hour))}
}

// TestWorkoutsRoundTrip verifies load(save(c)) == c including blank
// optional fields, multi-byte text and nanosecond timestamps.
func TestWorkoutsRoundTrip(t *testing.T) {
	backends(t, func(t *testing.T, s Store) {
		ctx := context.Background()
		repo := NewRepo(s, testLogger())
		want := sampleWorkouts()

		if err := repo.SaveWorkouts(ctx, want); err != nil {
			t.Fatalf("save: %v", err)
		}
		got := repo.LoadWorkouts(ctx)
		if len(got) != len(want) {
			t.Fatalf("workouts = %d, want %d", len(got), len(want))
		}
		for i := range want {
			if !got[i].Equal(want[i]) {
				t.Errorf("workout %d = %+v, want %+v", i, got[i], want[i])
			}
		}
		if got[0].Sets[0].Reps == nil || *got[0].Sets[0].Reps != "" {
			t.Error("blank reps lost its presence")
		}
		if got[0].Sets[0].Distance != nil {
			t.Error("absent distance came back present")
		}
	})
}

// TestExercisesAndRoutinesRoundTrip verifies both remaining collections
// keep ids and item order.
func TestExercisesAndRoutinesRoundTrip(t *testing.T) {
	backends(t, func(t *testing.T, s Store) {
		ctx := context.Background()
		repo := NewRepo(s, testLogger())

		press := models.NewExercise("Développé couché", []models.ExerciseMetric{models.MetricWeight, models.MetricReps}, models.CategoryChest)
		run := models.NewExercise("Run", []models.ExerciseMetric{models.MetricTime, models.MetricDistance}, models.CategoryCardio)
		exercises := []models.Exercise{press, run}
		routines := []models.Routine{
			models.NewRoutine("Push", []models.RoutineItem{models.HeaderItem("Warm up"), models.ExerciseItem(run), models.HeaderItem(""), models.ExerciseItem(press)}),
			models.NewRoutine("Empty", nil),
		}

		if err := repo.SaveExercises(ctx, exercises); err != nil {
			t.Fatalf("save exercises: %v", err)
		}
		if err := repo.SaveRoutines(ctx, routines); err != nil {
			t.Fatalf("save routines: %v", err)
		}

		gotEx := repo.LoadExercises(ctx)
		for i := range exercises {
			if !gotEx[i].Equal(exercises[i]) {
				t.Errorf("exercise %d = %+v, want %+v", i, gotEx[i], exercises[i])
			}
		}
		gotR := repo.LoadRoutines(ctx)
		if len(gotR) != 2 {
			t.Fatalf("routines = %d, want 2", len(gotR))
		}
		for i := range routines {
			if !gotR[i].Equal(routines[i]) {
				t.Errorf("routine %d = %+v, want %+v", i, gotR[i], routines[i])
			}
		}
	})
}

// TestEmptyCollectionRoundTrip verifies empty and nil collections both
// load back as empty.
func TestEmptyCollectionRoundTrip(t *testing.T) {
	backends(t, func(t *testing.T, s Store) {
		ctx := context.Background()
		repo := NewRepo(s, testLogger())
		if err := repo.SaveRoutines(ctx, nil); err != nil {
			t.Fatalf("save: %v", err)
		}
		if got := repo.LoadRoutines(ctx); got == nil || len(got) != 0 {
			t.Errorf("routines = %#v, want empty", got)
		}
		if got := repo.LoadWorkouts(ctx); got == nil || len(got) != 0 {
			t.Errorf("missing workouts = %#v, want empty", got)
		}
	})
}

// TestUndecodableCollectionLoadsEmpty verifies corrupt documents are
// replaced by an empty collection rather than surfacing an error.
func TestUndecodableCollectionLoadsEmpty(t *testing.T) {
	backends(t, func(t *testing.T, s Store) {
		ctx := context.Background()
		if err := s.Set(ctx, KeyExercises, []byte(`{"not":"an array"`)); err != nil {
			t.Fatal(err)
		}
		if err := s.Set(ctx, KeyWorkouts, []byte(`[{"id":"x","sets":[],"timestamp":"yesterday"}]`)); err != nil {
			t.Fatal(err)
		}
		repo := NewRepo(s, testLogger())
		if got := repo.LoadExercises(ctx); len(got) != 0 {
			t.Errorf("exercises = %d, want 0", len(got))
		}
		if got := repo.LoadWorkouts(ctx); len(got) != 0 {
			t.Errorf("workouts = %d, want 0", len(got))
		}
	})
}

// TestLoadOrSeedIdempotent verifies seeding happens once: the second call
// reads back the persisted catalog with the same ids and no duplicates.
func TestLoadOrSeedIdempotent(t *testing.T) {
	backends(t, func(t *testing.T, s Store) {
		ctx := context.Background()
		repo := NewRepo(s, testLogger())

		first := repo.LoadOrSeedExercises(ctx)
		if len(first) == 0 {
			t.Fatal("no starter exercises")
		}
		second := repo.LoadOrSeedExercises(ctx)
		if len(second) != len(first) {
			t.Fatalf("second load = %d exercises, want %d", len(second), len(first))
		}
		for i := range first {
			if !second[i].Equal(first[i]) {
				t.Errorf("exercise %d changed between loads", i)
			}
		}
	})
}

// TestLoadOrSeedKeepsUserCatalog verifies an existing catalog is never
// replaced by the starter data.
func TestLoadOrSeedKeepsUserCatalog(t *testing.T) {
	ctx := context.Background()
	repo := NewRepo(newMemory(t), testLogger())
	mine := []models.Exercise{models.NewExercise("Turkish Get Up", []models.ExerciseMetric{models.MetricReps}, models.CategoryCrossfit)}
	if err := repo.SaveExercises(ctx, mine); err != nil {
		t.Fatal(err)
	}
	got := repo.LoadOrSeedExercises(ctx)
	if len(got) != 1 || !got[0].Equal(mine[0]) {
		t.Errorf("catalog = %v, want only the user's exercise", got)
	}
}

type failingStore struct {
	Store
}

func (failingStore) Set(context.Context, string, []byte) error {
	return errors.New("disk full")
}

// TestFailedSaveKeepsPreviousDocument verifies a failed write surfaces an
// error to the caller and leaves the old collection readable.
func TestFailedSaveKeepsPreviousDocument(t *testing.T) {
	ctx := context.Background()
	mem := newMemory(t)
	good := NewRepo(mem, testLogger())
	want := sampleWorkouts()
	if err := good.SaveWorkouts(ctx, want); err != nil {
		t.Fatal(err)
	}

	bad := NewRepo(failingStore{Store: mem}, testLogger())
	if err := bad.SaveWorkouts(ctx, nil); err == nil {
		t.Fatal("expected error from failing store")
	}
	if got := good.LoadWorkouts(ctx); len(got) != len(want) {
		t.Errorf("workouts after failed save = %d, want %d", len(got), len(want))
	}
}

// TestCachedStoreGrowingRewrites verifies documents rewritten many times
// while growing past the cache entry limit always read back whole, and a
// neighbouring document is never disturbed.
func TestCachedStoreGrowingRewrites(t *testing.T) {
	ctx := context.Background()
	s := NewCached(newMemory(t), 1)
	defer s.Close()

	catalog := bytes.Repeat([]byte("e"), 200*1024)
	if err := s.Set(ctx, KeyExercises, catalog); err != nil {
		t.Fatal(err)
	}

	var doc []byte
	chunk := bytes.Repeat([]byte("w"), 1024)
	for i := range 400 {
		doc = append(doc, chunk...)
		if err := s.Set(ctx, KeyWorkouts, doc); err != nil {
			t.Fatalf("rewrite %d: %v", i, err)
		}
		got, err := s.Get(ctx, KeyWorkouts)
		if err != nil || !bytes.Equal(got, doc) {
			t.Fatalf("rewrite %d: got %d bytes, err = %v, want %d bytes", i, len(got), err, len(doc))
		}
		got, err = s.Get(ctx, KeyExercises)
		if err != nil || !bytes.Equal(got, catalog) {
			t.Fatalf("rewrite %d: catalog lost, got %d bytes, err = %v", i, len(got), err)
		}
	}
}

// TestCachedStoreServesSmallDocuments verifies a cached document is
// returned without touching the backing store, and a failed write leaves
// reads agreeing with the backing store.
func TestCachedStoreServesSmallDocuments(t *testing.T) {
	ctx := context.Background()
	mem := newMemory(t)
	s := NewCached(mem, 1)
	defer s.Close()

	if err := s.Set(ctx, "k", []byte("v1")); err != nil {
		t.Fatal(err)
	}
	mem.Close()
	got, err := s.Get(ctx, "k")
	if err != nil || string(got) != "v1" {
		t.Fatalf("cached get = %q, %v, want v1", got, err)
	}

	if err := s.Set(ctx, "k", []byte("v2")); err == nil {
		t.Fatal("expected error writing to a closed backing store")
	}
	if _, err := s.Get(ctx, "k"); err == nil {
		t.Error("read after failed write came from the stale cache")
	}

	if _, err := NewCached(newMemory(t), 1).Get(ctx, "missing"); !errors.Is(err, ErrNotFound) {
		t.Errorf("missing key err = %v, want ErrNotFound", err)
	}
}

// TestMemoryStoreIsPrivate verifies each in-memory store starts empty.
func TestMemoryStoreIsPrivate(t *testing.T) {
	ctx := context.Background()
	a, b := newMemory(t), newMemory(t)
	defer a.Close()
	defer b.Close()
	if err := a.Set(ctx, "k", []byte("v")); err != nil {
		t.Fatal(err)
	}
	if _, err := b.Get(ctx, "k"); !errors.Is(err, ErrNotFound) {
		t.Errorf("second store err = %v, want ErrNotFound", err)
	}
}

// TestSQLitePersistsAcrossOpen verifies the sqlite backend survives a
// close and reopen of the same directory.
func TestSQLitePersistsAcrossOpen(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	s, err := OpenSQLite(dir)
	if err != nil {
		t.Fatal(err)
	}
	if err := s.Set(ctx, "k", []byte("v1")); err != nil {
		t.Fatal(err)
	}
	if err := s.Set(ctx, "k", []byte("v2")); err != nil {
		t.Fatal(err)
	}
	s.Close()

	s, err = OpenSQLite(dir)
	if err != nil {
		t.Fatal(err)
	}
	defer s.Close()
	got, err := s.Get(ctx, "k")
	if err != nil {
		t.Fatal(err)
	}
	if string(got) != "v2" {
		t.Errorf("value = %q, want v2", got)
	}
	if _, err := s.Get(ctx, "missing"); !errors.Is(err, ErrNotFound) {
		t.Errorf("missing key err = %v, want ErrNotFound", err)
	}
}

// TestOpenUnknownBackend verifies a typo in the backend name is reported.
func TestOpenUnknownBackend(t *testing.T) {
	_, err := Open("leveldb", t.TempDir(), 0)
	if err == nil || !strings.Contains(err.Error(), "leveldb") {
		t.Errorf("err = %v, want unknown backend error", err)
	}
}

// TestOpenWrapsCache verifies a positive cache size wraps the backend.
func TestOpenWrapsCache(t *testing.T) {
	s, err := Open("memory", "", 1)
	if err != nil {
		t.Fatal(err)
	}
	defer s.Close()
	if _, ok := s.(*CachedStore); !ok {
		t.Errorf("store = %T, want *CachedStore", s)
	}
	plain, err := Open("sqlite", t.TempDir(), 0)
	if err != nil {
		t.Fatal(err)
	}
	defer plain.Close()
	if _, ok := plain.(*SQLiteStore); !ok {
		t.Errorf("store = %T, want *SQLiteStore", plain)
	}
}
