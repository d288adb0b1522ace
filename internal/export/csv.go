// Package export renders workout history as CSV.
package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"

	"github.com/meltforce/doonemore/internal/models"
)

// DateLayout is the per-row date format.
const DateLayout = "2006-01-02"

// FileName is the name used for temp-file exports.
const FileName = "workouts.csv"

// Header is the first row of every export.
var Header = []string{"Exercise Type", "Date", "Set", "Weight", "Reps", "Time", "Distance", "Calories", "Notes"}

// columns maps the metric columns after Set to their fields.
var columns = []models.ExerciseMetric{
	models.MetricWeight, models.MetricReps, models.MetricTime,
	models.MetricDistance, models.MetricCalories, models.MetricCustom,
}

// WriteCSV writes one row per (workout, set) in the order given. Set numbers
// are 1-based; absent fields are blank. Fields containing commas, quotes or
// newlines are quoted.
func WriteCSV(w io.Writer, workouts []models.Workout) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(Header); err != nil {
		return fmt.Errorf("writing csv header: %w", err)
	}
	for _, wo := range workouts {
		date := wo.Timestamp.UTC().Format(DateLayout)
		for i, s := range wo.Sets {
			row := make([]string, 0, len(Header))
			row = append(row, wo.ExerciseType, date, strconv.Itoa(i+1))
			for _, m := range columns {
				v := ""
				if p := s.Get(m); p != nil {
					v = *p
				}
				row = append(row, v)
			}
			if err := cw.Write(row); err != nil {
				return fmt.Errorf("writing csv row: %w", err)
			}
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return fmt.Errorf("flushing csv: %w", err)
	}
	return nil
}

// WriteTempFile exports workouts into a fresh file under dir (the system
// temp dir when empty) and returns its path. Failures are logged and
// reported as an empty path.
func WriteTempFile(dir string, workouts []models.Workout, log *slog.Logger) string {
	tmp, err := os.MkdirTemp(dir, "doonemore-export-")
	if err != nil {
		log.Error("creating export dir", "error", err)
		return ""
	}
	path := filepath.Join(tmp, FileName)
	f, err := os.Create(path)
	if err != nil {
		log.Error("creating export file", "path", path, "error", err)
		return ""
	}
	if err := WriteCSV(f, workouts); err != nil {
		f.Close()
		log.Error("writing export file", "path", path, "error", err)
		return ""
	}
	if err := f.Close(); err != nil {
		log.Error("closing export file", "path", path, "error", err)
		return ""
	}
	log.Info("exported workouts", "path", path, "workouts", len(workouts))
	return path
}
