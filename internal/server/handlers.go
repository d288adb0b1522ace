package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/meltforce/doonemore/internal/models"
	"github.com/meltforce/doonemore/internal/share"
	"github.com/meltforce/doonemore/internal/tracker"
)

// maxImportBytes caps routine file uploads.
const maxImportBytes = 1 << 20

type exerciseRequest struct {
	Name            string                  `json:"name"`
	SelectedMetrics []models.ExerciseMetric `json:"selectedMetrics"`
	Category        models.ExerciseCategory `json:"category"`
}

type routineRequest struct {
	Name  string               `json:"name"`
	Items []models.RoutineItem `json:"items"`
}

type sessionRequest struct {
	Records []models.ExerciseRecord `json:"records"`
}

type workoutRequest struct {
	ExerciseType string             `json:"exerciseType"`
	Sets         []models.SetRecord `json:"sets"`
}

type linkRequest struct {
	Link string `json:"link"`
}

func (s *Server) handleTheme(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.theme)
}

// --- Exercises ---

func (s *Server) handleListExercises(w http.ResponseWriter, r *http.Request) {
	if r.URL.Query().Get("group") == "category" {
		writeJSON(w, http.StatusOK, s.tracker.ExerciseGroups())
		return
	}
	exercises := s.tracker.Exercises()
	if r.URL.Query().Get("sort") == "category" {
		models.SortExercises(exercises)
	}
	writeJSON(w, http.StatusOK, exercises)
}

func (s *Server) handleCreateExercise(w http.ResponseWriter, r *http.Request) {
	var req exerciseRequest
	if !decodeBody(w, r, &req) {
		return
	}
	e, err := s.tracker.AddExercise(r.Context(), req.Name, req.SelectedMetrics, req.Category)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, e)
}

func (s *Server) handleUpdateExercise(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	var req exerciseRequest
	if !decodeBody(w, r, &req) {
		return
	}
	e, err := s.tracker.UpdateExercise(r.Context(), id, req.Name, req.SelectedMetrics, req.Category)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, e)
}

func (s *Server) handleDeleteExercise(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	if err := s.tracker.DeleteExercise(r.Context(), id); err != nil {
		s.writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleLatestWorkout(w http.ResponseWriter, r *http.Request) {
	name := r.URL.Query().Get("name")
	if name == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "name parameter required"})
		return
	}
	workout, ok := s.tracker.MostRecentWorkout(name)
	if !ok {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "no workouts for " + name})
		return
	}
	writeJSON(w, http.StatusOK, workout)
}

// --- Routines ---

func (s *Server) handleListRoutines(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.tracker.Routines())
}

func (s *Server) handleCreateRoutine(w http.ResponseWriter, r *http.Request) {
	var req routineRequest
	if !decodeBody(w, r, &req) {
		return
	}
	routine, err := s.tracker.CreateRoutine(r.Context(), req.Name, req.Items)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, routine)
}

func (s *Server) handleUpdateRoutine(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	var req routineRequest
	if !decodeBody(w, r, &req) {
		return
	}
	routine, err := s.tracker.UpdateRoutine(r.Context(), id, req.Name, req.Items)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, routine)
}

func (s *Server) handleDeleteRoutine(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	if err := s.tracker.DeleteRoutine(r.Context(), id); err != nil {
		s.writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleRoutineFile(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	name, data, err := s.tracker.ExportRoutineFile(id)
	if err != nil {
		s.writeError(w, err)
		return
	}
	w.Header().Set("Content-Type", share.FileContentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", name))
	w.WriteHeader(http.StatusOK)
	w.Write(data)
}

func (s *Server) handleRoutineLink(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	link, err := s.tracker.RoutineLink(id)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, linkRequest{Link: link})
}

func (s *Server) handleImportLink(w http.ResponseWriter, r *http.Request) {
	var req linkRequest
	if !decodeBody(w, r, &req) {
		return
	}
	routine, err := s.tracker.ImportRoutineLink(r.Context(), req.Link)
	if err != nil {
		writeJSON(w, http.StatusUnprocessableEntity, map[string]share.Alert{"alert": share.AlertFor(err)})
		return
	}
	writeJSON(w, http.StatusCreated, routine)
}

func (s *Server) handleImportFile(w http.ResponseWriter, r *http.Request) {
	data, err := io.ReadAll(io.LimitReader(r.Body, maxImportBytes))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "reading body: " + err.Error()})
		return
	}
	routine, err := s.tracker.ImportRoutineFile(r.Context(), data)
	if err != nil {
		writeJSON(w, http.StatusUnprocessableEntity, map[string]share.Alert{"alert": share.AlertFor(err)})
		return
	}
	writeJSON(w, http.StatusCreated, routine)
}

// --- Workouts ---

func (s *Server) handleListWorkouts(w http.ResponseWriter, r *http.Request) {
	if name := r.URL.Query().Get("exercise"); name != "" {
		writeJSON(w, http.StatusOK, s.tracker.History(name))
		return
	}
	limit := 0
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "limit must be a non-negative integer"})
			return
		}
		limit = n
	}
	writeJSON(w, http.StatusOK, s.tracker.RecentWorkouts(limit))
}

func (s *Server) handleSaveSession(w http.ResponseWriter, r *http.Request) {
	var req sessionRequest
	if !decodeBody(w, r, &req) {
		return
	}
	workouts, err := s.tracker.SaveSession(r.Context(), req.Records)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, workouts)
}

func (s *Server) handleUpdateWorkout(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	var req workoutRequest
	if !decodeBody(w, r, &req) {
		return
	}
	workout, err := s.tracker.UpdateWorkout(r.Context(), id, req.ExerciseType, req.Sets)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, workout)
}

func (s *Server) handleDeleteWorkout(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	if err := s.tracker.DeleteWorkout(r.Context(), id); err != nil {
		s.writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleExportCSV(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="workouts.csv"`)
	if err := s.tracker.ExportWorkoutsCSV(w); err != nil {
		// Headers are gone by now; the client sees a truncated file.
		s.log.Error("csv export", "error", err)
	}
}

// --- Helpers ---

var validationErrors = []error{
	models.ErrNameRequired,
	models.ErrMetricsRequired,
	models.ErrRecordsRequired,
	models.ErrExerciseRequired,
	models.ErrSetInputRequired,
}

func (s *Server) writeError(w http.ResponseWriter, err error) {
	if errors.Is(err, tracker.ErrNotFound) {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": err.Error()})
		return
	}
	for _, v := range validationErrors {
		if errors.Is(err, v) {
			writeJSON(w, http.StatusUnprocessableEntity, map[string]string{"error": err.Error()})
			return
		}
	}
	s.log.Error("request failed", "error", err)
	writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
}

func decodeBody(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON: " + err.Error()})
		return false
	}
	return true
}

func pathID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid ID"})
		return uuid.Nil, false
	}
	return id, true
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
