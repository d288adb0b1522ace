package server

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/meltforce/doonemore/internal/config"
	"github.com/meltforce/doonemore/internal/tracker"
)

// Server holds dependencies for HTTP handlers.
type Server struct {
	tracker *tracker.Tracker
	theme   config.Theme
	log     *slog.Logger
	apiKey  string
	router  chi.Router
}

// New creates a new Server with all routes configured. An empty apiKey
// leaves the API unauthenticated.
func New(t *tracker.Tracker, theme config.Theme, apiKey string, log *slog.Logger) *Server {
	s := &Server{
		tracker: t,
		theme:   theme,
		log:     log,
		apiKey:  apiKey,
		router:  chi.NewRouter(),
	}
	s.routes()
	return s
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) routes() {
	s.router.Use(RequestLogging(s.log))
	s.router.Use(CORS)

	s.router.Route("/api/v1", func(r chi.Router) {
		if s.apiKey != "" {
			r.Use(APIKeyAuth(s.apiKey))
		}

		r.Get("/theme", s.handleTheme)

		r.Route("/exercises", func(r chi.Router) {
			r.Get("/", s.handleListExercises)
			r.Post("/", s.handleCreateExercise)
			r.Get("/latest", s.handleLatestWorkout)
			r.Put("/{id}", s.handleUpdateExercise)
			r.Delete("/{id}", s.handleDeleteExercise)
		})

		r.Route("/routines", func(r chi.Router) {
			r.Get("/", s.handleListRoutines)
			r.Post("/", s.handleCreateRoutine)
			r.Post("/import/link", s.handleImportLink)
			r.Post("/import/file", s.handleImportFile)
			r.Put("/{id}", s.handleUpdateRoutine)
			r.Delete("/{id}", s.handleDeleteRoutine)
			r.Get("/{id}/file", s.handleRoutineFile)
			r.Get("/{id}/link", s.handleRoutineLink)
		})

		r.Post("/sessions", s.handleSaveSession)

		r.Route("/workouts", func(r chi.Router) {
			r.Get("/", s.handleListWorkouts)
			r.Get("/export.csv", s.handleExportCSV)
			r.Put("/{id}", s.handleUpdateWorkout)
			r.Delete("/{id}", s.handleDeleteWorkout)
		})
	})
}
