package server

import (
	"log/slog"
	"net/http"

	"github.com/claude/ironquest/internal/catalog"
	"github.com/claude/ironquest/internal/session"
	"github.com/claude/ironquest/internal/storage"
	"github.com/go-chi/chi/v5"
	"tailscale.com/client/tailscale"
)

// Server holds dependencies for HTTP handlers.
type Server struct {
	db       *storage.DB
	catalog  *catalog.Service
	sessions *session.Manager
	log      *slog.Logger
	apiKey   string
	router   chi.Router
	ts       *tailscale.LocalClient
}

// New creates a new Server with all routes configured.
func New(db *storage.DB, cat *catalog.Service, sessions *session.Manager, apiKey string, log *slog.Logger) *Server {
	s := &Server{
		db:       db,
		catalog:  cat,
		sessions: sessions,
		log:      log,
		apiKey:   apiKey,
		router:   chi.NewRouter(),
	}
	s.routes()
	return s
}

// SetTailscale enables whois-based identity resolution via the tsnet local
// client. Without it, DevIdentity injects a local user.
func (s *Server) SetTailscale(lc *tailscale.LocalClient) {
	s.ts = lc
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) routes() {
	s.router.Use(RequestLogging(s.log))
	s.router.Use(CORS)
	s.router.Use(s.identity)

	// Catalog seeding endpoint (API key required; the import CLI talks to it)
	s.router.Route("/api/v1/import", func(r chi.Router) {
		r.Use(APIKeyAuth(s.apiKey))
		r.Post("/exercises", s.handleImportExercises)
	})

	s.router.Get("/api/v1/me", s.handleMe)

	// Exercise catalog
	s.router.Get("/api/v1/exercises", s.handleSearchExercises)

	// Routines
	s.router.Route("/api/v1/routines", func(r chi.Router) {
		r.Get("/", s.handleListRoutines)
		r.Post("/", s.handleCreateRoutine)
		r.Post("/active/exercises", s.handleAddExerciseToActive)
		r.Get("/{id}", s.handleGetRoutine)
		r.Put("/{id}", s.handleUpdateRoutine)
		r.Delete("/{id}", s.handleDeleteRoutine)
		r.Post("/{id}/favorite", s.handleSetFavorite)
		r.Post("/{id}/fork", s.handleForkRoutine)
		r.Post("/{id}/exercises", s.handleAddExercise)
		r.Delete("/{id}/exercises/{exerciseID}", s.handleRemoveExercise)
	})

	// Workout session
	s.router.Route("/api/v1/session", func(r chi.Router) {
		r.Get("/", s.handleGetSession)
		r.Post("/start", s.handleStartSession)
		r.Post("/exercises", s.handleSessionAddExercise)
		r.Post("/exercises/{exerciseID}/sets/{index}/toggle", s.handleToggleSet)
		r.Patch("/exercises/{exerciseID}/sets/{index}", s.handleUpdateSet)
		r.Post("/exercises/{exerciseID}/complete", s.handleMarkAllSets)
		r.Post("/pause", s.handlePauseSession)
		r.Post("/resume", s.handleResumeSession)
		r.Post("/finish", s.handleFinishSession)
		r.Post("/abort", s.handleAbortSession)
	})

	// History and profile
	s.router.Get("/api/v1/logs", s.handleQueryLogs)
	s.router.Get("/api/v1/logs/{id}", s.handleGetLog)
	s.router.Get("/api/v1/profile", s.handleGetProfile)
	s.router.Put("/api/v1/profile", s.handleUpdateProfile)
	s.router.Put("/api/v1/profile/stats", s.handleCalibrateStats)
	s.router.Get("/api/v1/stats", s.handleTrainingStats)
}

// identity picks the whois middleware when a tailscale client is present,
// otherwise the dev fallback.
func (s *Server) identity(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if s.ts != nil {
			TailscaleIdentity(s.ts, s.db, s.log)(next).ServeHTTP(w, r)
			return
		}
		DevIdentity(next).ServeHTTP(w, r)
	})
}
