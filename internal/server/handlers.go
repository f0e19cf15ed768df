package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/claude/ironquest/internal/catalog"
	"github.com/claude/ironquest/internal/models"
	"github.com/claude/ironquest/internal/routine"
	"github.com/claude/ironquest/internal/scoring"
	"github.com/claude/ironquest/internal/session"
	"github.com/claude/ironquest/internal/storage"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

func (s *Server) handleMe(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, userInfoFromContext(r))
}

func (s *Server) handleSearchExercises(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filters := catalog.Filters{
		BodyPart:   q.Get("body_part"),
		Equipment:  q.Get("equipment"),
		Difficulty: q.Get("difficulty"),
	}
	page, _ := strconv.Atoi(q.Get("page"))
	perPage, _ := strconv.Atoi(q.Get("per_page"))

	items, total, err := s.catalog.Search(r.Context(), filters, q.Get("q"), page, perPage)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"items": items, "total": total})
}

func (s *Server) handleImportExercises(w http.ResponseWriter, r *http.Request) {
	var exercises []models.Exercise
	if err := json.NewDecoder(r.Body).Decode(&exercises); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON: " + err.Error()})
		return
	}
	inserted, err := s.db.InsertExercises(r.Context(), exercises)
	if err != nil {
		s.log.Error("exercise import", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"received": len(exercises), "inserted": inserted})
}

func (s *Server) handleListRoutines(w http.ResponseWriter, r *http.Request) {
	uid := userIDFromContext(r)
	routines, err := s.db.ListRoutines(r.Context(), uid)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, routines)
}

func (s *Server) handleCreateRoutine(w http.ResponseWriter, r *http.Request) {
	uid := userIDFromContext(r)
	var req struct {
		Name        string `json:"name"`
		Description string `json:"description"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON: " + err.Error()})
		return
	}
	if req.Name == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "name is required"})
		return
	}

	rt := models.Routine{
		ID:          uuid.New(),
		Name:        req.Name,
		Description: req.Description,
		Exercises:   []models.RoutineExercise{},
	}
	if err := s.db.UpsertRoutine(r.Context(), uid, rt); err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusCreated, rt)
}

func (s *Server) handleGetRoutine(w http.ResponseWriter, r *http.Request) {
	uid := userIDFromContext(r)
	id, ok := parseID(w, chi.URLParam(r, "id"))
	if !ok {
		return
	}
	rt, err := s.db.GetRoutine(r.Context(), id, uid)
	if err != nil {
		writeStorageError(w, err)
		return
	}
	// Estimated XP is a preview for the detail view, never persisted.
	writeJSON(w, http.StatusOK, map[string]any{
		"routine":      rt,
		"estimated_xp": scoring.EstimatedXP(*rt),
	})
}

func (s *Server) handleUpdateRoutine(w http.ResponseWriter, r *http.Request) {
	uid := userIDFromContext(r)
	id, ok := parseID(w, chi.URLParam(r, "id"))
	if !ok {
		return
	}
	existing, err := s.db.GetRoutine(r.Context(), id, uid)
	if err != nil {
		writeStorageError(w, err)
		return
	}

	var req models.Routine
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON: " + err.Error()})
		return
	}
	// The id, favorite flag and last-performed marker are not editable
	// through this endpoint.
	req.ID = existing.ID
	req.IsFavorite = existing.IsFavorite
	req.LastPerformed = existing.LastPerformed

	if err := s.db.UpsertRoutine(r.Context(), uid, req); err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, req)
}

func (s *Server) handleDeleteRoutine(w http.ResponseWriter, r *http.Request) {
	uid := userIDFromContext(r)
	id, ok := parseID(w, chi.URLParam(r, "id"))
	if !ok {
		return
	}
	if err := s.db.DeleteRoutine(r.Context(), id, uid); err != nil {
		writeStorageError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleSetFavorite(w http.ResponseWriter, r *http.Request) {
	uid := userIDFromContext(r)
	id, ok := parseID(w, chi.URLParam(r, "id"))
	if !ok {
		return
	}
	if err := s.db.SetFavoriteRoutine(r.Context(), id, uid); err != nil {
		writeStorageError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleForkRoutine(w http.ResponseWriter, r *http.Request) {
	uid := userIDFromContext(r)
	id, ok := parseID(w, chi.URLParam(r, "id"))
	if !ok {
		return
	}
	src, err := s.db.GetRoutine(r.Context(), id, uid)
	if err != nil {
		writeStorageError(w, err)
		return
	}
	forked := routine.Fork(*src)
	if err := s.db.UpsertRoutine(r.Context(), uid, forked); err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusCreated, forked)
}

type addExerciseRequest struct {
	Exercise models.Exercise  `json:"exercise"`
	Targets  *session.Targets `json:"targets,omitempty"`
}

func (req *addExerciseRequest) targets() session.Targets {
	if req.Targets != nil {
		return *req.Targets
	}
	return session.DefaultTargets
}

func (s *Server) handleAddExercise(w http.ResponseWriter, r *http.Request) {
	uid := userIDFromContext(r)
	id, ok := parseID(w, chi.URLParam(r, "id"))
	if !ok {
		return
	}
	var req addExerciseRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON: " + err.Error()})
		return
	}

	rt, err := s.db.GetRoutine(r.Context(), id, uid)
	if err != nil {
		writeStorageError(w, err)
		return
	}
	updated := routine.AddExercise(*rt, req.Exercise, req.targets())
	if err := s.db.UpsertRoutine(r.Context(), uid, updated); err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, updated)
}

func (s *Server) handleAddExerciseToActive(w http.ResponseWriter, r *http.Request) {
	uid := userIDFromContext(r)
	var req addExerciseRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON: " + err.Error()})
		return
	}

	routines, err := s.db.ListRoutines(r.Context(), uid)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	active, err := routine.ActiveRoutine(routines)
	if err != nil {
		writeJSON(w, http.StatusConflict, map[string]string{"error": err.Error()})
		return
	}
	updated := routine.AddExercise(active, req.Exercise, req.targets())
	if err := s.db.UpsertRoutine(r.Context(), uid, updated); err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, updated)
}

func (s *Server) handleRemoveExercise(w http.ResponseWriter, r *http.Request) {
	uid := userIDFromContext(r)
	id, ok := parseID(w, chi.URLParam(r, "id"))
	if !ok {
		return
	}
	exID, ok := parseID(w, chi.URLParam(r, "exerciseID"))
	if !ok {
		return
	}

	rt, err := s.db.GetRoutine(r.Context(), id, uid)
	if err != nil {
		writeStorageError(w, err)
		return
	}
	updated, err := routine.RemoveExercise(*rt, exID)
	if err != nil {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": err.Error()})
		return
	}
	if err := s.db.UpsertRoutine(r.Context(), uid, updated); err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, updated)
}

func (s *Server) handleQueryLogs(w http.ResponseWriter, r *http.Request) {
	uid := userIDFromContext(r)
	start, end, err := parseTimeRange(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}
	logs, err := s.db.QueryWorkoutLogs(r.Context(), start, end, uid)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, logs)
}

func (s *Server) handleGetLog(w http.ResponseWriter, r *http.Request) {
	uid := userIDFromContext(r)
	id, ok := parseID(w, chi.URLParam(r, "id"))
	if !ok {
		return
	}
	log, err := s.db.GetWorkoutLog(r.Context(), id, uid)
	if err != nil {
		writeStorageError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, log)
}

func (s *Server) handleTrainingStats(w http.ResponseWriter, r *http.Request) {
	uid := userIDFromContext(r)
	stats, err := s.db.GetTrainingStats(r.Context(), uid)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// writeStorageError maps storage.ErrNotFound to 404, everything else to 500.
func writeStorageError(w http.ResponseWriter, err error) {
	if errors.Is(err, storage.ErrNotFound) {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "not found"})
		return
	}
	writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
}

func parseID(w http.ResponseWriter, raw string) (uuid.UUID, bool) {
	id, err := uuid.Parse(raw)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid id"})
		return uuid.Nil, false
	}
	return id, true
}

func parseTimeRange(r *http.Request) (start, end time.Time, err error) {
	startStr := r.URL.Query().Get("start")
	endStr := r.URL.Query().Get("end")

	if startStr == "" {
		// Default: last 30 days
		end = time.Now()
		start = end.AddDate(0, 0, -30)
		return
	}

	start, err = parseFlexTime(startStr)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}

	if endStr == "" {
		end = time.Now()
	} else {
		end, err = parseFlexTime(endStr)
		if err != nil {
			return time.Time{}, time.Time{}, err
		}
	}
	return
}

func parseFlexTime(s string) (time.Time, error) {
	t, err := time.Parse(time.RFC3339, s)
	if err == nil {
		return t, nil
	}
	return time.Parse("2006-01-02", s)
}
