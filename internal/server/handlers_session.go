package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/claude/ironquest/internal/models"
	"github.com/claude/ironquest/internal/progression"
	"github.com/claude/ironquest/internal/session"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

func (s *Server) handleGetSession(w http.ResponseWriter, r *http.Request) {
	uid := userIDFromContext(r)
	sess, ok := s.sessions.Active(uid)
	if !ok {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": session.ErrNoActiveSession.Error()})
		return
	}
	elapsed, _ := s.sessions.Elapsed(uid)
	writeJSON(w, http.StatusOK, map[string]any{
		"session":     sess,
		"progress":    session.Progress(sess),
		"elapsed_sec": int(elapsed.Seconds()),
	})
}

func (s *Server) handleStartSession(w http.ResponseWriter, r *http.Request) {
	uid := userIDFromContext(r)
	var req struct {
		RoutineID uuid.UUID `json:"routine_id"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON: " + err.Error()})
		return
	}

	rt, err := s.db.GetRoutine(r.Context(), req.RoutineID, uid)
	if err != nil {
		writeStorageError(w, err)
		return
	}
	sess, err := s.sessions.Start(uid, *rt)
	if err != nil {
		writeSessionError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, sess)
}

func (s *Server) handleSessionAddExercise(w http.ResponseWriter, r *http.Request) {
	uid := userIDFromContext(r)
	var req addExerciseRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON: " + err.Error()})
		return
	}
	sess, err := s.sessions.AddExercise(uid, req.Exercise, req.targets())
	if err != nil {
		writeSessionError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, sess)
}

func (s *Server) handleToggleSet(w http.ResponseWriter, r *http.Request) {
	uid := userIDFromContext(r)
	exID, index, ok := parseSetRef(w, r)
	if !ok {
		return
	}
	if err := s.sessions.ToggleSet(uid, exID, index); err != nil {
		writeSessionError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleUpdateSet(w http.ResponseWriter, r *http.Request) {
	uid := userIDFromContext(r)
	exID, index, ok := parseSetRef(w, r)
	if !ok {
		return
	}
	var req struct {
		Field session.SetField `json:"field"`
		Value string           `json:"value"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON: " + err.Error()})
		return
	}
	if err := s.sessions.UpdateSetValue(uid, exID, index, req.Field, req.Value); err != nil {
		writeSessionError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleMarkAllSets(w http.ResponseWriter, r *http.Request) {
	uid := userIDFromContext(r)
	exID, ok := parseID(w, chi.URLParam(r, "exerciseID"))
	if !ok {
		return
	}
	var req struct {
		Completed bool `json:"completed"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON: " + err.Error()})
		return
	}
	if err := s.sessions.MarkAllSets(uid, exID, req.Completed); err != nil {
		writeSessionError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handlePauseSession(w http.ResponseWriter, r *http.Request) {
	if err := s.sessions.Pause(userIDFromContext(r)); err != nil {
		writeSessionError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleResumeSession(w http.ResponseWriter, r *http.Request) {
	if err := s.sessions.Resume(userIDFromContext(r)); err != nil {
		writeSessionError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleFinishSession(w http.ResponseWriter, r *http.Request) {
	uid := userIDFromContext(r)
	log, err := s.sessions.Finish(uid)
	if err != nil {
		writeSessionError(w, err)
		return
	}
	s.completeSession(w, r, uid, log, true)
}

// handleAbortSession assumes the client already confirmed the destructive
// action with the user; the server cannot distinguish a confirmed abort
// from an unconfirmed one.
func (s *Server) handleAbortSession(w http.ResponseWriter, r *http.Request) {
	uid := userIDFromContext(r)
	log, err := s.sessions.Abort(uid)
	if err != nil {
		writeSessionError(w, err)
		return
	}
	s.completeSession(w, r, uid, log, false)
}

// completeSession persists a terminal session's log, applies progression,
// and stamps the source routine on a finished (not aborted) run. The
// in-memory log is authoritative: persistence failures are logged and
// reported as warnings, never rolled back.
func (s *Server) completeSession(w http.ResponseWriter, r *http.Request, uid int, log *models.WorkoutLog, stampRoutine bool) {
	var warnings []string

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if _, err := s.db.InsertWorkoutLog(ctx, uid, *log); err != nil {
		s.log.Error("persisting workout log", "log_id", log.ID, "error", err)
		warnings = append(warnings, "workout log could not be saved")
	}

	if stampRoutine {
		if err := s.db.StampLastPerformed(ctx, log.RoutineID, uid, time.Now()); err != nil {
			s.log.Error("stamping last performed", "routine_id", log.RoutineID, "error", err)
			warnings = append(warnings, "routine history could not be updated")
		}
	}

	result := s.applyProgression(ctx, uid, log.XPEarned, &warnings)

	resp := map[string]any{"log": log}
	if result != nil {
		resp["profile"] = result.Profile
		resp["levels_gained"] = result.LevelsGained
	}
	if len(warnings) > 0 {
		resp["warnings"] = warnings
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) applyProgression(ctx context.Context, uid, xp int, warnings *[]string) *progression.Result {
	profile, err := s.db.GetProfile(ctx, uid)
	if err != nil {
		s.log.Error("loading profile for progression", "user_id", uid, "error", err)
		*warnings = append(*warnings, "profile could not be loaded; XP not applied")
		return nil
	}
	if profile == nil {
		p := models.NewProfile(uid, "")
		profile = &p
	}

	result := progression.ApplyXP(*profile, xp)
	if result.LevelsGained > 0 {
		s.log.Info("level up", "user_id", uid, "levels", result.LevelsGained, "new_level", result.Profile.Level)
	}

	if err := s.db.UpsertProfile(ctx, result.Profile); err != nil {
		s.log.Error("persisting profile", "user_id", uid, "error", err)
		*warnings = append(*warnings, "profile progression could not be saved")
	}
	return &result
}

// writeSessionError maps session sentinel errors to HTTP statuses.
func writeSessionError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, session.ErrSessionActive),
		errors.Is(err, session.ErrAlreadyPaused),
		errors.Is(err, session.ErrNotPaused):
		status = http.StatusConflict
	case errors.Is(err, session.ErrNoActiveSession),
		errors.Is(err, session.ErrExerciseNotFound),
		errors.Is(err, session.ErrSetIndexOutOfRange):
		status = http.StatusNotFound
	case errors.Is(err, session.ErrUnknownField):
		status = http.StatusBadRequest
	}
	writeJSON(w, status, map[string]string{"error": err.Error()})
}

func parseSetRef(w http.ResponseWriter, r *http.Request) (uuid.UUID, int, bool) {
	exID, ok := parseID(w, chi.URLParam(r, "exerciseID"))
	if !ok {
		return uuid.Nil, 0, false
	}
	index, err := strconv.Atoi(chi.URLParam(r, "index"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid set index"})
		return uuid.Nil, 0, false
	}
	return exID, index, true
}
