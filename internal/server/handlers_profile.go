package server

import (
	"encoding/json"
	"net/http"

	"github.com/claude/ironquest/internal/models"
)

// handleGetProfile returns the user's profile. Absence means the user has
// not onboarded yet; the client gets a fresh default marked accordingly.
func (s *Server) handleGetProfile(w http.ResponseWriter, r *http.Request) {
	uid := userIDFromContext(r)
	profile, err := s.db.GetProfile(r.Context(), uid)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	if profile == nil {
		p := models.NewProfile(uid, userInfoFromContext(r).DisplayName)
		writeJSON(w, http.StatusOK, map[string]any{"profile": p, "needs_onboarding": true})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"profile": profile, "needs_onboarding": !profile.Onboarded})
}

// handleUpdateProfile edits name and body measurements. Progression fields
// are owned by the session flow and cannot be written here.
func (s *Server) handleUpdateProfile(w http.ResponseWriter, r *http.Request) {
	uid := userIDFromContext(r)
	var req struct {
		Name     string  `json:"name"`
		HeightCm float64 `json:"height_cm"`
		WeightKg float64 `json:"weight_kg"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON: " + err.Error()})
		return
	}

	profile, err := s.db.GetProfile(r.Context(), uid)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	if profile == nil {
		p := models.NewProfile(uid, req.Name)
		profile = &p
	}
	profile.Name = req.Name
	profile.HeightCm = req.HeightCm
	profile.WeightKg = req.WeightKg
	profile.Onboarded = true

	if err := s.db.UpsertProfile(r.Context(), *profile); err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, profile)
}

// handleCalibrateStats overwrites the biometric radar stats. Values are
// clamped to each stat's fixed maximum.
func (s *Server) handleCalibrateStats(w http.ResponseWriter, r *http.Request) {
	uid := userIDFromContext(r)
	var req struct {
		Stats []models.BodyStat `json:"stats"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON: " + err.Error()})
		return
	}

	profile, err := s.db.GetProfile(r.Context(), uid)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	if profile == nil {
		p := models.NewProfile(uid, userInfoFromContext(r).DisplayName)
		profile = &p
	}

	for i := range req.Stats {
		if req.Stats[i].Max <= 0 {
			req.Stats[i].Max = models.DefaultBodyStatMax
		}
		if req.Stats[i].Value < 0 {
			req.Stats[i].Value = 0
		}
		if req.Stats[i].Value > req.Stats[i].Max {
			req.Stats[i].Value = req.Stats[i].Max
		}
	}
	profile.BodyStats = req.Stats

	if err := s.db.UpsertProfile(r.Context(), *profile); err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, profile)
}
