package mcp

import (
	"context"
	"encoding/json"
	"time"

	"github.com/claude/ironquest/internal/models"
	"github.com/claude/ironquest/internal/scoring"
	"github.com/mark3labs/mcp-go/mcp"
)

func (h *handlers) profileSummary(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	uid := UserIDFromContext(ctx)

	profile, err := h.ds.GetProfile(ctx, uid)
	if err != nil {
		return nil, err
	}

	stats, err := h.ds.GetTrainingStats(ctx, uid)
	if err != nil {
		h.log.Warn("profile_summary: training stats failed", "error", err)
	}

	summary := map[string]any{
		"profile":        profile,
		"training_stats": stats,
	}
	return jsonResource(req.Params.URI, summary)
}

func (h *handlers) recentLogs(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	uid := UserIDFromContext(ctx)
	end := time.Now()
	start := end.AddDate(0, 0, -14)

	logs, err := h.ds.QueryWorkoutLogs(ctx, start, end, uid)
	if err != nil {
		return nil, err
	}
	return jsonResource(req.Params.URI, logs)
}

func (h *handlers) routineList(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	uid := UserIDFromContext(ctx)

	routines, err := h.ds.ListRoutines(ctx, uid)
	if err != nil {
		return nil, err
	}

	type entry struct {
		Routine       models.Routine `json:"routine"`
		ExerciseCount int            `json:"exercise_count"`
		EstimatedXP   int            `json:"estimated_xp"`
	}
	list := make([]entry, 0, len(routines))
	for _, rt := range routines {
		list = append(list, entry{
			Routine:       rt,
			ExerciseCount: len(rt.Exercises),
			EstimatedXP:   scoring.EstimatedXP(rt),
		})
	}
	return jsonResource(req.Params.URI, list)
}

func jsonResource(uri string, v any) ([]mcp.ResourceContents, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      uri,
			MIMEType: "application/json",
			Text:     string(data),
		},
	}, nil
}
