package mcp

import (
	"context"
	"time"

	"github.com/claude/ironquest/internal/scoring"
	"github.com/google/uuid"
	"github.com/mark3labs/mcp-go/mcp"
)

// defaultTimeRange returns start/end defaulting to the last 30 days.
func defaultTimeRange(startStr, endStr string) (time.Time, time.Time, error) {
	var start, end time.Time
	var err error

	if endStr != "" {
		end, err = parseFlexTime(endStr)
		if err != nil {
			return time.Time{}, time.Time{}, err
		}
	} else {
		end = time.Now()
	}

	if startStr != "" {
		start, err = parseFlexTime(startStr)
		if err != nil {
			return time.Time{}, time.Time{}, err
		}
	} else {
		start = end.AddDate(0, 0, -30)
	}

	return start, end, nil
}

func parseFlexTime(s string) (time.Time, error) {
	t, err := time.Parse(time.RFC3339, s)
	if err == nil {
		return t, nil
	}
	t, err = time.Parse("2006-01-02", s)
	if err == nil {
		return t, nil
	}
	return time.Time{}, err
}

// --- Tool definitions ---

var toolGetWorkoutLogs = mcp.NewTool("get_workout_logs",
	mcp.WithDescription("Query workout logs over a time range. Each log includes status (COMPLETED/INCOMPLETE/ABORTED), duration, XP earned, total volume, and per-set detail."),
	mcp.WithString("start", mcp.Description("Start date (ISO 8601 or YYYY-MM-DD). Defaults to 30 days ago.")),
	mcp.WithString("end", mcp.Description("End date (ISO 8601 or YYYY-MM-DD). Defaults to now.")),
)

var toolGetWorkoutLog = mcp.NewTool("get_workout_log",
	mcp.WithDescription("Fetch a single workout log by ID, including the full exercise and set snapshot."),
	mcp.WithString("id", mcp.Required(), mcp.Description("Workout log UUID")),
)

var toolGetRoutines = mcp.NewTool("get_routines",
	mcp.WithDescription("List all workout routines. The favorite (active) routine sorts first."),
)

var toolGetRoutine = mcp.NewTool("get_routine",
	mcp.WithDescription("Fetch a routine by ID with its exercises, targets, and the XP a fully completed run would earn."),
	mcp.WithString("id", mcp.Required(), mcp.Description("Routine UUID")),
)

var toolGetProfile = mcp.NewTool("get_profile",
	mcp.WithDescription("Get the user's progression profile: level, current XP, XP required for the next level, and body stats."),
)

var toolGetTrainingStats = mcp.NewTool("get_training_stats",
	mcp.WithDescription("Lifetime training aggregates: session counts by status, total XP, total volume, total minutes, and per-routine counts."),
)

var toolSearchExercises = mcp.NewTool("search_exercises",
	mcp.WithDescription("Search the exercise catalog by name with optional filters."),
	mcp.WithString("query", mcp.Description("Substring to match against exercise names")),
	mcp.WithString("body_part", mcp.Description("Filter by body part (e.g. 'chest', 'back')")),
	mcp.WithString("equipment", mcp.Description("Filter by equipment (e.g. 'barbell', 'body weight')")),
	mcp.WithString("difficulty", mcp.Description("Filter by difficulty"), mcp.Enum("beginner", "intermediate", "expert")),
	mcp.WithNumber("limit", mcp.Description("Maximum results. Defaults to 20.")),
)

// --- Tool handlers ---

func (h *handlers) getWorkoutLogs(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	start, end, err := defaultTimeRange(req.GetString("start", ""), req.GetString("end", ""))
	if err != nil {
		return mcp.NewToolResultError("invalid date format: " + err.Error()), nil
	}

	uid := UserIDFromContext(ctx)
	logs, err := h.ds.QueryWorkoutLogs(ctx, start, end, uid)
	if err != nil {
		h.log.Error("mcp get_workout_logs", "error", err)
		return mcp.NewToolResultError("query failed: " + err.Error()), nil
	}

	result, err := mcp.NewToolResultJSON(logs)
	if err != nil {
		return mcp.NewToolResultError("serialization failed"), nil
	}
	return result, nil
}

func (h *handlers) getWorkoutLog(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	raw, err := req.RequireString("id")
	if err != nil {
		return mcp.NewToolResultError("id parameter is required"), nil
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return mcp.NewToolResultError("invalid log id"), nil
	}

	uid := UserIDFromContext(ctx)
	log, err := h.ds.GetWorkoutLog(ctx, id, uid)
	if err != nil {
		h.log.Error("mcp get_workout_log", "error", err)
		return mcp.NewToolResultError("query failed: " + err.Error()), nil
	}

	result, err := mcp.NewToolResultJSON(log)
	if err != nil {
		return mcp.NewToolResultError("serialization failed"), nil
	}
	return result, nil
}

func (h *handlers) getRoutines(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	uid := UserIDFromContext(ctx)
	routines, err := h.ds.ListRoutines(ctx, uid)
	if err != nil {
		h.log.Error("mcp get_routines", "error", err)
		return mcp.NewToolResultError("query failed: " + err.Error()), nil
	}

	result, err := mcp.NewToolResultJSON(routines)
	if err != nil {
		return mcp.NewToolResultError("serialization failed"), nil
	}
	return result, nil
}

func (h *handlers) getRoutine(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	raw, err := req.RequireString("id")
	if err != nil {
		return mcp.NewToolResultError("id parameter is required"), nil
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return mcp.NewToolResultError("invalid routine id"), nil
	}

	uid := UserIDFromContext(ctx)
	rt, err := h.ds.GetRoutine(ctx, id, uid)
	if err != nil {
		h.log.Error("mcp get_routine", "error", err)
		return mcp.NewToolResultError("query failed: " + err.Error()), nil
	}

	result, err := mcp.NewToolResultJSON(map[string]any{
		"routine":      rt,
		"estimated_xp": scoring.EstimatedXP(*rt),
	})
	if err != nil {
		return mcp.NewToolResultError("serialization failed"), nil
	}
	return result, nil
}

func (h *handlers) getProfile(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	uid := UserIDFromContext(ctx)
	profile, err := h.ds.GetProfile(ctx, uid)
	if err != nil {
		h.log.Error("mcp get_profile", "error", err)
		return mcp.NewToolResultError("query failed: " + err.Error()), nil
	}
	if profile == nil {
		return mcp.NewToolResultError("no profile yet; the user has not onboarded"), nil
	}

	result, err := mcp.NewToolResultJSON(profile)
	if err != nil {
		return mcp.NewToolResultError("serialization failed"), nil
	}
	return result, nil
}

func (h *handlers) getTrainingStats(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	uid := UserIDFromContext(ctx)
	stats, err := h.ds.GetTrainingStats(ctx, uid)
	if err != nil {
		h.log.Error("mcp get_training_stats", "error", err)
		return mcp.NewToolResultError("query failed: " + err.Error()), nil
	}

	result, err := mcp.NewToolResultJSON(stats)
	if err != nil {
		return mcp.NewToolResultError("serialization failed"), nil
	}
	return result, nil
}

func (h *handlers) searchExercises(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	limit := req.GetInt("limit", 20)
	if limit < 1 || limit > 100 {
		limit = 20
	}

	items, total, err := h.ds.SearchExercises(ctx,
		req.GetString("query", ""),
		req.GetString("body_part", ""),
		req.GetString("equipment", ""),
		req.GetString("difficulty", ""),
		limit, 0)
	if err != nil {
		h.log.Error("mcp search_exercises", "error", err)
		return mcp.NewToolResultError("query failed: " + err.Error()), nil
	}

	result, err := mcp.NewToolResultJSON(map[string]any{"items": items, "total": total})
	if err != nil {
		return mcp.NewToolResultError("serialization failed"), nil
	}
	return result, nil
}
