package mcp

import (
	"context"
	"log/slog"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

type contextKey int

const userIDKey contextKey = iota

// UserIDFromContext extracts the user ID injected by the transport layer.
func UserIDFromContext(ctx context.Context) int {
	if id, ok := ctx.Value(userIDKey).(int); ok {
		return id
	}
	return 1
}

// WithUserID returns a context with the given user ID.
func WithUserID(ctx context.Context, userID int) context.Context {
	return context.WithValue(ctx, userIDKey, userID)
}

// New creates an MCP server with all tools and resources registered.
func New(ds DataSource, version string, log *slog.Logger) *server.MCPServer {
	s := server.NewMCPServer("IronQuest", version,
		server.WithToolCapabilities(false),
		server.WithResourceCapabilities(false, false),
		server.WithInstructions("IronQuest workout tracking server. Query workout history, routines, exercise catalog, training stats, and the gamified progression profile. All data is scoped to the authenticated user."),
	)

	h := &handlers{ds: ds, log: log}

	// Tools
	s.AddTools(
		server.ServerTool{Tool: toolGetWorkoutLogs, Handler: h.getWorkoutLogs},
		server.ServerTool{Tool: toolGetWorkoutLog, Handler: h.getWorkoutLog},
		server.ServerTool{Tool: toolGetRoutines, Handler: h.getRoutines},
		server.ServerTool{Tool: toolGetRoutine, Handler: h.getRoutine},
		server.ServerTool{Tool: toolGetProfile, Handler: h.getProfile},
		server.ServerTool{Tool: toolGetTrainingStats, Handler: h.getTrainingStats},
		server.ServerTool{Tool: toolSearchExercises, Handler: h.searchExercises},
	)

	// Resources
	s.AddResources(
		server.ServerResource{Resource: resProfileSummary, Handler: h.profileSummary},
		server.ServerResource{Resource: resRecentLogs, Handler: h.recentLogs},
		server.ServerResource{Resource: resRoutineList, Handler: h.routineList},
	)

	return s
}

// handlers holds dependencies for MCP tool/resource handlers.
type handlers struct {
	ds  DataSource
	log *slog.Logger
}

// --- Resource definitions ---

var resProfileSummary = mcp.NewResource(
	"ironquest://profile_summary",
	"Profile Summary",
	mcp.WithResourceDescription("The user's level, XP progress, body stats, and lifetime training totals"),
	mcp.WithMIMEType("application/json"),
)

var resRecentLogs = mcp.NewResource(
	"ironquest://recent_logs",
	"Recent Workout Logs",
	mcp.WithResourceDescription("Workout logs from the last 14 days"),
	mcp.WithMIMEType("application/json"),
)

var resRoutineList = mcp.NewResource(
	"ironquest://routine_list",
	"Routine List",
	mcp.WithResourceDescription("All routines with exercise counts and estimated XP per run"),
	mcp.WithMIMEType("application/json"),
)
