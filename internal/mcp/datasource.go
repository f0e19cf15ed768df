package mcp

import (
	"context"
	"time"

	"github.com/claude/ironquest/internal/models"
	"github.com/claude/ironquest/internal/storage"
	"github.com/google/uuid"
)

// DataSource abstracts the data layer for MCP tools. Both *storage.DB (local)
// and HTTPClient (remote via REST API) satisfy this interface.
type DataSource interface {
	QueryWorkoutLogs(ctx context.Context, start, end time.Time, userID int) ([]models.WorkoutLog, error)
	GetWorkoutLog(ctx context.Context, logID uuid.UUID, userID int) (*models.WorkoutLog, error)
	ListRoutines(ctx context.Context, userID int) ([]models.Routine, error)
	GetRoutine(ctx context.Context, routineID uuid.UUID, userID int) (*models.Routine, error)
	GetProfile(ctx context.Context, userID int) (*models.UserProfile, error)
	GetTrainingStats(ctx context.Context, userID int) (*storage.TrainingStats, error)
	SearchExercises(ctx context.Context, query, bodyPart, equipment, difficulty string, limit, offset int) ([]models.Exercise, int, error)
}

// Compile-time check: *storage.DB satisfies DataSource.
var _ DataSource = (*storage.DB)(nil)
