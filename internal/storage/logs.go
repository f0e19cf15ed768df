package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/claude/ironquest/internal/models"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// InsertWorkoutLog appends a finished or aborted session's log. Logs are
// append-only; re-inserting the same id is a no-op. Returns true if inserted.
func (db *DB) InsertWorkoutLog(ctx context.Context, userID int, log models.WorkoutLog) (bool, error) {
	exercises, err := json.Marshal(log.Exercises)
	if err != nil {
		return false, fmt.Errorf("encoding log exercises: %w", err)
	}
	tag, err := db.Pool.Exec(ctx, `
		INSERT INTO workout_logs (id, user_id, routine_id, routine_name, date, duration_min,
			xp_earned, exercises_completed, total_volume, status, exercises)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11)
		ON CONFLICT DO NOTHING
	`, log.ID, userID, log.RoutineID, log.RoutineName, log.Date, log.DurationMin,
		log.XPEarned, log.ExercisesCompleted, log.TotalVolume, string(log.Status), exercises)
	if err != nil {
		return false, fmt.Errorf("inserting workout log: %w", err)
	}
	return tag.RowsAffected() > 0, nil
}

// QueryWorkoutLogs retrieves a user's logs in a date range, newest first.
func (db *DB) QueryWorkoutLogs(ctx context.Context, start, end time.Time, userID int) ([]models.WorkoutLog, error) {
	rows, err := db.Pool.Query(ctx,
		`SELECT id, routine_id, routine_name, date, duration_min,
		 xp_earned, exercises_completed, total_volume, status, exercises
		 FROM workout_logs
		 WHERE date >= $1 AND date < $2 AND user_id = $3
		 ORDER BY date DESC`,
		start, end, userID)
	if err != nil {
		return nil, fmt.Errorf("querying workout logs: %w", err)
	}
	defer rows.Close()

	var result []models.WorkoutLog
	for rows.Next() {
		log, err := scanWorkoutLog(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, log)
	}
	return result, rows.Err()
}

// GetWorkoutLog retrieves a single log with its full exercise/set snapshot.
func (db *DB) GetWorkoutLog(ctx context.Context, logID uuid.UUID, userID int) (*models.WorkoutLog, error) {
	row := db.Pool.QueryRow(ctx,
		`SELECT id, routine_id, routine_name, date, duration_min,
		 xp_earned, exercises_completed, total_volume, status, exercises
		 FROM workout_logs
		 WHERE id = $1 AND user_id = $2`, logID, userID)

	log, err := scanWorkoutLog(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &log, nil
}

func scanWorkoutLog(row pgx.Row) (models.WorkoutLog, error) {
	var log models.WorkoutLog
	var status string
	var exercises []byte
	if err := row.Scan(&log.ID, &log.RoutineID, &log.RoutineName, &log.Date, &log.DurationMin,
		&log.XPEarned, &log.ExercisesCompleted, &log.TotalVolume, &status, &exercises); err != nil {
		return models.WorkoutLog{}, err
	}
	log.Status = models.LogStatus(status)
	if err := json.Unmarshal(exercises, &log.Exercises); err != nil {
		return models.WorkoutLog{}, fmt.Errorf("decoding log exercises: %w", err)
	}
	return log, nil
}
