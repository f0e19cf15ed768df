package storage

import (
	"context"
	"fmt"
	"time"
)

// TrainingStats holds aggregate statistics about a user's workout history.
type TrainingStats struct {
	TotalSessions int64         `json:"total_sessions"`
	TotalXP       int64         `json:"total_xp"`
	TotalVolume   float64       `json:"total_volume"`
	TotalMinutes  int64         `json:"total_minutes"`
	FirstSession  *time.Time    `json:"first_session"`
	LatestSession *time.Time    `json:"latest_session"`
	ByStatus      []StatusStat  `json:"by_status"`
	RoutineCounts []RoutineStat `json:"routine_counts"`
}

// StatusStat counts sessions per terminal status.
type StatusStat struct {
	Status string `json:"status"`
	Count  int64  `json:"count"`
}

// RoutineStat summarizes history per routine name snapshot.
type RoutineStat struct {
	RoutineName string  `json:"routine_name"`
	Count       int64   `json:"count"`
	TotalXP     int64   `json:"total_xp"`
	TotalVolume float64 `json:"total_volume"`
}

// GetTrainingStats returns aggregate statistics over a user's workout logs.
func (db *DB) GetTrainingStats(ctx context.Context, userID int) (*TrainingStats, error) {
	stats := &TrainingStats{}

	err := db.Pool.QueryRow(ctx,
		`SELECT COUNT(*), COALESCE(SUM(xp_earned), 0), COALESCE(SUM(total_volume), 0),
		 COALESCE(SUM(duration_min), 0), MIN(date), MAX(date)
		 FROM workout_logs WHERE user_id = $1`, userID,
	).Scan(&stats.TotalSessions, &stats.TotalXP, &stats.TotalVolume,
		&stats.TotalMinutes, &stats.FirstSession, &stats.LatestSession)
	if err != nil {
		return nil, fmt.Errorf("aggregating workout logs: %w", err)
	}

	rows, err := db.Pool.Query(ctx,
		`SELECT status, COUNT(*)
		 FROM workout_logs
		 WHERE user_id = $1
		 GROUP BY status
		 ORDER BY COUNT(*) DESC`, userID)
	if err != nil {
		return nil, fmt.Errorf("querying status counts: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var s StatusStat
		if err := rows.Scan(&s.Status, &s.Count); err != nil {
			return nil, fmt.Errorf("scanning status stat: %w", err)
		}
		stats.ByStatus = append(stats.ByStatus, s)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	routineRows, err := db.Pool.Query(ctx,
		`SELECT routine_name, COUNT(*), COALESCE(SUM(xp_earned), 0), COALESCE(SUM(total_volume), 0)
		 FROM workout_logs
		 WHERE user_id = $1
		 GROUP BY routine_name
		 ORDER BY COUNT(*) DESC`, userID)
	if err != nil {
		return nil, fmt.Errorf("querying routine counts: %w", err)
	}
	defer routineRows.Close()

	for routineRows.Next() {
		var r RoutineStat
		if err := routineRows.Scan(&r.RoutineName, &r.Count, &r.TotalXP, &r.TotalVolume); err != nil {
			return nil, fmt.Errorf("scanning routine stat: %w", err)
		}
		stats.RoutineCounts = append(stats.RoutineCounts, r)
	}
	return stats, routineRows.Err()
}
