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

// ErrNotFound is returned when a requested row does not exist.
var ErrNotFound = errors.New("not found")

// ListRoutines retrieves all of a user's routines, favorite first.
func (db *DB) ListRoutines(ctx context.Context, userID int) ([]models.Routine, error) {
	rows, err := db.Pool.Query(ctx,
		`SELECT id, name, description, exercises, last_performed, is_favorite
		 FROM routines
		 WHERE user_id = $1
		 ORDER BY is_favorite DESC, name ASC`, userID)
	if err != nil {
		return nil, fmt.Errorf("querying routines: %w", err)
	}
	defer rows.Close()

	var result []models.Routine
	for rows.Next() {
		r, err := scanRoutine(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, r)
	}
	return result, rows.Err()
}

// GetRoutine retrieves one routine by id, scoped to the user.
func (db *DB) GetRoutine(ctx context.Context, routineID uuid.UUID, userID int) (*models.Routine, error) {
	row := db.Pool.QueryRow(ctx,
		`SELECT id, name, description, exercises, last_performed, is_favorite
		 FROM routines
		 WHERE id = $1 AND user_id = $2`, routineID, userID)

	r, err := scanRoutine(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &r, nil
}

// UpsertRoutine writes a routine row.
func (db *DB) UpsertRoutine(ctx context.Context, userID int, r models.Routine) error {
	exercises, err := json.Marshal(r.Exercises)
	if err != nil {
		return fmt.Errorf("encoding routine exercises: %w", err)
	}
	_, err = db.Pool.Exec(ctx, `
		INSERT INTO routines (id, user_id, name, description, exercises, last_performed, is_favorite)
		VALUES ($1,$2,$3,$4,$5,$6,$7)
		ON CONFLICT (id) DO UPDATE SET
			name = EXCLUDED.name,
			description = EXCLUDED.description,
			exercises = EXCLUDED.exercises,
			last_performed = EXCLUDED.last_performed,
			is_favorite = EXCLUDED.is_favorite
	`, r.ID, userID, r.Name, r.Description, exercises, r.LastPerformed, r.IsFavorite)
	if err != nil {
		return fmt.Errorf("upserting routine: %w", err)
	}
	return nil
}

// DeleteRoutine removes a routine. Returns ErrNotFound when nothing matched.
func (db *DB) DeleteRoutine(ctx context.Context, routineID uuid.UUID, userID int) error {
	tag, err := db.Pool.Exec(ctx,
		`DELETE FROM routines WHERE id = $1 AND user_id = $2`, routineID, userID)
	if err != nil {
		return fmt.Errorf("deleting routine: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// SetFavoriteRoutine marks one routine as favorite and clears the flag on
// all others in a single transaction, preserving the single-favorite
// invariant at the storage layer too.
func (db *DB) SetFavoriteRoutine(ctx context.Context, routineID uuid.UUID, userID int) error {
	tx, err := db.Pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("beginning tx: %w", err)
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx,
		`UPDATE routines SET is_favorite = FALSE WHERE user_id = $1 AND is_favorite`, userID); err != nil {
		return fmt.Errorf("clearing favorites: %w", err)
	}
	tag, err := tx.Exec(ctx,
		`UPDATE routines SET is_favorite = TRUE WHERE id = $1 AND user_id = $2`, routineID, userID)
	if err != nil {
		return fmt.Errorf("setting favorite: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return tx.Commit(ctx)
}

// StampLastPerformed records when a routine was last completed. Aborted
// sessions never stamp.
func (db *DB) StampLastPerformed(ctx context.Context, routineID uuid.UUID, userID int, at time.Time) error {
	_, err := db.Pool.Exec(ctx,
		`UPDATE routines SET last_performed = $3 WHERE id = $1 AND user_id = $2`,
		routineID, userID, at)
	if err != nil {
		return fmt.Errorf("stamping last performed: %w", err)
	}
	return nil
}

func scanRoutine(row pgx.Row) (models.Routine, error) {
	var r models.Routine
	var exercises []byte
	if err := row.Scan(&r.ID, &r.Name, &r.Description, &exercises, &r.LastPerformed, &r.IsFavorite); err != nil {
		return models.Routine{}, err
	}
	if err := json.Unmarshal(exercises, &r.Exercises); err != nil {
		return models.Routine{}, fmt.Errorf("decoding routine exercises: %w", err)
	}
	return r, nil
}
