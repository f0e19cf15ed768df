package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/claude/ironquest/internal/models"
)

// InsertExercises batch-inserts catalog exercises. Returns count inserted;
// duplicates (same id) are skipped.
func (db *DB) InsertExercises(ctx context.Context, exercises []models.Exercise) (int64, error) {
	if len(exercises) == 0 {
		return 0, nil
	}

	query := `INSERT INTO exercises (id, name, body_part, equipment, difficulty, instructions) VALUES `
	args := make([]any, 0, len(exercises)*6)
	valueStrings := make([]string, 0, len(exercises))

	for i, ex := range exercises {
		base := i * 6
		valueStrings = append(valueStrings, fmt.Sprintf(
			"($%d,$%d,$%d,$%d,$%d,$%d)",
			base+1, base+2, base+3, base+4, base+5, base+6,
		))
		instructions, err := json.Marshal(ex.Instructions)
		if err != nil {
			return 0, fmt.Errorf("encoding instructions for %s: %w", ex.Name, err)
		}
		args = append(args, ex.ID, ex.Name, ex.BodyPart, ex.Equipment,
			string(ex.Difficulty.Normalize()), instructions)
	}

	query += strings.Join(valueStrings, ",") + " ON CONFLICT DO NOTHING"

	tag, err := db.Pool.Exec(ctx, query, args...)
	if err != nil {
		return 0, fmt.Errorf("inserting exercises: %w", err)
	}
	return tag.RowsAffected(), nil
}

// SearchExercises retrieves a page of catalog exercises matching the free-
// text query and filters. Empty filter values match everything. Returns the
// page plus the total match count for external pagination.
func (db *DB) SearchExercises(ctx context.Context, query, bodyPart, equipment, difficulty string, limit, offset int) ([]models.Exercise, int, error) {
	where := `WHERE ($1 = '' OR name ILIKE '%' || $1 || '%')
		AND ($2 = '' OR body_part = $2)
		AND ($3 = '' OR equipment = $3)
		AND ($4 = '' OR difficulty = $4)`

	var total int
	err := db.Pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM exercises `+where,
		query, bodyPart, equipment, difficulty,
	).Scan(&total)
	if err != nil {
		return nil, 0, fmt.Errorf("counting exercises: %w", err)
	}

	rows, err := db.Pool.Query(ctx,
		`SELECT id, name, body_part, equipment, difficulty, instructions
		 FROM exercises `+where+`
		 ORDER BY name ASC
		 LIMIT $5 OFFSET $6`,
		query, bodyPart, equipment, difficulty, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("querying exercises: %w", err)
	}
	defer rows.Close()

	var result []models.Exercise
	for rows.Next() {
		var ex models.Exercise
		var instructions []byte
		if err := rows.Scan(&ex.ID, &ex.Name, &ex.BodyPart, &ex.Equipment, &ex.Difficulty, &instructions); err != nil {
			return nil, 0, fmt.Errorf("scanning exercise: %w", err)
		}
		if err := json.Unmarshal(instructions, &ex.Instructions); err != nil {
			return nil, 0, fmt.Errorf("decoding instructions: %w", err)
		}
		result = append(result, ex)
	}
	return result, total, rows.Err()
}
