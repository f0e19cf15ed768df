package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/claude/ironquest/internal/models"
	"github.com/jackc/pgx/v5"
)

// GetProfile retrieves a user's profile. Returns (nil, nil) when absent,
// which callers treat as "needs onboarding".
func (db *DB) GetProfile(ctx context.Context, userID int) (*models.UserProfile, error) {
	row := db.Pool.QueryRow(ctx,
		`SELECT user_id, name, height_cm, weight_kg, level, current_xp, xp_required, body_stats, onboarded
		 FROM profiles WHERE user_id = $1`, userID)

	var p models.UserProfile
	var stats []byte
	err := row.Scan(&p.UserID, &p.Name, &p.HeightCm, &p.WeightKg,
		&p.Level, &p.CurrentXP, &p.XPRequired, &stats, &p.Onboarded)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("querying profile: %w", err)
	}
	if err := json.Unmarshal(stats, &p.BodyStats); err != nil {
		return nil, fmt.Errorf("decoding body stats: %w", err)
	}
	return &p, nil
}

// UpsertProfile writes the full profile row for a user.
func (db *DB) UpsertProfile(ctx context.Context, p models.UserProfile) error {
	stats, err := json.Marshal(p.BodyStats)
	if err != nil {
		return fmt.Errorf("encoding body stats: %w", err)
	}
	_, err = db.Pool.Exec(ctx, `
		INSERT INTO profiles (user_id, name, height_cm, weight_kg, level, current_xp, xp_required, body_stats, onboarded)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)
		ON CONFLICT (user_id) DO UPDATE SET
			name = EXCLUDED.name,
			height_cm = EXCLUDED.height_cm,
			weight_kg = EXCLUDED.weight_kg,
			level = EXCLUDED.level,
			current_xp = EXCLUDED.current_xp,
			xp_required = EXCLUDED.xp_required,
			body_stats = EXCLUDED.body_stats,
			onboarded = EXCLUDED.onboarded
	`, p.UserID, p.Name, p.HeightCm, p.WeightKg, p.Level, p.CurrentXP, p.XPRequired, stats, p.Onboarded)
	if err != nil {
		return fmt.Errorf("upserting profile: %w", err)
	}
	return nil
}
