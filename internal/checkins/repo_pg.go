package checkins

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
)

type PGRepo struct {
	DB *sql.DB
}

func (r *PGRepo) Upsert(ctx context.Context, c CheckIn) (CheckIn, error) {
	const query = `
INSERT INTO daily_checkins (id, user_id, date, energy, pain, confidence, side_effects, red_flags, notes, created_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, now())
ON CONFLICT (user_id, date) DO UPDATE SET
  energy = EXCLUDED.energy,
  pain = EXCLUDED.pain,
  confidence = EXCLUDED.confidence,
  side_effects = EXCLUDED.side_effects,
  red_flags = EXCLUDED.red_flags,
  notes = EXCLUDED.notes,
  updated_at = now()
RETURNING id, created_at, updated_at`
	sideEffects, err := encodeTags(c.SideEffects)
	if err != nil {
		return CheckIn{}, err
	}
	redFlags, err := encodeTags(c.RedFlags)
	if err != nil {
		return CheckIn{}, err
	}

	var updatedAt sql.NullTime
	err = r.DB.QueryRowContext(ctx, query,
		c.ID,
		c.UserID,
		c.Date,
		c.Energy,
		c.Pain,
		c.Confidence,
		sideEffects,
		redFlags,
		nullableString(c.Notes),
	).Scan(&c.ID, &c.CreatedAt, &updatedAt)
	if err != nil {
		return CheckIn{}, fmt.Errorf("upsert check-in: %w", err)
	}
	c.UpdatedAt = nil
	if updatedAt.Valid {
		t := updatedAt.Time
		c.UpdatedAt = &t
	}
	return c, nil
}

// GetForDate returns the authoritative row for the day: latest update
// first, never-updated rows last, then latest creation.
func (r *PGRepo) GetForDate(ctx context.Context, userID, date string) (CheckIn, error) {
	const query = `
SELECT id, user_id, to_char(date, 'YYYY-MM-DD'), energy, pain, confidence, side_effects, red_flags, notes, created_at, updated_at
FROM daily_checkins
WHERE user_id = $1 AND date = $2
ORDER BY updated_at DESC NULLS LAST, created_at DESC
LIMIT 1`
	var (
		c           CheckIn
		sideEffects []byte
		redFlags    []byte
		notes       sql.NullString
		updatedAt   sql.NullTime
	)
	err := r.DB.QueryRowContext(ctx, query, userID, date).Scan(
		&c.ID,
		&c.UserID,
		&c.Date,
		&c.Energy,
		&c.Pain,
		&c.Confidence,
		&sideEffects,
		&redFlags,
		&notes,
		&c.CreatedAt,
		&updatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return CheckIn{}, ErrNotFound
		}
		return CheckIn{}, err
	}
	if c.SideEffects, err = decodeTags(sideEffects); err != nil {
		return CheckIn{}, fmt.Errorf("decode side_effects: %w", err)
	}
	if c.RedFlags, err = decodeTags(redFlags); err != nil {
		return CheckIn{}, fmt.Errorf("decode red_flags: %w", err)
	}
	if notes.Valid {
		n := notes.String
		c.Notes = &n
	}
	if updatedAt.Valid {
		t := updatedAt.Time
		c.UpdatedAt = &t
	}
	return c, nil
}

func encodeTags(tags []string) ([]byte, error) {
	if tags == nil {
		tags = []string{}
	}
	return json.Marshal(tags)
}

func decodeTags(raw []byte) ([]string, error) {
	out := []string{}
	if len(raw) == 0 {
		return out, nil
	}
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func nullableString(value *string) any {
	if value == nil {
		return nil
	}
	return *value
}
