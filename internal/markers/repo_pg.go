package markers

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/davenowercise/nowercise-app-sub004/internal/decision"
)

type PGRepo struct {
	DB *sql.DB
}

func (r *PGRepo) Create(ctx context.Context, m Result) error {
	const query = `
INSERT INTO marker_results (id, user_id, marker_key, rating, comfortable_reps, side, assessed_at, created_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`
	_, err := r.DB.ExecContext(ctx, query,
		m.ID,
		m.UserID,
		string(m.Key),
		m.Rating,
		nullableInt(m.ComfortableReps),
		m.Side,
		m.AssessedAt,
		m.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert marker result: %w", err)
	}
	return nil
}

func (r *PGRepo) ListForUser(ctx context.Context, userID string) ([]Result, error) {
	const query = `
SELECT id, user_id, marker_key, rating, comfortable_reps, side, assessed_at, created_at
FROM marker_results
WHERE user_id = $1
ORDER BY assessed_at DESC, created_at DESC`
	rows, err := r.DB.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("list marker results: %w", err)
	}
	defer rows.Close()

	var out []Result
	for rows.Next() {
		var (
			m    Result
			key  string
			reps sql.NullInt64
		)
		if err := rows.Scan(&m.ID, &m.UserID, &key, &m.Rating, &reps, &m.Side, &m.AssessedAt, &m.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan marker result: %w", err)
		}
		m.Key = decision.MarkerKey(key)
		if reps.Valid {
			v := int(reps.Int64)
			m.ComfortableReps = &v
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

func nullableInt(v *int) any {
	if v == nil {
		return nil
	}
	return int64(*v)
}
