package screening

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

func (r *PGRepo) Create(ctx context.Context, s Result) error {
	const query = `
INSERT INTO parq_results (id, user_id, answers, parq_required, medical_clearance_recommended, created_at)
VALUES ($1, $2, $3, $4, $5, $6)`
	answers, err := json.Marshal(nonNil(s.Answers))
	if err != nil {
		return err
	}
	_, err = r.DB.ExecContext(ctx, query, s.ID, s.UserID, answers, s.ParqRequired, s.MedicalClearanceRecommended, s.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert screening: %w", err)
	}
	return nil
}

func (r *PGRepo) Latest(ctx context.Context, userID string) (Result, error) {
	const query = `
SELECT id, user_id, answers, parq_required, medical_clearance_recommended, created_at
FROM parq_results
WHERE user_id = $1
ORDER BY created_at DESC
LIMIT 1`
	var (
		s       Result
		answers []byte
	)
	err := r.DB.QueryRowContext(ctx, query, userID).Scan(
		&s.ID,
		&s.UserID,
		&answers,
		&s.ParqRequired,
		&s.MedicalClearanceRecommended,
		&s.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Result{}, ErrNotFound
		}
		return Result{}, err
	}
	s.Answers = []string{}
	if len(answers) > 0 {
		if err := json.Unmarshal(answers, &s.Answers); err != nil {
			return Result{}, fmt.Errorf("decode answers: %w", err)
		}
	}
	return s, nil
}

func nonNil(v []string) []string {
	if v == nil {
		return []string{}
	}
	return v
}
