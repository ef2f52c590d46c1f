package adaptive

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/davenowercise/nowercise-app-sub004/internal/shared/storage/db"
)

type PGRepo struct {
	DB *sql.DB
}

const selectState = `
SELECT user_id, phase, phase_changed_at, phase_transition_seen_at, last_session_at,
  last_session_feedback, last_session_feedback_at, week_session_count,
  to_char(week_window_start, 'YYYY-MM-DD'), tomorrow_adjustment, progress_reflection_seen_at, updated_at
FROM user_adaptive_state
WHERE user_id = $1`

type rowScanner interface {
	Scan(dest ...any) error
}

func (r *PGRepo) Get(ctx context.Context, userID string) (State, error) {
	s, err := scanState(r.DB.QueryRowContext(ctx, selectState, userID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return State{}, ErrNotFound
		}
		return State{}, err
	}
	return s, nil
}

// Update locks the row for the duration of fn so concurrent session events
// for one user apply in sequence. A first-time user gets a seed row before
// the lock is taken; FOR UPDATE on a missing row would lock nothing.
func (r *PGRepo) Update(ctx context.Context, userID string, fn func(*State) error) (State, error) {
	const seed = `
INSERT INTO user_adaptive_state (user_id, phase)
VALUES ($1, $2)
ON CONFLICT (user_id) DO NOTHING`

	const upsert = `
INSERT INTO user_adaptive_state (
  user_id, phase, phase_changed_at, phase_transition_seen_at, last_session_at,
  last_session_feedback, last_session_feedback_at, week_session_count, week_window_start,
  tomorrow_adjustment, progress_reflection_seen_at, updated_at
)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, now())
ON CONFLICT (user_id) DO UPDATE SET
  phase = EXCLUDED.phase,
  phase_changed_at = EXCLUDED.phase_changed_at,
  phase_transition_seen_at = EXCLUDED.phase_transition_seen_at,
  last_session_at = EXCLUDED.last_session_at,
  last_session_feedback = EXCLUDED.last_session_feedback,
  last_session_feedback_at = EXCLUDED.last_session_feedback_at,
  week_session_count = EXCLUDED.week_session_count,
  week_window_start = EXCLUDED.week_window_start,
  tomorrow_adjustment = EXCLUDED.tomorrow_adjustment,
  progress_reflection_seen_at = EXCLUDED.progress_reflection_seen_at,
  updated_at = now()
RETURNING updated_at`

	var out State
	err := db.WithTx(ctx, r.DB, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, seed, userID, string(PhaseProtect)); err != nil {
			return fmt.Errorf("seed adaptive state: %w", err)
		}
		s, err := scanState(tx.QueryRowContext(ctx, selectState+"\nFOR UPDATE", userID))
		if errors.Is(err, sql.ErrNoRows) {
			s = NewState(userID)
		} else if err != nil {
			return fmt.Errorf("load adaptive state: %w", err)
		}
		if err := fn(&s); err != nil {
			return err
		}
		s.UserID = userID
		err = tx.QueryRowContext(ctx, upsert,
			s.UserID,
			string(s.Phase),
			nullableTime(s.PhaseChangedAt),
			nullableTime(s.PhaseTransitionSeenAt),
			nullableTime(s.LastSessionAt),
			nullableString(string(s.LastSessionFeedback)),
			nullableTime(s.LastSessionFeedbackAt),
			s.WeekSessionCount,
			nullableDay(s.WeekWindowStart),
			nullableString(string(s.TomorrowAdjustment)),
			nullableTime(s.ProgressReflectionSeenAt),
		).Scan(&s.UpdatedAt)
		if err != nil {
			return fmt.Errorf("save adaptive state: %w", err)
		}
		out = s
		return nil
	})
	if err != nil {
		return State{}, err
	}
	return out, nil
}

func scanState(row rowScanner) (State, error) {
	var (
		s                State
		phase            string
		phaseChangedAt   sql.NullTime
		transitionSeenAt sql.NullTime
		lastSessionAt    sql.NullTime
		feedback         sql.NullString
		feedbackAt       sql.NullTime
		windowStart      sql.NullString
		adjustment       sql.NullString
		reflectionSeenAt sql.NullTime
	)
	err := row.Scan(
		&s.UserID,
		&phase,
		&phaseChangedAt,
		&transitionSeenAt,
		&lastSessionAt,
		&feedback,
		&feedbackAt,
		&s.WeekSessionCount,
		&windowStart,
		&adjustment,
		&reflectionSeenAt,
		&s.UpdatedAt,
	)
	if err != nil {
		return State{}, err
	}
	s.Phase = Phase(phase)
	s.PhaseChangedAt = timePtr(phaseChangedAt)
	s.PhaseTransitionSeenAt = timePtr(transitionSeenAt)
	s.LastSessionAt = timePtr(lastSessionAt)
	s.LastSessionFeedback = Feedback(feedback.String)
	s.LastSessionFeedbackAt = timePtr(feedbackAt)
	if windowStart.Valid {
		day := windowStart.String
		s.WeekWindowStart = &day
	}
	s.TomorrowAdjustment = Adjustment(adjustment.String)
	s.ProgressReflectionSeenAt = timePtr(reflectionSeenAt)
	return s, nil
}

func timePtr(v sql.NullTime) *time.Time {
	if !v.Valid {
		return nil
	}
	t := v.Time
	return &t
}

func nullableTime(t *time.Time) any {
	if t == nil {
		return nil
	}
	return *t
}

func nullableDay(day *string) any {
	if day == nil {
		return nil
	}
	return *day
}

func nullableString(v string) any {
	if v == "" {
		return nil
	}
	return v
}
