package adaptive

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/davenowercise/nowercise-app-sub004/internal/decision"
	"github.com/davenowercise/nowercise-app-sub004/internal/shared/telemetry"
)

type Service struct {
	Repo  Repo
	Rules decision.Rules
}

func NewService(repo Repo, rules decision.Rules) *Service {
	return &Service{Repo: repo, Rules: rules}
}

func (s *Service) ready(userID string) error {
	if s == nil || s.Repo == nil {
		return errors.New("adaptive service not configured")
	}
	if strings.TrimSpace(userID) == "" {
		return errors.New("user id is required")
	}
	return nil
}

// State returns the stored row, or a fresh PROTECT row for a new user.
func (s *Service) State(ctx context.Context, userID string) (State, error) {
	if err := s.ready(userID); err != nil {
		return State{}, err
	}
	st, err := s.Repo.Get(ctx, userID)
	if errors.Is(err, ErrNotFound) {
		return NewState(userID), nil
	}
	return st, err
}

// Snapshot loads the row and derives the resolver's input for now.
func (s *Service) Snapshot(ctx context.Context, userID string, today *decision.CheckIn, now time.Time) (decision.AdaptiveState, State, error) {
	st, err := s.State(ctx, userID)
	if err != nil {
		return decision.AdaptiveState{}, State{}, err
	}
	return st.Snapshot(s.Rules, today, now), st, nil
}

// MarkSessionComplete records a finished session in the rolling week window.
func (s *Service) MarkSessionComplete(ctx context.Context, userID string, completedAt time.Time) (State, error) {
	if err := s.ready(userID); err != nil {
		return State{}, err
	}
	if completedAt.IsZero() {
		return State{}, fmt.Errorf("%w: completedAt is required", ErrValidation)
	}
	st, err := s.Repo.Update(ctx, userID, func(st *State) error {
		st.completeSession(completedAt, s.Rules.Adaptive.WeekWindowDays)
		return nil
	})
	if err != nil {
		return State{}, err
	}
	telemetry.Info("adaptive.session_completed", map[string]any{
		"user_id":            userID,
		"week_session_count": st.WeekSessionCount,
	})
	return st, nil
}

// RecordSessionFeedback stores how the last session felt and sets
// tomorrow's adjustment.
func (s *Service) RecordSessionFeedback(ctx context.Context, userID string, feedback Feedback, at time.Time) (State, error) {
	if err := s.ready(userID); err != nil {
		return State{}, err
	}
	f, err := ParseFeedback(string(feedback))
	if err != nil {
		return State{}, err
	}
	st, err := s.Repo.Update(ctx, userID, func(st *State) error {
		st.recordFeedback(f, at)
		return nil
	})
	if err != nil {
		return State{}, err
	}
	telemetry.Info("adaptive.feedback_recorded", map[string]any{
		"user_id":    userID,
		"feedback":   string(f),
		"adjustment": string(st.TomorrowAdjustment),
	})
	return st, nil
}

func (s *Service) MarkProgressReflectionSeen(ctx context.Context, userID string, at time.Time) (State, error) {
	if err := s.ready(userID); err != nil {
		return State{}, err
	}
	return s.Repo.Update(ctx, userID, func(st *State) error {
		seen := at.UTC()
		st.ProgressReflectionSeenAt = &seen
		return nil
	})
}

func (s *Service) MarkPhaseTransitionSeen(ctx context.Context, userID string, at time.Time) (State, error) {
	if err := s.ready(userID); err != nil {
		return State{}, err
	}
	return s.Repo.Update(ctx, userID, func(st *State) error {
		seen := at.UTC()
		st.PhaseTransitionSeenAt = &seen
		return nil
	})
}

// MarkScreenSeen records that an interrupt screen was shown. Only screens
// with a "seen" marker can be acknowledged; the others clear on their own.
func (s *Service) MarkScreenSeen(ctx context.Context, userID string, screen decision.AdaptiveScreen, at time.Time) (State, error) {
	switch screen {
	case decision.ScreenPhaseTransition:
		return s.MarkPhaseTransitionSeen(ctx, userID, at)
	case decision.ScreenProgressReflection:
		return s.MarkProgressReflectionSeen(ctx, userID, at)
	default:
		return State{}, fmt.Errorf("%w: screen %q cannot be acknowledged", ErrValidation, screen)
	}
}

// UpdatePhase moves the user to phase. The change timestamp only moves when
// the phase actually changes.
func (s *Service) UpdatePhase(ctx context.Context, userID string, phase Phase, at time.Time) (State, error) {
	if err := s.ready(userID); err != nil {
		return State{}, err
	}
	p, err := ParsePhase(string(phase))
	if err != nil {
		return State{}, err
	}
	var changed bool
	st, err := s.Repo.Update(ctx, userID, func(st *State) error {
		changed = st.setPhase(p, at)
		return nil
	})
	if err != nil {
		return State{}, err
	}
	if changed {
		telemetry.Info("adaptive.phase_changed", map[string]any{"user_id": userID, "phase": string(p)})
	}
	return st, nil
}
