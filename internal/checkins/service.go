package checkins

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/davenowercise/nowercise-app-sub004/internal/decision"
	"github.com/davenowercise/nowercise-app-sub004/internal/shared/validate"
)

// SubmitRequest is the body of a daily check-in. Ranges are checked against
// the active rule set after the structural checks here.
type SubmitRequest struct {
	Energy      *int     `json:"energy" validate:"required"`
	Pain        *int     `json:"pain" validate:"required"`
	Confidence  *int     `json:"confidence" validate:"required"`
	SideEffects []string `json:"sideEffects" validate:"max=20,dive,max=64"`
	RedFlags    []string `json:"redFlags" validate:"max=20,dive,max=64"`
	Notes       *string  `json:"notes" validate:"omitempty,max=2000"`
}

type Service struct {
	Repo  Repo
	Rules decision.Rules
}

func NewService(repo Repo, rules decision.Rules) *Service {
	return &Service{Repo: repo, Rules: rules}
}

// Submit records today's check-in, replacing any earlier one for the same UTC date.
func (s *Service) Submit(ctx context.Context, userID string, req SubmitRequest, now time.Time) (CheckIn, error) {
	if s == nil || s.Repo == nil {
		return CheckIn{}, errors.New("checkins service not configured")
	}
	if strings.TrimSpace(userID) == "" {
		return CheckIn{}, errors.New("user id is required")
	}
	if err := validate.Struct(req); err != nil {
		return CheckIn{}, fmt.Errorf("%w: %w", ErrValidation, err)
	}

	c := CheckIn{
		ID:          uuid.NewString(),
		UserID:      userID,
		Date:        decision.DateKey(now),
		Energy:      *req.Energy,
		Pain:        *req.Pain,
		Confidence:  *req.Confidence,
		SideEffects: cleanTags(req.SideEffects),
		RedFlags:    cleanTags(req.RedFlags),
		Notes:       req.Notes,
	}
	if err := s.Rules.ValidateCheckIn(*c.Decision()); err != nil {
		return CheckIn{}, fmt.Errorf("%w: %w", ErrValidation, err)
	}
	return s.Repo.Upsert(ctx, c)
}

// Today returns the check-in for now's UTC date, or ErrNotFound.
func (s *Service) Today(ctx context.Context, userID string, now time.Time) (CheckIn, error) {
	if s == nil || s.Repo == nil {
		return CheckIn{}, errors.New("checkins service not configured")
	}
	return s.Repo.GetForDate(ctx, userID, decision.DateKey(now))
}

// cleanTags trims, drops blanks and removes duplicates while keeping order.
func cleanTags(tags []string) []string {
	out := make([]string, 0, len(tags))
	seen := make(map[string]bool, len(tags))
	for _, tag := range tags {
		tag = strings.TrimSpace(tag)
		if tag == "" || seen[tag] {
			continue
		}
		seen[tag] = true
		out = append(out, tag)
	}
	return out
}
