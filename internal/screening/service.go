package screening

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

// SubmitRequest carries questionnaire answers in question order. ParqRequired
// lets a clinician force the gate closed regardless of the answers.
type SubmitRequest struct {
	Answers      []string `json:"answers" validate:"required,min=1,max=20,dive,oneof=Yes No yes no YES NO"`
	ParqRequired bool     `json:"parqRequired"`
}

type Service struct {
	Repo Repo
}

func NewService(repo Repo) *Service {
	return &Service{Repo: repo}
}

// Submit stores a screening. Any "Yes" answer keeps the user blocked until
// a clearance is recorded.
func (s *Service) Submit(ctx context.Context, userID string, req SubmitRequest, now time.Time) (Result, error) {
	if s == nil || s.Repo == nil {
		return Result{}, errors.New("screening service not configured")
	}
	if strings.TrimSpace(userID) == "" {
		return Result{}, errors.New("user id is required")
	}
	if err := validate.Struct(req); err != nil {
		return Result{}, fmt.Errorf("%w: %w", ErrValidation, err)
	}

	answers := make([]string, len(req.Answers))
	for i, a := range req.Answers {
		if strings.EqualFold(a, "yes") {
			answers[i] = "Yes"
		} else {
			answers[i] = "No"
		}
	}
	r := Result{
		ID:                          uuid.NewString(),
		UserID:                      userID,
		Answers:                     answers,
		ParqRequired:                decision.ParqRequiredFromAnswers(req.ParqRequired, answers),
		MedicalClearanceRecommended: decision.MedicalClearanceRecommended(answers),
		CreatedAt:                   now.UTC(),
	}
	if err := s.Repo.Create(ctx, r); err != nil {
		return Result{}, err
	}
	return r, nil
}

// Latest returns the current screening or ErrNotFound.
func (s *Service) Latest(ctx context.Context, userID string) (Result, error) {
	if s == nil || s.Repo == nil {
		return Result{}, errors.New("screening service not configured")
	}
	return s.Repo.Latest(ctx, userID)
}
