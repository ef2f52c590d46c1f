package markers

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

// RecordRequest is one marker check. At least one of rating or
// comfortableReps must be supplied. Rating and side are case-insensitive.
type RecordRequest struct {
	MarkerKey       string     `json:"markerKey" validate:"required"`
	Rating          string     `json:"rating" validate:"omitempty,oneof=EASY OK HARD HIGH MODERATE MEDIUM LOW"`
	ComfortableReps *int       `json:"comfortableReps" validate:"omitempty,gte=0,lte=200"`
	Side            string     `json:"side" validate:"omitempty,oneof=LEFT RIGHT BOTH NOT_SURE"`
	AssessedAt      *time.Time `json:"assessedAt"`
}

type Service struct {
	Repo Repo
}

func NewService(repo Repo) *Service {
	return &Service{Repo: repo}
}

// Record stores a marker result. Unknown marker keys fail with
// decision.ErrUnknownMarkerKind.
func (s *Service) Record(ctx context.Context, userID string, req RecordRequest, now time.Time) (Result, error) {
	if s == nil || s.Repo == nil {
		return Result{}, errors.New("markers service not configured")
	}
	if strings.TrimSpace(userID) == "" {
		return Result{}, errors.New("user id is required")
	}
	req.Rating = strings.ToUpper(strings.TrimSpace(req.Rating))
	req.Side = strings.ToUpper(strings.TrimSpace(req.Side))
	if err := validate.Struct(req); err != nil {
		return Result{}, fmt.Errorf("%w: %w", ErrValidation, err)
	}
	if req.Rating == "" && req.ComfortableReps == nil {
		return Result{}, fmt.Errorf("%w: rating or comfortableReps is required", ErrValidation)
	}
	key, err := decision.ParseMarkerKey(req.MarkerKey)
	if err != nil {
		return Result{}, err
	}

	now = now.UTC()
	assessedAt := now
	if req.AssessedAt != nil {
		if req.AssessedAt.After(now) {
			return Result{}, fmt.Errorf("%w: assessedAt is in the future", ErrValidation)
		}
		assessedAt = req.AssessedAt.UTC()
	}

	r := Result{
		ID:              uuid.NewString(),
		UserID:          userID,
		Key:             key,
		Rating:          req.Rating,
		ComfortableReps: req.ComfortableReps,
		Side:            req.Side,
		AssessedAt:      assessedAt,
		CreatedAt:       now,
	}
	if err := s.Repo.Create(ctx, r); err != nil {
		return Result{}, err
	}
	return r, nil
}

// History returns every stored result for the user.
func (s *Service) History(ctx context.Context, userID string) ([]Result, error) {
	if s == nil || s.Repo == nil {
		return nil, errors.New("markers service not configured")
	}
	return s.Repo.ListForUser(ctx, userID)
}

// Latest returns the newest result per known marker.
func (s *Service) Latest(ctx context.Context, userID string) (map[decision.MarkerKey]decision.MarkerResult, error) {
	results, err := s.History(ctx, userID)
	if err != nil {
		return nil, err
	}
	return decision.LatestMarkers(ToDecision(results)), nil
}
