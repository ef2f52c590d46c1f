package markers

import (
	"time"

	"github.com/davenowercise/nowercise-app-sub004/internal/decision"
)

// Result is one stored marker assessment.
type Result struct {
	ID              string             `json:"id"`
	UserID          string             `json:"-"`
	Key             decision.MarkerKey `json:"markerKey"`
	Rating          string             `json:"rating,omitempty"`
	ComfortableReps *int               `json:"comfortableReps,omitempty"`
	Side            string             `json:"side,omitempty"`
	AssessedAt      time.Time          `json:"assessedAt"`
	CreatedAt       time.Time          `json:"createdAt"`
}

func (r Result) Decision() decision.MarkerResult {
	return decision.MarkerResult{
		Key:             r.Key,
		Rating:          r.Rating,
		ComfortableReps: r.ComfortableReps,
		Side:            r.Side,
		AssessedAt:      r.AssessedAt,
		CreatedAt:       r.CreatedAt,
	}
}

// ToDecision converts stored rows for the engine.
func ToDecision(results []Result) []decision.MarkerResult {
	out := make([]decision.MarkerResult, 0, len(results))
	for _, r := range results {
		out = append(out, r.Decision())
	}
	return out
}
