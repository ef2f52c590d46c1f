package checkins

import (
	"time"

	"github.com/davenowercise/nowercise-app-sub004/internal/decision"
)

// CheckIn is one stored daily self-report. There is at most one per user and
// UTC date; resubmitting the same day updates it in place.
type CheckIn struct {
	ID          string     `json:"id"`
	UserID      string     `json:"-"`
	Date        string     `json:"date"`
	Energy      int        `json:"energy"`
	Pain        int        `json:"pain"`
	Confidence  int        `json:"confidence"`
	SideEffects []string   `json:"sideEffects"`
	RedFlags    []string   `json:"redFlags"`
	Notes       *string    `json:"notes,omitempty"`
	CreatedAt   time.Time  `json:"createdAt"`
	UpdatedAt   *time.Time `json:"updatedAt,omitempty"`
}

// SubmittedAt is the time the current values were recorded.
func (c CheckIn) SubmittedAt() time.Time {
	if c.UpdatedAt != nil {
		return *c.UpdatedAt
	}
	return c.CreatedAt
}

// Decision converts the record into the engine's input shape.
func (c CheckIn) Decision() *decision.CheckIn {
	return &decision.CheckIn{
		Date:        c.Date,
		Energy:      c.Energy,
		Pain:        c.Pain,
		Confidence:  c.Confidence,
		SideEffects: append([]string(nil), c.SideEffects...),
		RedFlags:    append([]string(nil), c.RedFlags...),
		Notes:       c.Notes,
		SubmittedAt: c.SubmittedAt(),
	}
}
