package screening

import (
	"time"

	"github.com/davenowercise/nowercise-app-sub004/internal/decision"
)

// Result is one submitted PAR-Q style questionnaire. The newest row is the
// user's current screening.
type Result struct {
	ID                          string    `json:"id"`
	UserID                      string    `json:"-"`
	Answers                     []string  `json:"answers"`
	ParqRequired                bool      `json:"parqRequired"`
	MedicalClearanceRecommended bool      `json:"medicalClearanceRecommended"`
	CreatedAt                   time.Time `json:"createdAt"`
}

func (r Result) Decision() *decision.ParqResult {
	return &decision.ParqResult{
		ParqRequired: r.ParqRequired,
		ParqAnswers:  append([]string(nil), r.Answers...),
	}
}
