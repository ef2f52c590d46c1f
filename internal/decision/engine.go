package decision

import (
	"fmt"
	"time"
)

// Engine runs the full daily pipeline with one rule set.
type Engine struct {
	Rules Rules
}

// NewEngine validates rules before use.
func NewEngine(rules Rules) (*Engine, error) {
	if err := rules.Validate(); err != nil {
		return nil, err
	}
	return &Engine{Rules: rules}, nil
}

// Inputs are the fetched records for one user and day.
type Inputs struct {
	Screening   *ParqResult
	CheckIn     *CheckIn
	Markers     []MarkerResult
	State       *AdaptiveState
	BaseVariant Variant
	Now         time.Time
}

// PlanResult carries every intermediate decision for auditing.
type PlanResult struct {
	Clearance Clearance                  `json:"clearance"`
	Safety    SafetyAssessment           `json:"safety"`
	Capacity  CapacityResult             `json:"capacity"`
	Latest    map[MarkerKey]MarkerResult `json:"latestMarkers"`
	Plan      TodayPlanOutput            `json:"plan"`
	Summary   Summary                    `json:"summary"`
	Screen    AdaptiveScreen             `json:"screen"`
}

// Plan runs screening, classification, scoring, composition and summary.
// The adaptive screen is resolved first and is present even when planning
// stops early on missing or blocking safety input.
func (e *Engine) Plan(in Inputs) (PlanResult, error) {
	var res PlanResult
	res.Screen = ResolveAdaptiveScreen(in.State, in.Now)

	clearance, err := EvaluateScreening(in.Screening)
	res.Clearance = clearance
	if err != nil {
		return res, fmt.Errorf("%w: %w", ErrNotCleared, err)
	}
	if !clearance.Cleared {
		return res, ErrNotCleared
	}

	safety, err := e.Rules.ClassifySafety(in.CheckIn)
	res.Safety = safety
	if err != nil {
		return res, fmt.Errorf("classify check-in: %w", err)
	}

	res.Latest = LatestMarkers(in.Markers)
	res.Capacity = e.Rules.ScoreCapacity(res.Latest)

	plan, err := e.Rules.ComposePlan(PlanInput{
		Safety:      safety,
		Capacity:    res.Capacity,
		BaseVariant: in.BaseVariant,
	})
	if err != nil {
		return res, fmt.Errorf("compose plan: %w", err)
	}
	res.Plan = plan
	res.Summary = Summarize(plan, res.Latest)
	return res, nil
}
