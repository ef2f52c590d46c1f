package decision

import (
	"math"
	"strings"
)

// Constraint identifiers emitted by the check-in classifier.
const (
	ConstraintRedFlagOverride = "red-flag-override"
	ConstraintExhaustionPain  = "exhaustion-pain-override"
	ConstraintLowEnergy       = "low-energy-reduction"
	ConstraintSideEffect      = "side-effect-reduction"
	ConstraintLowConfidence   = "low-confidence-reduction"
	ConstraintMissingCheckIn  = "missing-checkin"
)

// SafetyAssessment is the classifier output. Triggers lists every rule of the
// winning tier in evaluation order.
type SafetyAssessment struct {
	Status         SafetyStatus `json:"status"`
	Triggers       []string     `json:"triggers"`
	ReadinessScore int          `json:"readinessScore"`
}

type safetyRule struct {
	name  string
	tier  SafetyStatus
	match func(r SafetyRules, c CheckIn) bool
}

// safetyRules is evaluated tier by tier, RED first. Within a tier every rule
// runs so the audit trail records all triggers.
var safetyRules = []safetyRule{
	{
		name: ConstraintRedFlagOverride,
		tier: SafetyRed,
		match: func(_ SafetyRules, c CheckIn) bool {
			return len(presentTags(c.RedFlags)) > 0
		},
	},
	{
		name: ConstraintExhaustionPain,
		tier: SafetyRed,
		match: func(r SafetyRules, c CheckIn) bool {
			return c.Energy <= r.Energy.Min && c.Pain >= r.RedPainAtOrAbove
		},
	},
	{
		name: ConstraintLowEnergy,
		tier: SafetyYellow,
		match: func(r SafetyRules, c CheckIn) bool {
			return c.Energy < r.YellowEnergyBelow
		},
	},
	{
		name: ConstraintSideEffect,
		tier: SafetyYellow,
		match: func(_ SafetyRules, c CheckIn) bool {
			return len(presentTags(c.SideEffects)) > 0
		},
	},
	{
		name: ConstraintLowConfidence,
		tier: SafetyYellow,
		match: func(r SafetyRules, c CheckIn) bool {
			return c.Confidence < r.YellowConfidenceBelow
		},
	},
}

var safetyTiers = []SafetyStatus{SafetyRed, SafetyYellow}

// ClassifySafety turns today's check-in into GREEN, YELLOW or RED. A nil
// check-in yields the configured non-GREEN default together with
// ErrMissingSafetyInput so callers can ask for a check-in first.
func (r Rules) ClassifySafety(checkIn *CheckIn) (SafetyAssessment, error) {
	if checkIn == nil {
		return SafetyAssessment{
			Status:   r.Safety.MissingCheckInStatus,
			Triggers: []string{ConstraintMissingCheckIn},
		}, ErrMissingSafetyInput
	}
	c := *checkIn
	if err := r.ValidateCheckIn(c); err != nil {
		return SafetyAssessment{}, err
	}

	readiness := r.readiness(c)
	for _, tier := range safetyTiers {
		var triggers []string
		for _, rule := range safetyRules {
			if rule.tier == tier && rule.match(r.Safety, c) {
				triggers = append(triggers, rule.name)
			}
		}
		if len(triggers) > 0 {
			return SafetyAssessment{Status: tier, Triggers: triggers, ReadinessScore: readiness}, nil
		}
	}
	return SafetyAssessment{Status: SafetyGreen, Triggers: []string{}, ReadinessScore: readiness}, nil
}

// readiness blends energy, confidence and absence of pain into 0..100
// (40/40/20). It is informational and never changes the tier.
func (r Rules) readiness(c CheckIn) int {
	s := r.Safety
	energy := fraction(c.Energy, s.Energy)
	confidence := fraction(c.Confidence, s.Confidence)
	painFree := 1 - fraction(c.Pain, s.Pain)
	score := math.Round(40*energy + 40*confidence + 20*painFree)
	return int(math.Max(0, math.Min(100, score)))
}

func fraction(v int, s Scale) float64 {
	if s.Max <= s.Min {
		return 0
	}
	return float64(v-s.Min) / float64(s.Max-s.Min)
}

func presentTags(tags []string) []string {
	out := make([]string, 0, len(tags))
	for _, tag := range tags {
		if trimmed := strings.TrimSpace(tag); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
