package decision

import (
	"fmt"
	"strings"
	"time"
)

// SafetyStatus is the daily tri-state gate derived from a check-in.
type SafetyStatus string

const (
	SafetyGreen  SafetyStatus = "GREEN"
	SafetyYellow SafetyStatus = "YELLOW"
	SafetyRed    SafetyStatus = "RED"
)

// MarkerKey identifies a movement-capacity marker. The set is closed.
type MarkerKey string

const (
	MarkerSitToStand     MarkerKey = "SIT_TO_STAND"
	MarkerSupportedMarch MarkerKey = "SUPPORTED_MARCH"
	MarkerShoulderRaise  MarkerKey = "SHOULDER_RAISE"
)

// MarkerKeys returns the recognised markers in canonical order.
func MarkerKeys() []MarkerKey {
	return []MarkerKey{MarkerSitToStand, MarkerSupportedMarch, MarkerShoulderRaise}
}

// ParseMarkerKey maps a raw identifier onto the closed marker set.
func ParseMarkerKey(raw string) (MarkerKey, error) {
	key := MarkerKey(strings.ToUpper(strings.TrimSpace(raw)))
	for _, known := range MarkerKeys() {
		if key == known {
			return key, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownMarkerKind, raw)
}

// Variant is a workout variant on the intensity ladder.
type Variant string

const (
	VariantReset  Variant = "RESET"
	VariantEasier Variant = "EASIER"
	VariantMain   Variant = "MAIN"
	VariantBuild  Variant = "BUILD"
)

// variantLadder is ordered from least to most demanding.
var variantLadder = []Variant{VariantReset, VariantEasier, VariantMain, VariantBuild}

// ParseVariant validates a variant identifier.
func ParseVariant(raw string) (Variant, error) {
	v := Variant(strings.ToUpper(strings.TrimSpace(raw)))
	if v.rank() < 0 {
		return "", fmt.Errorf("%w: unknown variant %q", ErrInvalidInput, raw)
	}
	return v, nil
}

func (v Variant) rank() int {
	for i, candidate := range variantLadder {
		if candidate == v {
			return i
		}
	}
	return -1
}

// step moves delta rungs along the ladder, clamped to its ends.
func (v Variant) step(delta int) Variant {
	idx := v.rank() + delta
	if idx < 0 {
		idx = 0
	}
	if idx >= len(variantLadder) {
		idx = len(variantLadder) - 1
	}
	return variantLadder[idx]
}

// AdaptiveScreen is the interrupt chosen by the resolver.
type AdaptiveScreen string

const (
	ScreenPhaseTransition    AdaptiveScreen = "PHASE_TRANSITION"
	ScreenReturning          AdaptiveScreen = "RETURNING"
	ScreenNoEnergy           AdaptiveScreen = "NO_ENERGY"
	ScreenProgressReflection AdaptiveScreen = "PROGRESS_REFLECTION"
	ScreenNone               AdaptiveScreen = "NONE"
)

// CapacityBand buckets the capacity score.
type CapacityBand string

const (
	BandHigh    CapacityBand = "HIGH"
	BandMed     CapacityBand = "MED"
	BandLow     CapacityBand = "LOW"
	BandUnknown CapacityBand = "UNKNOWN"
)

// CheckIn is one day's self-report. Date is a UTC day key (YYYY-MM-DD).
type CheckIn struct {
	Date        string    `json:"date" yaml:"date"`
	Energy      int       `json:"energy" yaml:"energy"`
	Pain        int       `json:"pain" yaml:"pain"`
	Confidence  int       `json:"confidence" yaml:"confidence"`
	SideEffects []string  `json:"sideEffects" yaml:"side_effects"`
	RedFlags    []string  `json:"redFlags" yaml:"red_flags"`
	Notes       *string   `json:"notes,omitempty" yaml:"notes,omitempty"`
	SubmittedAt time.Time `json:"submittedAt" yaml:"submitted_at"`
}

// MarkerResult is a single marker assessment. ComfortableReps is nil when not recorded.
type MarkerResult struct {
	Key             MarkerKey `json:"key" yaml:"key"`
	Rating          string    `json:"rating,omitempty" yaml:"rating,omitempty"`
	ComfortableReps *int      `json:"comfortableReps,omitempty" yaml:"comfortable_reps,omitempty"`
	Side            string    `json:"side,omitempty" yaml:"side,omitempty"`
	AssessedAt      time.Time `json:"assessedAt" yaml:"assessed_at"`
	CreatedAt       time.Time `json:"createdAt" yaml:"created_at"`
}

// AdaptiveState is a read-only snapshot of a user's longitudinal flags.
type AdaptiveState struct {
	NeedsPhaseTransition     bool       `json:"needsPhaseTransition" yaml:"needs_phase_transition"`
	NeedsReturnAfterBreak    bool       `json:"needsReturnAfterBreak" yaml:"needs_return_after_break"`
	NeedsNoEnergyFlow        bool       `json:"needsNoEnergyFlow" yaml:"needs_no_energy_flow"`
	WeekSessionCount         int        `json:"weekSessionCount" yaml:"week_session_count"`
	ProgressReflectionSeenAt *time.Time `json:"progressReflectionSeenAt,omitempty" yaml:"progress_reflection_seen_at,omitempty"`
}

// ParqResult is a completed PAR-Q+ screening.
type ParqResult struct {
	ParqRequired bool     `json:"parqRequired" yaml:"parq_required"`
	ParqAnswers  []string `json:"parqAnswers" yaml:"parq_answers"`
}

// Explain is the audit trail attached to a plan.
type Explain struct {
	ConstraintsApplied []string `json:"constraintsApplied"`
	SelectionReasons   []string `json:"selectionReasons"`
}

// TodayPlanOutput is the composed plan for one day.
type TodayPlanOutput struct {
	SafetyStatus       SafetyStatus `json:"safetyStatus"`
	ReadinessScore     int          `json:"readinessScore"`
	CapacityScore      float64      `json:"capacityScore"`
	CapacityBand       CapacityBand `json:"capacityBand"`
	InsufficientData   bool         `json:"insufficientData"`
	BaseVariant        Variant      `json:"baseVariant"`
	RecommendedVariant Variant      `json:"recommendedVariant"`
	Explain            Explain      `json:"explain"`
}

// DateKey returns the UTC calendar-day key for t.
func DateKey(t time.Time) string {
	return t.UTC().Format("2006-01-02")
}
