package decision

import (
	"fmt"
	"strings"
)

// Constraint identifiers emitted by the plan composer.
const (
	ConstraintRecoveryForced      = "recovery-variant-forced"
	ConstraintIntensityStepDown   = "intensity-step-down"
	ConstraintCapacityAdvance     = "capacity-advancement"
	ConstraintInsufficientMarkers = "insufficient-marker-data"
	ConstraintLowerBodyLoad       = "marker-lower-body-load-reduced"
	ConstraintStrengthProgression = "marker-strength-progression-allowed"
	ConstraintSupportedBalance    = "marker-supported-balance"
	ConstraintShoulderLoad        = "marker-shoulder-load-reduced"
)

// PlanInput is everything the composer needs for one day.
type PlanInput struct {
	Safety      SafetyAssessment
	Capacity    CapacityResult
	BaseVariant Variant
}

// ComposePlan picks today's variant. RED always forces RESET, YELLOW steps
// down from the base, GREEN keeps the base and may advance one rung when
// capacity clears the advancement threshold.
func (r Rules) ComposePlan(in PlanInput) (TodayPlanOutput, error) {
	base := in.BaseVariant
	if base.rank() < 0 {
		return TodayPlanOutput{}, fmt.Errorf("%w: unknown base variant %q", ErrInvalidInput, base)
	}

	var (
		variant       = base
		constraints   []string
		safetyReason  string
		variantReason string
	)

	switch in.Safety.Status {
	case SafetyRed:
		variant = VariantReset
		constraints = append(constraints, in.Safety.Triggers...)
		constraints = append(constraints, ConstraintRecoveryForced)
		safetyReason = fmt.Sprintf("Safety check is RED (%s); only a recovery session is appropriate today.", strings.Join(in.Safety.Triggers, ", "))
		variantReason = fmt.Sprintf("Recovery override: %s replaces %s regardless of capacity.", variant, base)
	case SafetyYellow:
		variant = base.step(-r.Plan.YellowStepDown)
		constraints = append(constraints, in.Safety.Triggers...)
		constraints = append(constraints, ConstraintIntensityStepDown)
		safetyReason = fmt.Sprintf("Safety check is YELLOW (%s); intensity is reduced but movement is still encouraged.", strings.Join(in.Safety.Triggers, ", "))
		if variant == base {
			variantReason = fmt.Sprintf("%s is already the gentlest variant.", base)
		} else {
			variantReason = fmt.Sprintf("Stepped down from %s to %s.", base, variant)
		}
	case SafetyGreen:
		safetyReason = "Safety check is GREEN; no safety constraints apply today."
		switch {
		case in.Capacity.InsufficientData:
			constraints = append(constraints, ConstraintInsufficientMarkers)
			variantReason = fmt.Sprintf("Staying on %s until marker results are available.", base)
		case in.Capacity.CapacityScore >= r.Plan.AdvanceAtOrAbove && base.step(1) != base:
			variant = base.step(1)
			constraints = append(constraints, ConstraintCapacityAdvance)
			variantReason = fmt.Sprintf("Advanced from %s to %s: capacity %.1f meets the %.0f threshold.", base, variant, in.Capacity.CapacityScore, r.Plan.AdvanceAtOrAbove)
		default:
			variantReason = fmt.Sprintf("Staying on %s.", base)
		}
	default:
		return TodayPlanOutput{}, fmt.Errorf("%w: unknown safety status %q", ErrInvalidInput, in.Safety.Status)
	}

	markerConstraints, markerReasons := r.markerAdaptations(in.Safety.Status, in.Capacity.PerMarker)
	constraints = append(constraints, markerConstraints...)

	reasons := []string{safetyReason, variantReason, describeCapacity(in.Capacity)}
	reasons = append(reasons, markerReasons...)

	return TodayPlanOutput{
		SafetyStatus:       in.Safety.Status,
		ReadinessScore:     in.Safety.ReadinessScore,
		CapacityScore:      in.Capacity.CapacityScore,
		CapacityBand:       in.Capacity.Band,
		InsufficientData:   in.Capacity.InsufficientData,
		BaseVariant:        base,
		RecommendedVariant: variant,
		Explain: Explain{
			ConstraintsApplied: dedupeOrdered(constraints),
			SelectionReasons:   reasons,
		},
	}, nil
}

// markerAdaptations mirrors the exercise-selection adjustments driven by the
// latest markers. They annotate the plan and never move the variant.
func (r Rules) markerAdaptations(status SafetyStatus, markers map[MarkerKey]MarkerScore) ([]string, []string) {
	var constraints, reasons []string

	if m, ok := markers[MarkerSitToStand]; ok {
		lowReps := m.ComfortableReps != nil && *m.ComfortableReps <= r.Plan.LowerBodyRepsAtOrBelow
		highReps := m.ComfortableReps != nil && *m.ComfortableReps >= r.Plan.StrengthProgressionRepsAtOrAbove
		switch {
		case isHardRating(m.Rating) || lowReps:
			constraints = append(constraints, ConstraintLowerBodyLoad)
			reasons = append(reasons, "Lower-body load adjusted based on your sit-to-stand check.")
		case status == SafetyGreen && isEasyRating(m.Rating) && highReps:
			constraints = append(constraints, ConstraintStrengthProgression)
			reasons = append(reasons, "Strength progression allowed based on your sit-to-stand check.")
		}
	}

	if m, ok := markers[MarkerSupportedMarch]; ok && isHardRating(m.Rating) {
		constraints = append(constraints, ConstraintSupportedBalance)
		if side := sideLabel(m.Side); side != "" {
			reasons = append(reasons, fmt.Sprintf("Extra support for the %s side today.", side))
		}
		reasons = append(reasons, "Balance work kept supported based on your march check.")
	}

	if m, ok := markers[MarkerShoulderRaise]; ok && isHardRating(m.Rating) {
		constraints = append(constraints, ConstraintShoulderLoad)
		reasons = append(reasons, "Reduced shoulder loading based on your shoulder raise check.")
	}

	return constraints, reasons
}

func describeCapacity(c CapacityResult) string {
	if c.InsufficientData {
		return "Capacity unknown: no usable marker results yet."
	}
	return fmt.Sprintf("Capacity score %.1f (%s) from %d marker(s).", c.CapacityScore, c.Band, len(c.PerMarker))
}

func sideLabel(raw string) string {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "left":
		return "left"
	case "right":
		return "right"
	default:
		return ""
	}
}

func dedupeOrdered(items []string) []string {
	seen := make(map[string]bool, len(items))
	out := make([]string, 0, len(items))
	for _, item := range items {
		if item == "" || seen[item] {
			continue
		}
		seen[item] = true
		out = append(out, item)
	}
	return out
}
