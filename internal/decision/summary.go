package decision

// SummaryReasonLimit is how many selection reasons a Summary keeps.
const SummaryReasonLimit = 3

// MarkerSnapshot is the part of a marker result kept in audit summaries.
type MarkerSnapshot struct {
	Rating          string `json:"rating,omitempty"`
	ComfortableReps *int   `json:"comfortableReps,omitempty"`
	Side            string `json:"side,omitempty"`
}

type MarkerSummary struct {
	SitToStand     *MarkerSnapshot `json:"sitToStand,omitempty"`
	SupportedMarch *MarkerSnapshot `json:"supportedMarch,omitempty"`
	ShoulderRaise  *MarkerSnapshot `json:"shoulderRaise,omitempty"`
}

// Summary is a compact, stable projection of a plan for logs and audits.
type Summary struct {
	SafetyStatus       SafetyStatus  `json:"safetyStatus"`
	CapacityScore      float64       `json:"capacityScore"`
	RecommendedVariant Variant       `json:"recommendedVariant"`
	MarkerSummary      MarkerSummary `json:"markerSummary"`
	ConstraintsApplied []string      `json:"constraintsApplied"`
	SelectionReasons   []string      `json:"selectionReasons"`
}

// Summarize copies decided values verbatim and trims selection reasons. It
// never recomputes anything.
func Summarize(plan TodayPlanOutput, latest map[MarkerKey]MarkerResult) Summary {
	reasons := plan.Explain.SelectionReasons
	if len(reasons) > SummaryReasonLimit {
		reasons = reasons[:SummaryReasonLimit]
	}
	return Summary{
		SafetyStatus:       plan.SafetyStatus,
		CapacityScore:      plan.CapacityScore,
		RecommendedVariant: plan.RecommendedVariant,
		MarkerSummary: MarkerSummary{
			SitToStand:     snapshot(latest, MarkerSitToStand),
			SupportedMarch: snapshot(latest, MarkerSupportedMarch),
			ShoulderRaise:  snapshot(latest, MarkerShoulderRaise),
		},
		ConstraintsApplied: append([]string{}, plan.Explain.ConstraintsApplied...),
		SelectionReasons:   append([]string{}, reasons...),
	}
}

func snapshot(latest map[MarkerKey]MarkerResult, key MarkerKey) *MarkerSnapshot {
	m, ok := latest[key]
	if !ok {
		return nil
	}
	return &MarkerSnapshot{
		Rating:          m.Rating,
		ComfortableReps: copyInt(m.ComfortableReps),
		Side:            m.Side,
	}
}
