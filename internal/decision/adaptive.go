package decision

import "time"

// ReflectionCooldownDays is the minimum number of whole days between two
// progress reflections.
const ReflectionCooldownDays = 7

// ScreenRule is one entry of the adaptive screen cascade.
type ScreenRule struct {
	Name    string
	Screen  AdaptiveScreen
	Applies func(state AdaptiveState, now time.Time) bool
}

// AdaptiveScreenRules returns the cascade in priority order. The first rule
// that applies wins; later rules are not consulted.
func AdaptiveScreenRules() []ScreenRule {
	return []ScreenRule{
		{
			Name:   "phase-transition",
			Screen: ScreenPhaseTransition,
			Applies: func(s AdaptiveState, _ time.Time) bool {
				return s.NeedsPhaseTransition
			},
		},
		{
			Name:   "return-after-break",
			Screen: ScreenReturning,
			Applies: func(s AdaptiveState, _ time.Time) bool {
				return s.NeedsReturnAfterBreak
			},
		},
		{
			Name:   "no-energy",
			Screen: ScreenNoEnergy,
			Applies: func(s AdaptiveState, _ time.Time) bool {
				return s.NeedsNoEnergyFlow
			},
		},
		{
			Name:   "progress-reflection",
			Screen: ScreenProgressReflection,
			Applies: func(s AdaptiveState, now time.Time) bool {
				if s.WeekSessionCount < 1 {
					return false
				}
				if s.ProgressReflectionSeenAt == nil {
					return true
				}
				return ElapsedDays(*s.ProgressReflectionSeenAt, now) >= ReflectionCooldownDays
			},
		},
	}
}

// ResolveAdaptiveScreen picks at most one interrupt screen. A nil state
// resolves to ScreenNone. Conflicting flags are settled by rule order alone.
func ResolveAdaptiveScreen(state *AdaptiveState, now time.Time) AdaptiveScreen {
	if state == nil {
		return ScreenNone
	}
	for _, rule := range AdaptiveScreenRules() {
		if rule.Applies(*state, now) {
			return rule.Screen
		}
	}
	return ScreenNone
}

// ElapsedDays is the number of whole 24h periods from since to now.
func ElapsedDays(since, now time.Time) int {
	elapsed := now.Sub(since)
	if elapsed < 0 {
		return 0
	}
	return int(elapsed / (24 * time.Hour))
}
