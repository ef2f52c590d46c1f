package adaptive

import (
	"testing"
	"time"

	"github.com/davenowercise/nowercise-app-sub004/internal/decision"
)

func dayPtr(s string) *string { return &s }

func TestSnapshotFlags(t *testing.T) {
	rules := decision.DefaultRules()
	now := time.Date(2026, 6, 15, 12, 0, 0, 0, time.UTC)
	changed := now.Add(-48 * time.Hour)
	seenBefore := changed.Add(-time.Hour)
	seenAfter := changed.Add(time.Hour)
	lastWeek := now.Add(-7 * 24 * time.Hour)
	yesterday := now.Add(-24 * time.Hour)

	cases := []struct {
		name  string
		state State
		today *decision.CheckIn
		want  decision.AdaptiveState
	}{
		{
			name:  "new user",
			state: NewState("u"),
			want:  decision.AdaptiveState{},
		},
		{
			name:  "phase changed never seen",
			state: State{PhaseChangedAt: &changed},
			want:  decision.AdaptiveState{NeedsPhaseTransition: true},
		},
		{
			name:  "phase changed after last seen",
			state: State{PhaseChangedAt: &changed, PhaseTransitionSeenAt: &seenBefore},
			want:  decision.AdaptiveState{NeedsPhaseTransition: true},
		},
		{
			name:  "phase transition already seen",
			state: State{PhaseChangedAt: &changed, PhaseTransitionSeenAt: &seenAfter},
			want:  decision.AdaptiveState{},
		},
		{
			name:  "seven days since last session",
			state: State{LastSessionAt: &lastWeek},
			want:  decision.AdaptiveState{NeedsReturnAfterBreak: true},
		},
		{
			name:  "recent session",
			state: State{LastSessionAt: &yesterday},
			want:  decision.AdaptiveState{},
		},
		{
			name:  "low energy today",
			state: NewState("u"),
			today: &decision.CheckIn{Energy: 2},
			want:  decision.AdaptiveState{NeedsNoEnergyFlow: true},
		},
		{
			name:  "energy at threshold",
			state: NewState("u"),
			today: &decision.CheckIn{Energy: 3},
			want:  decision.AdaptiveState{},
		},
		{
			name:  "open week window",
			state: State{WeekSessionCount: 2, WeekWindowStart: dayPtr("2026-06-12")},
			want:  decision.AdaptiveState{WeekSessionCount: 2},
		},
		{
			name:  "lapsed week window",
			state: State{WeekSessionCount: 4, WeekWindowStart: dayPtr("2026-06-01")},
			want:  decision.AdaptiveState{},
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := tc.state.Snapshot(rules, tc.today, now)
			if got != tc.want {
				t.Fatalf("got %+v want %+v", got, tc.want)
			}
		})
	}
}

func TestCompleteSessionRollingWindow(t *testing.T) {
	s := NewState("u")
	first := time.Date(2026, 6, 1, 9, 0, 0, 0, time.UTC)

	s.completeSession(first, 7)
	if s.WeekSessionCount != 1 || *s.WeekWindowStart != "2026-06-01" {
		t.Fatalf("first session: %+v", s)
	}

	s.completeSession(first.AddDate(0, 0, 3), 7)
	if s.WeekSessionCount != 2 || *s.WeekWindowStart != "2026-06-01" {
		t.Fatalf("same window: count=%d start=%s", s.WeekSessionCount, *s.WeekWindowStart)
	}

	// Exactly seven days after the window start is still inside it.
	s.completeSession(time.Date(2026, 6, 8, 0, 0, 0, 0, time.UTC), 7)
	if s.WeekSessionCount != 3 {
		t.Fatalf("boundary: count=%d", s.WeekSessionCount)
	}

	late := time.Date(2026, 6, 9, 18, 0, 0, 0, time.UTC)
	s.completeSession(late, 7)
	if s.WeekSessionCount != 1 || *s.WeekWindowStart != "2026-06-09" {
		t.Fatalf("reset: count=%d start=%s", s.WeekSessionCount, *s.WeekWindowStart)
	}
	if !s.LastSessionAt.Equal(late) {
		t.Fatalf("last session not updated: %v", s.LastSessionAt)
	}
}

func TestFeedbackAdjustment(t *testing.T) {
	cases := map[Feedback]Adjustment{
		FeedbackTooMuch:     AdjustLighter,
		FeedbackABitTiring:  AdjustSame,
		FeedbackComfortable: AdjustGentleBuild,
	}
	for f, want := range cases {
		if got := f.Adjustment(); got != want {
			t.Fatalf("%s: got %s want %s", f, got, want)
		}
	}
	if _, err := ParseFeedback("meh"); err == nil {
		t.Fatalf("expected error for unknown feedback")
	}
	if f, err := ParseFeedback(" too_much "); err != nil || f != FeedbackTooMuch {
		t.Fatalf("ParseFeedback: %v %v", f, err)
	}
}

func TestSetPhaseOnlyStampsRealChanges(t *testing.T) {
	s := NewState("u")
	at := time.Date(2026, 6, 1, 9, 0, 0, 0, time.UTC)
	if s.setPhase(PhaseProtect, at) || s.PhaseChangedAt != nil {
		t.Fatalf("same phase must not stamp a change")
	}
	if !s.setPhase(PhaseRebuild, at) || !s.PhaseChangedAt.Equal(at) {
		t.Fatalf("expected change stamp at %s, got %v", at, s.PhaseChangedAt)
	}
}

func TestNeedsLighterSession(t *testing.T) {
	now := time.Date(2026, 6, 15, 12, 0, 0, 0, time.UTC)
	recent := now.Add(-47 * time.Hour)
	old := now.Add(-49 * time.Hour)

	if !(State{}).NeedsLighterSession(decision.AdaptiveState{NeedsNoEnergyFlow: true}, now) {
		t.Fatalf("low energy should ease off")
	}
	if !(State{LastSessionFeedback: FeedbackTooMuch, LastSessionFeedbackAt: &recent}).NeedsLighterSession(decision.AdaptiveState{}, now) {
		t.Fatalf("recent TOO_MUCH should ease off")
	}
	if (State{LastSessionFeedback: FeedbackTooMuch, LastSessionFeedbackAt: &old, TomorrowAdjustment: AdjustSame}).NeedsLighterSession(decision.AdaptiveState{}, now) {
		t.Fatalf("stale TOO_MUCH should not ease off")
	}
	if !(State{TomorrowAdjustment: AdjustLighter}).NeedsLighterSession(decision.AdaptiveState{}, now) {
		t.Fatalf("LIGHTER adjustment should ease off")
	}
}
