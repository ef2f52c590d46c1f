package adaptive

import (
	"fmt"
	"strings"
	"time"

	"github.com/davenowercise/nowercise-app-sub004/internal/decision"
)

// Phase is the user's recovery phase.
type Phase string

const (
	PhaseProtect Phase = "PROTECT"
	PhaseRebuild Phase = "REBUILD"
	PhaseExpand  Phase = "EXPAND"
)

func ParsePhase(raw string) (Phase, error) {
	p := Phase(strings.ToUpper(strings.TrimSpace(raw)))
	switch p {
	case PhaseProtect, PhaseRebuild, PhaseExpand:
		return p, nil
	}
	return "", fmt.Errorf("%w: unknown phase %q", ErrValidation, raw)
}

// Feedback is how the last session felt.
type Feedback string

const (
	FeedbackComfortable Feedback = "COMFORTABLE"
	FeedbackABitTiring  Feedback = "A_BIT_TIRING"
	FeedbackTooMuch     Feedback = "TOO_MUCH"
)

// Adjustment is the nudge applied to tomorrow's session.
type Adjustment string

const (
	AdjustLighter     Adjustment = "LIGHTER"
	AdjustSame        Adjustment = "SAME"
	AdjustGentleBuild Adjustment = "GENTLE_BUILD"
)

func ParseFeedback(raw string) (Feedback, error) {
	f := Feedback(strings.ToUpper(strings.TrimSpace(raw)))
	switch f {
	case FeedbackComfortable, FeedbackABitTiring, FeedbackTooMuch:
		return f, nil
	}
	return "", fmt.Errorf("%w: unknown feedback %q", ErrValidation, raw)
}

// Adjustment maps session feedback onto tomorrow's adjustment.
func (f Feedback) Adjustment() Adjustment {
	switch f {
	case FeedbackTooMuch:
		return AdjustLighter
	case FeedbackABitTiring:
		return AdjustSame
	default:
		return AdjustGentleBuild
	}
}

// lighterFeedbackWindow is how long a TOO_MUCH report keeps sessions lighter.
const lighterFeedbackWindow = 48 * time.Hour

// State is the stored longitudinal row for one user. WeekWindowStart is a
// UTC day key.
type State struct {
	UserID                   string     `json:"-"`
	Phase                    Phase      `json:"phase"`
	PhaseChangedAt           *time.Time `json:"phaseChangedAt,omitempty"`
	PhaseTransitionSeenAt    *time.Time `json:"phaseTransitionSeenAt,omitempty"`
	LastSessionAt            *time.Time `json:"lastSessionAt,omitempty"`
	LastSessionFeedback      Feedback   `json:"lastSessionFeedback,omitempty"`
	LastSessionFeedbackAt    *time.Time `json:"lastSessionFeedbackAt,omitempty"`
	WeekSessionCount         int        `json:"weekSessionCount"`
	WeekWindowStart          *string    `json:"weekWindowStart,omitempty"`
	TomorrowAdjustment       Adjustment `json:"tomorrowAdjustment,omitempty"`
	ProgressReflectionSeenAt *time.Time `json:"progressReflectionSeenAt,omitempty"`
	UpdatedAt                time.Time  `json:"updatedAt"`
}

// NewState is the row a user starts with before any bookkeeping.
func NewState(userID string) State {
	return State{UserID: userID, Phase: PhaseProtect}
}

// Snapshot derives the resolver's input from the stored row and today's
// check-in. A user with no recorded session is not treated as returning.
func (s State) Snapshot(rules decision.Rules, today *decision.CheckIn, now time.Time) decision.AdaptiveState {
	out := decision.AdaptiveState{
		WeekSessionCount:         s.weekCountAt(rules.Adaptive.WeekWindowDays, now),
		ProgressReflectionSeenAt: copyTime(s.ProgressReflectionSeenAt),
	}
	if s.PhaseChangedAt != nil {
		out.NeedsPhaseTransition = s.PhaseTransitionSeenAt == nil || s.PhaseChangedAt.After(*s.PhaseTransitionSeenAt)
	}
	if s.LastSessionAt != nil {
		out.NeedsReturnAfterBreak = decision.ElapsedDays(*s.LastSessionAt, now) >= rules.Adaptive.ReturnAfterBreakDays
	}
	if today != nil {
		out.NeedsNoEnergyFlow = today.Energy < rules.Safety.YellowEnergyBelow
	}
	return out
}

// NeedsLighterSession reports whether the next session should be eased off:
// low energy today, a TOO_MUCH report in the last 48h, or a LIGHTER nudge.
func (s State) NeedsLighterSession(snapshot decision.AdaptiveState, now time.Time) bool {
	if snapshot.NeedsNoEnergyFlow {
		return true
	}
	if s.LastSessionFeedback == FeedbackTooMuch && s.LastSessionFeedbackAt != nil {
		if since := now.Sub(*s.LastSessionFeedbackAt); since >= 0 && since <= lighterFeedbackWindow {
			return true
		}
	}
	return s.TomorrowAdjustment == AdjustLighter
}

// weekCountAt is the session count while the rolling window is still open,
// and zero once it has lapsed.
func (s State) weekCountAt(windowDays int, now time.Time) int {
	start, ok := s.windowStart()
	if !ok {
		return s.WeekSessionCount
	}
	if start.Before(now.AddDate(0, 0, -windowDays)) {
		return 0
	}
	return s.WeekSessionCount
}

func (s State) windowStart() (time.Time, bool) {
	if s.WeekWindowStart == nil {
		return time.Time{}, false
	}
	t, err := time.Parse("2006-01-02", *s.WeekWindowStart)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

// completeSession counts a session in the rolling window. A window that
// started more than windowDays before the session restarts at its date.
func (s *State) completeSession(at time.Time, windowDays int) {
	at = at.UTC()
	day := decision.DateKey(at)
	start, ok := s.windowStart()
	switch {
	case !ok:
		s.WeekSessionCount++
		s.WeekWindowStart = &day
	case start.Before(at.AddDate(0, 0, -windowDays)):
		s.WeekSessionCount = 1
		s.WeekWindowStart = &day
	default:
		s.WeekSessionCount++
	}
	s.LastSessionAt = &at
}

func (s *State) recordFeedback(f Feedback, at time.Time) {
	at = at.UTC()
	s.LastSessionFeedback = f
	s.LastSessionFeedbackAt = &at
	s.TomorrowAdjustment = f.Adjustment()
}

// setPhase moves the phase and reports whether it changed. PhaseChangedAt
// only moves on a real change.
func (s *State) setPhase(p Phase, at time.Time) bool {
	if s.Phase == p {
		return false
	}
	at = at.UTC()
	s.Phase = p
	s.PhaseChangedAt = &at
	return true
}

func copyTime(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	v := *t
	return &v
}
