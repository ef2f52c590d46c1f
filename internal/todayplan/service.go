package todayplan

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"path"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/davenowercise/nowercise-app-sub004/internal/adaptive"
	"github.com/davenowercise/nowercise-app-sub004/internal/checkins"
	"github.com/davenowercise/nowercise-app-sub004/internal/decision"
	"github.com/davenowercise/nowercise-app-sub004/internal/markers"
	"github.com/davenowercise/nowercise-app-sub004/internal/screening"
	"github.com/davenowercise/nowercise-app-sub004/internal/shared/metrics"
	"github.com/davenowercise/nowercise-app-sub004/internal/shared/storage/object"
	"github.com/davenowercise/nowercise-app-sub004/internal/shared/telemetry"
	"github.com/davenowercise/nowercise-app-sub004/internal/shared/util"
)

type ScreeningSource interface {
	Latest(ctx context.Context, userID string) (screening.Result, error)
}

type CheckInSource interface {
	Today(ctx context.Context, userID string, now time.Time) (checkins.CheckIn, error)
}

type MarkerSource interface {
	History(ctx context.Context, userID string) ([]markers.Result, error)
}

type StateSource interface {
	Snapshot(ctx context.Context, userID string, today *decision.CheckIn, now time.Time) (decision.AdaptiveState, adaptive.State, error)
}

// Service fetches a user's records, runs the engine and audits the outcome.
// Audit is optional; a failed audit write never fails the request.
type Service struct {
	Engine    *decision.Engine
	Screening ScreeningSource
	CheckIns  CheckInSource
	Markers   MarkerSource
	State     StateSource
	Audit     object.ObjectStore
}

// Result is what the client renders for today.
type Result struct {
	Plan                decision.TodayPlanOutput  `json:"plan"`
	Summary             decision.Summary          `json:"summary"`
	Screen              decision.AdaptiveScreen   `json:"screen"`
	Clearance           decision.Clearance        `json:"clearance"`
	Safety              decision.SafetyAssessment `json:"safety"`
	Capacity            decision.CapacityResult   `json:"capacity"`
	NeedsLighterSession bool                      `json:"needsLighterSession"`
	AuditKey            string                    `json:"auditKey,omitempty"`
}

type inputs struct {
	screening *decision.ParqResult
	checkIn   *decision.CheckIn
	markers   []decision.MarkerResult
	snapshot  decision.AdaptiveState
	state     adaptive.State
}

// ParseBase reads the ?base= value; empty means MAIN.
func ParseBase(raw string) (decision.Variant, error) {
	if strings.TrimSpace(raw) == "" {
		return decision.VariantMain, nil
	}
	v, err := decision.ParseVariant(raw)
	if err != nil {
		return "", fmt.Errorf("%w: %q", ErrInvalidBase, raw)
	}
	return v, nil
}

// Today decides the user's plan. On ErrClearanceRequired or
// ErrCheckInRequired the returned Result still carries the screen and
// clearance so the client can route the user.
func (s *Service) Today(ctx context.Context, userID string, base decision.Variant, now time.Time) (Result, error) {
	if s == nil || s.Engine == nil || s.State == nil {
		return Result{}, errors.New("today plan service not configured")
	}
	start := time.Now()
	now = now.UTC()

	in, err := s.load(ctx, userID, now, true)
	if err != nil {
		return Result{}, err
	}

	res, err := s.Engine.Plan(decision.Inputs{
		Screening:   in.screening,
		CheckIn:     in.checkIn,
		Markers:     in.markers,
		State:       &in.snapshot,
		BaseVariant: base,
		Now:         now,
	})
	out := Result{Screen: res.Screen, Clearance: res.Clearance}
	metrics.IncAdaptiveScreen(string(res.Screen))
	switch {
	case errors.Is(err, decision.ErrNotCleared):
		metrics.IncPlanBlockedClearance()
		telemetry.Info("todayplan.blocked", map[string]any{"user_id": userID, "reason": "clearance"})
		return out, fmt.Errorf("%w: %w", ErrClearanceRequired, err)
	case errors.Is(err, decision.ErrMissingSafetyInput):
		metrics.IncPlanBlockedCheckIn()
		telemetry.Info("todayplan.blocked", map[string]any{"user_id": userID, "reason": "checkin"})
		return out, fmt.Errorf("%w: %w", ErrCheckInRequired, err)
	case err != nil:
		return out, err
	}

	out.Plan = res.Plan
	out.Summary = res.Summary
	out.Safety = res.Safety
	out.Capacity = res.Capacity
	out.NeedsLighterSession = in.state.NeedsLighterSession(in.snapshot, now)
	out.AuditKey = s.audit(ctx, userID, now, base, in, res)

	metrics.IncPlanGenerated(string(res.Plan.SafetyStatus))
	metrics.ObservePlanDurationMs(metrics.Since(start))
	telemetry.Info("todayplan.decided", map[string]any{
		"user_id":             userID,
		"date":                decision.DateKey(now),
		"safety_status":       string(res.Summary.SafetyStatus),
		"capacity_score":      res.Summary.CapacityScore,
		"base_variant":        string(base),
		"recommended_variant": string(res.Summary.RecommendedVariant),
		"constraints":         res.Summary.ConstraintsApplied,
		"reasons":             res.Summary.SelectionReasons,
		"screen":              string(res.Screen),
	})
	return out, nil
}

// Screen resolves only the adaptive screen. A missing check-in or screening
// does not block it.
func (s *Service) Screen(ctx context.Context, userID string, now time.Time) (decision.AdaptiveScreen, error) {
	if s == nil || s.State == nil {
		return "", errors.New("today plan service not configured")
	}
	now = now.UTC()
	in, err := s.load(ctx, userID, now, false)
	if err != nil {
		return "", err
	}
	screen := decision.ResolveAdaptiveScreen(&in.snapshot, now)
	metrics.IncAdaptiveScreen(string(screen))
	return screen, nil
}

func (s *Service) load(ctx context.Context, userID string, now time.Time, full bool) (inputs, error) {
	var in inputs

	if s.CheckIns != nil {
		c, err := s.CheckIns.Today(ctx, userID, now)
		switch {
		case err == nil:
			in.checkIn = c.Decision()
		case !errors.Is(err, checkins.ErrNotFound):
			return in, fmt.Errorf("load check-in: %w", err)
		}
	}

	snap, st, err := s.State.Snapshot(ctx, userID, in.checkIn, now)
	if err != nil {
		return in, fmt.Errorf("load adaptive state: %w", err)
	}
	in.snapshot, in.state = snap, st
	if !full {
		return in, nil
	}

	if s.Screening != nil {
		r, err := s.Screening.Latest(ctx, userID)
		switch {
		case err == nil:
			in.screening = r.Decision()
		case !errors.Is(err, screening.ErrNotFound):
			return in, fmt.Errorf("load screening: %w", err)
		}
	}

	if s.Markers != nil {
		history, err := s.Markers.History(ctx, userID)
		if err != nil {
			return in, fmt.Errorf("load markers: %w", err)
		}
		in.markers = markers.ToDecision(history)
	}
	return in, nil
}

type auditRecord struct {
	ID          string                  `json:"id"`
	UserKey     string                  `json:"userKey"`
	DecidedAt   time.Time               `json:"decidedAt"`
	BaseVariant decision.Variant        `json:"baseVariant"`
	CheckIn     *decision.CheckIn       `json:"checkIn"`
	Markers     []decision.MarkerResult `json:"markers"`
	State       decision.AdaptiveState  `json:"adaptiveState"`
	Rules       decision.Rules          `json:"rules"`
	Decision    decision.PlanResult     `json:"decision"`
}

// audit writes the decision under audit/<user hash>/<date>/<id>.json and
// returns the key, or "" when no store is configured or the write failed.
func (s *Service) audit(ctx context.Context, userID string, now time.Time, base decision.Variant, in inputs, res decision.PlanResult) string {
	if s.Audit == nil {
		return ""
	}
	rec := auditRecord{
		ID:          uuid.NewString(),
		UserKey:     util.HashUserKey(userID),
		DecidedAt:   now,
		BaseVariant: base,
		CheckIn:     in.checkIn,
		Markers:     in.markers,
		State:       in.snapshot,
		Rules:       s.Engine.Rules,
		Decision:    res,
	}
	key := AuditKey(rec.UserKey, now, rec.ID)
	payload, err := json.Marshal(rec)
	if err == nil {
		_, err = s.Audit.Put(ctx, key, "application/json", bytes.NewReader(payload))
	}
	if err != nil {
		telemetry.Warn("todayplan.audit_failed", map[string]any{"key": key, "error": err.Error()})
		return ""
	}
	return key
}

// AuditKey builds the object key for one decision.
func AuditKey(userKey string, now time.Time, id string) string {
	return path.Join("audit", userKey, decision.DateKey(now), id+".json")
}
