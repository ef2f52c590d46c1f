package todayplan_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/davenowercise/nowercise-app-sub004/internal/bootstrap"
	"github.com/davenowercise/nowercise-app-sub004/internal/shared/config"
)

func newTestRouter(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	cfg := config.Config{
		Port:            "0",
		CORSAllowOrigin: []string{"http://localhost:5173"},
		LocalStoreDir:   t.TempDir(),
		Env:             "dev",
		AuditStoreType:  "local",
	}
	app, err := bootstrap.Build(cfg)
	if err != nil {
		t.Fatalf("bootstrap build: %v", err)
	}
	return app.Router
}

func do(t *testing.T, router *gin.Engine, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	if body == "" {
		reader = bytes.NewReader(nil)
	} else {
		reader = bytes.NewReader([]byte(body))
	}
	req := httptest.NewRequest(method, path, reader)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("X-Guest-Id", "test-guest")
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	return resp
}

func errorCode(t *testing.T, resp *httptest.ResponseRecorder) string {
	t.Helper()
	var payload struct {
		Error struct {
			Code string `json:"code"`
		} `json:"error"`
	}
	if err := json.Unmarshal(resp.Body.Bytes(), &payload); err != nil {
		t.Fatalf("decode error body: %v (%s)", err, resp.Body.String())
	}
	return payload.Error.Code
}

func TestTodayPlanFlow(t *testing.T) {
	router := newTestRouter(t)

	resp := do(t, router, http.MethodGet, "/api/v1/today/plan", "")
	if resp.Code != http.StatusConflict || errorCode(t, resp) != "medical_clearance_required" {
		t.Fatalf("expected clearance 409, got %d %s", resp.Code, resp.Body.String())
	}

	resp = do(t, router, http.MethodPost, "/api/v1/screening", `{"answers":["No","No","No"]}`)
	if resp.Code != http.StatusCreated {
		t.Fatalf("screening: expected 201, got %d %s", resp.Code, resp.Body.String())
	}

	resp = do(t, router, http.MethodGet, "/api/v1/today/plan", "")
	if resp.Code != http.StatusConflict || errorCode(t, resp) != "checkin_required" {
		t.Fatalf("expected check-in 409, got %d %s", resp.Code, resp.Body.String())
	}

	resp = do(t, router, http.MethodPost, "/api/v1/checkins/today", `{"energy":1,"pain":4,"confidence":3,"sideEffects":["nausea"]}`)
	if resp.Code != http.StatusOK {
		t.Fatalf("check-in: expected 200, got %d %s", resp.Code, resp.Body.String())
	}

	resp = do(t, router, http.MethodGet, "/api/v1/today/plan?base=MAIN", "")
	if resp.Code != http.StatusOK {
		t.Fatalf("plan: expected 200, got %d %s", resp.Code, resp.Body.String())
	}
	var plan struct {
		Plan struct {
			SafetyStatus       string `json:"safetyStatus"`
			RecommendedVariant string `json:"recommendedVariant"`
		} `json:"plan"`
		Summary struct {
			ConstraintsApplied []string `json:"constraintsApplied"`
		} `json:"summary"`
		Screen   string `json:"screen"`
		AuditKey string `json:"auditKey"`
	}
	if err := json.Unmarshal(resp.Body.Bytes(), &plan); err != nil {
		t.Fatalf("decode plan: %v", err)
	}
	if plan.Plan.SafetyStatus != "YELLOW" || plan.Plan.RecommendedVariant != "EASIER" {
		t.Fatalf("unexpected plan: %+v", plan.Plan)
	}
	if !strings.Contains(strings.Join(plan.Summary.ConstraintsApplied, ","), "low-energy-reduction") {
		t.Fatalf("expected low-energy-reduction in %v", plan.Summary.ConstraintsApplied)
	}
	if plan.Screen != "NO_ENERGY" || plan.AuditKey == "" {
		t.Fatalf("unexpected screen/audit: %s %q", plan.Screen, plan.AuditKey)
	}

	resp = do(t, router, http.MethodGet, "/api/v1/today/plan?base=HARDCORE", "")
	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for bad base, got %d", resp.Code)
	}

	resp = do(t, router, http.MethodGet, "/api/v1/today/screen", "")
	if resp.Code != http.StatusOK || !strings.Contains(resp.Body.String(), `"NO_ENERGY"`) {
		t.Fatalf("screen: got %d %s", resp.Code, resp.Body.String())
	}

	resp = do(t, router, http.MethodGet, "/metrics", "")
	if resp.Code != http.StatusOK || !strings.Contains(resp.Body.String(), "plans_blocked_checkin_total") {
		t.Fatalf("metrics: got %d", resp.Code)
	}
}

func TestSessionRoutesApplyInlineWithoutQueue(t *testing.T) {
	router := newTestRouter(t)

	resp := do(t, router, http.MethodPost, "/api/v1/sessions/complete", "")
	if resp.Code != http.StatusOK {
		t.Fatalf("complete: expected 200, got %d %s", resp.Code, resp.Body.String())
	}
	resp = do(t, router, http.MethodPost, "/api/v1/sessions/feedback", `{"feedback":"TOO_MUCH"}`)
	if resp.Code != http.StatusOK {
		t.Fatalf("feedback: expected 200, got %d %s", resp.Code, resp.Body.String())
	}

	resp = do(t, router, http.MethodGet, "/api/v1/adaptive/state", "")
	if resp.Code != http.StatusOK {
		t.Fatalf("state: expected 200, got %d", resp.Code)
	}
	var state struct {
		WeekSessionCount    int    `json:"weekSessionCount"`
		TomorrowAdjustment  string `json:"tomorrowAdjustment"`
		NeedsLighterSession bool   `json:"needsLighterSession"`
	}
	if err := json.Unmarshal(resp.Body.Bytes(), &state); err != nil {
		t.Fatalf("decode state: %v", err)
	}
	if state.WeekSessionCount != 1 || state.TomorrowAdjustment != "LIGHTER" || !state.NeedsLighterSession {
		t.Fatalf("unexpected state: %+v", state)
	}

	resp = do(t, router, http.MethodGet, "/api/v1/today/screen", "")
	if !strings.Contains(resp.Body.String(), `"PROGRESS_REFLECTION"`) {
		t.Fatalf("expected progress reflection, got %s", resp.Body.String())
	}
	resp = do(t, router, http.MethodPost, "/api/v1/adaptive/seen", `{"screen":"PROGRESS_REFLECTION"}`)
	if resp.Code != http.StatusOK {
		t.Fatalf("seen: expected 200, got %d %s", resp.Code, resp.Body.String())
	}
	resp = do(t, router, http.MethodGet, "/api/v1/today/screen", "")
	if !strings.Contains(resp.Body.String(), `"NONE"`) {
		t.Fatalf("expected no screen after acknowledgement, got %s", resp.Body.String())
	}

	resp = do(t, router, http.MethodPost, "/api/v1/adaptive/seen", `{"screen":"NO_ENERGY"}`)
	if resp.Code != http.StatusBadRequest || errorCode(t, resp) != "validation_error" {
		t.Fatalf("expected validation error, got %d %s", resp.Code, resp.Body.String())
	}

	resp = do(t, router, http.MethodPut, "/api/v1/adaptive/phase", `{"phase":"REBUILD"}`)
	if resp.Code != http.StatusOK {
		t.Fatalf("phase: expected 200, got %d %s", resp.Code, resp.Body.String())
	}
	resp = do(t, router, http.MethodGet, "/api/v1/today/screen", "")
	if !strings.Contains(resp.Body.String(), `"PHASE_TRANSITION"`) {
		t.Fatalf("expected phase transition, got %s", resp.Body.String())
	}
}

func TestMarkersRejectUnknownKey(t *testing.T) {
	router := newTestRouter(t)

	resp := do(t, router, http.MethodPost, "/api/v1/markers", `{"markerKey":"PLANK","rating":"easy"}`)
	if resp.Code != http.StatusBadRequest || errorCode(t, resp) != "unknown_marker" {
		t.Fatalf("expected unknown_marker, got %d %s", resp.Code, resp.Body.String())
	}

	resp = do(t, router, http.MethodPost, "/api/v1/markers", `{"markerKey":"sit_to_stand","rating":"easy","comfortableReps":8}`)
	if resp.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d %s", resp.Code, resp.Body.String())
	}
	resp = do(t, router, http.MethodGet, "/api/v1/markers/latest", "")
	if resp.Code != http.StatusOK || !strings.Contains(resp.Body.String(), "SIT_TO_STAND") {
		t.Fatalf("latest: got %d %s", resp.Code, resp.Body.String())
	}
}

func TestHealthIsPublic(t *testing.T) {
	router := newTestRouter(t)
	req := httptest.NewRequest(http.MethodGet, "/api/v1/health", nil)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.Code)
	}
}
