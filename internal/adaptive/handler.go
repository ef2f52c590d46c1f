package adaptive

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/davenowercise/nowercise-app-sub004/internal/decision"
	"github.com/davenowercise/nowercise-app-sub004/internal/queue"
	"github.com/davenowercise/nowercise-app-sub004/internal/shared/metrics"
	"github.com/davenowercise/nowercise-app-sub004/internal/shared/server/middleware"
	"github.com/davenowercise/nowercise-app-sub004/internal/shared/server/respond"
	"github.com/davenowercise/nowercise-app-sub004/internal/shared/telemetry"
	"github.com/davenowercise/nowercise-app-sub004/internal/shared/validate"
)

// Handler serves adaptive state and session events. When Queue is set the
// session routes enqueue and return 202; otherwise they apply inline.
type Handler struct {
	Svc   *Service
	Queue queue.Client
	Now   func() time.Time
}

func NewHandler(svc *Service, q queue.Client) *Handler {
	return &Handler{Svc: svc, Queue: q, Now: time.Now}
}

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/adaptive/state", h.state)
	rg.POST("/adaptive/seen", h.seen)
	rg.PUT("/adaptive/phase", h.phase)
	rg.POST("/sessions/complete", h.complete)
	rg.POST("/sessions/feedback", h.feedback)
}

type stateResponse struct {
	State
	Snapshot            decision.AdaptiveState `json:"snapshot"`
	NeedsLighterSession bool                   `json:"needsLighterSession"`
}

type seenRequest struct {
	Screen string     `json:"screen" validate:"required,oneof=PHASE_TRANSITION PROGRESS_REFLECTION"`
	At     *time.Time `json:"at"`
}

type phaseRequest struct {
	Phase string `json:"phase" validate:"required,oneof=PROTECT REBUILD EXPAND"`
}

type completeRequest struct {
	CompletedAt *time.Time `json:"completedAt"`
}

type feedbackRequest struct {
	Feedback string     `json:"feedback" validate:"required,oneof=COMFORTABLE A_BIT_TIRING TOO_MUCH"`
	At       *time.Time `json:"at"`
}

func (h *Handler) state(c *gin.Context) {
	now := h.Now()
	snap, st, err := h.Svc.Snapshot(c.Request.Context(), middleware.UserIDFromContext(c), nil, now)
	if err != nil {
		h.fail(c, err)
		return
	}
	respond.OK(c, stateResponse{State: st, Snapshot: snap, NeedsLighterSession: st.NeedsLighterSession(snap, now)})
}

func (h *Handler) seen(c *gin.Context) {
	var req seenRequest
	if !bindValid(c, &req) {
		return
	}
	st, err := h.Svc.MarkScreenSeen(c.Request.Context(), middleware.UserIDFromContext(c), decision.AdaptiveScreen(req.Screen), h.at(req.At))
	if err != nil {
		h.fail(c, err)
		return
	}
	respond.OK(c, st)
}

func (h *Handler) phase(c *gin.Context) {
	var req phaseRequest
	if !bindValid(c, &req) {
		return
	}
	st, err := h.Svc.UpdatePhase(c.Request.Context(), middleware.UserIDFromContext(c), Phase(req.Phase), h.Now())
	if err != nil {
		h.fail(c, err)
		return
	}
	respond.OK(c, st)
}

func (h *Handler) complete(c *gin.Context) {
	var req completeRequest
	if !bindValid(c, &req) {
		return
	}
	userID := middleware.UserIDFromContext(c)
	at := h.at(req.CompletedAt)
	if h.Queue != nil {
		h.enqueue(c, queue.Message{Type: queue.TypeSessionCompleted, UserID: userID, OccurredAt: at})
		return
	}
	st, err := h.Svc.MarkSessionComplete(c.Request.Context(), userID, at)
	if err != nil {
		h.fail(c, err)
		return
	}
	respond.OK(c, st)
}

func (h *Handler) feedback(c *gin.Context) {
	var req feedbackRequest
	if !bindValid(c, &req) {
		return
	}
	userID := middleware.UserIDFromContext(c)
	at := h.at(req.At)
	if h.Queue != nil {
		h.enqueue(c, queue.Message{Type: queue.TypeSessionFeedback, UserID: userID, OccurredAt: at, Feedback: req.Feedback})
		return
	}
	st, err := h.Svc.RecordSessionFeedback(c.Request.Context(), userID, Feedback(req.Feedback), at)
	if err != nil {
		h.fail(c, err)
		return
	}
	respond.OK(c, st)
}

func (h *Handler) enqueue(c *gin.Context, msg queue.Message) {
	msg.RequestID = middleware.RequestIDFromContext(c)
	msg.Version = queue.MessageVersion
	if err := h.Queue.Send(c.Request.Context(), msg); err != nil {
		telemetry.Error("adaptive.enqueue_failed", map[string]any{
			"type":       msg.Type,
			"request_id": msg.RequestID,
			"error":      err.Error(),
		})
		respond.Error(c, http.StatusServiceUnavailable, "queue_unavailable", "failed to queue session event", nil)
		return
	}
	metrics.IncSessionEventReceived()
	respond.Accepted(c, gin.H{"queued": true, "type": msg.Type})
}

func (h *Handler) at(v *time.Time) time.Time {
	if v == nil || v.IsZero() {
		return h.Now().UTC()
	}
	return v.UTC()
}

func (h *Handler) fail(c *gin.Context, err error) {
	if errors.Is(err, ErrValidation) {
		respond.ValidationError(c, err.Error(), nil)
		return
	}
	respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to update adaptive state", nil)
}

// bindValid decodes and validates the body, writing the error response
// itself. An empty body is accepted as an empty object.
func bindValid(c *gin.Context, req any) bool {
	if c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(req); err != nil {
			respond.Error(c, http.StatusBadRequest, "validation_error", "invalid JSON body", nil)
			return false
		}
	}
	if err := validate.Struct(req); err != nil {
		respond.ValidationError(c, err.Error(), validate.Fields(err))
		return false
	}
	return true
}
