package markers

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/davenowercise/nowercise-app-sub004/internal/decision"
	"github.com/davenowercise/nowercise-app-sub004/internal/shared/server/middleware"
	"github.com/davenowercise/nowercise-app-sub004/internal/shared/server/respond"
	"github.com/davenowercise/nowercise-app-sub004/internal/shared/validate"
)

type Handler struct {
	Svc *Service
	Now func() time.Time
}

func NewHandler(svc *Service) *Handler {
	return &Handler{Svc: svc, Now: time.Now}
}

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/markers", h.record)
	rg.GET("/markers/latest", h.latest)
}

func (h *Handler) record(c *gin.Context) {
	var req RecordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "invalid JSON body", nil)
		return
	}
	saved, err := h.Svc.Record(c.Request.Context(), middleware.UserIDFromContext(c), req, h.Now())
	switch {
	case err == nil:
		respond.Created(c, saved)
	case errors.Is(err, decision.ErrUnknownMarkerKind):
		respond.Error(c, http.StatusBadRequest, "unknown_marker", err.Error(), gin.H{"allowed": decision.MarkerKeys()})
	case errors.Is(err, ErrValidation):
		respond.ValidationError(c, err.Error(), validate.Fields(err))
	default:
		respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to save marker result", nil)
	}
}

func (h *Handler) latest(c *gin.Context) {
	latest, err := h.Svc.Latest(c.Request.Context(), middleware.UserIDFromContext(c))
	if err != nil {
		respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to load markers", nil)
		return
	}
	respond.OK(c, gin.H{"markers": latest})
}
