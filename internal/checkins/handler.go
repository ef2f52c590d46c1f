package checkins

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

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
	rg.POST("/checkins/today", h.submit)
	rg.GET("/checkins/today", h.today)
}

func (h *Handler) submit(c *gin.Context) {
	var req SubmitRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "invalid JSON body", nil)
		return
	}
	saved, err := h.Svc.Submit(c.Request.Context(), middleware.UserIDFromContext(c), req, h.Now())
	if err != nil {
		if errors.Is(err, ErrValidation) {
			respond.ValidationError(c, err.Error(), validate.Fields(err))
			return
		}
		respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to save check-in", nil)
		return
	}
	respond.OK(c, saved)
}

func (h *Handler) today(c *gin.Context) {
	current, err := h.Svc.Today(c.Request.Context(), middleware.UserIDFromContext(c), h.Now())
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			respond.Error(c, http.StatusNotFound, "not_found", "no check-in for today", nil)
			return
		}
		respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to load check-in", nil)
		return
	}
	respond.OK(c, current)
}
