package todayplan

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/davenowercise/nowercise-app-sub004/internal/decision"
	"github.com/davenowercise/nowercise-app-sub004/internal/shared/server/middleware"
	"github.com/davenowercise/nowercise-app-sub004/internal/shared/server/respond"
)

type Handler struct {
	Svc *Service
	Now func() time.Time
}

func NewHandler(svc *Service) *Handler {
	return &Handler{Svc: svc, Now: time.Now}
}

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/today/plan", h.plan)
	rg.GET("/today/screen", h.screen)
}

func (h *Handler) plan(c *gin.Context) {
	base, err := ParseBase(c.Query("base"))
	if err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", err.Error(), map[string]any{
			"allowed": []decision.Variant{decision.VariantReset, decision.VariantEasier, decision.VariantMain, decision.VariantBuild},
		})
		return
	}

	res, err := h.Svc.Today(c.Request.Context(), middleware.UserIDFromContext(c), base, h.Now())
	if res.Screen != "" {
		c.Set(middleware.AdaptiveScreenKey, string(res.Screen))
	}
	if err != nil {
		details := map[string]any{"screen": res.Screen}
		switch {
		case errors.Is(err, ErrClearanceRequired):
			respond.Error(c, http.StatusConflict, "medical_clearance_required", "complete health screening before training", details)
		case errors.Is(err, ErrCheckInRequired):
			respond.Error(c, http.StatusConflict, "checkin_required", "submit today's check-in first", details)
		default:
			respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to build today's plan", nil)
		}
		return
	}

	c.Set(middleware.SafetyStatusKey, string(res.Plan.SafetyStatus))
	c.Set(middleware.RecommendedVariantKey, string(res.Plan.RecommendedVariant))
	respond.OK(c, res)
}

func (h *Handler) screen(c *gin.Context) {
	screen, err := h.Svc.Screen(c.Request.Context(), middleware.UserIDFromContext(c), h.Now())
	if err != nil {
		respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to resolve screen", nil)
		return
	}
	c.Set(middleware.AdaptiveScreenKey, string(screen))
	respond.OK(c, gin.H{"screen": screen})
}
