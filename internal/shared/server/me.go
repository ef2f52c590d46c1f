package server

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/davenowercise/nowercise-app-sub004/internal/shared/server/middleware"
	"github.com/davenowercise/nowercise-app-sub004/internal/shared/server/respond"
	"github.com/davenowercise/nowercise-app-sub004/internal/shared/util"
)

type meResponse struct {
	UserID string `json:"userId"`
	Guest  bool   `json:"guest"`
	Email  string `json:"email,omitempty"`
	// AuditKey is the directory under audit/ that holds this user's plan
	// decisions, so support can locate them without the raw id.
	AuditKey string `json:"auditKey"`
}

func registerMeRoutes(rg *gin.RouterGroup) {
	rg.GET("/me", me)
}

func me(c *gin.Context) {
	userID := middleware.UserIDFromContext(c)
	if userID == "" {
		respond.Error(c, http.StatusUnauthorized, "unauthorized", "missing or invalid token", nil)
		return
	}
	respond.OK(c, meResponse{
		UserID:   userID,
		Guest:    middleware.IsGuest(c),
		Email:    middleware.UserEmailFromContext(c),
		AuditKey: util.HashUserKey(userID),
	})
}
