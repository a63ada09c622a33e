package v1

import (
	"net/http"
	"time"

	"github.com/vibe-gaming/publisher/internal/service"

	"github.com/gin-gonic/gin"
)

func (h *Handler) initTestingRoutes(api *gin.RouterGroup) {
	testing := api.Group("/testing", h.adminAuthMiddleware())

	testing.DELETE("/all-data", h.clearAllData)
	testing.PUT("/settings", h.updateSettings)
}

type settingsInput struct {
	AccessTokenTTLSeconds  int `json:"accessTokenTtlSeconds" binding:"min=0"`
	RefreshTokenTTLSeconds int `json:"refreshTokenTtlSeconds" binding:"min=0"`
	AttemptLimit           int `json:"attemptLimit" binding:"min=0"`
	AttemptWindowSeconds   int `json:"attemptWindowSeconds" binding:"min=0"`
}

// @Summary Clear all data
// @Tags Testing
// @ModuleID clearAllData
// @Success 204
// @Failure 401
// @Failure 500
// @Security AdminAuth
// @Router /testing/all-data [delete]
func (h *Handler) clearAllData(c *gin.Context) {
	if err := h.services.Testing.ClearAll(c.Request.Context()); err != nil {
		internalErrorResponse(c, "clear all data failed", err)
		return
	}

	c.Status(http.StatusNoContent)
}

// @Summary Update settings
// @Tags Testing
// @Description Overrides token lifetimes and the attempt throttle; zero values are left unchanged
// @ModuleID updateSettings
// @Accept  json
// @Param input body settingsInput true "settings"
// @Success 204
// @Failure 400 {object} ValidationErrorStruct
// @Failure 401
// @Security AdminAuth
// @Router /testing/settings [put]
func (h *Handler) updateSettings(c *gin.Context) {
	var input settingsInput
	if err := c.ShouldBindJSON(&input); err != nil {
		validationErrorResponse(c, err)
		return
	}

	h.services.Testing.ApplySettings(service.Settings{
		AccessTokenTTL:  time.Duration(input.AccessTokenTTLSeconds) * time.Second,
		RefreshTokenTTL: time.Duration(input.RefreshTokenTTLSeconds) * time.Second,
		AttemptLimit:    input.AttemptLimit,
		AttemptWindow:   time.Duration(input.AttemptWindowSeconds) * time.Second,
	})

	c.Status(http.StatusNoContent)
}
