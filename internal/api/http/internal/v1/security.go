package v1

import (
	"errors"
	"net/http"
	"time"

	"github.com/vibe-gaming/publisher/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

func (h *Handler) initSecurityRoutes(api *gin.RouterGroup) {
	devices := api.Group("/security/devices", h.refreshSessionMiddleware)

	devices.GET("", h.getDevices)
	devices.DELETE("", h.terminateOtherDevices)
	devices.DELETE("/:deviceId", h.terminateDevice)
}

type deviceResponse struct {
	IP             string `json:"ip"`
	Title          string `json:"title"`
	LastActiveDate string `json:"lastActiveDate"`
	DeviceID       string `json:"deviceId"`
}

// @Summary Devices
// @Tags Security
// @Description Lists active device sessions of the current user
// @ModuleID getDevices
// @Produce  json
// @Success 200 {array} deviceResponse
// @Failure 401
// @Failure 500
// @Router /security/devices [get]
func (h *Handler) getDevices(c *gin.Context) {
	session, err := getRefreshSession(c)
	if err != nil {
		internalErrorResponse(c, "get refresh session from context failed", err)
		return
	}

	sessions, err := h.services.Sessions.List(c.Request.Context(), session.UserID)
	if err != nil {
		internalErrorResponse(c, "list devices failed", err)
		return
	}

	response := make([]deviceResponse, len(sessions))
	for i, s := range sessions {
		response[i] = deviceResponse{
			IP:             s.IP,
			Title:          s.DeviceName,
			LastActiveDate: s.IssuedAt.UTC().Format(time.RFC3339Nano),
			DeviceID:       s.DeviceID.String(),
		}
	}

	c.JSON(http.StatusOK, response)
}

// @Summary Terminate other devices
// @Tags Security
// @Description Terminates every session of the current user except the current device
// @ModuleID terminateOtherDevices
// @Success 204
// @Failure 401
// @Failure 500
// @Router /security/devices [delete]
func (h *Handler) terminateOtherDevices(c *gin.Context) {
	session, err := getRefreshSession(c)
	if err != nil {
		internalErrorResponse(c, "get refresh session from context failed", err)
		return
	}

	if err := h.services.Sessions.TerminateOthers(c.Request.Context(), session.UserID, session.DeviceID); err != nil {
		internalErrorResponse(c, "terminate other devices failed", err)
		return
	}

	c.Status(http.StatusNoContent)
}

// @Summary Terminate device
// @Tags Security
// @Description Terminates one device session owned by the current user
// @ModuleID terminateDevice
// @Param deviceId path string true "device id"
// @Success 204
// @Failure 401
// @Failure 403
// @Failure 404
// @Failure 500
// @Router /security/devices/{deviceId} [delete]
func (h *Handler) terminateDevice(c *gin.Context) {
	session, err := getRefreshSession(c)
	if err != nil {
		internalErrorResponse(c, "get refresh session from context failed", err)
		return
	}

	deviceID, err := uuid.Parse(c.Param("deviceId"))
	if err != nil {
		c.AbortWithStatus(http.StatusNotFound)
		return
	}

	if err := h.services.Sessions.TerminateByID(c.Request.Context(), session.UserID, deviceID); err != nil {
		switch {
		case errors.Is(err, service.ErrSessionNotFound):
			c.AbortWithStatus(http.StatusNotFound)
		case errors.Is(err, service.ErrForbidden):
			c.AbortWithStatus(http.StatusForbidden)
		default:
			internalErrorResponse(c, "terminate device failed", err)
		}
		return
	}

	c.Status(http.StatusNoContent)
}
