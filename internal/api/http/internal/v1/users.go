package v1

import (
	"errors"
	"net/http"

	"github.com/vibe-gaming/publisher/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

func (h *Handler) initUsersRoutes(api *gin.RouterGroup) {
	users := api.Group("/users", h.adminAuthMiddleware())

	users.DELETE("/:id", h.deleteUser)
}

// @Summary Delete user
// @Tags Users
// @Description Soft deletes the user and terminates all of its device sessions
// @ModuleID deleteUser
// @Param id path string true "user id"
// @Success 204
// @Failure 401
// @Failure 404
// @Failure 500
// @Security AdminAuth
// @Router /users/{id} [delete]
func (h *Handler) deleteUser(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.AbortWithStatus(http.StatusNotFound)
		return
	}

	if err := h.services.Users.Delete(c.Request.Context(), id); err != nil {
		if errors.Is(err, service.ErrUserNotFound) {
			c.AbortWithStatus(http.StatusNotFound)
			return
		}
		internalErrorResponse(c, "delete user failed", err)
		return
	}

	c.Status(http.StatusNoContent)
}
