package v1

import (
	"github.com/vibe-gaming/publisher/internal/config"
	"github.com/vibe-gaming/publisher/internal/service"

	"github.com/gin-gonic/gin"
)

// @title Publisher API
// @version 1.0
// @description Authentication, device sessions and account management

// @BasePath /api/v1

// @securityDefinitions.basic AdminAuth

// @securityDefinitions.apikey UserAuth
// @in header
// @name Authorization

type Handler struct {
	services *service.Services
	config   *config.Config
}

func NewHandler(
	services *service.Services,
	config *config.Config,
) *Handler {
	return &Handler{
		services: services,
		config:   config,
	}
}

func (h *Handler) Init(api *gin.RouterGroup) {
	v1 := api.Group("v1")

	h.initAuthRoutes(v1)
	h.initSecurityRoutes(v1)
	h.initUsersRoutes(v1)

	if h.config.Testing.Enabled {
		h.initTestingRoutes(v1)
	}
}
