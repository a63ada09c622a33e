package apiHttp

import (
	"fmt"
	"strings"
	"time"

	ginzap "github.com/gin-contrib/zap"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	_ "github.com/vibe-gaming/publisher/docs"
	"github.com/vibe-gaming/publisher/pkg/limiter"
	"github.com/vibe-gaming/publisher/pkg/logger"
	"github.com/vibe-gaming/publisher/pkg/validator"

	internalV1 "github.com/vibe-gaming/publisher/internal/api/http/internal/v1"
	"github.com/vibe-gaming/publisher/internal/config"
	"github.com/vibe-gaming/publisher/internal/service"

	"github.com/gin-gonic/gin"
)

type Handler struct {
	services *service.Services
	config   *config.Config
}

func NewHandlers(
	services *service.Services,
	cfg *config.Config,
) *Handler {
	return &Handler{
		services: services,
		config:   cfg,
	}
}

func (h *Handler) Init(cfg *config.Config) (*gin.Engine, error) {
	gin.SetMode(gin.ReleaseMode)
	router := gin.New()

	// ClientIP keys both limiters, so forwarded headers count only from these peers.
	if err := router.SetTrustedProxies(trustedProxies(cfg.HttpServer.TrustedProxies)); err != nil {
		return nil, fmt.Errorf("set trusted proxies failed: %w", err)
	}

	validator.RegisterGinValidator()

	router.Use(
		ginzap.Ginzap(logger.Logger(), time.RFC3339, true),
		limiter.Limit(cfg.Limiter.RPS, cfg.Limiter.Burst, cfg.Limiter.TTL),
		corsMiddleware(cfg.HttpServer.CorsOrigins),
	)
	router.Use(ginzap.RecoveryWithZap(logger.Logger(), true))

	if cfg.HttpServer.SwaggerEnabled {
		router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.NewHandler(), ginSwagger.InstanceName("internal")))
	}

	h.initAPI(router)

	return router, nil
}

func trustedProxies(values []string) []string {
	var out []string
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}

	return out
}

func (h *Handler) initAPI(router *gin.Engine) {
	internalHandlersV1 := internalV1.NewHandler(h.services, h.config)
	api := router.Group("/api")
	internalHandlersV1.Init(api)
}
