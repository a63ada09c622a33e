package v1

import (
	"errors"
	"math"
	"net/http"
	"strconv"
	"strings"

	"github.com/vibe-gaming/publisher/internal/domain"
	"github.com/vibe-gaming/publisher/internal/service"
	"github.com/vibe-gaming/publisher/pkg/auth"
	"github.com/vibe-gaming/publisher/pkg/logger"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const (
	authorizationHeader = "Authorization"
	retryAfterHeader    = "Retry-After"

	userCtx    = "user"
	sessionCtx = "refreshSession"
)

// userIdentityMiddleware authenticates the bearer access token.
func (h *Handler) userIdentityMiddleware(c *gin.Context) {
	token, err := parseAuthHeader(c)
	if err != nil {
		c.AbortWithStatus(http.StatusUnauthorized)
		return
	}

	user, err := h.services.Auth.Authenticate(c.Request.Context(), token)
	if err != nil {
		if !errors.Is(err, service.ErrUnauthorized) {
			logger.Error("authenticate access token failed", zap.Error(err))
			c.AbortWithStatus(http.StatusInternalServerError)
			return
		}
		c.AbortWithStatus(http.StatusUnauthorized)
		return
	}

	c.Set(userCtx, user)
	c.Next()
}

// refreshSessionMiddleware resolves the acting device from the refresh cookie.
func (h *Handler) refreshSessionMiddleware(c *gin.Context) {
	token, err := c.Cookie(h.config.Cookie.Name)
	if err != nil {
		c.AbortWithStatus(http.StatusUnauthorized)
		return
	}

	session, err := h.services.Auth.CurrentSession(c.Request.Context(), token)
	if err != nil {
		if !errors.Is(err, service.ErrUnauthorized) {
			logger.Error("resolve refresh session failed", zap.Error(err))
			c.AbortWithStatus(http.StatusInternalServerError)
			return
		}
		c.AbortWithStatus(http.StatusUnauthorized)
		return
	}

	c.Set(sessionCtx, session)
	c.Next()
}

// attemptThrottleMiddleware counts requests per client ip and route template.
func (h *Handler) attemptThrottleMiddleware(c *gin.Context) {
	allowed, retryAfter, err := h.services.Throttle.Allow(c.Request.Context(), c.ClientIP(), c.FullPath())
	if err != nil {
		logger.Error("attempt throttle failed", zap.Error(err), zap.String("path", c.FullPath()))
		c.AbortWithStatus(http.StatusInternalServerError)
		return
	}

	if !allowed {
		c.Header(retryAfterHeader, strconv.Itoa(int(math.Ceil(retryAfter.Seconds()))))
		c.AbortWithStatus(http.StatusTooManyRequests)
		return
	}

	c.Next()
}

func (h *Handler) adminAuthMiddleware() gin.HandlerFunc {
	return gin.BasicAuth(gin.Accounts{
		h.config.Admin.Login: h.config.Admin.Password,
	})
}

func parseAuthHeader(c *gin.Context) (string, error) {
	header := c.GetHeader(authorizationHeader)
	if header == "" {
		return "", errors.New("empty auth header")
	}

	headerParts := strings.Split(header, " ")
	if len(headerParts) != 2 || headerParts[0] != "Bearer" {
		return "", errors.New("invalid auth header")
	}

	if len(headerParts[1]) == 0 {
		return "", errors.New("token is empty")
	}

	return headerParts[1], nil
}

func getUser(c *gin.Context) (*domain.User, error) {
	v, ok := c.Get(userCtx)
	if !ok {
		return nil, errors.New("user not found in context")
	}

	user, ok := v.(*domain.User)
	if !ok {
		return nil, errors.New("user is of invalid type")
	}

	return user, nil
}

func getRefreshSession(c *gin.Context) (*auth.RefreshSession, error) {
	v, ok := c.Get(sessionCtx)
	if !ok {
		return nil, errors.New("refresh session not found in context")
	}

	session, ok := v.(*auth.RefreshSession)
	if !ok {
		return nil, errors.New("refresh session is of invalid type")
	}

	return session, nil
}
