package apiHttp

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/vibe-gaming/publisher/internal/config"
	"github.com/vibe-gaming/publisher/internal/repository/repotest"
	"github.com/vibe-gaming/publisher/internal/service"
	"github.com/vibe-gaming/publisher/pkg/auth"
	"github.com/vibe-gaming/publisher/pkg/hash"
	"github.com/vibe-gaming/publisher/pkg/otp"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRouter(t *testing.T, trustedProxies ...string) *gin.Engine {
	t.Helper()

	cfg := &config.Config{
		HttpServer: config.HttpServer{TrustedProxies: trustedProxies},
		Limiter:    config.Limiter{RPS: 1000, Burst: 1000, TTL: time.Minute},
		Throttle:   config.Throttle{Limit: 5, Window: 10 * time.Second},
		Auth: config.AuthConfig{
			JWT: config.JWTConfig{
				AccessTokenTTL:    time.Minute,
				RefreshTokenTTL:   time.Hour,
				AccessSigningKey:  "access-key",
				RefreshSigningKey: "refresh-key",
			},
			Recovery:               config.RecoveryConfig{CodeTTL: time.Hour, SigningKey: "recovery-key"},
			ConfirmationCodeTTL:    time.Hour,
			ConfirmationCodeLength: 32,
		},
		Cookie: config.CookieConfig{Name: "refreshToken", Path: "/api/v1"},
		Admin:  config.AdminConfig{Login: "admin", Password: "qwerty"},
	}

	tokens, err := auth.NewManager(cfg.Auth.JWT, cfg.Auth.Recovery)
	require.NoError(t, err)

	services := service.NewServices(service.Deps{
		Config:       cfg,
		Hasher:       hash.NewBcryptHasher(4),
		TokenManager: tokens,
		OtpGenerator: otp.NewGOTPGenerator(),
		Repos:        repotest.NewRepositories(),
	})

	router, err := NewHandlers(services, cfg).Init(cfg)
	require.NoError(t, err)

	return router
}

func login(router http.Handler, remoteAddr string, forwardedFor string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/login",
		strings.NewReader(`{"loginOrEmail":"nobody","password":"password1"}`))
	req.RemoteAddr = remoteAddr
	req.Header.Set("Content-Type", "application/json")
	if forwardedFor != "" {
		req.Header.Set("X-Forwarded-For", forwardedFor)
		req.Header.Set("X-Real-IP", forwardedFor)
	}

	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	return w
}

func TestLoginThrottleIgnoresForwardedHeaders(t *testing.T) {
	router := newTestRouter(t, "")

	for i := 1; i <= 5; i++ {
		w := login(router, "192.0.2.10:4000", fmt.Sprintf("10.0.0.%d", i))
		require.Equal(t, http.StatusUnauthorized, w.Code, "attempt %d", i)
	}

	w := login(router, "192.0.2.10:4000", "10.0.0.6")
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.Equal(t, "10", w.Header().Get("Retry-After"))
}

func TestLoginThrottleBehindTrustedProxy(t *testing.T) {
	router := newTestRouter(t, "192.0.2.0/24")

	for i := 1; i <= 5; i++ {
		w := login(router, "192.0.2.1:4000", "203.0.113.7")
		require.Equal(t, http.StatusUnauthorized, w.Code, "attempt %d", i)
	}

	assert.Equal(t, http.StatusTooManyRequests, login(router, "192.0.2.1:4000", "203.0.113.7").Code)
	assert.Equal(t, http.StatusUnauthorized, login(router, "192.0.2.1:4000", "203.0.113.8").Code, "another client behind the proxy")
}

func TestInitRejectsBadTrustedProxy(t *testing.T) {
	cfg := &config.Config{HttpServer: config.HttpServer{TrustedProxies: []string{"not-an-ip"}}}

	_, err := NewHandlers(&service.Services{}, cfg).Init(cfg)
	assert.Error(t, err)
}

func TestTrustedProxies(t *testing.T) {
	assert.Nil(t, trustedProxies(nil))
	assert.Nil(t, trustedProxies([]string{"", " "}))
	assert.Equal(t, []string{"10.0.0.1", "192.0.2.0/24"}, trustedProxies([]string{" 10.0.0.1", "", "192.0.2.0/24"}))
}
