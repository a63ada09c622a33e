package v1

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/vibe-gaming/publisher/internal/config"
	"github.com/vibe-gaming/publisher/internal/repository/repotest"
	"github.com/vibe-gaming/publisher/internal/service"
	"github.com/vibe-gaming/publisher/pkg/auth"
	"github.com/vibe-gaming/publisher/pkg/hash"
	"github.com/vibe-gaming/publisher/pkg/otp"
	"github.com/vibe-gaming/publisher/pkg/validator"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
)

const (
	testAdminLogin    = "admin"
	testAdminPassword = "qwerty"
	testClientAddr    = "192.0.2.10:4000"
)

type testServer struct {
	router   *gin.Engine
	services *service.Services
	tokens   *auth.Manager
	config   *config.Config
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()

	cfg := &config.Config{
		Throttle: config.Throttle{Limit: 5, Window: 10 * time.Second},
		Auth: config.AuthConfig{
			JWT: config.JWTConfig{
				AccessTokenTTL:    10 * time.Minute,
				RefreshTokenTTL:   20 * time.Minute,
				AccessSigningKey:  "access-key",
				RefreshSigningKey: "refresh-key",
			},
			Recovery:               config.RecoveryConfig{CodeTTL: time.Hour, SigningKey: "recovery-key"},
			ConfirmationCodeTTL:    time.Hour,
			ConfirmationCodeLength: 32,
		},
		Cookie:  config.CookieConfig{Name: "refreshToken", Path: "/api/v1", Secure: true},
		Admin:   config.AdminConfig{Login: testAdminLogin, Password: testAdminPassword},
		Testing: config.TestingConfig{Enabled: true},
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

	s := &testServer{
		services: services,
		tokens:   tokens,
		config:   cfg,
	}
	s.router = newRouter(s)

	return s
}

func newRouter(s *testServer) *gin.Engine {
	gin.SetMode(gin.TestMode)
	validator.RegisterGinValidator()

	router := gin.New()
	_ = router.SetTrustedProxies(nil)
	NewHandler(s.services, s.config).Init(router.Group("/api"))

	return router
}

type request struct {
	method string
	path   string
	body   interface{}
	cookie *http.Cookie
	bearer string
	admin  bool

	userAgent    string
	forwardedFor string
}

func (s *testServer) do(t *testing.T, r request) *httptest.ResponseRecorder {
	t.Helper()

	return s.doOn(t, s.router, r)
}

func (s *testServer) doOn(t *testing.T, router *gin.Engine, r request) *httptest.ResponseRecorder {
	t.Helper()

	var body bytes.Buffer
	if r.body != nil {
		require.NoError(t, json.NewEncoder(&body).Encode(r.body))
	}

	req := httptest.NewRequest(r.method, r.path, &body)
	req.RemoteAddr = testClientAddr
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", "test-agent")
	if r.userAgent != "" {
		req.Header.Set("User-Agent", r.userAgent)
	}
	if r.forwardedFor != "" {
		req.Header.Set("X-Forwarded-For", r.forwardedFor)
	}
	if r.cookie != nil {
		req.AddCookie(r.cookie)
	}
	if r.bearer != "" {
		req.Header.Set(authorizationHeader, "Bearer "+r.bearer)
	}
	if r.admin {
		req.SetBasicAuth(testAdminLogin, testAdminPassword)
	}

	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	return w
}

func (s *testServer) register(t *testing.T, login, email, password string) {
	t.Helper()

	w := s.do(t, request{
		method: http.MethodPost,
		path:   "/api/v1/auth/registration",
		body:   map[string]string{"login": login, "email": email, "password": password},
	})
	require.Equal(t, http.StatusNoContent, w.Code, w.Body.String())
}

// login returns the access token and the refresh cookie.
func (s *testServer) login(t *testing.T, loginOrEmail, password string) (string, *http.Cookie) {
	t.Helper()

	w := s.do(t, request{
		method: http.MethodPost,
		path:   "/api/v1/auth/login",
		body:   map[string]string{"loginOrEmail": loginOrEmail, "password": password},
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	return decodeAccessToken(t, w), refreshCookie(t, w)
}

func decodeAccessToken(t *testing.T, w *httptest.ResponseRecorder) string {
	t.Helper()

	var resp accessTokenResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.NotEmpty(t, resp.AccessToken)

	return resp.AccessToken
}

func refreshCookie(t *testing.T, w *httptest.ResponseRecorder) *http.Cookie {
	t.Helper()

	for _, c := range w.Result().Cookies() {
		if c.Name == "refreshToken" {
			return c
		}
	}
	t.Fatalf("refresh cookie not set")

	return nil
}
