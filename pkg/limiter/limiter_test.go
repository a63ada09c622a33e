package limiter

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRouter(t *testing.T, rps, burst int, trustedProxies ...string) *gin.Engine {
	t.Helper()

	gin.SetMode(gin.TestMode)
	r := gin.New()
	require.NoError(t, r.SetTrustedProxies(trustedProxies))
	r.Use(Limit(rps, burst, time.Minute))
	r.GET("/", func(c *gin.Context) { c.Status(http.StatusOK) })

	return r
}

func doRequest(r http.Handler, remoteAddr string, forwardedFor ...string) int {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = remoteAddr
	for _, v := range forwardedFor {
		req.Header.Add("X-Forwarded-For", v)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	return w.Code
}

func TestLimit(t *testing.T) {
	r := newTestRouter(t, 1, 2)

	assert.Equal(t, http.StatusOK, doRequest(r, "10.0.0.1:1000"))
	assert.Equal(t, http.StatusOK, doRequest(r, "10.0.0.1:1001"))
	assert.Equal(t, http.StatusTooManyRequests, doRequest(r, "10.0.0.1:1002"))

	assert.Equal(t, http.StatusOK, doRequest(r, "10.0.0.2:1000"))
}

func TestLimit_IgnoresUntrustedForwardedFor(t *testing.T) {
	r := newTestRouter(t, 1, 1)

	assert.Equal(t, http.StatusOK, doRequest(r, "10.0.0.1:1000", "203.0.113.1"))
	assert.Equal(t, http.StatusTooManyRequests, doRequest(r, "10.0.0.1:1001", "203.0.113.2"))
}

func TestLimit_TrustedProxy(t *testing.T) {
	r := newTestRouter(t, 1, 1, "10.0.0.0/8")

	assert.Equal(t, http.StatusOK, doRequest(r, "10.0.0.1:1000", "203.0.113.1"))
	assert.Equal(t, http.StatusOK, doRequest(r, "10.0.0.1:1001", "203.0.113.2"))
	assert.Equal(t, http.StatusTooManyRequests, doRequest(r, "10.0.0.1:1002", "203.0.113.1"))
}

func TestRateLimiter_Evict(t *testing.T) {
	l := newRateLimiter(1, 1, time.Minute)
	l.getVisitor("10.0.0.1")

	l.evict(time.Now())
	assert.Len(t, l.visitors, 1)

	l.evict(time.Now().Add(2 * time.Minute))
	assert.Empty(t, l.visitors)
}
