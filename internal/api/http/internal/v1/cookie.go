package v1

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

func (h *Handler) setRefreshCookie(c *gin.Context, token string, expiresAt time.Time) {
	maxAge := int(time.Until(expiresAt).Seconds())
	if maxAge < 1 {
		maxAge = 1
	}

	c.SetSameSite(http.SameSiteStrictMode)
	c.SetCookie(h.config.Cookie.Name, token, maxAge, h.config.Cookie.Path, h.config.Cookie.Domain, h.config.Cookie.Secure, true)
}

func (h *Handler) clearRefreshCookie(c *gin.Context) {
	c.SetSameSite(http.SameSiteStrictMode)
	c.SetCookie(h.config.Cookie.Name, "", -1, h.config.Cookie.Path, h.config.Cookie.Domain, h.config.Cookie.Secure, true)
}
