package helpers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

// TokenCookie is the name of the cookie carrying the identity token.
const TokenCookie = "token"

type CookieManager struct {
	Domain string
	Secure bool
	TTL    time.Duration
}

func NewCookieManager(domain string, secure bool, ttl time.Duration) *CookieManager {
	return &CookieManager{Domain: domain, Secure: secure, TTL: ttl}
}

// SetToken stores token in an httpOnly cookie that lives for the configured TTL.
func (m *CookieManager) SetToken(c *gin.Context, token string) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(TokenCookie, token, int(m.TTL.Seconds()), "/", m.Domain, m.Secure, true)
}

// Clear overwrites the token with a placeholder that expires in ten seconds.
func (m *CookieManager) Clear(c *gin.Context) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(TokenCookie, "none", 10, "/", m.Domain, m.Secure, true)
}
