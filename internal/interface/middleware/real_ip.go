package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"
)

const CtxRealIPKey = "real_ip"

// TrustProxies limits which peers may name the client IP. X-Forwarded-For is
// honoured only from proxies (IPs or CIDRs); an empty list trusts none.
// platform selects a CDN header read unconditionally: "cloudflare", "google",
// or a literal header name.
func TrustProxies(r *gin.Engine, proxies []string, platform string) error {
	switch strings.ToLower(strings.TrimSpace(platform)) {
	case "":
		r.TrustedPlatform = ""
	case "cloudflare":
		r.TrustedPlatform = gin.PlatformCloudflare
	case "google":
		r.TrustedPlatform = gin.PlatformGoogleAppEngine
	default:
		r.TrustedPlatform = platform
	}
	return r.SetTrustedProxies(proxies)
}

// RealIP stores the client IP under CtxRealIPKey, as resolved by gin from the
// engine's trusted platform and proxies.
func RealIP() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set(CtxRealIPKey, c.ClientIP())
		c.Next()
	}
}

// ipFromCtx extracts the client IP from Gin context, falling back to "unknown"
func ipFromCtx(c *gin.Context) string {
	if ip := c.GetString(CtxRealIPKey); ip != "" {
		return ip
	}
	if ip := c.ClientIP(); ip != "" {
		return ip
	}
	return "unknown"
}
