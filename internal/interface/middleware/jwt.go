package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/oksasatya/bootcamp-directory/pkg/helpers"
)

// TokenFromRequest reads the identity token from "Authorization: Bearer"
// and falls back to the token cookie.
func TokenFromRequest(c *gin.Context) string {
	if h := c.GetHeader("Authorization"); h != "" {
		scheme, token, ok := strings.Cut(h, " ")
		if ok && strings.EqualFold(scheme, "Bearer") {
			if token = strings.TrimSpace(token); token != "" {
				return token
			}
		}
	}
	if token, err := c.Cookie(helpers.TokenCookie); err == nil && token != "none" {
		return token
	}
	return ""
}
