package middleware

import (
	"context"
	"slices"

	"github.com/gin-gonic/gin"

	"github.com/oksasatya/bootcamp-directory/internal/domain/entity"
	"github.com/oksasatya/bootcamp-directory/pkg/apperror"
)

const (
	CtxUserKey   = "user"
	CtxUserIDKey = "userID"
)

// UserResolver verifies a token and loads the user it belongs to.
type UserResolver interface {
	ResolveUser(ctx context.Context, token string) (*entity.User, error)
}

// Protect rejects requests without a valid token and stores the user in the
// Gin context under CtxUserKey.
func Protect(resolver UserResolver) gin.HandlerFunc {
	return func(c *gin.Context) {
		u, err := resolver.ResolveUser(c.Request.Context(), TokenFromRequest(c))
		if err != nil {
			_ = c.Error(err)
			c.Abort()
			return
		}
		c.Set(CtxUserKey, u)
		c.Set(CtxUserIDKey, u.ID)
		c.Next()
	}
}

// Authorize admits only users holding one of roles. It must run after Protect.
func Authorize(roles ...entity.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		u := CurrentUser(c)
		if u == nil {
			_ = c.Error(apperror.Unauthenticated("Not authorized to access this route"))
			c.Abort()
			return
		}
		if !slices.Contains(roles, u.Role) {
			_ = c.Error(apperror.Forbidden("User role %s is not authorized to access this route", u.Role))
			c.Abort()
			return
		}
		c.Next()
	}
}

// CurrentUser returns the user set by Protect, or nil.
func CurrentUser(c *gin.Context) *entity.User {
	v, ok := c.Get(CtxUserKey)
	if !ok {
		return nil
	}
	u, _ := v.(*entity.User)
	return u
}
