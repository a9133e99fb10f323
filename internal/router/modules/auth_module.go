package modules

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"

	handlers "github.com/oksasatya/bootcamp-directory/internal/interface/http"
	"github.com/oksasatya/bootcamp-directory/internal/interface/middleware"
)

// AuthModule mounts /auth. Public credential endpoints are rate limited per
// IP and path; rdb may be nil.
type AuthModule struct {
	Handler *handlers.AuthHandler
	Protect gin.HandlerFunc
	RDB     *redis.Client
}

func NewAuthModule(h *handlers.AuthHandler, protect gin.HandlerFunc, rdb *redis.Client) *AuthModule {
	return &AuthModule{Handler: h, Protect: protect, RDB: rdb}
}

func (m *AuthModule) Register(rg *gin.RouterGroup) {
	credsLimiter := middleware.RateLimit(m.RDB, 10, time.Minute, middleware.KeyByIPAndPath(), middleware.AllowPrivateIP())
	resetLimiter := middleware.RateLimit(m.RDB, 5, time.Minute, middleware.KeyByIPAndPath(), middleware.AllowPrivateIP())

	auth := rg.Group("/auth")
	auth.POST("/register", credsLimiter, m.Handler.Register)
	auth.POST("/login", credsLimiter, m.Handler.Login)
	auth.GET("/logout", m.Handler.Logout)
	auth.POST("/forgotpassword", resetLimiter, m.Handler.ForgotPassword)
	auth.PUT("/resetpassword/:token", resetLimiter, m.Handler.ResetPassword)

	protected := auth.Group("/", m.Protect)
	{
		protected.GET("/me", m.Handler.Me)
		protected.PUT("/updatedetails", m.Handler.UpdateDetails)
		protected.PUT("/updatepassword", m.Handler.UpdatePassword)
	}
}
