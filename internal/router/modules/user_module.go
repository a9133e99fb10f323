package modules

import (
	"github.com/gin-gonic/gin"

	"github.com/oksasatya/bootcamp-directory/internal/domain/entity"
	handlers "github.com/oksasatya/bootcamp-directory/internal/interface/http"
	"github.com/oksasatya/bootcamp-directory/internal/interface/middleware"
)

// UserModule mounts the admin users API; every route needs the admin role.
type UserModule struct {
	Handler *handlers.UserHandler
	Lister  middleware.Lister[entity.User]
	Protect gin.HandlerFunc
}

func NewUserModule(h *handlers.UserHandler, lister middleware.Lister[entity.User], protect gin.HandlerFunc) *UserModule {
	return &UserModule{Handler: h, Lister: lister, Protect: protect}
}

func (m *UserModule) Register(rg *gin.RouterGroup) {
	u := rg.Group("/users", m.Protect, middleware.Authorize(entity.RoleAdmin))
	{
		u.GET("", middleware.AdvancedResults(m.Lister, ""))
		u.POST("", m.Handler.Create)
		u.GET("/:id", m.Handler.Get)
		u.PUT("/:id", m.Handler.Update)
		u.DELETE("/:id", m.Handler.Delete)
	}
}
