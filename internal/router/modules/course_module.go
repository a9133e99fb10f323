package modules

import (
	"github.com/gin-gonic/gin"

	"github.com/oksasatya/bootcamp-directory/internal/domain/entity"
	"github.com/oksasatya/bootcamp-directory/internal/domain/query"
	handlers "github.com/oksasatya/bootcamp-directory/internal/interface/http"
	"github.com/oksasatya/bootcamp-directory/internal/interface/middleware"
)

type CourseModule struct {
	Handler *handlers.CourseHandler
	Lister  middleware.Lister[entity.Course]
	Protect gin.HandlerFunc
}

func NewCourseModule(h *handlers.CourseHandler, lister middleware.Lister[entity.Course], protect gin.HandlerFunc) *CourseModule {
	return &CourseModule{Handler: h, Lister: lister, Protect: protect}
}

func (m *CourseModule) Register(rg *gin.RouterGroup) {
	c := rg.Group("/courses")
	c.GET("", middleware.AdvancedResults(m.Lister, query.PopulateBootcamp))
	c.GET("/:id", m.Handler.Get)

	w := c.Group("", m.Protect, middleware.Authorize(entity.RolePublisher, entity.RoleAdmin))
	{
		w.POST("", m.Handler.Create)
		w.PUT("/:id", m.Handler.Update)
		w.DELETE("/:id", m.Handler.Delete)
	}
}
