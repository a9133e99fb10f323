package modules

import (
	"github.com/gin-gonic/gin"

	"github.com/oksasatya/bootcamp-directory/internal/domain/entity"
	"github.com/oksasatya/bootcamp-directory/internal/domain/query"
	handlers "github.com/oksasatya/bootcamp-directory/internal/interface/http"
	"github.com/oksasatya/bootcamp-directory/internal/interface/middleware"
)

// BootcampModule mounts /bootcamps together with the nested course routes.
type BootcampModule struct {
	Handler *handlers.BootcampHandler
	Courses *handlers.CourseHandler
	Lister  middleware.Lister[entity.Bootcamp]
	Protect gin.HandlerFunc
}

func NewBootcampModule(h *handlers.BootcampHandler, courses *handlers.CourseHandler, lister middleware.Lister[entity.Bootcamp], protect gin.HandlerFunc) *BootcampModule {
	return &BootcampModule{Handler: h, Courses: courses, Lister: lister, Protect: protect}
}

func (m *BootcampModule) Register(rg *gin.RouterGroup) {
	publisher := []gin.HandlerFunc{m.Protect, middleware.Authorize(entity.RolePublisher, entity.RoleAdmin)}

	b := rg.Group("/bootcamps")
	b.GET("", middleware.AdvancedResults(m.Lister, query.PopulateCourses))
	b.GET("/search", m.Handler.Search)
	b.GET("/radius/:zipcode/:distance", m.Handler.WithinRadius)
	b.GET("/:id", m.Handler.Get)
	b.GET("/:id/courses", m.Courses.ListByBootcamp)

	w := b.Group("", publisher...)
	{
		w.POST("", m.Handler.Create)
		w.PUT("/:id", m.Handler.Update)
		w.DELETE("/:id", m.Handler.Delete)
		w.PUT("/:id/photo", m.Handler.UploadPhoto)
		w.POST("/:id/courses", m.Courses.Create)
	}
}
