package router

import (
	"github.com/oksasatya/bootcamp-directory/internal/application"
	"github.com/oksasatya/bootcamp-directory/internal/container"
	handlers "github.com/oksasatya/bootcamp-directory/internal/interface/http"
	"github.com/oksasatya/bootcamp-directory/internal/interface/middleware"
	"github.com/oksasatya/bootcamp-directory/internal/router/modules"
)

// Services are the application services built from a container.
type Services struct {
	Auth      *application.AuthService
	Bootcamps *application.BootcampService
	Courses   *application.CourseService
	Users     *application.UserService
}

func buildServices(c *container.Container) Services {
	var maxPhoto int64
	appName := "DevCamper"
	if c.Config != nil {
		maxPhoto = c.Config.MaxFileUpload
		appName = c.Config.AppName
	}
	return Services{
		Auth:      application.NewAuthService(c.Users, c.JWT, c.Mail, c.Logger, appName),
		Bootcamps: application.NewBootcampService(c.Bootcamps, c.Geocoder, c.Photos, c.Search, maxPhoto, c.Logger),
		Courses:   application.NewCourseService(c.Courses, c.Bootcamps, c.Logger),
		Users:     application.NewUserService(c.Users, c.Logger),
	}
}

// InitModules builds services and handlers from c and adds every module to r.
// It is called once during startup.
func InitModules(r *Registry, c *container.Container) {
	svc := buildServices(c)
	protect := middleware.Protect(svc.Auth)
	limiter := c.RateLimiter()

	r.Add(modules.NewAuthModule(handlers.NewAuthHandler(svc.Auth, c.Cookies, c.Logger), protect, limiter))
	r.Add(modules.NewBootcampModule(
		handlers.NewBootcampHandler(svc.Bootcamps, c.Logger),
		handlers.NewCourseHandler(svc.Courses, c.Logger),
		svc.Bootcamps,
		protect,
	))
	r.Add(modules.NewCourseModule(handlers.NewCourseHandler(svc.Courses, c.Logger), svc.Courses, protect))
	r.Add(modules.NewUserModule(handlers.NewUserHandler(svc.Users, c.Logger), svc.Users, protect))

	if c.Config != nil && c.Config.DebugMetricsEnabled {
		r.Add(modules.NewDebugModule(limiter))
	}
	if c.Config != nil && c.Config.GCSBucket == "" && c.Config.FileUploadPath != "" {
		r.Engine.Static("/uploads", c.Config.FileUploadPath)
	}
}
