// Package container bundles the components built in main so the router can
// wire modules from them without package-level state.
package container

import (
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/bootcamp-directory/config"
	"github.com/oksasatya/bootcamp-directory/internal/application"
	"github.com/oksasatya/bootcamp-directory/internal/domain/repository"
	"github.com/oksasatya/bootcamp-directory/pkg/helpers"
	"github.com/oksasatya/bootcamp-directory/pkg/mailer"
)

type Container struct {
	Config  *config.Config
	Logger  *logrus.Logger
	Redis   *redis.Client // nil disables rate limiting
	JWT     *helpers.JWTManager
	Cookies *helpers.CookieManager

	Users     repository.UserRepository
	Bootcamps repository.BootcampRepository
	Courses   repository.CourseRepository

	Geocoder application.Geocoder
	Photos   application.PhotoStore
	Search   application.BootcampSearcher // nil disables search
	Mail     mailer.Sender
}

// RateLimiter returns the Redis client used for rate limiting, or nil when
// limiting is switched off.
func (c *Container) RateLimiter() *redis.Client {
	if c.Config != nil && !c.Config.RateLimitEnabled {
		return nil
	}
	return c.Redis
}
