package repository

import (
	"context"
	"errors"

	"github.com/oksasatya/bootcamp-directory/internal/domain/entity"
	"github.com/oksasatya/bootcamp-directory/internal/domain/query"
)

// ErrNotFound is returned when an id or unique key matches nothing.
var ErrNotFound = errors.New("not found")

type BootcampRepository interface {
	Create(ctx context.Context, b *entity.Bootcamp) error
	GetByID(ctx context.Context, id string) (*entity.Bootcamp, error)
	CountByOwner(ctx context.Context, userID string) (int, error)
	Update(ctx context.Context, b *entity.Bootcamp) error
	Delete(ctx context.Context, id string) error
	List(ctx context.Context, q query.Query) ([]entity.Bootcamp, error)
	Count(ctx context.Context, q query.Query) (int, error)
	// WithinRadius returns bootcamps inside the spherical cap of the given
	// angular radius (radians) around lng/lat.
	WithinRadius(ctx context.Context, lng, lat, radius float64) ([]entity.Bootcamp, error)
	SetAverageCost(ctx context.Context, id string, cost float64) error
}

type CourseRepository interface {
	Create(ctx context.Context, c *entity.Course) error
	// GetByID populates the course's bootcamp summary.
	GetByID(ctx context.Context, id string) (*entity.Course, error)
	ListByBootcamp(ctx context.Context, bootcampID string) ([]entity.Course, error)
	Update(ctx context.Context, c *entity.Course) error
	Delete(ctx context.Context, id string) error
	List(ctx context.Context, q query.Query) ([]entity.Course, error)
	Count(ctx context.Context, q query.Query) (int, error)
	// Tuitions returns the tuition of every course under bootcampID.
	Tuitions(ctx context.Context, bootcampID string) ([]float64, error)
}
