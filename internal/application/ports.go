package application

import (
	"context"
	"errors"
	"io"

	"github.com/oksasatya/bootcamp-directory/internal/domain/entity"
	repo "github.com/oksasatya/bootcamp-directory/internal/domain/repository"
	"github.com/oksasatya/bootcamp-directory/pkg/apperror"
)

// ErrNoGeocodeMatch is returned by a Geocoder that cannot place an address.
var ErrNoGeocodeMatch = errors.New("address could not be geocoded")

// Geocoder turns a free-form address or postal code into a point.
type Geocoder interface {
	Geocode(ctx context.Context, address string) (entity.Location, error)
}

// PhotoStore persists an uploaded file under name and returns the reference
// stored on the bootcamp.
type PhotoStore interface {
	Save(ctx context.Context, name, contentType string, r io.Reader) (string, error)
}

// BootcampSearcher mirrors bootcamps into a full-text index.
type BootcampSearcher interface {
	Put(ctx context.Context, b *entity.Bootcamp) error
	Remove(ctx context.Context, id string) error
	Search(ctx context.Context, q string, size int) ([]entity.BootcampHit, error)
}

// notFound turns repository.ErrNotFound into a NotFound error with msg.
func notFound(err error, format string, args ...any) error {
	if errors.Is(err, repo.ErrNotFound) {
		return apperror.NotFound(format, args...)
	}
	return err
}
