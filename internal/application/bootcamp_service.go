package application

import (
	"bytes"
	"context"
	"errors"
	"io"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/bootcamp-directory/internal/domain/entity"
	"github.com/oksasatya/bootcamp-directory/internal/domain/query"
	repo "github.com/oksasatya/bootcamp-directory/internal/domain/repository"
	"github.com/oksasatya/bootcamp-directory/pkg/apperror"
)

// EarthRadiusMiles converts a distance in miles to an angular radius.
const EarthRadiusMiles = 3963.0

// sniffLen is how much of an upload is read to detect its type.
const sniffLen = 3072

type BootcampService struct {
	Bootcamps     repo.BootcampRepository
	Geocoder      Geocoder
	Photos        PhotoStore
	Search        BootcampSearcher // nil disables indexing and search
	MaxPhotoBytes int64
	Logger        *logrus.Logger
}

func NewBootcampService(bootcamps repo.BootcampRepository, geocoder Geocoder, photos PhotoStore, search BootcampSearcher, maxPhotoBytes int64, logger *logrus.Logger) *BootcampService {
	return &BootcampService{
		Bootcamps:     bootcamps,
		Geocoder:      geocoder,
		Photos:        photos,
		Search:        search,
		MaxPhotoBytes: maxPhotoBytes,
		Logger:        logger,
	}
}

func (s *BootcampService) List(ctx context.Context, q query.Query) ([]entity.Bootcamp, error) {
	return s.Bootcamps.List(ctx, q)
}

func (s *BootcampService) Count(ctx context.Context, q query.Query) (int, error) {
	return s.Bootcamps.Count(ctx, q)
}

func (s *BootcampService) Get(ctx context.Context, id string) (*entity.Bootcamp, error) {
	b, err := s.Bootcamps.GetByID(ctx, id)
	if err != nil {
		return nil, notFound(err, "Bootcamp not found with id of %s", id)
	}
	return b, nil
}

// Create publishes a bootcamp owned by actor. Non-admins may own only one.
func (s *BootcampService) Create(ctx context.Context, actor *entity.User, in entity.NewBootcamp) (*entity.Bootcamp, error) {
	if actor.Role != entity.RoleAdmin {
		n, err := s.Bootcamps.CountByOwner(ctx, actor.ID)
		if err != nil {
			return nil, err
		}
		if n > 0 {
			return nil, apperror.Conflict("The user with ID %s has already published a bootcamp", actor.ID)
		}
	}

	b := in.Bootcamp(actor.ID)
	if err := b.Validate(); err != nil {
		return nil, err
	}
	loc, err := s.geocode(ctx, in.Address)
	if err != nil {
		return nil, err
	}
	b.Location = loc

	if err := s.Bootcamps.Create(ctx, b); err != nil {
		return nil, err
	}
	s.index(ctx, b)
	return b, nil
}

// Update applies a partial update. A new address is geocoded again.
func (s *BootcampService) Update(ctx context.Context, actor *entity.User, id string, in entity.BootcampUp) (*entity.Bootcamp, error) {
	b, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if !entity.CanModify(actor, b.UserID) {
		return nil, apperror.Forbidden("User %s is not authorized to update this bootcamp", actor.ID)
	}

	in.Apply(b)
	if err := b.Validate(); err != nil {
		return nil, err
	}
	if in.Address != nil {
		loc, err := s.geocode(ctx, *in.Address)
		if err != nil {
			return nil, err
		}
		b.Location = loc
	}

	if err := s.Bootcamps.Update(ctx, b); err != nil {
		return nil, notFound(err, "Bootcamp not found with id of %s", id)
	}
	s.index(ctx, b)
	return b, nil
}

// Delete removes the bootcamp and, by cascade, its courses.
func (s *BootcampService) Delete(ctx context.Context, actor *entity.User, id string) error {
	b, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	if !entity.CanModify(actor, b.UserID) {
		return apperror.Forbidden("User %s is not authorized to delete this bootcamp", actor.ID)
	}
	if err := s.Bootcamps.Delete(ctx, id); err != nil {
		return notFound(err, "Bootcamp not found with id of %s", id)
	}
	if s.Search != nil {
		if err := s.Search.Remove(ctx, id); err != nil {
			s.Logger.WithError(err).WithField("bootcamp_id", id).Warn("search remove failed")
		}
	}
	return nil
}

// WithinRadius returns the bootcamps within distance miles of zipcode.
func (s *BootcampService) WithinRadius(ctx context.Context, zipcode string, distance float64) ([]entity.Bootcamp, error) {
	if distance < 0 {
		return nil, apperror.Validation("distance must be a non-negative number")
	}
	loc, err := s.geocode(ctx, zipcode)
	if err != nil {
		return nil, err
	}
	return s.Bootcamps.WithinRadius(ctx, loc.Longitude(), loc.Latitude(), distance/EarthRadiusMiles)
}

// PhotoUpload is an uploaded file as received by the transport.
type PhotoUpload struct {
	Filename string
	Size     int64
	Body     io.Reader
}

// UploadPhoto checks the upload is an image within the size limit, stores it
// as photo_<id><ext> with ext taken from the detected type and records the
// reference on the bootcamp.
func (s *BootcampService) UploadPhoto(ctx context.Context, actor *entity.User, id string, up *PhotoUpload) (string, error) {
	b, err := s.Get(ctx, id)
	if err != nil {
		return "", err
	}
	if !entity.CanModify(actor, b.UserID) {
		return "", apperror.Forbidden("User %s is not authorized to update this bootcamp", actor.ID)
	}
	if up == nil || up.Body == nil {
		return "", apperror.Validation("Please upload a file")
	}
	if s.MaxPhotoBytes > 0 && up.Size > s.MaxPhotoBytes {
		return "", apperror.Validation("Please upload an image less than %d", s.MaxPhotoBytes)
	}

	head := make([]byte, sniffLen)
	n, err := io.ReadFull(up.Body, head)
	if err != nil && !errors.Is(err, io.ErrUnexpectedEOF) && !errors.Is(err, io.EOF) {
		return "", apperror.Validation("Please upload a file")
	}
	head = head[:n]
	mt := mimetype.Detect(head)
	// SVG is markup and can carry script, so only raster images are accepted.
	if !strings.HasPrefix(mt.String(), "image/") || mt.Is("image/svg+xml") || mt.Extension() == "" {
		return "", apperror.Validation("Please upload an image file")
	}

	// The stored extension follows the detected content, never the client's filename.
	name := "photo_" + b.ID + mt.Extension()
	ref, err := s.Photos.Save(ctx, name, mt.String(), io.MultiReader(bytes.NewReader(head), up.Body))
	if err != nil {
		return "", apperror.Upstream(err, "Problem with file upload")
	}

	b.Photo = ref
	if err := s.Bootcamps.Update(ctx, b); err != nil {
		return "", err
	}
	return ref, nil
}

// SearchText runs a full-text query; it is empty when search is disabled.
func (s *BootcampService) SearchText(ctx context.Context, q string, size int) ([]entity.BootcampHit, error) {
	q = strings.TrimSpace(q)
	if s.Search == nil || q == "" {
		return []entity.BootcampHit{}, nil
	}
	hits, err := s.Search.Search(ctx, q, size)
	if err != nil {
		return nil, apperror.Upstream(err, "Search is unavailable")
	}
	return hits, nil
}

func (s *BootcampService) geocode(ctx context.Context, address string) (entity.Location, error) {
	loc, err := s.Geocoder.Geocode(ctx, address)
	if err != nil {
		if errors.Is(err, ErrNoGeocodeMatch) {
			return entity.Location{}, apperror.Validation("Could not locate address %s", address)
		}
		return entity.Location{}, apperror.Upstream(err, "Geocoding failed")
	}
	return loc, nil
}

// index mirrors b into the search index; failures only cost search freshness.
func (s *BootcampService) index(ctx context.Context, b *entity.Bootcamp) {
	if s.Search == nil {
		return
	}
	if err := s.Search.Put(ctx, b); err != nil {
		s.Logger.WithError(err).WithField("bootcamp_id", b.ID).Warn("search index failed")
	}
}
