package application

import (
	"context"

	"github.com/sirupsen/logrus"

	"github.com/oksasatya/bootcamp-directory/internal/domain/entity"
	"github.com/oksasatya/bootcamp-directory/internal/domain/query"
	repo "github.com/oksasatya/bootcamp-directory/internal/domain/repository"
	"github.com/oksasatya/bootcamp-directory/pkg/apperror"
)

// CourseService owns courses and keeps each bootcamp's averageCost in step
// with the tuitions of its courses.
type CourseService struct {
	Courses   repo.CourseRepository
	Bootcamps repo.BootcampRepository
	Logger    *logrus.Logger
}

func NewCourseService(courses repo.CourseRepository, bootcamps repo.BootcampRepository, logger *logrus.Logger) *CourseService {
	return &CourseService{Courses: courses, Bootcamps: bootcamps, Logger: logger}
}

func (s *CourseService) List(ctx context.Context, q query.Query) ([]entity.Course, error) {
	return s.Courses.List(ctx, q)
}

func (s *CourseService) Count(ctx context.Context, q query.Query) (int, error) {
	return s.Courses.Count(ctx, q)
}

func (s *CourseService) ListByBootcamp(ctx context.Context, bootcampID string) ([]entity.Course, error) {
	if _, err := s.Bootcamps.GetByID(ctx, bootcampID); err != nil {
		return nil, notFound(err, "No bootcamp with id %s", bootcampID)
	}
	return s.Courses.ListByBootcamp(ctx, bootcampID)
}

func (s *CourseService) Get(ctx context.Context, id string) (*entity.Course, error) {
	c, err := s.Courses.GetByID(ctx, id)
	if err != nil {
		return nil, notFound(err, "No course with id %s", id)
	}
	return c, nil
}

// Create adds a course to bootcampID. Only the bootcamp owner or an admin may.
func (s *CourseService) Create(ctx context.Context, actor *entity.User, bootcampID string, in entity.NewCourse) (*entity.Course, error) {
	if bootcampID == "" {
		return nil, apperror.Validation("bootcamp is required")
	}
	b, err := s.Bootcamps.GetByID(ctx, bootcampID)
	if err != nil {
		return nil, notFound(err, "No bootcamp with id %s", bootcampID)
	}
	if !entity.CanModify(actor, b.UserID) {
		return nil, apperror.Forbidden("User %s is not authorized to add a course to bootcamp %s", actor.ID, b.ID)
	}

	c := in.Course(b.ID, actor.ID)
	if err := c.Validate(); err != nil {
		return nil, err
	}
	if err := s.Courses.Create(ctx, c); err != nil {
		return nil, err
	}
	s.recompute(ctx, b.ID)
	return c, nil
}

func (s *CourseService) Update(ctx context.Context, actor *entity.User, id string, in entity.CourseUp) (*entity.Course, error) {
	c, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if !entity.CanModify(actor, c.UserID) {
		return nil, apperror.Forbidden("User %s is not authorized to update course %s", actor.ID, c.ID)
	}

	in.Apply(c)
	if err := c.Validate(); err != nil {
		return nil, err
	}
	if err := s.Courses.Update(ctx, c); err != nil {
		return nil, notFound(err, "No course with id %s", id)
	}
	s.recompute(ctx, c.BootcampID)
	return c, nil
}

func (s *CourseService) Delete(ctx context.Context, actor *entity.User, id string) error {
	c, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	if !entity.CanModify(actor, c.UserID) {
		return apperror.Forbidden("User %s is not authorized to delete course %s", actor.ID, c.ID)
	}
	if err := s.Courses.Delete(ctx, id); err != nil {
		return notFound(err, "No course with id %s", id)
	}
	s.recompute(ctx, c.BootcampID)
	return nil
}

// recompute stores the rounded mean tuition on the bootcamp. The course write
// has already succeeded, so a failure here is logged rather than returned.
func (s *CourseService) recompute(ctx context.Context, bootcampID string) {
	tuitions, err := s.Courses.Tuitions(ctx, bootcampID)
	if err == nil {
		err = s.Bootcamps.SetAverageCost(ctx, bootcampID, entity.AverageCostOf(tuitions))
	}
	if err != nil && s.Logger != nil {
		s.Logger.WithError(err).WithField("bootcamp_id", bootcampID).Error("recompute average cost failed")
	}
}
