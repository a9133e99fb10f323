package application

import (
	"context"

	"github.com/sirupsen/logrus"

	"github.com/oksasatya/bootcamp-directory/internal/domain/entity"
	"github.com/oksasatya/bootcamp-directory/internal/domain/query"
	repo "github.com/oksasatya/bootcamp-directory/internal/domain/repository"
	"github.com/oksasatya/bootcamp-directory/pkg/apperror"
	"github.com/oksasatya/bootcamp-directory/pkg/helpers"
)

// UserService is the admin-only user management API.
type UserService struct {
	Users  repo.UserRepository
	Logger *logrus.Logger
}

func NewUserService(users repo.UserRepository, logger *logrus.Logger) *UserService {
	return &UserService{Users: users, Logger: logger}
}

func (s *UserService) List(ctx context.Context, q query.Query) ([]entity.User, error) {
	return s.Users.List(ctx, q)
}

func (s *UserService) Count(ctx context.Context, q query.Query) (int, error) {
	return s.Users.Count(ctx, q)
}

func (s *UserService) Get(ctx context.Context, id string) (*entity.User, error) {
	u, err := s.Users.GetByID(ctx, id)
	if err != nil {
		return nil, notFound(err, "User not found with id of %s", id)
	}
	return u, nil
}

// Create may assign any role, admin included.
func (s *UserService) Create(ctx context.Context, in entity.NewUser) (*entity.User, error) {
	return createUser(ctx, s.Users, in)
}

func (s *UserService) Update(ctx context.Context, id string, in entity.UserUp) (*entity.User, error) {
	u, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	in.Apply(u)
	if err := u.Validate(); err != nil {
		return nil, err
	}
	if in.Password != nil {
		hash, err := helpers.HashPassword(*in.Password)
		if err != nil {
			return nil, apperror.Internal(err)
		}
		u.Password = hash
	}
	if err := s.Users.Update(ctx, u); err != nil {
		return nil, notFound(err, "User not found with id of %s", id)
	}
	return u, nil
}

func (s *UserService) Delete(ctx context.Context, id string) error {
	if err := s.Users.Delete(ctx, id); err != nil {
		return notFound(err, "User not found with id of %s", id)
	}
	return nil
}
