package application

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/oksasatya/bootcamp-directory/internal/domain/entity"
	repo "github.com/oksasatya/bootcamp-directory/internal/domain/repository"
	"github.com/oksasatya/bootcamp-directory/pkg/apperror"
	"github.com/oksasatya/bootcamp-directory/pkg/helpers"
	"github.com/oksasatya/bootcamp-directory/pkg/mailer"
	"github.com/oksasatya/bootcamp-directory/pkg/mailer/templates"
)

const notAuthorized = "Not authorized to access this route"

type AuthService struct {
	Users   repo.UserRepository
	JWT     *helpers.JWTManager
	Mail    mailer.Sender
	Logger  *logrus.Logger
	AppName string
	Now     func() time.Time // defaults to time.Now
}

func NewAuthService(users repo.UserRepository, jwt *helpers.JWTManager, mail mailer.Sender, logger *logrus.Logger, appName string) *AuthService {
	return &AuthService{Users: users, JWT: jwt, Mail: mail, Logger: logger, AppName: appName, Now: time.Now}
}

func (s *AuthService) clock() time.Time {
	if s.Now == nil {
		return time.Now()
	}
	return s.Now()
}

// Register creates a user or publisher account. Admins are only created
// through the users API or the seeder.
func (s *AuthService) Register(ctx context.Context, in entity.NewUser) (*entity.User, error) {
	if in.Role == entity.RoleAdmin {
		return nil, apperror.Validation("role must be one of user publisher")
	}
	return createUser(ctx, s.Users, in)
}

// Login checks the credentials and returns the matching user.
func (s *AuthService) Login(ctx context.Context, email, password string) (*entity.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || password == "" {
		return nil, apperror.Validation("Please provide an email and password")
	}
	u, err := s.Users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, apperror.Unauthenticated("Invalid credentials")
		}
		return nil, err
	}
	if !helpers.CompareHashAndPassword(u.Password, password) {
		return nil, apperror.Unauthenticated("Invalid credentials")
	}
	return u, nil
}

// IssueToken signs an identity token for u.
func (s *AuthService) IssueToken(u *entity.User) (string, error) {
	token, _, err := s.JWT.Generate(u.ID)
	if err != nil {
		if s.Logger != nil {
			s.Logger.WithError(err).WithField("user_id", u.ID).Error("generate token failed")
		}
		return "", apperror.Internal(err)
	}
	return token, nil
}

// ResolveUser verifies token and loads the user it names.
func (s *AuthService) ResolveUser(ctx context.Context, token string) (*entity.User, error) {
	if token == "" {
		return nil, apperror.Unauthenticated(notAuthorized)
	}
	claims, err := s.JWT.Parse(token)
	if err != nil {
		return nil, &apperror.Error{Kind: apperror.KindUnauthenticated, Message: notAuthorized, Err: err}
	}
	u, err := s.Users.GetByID(ctx, claims.UserID)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, apperror.Unauthenticated(notAuthorized)
		}
		return nil, err
	}
	return u, nil
}

func (s *AuthService) Me(ctx context.Context, userID string) (*entity.User, error) {
	u, err := s.Users.GetByID(ctx, userID)
	if err != nil {
		return nil, notFound(err, "User not found with id of %s", userID)
	}
	return u, nil
}

// ForgotPassword stores a hashed reset token and mails the raw one inside a
// link built from baseURL. The token is cleared again if the mail fails.
func (s *AuthService) ForgotPassword(ctx context.Context, email, baseURL string) error {
	email = strings.ToLower(strings.TrimSpace(email))
	u, err := s.Users.GetByEmail(ctx, email)
	if err != nil {
		return notFound(err, "There is no user with the email address %s", email)
	}

	raw, hashed, err := helpers.NewResetToken()
	if err != nil {
		return apperror.Internal(err)
	}
	now := s.clock()
	u.SetResetToken(hashed, now)
	if err := s.Users.Update(ctx, u); err != nil {
		return err
	}

	resetURL := strings.TrimRight(baseURL, "/") + "/api/v1/auth/resetpassword/" + raw
	job := mailer.EmailJob{
		To:       u.Email,
		Template: templates.ResetPassword,
		Data: templates.ToMap(templates.EmailData{
			Name:          u.Name,
			Email:         u.Email,
			AppName:       s.AppName,
			ResetURL:      resetURL,
			ExpiresAt:     now.Add(entity.ResetTokenTTL),
			ExpiresAtText: fmt.Sprintf("in %d minutes", int(entity.ResetTokenTTL.Minutes())),
		}),
	}
	if err := s.Mail.Send(ctx, job); err != nil {
		if s.Logger != nil {
			s.Logger.WithError(err).WithField("user_id", u.ID).Error("reset email failed")
		}
		u.ClearResetToken()
		if uerr := s.Users.Update(ctx, u); uerr != nil && s.Logger != nil {
			s.Logger.WithError(uerr).WithField("user_id", u.ID).Error("clear reset token failed")
		}
		return apperror.Upstream(err, "Email could not be sent")
	}
	return nil
}

// ResetPassword sets a new password for the holder of an unexpired token and
// invalidates the token.
func (s *AuthService) ResetPassword(ctx context.Context, rawToken, password string) (*entity.User, error) {
	now := s.clock()
	hashed := helpers.HashResetToken(rawToken)
	u, err := s.Users.GetByResetToken(ctx, hashed, now)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, apperror.Validation("Invalid token")
		}
		return nil, err
	}
	if !u.ResetTokenValid(hashed, now) {
		return nil, apperror.Validation("Invalid token")
	}

	hash, err := helpers.HashPassword(password)
	if err != nil {
		return nil, apperror.Internal(err)
	}
	u.Password = hash
	u.ClearResetToken()
	if err := s.Users.Update(ctx, u); err != nil {
		return nil, err
	}
	return u, nil
}

// UpdateDetails changes the caller's name and email only.
func (s *AuthService) UpdateDetails(ctx context.Context, userID string, name, email *string) (*entity.User, error) {
	u, err := s.Users.GetByID(ctx, userID)
	if err != nil {
		return nil, notFound(err, "User not found with id of %s", userID)
	}
	entity.UserUp{Name: name, Email: email}.Apply(u)
	if err := u.Validate(); err != nil {
		return nil, err
	}
	if err := s.Users.Update(ctx, u); err != nil {
		return nil, err
	}
	return u, nil
}

// UpdatePassword requires the current password before setting a new one.
func (s *AuthService) UpdatePassword(ctx context.Context, userID, current, next string) (*entity.User, error) {
	u, err := s.Users.GetByID(ctx, userID)
	if err != nil {
		return nil, notFound(err, "User not found with id of %s", userID)
	}
	if !helpers.CompareHashAndPassword(u.Password, current) {
		return nil, apperror.Unauthenticated("Password is incorrect")
	}
	hash, err := helpers.HashPassword(next)
	if err != nil {
		return nil, apperror.Internal(err)
	}
	u.Password = hash
	if err := s.Users.Update(ctx, u); err != nil {
		return nil, err
	}
	return u, nil
}

// createUser hashes the password and persists a validated user.
func createUser(ctx context.Context, users repo.UserRepository, in entity.NewUser) (*entity.User, error) {
	u := &entity.User{Name: in.Name, Email: in.Email, Role: in.Role}
	if err := u.Validate(); err != nil {
		return nil, err
	}
	hash, err := helpers.HashPassword(in.Password)
	if err != nil {
		return nil, apperror.Internal(err)
	}
	u.Password = hash
	if err := users.Create(ctx, u); err != nil {
		return nil, err
	}
	return u, nil
}
