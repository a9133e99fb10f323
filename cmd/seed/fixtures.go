package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/sirupsen/logrus"

	"github.com/oksasatya/bootcamp-directory/internal/domain/entity"
	"github.com/oksasatya/bootcamp-directory/internal/domain/repository"
	"github.com/oksasatya/bootcamp-directory/pkg/helpers"
)

// userFixture carries the plain password that entity.User never decodes.
type userFixture struct {
	ID       string      `json:"id"`
	Name     string      `json:"name"`
	Email    string      `json:"email"`
	Role     entity.Role `json:"role"`
	Password string      `json:"password"`
}

// fixtures reference each other by their own ids; the database assigns real ones.
type fixtures struct {
	Users     []userFixture
	Bootcamps []entity.Bootcamp
	Courses   []entity.Course
}

func readJSON(dir, name string, dst any) error {
	b, err := os.ReadFile(filepath.Join(dir, name))
	if err != nil {
		return err
	}
	if err := json.Unmarshal(b, dst); err != nil {
		return fmt.Errorf("%s: %w", name, err)
	}
	return nil
}

func loadFixtures(dir string) (*fixtures, error) {
	f := &fixtures{}
	if err := readJSON(dir, "users.json", &f.Users); err != nil {
		return nil, err
	}
	if err := readJSON(dir, "bootcamps.json", &f.Bootcamps); err != nil {
		return nil, err
	}
	if err := readJSON(dir, "courses.json", &f.Courses); err != nil {
		return nil, err
	}
	return f, nil
}

type seeder struct {
	Users     repository.UserRepository
	Bootcamps repository.BootcampRepository
	Courses   repository.CourseRepository
	Logger    *logrus.Logger
}

// Import writes users, bootcamps and courses in dependency order and then
// stores each bootcamp's averageCost.
func (s *seeder) Import(ctx context.Context, f *fixtures) error {
	userIDs := make(map[string]string, len(f.Users))
	for _, uf := range f.Users {
		u := &entity.User{Name: uf.Name, Email: uf.Email, Role: uf.Role}
		if err := u.Validate(); err != nil {
			return fmt.Errorf("user %s: %w", uf.ID, err)
		}
		hash, err := helpers.HashPassword(uf.Password)
		if err != nil {
			return err
		}
		u.Password = hash
		if err := s.Users.Create(ctx, u); err != nil {
			return fmt.Errorf("user %s: %w", uf.ID, err)
		}
		userIDs[uf.ID] = u.ID
	}

	bootcampIDs := make(map[string]string, len(f.Bootcamps))
	for _, b := range f.Bootcamps {
		ref := b.ID
		owner, ok := userIDs[b.UserID]
		if !ok {
			return fmt.Errorf("bootcamp %s: unknown user %s", ref, b.UserID)
		}
		b.ID, b.UserID, b.AverageCost = "", owner, 0
		if err := b.Validate(); err != nil {
			return fmt.Errorf("bootcamp %s: %w", ref, err)
		}
		if err := s.Bootcamps.Create(ctx, &b); err != nil {
			return fmt.Errorf("bootcamp %s: %w", ref, err)
		}
		bootcampIDs[ref] = b.ID
	}

	for _, c := range f.Courses {
		ref := c.ID
		bootcamp, ok := bootcampIDs[c.BootcampID]
		if !ok {
			return fmt.Errorf("course %s: unknown bootcamp %s", ref, c.BootcampID)
		}
		owner, ok := userIDs[c.UserID]
		if !ok {
			return fmt.Errorf("course %s: unknown user %s", ref, c.UserID)
		}
		c.ID, c.BootcampID, c.UserID = "", bootcamp, owner
		if err := c.Validate(); err != nil {
			return fmt.Errorf("course %s: %w", ref, err)
		}
		if err := s.Courses.Create(ctx, &c); err != nil {
			return fmt.Errorf("course %s: %w", ref, err)
		}
	}

	for ref, id := range bootcampIDs {
		tuitions, err := s.Courses.Tuitions(ctx, id)
		if err != nil {
			return fmt.Errorf("bootcamp %s: %w", ref, err)
		}
		if err := s.Bootcamps.SetAverageCost(ctx, id, entity.AverageCostOf(tuitions)); err != nil {
			return fmt.Errorf("bootcamp %s: %w", ref, err)
		}
	}

	s.Logger.WithFields(logrus.Fields{
		"users":     len(f.Users),
		"bootcamps": len(f.Bootcamps),
		"courses":   len(f.Courses),
	}).Info("data imported")
	return nil
}
