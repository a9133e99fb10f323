package entity

import (
	"encoding/json"
	"strings"
	"time"

	"github.com/oksasatya/bootcamp-directory/pkg/validation"
)

type SkillLevel string

const (
	SkillBeginner     SkillLevel = "beginner"
	SkillIntermediate SkillLevel = "intermediate"
	SkillAdvanced     SkillLevel = "advanced"
)

// BootcampSummary is what a course shows of its bootcamp when populated.
type BootcampSummary struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
}

type Course struct {
	ID                   string     `json:"id"`
	Title                string     `json:"title" validate:"required"`
	Description          string     `json:"description" validate:"required"`
	Weeks                string     `json:"weeks" validate:"required"`
	Tuition              float64    `json:"tuition" validate:"gte=0"`
	MinimumSkill         SkillLevel `json:"minimumSkill" validate:"required,skill"`
	ScholarshipAvailable bool       `json:"scholarshipAvailable"`
	BootcampID           string     `json:"bootcamp" validate:"required"`
	UserID               string     `json:"user" validate:"required"`
	CreatedAt            time.Time  `json:"createdAt"`

	// Bootcamp replaces the bootcamp id in JSON when populated.
	Bootcamp *BootcampSummary `json:"-"`
}

// MarshalJSON renders "bootcamp" as the populated summary when present.
func (c Course) MarshalJSON() ([]byte, error) {
	type plain Course
	if c.Bootcamp == nil {
		return json.Marshal(plain(c))
	}
	return json.Marshal(struct {
		plain
		Bootcamp *BootcampSummary `json:"bootcamp"`
	}{plain: plain(c), Bootcamp: c.Bootcamp})
}

func (c *Course) Validate() error {
	c.Title = strings.TrimSpace(c.Title)
	return validation.Struct(c)
}

// NewCourse is the creation payload. Bootcamp is only read on POST /courses;
// the nested route takes it from the path.
type NewCourse struct {
	Title                string     `json:"title"`
	Description          string     `json:"description"`
	Weeks                string     `json:"weeks"`
	Tuition              *float64   `json:"tuition" binding:"required"`
	MinimumSkill         SkillLevel `json:"minimumSkill"`
	ScholarshipAvailable bool       `json:"scholarshipAvailable"`
	Bootcamp             string     `json:"bootcamp"`
}

func (n NewCourse) Course(bootcampID, userID string) *Course {
	c := &Course{
		Title:                n.Title,
		Description:          n.Description,
		Weeks:                n.Weeks,
		MinimumSkill:         n.MinimumSkill,
		ScholarshipAvailable: n.ScholarshipAvailable,
		BootcampID:           bootcampID,
		UserID:               userID,
	}
	if n.Tuition != nil {
		c.Tuition = *n.Tuition
	}
	return c
}

// CourseUp is a partial update; nil fields are left untouched.
type CourseUp struct {
	Title                *string     `json:"title"`
	Description          *string     `json:"description"`
	Weeks                *string     `json:"weeks"`
	Tuition              *float64    `json:"tuition"`
	MinimumSkill         *SkillLevel `json:"minimumSkill"`
	ScholarshipAvailable *bool       `json:"scholarshipAvailable"`
}

func (p CourseUp) Apply(c *Course) {
	if p.Title != nil {
		c.Title = *p.Title
	}
	if p.Description != nil {
		c.Description = *p.Description
	}
	if p.Weeks != nil {
		c.Weeks = *p.Weeks
	}
	if p.Tuition != nil {
		c.Tuition = *p.Tuition
	}
	if p.MinimumSkill != nil {
		c.MinimumSkill = *p.MinimumSkill
	}
	if p.ScholarshipAvailable != nil {
		c.ScholarshipAvailable = *p.ScholarshipAvailable
	}
}
