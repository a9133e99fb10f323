package entity

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oksasatya/bootcamp-directory/pkg/apperror"
)

func TestAverageCostOf(t *testing.T) {
	assert.Equal(t, 200.0, AverageCostOf([]float64{100, 200, 300}))
	assert.Equal(t, 150.0, AverageCostOf([]float64{100, 200}))
	assert.Equal(t, 0.0, AverageCostOf(nil))
	assert.Equal(t, 6510.0, RoundAverageCost(6501))
	assert.Equal(t, 6500.0, RoundAverageCost(6500))
}

func TestCanModify(t *testing.T) {
	owner := &User{ID: "u1", Role: RolePublisher}
	other := &User{ID: "u2", Role: RolePublisher}
	admin := &User{ID: "u3", Role: RoleAdmin}

	assert.True(t, CanModify(owner, "u1"))
	assert.False(t, CanModify(other, "u1"))
	assert.True(t, CanModify(admin, "u1"))
	assert.False(t, CanModify(nil, "u1"))
}

func validBootcamp() *Bootcamp {
	return &Bootcamp{
		UserID:      "u1",
		Name:        "  Devworks Bootcamp ",
		Description: "Full stack web development",
		Website:     "https://devworks.com",
		Careers:     []string{"Web Development", "UI/UX"},
	}
}

func TestBootcampValidateNormalizes(t *testing.T) {
	b := validBootcamp()
	require.NoError(t, b.Validate())
	assert.Equal(t, "Devworks Bootcamp", b.Name)
	assert.Equal(t, "devworks-bootcamp", b.Slug)
	assert.Equal(t, DefaultPhoto, b.Photo)
}

func TestBootcampValidateRejects(t *testing.T) {
	b := validBootcamp()
	b.Name = ""
	b.Website = "devworks"
	b.Careers = []string{"Cooking"}

	err := b.Validate()
	require.Error(t, err)
	ae := apperror.From(err)
	assert.Equal(t, apperror.KindValidation, ae.Kind)
	assert.Contains(t, ae.Fields, "name")
	assert.Contains(t, ae.Fields, "website")
	assert.Contains(t, ae.Fields, "careers[0]")
}

func TestBootcampUpApply(t *testing.T) {
	b := validBootcamp()
	name := "Renamed"
	housing := true
	BootcampUp{Name: &name, Housing: &housing}.Apply(b)
	assert.Equal(t, "Renamed", b.Name)
	assert.True(t, b.Housing)
	assert.Equal(t, "Full stack web development", b.Description)
}

func TestCourseValidate(t *testing.T) {
	c := &Course{Title: "Front End", Description: "d", Weeks: "8", Tuition: 8000, MinimumSkill: "expert", BootcampID: "b1", UserID: "u1"}
	err := c.Validate()
	require.Error(t, err)
	assert.Equal(t, "must be one of: beginner, intermediate, advanced", apperror.From(err).Fields["minimumSkill"])

	c.MinimumSkill = SkillBeginner
	assert.NoError(t, c.Validate())
}

func TestCourseJSONBootcampField(t *testing.T) {
	c := Course{ID: "c1", BootcampID: "b1"}
	b, err := json.Marshal(c)
	require.NoError(t, err)
	assert.Contains(t, string(b), `"bootcamp":"b1"`)

	c.Bootcamp = &BootcampSummary{ID: "b1", Name: "Devworks", Description: "desc"}
	b, err = json.Marshal(c)
	require.NoError(t, err)
	assert.Contains(t, string(b), `"bootcamp":{"id":"b1","name":"Devworks","description":"desc"}`)
}

func TestUserResetToken(t *testing.T) {
	now := time.Now()
	u := &User{}
	assert.False(t, u.ResetTokenValid("abc", now))

	u.SetResetToken("abc", now)
	assert.True(t, u.ResetTokenValid("abc", now.Add(9*time.Minute)))
	assert.False(t, u.ResetTokenValid("abc", now.Add(11*time.Minute)))
	assert.False(t, u.ResetTokenValid("xyz", now))

	u.ClearResetToken()
	assert.False(t, u.ResetTokenValid("abc", now))
}

func TestUserValidate(t *testing.T) {
	u := &User{Name: " Jane ", Email: " Jane@Example.com "}
	require.NoError(t, u.Validate())
	assert.Equal(t, "jane@example.com", u.Email)
	assert.Equal(t, RoleUser, u.Role)

	u.Role = "root"
	assert.Error(t, u.Validate())

	b, err := json.Marshal(&User{ID: "u1", Password: "hash"})
	require.NoError(t, err)
	assert.NotContains(t, string(b), "hash")
}
