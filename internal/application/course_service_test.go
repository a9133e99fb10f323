package application_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oksasatya/bootcamp-directory/internal/application"
	"github.com/oksasatya/bootcamp-directory/internal/domain/entity"
	"github.com/oksasatya/bootcamp-directory/internal/domain/query"
	"github.com/oksasatya/bootcamp-directory/pkg/apperror"
	"github.com/oksasatya/bootcamp-directory/pkg/helpers"
)

func newCourse(tuition float64) entity.NewCourse {
	return entity.NewCourse{
		Title:        "Front End Web Development",
		Description:  "HTML, CSS and JavaScript",
		Weeks:        "8",
		Tuition:      &tuition,
		MinimumSkill: entity.SkillBeginner,
	}
}

func newCourseFixture(t *testing.T) (*bootcampFixture, *application.CourseService, *entity.Bootcamp) {
	t.Helper()
	f := newBootcampFixture(t)
	b, err := f.svc.Create(context.Background(), f.publisher, newBootcamp("Devworks Bootcamp", "02215"))
	require.NoError(t, err)
	return f, application.NewCourseService(f.store.Courses(), f.store.Bootcamps(), helpers.NewNopLogger()), b
}

func averageCost(t *testing.T, f *bootcampFixture, id string) float64 {
	t.Helper()
	b, err := f.svc.Get(context.Background(), id)
	require.NoError(t, err)
	return b.AverageCost
}

func TestCourseLifecycleRecomputesAverageCost(t *testing.T) {
	f, svc, b := newCourseFixture(t)
	ctx := context.Background()

	c1, err := svc.Create(ctx, f.publisher, b.ID, newCourse(8000))
	require.NoError(t, err)
	assert.Equal(t, b.ID, c1.BootcampID)
	assert.Equal(t, f.publisher.ID, c1.UserID)
	assert.Equal(t, 8000.0, averageCost(t, f, b.ID))

	c2, err := svc.Create(ctx, f.publisher, b.ID, newCourse(10005))
	require.NoError(t, err)
	// mean 9002.5 rounds up to the next multiple of ten
	assert.Equal(t, 9010.0, averageCost(t, f, b.ID))

	tuition := 12000.0
	_, err = svc.Update(ctx, f.publisher, c2.ID, entity.CourseUp{Tuition: &tuition})
	require.NoError(t, err)
	assert.Equal(t, 10000.0, averageCost(t, f, b.ID))

	require.NoError(t, svc.Delete(ctx, f.publisher, c1.ID))
	assert.Equal(t, 12000.0, averageCost(t, f, b.ID))

	require.NoError(t, svc.Delete(ctx, f.publisher, c2.ID))
	assert.Equal(t, 0.0, averageCost(t, f, b.ID))
}

func TestCourseAuthorization(t *testing.T) {
	f, svc, b := newCourseFixture(t)
	ctx := context.Background()

	_, err := svc.Create(ctx, f.other, b.ID, newCourse(100))
	require.True(t, apperror.Is(err, apperror.KindForbidden))
	assert.Contains(t, err.Error(), "is not authorized to add a course to bootcamp "+b.ID)

	c, err := svc.Create(ctx, f.admin, b.ID, newCourse(100))
	require.NoError(t, err, "admins may add courses anywhere")

	title := "Renamed"
	_, err = svc.Update(ctx, f.other, c.ID, entity.CourseUp{Title: &title})
	assert.True(t, apperror.Is(err, apperror.KindForbidden))
	assert.True(t, apperror.Is(svc.Delete(ctx, f.other, c.ID), apperror.KindForbidden))
}

func TestCourseNotFoundAndValidation(t *testing.T) {
	f, svc, b := newCourseFixture(t)
	ctx := context.Background()

	_, err := svc.Create(ctx, f.publisher, "missing", newCourse(100))
	assert.True(t, apperror.Is(err, apperror.KindNotFound))
	_, err = svc.Create(ctx, f.publisher, "", newCourse(100))
	assert.True(t, apperror.Is(err, apperror.KindValidation))

	_, err = svc.ListByBootcamp(ctx, "missing")
	assert.True(t, apperror.Is(err, apperror.KindNotFound))
	_, err = svc.Get(ctx, "missing")
	assert.True(t, apperror.Is(err, apperror.KindNotFound))

	in := newCourse(100)
	in.MinimumSkill = "expert"
	_, err = svc.Create(ctx, f.publisher, b.ID, in)
	assert.True(t, apperror.Is(err, apperror.KindValidation))

	in = newCourse(-1)
	_, err = svc.Create(ctx, f.publisher, b.ID, in)
	assert.True(t, apperror.Is(err, apperror.KindValidation))
}

func TestCourseListing(t *testing.T) {
	f, svc, b := newCourseFixture(t)
	ctx := context.Background()
	for _, tuition := range []float64{100, 200, 300} {
		_, err := svc.Create(ctx, f.publisher, b.ID, newCourse(tuition))
		require.NoError(t, err)
	}

	byBootcamp, err := svc.ListByBootcamp(ctx, b.ID)
	require.NoError(t, err)
	assert.Len(t, byBootcamp, 3)

	q := query.Query{
		Page:     1,
		Limit:    10,
		Populate: query.PopulateBootcamp,
		Filters:  []query.Filter{{Field: "tuition", Op: query.OpGte, Values: []string{"200"}}},
	}
	list, err := svc.List(ctx, q)
	require.NoError(t, err)
	require.Len(t, list, 2)
	require.NotNil(t, list[0].Bootcamp)
	assert.Equal(t, "Devworks Bootcamp", list[0].Bootcamp.Name)

	n, err := svc.Count(ctx, q)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	got, err := svc.Get(ctx, list[0].ID)
	require.NoError(t, err)
	require.NotNil(t, got.Bootcamp)
	assert.Equal(t, b.ID, got.Bootcamp.ID)
}
