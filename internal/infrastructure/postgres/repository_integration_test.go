package postgres

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"

	"github.com/oksasatya/bootcamp-directory/internal/domain/entity"
	"github.com/oksasatya/bootcamp-directory/internal/domain/query"
	"github.com/oksasatya/bootcamp-directory/internal/domain/repository"
	"github.com/oksasatya/bootcamp-directory/pkg/apperror"
	"github.com/oksasatya/bootcamp-directory/pkg/helpers"
)

// startPostgres returns a migrated pool. TEST_PG_DSN reuses an existing
// database; otherwise a container is started and the test is skipped when
// no Docker provider is available.
func startPostgres(t *testing.T) *pgxpool.Pool {
	t.Helper()
	if testing.Short() {
		t.Skip("integration test")
	}
	ctx := context.Background()

	dsn := os.Getenv("TEST_PG_DSN")
	if dsn == "" {
		testcontainers.SkipIfProviderIsNotHealthy(t)
		pgC, err := tcpostgres.Run(ctx,
			"postgres:16",
			tcpostgres.WithDatabase("bootcamps"),
			tcpostgres.WithUsername("test"),
			tcpostgres.WithPassword("test"),
			tcpostgres.BasicWaitStrategies(),
		)
		require.NoError(t, err)
		t.Cleanup(func() { _ = pgC.Terminate(context.Background()) })

		dsn, err = pgC.ConnectionString(ctx, "sslmode=disable")
		require.NoError(t, err)
	}

	logger := helpers.NewNopLogger()
	require.NoError(t, Migrate(dsn, "../../../db/migrations", logger))

	pool, err := NewPool(ctx, dsn, PoolOptions{MaxConns: 4}, logger)
	require.NoError(t, err)
	t.Cleanup(pool.Close)

	_, err = pool.Exec(ctx, `TRUNCATE courses, bootcamps, users CASCADE`)
	require.NoError(t, err)
	return pool
}

func seedUser(t *testing.T, repo *UserRepository, email string, role entity.Role) *entity.User {
	t.Helper()
	u := &entity.User{Name: "Test " + email, Email: email, Role: role, Password: "hash"}
	require.NoError(t, repo.Create(context.Background(), u))
	return u
}

func seedBootcamp(t *testing.T, repo *BootcampRepository, owner, name string, lng, lat float64) *entity.Bootcamp {
	t.Helper()
	b := &entity.Bootcamp{
		UserID:      owner,
		Name:        name,
		Description: "About " + name,
		Careers:     []string{"Web Development"},
		Photo:       entity.DefaultPhoto,
		Location:    entity.NewPoint(lng, lat),
	}
	b.Normalize()
	require.NoError(t, repo.Create(context.Background(), b))
	return b
}

func TestRepositoriesAgainstPostgres(t *testing.T) {
	pool := startPostgres(t)
	ctx := context.Background()
	users := NewUserRepository(pool)
	bootcamps := NewBootcampRepository(pool)
	courses := NewCourseRepository(pool)

	publisher := seedUser(t, users, "publisher@example.com", entity.RolePublisher)

	t.Run("user lookups", func(t *testing.T) {
		got, err := users.GetByEmail(ctx, "publisher@example.com")
		require.NoError(t, err)
		assert.Equal(t, publisher.ID, got.ID)
		assert.Equal(t, entity.RolePublisher, got.Role)

		_, err = users.GetByID(ctx, "not-a-uuid")
		assert.ErrorIs(t, err, repository.ErrNotFound)

		dup := &entity.User{Name: "Dup", Email: "publisher@example.com", Role: entity.RoleUser, Password: "x"}
		err = users.Create(ctx, dup)
		assert.True(t, apperror.Is(err, apperror.KindValidation))
	})

	t.Run("reset token lookup honours expiry", func(t *testing.T) {
		now := time.Now()
		publisher.SetResetToken("hashed", now)
		require.NoError(t, users.Update(ctx, publisher))

		got, err := users.GetByResetToken(ctx, "hashed", now)
		require.NoError(t, err)
		assert.Equal(t, publisher.ID, got.ID)

		_, err = users.GetByResetToken(ctx, "hashed", now.Add(entity.ResetTokenTTL+time.Second))
		assert.ErrorIs(t, err, repository.ErrNotFound)
	})

	boston := seedBootcamp(t, bootcamps, publisher.ID, "Devworks Bootcamp", -71.104028, 42.350846)
	other := seedUser(t, users, "other@example.com", entity.RolePublisher)
	seedBootcamp(t, bootcamps, other.ID, "Codemasters", -118.243683, 34.052235)

	t.Run("bootcamp list, count and populate", func(t *testing.T) {
		q := query.Query{Page: 1, Limit: 1, Sort: []query.SortField{{Field: "name"}}, Populate: query.PopulateCourses}
		list, err := bootcamps.List(ctx, q)
		require.NoError(t, err)
		require.Len(t, list, 1)
		assert.Equal(t, "Codemasters", list[0].Name)
		assert.NotNil(t, list[0].Courses)

		n, err := bootcamps.Count(ctx, query.Query{Filters: []query.Filter{{Field: "user", Op: query.OpEq, Values: []string{publisher.ID}}}})
		require.NoError(t, err)
		assert.Equal(t, 1, n)

		owned, err := bootcamps.CountByOwner(ctx, other.ID)
		require.NoError(t, err)
		assert.Equal(t, 1, owned)
	})

	t.Run("radius search", func(t *testing.T) {
		// 10 miles around Boston.
		found, err := bootcamps.WithinRadius(ctx, -71.1, 42.35, 10.0/3963)
		require.NoError(t, err)
		require.Len(t, found, 1)
		assert.Equal(t, boston.ID, found[0].ID)
		assert.InDelta(t, 42.350846, found[0].Location.Latitude(), 1e-6)
	})

	t.Run("courses and tuitions", func(t *testing.T) {
		for _, tuition := range []float64{8000, 10000} {
			c := &entity.Course{
				Title: "Course", Description: "d", Weeks: "8", Tuition: tuition,
				MinimumSkill: entity.SkillBeginner, BootcampID: boston.ID, UserID: publisher.ID,
			}
			require.NoError(t, courses.Create(ctx, c))
		}

		tuitions, err := courses.Tuitions(ctx, boston.ID)
		require.NoError(t, err)
		assert.ElementsMatch(t, []float64{8000, 10000}, tuitions)

		require.NoError(t, bootcamps.SetAverageCost(ctx, boston.ID, entity.AverageCostOf(tuitions)))
		got, err := bootcamps.GetByID(ctx, boston.ID)
		require.NoError(t, err)
		assert.Equal(t, 9000.0, got.AverageCost)

		list, err := courses.List(ctx, query.Query{Page: 1, Limit: 10, Populate: query.PopulateBootcamp,
			Filters: []query.Filter{{Field: "tuition", Op: query.OpGt, Values: []string{"9000"}}}})
		require.NoError(t, err)
		require.Len(t, list, 1)
		require.NotNil(t, list[0].Bootcamp)
		assert.Equal(t, "Devworks Bootcamp", list[0].Bootcamp.Name)

		byBootcamp, err := courses.ListByBootcamp(ctx, boston.ID)
		require.NoError(t, err)
		assert.Len(t, byBootcamp, 2)
		assert.Nil(t, byBootcamp[0].Bootcamp)
	})

	t.Run("deleting a bootcamp cascades to its courses", func(t *testing.T) {
		require.NoError(t, bootcamps.Delete(ctx, boston.ID))
		left, err := courses.ListByBootcamp(ctx, boston.ID)
		require.NoError(t, err)
		assert.Empty(t, left)

		assert.ErrorIs(t, bootcamps.Delete(ctx, boston.ID), repository.ErrNotFound)
	})
}
