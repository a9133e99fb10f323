package postgres

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/oksasatya/bootcamp-directory/internal/domain/entity"
	"github.com/oksasatya/bootcamp-directory/internal/domain/query"
	"github.com/oksasatya/bootcamp-directory/internal/domain/repository"
)

// courseColumns expects courses aliased c joined to bootcamps aliased b.
const courseColumns = `c.id::text, c.title, c.description, c.weeks, c.tuition, c.minimum_skill,
	c.scholarship_available, c.bootcamp_id::text, c.user_id::text, c.created_at, b.name, b.description`

const courseFrom = ` FROM courses c JOIN bootcamps b ON b.id = c.bootcamp_id`

var courseSchema = schema{
	"id":                   {expr: "c.id::text", kind: kindText},
	"title":                {expr: "c.title", kind: kindText},
	"description":          {expr: "c.description", kind: kindText},
	"weeks":                {expr: "c.weeks", kind: kindText},
	"tuition":              {expr: "c.tuition", kind: kindNumber},
	"minimumSkill":         {expr: "c.minimum_skill", kind: kindText},
	"scholarshipAvailable": {expr: "c.scholarship_available", kind: kindBool},
	"bootcamp":             {expr: "c.bootcamp_id::text", kind: kindText},
	"user":                 {expr: "c.user_id::text", kind: kindText},
	"createdAt":            {expr: "c.created_at", kind: kindTime},
}

type CourseRepository struct {
	pool *pgxpool.Pool
}

func NewCourseRepository(pool *pgxpool.Pool) *CourseRepository {
	return &CourseRepository{pool: pool}
}

func scanCourse(row scanner) (*entity.Course, error) {
	c := &entity.Course{}
	var skill string
	summary := &entity.BootcampSummary{}
	if err := row.Scan(&c.ID, &c.Title, &c.Description, &c.Weeks, &c.Tuition, &skill,
		&c.ScholarshipAvailable, &c.BootcampID, &c.UserID, &c.CreatedAt,
		&summary.Name, &summary.Description); err != nil {
		return nil, mapError(err)
	}
	c.MinimumSkill = entity.SkillLevel(skill)
	summary.ID = c.BootcampID
	c.Bootcamp = summary
	return c, nil
}

func queryCourses(ctx context.Context, pool *pgxpool.Pool, sql string, args ...any) ([]entity.Course, error) {
	rows, err := pool.Query(ctx, sql, args...)
	if err != nil {
		return nil, mapError(err)
	}
	defer rows.Close()

	out := []entity.Course{}
	for rows.Next() {
		c, err := scanCourse(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *c)
	}
	return out, mapError(rows.Err())
}

func (r *CourseRepository) Create(ctx context.Context, c *entity.Course) error {
	row := r.pool.QueryRow(ctx, `
		INSERT INTO courses (title, description, weeks, tuition, minimum_skill,
			scholarship_available, bootcamp_id, user_id)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id::text, created_at
	`, c.Title, c.Description, c.Weeks, c.Tuition, string(c.MinimumSkill),
		c.ScholarshipAvailable, c.BootcampID, c.UserID)

	return mapError(row.Scan(&c.ID, &c.CreatedAt))
}

func (r *CourseRepository) GetByID(ctx context.Context, id string) (*entity.Course, error) {
	if !validID(id) {
		return nil, repository.ErrNotFound
	}
	return scanCourse(r.pool.QueryRow(ctx, `SELECT `+courseColumns+courseFrom+` WHERE c.id = $1`, id))
}

// ListByBootcamp returns the courses of one bootcamp without the summary.
func (r *CourseRepository) ListByBootcamp(ctx context.Context, bootcampID string) ([]entity.Course, error) {
	if !validID(bootcampID) {
		return []entity.Course{}, nil
	}
	out, err := queryCourses(ctx, r.pool, `SELECT `+courseColumns+courseFrom+`
		WHERE c.bootcamp_id = $1
		ORDER BY c.created_at, c.id`, bootcampID)
	for i := range out {
		out[i].Bootcamp = nil
	}
	return out, err
}

func (r *CourseRepository) Update(ctx context.Context, c *entity.Course) error {
	if !validID(c.ID) {
		return repository.ErrNotFound
	}
	res, err := r.pool.Exec(ctx, `
		UPDATE courses
		SET title = $1, description = $2, weeks = $3, tuition = $4,
		    minimum_skill = $5, scholarship_available = $6
		WHERE id = $7
	`, c.Title, c.Description, c.Weeks, c.Tuition, string(c.MinimumSkill), c.ScholarshipAvailable, c.ID)
	if err != nil {
		return mapError(err)
	}
	if res.RowsAffected() == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func (r *CourseRepository) Delete(ctx context.Context, id string) error {
	if !validID(id) {
		return repository.ErrNotFound
	}
	res, err := r.pool.Exec(ctx, `DELETE FROM courses WHERE id = $1`, id)
	if err != nil {
		return mapError(err)
	}
	if res.RowsAffected() == 0 {
		return repository.ErrNotFound
	}
	return nil
}

// List keeps the bootcamp summary only when q populates it.
func (r *CourseRepository) List(ctx context.Context, q query.Query) ([]entity.Course, error) {
	sql, args, err := courseSchema.listSQL(`SELECT `+courseColumns+courseFrom, "c.id", q)
	if err != nil {
		return nil, err
	}
	out, err := queryCourses(ctx, r.pool, sql, args...)
	if err != nil {
		return nil, err
	}
	if q.Populate != query.PopulateBootcamp {
		for i := range out {
			out[i].Bootcamp = nil
		}
	}
	return out, nil
}

func (r *CourseRepository) Count(ctx context.Context, q query.Query) (int, error) {
	sql, args, err := courseSchema.countSQL(`SELECT count(*)`+courseFrom, q)
	if err != nil {
		return 0, err
	}
	return count(ctx, r.pool, sql, args)
}

func (r *CourseRepository) Tuitions(ctx context.Context, bootcampID string) ([]float64, error) {
	if !validID(bootcampID) {
		return nil, repository.ErrNotFound
	}
	rows, err := r.pool.Query(ctx, `SELECT tuition FROM courses WHERE bootcamp_id = $1`, bootcampID)
	if err != nil {
		return nil, mapError(err)
	}
	defer rows.Close()

	var out []float64
	for rows.Next() {
		var t float64
		if err := rows.Scan(&t); err != nil {
			return nil, mapError(err)
		}
		out = append(out, t)
	}
	return out, mapError(rows.Err())
}

var _ repository.CourseRepository = (*CourseRepository)(nil)
