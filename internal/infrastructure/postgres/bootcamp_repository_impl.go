package postgres

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/oksasatya/bootcamp-directory/internal/domain/entity"
	"github.com/oksasatya/bootcamp-directory/internal/domain/query"
	"github.com/oksasatya/bootcamp-directory/internal/domain/repository"
)

const bootcampColumns = `b.id::text, b.user_id::text, b.name, b.slug, b.description, b.website, b.phone, b.email,
	b.longitude, b.latitude, b.formatted_address, b.street, b.city, b.state, b.zipcode, b.country,
	b.careers, b.average_rating, b.average_cost, b.photo,
	b.housing, b.job_assistance, b.job_guarantee, b.accept_gi, b.created_at`

var bootcampSchema = schema{
	"id":                        {expr: "b.id::text", kind: kindText},
	"user":                      {expr: "b.user_id::text", kind: kindText},
	"name":                      {expr: "b.name", kind: kindText},
	"slug":                      {expr: "b.slug", kind: kindText},
	"description":               {expr: "b.description", kind: kindText},
	"website":                   {expr: "b.website", kind: kindText},
	"phone":                     {expr: "b.phone", kind: kindText},
	"email":                     {expr: "b.email", kind: kindText},
	"careers":                   {expr: "b.careers", kind: kindTextArray},
	"averageRating":             {expr: "b.average_rating", kind: kindNumber},
	"averageCost":               {expr: "b.average_cost", kind: kindNumber},
	"photo":                     {expr: "b.photo", kind: kindText},
	"housing":                   {expr: "b.housing", kind: kindBool},
	"jobAssistance":             {expr: "b.job_assistance", kind: kindBool},
	"jobGuarantee":              {expr: "b.job_guarantee", kind: kindBool},
	"acceptGi":                  {expr: "b.accept_gi", kind: kindBool},
	"createdAt":                 {expr: "b.created_at", kind: kindTime},
	"location.formattedAddress": {expr: "b.formatted_address", kind: kindText},
	"location.street":           {expr: "b.street", kind: kindText},
	"location.city":             {expr: "b.city", kind: kindText},
	"location.state":            {expr: "b.state", kind: kindText},
	"location.zipcode":          {expr: "b.zipcode", kind: kindText},
	"location.country":          {expr: "b.country", kind: kindText},
}

type BootcampRepository struct {
	pool *pgxpool.Pool
}

func NewBootcampRepository(pool *pgxpool.Pool) *BootcampRepository {
	return &BootcampRepository{pool: pool}
}

func scanBootcamp(row scanner) (*entity.Bootcamp, error) {
	b := &entity.Bootcamp{}
	var lng, lat float64
	l := &b.Location
	if err := row.Scan(&b.ID, &b.UserID, &b.Name, &b.Slug, &b.Description, &b.Website, &b.Phone, &b.Email,
		&lng, &lat, &l.FormattedAddress, &l.Street, &l.City, &l.State, &l.Zipcode, &l.Country,
		&b.Careers, &b.AverageRating, &b.AverageCost, &b.Photo,
		&b.Housing, &b.JobAssistance, &b.JobGuarantee, &b.AcceptGi, &b.CreatedAt); err != nil {
		return nil, mapError(err)
	}
	point := entity.NewPoint(lng, lat)
	l.Type, l.Coordinates = point.Type, point.Coordinates
	return b, nil
}

func (r *BootcampRepository) Create(ctx context.Context, b *entity.Bootcamp) error {
	l := b.Location
	row := r.pool.QueryRow(ctx, `
		INSERT INTO bootcamps (user_id, name, slug, description, website, phone, email,
			longitude, latitude, formatted_address, street, city, state, zipcode, country,
			careers, average_rating, photo, housing, job_assistance, job_guarantee, accept_gi)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15,
			$16, $17, $18, $19, $20, $21, $22)
		RETURNING id::text, average_cost, created_at
	`, b.UserID, b.Name, b.Slug, b.Description, b.Website, b.Phone, b.Email,
		l.Longitude(), l.Latitude(), l.FormattedAddress, l.Street, l.City, l.State, l.Zipcode, l.Country,
		b.Careers, b.AverageRating, b.Photo, b.Housing, b.JobAssistance, b.JobGuarantee, b.AcceptGi)

	return mapError(row.Scan(&b.ID, &b.AverageCost, &b.CreatedAt))
}

func (r *BootcampRepository) GetByID(ctx context.Context, id string) (*entity.Bootcamp, error) {
	if !validID(id) {
		return nil, repository.ErrNotFound
	}
	return scanBootcamp(r.pool.QueryRow(ctx, `SELECT `+bootcampColumns+` FROM bootcamps b WHERE b.id = $1`, id))
}

func (r *BootcampRepository) CountByOwner(ctx context.Context, userID string) (int, error) {
	if !validID(userID) {
		return 0, nil
	}
	return count(ctx, r.pool, `SELECT count(*) FROM bootcamps WHERE user_id = $1`, []any{userID})
}

// Update writes every owner-editable column. averageCost is left to SetAverageCost.
func (r *BootcampRepository) Update(ctx context.Context, b *entity.Bootcamp) error {
	if !validID(b.ID) {
		return repository.ErrNotFound
	}
	l := b.Location
	res, err := r.pool.Exec(ctx, `
		UPDATE bootcamps
		SET name = $1, slug = $2, description = $3, website = $4, phone = $5, email = $6,
		    longitude = $7, latitude = $8, formatted_address = $9, street = $10, city = $11,
		    state = $12, zipcode = $13, country = $14, careers = $15, average_rating = $16,
		    photo = $17, housing = $18, job_assistance = $19, job_guarantee = $20, accept_gi = $21
		WHERE id = $22
	`, b.Name, b.Slug, b.Description, b.Website, b.Phone, b.Email,
		l.Longitude(), l.Latitude(), l.FormattedAddress, l.Street, l.City,
		l.State, l.Zipcode, l.Country, b.Careers, b.AverageRating,
		b.Photo, b.Housing, b.JobAssistance, b.JobGuarantee, b.AcceptGi, b.ID)
	if err != nil {
		return mapError(err)
	}
	if res.RowsAffected() == 0 {
		return repository.ErrNotFound
	}
	return nil
}

// Delete removes the bootcamp; its courses go with it through the cascade.
func (r *BootcampRepository) Delete(ctx context.Context, id string) error {
	if !validID(id) {
		return repository.ErrNotFound
	}
	res, err := r.pool.Exec(ctx, `DELETE FROM bootcamps WHERE id = $1`, id)
	if err != nil {
		return mapError(err)
	}
	if res.RowsAffected() == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func (r *BootcampRepository) List(ctx context.Context, q query.Query) ([]entity.Bootcamp, error) {
	sql, args, err := bootcampSchema.listSQL(`SELECT `+bootcampColumns+` FROM bootcamps b`, "b.id", q)
	if err != nil {
		return nil, err
	}
	out, err := r.query(ctx, sql, args...)
	if err != nil {
		return nil, err
	}
	if q.Populate == query.PopulateCourses && len(out) > 0 {
		if err := r.populateCourses(ctx, out); err != nil {
			return nil, err
		}
	}
	return out, nil
}

func (r *BootcampRepository) Count(ctx context.Context, q query.Query) (int, error) {
	sql, args, err := bootcampSchema.countSQL(`SELECT count(*) FROM bootcamps b`, q)
	if err != nil {
		return 0, err
	}
	return count(ctx, r.pool, sql, args)
}

// WithinRadius uses the spherical law of cosines; the clamp keeps acos defined
// when rounding pushes the cosine past ±1 for the centre point itself.
func (r *BootcampRepository) WithinRadius(ctx context.Context, lng, lat, radius float64) ([]entity.Bootcamp, error) {
	return r.query(ctx, `
		SELECT `+bootcampColumns+`
		FROM bootcamps b
		WHERE acos(LEAST(1.0, GREATEST(-1.0,
			sin(radians($2)) * sin(radians(b.latitude)) +
			cos(radians($2)) * cos(radians(b.latitude)) * cos(radians(b.longitude) - radians($1))
		))) <= $3
		ORDER BY b.created_at DESC, b.id
	`, lng, lat, radius)
}

func (r *BootcampRepository) SetAverageCost(ctx context.Context, id string, cost float64) error {
	if !validID(id) {
		return repository.ErrNotFound
	}
	_, err := r.pool.Exec(ctx, `UPDATE bootcamps SET average_cost = $1 WHERE id = $2`, cost, id)
	return mapError(err)
}

func (r *BootcampRepository) query(ctx context.Context, sql string, args ...any) ([]entity.Bootcamp, error) {
	rows, err := r.pool.Query(ctx, sql, args...)
	if err != nil {
		return nil, mapError(err)
	}
	defer rows.Close()

	out := []entity.Bootcamp{}
	for rows.Next() {
		b, err := scanBootcamp(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *b)
	}
	return out, mapError(rows.Err())
}

func (r *BootcampRepository) populateCourses(ctx context.Context, bootcamps []entity.Bootcamp) error {
	ids := make([]string, len(bootcamps))
	for i := range bootcamps {
		ids[i] = bootcamps[i].ID
	}
	courses, err := queryCourses(ctx, r.pool, `
		SELECT `+courseColumns+`
		FROM courses c JOIN bootcamps b ON b.id = c.bootcamp_id
		WHERE c.bootcamp_id::text = ANY($1)
		ORDER BY c.created_at, c.id
	`, ids)
	if err != nil {
		return err
	}
	byBootcamp := make(map[string][]entity.Course, len(bootcamps))
	for _, c := range courses {
		c.Bootcamp = nil
		byBootcamp[c.BootcampID] = append(byBootcamp[c.BootcampID], c)
	}
	for i := range bootcamps {
		bootcamps[i].Courses = byBootcamp[bootcamps[i].ID]
		if bootcamps[i].Courses == nil {
			bootcamps[i].Courses = []entity.Course{}
		}
	}
	return nil
}

var _ repository.BootcampRepository = (*BootcampRepository)(nil)
