package postgres

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/oksasatya/bootcamp-directory/internal/domain/entity"
	"github.com/oksasatya/bootcamp-directory/internal/domain/query"
	"github.com/oksasatya/bootcamp-directory/internal/domain/repository"
)

const userColumns = `u.id::text, u.name, u.email, u.role, u.password_hash,
	u.reset_password_token, u.reset_password_expire, u.created_at`

var userSchema = schema{
	"id":        {expr: "u.id::text", kind: kindText},
	"name":      {expr: "u.name", kind: kindText},
	"email":     {expr: "u.email", kind: kindText},
	"role":      {expr: "u.role", kind: kindText},
	"createdAt": {expr: "u.created_at", kind: kindTime},
}

// scanner is satisfied by pgx.Row and pgx.Rows.
type scanner interface {
	Scan(dest ...any) error
}

type UserRepository struct {
	pool *pgxpool.Pool
}

func NewUserRepository(pool *pgxpool.Pool) *UserRepository {
	return &UserRepository{pool: pool}
}

func scanUser(row scanner) (*entity.User, error) {
	u := &entity.User{}
	var role string
	if err := row.Scan(&u.ID, &u.Name, &u.Email, &role, &u.Password,
		&u.ResetPasswordToken, &u.ResetPasswordExpire, &u.CreatedAt); err != nil {
		return nil, mapError(err)
	}
	u.Role = entity.Role(role)
	return u, nil
}

func (r *UserRepository) Create(ctx context.Context, u *entity.User) error {
	row := r.pool.QueryRow(ctx, `
		INSERT INTO users (name, email, role, password_hash)
		VALUES ($1, $2, $3, $4)
		RETURNING id::text, created_at
	`, u.Name, u.Email, string(u.Role), u.Password)

	return mapError(row.Scan(&u.ID, &u.CreatedAt))
}

func (r *UserRepository) GetByID(ctx context.Context, id string) (*entity.User, error) {
	if !validID(id) {
		return nil, repository.ErrNotFound
	}
	return scanUser(r.pool.QueryRow(ctx, `SELECT `+userColumns+` FROM users u WHERE u.id = $1`, id))
}

func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*entity.User, error) {
	return scanUser(r.pool.QueryRow(ctx, `SELECT `+userColumns+` FROM users u WHERE u.email = $1`, email))
}

func (r *UserRepository) GetByResetToken(ctx context.Context, hashed string, now time.Time) (*entity.User, error) {
	return scanUser(r.pool.QueryRow(ctx, `
		SELECT `+userColumns+`
		FROM users u
		WHERE u.reset_password_token = $1 AND u.reset_password_expire > $2
	`, hashed, now))
}

func (r *UserRepository) Update(ctx context.Context, u *entity.User) error {
	if !validID(u.ID) {
		return repository.ErrNotFound
	}
	res, err := r.pool.Exec(ctx, `
		UPDATE users
		SET name = $1, email = $2, role = $3, password_hash = $4,
		    reset_password_token = $5, reset_password_expire = $6
		WHERE id = $7
	`, u.Name, u.Email, string(u.Role), u.Password, u.ResetPasswordToken, u.ResetPasswordExpire, u.ID)
	if err != nil {
		return mapError(err)
	}
	if res.RowsAffected() == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func (r *UserRepository) Delete(ctx context.Context, id string) error {
	if !validID(id) {
		return repository.ErrNotFound
	}
	res, err := r.pool.Exec(ctx, `DELETE FROM users WHERE id = $1`, id)
	if err != nil {
		return mapError(err)
	}
	if res.RowsAffected() == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func (r *UserRepository) List(ctx context.Context, q query.Query) ([]entity.User, error) {
	sql, args, err := userSchema.listSQL(`SELECT `+userColumns+` FROM users u`, "u.id", q)
	if err != nil {
		return nil, err
	}
	rows, err := r.pool.Query(ctx, sql, args...)
	if err != nil {
		return nil, mapError(err)
	}
	defer rows.Close()

	var out []entity.User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *u)
	}
	return out, mapError(rows.Err())
}

func (r *UserRepository) Count(ctx context.Context, q query.Query) (int, error) {
	sql, args, err := userSchema.countSQL(`SELECT count(*) FROM users u`, q)
	if err != nil {
		return 0, err
	}
	return count(ctx, r.pool, sql, args)
}

func count(ctx context.Context, pool *pgxpool.Pool, sql string, args []any) (int, error) {
	var n int
	if err := pool.QueryRow(ctx, sql, args...).Scan(&n); err != nil {
		return 0, mapError(err)
	}
	return n, nil
}

var (
	_ repository.UserRepository = (*UserRepository)(nil)
	_ scanner                   = (pgx.Row)(nil)
)
