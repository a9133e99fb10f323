package postgres

import (
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/oksasatya/bootcamp-directory/internal/domain/repository"
	"github.com/oksasatya/bootcamp-directory/pkg/apperror"
)

const (
	uniqueViolation     = "23505"
	foreignKeyViolation = "23503"
)

// mapError converts driver errors into repository and application errors.
func mapError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, pgx.ErrNoRows) {
		return repository.ErrNotFound
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case uniqueViolation:
			return &apperror.Error{Kind: apperror.KindValidation, Message: "Duplicate field value entered", Err: err}
		case foreignKeyViolation:
			return &apperror.Error{Kind: apperror.KindNotFound, Message: "Referenced resource not found", Err: err}
		}
	}
	return err
}

// validID reports whether id can be a primary key; anything else cannot exist.
func validID(id string) bool {
	_, err := uuid.Parse(id)
	return err == nil
}
