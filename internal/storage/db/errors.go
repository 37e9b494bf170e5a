package db

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// SQLSTATE codes the repositories translate into domain errors.
const (
	uniqueViolation     = "23505"
	foreignKeyViolation = "23503"
	checkViolation      = "23514"
)

// IsNoRows reports whether err is pgx's "no rows in result set".
func IsNoRows(err error) bool {
	return errors.Is(err, pgx.ErrNoRows)
}

// IsUniqueViolation reports whether err is a unique constraint violation and returns the constraint name.
func IsUniqueViolation(err error) (string, bool) {
	return constraintViolation(err, uniqueViolation)
}

// IsForeignKeyViolation reports whether err is a foreign key violation and returns the constraint name.
func IsForeignKeyViolation(err error) (string, bool) {
	return constraintViolation(err, foreignKeyViolation)
}

// IsCheckViolation reports whether err is a CHECK constraint violation and returns the constraint name.
func IsCheckViolation(err error) (string, bool) {
	return constraintViolation(err, checkViolation)
}

// IsUnavailable reports whether err comes from the transport or a deadline rather than from
// the statement itself: anything that is not a server-side *pgconn.PgError.
func IsUnavailable(err error) bool {
	if err == nil || IsNoRows(err) {
		return false
	}
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return true
	}
	var pgErr *pgconn.PgError
	return !errors.As(err, &pgErr)
}

func constraintViolation(err error, code string) (string, bool) {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == code {
		return pgErr.ConstraintName, true
	}
	return "", false
}
