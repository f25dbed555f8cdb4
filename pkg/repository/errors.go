package repository

import (
	"database/sql"
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
)

const (
	pgDuplicateKeyCode      = "23505"
	pgInvalidTextRepr       = "22P02"
	pgNumericOutOfRangeCode = "22003"
)

// MapError translates database errors to domain errors.
// sql.ErrNoRows maps to notFoundErr, a unique violation (23505) to duplicateErr,
// and malformed or out-of-range input (22P02, 22003) to invalidErr.
// A nil target leaves that class of error unchanged. Other errors are returned unchanged.
func MapError(err error, notFoundErr, duplicateErr, invalidErr error) error {
	if err == nil {
		return nil
	}

	if errors.Is(err, sql.ErrNoRows) && notFoundErr != nil {
		return notFoundErr
	}

	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return err
	}

	switch {
	case pgErr.Code == pgDuplicateKeyCode && duplicateErr != nil:
		return duplicateErr
	case (pgErr.Code == pgInvalidTextRepr || pgErr.Code == pgNumericOutOfRangeCode) && invalidErr != nil:
		return invalidErr
	}

	return err
}
