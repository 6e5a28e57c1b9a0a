package postgres

import (
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// pgErrorCode extracts the SQLSTATE code from a driver error chain, or ""
// when the error did not come from the server.
func pgErrorCode(err error) string {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code
	}
	return ""
}

// IsPgDuplicateError reports whether err is a unique constraint violation
// (SQLSTATE 23505).
func IsPgDuplicateError(err error) bool {
	return pgErrorCode(err) == "23505"
}

// IsPgNoRowsError reports whether a single-row query matched nothing.
func IsPgNoRowsError(err error) bool {
	return errors.Is(err, pgx.ErrNoRows)
}
