package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/LovationAdmin/finance-tracker-api/models"

	"github.com/google/uuid"
	"github.com/lib/pq"
)

const (
	uniqueViolation           = "23505"
	checkViolation            = "23514"
	stringDataRightTruncated  = "22001"
	numericValueOutOfRange    = "22003"
	invalidTextRepresentation = "22P02"
)

func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == uniqueViolation
}

// isUUID reports whether id can be compared with a UUID column. Anything else
// cannot match a row, and Postgres would reject it with 22P02.
func isUUID(id string) bool {
	if len(id) != 36 {
		return false
	}
	_, err := uuid.Parse(id)
	return err == nil
}

// inputError maps data errors Postgres raises for values the services should
// already have rejected, so they still surface as client errors.
func inputError(err error) error {
	var pqErr *pq.Error
	if !errors.As(err, &pqErr) {
		return err
	}
	field := pqErr.Column
	if field == "" {
		field = "body"
	}
	switch pqErr.Code {
	case stringDataRightTruncated:
		return models.NewValidationError(field, "is too long")
	case numericValueOutOfRange, checkViolation:
		return models.NewValidationError(field, pqErr.Message)
	case invalidTextRepresentation:
		return models.ErrNotFound
	}
	return err
}

type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

// notFound maps sql.ErrNoRows onto the domain error.
func notFound(err error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return models.ErrNotFound
	}
	return err
}

// affectedOrNotFound turns a zero-row write into ErrNotFound.
func affectedOrNotFound(res sql.Result, err error) error {
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return models.ErrNotFound
	}
	return nil
}

// WithTransaction runs fn in a database transaction, rolling back on error.
func WithTransaction(ctx context.Context, db *sql.DB, fn func(tx *sql.Tx) error) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	if err := fn(tx); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			return fmt.Errorf("%w (rollback failed: %v)", err, rbErr)
		}
		return err
	}
	return tx.Commit()
}

type scanner interface {
	Scan(dest ...any) error
}
