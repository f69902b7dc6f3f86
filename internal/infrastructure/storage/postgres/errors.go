package postgres

import (
	"context"
	"errors"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"

	"custody/internal/core/apperror"
)

// PostgreSQL error codes the repositories react to.
const (
	pgUniqueViolation      = "23505"
	pgSerializationFailure = "40001"
	pgDeadlockDetected     = "40P01"
	pgLockNotAvailable     = "55P03"
	pgQueryCanceled        = "57014"
)

// uniqueConstraints maps constraint names to the entity/field reported to callers.
var uniqueConstraints = map[string][2]string{
	"invoices_number_key": {"invoice", "number"},
}

// ClassifyError maps driver errors onto the application error taxonomy.
// Errors that are already AppErrors, and errors it does not recognise, are returned unchanged.
func ClassifyError(err error) error {
	if err == nil {
		return nil
	}
	if _, ok := apperror.AsAppError(err); ok {
		return err
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch {
		case pgErr.Code == pgUniqueViolation:
			entity, field := pgErr.TableName, pgErr.ColumnName
			if known, ok := uniqueConstraints[pgErr.ConstraintName]; ok {
				entity, field = known[0], known[1]
			}
			return apperror.NewDuplicate(entity, field, "").
				WithDetail("constraint", pgErr.ConstraintName).
				WithCause(err)
		case pgErr.Code == pgSerializationFailure,
			pgErr.Code == pgDeadlockDetected,
			pgErr.Code == pgLockNotAvailable,
			pgErr.Code == pgQueryCanceled,
			strings.HasPrefix(pgErr.Code, "08"), // connection exception
			strings.HasPrefix(pgErr.Code, "53"), // insufficient resources
			strings.HasPrefix(pgErr.Code, "57P"): // operator intervention
			return apperror.NewStorageUnavailable(err)
		}
		return err
	}

	var connectErr *pgconn.ConnectError
	if errors.As(err, &connectErr) ||
		pgconn.Timeout(err) ||
		pgconn.SafeToRetry(err) ||
		errors.Is(err, context.DeadlineExceeded) {
		return apperror.NewStorageUnavailable(err)
	}

	return err
}
