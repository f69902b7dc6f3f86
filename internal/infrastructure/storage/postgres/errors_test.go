package postgres

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"custody/internal/core/apperror"
)

func TestClassifyError_UniqueViolation(t *testing.T) {
	err := fmt.Errorf("insert invoices: %w", &pgconn.PgError{
		Code:           "23505",
		ConstraintName: "invoices_number_key",
		TableName:      "invoices",
	})

	classified := ClassifyError(err)
	appErr, ok := apperror.AsAppError(classified)
	require.True(t, ok)
	assert.Equal(t, apperror.CodeDuplicate, appErr.Code)
	assert.Equal(t, "invoice", appErr.Details["entity"])
	assert.Equal(t, "number", appErr.Details["field"])
}

func TestClassifyError_Retryable(t *testing.T) {
	for _, code := range []string{"40001", "40P01", "08006", "57P01", "53300"} {
		err := ClassifyError(&pgconn.PgError{Code: code})
		assert.True(t, apperror.IsRetryable(err), code)
	}

	assert.True(t, apperror.IsRetryable(ClassifyError(fmt.Errorf("query: %w", context.DeadlineExceeded))))
}

func TestClassifyError_PassThrough(t *testing.T) {
	assert.Nil(t, ClassifyError(nil))

	plain := errors.New("syntax error")
	assert.Same(t, plain, ClassifyError(plain))

	check := &pgconn.PgError{Code: "23514"}
	assert.Equal(t, error(check), ClassifyError(check))

	notFound := apperror.NewNotFound("invoice", "x")
	assert.Equal(t, error(notFound), ClassifyError(notFound))
}
