package postgres

import (
	"context"
	_ "embed"
	"fmt"

	"custody/pkg/logger"
)

//go:embed schema.sql
var schemaSQL string

// Schema returns the DDL applied by Migrate.
func Schema() string {
	return schemaSQL
}

// Migrate applies the schema. Every statement is idempotent, so it is safe to run on each deploy.
func Migrate(ctx context.Context, q Querier) error {
	// No arguments: pgx sends the script over the simple protocol, which accepts several statements.
	if _, err := q.Exec(ctx, schemaSQL); err != nil {
		return ClassifyError(fmt.Errorf("apply schema: %w", err))
	}
	logger.Info(ctx, "database schema applied")
	return nil
}
