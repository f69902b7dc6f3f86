// Package catalog_repo provides PostgreSQL lookups for the reference data invoices point at.
package catalog_repo

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"

	"custody/internal/core/id"
	"custody/internal/domain/documents/invoice"
	"custody/internal/infrastructure/storage/postgres"
)

const (
	clientsTable  = "clients"
	projectsTable = "projects"
)

// Compile-time check that ReferenceRepo implements invoice.ReferenceChecker.
var _ invoice.ReferenceChecker = (*ReferenceRepo)(nil)

// ReferenceRepo answers existence checks against one reference table.
// Rows are owned by other services; this repository never writes.
type ReferenceRepo struct {
	txm       *postgres.TxManager
	tableName string
}

// NewClientRepo creates a lookup over clients.
func NewClientRepo(txm *postgres.TxManager) *ReferenceRepo {
	return &ReferenceRepo{txm: txm, tableName: clientsTable}
}

// NewProjectRepo creates a lookup over projects.
func NewProjectRepo(txm *postgres.TxManager) *ReferenceRepo {
	return &ReferenceRepo{txm: txm, tableName: projectsTable}
}

// Builder returns a new squirrel builder with PostgreSQL placeholder format.
func (r *ReferenceRepo) Builder() squirrel.StatementBuilderType {
	return squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
}

func (r *ReferenceRepo) existsQuery(refID id.ID) squirrel.SelectBuilder {
	inner := squirrel.Select("1").From(r.tableName).Where(squirrel.Eq{"id": refID})
	return r.Builder().Select().Column(squirrel.Expr("EXISTS (?)", inner))
}

// Exists reports whether a row with refID is present.
func (r *ReferenceRepo) Exists(ctx context.Context, refID id.ID) (bool, error) {
	sql, args, err := r.existsQuery(refID).ToSql()
	if err != nil {
		return false, fmt.Errorf("build exists: %w", err)
	}

	var found bool
	querier := r.txm.GetQuerier(ctx)
	if err := querier.QueryRow(ctx, sql, args...).Scan(&found); err != nil {
		return false, postgres.ClassifyError(fmt.Errorf("exists %s: %w", r.tableName, err))
	}
	return found, nil
}
