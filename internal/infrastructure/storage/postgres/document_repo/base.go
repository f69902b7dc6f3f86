// Package document_repo provides PostgreSQL implementations for document repositories.
package document_repo

import (
	"context"
	"errors"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"
	"github.com/jackc/pgx/v5/pgconn"

	"custody/internal/core/apperror"
	"custody/internal/core/id"
	"custody/internal/infrastructure/storage/postgres"
)

var errNoColumns = errors.New("entity exposes no db columns")

// BaseDocumentRepo maps a document aggregate onto one table.
// Every statement runs on the transaction carried in ctx when there is one.
type BaseDocumentRepo[T any] struct {
	txm        *postgres.TxManager
	tableName  string
	entityName string
	selectCols []string
	newFn      func() T
}

func NewBaseDocumentRepo[T any](
	txm *postgres.TxManager,
	tableName string,
	entityName string,
	selectCols []string,
	newFn func() T,
) *BaseDocumentRepo[T] {
	return &BaseDocumentRepo[T]{
		txm:        txm,
		tableName:  tableName,
		entityName: entityName,
		selectCols: selectCols,
		newFn:      newFn,
	}
}

func (r *BaseDocumentRepo[T]) querier(ctx context.Context) postgres.Querier {
	return r.txm.GetQuerier(ctx)
}

// Builder returns a squirrel builder using $n placeholders.
func (r *BaseDocumentRepo[T]) Builder() squirrel.StatementBuilderType {
	return squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
}

// columnValues returns the entity's values for the table's columns minus skip.
func (r *BaseDocumentRepo[T]) columnValues(entity T, skip ...string) (map[string]any, error) {
	data := postgres.StructToMap(entity)
	if len(data) == 0 {
		return nil, errNoColumns
	}

	values := make(map[string]any, len(r.selectCols))
next:
	for _, col := range r.selectCols {
		for _, s := range skip {
			if s == col {
				continue next
			}
		}
		if v, ok := data[col]; ok {
			values[col] = v
		}
	}
	return values, nil
}

func (r *BaseDocumentRepo[T]) insertQuery(entity T) (squirrel.InsertBuilder, error) {
	values, err := r.columnValues(entity)
	if err != nil {
		return squirrel.InsertBuilder{}, err
	}
	return r.Builder().Insert(r.tableName).SetMap(values), nil
}

// updateQuery builds an UPDATE guarded by the optimistic lock: the entity
// already carries the bumped version, so the stored row must hold version-1.
func (r *BaseDocumentRepo[T]) updateQuery(entity T) (squirrel.UpdateBuilder, any, error) {
	data := postgres.StructToMap(entity)
	entityID, hasID := data["id"]
	version, hasVersion := data["version"].(int)
	if !hasID || !hasVersion {
		return squirrel.UpdateBuilder{}, nil, fmt.Errorf("%s: id and int version columns are required", r.entityName)
	}

	values, err := r.columnValues(entity, "id", "created_at")
	if err != nil {
		return squirrel.UpdateBuilder{}, nil, err
	}

	q := r.Builder().
		Update(r.tableName).
		SetMap(values).
		Where(squirrel.Eq{"id": entityID}).
		Where(squirrel.Eq{"version": version - 1})
	return q, entityID, nil
}

// exec runs a write statement; op names it in wrapped errors.
func (r *BaseDocumentRepo[T]) exec(ctx context.Context, q squirrel.Sqlizer, op string) (pgconn.CommandTag, error) {
	sql, args, err := q.ToSql()
	if err != nil {
		return pgconn.CommandTag{}, fmt.Errorf("build %s: %w", op, err)
	}
	tag, err := r.querier(ctx).Exec(ctx, sql, args...)
	if err != nil {
		return tag, postgres.ClassifyError(fmt.Errorf("%s %s: %w", op, r.tableName, err))
	}
	return tag, nil
}

// Create inserts a new document row.
func (r *BaseDocumentRepo[T]) Create(ctx context.Context, entity T) error {
	q, err := r.insertQuery(entity)
	if err != nil {
		return err
	}
	_, err = r.exec(ctx, q, "insert")
	return err
}

// Update writes the entity back. A stale version yields CONCURRENT_MODIFICATION.
func (r *BaseDocumentRepo[T]) Update(ctx context.Context, entity T) error {
	q, entityID, err := r.updateQuery(entity)
	if err != nil {
		return err
	}
	tag, err := r.exec(ctx, q, "update")
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return apperror.NewConcurrentModification(r.entityName, entityID)
	}
	return nil
}

// Delete removes a document. Child rows go with it through ON DELETE CASCADE.
func (r *BaseDocumentRepo[T]) Delete(ctx context.Context, entityID id.ID) error {
	tag, err := r.exec(ctx, r.Builder().Delete(r.tableName).Where(squirrel.Eq{"id": entityID}), "delete")
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return apperror.NewNotFound(r.entityName, entityID.String())
	}
	return nil
}

func (r *BaseDocumentRepo[T]) baseSelect() squirrel.SelectBuilder {
	return r.Builder().Select(r.selectCols...).From(r.tableName)
}

// byIDQuery selects one row by id, optionally taking a row lock.
func (r *BaseDocumentRepo[T]) byIDQuery(entityID id.ID, lock bool) squirrel.SelectBuilder {
	q := r.baseSelect().Where(squirrel.Eq{"id": entityID})
	if lock {
		q = q.Suffix("FOR UPDATE")
	}
	return q
}

// getOne scans a single row; key identifies it in NOT_FOUND errors.
func (r *BaseDocumentRepo[T]) getOne(ctx context.Context, q squirrel.SelectBuilder, key string) (T, error) {
	entity := r.newFn()

	sql, args, err := q.ToSql()
	if err != nil {
		return entity, fmt.Errorf("build select: %w", err)
	}
	if err := pgxscan.Get(ctx, r.querier(ctx), entity, sql, args...); err != nil {
		if pgxscan.NotFound(err) {
			return entity, apperror.NewNotFound(r.entityName, key)
		}
		return entity, postgres.ClassifyError(fmt.Errorf("get %s: %w", r.tableName, err))
	}
	return entity, nil
}

func (r *BaseDocumentRepo[T]) GetByID(ctx context.Context, entityID id.ID) (T, error) {
	return r.getOne(ctx, r.byIDQuery(entityID, false), entityID.String())
}

func (r *BaseDocumentRepo[T]) GetByNumber(ctx context.Context, number string) (T, error) {
	return r.getOne(ctx, r.baseSelect().Where(squirrel.Eq{"number": number}), number)
}

// GetForUpdate reads the row under FOR UPDATE; ctx must carry a transaction.
func (r *BaseDocumentRepo[T]) GetForUpdate(ctx context.Context, entityID id.ID) (T, error) {
	return r.getOne(ctx, r.byIDQuery(entityID, true), entityID.String())
}

// existsQuery builds SELECT EXISTS over rows matching pred.
func (r *BaseDocumentRepo[T]) existsQuery(pred squirrel.Sqlizer) squirrel.SelectBuilder {
	// The subquery keeps '?' placeholders; the outer builder numbers them.
	inner := squirrel.Select("1").From(r.tableName).Where(pred)
	return r.Builder().Select().Column(squirrel.Expr("EXISTS (?)", inner))
}

func (r *BaseDocumentRepo[T]) exists(ctx context.Context, pred squirrel.Sqlizer) (bool, error) {
	sql, args, err := r.existsQuery(pred).ToSql()
	if err != nil {
		return false, fmt.Errorf("build exists: %w", err)
	}

	var found bool
	if err := r.querier(ctx).QueryRow(ctx, sql, args...).Scan(&found); err != nil {
		return false, postgres.ClassifyError(fmt.Errorf("exists %s: %w", r.tableName, err))
	}
	return found, nil
}
