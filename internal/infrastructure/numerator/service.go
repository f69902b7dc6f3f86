// Package numerator provides durable implementations of invoice sequence allocation.
// This is the infrastructure layer - it implements core/numerator.Allocator interface.
package numerator

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"custody/internal/core/apperror"
	corenumerator "custody/internal/core/numerator"
	"custody/internal/infrastructure/storage/postgres"
)

var tracer = otel.Tracer("custody/numerator")

// Querier interface for database operations.
type Querier interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
}

const (
	allocateSQL = `
		INSERT INTO invoice_sequences (prefix, year, current_val)
		VALUES ($1, $2, 1)
		ON CONFLICT (prefix, year) DO UPDATE
			SET current_val = invoice_sequences.current_val + 1,
			    updated_at  = now()
		RETURNING current_val`

	seedSQL = `
		INSERT INTO invoice_sequences (prefix, year, current_val)
		VALUES ($1, $2, $3)
		ON CONFLICT (prefix, year) DO UPDATE
			SET current_val = GREATEST(invoice_sequences.current_val, EXCLUDED.current_val),
			    updated_at  = now()
		RETURNING current_val`

	syncSQL = `
		INSERT INTO invoice_sequences (prefix, year, current_val)
		SELECT split_part(number, '-', 1),
		       split_part(number, '-', 2)::int,
		       MAX(split_part(number, '-', 3)::bigint)
		FROM invoices
		WHERE number ~ '^(FA|AV)-[0-9]{4}-[0-9]{4,}$'
		GROUP BY 1, 2
		ON CONFLICT (prefix, year) DO UPDATE
			SET current_val = GREATEST(invoice_sequences.current_val, EXCLUDED.current_val),
			    updated_at  = now()`
)

// PostgresAllocator allocates sequence values with a single UPSERT + RETURNING.
// The upsert takes a row lock on the (prefix, year) row only, so callers on
// the same key queue behind each other and other keys proceed in parallel.
//
// When the querier resolves to the caller's transaction, the increment is
// committed or rolled back together with the invoice insert.
type PostgresAllocator struct {
	getQuerier    func(ctx context.Context) Querier
	transactional bool
	metrics       *instruments
}

// Ensure compile-time interface compliance.
var (
	_ corenumerator.Allocator = (*PostgresAllocator)(nil)
	_ corenumerator.Observer  = (*PostgresAllocator)(nil)
)

// New creates an allocator bound to a static querier.
// Use for tooling or testing scenarios.
func New(querier Querier) *PostgresAllocator {
	return &PostgresAllocator{
		getQuerier: func(context.Context) Querier { return querier },
		metrics:    newInstruments(),
	}
}

// NewWithTxManager creates an allocator that joins the transaction carried in ctx,
// falling back to the pool outside of one.
func NewWithTxManager(txm *postgres.TxManager) *PostgresAllocator {
	return &PostgresAllocator{
		getQuerier:    func(ctx context.Context) Querier { return txm.GetQuerier(ctx) },
		transactional: true,
		metrics:       newInstruments(),
	}
}

// Allocate returns the next value for key, creating the counter at 1 on first use.
func (a *PostgresAllocator) Allocate(ctx context.Context, key corenumerator.Key) (int64, error) {
	if err := key.Validate(); err != nil {
		return 0, err
	}

	ctx, span := tracer.Start(ctx, "numerator.allocate",
		trace.WithAttributes(
			attribute.String("sequence.prefix", key.Prefix),
			attribute.Int("sequence.year", key.Year),
			attribute.String("sequence.backend", "postgres"),
		))
	defer span.End()

	var num int64
	if err := a.getQuerier(ctx).QueryRow(ctx, allocateSQL, key.Prefix, key.Year).Scan(&num); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "allocate failed")
		return 0, apperror.NewStorageUnavailable(fmt.Errorf("allocate %s: %w", key, err))
	}

	span.SetAttributes(attribute.Int64("sequence.value", num))
	a.metrics.recordAllocation(ctx, key, "postgres")
	return num, nil
}

// Transactional reports whether allocations roll back with the caller's transaction.
func (a *PostgresAllocator) Transactional() bool { return a.transactional }

// Seed raises the counter of key to at least value (for migration purposes).
// A counter is never lowered; the effective value is returned.
func (a *PostgresAllocator) Seed(ctx context.Context, key corenumerator.Key, value int64) (int64, error) {
	if err := key.Validate(); err != nil {
		return 0, err
	}
	if value < 1 {
		return 0, apperror.NewValidation("seed value must be positive").WithDetail("value", value)
	}

	var current int64
	if err := a.getQuerier(ctx).QueryRow(ctx, seedSQL, key.Prefix, key.Year, value).Scan(&current); err != nil {
		return 0, apperror.NewStorageUnavailable(fmt.Errorf("seed %s: %w", key, err))
	}
	return current, nil
}

// Observe raises the counter of key past a caller-supplied sequence, inside the
// caller's transaction when there is one. Sequences below 1 hold no slot.
func (a *PostgresAllocator) Observe(ctx context.Context, key corenumerator.Key, sequence int64) error {
	if sequence < 1 {
		return nil
	}
	_, err := a.Seed(ctx, key, sequence)
	return err
}

// SyncFromInvoices raises every counter to the highest sequence already used by
// a stored invoice of the same prefix and year. Returns the number of counters touched.
func (a *PostgresAllocator) SyncFromInvoices(ctx context.Context) (int64, error) {
	tag, err := a.getQuerier(ctx).Exec(ctx, syncSQL)
	if err != nil {
		return 0, apperror.NewStorageUnavailable(fmt.Errorf("sync sequences: %w", err))
	}
	return tag.RowsAffected(), nil
}
