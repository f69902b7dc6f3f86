package postgres

import (
	"context"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"custody/internal/core/apperror"
)

// fakeTx records what the manager does with it. Unused pgx.Tx methods panic via the nil embed.
type fakeTx struct {
	pgx.Tx
	execs      []string
	committed  bool
	rolledBack bool
	commitErr  error
}

func (f *fakeTx) Exec(_ context.Context, sql string, _ ...any) (pgconn.CommandTag, error) {
	f.execs = append(f.execs, sql)
	return pgconn.CommandTag{}, nil
}

func (f *fakeTx) Commit(context.Context) error {
	f.committed = true
	return f.commitErr
}

func (f *fakeTx) Rollback(context.Context) error {
	f.rolledBack = true
	return nil
}

type fakeDB struct {
	Querier
	tx       *fakeTx
	begins   int
	beginErr error
}

func (f *fakeDB) BeginTx(context.Context, pgx.TxOptions) (pgx.Tx, error) {
	f.begins++
	if f.beginErr != nil {
		return nil, f.beginErr
	}
	return f.tx, nil
}

func newFakeManager() (*TxManager, *fakeDB) {
	db := &fakeDB{tx: &fakeTx{}}
	return &TxManager{db: db, opts: DefaultTxOptions()}, db
}

func TestRunInTransaction_CommitsAndExposesTx(t *testing.T) {
	m, db := newFakeManager()

	err := m.RunInTransaction(context.Background(), func(ctx context.Context) error {
		assert.Same(t, db.tx, m.GetQuerier(ctx))
		return nil
	})

	require.NoError(t, err)
	assert.True(t, db.tx.committed)
	assert.False(t, db.tx.rolledBack)
	assert.Equal(t, []string{
		"SET LOCAL statement_timeout = 30000",
		"SET LOCAL lock_timeout = 5000",
	}, db.tx.execs)
}

func TestRunInTransaction_RollsBackOnError(t *testing.T) {
	m, db := newFakeManager()
	boom := apperror.NewValidation("bad")

	err := m.RunInTransaction(context.Background(), func(context.Context) error { return boom })

	assert.Same(t, boom, err)
	assert.True(t, db.tx.rolledBack)
	assert.False(t, db.tx.committed)
}

func TestRunInTransaction_NestedCallsJoin(t *testing.T) {
	m, db := newFakeManager()

	err := m.RunInTransaction(context.Background(), func(ctx context.Context) error {
		return m.RunInTransaction(ctx, func(ctx context.Context) error {
			assert.Same(t, db.tx, m.GetTx(ctx))
			return nil
		})
	})

	require.NoError(t, err)
	assert.Equal(t, 1, db.begins)
}

func TestRunInTransaction_BeginFailureIsRetryable(t *testing.T) {
	m, db := newFakeManager()
	db.beginErr = context.DeadlineExceeded

	called := false
	err := m.RunInTransaction(context.Background(), func(context.Context) error {
		called = true
		return nil
	})

	assert.False(t, called)
	assert.True(t, apperror.IsRetryable(err))
}

func TestRunInTransaction_SerializationFailureOnCommit(t *testing.T) {
	m, db := newFakeManager()
	db.tx.commitErr = &pgconn.PgError{Code: "40001"}

	err := m.RunInTransaction(context.Background(), func(context.Context) error { return nil })

	assert.True(t, apperror.IsCode(err, apperror.CodeStorageUnavailable))
}

func TestGetQuerier_OutsideTransactionUsesPool(t *testing.T) {
	m, db := newFakeManager()

	assert.Same(t, db, m.GetQuerier(context.Background()))
	assert.Nil(t, m.GetTx(context.Background()))
}
