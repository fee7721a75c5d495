package persistence

import (
	"context"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeTx struct {
	committed  bool
	rolledBack bool
}

func (f *fakeTx) Begin(_ context.Context) (pgx.Tx, error) { return f, nil }
func (f *fakeTx) Commit(_ context.Context) error          { f.committed = true; return nil }
func (f *fakeTx) Rollback(_ context.Context) error        { f.rolledBack = true; return nil }
func (f *fakeTx) CopyFrom(_ context.Context, _ pgx.Identifier, _ []string, _ pgx.CopyFromSource) (int64, error) {
	return 0, nil
}
func (f *fakeTx) SendBatch(_ context.Context, _ *pgx.Batch) pgx.BatchResults { return nil }
func (f *fakeTx) LargeObjects() pgx.LargeObjects                             { return pgx.LargeObjects{} }
func (f *fakeTx) Prepare(_ context.Context, _, _ string) (*pgconn.StatementDescription, error) {
	return nil, nil
}
func (f *fakeTx) Exec(_ context.Context, _ string, _ ...any) (pgconn.CommandTag, error) {
	return pgconn.CommandTag{}, nil
}
func (f *fakeTx) Query(_ context.Context, _ string, _ ...any) (pgx.Rows, error) { return nil, nil }
func (f *fakeTx) QueryRow(_ context.Context, _ string, _ ...any) pgx.Row        { return nil }
func (f *fakeTx) Conn() *pgx.Conn                                               { return nil }

func TestTxContextRoundTrip(t *testing.T) {
	tx := &fakeTx{}
	ctx := WithTx(context.Background(), tx, true)

	info, ok := TxInfoFromContext(ctx)
	require.True(t, ok)
	assert.Same(t, tx, info.Tx)
	assert.True(t, info.Owned)
}

func TestTxInfoFromContext_Empty(t *testing.T) {
	_, ok := TxInfoFromContext(context.Background())
	assert.False(t, ok)
}

func TestPostgresUnitOfWork_JoinedScopeDoesNotCommit(t *testing.T) {
	tx := &fakeTx{}
	outer := WithTx(context.Background(), tx, true)

	uow := NewPostgresUnitOfWork(nil)
	inner, err := uow.Begin(outer)
	require.NoError(t, err)

	info, ok := TxInfoFromContext(inner)
	require.True(t, ok)
	assert.Same(t, tx, info.Tx)
	assert.False(t, info.Owned)

	require.NoError(t, uow.Commit(inner))
	assert.False(t, tx.committed, "joined scope must not commit the outer tx")

	require.NoError(t, uow.Rollback(inner))
	assert.False(t, tx.rolledBack)
}

func TestPostgresUnitOfWork_OwnedScopeCommits(t *testing.T) {
	tx := &fakeTx{}
	ctx := WithTx(context.Background(), tx, true)

	uow := NewPostgresUnitOfWork(nil)
	require.NoError(t, uow.Commit(ctx))
	assert.True(t, tx.committed)
}

func TestPostgresUnitOfWork_NoTransaction(t *testing.T) {
	uow := NewPostgresUnitOfWork(nil)
	assert.Error(t, uow.Commit(context.Background()))
	assert.Error(t, uow.Rollback(context.Background()))
}
