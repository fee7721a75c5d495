package persistence

import (
	"context"
	"database/sql"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	_ "modernc.org/sqlite"
)

func openTestDB(t *testing.T) *sql.DB {
	t.Helper()

	db, err := sql.Open("sqlite", ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	_, err = db.Exec(`CREATE TABLE marks (id INTEGER PRIMARY KEY, value TEXT)`)
	require.NoError(t, err)
	return db
}

func TestSQLiteUnitOfWork_CommitPersists(t *testing.T) {
	db := openTestDB(t)
	uow := NewSQLiteUnitOfWork(db)

	txCtx, err := uow.Begin(context.Background())
	require.NoError(t, err)

	info, ok := SQLiteTxInfoFromContext(txCtx)
	require.True(t, ok)
	assert.True(t, info.Owned)

	_, err = info.Tx.Exec(`INSERT INTO marks (value) VALUES ('kept')`)
	require.NoError(t, err)
	require.NoError(t, uow.Commit(txCtx))

	var count int
	require.NoError(t, db.QueryRow(`SELECT COUNT(*) FROM marks`).Scan(&count))
	assert.Equal(t, 1, count)
}

func TestSQLiteUnitOfWork_RollbackDiscards(t *testing.T) {
	db := openTestDB(t)
	uow := NewSQLiteUnitOfWork(db)

	txCtx, err := uow.Begin(context.Background())
	require.NoError(t, err)

	info, _ := SQLiteTxInfoFromContext(txCtx)
	_, err = info.Tx.Exec(`INSERT INTO marks (value) VALUES ('dropped')`)
	require.NoError(t, err)
	require.NoError(t, uow.Rollback(txCtx))

	var count int
	require.NoError(t, db.QueryRow(`SELECT COUNT(*) FROM marks`).Scan(&count))
	assert.Zero(t, count)
}

func TestSQLiteUnitOfWork_NestedScopeJoins(t *testing.T) {
	db := openTestDB(t)
	uow := NewSQLiteUnitOfWork(db)

	outer, err := uow.Begin(context.Background())
	require.NoError(t, err)

	inner, err := uow.Begin(outer)
	require.NoError(t, err)

	info, ok := SQLiteTxInfoFromContext(inner)
	require.True(t, ok)
	assert.False(t, info.Owned)

	// Inner commit is a no-op; the outer owner decides.
	require.NoError(t, uow.Commit(inner))
	require.NoError(t, uow.Rollback(outer))
}

func TestSQLiteUnitOfWork_NoTransaction(t *testing.T) {
	uow := NewSQLiteUnitOfWork(openTestDB(t))
	assert.Error(t, uow.Commit(context.Background()))
	assert.Error(t, uow.Rollback(context.Background()))
}
