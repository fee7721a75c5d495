package persistence

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taskpilot/taskpilot/internal/allocation/domain"
)

func setupLocalStore(t *testing.T) *SQLiteLocalStore {
	t.Helper()

	sqlDB, err := sql.Open("sqlite", ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = sqlDB.Close() })

	store, err := NewSQLiteLocalStore(sqlDB)
	require.NoError(t, err)
	return store
}

func TestSQLiteLocalStore_SelfTasks(t *testing.T) {
	store := setupLocalStore(t)
	ctx := context.Background()

	deadline := testMonday.AddDate(0, 0, 5)
	id, err := store.AddSelfTask(ctx, "write report", 6, &deadline, 7)
	require.NoError(t, err)
	require.NotZero(t, id)

	_, err = store.AddSelfTask(ctx, "review", 2, nil, 0)
	require.NoError(t, err)

	items, err := store.OpenItems(ctx, LocalPersonID)
	require.NoError(t, err)
	require.Len(t, items, 2)

	first := items[0]
	assert.Equal(t, domain.KindSelf, first.Key.Kind)
	assert.Equal(t, id, first.Key.ID)
	assert.Equal(t, "write report", first.Name)
	assert.Equal(t, 6.0, first.EstimatedHours)
	assert.Equal(t, 7, first.Importance)
	require.NotNil(t, first.Deadline)
	assert.Equal(t, domain.DayKey(deadline), domain.DayKey(*first.Deadline))
	assert.Nil(t, items[1].Deadline)

	require.NoError(t, store.CompleteSelfTask(ctx, id))
	items, err = store.OpenItems(ctx, LocalPersonID)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "review", items[0].Name)

	assert.ErrorIs(t, store.CompleteSelfTask(ctx, 999), domain.ErrTaskNotFound)
}

func TestSQLiteLocalStore_OpenItemsSince(t *testing.T) {
	store := setupLocalStore(t)
	ctx := context.Background()

	_, err := store.AddSelfTask(ctx, "write report", 6, nil, 0)
	require.NoError(t, err)

	count, err := store.OpenItemsSince(ctx, LocalPersonID, time.Now().Add(-time.Minute))
	require.NoError(t, err)
	assert.Equal(t, 1, count)

	count, err = store.OpenItemsSince(ctx, LocalPersonID, time.Now().Add(time.Minute))
	require.NoError(t, err)
	assert.Zero(t, count)
}

func TestSQLiteLocalStore_Blocks(t *testing.T) {
	store := setupLocalStore(t)
	ctx := context.Background()

	day := testMonday.AddDate(0, 0, 1)
	require.NoError(t, store.AddBlock(ctx, domain.UnavailableBlock{
		Date: day, StartTime: "09:00", EndTime: "12:00", Reason: "dentist",
	}))
	require.NoError(t, store.AddBlock(ctx, domain.UnavailableBlock{
		Date: day.AddDate(0, 0, 30), StartTime: "13:00", EndTime: "17:00",
	}))

	err := store.AddBlock(ctx, domain.UnavailableBlock{
		Date: day, StartTime: "12:00", EndTime: "09:00",
	})
	assert.Error(t, err, "inverted block must be rejected")

	blocks, err := store.Blocks(ctx, LocalPersonID, testMonday, testMonday.AddDate(0, 0, 7))
	require.NoError(t, err)
	require.Len(t, blocks, 1)
	assert.Equal(t, "dentist", blocks[0].Reason)
	assert.Equal(t, LocalPersonID, blocks[0].PersonID)

	count, err := store.BlocksSince(ctx, LocalPersonID, time.Now().Add(-time.Minute))
	require.NoError(t, err)
	assert.Equal(t, 2, count)
}
