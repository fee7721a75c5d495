package persistence

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taskpilot/taskpilot/internal/allocation/domain"

	_ "modernc.org/sqlite"
)

func setupSQLiteSessionRepo(t *testing.T) *SQLiteWorkSessionRepository {
	t.Helper()

	sqlDB, err := sql.Open("sqlite", ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = sqlDB.Close() })

	repo, err := NewSQLiteWorkSessionRepository(sqlDB)
	require.NoError(t, err)
	return repo
}

func newTestSession(personID int64, itemID int64, name string, start time.Time) *domain.WorkSession {
	return domain.NewWorkSession(personID, uuid.New(),
		domain.ItemKey{Kind: domain.KindAssigned, ID: itemID}, name, start, 4, start)
}

func TestSQLiteWorkSessionRepository_RoundTrip(t *testing.T) {
	repo := setupSQLiteSessionRepo(t)
	ctx := context.Background()
	start := testMonday

	session := newTestSession(1, 7, "migration", start)
	require.NoError(t, repo.Create(ctx, session))
	require.NotZero(t, session.ID)

	require.NoError(t, session.Pause(start.Add(30*time.Minute), "standup"))
	require.NoError(t, repo.Update(ctx, session))
	require.NoError(t, session.Resume(start.Add(45*time.Minute)))
	require.NoError(t, repo.Update(ctx, session))

	loaded, err := repo.FindByID(ctx, session.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.SessionWorking, loaded.Status)
	assert.Equal(t, int64(1800), loaded.WorkedSeconds)
	assert.Equal(t, session.ScheduleItemID, loaded.ScheduleItemID)
	assert.Equal(t, "2026-03-02", domain.DayKey(loaded.Date))
	require.Len(t, loaded.Interruptions, 1)
	assert.Equal(t, "standup", loaded.Interruptions[0].Reason)
	require.NotNil(t, loaded.Interruptions[0].ResumedAt)
	assert.Equal(t, int64(900), loaded.Interruptions[0].DurationSeconds)
}

func TestSQLiteWorkSessionRepository_Lookups(t *testing.T) {
	repo := setupSQLiteSessionRepo(t)
	ctx := context.Background()
	start := testMonday

	working := newTestSession(1, 7, "migration", start)
	require.NoError(t, repo.Create(ctx, working))

	paused := newTestSession(1, 8, "audit", start.AddDate(0, 0, 1))
	require.NoError(t, paused.Pause(start.Add(time.Hour), "meeting"))
	require.NoError(t, repo.Create(ctx, paused))

	// Someone else's session never leaks in.
	other := newTestSession(2, 7, "migration", start)
	require.NoError(t, repo.Create(ctx, other))

	t.Run("find working", func(t *testing.T) {
		found, err := repo.FindWorking(ctx, 1)
		require.NoError(t, err)
		assert.Equal(t, working.ID, found.ID)
	})

	t.Run("open session for a row", func(t *testing.T) {
		found, err := repo.FindOpenForItem(ctx, 1,
			domain.ItemKey{Kind: domain.KindAssigned, ID: 8}, start.AddDate(0, 0, 1))
		require.NoError(t, err)
		assert.Equal(t, paused.ID, found.ID)
		assert.Equal(t, domain.SessionPaused, found.Status)

		_, err = repo.FindOpenForItem(ctx, 1,
			domain.ItemKey{Kind: domain.KindSelf, ID: 8}, start)
		assert.ErrorIs(t, err, domain.ErrSessionNotFound)
	})

	t.Run("completed rows drop out of open lookups", func(t *testing.T) {
		require.NoError(t, working.Complete(start.Add(2*time.Hour)))
		require.NoError(t, repo.Update(ctx, working))

		_, err := repo.FindWorking(ctx, 1)
		assert.ErrorIs(t, err, domain.ErrSessionNotFound)
		_, err = repo.FindOpenForItem(ctx, 1,
			domain.ItemKey{Kind: domain.KindAssigned, ID: 7}, start)
		assert.ErrorIs(t, err, domain.ErrSessionNotFound)
	})

	t.Run("for days", func(t *testing.T) {
		days := []time.Time{start, start.AddDate(0, 0, 1)}
		sessions, err := repo.ForDays(ctx, 1, days)
		require.NoError(t, err)
		require.Len(t, sessions, 2)

		sessions, err = repo.ForDays(ctx, 1, []time.Time{start.AddDate(0, 0, 5)})
		require.NoError(t, err)
		assert.Empty(t, sessions)
	})
}

func TestSQLiteWorkSessionRepository_History(t *testing.T) {
	repo := setupSQLiteSessionRepo(t)
	ctx := context.Background()
	start := testMonday

	done := newTestSession(1, 7, "migration", start)
	require.NoError(t, done.Complete(start.Add(time.Hour)))
	require.NoError(t, repo.Create(ctx, done))

	open := newTestSession(1, 8, "audit", start.AddDate(0, 0, 1))
	require.NoError(t, repo.Create(ctx, open))

	t.Run("newest day first", func(t *testing.T) {
		sessions, err := repo.History(ctx, 1, nil, "", 50)
		require.NoError(t, err)
		require.Len(t, sessions, 2)
		assert.Equal(t, open.ID, sessions[0].ID)
	})

	t.Run("status filter", func(t *testing.T) {
		sessions, err := repo.History(ctx, 1, nil, domain.SessionCompleted, 50)
		require.NoError(t, err)
		require.Len(t, sessions, 1)
		assert.Equal(t, done.ID, sessions[0].ID)
	})

	t.Run("day filter", func(t *testing.T) {
		day := start.AddDate(0, 0, 1)
		sessions, err := repo.History(ctx, 1, &day, "", 50)
		require.NoError(t, err)
		require.Len(t, sessions, 1)
		assert.Equal(t, open.ID, sessions[0].ID)
	})

	t.Run("limit", func(t *testing.T) {
		sessions, err := repo.History(ctx, 1, nil, "", 1)
		require.NoError(t, err)
		assert.Len(t, sessions, 1)
	})

	t.Run("unknown session id", func(t *testing.T) {
		_, err := repo.FindByID(ctx, 9999)
		assert.ErrorIs(t, err, domain.ErrSessionNotFound)
	})
}
