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

var testMonday = time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)

func setupSQLiteScheduleRepo(t *testing.T) *SQLiteScheduleRepository {
	t.Helper()

	sqlDB, err := sql.Open("sqlite", ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = sqlDB.Close() })

	repo, err := NewSQLiteScheduleRepository(sqlDB)
	require.NoError(t, err)
	return repo
}

func buildTestSchedule(t *testing.T, personID int64, hours float64) *domain.PersonSchedule {
	t.Helper()

	deadline := testMonday.AddDate(0, 0, 10)
	built := domain.BuildSchedule(domain.ScheduleInput{
		PersonID: personID,
		Items: []domain.WorkItem{{
			Key:            domain.ItemKey{Kind: domain.KindAssigned, ID: 7},
			PersonID:       personID,
			Name:           "migration",
			EstimatedHours: hours,
			Status:         domain.StatusAccepted,
			Deadline:       &deadline,
		}},
		Today:  testMonday,
		Config: domain.DefaultSchedulerConfig(),
	})
	schedule := domain.NewPersonSchedule(built, 8)
	schedule.ClearDomainEvents()
	return schedule
}

func TestSQLiteScheduleRepository_ReplaceAndLatest(t *testing.T) {
	repo := setupSQLiteScheduleRepo(t)
	ctx := context.Background()

	schedule := buildTestSchedule(t, 1, 12)
	require.NoError(t, repo.Replace(ctx, schedule))

	found, err := repo.Latest(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, schedule.ID(), found.ID())
	assert.Equal(t, int64(1), found.PersonID())
	assert.Equal(t, 8.0, found.DailyHours())
	require.Len(t, found.Items(), len(schedule.Items()))

	for i, item := range found.Items() {
		want := schedule.Items()[i]
		assert.Equal(t, want.ID, item.ID)
		assert.Equal(t, want.Entry.Key, item.Entry.Key)
		assert.Equal(t, want.Entry.Name, item.Entry.Name)
		assert.Equal(t, want.Entry.Hours, item.Entry.Hours)
		assert.True(t, want.Entry.Date.Equal(item.Entry.Date))
		require.NotNil(t, item.Entry.Deadline)
		assert.Equal(t, domain.DayKey(*want.Entry.Deadline), domain.DayKey(*item.Entry.Deadline))
	}
}

func TestSQLiteScheduleRepository_ReplaceDiscardsPrevious(t *testing.T) {
	repo := setupSQLiteScheduleRepo(t)
	ctx := context.Background()

	first := buildTestSchedule(t, 1, 4)
	require.NoError(t, repo.Replace(ctx, first))

	second := buildTestSchedule(t, 1, 16)
	require.NoError(t, repo.Replace(ctx, second))

	latest, err := repo.Latest(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, second.ID(), latest.ID())

	_, err = repo.FindByID(ctx, first.ID())
	assert.ErrorIs(t, err, domain.ErrScheduleNotFound)
}

func TestSQLiteScheduleRepository_ScopedToPerson(t *testing.T) {
	repo := setupSQLiteScheduleRepo(t)
	ctx := context.Background()

	mine := buildTestSchedule(t, 1, 8)
	theirs := buildTestSchedule(t, 2, 8)
	require.NoError(t, repo.Replace(ctx, mine))
	require.NoError(t, repo.Replace(ctx, theirs))

	found, err := repo.Latest(ctx, 2)
	require.NoError(t, err)
	assert.Equal(t, theirs.ID(), found.ID())

	found, err = repo.Latest(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, mine.ID(), found.ID())
}

func TestSQLiteScheduleRepository_SavePersistsLocks(t *testing.T) {
	repo := setupSQLiteScheduleRepo(t)
	ctx := context.Background()

	schedule := buildTestSchedule(t, 1, 16)
	require.NoError(t, repo.Replace(ctx, schedule))

	pinned := schedule.Items()[0].ID
	require.Equal(t, 1, schedule.SetLocked([]uuid.UUID{pinned}, true))
	require.NoError(t, repo.Save(ctx, schedule))

	found, err := repo.FindByID(ctx, schedule.ID())
	require.NoError(t, err)

	locked := found.LockedEntries()
	require.Len(t, locked, 1)
	assert.Equal(t, schedule.Items()[0].Entry.Hours, locked[0].Hours)

	for _, item := range found.Items() {
		assert.Equal(t, item.ID == pinned, item.Entry.Locked)
	}
}

func TestSQLiteScheduleRepository_SavePersistsAcceptance(t *testing.T) {
	repo := setupSQLiteScheduleRepo(t)
	ctx := context.Background()

	schedule := buildTestSchedule(t, 1, 8)
	require.NoError(t, repo.Replace(ctx, schedule))
	require.NoError(t, schedule.Accept())
	schedule.ClearDomainEvents()
	require.NoError(t, repo.Save(ctx, schedule))

	found, err := repo.FindByID(ctx, schedule.ID())
	require.NoError(t, err)
	assert.True(t, found.Accepted())
	require.NotNil(t, found.AcceptedAt())
	assert.Equal(t, *found.AcceptedAt(), found.BaselineTime())
}

func TestSQLiteScheduleRepository_LatestNotFound(t *testing.T) {
	repo := setupSQLiteScheduleRepo(t)

	_, err := repo.Latest(context.Background(), 99)
	assert.ErrorIs(t, err, domain.ErrScheduleNotFound)
}
