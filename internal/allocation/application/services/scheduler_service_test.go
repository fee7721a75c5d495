package services

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taskpilot/taskpilot/internal/allocation/domain"
)

func schedulerFixture(items map[int64][]domain.WorkItem, blocks map[int64][]domain.UnavailableBlock) (*SchedulerService, *stubScheduleRepo) {
	repo := newStubScheduleRepo()
	svc := NewSchedulerService(
		&stubWorkItemRepo{items: items},
		&stubUnavailableRepo{blocks: blocks},
		repo,
		domain.DefaultSchedulerConfig(),
		nil,
	)
	return svc, repo
}

func TestSchedulerService_BuildsFromOpenItems(t *testing.T) {
	items := map[int64][]domain.WorkItem{
		1: {{
			Key: domain.ItemKey{Kind: domain.KindAssigned, ID: 5}, PersonID: 1,
			Name: "audit", EstimatedHours: 20, Status: domain.StatusAccepted,
		}},
	}

	svc, _ := schedulerFixture(items, nil)

	built, err := svc.Build(context.Background(), 1, monday, false)
	require.NoError(t, err)

	assert.Equal(t, int64(1), built.PersonID)
	assert.Len(t, built.Workdays, 14)
	require.NotEmpty(t, built.Entries)
	assert.InDelta(t, 8, built.Entries[0].Hours, 1e-9)

	var total float64
	for _, e := range built.Entries {
		total += e.Hours
	}
	assert.InDelta(t, 20, total, 1e-9)
}

func TestSchedulerService_UnavailableBlocksReduceCapacity(t *testing.T) {
	items := map[int64][]domain.WorkItem{
		1: {{
			Key: domain.ItemKey{Kind: domain.KindAssigned, ID: 5}, PersonID: 1,
			Name: "audit", EstimatedHours: 10, Status: domain.StatusAccepted,
		}},
	}
	blocks := map[int64][]domain.UnavailableBlock{
		1: {{PersonID: 1, Date: monday, StartTime: "09:00", EndTime: "12:00"}},
	}

	svc, _ := schedulerFixture(items, blocks)

	built, err := svc.Build(context.Background(), 1, monday, false)
	require.NoError(t, err)
	require.NotEmpty(t, built.Entries)
	assert.InDelta(t, 5, built.Entries[0].Hours, 1e-9, "first day loses 3h to the block")
}

func TestSchedulerService_CarriesLockedEntriesForward(t *testing.T) {
	items := map[int64][]domain.WorkItem{
		1: {{
			Key: domain.ItemKey{Kind: domain.KindAssigned, ID: 5}, PersonID: 1,
			Name: "audit", EstimatedHours: 11, Status: domain.StatusAccepted,
		}},
	}

	svc, repo := schedulerFixture(items, nil)

	first, err := svc.Build(context.Background(), 1, monday, false)
	require.NoError(t, err)

	schedule := domain.NewPersonSchedule(first, 8)
	pinned := schedule.Items()[0]
	require.Equal(t, 1, schedule.SetLocked([]uuid.UUID{pinned.ID}, true))
	require.NoError(t, repo.Replace(context.Background(), schedule))

	second, err := svc.Build(context.Background(), 1, monday, true)
	require.NoError(t, err)

	var locked []domain.ScheduleEntry
	var total float64
	for _, e := range second.Entries {
		total += e.Hours
		if e.Locked {
			locked = append(locked, e)
		}
	}
	require.Len(t, locked, 1)
	assert.Equal(t, pinned.Entry.Date, locked[0].Date)
	assert.InDelta(t, pinned.Entry.Hours, locked[0].Hours, 1e-9)
	assert.InDelta(t, 11, total, 1e-9, "locked hours count against the item's estimate")
}

func TestSchedulerService_NoPreviousScheduleIsFine(t *testing.T) {
	svc, _ := schedulerFixture(nil, nil)

	built, err := svc.Build(context.Background(), 1, monday, true)
	require.NoError(t, err)
	assert.Empty(t, built.Entries)
}
