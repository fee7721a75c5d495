package queries

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taskpilot/taskpilot/internal/allocation/application/services"
	"github.com/taskpilot/taskpilot/internal/allocation/domain"
)

var monday = time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)

type stubWorkItems struct {
	items      []domain.WorkItem
	sinceCount int
}

func (s *stubWorkItems) OpenItems(ctx context.Context, personID int64) ([]domain.WorkItem, error) {
	return s.items, nil
}

func (s *stubWorkItems) OpenItemsSince(ctx context.Context, personID int64, since time.Time) (int, error) {
	return s.sinceCount, nil
}

type stubBlocks struct {
	blocks     []domain.UnavailableBlock
	sinceCount int
}

func (s *stubBlocks) Blocks(ctx context.Context, personID int64, from, to time.Time) ([]domain.UnavailableBlock, error) {
	return s.blocks, nil
}

func (s *stubBlocks) BlocksSince(ctx context.Context, personID int64, since time.Time) (int, error) {
	return s.sinceCount, nil
}

type stubPeople struct{ people []domain.Person }

func (s *stubPeople) FindByID(ctx context.Context, id int64) (domain.Person, error) {
	for _, p := range s.people {
		if p.ID == id {
			return p, nil
		}
	}
	return domain.Person{}, domain.ErrPersonNotFound
}

func (s *stubPeople) People(ctx context.Context, managerID string) ([]domain.Person, error) {
	return s.people, nil
}

type stubSchedules struct{ latest *domain.PersonSchedule }

func (s *stubSchedules) Replace(ctx context.Context, schedule *domain.PersonSchedule) error {
	s.latest = schedule
	return nil
}

func (s *stubSchedules) Latest(ctx context.Context, personID int64) (*domain.PersonSchedule, error) {
	if s.latest == nil {
		return nil, domain.ErrScheduleNotFound
	}
	return s.latest, nil
}

func (s *stubSchedules) FindByID(ctx context.Context, id uuid.UUID) (*domain.PersonSchedule, error) {
	if s.latest == nil || s.latest.ID() != id {
		return nil, domain.ErrScheduleNotFound
	}
	return s.latest, nil
}

func (s *stubSchedules) Save(ctx context.Context, schedule *domain.PersonSchedule) error {
	s.latest = schedule
	return nil
}

func builtSchedule() *domain.PersonSchedule {
	built := domain.BuildSchedule(domain.ScheduleInput{
		PersonID: 1,
		Items: []domain.WorkItem{{
			Key: domain.ItemKey{Kind: domain.KindAssigned, ID: 5}, PersonID: 1,
			Name: "audit", EstimatedHours: 12, Status: domain.StatusAccepted,
		}},
		Today:  monday,
		Config: domain.DefaultSchedulerConfig(),
	})
	s := domain.NewPersonSchedule(built, 8)
	s.ClearDomainEvents()
	return s
}

func workloadService(items *stubWorkItems, blocks *stubBlocks) *services.WorkloadService {
	return services.NewWorkloadService(items, blocks, nil, 8, nil)
}

func TestGetWorkloadHandler(t *testing.T) {
	deadline := monday.AddDate(0, 0, 4)
	items := &stubWorkItems{items: []domain.WorkItem{{
		Key: domain.ItemKey{Kind: domain.KindAssigned, ID: 9}, PersonID: 1,
		Name: "audit", EstimatedHours: 20, Deadline: &deadline,
		Origin: monday, Status: domain.StatusAccepted,
	}}}

	h := NewGetWorkloadHandler(workloadService(items, &stubBlocks{}))

	t.Run("defaults to the current week", func(t *testing.T) {
		report, err := h.Handle(context.Background(), GetWorkloadQuery{PersonID: 1, Today: monday})
		require.NoError(t, err)
		assert.Equal(t, "2026-03-02", domain.DayKey(report.WindowStart))
		assert.Equal(t, "2026-03-08", domain.DayKey(report.WindowEnd))
		assert.InDelta(t, 50, report.Ratio, 1e-9)
		assert.Equal(t, domain.LoadMedium, report.Level)
	})

	t.Run("explicit window wins", func(t *testing.T) {
		report, err := h.Handle(context.Background(), GetWorkloadQuery{
			PersonID:    1,
			WindowStart: monday.AddDate(0, 0, 7),
			WindowEnd:   monday.AddDate(0, 0, 13),
		})
		require.NoError(t, err)
		assert.Equal(t, "2026-03-09", domain.DayKey(report.WindowStart))
	})
}

func TestTeamWorkloadHandler(t *testing.T) {
	people := &stubPeople{people: []domain.Person{
		{ID: 1, Name: "Ada"},
		{ID: 2, Name: "Bo"},
	}}
	h := NewTeamWorkloadHandler(people, workloadService(&stubWorkItems{}, &stubBlocks{}))

	result, err := h.Handle(context.Background(), TeamWorkloadQuery{Today: monday})
	require.NoError(t, err)
	require.Len(t, result, 2)
	assert.Equal(t, "Ada", result[0].Person.Name)
	assert.Equal(t, domain.LoadLow, result[0].Report.Level)
}

func TestGetScheduleHandler(t *testing.T) {
	t.Run("maps stored schedule to DTO", func(t *testing.T) {
		schedules := &stubSchedules{latest: builtSchedule()}
		h := NewGetScheduleHandler(schedules)

		dto, err := h.Handle(context.Background(), GetScheduleQuery{PersonID: 1})
		require.NoError(t, err)
		assert.Equal(t, int64(1), dto.PersonID)
		assert.False(t, dto.Accepted)
		require.Len(t, dto.Items, 2)
		assert.Equal(t, "assigned", dto.Items[0].Kind)
		assert.Equal(t, int64(5), dto.Items[0].ItemID)
		assert.InDelta(t, 8, dto.Items[0].Hours, 1e-9)
	})

	t.Run("no schedule yet", func(t *testing.T) {
		h := NewGetScheduleHandler(&stubSchedules{})
		_, err := h.Handle(context.Background(), GetScheduleQuery{PersonID: 1})
		assert.ErrorIs(t, err, domain.ErrScheduleNotFound)
	})
}

func TestCheckScheduleUpdatesHandler(t *testing.T) {
	t.Run("fresh schedule is not stale", func(t *testing.T) {
		h := NewCheckScheduleUpdatesHandler(
			&stubSchedules{latest: builtSchedule()},
			&stubWorkItems{}, &stubBlocks{},
		)
		dto, err := h.Handle(context.Background(), CheckScheduleUpdatesQuery{PersonID: 1})
		require.NoError(t, err)
		assert.True(t, dto.HasSchedule)
		assert.False(t, dto.Stale)
	})

	t.Run("new items after baseline flag staleness", func(t *testing.T) {
		h := NewCheckScheduleUpdatesHandler(
			&stubSchedules{latest: builtSchedule()},
			&stubWorkItems{sinceCount: 2}, &stubBlocks{sinceCount: 1},
		)
		dto, err := h.Handle(context.Background(), CheckScheduleUpdatesQuery{PersonID: 1})
		require.NoError(t, err)
		assert.True(t, dto.Stale)
		assert.Equal(t, 2, dto.NewItems)
		assert.Equal(t, 1, dto.NewBlocks)
	})

	t.Run("acceptance moves the baseline", func(t *testing.T) {
		schedule := builtSchedule()
		require.NoError(t, schedule.Accept())
		schedule.ClearDomainEvents()

		h := NewCheckScheduleUpdatesHandler(
			&stubSchedules{latest: schedule},
			&stubWorkItems{}, &stubBlocks{},
		)
		dto, err := h.Handle(context.Background(), CheckScheduleUpdatesQuery{PersonID: 1})
		require.NoError(t, err)
		assert.Equal(t, *schedule.AcceptedAt(), dto.Baseline)
	})

	t.Run("no schedule means nothing to regenerate", func(t *testing.T) {
		h := NewCheckScheduleUpdatesHandler(&stubSchedules{}, &stubWorkItems{}, &stubBlocks{})
		dto, err := h.Handle(context.Background(), CheckScheduleUpdatesQuery{PersonID: 1})
		require.NoError(t, err)
		assert.False(t, dto.HasSchedule)
		assert.False(t, dto.Stale)
	})
}
