// Package services hosts the application-level orchestration around the
// pure allocation engine: fetching snapshots, caching, and run composition.
package services

import (
	"context"
	"log/slog"
	"time"

	"github.com/taskpilot/taskpilot/internal/allocation/domain"
)

// WorkloadService composes workload reports from persisted records. The
// computation itself stays in the domain; this service only fetches inputs
// and consults the optional snapshot cache.
type WorkloadService struct {
	items         domain.WorkItemRepository
	unavailable   domain.UnavailableRepository
	cache         SnapshotCache // nil disables caching
	dailyCapacity float64
	logger        *slog.Logger
}

// NewWorkloadService creates a workload service. cache may be nil.
func NewWorkloadService(
	items domain.WorkItemRepository,
	unavailable domain.UnavailableRepository,
	cache SnapshotCache,
	dailyCapacityHours float64,
	logger *slog.Logger,
) *WorkloadService {
	if logger == nil {
		logger = slog.Default()
	}
	if dailyCapacityHours <= 0 {
		dailyCapacityHours = domain.DefaultSchedulerConfig().DailyCapacityHours
	}
	return &WorkloadService{
		items:         items,
		unavailable:   unavailable,
		cache:         cache,
		dailyCapacity: dailyCapacityHours,
		logger:        logger,
	}
}

// WeekWindow returns the Monday-through-Sunday window containing today.
func WeekWindow(today time.Time) (time.Time, time.Time) {
	day := domain.DayOf(today)
	offset := (int(day.Weekday()) + 6) % 7 // Monday = 0
	start := day.AddDate(0, 0, -offset)
	return start, start.AddDate(0, 0, 6)
}

// Report computes (or returns the cached) workload report for one person
// and window. Cache failures degrade to a fresh computation.
func (s *WorkloadService) Report(ctx context.Context, personID int64, windowStart, windowEnd time.Time) (domain.WorkloadReport, error) {
	if s.cache != nil {
		cached, err := s.cache.Get(ctx, personID, windowStart)
		if err != nil {
			s.logger.DebugContext(ctx, "workload cache read failed, recomputing",
				"person_id", personID, "error", err)
		} else if cached != nil {
			return *cached, nil
		}
	}

	items, err := s.items.OpenItems(ctx, personID)
	if err != nil {
		return domain.WorkloadReport{}, err
	}
	blocks, err := s.unavailable.Blocks(ctx, personID, windowStart, windowEnd)
	if err != nil {
		return domain.WorkloadReport{}, err
	}

	report := domain.ComputeWorkload(domain.WorkloadInput{
		PersonID:           personID,
		WindowStart:        windowStart,
		WindowEnd:          windowEnd,
		DailyCapacityHours: s.dailyCapacity,
		Items:              items,
		Unavailable:        blocks,
	})

	if s.cache != nil {
		if err := s.cache.Set(ctx, report); err != nil {
			s.logger.DebugContext(ctx, "workload cache write failed",
				"person_id", personID, "error", err)
		}
	}

	return report, nil
}

// CurrentWeekReport is Report over the week window containing today.
func (s *WorkloadService) CurrentWeekReport(ctx context.Context, personID int64, today time.Time) (domain.WorkloadReport, error) {
	start, end := WeekWindow(today)
	return s.Report(ctx, personID, start, end)
}

// Invalidate drops cached reports for a person after their load changed.
func (s *WorkloadService) Invalidate(ctx context.Context, personID int64) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Invalidate(ctx, personID); err != nil {
		s.logger.DebugContext(ctx, "workload cache invalidation failed",
			"person_id", personID, "error", err)
	}
}
