package services

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/taskpilot/taskpilot/internal/allocation/domain"
)

// SchedulerService runs the day scheduler over a person's open items. It
// fetches the snapshot, carries locked entries forward from the previous
// schedule when asked, and leaves persistence to the calling command.
type SchedulerService struct {
	items       domain.WorkItemRepository
	unavailable domain.UnavailableRepository
	schedules   domain.ScheduleRepository
	cfg         domain.SchedulerConfig
	logger      *slog.Logger
}

// NewSchedulerService creates a scheduler service.
func NewSchedulerService(
	items domain.WorkItemRepository,
	unavailable domain.UnavailableRepository,
	schedules domain.ScheduleRepository,
	cfg domain.SchedulerConfig,
	logger *slog.Logger,
) *SchedulerService {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.HorizonDays <= 0 {
		cfg = domain.DefaultSchedulerConfig()
	}
	return &SchedulerService{
		items:       items,
		unavailable: unavailable,
		schedules:   schedules,
		cfg:         cfg,
		logger:      logger,
	}
}

// Build produces a fresh schedule for one person. With carryLocked the
// pinned rows of the person's latest schedule are re-emitted verbatim and
// their hours pre-deducted.
func (s *SchedulerService) Build(ctx context.Context, personID int64, today time.Time, carryLocked bool) (domain.BuiltSchedule, error) {
	items, err := s.items.OpenItems(ctx, personID)
	if err != nil {
		return domain.BuiltSchedule{}, err
	}

	// The horizon counts workdays; doubling it in calendar days always
	// covers the weekends in between.
	from := domain.DayOf(today)
	to := from.AddDate(0, 0, s.cfg.HorizonDays*2)
	blocks, err := s.unavailable.Blocks(ctx, personID, from, to)
	if err != nil {
		return domain.BuiltSchedule{}, err
	}

	var locked []domain.LockedEntry
	if carryLocked {
		previous, err := s.schedules.Latest(ctx, personID)
		switch {
		case errors.Is(err, domain.ErrScheduleNotFound):
			// First run for this person.
		case err != nil:
			return domain.BuiltSchedule{}, err
		default:
			locked = previous.LockedEntries()
		}
	}

	built := domain.BuildSchedule(domain.ScheduleInput{
		PersonID:    personID,
		Items:       items,
		Unavailable: blocks,
		Locked:      locked,
		Today:       today,
		Config:      s.cfg,
	})

	s.logger.InfoContext(ctx, "schedule built",
		"person_id", personID,
		"entries", len(built.Entries),
		"locked_carried", len(locked),
		"skipped_malformed", built.SkippedMalformed,
	)

	return built, nil
}

// Config exposes the scheduler tuning for callers that persist the run.
func (s *SchedulerService) Config() domain.SchedulerConfig {
	return s.cfg
}
