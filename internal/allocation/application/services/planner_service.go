package services

import (
	"context"
	"log/slog"
	"time"

	"github.com/taskpilot/taskpilot/internal/allocation/domain"
)

// PlannerService runs the auto-assignment planner over a fresh snapshot:
// unassigned tasks, people with ratings, and per-person workload projections
// seeded from the current week.
type PlannerService struct {
	tasks    domain.TaskRepository
	people   domain.PersonRepository
	skills   domain.SkillRepository
	workload *WorkloadService
	cfg      domain.PlannerConfig
	logger   *slog.Logger
}

// NewPlannerService creates a planner service.
func NewPlannerService(
	tasks domain.TaskRepository,
	people domain.PersonRepository,
	skills domain.SkillRepository,
	workload *WorkloadService,
	cfg domain.PlannerConfig,
	logger *slog.Logger,
) *PlannerService {
	if logger == nil {
		logger = slog.Default()
	}
	return &PlannerService{
		tasks:    tasks,
		people:   people,
		skills:   skills,
		workload: workload,
		cfg:      cfg,
		logger:   logger,
	}
}

// PlanAssignments produces a proposed plan without persisting anything.
// managerID narrows the candidate pool when non-empty. The plan is a
// preview; confirmation is a separate command.
func (s *PlannerService) PlanAssignments(ctx context.Context, managerID string, today time.Time) (*domain.Plan, error) {
	tasks, err := s.tasks.UnassignedTasks(ctx)
	if err != nil {
		return nil, err
	}
	people, err := s.people.People(ctx, managerID)
	if err != nil {
		return nil, err
	}
	skillNames, err := s.skills.SkillNames(ctx)
	if err != nil {
		return nil, err
	}

	// Seed each candidate's projection once; the greedy pass folds over
	// these in memory and never persists them.
	projections := make(map[int64]domain.LoadProjection, len(people))
	for _, person := range people {
		report, err := s.workload.CurrentWeekReport(ctx, person.ID, today)
		if err != nil {
			return nil, err
		}
		projections[person.ID] = domain.LoadProjection{
			Ratio:          report.Ratio,
			AvailableHours: report.ActualAvailableHours,
			ConsumedHours:  report.TaskHoursWindow,
		}
	}

	plan := domain.BuildPlan(domain.PlanInput{
		Tasks:       tasks,
		People:      people,
		SkillNames:  skillNames,
		Projections: projections,
		Today:       today,
		Config:      s.cfg,
	})

	s.logger.InfoContext(ctx, "assignment plan built",
		"tasks", len(tasks),
		"people", len(people),
		"decisions", len(plan.Decisions),
		"unassigned", len(plan.Unassigned),
		"advisories", len(plan.Advisories),
	)

	return &plan, nil
}
