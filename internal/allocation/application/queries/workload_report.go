// Package queries hosts the read-side application handlers. They never
// mutate state and run outside any unit of work.
package queries

import (
	"context"
	"time"

	"github.com/taskpilot/taskpilot/internal/allocation/application/services"
	"github.com/taskpilot/taskpilot/internal/allocation/domain"
)

// GetWorkloadQuery requests one person's workload report. An explicit window
// wins; otherwise the week containing Today is used.
type GetWorkloadQuery struct {
	PersonID    int64
	Today       time.Time
	WindowStart time.Time
	WindowEnd   time.Time
}

// GetWorkloadHandler handles the GetWorkloadQuery.
type GetWorkloadHandler struct {
	workload *services.WorkloadService
}

// NewGetWorkloadHandler creates a new GetWorkloadHandler.
func NewGetWorkloadHandler(workload *services.WorkloadService) *GetWorkloadHandler {
	return &GetWorkloadHandler{workload: workload}
}

// Handle executes the GetWorkloadQuery.
func (h *GetWorkloadHandler) Handle(ctx context.Context, query GetWorkloadQuery) (*domain.WorkloadReport, error) {
	start, end := query.WindowStart, query.WindowEnd
	if start.IsZero() || end.IsZero() {
		today := query.Today
		if today.IsZero() {
			today = time.Now()
		}
		start, end = services.WeekWindow(today)
	}

	report, err := h.workload.Report(ctx, query.PersonID, start, end)
	if err != nil {
		return nil, err
	}
	return &report, nil
}

// PersonWorkload pairs a person with their report for team views.
type PersonWorkload struct {
	Person domain.Person
	Report domain.WorkloadReport
}

// TeamWorkloadQuery requests the reports of everyone a manager owns; an
// empty ManagerID covers all people.
type TeamWorkloadQuery struct {
	ManagerID string
	Today     time.Time
}

// TeamWorkloadHandler handles the TeamWorkloadQuery.
type TeamWorkloadHandler struct {
	people   domain.PersonRepository
	workload *services.WorkloadService
}

// NewTeamWorkloadHandler creates a new TeamWorkloadHandler.
func NewTeamWorkloadHandler(people domain.PersonRepository, workload *services.WorkloadService) *TeamWorkloadHandler {
	return &TeamWorkloadHandler{people: people, workload: workload}
}

// Handle executes the TeamWorkloadQuery. Results keep the repository's
// people ordering.
func (h *TeamWorkloadHandler) Handle(ctx context.Context, query TeamWorkloadQuery) ([]PersonWorkload, error) {
	today := query.Today
	if today.IsZero() {
		today = time.Now()
	}

	people, err := h.people.People(ctx, query.ManagerID)
	if err != nil {
		return nil, err
	}

	result := make([]PersonWorkload, 0, len(people))
	for _, person := range people {
		report, err := h.workload.CurrentWeekReport(ctx, person.ID, today)
		if err != nil {
			return nil, err
		}
		result = append(result, PersonWorkload{Person: person, Report: report})
	}
	return result, nil
}
