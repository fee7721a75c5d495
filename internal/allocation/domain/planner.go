package domain

import (
	"sort"
	"time"
)

// PlannerConfig tunes candidate eligibility for the auto-assignment pass.
type PlannerConfig struct {
	// SkillMatchThreshold is the minimum match ratio (percent) a person
	// needs to be considered for a task.
	SkillMatchThreshold float64
	// WorkloadCeiling excludes people whose projected load (percent)
	// already exceeds it.
	WorkloadCeiling float64
	// EnableBalanceAdvisory emits an advisory when post-run workloads
	// spread too far apart.
	EnableBalanceAdvisory bool
}

// DefaultPlannerConfig returns the documented defaults.
func DefaultPlannerConfig() PlannerConfig {
	return PlannerConfig{
		SkillMatchThreshold:   80,
		WorkloadCeiling:       85,
		EnableBalanceAdvisory: true,
	}
}

// balanceSpreadLimit is the workload-ratio spread (points) beyond which a
// balance advisory is emitted. Rebalancing itself is left to a human.
const balanceSpreadLimit = 30

// maxAlternatives bounds the audit trail of scored runners-up per decision.
const maxAlternatives = 5

// LoadProjection is the planner's in-memory view of one person's workload,
// updated between tasks within a single pass and never persisted.
type LoadProjection struct {
	Ratio          float64
	AvailableHours float64
	ConsumedHours  float64
}

// CandidateSummary is one scored alternative kept for audit.
type CandidateSummary struct {
	PersonID      int64
	PersonName    string
	Score         float64
	MatchRatio    float64
	WorkloadRatio float64
}

// AssignmentDecision records one greedy pick with full explainability.
type AssignmentDecision struct {
	Task           Task
	PersonID       int64
	PersonName     string
	Score          float64
	Breakdown      ScoreBreakdown
	Match          SkillMatch
	WorkloadBefore float64
	WorkloadAfter  float64
	CandidateCount int
	Alternatives   []CandidateSummary
	Risk           *DelayRisk
}

// UnassignedTask records a task no eligible person could take, with a
// reason. This is a normal outcome, not an error.
type UnassignedTask struct {
	TaskID int64
	Name   string
	Reason string
}

// BalanceAdvisory flags a large workload spread after the pass.
type BalanceAdvisory struct {
	MaxRatio float64
	MinRatio float64
	Message  string
}

// PlanInput is the full snapshot the planner folds over.
type PlanInput struct {
	Tasks       []Task
	People      []Person
	SkillNames  map[int64]string
	Projections map[int64]LoadProjection // seeded per person before the pass
	Today       time.Time
	Config      PlannerConfig
}

// Plan is the planner's complete, reproducible output.
type Plan struct {
	Decisions   []AssignmentDecision
	Unassigned  []UnassignedTask
	Advisories  []BalanceAdvisory
	Projections map[int64]LoadProjection // post-run state of the fold
}

// SortTasksForAssignment orders tasks by importance descending, then by
// deadline ascending with missing deadlines sorting last, then by id for
// determinism.
func SortTasksForAssignment(tasks []Task) []Task {
	sorted := make([]Task, len(tasks))
	copy(sorted, tasks)
	sort.SliceStable(sorted, func(i, j int) bool {
		a, b := sorted[i], sorted[j]
		if a.EffectiveImportance() != b.EffectiveImportance() {
			return a.EffectiveImportance() > b.EffectiveImportance()
		}
		switch {
		case a.Deadline != nil && b.Deadline != nil:
			if !a.Deadline.Equal(*b.Deadline) {
				return a.Deadline.Before(*b.Deadline)
			}
		case a.Deadline != nil:
			return true
		case b.Deadline != nil:
			return false
		}
		return a.ID < b.ID
	})
	return sorted
}

// BuildPlan runs the single-pass greedy assignment: tasks in priority order,
// candidates filtered by threshold and ceiling, highest score wins with the
// lowest person id breaking ties, and the winner's projection updated so
// later tasks see the new load. No backtracking.
func BuildPlan(in PlanInput) Plan {
	plan := Plan{
		Projections: make(map[int64]LoadProjection, len(in.Projections)),
	}
	for id, p := range in.Projections {
		plan.Projections[id] = p
	}

	people := make([]Person, len(in.People))
	copy(people, in.People)
	sort.Slice(people, func(i, j int) bool { return people[i].ID < people[j].ID })

	for _, task := range SortTasksForAssignment(in.Tasks) {
		var candidates []candidate

		for _, person := range people {
			match := MatchSkills(task.RequiredSkills, in.SkillNames, person.Ratings)
			if match.Ratio < in.Config.SkillMatchThreshold {
				continue
			}

			proj := plan.Projections[person.ID]
			if proj.Ratio > in.Config.WorkloadCeiling {
				continue
			}

			score, breakdown := ScoreCandidate(
				task.EstimatedHours, match.Ratio, match.AvgRating,
				proj.Ratio, proj.AvailableHours, proj.ConsumedHours,
			)
			candidates = append(candidates, candidate{
				person:    person,
				match:     match,
				proj:      proj,
				score:     score,
				breakdown: breakdown,
			})
		}

		if len(candidates) == 0 {
			plan.Unassigned = append(plan.Unassigned, UnassignedTask{
				TaskID: task.ID,
				Name:   task.Name,
				Reason: "no eligible candidate met the skill and workload thresholds",
			})
			continue
		}

		// Stable sort keeps the person-id iteration order, so equal scores
		// resolve to the lowest person id.
		sort.SliceStable(candidates, func(i, j int) bool {
			return candidates[i].score > candidates[j].score
		})
		best := candidates[0]

		// Project the pick into the winner's cached load so the remaining
		// tasks in this pass score against the updated state.
		proj := plan.Projections[best.person.ID]
		proj.ConsumedHours += task.EstimatedHours
		if proj.AvailableHours > 0 {
			proj.Ratio = proj.ConsumedHours / proj.AvailableHours * 100
		}
		plan.Projections[best.person.ID] = proj

		decision := AssignmentDecision{
			Task:           task,
			PersonID:       best.person.ID,
			PersonName:     best.person.Name,
			Score:          best.score,
			Breakdown:      best.breakdown,
			Match:          best.match,
			WorkloadBefore: best.proj.Ratio,
			WorkloadAfter:  proj.Ratio,
			CandidateCount: len(candidates),
			Risk:           AssessAssignmentRisk(task.Deadline, task.EstimatedHours, proj.Ratio, in.Today),
		}
		for _, c := range candidates[:min(len(candidates), maxAlternatives)] {
			decision.Alternatives = append(decision.Alternatives, CandidateSummary{
				PersonID:      c.person.ID,
				PersonName:    c.person.Name,
				Score:         c.score,
				MatchRatio:    c.match.Ratio,
				WorkloadRatio: c.proj.Ratio,
			})
		}
		plan.Decisions = append(plan.Decisions, decision)
	}

	if in.Config.EnableBalanceAdvisory && len(plan.Decisions) > 1 {
		plan.Advisories = balanceCheck(plan.Projections)
	}

	return plan
}

type candidate struct {
	person    Person
	match     SkillMatch
	proj      LoadProjection
	score     float64
	breakdown ScoreBreakdown
}

func balanceCheck(projections map[int64]LoadProjection) []BalanceAdvisory {
	if len(projections) == 0 {
		return nil
	}
	first := true
	var maxRatio, minRatio float64
	for _, p := range projections {
		if first {
			maxRatio, minRatio = p.Ratio, p.Ratio
			first = false
			continue
		}
		if p.Ratio > maxRatio {
			maxRatio = p.Ratio
		}
		if p.Ratio < minRatio {
			minRatio = p.Ratio
		}
	}
	if maxRatio-minRatio <= balanceSpreadLimit {
		return nil
	}
	return []BalanceAdvisory{{
		MaxRatio: maxRatio,
		MinRatio: minRatio,
		Message:  "workload spread exceeds 30 points; consider manual rebalancing",
	}}
}

// RankRisks orders decision risks most severe first for display.
func RankRisks(decisions []AssignmentDecision) []AssignmentDecision {
	flagged := make([]AssignmentDecision, 0, len(decisions))
	for _, d := range decisions {
		if d.Risk != nil {
			flagged = append(flagged, d)
		}
	}
	sort.SliceStable(flagged, func(i, j int) bool {
		return flagged[i].Risk.Level.Rank() < flagged[j].Risk.Level.Rank()
	})
	return flagged
}
