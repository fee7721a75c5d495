package domain

import (
	"fmt"
	"time"
)

// RiskLevel classifies how likely an item is to miss its deadline.
type RiskLevel string

const (
	RiskOverdue  RiskLevel = "overdue"
	RiskCritical RiskLevel = "critical"
	RiskHigh     RiskLevel = "high"
	RiskMedium   RiskLevel = "medium"
	RiskLow      RiskLevel = "low"
)

var riskRank = map[RiskLevel]int{
	RiskOverdue:  0,
	RiskCritical: 1,
	RiskHigh:     2,
	RiskMedium:   3,
	RiskLow:      4,
}

// Rank orders risk levels for display, most severe first.
func (r RiskLevel) Rank() int {
	if rank, ok := riskRank[r]; ok {
		return rank
	}
	return len(riskRank)
}

// DelayRisk annotates a decision or schedule outcome with a risk level and a
// human-readable reason.
type DelayRisk struct {
	Level     RiskLevel
	Reason    string
	DaysUntil int
}

// daysUntil counts whole days from today's date to the deadline's date.
func daysUntil(deadline, today time.Time) int {
	return int(DayOf(deadline).Sub(DayOf(today)).Hours() / 24)
}

// AssessAssignmentRisk derives the delay risk for a freshly planned
// assignment from deadline proximity and the candidate's projected load.
// Items without a deadline carry no risk flag.
func AssessAssignmentRisk(deadline *time.Time, estimatedHours, projectedRatio float64, today time.Time) *DelayRisk {
	if deadline == nil {
		return nil
	}

	days := daysUntil(*deadline, today)
	remainingWorkHours := float64(max(0, days)) * 8

	switch {
	case days < 0:
		return &DelayRisk{Level: RiskOverdue, DaysUntil: days,
			Reason: fmt.Sprintf("overdue by %d days", -days)}
	case days == 0:
		return &DelayRisk{Level: RiskCritical, DaysUntil: days,
			Reason: "due today"}
	case estimatedHours > remainingWorkHours:
		return &DelayRisk{Level: RiskHigh, DaysUntil: days,
			Reason: fmt.Sprintf("needs %.0fh with roughly %.0fh of working time left", estimatedHours, remainingWorkHours)}
	case projectedRatio > 90:
		return &DelayRisk{Level: RiskMedium, DaysUntil: days,
			Reason: fmt.Sprintf("assignee load already at %.0f%%", projectedRatio)}
	case days <= 3:
		return &DelayRisk{Level: RiskMedium, DaysUntil: days,
			Reason: fmt.Sprintf("only %d days left", days)}
	}
	return nil
}

// AssessScheduleRisk derives the delay risk for an item after a scheduling
// run, comparing remaining unscheduled hours against deadline proximity.
func AssessScheduleRisk(deadline *time.Time, estimatedHours, scheduledHours, remainingHours float64, today time.Time) *DelayRisk {
	const epsilon = 0.1

	if deadline == nil {
		if remainingHours > epsilon {
			return &DelayRisk{Level: RiskLow,
				Reason: fmt.Sprintf("%.1fh left unscheduled", remainingHours)}
		}
		return nil
	}

	days := daysUntil(*deadline, today)

	if remainingHours > epsilon {
		switch {
		case days < 0:
			return &DelayRisk{Level: RiskOverdue, DaysUntil: days,
				Reason: fmt.Sprintf("overdue by %d days with %.1fh unscheduled", -days, remainingHours)}
		case scheduledHours == 0:
			return &DelayRisk{Level: RiskHigh, DaysUntil: days,
				Reason: fmt.Sprintf("not scheduled at all, due in %d days", days)}
		default:
			return &DelayRisk{Level: RiskMedium, DaysUntil: days,
				Reason: fmt.Sprintf("%.1fh left unscheduled", remainingHours)}
		}
	}

	switch {
	case days < 0:
		return &DelayRisk{Level: RiskOverdue, DaysUntil: days,
			Reason: fmt.Sprintf("overdue by %d days", -days)}
	case days <= 1 && estimatedHours > 0 && scheduledHours < estimatedHours*0.8:
		return &DelayRisk{Level: RiskHigh, DaysUntil: days,
			Reason: fmt.Sprintf("due tomorrow with only %.0f%% planned", scheduledHours/estimatedHours*100)}
	}
	return nil
}
