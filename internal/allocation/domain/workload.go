package domain

import (
	"sort"
	"time"
)

// LoadLevel classifies a workload ratio.
type LoadLevel string

const (
	LoadLow      LoadLevel = "low"
	LoadMedium   LoadLevel = "medium"
	LoadHigh     LoadLevel = "high"
	LoadOverload LoadLevel = "overload"
)

// Classification thresholds and the display clamp are fixed policy
// constants; the unclamped ratio drives classification and scoring.
const (
	overloadThreshold = 100
	highThreshold     = 80
	mediumThreshold   = 50
	displayRatioCap   = 200
)

// ClassifyLoad maps an unclamped workload ratio to its level.
func ClassifyLoad(ratio float64) LoadLevel {
	switch {
	case ratio >= overloadThreshold:
		return LoadOverload
	case ratio >= highThreshold:
		return LoadHigh
	case ratio >= mediumThreshold:
		return LoadMedium
	default:
		return LoadLow
	}
}

// Span defaults for items without a deadline. Assigned items are assumed
// due shortly after the report window; self-directed items get a longer
// grace period from their start. The asymmetry is a deliberate policy.
const (
	assignedGraceDays = 7
	selfGraceDays     = 14
)

// DayLoad is the per-day hours breakdown inside a workload report.
type DayLoad struct {
	Date             time.Time
	Workday          bool
	AvailableHours   float64
	UnavailableHours float64
	AssignedHours    float64
	SelfHours        float64
	TotalHours       float64
}

// ItemLoad is the per-item detail of how much of an item's effort lands in
// the report window.
type ItemLoad struct {
	Key            ItemKey
	Name           string
	EstimatedHours float64
	WindowHours    float64
	SpanStart      time.Time
	SpanEnd        time.Time
	Importance     float64
}

// WorkloadReport is an ephemeral load snapshot for one person and window.
// It is created per computation and never persisted.
type WorkloadReport struct {
	PersonID    int64
	WindowStart time.Time
	WindowEnd   time.Time

	Days  []DayLoad
	Items []ItemLoad

	WorkdayCount         int
	TotalAvailableHours  float64
	UnavailableHours     float64
	ActualAvailableHours float64

	AssignedHoursTotal  float64 // full estimates, for display
	AssignedHoursWindow float64 // apportioned into the window
	SelfHoursTotal      float64
	SelfHoursWindow     float64
	TaskHoursWindow     float64
	FreeHours           float64

	Ratio        float64 // unclamped; drives classification and scoring
	DisplayRatio float64 // clamped at 200 for presentation
	Level        LoadLevel

	// SkippedMalformed counts unavailable blocks dropped because their
	// clock strings did not parse.
	SkippedMalformed int
}

// WorkloadInput carries everything ComputeWorkload needs; the caller fetches
// records up front so the computation itself never blocks.
type WorkloadInput struct {
	PersonID           int64
	WindowStart        time.Time
	WindowEnd          time.Time
	DailyCapacityHours float64
	Items              []WorkItem
	Unavailable        []UnavailableBlock
}

// ActiveSpan resolves the apportionment span for an item within a report
// window, applying the documented defaults for missing fields.
func ActiveSpan(item WorkItem, windowStart, windowEnd time.Time) (time.Time, time.Time) {
	start := DayOf(item.Origin)
	if item.Origin.IsZero() {
		start = DayOf(windowStart)
	}

	if item.Key.Kind == KindSelf {
		// A self item created inside the window starts at the window so the
		// current week always carries a share of it.
		if !start.Before(DayOf(windowStart)) && !start.After(DayOf(windowEnd)) {
			start = DayOf(windowStart)
		}
		if item.Deadline != nil {
			return start, DayOf(*item.Deadline)
		}
		return start, start.AddDate(0, 0, selfGraceDays)
	}

	if item.Deadline != nil {
		return start, DayOf(*item.Deadline)
	}
	return start, DayOf(windowEnd).AddDate(0, 0, assignedGraceDays)
}

// ComputeWorkload produces the load snapshot for one person over a window.
// It is read-only over the supplied records; malformed unavailable blocks
// are counted and skipped rather than aborting the report.
func ComputeWorkload(in WorkloadInput) WorkloadReport {
	windowStart := DayOf(in.WindowStart)
	windowEnd := DayOf(in.WindowEnd)

	workdays := Workdays(windowStart, windowEnd)

	type bucket struct {
		workday                     bool
		unavailable, assigned, self float64
	}
	days := make(map[string]*bucket)
	for cur := windowStart; !cur.After(windowEnd); cur = cur.AddDate(0, 0, 1) {
		days[DayKey(cur)] = &bucket{workday: IsWorkday(cur)}
	}

	report := WorkloadReport{
		PersonID:     in.PersonID,
		WindowStart:  windowStart,
		WindowEnd:    windowEnd,
		WorkdayCount: len(workdays),
	}

	for _, item := range in.Items {
		if !item.Status.IsOpen() {
			continue
		}

		estimated := item.EstimatedHours
		spanStart, spanEnd := ActiveSpan(item, windowStart, windowEnd)
		allocation := Apportion(spanStart, spanEnd, estimated, windowStart, windowEnd)

		var windowHours float64
		for key, hours := range allocation {
			day, ok := days[key]
			if !ok {
				continue
			}
			if item.Key.Kind == KindSelf {
				day.self += hours
			} else {
				day.assigned += hours
			}
			windowHours += hours
		}

		if item.Key.Kind == KindSelf {
			report.SelfHoursTotal += estimated
			report.SelfHoursWindow += windowHours
		} else {
			report.AssignedHoursTotal += estimated
			report.AssignedHoursWindow += windowHours
		}

		report.Items = append(report.Items, ItemLoad{
			Key:            item.Key,
			Name:           item.Name,
			EstimatedHours: estimated,
			WindowHours:    windowHours,
			SpanStart:      spanStart,
			SpanEnd:        spanEnd,
			Importance:     item.EffectiveImportance(),
		})
	}

	for _, block := range in.Unavailable {
		day, ok := days[DayKey(block.Date)]
		if !ok {
			continue
		}
		hours, err := block.Hours()
		if err != nil {
			report.SkippedMalformed++
			continue
		}
		day.unavailable += hours
		report.UnavailableHours += hours
	}

	for cur := windowStart; !cur.After(windowEnd); cur = cur.AddDate(0, 0, 1) {
		b := days[DayKey(cur)]
		available := 0.0
		if b.workday {
			available = in.DailyCapacityHours
		}
		report.Days = append(report.Days, DayLoad{
			Date:             cur,
			Workday:          b.workday,
			AvailableHours:   available,
			UnavailableHours: b.unavailable,
			AssignedHours:    b.assigned,
			SelfHours:        b.self,
			TotalHours:       b.assigned + b.self,
		})
	}
	sort.Slice(report.Days, func(i, j int) bool {
		return report.Days[i].Date.Before(report.Days[j].Date)
	})

	report.TotalAvailableHours = float64(report.WorkdayCount) * in.DailyCapacityHours
	report.ActualAvailableHours = report.TotalAvailableHours - report.UnavailableHours
	if report.ActualAvailableHours < 0 {
		report.ActualAvailableHours = 0
	}
	report.TaskHoursWindow = report.AssignedHoursWindow + report.SelfHoursWindow
	report.FreeHours = report.ActualAvailableHours - report.TaskHoursWindow
	if report.FreeHours < 0 {
		report.FreeHours = 0
	}

	switch {
	case report.ActualAvailableHours > 0:
		report.Ratio = report.TaskHoursWindow / report.ActualAvailableHours * 100
	case report.TaskHoursWindow > 0:
		report.Ratio = 100
	default:
		report.Ratio = 0
	}

	report.DisplayRatio = report.Ratio
	if report.DisplayRatio > displayRatioCap {
		report.DisplayRatio = displayRatioCap
	}
	report.Level = ClassifyLoad(report.Ratio)

	return report
}
