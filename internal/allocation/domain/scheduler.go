package domain

import (
	"sort"
	"time"
)

// SchedulerConfig tunes the day scheduler. The three weights need not sum to
// 100; the formula normalizes each sub-score by 100 on its own.
type SchedulerConfig struct {
	HorizonDays        int
	DailyCapacityHours float64
	UrgencyWeight      float64
	ImportanceWeight   float64
	ContinuityWeight   float64
}

// DefaultSchedulerConfig returns the documented defaults.
func DefaultSchedulerConfig() SchedulerConfig {
	return SchedulerConfig{
		HorizonDays:        14,
		DailyCapacityHours: 8,
		UrgencyWeight:      40,
		ImportanceWeight:   40,
		ContinuityWeight:   20,
	}
}

// LockedEntry is a previously generated schedule row a human has pinned.
// Locked entries are re-emitted verbatim and their hours subtracted from
// both daily capacity and per-item remaining work before the greedy fill.
type LockedEntry struct {
	Date     time.Time
	Key      ItemKey
	Name     string
	Hours    float64
	Deadline *time.Time
}

// ScheduleEntry is one planned row of the day-by-day schedule.
type ScheduleEntry struct {
	Date     time.Time
	Key      ItemKey
	Name     string
	Hours    float64
	Priority float64
	Progress float64 // cumulative percent of the item's estimate after this entry
	Locked   bool
	Deadline *time.Time
}

// PriorityParts itemizes a priority score for explainability.
type PriorityParts struct {
	Urgency    float64
	Importance float64
	Continuity float64
	Total      float64
}

// ItemOutcome is the per-item summary after a scheduling run.
type ItemOutcome struct {
	Key            ItemKey
	Name           string
	EstimatedHours float64
	ScheduledHours float64
	RemainingHours float64
	Progress       float64
	Risk           *DelayRisk
}

// ScheduleInput is the snapshot one scheduling run folds over.
type ScheduleInput struct {
	PersonID    int64
	Items       []WorkItem
	Unavailable []UnavailableBlock
	Locked      []LockedEntry
	Today       time.Time
	Config      SchedulerConfig
}

// BuiltSchedule is the complete output of one run.
type BuiltSchedule struct {
	PersonID         int64
	Start            time.Time
	End              time.Time
	Workdays         []time.Time
	Entries          []ScheduleEntry
	Outcomes         []ItemOutcome
	SkippedMalformed int
}

// urgencyScore maps days-until-deadline to the fixed urgency bands.
func urgencyScore(deadline *time.Time, day time.Time) float64 {
	if deadline == nil {
		return 20
	}
	days := daysUntil(*deadline, day)
	switch {
	case days < 0:
		return 100
	case days == 0:
		return 95
	case days <= 2:
		return 85
	case days <= 5:
		return 70
	case days <= 7:
		return 55
	case days <= 14:
		return 40
	default:
		return max(10, 30-float64(days))
	}
}

// continuityScore rewards picking up an item scheduled on recent days,
// encouraging focus over fragmentation.
func continuityScore(lastScheduled time.Time, day time.Time) float64 {
	if lastScheduled.IsZero() {
		return 0
	}
	gap := daysUntil(day, lastScheduled)
	switch {
	case gap == 1:
		return 100
	case gap == 2:
		return 70
	case gap <= 3:
		return 50
	default:
		return 20
	}
}

// ItemPriority computes the weighted priority of an item on a given day.
func ItemPriority(item WorkItem, day time.Time, lastScheduled time.Time, cfg SchedulerConfig) PriorityParts {
	parts := PriorityParts{
		Urgency:    urgencyScore(item.Deadline, day),
		Importance: item.EffectiveImportance() * 10,
		Continuity: continuityScore(lastScheduled, day),
	}
	parts.Total = parts.Urgency*cfg.UrgencyWeight/100 +
		parts.Importance*cfg.ImportanceWeight/100 +
		parts.Continuity*cfg.ContinuityWeight/100
	return parts
}

// BuildSchedule produces a multi-day plan for one person: locked entries are
// carried forward unchanged, then each workday's remaining capacity is
// filled greedily in priority order. The run is deterministic for identical
// inputs.
func BuildSchedule(in ScheduleInput) BuiltSchedule {
	cfg := in.Config
	if cfg.HorizonDays <= 0 {
		cfg.HorizonDays = DefaultSchedulerConfig().HorizonDays
	}
	if cfg.DailyCapacityHours <= 0 {
		cfg.DailyCapacityHours = DefaultSchedulerConfig().DailyCapacityHours
	}

	workdays := NextWorkdays(in.Today, cfg.HorizonDays)

	built := BuiltSchedule{
		PersonID: in.PersonID,
		Start:    workdays[0],
		End:      workdays[len(workdays)-1],
		Workdays: workdays,
	}

	unavailableByDay := make(map[string]float64)
	for _, block := range in.Unavailable {
		hours, err := block.Hours()
		if err != nil {
			built.SkippedMalformed++
			continue
		}
		unavailableByDay[DayKey(block.Date)] += hours
	}

	horizonDays := make(map[string]bool, len(workdays))
	for _, day := range workdays {
		horizonDays[DayKey(day)] = true
	}

	lockedByDay := make(map[string][]LockedEntry)
	lockedHoursByItem := make(map[ItemKey]float64)
	var lockedOutside []LockedEntry
	for _, locked := range in.Locked {
		key := DayKey(locked.Date)
		if horizonDays[key] {
			lockedByDay[key] = append(lockedByDay[key], locked)
		} else {
			lockedOutside = append(lockedOutside, locked)
		}
		lockedHoursByItem[locked.Key] += locked.Hours
	}
	sort.SliceStable(lockedOutside, func(i, j int) bool {
		return lockedOutside[i].Date.Before(lockedOutside[j].Date)
	})

	items := make([]WorkItem, 0, len(in.Items))
	for _, item := range in.Items {
		if item.Status.IsOpen() {
			items = append(items, item)
		}
	}
	sort.SliceStable(items, func(i, j int) bool {
		a, b := items[i].Key, items[j].Key
		if a.Kind != b.Kind {
			return a.Kind == KindAssigned
		}
		return a.ID < b.ID
	})

	remaining := make(map[ItemKey]float64, len(items))
	scheduled := make(map[ItemKey]float64, len(items))
	lastScheduled := make(map[ItemKey]time.Time, len(items))
	for _, item := range items {
		left := item.SchedulableHours() - lockedHoursByItem[item.Key]
		if left < 0 {
			left = 0
		}
		remaining[item.Key] = left
		scheduled[item.Key] = lockedHoursByItem[item.Key]
	}

	// Pinned rows keep their date, hours, and identity even when that date
	// no longer falls in the horizon; only in-horizon rows consume day
	// capacity below.
	for _, locked := range lockedOutside {
		built.Entries = append(built.Entries, ScheduleEntry{
			Date:     locked.Date,
			Key:      locked.Key,
			Name:     locked.Name,
			Hours:    locked.Hours,
			Locked:   true,
			Deadline: locked.Deadline,
		})
		if locked.Date.After(lastScheduled[locked.Key]) {
			lastScheduled[locked.Key] = locked.Date
		}
	}

	for _, day := range workdays {
		dayKey := DayKey(day)

		// Re-emit pinned rows before anything else is planned for the day.
		for _, locked := range lockedByDay[dayKey] {
			built.Entries = append(built.Entries, ScheduleEntry{
				Date:     locked.Date,
				Key:      locked.Key,
				Name:     locked.Name,
				Hours:    locked.Hours,
				Locked:   true,
				Deadline: locked.Deadline,
			})
			lastScheduled[locked.Key] = day
		}

		lockedHours := 0.0
		for _, locked := range lockedByDay[dayKey] {
			lockedHours += locked.Hours
		}
		dayRemaining := cfg.DailyCapacityHours - unavailableByDay[dayKey] - lockedHours
		if dayRemaining <= 0 {
			continue
		}

		type scored struct {
			item     WorkItem
			priority PriorityParts
		}
		var pending []scored
		for _, item := range items {
			if remaining[item.Key] <= 0 {
				continue
			}
			pending = append(pending, scored{
				item:     item,
				priority: ItemPriority(item, day, lastScheduled[item.Key], cfg),
			})
		}
		sort.SliceStable(pending, func(i, j int) bool {
			return pending[i].priority.Total > pending[j].priority.Total
		})

		for _, p := range pending {
			if dayRemaining <= 0 {
				break
			}
			hours := min(remaining[p.item.Key], dayRemaining)
			if hours <= 0 {
				continue
			}

			key := p.item.Key
			scheduled[key] += hours
			remaining[key] -= hours
			lastScheduled[key] = day
			dayRemaining -= hours

			built.Entries = append(built.Entries, ScheduleEntry{
				Date:     day,
				Key:      key,
				Name:     p.item.Name,
				Hours:    round2(hours),
				Priority: round2(p.priority.Total),
				Progress: progressPercent(scheduled[key], p.item.SchedulableHours()),
				Deadline: p.item.Deadline,
			})
		}
	}

	for _, item := range items {
		key := item.Key
		outcome := ItemOutcome{
			Key:            key,
			Name:           item.Name,
			EstimatedHours: item.SchedulableHours(),
			ScheduledHours: round2(scheduled[key]),
			RemainingHours: round2(remaining[key]),
			Progress:       progressPercent(scheduled[key], item.SchedulableHours()),
			Risk: AssessScheduleRisk(item.Deadline, item.SchedulableHours(),
				scheduled[key], remaining[key], in.Today),
		}
		built.Outcomes = append(built.Outcomes, outcome)
	}
	sort.SliceStable(built.Outcomes, func(i, j int) bool {
		a, b := built.Outcomes[i].Risk, built.Outcomes[j].Risk
		switch {
		case a == nil && b == nil:
			return false
		case b == nil:
			return true
		case a == nil:
			return false
		default:
			return a.Level.Rank() < b.Level.Rank()
		}
	})

	return built
}

func progressPercent(scheduled, estimated float64) float64 {
	if estimated <= 0 {
		return 0
	}
	p := round1(scheduled / estimated * 100)
	if p > 100 {
		p = 100
	}
	return p
}
