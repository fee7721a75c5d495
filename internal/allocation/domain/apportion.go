package domain

import "time"

// Apportion spreads totalHours evenly across the workdays of the item's
// active span [itemStart, itemEnd], then returns the per-day share for each
// workday that also falls inside [windowStart, windowEnd].
//
// The distribution is deliberately uniform: querying overlapping windows and
// summing per-day values never exceeds the true daily share, and querying the
// full span recovers totalHours exactly (up to floating rounding). A span
// with no workdays, including an inverted one, yields an empty map.
func Apportion(itemStart, itemEnd time.Time, totalHours float64, windowStart, windowEnd time.Time) map[string]float64 {
	active := Workdays(itemStart, itemEnd)
	if len(active) == 0 {
		return map[string]float64{}
	}

	dailyHours := totalHours / float64(len(active))

	activeSet := make(map[string]struct{}, len(active))
	for _, day := range active {
		activeSet[DayKey(day)] = struct{}{}
	}

	allocation := make(map[string]float64)
	for _, day := range Workdays(windowStart, windowEnd) {
		key := DayKey(day)
		if _, ok := activeSet[key]; ok {
			allocation[key] = dailyHours
		}
	}
	return allocation
}
