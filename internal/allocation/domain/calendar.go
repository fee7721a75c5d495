package domain

import "time"

const dayLayout = "2006-01-02"

// DayOf normalizes a timestamp to midnight in its own location.
func DayOf(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

// DayKey formats a date as an ISO calendar day, the canonical map key for
// per-day buckets.
func DayKey(t time.Time) string {
	return t.Format(dayLayout)
}

// ParseDay parses an ISO calendar day. Timestamps with a time component
// ("2025-03-01T09:00") are accepted and truncated to the date.
func ParseDay(s string) (time.Time, error) {
	if len(s) > len(dayLayout) {
		s = s[:len(dayLayout)]
	}
	return time.Parse(dayLayout, s)
}

// IsWorkday reports whether the date falls on Monday through Friday.
func IsWorkday(t time.Time) bool {
	wd := t.Weekday()
	return wd != time.Saturday && wd != time.Sunday
}

// Workdays returns the ordered workdays in [start, end], both inclusive.
// An inverted range yields an empty slice.
func Workdays(start, end time.Time) []time.Time {
	start = DayOf(start)
	end = DayOf(end)

	var days []time.Time
	for cur := start; !cur.After(end); cur = cur.AddDate(0, 0, 1) {
		if IsWorkday(cur) {
			days = append(days, cur)
		}
	}
	return days
}

// NextWorkdays returns the first count workdays starting at from (inclusive
// when from itself is a workday).
func NextWorkdays(from time.Time, count int) []time.Time {
	days := make([]time.Time, 0, count)
	for cur := DayOf(from); len(days) < count; cur = cur.AddDate(0, 0, 1) {
		if IsWorkday(cur) {
			days = append(days, cur)
		}
	}
	return days
}
