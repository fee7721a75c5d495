package domain

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

var ErrInvalidClock = errors.New("invalid clock time")

// UnavailableBlock declares a same-day window in which a person cannot work.
// Start and end are wall-clock strings ("13:00"); the source system does not
// guarantee they parse, so Hours returns an explicit error and callers decide
// whether to skip the block.
type UnavailableBlock struct {
	PersonID  int64
	Date      time.Time
	StartTime string
	EndTime   string
	Reason    string
	Note      string
}

// Hours computes the block's duration in hours. End must be after start.
func (b UnavailableBlock) Hours() (float64, error) {
	start, err := parseClockMinutes(b.StartTime)
	if err != nil {
		return 0, err
	}
	end, err := parseClockMinutes(b.EndTime)
	if err != nil {
		return 0, err
	}
	if end <= start {
		return 0, fmt.Errorf("%w: end %q not after start %q", ErrInvalidClock, b.EndTime, b.StartTime)
	}
	return float64(end-start) / 60, nil
}

func parseClockMinutes(s string) (int, error) {
	parts := strings.Split(s, ":")
	if len(parts) < 2 {
		return 0, fmt.Errorf("%w: %q", ErrInvalidClock, s)
	}
	hour, err := strconv.Atoi(parts[0])
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrInvalidClock, s)
	}
	minute, err := strconv.Atoi(parts[1])
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrInvalidClock, s)
	}
	if hour < 0 || hour > 24 || minute < 0 || minute > 59 {
		return 0, fmt.Errorf("%w: %q", ErrInvalidClock, s)
	}
	return hour*60 + minute, nil
}
