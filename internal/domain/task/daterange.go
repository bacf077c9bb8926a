package task

import (
	"fmt"
	"time"
)

type windowSpec struct {
	days   int
	months int
}

var windows = map[string]windowSpec{
	"1week":   {days: 7},
	"2weeks":  {days: 14},
	"1month":  {months: 1},
	"2months": {months: 2},
	"3months": {months: 3},
}

var windowOrder = []string{"1week", "2weeks", "1month", "2months", "3months"}

// DateRangeTokens lists the accepted time-window tokens, shortest first.
func DateRangeTokens() []string {
	out := make([]string, len(windowOrder))
	copy(out, windowOrder)
	return out
}

// ResolveDateRange maps a time-window token to a concrete range ending on the
// UTC date of now. Week windows subtract days; month windows subtract
// calendar months.
func ResolveDateRange(token string, now time.Time) (DateRange, error) {
	w, ok := windows[token]
	if !ok {
		return DateRange{}, fmt.Errorf("%w: unknown time window %q", ErrInvalidArgument, token)
	}
	end := DateOf(now)
	start := end.AddDays(-w.days)
	if w.months > 0 {
		start = end.AddMonths(-w.months)
	}
	return NewDateRange(start, end), nil
}

// DefaultDateRange is the last seven days ending today.
func DefaultDateRange(now time.Time) DateRange {
	end := DateOf(now)
	return NewDateRange(end.AddDays(-7), end)
}
