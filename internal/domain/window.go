package domain

import (
	"fmt"
	"time"
)

// RequestWindow is the recurring monthly period during which sellers may
// submit new payment requests. Days are calendar days of the month,
// inclusive on both ends.
type RequestWindow struct {
	StartDay int
	EndDay   int
}

// DefaultRequestWindow returns the standard policy: days 1 through 5.
func DefaultRequestWindow() RequestWindow {
	return RequestWindow{StartDay: 1, EndDay: 5}
}

// Validate checks the window days form a usable range. EndDay is capped at
// 28 so the window exists in every month.
func (w RequestWindow) Validate() error {
	if w.StartDay < 1 || w.EndDay > 28 || w.StartDay > w.EndDay {
		return fmt.Errorf("invalid request window: days %d-%d", w.StartDay, w.EndDay)
	}
	return nil
}

// Contains reports whether the instant falls inside the window, judged by
// the day of month in the given timezone.
func (w RequestWindow) Contains(now time.Time, loc *time.Location) bool {
	day := now.In(loc).Day()
	return day >= w.StartDay && day <= w.EndDay
}

// Next returns the start and end instants of the next occurrence of the
// window: this month's window while it is upcoming or in progress, else
// next month's. Boundaries are local midnights in loc; end is the midnight
// following the last window day (exclusive).
func (w RequestWindow) Next(now time.Time, loc *time.Location) (start, end time.Time) {
	local := now.In(loc)
	year, month, _ := local.Date()

	start = time.Date(year, month, w.StartDay, 0, 0, 0, 0, loc)
	end = time.Date(year, month, w.EndDay+1, 0, 0, 0, 0, loc)

	if !local.Before(end) {
		// This month's window has passed; time.Date normalizes month+1
		// across the December boundary.
		start = time.Date(year, month+1, w.StartDay, 0, 0, 0, 0, loc)
		end = time.Date(year, month+1, w.EndDay+1, 0, 0, 0, 0, loc)
	}
	return start, end
}
