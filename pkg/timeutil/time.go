package timeutil

import "time"

// Now returns the current time in UTC
// Always use this instead of time.Now() to ensure timezone consistency
func Now() time.Time {
	return time.Now().UTC()
}

// StartOfDay returns midnight of t's calendar day in loc
func StartOfDay(t time.Time, loc *time.Location) time.Time {
	year, month, day := t.In(loc).Date()
	return time.Date(year, month, day, 0, 0, 0, 0, loc)
}

// StartOfMonth returns midnight of the first day of t's calendar month in loc
func StartOfMonth(t time.Time, loc *time.Location) time.Time {
	year, month, _ := t.In(loc).Date()
	return time.Date(year, month, 1, 0, 0, 0, 0, loc)
}

// StartOfNextMonth returns midnight of the first day of the month after t in loc
func StartOfNextMonth(t time.Time, loc *time.Location) time.Time {
	year, month, _ := t.In(loc).Date()
	return time.Date(year, month+1, 1, 0, 0, 0, 0, loc)
}

// StartOfQuarter returns midnight of the first day of t's calendar quarter in loc
func StartOfQuarter(t time.Time, loc *time.Location) time.Time {
	year, month, _ := t.In(loc).Date()
	quarterMonth := time.Month((int(month)-1)/3*3 + 1)
	return time.Date(year, quarterMonth, 1, 0, 0, 0, 0, loc)
}

// StartOfYear returns midnight of January 1st of t's calendar year in loc
func StartOfYear(t time.Time, loc *time.Location) time.Time {
	year, _, _ := t.In(loc).Date()
	return time.Date(year, time.January, 1, 0, 0, 0, 0, loc)
}

// ToUTC converts a time.Time to UTC if it isn't already
func ToUTC(t time.Time) time.Time {
	return t.UTC()
}
