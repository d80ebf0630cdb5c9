// Package valueobject contains immutable value objects for the domain layer.
package valueobject

import (
	"fmt"
	"time"
)

const (
	dateLayout  = "2006-01-02"
	monthLayout = "2006-01"
)

// MonthWindow is the inclusive [FirstDay, LastDay] date range of one calendar month.
// Both bounds are YYYY-MM-DD strings and compare lexicographically.
type MonthWindow struct {
	FirstDay string
	LastDay  string
}

// ComputeWindow returns the window of the month containing target.
// The day component of target is ignored.
func ComputeWindow(target time.Time) MonthWindow {
	first := time.Date(target.Year(), target.Month(), 1, 0, 0, 0, 0, time.UTC)
	// Day 0 of the next month is the last day of this one.
	last := time.Date(target.Year(), target.Month()+1, 0, 0, 0, 0, 0, time.UTC)

	return MonthWindow{
		FirstDay: first.Format(dateLayout),
		LastDay:  last.Format(dateLayout),
	}
}

// Contains reports whether date (YYYY-MM-DD) lies within the window, bounds included.
func (w MonthWindow) Contains(date string) bool {
	return w.FirstDay <= date && date <= w.LastDay
}

// String returns the window as "first..last".
func (w MonthWindow) String() string {
	return w.FirstDay + ".." + w.LastDay
}

// FirstOfMonth normalizes t to midnight UTC on the first day of its month.
func FirstOfMonth(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC)
}

// ShiftMonth moves target by delta months and normalizes to the first day
// of the resulting month, so a 31st never overflows into the month after.
func ShiftMonth(target time.Time, delta int) time.Time {
	return time.Date(target.Year(), target.Month()+time.Month(delta), 1, 0, 0, 0, 0, time.UTC)
}

// ParseMonth parses a YYYY-MM string into the first day of that month.
func ParseMonth(value string) (time.Time, error) {
	t, err := time.Parse(monthLayout, value)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid month %q, expected YYYY-MM: %w", value, err)
	}
	return t, nil
}

// FormatMonth formats t as YYYY-MM.
func FormatMonth(t time.Time) string {
	return t.Format(monthLayout)
}

// ParseDate strictly parses a YYYY-MM-DD calendar date.
func ParseDate(value string) (time.Time, error) {
	t, err := time.Parse(dateLayout, value)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q, expected YYYY-MM-DD: %w", value, err)
	}
	return t, nil
}
