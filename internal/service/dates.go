package service

import (
	"fmt"
	"time"
)

// SafeDate builds a calendar date, correcting the one combination that a
// yearly series can legitimately produce: Feb 29 in a non-leap year becomes
// Feb 28 of that year. Any other invalid combination fails with ErrInvalidDate.
func SafeDate(year, month, day int) (time.Time, error) {
	d := time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)
	if d.Year() == year && d.Month() == time.Month(month) && d.Day() == day {
		return d, nil
	}
	if month == 2 && day == 29 {
		return time.Date(year, time.February, 28, 0, 0, 0, 0, time.UTC), nil
	}
	return time.Time{}, fmt.Errorf("%w: %04d-%02d-%02d", ErrInvalidDate, year, month, day)
}

// ResolveStartYear anchors a new yearly series. A requested date no older than
// last year keeps its own year; anything older is rebased to currentYear-1 and
// a non-fatal advisory is returned ("" when there is nothing to report).
func ResolveStartYear(requested time.Time, currentYear int) (int, string) {
	if requested.Year() >= currentYear-1 {
		return requested.Year(), ""
	}
	startYear := currentYear - 1
	warning := fmt.Sprintf(
		"the yearly series was rebased to start in %d because the original date is too far in the past",
		startYear,
	)
	return startYear, warning
}

// parseClockTime validates an HH:MM string and returns its components.
func parseClockTime(value string) (hour, minute int, err error) {
	t, err := time.Parse("15:04", value)
	if err != nil {
		return 0, 0, fmt.Errorf("invalid time %q, expected HH:MM", value)
	}
	return t.Hour(), t.Minute(), nil
}
