// Package domain contains the core data types for the Horseshare booking
// engine. This package has zero external dependencies beyond uuid and is
// imported by every other internal package (repo, service, handler).
package domain

import (
	"fmt"
	"time"
)

// DateRange is an inclusive closed date interval [Start, End].
// Both endpoints are whole calendar days stored at UTC midnight; time-of-day
// is irrelevant to booking logic. A range is an immutable value — construct
// it with NewDateRange and never mutate the fields afterwards.
type DateRange struct {
	Start time.Time
	End   time.Time
}

// NewDateRange builds a DateRange from two dates, truncating each to its UTC
// calendar day. A range whose start is after its end is rejected outright —
// never silently swapped or clamped, because a corrected range would no
// longer mean what the caller asked for.
func NewDateRange(start, end time.Time) (DateRange, error) {
	r := DateRange{Start: truncateToDay(start), End: truncateToDay(end)}
	if !r.IsValid() {
		return DateRange{}, fmt.Errorf("%w: start date %s is after end date %s",
			ErrValidation, r.Start.Format(time.DateOnly), r.End.Format(time.DateOnly))
	}
	return r, nil
}

// IsValid reports whether Start <= End.
func (r DateRange) IsValid() bool {
	return !r.Start.After(r.End)
}

// Overlaps reports whether two inclusive ranges share at least one day.
// A shared boundary day counts: [5,10] and [10,15] overlap because the 10th
// is contested by both.
func (r DateRange) Overlaps(o DateRange) bool {
	return !r.Start.After(o.End) && !o.Start.After(r.End)
}

// Contains reports whether day falls inside the range, boundary days included.
func (r DateRange) Contains(day time.Time) bool {
	d := truncateToDay(day)
	return !d.Before(r.Start) && !d.After(r.End)
}

// Days returns the number of calendar days covered, boundary days included.
// A single-day range covers 1 day.
func (r DateRange) Days() int {
	return int(r.End.Sub(r.Start).Hours()/24) + 1
}

func (r DateRange) String() string {
	return fmt.Sprintf("[%s, %s]", r.Start.Format(time.DateOnly), r.End.Format(time.DateOnly))
}

// truncateToDay drops the time-of-day component and normalizes to UTC.
func truncateToDay(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
