package domain

import "time"

// CalendarDay is one cell of the monthly calendar view. When the day is
// unavailable, Kind carries the highest-priority overlapping timeline kind:
// an owner block wins over a booking so the owner's own declarations are
// always visible on their dashboard.
type CalendarDay struct {
	Day       time.Time
	Available bool
	Kind      RangeKind // zero value when Available
}

// CalendarMonth is the monthly projection of a horse's unavailable timeline.
// It is rebuilt from the aggregator on every load and is never cached, so it
// cannot be the source of a stale-availability bug.
type CalendarMonth struct {
	Year  int
	Month time.Month
	Days  []CalendarDay
}
