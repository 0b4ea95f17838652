package domain

import "github.com/google/uuid"

// RangeKind distinguishes why a span of the timeline is unavailable.
type RangeKind string

const (
	// KindBlocked — the owner declared the span off-limits.
	KindBlocked RangeKind = "blocked"
	// KindBooking — another rider holds an approved borrow request.
	KindBooking RangeKind = "booking"
)

// UnavailableRange is one entry of a horse's unavailable timeline. It is
// derived, never persisted: the aggregator recomputes the timeline from the
// blocked_ranges and approved borrow_requests tables on every read, so it can
// never be stale relative to committed state.
//
// Entries are deliberately not coalesced. The UI needs to show why a day is
// taken (owner vacation vs. someone's stay), and a merged span would hide
// which underlying record to delete.
type UnavailableRange struct {
	Kind     RangeKind
	Range    DateRange
	SourceID uuid.UUID
	Label    string
}

// HasConflict reports whether proposed overlaps any entry of the timeline.
// This single predicate backs both the advisory pre-submit check and the
// authoritative guard; the two call sites must never grow separate logic.
func HasConflict(proposed DateRange, ranges []UnavailableRange) bool {
	for _, r := range ranges {
		if proposed.Overlaps(r.Range) {
			return true
		}
	}
	return false
}

// Conflicting returns the timeline entries that overlap proposed, preserving
// the timeline's order.
func Conflicting(proposed DateRange, ranges []UnavailableRange) []UnavailableRange {
	out := []UnavailableRange{}
	for _, r := range ranges {
		if proposed.Overlaps(r.Range) {
			out = append(out, r)
		}
	}
	return out
}
