// Package service contains the business logic for the booking engine.
// Services validate inputs, enforce ownership and lifecycle rules, and
// orchestrate repo calls. No SQL lives here — services depend on repo
// interfaces, not implementations.
package service

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/horseshare/backend/internal/domain"
	"github.com/horseshare/backend/internal/repo"
)

// AvailabilityService computes a horse's unavailable timeline by merging
// owner blocks with approved borrow requests. The timeline is derived on
// every call from the two source tables and never cached — a cached copy
// could go stale the moment a concurrent approval commits.
type AvailabilityService struct {
	horses   repo.HorseRepo
	blocks   repo.BlockRepo
	requests repo.RequestRepo
}

// NewAvailabilityService constructs an AvailabilityService backed by the provided repos.
func NewAvailabilityService(horses repo.HorseRepo, blocks repo.BlockRepo, requests repo.RequestRepo) *AvailabilityService {
	return &AvailabilityService{horses: horses, blocks: blocks, requests: requests}
}

// UnavailableRanges returns the horse's full unavailable timeline, sorted by
// start date ascending with creation order breaking ties. Entries are not
// coalesced: each keeps its own kind, source id, and label so the UI can
// explain every taken day and point at the record behind it.
//
// If either source query fails the failure propagates. Substituting an empty
// timeline would present "no conflicts" when the true state is unknown —
// the one answer this subsystem must never give.
func (s *AvailabilityService) UnavailableRanges(ctx context.Context, horseID uuid.UUID) ([]domain.UnavailableRange, error) {
	if _, err := s.horses.GetByID(ctx, horseID); err != nil {
		return nil, fmt.Errorf("service.AvailabilityService.UnavailableRanges: %w", err)
	}

	blocks, err := s.blocks.ListByHorseID(ctx, horseID)
	if err != nil {
		return nil, fmt.Errorf("service.AvailabilityService.UnavailableRanges: %w: %v", domain.ErrDependency, err)
	}
	approved, err := s.requests.ListApprovedByHorseID(ctx, horseID)
	if err != nil {
		return nil, fmt.Errorf("service.AvailabilityService.UnavailableRanges: %w: %v", domain.ErrDependency, err)
	}

	ranges := make([]domain.UnavailableRange, 0, len(blocks)+len(approved))
	for _, b := range blocks {
		label := "Blocked by owner"
		if b.Reason != "" {
			label = b.Reason
		}
		ranges = append(ranges, domain.UnavailableRange{
			Kind:     domain.KindBlocked,
			Range:    b.Range,
			SourceID: b.ID,
			Label:    label,
		})
	}
	for _, r := range approved {
		ranges = append(ranges, domain.UnavailableRange{
			Kind:     domain.KindBooking,
			Range:    r.Range,
			SourceID: r.ID,
			Label:    "Booked",
		})
	}

	// Both source lists arrive sorted; the merged list needs one stable sort
	// so same-day entries keep their source order.
	sort.SliceStable(ranges, func(i, j int) bool {
		return ranges[i].Range.Start.Before(ranges[j].Range.Start)
	})

	return ranges, nil
}

// CheckRange is the advisory conflict check backing pre-submit UI feedback.
// It reports whether the proposed range overlaps the current timeline and
// which entries it collides with. A pass here is provisional: the
// authoritative guard re-evaluates at commit time and may still refuse.
func (s *AvailabilityService) CheckRange(ctx context.Context, horseID uuid.UUID, proposed domain.DateRange) (bool, []domain.UnavailableRange, error) {
	if !proposed.IsValid() {
		return false, nil, fmt.Errorf("service.AvailabilityService.CheckRange: %w: invalid range", domain.ErrValidation)
	}

	ranges, err := s.UnavailableRanges(ctx, horseID)
	if err != nil {
		return false, nil, err
	}

	conflicts := domain.Conflicting(proposed, ranges)
	return len(conflicts) > 0, conflicts, nil
}

// Calendar projects the timeline onto one month. Each day carries the
// highest-priority overlapping kind; owner blocks outrank bookings.
func (s *AvailabilityService) Calendar(ctx context.Context, horseID uuid.UUID, year int, month time.Month) (domain.CalendarMonth, error) {
	if month < time.January || month > time.December {
		return domain.CalendarMonth{}, fmt.Errorf("service.AvailabilityService.Calendar: %w: month out of range", domain.ErrValidation)
	}

	ranges, err := s.UnavailableRanges(ctx, horseID)
	if err != nil {
		return domain.CalendarMonth{}, err
	}

	first := time.Date(year, month, 1, 0, 0, 0, 0, time.UTC)
	cal := domain.CalendarMonth{Year: year, Month: month}
	for day := first; day.Month() == month; day = day.AddDate(0, 0, 1) {
		cd := domain.CalendarDay{Day: day, Available: true}
		for _, r := range ranges {
			if !r.Range.Contains(day) {
				continue
			}
			cd.Available = false
			if cd.Kind == "" || r.Kind == domain.KindBlocked {
				cd.Kind = r.Kind
			}
			if cd.Kind == domain.KindBlocked {
				break
			}
		}
		cal.Days = append(cal.Days, cd)
	}

	return cal, nil
}

// ListUnavailable returns one page of the timeline plus the total entry
// count. Pagination happens over the freshly computed timeline, never over a
// stored projection.
func (s *AvailabilityService) ListUnavailable(ctx context.Context, horseID uuid.UUID, params domain.PaginationParams) ([]domain.UnavailableRange, int, error) {
	ranges, err := s.UnavailableRanges(ctx, horseID)
	if err != nil {
		return nil, 0, err
	}

	lo, hi := params.Slice(len(ranges))
	return ranges[lo:hi], len(ranges), nil
}
