package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/horseshare/backend/internal/domain"
	"github.com/horseshare/backend/internal/repo"
)

// BlockService implements owner-side management of blocked ranges.
// Blocks feed the availability aggregator but are deliberately not run
// through the conflict guard: an owner may block dates that already hold an
// approved booking. The block signals future non-availability; it does not
// retroactively cancel a commitment. The overlap is reported back to the
// owner as information, not prevented.
type BlockService struct {
	horses   repo.HorseRepo
	blocks   repo.BlockRepo
	requests repo.RequestRepo
}

// NewBlockService constructs a BlockService backed by the provided repos.
func NewBlockService(horses repo.HorseRepo, blocks repo.BlockRepo, requests repo.RequestRepo) *BlockService {
	return &BlockService{horses: horses, blocks: blocks, requests: requests}
}

// Create validates and persists a new block for a horse the caller owns.
// The returned overlap list names any approved bookings the block covers —
// informational only, the create succeeds regardless.
func (s *BlockService) Create(ctx context.Context, callerID, horseID uuid.UUID, r domain.DateRange, reason string) (domain.BlockedRange, []domain.UnavailableRange, error) {
	if !r.IsValid() {
		return domain.BlockedRange{}, nil, fmt.Errorf("service.BlockService.Create: %w: start date is after end date", domain.ErrValidation)
	}

	horse, err := s.horses.GetByID(ctx, horseID)
	if err != nil {
		return domain.BlockedRange{}, nil, fmt.Errorf("service.BlockService.Create: %w", err)
	}
	if horse.OwnerID != callerID {
		return domain.BlockedRange{}, nil, fmt.Errorf("service.BlockService.Create: %w", domain.ErrForbidden)
	}

	created, err := s.blocks.Create(ctx, domain.BlockedRange{
		HorseID: horseID,
		OwnerID: callerID,
		Range:   r,
		Reason:  reason,
	})
	if err != nil {
		return domain.BlockedRange{}, nil, fmt.Errorf("service.BlockService.Create: %w", err)
	}

	overlaps, err := s.bookingOverlaps(ctx, horseID, r)
	if err != nil {
		// The block is committed; failing the whole call over the advisory
		// overlap report would misreport a successful write.
		return created, nil, nil
	}
	return created, overlaps, nil
}

// List returns all blocks for a horse the caller owns.
func (s *BlockService) List(ctx context.Context, callerID, horseID uuid.UUID) ([]domain.BlockedRange, error) {
	horse, err := s.horses.GetByID(ctx, horseID)
	if err != nil {
		return nil, fmt.Errorf("service.BlockService.List: %w", err)
	}
	if horse.OwnerID != callerID {
		return nil, fmt.Errorf("service.BlockService.List: %w", domain.ErrForbidden)
	}

	blocks, err := s.blocks.ListByHorseID(ctx, horseID)
	if err != nil {
		return nil, fmt.Errorf("service.BlockService.List: %w", err)
	}
	if blocks == nil {
		blocks = []domain.BlockedRange{}
	}
	return blocks, nil
}

// Delete removes a block from a horse the caller owns. Deleting a block that
// does not exist succeeds: the caller's intent — "this block should not
// exist" — is already satisfied.
func (s *BlockService) Delete(ctx context.Context, callerID, horseID, blockID uuid.UUID) error {
	horse, err := s.horses.GetByID(ctx, horseID)
	if err != nil {
		return fmt.Errorf("service.BlockService.Delete: %w", err)
	}
	if horse.OwnerID != callerID {
		return fmt.Errorf("service.BlockService.Delete: %w", domain.ErrForbidden)
	}

	if err := s.blocks.Delete(ctx, horseID, blockID); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil
		}
		return fmt.Errorf("service.BlockService.Delete: %w", err)
	}
	return nil
}

// bookingOverlaps lists the approved bookings a range covers.
func (s *BlockService) bookingOverlaps(ctx context.Context, horseID uuid.UUID, r domain.DateRange) ([]domain.UnavailableRange, error) {
	approved, err := s.requests.ListApprovedByHorseID(ctx, horseID)
	if err != nil {
		return nil, err
	}

	overlaps := []domain.UnavailableRange{}
	for _, req := range approved {
		if r.Overlaps(req.Range) {
			overlaps = append(overlaps, domain.UnavailableRange{
				Kind:     domain.KindBooking,
				Range:    req.Range,
				SourceID: req.ID,
				Label:    "Booked",
			})
		}
	}
	return overlaps, nil
}
