package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/horseshare/backend/internal/domain"
	"github.com/horseshare/backend/internal/notify"
	"github.com/horseshare/backend/internal/repo"
)

// RequestService implements the borrow request lifecycle:
// pending → approved | rejected, with delete allowed from any state.
// Create and approve run through the repo's guarded writes so the
// no-overlapping-approvals invariant holds even when two owners' browser
// tabs race each other.
type RequestService struct {
	horses   repo.HorseRepo
	requests repo.RequestRepo
	notifier notify.Notifier
	log      *slog.Logger
}

// NewRequestService constructs a RequestService backed by the provided repos
// and notifier. Pass notify.Nop{} when no pipeline is configured.
func NewRequestService(horses repo.HorseRepo, requests repo.RequestRepo, notifier notify.Notifier, log *slog.Logger) *RequestService {
	return &RequestService{horses: horses, requests: requests, notifier: notifier, log: log}
}

// Create submits a new pending request on behalf of the borrower.
// The guard checks the proposed range against blocks and approved requests —
// not against other pending requests, which never constrain the timeline.
// A request against an inactive horse is rejected at creation rather than
// accepted and left pending forever.
func (s *RequestService) Create(ctx context.Context, borrowerID, horseID uuid.UUID, r domain.DateRange, message string) (domain.BorrowRequest, error) {
	if !r.IsValid() {
		return domain.BorrowRequest{}, fmt.Errorf("service.RequestService.Create: %w: start date is after end date", domain.ErrValidation)
	}

	horse, err := s.horses.GetByID(ctx, horseID)
	if err != nil {
		return domain.BorrowRequest{}, fmt.Errorf("service.RequestService.Create: %w", err)
	}
	if !horse.IsActive {
		return domain.BorrowRequest{}, fmt.Errorf("service.RequestService.Create: %w: horse is not accepting requests", domain.ErrValidation)
	}
	if horse.OwnerID == borrowerID {
		return domain.BorrowRequest{}, fmt.Errorf("service.RequestService.Create: %w: cannot request your own horse", domain.ErrValidation)
	}

	created, err := s.requests.CreateIfAvailable(ctx, domain.BorrowRequest{
		HorseID:    horseID,
		BorrowerID: borrowerID,
		Range:      r,
		Message:    message,
	})
	if err != nil {
		return domain.BorrowRequest{}, fmt.Errorf("service.RequestService.Create: %w", err)
	}

	s.emit(ctx, created, horse.OwnerID)
	return created, nil
}

// Approve transitions a pending request to approved. Only the horse's owner
// may call it. The guard re-checks the range against current committed state
// (excluding the request itself) because other approvals may have landed
// since the request was created; on conflict the request stays pending and
// the caller receives a *domain.ConflictError.
func (s *RequestService) Approve(ctx context.Context, callerID, requestID uuid.UUID) (domain.BorrowRequest, error) {
	req, horse, err := s.requestWithHorse(ctx, requestID)
	if err != nil {
		return domain.BorrowRequest{}, fmt.Errorf("service.RequestService.Approve: %w", err)
	}
	if horse.OwnerID != callerID {
		return domain.BorrowRequest{}, fmt.Errorf("service.RequestService.Approve: %w", domain.ErrForbidden)
	}

	approved, err := s.requests.ApproveIfAvailable(ctx, req.ID)
	if err != nil {
		return domain.BorrowRequest{}, fmt.Errorf("service.RequestService.Approve: %w", err)
	}

	s.emit(ctx, approved, horse.OwnerID)
	return approved, nil
}

// Reject transitions a pending request to rejected. Only the horse's owner
// may call it. A rejected range was never part of the timeline, so nothing
// is freed — an overlapping request from another borrower remains approvable.
func (s *RequestService) Reject(ctx context.Context, callerID, requestID uuid.UUID) (domain.BorrowRequest, error) {
	req, horse, err := s.requestWithHorse(ctx, requestID)
	if err != nil {
		return domain.BorrowRequest{}, fmt.Errorf("service.RequestService.Reject: %w", err)
	}
	if horse.OwnerID != callerID {
		return domain.BorrowRequest{}, fmt.Errorf("service.RequestService.Reject: %w", domain.ErrForbidden)
	}

	rejected, err := s.requests.Reject(ctx, req.ID)
	if err != nil {
		return domain.BorrowRequest{}, fmt.Errorf("service.RequestService.Reject: %w", err)
	}

	s.emit(ctx, rejected, horse.OwnerID)
	return rejected, nil
}

// Delete removes a request in any status. Permitted for the request's own
// borrower and for the horse's owner. Deleting an approved request frees its
// range immediately — the aggregator recomputes from live rows.
func (s *RequestService) Delete(ctx context.Context, callerID, requestID uuid.UUID) error {
	req, horse, err := s.requestWithHorse(ctx, requestID)
	if err != nil {
		return fmt.Errorf("service.RequestService.Delete: %w", err)
	}
	if req.BorrowerID != callerID && horse.OwnerID != callerID {
		return fmt.Errorf("service.RequestService.Delete: %w", domain.ErrForbidden)
	}

	if err := s.requests.Delete(ctx, req.ID); err != nil {
		return fmt.Errorf("service.RequestService.Delete: %w", err)
	}
	return nil
}

// List returns the requests for a horse visible to the caller: the owner
// sees all of them, anyone else sees only their own.
func (s *RequestService) List(ctx context.Context, callerID, horseID uuid.UUID) ([]domain.BorrowRequest, error) {
	horse, err := s.horses.GetByID(ctx, horseID)
	if err != nil {
		return nil, fmt.Errorf("service.RequestService.List: %w", err)
	}

	var reqs []domain.BorrowRequest
	if horse.OwnerID == callerID {
		reqs, err = s.requests.ListByHorseID(ctx, horseID)
	} else {
		reqs, err = s.requests.ListByHorseAndBorrower(ctx, horseID, callerID)
	}
	if err != nil {
		return nil, fmt.Errorf("service.RequestService.List: %w", err)
	}
	if reqs == nil {
		reqs = []domain.BorrowRequest{}
	}
	return reqs, nil
}

// requestWithHorse resolves a request and its horse in one step, since every
// transition needs both for authorization.
func (s *RequestService) requestWithHorse(ctx context.Context, requestID uuid.UUID) (domain.BorrowRequest, domain.Horse, error) {
	req, err := s.requests.GetByID(ctx, requestID)
	if err != nil {
		return domain.BorrowRequest{}, domain.Horse{}, err
	}
	horse, err := s.horses.GetByID(ctx, req.HorseID)
	if err != nil {
		return domain.BorrowRequest{}, domain.Horse{}, err
	}
	return req, horse, nil
}

// emit publishes the lifecycle event without blocking the caller. The
// transition has already committed; delivery failure is logged and dropped.
func (s *RequestService) emit(ctx context.Context, req domain.BorrowRequest, ownerID uuid.UUID) {
	event := domain.NewRequestEvent(req, ownerID)
	// Detach from the request's cancellation: the HTTP response returning
	// must not abort delivery.
	bg := context.WithoutCancel(ctx)
	go func() {
		if err := s.notifier.Publish(bg, event); err != nil {
			s.log.ErrorContext(bg, "notification delivery failed",
				"request_id", event.RequestID,
				"status", event.Status,
				"error", err,
			)
		}
	}()
}
