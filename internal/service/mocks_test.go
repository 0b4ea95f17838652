package service_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/horseshare/backend/internal/domain"
	"github.com/horseshare/backend/internal/repo"
)

// Hand-written test doubles for the repo interfaces, shared by every service
// test in this package. Each method is a function field — set only the ones
// your test needs; an unset method panics, which is the test telling you it
// reached a dependency you did not expect it to touch.

type mockHorseRepo struct {
	getByID func(ctx context.Context, id uuid.UUID) (domain.Horse, error)
}

func (m *mockHorseRepo) GetByID(ctx context.Context, id uuid.UUID) (domain.Horse, error) {
	return m.getByID(ctx, id)
}

var _ repo.HorseRepo = (*mockHorseRepo)(nil)

type mockBlockRepo struct {
	create        func(ctx context.Context, block domain.BlockedRange) (domain.BlockedRange, error)
	listByHorseID func(ctx context.Context, horseID uuid.UUID) ([]domain.BlockedRange, error)
	delete        func(ctx context.Context, horseID, blockID uuid.UUID) error
}

func (m *mockBlockRepo) Create(ctx context.Context, block domain.BlockedRange) (domain.BlockedRange, error) {
	return m.create(ctx, block)
}
func (m *mockBlockRepo) ListByHorseID(ctx context.Context, horseID uuid.UUID) ([]domain.BlockedRange, error) {
	return m.listByHorseID(ctx, horseID)
}
func (m *mockBlockRepo) Delete(ctx context.Context, horseID, blockID uuid.UUID) error {
	return m.delete(ctx, horseID, blockID)
}

var _ repo.BlockRepo = (*mockBlockRepo)(nil)

type mockRequestRepo struct {
	createIfAvailable      func(ctx context.Context, req domain.BorrowRequest) (domain.BorrowRequest, error)
	approveIfAvailable     func(ctx context.Context, id uuid.UUID) (domain.BorrowRequest, error)
	reject                 func(ctx context.Context, id uuid.UUID) (domain.BorrowRequest, error)
	getByID                func(ctx context.Context, id uuid.UUID) (domain.BorrowRequest, error)
	listByHorseID          func(ctx context.Context, horseID uuid.UUID) ([]domain.BorrowRequest, error)
	listByHorseAndBorrower func(ctx context.Context, horseID, borrowerID uuid.UUID) ([]domain.BorrowRequest, error)
	listApprovedByHorseID  func(ctx context.Context, horseID uuid.UUID) ([]domain.BorrowRequest, error)
	delete                 func(ctx context.Context, id uuid.UUID) error
}

func (m *mockRequestRepo) CreateIfAvailable(ctx context.Context, req domain.BorrowRequest) (domain.BorrowRequest, error) {
	return m.createIfAvailable(ctx, req)
}
func (m *mockRequestRepo) ApproveIfAvailable(ctx context.Context, id uuid.UUID) (domain.BorrowRequest, error) {
	return m.approveIfAvailable(ctx, id)
}
func (m *mockRequestRepo) Reject(ctx context.Context, id uuid.UUID) (domain.BorrowRequest, error) {
	return m.reject(ctx, id)
}
func (m *mockRequestRepo) GetByID(ctx context.Context, id uuid.UUID) (domain.BorrowRequest, error) {
	return m.getByID(ctx, id)
}
func (m *mockRequestRepo) ListByHorseID(ctx context.Context, horseID uuid.UUID) ([]domain.BorrowRequest, error) {
	return m.listByHorseID(ctx, horseID)
}
func (m *mockRequestRepo) ListByHorseAndBorrower(ctx context.Context, horseID, borrowerID uuid.UUID) ([]domain.BorrowRequest, error) {
	return m.listByHorseAndBorrower(ctx, horseID, borrowerID)
}
func (m *mockRequestRepo) ListApprovedByHorseID(ctx context.Context, horseID uuid.UUID) ([]domain.BorrowRequest, error) {
	return m.listApprovedByHorseID(ctx, horseID)
}
func (m *mockRequestRepo) Delete(ctx context.Context, id uuid.UUID) error {
	return m.delete(ctx, id)
}

var _ repo.RequestRepo = (*mockRequestRepo)(nil)

// ---- fixtures --------------------------------------------------------------

var (
	ownerID    = uuid.MustParse("0b5fca5e-2a31-4ab7-9be6-01a9ad6a4f01")
	borrowerID = uuid.MustParse("6a1a4b43-8db1-4f83-b02e-92b9a7b2d102")
	strangerID = uuid.MustParse("e9b9c7aa-52bb-4e6f-8f17-7a60c39c0c03")
	horseID    = uuid.MustParse("cf1dd3a5-9d8a-4a34-bc37-d7f5e0a9df04")
)

func day(d int) time.Time {
	return time.Date(2024, 6, d, 0, 0, 0, 0, time.UTC)
}

func rng(t *testing.T, start, end int) domain.DateRange {
	t.Helper()
	r, err := domain.NewDateRange(day(start), day(end))
	require.NoError(t, err)
	return r
}

func activeHorse() domain.Horse {
	return domain.Horse{ID: horseID, OwnerID: ownerID, IsActive: true, CreatedAt: day(1)}
}

// horseRepoReturning is a HorseRepo that always finds the given horse.
func horseRepoReturning(h domain.Horse) *mockHorseRepo {
	return &mockHorseRepo{
		getByID: func(_ context.Context, _ uuid.UUID) (domain.Horse, error) { return h, nil },
	}
}

func blockFixture(t *testing.T, start, end int, reason string) domain.BlockedRange {
	t.Helper()
	return domain.BlockedRange{
		ID:        uuid.New(),
		HorseID:   horseID,
		OwnerID:   ownerID,
		Range:     rng(t, start, end),
		Reason:    reason,
		CreatedAt: day(1),
	}
}

func approvedRequestFixture(t *testing.T, start, end int) domain.BorrowRequest {
	t.Helper()
	return domain.BorrowRequest{
		ID:         uuid.New(),
		HorseID:    horseID,
		BorrowerID: borrowerID,
		Status:     domain.StatusApproved,
		Range:      rng(t, start, end),
		CreatedAt:  day(1),
		UpdatedAt:  day(1),
	}
}

func pendingRequestFixture(t *testing.T, start, end int) domain.BorrowRequest {
	t.Helper()
	req := approvedRequestFixture(t, start, end)
	req.Status = domain.StatusPending
	return req
}
