package domain

import (
	"time"

	"github.com/google/uuid"
)

// RequestStatus is the lifecycle state of a BorrowRequest.
type RequestStatus string

const (
	// StatusPending is the initial state of every request.
	StatusPending RequestStatus = "pending"
	// StatusApproved means the range is now part of the horse's unavailable
	// timeline. Terminal for booking purposes.
	StatusApproved RequestStatus = "approved"
	// StatusRejected excludes the request from the timeline. Terminal.
	StatusRejected RequestStatus = "rejected"
)

// BorrowRequest is a borrower's ask to use a horse over a date range.
// Only the horse's owner may change Status (approve/reject); the borrower
// or the owner may delete. Once approved, the range constrains every later
// guard check for the same horse until the request is deleted.
type BorrowRequest struct {
	ID         uuid.UUID
	HorseID    uuid.UUID
	BorrowerID uuid.UUID
	Status     RequestStatus
	Range      DateRange
	Message    string
	CreatedAt  time.Time
	UpdatedAt  time.Time
}
