package domain

import "github.com/google/uuid"

// RequestEvent is the domain event emitted after a successful create,
// approve, or reject transition. The external messaging/notification
// pipeline consumes it to open conversation threads and push notifications.
// Emission is fire-and-forget: the transition never waits on, or rolls back
// for, event delivery.
type RequestEvent struct {
	RequestID  uuid.UUID     `json:"request_id"`
	HorseID    uuid.UUID     `json:"horse_id"`
	OwnerID    uuid.UUID     `json:"owner_id"`
	BorrowerID uuid.UUID     `json:"borrower_id"`
	Status     RequestStatus `json:"status"`
	StartDate  string        `json:"start_date"` // "2006-01-02"
	EndDate    string        `json:"end_date"`   // "2006-01-02"
}

// NewRequestEvent builds the event for a request in its post-transition state.
func NewRequestEvent(req BorrowRequest, ownerID uuid.UUID) RequestEvent {
	return RequestEvent{
		RequestID:  req.ID,
		HorseID:    req.HorseID,
		OwnerID:    ownerID,
		BorrowerID: req.BorrowerID,
		Status:     req.Status,
		StartDate:  req.Range.Start.Format("2006-01-02"),
		EndDate:    req.Range.End.Format("2006-01-02"),
	}
}
