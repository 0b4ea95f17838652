// Package handler implements the HTTP handlers for the Horseshare booking
// API. All handlers are methods on Server; methods are split into
// resource-specific files (availability.go, block.go, request.go) but share
// the same struct so they can access its dependencies.
package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/horseshare/backend/internal/domain"
)

// AvailabilityServicer defines the read operations the availability handlers
// depend on. Defining the interface here (in the consumer package) follows
// the Go convention: "accept interfaces, return concrete types". It lets
// handler tests inject a mock without touching the database or service layer.
type AvailabilityServicer interface {
	UnavailableRanges(ctx context.Context, horseID uuid.UUID) ([]domain.UnavailableRange, error)
	CheckRange(ctx context.Context, horseID uuid.UUID, proposed domain.DateRange) (bool, []domain.UnavailableRange, error)
	Calendar(ctx context.Context, horseID uuid.UUID, year int, month time.Month) (domain.CalendarMonth, error)
	ListUnavailable(ctx context.Context, horseID uuid.UUID, params domain.PaginationParams) ([]domain.UnavailableRange, int, error)
}

// BlockServicer defines the owner-side block operations the handlers depend on.
type BlockServicer interface {
	Create(ctx context.Context, callerID, horseID uuid.UUID, r domain.DateRange, reason string) (domain.BlockedRange, []domain.UnavailableRange, error)
	List(ctx context.Context, callerID, horseID uuid.UUID) ([]domain.BlockedRange, error)
	Delete(ctx context.Context, callerID, horseID, blockID uuid.UUID) error
}

// RequestServicer defines the borrow request lifecycle operations the
// handlers depend on.
type RequestServicer interface {
	Create(ctx context.Context, borrowerID, horseID uuid.UUID, r domain.DateRange, message string) (domain.BorrowRequest, error)
	Approve(ctx context.Context, callerID, requestID uuid.UUID) (domain.BorrowRequest, error)
	Reject(ctx context.Context, callerID, requestID uuid.UUID) (domain.BorrowRequest, error)
	Delete(ctx context.Context, callerID, requestID uuid.UUID) error
	List(ctx context.Context, callerID, horseID uuid.UUID) ([]domain.BorrowRequest, error)
}

// validate checks request DTO shape before anything reaches the service
// layer. Domain rules (ownership, lifecycle, conflicts) stay in services.
var validate = validator.New(validator.WithRequiredStructEnabled())

// Server holds the handler dependencies for all API endpoints.
// Wire it in main.go via Register on a chi router behind the identity middleware.
type Server struct {
	availability AvailabilityServicer
	blocks       BlockServicer
	requests     RequestServicer
}

// NewServer constructs the Server with all its dependencies.
func NewServer(availability AvailabilityServicer, blocks BlockServicer, requests RequestServicer) *Server {
	return &Server{availability: availability, blocks: blocks, requests: requests}
}

// Register mounts every authenticated API route on r. The health endpoint is
// registered separately in main.go, outside the identity middleware.
func (s *Server) Register(r chi.Router) {
	r.Route("/horses/{horseID}", func(r chi.Router) {
		r.Get("/availability", s.GetAvailability)
		r.Get("/availability/check", s.CheckAvailability)
		r.Get("/calendar", s.GetCalendar)
		r.Get("/unavailable", s.ListUnavailable)

		r.Post("/blocks", s.CreateBlock)
		r.Get("/blocks", s.ListBlocks)
		r.Delete("/blocks/{blockID}", s.DeleteBlock)

		r.Post("/requests", s.CreateRequest)
		r.Get("/requests", s.ListRequests)
	})

	r.Route("/requests/{requestID}", func(r chi.Router) {
		r.Post("/approve", s.ApproveRequest)
		r.Post("/reject", s.RejectRequest)
		r.Delete("/", s.DeleteRequest)
	})
}

// pathUUID parses a UUID path parameter registered with chi.
func pathUUID(r *http.Request, name string) (uuid.UUID, error) {
	return uuid.Parse(chi.URLParam(r, name))
}
