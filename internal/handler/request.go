package handler

import (
	"encoding/json"
	"net/http"
	"time"

	openapi_types "github.com/oapi-codegen/runtime/types"

	"github.com/horseshare/backend/internal/domain"
	"github.com/horseshare/backend/internal/middleware"
)

// CreateRequestRequest is the POST /horses/{horseID}/requests body.
type CreateRequestRequest struct {
	StartDate openapi_types.Date `json:"start_date" validate:"required"`
	EndDate   openapi_types.Date `json:"end_date" validate:"required"`
	Message   string             `json:"message" validate:"max=2000"`
}

// Request is the wire shape of a borrow request.
type Request struct {
	ID         string             `json:"id"`
	HorseID    string             `json:"horse_id"`
	BorrowerID string             `json:"borrower_id"`
	Status     string             `json:"status"`
	StartDate  openapi_types.Date `json:"start_date"`
	EndDate    openapi_types.Date `json:"end_date"`
	Message    string             `json:"message,omitempty"`
	CreatedAt  time.Time          `json:"created_at"`
	UpdatedAt  time.Time          `json:"updated_at"`
}

// CreateRequest handles POST /horses/{horseID}/requests.
// A 409 here means the guard refused the range against committed state —
// even if an advisory check passed moments earlier.
func (s *Server) CreateRequest(w http.ResponseWriter, r *http.Request) {
	callerID, ok := middleware.UserID(r.Context())
	if !ok {
		respondJSON(w, http.StatusUnauthorized, requestBody("identity required"))
		return
	}
	horseID, err := pathUUID(r, "horseID")
	if err != nil {
		respondJSON(w, http.StatusUnprocessableEntity, requestBody("invalid horse id"))
		return
	}

	var body CreateRequestRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		respondJSON(w, http.StatusUnprocessableEntity, requestBody("request body is required"))
		return
	}
	if err := validate.Struct(body); err != nil {
		respondJSON(w, http.StatusUnprocessableEntity, requestBody("start_date and end_date are required"))
		return
	}

	rng, err := domain.NewDateRange(body.StartDate.Time, body.EndDate.Time)
	if err != nil {
		respondJSON(w, http.StatusUnprocessableEntity, requestBody(unwrapMessage(err)))
		return
	}

	created, err := s.requests.Create(r.Context(), callerID, horseID, rng, body.Message)
	if err != nil {
		writeError(w, r, err, "horse not found")
		return
	}

	respondJSON(w, http.StatusCreated, requestToResponse(created))
}

// ListRequests handles GET /horses/{horseID}/requests.
// The horse's owner sees every request; anyone else sees only their own.
func (s *Server) ListRequests(w http.ResponseWriter, r *http.Request) {
	callerID, ok := middleware.UserID(r.Context())
	if !ok {
		respondJSON(w, http.StatusUnauthorized, requestBody("identity required"))
		return
	}
	horseID, err := pathUUID(r, "horseID")
	if err != nil {
		respondJSON(w, http.StatusUnprocessableEntity, requestBody("invalid horse id"))
		return
	}

	reqs, err := s.requests.List(r.Context(), callerID, horseID)
	if err != nil {
		writeError(w, r, err, "horse not found")
		return
	}

	data := make([]Request, len(reqs))
	for i, req := range reqs {
		data[i] = requestToResponse(req)
	}
	respondJSON(w, http.StatusOK, map[string]any{"data": data})
}

// ApproveRequest handles POST /requests/{requestID}/approve.
// On 409 the request stays pending; the conflict body names the range and
// kind that now occupy the dates.
func (s *Server) ApproveRequest(w http.ResponseWriter, r *http.Request) {
	callerID, ok := middleware.UserID(r.Context())
	if !ok {
		respondJSON(w, http.StatusUnauthorized, requestBody("identity required"))
		return
	}
	requestID, err := pathUUID(r, "requestID")
	if err != nil {
		respondJSON(w, http.StatusUnprocessableEntity, requestBody("invalid request id"))
		return
	}

	approved, err := s.requests.Approve(r.Context(), callerID, requestID)
	if err != nil {
		writeError(w, r, err, "request not found")
		return
	}

	respondJSON(w, http.StatusOK, requestToResponse(approved))
}

// RejectRequest handles POST /requests/{requestID}/reject.
func (s *Server) RejectRequest(w http.ResponseWriter, r *http.Request) {
	callerID, ok := middleware.UserID(r.Context())
	if !ok {
		respondJSON(w, http.StatusUnauthorized, requestBody("identity required"))
		return
	}
	requestID, err := pathUUID(r, "requestID")
	if err != nil {
		respondJSON(w, http.StatusUnprocessableEntity, requestBody("invalid request id"))
		return
	}

	rejected, err := s.requests.Reject(r.Context(), callerID, requestID)
	if err != nil {
		writeError(w, r, err, "request not found")
		return
	}

	respondJSON(w, http.StatusOK, requestToResponse(rejected))
}

// DeleteRequest handles DELETE /requests/{requestID}.
func (s *Server) DeleteRequest(w http.ResponseWriter, r *http.Request) {
	callerID, ok := middleware.UserID(r.Context())
	if !ok {
		respondJSON(w, http.StatusUnauthorized, requestBody("identity required"))
		return
	}
	requestID, err := pathUUID(r, "requestID")
	if err != nil {
		respondJSON(w, http.StatusUnprocessableEntity, requestBody("invalid request id"))
		return
	}

	if err := s.requests.Delete(r.Context(), callerID, requestID); err != nil {
		writeError(w, r, err, "request not found")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func requestToResponse(req domain.BorrowRequest) Request {
	return Request{
		ID:         req.ID.String(),
		HorseID:    req.HorseID.String(),
		BorrowerID: req.BorrowerID.String(),
		Status:     string(req.Status),
		StartDate:  openapi_types.Date{Time: req.Range.Start},
		EndDate:    openapi_types.Date{Time: req.Range.End},
		Message:    req.Message,
		CreatedAt:  req.CreatedAt.UTC(),
		UpdatedAt:  req.UpdatedAt.UTC(),
	}
}
