package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	openapi_types "github.com/oapi-codegen/runtime/types"

	"github.com/horseshare/backend/internal/domain"
)

// ErrorDetail is the machine-readable part of every error body.
type ErrorDetail struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// ErrorResponse is the uniform error envelope for non-conflict failures.
type ErrorResponse struct {
	Error ErrorDetail `json:"error"`
}

// ConflictDetail names the timeline entry a proposed range collided with.
// Dates and kind only — never the other party's message contents.
type ConflictDetail struct {
	Kind      string             `json:"kind,omitempty"`
	StartDate *openapi_types.Date `json:"start_date,omitempty"`
	EndDate   *openapi_types.Date `json:"end_date,omitempty"`
}

// ConflictResponse is the 409 body. Conflict detail rides alongside the
// standard envelope so generic clients still find error.code/error.message.
type ConflictResponse struct {
	Error    ErrorDetail    `json:"error"`
	Conflict ConflictDetail `json:"conflict"`
}

// respondJSON writes v as the JSON response body with the given status.
func respondJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if v != nil {
		_ = json.NewEncoder(w).Encode(v)
	}
}

// writeError maps a service error onto the HTTP surface:
//
//	ErrValidation → 422, ErrNotFound → 404, ErrForbidden → 403,
//	ConflictError/ErrConflict → 409, everything else → 503.
//
// The 503 default is deliberate: an error the taxonomy does not recognize is
// an infrastructure failure, and telling the user "those dates are taken"
// when the database was down would send them hunting for new dates instead
// of retrying.
func writeError(w http.ResponseWriter, r *http.Request, err error, notFoundMsg string) {
	var conflict *domain.ConflictError
	switch {
	case errors.As(err, &conflict):
		body := ConflictResponse{
			Error: ErrorDetail{
				Code:    "conflict",
				Message: "the requested dates are no longer available",
			},
		}
		if conflict.With.Kind != "" {
			start := openapi_types.Date{Time: conflict.With.Range.Start}
			end := openapi_types.Date{Time: conflict.With.Range.End}
			body.Conflict = ConflictDetail{
				Kind:      string(conflict.With.Kind),
				StartDate: &start,
				EndDate:   &end,
			}
		}
		respondJSON(w, http.StatusConflict, body)

	case errors.Is(err, domain.ErrConflict):
		respondJSON(w, http.StatusConflict, ErrorResponse{Error: ErrorDetail{
			Code:    "conflict",
			Message: "the requested dates are no longer available",
		}})

	case errors.Is(err, domain.ErrValidation):
		respondJSON(w, http.StatusUnprocessableEntity, ErrorResponse{Error: ErrorDetail{
			Code:    "validation_error",
			Message: unwrapMessage(err),
		}})

	case errors.Is(err, domain.ErrNotFound):
		respondJSON(w, http.StatusNotFound, ErrorResponse{Error: ErrorDetail{
			Code:    "not_found",
			Message: notFoundMsg,
		}})

	case errors.Is(err, domain.ErrForbidden):
		respondJSON(w, http.StatusForbidden, ErrorResponse{Error: ErrorDetail{
			Code:    "forbidden",
			Message: "not permitted",
		}})

	default:
		slog.ErrorContext(r.Context(), "dependency failure", "error", err)
		respondJSON(w, http.StatusServiceUnavailable, ErrorResponse{Error: ErrorDetail{
			Code:    "dependency_error",
			Message: "the operation could not be completed, please retry",
		}})
	}
}

// requestBody returns an ErrorResponse for a bad request rejected before
// reaching the service layer (e.g. missing or malformed body).
func requestBody(message string) ErrorResponse {
	return ErrorResponse{Error: ErrorDetail{Code: "validation_error", Message: message}}
}

// unwrapMessage extracts the human-readable tail from a wrapped sentinel error.
// e.g. "service.RequestService.Create: validation error: horse is not
// accepting requests" → "horse is not accepting requests".
func unwrapMessage(err error) string {
	if err == nil {
		return ""
	}
	msg := err.Error()
	const marker = "validation error: "
	if i := strings.LastIndex(msg, marker); i >= 0 {
		return msg[i+len(marker):]
	}
	return msg
}
