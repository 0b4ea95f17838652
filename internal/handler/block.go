package handler

import (
	"encoding/json"
	"net/http"
	"time"

	openapi_types "github.com/oapi-codegen/runtime/types"

	"github.com/horseshare/backend/internal/domain"
	"github.com/horseshare/backend/internal/middleware"
)

// CreateBlockRequest is the POST /horses/{horseID}/blocks body.
type CreateBlockRequest struct {
	StartDate openapi_types.Date `json:"start_date" validate:"required"`
	EndDate   openapi_types.Date `json:"end_date" validate:"required"`
	Reason    string             `json:"reason" validate:"max=500"`
}

// Block is the wire shape of a blocked range.
type Block struct {
	ID        string             `json:"id"`
	HorseID   string             `json:"horse_id"`
	StartDate openapi_types.Date `json:"start_date"`
	EndDate   openapi_types.Date `json:"end_date"`
	Reason    string             `json:"reason,omitempty"`
	CreatedAt time.Time          `json:"created_at"`
}

// CreateBlockResponse carries the created block plus any approved bookings
// it overlaps. The overlap list is informational: a block never cancels an
// existing commitment, it only declares future non-availability.
type CreateBlockResponse struct {
	Block    Block              `json:"block"`
	Overlaps []UnavailableRange `json:"overlaps"`
}

// CreateBlock handles POST /horses/{horseID}/blocks.
func (s *Server) CreateBlock(w http.ResponseWriter, r *http.Request) {
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

	var body CreateBlockRequest
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

	created, overlaps, err := s.blocks.Create(r.Context(), callerID, horseID, rng, body.Reason)
	if err != nil {
		writeError(w, r, err, "horse not found")
		return
	}

	respondJSON(w, http.StatusCreated, CreateBlockResponse{
		Block:    blockToResponse(created),
		Overlaps: rangesToResponse(overlaps),
	})
}

// ListBlocks handles GET /horses/{horseID}/blocks.
func (s *Server) ListBlocks(w http.ResponseWriter, r *http.Request) {
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

	blocks, err := s.blocks.List(r.Context(), callerID, horseID)
	if err != nil {
		writeError(w, r, err, "horse not found")
		return
	}

	data := make([]Block, len(blocks))
	for i, b := range blocks {
		data[i] = blockToResponse(b)
	}
	respondJSON(w, http.StatusOK, map[string]any{"data": data})
}

// DeleteBlock handles DELETE /horses/{horseID}/blocks/{blockID}.
// Deleting an absent block succeeds with 204 — the block not existing is the
// state the caller asked for.
func (s *Server) DeleteBlock(w http.ResponseWriter, r *http.Request) {
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
	blockID, err := pathUUID(r, "blockID")
	if err != nil {
		respondJSON(w, http.StatusUnprocessableEntity, requestBody("invalid block id"))
		return
	}

	if err := s.blocks.Delete(r.Context(), callerID, horseID, blockID); err != nil {
		writeError(w, r, err, "horse not found")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func blockToResponse(b domain.BlockedRange) Block {
	return Block{
		ID:        b.ID.String(),
		HorseID:   b.HorseID.String(),
		StartDate: openapi_types.Date{Time: b.Range.Start},
		EndDate:   openapi_types.Date{Time: b.Range.End},
		Reason:    b.Reason,
		CreatedAt: b.CreatedAt.UTC(),
	}
}
