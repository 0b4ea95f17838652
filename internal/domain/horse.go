package domain

import (
	"time"

	"github.com/google/uuid"
)

// Horse is the slice of the listing system this core actually reads.
// Listing detail (name, photos, pricing) lives elsewhere and is referenced
// by ID only. Requests may only be created against an active horse.
type Horse struct {
	ID        uuid.UUID
	OwnerID   uuid.UUID
	IsActive  bool
	CreatedAt time.Time
}
