package domain

import (
	"time"

	"github.com/google/uuid"
)

// BlockedRange is an owner-declared span during which a horse is unavailable
// for reasons unrelated to any borrow request (vacation, maintenance).
// Blocks are never edited in place — the owner deletes and recreates.
// A block has no status: once created it is active until deleted.
type BlockedRange struct {
	ID        uuid.UUID
	HorseID   uuid.UUID
	OwnerID   uuid.UUID
	Range     DateRange
	Reason    string
	CreatedAt time.Time
}
