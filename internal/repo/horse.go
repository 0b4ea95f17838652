package repo

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/horseshare/backend/internal/domain"
)

// HorseRepo reads the listing reference table. The booking core never writes
// horses — the out-of-scope listing system owns that table.
type HorseRepo interface {
	// GetByID retrieves a horse by its UUID primary key.
	// Returns domain.ErrNotFound if no horse with that ID exists.
	GetByID(ctx context.Context, id uuid.UUID) (domain.Horse, error)
}

// pgHorseRepo is the Postgres implementation of HorseRepo.
type pgHorseRepo struct {
	db db
}

// NewHorseRepo constructs a HorseRepo backed by the provided db connection.
func NewHorseRepo(db db) HorseRepo {
	return &pgHorseRepo{db: db}
}

func (r *pgHorseRepo) GetByID(ctx context.Context, id uuid.UUID) (domain.Horse, error) {
	const q = `
		SELECT id, owner_id, is_active, created_at
		FROM horses
		WHERE id = @id`

	var (
		h       domain.Horse
		hid     pgtype.UUID
		ownerID pgtype.UUID
	)
	err := r.db.QueryRow(ctx, q, pgx.NamedArgs{"id": id}).
		Scan(&hid, &ownerID, &h.IsActive, &h.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Horse{}, fmt.Errorf("repo.HorseRepo.GetByID: %w", domain.ErrNotFound)
		}
		return domain.Horse{}, fmt.Errorf("repo.HorseRepo.GetByID: %w", err)
	}
	h.ID = uuid.UUID(hid.Bytes)
	h.OwnerID = uuid.UUID(ownerID.Bytes)
	return h, nil
}
