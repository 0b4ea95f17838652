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

// BlockRepo defines the persistence operations for owner-declared blocks.
// Reads and the delete are scoped by horseID so a block can never be touched
// through another horse's routes.
type BlockRepo interface {
	// Create inserts a new block and returns the persisted record (with
	// DB-generated id and created_at populated).
	Create(ctx context.Context, block domain.BlockedRange) (domain.BlockedRange, error)

	// ListByHorseID returns all blocks for a horse ordered by start date
	// ascending, ties broken by creation order.
	ListByHorseID(ctx context.Context, horseID uuid.UUID) ([]domain.BlockedRange, error)

	// Delete removes a block by ID, scoped to the given horseID.
	// Returns domain.ErrNotFound when no such block exists; the service layer
	// decides whether that is an error (it is not — block deletion is
	// idempotent at the API surface).
	Delete(ctx context.Context, horseID, blockID uuid.UUID) error
}

// pgBlockRepo is the Postgres implementation of BlockRepo.
type pgBlockRepo struct {
	db db
}

// NewBlockRepo constructs a BlockRepo backed by the provided db connection.
// In production pass *pgxpool.Pool; in tests pass a pgx.Tx for rollback isolation.
func NewBlockRepo(db db) BlockRepo {
	return &pgBlockRepo{db: db}
}

func (r *pgBlockRepo) Create(ctx context.Context, block domain.BlockedRange) (domain.BlockedRange, error) {
	const q = `
		INSERT INTO blocked_ranges (horse_id, owner_id, start_date, end_date, reason)
		VALUES (@horse_id, @owner_id, @start_date, @end_date, @reason)
		RETURNING id, horse_id, owner_id, start_date, end_date, reason, created_at`

	args := pgx.NamedArgs{
		"horse_id":   block.HorseID,
		"owner_id":   block.OwnerID,
		"start_date": block.Range.Start,
		"end_date":   block.Range.End,
		"reason":     block.Reason,
	}

	result, err := scanBlock(r.db.QueryRow(ctx, q, args))
	if err != nil {
		return domain.BlockedRange{}, fmt.Errorf("repo.BlockRepo.Create: %w", err)
	}
	return result, nil
}

func (r *pgBlockRepo) ListByHorseID(ctx context.Context, horseID uuid.UUID) ([]domain.BlockedRange, error) {
	const q = `
		SELECT id, horse_id, owner_id, start_date, end_date, reason, created_at
		FROM blocked_ranges
		WHERE horse_id = @horse_id
		ORDER BY start_date, created_at`

	rows, err := r.db.Query(ctx, q, pgx.NamedArgs{"horse_id": horseID})
	if err != nil {
		return nil, fmt.Errorf("repo.BlockRepo.ListByHorseID: %w", err)
	}
	defer rows.Close()

	var blocks []domain.BlockedRange
	for rows.Next() {
		b, err := scanBlock(rows)
		if err != nil {
			return nil, fmt.Errorf("repo.BlockRepo.ListByHorseID: scan: %w", err)
		}
		blocks = append(blocks, b)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("repo.BlockRepo.ListByHorseID: rows: %w", err)
	}

	return blocks, nil
}

func (r *pgBlockRepo) Delete(ctx context.Context, horseID, blockID uuid.UUID) error {
	const q = `DELETE FROM blocked_ranges WHERE id = @id AND horse_id = @horse_id`

	tag, err := r.db.Exec(ctx, q, pgx.NamedArgs{"id": blockID, "horse_id": horseID})
	if err != nil {
		return fmt.Errorf("repo.BlockRepo.Delete: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("repo.BlockRepo.Delete: %w", domain.ErrNotFound)
	}
	return nil
}

// scanBlock maps a single database row into a domain.BlockedRange.
func scanBlock(s scanner) (domain.BlockedRange, error) {
	var (
		b       domain.BlockedRange
		id      pgtype.UUID
		horseID pgtype.UUID
		ownerID pgtype.UUID
		start   pgtype.Date
		end     pgtype.Date
	)

	err := s.Scan(&id, &horseID, &ownerID, &start, &end, &b.Reason, &b.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.BlockedRange{}, domain.ErrNotFound
		}
		return domain.BlockedRange{}, err
	}

	b.ID = uuid.UUID(id.Bytes)
	b.HorseID = uuid.UUID(horseID.Bytes)
	b.OwnerID = uuid.UUID(ownerID.Bytes)
	b.Range = domain.DateRange{Start: start.Time.UTC(), End: end.Time.UTC()}
	return b, nil
}
