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

// RequestRepo defines the persistence operations for borrow requests,
// including the two guarded writes (CreateIfAvailable, ApproveIfAvailable)
// that enforce the no-overlapping-approvals invariant.
//
// Each guarded write runs as a single transaction: a per-horse advisory lock
// followed by a conditional write whose subqueries re-read committed state.
// The lock serializes guards on the same horse, so of two racing transitions
// the second always observes the first's effect. The check never happens in
// application code followed by a separate write call.
type RequestRepo interface {
	// CreateIfAvailable inserts a new pending request if its range does not
	// overlap any block or approved request for the horse. Pending requests
	// never constrain each other — two overlapping pendings may coexist and
	// are resolved at approve time. Returns a *domain.ConflictError when the
	// range is taken.
	CreateIfAvailable(ctx context.Context, req domain.BorrowRequest) (domain.BorrowRequest, error)

	// ApproveIfAvailable transitions a pending request to approved if its
	// range does not overlap any block or any other approved request for the
	// same horse. Returns domain.ErrNotFound when the request does not exist,
	// domain.ErrValidation when it is not pending, and *domain.ConflictError
	// when the range has been taken since the request was created — in which
	// case the request stays pending.
	ApproveIfAvailable(ctx context.Context, id uuid.UUID) (domain.BorrowRequest, error)

	// Reject transitions a pending request to rejected.
	// Returns domain.ErrNotFound when the request does not exist and
	// domain.ErrValidation when it is not pending.
	Reject(ctx context.Context, id uuid.UUID) (domain.BorrowRequest, error)

	// GetByID retrieves a single request by its UUID primary key.
	// Returns domain.ErrNotFound if no request with that ID exists.
	GetByID(ctx context.Context, id uuid.UUID) (domain.BorrowRequest, error)

	// ListByHorseID returns all requests for a horse, any status, ordered by
	// start date ascending, ties broken by creation order.
	ListByHorseID(ctx context.Context, horseID uuid.UUID) ([]domain.BorrowRequest, error)

	// ListByHorseAndBorrower returns the given borrower's requests for a horse.
	ListByHorseAndBorrower(ctx context.Context, horseID, borrowerID uuid.UUID) ([]domain.BorrowRequest, error)

	// ListApprovedByHorseID returns only approved requests for a horse — the
	// booking half of the unavailable timeline.
	ListApprovedByHorseID(ctx context.Context, horseID uuid.UUID) ([]domain.BorrowRequest, error)

	// Delete removes a request by ID regardless of status. A deleted approved
	// request frees its range immediately, since availability is always
	// recomputed from live rows. Returns domain.ErrNotFound if it does not exist.
	Delete(ctx context.Context, id uuid.UUID) error
}

// pgRequestRepo is the Postgres implementation of RequestRepo.
type pgRequestRepo struct {
	db db
}

// NewRequestRepo constructs a RequestRepo backed by the provided db connection.
// In production pass *pgxpool.Pool; in tests pass a pgx.Tx for rollback isolation.
func NewRequestRepo(db db) RequestRepo {
	return &pgRequestRepo{db: db}
}

const requestColumns = `id, horse_id, borrower_id, status, start_date, end_date, message, created_at, updated_at`

func (r *pgRequestRepo) CreateIfAvailable(ctx context.Context, req domain.BorrowRequest) (domain.BorrowRequest, error) {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return domain.BorrowRequest{}, fmt.Errorf("repo.RequestRepo.CreateIfAvailable: begin: %w", err)
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, lockHorseSQL, pgx.NamedArgs{"horse_id": req.HorseID}); err != nil {
		return domain.BorrowRequest{}, fmt.Errorf("repo.RequestRepo.CreateIfAvailable: lock: %w", err)
	}

	// The INSERT only fires when no committed block or approved request
	// overlaps the proposed range. Under the advisory lock this read cannot
	// interleave with another guard on the same horse.
	const q = `
		INSERT INTO borrow_requests (horse_id, borrower_id, status, start_date, end_date, message)
		SELECT @horse_id, @borrower_id, 'pending', @start_date, @end_date, @message
		WHERE NOT EXISTS (
			SELECT 1 FROM blocked_ranges b
			WHERE b.horse_id = @horse_id
			  AND b.start_date <= @end_date AND @start_date <= b.end_date
		)
		AND NOT EXISTS (
			SELECT 1 FROM borrow_requests a
			WHERE a.horse_id = @horse_id AND a.status = 'approved'
			  AND a.start_date <= @end_date AND @start_date <= a.end_date
		)
		RETURNING ` + requestColumns

	args := pgx.NamedArgs{
		"horse_id":    req.HorseID,
		"borrower_id": req.BorrowerID,
		"start_date":  req.Range.Start,
		"end_date":    req.Range.End,
		"message":     req.Message,
	}

	created, err := scanRequest(tx.QueryRow(ctx, q, args))
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			// No row inserted — the range is taken. Look up the first
			// conflicting entry inside the same transaction for the error detail.
			conflictErr, lookupErr := r.conflictDetail(ctx, tx, req.HorseID, req.Range, uuid.Nil)
			if lookupErr != nil {
				return domain.BorrowRequest{}, fmt.Errorf("repo.RequestRepo.CreateIfAvailable: %w", lookupErr)
			}
			return domain.BorrowRequest{}, fmt.Errorf("repo.RequestRepo.CreateIfAvailable: %w", conflictErr)
		}
		return domain.BorrowRequest{}, fmt.Errorf("repo.RequestRepo.CreateIfAvailable: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return domain.BorrowRequest{}, fmt.Errorf("repo.RequestRepo.CreateIfAvailable: commit: %w", err)
	}
	return created, nil
}

func (r *pgRequestRepo) ApproveIfAvailable(ctx context.Context, id uuid.UUID) (domain.BorrowRequest, error) {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return domain.BorrowRequest{}, fmt.Errorf("repo.RequestRepo.ApproveIfAvailable: begin: %w", err)
	}
	defer tx.Rollback(ctx)

	// Resolve the horse first so the advisory lock can be taken before the
	// conditional write re-reads the timeline.
	cur, err := getRequestTx(ctx, tx, id)
	if err != nil {
		return domain.BorrowRequest{}, fmt.Errorf("repo.RequestRepo.ApproveIfAvailable: %w", err)
	}

	if _, err := tx.Exec(ctx, lockHorseSQL, pgx.NamedArgs{"horse_id": cur.HorseID}); err != nil {
		return domain.BorrowRequest{}, fmt.Errorf("repo.RequestRepo.ApproveIfAvailable: lock: %w", err)
	}

	// Approve only while still pending and only when no block or *other*
	// approved request overlaps — the request must not conflict with itself.
	const q = `
		UPDATE borrow_requests r
		SET status = 'approved', updated_at = now()
		WHERE r.id = @id AND r.status = 'pending'
		  AND NOT EXISTS (
			SELECT 1 FROM blocked_ranges b
			WHERE b.horse_id = r.horse_id
			  AND b.start_date <= r.end_date AND r.start_date <= b.end_date
		  )
		  AND NOT EXISTS (
			SELECT 1 FROM borrow_requests a
			WHERE a.horse_id = r.horse_id AND a.status = 'approved' AND a.id <> r.id
			  AND a.start_date <= r.end_date AND r.start_date <= a.end_date
		  )
		RETURNING ` + requestColumns

	approved, err := scanRequest(tx.QueryRow(ctx, q, pgx.NamedArgs{"id": id}))
	if err != nil {
		if !errors.Is(err, domain.ErrNotFound) {
			return domain.BorrowRequest{}, fmt.Errorf("repo.RequestRepo.ApproveIfAvailable: %w", err)
		}

		// The update matched nothing. Either the request left pending since we
		// read it, or its range has been taken. Re-read to tell the two apart.
		cur, rereadErr := getRequestTx(ctx, tx, id)
		if rereadErr != nil {
			return domain.BorrowRequest{}, fmt.Errorf("repo.RequestRepo.ApproveIfAvailable: %w", rereadErr)
		}
		if cur.Status != domain.StatusPending {
			return domain.BorrowRequest{}, fmt.Errorf(
				"repo.RequestRepo.ApproveIfAvailable: %w: request is %s, only pending requests can be approved",
				domain.ErrValidation, cur.Status)
		}

		conflictErr, lookupErr := r.conflictDetail(ctx, tx, cur.HorseID, cur.Range, cur.ID)
		if lookupErr != nil {
			return domain.BorrowRequest{}, fmt.Errorf("repo.RequestRepo.ApproveIfAvailable: %w", lookupErr)
		}
		// Nothing was written; the request stays pending for the owner to
		// reject or the borrower to amend.
		return domain.BorrowRequest{}, fmt.Errorf("repo.RequestRepo.ApproveIfAvailable: %w", conflictErr)
	}

	if err := tx.Commit(ctx); err != nil {
		return domain.BorrowRequest{}, fmt.Errorf("repo.RequestRepo.ApproveIfAvailable: commit: %w", err)
	}
	return approved, nil
}

func (r *pgRequestRepo) Reject(ctx context.Context, id uuid.UUID) (domain.BorrowRequest, error) {
	// Rejection never adds to the timeline, so no advisory lock is needed —
	// the conditional status check alone makes the transition safe.
	const q = `
		UPDATE borrow_requests
		SET status = 'rejected', updated_at = now()
		WHERE id = @id AND status = 'pending'
		RETURNING ` + requestColumns

	rejected, err := scanRequest(r.db.QueryRow(ctx, q, pgx.NamedArgs{"id": id}))
	if err == nil {
		return rejected, nil
	}
	if !errors.Is(err, domain.ErrNotFound) {
		return domain.BorrowRequest{}, fmt.Errorf("repo.RequestRepo.Reject: %w", err)
	}

	cur, rereadErr := r.GetByID(ctx, id)
	if rereadErr != nil {
		return domain.BorrowRequest{}, fmt.Errorf("repo.RequestRepo.Reject: %w", domain.ErrNotFound)
	}
	return domain.BorrowRequest{}, fmt.Errorf(
		"repo.RequestRepo.Reject: %w: request is %s, only pending requests can be rejected",
		domain.ErrValidation, cur.Status)
}

func (r *pgRequestRepo) GetByID(ctx context.Context, id uuid.UUID) (domain.BorrowRequest, error) {
	const q = `SELECT ` + requestColumns + ` FROM borrow_requests WHERE id = @id`

	req, err := scanRequest(r.db.QueryRow(ctx, q, pgx.NamedArgs{"id": id}))
	if err != nil {
		return domain.BorrowRequest{}, fmt.Errorf("repo.RequestRepo.GetByID: %w", err)
	}
	return req, nil
}

func (r *pgRequestRepo) ListByHorseID(ctx context.Context, horseID uuid.UUID) ([]domain.BorrowRequest, error) {
	const q = `
		SELECT ` + requestColumns + `
		FROM borrow_requests
		WHERE horse_id = @horse_id
		ORDER BY start_date, created_at`

	return r.list(ctx, q, pgx.NamedArgs{"horse_id": horseID}, "ListByHorseID")
}

func (r *pgRequestRepo) ListByHorseAndBorrower(ctx context.Context, horseID, borrowerID uuid.UUID) ([]domain.BorrowRequest, error) {
	const q = `
		SELECT ` + requestColumns + `
		FROM borrow_requests
		WHERE horse_id = @horse_id AND borrower_id = @borrower_id
		ORDER BY start_date, created_at`

	return r.list(ctx, q, pgx.NamedArgs{"horse_id": horseID, "borrower_id": borrowerID}, "ListByHorseAndBorrower")
}

func (r *pgRequestRepo) ListApprovedByHorseID(ctx context.Context, horseID uuid.UUID) ([]domain.BorrowRequest, error) {
	const q = `
		SELECT ` + requestColumns + `
		FROM borrow_requests
		WHERE horse_id = @horse_id AND status = 'approved'
		ORDER BY start_date, created_at`

	return r.list(ctx, q, pgx.NamedArgs{"horse_id": horseID}, "ListApprovedByHorseID")
}

func (r *pgRequestRepo) Delete(ctx context.Context, id uuid.UUID) error {
	const q = `DELETE FROM borrow_requests WHERE id = @id`

	tag, err := r.db.Exec(ctx, q, pgx.NamedArgs{"id": id})
	if err != nil {
		return fmt.Errorf("repo.RequestRepo.Delete: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("repo.RequestRepo.Delete: %w", domain.ErrNotFound)
	}
	return nil
}

func (r *pgRequestRepo) list(ctx context.Context, q string, args pgx.NamedArgs, op string) ([]domain.BorrowRequest, error) {
	rows, err := r.db.Query(ctx, q, args)
	if err != nil {
		return nil, fmt.Errorf("repo.RequestRepo.%s: %w", op, err)
	}
	defer rows.Close()

	var reqs []domain.BorrowRequest
	for rows.Next() {
		req, err := scanRequest(rows)
		if err != nil {
			return nil, fmt.Errorf("repo.RequestRepo.%s: scan: %w", op, err)
		}
		reqs = append(reqs, req)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("repo.RequestRepo.%s: rows: %w", op, err)
	}

	return reqs, nil
}

// conflictDetail finds the first committed entry that overlaps the proposed
// range and wraps it into a *domain.ConflictError. Block reasons are exposed
// (they belong to the horse's own calendar); request messages are not.
func (r *pgRequestRepo) conflictDetail(ctx context.Context, tx pgx.Tx, horseID uuid.UUID, proposed domain.DateRange, excludeID uuid.UUID) (*domain.ConflictError, error) {
	const q = `
		SELECT kind, id, start_date, end_date FROM (
			SELECT 'blocked' AS kind, id, start_date, end_date, created_at
			FROM blocked_ranges
			WHERE horse_id = @horse_id
			  AND start_date <= @end_date AND @start_date <= end_date
			UNION ALL
			SELECT 'booking' AS kind, id, start_date, end_date, created_at
			FROM borrow_requests
			WHERE horse_id = @horse_id AND status = 'approved' AND id <> @exclude_id
			  AND start_date <= @end_date AND @start_date <= end_date
		) conflicts
		ORDER BY start_date, created_at
		LIMIT 1`

	args := pgx.NamedArgs{
		"horse_id":   horseID,
		"start_date": proposed.Start,
		"end_date":   proposed.End,
		"exclude_id": excludeID,
	}

	var (
		kind  string
		id    pgtype.UUID
		start pgtype.Date
		end   pgtype.Date
	)
	err := tx.QueryRow(ctx, q, args).Scan(&kind, &id, &start, &end)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			// The conditional write refused but nothing overlaps anymore —
			// can only happen if rows changed mid-transaction, which the
			// advisory lock rules out. Treat as a plain conflict.
			return &domain.ConflictError{Proposed: proposed}, nil
		}
		return nil, err
	}

	with := domain.UnavailableRange{
		Kind:     domain.RangeKind(kind),
		Range:    domain.DateRange{Start: start.Time.UTC(), End: end.Time.UTC()},
		SourceID: uuid.UUID(id.Bytes),
	}
	if with.Kind == domain.KindBlocked {
		with.Label = "Blocked by owner"
	} else {
		with.Label = "Booked"
	}
	return &domain.ConflictError{Proposed: proposed, With: with}, nil
}

// getRequestTx reads a request inside an open transaction.
func getRequestTx(ctx context.Context, tx pgx.Tx, id uuid.UUID) (domain.BorrowRequest, error) {
	const q = `SELECT ` + requestColumns + ` FROM borrow_requests WHERE id = @id`
	return scanRequest(tx.QueryRow(ctx, q, pgx.NamedArgs{"id": id}))
}

// scanRequest maps a single database row into a domain.BorrowRequest.
func scanRequest(s scanner) (domain.BorrowRequest, error) {
	var (
		req        domain.BorrowRequest
		id         pgtype.UUID
		horseID    pgtype.UUID
		borrowerID pgtype.UUID
		status     string
		start      pgtype.Date
		end        pgtype.Date
	)

	err := s.Scan(&id, &horseID, &borrowerID, &status, &start, &end, &req.Message, &req.CreatedAt, &req.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.BorrowRequest{}, domain.ErrNotFound
		}
		return domain.BorrowRequest{}, err
	}

	req.ID = uuid.UUID(id.Bytes)
	req.HorseID = uuid.UUID(horseID.Bytes)
	req.BorrowerID = uuid.UUID(borrowerID.Bytes)
	req.Status = domain.RequestStatus(status)
	req.Range = domain.DateRange{Start: start.Time.UTC(), End: end.Time.UTC()}
	return req, nil
}
