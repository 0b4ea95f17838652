// Package repo contains all database access logic for the booking engine.
// Each resource has its own file with an interface and a Postgres
// implementation. No business logic lives here — only SQL and type mapping.
package repo

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// db is the minimal interface satisfied by *pgxpool.Pool, *pgx.Conn, and
// pgx.Tx. Accepting this interface instead of *pgxpool.Pool directly allows
// integration tests to pass a transaction that is rolled back after each
// test, giving free per-test isolation without any manual cleanup.
//
// Begin is included because the guarded writes in request.go run as one
// transaction (advisory lock + conditional write). When db is already a
// pgx.Tx, Begin opens a savepoint-backed nested transaction, so the pattern
// works unchanged under test isolation.
type db interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Begin(ctx context.Context) (pgx.Tx, error)
}

// scanner is satisfied by both pgx.Row and pgx.Rows, allowing the scan
// helpers to be reused for both QueryRow and Query calls.
type scanner interface {
	Scan(dest ...any) error
}

// lockHorseSQL serializes guarded writes per horse. pg_advisory_xact_lock
// blocks until the lock is granted and releases it automatically at
// transaction end, so the second of two racing guards always re-reads state
// that includes the first one's commit.
const lockHorseSQL = `SELECT pg_advisory_xact_lock(hashtextextended(@horse_id::text, 0))`
