// Package db provides PostgreSQL-backed storage for health records, lab
// results and assessment snapshots. Repositories accept a DBTX so the same
// code runs against *pgxpool.Pool or inside a pgx.Tx.
package db

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// DBTX is the minimal interface shared by *pgxpool.Pool and pgx.Tx. Begin
// on a pgx.Tx opens a savepoint, so multi-statement writes stay atomic either
// way.
type DBTX interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Begin(ctx context.Context) (pgx.Tx, error)
}

// dayOf truncates t to its UTC calendar day. Health records are keyed per day.
func dayOf(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
