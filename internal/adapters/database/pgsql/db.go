package pgsql

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// DBTX is the subset of pgx behavior the guard needs. Both *pgxpool.Pool and
// pgx.Tx satisfy it, so the same guard code runs inside and outside a
// transaction.
type DBTX interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// txBeginner is implemented by *pgxpool.Pool (fresh transaction on a pooled
// connection) and by pgx.Tx (savepoint-backed nested transaction).
type txBeginner interface {
	Begin(ctx context.Context) (pgx.Tx, error)
}
