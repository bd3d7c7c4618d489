package persistence

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// errNoTx is returned when Commit or Rollback runs outside a unit of work.
var errNoTx = errors.New("no transaction in context")

type txKey struct{}

// TxInfo carries a Postgres transaction through the context. Owned marks
// the unit of work that opened it; nested units see Owned=false and leave
// commit and rollback to the outermost one.
type TxInfo struct {
	Tx    pgx.Tx
	Owned bool
}

// WithTx attaches transaction info to the context.
func WithTx(ctx context.Context, tx pgx.Tx, owned bool) context.Context {
	return context.WithValue(ctx, txKey{}, TxInfo{Tx: tx, Owned: owned})
}

// TxInfoFromContext reads transaction info off the context.
func TxInfoFromContext(ctx context.Context) (TxInfo, bool) {
	info, ok := ctx.Value(txKey{}).(TxInfo)
	if !ok || info.Tx == nil {
		return TxInfo{}, false
	}
	return info, true
}

// DBExecutor is the intersection of pgxpool.Pool and pgx.Tx that the
// repositories query through, so the same code runs in and out of a
// transaction.
type DBExecutor interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

// Executor resolves to the context's transaction when one is open,
// otherwise the pool.
func Executor(ctx context.Context, pool *pgxpool.Pool) DBExecutor {
	if info, ok := TxInfoFromContext(ctx); ok {
		return info.Tx
	}
	return pool
}
